package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Push(Message{Role: "user", Content: fmt.Sprintf("msg-%d", i)})
	}
	items := h.Items()
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	// остались три последние реплики
	for i, m := range items {
		want := fmt.Sprintf("msg-%d", i+2)
		if m.Content != want {
			t.Errorf("items[%d] = %q, want %q", i, m.Content, want)
		}
	}
}

func TestHistoryItemsIsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Push(Message{Role: "user", Content: "original"})
	items := h.Items()
	items[0].Content = "mutated"
	if h.Items()[0].Content != "original" {
		t.Error("Items leaked internal slice")
	}
}

func TestClearKeepsHistory(t *testing.T) {
	s := &Session{State: CompatDate, PartnerName: "Анна", History: NewHistory(5)}
	s.History.Push(Message{Role: "user", Content: "привет"})

	s.Clear()
	if s.State != Idle || s.PartnerName != "" {
		t.Errorf("Clear left scenario fields: %+v", s)
	}
	if s.History == nil || s.History.Len() != 1 {
		t.Error("Clear must preserve dialogue history")
	}
}

func TestResetDropsHistory(t *testing.T) {
	s := &Session{History: NewHistory(5)}
	s.History.Push(Message{Role: "user", Content: "привет"})
	s.Reset(5)
	if s.History.Len() != 0 {
		t.Error("Reset must drop history")
	}
}

func TestManagerSerializesAccess(t *testing.T) {
	m := NewManager(10)
	const workers = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Do(42, func(s *Session) {
				s.History.Push(Message{Role: "user", Content: "x"})
			})
		}()
	}
	wg.Wait()

	m.Do(42, func(s *Session) {
		if s.History.Len() != 10 {
			t.Errorf("history len = %d, want capacity 10", s.History.Len())
		}
	})
}

func TestManagerIsolatesUsers(t *testing.T) {
	m := NewManager(10)
	m.Do(1, func(s *Session) { s.State = NatalDate })
	m.Do(2, func(s *Session) {
		if s.State != Idle {
			t.Errorf("user 2 state = %v, want Idle", s.State)
		}
	})
	m.Reset(1)
	m.Do(1, func(s *Session) {
		if s.State != Idle {
			t.Errorf("after reset state = %v, want Idle", s.State)
		}
	})
}
