package bot

import (
	"testing"
	"time"

	"github.com/kirfitai/astrology-bot/internal/session"
)

func TestEndSubscriptionFlowUnblocksMenu(t *testing.T) {
	s := &session.Session{State: session.SubSelectingPlan, History: session.NewHistory(5)}
	s.History.Push(session.Message{Role: "user", Content: "привет"})

	endSubscriptionFlow(s)

	if s.State != session.DialogActive {
		t.Errorf("state = %v, want DialogActive", s.State)
	}
	if s.History.Len() != 1 {
		t.Error("dialogue history must survive the end of the payment flow")
	}
}

func TestRoundToHalfHour(t *testing.T) {
	cases := []struct{ in, want string }{
		{"08:00", "08:00"},
		{"08:14", "08:00"},
		{"08:29", "08:00"},
		{"08:30", "08:30"},
		{"08:45", "08:30"},
		{"23:59", "23:30"},
		{"мусор", "мусор"}, // не время: отдаём как есть
	}
	for _, c := range cases {
		if got := roundToHalfHour(c.in); got != c.want {
			t.Errorf("roundToHalfHour(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestErrorTrackerThreshold(t *testing.T) {
	tr := newErrorTracker()
	tr.threshold = 3
	tr.cooldown = time.Hour

	for i := 0; i < 2; i++ {
		if tr.shouldEscalate("db") {
			t.Fatalf("escalated on repeat %d, before threshold", i+1)
		}
	}
	if !tr.shouldEscalate("db") {
		t.Fatal("must escalate on reaching threshold")
	}
	// счётчик сброшен, следующие повторы копятся заново
	if tr.shouldEscalate("db") {
		t.Fatal("escalated immediately after reset")
	}
}

func TestErrorTrackerCooldown(t *testing.T) {
	tr := newErrorTracker()
	tr.threshold = 1
	tr.cooldown = time.Hour

	if !tr.shouldEscalate("llm") {
		t.Fatal("first escalation must pass")
	}
	if tr.shouldEscalate("llm") {
		t.Fatal("second escalation within cooldown must be suppressed")
	}
	// другой тип ошибки эскалируется независимо
	if !tr.shouldEscalate("geo") {
		t.Fatal("different scope must escalate independently")
	}
}
