package quota

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

type fakeStore struct {
	demoted     []int64
	decremented []int64
	analyses    int
	pending     bool
}

func (f *fakeStore) DemoteToFree(_ context.Context, id int64) error {
	f.demoted = append(f.demoted, id)
	return nil
}

func (f *fakeStore) DecrementFreeMessages(_ context.Context, id int64) error {
	f.decremented = append(f.decremented, id)
	return nil
}

func (f *fakeStore) CountAnalyses(_ context.Context, _ int64) (int, error) {
	return f.analyses, nil
}

func (f *fakeStore) HasPending(_ context.Context, _ int64) (bool, error) {
	return f.pending, nil
}

func newTestGate(f *fakeStore, now time.Time) *Gate {
	g := NewGate(f, f, f, 150)
	g.now = func() time.Time { return now }
	return g
}

func future(now time.Time) *time.Time {
	t := now.Add(24 * time.Hour)
	return &t
}

func past(now time.Time) *time.Time {
	t := now.Add(-24 * time.Hour)
	return &t
}

func TestCanChatFreeQuota(t *testing.T) {
	now := time.Now()
	f := &fakeStore{}
	g := newTestGate(f, now)
	ctx := context.Background()

	u := &domain.User{TelegramID: 1, Plan: domain.PlanFree, FreeMessagesLeft: 1}

	if dec, err := g.CanChat(ctx, u); err != nil || dec != Allow {
		t.Fatalf("with quota: %v, %v; want Allow", dec, err)
	}
	if err := g.ConsumeMessage(ctx, u); err != nil {
		t.Fatal(err)
	}
	if u.FreeMessagesLeft != 0 || len(f.decremented) != 1 {
		t.Errorf("consume did not decrement: left=%d store=%v", u.FreeMessagesLeft, f.decremented)
	}
	if dec, _ := g.CanChat(ctx, u); dec != DenyQuota {
		t.Errorf("without quota: %v, want DenyQuota", dec)
	}
}

func TestCanChatPaidUnlimited(t *testing.T) {
	now := time.Now()
	f := &fakeStore{}
	g := newTestGate(f, now)
	ctx := context.Background()

	u := &domain.User{TelegramID: 1, Plan: domain.PlanMonth, PlanExpiry: future(now), FreeMessagesLeft: 0}
	if dec, _ := g.CanChat(ctx, u); dec != Allow {
		t.Fatalf("paid user denied: %v", dec)
	}
	if err := g.ConsumeMessage(ctx, u); err != nil {
		t.Fatal(err)
	}
	if len(f.decremented) != 0 {
		t.Error("paid plan must not consume free messages")
	}
}

func TestCanChatExpiryDemotesBeforeDecision(t *testing.T) {
	now := time.Now()
	f := &fakeStore{}
	g := newTestGate(f, now)
	ctx := context.Background()

	// истёкшая подписка без остатка бесплатных: понижение плюс DenyExpired
	u := &domain.User{TelegramID: 7, Plan: domain.PlanWeek, PlanExpiry: past(now), FreeMessagesLeft: 0}
	dec, err := g.CanChat(ctx, u)
	if err != nil {
		t.Fatal(err)
	}
	if dec != DenyExpired {
		t.Errorf("decision = %v, want DenyExpired", dec)
	}
	if u.Plan != domain.PlanFree || u.PlanExpiry != nil {
		t.Errorf("user not demoted in memory: %+v", u)
	}
	if len(f.demoted) != 1 || f.demoted[0] != 7 {
		t.Errorf("demotion not persisted: %v", f.demoted)
	}

	// истёкшая подписка, но бесплатные ещё есть: пропускаем
	u2 := &domain.User{TelegramID: 8, Plan: domain.PlanWeek, PlanExpiry: past(now), FreeMessagesLeft: 3}
	if dec, _ := g.CanChat(ctx, u2); dec != Allow {
		t.Errorf("decision = %v, want Allow after demotion with quota left", dec)
	}
	if u2.Plan != domain.PlanFree {
		t.Error("second user not demoted")
	}
}

func TestAnalysisViewFirstIsAlwaysFull(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	f := &fakeStore{analyses: 0}
	g := newTestGate(f, now)
	u := &domain.User{TelegramID: 1, Plan: domain.PlanFree}
	if full, err := g.AnalysisView(ctx, u); err != nil || !full {
		t.Errorf("first analysis: full=%v err=%v, want full", full, err)
	}

	f.analyses = 1
	if full, _ := g.AnalysisView(ctx, u); full {
		t.Error("second analysis on free plan must be preview")
	}

	paid := &domain.User{TelegramID: 2, Plan: domain.PlanYear, PlanExpiry: future(now)}
	if full, _ := g.AnalysisView(ctx, paid); !full {
		t.Error("paid plan must always see full analysis")
	}
}

func TestPreview(t *testing.T) {
	f := &fakeStore{}
	g := NewGate(f, f, f, 10)

	short := "короткий"
	if got := g.Preview(short); got != short {
		t.Errorf("short text must pass through, got %q", got)
	}

	long := strings.Repeat("абв", 20)
	got := g.Preview(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("preview must end with ellipsis: %q", got)
	}
	if runes := []rune(strings.TrimSuffix(got, "...")); len(runes) != 10 {
		t.Errorf("preview length = %d runes, want 10", len(runes))
	}
}

func TestCanStartPayment(t *testing.T) {
	ctx := context.Background()
	f := &fakeStore{pending: true}
	g := newTestGate(f, time.Now())
	if ok, _ := g.CanStartPayment(ctx, 1); ok {
		t.Error("pending transaction must block a new payment")
	}
	f.pending = false
	if ok, _ := g.CanStartPayment(ctx, 1); !ok {
		t.Error("no pending transaction must allow payment")
	}
}
