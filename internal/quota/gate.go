package quota

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

// Store — срез хранилища, нужный гейту.
type Store interface {
	DemoteToFree(ctx context.Context, telegramID int64) error
	DecrementFreeMessages(ctx context.Context, telegramID int64) error
}

type AnalysisCounter interface {
	CountAnalyses(ctx context.Context, ownerID int64) (int, error)
}

type PendingChecker interface {
	HasPending(ctx context.Context, userID int64) (bool, error)
}

type Decision int

const (
	Allow Decision = iota
	DenyQuota   // бесплатные сообщения кончились
	DenyExpired // подписка истекла (уже понижена до free)
)

// Gate решает, можно ли пользователю продолжать платное действие.
// Квота ограничивает именно диалоговые сообщения; расчёт карты и
// совместимости гейтится отдельными правилами.
type Gate struct {
	store      Store
	analyses   AnalysisCounter
	pending    PendingChecker
	previewCap int
	now        func() time.Time
}

func NewGate(store Store, analyses AnalysisCounter, pending PendingChecker, previewCap int) *Gate {
	return &Gate{
		store:      store,
		analyses:   analyses,
		pending:    pending,
		previewCap: previewCap,
		now:        time.Now,
	}
}

// demoteIfExpired понижает истёкший платный план до free до принятия
// решения. Побочный эффект персистентный и отражается в переданном user.
func (g *Gate) demoteIfExpired(ctx context.Context, u *domain.User) (wasExpired bool, err error) {
	if u.Plan == domain.PlanFree {
		return false, nil
	}
	if u.PlanExpiry != nil && u.PlanExpiry.After(g.now()) {
		return false, nil
	}
	if err := g.store.DemoteToFree(ctx, u.TelegramID); err != nil {
		return false, err
	}
	u.Plan = domain.PlanFree
	u.PlanExpiry = nil
	return true, nil
}

// CanChat — проверка перед каждым диалоговым сообщением.
func (g *Gate) CanChat(ctx context.Context, u *domain.User) (Decision, error) {
	wasExpired, err := g.demoteIfExpired(ctx, u)
	if err != nil {
		return DenyQuota, err
	}
	if u.Plan != domain.PlanFree {
		return Allow, nil
	}
	if u.FreeMessagesLeft > 0 {
		return Allow, nil
	}
	if wasExpired {
		return DenyExpired, nil
	}
	return DenyQuota, nil
}

// ConsumeMessage списывает одно бесплатное сообщение после разрешённого
// диалогового обмена. На платном плане — no-op.
func (g *Gate) ConsumeMessage(ctx context.Context, u *domain.User) error {
	if u.Plan != domain.PlanFree {
		return nil
	}
	if err := g.store.DecrementFreeMessages(ctx, u.TelegramID); err != nil {
		return err
	}
	if u.FreeMessagesLeft > 0 {
		u.FreeMessagesLeft--
	}
	return nil
}

// AnalysisView: первый в жизни анализ совместимости показывается целиком
// независимо от плана; последующие на free-плане обрезаются до превью.
func (g *Gate) AnalysisView(ctx context.Context, u *domain.User) (full bool, err error) {
	if _, err := g.demoteIfExpired(ctx, u); err != nil {
		return false, err
	}
	if u.Plan != domain.PlanFree {
		return true, nil
	}
	n, err := g.analyses.CountAnalyses(ctx, u.TelegramID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Preview обрезает текст до previewCap символов с многоточием.
func (g *Gate) Preview(text string) string {
	if utf8.RuneCountInString(text) <= g.previewCap {
		return text
	}
	runes := []rune(text)
	return string(runes[:g.previewCap]) + "..."
}

// CanStartPayment: у пользователя не должно быть незавершённой транзакции.
func (g *Gate) CanStartPayment(ctx context.Context, userID int64) (bool, error) {
	pending, err := g.pending.HasPending(ctx, userID)
	if err != nil {
		return false, err
	}
	return !pending, nil
}
