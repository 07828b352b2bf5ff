package bot

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// errorTracker считает повторы однотипных ошибок; при достижении порога
// разрешает одну эскалацию, не чаще раза в cooldown.
type errorTracker struct {
	mu        sync.Mutex
	counts    map[string]int
	escalated map[string]time.Time
	threshold int
	cooldown  time.Duration
}

func newErrorTracker() *errorTracker {
	return &errorTracker{
		counts:    make(map[string]int),
		escalated: make(map[string]time.Time),
		threshold: 5,
		cooldown:  10 * time.Minute,
	}
}

func (t *errorTracker) shouldEscalate(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.counts[key]++
	if t.counts[key] < t.threshold {
		return false
	}
	if last, ok := t.escalated[key]; ok && time.Since(last) < t.cooldown {
		return false
	}
	t.escalated[key] = time.Now()
	t.counts[key] = 0
	return true
}

// reportError логирует ошибку и при повторах шлёт эскалацию админу.
func (h *Handler) reportError(scope string, err error, chatID int64) {
	h.log.Error().Err(err).Str("scope", scope).Int64("chat_id", chatID).Msg("handler error")

	if h.cfg.AdminChatID == 0 || err == nil {
		return
	}
	if h.errs.shouldEscalate(scope) {
		h.send(tgbotapi.NewMessage(h.cfg.AdminChatID,
			fmt.Sprintf("⚠️ Повторяющаяся ошибка [%s]: %v", scope, err)))
	}
}

// guard не даёт панике в одном апдейте уронить процесс.
func (h *Handler) guard(upd tgbotapi.Update) {
	r := recover()
	if r == nil {
		return
	}
	h.log.Error().
		Interface("panic", r).
		Int("update_id", upd.UpdateID).
		Bytes("stack", debug.Stack()).
		Msg("panic in update handler")

	if chatID := updateChatID(upd); chatID != 0 {
		h.reply(chatID, "😔 Что-то пошло не так. Попробуйте ещё раз.", nil)
	}
}

func updateChatID(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil:
		return upd.Message.Chat.ID
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		return upd.CallbackQuery.Message.Chat.ID
	}
	return 0
}
