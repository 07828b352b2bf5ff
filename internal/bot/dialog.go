package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/llm"
	"github.com/kirfitai/astrology-bot/internal/quota"
	"github.com/kirfitai/astrology-bot/internal/session"
)

// openDialog — свободное общение с ботом-астрологом. Единственный путь,
// который списывает бесплатные сообщения.
func (h *Handler) openDialog(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	if !u.HasChart() {
		h.reply(chatID, "Чтобы пообщаться со мной как с астрологом, сначала рассчитайте натальную карту: «"+btnNatal+"».", mainMenu())
		return
	}

	dec, err := h.gate.CanChat(ctx, u)
	if err != nil {
		h.reportError("quota_check", err, chatID)
		h.reply(chatID, "Попробуйте ещё раз чуть позже.", nil)
		return
	}
	switch dec {
	case quota.DenyQuota:
		m := tgbotapi.NewMessage(chatID,
			"Бесплатные сообщения закончились. 😔\nОформите подписку, чтобы общаться без ограничений.")
		m.ReplyMarkup = premiumInline()
		h.send(m)
		return
	case quota.DenyExpired:
		m := tgbotapi.NewMessage(chatID,
			"Срок подписки истёк, а бесплатные сообщения израсходованы. Продлить?")
		m.ReplyMarkup = renewInline()
		h.send(m)
		return
	}

	system := h.dialogSystemPrompt(ctx, u, text)
	history := make([]llm.Message, 0, s.History.Len())
	for _, m := range s.History.Items() {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	answer, usage, err := h.gen.Dialog(ctx, system, history, text)
	if err != nil {
		h.reportError("dialog", err, chatID)
		h.reply(chatID, "Не получилось ответить, попробуйте переформулировать.", nil)
		return
	}

	if err := h.msgs.Log(ctx, u.TelegramID, "in", text, 0, 0); err != nil {
		h.log.Warn().Err(err).Msg("log inbound message")
	}
	h.accountUsage(ctx, u, "", answer, usage)

	if err := h.gate.ConsumeMessage(ctx, u); err != nil {
		h.reportError("quota_consume", err, chatID)
	}

	s.History.Push(session.Message{Role: "user", Content: text})
	s.History.Push(session.Message{Role: "assistant", Content: answer})
	s.State = session.DialogActive

	h.reply(chatID, answer, mainMenu())

	if u.Plan == domain.PlanFree && u.FreeMessagesLeft > 0 && u.FreeMessagesLeft <= 3 {
		h.reply(chatID, fmt.Sprintf("ℹ️ Осталось бесплатных сообщений: %d.", u.FreeMessagesLeft), nil)
	}
}

// dialogSystemPrompt собирает контекст: карта пользователя плюс карты
// контактов, упомянутых в сообщении по имени.
func (h *Handler) dialogSystemPrompt(ctx context.Context, u *domain.User, text string) string {
	var b strings.Builder
	b.WriteString("Ты персональный астролог пользователя. Отвечай тепло и конкретно, опираясь на его натальную карту. ")
	b.WriteString("Не выдумывай положения планет, используй только данные ниже.\n\n")
	b.WriteString("Натальная карта пользователя:\n")
	b.WriteString(*u.NatalChart)

	contacts, err := h.contacts.List(ctx, u.TelegramID)
	if err != nil {
		h.log.Warn().Err(err).Msg("list contacts for dialog prompt")
		return b.String()
	}
	lower := strings.ToLower(text)
	for _, c := range contacts {
		if !strings.Contains(lower, strings.ToLower(c.PersonName)) {
			continue
		}
		fmt.Fprintf(&b, "\n\nВ сообщении упомянут(а) %s (%s). Натальная карта:\n%s",
			c.PersonName, c.Relationship, c.NatalChart)
	}
	return b.String()
}

// accountUsage пишет исходящее сообщение в журнал и накапливает токены
// и стоимость в профиле. Ошибки здесь не прерывают ответ пользователю.
func (h *Handler) accountUsage(ctx context.Context, u *domain.User, label, outText string, usage llm.Usage) {
	cost := h.gen.Cost(usage)
	logged := outText
	if label != "" {
		logged = label
	}
	if err := h.msgs.Log(ctx, u.TelegramID, "out", logged, usage.Total(), cost); err != nil {
		h.log.Warn().Err(err).Msg("log outbound message")
	}
	if err := h.users.AddTokenUsage(ctx, u.TelegramID, usage.PromptTokens, usage.CompletionTokens, cost); err != nil {
		h.log.Warn().Err(err).Msg("account token usage")
	}
	u.InputTokens += int64(usage.PromptTokens)
	u.OutputTokens += int64(usage.CompletionTokens)
	u.TotalCost += cost
}
