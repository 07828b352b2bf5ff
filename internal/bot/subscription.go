package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/payment"
	"github.com/kirfitai/astrology-bot/internal/session"
)

func (h *Handler) startSubscription(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	s.Clear()
	s.State = session.SubSelectingPlan
	h.showPlans(chatID, u)
}

// endSubscriptionFlow выводит сессию из выбора плана: без этого кнопки
// главного меню после оплаты или отмены остались бы мёртвыми.
func endSubscriptionFlow(s *session.Session) {
	s.Clear()
	s.State = session.DialogActive
}

func (h *Handler) showPlans(chatID int64, u *domain.User) {
	var status string
	if u.IsPaid(time.Now()) {
		status = fmt.Sprintf("💎 Подписка «%s» активна до %s.\n\nПродлить или сменить план:",
			payment.PlanTitle(u.Plan), u.PlanExpiry.Format("02.01.2006"))
	} else {
		status = "💎 Премиум-подписка:\n\n" +
			"• безлимитное общение с астрологом\n" +
			"• полные анализы совместимости\n" +
			"• расширенные гороскопы\n\n" +
			"Оплата в Telegram Stars. Выберите план:"
	}
	m := tgbotapi.NewMessage(chatID, status)
	m.ReplyMarkup = plansInline(h.cfg.PlanPrices, h.cfg.StarsPerUSD)
	h.send(m)
}

func (h *Handler) sendSubscriptionInvoice(ctx context.Context, chatID int64, u *domain.User, plan domain.Plan) {
	ok, err := h.gate.CanStartPayment(ctx, u.TelegramID)
	if err != nil {
		h.reportError("payment_check", err, chatID)
		return
	}
	if !ok {
		m := tgbotapi.NewMessage(chatID, "У вас уже есть неоплаченный счёт. Отменить его и создать новый?")
		m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("❌ Отменить старый счёт", "cancel_payment"),
			),
		)
		h.send(m)
		return
	}

	inv, err := h.pay.CreateSubscription(ctx, u.TelegramID, plan)
	if err != nil {
		h.reportError("create_invoice", err, chatID)
		h.reply(chatID, "Не получилось создать счёт, попробуйте позже.", nil)
		return
	}
	h.sendStarsInvoice(chatID, inv)
}

func (h *Handler) sendUnlockInvoice(ctx context.Context, chatID int64, u *domain.User, contactID int64) {
	ok, err := h.gate.CanStartPayment(ctx, u.TelegramID)
	if err != nil {
		h.reportError("payment_check", err, chatID)
		return
	}
	if !ok {
		h.reply(chatID, "Сначала завершите или отмените предыдущий платёж.", nil)
		return
	}
	inv, err := h.pay.CreateUnlock(ctx, u.TelegramID, contactID)
	if err != nil {
		h.reportError("create_unlock", err, chatID)
		return
	}
	h.sendStarsInvoice(chatID, inv)
}

// Валюта XTR: цена в самих звёздах, provider token не нужен.
func (h *Handler) sendStarsInvoice(chatID int64, inv *payment.Invoice) {
	invoice := tgbotapi.NewInvoice(chatID, inv.Title, inv.Description, inv.Payload,
		"", "", "XTR", []tgbotapi.LabeledPrice{{Label: inv.Title, Amount: inv.Stars}})
	invoice.SuggestedTipAmounts = []int{}
	if _, err := h.api.Request(invoice); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send invoice")
	}
}

func (h *Handler) handlePreCheckout(pcq *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: pcq.ID,
		OK:                 true,
	}
	if _, err := h.api.Request(answer); err != nil {
		h.log.Error().Err(err).Msg("answer pre-checkout")
	}
}

func (h *Handler) handleSuccessfulPayment(ctx context.Context, chatID int64, u *domain.User, sp *tgbotapi.SuccessfulPayment) {
	h.sessions.Do(u.TelegramID, func(s *session.Session) { endSubscriptionFlow(s) })

	comp, err := h.pay.Completed(ctx, sp.InvoicePayload, sp.TelegramPaymentChargeID)
	if err != nil {
		h.reportError("payment_complete", err, chatID)
		if ferr := h.pay.Failed(ctx, sp.InvoicePayload); ferr != nil {
			h.log.Warn().Err(ferr).Msg("mark transaction failed")
		}
		h.reply(chatID, "Платёж получен, но при активации возникла ошибка. Напишите в поддержку.", mainMenu())
		return
	}

	if comp.ContactID != 0 {
		// разовая разблокировка анализа совместимости
		text, err := h.contacts.LatestAnalysis(ctx, u.TelegramID, comp.ContactID)
		if err != nil || text == "" {
			h.reportError("unlock_fetch", err, chatID)
			h.reply(chatID, "Оплата прошла, но анализ не нашёлся. Напишите в поддержку.", mainMenu())
			return
		}
		h.reply(chatID, "🔓 Полный анализ совместимости:\n\n"+text, mainMenu())
		return
	}

	days := domain.PlanDays(comp.Plan)
	expiry := time.Now().AddDate(0, 0, days)
	u.Plan = comp.Plan
	u.PlanExpiry = &expiry
	h.reply(chatID, fmt.Sprintf(
		"🎉 Подписка «%s» активирована до %s!\nТеперь общение без ограничений.",
		payment.PlanTitle(comp.Plan), expiry.Format("02.01.2006")), mainMenu())
}
