package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/payment"
	"github.com/kirfitai/astrology-bot/internal/session"
)

// Подписи кнопок главного меню и сценариев.
const (
	btnNatal      = "🌟 Моя натальная карта"
	btnCompat     = "💞 Совместимость"
	btnHoroscope  = "📅 Мой гороскоп"
	btnSubscribe  = "💎 Подписка"
	btnRecalc     = "🔄 Пересчитать карту"
	btnViewChart  = "👁️ Посмотреть текущую карту"
	btnNewContact = "➕ Добавить новый контакт"
	btnMyContacts = "📋 Мои контакты"
	btnAddShort   = "➕ Добавить контакт"
	btnBack       = "↩️ Назад"
	btnUseSaved   = "📁 Использовать сохранённые данные"
	btnReenter    = "✍️ Ввести данные заново"
)

func reuseContactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnUseSaved)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnReenter)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(session.BackSentinel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnNatal)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCompat)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnHoroscope)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSubscribe)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func backButton() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(session.BackSentinel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Да"),
			tgbotapi.NewKeyboardButton("Нет"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(session.BackSentinel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// Словесные варианты распознаются парсером времени.
func timePeriodsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Утром (09:00)"),
			tgbotapi.NewKeyboardButton("Днем (15:00)"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Вечером (21:00)"),
			tgbotapi.NewKeyboardButton("Ночью (03:00)"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(session.BackSentinel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func natalActionsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnRecalc)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnViewChart)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(session.BackSentinel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func compatibilityMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnNewContact)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnMyContacts)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(session.BackSentinel)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func contactsKeyboard(contacts []*domain.Contact) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for _, c := range contacts {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👤 "+c.PersonName),
		))
	}
	rows = append(rows,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnAddShort)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBack),
			tgbotapi.NewKeyboardButton(session.BackSentinel),
		),
	)
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

func contactActionsInline(contactID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💞 Совместимость", fmt.Sprintf("compat:%d", contactID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Редактировать", fmt.Sprintf("contact_edit:%d", contactID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("contact_delete:%d", contactID)),
		),
	)
}

func plansInline(prices map[domain.Plan]float64, starsPerUSD float64) tgbotapi.InlineKeyboardMarkup {
	order := []domain.Plan{domain.PlanWeek, domain.PlanMonth, domain.PlanQuarter, domain.PlanYear}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range order {
		price, ok := prices[p]
		if !ok {
			continue
		}
		stars := int(price * starsPerUSD)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✨ %s — %d ⭐️", payment.PlanTitle(p), stars),
				"subscribe:"+string(p),
			),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Отмена", "cancel_payment"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func premiumInline() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💎 Узнать о премиум-подписке", "premium_info"),
		),
	)
}

func renewInline() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Продлить подписку", "subscribe_menu"),
		),
	)
}

func unlockInline(contactID int64, stars int) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("💎 Разблокировать анализ (%d ⭐️)", stars),
				fmt.Sprintf("unlock_compatibility:%d", contactID),
			),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💎 Оформить подписку", "subscribe_menu"),
		),
	)
}
