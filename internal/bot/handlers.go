package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/kirfitai/astrology-bot/internal/astro"
	"github.com/kirfitai/astrology-bot/internal/config"
	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/geo"
	"github.com/kirfitai/astrology-bot/internal/llm"
	"github.com/kirfitai/astrology-bot/internal/payment"
	"github.com/kirfitai/astrology-bot/internal/quota"
	"github.com/kirfitai/astrology-bot/internal/repo"
	"github.com/kirfitai/astrology-bot/internal/session"
)

// Deps — всё, что нужно обработчикам. Собирается один раз в main.
type Deps struct {
	API        *tgbotapi.BotAPI
	Cfg        config.Config
	Log        zerolog.Logger
	Users      *repo.Users
	Contacts   *repo.Contacts
	Txs        *repo.Transactions
	Msgs       *repo.Messages
	Horoscopes *repo.Horoscopes
	Sessions   *session.Manager
	Gate       *quota.Gate
	Resolver   geo.Resolver
	Eph        astro.Ephemeris
	Gen        llm.Generator
	Pay        *payment.Service
}

type Handler struct {
	api        *tgbotapi.BotAPI
	cfg        config.Config
	log        zerolog.Logger
	users      *repo.Users
	contacts   *repo.Contacts
	txs        *repo.Transactions
	msgs       *repo.Messages
	horoscopes *repo.Horoscopes
	sessions   *session.Manager
	gate       *quota.Gate
	resolver   geo.Resolver
	eph        astro.Ephemeris
	gen        llm.Generator
	pay        *payment.Service
	errs       *errorTracker
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		api:        d.API,
		cfg:        d.Cfg,
		log:        d.Log,
		users:      d.Users,
		contacts:   d.Contacts,
		txs:        d.Txs,
		msgs:       d.Msgs,
		horoscopes: d.Horoscopes,
		sessions:   d.Sessions,
		gate:       d.Gate,
		resolver:   d.Resolver,
		eph:        d.Eph,
		gen:        d.Gen,
		pay:        d.Pay,
		errs:       newErrorTracker(),
	}
}

// HandleUpdate — точка входа для одного апдейта. Вызывается в своей
// горутине; сериализация по пользователю обеспечивается менеджером сессий.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer h.guard(upd)

	switch {
	case upd.PreCheckoutQuery != nil:
		h.handlePreCheckout(upd.PreCheckoutQuery)
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		h.handleMessage(ctx, upd.Message)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !msg.Chat.IsPrivate() {
		return
	}
	chatID := msg.Chat.ID

	u, err := h.users.UpsertTelegramUser(ctx, msg.From.ID,
		optStr(msg.From.UserName), optStr(msg.From.FirstName), optStr(msg.From.LastName),
		h.cfg.FreeMessages)
	if err != nil {
		h.reportError("upsert_user", err, chatID)
		return
	}

	if msg.SuccessfulPayment != nil {
		h.handleSuccessfulPayment(ctx, chatID, u, msg.SuccessfulPayment)
		return
	}

	if msg.IsCommand() {
		h.handleCommand(ctx, chatID, u, msg.Command())
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	h.sessions.Do(u.TelegramID, func(s *session.Session) {
		h.dispatch(ctx, chatID, u, s, text)
	})
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, u *domain.User, cmd string) {
	switch cmd {
	case "start":
		h.sessions.Do(u.TelegramID, func(s *session.Session) { s.Clear() })
		h.reply(chatID, welcomeText(u), mainMenu())
	case "menu":
		h.sessions.Do(u.TelegramID, func(s *session.Session) { s.Clear() })
		h.reply(chatID, "Главное меню. Выберите раздел:", mainMenu())
	case "help":
		h.reply(chatID, helpText, mainMenu())
	case "natal":
		h.sessions.Do(u.TelegramID, func(s *session.Session) {
			h.startNatal(ctx, chatID, u, s)
		})
	case "compatibility":
		h.sessions.Do(u.TelegramID, func(s *session.Session) {
			h.startCompat(ctx, chatID, u, s)
		})
	case "horoscope":
		h.sessions.Do(u.TelegramID, func(s *session.Session) {
			h.startHoroscope(ctx, chatID, u, s)
		})
	case "subscription":
		h.sessions.Do(u.TelegramID, func(s *session.Session) {
			h.startSubscription(ctx, chatID, u, s)
		})
	case "reset":
		h.sessions.Reset(u.TelegramID)
		h.reply(chatID, "🔄 Контекст диалога сброшен. Натальная карта и контакты сохранены.", mainMenu())
	default:
		h.reply(chatID, "Не знаю такой команды. Посмотрите /help.", mainMenu())
	}
}

// dispatch — маршрутизация текста по текущему состоянию сессии.
// Вызывается под мьютексом сессии.
func (h *Handler) dispatch(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	switch s.State {
	case session.NatalDate, session.NatalTime, session.NatalCity,
		session.NatalCoordsChoice, session.NatalCoords:
		h.natalStep(ctx, chatID, u, s, text)
		return
	case session.CompatAction, session.CompatSelectContact, session.CompatName,
		session.CompatDate, session.CompatTime, session.CompatCity,
		session.CompatRelationship, session.CompatCoordsChoice, session.CompatCoords,
		session.CompatViewing:
		h.compatStep(ctx, chatID, u, s, text)
		return
	case session.HoroTime, session.HoroCity, session.HoroCoordsChoice, session.HoroCoords:
		h.horoStep(ctx, chatID, u, s, text)
		return
	case session.SubSelectingPlan:
		if text == session.BackSentinel {
			s.Clear()
			h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
			return
		}
		h.reply(chatID, "Выберите план кнопками под сообщением выше.", nil)
		return
	}

	// Idle / DialogActive: кнопки главного меню или свободный диалог.
	switch text {
	case session.BackSentinel:
		s.Clear()
		h.reply(chatID, "Главное меню. Выберите раздел:", mainMenu())
	case btnNatal:
		h.startNatal(ctx, chatID, u, s)
	case btnCompat:
		h.startCompat(ctx, chatID, u, s)
	case btnHoroscope:
		h.startHoroscope(ctx, chatID, u, s)
	case btnSubscribe:
		h.startSubscription(ctx, chatID, u, s)
	case btnRecalc:
		h.beginNatalInput(chatID, s)
	case btnViewChart:
		h.showCurrentChart(chatID, u)
	default:
		h.openDialog(ctx, chatID, u, s, text)
	}
}

// --- callbacks ---

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// убрать "часики" на кнопке в любом случае
	defer func() {
		if _, err := h.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			h.log.Warn().Err(err).Msg("answer callback")
		}
	}()

	if cb.Message == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	u, err := h.users.GetByTelegramID(ctx, cb.From.ID)
	if err != nil || u == nil {
		h.reportError("callback_user", err, chatID)
		return
	}

	action, arg := cb.Data, ""
	if i := strings.IndexByte(cb.Data, ':'); i >= 0 {
		action, arg = cb.Data[:i], cb.Data[i+1:]
	}

	switch action {
	case "premium_info", "subscribe_menu":
		h.showPlans(chatID, u)
	case "subscribe":
		h.sendSubscriptionInvoice(ctx, chatID, u, domain.Plan(arg))
	case "cancel_payment":
		if err := h.txs.CancelPending(ctx, u.TelegramID); err != nil {
			h.reportError("cancel_payment", err, chatID)
			return
		}
		h.sessions.Do(u.TelegramID, func(s *session.Session) { endSubscriptionFlow(s) })
		h.reply(chatID, "Оплата отменена.", mainMenu())
	case "compat":
		h.compatWithSavedContact(ctx, chatID, u, parseID(arg))
	case "contact_edit":
		h.beginContactEdit(ctx, chatID, u, parseID(arg))
	case "contact_delete":
		h.deleteContact(ctx, chatID, u, parseID(arg))
	case "unlock_compatibility":
		h.sendUnlockInvoice(ctx, chatID, u, parseID(arg))
	default:
		h.log.Warn().Str("data", cb.Data).Msg("unknown callback")
	}
}

// --- отправка ---

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		h.log.Error().Err(err).Msg("send message")
	}
}

// reply шлёт текст; kb == nil оставляет текущую клавиатуру.
func (h *Handler) reply(chatID int64, text string, kb interface{}) {
	m := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		m.ReplyMarkup = kb
	}
	h.send(m)
}

func welcomeText(u *domain.User) string {
	name := "друг"
	if u.FirstName != nil && *u.FirstName != "" {
		name = *u.FirstName
	}
	return "✨ Привет, " + name + "!\n\n" +
		"Я астрологический бот. Рассчитаю вашу натальную карту по Swiss Ephemeris, " +
		"разберу совместимость с близкими и буду присылать персональные гороскопы.\n\n" +
		"Начните с расчёта натальной карты — после этого со мной можно просто разговаривать."
}

const helpText = `Что я умею:

🌟 /natal — рассчитать натальную карту
💞 /compatibility — анализ совместимости с другим человеком
📅 /horoscope — настроить ежедневный гороскоп
💎 /subscription — премиум-подписка
🔄 /reset — сбросить контекст диалога

После расчёта карты просто пишите мне — я отвечаю как персональный астролог с учётом вашей карты.`

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseID(s string) int64 {
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
