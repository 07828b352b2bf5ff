package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirfitai/astrology-bot/internal/astro"
	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/session"
)

func (h *Handler) startNatal(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	if u.HasChart() {
		s.Clear()
		s.State = session.DialogActive
		h.reply(chatID, "У вас уже есть рассчитанная карта. Пересчитать или посмотреть текущую?", natalActionsKeyboard())
		return
	}
	h.beginNatalInput(chatID, s)
}

func (h *Handler) beginNatalInput(chatID int64, s *session.Session) {
	s.Clear()
	s.State = session.NatalDate
	h.reply(chatID, "📅 Введите дату рождения в формате ДД.ММ.ГГГГ, например 15.05.1990.", backButton())
}

func (h *Handler) showCurrentChart(chatID int64, u *domain.User) {
	if !u.HasChart() {
		h.reply(chatID, "Карта ещё не рассчитана. Нажмите «"+btnNatal+"».", mainMenu())
		return
	}
	h.reply(chatID, *u.NatalChart, mainMenu())
}

func (h *Handler) natalStep(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
	cur := s.State
	next, class, ok := session.Step(cur, text)
	if class == session.InputBack {
		s.Clear()
		h.reply(chatID, "Вы вернулись в главное меню.", mainMenu())
		return
	}
	if !ok {
		h.reply(chatID, invalidInputPrompt(cur), nil)
		return
	}

	switch cur {
	case session.NatalDate:
		s.Date, _ = astro.ParseDate(text)
		s.State = next
		h.reply(chatID, "🕐 Введите время рождения, например 14:30.\n"+
			"Если точное время неизвестно, выберите период дня или напишите любой текст — возьму 12:00.",
			timePeriodsKeyboard())

	case session.NatalTime:
		s.Time = astro.ParseTime(text)
		s.State = next
		h.reply(chatID, "🏙 В каком городе вы родились?", backButton())

	case session.NatalCity:
		loc, err := h.resolver.Resolve(ctx, text)
		if err != nil {
			// состояние не теряем, пользователь уточняет ввод
			h.log.Warn().Err(err).Str("place", text).Msg("geocode failed")
			h.reply(chatID, "Не удалось найти такое место. Попробуйте написать иначе, например «Москва, Россия».", nil)
			return
		}
		s.City, s.Lat, s.Lon, s.Timezone = loc.Address, loc.Lat, loc.Lon, loc.Timezone
		s.State = next
		h.reply(chatID, fmt.Sprintf(
			"📍 %s\nКоординаты: %.4f, %.4f\nЧасовой пояс: %s\n\nХотите уточнить координаты вручную?",
			loc.Address, loc.Lat, loc.Lon, loc.Timezone), yesNoKeyboard())

	case session.NatalCoordsChoice:
		if class == session.InputYes {
			s.State = next
			h.reply(chatID, "Введите координаты: широта, долгота. Например: 55.7558, 37.6173", backButton())
			return
		}
		s.State = session.NatalComputing
		h.computeNatal(ctx, chatID, u, s)

	case session.NatalCoords:
		lat, lon, _ := astro.ParseCoords(text)
		s.Lat, s.Lon = lat, lon
		s.State = session.NatalComputing
		h.computeNatal(ctx, chatID, u, s)
	}
}

// computeNatal — точка невозврата потока: назад отсюда нельзя, любой исход
// завершает сценарий.
func (h *Handler) computeNatal(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	h.reply(chatID, "🔮 Рассчитываю вашу натальную карту...", tgbotapi.NewRemoveKeyboard(true))

	utc, err := astro.NormalizeBirth(s.Date, s.Time, s.Timezone)
	if err != nil {
		h.abortFlow(chatID, s, "natal_normalize", err)
		return
	}
	positions, err := h.eph.Positions(utc, s.Lat, s.Lon)
	if err != nil {
		h.abortFlow(chatID, s, "natal_positions", err)
		return
	}
	houses, err := h.eph.Houses(utc, s.Lat, s.Lon)
	if err != nil {
		h.abortFlow(chatID, s, "natal_houses", err)
		return
	}

	chart := astro.BuildChart(positions, houses)
	chartText := astro.FormatChart(chart)

	if err := h.users.UpdateBirthProfile(ctx, u.TelegramID,
		s.Date, s.Time, s.City, s.Lat, s.Lon, s.Timezone, chartText); err != nil {
		h.abortFlow(chatID, s, "natal_persist", err)
		return
	}
	// обновляем профиль в памяти, чтобы диалог работал сразу
	u.BirthDate, u.BirthTime, u.City = &s.Date, &s.Time, &s.City
	u.Latitude, u.Longitude, u.Timezone = &s.Lat, &s.Lon, &s.Timezone
	u.NatalChart = &chartText

	h.reply(chatID, chartText, mainMenu())

	interp, usage, err := h.gen.NatalInterpretation(ctx, chartText)
	if err != nil {
		h.reportError("natal_interpretation", err, chatID)
		h.reply(chatID, "Карта готова, но интерпретацию сейчас составить не получилось. Спросите меня о карте в диалоге.", nil)
	} else {
		h.accountUsage(ctx, u, "Натальная карта: интерпретация", interp, usage)
		h.reply(chatID, interp, nil)
		h.reply(chatID, "Теперь можно просто разговаривать со мной — я учитываю вашу карту в каждом ответе. 💬", nil)
	}

	s.Clear()
	s.State = session.DialogActive
}

// abortFlow завершает сценарий после невосстановимой ошибки.
func (h *Handler) abortFlow(chatID int64, s *session.Session, scope string, err error) {
	h.reportError(scope, err, chatID)
	s.Clear()
	h.reply(chatID, "😔 Что-то пошло не так при расчёте. Попробуйте ещё раз чуть позже.", mainMenu())
}

func invalidInputPrompt(s session.State) string {
	switch s {
	case session.NatalDate, session.CompatDate:
		return "Не понимаю дату. Нужен формат ДД.ММ.ГГГГ, например 15.05.1990."
	case session.NatalCoordsChoice, session.CompatCoordsChoice, session.HoroCoordsChoice:
		return "Ответьте «Да» или «Нет»."
	case session.NatalCoords, session.CompatCoords, session.HoroCoords:
		return "Нужны координаты: широта, долгота. Например: 55.7558, 37.6173"
	}
	return "Не понимаю. Попробуйте ещё раз или вернитесь в меню."
}
