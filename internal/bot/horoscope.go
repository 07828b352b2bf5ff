package bot

import (
	"context"
	"fmt"

	"github.com/kirfitai/astrology-bot/internal/astro"
	"github.com/kirfitai/astrology-bot/internal/domain"
	"github.com/kirfitai/astrology-bot/internal/session"
)

func (h *Handler) startHoroscope(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	if !u.HasChart() {
		h.reply(chatID, "Персональный гороскоп строится по натальной карте. Сначала рассчитайте её: «"+btnNatal+"».", mainMenu())
		return
	}
	s.Clear()
	s.State = session.HoroTime

	intro := "📅 Настроим ежедневный гороскоп."
	if u.HoroscopeTime != nil && u.HoroscopeCity != nil {
		intro = fmt.Sprintf("📅 Сейчас гороскоп приходит в %s (%s). Настроим заново.",
			*u.HoroscopeTime, *u.HoroscopeCity)
	}
	h.reply(chatID, intro+"\n\nВ какое время присылать? Например 08:00, или выберите период дня.", timePeriodsKeyboard())
}

func (h *Handler) horoStep(ctx context.Context, chatID int64, u *domain.User, s *session.Session, text string) {
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
	case session.HoroTime:
		s.Time = roundToHalfHour(astro.ParseTime(text))
		s.State = next
		h.reply(chatID, "🏙 В каком городе вы сейчас живёте? Это нужно для расчёта положения планет.", backButton())

	case session.HoroCity:
		loc, err := h.resolver.Resolve(ctx, text)
		if err != nil {
			h.log.Warn().Err(err).Str("place", text).Msg("geocode failed")
			h.reply(chatID, "Не удалось найти такое место. Попробуйте написать иначе.", nil)
			return
		}
		s.City, s.Lat, s.Lon, s.Timezone = loc.Address, loc.Lat, loc.Lon, loc.Timezone
		s.State = next
		h.reply(chatID, fmt.Sprintf(
			"📍 %s\nКоординаты: %.4f, %.4f\n\nУточнить координаты вручную?",
			loc.Address, loc.Lat, loc.Lon), yesNoKeyboard())

	case session.HoroCoordsChoice:
		if class == session.InputYes {
			s.State = next
			h.reply(chatID, "Введите координаты: широта, долгота.", backButton())
			return
		}
		h.finishHoroscopeSetup(ctx, chatID, u, s)

	case session.HoroCoords:
		lat, lon, _ := astro.ParseCoords(text)
		s.Lat, s.Lon = lat, lon
		h.finishHoroscopeSetup(ctx, chatID, u, s)
	}
}

func (h *Handler) finishHoroscopeSetup(ctx context.Context, chatID int64, u *domain.User, s *session.Session) {
	if err := h.users.UpdateHoroscopeSettings(ctx, u.TelegramID, s.Time, s.City, s.Lat, s.Lon); err != nil {
		h.abortFlow(chatID, s, "horoscope_settings", err)
		return
	}
	t, city, lat, lon := s.Time, s.City, s.Lat, s.Lon
	u.HoroscopeTime, u.HoroscopeCity, u.HoroscopeLat, u.HoroscopeLon = &t, &city, &lat, &lon

	h.reply(chatID, fmt.Sprintf("✅ Готово! Ежедневный гороскоп будет приходить в %s.", t), mainMenu())
	s.Clear()
	s.State = session.DialogActive
}

// roundToHalfHour приводит время к сетке доставки :00/:30.
func roundToHalfHour(hhmm string) string {
	var hh, mm int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &hh, &mm); err != nil {
		return hhmm
	}
	if mm >= 30 {
		mm = 30
	} else {
		mm = 0
	}
	return fmt.Sprintf("%02d:%02d", hh, mm)
}
