package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kirfitai/astrology-bot/internal/astro"
	"github.com/kirfitai/astrology-bot/internal/domain"
)

// StartScheduler запускает фоновые рассылки: ежедневные гороскопы каждые
// полчаса по слотам, ежемесячные первого числа, ночная зачистка подписок.
func (h *Handler) StartScheduler(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()

	jobs := []struct {
		spec string
		fn   func()
	}{
		{"0,30 * * * *", func() { h.deliverDailyHoroscopes(ctx) }},
		{"0 12 1 * *", func() { h.deliverMonthlyHoroscopes(ctx) }},
		{"30 0 * * *", func() { h.sweepExpiredSubscriptions(ctx) }},
	}
	for _, j := range jobs {
		if _, err := c.AddFunc(j.spec, j.fn); err != nil {
			return nil, fmt.Errorf("schedule %q: %w", j.spec, err)
		}
	}

	c.Start()
	h.log.Info().Msg("scheduler started")
	return c, nil
}

func (h *Handler) deliverDailyHoroscopes(ctx context.Context) {
	now := time.Now()
	slot := fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute()-now.Minute()%30)

	users, err := h.users.UsersDueForHoroscope(ctx, slot)
	if err != nil {
		h.log.Error().Err(err).Str("slot", slot).Msg("load horoscope recipients")
		return
	}
	if len(users) == 0 {
		return
	}
	h.log.Info().Str("slot", slot).Int("users", len(users)).Msg("delivering daily horoscopes")

	for _, u := range users {
		if err := h.deliverDaily(ctx, u, now); err != nil {
			h.log.Error().Err(err).Int64("telegram_id", u.TelegramID).Msg("daily horoscope")
		}
	}
}

func (h *Handler) deliverDaily(ctx context.Context, u *domain.User, now time.Time) error {
	if !u.HasChart() || u.HoroscopeLat == nil || u.HoroscopeLon == nil {
		return nil
	}
	sky, err := h.currentSky(now.UTC(), *u.HoroscopeLat, *u.HoroscopeLon)
	if err != nil {
		return err
	}

	premium := u.IsPaid(now)
	text, usage, err := h.gen.DailyHoroscope(ctx, *u.NatalChart, sky, premium)
	if err != nil {
		return err
	}
	h.accountUsage(ctx, u, "Ежедневный гороскоп", text, usage)

	if _, err := h.horoscopes.Add(ctx, u.TelegramID, domain.HoroscopeDaily, text); err != nil {
		h.log.Warn().Err(err).Msg("archive daily horoscope")
	}
	h.reply(u.TelegramID, "🌟 Ваш гороскоп на сегодня\n\n"+text, nil)
	return nil
}

func (h *Handler) deliverMonthlyHoroscopes(ctx context.Context) {
	now := time.Now()
	users, err := h.users.AllWithChart(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("load monthly recipients")
		return
	}
	h.log.Info().Int("users", len(users)).Msg("delivering monthly horoscopes")

	for _, u := range users {
		lat, lon := 0.0, 0.0
		switch {
		case u.HoroscopeLat != nil && u.HoroscopeLon != nil:
			lat, lon = *u.HoroscopeLat, *u.HoroscopeLon
		case u.Latitude != nil && u.Longitude != nil:
			lat, lon = *u.Latitude, *u.Longitude
		}
		sky, err := h.currentSky(now.UTC(), lat, lon)
		if err != nil {
			h.log.Error().Err(err).Int64("telegram_id", u.TelegramID).Msg("monthly sky")
			continue
		}
		text, usage, err := h.gen.MonthlyHoroscope(ctx, *u.NatalChart, sky, u.IsPaid(now))
		if err != nil {
			h.log.Error().Err(err).Int64("telegram_id", u.TelegramID).Msg("monthly horoscope")
			continue
		}
		h.accountUsage(ctx, u, "Ежемесячный гороскоп", text, usage)
		if _, err := h.horoscopes.Add(ctx, u.TelegramID, domain.HoroscopeMonthly, text); err != nil {
			h.log.Warn().Err(err).Msg("archive monthly horoscope")
		}
		h.reply(u.TelegramID, "🗓 Ваш гороскоп на месяц\n\n"+text, nil)
	}
}

func (h *Handler) currentSky(utc time.Time, lat, lon float64) (string, error) {
	positions, err := h.eph.Positions(utc, lat, lon)
	if err != nil {
		return "", err
	}
	return astro.FormatPositions(positions), nil
}

func (h *Handler) sweepExpiredSubscriptions(ctx context.Context) {
	n, err := h.users.DemoteAllExpired(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("expire subscriptions")
		return
	}
	if n > 0 {
		h.log.Info().Int64("demoted", n).Msg("expired subscriptions demoted")
	}
}
