package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/kirfitai/astrology-bot/internal/astro"
	"github.com/kirfitai/astrology-bot/internal/bot"
	"github.com/kirfitai/astrology-bot/internal/config"
	"github.com/kirfitai/astrology-bot/internal/db"
	"github.com/kirfitai/astrology-bot/internal/geo"
	"github.com/kirfitai/astrology-bot/internal/llm"
	"github.com/kirfitai/astrology-bot/internal/payment"
	"github.com/kirfitai/astrology-bot/internal/quota"
	"github.com/kirfitai/astrology-bot/internal/repo"
	"github.com/kirfitai/astrology-bot/internal/session"
)

func main() {
	cfg := config.MustLoad()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := db.MustConnect(ctx, cfg.DatabaseURL)
	defer pool.Close()
	if err := db.ApplyMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("telegram api")
	}
	log.Info().Str("username", api.Self.UserName).Msg("bot authorized")

	resolver, err := geo.NewNominatimResolver()
	if err != nil {
		log.Fatal().Err(err).Msg("geo resolver")
	}

	users := repo.NewUsers(pool)
	contacts := repo.NewContacts(pool)
	txs := repo.NewTransactions(pool)

	h := bot.NewHandler(bot.Deps{
		API:        api,
		Cfg:        cfg,
		Log:        log,
		Users:      users,
		Contacts:   contacts,
		Txs:        txs,
		Msgs:       repo.NewMessages(pool),
		Horoscopes: repo.NewHoroscopes(pool),
		Sessions:   session.NewManager(cfg.MaxMessages),
		Gate:       quota.NewGate(users, contacts, txs, cfg.PreviewChars),
		Resolver:   resolver,
		Eph:        astro.NewSwissEphemeris(cfg.EphePath),
		Gen:        llm.New(cfg.OpenAIKey, cfg.OpenAIModel, cfg.MaxTokens, cfg.CostPer1000),
		Pay:        payment.NewService(txs, users, cfg.PlanPrices, cfg.StarsPerUSD, cfg.UnlockStars),
	})

	cronRunner, err := h.StartScheduler(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler")
	}
	defer cronRunner.Stop()

	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 30
	updates := api.GetUpdatesChan(updCfg)

	log.Info().Msg("listening for updates")
	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			// дать шанс долететь последним ответам
			time.Sleep(time.Second)
			log.Info().Msg("shutting down")
			return
		case upd := <-updates:
			go h.HandleUpdate(ctx, upd)
		}
	}
}
