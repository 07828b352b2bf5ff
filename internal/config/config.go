package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/kirfitai/astrology-bot/internal/domain"
)

type Config struct {
	BotToken    string
	DatabaseURL string

	OpenAIKey     string
	OpenAIModel   string
	MaxTokens     int
	CostPer1000   float64 // USD за 1000 токенов
	MaxMessages   int     // ёмкость истории диалога
	FreeMessages  int     // стартовый лимит бесплатных сообщений
	PreviewChars  int     // обрезка анализа совместимости на free-плане
	UnlockStars   int     // цена разблокировки одного анализа
	StarsPerUSD   float64
	PlanPrices    map[domain.Plan]float64
	HoroscopeTime string // время доставки по умолчанию
	EphePath      string
	LogLevel      string
	AdminChatID   int64 // куда слать эскалации повторяющихся ошибок; 0 = выключено
}

func MustLoad() Config {
	// .env необязателен: в проде переменные приходят из окружения
	_ = godotenv.Load()

	bt := os.Getenv("BOT_TOKEN")
	if bt == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	oak := os.Getenv("OPENAI_API_KEY")
	if oak == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}

	return Config{
		BotToken:    bt,
		DatabaseURL: dsn,
		OpenAIKey:   oak,
		OpenAIModel: envStr("OPENAI_MODEL", "gpt-4o"),
		MaxTokens:   envInt("MAX_TOKENS", 2000),
		CostPer1000: envFloat("COST_PER_1000_TOKENS", 0.002),
		MaxMessages: envInt("MAX_MESSAGES", 10),
		FreeMessages: envInt("FREE_MESSAGES_LIMIT", 10),
		PreviewChars: envInt("PREVIEW_CHARS", 150),
		UnlockStars:  envInt("UNLOCK_STARS", 90),
		StarsPerUSD:  envFloat("TG_STARS_MULTIPLIER", 50),
		PlanPrices: map[domain.Plan]float64{
			domain.PlanWeek:    envFloat("PRICE_1_WEEK", 1.99),
			domain.PlanMonth:   envFloat("PRICE_1_MONTH", 4.99),
			domain.PlanQuarter: envFloat("PRICE_3_MONTH", 9.99),
			domain.PlanYear:    envFloat("PRICE_1_YEAR", 29.99),
		},
		HoroscopeTime: envStr("DEFAULT_HOROSCOPE_TIME", "08:00"),
		EphePath:      envStr("EPHE_PATH", "ephemeris/"),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		AdminChatID:   int64(envInt("ADMIN_CHAT_ID", 0)),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
