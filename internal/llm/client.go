package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Message — одна реплика истории диалога.
type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Generator — то, что хендлерам нужно от языковой модели.
type Generator interface {
	NatalInterpretation(ctx context.Context, chart string) (string, Usage, error)
	CompatibilityAnalysis(ctx context.Context, userChart, partnerChart, aspects, relationship string) (string, Usage, error)
	DailyHoroscope(ctx context.Context, natalChart, currentSky string, premium bool) (string, Usage, error)
	MonthlyHoroscope(ctx context.Context, natalChart, forecastSky string, premium bool) (string, Usage, error)
	Dialog(ctx context.Context, systemPrompt string, history []Message, userMessage string) (string, Usage, error)
	Cost(u Usage) float64
}

type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	costPer1000 float64
}

func New(apiKey, model string, maxTokens int, costPer1000 float64) *Client {
	return &Client{
		api:         openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		costPer1000: costPer1000,
	}
}

// Cost — стоимость обмена в долларах по настроенной цене за 1000 токенов.
func (c *Client) Cost(u Usage) float64 {
	return float64(u.Total()) / 1000 * c.costPer1000
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage, maxTokens int) (string, Usage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, errors.New("chat completion: empty response")
	}
	usage := Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	return resp.Choices[0].Message.Content, usage, nil
}

func (c *Client) NatalInterpretation(ctx context.Context, chart string) (string, Usage, error) {
	system := "Ты профессиональный астролог с многолетним опытом. Проанализируй натальную карту пользователя и дай детальный разбор. " +
		"Опиши основные черты личности, сильные стороны, возможные вызовы и рекомендации для развития. " +
		"Если есть особые конфигурации, укажи их значение. Намекни, что это лишь часть картины."

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: "Натальная карта:\n" + chart},
	}, c.maxTokens)
}

func (c *Client) CompatibilityAnalysis(ctx context.Context, userChart, partnerChart, aspects, relationship string) (string, Usage, error) {
	system := "Ты профессиональный астролог с многолетним опытом. Проведи подробный анализ совместимости между двумя людьми. " +
		"Разбей анализ на категории: эмоциональная, интеллектуальная, карьерная и любовная совместимость. " +
		"Учитывай, что один из них — пользователь, а другой — партнёр. " +
		fmt.Sprintf("Партнёр указан как: %s.\n\n", relationship) +
		"Натальная карта пользователя:\n" + userChart + "\n\n" +
		"Натальная карта партнёра:\n" + partnerChart + "\n\n" +
		"Аспекты между картами:\n" + aspects + "\n\n" +
		"Для каждого аспекта совместимости укажи как положительные, так и проблемные стороны. " +
		"В конце дай общую оценку совместимости и рекомендации для улучшения отношений."

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}, c.maxTokens)
}

func (c *Client) DailyHoroscope(ctx context.Context, natalChart, currentSky string, premium bool) (string, Usage, error) {
	system := "Ты профессиональный астролог. На основе текущего положения планет и натальной карты пользователя, " +
		"составь персонализированный гороскоп на сегодня."
	maxTokens := c.maxTokens
	if premium {
		system += " Это премиум гороскоп, поэтому сделай его более подробным и детальным. " +
			"Включи секции: общий настрой дня, работа и карьера, любовь и отношения, " +
			"здоровье и самочувствие, финансы, а также рекомендации на день."
	} else {
		system += " Это базовый гороскоп, поэтому сделай его кратким и информативным. " +
			"Включи общий настрой дня, основную сферу внимания и один главный совет."
		maxTokens /= 2
	}
	system += "\n\nНатальная карта пользователя:\n" + natalChart +
		"\n\nПоложение планет сегодня:\n" + currentSky

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}, maxTokens)
}

func (c *Client) MonthlyHoroscope(ctx context.Context, natalChart, forecastSky string, premium bool) (string, Usage, error) {
	system := "Ты профессиональный астролог. На основе положения планет и натальной карты пользователя, " +
		"составь персонализированный гороскоп на месяц."
	maxTokens := c.maxTokens
	if premium {
		system += " Это премиум гороскоп: раздели его на недели, для каждой укажи общий настрой, " +
			"работу, отношения, здоровье и финансы. В конце добавь благоприятные дни месяца."
	} else {
		system += " Это базовый гороскоп: общие тенденции месяца, ключевые даты и главные сферы внимания."
		maxTokens /= 2
	}
	system += "\n\nНатальная карта пользователя:\n" + natalChart +
		"\n\nПоложение планет на 1 число месяца:\n" + forecastSky

	return c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}, maxTokens)
}

func (c *Client) Dialog(ctx context.Context, systemPrompt string, history []Message, userMessage string) (string, Usage, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: systemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: userMessage,
	})
	return c.complete(ctx, messages, c.maxTokens)
}
