package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

type Config struct {
	APIKey      string  `envconfig:"API_KEY" split_words:"true" required:"true"`
	BaseURL     string  `envconfig:"BASE_URL" split_words:"true"`
	Model       string  `envconfig:"MODEL" split_words:"true" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"MAX_TOKENS" split_words:"true" default:"4000"`
	Temperature float32 `envconfig:"TEMPERATURE" split_words:"true" default:"0.4"`
}

// NewChatModel creates a Gemini API client and wraps it as an eino chat model.
func (c *Config) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(c.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if c.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = c.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("error creating gemini client")
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	var maxTokens *int
	if c.MaxTokens > 0 {
		maxTokens = &c.MaxTokens
	}

	m, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       strings.TrimSpace(c.Model),
		Temperature: &c.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", c.Model).Msg("error creating gemini chat model")
		return nil, fmt.Errorf("gemini: create chat model: %w", err)
	}

	return m, nil
}
