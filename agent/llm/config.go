package llm

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	geminix "github.com/tanpawarit/smart-dfd-agent/pkg/gemini"
	openaix "github.com/tanpawarit/smart-dfd-agent/pkg/openai"
)

// Providers.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

const DefaultModel = "ft:gpt-4.1-2025-04-14:personal::ByG2Ij7V"

type Config struct {
	Provider           string        `envconfig:"PROVIDER" split_words:"true" default:"openai"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"ft:gpt-4.1-2025-04-14:personal::ByG2Ij7V"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"0"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.4"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"120s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Provider, validation.Required,
			validation.In(ProviderOpenAI, ProviderOpenRouter, ProviderGemini)),
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxCompletionToken, validation.Min(0)),
		validation.Field(&c.Temperature, validation.Min(float32(0)), validation.Max(float32(2))),
	)
	if err != nil {
		return fmt.Errorf("%w: llm config: %v", contractx.ErrValidation, err)
	}
	return nil
}

func (c Config) provider() string {
	return strings.ToLower(strings.TrimSpace(c.Provider))
}

// OpenAI returns the endpoint settings for the openai and openrouter providers.
func (c Config) OpenAI() openaix.Config {
	baseURL := strings.TrimSpace(c.BaseURL)
	if baseURL == "" {
		baseURL = openaix.DefaultBaseURL
		if c.provider() == ProviderOpenRouter {
			baseURL = openaix.OpenRouterBaseURL
		}
	}

	var maxTokens *int
	if c.MaxCompletionToken > 0 {
		n := c.MaxCompletionToken
		maxTokens = &n
	}

	return openaix.Config{
		BaseURL:            baseURL,
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: maxTokens,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) Gemini() geminix.Config {
	return geminix.Config{
		APIKey:      strings.TrimSpace(c.APIKey),
		BaseURL:     strings.TrimSpace(c.BaseURL),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: c.Temperature,
	}
}
