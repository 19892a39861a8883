package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// SDKGenerator sends one chat completion request through the OpenAI SDK.
type SDKGenerator struct {
	client      *openaisdk.Client
	model       string
	system      string
	temperature float64
	maxTokens   int64
	now         func() time.Time
}

var _ contractx.Generator = (*SDKGenerator)(nil)

type SDKOption func(*SDKGenerator)

func WithMaxTokens(n int) SDKOption {
	return func(g *SDKGenerator) {
		if n > 0 {
			g.maxTokens = int64(n)
		}
	}
}

func NewSDKGenerator(client *openaisdk.Client, model, systemPrompt string, temperature float32, opts ...SDKOption) (*SDKGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is empty", contractx.ErrPromptMissing)
	}

	g := &SDKGenerator{
		client:      client,
		model:       strings.TrimSpace(model),
		system:      systemPrompt,
		temperature: float64(temperature),
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

func (g *SDKGenerator) Generate(ctx context.Context, req contractx.GenerationRequest) (contractx.RawResponse, error) {
	if strings.TrimSpace(req.Description) == "" {
		return contractx.RawResponse{}, contractx.ErrEmptyDescription
	}

	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(g.system),
			openaisdk.UserMessage(req.Description),
		},
		Temperature: openaisdk.Float(g.temperature),
	}
	if g.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(g.maxTokens)
	}

	start := g.now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	elapsed := g.now().Sub(start)
	if err != nil {
		logx.Error().Err(err).Str("model", g.model).Dur("elapsed", elapsed).Msg("chat completion failed")
		return contractx.RawResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.RawResponse{}, fmt.Errorf("%w: response has no choices", contractx.ErrModelInvoke)
	}

	logx.Debug().
		Str("model", g.model).
		Dur("elapsed", elapsed).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Msg("chat completion finished")

	return contractx.RawResponse{
		Text:    strings.TrimSpace(resp.Choices[0].Message.Content),
		Elapsed: elapsed,
	}, nil
}
