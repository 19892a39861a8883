package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/option"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/tanpawarit/smart-dfd-agent/agent/llm"
	openaix "github.com/tanpawarit/smart-dfd-agent/pkg/openai"
)

// New picks the generator for cfg.Provider. The openai provider calls the SDK
// directly; openrouter and gemini go through an eino chat model graph.
func New(ctx context.Context, cfg llm.Config, systemPrompt string, opts ...option.RequestOption) (contractx.Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case llm.ProviderOpenAI:
		client := openaix.NewClient(cfg.OpenAI(), opts...)
		return NewSDKGenerator(client, cfg.Model, systemPrompt, cfg.Temperature, WithMaxTokens(cfg.MaxCompletionToken))
	case llm.ProviderOpenRouter:
		oc := cfg.OpenAI()
		chatModel, err := oc.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		return NewChainGenerator(ctx, chatModel, systemPrompt)
	case llm.ProviderGemini:
		gc := cfg.Gemini()
		chatModel, err := gc.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		return NewChainGenerator(ctx, chatModel, systemPrompt)
	default:
		return nil, fmt.Errorf("%w: unknown llm provider %q", contractx.ErrValidation, cfg.Provider)
	}
}
