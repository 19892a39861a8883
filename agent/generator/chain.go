package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// ChainGenerator runs a prompt -> model graph against any eino chat model.
type ChainGenerator struct {
	runner compose.Runnable[map[string]any, *schema.Message]
	now    func() time.Time
}

var _ contractx.Generator = (*ChainGenerator)(nil)

func NewChainGenerator(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*ChainGenerator, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt is empty", contractx.ErrPromptMissing)
	}

	runner, err := compileGenerationGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, err
	}
	return &ChainGenerator{runner: runner, now: time.Now}, nil
}

func compileGenerationGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add generation prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add generation model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add generation edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add generation edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add generation edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("dfd.generation_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile generation graph: %w", err)
	}
	return runner, nil
}

func (g *ChainGenerator) Generate(ctx context.Context, req contractx.GenerationRequest) (contractx.RawResponse, error) {
	if strings.TrimSpace(req.Description) == "" {
		return contractx.RawResponse{}, contractx.ErrEmptyDescription
	}

	start := g.now()
	msg, err := g.runner.Invoke(ctx, map[string]any{"input": req.Description})
	elapsed := g.now().Sub(start)
	if err != nil {
		logx.Error().Err(err).Dur("elapsed", elapsed).Msg("generation graph failed")
		return contractx.RawResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.RawResponse{}, fmt.Errorf("%w: model returned no message", contractx.ErrModelInvoke)
	}

	return contractx.RawResponse{
		Text:    strings.TrimSpace(msg.Content),
		Elapsed: elapsed,
	}, nil
}
