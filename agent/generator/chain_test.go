package generator

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

type fakeChatModel struct {
	response *schema.Message
	err      error
	seen     []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

func TestChainGeneratorGenerate(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{response: schema.AssistantMessage("  digraph { a -> b }\n", nil)}
	gen, err := NewChainGenerator(context.Background(), fake, "You draw DFDs.")
	if err != nil {
		t.Fatalf("NewChainGenerator() error = %v", err)
	}

	desc := `A service stores {"json": true} payloads in SQL Database`
	resp, err := gen.Generate(context.Background(), contractx.GenerationRequest{Description: desc})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Text != "digraph { a -> b }" {
		t.Fatalf("Text = %q", resp.Text)
	}

	if len(fake.seen) != 2 {
		t.Fatalf("model saw %d messages", len(fake.seen))
	}
	if fake.seen[0].Role != schema.System || fake.seen[0].Content != "You draw DFDs." {
		t.Fatalf("system message = %#v", fake.seen[0])
	}
	if fake.seen[1].Role != schema.User || fake.seen[1].Content != desc {
		t.Fatalf("user message = %#v", fake.seen[1])
	}
}

func TestChainGeneratorModelFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{err: errors.New("quota exceeded")}
	gen, err := NewChainGenerator(context.Background(), fake, "You draw DFDs.")
	if err != nil {
		t.Fatalf("NewChainGenerator() error = %v", err)
	}

	if _, err := gen.Generate(context.Background(), contractx.GenerationRequest{Description: "x"}); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Generate() error = %v, want ErrModelInvoke", err)
	}
}

func TestNewChainGeneratorValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewChainGenerator(context.Background(), nil, "p"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("nil model error = %v", err)
	}
	if _, err := NewChainGenerator(context.Background(), &fakeChatModel{}, ""); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("empty prompt error = %v", err)
	}
}
