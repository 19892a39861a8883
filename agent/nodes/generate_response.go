package runnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

func GenerateResponse(ctx context.Context, in *GraphState, gen contractx.Generator) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	raw, err := gen.Generate(ctx, in.Request)
	if err != nil {
		return nil, err
	}
	in.Raw = raw

	logx.Info().Dur("elapsed", raw.Elapsed).Int("chars", len(raw.Text)).Msg("dfd generated")
	return in, nil
}
