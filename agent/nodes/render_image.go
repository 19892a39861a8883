package runnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// RenderImage never fails the run; a render error is kept on the state.
func RenderImage(ctx context.Context, in *GraphState, renderer contractx.Renderer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if renderer == nil {
		in.RenderErr = fmt.Errorf("%w: no renderer configured", contractx.ErrRender)
		return in, nil
	}

	path, err := renderer.Render(ctx, in.Parsed.GraphBody)
	if err != nil {
		logx.Warn().Err(err).Str("run", in.Identity.BaseName()).Msg("dfd image not rendered")
		in.RenderErr = err
		return in, nil
	}
	in.ImagePath = path
	return in, nil
}
