package runnode

import (
	"fmt"
	"time"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

func FinalizeResult(in *GraphState, nowFn func() time.Time) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	return GraphOutput{
		Identity:    in.Identity,
		Parsed:      in.Parsed,
		Elapsed:     in.Raw.Elapsed,
		Total:       nowFn().Sub(in.Started),
		Record:      in.Record,
		RenderErr:   in.RenderErr,
		ImageErr:    in.ImageErr,
		DocumentErr: in.DocumentErr,
		IndexErr:    in.IndexErr,
	}, nil
}
