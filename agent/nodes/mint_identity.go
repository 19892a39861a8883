package runnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

func MintIdentity(ctx context.Context, in *GraphState, namer IdentityMinter) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	id, err := namer.Next(ctx)
	if err != nil {
		return nil, err
	}
	in.Identity = id
	return in, nil
}
