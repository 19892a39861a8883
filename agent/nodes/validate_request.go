package runnode

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, contractx.ErrEmptyDescription
	}

	return &GraphState{
		Request: contractx.GenerationRequest{Description: in.Description},
		Started: nowFn(),
	}, nil
}
