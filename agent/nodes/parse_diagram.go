package runnode

import (
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/tanpawarit/smart-dfd-agent/agent/diagram"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// ParseDiagram splits the raw response and canonicalizes the graph body.
func ParseDiagram(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	parsed := diagram.Split(in.Raw.Text)
	parsed.GraphBody = diagram.Normalize(parsed.GraphBody)
	in.Parsed = parsed

	if !parsed.MarkerFound {
		logx.Warn().Msg("trust boundary breakdown not found in response")
	}
	return in, nil
}
