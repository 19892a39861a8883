package runnode

import (
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

func WriteReport(in *GraphState, archiver Archiver) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	rec, err := archiver.WriteReport(in.Identity, in.Request, in.Raw.Elapsed, in.Parsed)
	if err != nil {
		return nil, err
	}
	in.Record = rec
	return in, nil
}
