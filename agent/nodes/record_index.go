package runnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// RecordIndex hands the finished record to every index. Failures are kept on
// the state; the archived files are already in place.
func RecordIndex(ctx context.Context, in *GraphState, indexes ...contractx.ArchiveIndex) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	var errs []error
	for _, index := range indexes {
		if err := index.Record(ctx, in.Record); err != nil {
			logx.Warn().Err(err).Str("run", in.Identity.BaseName()).Msg("archive index not updated")
			errs = append(errs, err)
		}
	}
	in.IndexErr = errors.Join(errs...)
	return in, nil
}
