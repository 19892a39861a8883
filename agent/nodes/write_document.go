package runnode

import (
	"fmt"

	"github.com/tanpawarit/smart-dfd-agent/agent/archive"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// WriteDocument is optional: a nil writer skips it and failures are kept on
// the state.
func WriteDocument(in *GraphState, docs contractx.DocumentWriter) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if docs == nil {
		return in, nil
	}

	report := archive.ComposeReport(in.Request, in.Raw.Elapsed, in.Parsed)
	path, err := docs.WriteDocument(in.Identity, report, in.Record.ImagePath)
	if err != nil {
		logx.Warn().Err(err).Str("run", in.Identity.BaseName()).Msg("document not written")
		in.DocumentErr = err
		return in, nil
	}
	in.Record.DocumentPath = path
	return in, nil
}
