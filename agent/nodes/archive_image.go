package runnode

import (
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// ArchiveImage copies the rendered image next to the archived report. A
// missing image is recorded on the state; other I/O errors fail the run.
func ArchiveImage(in *GraphState, archiver Archiver, fallbackPath string) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	src := in.ImagePath
	if src == "" {
		src = fallbackPath
	}
	if in.RenderErr != nil || src == "" {
		in.ImageErr = fmt.Errorf("%w: nothing rendered for %s", contractx.ErrImageMissing, in.Identity.BaseName())
		return in, nil
	}

	if err := archiver.ArchiveImage(&in.Record, src); err != nil {
		if errors.Is(err, contractx.ErrImageMissing) {
			logx.Warn().Str("run", in.Identity.BaseName()).Str("path", src).Msg("rendered image missing, archive is text only")
			in.ImageErr = err
			return in, nil
		}
		return nil, err
	}
	return in, nil
}
