package runnode

import (
	"context"
	"time"

	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

// IdentityMinter hands out the identity of the next run.
type IdentityMinter interface {
	Next(ctx context.Context) (contractx.RunIdentity, error)
}

// Archiver persists the report text and copies the rendered image.
type Archiver interface {
	WriteReport(
		id contractx.RunIdentity,
		req contractx.GenerationRequest,
		elapsed time.Duration,
		parsed contractx.ParsedDiagram,
	) (contractx.ArchiveRecord, error)
	ArchiveImage(rec *contractx.ArchiveRecord, src string) error
}

type GraphInput struct {
	Description string
}

type GraphState struct {
	Request  contractx.GenerationRequest
	Started  time.Time
	Raw      contractx.RawResponse
	Parsed   contractx.ParsedDiagram
	Identity contractx.RunIdentity
	Record   contractx.ArchiveRecord

	ImagePath   string
	RenderErr   error
	ImageErr    error
	DocumentErr error
	IndexErr    error
}

// GraphOutput is the outcome of one run. Text artifacts always exist when a
// GraphOutput is returned; the *Err fields describe the optional steps that
// did not complete.
type GraphOutput struct {
	Identity contractx.RunIdentity
	Parsed   contractx.ParsedDiagram
	Elapsed  time.Duration
	Total    time.Duration
	Record   contractx.ArchiveRecord

	RenderErr   error
	ImageErr    error
	DocumentErr error
	IndexErr    error
}

// Partial reports whether the run finished without an archived image.
func (o GraphOutput) Partial() bool {
	return !o.Record.HasImage()
}
