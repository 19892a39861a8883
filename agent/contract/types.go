package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DateStampLayout = "2006-01-02"

type GenerationRequest struct {
	Description string `json:"description"`
}

type RawResponse struct {
	Text    string        `json:"text"`
	Elapsed time.Duration `json:"elapsed"`
}

type ParsedDiagram struct {
	GraphBody string `json:"graph_body"`
	Breakdown string `json:"breakdown"`
	// MarkerFound is false when the breakdown is the not-found sentinel.
	MarkerFound bool `json:"marker_found"`
}

type NodeDeclaration struct {
	ID    string
	Label string
}

type RunIdentity struct {
	DateStamp string `json:"date_stamp"`
	Sequence  int    `json:"sequence"`
}

// BaseName is shared by every artifact of one run, e.g. 2025-06-01System07.
func (r RunIdentity) BaseName() string {
	return fmt.Sprintf("%sSystem%02d", r.DateStamp, r.Sequence)
}

func (r RunIdentity) String() string {
	return r.BaseName()
}

type ArchiveRecord struct {
	ID                uuid.UUID     `json:"id"`
	Identity          RunIdentity   `json:"identity"`
	Description       string        `json:"description"`
	Elapsed           time.Duration `json:"elapsed"`
	OutputReportPath  string        `json:"output_report_path"`
	ArchiveReportPath string        `json:"archive_report_path"`
	ImagePath         string        `json:"image_path,omitempty"`
	DocumentPath      string        `json:"document_path,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// HasImage reports whether the rendered image reached the archive.
func (r ArchiveRecord) HasImage() bool {
	return r.ImagePath != ""
}
