package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

const (
	reportExt = ".txt"
	imageExt  = ".png"
)

// Writer persists run artifacts into the output and archive directories.
// Nothing it writes is ever rewritten or removed.
type Writer struct {
	fs         afero.Fs
	outputDir  string
	archiveDir string
	now        func() time.Time
}

func NewWriter(fs afero.Fs, cfg Config) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Writer{
		fs:         fs,
		outputDir:  cfg.OutputDir,
		archiveDir: cfg.ArchiveDir,
		now:        time.Now,
	}
}

// Prepare creates the output and archive directories.
func (w *Writer) Prepare() error {
	for _, dir := range []string{w.outputDir, w.archiveDir} {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create %s: %v", contractx.ErrStorage, dir, err)
		}
	}
	return nil
}

// ComposeReport lays out the four report sections: elapsed time, original
// description, canonical graph body and breakdown.
func ComposeReport(req contractx.GenerationRequest, elapsed time.Duration, parsed contractx.ParsedDiagram) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Time taken to generate DFD: %.2f seconds\n\n", elapsed.Seconds())
	fmt.Fprintf(&b, "System Description:\n%s\n\n", strings.TrimSpace(req.Description))
	fmt.Fprintf(&b, "Generated DFD (DOT format):\n%s\n\n", parsed.GraphBody)
	fmt.Fprintf(&b, "%s\n", parsed.Breakdown)
	return b.String()
}

// WriteReport writes the same report bytes to the output and archive
// directories under the run's base name.
func (w *Writer) WriteReport(
	id contractx.RunIdentity,
	req contractx.GenerationRequest,
	elapsed time.Duration,
	parsed contractx.ParsedDiagram,
) (contractx.ArchiveRecord, error) {
	if err := w.Prepare(); err != nil {
		return contractx.ArchiveRecord{}, err
	}

	content := []byte(ComposeReport(req, elapsed, parsed))
	rec := contractx.ArchiveRecord{
		ID:                uuid.New(),
		Identity:          id,
		Description:       strings.TrimSpace(req.Description),
		Elapsed:           elapsed,
		OutputReportPath:  filepath.Join(w.outputDir, id.BaseName()+reportExt),
		ArchiveReportPath: filepath.Join(w.archiveDir, id.BaseName()+reportExt),
		CreatedAt:         w.now().UTC(),
	}

	for _, path := range []string{rec.OutputReportPath, rec.ArchiveReportPath} {
		if err := afero.WriteFile(w.fs, path, content, 0o644); err != nil {
			return contractx.ArchiveRecord{}, fmt.Errorf("%w: write report %s: %v", contractx.ErrStorage, path, err)
		}
	}

	logx.Info().
		Str("run", id.BaseName()).
		Str("output", rec.OutputReportPath).
		Str("archive", rec.ArchiveReportPath).
		Msg("report written")
	return rec, nil
}

// ArchiveImage copies the rendered image at src into the archive directory
// and records its path on rec. A missing src yields ErrImageMissing and
// leaves rec unchanged.
func (w *Writer) ArchiveImage(rec *contractx.ArchiveRecord, src string) error {
	in, err := w.fs.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", contractx.ErrImageMissing, src)
		}
		return fmt.Errorf("%w: open image %s: %v", contractx.ErrStorage, src, err)
	}
	defer in.Close()

	dst := filepath.Join(w.archiveDir, rec.Identity.BaseName()+imageExt)
	out, err := w.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", contractx.ErrStorage, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: copy image to %s: %v", contractx.ErrStorage, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", contractx.ErrStorage, dst, err)
	}

	rec.ImagePath = dst
	logx.Info().Str("run", rec.Identity.BaseName()).Str("image", dst).Msg("image archived")
	return nil
}
