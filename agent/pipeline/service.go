package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	nodex "github.com/tanpawarit/smart-dfd-agent/agent/nodes"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

// RunResult is the outcome of one generation run.
type RunResult = nodex.GraphOutput

type Option func(*Service)

// WithDocuments enables the per-run HTML document.
func WithDocuments(docs contractx.DocumentWriter) Option {
	return func(s *Service) {
		s.documents = docs
	}
}

// WithIndex records every finished run in index. It may be given more
// than once.
func WithIndex(index contractx.ArchiveIndex) Option {
	return func(s *Service) {
		if index != nil {
			s.indexes = append(s.indexes, index)
		}
	}
}

// WithImagePath sets where the renderer leaves its image when it does not
// report a path itself.
func WithImagePath(path string) Option {
	return func(s *Service) {
		s.imagePath = path
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service drives a description through generation, parsing, naming and
// archival.
type Service struct {
	generator contractx.Generator
	namer     nodex.IdentityMinter
	archiver  nodex.Archiver
	renderer  contractx.Renderer
	documents contractx.DocumentWriter
	indexes   []contractx.ArchiveIndex
	imagePath string

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	ctx context.Context,
	generator contractx.Generator,
	namer nodex.IdentityMinter,
	archiver nodex.Archiver,
	renderer contractx.Renderer,
	opts ...Option,
) (*Service, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if namer == nil {
		return nil, errors.New("namer is required")
	}
	if archiver == nil {
		return nil, errors.New("archiver is required")
	}

	s := &Service{
		generator: generator,
		namer:     namer,
		archiver:  archiver,
		renderer:  renderer,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	runner, err := s.compileRunGraph(ctx)
	if err != nil {
		return nil, err
	}
	s.graphRunner = runner
	return s, nil
}

// Run generates, canonicalizes and archives a diagram for description. An
// error means no report was written; a missing image is reported on the
// result instead.
func (s *Service) Run(ctx context.Context, description string) (RunResult, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{Description: description})
	if err != nil {
		return RunResult{}, err
	}

	logx.Info().
		Str("run", out.Identity.BaseName()).
		Dur("elapsed", out.Elapsed).
		Dur("total", out.Total).
		Bool("partial", out.Partial()).
		Str("report", out.Record.OutputReportPath).
		Msg("dfd run finished")
	return out, nil
}
