package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	logx "github.com/tanpawarit/smart-dfd-agent/pkg/logger"
)

const header = "digraph DFD {\n" +
	"rankdir=LR;\n" +
	"splines=polyline;\n" +
	"nodesep=1.2;\n" +
	"ranksep=1.7;\n" +
	"graph [pad=\"0.5\", fontsize=12, fontname=\"Arial\"];\n" +
	"node [style=\"filled,rounded\", fillcolor=\"#f9f9f9\", fontsize=11, fontname=\"Arial\", margin=\"0.4,0.3\"];\n" +
	"edge [fontsize=10, fontname=\"Arial\", labelfontcolor=\"#333333\", color=black, penwidth=1.0];\n"

type Config struct {
	Binary     string `split_words:"true" default:"dot"`
	Format     string `split_words:"true" default:"png"`
	OutputPath string `split_words:"true" default:"generated_dfd.png"`
}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Binary, validation.Required),
		validation.Field(&c.Format, validation.Required, validation.In("png", "svg", "pdf", "jpg")),
		validation.Field(&c.OutputPath, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: graphviz config: %v", contractx.ErrValidation, err)
	}
	return nil
}

// Runner executes name with args, feeding stdin, and returns combined output.
type Runner func(ctx context.Context, name string, args []string, stdin string) ([]byte, error)

func execRunner(ctx context.Context, name string, args []string, stdin string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.CombinedOutput()
}

type Option func(*Graphviz)

func WithRunner(run Runner) Option {
	return func(g *Graphviz) {
		if run != nil {
			g.run = run
		}
	}
}

func WithFs(fs afero.Fs) Option {
	return func(g *Graphviz) {
		if fs != nil {
			g.fs = fs
		}
	}
}

// Graphviz renders graph bodies with the Graphviz dot binary.
type Graphviz struct {
	cfg Config
	run Runner
	fs  afero.Fs
}

var _ contractx.Renderer = (*Graphviz)(nil)

func New(cfg Config, opts ...Option) (*Graphviz, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Graphviz{
		cfg: cfg,
		run: execRunner,
		fs:  afero.NewOsFs(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// Source wraps body in the fixed DFD header. A body that still carries its
// own digraph wrapper is reduced to the text between the first '{' and the
// last '}'.
func Source(body string) string {
	if strings.Contains(body, "digraph") {
		start := strings.Index(body, "{")
		end := strings.LastIndex(body, "}")
		if start >= 0 && end > start {
			body = strings.TrimSpace(body[start+1 : end])
		}
	}
	return header + body + "\n}"
}

// Render writes the image to the configured output path. Any image left over
// from an earlier run is removed first.
func (g *Graphviz) Render(ctx context.Context, graphBody string) (string, error) {
	out := g.cfg.OutputPath
	if err := g.fs.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: remove stale image %s: %v", contractx.ErrRender, out, err)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := g.fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("%w: create %s: %v", contractx.ErrRender, dir, err)
		}
	}

	args := []string{"-T" + g.cfg.Format, "-o", out}
	output, err := g.run(ctx, g.cfg.Binary, args, Source(graphBody))
	if err != nil {
		logx.Warn().Err(err).Str("binary", g.cfg.Binary).Bytes("output", output).Msg("graphviz render failed")
		return "", fmt.Errorf("%w: %s: %v: %s", contractx.ErrRender, g.cfg.Binary, err, strings.TrimSpace(string(output)))
	}

	if ok, err := afero.Exists(g.fs, out); err != nil || !ok {
		return "", fmt.Errorf("%w: %s produced no image at %s", contractx.ErrRender, g.cfg.Binary, out)
	}

	logx.Debug().Str("path", out).Msg("dfd image rendered")
	return out, nil
}
