package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/tanpawarit/smart-dfd-agent/agent/archive"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
	"github.com/tanpawarit/smart-dfd-agent/agent/counter"
	"github.com/tanpawarit/smart-dfd-agent/agent/naming"
)

const azureResponse = "====================\n" +
	"digraph DFD {\n" +
	"  n1 [label=\"Mobile Application\", shape=box];\n" +
	"  n2 [label=\"IoT Gateway\", shape=ellipse];\n" +
	"  n3 [label=\"Azure Storage\", shape=ellipse];\n" +
	"  n1 -> n2 [label=\"sensor data\"];\n" +
	"  n1 -> n3 [label=\"data\"];\n" +
	"}\n" +
	"====================\n" +
	"Trust Boundaries Breakdown:\n" +
	"1. Azure Zone (Azure Zone):\n" +
	"   - Data Stores:\n" +
	"     • Azure Storage → DataStore\n"

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, req contractx.GenerationRequest) (contractx.RawResponse, error) {
	f.calls++
	if f.err != nil {
		return contractx.RawResponse{}, f.err
	}
	return contractx.RawResponse{Text: f.text, Elapsed: 1500 * time.Millisecond}, nil
}

type fakeRenderer struct {
	fs     afero.Fs
	err    error
	bodies []string
}

func (f *fakeRenderer) Render(ctx context.Context, graphBody string) (string, error) {
	f.bodies = append(f.bodies, graphBody)
	if f.err != nil {
		return "", f.err
	}
	if err := afero.WriteFile(f.fs, "generated_dfd.png", []byte("png:"+graphBody), 0o644); err != nil {
		return "", err
	}
	return "generated_dfd.png", nil
}

type fakeDocuments struct {
	report string
	image  string
}

func (f *fakeDocuments) WriteDocument(id contractx.RunIdentity, report string, imagePath string) (string, error) {
	f.report, f.image = report, imagePath
	return "outputs/" + id.BaseName() + ".html", nil
}

type fakeIndex struct {
	records []contractx.ArchiveRecord
	err     error
}

func (f *fakeIndex) Record(ctx context.Context, rec contractx.ArchiveRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type harness struct {
	fs       afero.Fs
	gen      *fakeGenerator
	renderer *fakeRenderer
	service  *Service
}

func newHarness(t *testing.T, gen *fakeGenerator, renderErr error, opts ...Option) *harness {
	t.Helper()

	fs := afero.NewMemMapFs()
	cfg := archive.Config{
		OutputDir:      "outputs",
		ArchiveDir:     "archive",
		CounterFile:    "counter.txt",
		CounterBackend: archive.BackendFile,
	}
	clock := func() time.Time { return time.Date(2025, time.June, 1, 9, 30, 0, 0, time.Local) }

	namer, err := naming.New(counter.NewFileStore(fs, cfg.CounterPath()), naming.WithClock(clock))
	if err != nil {
		t.Fatalf("naming.New() error = %v", err)
	}
	renderer := &fakeRenderer{fs: fs, err: renderErr}

	svc, err := New(context.Background(), gen, namer, archive.NewWriter(fs, cfg), renderer, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return &harness{fs: fs, gen: gen, renderer: renderer, service: svc}
}

func TestServiceRunAzureStorage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGenerator{text: azureResponse}, nil)

	res, err := h.service.Run(context.Background(), "A mobile app sends sensor data through an IoT gateway to Azure Storage.")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Identity.BaseName() != "2025-06-01System01" {
		t.Fatalf("identity = %s", res.Identity)
	}
	if res.Partial() {
		t.Fatalf("run should not be partial: %+v", res)
	}
	if !strings.Contains(res.Parsed.GraphBody, `n3 [label="Azure Storage", shape=cylinder];`) {
		t.Fatalf("graph body not normalized:\n%s", res.Parsed.GraphBody)
	}
	if strings.Contains(res.Parsed.GraphBody, "shape=ellipse") || strings.Contains(res.Parsed.GraphBody, "shape=box") {
		t.Fatalf("legacy shapes left:\n%s", res.Parsed.GraphBody)
	}
	if !strings.HasPrefix(res.Parsed.Breakdown, "Trust Boundaries Breakdown:\n1. Azure Zone") {
		t.Fatalf("breakdown = %q", res.Parsed.Breakdown)
	}

	if len(h.renderer.bodies) != 1 || h.renderer.bodies[0] != res.Parsed.GraphBody {
		t.Fatalf("renderer got %q", h.renderer.bodies)
	}

	primary, err := afero.ReadFile(h.fs, "outputs/2025-06-01System01.txt")
	if err != nil {
		t.Fatalf("read primary report: %v", err)
	}
	backup, err := afero.ReadFile(h.fs, "archive/2025-06-01System01.txt")
	if err != nil {
		t.Fatalf("read archive report: %v", err)
	}
	if string(primary) != string(backup) {
		t.Fatal("report copies differ")
	}
	if !strings.HasPrefix(string(primary), "Time taken to generate DFD: 1.50 seconds\n\nSystem Description:\nA mobile app") {
		t.Fatalf("unexpected report:\n%s", primary)
	}

	img, err := afero.ReadFile(h.fs, "archive/2025-06-01System01.png")
	if err != nil {
		t.Fatalf("read archived image: %v", err)
	}
	if string(img) != "png:"+res.Parsed.GraphBody {
		t.Fatalf("archived image = %q", img)
	}
}

func TestServiceRunRenderFailureIsPartial(t *testing.T) {
	t.Parallel()

	renderErr := errors.New("dot: syntax error")
	h := newHarness(t, &fakeGenerator{text: "digraph { a -> b }"}, renderErr)

	res, err := h.service.Run(context.Background(), "two boxes")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Partial() {
		t.Fatal("expected partial result")
	}
	if !errors.Is(res.RenderErr, renderErr) {
		t.Fatalf("RenderErr = %v", res.RenderErr)
	}
	if !errors.Is(res.ImageErr, contractx.ErrImageMissing) {
		t.Fatalf("ImageErr = %v, want ErrImageMissing", res.ImageErr)
	}
	if res.Parsed.Breakdown != "⚠ Trust boundary info not found." {
		t.Fatalf("breakdown = %q", res.Parsed.Breakdown)
	}
	if res.Parsed.GraphBody != "digraph { a -> b }" {
		t.Fatalf("graph body = %q", res.Parsed.GraphBody)
	}

	if ok, _ := afero.Exists(h.fs, "outputs/2025-06-01System01.txt"); !ok {
		t.Fatal("text report should exist")
	}
	if ok, _ := afero.Exists(h.fs, "archive/2025-06-01System01.png"); ok {
		t.Fatal("image should not be archived")
	}
}

func TestServiceRunSequentialNames(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeGenerator{text: azureResponse}, nil)

	want := []string{"2025-06-01System01", "2025-06-01System02"}
	for _, name := range want {
		res, err := h.service.Run(context.Background(), "same description")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Identity.BaseName() != name {
			t.Fatalf("identity = %s, want %s", res.Identity, name)
		}
	}

	raw, err := afero.ReadFile(h.fs, "archive/counter.txt")
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "2" {
		t.Fatalf("counter = %q", raw)
	}
}

func TestServiceRunEmptyDescription(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: azureResponse}
	h := newHarness(t, gen, nil)

	_, err := h.service.Run(context.Background(), "   ")
	if !errors.Is(err, contractx.ErrEmptyDescription) {
		t.Fatalf("Run() error = %v, want ErrEmptyDescription", err)
	}
	if gen.calls != 0 {
		t.Fatalf("generator called %d times", gen.calls)
	}
}

func TestServiceRunGenerationFailureKeepsCounter(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: contractx.ErrModelInvoke}
	h := newHarness(t, gen, nil)

	if _, err := h.service.Run(context.Background(), "anything"); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("Run() error = %v, want ErrModelInvoke", err)
	}
	if ok, _ := afero.Exists(h.fs, "archive/counter.txt"); ok {
		t.Fatal("counter should not advance when generation fails")
	}
}

func TestServiceRunDocumentAndIndex(t *testing.T) {
	t.Parallel()

	docs := &fakeDocuments{}
	index := &fakeIndex{}
	h := newHarness(t, &fakeGenerator{text: azureResponse}, nil, WithDocuments(docs), WithIndex(index))

	res, err := h.service.Run(context.Background(), "gateway")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Record.DocumentPath != "outputs/2025-06-01System01.html" {
		t.Fatalf("DocumentPath = %q", res.Record.DocumentPath)
	}
	if docs.image != "archive/2025-06-01System01.png" {
		t.Fatalf("document image = %q", docs.image)
	}
	if !strings.Contains(docs.report, "Generated DFD (DOT format):") {
		t.Fatalf("document report = %q", docs.report)
	}
	if len(index.records) != 1 || index.records[0].Identity != res.Identity {
		t.Fatalf("index records = %+v", index.records)
	}
	if index.records[0].DocumentPath != res.Record.DocumentPath {
		t.Fatal("index should see the document path")
	}
}

func TestServiceRunIndexFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	index := &fakeIndex{err: contractx.ErrStorage}
	h := newHarness(t, &fakeGenerator{text: azureResponse}, nil, WithIndex(index))

	res, err := h.service.Run(context.Background(), "gateway")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !errors.Is(res.IndexErr, contractx.ErrStorage) {
		t.Fatalf("IndexErr = %v", res.IndexErr)
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for missing generator")
	}
}
