package report

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

var testRun = contractx.RunIdentity{DateStamp: "2025-06-01", Sequence: 2}

func TestWriteDocumentEmbedsImage(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	img := []byte("\x89PNG\r\n\x1a\nfake")
	if err := afero.WriteFile(fs, "archive/2025-06-01System02.png", img, 0o644); err != nil {
		t.Fatalf("seed image: %v", err)
	}

	w := NewDocumentWriter(fs, "outputs")
	path, err := w.WriteDocument(testRun, "System Description:\n<script>alert(1)</script>", "archive/2025-06-01System02.png")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	if path != "outputs/2025-06-01System02.html" {
		t.Fatalf("path = %q", path)
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc := string(raw)

	if !strings.Contains(doc, "<h1>"+Title+"</h1>") {
		t.Fatalf("missing title:\n%s", doc)
	}
	if strings.Contains(doc, "<script>") {
		t.Fatalf("report text not escaped:\n%s", doc)
	}
	if !strings.Contains(doc, "&lt;script&gt;") {
		t.Fatalf("escaped report text missing:\n%s", doc)
	}
	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
	if !strings.Contains(doc, want) {
		t.Fatalf("image not embedded:\n%s", doc)
	}
	if !strings.Contains(doc, "page-break-before") {
		t.Fatal("diagram should start on its own page")
	}
}

func TestWriteDocumentSwallowsMissingImage(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	w := NewDocumentWriter(fs, "outputs")

	path, err := w.WriteDocument(testRun, "report body", "generated_dfd.png")
	if err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if strings.Contains(string(raw), "<img") {
		t.Fatalf("document should not reference an image:\n%s", raw)
	}
	if !strings.Contains(string(raw), "report body") {
		t.Fatalf("report text missing:\n%s", raw)
	}
}
