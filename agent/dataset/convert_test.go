package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	in := `[
	  {"input": "A mobile app sends data to an IoT Gateway", "output": "digraph { n1 -> n2 [label=\"data\"]; }"},
	  {"input": "ระบบ <IoT> & Azure", "output": "• Azure Storage → DataStore"}
	]`

	var out bytes.Buffer
	n, err := Convert(strings.NewReader(in), &out)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Convert() = %d records, want 2", n)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d:\n%s", len(lines), out.String())
	}

	want0 := `{"messages":[{"role":"user","content":"A mobile app sends data to an IoT Gateway"},{"role":"assistant","content":"digraph { n1 -> n2 [label=\"data\"]; }"}]}`
	if lines[0] != want0 {
		t.Fatalf("line 0 = %s\nwant   %s", lines[0], want0)
	}
	want1 := `{"messages":[{"role":"user","content":"ระบบ <IoT> & Azure"},{"role":"assistant","content":"• Azure Storage → DataStore"}]}`
	if lines[1] != want1 {
		t.Fatalf("line 1 = %s\nwant   %s", lines[1], want1)
	}
}

func TestConvertRejectsIncompleteExample(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	n, err := Convert(strings.NewReader(`[{"input":"a","output":"b"},{"input":"only input"}]`), &out)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Convert() error = %v, want ErrValidation", err)
	}
	if n != 1 {
		t.Fatalf("Convert() = %d, want 1 record before the failure", n)
	}
}

func TestConvertRejectsNonArray(t *testing.T) {
	t.Parallel()

	if _, err := Convert(strings.NewReader(`{"input":"a"}`), &bytes.Buffer{}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("Convert() error = %v, want ErrValidation", err)
	}
}

func TestConvertFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "raw_examples_final.json", []byte(`[{"input":"x","output":"y"}]`), 0o644); err != nil {
		t.Fatalf("seed input: %v", err)
	}

	n, err := ConvertFile(fs, "raw_examples_final.json", "fine_tune.jsonl")
	if err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("ConvertFile() = %d", n)
	}
	got, _ := afero.ReadFile(fs, "fine_tune.jsonl")
	if string(got) != `{"messages":[{"role":"user","content":"x"},{"role":"assistant","content":"y"}]}`+"\n" {
		t.Fatalf("output = %q", got)
	}

	if _, err := ConvertFile(fs, "missing.json", "out.jsonl"); !errors.Is(err, contractx.ErrStorage) {
		t.Fatalf("ConvertFile() error = %v, want ErrStorage", err)
	}
}
