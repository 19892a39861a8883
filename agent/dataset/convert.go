package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

// Example is one raw description -> diagram pair.
type Example struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

func (e Example) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Input, validation.Required),
		validation.Field(&e.Output, validation.Required),
	)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatEntry struct {
	Messages []message `json:"messages"`
}

// Convert reads a JSON array of examples from r and writes one chat-format
// fine-tuning record per line to w. It returns the number of records written.
func Convert(r io.Reader, w io.Writer) (int, error) {
	var examples []Example
	if err := json.NewDecoder(r).Decode(&examples); err != nil {
		return 0, fmt.Errorf("%w: decode examples: %v", contractx.ErrValidation, err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, ex := range examples {
		if err := ex.Validate(); err != nil {
			return i, fmt.Errorf("%w: example %d: %v", contractx.ErrValidation, i, err)
		}
		entry := chatEntry{Messages: []message{
			{Role: "user", Content: ex.Input},
			{Role: "assistant", Content: ex.Output},
		}}
		if err := enc.Encode(entry); err != nil {
			return i, fmt.Errorf("%w: write example %d: %v", contractx.ErrStorage, i, err)
		}
	}
	return len(examples), nil
}

// ConvertFile runs Convert from inputPath to outputPath on fs.
func ConvertFile(fs afero.Fs, inputPath, outputPath string) (int, error) {
	in, err := fs.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", contractx.ErrStorage, inputPath, err)
	}
	defer in.Close()

	out, err := fs.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: create %s: %v", contractx.ErrStorage, outputPath, err)
	}

	n, err := Convert(in, out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: close %s: %v", contractx.ErrStorage, outputPath, cerr)
	}
	return n, err
}
