package counter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

// FileStore keeps the counter as a plain-text integer in a single file.
// Load and Save are not locked: two processes sharing the file can read the
// same value and both write value+1.
type FileStore struct {
	fs   afero.Fs
	path string
}

var _ contractx.CounterStore = (*FileStore)(nil)

func NewFileStore(fs afero.Fs, path string) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileStore{fs: fs, path: path}
}

func (s *FileStore) Load(ctx context.Context) (int, bool, error) {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: read counter %s: %v", contractx.ErrStorage, s.path, err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s holds %q", contractx.ErrCounterCorrupt, s.path, truncate(string(raw), 32))
	}
	return value, true, nil
}

func (s *FileStore) Save(ctx context.Context, value int) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create counter dir: %v", contractx.ErrStorage, err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return fmt.Errorf("%w: write counter %s: %v", contractx.ErrStorage, s.path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
