package archive

import (
	"fmt"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	contractx "github.com/tanpawarit/smart-dfd-agent/agent/contract"
)

// Counter backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendUpstash  = "upstash"
	BackendPostgres = "postgres"
)

type Config struct {
	OutputDir      string `split_words:"true" default:"outputs"`
	ArchiveDir     string `split_words:"true" default:"archive"`
	CounterFile    string `split_words:"true" default:"counter.txt"`
	CounterBackend string `split_words:"true" default:"file"`
	// Index records every run in Postgres in addition to the files.
	Index    bool `split_words:"true" default:"false"`
	Notify   bool `split_words:"true" default:"false"`
	Document bool `split_words:"true" default:"false"`
}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.ArchiveDir, validation.Required),
		validation.Field(&c.CounterFile, validation.Required),
		validation.Field(&c.CounterBackend, validation.Required,
			validation.In(BackendFile, BackendRedis, BackendUpstash, BackendPostgres)),
	)
	if err != nil {
		return fmt.Errorf("%w: archive config: %v", contractx.ErrValidation, err)
	}
	return nil
}

// CounterPath is where the file backend keeps the run counter.
func (c Config) CounterPath() string {
	return filepath.Join(c.ArchiveDir, c.CounterFile)
}
