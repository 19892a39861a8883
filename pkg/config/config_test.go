package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	OutputDir string        `split_words:"true" default:"outputs"`
	Model     string        `split_words:"true" required:"true"`
	Timeout   time.Duration `split_words:"true" default:"30s"`
}

func TestNewReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "CFGTEST_MODEL=gpt-test\nCFGTEST_TIMEOUT=5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	SetEnvFile(path)
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGTEST_MODEL")
		_ = os.Unsetenv("CFGTEST_TIMEOUT")
	})

	cfg, err := New[sampleConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Model != "gpt-test" {
		t.Fatalf("Model = %q", cfg.Model)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if cfg.OutputDir != "outputs" {
		t.Fatalf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestNewKeepsExistingEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGKEEP_MODEL=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("CFGKEEP_MODEL", "from-env")
	SetEnvFile(path)
	t.Cleanup(func() { SetEnvFile("") })

	cfg, err := New[sampleConfig]("CFGKEEP")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Model != "from-env" {
		t.Fatalf("Model = %q, want from-env", cfg.Model)
	}
}

func TestNewMissingRequired(t *testing.T) {
	SetEnvFile("")
	if _, err := New[sampleConfig]("CFGMISSING"); err == nil {
		t.Fatal("expected error for missing required field")
	}
}
