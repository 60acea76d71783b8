package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "WORKER_COUNT", "JOB_TTL", "TYPOGRAPHY_LOCALE", "TYPOGRAPHY_RULES", "PUBLISH_SECTIONS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected default port, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %v", cfg.JobTTL)
	}
	if cfg.Typography.Locale != "en" || len(cfg.Typography.Rules) != 4 {
		t.Errorf("unexpected typography defaults: %+v", cfg.Typography)
	}
	if cfg.PublishSections {
		t.Error("expected publishing off by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("JOB_TTL", "90s")
	t.Setenv("TYPOGRAPHY_RULES", "quotes, dash")
	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 90*time.Second {
		t.Errorf("expected 90s, got %v", cfg.JobTTL)
	}
	if len(cfg.Typography.Rules) != 2 || cfg.Typography.Rules[1].Name != "dash" {
		t.Errorf("unexpected rules: %+v", cfg.Typography.Rules)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCSECT_TEST_PORT_FROM_FILE=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(sub)
	t.Setenv("DOCSECT_TEST_PORT_FROM_FILE", "")
	os.Unsetenv("DOCSECT_TEST_PORT_FROM_FILE")

	Load()
	if got := os.Getenv("DOCSECT_TEST_PORT_FROM_FILE"); got != "1" {
		t.Errorf("expected .env in a parent directory to be loaded, got %q", got)
	}
	os.Unsetenv("DOCSECT_TEST_PORT_FROM_FILE")
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := Load()
	cfg.DocsectAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without API key")
	}
	cfg.DocsectAPIKey = "k"
	cfg.PublishSections = true
	cfg.PathstoreAPIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when publishing without a pathstore key")
	}
	cfg.PublishSections = false
	cfg.Typography.Rules = append(cfg.Typography.Rules, typographyConfig("en", "kerning").Rules...)
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown typography rule")
	}
}
