package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docsect/internal/typography"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Pathstore connection. Publishing is skipped when PublishSections is off.
	PathstoreURL    string
	PathstoreAPIKey string
	PublishSections bool

	// Auth
	DocsectAPIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentStore int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL      time.Duration
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Output
	Typography typography.Config
	TOCAnchors bool
	LogLevel   string
}

// Load reads configuration from the environment. A .env file in the working
// directory or one of its parents is loaded first; variables already set
// take precedence.
func Load() Config {
	loadDotEnv()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		PublishSections: envBool("PUBLISH_SECTIONS", false),

		DocsectAPIKey: os.Getenv("DOCSECT_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentStore: envInt("MAX_CONCURRENT_STORE", 10),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		Typography: typographyConfig(envOr("TYPOGRAPHY_LOCALE", "en"), os.Getenv("TYPOGRAPHY_RULES")),
		TOCAnchors: envBool("TOC_ANCHORS", true),
		LogLevel:   envOr("LOG_LEVEL", "info"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentStore <= 0 {
		cfg.MaxConcurrentStore = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocsectAPIKey == "" {
		return fmt.Errorf("DOCSECT_API_KEY is required")
	}
	if c.PublishSections && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PUBLISH_SECTIONS is set")
	}
	if _, err := typography.New(c.Typography); err != nil {
		return fmt.Errorf("typography: %w", err)
	}
	return nil
}

// typographyConfig enables every rule unless rules is a comma-separated
// subset such as "quotes,dash".
func typographyConfig(locale, rules string) typography.Config {
	cfg := typography.DefaultConfig(locale)
	if strings.TrimSpace(rules) == "" {
		return cfg
	}
	cfg.Rules = nil
	for _, name := range strings.Split(rules, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.Rules = append(cfg.Rules, typography.Rule{Name: name, Enabled: true})
		}
	}
	return cfg
}

func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for range 5 {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
