package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docfind/internal/highlight"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	DocfindAPIKey string

	// Ingest worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job and session state
	JobTTL     time.Duration
	SessionTTL time.Duration

	// Search behaviour
	SearchLanguage string
	ExcludeTags    []string
	ExcludeHidden  bool
	Incremental    bool

	// PDF
	PDFFallbackPdftotext bool
}

// File is the optional YAML overlay named by DOCFIND_CONFIG.
type File struct {
	Search struct {
		Language    string `yaml:"language"`
		Incremental *bool  `yaml:"incremental"`
		Exclude     struct {
			Tags   []string `yaml:"tags"`
			Hidden *bool    `yaml:"hidden"`
		} `yaml:"exclude"`
	} `yaml:"search"`
}

func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocfindAPIKey: os.Getenv("DOCFIND_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 30*time.Minute),

		SearchLanguage: envOr("SEARCH_LANGUAGE", "und"),
		ExcludeTags:    envList("EXCLUDE_TAGS", highlight.DefaultExcludedTags),
		ExcludeHidden:  envBool("EXCLUDE_HIDDEN", true),
		Incremental:    envBool("INCREMENTAL", true),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if path := os.Getenv("DOCFIND_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := cfg.apply(data, path); err != nil {
			return cfg, err
		}
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}

	return cfg, nil
}

// apply overlays a YAML config file. Unknown keys are rejected.
func (c *Config) apply(data []byte, source string) error {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	if f.Search.Language != "" {
		c.SearchLanguage = f.Search.Language
	}
	if f.Search.Incremental != nil {
		c.Incremental = *f.Search.Incremental
	}
	if f.Search.Exclude.Tags != nil {
		c.ExcludeTags = f.Search.Exclude.Tags
	}
	if f.Search.Exclude.Hidden != nil {
		c.ExcludeHidden = *f.Search.Exclude.Hidden
	}
	return nil
}

func (c Config) Validate() error {
	if c.DocfindAPIKey == "" {
		return fmt.Errorf("DOCFIND_API_KEY is required")
	}
	if _, err := c.Language(); err != nil {
		return err
	}
	return nil
}

// Language parses SearchLanguage.
func (c Config) Language() (language.Tag, error) {
	tag, err := language.Parse(c.SearchLanguage)
	if err != nil {
		return language.Und, fmt.Errorf("invalid SEARCH_LANGUAGE %q: %w", c.SearchLanguage, err)
	}
	return tag, nil
}

// Exclusion builds the walker's exclusion predicate.
func (c Config) Exclusion() highlight.Exclusion {
	if c.ExcludeHidden {
		return highlight.AnyOf(highlight.ExcludeTags(c.ExcludeTags...), highlight.ExcludeHidden)
	}
	return highlight.ExcludeTags(c.ExcludeTags...)
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

// envList splits a comma-separated value. An empty variable keeps fallback;
// a variable holding only "-" yields an empty list.
func envList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	if strings.TrimSpace(v) == "-" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
