package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/dgallion1/docfind/internal/highlight"
	"golang.org/x/net/html"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DOCFIND_CONFIG", "")
	t.Setenv("EXCLUDE_TAGS", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected session TTL 30m, got %s", cfg.SessionTTL)
	}
	if !slices.Equal(cfg.ExcludeTags, highlight.DefaultExcludedTags) {
		t.Errorf("expected default exclude tags, got %v", cfg.ExcludeTags)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCFIND_CONFIG", "")
	t.Setenv("EXCLUDE_TAGS", "code, pre ,aside")
	t.Setenv("EXCLUDE_HIDDEN", "false")
	t.Setenv("WORKER_COUNT", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"code", "pre", "aside"}; !slices.Equal(cfg.ExcludeTags, want) {
		t.Errorf("expected %v, got %v", want, cfg.ExcludeTags)
	}
	if cfg.ExcludeHidden {
		t.Error("expected EXCLUDE_HIDDEN=false to disable the hidden rule")
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected non-positive worker count to fall back to 4, got %d", cfg.WorkerCount)
	}

	t.Setenv("EXCLUDE_TAGS", "-")
	cfg, _ = Load()
	if len(cfg.ExcludeTags) != 0 {
		t.Errorf("expected \"-\" to clear exclude tags, got %v", cfg.ExcludeTags)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfind.yaml")
	data := []byte(`search:
  language: de
  incremental: false
  exclude:
    tags: [code, kbd]
    hidden: false
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCFIND_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SearchLanguage != "de" {
		t.Errorf("expected language de, got %q", cfg.SearchLanguage)
	}
	if cfg.Incremental {
		t.Error("expected incremental disabled by file")
	}
	if !slices.Equal(cfg.ExcludeTags, []string{"code", "kbd"}) {
		t.Errorf("unexpected exclude tags %v", cfg.ExcludeTags)
	}
	if cfg.ExcludeHidden {
		t.Error("expected hidden rule disabled by file")
	}
}

func TestLoad_YAMLUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("search:\n  regex: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCFIND_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{SearchLanguage: "und"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing API key to fail validation")
	}

	cfg.DocfindAPIKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.SearchLanguage = "not a tag!"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid language to fail validation")
	}
}

func TestConfig_Exclusion(t *testing.T) {
	hidden := &html.Node{Type: html.ElementNode, Data: "div", Attr: []html.Attribute{{Key: "hidden"}}}
	aside := &html.Node{Type: html.ElementNode, Data: "aside"}

	cfg := Config{ExcludeTags: []string{"aside"}, ExcludeHidden: true}
	if ex := cfg.Exclusion(); !ex(hidden) || !ex(aside) {
		t.Error("expected both hidden div and aside to be excluded")
	}

	cfg.ExcludeHidden = false
	if ex := cfg.Exclusion(); ex(hidden) || !ex(aside) {
		t.Error("expected only aside to be excluded without the hidden rule")
	}
}
