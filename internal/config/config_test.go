package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Extract.DetailSelector != "#detail-desc" {
		t.Errorf("expected detail selector '#detail-desc', got %q", cfg.Extract.DetailSelector)
	}
	if cfg.Report.TopK != 50 {
		t.Errorf("expected top_k 50, got %d", cfg.Report.TopK)
	}
	if cfg.Request.Delay.Std() != 2*time.Second {
		t.Errorf("expected 2s delay, got %v", cfg.Request.Delay.Std())
	}
	if cfg.Download.Timeout.Std() != 10*time.Second {
		t.Errorf("expected 10s download timeout, got %v", cfg.Download.Timeout.Std())
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
request:
  cookie: "a1=abc"
  delay: 500ms
report:
  top_k: 20
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Request.Delay.Std() != 500*time.Millisecond {
		t.Errorf("expected 500ms delay, got %v", cfg.Request.Delay.Std())
	}
	if cfg.Report.TopK != 20 {
		t.Errorf("expected top_k 20, got %d", cfg.Report.TopK)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Columns.Title != "笔记标题" {
		t.Errorf("expected default title column, got %q", cfg.Columns.Title)
	}
	if cfg.Request.Timeout.Std() != 15*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Request.Timeout.Std())
	}
}

func TestParseInvalidDuration(t *testing.T) {
	if _, err := parse([]byte("request:\n  delay: soon\n")); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Columns.Hashtags != "话题标签" {
		t.Errorf("expected hashtag column from file, got %q", cfg.Columns.Hashtags)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Report.KeywordsPerTitle != 3 {
		t.Errorf("expected 3 keywords per title, got %d", cfg.Report.KeywordsPerTitle)
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestHeaderSet(t *testing.T) {
	t.Setenv("TEST_NOTE_COOKIE", "from-env")
	r := Request{
		CookieEnv: "TEST_NOTE_COOKIE",
		UserAgent: "agent/1.0",
		Headers:   map[string]string{"Referer": "https://example.com"},
	}

	h := r.HeaderSet()
	if h["Cookie"] != "from-env" {
		t.Errorf("expected cookie from env, got %q", h["Cookie"])
	}
	if h["User-Agent"] != "agent/1.0" {
		t.Errorf("expected user agent, got %q", h["User-Agent"])
	}
	if h["Referer"] != "https://example.com" {
		t.Errorf("expected extra header, got %q", h["Referer"])
	}

	r.Cookie = "literal"
	if got := r.HeaderSet()["Cookie"]; got != "literal" {
		t.Errorf("expected literal cookie to win, got %q", got)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
