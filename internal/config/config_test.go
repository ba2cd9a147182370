package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("QUIZ_MAX_WEEK", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Quiz.MaxWeek != 16 || cfg.Auth.CookieName != "quiz_session" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: "9090"
sqlite:
  path: /tmp/quiz.db
quiz:
  bank_path: bank.tex
  max_week: 12
auth:
  email_domain: example.org
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "postgres://quiz@db/quiz")
	t.Setenv("QUIZ_MAX_WEEK", "10")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port from file, got %q", cfg.Server.Port)
	}
	if cfg.SQLite.Path != "/tmp/quiz.db" || cfg.Quiz.BankPath != "bank.tex" || cfg.Auth.EmailDomain != "example.org" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Postgres.URL != "postgres://quiz@db/quiz" || cfg.Quiz.MaxWeek != 10 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.Auth.CookieName != "quiz_session" {
		t.Fatalf("defaults lost for unset keys: %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", d)
	}
	if d := TTLDuration("90s", time.Minute); d != 90*time.Second {
		t.Fatalf("expected 90s, got %v", d)
	}
}
