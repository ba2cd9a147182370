package cli

import (
	"strings"
	"testing"

	"adaptive-quiz-service/internal/config"
)

func TestMigrateRequiresPostgres(t *testing.T) {
	cfg := config.Default()
	cfg.Postgres.URL = ""
	cfg.SQLite.Path = ""
	if _, _, err := openMigrator(cfg); err == nil || !strings.Contains(err.Error(), "postgres url not configured") {
		t.Fatalf("expected missing postgres error, got %v", err)
	}

	cfg.SQLite.Path = "data/quiz.db"
	_, _, err := openMigrator(cfg)
	if err == nil || !strings.Contains(err.Error(), "sqlite at data/quiz.db") {
		t.Fatalf("expected sqlite hint, got %v", err)
	}
}

func TestMigrateFlags(t *testing.T) {
	path := ""
	cmd := NewMigrateCmd(&path)
	for _, name := range []string{"status", "rollback"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing --%s flag", name)
		}
	}
}
