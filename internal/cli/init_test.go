package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/log"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{name: "debug level", level: "debug", wantDebug: true},
		{name: "info level", level: "info"},
		{name: "unknown level falls back to info", level: "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := SetupLogger(&config.Config{LogLevel: tt.level, LogFormat: "json"}, log.ComponentWorker)
			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if logger.Component() != log.ComponentWorker {
				t.Errorf("Component() = %q, want %q", logger.Component(), log.ComponentWorker)
			}
		})
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{
		DataBackend:      "sqlite",
		SQLiteDBPath:     filepath.Join(t.TempDir(), "nested", "finboard.db"),
		CategoryCacheTTL: time.Minute,
	}
	logger := log.New(log.Config{Level: slog.LevelError})

	repo, cleanup, err := OpenStore(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer cleanup()

	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	// Served twice: once from the database, once from the cache.
	for i := 0; i < 2; i++ {
		c, err := repo.FindSystemCategory(context.Background(), "Salary", core.IncomeCategory)
		if err != nil {
			t.Fatalf("FindSystemCategory() error = %v", err)
		}
		if !c.IsSystem {
			t.Errorf("category %q IsSystem = false", c.Name)
		}
	}
}
