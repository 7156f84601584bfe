package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "tcgpulse")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Feed.BaseURL != "https://tcgcsv.com/tcgplayer" || cfg.Feed.CategoryID != 3 {
		t.Errorf("unexpected feed defaults: %+v", cfg.Feed)
	}
	if cfg.Sync.BatchSize != 50 {
		t.Errorf("expected default batch size 50, got %d", cfg.Sync.BatchSize)
	}
	if cfg.Sync.Delay != time.Second {
		t.Errorf("expected default delay 1s, got %s", cfg.Sync.Delay)
	}
	if cfg.Sync.CronSpec != "0 3 * * *" {
		t.Errorf("unexpected default cron spec: %s", cfg.Sync.CronSpec)
	}
	if !cfg.Sync.CutoffDate.IsZero() {
		t.Errorf("expected cutoff disabled by default, got %s", cfg.Sync.CutoffDate)
	}
}

func TestLoadCutoffDate(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_CUTOFF_DATE", "2023-01-01")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if !cfg.Sync.CutoffDate.Equal(want) {
		t.Errorf("expected cutoff %s, got %s", want, cfg.Sync.CutoffDate)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"malformed cutoff", "SYNC_CUTOFF_DATE", "01/01/2023"},
		{"malformed delay", "SYNC_DELAY", "fast"},
		{"negative batch size", "SYNC_BATCH_SIZE", "-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadRequiresDatabaseConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing database configuration")
	}
}
