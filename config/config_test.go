package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"SUPABASE_URL", "SUPABASE_KEY", "DATABASE_DSN", "REDIS_ADDR", "EMAIL_API_URL", "VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "LOG_MODE", "PORT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Example(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("config.example.yaml")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, time.Duration(0), cfg.Server.CacheTTL())
	assert.Equal(t, "rest", cfg.Database.Driver)
	assert.Equal(t, "file", cfg.Model.Store)
	assert.Equal(t, 1.0, cfg.Demand.DayPenalty)
	assert.Equal(t, "America/Santo_Domingo", cfg.Booking.Location().String())
	assert.False(t, cfg.Push.Enabled())
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
	t.Setenv("PORT", "9090")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://abc.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Supabase.Timeout())
	assert.Equal(t, 1000, cfg.Supabase.PageSize)
	assert.Equal(t, "memory", cfg.Model.Store)
	assert.Equal(t, 10, cfg.Model.MinTrainingRows)
	assert.Equal(t, 100.0, cfg.Demand.Base)
	assert.Equal(t, 12, cfg.Booking.OpenHour)
	assert.Equal(t, 22, cfg.Booking.CloseHour)
	assert.Equal(t, time.UTC, cfg.Booking.Location())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("supabase:\n  url: https://file.supabase.co\n  key: file-key\n"), 0o600))
	t.Setenv("SUPABASE_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://file.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "env-key", cfg.Supabase.Key)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		yaml string
	}{
		{"rest without credentials", "database:\n  driver: rest\n"},
		{"postgres without dsn", "database:\n  driver: postgres\n"},
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"bad timezone", "supabase:\n  url: u\n  key: k\nbooking:\n  timezone: Mars/Olympus\n"},
		{"inverted hours", "supabase:\n  url: u\n  key: k\nbooking:\n  open_hour: 20\n  close_hour: 12\n"},
		{"redis without addr", "supabase:\n  url: u\n  key: k\nmodel:\n  store: redis\n"},
		{"unknown model store", "supabase:\n  url: u\n  key: k\nmodel:\n  store: s3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [port"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_DemandKeepsExplicitZero(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "supabase:\n  url: u\n  key: k\ndemand:\n  day_penalty: 0\n  reference_temp_c: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Demand.DayPenalty)
	assert.Equal(t, 0.0, cfg.Demand.ReferenceTempC)
	assert.Equal(t, 100.0, cfg.Demand.Base)
	assert.Equal(t, 1.2, cfg.Demand.HolidayMultiplier)
	assert.Equal(t, 1.5, cfg.Demand.TempSlope)
}
