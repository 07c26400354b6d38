package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
	Database   DatabaseConfig   `yaml:"database"`
	Model      ModelConfig      `yaml:"model"`
	Demand     DemandConfig     `yaml:"demand"`
	Booking    BookingConfig    `yaml:"booking"`
	Email      EmailConfig      `yaml:"email"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// CacheTTL returns the analytics response cache lifetime. Zero disables the cache.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

// SupabaseConfig names the hosted database REST endpoint and its access key.
type SupabaseConfig struct {
	URL            string `yaml:"url"`
	Key            string `yaml:"key"`
	Schema         string `yaml:"schema"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageSize       int    `yaml:"page_size"`
}

// Timeout returns the per-request timeout for the REST client.
func (s SupabaseConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DatabaseConfig selects the store backend. Driver "rest" talks to the
// hosted database over PostgREST; "postgres" connects to it directly.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `yaml:"auto_migrate"`
}

// ModelConfig holds classifier training and persistence settings.
type ModelConfig struct {
	Store           string  `yaml:"store"` // memory | file | redis
	Path            string  `yaml:"path"`
	RedisAddr       string  `yaml:"redis_addr"`
	RedisKey        string  `yaml:"redis_key"`
	MinTrainingRows int     `yaml:"min_training_rows"`
	NumTrees        int     `yaml:"num_trees"`
	MaxDepth        int     `yaml:"max_depth"`
	Seed            int64   `yaml:"seed"`
	TestRatio       float64 `yaml:"test_ratio"`
}

// DemandConfig holds the coefficients of the demand formula.
type DemandConfig struct {
	Base              float64 `yaml:"base"`
	DayPenalty        float64 `yaml:"day_penalty"`
	HolidayMultiplier float64 `yaml:"holiday_multiplier"`
	ReferenceTempC    float64 `yaml:"reference_temp_c"`
	TempSlope         float64 `yaml:"temp_slope"`
}

// DefaultDemand returns the coefficients used for keys the file leaves out.
func DefaultDemand() DemandConfig {
	return DemandConfig{
		Base:              100,
		DayPenalty:        1,
		HolidayMultiplier: 1.2,
		ReferenceTempC:    25,
		TempSlope:         1.5,
	}
}

// BookingConfig holds the rescheduling rules.
type BookingConfig struct {
	Timezone       string `yaml:"timezone"`
	OpenHour       int    `yaml:"open_hour"`
	CloseHour      int    `yaml:"close_hour"`
	MaxAdvanceDays int    `yaml:"max_advance_days"`
	MinLeadHours   int    `yaml:"min_lead_hours"`
	SlotCapacity   int    `yaml:"slot_capacity"`
}

// Location resolves Timezone, falling back to UTC.
func (b BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EmailConfig points at the external email delivery API.
type EmailConfig struct {
	APIURL         string `yaml:"api_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // stdout | otlp
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// Load reads the configuration from the given path and applies environment
// overrides. A missing file is not an error; the environment alone may be
// enough to run against the hosted database.
func Load(path string) (*Config, error) {
	// Demand coefficients are seeded before decoding so an explicit 0 in the
	// file is kept.
	cfg := Config{Demand: DefaultDemand()}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SUPABASE_URL")); v != "" {
		cfg.Supabase.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("SUPABASE_KEY")); v != "" {
		cfg.Supabase.Key = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.Model.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("EMAIL_API_URL")); v != "" {
		cfg.Email.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY")); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY")); v != "" {
		cfg.Push.PrivateKey = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Log.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds < 0 {
		cfg.Server.CacheTTLSeconds = 0
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "development"
	}

	if cfg.Supabase.TimeoutSeconds <= 0 {
		cfg.Supabase.TimeoutSeconds = 15
	}
	if cfg.Supabase.PageSize <= 0 {
		cfg.Supabase.PageSize = 1000
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "rest"
	}

	if cfg.Model.Store == "" {
		cfg.Model.Store = "memory"
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "./data/reservation_model.json"
	}
	if cfg.Model.RedisKey == "" {
		cfg.Model.RedisKey = "foodai:reservation_model"
	}
	if cfg.Model.MinTrainingRows <= 0 {
		cfg.Model.MinTrainingRows = 10
	}
	if cfg.Model.NumTrees <= 0 {
		cfg.Model.NumTrees = 150
	}
	if cfg.Model.Seed == 0 {
		cfg.Model.Seed = 42
	}
	if cfg.Model.TestRatio <= 0 || cfg.Model.TestRatio >= 1 {
		cfg.Model.TestRatio = 0.2
	}

	if cfg.Booking.OpenHour <= 0 {
		cfg.Booking.OpenHour = 12
	}
	if cfg.Booking.CloseHour <= 0 {
		cfg.Booking.CloseHour = 22
	}
	if cfg.Booking.MaxAdvanceDays <= 0 {
		cfg.Booking.MaxAdvanceDays = 90
	}
	if cfg.Booking.MinLeadHours <= 0 {
		cfg.Booking.MinLeadHours = 24
	}
	if cfg.Booking.SlotCapacity <= 0 {
		cfg.Booking.SlotCapacity = 5
	}

	if cfg.Email.TimeoutSeconds <= 0 {
		cfg.Email.TimeoutSeconds = 10
	}
	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}

	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = "stdout"
	}
	if cfg.Tracing.SampleRatio <= 0 || cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = 1
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "foodai-backend"
	}
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "rest":
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY must be set for the rest driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("booking.timezone: %w", err)
	}
	if c.Booking.OpenHour >= c.Booking.CloseHour || c.Booking.CloseHour > 24 {
		return fmt.Errorf("booking hours %d-%d are invalid", c.Booking.OpenHour, c.Booking.CloseHour)
	}

	switch c.Model.Store {
	case "memory", "file":
	case "redis":
		if c.Model.RedisAddr == "" {
			return errors.New("model.redis_addr must be set for the redis model store")
		}
	default:
		return fmt.Errorf("unknown model store %q", c.Model.Store)
	}
	return nil
}
