package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ModelStore persists trained models across restarts. Load returns
// (nil, nil) when nothing has been saved yet.
type ModelStore interface {
	Load(ctx context.Context) (*Model, error)
	Save(ctx context.Context, m *Model) error
}

// MemoryStore keeps nothing beyond the process lifetime.
type MemoryStore struct{}

func (MemoryStore) Load(context.Context) (*Model, error) { return nil, nil }
func (MemoryStore) Save(context.Context, *Model) error   { return nil }

// FileStore writes the model as JSON to a single file.
type FileStore struct {
	Path string
}

func (s FileStore) Load(_ context.Context) (*Model, error) {
	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", s.Path, err)
	}
	return &m, nil
}

// Save writes to a temporary file first and renames it into place.
func (s FileStore) Save(_ context.Context, m *Model) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return os.Rename(tmp, s.Path)
}

// RedisStore keeps the model under one key so every replica shares it.
type RedisStore struct {
	rdb *goredis.Client
	key string
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, key string) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, key: key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*Model, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &m, nil
}

func (s *RedisStore) Save(ctx context.Context, m *Model) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return s.rdb.Set(ctx, s.key, raw, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
