// Package redis provides a Redis-backed sink for exported values.
//
// Each exported buffer is stored under a prefixed key as a JSON envelope,
// with an optional TTL. Useful when downstream consumers poll the latest
// computed values out of a shared cache.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lazygraph/lazygraph/buffer"
)

// Options configuration for the Redis sink.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix for result keys, default "lazygraph:".
	Prefix string
	// TTL for result keys, default 0 (no expiration).
	TTL time.Duration
}

// Sink stores exported buffers in Redis.
type Sink struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSink creates a new Redis sink.
func NewSink(opts Options) *Sink {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "lazygraph:"
	}

	return &Sink{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *Sink) resultKey(name string) string {
	return fmt.Sprintf("%sresult:%s", s.prefix, name)
}

// Write stores a buffer under its export name.
func (s *Sink) Write(ctx context.Context, name string, buf *buffer.Buffer) error {
	data, err := json.Marshal(buf)
	if err != nil {
		return fmt.Errorf("failed to marshal buffer %s: %w", name, err)
	}

	if err := s.client.Set(ctx, s.resultKey(name), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write result %s: %w", name, err)
	}
	return nil
}

// Read loads a previously exported buffer by name.
func (s *Sink) Read(ctx context.Context, name string) (*buffer.Buffer, error) {
	data, err := s.client.Get(ctx, s.resultKey(name)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("result not found: %s", name)
		}
		return nil, fmt.Errorf("failed to read result %s: %w", name, err)
	}

	var buf buffer.Buffer
	if err := json.Unmarshal(data, &buf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", name, err)
	}
	return &buf, nil
}

// Close closes the Redis connection.
func (s *Sink) Close() error {
	return s.client.Close()
}
