package numerator

import (
	"context"
	"sync"
	"time"
)

// Generator hands out sequential numbers. Implementations must be atomic:
// two concurrent callers never receive the same number.
type Generator interface {
	Next(ctx context.Context, cfg Config, period time.Time) (string, error)
}

// Memory is an in-process Generator for tests and local tooling.
type Memory struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemory creates an empty in-memory generator.
func NewMemory() *Memory {
	return &Memory{counters: make(map[string]int64)}
}

func (m *Memory) Next(_ context.Context, cfg Config, period time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cfg.Key(period)
	m.counters[key]++
	return cfg.Format(period, m.counters[key]), nil
}

var _ Generator = (*Memory)(nil)
