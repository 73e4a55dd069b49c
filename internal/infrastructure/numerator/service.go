// Package numerator implements core/numerator.Generator on PostgreSQL.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "trackiq/internal/core/numerator"
)

// Querier is the subset of pgx used by the service.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier for ctx. With the postgres TxManager this
// returns the active transaction, so a number is only consumed if the caller commits.
type QuerierProvider func(ctx context.Context) Querier

// Service allocates numbers with an atomic UPSERT on sys_sequences.
type Service struct {
	querier QuerierProvider
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator bound to a querier provider.
func New(provider QuerierProvider) *Service {
	return &Service{querier: provider}
}

// Next increments the sequence for the period and returns the formatted number.
func (s *Service) Next(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, cfg.Key(period)).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next %s: %w", cfg.Sequence, err)
	}

	return cfg.Format(period, num), nil
}

// SetCurrent moves a counter (data migration from an older system).
func (s *Service) SetCurrent(ctx context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, cfg.Key(period), value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set %s: %w", cfg.Sequence, err)
	}
	return nil
}
