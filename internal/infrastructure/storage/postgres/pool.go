// Package postgres stores the inventory domain in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trackiq/pkg/logger"
)

// PoolConfig tunes the pgx pool and the startup connect loop.
type PoolConfig struct {
	DSN               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// ConnectAttempts bounds the startup ping loop; values below 1 mean one try.
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

// DefaultPoolConfig returns the settings shared by the server, worker and seed.
// maxConns <= 0 falls back to 20.
func DefaultPoolConfig(dsn string, maxConns int32) PoolConfig {
	if maxConns <= 0 {
		maxConns = 20
	}
	return PoolConfig{
		DSN:               dsn,
		MaxConns:          maxConns,
		MinConns:          min(maxConns, 2),
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   15 * time.Minute,
		HealthCheckPeriod: time.Minute,
		ConnectAttempts:   5,
		ConnectBackoff:    time.Second,
	}
}

// Pool is the application's connection pool.
type Pool struct {
	*pgxpool.Pool
}

// NewPool opens the pool and waits until the database answers a ping.
// Sessions run in UTC so timestamps round-trip unchanged.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	pc.ConnConfig.RuntimeParams["application_name"] = "trackiq"
	pc.ConnConfig.RuntimeParams["timezone"] = "UTC"
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		logger.Debug(ctx, "database connection opened", "pid", conn.PgConn().PID())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, cfg.ConnectAttempts, cfg.ConnectBackoff); err != nil {
		pool.Close()
		return nil, err
	}
	return &Pool{Pool: pool}, nil
}

func waitForDatabase(ctx context.Context, pool *pgxpool.Pool, attempts int, backoff time.Duration) error {
	attempts = max(attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = pool.Ping(ctx); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		logger.Warn(ctx, "database not ready", "attempt", i, "max_attempts", attempts, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(i)):
		}
	}
	return fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}

// Close is safe on a zero Pool.
func (p *Pool) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// Healthy pings the database.
func (p *Pool) Healthy(ctx context.Context) error {
	return p.Ping(ctx)
}

// PoolStats is the pool snapshot reported by the readiness probe.
type PoolStats struct {
	TotalConns    int32  `json:"totalConns"`
	AcquiredConns int32  `json:"acquiredConns"`
	IdleConns     int32  `json:"idleConns"`
	MaxConns      int32  `json:"maxConns"`
	AcquireCount  int64  `json:"acquireCount"`
	EmptyAcquires int64  `json:"emptyAcquireCount"`
	AcquireWait   string `json:"acquireWait"`
}

// Stats snapshots pgxpool counters.
func (p *Pool) Stats() PoolStats {
	s := p.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		MaxConns:      s.MaxConns(),
		AcquireCount:  s.AcquireCount(),
		EmptyAcquires: s.EmptyAcquireCount(),
		AcquireWait:   s.AcquireDuration().String(),
	}
}
