package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-giveaway-bot/internal/infra/metrics"
)

// NewPgxPool connects and pings with a bounded timeout.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// PoolStatsJob publishes connection pool gauges; run it from the scheduler.
type PoolStatsJob struct {
	pool *pgxpool.Pool
}

func NewPoolStatsJob(pool *pgxpool.Pool) *PoolStatsJob { return &PoolStatsJob{pool: pool} }

func (j *PoolStatsJob) Name() string { return "db_pool_stats" }

func (j *PoolStatsJob) Run(ctx context.Context) error {
	st := j.pool.Stat()
	metrics.SetDBPoolStats(st.TotalConns(), st.IdleConns(), st.AcquiredConns())
	return nil
}
