package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Quantities are stored as NUMERIC for exact fixed-point precision.
//
// Schema:
//
//	exposures(pool_id TEXT PRIMARY KEY, quantity NUMERIC NOT NULL)
//	rebalance_records(id TEXT PRIMARY KEY, pool_id TEXT, action TEXT,
//	                  delta_usd NUMERIC, collateral_delta NUMERIC,
//	                  order_id TEXT, timestamp TIMESTAMPTZ)
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetExposure(ctx context.Context, poolID string) (decimal.Decimal, error) {
	var qty string
	err := s.pool.QueryRow(ctx,
		`SELECT quantity::TEXT FROM exposures WHERE pool_id = $1`, poolID).
		Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		// Exposure is created implicitly at zero for a new pool.
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get exposure %s: %w", poolID, err)
	}

	q, err := decimal.NewFromString(qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse exposure %s: %w", poolID, err)
	}
	return q, nil
}

func (s *PostgresStore) SetExposure(ctx context.Context, poolID string, quantity decimal.Decimal) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exposures (pool_id, quantity) VALUES ($1, $2::NUMERIC)
		 ON CONFLICT (pool_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
		poolID, quantity.String(),
	)
	return err
}

func (s *PostgresStore) ListExposures(ctx context.Context) ([]model.Exposure, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT pool_id, quantity::TEXT FROM exposures ORDER BY pool_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exposures []model.Exposure
	for rows.Next() {
		var e model.Exposure
		var qty string
		if err := rows.Scan(&e.PoolID, &qty); err != nil {
			return nil, err
		}
		e.Quantity, _ = decimal.NewFromString(qty)
		exposures = append(exposures, e)
	}
	return exposures, rows.Err()
}

func (s *PostgresStore) InsertRebalanceRecord(ctx context.Context, rec *model.RebalanceRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rebalance_records (id, pool_id, action, delta_usd, collateral_delta, order_id, timestamp)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6, $7)`,
		rec.ID, rec.PoolID, rec.Action,
		rec.DeltaUsd.String(), rec.CollateralDelta.String(),
		rec.OrderID, rec.Timestamp,
	)
	return err
}

func (s *PostgresStore) GetRebalanceRecordsByPool(ctx context.Context, poolID string) ([]model.RebalanceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, pool_id, action, delta_usd::TEXT, collateral_delta::TEXT, order_id, timestamp
		 FROM rebalance_records WHERE pool_id = $1 ORDER BY timestamp`, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RebalanceRecord
	for rows.Next() {
		var r model.RebalanceRecord
		var deltaS, collateralS string
		if err := rows.Scan(&r.ID, &r.PoolID, &r.Action, &deltaS, &collateralS, &r.OrderID, &r.Timestamp); err != nil {
			return nil, err
		}
		r.DeltaUsd, _ = decimal.NewFromString(deltaS)
		r.CollateralDelta, _ = decimal.NewFromString(collateralS)
		records = append(records, r)
	}
	return records, rows.Err()
}
