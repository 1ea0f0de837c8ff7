package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairpool/internal/model"
)

// Store provides Postgres persistence for operation records and pool state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertRecords appends operation records.
func (s *Store) InsertRecords(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		payload, err := json.Marshal(record.Decoded)
		if err != nil {
			return fmt.Errorf("marshal record payload: %w", err)
		}
		batch.Queue(`
			INSERT INTO pool_records (
				pool_address, record_type, holder, ts, payload, created_at
			) VALUES ($1, $2, $3, $4, $5, now())
		`,
			record.Pool,
			record.Type,
			record.Holder,
			int64(record.Timestamp),
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// SavePoolState upserts the current ledger snapshot for a pool.
func (s *Store) SavePoolState(ctx context.Context, state model.PoolState) error {
	shares, err := json.Marshal(state.Shares)
	if err != nil {
		return fmt.Errorf("marshal shares: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO pool_state (
			pool_address, asset_a, asset_b, reserve_a, reserve_b, k, total_shares, shares, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (pool_address) DO UPDATE SET
			reserve_a = EXCLUDED.reserve_a,
			reserve_b = EXCLUDED.reserve_b,
			k = EXCLUDED.k,
			total_shares = EXCLUDED.total_shares,
			shares = EXCLUDED.shares,
			updated_at = now()
	`,
		state.Pool,
		state.AssetA,
		state.AssetB,
		state.ReserveA,
		state.ReserveB,
		state.K,
		state.TotalShares,
		shares,
	)
	return err
}

// LoadPoolState returns the persisted snapshot for a pool address.
func (s *Store) LoadPoolState(ctx context.Context, poolAddress string) (model.PoolState, bool, error) {
	if poolAddress == "" {
		return model.PoolState{}, false, fmt.Errorf("pool address required")
	}
	var state model.PoolState
	var shares []byte
	row := s.pool.QueryRow(ctx, `
		SELECT pool_address, asset_a, asset_b, reserve_a, reserve_b, k, total_shares, shares
		FROM pool_state WHERE pool_address=$1
	`, poolAddress)
	err := row.Scan(&state.Pool, &state.AssetA, &state.AssetB, &state.ReserveA, &state.ReserveB, &state.K, &state.TotalShares, &shares)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PoolState{}, false, nil
		}
		return model.PoolState{}, false, err
	}
	if len(shares) > 0 {
		if err := json.Unmarshal(shares, &state.Shares); err != nil {
			return model.PoolState{}, false, fmt.Errorf("parse shares: %w", err)
		}
	}
	return state, true, nil
}

// RecordSink adapts Store to the storage.Sink interface.
type RecordSink struct {
	Store *Store
	Ctx   context.Context
}

func (s *RecordSink) PutRecordBatch(records []model.Record) error {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return s.Store.InsertRecords(ctx, records)
}
