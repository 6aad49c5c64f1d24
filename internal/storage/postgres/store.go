// Package postgres persists the indexer's pool and token snapshots so a
// restart can serve quotes before the first poll completes.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityFlow/internal/model"
)

// Store provides Postgres persistence for pool and token snapshots.
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

// UpsertPools inserts or updates one snapshot's pools keyed by pair address.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolDescriptor) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pair_address,
				token0_ledger_id, token0_address, token0_symbol, token0_decimals, token0_standard,
				token1_ledger_id, token1_address, token1_symbol, token1_decimals, token1_standard,
				token0_amount, token1_amount, total_supply,
				created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (pair_address)
			DO UPDATE SET
				token0_ledger_id = EXCLUDED.token0_ledger_id,
				token0_address = EXCLUDED.token0_address,
				token0_symbol = EXCLUDED.token0_symbol,
				token0_decimals = EXCLUDED.token0_decimals,
				token0_standard = EXCLUDED.token0_standard,
				token1_ledger_id = EXCLUDED.token1_ledger_id,
				token1_address = EXCLUDED.token1_address,
				token1_symbol = EXCLUDED.token1_symbol,
				token1_decimals = EXCLUDED.token1_decimals,
				token1_standard = EXCLUDED.token1_standard,
				token0_amount = EXCLUDED.token0_amount,
				token1_amount = EXCLUDED.token1_amount,
				total_supply = EXCLUDED.total_supply,
				updated_at = now()
		`,
			model.NormalizeAddress(p.PairAddress),
			p.Token0.LedgerID,
			p.Token0.Address,
			p.Token0.Symbol,
			p.Token0.Decimals,
			string(p.Token0.Standard),
			p.Token1.LedgerID,
			p.Token1.Address,
			p.Token1.Symbol,
			p.Token1.Decimals,
			string(p.Token1.Standard),
			p.Token0Amount,
			p.Token1Amount,
			p.TotalSupply,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadPools returns the last persisted pool snapshot.
func (s *Store) LoadPools(ctx context.Context) ([]model.PoolDescriptor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			pair_address,
			token0_ledger_id, token0_address, token0_symbol, token0_decimals, token0_standard,
			token1_ledger_id, token1_address, token1_symbol, token1_decimals, token1_standard,
			token0_amount, token1_amount, total_supply
		FROM pools
		ORDER BY pair_address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []model.PoolDescriptor
	for rows.Next() {
		var p model.PoolDescriptor
		var standard0, standard1 string
		if err := rows.Scan(
			&p.PairAddress,
			&p.Token0.LedgerID, &p.Token0.Address, &p.Token0.Symbol, &p.Token0.Decimals, &standard0,
			&p.Token1.LedgerID, &p.Token1.Address, &p.Token1.Symbol, &p.Token1.Decimals, &standard1,
			&p.Token0Amount, &p.Token1Amount, &p.TotalSupply,
		); err != nil {
			return nil, err
		}
		p.Token0.Standard = model.TokenStandard(standard0)
		p.Token1.Standard = model.TokenStandard(standard1)
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// UpsertTokens inserts or updates the known token registry.
func (s *Store) UpsertTokens(ctx context.Context, tokens []model.TokenDescriptor) error {
	if len(tokens) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range tokens {
		batch.Queue(`
			INSERT INTO tokens (address, ledger_id, symbol, decimals, standard, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,now(),now())
			ON CONFLICT (address)
			DO UPDATE SET
				ledger_id = EXCLUDED.ledger_id,
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				standard = EXCLUDED.standard,
				updated_at = now()
		`,
			model.NormalizeAddress(t.Address),
			t.LedgerID,
			t.Symbol,
			t.Decimals,
			string(t.Standard),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range tokens {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadTokens returns the last persisted token registry.
func (s *Store) LoadTokens(ctx context.Context) ([]model.TokenDescriptor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT address, ledger_id, symbol, decimals, standard
		FROM tokens
		ORDER BY address
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.TokenDescriptor
	for rows.Next() {
		var t model.TokenDescriptor
		var standard string
		if err := rows.Scan(&t.Address, &t.LedgerID, &t.Symbol, &t.Decimals, &standard); err != nil {
			return nil, err
		}
		t.Standard = model.TokenStandard(standard)
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
