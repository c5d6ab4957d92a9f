// internal/database/database.go
//
// Postgres-backed user store. Implements the engine's UserStore collaborator:
// a read at settlement plus the rating/currency update. The pool is optional;
// when DATABASE_URL is unset the server runs with no persistence and
// settlement becomes a no-op at the call site.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unoarena/server/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id        BIGSERIAL PRIMARY KEY,
	username  TEXT UNIQUE NOT NULL,
	mmr       INTEGER NOT NULL DEFAULT 1000,
	wins      INTEGER NOT NULL DEFAULT 0,
	losses    INTEGER NOT NULL DEFAULT 0,
	avatar_id INTEGER NOT NULL DEFAULT 1,
	coins     INTEGER NOT NULL DEFAULT 0
);
`

// Store wraps a pgx pool with the queries the engine needs.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, verifies it, and bootstraps the schema.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// GetUserByID returns the user record, or nil when no row matches.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, username, mmr, wins, losses, avatar_id, coins
		 FROM users WHERE id::text = $1`, id)

	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.MMR, &u.Wins, &u.Losses, &u.AvatarID, &u.Coins)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	return &u, nil
}

// UpdateUserStats applies a settlement delta. The MMR result is floored at
// zero in SQL so concurrent settlements cannot drive it negative.
func (s *Store) UpdateUserStats(ctx context.Context, id string, upd models.StatsUpdate) error {
	winInc, lossInc := 0, 1
	if upd.Won {
		winInc, lossInc = 1, 0
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET mmr = GREATEST(0, mmr + $1),
		     wins = wins + $2,
		     losses = losses + $3,
		     coins = coins + $4
		 WHERE id::text = $5`,
		upd.MMRDelta, winInc, lossInc, upd.CoinsDelta, id)
	if err != nil {
		return fmt.Errorf("update user %s stats: %w", id, err)
	}
	return nil
}
