package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/n0rdy/queuewatch/common"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type PostgresRepo struct {
	db    *sql.DB
	clock clockwork.Clock
}

// NewPostgresRepo connects and creates the settings table if it is missing.
// The SQLite migrations use PRAGMAs, so the Postgres schema is kept inline.
func NewPostgresRepo(ctx context.Context, postgresURL string, clock clockwork.Clock) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS settings (
			key        TEXT PRIMARY KEY,
			value      TEXT   NOT NULL,
			updated_at BIGINT NOT NULL
		);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("create settings table: %w", err)
	}

	return &PostgresRepo{
		db:    db,
		clock: clock,
	}, nil
}

func (pr *PostgresRepo) GetAddress(ctx context.Context) (string, bool, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = $1;`

	var setting Setting
	err := pr.db.QueryRowContext(ctx, query, common.LastServerAddressKey).
		Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to select last server address")
		return "", false, common.ErrInternal
	}
	return setting.Value, true, nil
}

func (pr *PostgresRepo) SaveAddress(ctx context.Context, address string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`

	_, err := pr.db.ExecContext(ctx, query,
		common.LastServerAddressKey, // key
		address,                     // value
		pr.clock.Now().UnixMilli(),  // updated_at
	)
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("failed to upsert last server address")
		return common.ErrInternal
	}
	return nil
}

func (pr *PostgresRepo) Ping(ctx context.Context) error {
	return pr.db.PingContext(ctx)
}

func (pr *PostgresRepo) Close() error {
	return pr.db.Close()
}
