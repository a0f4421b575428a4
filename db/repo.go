package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/n0rdy/queuewatch/common"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRepo is the default address store: a single-row settings table in a local file.
// The schema is created by RunSQLiteMigrations.
type SQLiteRepo struct {
	db    *sql.DB
	clock clockwork.Clock
}

func NewSQLiteRepo(dbPath string, clock clockwork.Clock) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepo{
		db:    db,
		clock: clock,
	}, nil
}

func (sr *SQLiteRepo) GetAddress(ctx context.Context) (string, bool, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = ?;`

	var setting Setting
	err := sr.db.QueryRowContext(ctx, query, common.LastServerAddressKey).
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

func (sr *SQLiteRepo) SaveAddress(ctx context.Context, address string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at;
	`

	_, err := sr.db.ExecContext(ctx, query,
		common.LastServerAddressKey, // key
		address,                     // value
		sr.clock.Now().UnixMilli(),  // updated_at
	)
	if err != nil {
		log.Error().Err(err).Str("address", address).Msg("failed to upsert last server address")
		return common.ErrInternal
	}
	return nil
}

// Optimize is meant to be run periodically on long-lived connections.
func (sr *SQLiteRepo) Optimize(ctx context.Context) error {
	_, err := sr.db.ExecContext(ctx, `PRAGMA optimize;`)
	return err
}

func (sr *SQLiteRepo) Ping(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, 2*time.Second)
	defer cancelFunc()
	return sr.db.PingContext(ctx)
}

func (sr *SQLiteRepo) Close() error {
	return sr.db.Close()
}
