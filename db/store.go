package db

import (
	"context"
	"fmt"

	"github.com/n0rdy/queuewatch/common"
	"github.com/n0rdy/queuewatch/configs"
	"github.com/n0rdy/queuewatch/utils"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Store is the persistence surface every backend implements.
type Store interface {
	GetAddress(ctx context.Context) (string, bool, error)
	SaveAddress(ctx context.Context, address string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore opens the backend selected by the configuration. The SQLite backend is migrated before use.
func NewStore(ctx context.Context, storeConfig configs.StoreConfig, clock clockwork.Clock) (Store, error) {
	switch storeConfig.Type {
	case common.RedisStore:
		return NewRedisRepo(ctx, storeConfig.RedisURL)
	case common.PostgresStore:
		return NewPostgresRepo(ctx, storeConfig.PostgresURL, clock)
	case common.SQLiteStore:
		dbPath := storeConfig.SQLitePath
		if dbPath == "" {
			var err error
			dbPath, err = utils.GetOrCreateDefaultDBPath()
			if err != nil {
				return nil, err
			}
		}
		log.Info().Str("path", dbPath).Msg("using sqlite address store")

		if err := RunSQLiteMigrations(dbPath); err != nil {
			return nil, err
		}
		return NewSQLiteRepo(dbPath, clock)
	default:
		return nil, fmt.Errorf("unsupported store type %q", storeConfig.Type)
	}
}
