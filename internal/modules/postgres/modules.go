package postgres

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"option_chain/internal/modules/config"
	"option_chain/pkg/db"
)

// NewTxManager поднимает пул, только если задан db_dsn; иначе архив выключен.
func NewTxManager(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config) (db.TxManager, error) {
	if !cfg.ArchiveEnabled() {
		log.Info("[DB] db_dsn not set, archive disabled")
		return nil, nil
	}

	ctx := context.Background()
	poolMaster, err := db.NewPool(ctx, db.PoolConfig{
		DSN: cfg.DB,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create poolMaster")
	}

	if err := poolMaster.Ping(ctx); err != nil {
		poolMaster.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	m := db.NewPgTxManager(poolMaster)
	lc.Append(fx.StopHook(m.Close))
	return m, nil
}

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			NewTxManager,
		),
	)
}
