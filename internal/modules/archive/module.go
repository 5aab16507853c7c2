package archive

import (
	"context"

	"go.uber.org/fx"

	"option_chain/internal/modules/archive/service"
	"option_chain/internal/modules/feed"
	"option_chain/pkg/db"
)

// nil, если Postgres не настроен
func NewRepo(tx db.TxManager) service.Repo {
	if tx == nil {
		return nil
	}
	return service.NewRepository(tx)
}

func Module() fx.Option {
	return fx.Module("archive",
		fx.Provide(
			NewRepo,
			service.NewArchiver,
			func(a *service.Archiver) feed.Warmup { return a },
		),
		fx.Invoke(func(lc fx.Lifecycle, a *service.Archiver) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return a.Start()
				},
				OnStop: func(ctx context.Context) error {
					a.Stop(ctx)
					return nil
				},
			})
		}),
	)
}
