package store

import (
	"option_chain/internal/modules/store/service"

	"go.uber.org/fx"
)

// Module отдаёт единственный экземпляр стора на процесс.
func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			service.NewStore,
		),
	)
}
