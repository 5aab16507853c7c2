package chain

import (
	"go.uber.org/fx"

	"option_chain/internal/modules/chain/service"
)

func Module() fx.Option {
	return fx.Module("chain",
		fx.Provide(
			service.NewAssembler,
			service.NewService,
		),
	)
}
