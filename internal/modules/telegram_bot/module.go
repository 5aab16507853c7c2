package telegram

import (
	"context"

	"go.uber.org/fx"

	feedService "option_chain/internal/modules/feed/service"
	"option_chain/internal/modules/telegram_bot/service"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			service.NewTelegram,
		),

		// *service.Telegram -> feed ServiceNotifier (без токена пишет в лог)
		fx.Provide(
			func(t *service.Telegram) feedService.ServiceNotifier {
				return t
			},
		),

		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						t.Start(context.Background())
						return nil
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
