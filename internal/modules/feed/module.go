package feed

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"option_chain/internal/models"
	chainService "option_chain/internal/modules/chain/service"
	"option_chain/internal/modules/config"
	"option_chain/internal/modules/feed/service"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      *config.Config
	Chain    *chainService.Service
	Notifier service.ServiceNotifier

	// Warmup — восстановление из архива до старта фида (если архив включён).
	Warmup Warmup `optional:"true"`
}

// Warmup выполняется один раз перед подключением к фиду.
type Warmup interface {
	Restore(ctx context.Context) error
}

func NewSource(p Params) service.Source {
	if p.Cfg.Feed.Source == config.SourceRedis {
		rdb := service.NewRedisClient(p.Cfg)
		return service.NewRedisSource(p.Log, p.Cfg, rdb, p.Chain, p.Notifier)
	}
	return service.NewClient(p.Log, p.Cfg, p.Chain, p.Notifier)
}

// Consume — единственный писатель стора: кадры применяются строго по очереди.
func Consume(ctx context.Context, chain *chainService.Service, in <-chan models.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-in:
			chain.Apply(ctx, msg)
		}
	}
}

func Module() fx.Option {
	return fx.Module("feed",
		fx.Provide(
			NewSource,
		),
		fx.Invoke(func(lc fx.Lifecycle, p Params, src service.Source) {
			runCtx, cancel := context.WithCancel(context.Background())
			out := make(chan models.Message, p.Cfg.Feed.Buffer)
			done := make(chan struct{})

			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					if p.Warmup != nil {
						if err := p.Warmup.Restore(ctx); err != nil {
							p.Log.Warn("[FEED] warmup failed, starting empty", zap.Error(err))
						}
					}
					go func() {
						defer close(done)
						Consume(runCtx, p.Chain, out)
					}()
					go src.Run(runCtx, out)
					return nil
				},
				OnStop: func(ctx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-ctx.Done():
					}
					return nil
				},
			})
		}),
	)
}
