package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"option_chain/internal/modules/api"
	"option_chain/internal/modules/archive"
	"option_chain/internal/modules/chain"
	"option_chain/internal/modules/config"
	"option_chain/internal/modules/feed"
	"option_chain/internal/modules/health"
	"option_chain/internal/modules/postgres"
	"option_chain/internal/modules/store"
	telegram "option_chain/internal/modules/telegram_bot"
	"option_chain/internal/modules/tracing"
	"option_chain/pkg/logger"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName("option_chain")
	return logger.New(cfg.LogLevel)
}

func main() {
	fx.New(
		config.Module(),
		fx.Provide(newLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),

		tracing.Module(),
		health.Module(),
		store.Module(),
		chain.Module(),
		postgres.Module(),
		archive.Module(),
		telegram.Module(),
		feed.Module(),
		api.Module(),
	).Run()
}
