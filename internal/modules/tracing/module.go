package tracing

import (
	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"option_chain/internal/modules/config"
	"option_chain/pkg/tracing"
)

// NewTracer — jaeger при tracing.enabled, иначе noop (спаны ничего не стоят).
func NewTracer(lc fx.Lifecycle, log *zap.Logger, cfg *config.Config) (opentracing.Tracer, error) {
	if !cfg.Tracing.Enabled {
		return opentracing.NoopTracer{}, nil
	}

	tracing.SetServiceName(cfg.Tracing.ServiceName)
	tracer, closeFn, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(closeFn))
	log.Info("[TRACING] jaeger enabled", zap.String("host", cfg.Tracing.Host), zap.Int("port", cfg.Tracing.Port))
	return tracer, nil
}

func Module() fx.Option {
	return fx.Module("tracing",
		fx.Provide(NewTracer),
		// трейсер нужен до старта остальных модулей
		fx.Invoke(func(opentracing.Tracer) {}),
	)
}
