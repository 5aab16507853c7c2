package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"option_chain/internal/models"
	"option_chain/internal/modules/config"
)

// RedisSource — тот же конверт, но из pub/sub канала. Переподключение
// делает go-redis; флаг подключения держим по подтверждениям подписки и ping.
type RedisSource struct {
	log     *zap.Logger
	rdb     *redis.Client
	channel string
	link    link

	pingInterval time.Duration
	buffer       int
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Feed.RedisAddr})
}

func NewRedisSource(log *zap.Logger, cfg *config.Config, rdb *redis.Client, conn Connectivity, n ServiceNotifier) *RedisSource {
	return &RedisSource{
		log:          log,
		rdb:          rdb,
		channel:      cfg.Feed.RedisChannel,
		link:         link{conn: conn, notifier: n, source: config.SourceRedis},
		pingInterval: cfg.Feed.PingInterval,
		buffer:       cfg.Feed.Buffer,
	}
}

func (s *RedisSource) Run(ctx context.Context, out chan<- models.Message) {
	pubsub := s.rdb.Subscribe(ctx, s.channel)
	defer func() {
		_ = pubsub.Close()
		s.link.set(context.WithoutCancel(ctx), false)
	}()

	s.log.Info("[REDIS] subscribe", zap.String("channel", s.channel))
	ch := pubsub.ChannelWithSubscriptions(redis.WithChannelSize(s.buffer))

	interval := s.pingInterval
	if interval <= 0 {
		interval = 20 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if err := s.rdb.Ping(ctx).Err(); err != nil {
				s.log.Warn("[REDIS] ping error", zap.Error(err))
				s.link.set(ctx, false)
			}

		case m, ok := <-ch:
			if !ok {
				return
			}
			switch v := m.(type) {
			case *redis.Subscription:
				switch v.Kind {
				case "subscribe":
					s.link.set(ctx, true)
				case "unsubscribe":
					s.link.set(ctx, false)
				}
			case *redis.Message:
				s.link.set(ctx, true)
				if !forward(ctx, s.log, []byte(v.Payload), out) {
					return
				}
			}
		}
	}
}
