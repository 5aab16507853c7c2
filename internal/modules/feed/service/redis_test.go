package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"option_chain/internal/models"
)

func TestRedisSource_ForwardsPublishedFrames(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Feed.RedisAddr = mr.Addr()
	cfg.Feed.RedisChannel = "option_chain.updates"
	rdb := NewRedisClient(cfg)
	t.Cleanup(func() { _ = rdb.Close() })

	conn := &fakeConn{}
	src := NewRedisSource(zap.NewNop(), cfg, rdb, conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan models.Message, 16)
	go src.Run(ctx, out)

	require.Eventually(t, conn.Connected, 2*time.Second, 10*time.Millisecond)

	mr.Publish(cfg.Feed.RedisChannel, "garbage")
	mr.Publish(cfg.Feed.RedisChannel, updateFrame)

	msg, ok := next(out, 2*time.Second)
	require.True(t, ok)
	assert.Equal(t, models.EventDataUpdate, msg.Event)
	assert.Equal(t, "A", msg.Update.Calls[0].Symbol)
}

func TestRedisSource_StopMarksDisconnected(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig()
	cfg.Feed.RedisChannel = "c"
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	conn := &fakeConn{}
	src := NewRedisSource(zap.NewNop(), cfg, rdb, conn, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		src.Run(ctx, make(chan models.Message, 1))
	}()
	require.Eventually(t, conn.Connected, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.False(t, conn.Connected())
}
