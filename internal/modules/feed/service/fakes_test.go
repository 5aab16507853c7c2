package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"option_chain/internal/models"
	"option_chain/internal/modules/config"
)

type fakeConn struct {
	mu      sync.Mutex
	v       bool
	history []bool
}

func (f *fakeConn) SetConnected(v bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.v == v {
		return false
	}
	f.v = v
	f.history = append(f.history, v)
	return true
}

func (f *fakeConn) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

func (f *fakeConn) History() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.history...)
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) SendService(_ context.Context, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, fmt.Sprintf(format, args...))
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Feed.PingInterval = 50 * time.Millisecond
	cfg.Feed.ReconnectDelay = 10 * time.Millisecond
	cfg.Feed.Buffer = 16
	return cfg
}

func next(out <-chan models.Message, d time.Duration) (models.Message, bool) {
	select {
	case m := <-out:
		return m, true
	case <-time.After(d):
		return models.Message{}, false
	}
}
