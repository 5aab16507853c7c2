package service

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	chainService "option_chain/internal/modules/chain/service"
	"option_chain/internal/modules/config"
)

const writeWait = 5 * time.Second

// Push отдаёт view по websocket: сразу после подключения и после каждого изменения.
type Push struct {
	log      *zap.Logger
	chain    *chainService.Service
	upgrader websocket.Upgrader
	ping     time.Duration

	quit     chan struct{}
	quitOnce sync.Once
}

func NewPush(log *zap.Logger, chain *chainService.Service, cfg *config.Config) *Push {
	ping := cfg.Feed.PingInterval
	if ping <= 0 {
		ping = 20 * time.Second
	}
	return &Push{
		log:   log,
		chain: chain,
		upgrader: websocket.Upgrader{
			// UI живёт на другом порту
			CheckOrigin: func(*http.Request) bool { return true },
		},
		ping: ping,
		quit: make(chan struct{}),
	}
}

// Close рвёт все push-соединения (http.Server.Shutdown их не видит после hijack).
func (p *Push) Close() {
	p.quitOnce.Do(func() { close(p.quit) })
}

func (p *Push) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fixed, hasFixed := q.Get("formula"), q.Has("formula")

	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		p.log.Debug("[PUSH] upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	changes, cancel := p.chain.Subscribe()
	defer cancel()

	// клиенту писать нечего, читаем только чтобы заметить закрытие
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		f := p.chain.Formula()
		if hasFixed {
			f = fixed
		}
		b, err := sonic.Marshal(ToDTO(p.chain.View(r.Context(), f)))
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, b)
	}

	if err := send(); err != nil {
		return
	}

	ticker := time.NewTicker(p.ping)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case <-changes:
			if err := send(); err != nil {
				p.log.Debug("[PUSH] write", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
