package service

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"option_chain/internal/models"
	"option_chain/internal/modules/config"
	"option_chain/pkg/metrics"
)

// Source — поставщик кадров фида. Run блокируется до отмены ctx.
type Source interface {
	Run(ctx context.Context, out chan<- models.Message)
}

// Client — websocket-фид с бесконечным реконнектом.
type Client struct {
	log    *zap.Logger
	dialer *websocket.Dialer
	link   link

	url            string
	subscribe      string
	pingInterval   time.Duration
	reconnectDelay time.Duration
}

func NewClient(log *zap.Logger, cfg *config.Config, conn Connectivity, n ServiceNotifier) *Client {
	return &Client{
		log:            log,
		dialer:         &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		link:           link{conn: conn, notifier: n, source: config.SourceWebsocket},
		url:            cfg.Feed.URL,
		subscribe:      cfg.Feed.Subscribe,
		pingInterval:   cfg.Feed.PingInterval,
		reconnectDelay: cfg.Feed.ReconnectDelay,
	}
}

func (c *Client) Run(ctx context.Context, out chan<- models.Message) {
	for ctx.Err() == nil {
		c.log.Info("[WS] connect", zap.String("url", c.url))
		conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.log.Warn("[WS] dial error", zap.Error(err))
			sleep(ctx, c.reconnectDelay)
			continue
		}

		if c.subscribe != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(c.subscribe)); err != nil {
				c.log.Warn("[WS] subscribe error", zap.Error(err))
				_ = conn.Close()
				sleep(ctx, c.reconnectDelay)
				continue
			}
		}

		c.link.set(ctx, true)
		err = c.readLoop(ctx, conn, out)
		_ = conn.Close()
		c.link.set(context.WithoutCancel(ctx), false)

		if ctx.Err() != nil {
			return
		}
		c.log.Warn("[WS] read error, reconnecting", zap.Error(err))
		sleep(ctx, c.reconnectDelay)
	}
}

// readLoop читает до первой ошибки. Ping идёт отдельной горутиной;
// отмена ctx закрывает соединение и этим будит ReadMessage.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- models.Message) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		interval := c.pingInterval
		if interval <= 0 {
			interval = 20 * time.Second
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-t.C:
				deadline := time.Now().Add(5 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					c.log.Debug("[WS] ping error", zap.Error(err))
				}
			}
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if !forward(ctx, c.log, frame, out) {
			return ctx.Err()
		}
	}
}

// forward декодирует кадр и отдаёт его consumer'у; false, если ctx отменён.
func forward(ctx context.Context, log *zap.Logger, frame []byte, out chan<- models.Message) bool {
	msg, err := Decode(frame)
	metrics.FeedMessages.WithLabelValues(result(err)).Inc()
	if err != nil {
		log.Warn("[FEED] skip frame", zap.Error(err), zap.Int("bytes", len(frame)))
		return true
	}

	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
