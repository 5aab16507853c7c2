package service

import (
	"context"
)

// ServiceNotifier — служебные сообщения о состоянии фида (реализует Telegram-бот).
type ServiceNotifier interface {
	SendService(ctx context.Context, format string, args ...any)
}

// Connectivity — получатель флага подключения.
type Connectivity interface {
	SetConnected(v bool) bool
}

type link struct {
	conn     Connectivity
	notifier ServiceNotifier
	source   string
}

// set двигает флаг и отправляет сообщение только на переходе.
func (l link) set(ctx context.Context, v bool) {
	if l.conn == nil || !l.conn.SetConnected(v) {
		return
	}
	if l.notifier == nil {
		return
	}
	if v {
		l.notifier.SendService(ctx, "🟢 Feed connected (%s)", l.source)
	} else {
		l.notifier.SendService(ctx, "🔴 Feed disconnected (%s), showing last known data", l.source)
	}
}
