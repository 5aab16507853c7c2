package service

import (
	"sync/atomic"
	"time"
)

// State — состояние подключения к фиду. Только флаги для отображения:
// отключение ничего не делает с данными.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	connected   atomic.Bool
	lastMsgUnix atomic.Int64 // unix seconds
	reconnects  atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// SetConnected возвращает true, если значение изменилось.
func (s *State) SetConnected(v bool) bool {
	old := s.connected.Swap(v)
	if v && !old {
		s.reconnects.Add(1)
	}
	return old != v
}

func (s *State) Connected() bool { return s.connected.Load() }

// Connects — сколько раз фид переходил в connected.
func (s *State) Connects() int64 { return s.reconnects.Load() }

func (s *State) TouchMessage(t time.Time) { s.lastMsgUnix.Store(t.Unix()) }
func (s *State) LastMessage() time.Time {
	u := s.lastMsgUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
