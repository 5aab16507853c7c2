package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"option_chain/internal/modules/health/service"
)

func TestState_SetConnectedReportsTransitions(t *testing.T) {
	s := service.NewState()
	assert.False(t, s.Connected())

	assert.True(t, s.SetConnected(true))
	assert.False(t, s.SetConnected(true))
	assert.True(t, s.Connected())

	assert.True(t, s.SetConnected(false))
	assert.False(t, s.SetConnected(false))
	assert.True(t, s.SetConnected(true))

	assert.Equal(t, int64(2), s.Connects())
}

func TestState_LastMessage(t *testing.T) {
	s := service.NewState()
	assert.True(t, s.LastMessage().IsZero())

	now := time.Unix(1_700_000_000, 0)
	s.TouchMessage(now)
	assert.Equal(t, now, s.LastMessage())
}

func TestState_Ready(t *testing.T) {
	s := service.NewState()
	assert.False(t, s.Ready())
	s.SetReady(true)
	assert.True(t, s.Ready())
	assert.GreaterOrEqual(t, s.Uptime(), time.Duration(0))
}
