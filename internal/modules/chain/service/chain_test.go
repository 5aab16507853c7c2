package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option_chain/internal/models"
)

func straddle(strike float64, ce, pe float64) models.Update {
	return models.Update{
		Calls: []models.Record{leg("C", strike, models.OptionCall, ce, 1, 1)},
		Puts:  []models.Record{leg("P", strike, models.OptionPut, pe, 1, 1)},
	}
}

func received(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestService_ApplyAndView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n := f.svc.Apply(ctx, models.Message{Event: models.EventDataUpdate, Update: straddle(100, 10, 4)})
	require.Equal(t, 2, n)

	v := f.svc.CurrentView(ctx)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "14.00", v.Rows[0].Display)
	assert.Equal(t, "CE.ltp + PE.ltp", v.Formula)
}

func TestService_ViewFollowsLatestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Apply(ctx, models.Message{Update: straddle(100, 10, 4)})
	first := f.svc.CurrentView(ctx)
	f.svc.Apply(ctx, models.Message{Update: models.Update{
		Calls: []models.Record{leg("C", 100, models.OptionCall, 20, 1, 1)},
	}})
	second := f.svc.CurrentView(ctx)

	assert.Equal(t, "14.00", first.Rows[0].Display)
	assert.Equal(t, "24.00", second.Rows[0].Display)
}

func TestService_ResyncClearsStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Apply(ctx, models.Message{Update: straddle(100, 10, 4)})
	f.svc.Apply(ctx, models.Message{Event: models.EventResync})

	assert.Equal(t, 0, f.store.Len())
	v := f.svc.CurrentView(ctx)
	assert.Empty(t, v.Rows)
	assert.NotNil(t, v.Empty)
}

func TestService_ViewFormulaDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Apply(ctx, models.Message{Update: straddle(100, 10, 4)})

	v := f.svc.View(ctx, "CE.ltp - PE.ltp")

	assert.Equal(t, "6.00", v.Rows[0].Display)
	assert.Equal(t, "CE.ltp + PE.ltp", f.svc.Formula())
}

func TestService_SetFormulaKeepsInvalidText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.Apply(ctx, models.Message{Update: straddle(100, 10, 4)})

	f.svc.SetFormula("CE.ltp +")

	assert.Equal(t, "CE.ltp +", f.svc.Formula())
	assert.Equal(t, models.DisplayError, f.svc.CurrentView(ctx).Rows[0].Display)
}

func TestService_SubscribeCoalesces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ch, cancel := f.svc.Subscribe()
	defer cancel()

	f.svc.Apply(ctx, models.Message{Update: straddle(100, 10, 4)})
	f.svc.Apply(ctx, models.Message{Update: straddle(200, 1, 1)})
	f.svc.SetFormula("CE.ltp")

	assert.True(t, received(ch))
	assert.False(t, received(ch))
}

func TestService_SubscribeCancelStopsNotifications(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.svc.Subscribe()
	cancel()
	cancel()

	f.svc.SetFormula("PE.ltp")

	assert.False(t, received(ch))
}

func TestService_SetConnectedNotifiesOnTransitionOnly(t *testing.T) {
	f := newFixture(t)
	ch, cancel := f.svc.Subscribe()
	defer cancel()

	assert.True(t, f.svc.SetConnected(true))
	assert.True(t, received(ch))
	assert.True(t, f.state.Ready())

	assert.False(t, f.svc.SetConnected(true))
	assert.False(t, received(ch))

	assert.True(t, f.svc.SetConnected(false))
	assert.True(t, received(ch))
	assert.False(t, f.svc.Connected())
}

func TestService_DisconnectKeepsData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.SetConnected(true)
	f.svc.Apply(ctx, models.Message{Update: straddle(100, 10, 4)})

	f.svc.SetConnected(false)

	v := f.svc.CurrentView(ctx)
	assert.False(t, v.Connected)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "14.00", v.Rows[0].Display)
}

func TestService_ConcurrentViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		f.svc.Apply(ctx, models.Message{Update: models.Update{
			Calls: []models.Record{leg(string(rune('A'+i)), float64(100+i), models.OptionCall, float64(i), 1, 1)},
		}})
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := f.svc.CurrentView(ctx)
			assert.Len(t, v.Rows, 50)
			assert.True(t, v.Rows[0].IsMin)
		}()
	}
	wg.Wait()
}
