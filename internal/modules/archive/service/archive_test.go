package service

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"option_chain/internal/models"
	chainService "option_chain/internal/modules/chain/service"
	"option_chain/internal/modules/config"
	healthService "option_chain/internal/modules/health/service"
	storeService "option_chain/internal/modules/store/service"
)

type save struct {
	symbols  []string
	truncate bool
}

type fakeRepo struct {
	mu      sync.Mutex
	saves   []save
	records []models.Record
	saveErr error
}

func (r *fakeRepo) EnsureSchema(context.Context) error { return nil }

func (r *fakeRepo) Save(_ context.Context, entries []models.Entry, truncate bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	s := save{truncate: truncate}
	for _, e := range entries {
		s.symbols = append(s.symbols, e.Symbol)
	}
	r.saves = append(r.saves, s)
	return nil
}

func (r *fakeRepo) LoadAll(context.Context) ([]models.Record, error) { return r.records, nil }

func newChain() (*chainService.Service, *healthService.State) {
	cfg := &config.Config{}
	cfg.Formula.Default = config.DefaultFormula
	state := healthService.NewState()
	return chainService.NewService(zap.NewNop(), cfg, storeService.NewStore(), state, chainService.NewAssembler(cfg)), state
}

func newArchiver(repo Repo, chain *chainService.Service) *Archiver {
	cfg := &config.Config{}
	cfg.Archive.Schedule = "*/5 * * * * *"
	return NewArchiver(zap.NewNop(), cfg, repo, chain)
}

func call(symbol string, ltp float64) models.Record {
	return models.Record{Symbol: symbol, StrikePrice: 100, OptionType: models.OptionCall, Quote: map[string]float64{"ltp": ltp}}
}

func apply(chain *chainService.Service, recs ...models.Record) {
	chain.Apply(context.Background(), models.Message{Update: models.Update{Calls: recs}})
}

func TestArchiver_FlushOnlyChanged(t *testing.T) {
	chain, _ := newChain()
	repo := &fakeRepo{}
	a := newArchiver(repo, chain)
	ctx := context.Background()

	apply(chain, call("A", 1), call("B", 2))
	n, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	apply(chain, call("B", 3))
	n, err = a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []save{
		{symbols: []string{"A", "B"}},
		{symbols: []string{"B"}},
	}, repo.saves)
}

func TestArchiver_ResetTruncates(t *testing.T) {
	chain, _ := newChain()
	repo := &fakeRepo{}
	a := newArchiver(repo, chain)
	ctx := context.Background()

	apply(chain, call("A", 1))
	_, err := a.Flush(ctx)
	require.NoError(t, err)

	chain.Reset()
	_, err = a.Flush(ctx)
	require.NoError(t, err)

	apply(chain, call("C", 1))
	_, err = a.Flush(ctx)
	require.NoError(t, err)

	require.Len(t, repo.saves, 3)
	assert.True(t, repo.saves[1].truncate)
	assert.Empty(t, repo.saves[1].symbols)
	assert.Equal(t, save{symbols: []string{"C"}}, repo.saves[2])
}

func TestArchiver_FailedFlushIsRetried(t *testing.T) {
	chain, _ := newChain()
	repo := &fakeRepo{saveErr: errors.New("db down")}
	a := newArchiver(repo, chain)
	ctx := context.Background()

	apply(chain, call("A", 1))
	_, err := a.Flush(ctx)
	require.Error(t, err)

	repo.saveErr = nil
	n, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestArchiver_Restore(t *testing.T) {
	chain, state := newChain()
	repo := &fakeRepo{records: []models.Record{call("A", 1), call("B", 2)}}
	a := newArchiver(repo, chain)
	ctx := context.Background()

	require.NoError(t, a.Restore(ctx))

	assert.Equal(t, 2, chain.Store().Len())
	assert.True(t, state.Ready())

	// восстановленное не пишется повторно
	n, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestArchiver_Disabled(t *testing.T) {
	chain, _ := newChain()
	a := newArchiver(nil, chain)
	ctx := context.Background()

	assert.False(t, a.Enabled())
	require.NoError(t, a.Restore(ctx))
	require.NoError(t, a.Start())
	apply(chain, call("A", 1))
	n, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	a.Stop(ctx)
}

func TestArchiver_StartRejectsBadSchedule(t *testing.T) {
	chain, _ := newChain()
	cfg := &config.Config{}
	cfg.Archive.Schedule = "not a schedule"
	a := NewArchiver(zap.NewNop(), cfg, &fakeRepo{}, chain)

	assert.Error(t, a.Start())
}
