package service

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"option_chain/internal/models"
	chainService "option_chain/internal/modules/chain/service"
	"option_chain/internal/modules/config"
	"option_chain/pkg/metrics"
)

type Repo interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, entries []models.Entry, truncate bool) error
	LoadAll(ctx context.Context) ([]models.Record, error)
}

// Archiver периодически сбрасывает изменившиеся записи стора в репозиторий
// и поднимает их обратно при старте. С nil repo ничего не делает.
type Archiver struct {
	log      *zap.Logger
	repo     Repo
	chain    *chainService.Service
	schedule string

	mu      sync.Mutex // один Flush за раз
	lastSeq uint64
	lastGen uint64

	cron *cron.Cron
}

func NewArchiver(log *zap.Logger, cfg *config.Config, repo Repo, chain *chainService.Service) *Archiver {
	return &Archiver{
		log:      log,
		repo:     repo,
		chain:    chain,
		schedule: cfg.Archive.Schedule,
	}
}

func (a *Archiver) Enabled() bool { return a.repo != nil }

// Restore загружает архив в стор. Вызывается до старта фида.
func (a *Archiver) Restore(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}
	if err := a.repo.EnsureSchema(ctx); err != nil {
		return err
	}
	records, err := a.repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	store := a.chain.Store()
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(records) > 0 {
		a.chain.Apply(ctx, models.Message{Event: models.EventDataUpdate, Update: models.Update{Calls: records}})
		a.chain.MarkReady()
	}
	// восстановленное уже лежит в базе
	a.lastSeq = store.LastSeq()
	a.lastGen = store.Generation()
	a.log.Info("[ARCHIVE] restored", zap.Int("records", len(records)))
	return nil
}

// Flush пишет записи с Seq больше последнего сброшенного. После Reset стора
// таблица сначала очищается и пишется всё текущее содержимое.
func (a *Archiver) Flush(ctx context.Context) (int, error) {
	if !a.Enabled() {
		return 0, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	store := a.chain.Store()
	gen := store.Generation()
	truncate := gen != a.lastGen

	since := a.lastSeq
	if truncate {
		since = 0
	}
	entries := store.Since(since)
	if !truncate && len(entries) == 0 {
		return 0, nil
	}

	if err := a.repo.Save(ctx, entries, truncate); err != nil {
		return 0, err
	}

	for _, e := range entries {
		if e.Seq > since {
			since = e.Seq
		}
	}
	a.lastSeq = since
	a.lastGen = gen
	metrics.ArchiveFlushed.Add(float64(len(entries)))
	return len(entries), nil
}

// Start запускает Flush по расписанию.
func (a *Archiver) Start() error {
	if !a.Enabled() {
		return nil
	}
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(a.schedule, func() {
		n, err := a.Flush(context.Background())
		if err != nil {
			a.log.Error("[ARCHIVE] flush", zap.Error(err))
			return
		}
		if n > 0 {
			a.log.Debug("[ARCHIVE] flushed", zap.Int("records", n))
		}
	})
	if err != nil {
		return err
	}
	a.cron = c
	c.Start()
	return nil
}

// Stop дожидается текущего Flush и делает последний.
func (a *Archiver) Stop(ctx context.Context) {
	if a.cron == nil {
		return
	}
	<-a.cron.Stop().Done()
	if _, err := a.Flush(ctx); err != nil {
		a.log.Error("[ARCHIVE] final flush", zap.Error(err))
	}
}
