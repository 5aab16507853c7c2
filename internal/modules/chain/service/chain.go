package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"option_chain/internal/models"
	"option_chain/internal/modules/config"
	healthService "option_chain/internal/modules/health/service"
	storeService "option_chain/internal/modules/store/service"
	"option_chain/pkg/metrics"
	"option_chain/pkg/tracing"
)

// Service связывает стор, состояние фида и формулу. Сам ничего не хранит,
// кроме текста формулы и подписчиков.
type Service struct {
	log       *zap.Logger
	store     *storeService.Store
	state     *healthService.State
	assembler *Assembler

	mu      sync.RWMutex
	formula string

	renders singleflight.Group

	subsMu  sync.Mutex
	subs    map[uint64]chan struct{}
	nextSub uint64
}

func NewService(
	log *zap.Logger,
	cfg *config.Config,
	store *storeService.Store,
	state *healthService.State,
	assembler *Assembler,
) *Service {
	f := cfg.Formula.Default
	if f == "" {
		f = config.DefaultFormula
	}
	return &Service{
		log:       log,
		store:     store,
		state:     state,
		assembler: assembler,
		formula:   f,
		subs:      make(map[uint64]chan struct{}),
	}
}

// Apply применяет кадр фида. Вызывается только consumer'ом фида.
func (s *Service) Apply(ctx context.Context, msg models.Message) int {
	span, _ := tracing.Start(ctx, "chain.apply")
	defer span.Finish()
	span.SetTag("event", msg.Event)

	s.state.TouchMessage(time.Now())

	if msg.Event == models.EventResync {
		s.Reset()
		return 0
	}

	n := s.store.Merge(msg.Update)
	span.SetTag("records", n)
	if n == 0 {
		return 0
	}
	metrics.MergedRecords.Add(float64(n))
	metrics.StoredRecords.Set(float64(s.store.Len()))
	s.notify()
	return n
}

// Reset очищает стор (ресинк с апстримом).
func (s *Service) Reset() {
	s.store.Reset()
	metrics.StoredRecords.Set(0)
	s.log.Info("[CHAIN] store reset")
	s.notify()
}

func (s *Service) Formula() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formula
}

// SetFormula сохраняет формулу как есть: невалидная формула не отклоняется,
// а даёт Error в каждой строке.
func (s *Service) SetFormula(text string) {
	s.mu.Lock()
	changed := s.formula != text
	s.formula = text
	s.mu.Unlock()

	if changed {
		s.log.Info("[CHAIN] formula changed", zap.String("formula", text))
		s.notify()
	}
}

// SetConnected обновляет флаг фида; подписчики будятся только на переходах.
func (s *Service) SetConnected(v bool) bool {
	if !s.state.SetConnected(v) {
		return false
	}
	if v {
		metrics.FeedConnected.Set(1)
		s.state.SetReady(true)
	} else {
		metrics.FeedConnected.Set(0)
	}
	s.notify()
	return true
}

func (s *Service) Connected() bool { return s.state.Connected() }

// MarkReady — данные есть (например, восстановлены из архива) ещё до коннекта.
func (s *Service) MarkReady() { s.state.SetReady(true) }

// Store нужен архиву.
func (s *Service) Store() *storeService.Store { return s.store }

// View собирает таблицу для формулы. Одинаковые параллельные запросы на одно
// состояние стора считаются один раз; результат общий и только для чтения.
func (s *Service) View(ctx context.Context, formulaText string) models.View {
	connected := s.state.Connected()
	key := fmt.Sprintf("%d/%d/%t/%s", s.store.Generation(), s.store.LastSeq(), connected, formulaText)

	v, _, _ := s.renders.Do(key, func() (interface{}, error) {
		return s.render(ctx, formulaText, connected), nil
	})
	return v.(models.View)
}

func (s *Service) CurrentView(ctx context.Context) models.View {
	return s.View(ctx, s.Formula())
}

func (s *Service) render(ctx context.Context, formulaText string, connected bool) models.View {
	span, _ := tracing.Start(ctx, "chain.render")
	defer span.Finish()

	started := time.Now()
	rows := Group(s.store.Snapshot()).Rows()
	view := s.assembler.Assemble(rows, formulaText, connected)
	metrics.RenderSeconds.Observe(time.Since(started).Seconds())

	for _, r := range view.Rows {
		metrics.FormulaResults.WithLabelValues(string(r.Status)).Inc()
	}
	span.SetTag("rows", len(view.Rows))
	return view
}

// Subscribe возвращает канал "что-то изменилось". Канал с буфером 1:
// пачка изменений сливается в одно уведомление.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Service) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
