package service

import (
	"sync"

	"option_chain/internal/models"
)

// Store — symbol -> последняя запись. Пишет один consumer фида, читают все.
// Апдейт по существующему символу заменяет запись целиком, символы не удаляются
// (кроме явного Reset).
type Store struct {
	mu      sync.RWMutex
	index   map[string]int // symbol -> позиция в entries
	entries []models.Entry // в порядке первого появления символа

	seq        uint64
	generation uint64
}

func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// Merge применяет dirty-апдейт: сначала calls, потом puts. Возвращает число
// применённых записей; записи без symbol пропускаются.
func (s *Store) Merge(u models.Update) int {
	if u.Len() == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, list := range [][]models.Record{u.Calls, u.Puts} {
		for _, r := range list {
			if r.Symbol == "" {
				continue
			}
			s.upsert(r)
			n++
		}
	}
	return n
}

func (s *Store) upsert(r models.Record) {
	s.seq++
	e := models.Entry{Record: r.Clone(), Seq: s.seq}
	if i, ok := s.index[r.Symbol]; ok {
		s.entries[i] = e
		return
	}
	s.index[r.Symbol] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Reset очищает стор по явному сигналу ресинка. Seq продолжает расти.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.index = make(map[string]int)
	s.entries = nil
	s.generation++
}

// Snapshot — копия всех записей в порядке первого появления символа.
func (s *Store) Snapshot() []models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = models.Entry{Record: e.Record.Clone(), Seq: e.Seq}
	}
	return out
}

// Since: записи, пришедшие позже seq (для архива).
func (s *Store) Since(seq uint64) []models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Entry
	for _, e := range s.entries {
		if e.Seq > seq {
			out = append(out, models.Entry{Record: e.Record.Clone(), Seq: e.Seq})
		}
	}
	return out
}

func (s *Store) Get(symbol string) (models.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[symbol]
	if !ok {
		return models.Entry{}, false
	}
	e := s.entries[i]
	return models.Entry{Record: e.Record.Clone(), Seq: e.Seq}, true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// номер последнего применённого upsert
func (s *Store) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// Generation увеличивается на каждый Reset.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
