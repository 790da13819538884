package workflow

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// StatusTaxonomyStore — единственный источник правды о том, какие статусы
// существуют у организации и в каком порядке идут колонки.
type StatusTaxonomyStore struct {
	backend Backend
	logger  *zap.Logger

	mu       sync.Mutex
	statuses []StatusDefinition
	loaded   bool
}

func NewStatusTaxonomyStore(backend Backend, logger *zap.Logger) *StatusTaxonomyStore {
	return &StatusTaxonomyStore{backend: backend, logger: logger}
}

// Load загружает справочник. При ошибке ранее загруженные статусы НЕ
// сбрасываются: устаревший, но целостный справочник лучше пустого.
func (s *StatusTaxonomyStore) Load(ctx context.Context) error {
	fetched, err := s.backend.FetchTaxonomy(ctx)
	if err != nil {
		s.logger.Error("StatusTaxonomyStore: ошибка загрузки справочника, сохраняем прежние данные", zap.Error(err))
		return &TaxonomyFetchError{Err: err}
	}

	sort.SliceStable(fetched, func(i, j int) bool {
		return fetched[i].Sort < fetched[j].Sort
	})

	s.mu.Lock()
	s.statuses = fetched
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("StatusTaxonomyStore: справочник статусов загружен", zap.Int("count", len(fetched)))
	return nil
}

// Snapshot возвращает копию упорядоченного списка статусов.
func (s *StatusTaxonomyStore) Snapshot() []StatusDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StatusDefinition, len(s.statuses))
	copy(out, s.statuses)
	return out
}

func (s *StatusTaxonomyStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *StatusTaxonomyStore) ByID(id uint64) (StatusDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if st.ID == id {
			return st, true
		}
	}
	return StatusDefinition{}, false
}

func (s *StatusTaxonomyStore) ByCode(code string) (StatusDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if st.Code == code {
			return st, true
		}
	}
	return StatusDefinition{}, false
}

// Default возвращает статус, в котором создаются новые заявки.
func (s *StatusTaxonomyStore) Default() (StatusDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.statuses {
		if st.IsDefault {
			return st, true
		}
	}
	return StatusDefinition{}, false
}

// Reorder переставляет колонку локально и синхронно: интерфейс должен
// отреагировать мгновенно, долговечность обеспечивает ColumnOrderPersistence.
// Значения Sort перенумеровываются плотно (1..N).
func (s *StatusTaxonomyStore) Reorder(fromIndex, toIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fromIndex < 0 || fromIndex >= len(s.statuses) || toIndex < 0 || toIndex >= len(s.statuses) || fromIndex == toIndex {
		return
	}

	moved := s.statuses[fromIndex]
	rest := append(append([]StatusDefinition{}, s.statuses[:fromIndex]...), s.statuses[fromIndex+1:]...)
	reordered := append(append(append([]StatusDefinition{}, rest[:toIndex]...), moved), rest[toIndex:]...)

	for i := range reordered {
		reordered[i].Sort = i + 1
	}
	s.statuses = reordered
}
