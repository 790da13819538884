package workflow

import (
	"sync"
	"time"
)

// Ключ группы для заявок, чей статус отсутствует в справочнике.
const UnknownStatusGroup = "UNKNOWN"

// EntitySnapshot — дословная копия заявки до оптимистичной правки.
// Откат — это восстановление копии, а не пересчёт: возвращаются все
// поля, включая UpdatedAt.
type EntitySnapshot struct {
	request Request
	existed bool
}

// RequestEntityStore — единственная нормализованная таблица заявок,
// из которой чистыми селекторами выводятся все представления (список,
// группировка по колонкам, сводка). Мутация и откат происходят ровно
// в одном месте, перечислять N кешей вручную не нужно.
type RequestEntityStore struct {
	mu      sync.Mutex
	byID    map[string]Request
	order   []string
	summary Summary
}

func NewRequestEntityStore() *RequestEntityStore {
	return &RequestEntityStore{byID: make(map[string]Request)}
}

// ReplaceAll замещает всю коллекцию результатом авторитетной выборки.
func (s *RequestEntityStore) ReplaceAll(requests []Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[string]Request, len(requests))
	s.order = make([]string, 0, len(requests))
	for _, r := range requests {
		if _, dup := s.byID[r.ID]; dup {
			continue
		}
		s.byID[r.ID] = r
		s.order = append(s.order, r.ID)
	}
}

func (s *RequestEntityStore) Get(id string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	return r, ok
}

func (s *RequestEntityStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// List возвращает заявки в порядке последней авторитетной выборки.
func (s *RequestEntityStore) List() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// ApplyStatus синхронно переписывает статус заявки и поднимает UpdatedAt
// на момент мутации. Возвращённый снимок делает откат точным.
func (s *RequestEntityStore) ApplyStatus(id string, target StatusRef, now time.Time) (EntitySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byID[id]
	if !ok {
		return EntitySnapshot{}, ErrRequestNotFound
	}

	snapshot := EntitySnapshot{request: prev, existed: true}

	updated := prev
	updated.Status = target
	updated.UpdatedAt = now
	s.byID[id] = updated

	return snapshot, nil
}

// Restore дословно возвращает заявку в состояние из снимка.
func (s *RequestEntityStore) Restore(snapshot EntitySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !snapshot.existed {
		return
	}
	if _, ok := s.byID[snapshot.request.ID]; !ok {
		return
	}
	s.byID[snapshot.request.ID] = snapshot.request
}

// GroupByStatus раскладывает заявки по колонкам доски. Для каждого
// статуса из справочника группа создаётся даже пустой; заявки с кодом
// вне справочника попадают в группу UNKNOWN.
func (s *RequestEntityStore) GroupByStatus(taxonomy []StatusDefinition) map[string][]Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	grouped := make(map[string][]Request, len(taxonomy)+1)
	known := make(map[string]struct{}, len(taxonomy))
	for _, st := range taxonomy {
		grouped[st.Code] = []Request{}
		known[st.Code] = struct{}{}
	}

	for _, id := range s.order {
		r := s.byID[id]
		if _, ok := known[r.Status.Code]; ok {
			grouped[r.Status.Code] = append(grouped[r.Status.Code], r)
		} else {
			grouped[UnknownStatusGroup] = append(grouped[UnknownStatusGroup], r)
		}
	}
	return grouped
}

// DeriveSummary — производная сводка из локальной таблицы. Конверсия
// считается как доля заявок в "выигранных" терминальных статусах.
func (s *RequestEntityStore) DeriveSummary(taxonomy []StatusDefinition) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	byStatus := make(map[string]int, len(taxonomy))
	for _, st := range taxonomy {
		byStatus[st.Code] = 0
	}

	won := 0
	for _, r := range s.byID {
		if _, ok := byStatus[r.Status.Code]; ok {
			byStatus[r.Status.Code]++
		} else {
			byStatus[UnknownStatusGroup]++
		}
		if r.Status.Code == CodeWon || r.Status.Code == CodeClose {
			won++
		}
	}

	total := len(s.byID)
	rate := 0.0
	if total > 0 {
		rate = float64(won) / float64(total)
	}
	return Summary{ByStatus: byStatus, Total: total, ConversionRate: rate}
}

// NewToday — количество заявок, созданных сегодня (для дашборда).
func (s *RequestEntityStore) NewToday(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	y, m, d := now.Date()
	count := 0
	for _, r := range s.byID {
		ry, rm, rd := r.CreatedAt.In(now.Location()).Date()
		if ry == y && rm == m && rd == d {
			count++
		}
	}
	return count
}

// SetSummary сохраняет авторитетную сводку, полученную с сервера.
func (s *RequestEntityStore) SetSummary(summary Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

// LastSummary — последняя успешно полученная серверная сводка.
func (s *RequestEntityStore) LastSummary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
