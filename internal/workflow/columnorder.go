package workflow

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// ColumnOrderPersistence доводит локальную перестановку колонок до
// сервера: по одному запросу на каждый изменившийся статус, строго
// последовательно. Операция не атомарна: при частичном провале уже
// применённые изменения не откатываются, вместо этого справочник
// перечитывается целиком и локальное состояние сходится к тому, что
// сервер реально принял.
type ColumnOrderPersistence struct {
	taxonomy *StatusTaxonomyStore
	backend  Backend
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight bool
}

func NewColumnOrderPersistence(taxonomy *StatusTaxonomyStore, backend Backend, logger *zap.Logger) *ColumnOrderPersistence {
	return &ColumnOrderPersistence{taxonomy: taxonomy, backend: backend, logger: logger}
}

// Reorder применяет перестановку локально сразу (отзывчивый интерфейс),
// затем последовательно сохраняет новый Sort каждого сдвинутого статуса.
// Пока предыдущая перестановка в полёте, новая не принимается — окно
// несогласованности не должно расширяться.
func (p *ColumnOrderPersistence) Reorder(ctx context.Context, fromIndex, toIndex int) error {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return ErrReorderInFlight
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	before := p.taxonomy.Snapshot()
	p.taxonomy.Reorder(fromIndex, toIndex)
	after := p.taxonomy.Snapshot()

	prevSort := make(map[uint64]int, len(before))
	for _, st := range before {
		prevSort[st.ID] = st.Sort
	}

	for _, st := range after {
		if prevSort[st.ID] == st.Sort {
			continue
		}
		if err := p.backend.ReorderStatus(ctx, st.ID, st.Sort); err != nil {
			p.logger.Error("ColumnOrderPersistence: сохранение порядка прервано, перечитываем справочник",
				zap.Uint64("statusID", st.ID),
				zap.Int("sort", st.Sort),
				zap.Error(err),
			)
			// Частично применённый порядок не откатываем: сервер —
			// источник правды, локальное состояние выравнивается
			// полным перечитыванием. Если и оно не удалось, остаёмся
			// на устаревшем, но целостном порядке.
			if loadErr := p.taxonomy.Load(ctx); loadErr != nil {
				p.logger.Warn("ColumnOrderPersistence: перечитывание справочника тоже не удалось", zap.Error(loadErr))
			}
			return err
		}
	}

	p.logger.Info("ColumnOrderPersistence: порядок колонок сохранён", zap.Int("from", fromIndex), zap.Int("to", toIndex))
	return nil
}

// InFlight — идёт ли сейчас сохранение перестановки.
func (p *ColumnOrderPersistence) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}
