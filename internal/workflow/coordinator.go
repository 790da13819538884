package workflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PendingMutation живёт от подтверждения перехода до завершения
// удалённой записи. Хранит снимок, делающий откат дословным.
type PendingMutation struct {
	RequestID      string
	PreviousStatus StatusRef
	TargetStatus   StatusRef
	snapshot       EntitySnapshot
}

// OptimisticMutationCoordinator — ядро согласованности. Применяет смену
// статуса локально ДО сетевого вызова, а после завершения (успех или
// провал) безусловно перечитывает список и сводку: оптимистичная запись
// лишь скрывает задержку и никогда не является источником правды.
type OptimisticMutationCoordinator struct {
	store   *RequestEntityStore
	backend Backend
	logger  *zap.Logger

	// Канал ошибок наружу (лог + тост); собственной обработки у него нет.
	errorSink func(error)

	// Фильтр, с которым перечитывается список после завершения мутации.
	filter ListFilter

	mu      sync.Mutex
	pending map[string]*PendingMutation
}

func NewOptimisticMutationCoordinator(store *RequestEntityStore, backend Backend, logger *zap.Logger, errorSink func(error)) *OptimisticMutationCoordinator {
	if errorSink == nil {
		errorSink = func(error) {}
	}
	return &OptimisticMutationCoordinator{
		store:     store,
		backend:   backend,
		logger:    logger,
		errorSink: errorSink,
		filter:    ListFilter{Limit: 999},
		pending:   make(map[string]*PendingMutation),
	}
}

// SetListFilter задаёт параметры, с которыми координатор перечитывает
// список после завершения мутации.
func (c *OptimisticMutationCoordinator) SetListFilter(filter ListFilter) {
	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()
}

// Commit выполняет подтверждённый переход:
//  1. снимок текущего состояния заявки;
//  2. синхронная оптимистичная правка (статус + UpdatedAt);
//  3. удалённая запись — ровно один вызов на действие пользователя,
//     без повторов; таймаут равносилен любой другой сетевой ошибке;
//  4. успех — снимок отбрасывается; провал — дословное восстановление
//     и ошибка в канал ошибок;
//  5. в обоих случаях — безусловное перечитывание списка и сводки.
//
// Возвращается после завершения перечитываний.
func (c *OptimisticMutationCoordinator) Commit(ctx context.Context, requestID string, target StatusRef) error {
	now := time.Now()

	snapshot, err := c.store.ApplyStatus(requestID, target, now)
	if err != nil {
		return err
	}

	mutation := &PendingMutation{
		RequestID:      requestID,
		PreviousStatus: snapshot.request.Status,
		TargetStatus:   target,
		snapshot:       snapshot,
	}

	// Вторая мутация той же заявки до завершения первой просто
	// затирает её снимок: побеждает последняя запись. Это принятое
	// ограничение, а не гарантия.
	c.mu.Lock()
	if _, overlapped := c.pending[requestID]; overlapped {
		c.logger.Warn("OptimisticMutationCoordinator: мутация той же заявки ещё в полёте, снимок перезаписан",
			zap.String("requestID", requestID))
	}
	c.pending[requestID] = mutation
	c.mu.Unlock()

	mutationErr := c.backend.MutateStatus(ctx, requestID, target)

	if mutationErr != nil {
		// Откат строго до перечитывания.
		c.store.Restore(mutation.snapshot)
		failure := &MutationFailedError{RequestID: requestID, Err: mutationErr}
		c.logger.Error("OptimisticMutationCoordinator: удалённая запись не удалась, снимки восстановлены",
			zap.String("requestID", requestID),
			zap.String("from", mutation.PreviousStatus.Code),
			zap.String("to", target.Code),
			zap.Error(mutationErr),
		)
		c.errorSink(failure)
		c.settle(mutation)
		c.Reconcile(ctx)
		return failure
	}

	c.logger.Info("OptimisticMutationCoordinator: статус заявки изменён",
		zap.String("requestID", requestID),
		zap.String("from", mutation.PreviousStatus.Code),
		zap.String("to", target.Code),
	)
	c.settle(mutation)
	c.Reconcile(ctx)
	return nil
}

// settle уничтожает PendingMutation, если её не затёрла более поздняя.
func (c *OptimisticMutationCoordinator) settle(mutation *PendingMutation) {
	c.mu.Lock()
	if c.pending[mutation.RequestID] == mutation {
		delete(c.pending, mutation.RequestID)
	}
	c.mu.Unlock()
}

// Reconcile безусловно перечитывает список и сводку. Между ними нет
// гарантии порядка — они гонятся, и допустим кадр, где одно уже отражает
// новое состояние, а другое ещё нет. Ошибка перечитывания оставляет
// последнее хорошее состояние и только логируется.
func (c *OptimisticMutationCoordinator) Reconcile(ctx context.Context) {
	c.mu.Lock()
	filter := c.filter
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		requests, err := c.backend.FetchRequests(ctx, filter)
		if err != nil {
			c.logger.Warn("OptimisticMutationCoordinator: перечитывание списка не удалось, остаёмся на последнем хорошем состоянии", zap.Error(err))
			return
		}
		c.store.ReplaceAll(requests)
	}()

	go func() {
		defer wg.Done()
		summary, err := c.backend.FetchSummary(ctx)
		if err != nil {
			c.logger.Warn("OptimisticMutationCoordinator: перечитывание сводки не удалось, остаёмся на последнем хорошем состоянии", zap.Error(err))
			return
		}
		c.store.SetSummary(summary)
	}()

	wg.Wait()
}

// InFlight сообщает, есть ли незавершённая мутация по заявке.
func (c *OptimisticMutationCoordinator) InFlight(requestID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[requestID]
	return ok
}
