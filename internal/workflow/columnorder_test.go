package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fourColumns() []StatusDefinition {
	return []StatusDefinition{
		{ID: 1, Code: CodeNew, Sort: 1, IsDefault: true},
		{ID: 2, Code: CodeInProgress, Sort: 2},
		{ID: 3, Code: CodeRecontact, Sort: 3},
		{ID: 4, Code: CodeWon, Sort: 4},
	}
}

func newColumnOrderFixture(t *testing.T, backend *fakeBackend) (*StatusTaxonomyStore, *ColumnOrderPersistence) {
	t.Helper()
	logger := zap.NewNop()
	taxonomy := NewStatusTaxonomyStore(backend, logger)
	require.NoError(t, taxonomy.Load(context.Background()))
	return taxonomy, NewColumnOrderPersistence(taxonomy, backend, logger)
}

func TestReorderPersistsOnlyChangedSorts(t *testing.T) {
	backend := &fakeBackend{taxonomy: fourColumns()}
	taxonomy, persistence := newColumnOrderFixture(t, backend)

	// IN_PROGRESS (индекс 1) уезжает в конец.
	require.NoError(t, persistence.Reorder(context.Background(), 1, 3))

	codes := make([]string, 0, 4)
	for _, st := range taxonomy.Snapshot() {
		codes = append(codes, st.Code)
	}
	assert.Equal(t, []string{CodeNew, CodeRecontact, CodeWon, CodeInProgress}, codes)

	// NEW не сдвинулся, запрос по нему не уходит. Остальные — строго
	// последовательно, в порядке нового списка.
	expected := []reorderCall{
		{StatusID: 3, Sort: 2},
		{StatusID: 4, Sort: 3},
		{StatusID: 2, Sort: 4},
	}
	assert.Equal(t, expected, backend.reorderCalls)
	assert.False(t, persistence.InFlight())
}

func TestReorderPartialFailureRefetchesInsteadOfRollback(t *testing.T) {
	serverOrder := fourColumns()
	backend := &fakeBackend{
		taxonomy:        serverOrder,
		failReorderCall: 2,
		reorderErr:      errors.New("HTTP 500"),
	}
	taxonomy, persistence := newColumnOrderFixture(t, backend)

	err := persistence.Reorder(context.Background(), 1, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, backend.reorderErr)

	// После провала порядок не откатывается вручную, а перечитывается
	// с сервера: локальное состояние сошлось к серверному.
	taxonomyCalls, _, _ := backend.stats()
	assert.Equal(t, 2, taxonomyCalls, "начальная загрузка + перечитывание после провала")

	codes := make([]string, 0, 4)
	for _, st := range taxonomy.Snapshot() {
		codes = append(codes, st.Code)
	}
	assert.Equal(t, []string{CodeNew, CodeInProgress, CodeRecontact, CodeWon}, codes)

	// Отправка остановилась на провалившемся вызове.
	assert.Len(t, backend.reorderCalls, 2)
	assert.False(t, persistence.InFlight())
}

func TestReorderFailedRefetchKeepsLocalOrder(t *testing.T) {
	backend := &fakeBackend{
		taxonomy:        fourColumns(),
		failReorderCall: 1,
		reorderErr:      errors.New("HTTP 500"),
	}
	taxonomy, persistence := newColumnOrderFixture(t, backend)

	// Перечитывание тоже провалится: остаёмся на локальном порядке.
	backend.taxonomyErr = errors.New("сеть недоступна")

	err := persistence.Reorder(context.Background(), 0, 2)
	require.ErrorIs(t, err, backend.reorderErr)

	codes := make([]string, 0, 4)
	for _, st := range taxonomy.Snapshot() {
		codes = append(codes, st.Code)
	}
	assert.Equal(t, []string{CodeInProgress, CodeRecontact, CodeNew, CodeWon}, codes)
}

func TestReorderRejectsOverlappingCalls(t *testing.T) {
	backend := &fakeBackend{
		taxonomy:       fourColumns(),
		reorderStarted: make(chan struct{}, 4),
		reorderRelease: make(chan struct{}),
	}
	_, persistence := newColumnOrderFixture(t, backend)

	done := make(chan error, 1)
	go func() {
		done <- persistence.Reorder(context.Background(), 1, 3)
	}()

	<-backend.reorderStarted
	assert.True(t, persistence.InFlight())

	// Пока первая перестановка в полёте, вторая не принимается.
	assert.ErrorIs(t, persistence.Reorder(context.Background(), 0, 1), ErrReorderInFlight)

	close(backend.reorderRelease)
	for i := 0; i < 2; i++ {
		<-backend.reorderStarted
	}
	require.NoError(t, <-done)
	assert.False(t, persistence.InFlight())
}
