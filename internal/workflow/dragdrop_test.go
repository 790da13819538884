package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type boardFixture struct {
	backend     *fakeBackend
	store       *RequestEntityStore
	taxonomy    *StatusTaxonomyStore
	coordinator *OptimisticMutationCoordinator
	gate        *ConfirmationGate
	controller  *DragDropController
}

func newBoardFixture(t *testing.T, requests []Request) *boardFixture {
	t.Helper()

	backend := &fakeBackend{taxonomy: builtinTaxonomy(), requests: requests}
	logger := zap.NewNop()

	taxonomy := NewStatusTaxonomyStore(backend, logger)
	require.NoError(t, taxonomy.Load(context.Background()))

	store := NewRequestEntityStore()
	store.ReplaceAll(requests)

	coordinator := NewOptimisticMutationCoordinator(store, backend, logger, nil)
	gate := NewConfirmationGate(coordinator, logger)
	controller := NewDragDropController(taxonomy, store, gate, logger)

	return &boardFixture{
		backend:     backend,
		store:       store,
		taxonomy:    taxonomy,
		coordinator: coordinator,
		gate:        gate,
		controller:  controller,
	}
}

func TestDragBelowThresholdIsClick(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	var opened string
	f.controller.OnOpenDetail(func(id string) { opened = id })

	f.controller.Begin("a", Point{X: 100, Y: 100})
	f.controller.Move(Point{X: 104, Y: 105}) // ~6.4px, ниже порога

	require.NoError(t, f.controller.Drop(2))
	assert.Equal(t, "a", opened)
	assert.Nil(t, f.gate.Prompt())
	assert.Empty(t, f.backend.mutateCalls)
}

func TestDragActivatesAtThreshold(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 8, Y: 0}) // ровно порог

	require.NoError(t, f.controller.Drop(2))
	prompt := f.gate.Prompt()
	require.NotNil(t, prompt)
	assert.Equal(t, "a", prompt.RequestID)
	assert.Equal(t, CodeInProgress, prompt.Target.Code)
}

func TestDropOnSameColumnIsSilent(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 20, Y: 0})

	require.NoError(t, f.controller.Drop(1)) // колонка NEW, где карточка и была
	assert.Nil(t, f.gate.Prompt())
	assert.Empty(t, f.backend.mutateCalls)
	_, listCalls, summaryCalls := f.backend.stats()
	assert.Zero(t, listCalls)
	assert.Zero(t, summaryCalls)
}

func TestDropWithoutBeginIsNoop(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})
	require.NoError(t, f.controller.Drop(2))
	assert.Nil(t, f.gate.Prompt())
}

func TestDropRejectedByPolicyNotifiesCallback(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeWon, 4)})

	var rejected *TransitionRejectedError
	f.controller.OnRejected(func(e *TransitionRejectedError) { rejected = e })

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 0, Y: 30})

	require.NoError(t, f.controller.Drop(1)) // WON -> NEW запрещён
	require.NotNil(t, rejected)
	assert.Equal(t, CodeWon, rejected.FromCode)
	assert.Equal(t, CodeNew, rejected.ToCode)
	assert.Nil(t, f.gate.Prompt())
	assert.Empty(t, f.backend.mutateCalls)
}

func TestDropOnUnknownColumn(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 30, Y: 0})

	assert.ErrorIs(t, f.controller.Drop(999), ErrStatusNotFound)
}

func TestCancelDropsIntent(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 30, Y: 0})
	f.controller.Cancel()

	require.NoError(t, f.controller.Drop(2))
	assert.Nil(t, f.gate.Prompt())
	assert.Empty(t, f.backend.mutateCalls)
}

func TestGateProposeVariants(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeInProgress, 2)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 30, Y: 0})
	require.NoError(t, f.controller.Drop(5)) // IN_PROGRESS -> LOST

	prompt := f.gate.Prompt()
	require.NotNil(t, prompt)
	assert.Equal(t, "danger", prompt.Variant, "негативный исход показывается в опасном варианте")
	assert.Equal(t, "Иван Петров", prompt.RequestTitle)

	f.gate.Cancel()
	assert.Nil(t, f.gate.Prompt())

	// Позитивный переход — обычный вариант.
	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 30, Y: 0})
	require.NoError(t, f.controller.Drop(4)) // IN_PROGRESS -> WON

	prompt = f.gate.Prompt()
	require.NotNil(t, prompt)
	assert.Equal(t, "default", prompt.Variant)
}

func TestGateConfirmCommitsAndClearsPrompt(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 30, Y: 0})
	require.NoError(t, f.controller.Drop(2))

	require.NoError(t, f.gate.Confirm(context.Background()))

	require.Len(t, f.backend.mutateCalls, 1)
	assert.Equal(t, CodeInProgress, f.backend.mutateCalls[0].Status.Code)
	assert.Nil(t, f.gate.Prompt())
	assert.False(t, f.gate.Loading())

	// Повторное подтверждение без нового намерения.
	assert.ErrorIs(t, f.gate.Confirm(context.Background()), ErrNoPendingPrompt)
	assert.Len(t, f.backend.mutateCalls, 1)
}

func TestGateCancelMakesNoNetworkCalls(t *testing.T) {
	f := newBoardFixture(t, []Request{makeRequest("a", CodeNew, 1)})

	f.controller.Begin("a", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 30, Y: 0})
	require.NoError(t, f.controller.Drop(2))

	f.gate.Cancel()

	assert.Empty(t, f.backend.mutateCalls)
	_, listCalls, summaryCalls := f.backend.stats()
	assert.Zero(t, listCalls)
	assert.Zero(t, summaryCalls)

	// Карточка осталась в исходной колонке.
	got, _ := f.store.Get("a")
	assert.Equal(t, CodeNew, got.Status.Code)
}
