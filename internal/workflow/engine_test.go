package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Полный прогон доски: запрещённый бросок, затем разрешённый с
// подтверждением, мутацией и сверкой с сервером.
func TestBoardEndToEnd(t *testing.T) {
	r1 := makeRequest("r1", CodeNew, 1)
	f := newBoardFixture(t, []Request{r1})

	var rejected *TransitionRejectedError
	f.controller.OnRejected(func(e *TransitionRejectedError) { rejected = e })

	// Попытка NEW -> WON: закрытый граф такого ребра не имеет.
	f.controller.Begin("r1", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 40, Y: 0})
	require.NoError(t, f.controller.Drop(4))

	require.NotNil(t, rejected)
	assert.Equal(t, CodeNew, rejected.FromCode)
	assert.Equal(t, CodeWon, rejected.ToCode)
	assert.Empty(t, f.backend.mutateCalls)

	got, _ := f.store.Get("r1")
	assert.Equal(t, CodeNew, got.Status.Code, "карточка осталась на месте")

	// Сервер после мутации будет отдавать заявку уже в IN_PROGRESS.
	moved := r1
	moved.Status = StatusRef{ID: 2, Code: CodeInProgress, Name: "En Proceso"}
	f.backend.requests = []Request{moved}
	f.backend.summary = Summary{ByStatus: map[string]int{CodeInProgress: 1}, Total: 1}

	// NEW -> IN_PROGRESS разрешён, но требует подтверждения.
	f.controller.Begin("r1", Point{X: 0, Y: 0})
	f.controller.Move(Point{X: 40, Y: 0})
	require.NoError(t, f.controller.Drop(2))

	prompt := f.gate.Prompt()
	require.NotNil(t, prompt)
	assert.Equal(t, CodeInProgress, prompt.Target.Code)

	require.NoError(t, f.gate.Confirm(context.Background()))

	// Ровно одна удалённая запись и по одному перечитыванию.
	require.Len(t, f.backend.mutateCalls, 1)
	_, listCalls, summaryCalls := f.backend.stats()
	assert.Equal(t, 1, listCalls)
	assert.Equal(t, 1, summaryCalls)

	// Локальное состояние сошлось к серверному.
	got, _ = f.store.Get("r1")
	assert.Equal(t, CodeInProgress, got.Status.Code)
	assert.Equal(t, 1, f.store.LastSummary().Total)

	grouped := f.store.GroupByStatus(f.taxonomy.Snapshot())
	assert.Empty(t, grouped[CodeNew])
	assert.Len(t, grouped[CodeInProgress], 1)
}
