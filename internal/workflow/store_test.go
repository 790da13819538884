package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReplaceAllKeepsOrderAndSkipsDuplicates(t *testing.T) {
	store := NewRequestEntityStore()
	store.ReplaceAll([]Request{
		makeRequest("a", CodeNew, 1),
		makeRequest("b", CodeInProgress, 2),
		makeRequest("a", CodeWon, 4),
	})

	assert.Equal(t, 2, store.Len())
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	// Первая запись с дублирующимся ID побеждает.
	assert.Equal(t, CodeNew, list[0].Status.Code)
}

func TestStoreApplyStatusAndRestore(t *testing.T) {
	store := NewRequestEntityStore()
	original := makeRequest("a", CodeNew, 1)
	store.ReplaceAll([]Request{original})

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	target := StatusRef{ID: 2, Code: CodeInProgress, Name: "En Proceso"}

	snapshot, err := store.ApplyStatus("a", target, now)
	require.NoError(t, err)

	updated, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, target, updated.Status)
	assert.Equal(t, now, updated.UpdatedAt)

	// Откат дословный: возвращается всё, включая UpdatedAt.
	store.Restore(snapshot)
	restored, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, original, restored)
}

func TestStoreApplyStatusUnknownRequest(t *testing.T) {
	store := NewRequestEntityStore()
	_, err := store.ApplyStatus("ghost", StatusRef{Code: CodeWon}, time.Now())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestStoreGroupByStatus(t *testing.T) {
	store := NewRequestEntityStore()
	store.ReplaceAll([]Request{
		makeRequest("a", CodeNew, 1),
		makeRequest("b", CodeNew, 1),
		makeRequest("c", CodeWon, 4),
		makeRequest("d", "LEGACY_STATE", 0),
	})

	grouped := store.GroupByStatus(builtinTaxonomy())

	// Пустые колонки существуют для каждого статуса справочника.
	for _, st := range builtinTaxonomy() {
		_, ok := grouped[st.Code]
		assert.True(t, ok, "колонка %s должна существовать даже пустой", st.Code)
	}
	assert.Len(t, grouped[CodeNew], 2)
	assert.Len(t, grouped[CodeWon], 1)
	assert.Empty(t, grouped[CodeLost])

	// Статус вне справочника уходит в UNKNOWN, заявка не теряется.
	require.Len(t, grouped[UnknownStatusGroup], 1)
	assert.Equal(t, "d", grouped[UnknownStatusGroup][0].ID)
}

func TestStoreDeriveSummary(t *testing.T) {
	store := NewRequestEntityStore()
	store.ReplaceAll([]Request{
		makeRequest("a", CodeNew, 1),
		makeRequest("b", CodeInProgress, 2),
		makeRequest("c", CodeWon, 4),
		makeRequest("d", CodeClose, 6),
	})

	summary := store.DeriveSummary(builtinTaxonomy())
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[CodeNew])
	assert.Equal(t, 1, summary.ByStatus[CodeWon])
	assert.Equal(t, 0, summary.ByStatus[CodeLost])
	// Конверсия: WON и CLOSE считаются выигранными.
	assert.InDelta(t, 0.5, summary.ConversionRate, 1e-9)
}

func TestStoreDeriveSummaryEmpty(t *testing.T) {
	store := NewRequestEntityStore()
	summary := store.DeriveSummary(builtinTaxonomy())
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0.0, summary.ConversionRate)
}

func TestStoreNewToday(t *testing.T) {
	store := NewRequestEntityStore()

	now := time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)
	today := makeRequest("a", CodeNew, 1)
	today.CreatedAt = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	yesterday := makeRequest("b", CodeNew, 1)
	yesterday.CreatedAt = time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	store.ReplaceAll([]Request{today, yesterday})

	assert.Equal(t, 1, store.NewToday(now))
}

func TestStoreSummaryRoundTrip(t *testing.T) {
	store := NewRequestEntityStore()
	summary := Summary{ByStatus: map[string]int{CodeNew: 3}, Total: 3}
	store.SetSummary(summary)
	assert.Equal(t, summary, store.LastSummary())
}
