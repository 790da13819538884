package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTaxonomyLoadSortsBySort(t *testing.T) {
	backend := &fakeBackend{taxonomy: []StatusDefinition{
		{ID: 3, Code: CodeRecontact, Sort: 3},
		{ID: 1, Code: CodeNew, Sort: 1, IsDefault: true},
		{ID: 2, Code: CodeInProgress, Sort: 2},
	}}
	store := NewStatusTaxonomyStore(backend, zap.NewNop())

	require.NoError(t, store.Load(context.Background()))
	assert.True(t, store.Loaded())

	snapshot := store.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, CodeNew, snapshot[0].Code)
	assert.Equal(t, CodeInProgress, snapshot[1].Code)
	assert.Equal(t, CodeRecontact, snapshot[2].Code)
}

func TestTaxonomyLoadFailureKeepsStaleData(t *testing.T) {
	backend := &fakeBackend{taxonomy: builtinTaxonomy()}
	store := NewStatusTaxonomyStore(backend, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))

	backend.taxonomyErr = errors.New("сеть недоступна")
	err := store.Load(context.Background())

	var fetchErr *TaxonomyFetchError
	require.ErrorAs(t, err, &fetchErr)

	// Устаревший справочник лучше пустого.
	assert.True(t, store.Loaded())
	assert.Len(t, store.Snapshot(), 6)
}

func TestTaxonomyLookups(t *testing.T) {
	backend := &fakeBackend{taxonomy: builtinTaxonomy()}
	store := NewStatusTaxonomyStore(backend, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))

	byID, ok := store.ByID(2)
	require.True(t, ok)
	assert.Equal(t, CodeInProgress, byID.Code)

	_, ok = store.ByID(99)
	assert.False(t, ok)

	byCode, ok := store.ByCode(CodeWon)
	require.True(t, ok)
	assert.Equal(t, uint64(4), byCode.ID)

	def, ok := store.Default()
	require.True(t, ok)
	assert.Equal(t, CodeNew, def.Code)
}

func TestTaxonomyReorderRenumbersDensely(t *testing.T) {
	backend := &fakeBackend{taxonomy: builtinTaxonomy()}
	store := NewStatusTaxonomyStore(backend, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))

	// IN_PROGRESS (индекс 1) уезжает на индекс 3.
	store.Reorder(1, 3)

	snapshot := store.Snapshot()
	codes := make([]string, 0, len(snapshot))
	for i, st := range snapshot {
		codes = append(codes, st.Code)
		assert.Equal(t, i+1, st.Sort, "Sort перенумеровывается плотно")
	}
	assert.Equal(t, []string{CodeNew, CodeRecontact, CodeWon, CodeInProgress, CodeLost, CodeClose}, codes)
}

func TestTaxonomyReorderIgnoresBadIndexes(t *testing.T) {
	backend := &fakeBackend{taxonomy: builtinTaxonomy()}
	store := NewStatusTaxonomyStore(backend, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))

	before := store.Snapshot()
	store.Reorder(-1, 2)
	store.Reorder(0, 42)
	store.Reorder(3, 3)
	assert.Equal(t, before, store.Snapshot())
}
