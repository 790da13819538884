package workflow

import (
	"context"
	"sync"
	"time"
)

type mutateCall struct {
	RequestID string
	Status    StatusRef
}

type reorderCall struct {
	StatusID uint64
	Sort     int
}

// fakeBackend — управляемая замена сервера для тестов движка:
// счётчики вызовов, запись аргументов и инъекция ошибок.
type fakeBackend struct {
	mu sync.Mutex

	taxonomy []StatusDefinition
	requests []Request
	summary  Summary

	taxonomyErr error
	requestsErr error
	summaryErr  error
	mutateErr   error

	// Проваливает N-й по счёту вызов ReorderStatus (нумерация с 1).
	failReorderCall int
	reorderErr      error

	// Если заданы, ReorderStatus сигналит о входе и ждёт отпускания.
	reorderStarted chan struct{}
	reorderRelease chan struct{}

	fetchTaxonomyCalls int
	fetchRequestsCalls int
	fetchSummaryCalls  int
	lastFilter         ListFilter

	mutateCalls  []mutateCall
	reorderCalls []reorderCall
}

func (f *fakeBackend) FetchTaxonomy(ctx context.Context) ([]StatusDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchTaxonomyCalls++
	if f.taxonomyErr != nil {
		return nil, f.taxonomyErr
	}
	out := make([]StatusDefinition, len(f.taxonomy))
	copy(out, f.taxonomy)
	return out, nil
}

func (f *fakeBackend) FetchRequests(ctx context.Context, filter ListFilter) ([]Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchRequestsCalls++
	f.lastFilter = filter
	if f.requestsErr != nil {
		return nil, f.requestsErr
	}
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out, nil
}

func (f *fakeBackend) FetchSummary(ctx context.Context) (Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchSummaryCalls++
	if f.summaryErr != nil {
		return Summary{}, f.summaryErr
	}
	return f.summary, nil
}

func (f *fakeBackend) MutateStatus(ctx context.Context, requestID string, status StatusRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutateCalls = append(f.mutateCalls, mutateCall{RequestID: requestID, Status: status})
	return f.mutateErr
}

func (f *fakeBackend) ReorderStatus(ctx context.Context, statusID uint64, sort int) error {
	f.mu.Lock()
	f.reorderCalls = append(f.reorderCalls, reorderCall{StatusID: statusID, Sort: sort})
	n := len(f.reorderCalls)
	started, release := f.reorderStarted, f.reorderRelease
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}

	if f.failReorderCall > 0 && n == f.failReorderCall {
		return f.reorderErr
	}
	return nil
}

func (f *fakeBackend) stats() (taxonomy, requests, summary int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchTaxonomyCalls, f.fetchRequestsCalls, f.fetchSummaryCalls
}

func builtinTaxonomy() []StatusDefinition {
	return []StatusDefinition{
		{ID: 1, Code: CodeNew, Name: "Nuevos", Sort: 1, IsDefault: true},
		{ID: 2, Code: CodeInProgress, Name: "En Proceso", Sort: 2},
		{ID: 3, Code: CodeRecontact, Name: "Recontactar", Sort: 3},
		{ID: 4, Code: CodeWon, Name: "Ganados", Sort: 4},
		{ID: 5, Code: CodeLost, Name: "Perdidos", Sort: 5},
		{ID: 6, Code: CodeClose, Name: "Cerrados", Sort: 6},
	}
}

func makeRequest(id, statusCode string, statusID uint64) Request {
	return Request{
		ID:        id,
		FirstName: "Иван",
		LastName:  "Петров",
		Status:    StatusRef{ID: statusID, Code: statusCode, Name: statusCode},
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}
