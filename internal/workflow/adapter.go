package workflow

import (
	"context"
	"time"
)

// StatusRef — денормализованный снимок статуса внутри заявки.
// Это не "живая" ссылка на справочник: переименование статуса не меняет
// уже записанные Code/Name до перечитывания заявки с сервера.
type StatusRef struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type Note struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request — лид/заявка CRM, проходящая по воронке статусов.
type Request struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Status    StatusRef `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     []Note    `json:"notes"`
}

func (r Request) Title() string {
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// StatusDefinition — этап воронки из справочника организации.
type StatusDefinition struct {
	ID             uint64 `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Label          string `json:"label"`
	Color          string `json:"color"`
	Sort           int    `json:"sort"`
	IsDefault      bool   `json:"is_default"`
	OrganizationID uint64 `json:"organization_id"`
}

// Summary — агрегат по статусам, как его отдаёт сервер.
type Summary struct {
	ByStatus       map[string]int `json:"by_status"`
	Total          int            `json:"total"`
	ConversionRate float64        `json:"conversion_rate"`
}

// ListFilter — параметры выборки списка заявок.
type ListFilter struct {
	Limit int
	From  *time.Time
	To    *time.Time
}

// Backend — единственная точка общения движка с сервером.
// Конкретная реализация (HTTP, моки в тестах) подставляется снаружи,
// компоненты движка на неё не завязаны.
type Backend interface {
	FetchTaxonomy(ctx context.Context) ([]StatusDefinition, error)
	FetchRequests(ctx context.Context, filter ListFilter) ([]Request, error)
	FetchSummary(ctx context.Context) (Summary, error)
	MutateStatus(ctx context.Context, requestID string, status StatusRef) error
	ReorderStatus(ctx context.Context, statusID uint64, sort int) error
}
