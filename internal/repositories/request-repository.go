package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crm-pipeline/internal/dto"
	"crm-pipeline/internal/entities"
	infradb "crm-pipeline/internal/infrastructure/db"
	apperrors "crm-pipeline/pkg/errors"
	"crm-pipeline/pkg/types"
	"crm-pipeline/pkg/utils"
)

const requestTable = "requests"

var requestColumns = []string{
	"id", "organization_id", "first_name", "last_name", "email", "phone", "company",
	"status_id", "status_code", "status_name", "created_at", "updated_at",
}

type RequestRepositoryInterface interface {
	GetRequests(ctx context.Context, orgID uint64, filter types.ListFilter) ([]entities.Request, uint64, error)
	FindRequest(ctx context.Context, orgID uint64, id string) (*entities.Request, error)
	CreateRequest(ctx context.Context, request entities.Request) (*entities.Request, error)
	UpdateStatus(ctx context.Context, orgID uint64, id string, status dto.ShortStatusDTO) (*entities.Request, error)
	GetSummary(ctx context.Context, orgID uint64) (map[string]uint64, uint64, error)
	GetNotes(ctx context.Context, requestID string) ([]entities.RequestNote, error)
	AddNote(ctx context.Context, requestID string, content string) (*entities.RequestNote, error)
}

type requestRepository struct{ storage *pgxpool.Pool }

func NewRequestRepository(storage *pgxpool.Pool) RequestRepositoryInterface {
	return &requestRepository{storage: storage}
}

type dbRequest struct {
	ID             string
	OrganizationID uint64
	FirstName      string
	LastName       string
	Email          sql.NullString
	Phone          sql.NullString
	Company        sql.NullString
	StatusID       uint64
	StatusCode     string
	StatusName     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (db *dbRequest) ToEntity() entities.Request {
	return entities.Request{
		ID:             db.ID,
		OrganizationID: db.OrganizationID,
		FirstName:      db.FirstName,
		LastName:       db.LastName,
		Email:          utils.NullStringToPtr(db.Email),
		Phone:          utils.NullStringToPtr(db.Phone),
		Company:        utils.NullStringToPtr(db.Company),
		StatusID:       db.StatusID,
		StatusCode:     db.StatusCode,
		StatusName:     db.StatusName,
		CreatedAt:      db.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      db.UpdatedAt.Format(time.RFC3339),
	}
}

func scanRequest(row pgx.Row) (*dbRequest, error) {
	var dbRow dbRequest
	err := row.Scan(&dbRow.ID, &dbRow.OrganizationID, &dbRow.FirstName, &dbRow.LastName,
		&dbRow.Email, &dbRow.Phone, &dbRow.Company,
		&dbRow.StatusID, &dbRow.StatusCode, &dbRow.StatusName,
		&dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &dbRow, nil
}

func (r *requestRepository) GetRequests(ctx context.Context, orgID uint64, filter types.ListFilter) ([]entities.Request, uint64, error) {
	countBuilder := sq.Select("COUNT(*)").From(requestTable).Where(sq.Eq{"organization_id": orgID})
	countBuilder = infradb.ApplyListFilter(countBuilder, types.ListFilter{From: filter.From, To: filter.To}, "created_at")

	countQuery, countArgs, err := countBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Request{}, 0, nil
	}

	builder := sq.Select(requestColumns...).
		From(requestTable).
		Where(sq.Eq{"organization_id": orgID}).
		OrderBy("created_at DESC")
	builder = infradb.ApplyListFilter(builder, filter, "created_at")

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]entities.Request, 0)
	for rows.Next() {
		dbRow, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, dbRow.ToEntity())
	}
	return requests, total, rows.Err()
}

func (r *requestRepository) FindRequest(ctx context.Context, orgID uint64, id string) (*entities.Request, error) {
	builder := sq.Select(requestColumns...).
		From(requestTable).
		Where(sq.Eq{"organization_id": orgID, "id": id})

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	dbRow, err := scanRequest(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	entity := dbRow.ToEntity()
	return &entity, nil
}

func (r *requestRepository) CreateRequest(ctx context.Context, request entities.Request) (*entities.Request, error) {
	query := `INSERT INTO requests (id, organization_id, first_name, last_name, email, phone, company, status_id, status_code, status_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, organization_id, first_name, last_name, email, phone, company, status_id, status_code, status_name, created_at, updated_at`

	dbRow, err := scanRequest(r.storage.QueryRow(ctx, query,
		request.ID, request.OrganizationID, request.FirstName, request.LastName,
		request.Email, request.Phone, request.Company,
		request.StatusID, request.StatusCode, request.StatusName))
	if err != nil {
		return nil, err
	}
	entity := dbRow.ToEntity()
	return &entity, nil
}

// UpdateStatus переписывает денормализованный снимок статуса заявки.
// Вызов идемпотентен: одна и та же пара (id, статус) всегда сходится к
// одному конечному состоянию.
func (r *requestRepository) UpdateStatus(ctx context.Context, orgID uint64, id string, status dto.ShortStatusDTO) (*entities.Request, error) {
	query := `UPDATE requests SET status_id = $1, status_code = $2, status_name = $3, updated_at = NOW()
		WHERE organization_id = $4 AND id = $5
		RETURNING id, organization_id, first_name, last_name, email, phone, company, status_id, status_code, status_name, created_at, updated_at`

	dbRow, err := scanRequest(r.storage.QueryRow(ctx, query, status.ID, status.Code, status.Name, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	entity := dbRow.ToEntity()
	return &entity, nil
}

// GetSummary — количество заявок по кодам статусов.
func (r *requestRepository) GetSummary(ctx context.Context, orgID uint64) (map[string]uint64, uint64, error) {
	builder := sq.Select("status_code", "COUNT(*)").
		From(requestTable).
		Where(sq.Eq{"organization_id": orgID}).
		GroupBy("status_code")

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	byStatus := make(map[string]uint64)
	var total uint64
	for rows.Next() {
		var code string
		var count uint64
		if err := rows.Scan(&code, &count); err != nil {
			return nil, 0, err
		}
		byStatus[code] = count
		total += count
	}
	return byStatus, total, rows.Err()
}

func (r *requestRepository) GetNotes(ctx context.Context, requestID string) ([]entities.RequestNote, error) {
	query := `SELECT id, request_id, content, created_at, updated_at FROM request_notes WHERE request_id = $1 ORDER BY created_at`

	rows, err := r.storage.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]entities.RequestNote, 0)
	for rows.Next() {
		var id uint64
		var reqID, content string
		var createdAt time.Time
		var updatedAt sql.NullTime
		if err := rows.Scan(&id, &reqID, &content, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, entities.RequestNote{
			ID:        id,
			RequestID: reqID,
			Content:   content,
			CreatedAt: createdAt.Format(time.RFC3339),
			UpdatedAt: utils.NullTimeToRFC3339(updatedAt),
		})
	}
	return notes, rows.Err()
}

func (r *requestRepository) AddNote(ctx context.Context, requestID string, content string) (*entities.RequestNote, error) {
	query := `INSERT INTO request_notes (request_id, content) VALUES ($1, $2) RETURNING id, request_id, content, created_at, updated_at`

	var id uint64
	var reqID, noteContent string
	var createdAt time.Time
	var updatedAt sql.NullTime
	err := r.storage.QueryRow(ctx, query, requestID, content).Scan(&id, &reqID, &noteContent, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return &entities.RequestNote{
		ID:        id,
		RequestID: reqID,
		Content:   noteContent,
		CreatedAt: createdAt.Format(time.RFC3339),
		UpdatedAt: utils.NullTimeToRFC3339(updatedAt),
	}, nil
}
