package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-pipeline/internal/dto"
	apperrors "crm-pipeline/pkg/errors"
	"crm-pipeline/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbStatus struct {
	ID             uint64
	OrganizationID uint64
	Code           string
	Name           string
	Label          sql.NullString
	Color          sql.NullString
	Sort           int
	IsDefault      bool
	CreatedAt      time.Time
	UpdatedAt      sql.NullTime
}

func (db *dbStatus) ToDTO() dto.StatusDTO {
	return dto.StatusDTO{
		ID:        db.ID,
		Code:      db.Code,
		Name:      db.Name,
		Label:     utils.NullStringToString(db.Label),
		Color:     utils.NullStringToString(db.Color),
		Sort:      db.Sort,
		IsDefault: db.IsDefault,
		CreatedAt: db.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		UpdatedAt: utils.NullTimeToEmptyString(db.UpdatedAt),
	}
}

const (
	statusTable  = "statuses"
	statusFields = "id, organization_id, code, name, label, color, sort, is_default, created_at, updated_at"
)

type StatusRepositoryInterface interface {
	GetStatuses(ctx context.Context, orgID uint64) ([]dto.StatusDTO, error)
	FindStatus(ctx context.Context, orgID, id uint64) (*dto.StatusDTO, error)
	FindByCode(ctx context.Context, orgID uint64, code string) (*dto.StatusDTO, error)
	CreateStatus(ctx context.Context, orgID uint64, payload dto.CreateStatusDTO) (*dto.StatusDTO, error)
	UpdateStatus(ctx context.Context, orgID, id uint64, payload dto.UpdateStatusDTO) (*dto.StatusDTO, error)
	UpdateSort(ctx context.Context, orgID, id uint64, sort int) (*dto.StatusDTO, error)
	DeleteStatus(ctx context.Context, orgID, id uint64) error
}

type statusRepository struct{ storage *pgxpool.Pool }

func NewStatusRepository(storage *pgxpool.Pool) StatusRepositoryInterface {
	return &statusRepository{storage: storage}
}

func scanStatus(row pgx.Row) (*dbStatus, error) {
	var dbRow dbStatus
	err := row.Scan(&dbRow.ID, &dbRow.OrganizationID, &dbRow.Code, &dbRow.Name, &dbRow.Label, &dbRow.Color, &dbRow.Sort, &dbRow.IsDefault, &dbRow.CreatedAt, &dbRow.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &dbRow, nil
}

// GetStatuses отдаёт справочник организации в порядке колонок (sort).
func (r *statusRepository) GetStatuses(ctx context.Context, orgID uint64) ([]dto.StatusDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE organization_id = $1 ORDER BY sort, id", statusFields, statusTable)

	rows, err := r.storage.Query(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]dto.StatusDTO, 0)
	for rows.Next() {
		dbRow, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, dbRow.ToDTO())
	}
	return statuses, rows.Err()
}

func (r *statusRepository) FindStatus(ctx context.Context, orgID, id uint64) (*dto.StatusDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE organization_id = $1 AND id = $2", statusFields, statusTable)
	dbRow, err := scanStatus(r.storage.QueryRow(ctx, query, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	statusDTO := dbRow.ToDTO()
	return &statusDTO, nil
}

func (r *statusRepository) FindByCode(ctx context.Context, orgID uint64, code string) (*dto.StatusDTO, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE organization_id = $1 AND code = $2 LIMIT 1", statusFields, statusTable)
	dbRow, err := scanStatus(r.storage.QueryRow(ctx, query, orgID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	statusDTO := dbRow.ToDTO()
	return &statusDTO, nil
}

// CreateStatus добавляет статус в конец доски. Если новый статус
// объявлен статусом по умолчанию, прежний default снимается в той же
// транзакции — инвариант "ровно один default на организацию".
func (r *statusRepository) CreateStatus(ctx context.Context, orgID uint64, payload dto.CreateStatusDTO) (*dto.StatusDTO, error) {
	tx, err := r.storage.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if payload.IsDefault {
		if _, err := tx.Exec(ctx, fmt.Sprintf("UPDATE %s SET is_default = FALSE WHERE organization_id = $1 AND is_default", statusTable), orgID); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf(`INSERT INTO %s (organization_id, code, name, label, color, sort, is_default)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), (SELECT COALESCE(MAX(sort), 0) + 1 FROM %s WHERE organization_id = $1), $6)
		RETURNING %s`, statusTable, statusTable, statusFields)

	dbRow, err := scanStatus(tx.QueryRow(ctx, query, orgID, payload.Code, payload.Name, payload.Label, payload.Color, payload.IsDefault))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	statusDTO := dbRow.ToDTO()
	return &statusDTO, nil
}

func (r *statusRepository) UpdateStatus(ctx context.Context, orgID, id uint64, payload dto.UpdateStatusDTO) (*dto.StatusDTO, error) {
	var setClauses []string
	var args []interface{}
	argId := 1

	if payload.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argId))
		args = append(args, *payload.Name)
		argId++
	}
	if payload.Label != nil {
		setClauses = append(setClauses, fmt.Sprintf("label = $%d", argId))
		args = append(args, *payload.Label)
		argId++
	}
	if payload.Color != nil {
		setClauses = append(setClauses, fmt.Sprintf("color = $%d", argId))
		args = append(args, *payload.Color)
		argId++
	}
	if len(setClauses) == 0 && payload.IsDefault == nil {
		return r.FindStatus(ctx, orgID, id)
	}

	tx, err := r.storage.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if payload.IsDefault != nil && *payload.IsDefault {
		if _, err := tx.Exec(ctx, fmt.Sprintf("UPDATE %s SET is_default = FALSE WHERE organization_id = $1 AND is_default AND id <> $2", statusTable), orgID, id); err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "is_default = TRUE")
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	setQuery := strings.Join(setClauses, ", ")

	query := fmt.Sprintf("UPDATE %s SET %s WHERE organization_id = $%d AND id = $%d RETURNING %s", statusTable, setQuery, argId, argId+1, statusFields)
	args = append(args, orgID, id)

	dbRow, err := scanStatus(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	statusDTO := dbRow.ToDTO()
	return &statusDTO, nil
}

// UpdateSort меняет порядок одного элемента. Перестановка колонок — это
// последовательность таких вызовов от клиента; уникальность sort внутри
// организации в середине перестановки может временно нарушаться.
func (r *statusRepository) UpdateSort(ctx context.Context, orgID, id uint64, sort int) (*dto.StatusDTO, error) {
	query := fmt.Sprintf("UPDATE %s SET sort = $1, updated_at = NOW() WHERE organization_id = $2 AND id = $3 RETURNING %s", statusTable, statusFields)
	dbRow, err := scanStatus(r.storage.QueryRow(ctx, query, sort, orgID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	statusDTO := dbRow.ToDTO()
	return &statusDTO, nil
}

func (r *statusRepository) DeleteStatus(ctx context.Context, orgID, id uint64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE organization_id = $1 AND id = $2", statusTable)
	result, err := r.storage.Exec(ctx, query, orgID, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrStatusInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
