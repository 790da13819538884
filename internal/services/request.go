package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"crm-pipeline/internal/dto"
	"crm-pipeline/internal/entities"
	"crm-pipeline/internal/repositories"
	"crm-pipeline/internal/workflow"
	apperrors "crm-pipeline/pkg/errors"
	"crm-pipeline/pkg/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const summaryCacheKeyPrefix = "requests:summary:"

type RequestServiceInterface interface {
	GetRequests(ctx context.Context, orgID uint64, filter types.ListFilter) ([]dto.RequestDTO, uint64, error)
	FindRequest(ctx context.Context, orgID uint64, id string) (*dto.RequestDTO, error)
	CreateRequest(ctx context.Context, orgID uint64, payload dto.CreateRequestDTO) (*dto.RequestDTO, error)
	UpdateStatus(ctx context.Context, orgID uint64, id string, payload dto.UpdateRequestStatusDTO) (*dto.RequestDTO, error)
	GetSummary(ctx context.Context, orgID uint64) (*dto.RequestsSummaryDTO, error)
	AddNote(ctx context.Context, orgID uint64, requestID string, payload dto.CreateRequestNoteDTO) (*dto.RequestNoteDTO, error)
}

type RequestService struct {
	requestRepository repositories.RequestRepositoryInterface
	statusRepository  repositories.StatusRepositoryInterface
	cache             repositories.CacheRepositoryInterface
	summaryTTL        time.Duration
	logger            *zap.Logger
}

func NewRequestService(
	requestRepository repositories.RequestRepositoryInterface,
	statusRepository repositories.StatusRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	summaryTTL time.Duration,
	logger *zap.Logger,
) RequestServiceInterface {
	return &RequestService{
		requestRepository: requestRepository,
		statusRepository:  statusRepository,
		cache:             cache,
		summaryTTL:        summaryTTL,
		logger:            logger,
	}
}

func toRequestDTO(e entities.Request, notes []dto.RequestNoteDTO) dto.RequestDTO {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	if notes == nil {
		notes = []dto.RequestNoteDTO{}
	}
	return dto.RequestDTO{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     deref(e.Email),
		Phone:     deref(e.Phone),
		Company:   deref(e.Company),
		Status:    dto.ShortStatusDTO{ID: e.StatusID, Code: e.StatusCode, Name: e.StatusName},
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Notes:     notes,
	}
}

func (s *RequestService) GetRequests(ctx context.Context, orgID uint64, filter types.ListFilter) ([]dto.RequestDTO, uint64, error) {
	list, total, err := s.requestRepository.GetRequests(ctx, orgID, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.RequestDTO, 0, len(list))
	for _, e := range list {
		result = append(result, toRequestDTO(e, nil))
	}
	return result, total, nil
}

func (s *RequestService) FindRequest(ctx context.Context, orgID uint64, id string) (*dto.RequestDTO, error) {
	entity, err := s.requestRepository.FindRequest(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	notes, err := s.requestRepository.GetNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	noteDTOs := make([]dto.RequestNoteDTO, 0, len(notes))
	for _, n := range notes {
		noteDTOs = append(noteDTOs, dto.RequestNoteDTO{ID: n.ID, Content: n.Content, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt})
	}

	result := toRequestDTO(*entity, noteDTOs)
	return &result, nil
}

// CreateRequest создаёт заявку в статусе по умолчанию организации.
func (s *RequestService) CreateRequest(ctx context.Context, orgID uint64, payload dto.CreateRequestDTO) (*dto.RequestDTO, error) {
	statuses, err := s.statusRepository.GetStatuses(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var defaultStatus *dto.StatusDTO
	for i := range statuses {
		if statuses[i].IsDefault {
			defaultStatus = &statuses[i]
			break
		}
	}
	if defaultStatus == nil {
		s.logger.Error("CreateRequest: у организации нет статуса по умолчанию", zap.Uint64("orgID", orgID))
		return nil, apperrors.ErrUnknownStatus
	}

	ptrOrNil := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}
	entity := entities.Request{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Email:          ptrOrNil(payload.Email),
		Phone:          ptrOrNil(payload.Phone),
		Company:        ptrOrNil(payload.Company),
		StatusID:       defaultStatus.ID,
		StatusCode:     defaultStatus.Code,
		StatusName:     defaultStatus.Name,
	}

	created, err := s.requestRepository.CreateRequest(ctx, entity)
	if err != nil {
		s.logger.Error("ошибка при создании заявки", zap.Error(err))
		return nil, err
	}

	s.invalidateSummary(ctx, orgID)
	result := toRequestDTO(*created, nil)
	return &result, nil
}

// UpdateStatus выполняет переход заявки между статусами. Пара (from, to)
// проверяется той же политикой переходов, что и на клиенте: закрытый
// граф для встроенной воронки, открытый — когда организация завела
// собственные статусы.
func (s *RequestService) UpdateStatus(ctx context.Context, orgID uint64, id string, payload dto.UpdateRequestStatusDTO) (*dto.RequestDTO, error) {
	if payload.StatusCode == nil && payload.StatusID == nil {
		return nil, apperrors.NewInvalidInputError("нужно указать status_code или status_id")
	}

	entity, err := s.requestRepository.FindRequest(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	var target *dto.StatusDTO
	if payload.StatusCode != nil {
		target, err = s.statusRepository.FindByCode(ctx, orgID, *payload.StatusCode)
	} else {
		target, err = s.statusRepository.FindStatus(ctx, orgID, *payload.StatusID)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnknownStatus
		}
		return nil, err
	}

	statuses, err := s.statusRepository.GetStatuses(ctx, orgID)
	if err != nil {
		return nil, err
	}
	taxonomy := make([]workflow.StatusDefinition, 0, len(statuses))
	for _, st := range statuses {
		taxonomy = append(taxonomy, workflow.StatusDefinition{
			ID:        st.ID,
			Code:      st.Code,
			Name:      st.Name,
			Label:     st.Label,
			Sort:      st.Sort,
			IsDefault: st.IsDefault,
		})
	}

	decision := workflow.IsAllowed(entity.StatusCode, target.Code, taxonomy)
	if !decision.Allowed {
		s.logger.Warn("UpdateStatus: переход отклонён политикой",
			zap.String("requestID", id),
			zap.String("from", entity.StatusCode),
			zap.String("to", target.Code),
		)
		return nil, apperrors.ErrTransitionNotAllowed
	}

	updated, err := s.requestRepository.UpdateStatus(ctx, orgID, id, dto.ShortStatusDTO{ID: target.ID, Code: target.Code, Name: target.Name})
	if err != nil {
		s.logger.Error("ошибка при обновлении статуса заявки", zap.String("requestID", id), zap.Error(err))
		return nil, err
	}

	s.invalidateSummary(ctx, orgID)
	s.logger.Info("Статус заявки обновлён",
		zap.String("requestID", id),
		zap.String("from", entity.StatusCode),
		zap.String("to", target.Code),
	)
	result := toRequestDTO(*updated, nil)
	return &result, nil
}

// GetSummary отдаёт агрегат по статусам; результат кешируется в Redis и
// сбрасывается при каждой мутации статуса.
func (s *RequestService) GetSummary(ctx context.Context, orgID uint64) (*dto.RequestsSummaryDTO, error) {
	cacheKey := summaryCacheKey(orgID)

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		var summary dto.RequestsSummaryDTO
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			return &summary, nil
		}
	}

	byStatus, total, err := s.requestRepository.GetSummary(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var won uint64
	for code, count := range byStatus {
		if code == workflow.CodeWon || code == workflow.CodeClose {
			won += count
		}
	}
	rate := 0.0
	if total > 0 {
		rate = float64(won) / float64(total)
	}

	summary := &dto.RequestsSummaryDTO{ByStatus: byStatus, Total: total, ConversionRate: rate}

	if raw, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(raw), s.summaryTTL); err != nil {
			s.logger.Warn("GetSummary: не удалось записать сводку в кеш", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *RequestService) AddNote(ctx context.Context, orgID uint64, requestID string, payload dto.CreateRequestNoteDTO) (*dto.RequestNoteDTO, error) {
	// Заявка должна существовать и принадлежать организации.
	if _, err := s.requestRepository.FindRequest(ctx, orgID, requestID); err != nil {
		return nil, err
	}

	note, err := s.requestRepository.AddNote(ctx, requestID, payload.Content)
	if err != nil {
		return nil, err
	}
	return &dto.RequestNoteDTO{ID: note.ID, Content: note.Content, CreatedAt: note.CreatedAt, UpdatedAt: note.UpdatedAt}, nil
}

// invalidateSummary сбрасывает кешированную сводку после мутаций.
// Ошибка кеша не должна ломать основную операцию, поэтому только лог.
func (s *RequestService) invalidateSummary(ctx context.Context, orgID uint64) {
	if err := s.cache.Del(ctx, summaryCacheKey(orgID)); err != nil {
		s.logger.Warn("не удалось сбросить кеш сводки", zap.Uint64("orgID", orgID), zap.Error(err))
	}
}

func summaryCacheKey(orgID uint64) string {
	return summaryCacheKeyPrefix + strconv.FormatUint(orgID, 10)
}
