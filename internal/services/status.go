package services

import (
	"context"

	"crm-pipeline/internal/dto"
	"crm-pipeline/internal/repositories"
	apperrors "crm-pipeline/pkg/errors"

	"go.uber.org/zap"
)

type StatusServiceInterface interface {
	GetStatuses(ctx context.Context, orgID uint64) ([]dto.StatusDTO, error)
	FindStatus(ctx context.Context, orgID, id uint64) (*dto.StatusDTO, error)
	CreateStatus(ctx context.Context, orgID uint64, payload dto.CreateStatusDTO) (*dto.StatusDTO, error)
	UpdateStatus(ctx context.Context, orgID, id uint64, payload dto.UpdateStatusDTO) (*dto.StatusDTO, error)
	UpdateSort(ctx context.Context, orgID, id uint64, payload dto.UpdateStatusSortDTO) (*dto.StatusDTO, error)
	DeleteStatus(ctx context.Context, orgID, id uint64) error
}

type StatusService struct {
	statusRepository repositories.StatusRepositoryInterface
	logger           *zap.Logger
}

func NewStatusService(statusRepository repositories.StatusRepositoryInterface, logger *zap.Logger) StatusServiceInterface {
	return &StatusService{
		statusRepository: statusRepository,
		logger:           logger,
	}
}

func (s *StatusService) GetStatuses(ctx context.Context, orgID uint64) ([]dto.StatusDTO, error) {
	return s.statusRepository.GetStatuses(ctx, orgID)
}

func (s *StatusService) FindStatus(ctx context.Context, orgID, id uint64) (*dto.StatusDTO, error) {
	return s.statusRepository.FindStatus(ctx, orgID, id)
}

func (s *StatusService) CreateStatus(ctx context.Context, orgID uint64, payload dto.CreateStatusDTO) (*dto.StatusDTO, error) {
	created, err := s.statusRepository.CreateStatus(ctx, orgID, payload)
	if err != nil {
		s.logger.Error("ошибка при создании статуса", zap.Error(err))
		return nil, err
	}
	s.logger.Info("Статус успешно создан", zap.Uint64("orgID", orgID), zap.String("code", payload.Code))
	return created, nil
}

func (s *StatusService) UpdateStatus(ctx context.Context, orgID, id uint64, payload dto.UpdateStatusDTO) (*dto.StatusDTO, error) {
	// Снять единственный default запрещено: заявки должны где-то создаваться.
	if payload.IsDefault != nil && !*payload.IsDefault {
		current, err := s.statusRepository.FindStatus(ctx, orgID, id)
		if err != nil {
			return nil, err
		}
		if current.IsDefault {
			return nil, apperrors.NewInvalidInputError("нельзя снять признак default, не назначив другой статус по умолчанию")
		}
	}
	return s.statusRepository.UpdateStatus(ctx, orgID, id, payload)
}

func (s *StatusService) UpdateSort(ctx context.Context, orgID, id uint64, payload dto.UpdateStatusSortDTO) (*dto.StatusDTO, error) {
	updated, err := s.statusRepository.UpdateSort(ctx, orgID, id, payload.Sort)
	if err != nil {
		s.logger.Error("ошибка при изменении порядка статуса", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (s *StatusService) DeleteStatus(ctx context.Context, orgID, id uint64) error {
	current, err := s.statusRepository.FindStatus(ctx, orgID, id)
	if err != nil {
		return err
	}
	if current.IsDefault {
		return apperrors.ErrDefaultStatusDelete
	}
	return s.statusRepository.DeleteStatus(ctx, orgID, id)
}
