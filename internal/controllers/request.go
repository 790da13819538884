package controllers

import (
	"net/http"

	"crm-pipeline/internal/dto"
	"crm-pipeline/internal/services"
	apperrors "crm-pipeline/pkg/errors"
	"crm-pipeline/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RequestController struct {
	requestService services.RequestServiceInterface
	logger         *zap.Logger
}

func NewRequestController(requestService services.RequestServiceInterface, logger *zap.Logger) *RequestController {
	return &RequestController{requestService: requestService, logger: logger}
}

func (c *RequestController) GetRequests(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseListFilter(ctx.Request().URL.Query())

	list, total, err := c.requestService.GetRequests(reqCtx, orgID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	return utils.SuccessResponse(
		ctx,
		list,
		"Список заявок успешно получен",
		http.StatusOK,
		total,
	)
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := parseRequestID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.FindRequest(reqCtx, orgID, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка успешно найдена", http.StatusOK)
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Warn("CreateRequest: не удалось разобрать тело запроса", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	created, err := c.requestService.CreateRequest(reqCtx, orgID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, created, "Заявка успешно создана", http.StatusCreated)
}

// UpdateStatus — единственная мутация заявки на доске. Переход
// проверяется политикой на стороне сервиса, контроллер только
// разбирает вход.
func (c *RequestController) UpdateStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := parseRequestID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateRequestStatusDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	updated, err := c.requestService.UpdateStatus(reqCtx, orgID, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, updated, "Статус заявки успешно обновлен", http.StatusOK)
}

func (c *RequestController) GetSummary(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	summary, err := c.requestService.GetSummary(reqCtx, orgID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, summary, "Сводка по заявкам успешно получена", http.StatusOK)
}

func (c *RequestController) AddNote(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	id, err := parseRequestID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateRequestNoteDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверное тело запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	note, err := c.requestService.AddNote(reqCtx, orgID, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, note, "Заметка успешно добавлена", http.StatusCreated)
}

func parseRequestID(ctx echo.Context) (string, error) {
	raw := ctx.Param("id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный ID заявки",
			err,
			map[string]interface{}{"param": raw},
		)
	}
	return raw, nil
}
