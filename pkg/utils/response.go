package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "crm-pipeline/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

var errorStatusList = map[error]int{
	apperrors.ErrNotFound:              http.StatusNotFound,
	apperrors.ErrBadRequest:            http.StatusBadRequest,
	apperrors.ErrConflict:              http.StatusConflict,
	apperrors.ErrUnauthorized:          http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:       http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:     http.StatusUnauthorized,
	apperrors.ErrInvalidToken:          http.StatusUnauthorized,
	apperrors.ErrTokenExpired:          http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:      http.StatusUnauthorized,
	apperrors.ErrOrgIDNotFoundInContext: http.StatusUnauthorized,
	apperrors.ErrStatusInUse:           http.StatusConflict,
	apperrors.ErrDefaultStatusDelete:   http.StatusConflict,
	apperrors.ErrTransitionNotAllowed:  http.StatusConflict,
	apperrors.ErrUnknownStatus:         http.StatusBadRequest,
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message, Body: body}
	if len(total) > 0 {
		response.Body = map[string]interface{}{"list": body, "total_count": total[0]}
	}
	return ctx.JSON(code, response)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Ошибка валидации: " + strings.Join(msgs, "; ")})
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": invalidInput.Message})
	}

	for known, statusCode := range errorStatusList {
		if errors.Is(err, known) {
			return c.JSON(statusCode, map[string]interface{}{"status": false, "message": known.Error()})
		}
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}
