package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"crm-pipeline/internal/dto"
	"crm-pipeline/internal/services"
	"crm-pipeline/pkg/types"
	"crm-pipeline/pkg/utils"
)

type ReportController struct {
	requestService services.RequestServiceInterface
	logger         *zap.Logger
}

func NewReportController(requestService services.RequestServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{requestService: requestService, logger: logger}
}

// GetReport выгружает заявки организации. format=xlsx отдаёт файл,
// иначе обычный JSON-список.
func (c *ReportController) GetReport(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	orgID, err := utils.GetOrganizationIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseListFilter(ctx.Request().URL.Query())
	format := strings.ToLower(ctx.QueryParam("format"))
	if format == "xlsx" {
		// Выгружаем все для экспорта
		filter = types.ListFilter{Limit: utils.MaxLimit, From: filter.From, To: filter.To}
	}
	c.logger.Debug("Запрос на отчет", zap.Any("filter", filter), zap.String("format", format))

	data, total, err := c.requestService.GetRequests(reqCtx, orgID, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if format == "xlsx" {
		return c.respondWithXLSX(ctx, data)
	}
	return utils.SuccessResponse(ctx, data, "Отчет успешно сформирован", http.StatusOK, total)
}

var reportHeaders = []string{
	"№", "Имя", "Фамилия", "Email", "Телефон", "Компания", "Статус", "Дата создания", "Дата обновления",
}

func rowToSlice(num int, item dto.RequestDTO) []interface{} {
	dateFmt := "02.01.2006 15:04"
	formatTS := func(raw string) string {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Format(dateFmt)
		}
		return raw
	}
	return []interface{}{
		num, item.FirstName, item.LastName, item.Email, item.Phone, item.Company,
		item.Status.Name, formatTS(item.CreatedAt), formatTS(item.UpdatedAt),
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []dto.RequestDTO) error {
	f := excelize.NewFile()
	sheet := "Отчет по заявкам"
	f.SetSheetName("Sheet1", sheet)
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "I1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(i+1, item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "B", "C", 20)
	f.SetColWidth(sheet, "D", "F", 25)
	f.SetColWidth(sheet, "G", "I", 20)

	fileName := fmt.Sprintf("requests_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
