package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"crm-pipeline/internal/controllers"
	"crm-pipeline/internal/repositories"
	"crm-pipeline/internal/services"
	"crm-pipeline/pkg/config"
	"crm-pipeline/pkg/middleware"
	"crm-pipeline/pkg/service"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api/v1")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	// --- РЕПОЗИТОРИИ ---
	statusRepo := repositories.NewStatusRepository(dbConn)
	requestRepo := repositories.NewRequestRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	statusService := services.NewStatusService(statusRepo, logger)
	requestService := services.NewRequestService(requestRepo, statusRepo, cacheRepo, cfg.SummaryCache.TTL, logger)

	// --- КОНТРОЛЛЕРЫ ---
	statusController := controllers.NewStatusController(statusService, logger)
	requestController := controllers.NewRequestController(requestService, logger)
	reportController := controllers.NewReportController(requestService, logger)

	// --- МАРШРУТЫ ---
	info := api.Group("/requests-information", authMW.Auth)

	info.GET("/status", statusController.GetStatuses)
	info.POST("/status", statusController.CreateStatus)
	info.GET("/status/:id", statusController.FindStatus)
	info.PUT("/status/:id", statusController.UpdateStatus)
	info.PATCH("/status/:id", statusController.UpdateSort)
	info.DELETE("/status/:id", statusController.DeleteStatus)

	info.GET("", requestController.GetRequests)
	info.POST("", requestController.CreateRequest)
	info.GET("/summary", requestController.GetSummary)
	info.GET("/report", reportController.GetReport)
	info.GET("/:id", requestController.FindRequest)
	info.PATCH("/:id/status", requestController.UpdateStatus)
	info.POST("/:id/notes", requestController.AddNote)

	logger.Info("InitRouter: Маршруты созданы")
}
