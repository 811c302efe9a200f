package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	authHttp "github.com/ppotepa/streamcraft-tts/internal/auth/delivery/http"
	authRepository "github.com/ppotepa/streamcraft-tts/internal/auth/repository"
	authUsecase "github.com/ppotepa/streamcraft-tts/internal/auth/usecase"
	"github.com/ppotepa/streamcraft-tts/internal/engine"
	"github.com/ppotepa/streamcraft-tts/internal/middleware"
	sessionRepository "github.com/ppotepa/streamcraft-tts/internal/session/repository"
	sessionUsecase "github.com/ppotepa/streamcraft-tts/internal/session/usecase"
	wizardHttp "github.com/ppotepa/streamcraft-tts/internal/wizard/delivery/http"
	wizardRepository "github.com/ppotepa/streamcraft-tts/internal/wizard/repository"
	wizardUsecase "github.com/ppotepa/streamcraft-tts/internal/wizard/usecase"
	"github.com/ppotepa/streamcraft-tts/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	aRepo := authRepository.NewAuthRepo(s.db)
	sessRepo := sessionRepository.NewSessionRepository(s.redisClient, s.cfg)
	wRedisRepo := wizardRepository.NewWizardRedisRepo(s.redisClient, s.cfg)
	wAWSRepo := wizardRepository.NewAwsRepository(s.preSignClient, s.cfg)

	engineClient := engine.NewClient(s.cfg, s.logger)

	authUC := authUsecase.NewAuthUseCase(s.cfg, aRepo, s.logger)
	sessUC := sessionUsecase.NewSessionUseCase(sessRepo, s.cfg)
	wizardUC := wizardUsecase.NewWizardUseCase(s.cfg, engineClient, wRedisRepo, wAWSRepo, s.logger)

	authHandlers := authHttp.NewAuthHandler(s.cfg, authUC, sessUC, s.logger)
	wizardHandlers := wizardHttp.NewWizardHandler(s.cfg, wizardUC, s.logger)

	mw := middleware.NewMiddlewareManager(authUC, s.cfg, []string{"*"}, sessUC, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	authGroup := v1.Group("/auth")
	wizardGroup := v1.Group("/wizard")

	authHttp.MapAuthRoutes(authGroup, authHandlers, mw)
	wizardHttp.MapWizardRoutes(wizardGroup, wizardHandlers, mw)

	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		ok, usage := utils.CheckCPUUsage(s.cfg.Server.MaxCPUUsage)
		status := "OK"
		if !ok {
			status = "DEGRADED"
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"status": status, "cpu_usage": usage})
	})
	return nil
}
