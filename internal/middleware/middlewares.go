package middleware

import (
	"github.com/ppotepa/streamcraft-tts/internal/auth"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/session"
	"github.com/ppotepa/streamcraft-tts/pkg/logger"
)

type MiddlewareManager struct {
	authUC  auth.UseCase
	sessUC  session.UCSession
	cfg     *config.Config
	origins []string
	logger  logger.Logger
}

// Middleware manager constructor
func NewMiddlewareManager(authUC auth.UseCase, cfg *config.Config, origins []string, sessUC session.UCSession, logger logger.Logger) *MiddlewareManager {
	return &MiddlewareManager{authUC: authUC, cfg: cfg, origins: origins, sessUC: sessUC, logger: logger}
}
