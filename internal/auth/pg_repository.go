package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/ppotepa/streamcraft-tts/internal/models"
)

type Repository interface {
	Register(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}
