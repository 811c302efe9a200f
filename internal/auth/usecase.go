package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/ppotepa/streamcraft-tts/internal/models"
)

type UseCase interface {
	Register(ctx context.Context, user *models.User) (*models.UserWithToken, error)
	Login(ctx context.Context, user *models.User) (*models.UserWithToken, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}
