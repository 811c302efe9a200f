package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/internal/session"
)

type sessionRepo struct {
	redisClient *redis.Client
	cfg         *config.Config
}

func NewSessionRepository(redisClient *redis.Client, cfg *config.Config) session.SessRepository {
	return &sessionRepo{
		redisClient: redisClient,
		cfg:         cfg,
	}
}

func (s *sessionRepo) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", s.cfg.Session.Prefix, sessionID)
}

func (s *sessionRepo) CreateSession(ctx context.Context, sess *models.Session, expire int) (string, error) {
	sess.SessionID = uuid.New().String()
	sessionKey := s.sessionKey(sess.SessionID)

	sessBytes, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.redisClient.Set(ctx, sessionKey, sessBytes, time.Second*time.Duration(expire)).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sess.SessionID, nil
}

func (s *sessionRepo) GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	sessBytes, err := s.redisClient.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	sess := &models.Session{}
	if err := json.Unmarshal(sessBytes, sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return sess, nil
}

func (s *sessionRepo) DeleteByID(ctx context.Context, sessionID string) error {
	if err := s.redisClient.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
