package models

import "github.com/google/uuid"

// Session is a logged-in operator session stored in redis.
type Session struct {
	SessionID string    `json:"session_id" redis:"session_id"`
	UserID    uuid.UUID `json:"user_id" redis:"user_id"`
}
