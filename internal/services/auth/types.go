package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/services/apperr"
)

var (
	ErrInvalidInput    = fmt.Errorf("%w: session payload", apperr.ErrInvalidInput)
	ErrUnauthorized    = fmt.Errorf("%w: session is not valid", apperr.ErrUnauthenticated)
	ErrSessionNotFound = errors.New("session not found")
)

type SessionRecord struct {
	SID       string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    uuid.UUID
	SID       string
	ExpiresAt time.Time
}

type Session struct {
	Token     string
	SID       string
	UserID    uuid.UUID
	ExpiresAt time.Time
}
