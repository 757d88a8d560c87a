package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultSessionTTL = 48 * time.Hour

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	Get(ctx context.Context, sid string) (SessionRecord, error)
	Delete(ctx context.Context, sid string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *Service) IssueSession(ctx context.Context, userID uuid.UUID) (Session, error) {
	if userID == uuid.Nil {
		return Session{}, ErrInvalidInput
	}
	if s.jwt == nil || s.sessions == nil {
		return Session{}, fmt.Errorf("auth dependencies are not configured")
	}

	sid, err := NewSessionID()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	expiresAt := s.now().Add(s.sessionTTL)
	if err := s.sessions.Create(ctx, SessionRecord{
		SID:       sid,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	token, _, err := s.jwt.GenerateToken(userID, sid)
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}

	return Session{
		Token:     token,
		SID:       sid,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) ResolveSession(ctx context.Context, token string) (AccessClaims, error) {
	if s.jwt == nil || s.sessions == nil {
		return AccessClaims{}, fmt.Errorf("auth dependencies are not configured")
	}

	claims, err := s.jwt.ParseToken(token)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrUnauthorized) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}

func (s *Service) RevokeSession(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if s.sessions == nil {
		return fmt.Errorf("auth dependencies are not configured")
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrInvalidInput
	}
	if s.sessions == nil {
		return fmt.Errorf("auth dependencies are not configured")
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}
