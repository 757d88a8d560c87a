package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
)

const RoomCapacity = 2

var (
	ErrUnknownUser = fmt.Errorf("%w: session user does not exist", apperr.ErrUnauthenticated)
	ErrRoomFull    = fmt.Errorf("%w: room already has %d holders", apperr.ErrConflict, RoomCapacity)
)

type UserStore interface {
	GetByID(ctx context.Context, userID uuid.UUID) (model.User, error)
	CountRoomHolders(ctx context.Context, room string, excludeUserID uuid.UUID) (int, error)
}

type Service struct {
	users  UserStore
	logger *zap.Logger
}

func NewService(users UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, logger: logger}
}

// ResolveUser maps a session user id to a stored user.
func (s *Service) ResolveUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	if userID == uuid.Nil {
		return model.User{}, ErrUnknownUser
	}
	if s.users == nil {
		return model.User{}, fmt.Errorf("gate dependencies are not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.User{}, ErrUnknownUser
		}
		return model.User{}, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

func (s *Service) IsOnboarded(user model.User) bool {
	return rules.IsOnboarded(user)
}

// CheckRoomCapacity fails open: a counting error is logged and the update proceeds.
func (s *Service) CheckRoomCapacity(ctx context.Context, userID uuid.UUID, room string) error {
	room = strings.TrimSpace(room)
	if room == "" {
		return nil
	}
	if s.users == nil {
		s.logger.Warn("room capacity check skipped, store is not configured", zap.String("room", room))
		return nil
	}

	count, err := s.users.CountRoomHolders(ctx, room, userID)
	if err != nil {
		s.logger.Warn("room capacity check failed, allowing update",
			zap.Error(err),
			zap.String("room", room),
			zap.String("user_id", userID.String()),
		)
		return nil
	}
	if count >= RoomCapacity {
		return ErrRoomFull
	}
	return nil
}
