package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
	"github.com/wybmv/backend/internal/services/auth"
)

const accountsLimit = 10

var (
	ErrInvalidCode     = fmt.Errorf("%w: invite code required", apperr.ErrInvalidInput)
	ErrInviteNotFound  = fmt.Errorf("%w: invalid invite code", apperr.ErrNotFound)
	ErrAccountQuery    = fmt.Errorf("%w: anonymous name and gender required", apperr.ErrInvalidInput)
	ErrAccountNotFound = fmt.Errorf("%w: account not found", apperr.ErrNotFound)
)

type InviteStore interface {
	FindByCode(ctx context.Context, code string) (model.InviteCode, error)
}

type UserStore interface {
	Create(ctx context.Context, inviteCodeID uuid.UUID) (model.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (model.User, error)
	FindOnboardedByHandle(ctx context.Context, handle string, gender enums.Gender, limit int) ([]model.User, error)
	ListOnboardedByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
}

type SessionIssuer interface {
	IssueSession(ctx context.Context, userID uuid.UUID) (auth.Session, error)
}

type Dependencies struct {
	Invites  InviteStore
	Users    UserStore
	Sessions SessionIssuer
	Logger   *zap.Logger
}

type Service struct {
	invites  InviteStore
	users    UserStore
	sessions SessionIssuer
	logger   *zap.Logger
}

type Redemption struct {
	User    model.User
	Session auth.Session
}

type MeResult struct {
	UserID    uuid.UUID
	User      *model.User
	Onboarded bool
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		invites:  deps.Invites,
		users:    deps.Users,
		sessions: deps.Sessions,
		logger:   logger,
	}
}

// Redeem creates a fresh empty user for a known code. Codes are not consumed.
func (s *Service) Redeem(ctx context.Context, rawCode string) (Redemption, error) {
	code, ok := rules.SanitizeInviteCode(rawCode)
	if !ok {
		return Redemption{}, ErrInvalidCode
	}
	if s.invites == nil || s.users == nil || s.sessions == nil {
		return Redemption{}, fmt.Errorf("invite dependencies are not configured")
	}

	invite, err := s.invites.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgrepo.ErrInviteNotFound) {
			return Redemption{}, ErrInviteNotFound
		}
		return Redemption{}, err
	}

	user, err := s.users.Create(ctx, invite.ID)
	if err != nil {
		return Redemption{}, err
	}

	session, err := s.sessions.IssueSession(ctx, user.ID)
	if err != nil {
		s.logger.Error("issue session after redeem failed",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return Redemption{}, err
	}

	s.logger.Info("invite redeemed",
		zap.String("invite_id", invite.ID.String()),
		zap.String("user_id", user.ID.String()),
	)
	return Redemption{User: user, Session: session}, nil
}

// Me never fails for a session whose user row is gone; the result just carries no user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (MeResult, error) {
	if s.users == nil {
		return MeResult{}, fmt.Errorf("invite dependencies are not configured")
	}

	result := MeResult{UserID: userID}
	user, err := s.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		result.User = &user
		result.Onboarded = rules.IsOnboarded(user)
	case errors.Is(err, pgrepo.ErrUserNotFound):
	default:
		return MeResult{}, err
	}
	return result, nil
}

func (s *Service) ListAccounts(ctx context.Context, handle, rawGender string) ([]model.User, error) {
	handle = strings.TrimSpace(handle)
	gender := enums.Gender(strings.TrimSpace(rawGender))
	if handle == "" || !gender.Valid() {
		return nil, ErrAccountQuery
	}
	if s.users == nil {
		return nil, fmt.Errorf("invite dependencies are not configured")
	}

	return s.users.FindOnboardedByHandle(ctx, handle, gender, accountsLimit)
}

// RecentAccounts resolves ids remembered by the client. Unparsable ids are skipped.
func (s *Service) RecentAccounts(ctx context.Context, rawIDs []string) ([]model.User, error) {
	if s.users == nil {
		return nil, fmt.Errorf("invite dependencies are not configured")
	}

	ids := make([]uuid.UUID, 0, len(rawIDs))
	seen := make(map[uuid.UUID]struct{}, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil || id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	return s.users.ListOnboardedByIDs(ctx, ids)
}

func (s *Service) LoginAccount(ctx context.Context, userID uuid.UUID) (Redemption, error) {
	if userID == uuid.Nil {
		return Redemption{}, fmt.Errorf("%w: user id required", apperr.ErrInvalidInput)
	}
	if s.users == nil || s.sessions == nil {
		return Redemption{}, fmt.Errorf("invite dependencies are not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Redemption{}, ErrAccountNotFound
		}
		return Redemption{}, err
	}
	if !rules.IsOnboarded(user) {
		return Redemption{}, ErrAccountNotFound
	}

	session, err := s.sessions.IssueSession(ctx, user.ID)
	if err != nil {
		return Redemption{}, err
	}
	return Redemption{User: user, Session: session}, nil
}
