package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
)

var (
	ErrValidation        = fmt.Errorf("%w: invalid match payload", apperr.ErrInvalidInput)
	ErrInvalidRevealType = fmt.Errorf("%w: reveal type must be whatsapp, room or both", apperr.ErrInvalidInput)
	ErrMatchNotFound     = fmt.Errorf("%w: match not found", apperr.ErrNotFound)
	ErrNotParticipant    = fmt.Errorf("%w: not a participant of this match", apperr.ErrForbidden)
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID uuid.UUID) (model.Match, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Match, error)
	UpsertReveal(ctx context.Context, matchID, userID uuid.UUID, channel enums.RevealChannel) error
}

type UserStore interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error)
}

type Service struct {
	matches MatchStore
	users   UserStore
	logger  *zap.Logger
}

type View struct {
	MatchID      uuid.UUID
	CreatedAt    time.Time
	Other        rules.CounterpartView
	MyReveal     bool
	MyRevealType enums.RevealChannel
	TheirReveal  bool
}

func NewService(matches MatchStore, users UserStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		matches: matches,
		users:   users,
		logger:  logger,
	}
}

// List returns the viewer's matches newest-first. What the viewer sees of the other side
// depends only on that side's reveal.
func (s *Service) List(ctx context.Context, viewerID uuid.UUID) ([]View, error) {
	if viewerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.matches == nil || s.users == nil {
		return nil, fmt.Errorf("match dependencies are not configured")
	}

	items, err := s.matches.ListForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []View{}, nil
	}

	otherIDs := make([]uuid.UUID, 0, len(items))
	for _, match := range items {
		other, _, _, ok := match.Sides(viewerID)
		if ok {
			otherIDs = append(otherIDs, other)
		}
	}
	users, err := s.users.ListByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(items))
	for _, match := range items {
		otherID, mine, theirs, ok := match.Sides(viewerID)
		if !ok {
			continue
		}
		other, found := users[otherID]
		if !found {
			s.logger.Warn("match counterpart missing",
				zap.String("match_id", match.ID.String()),
				zap.String("user_id", otherID.String()),
			)
			other = model.User{ID: otherID}
		}

		myType := enums.RevealChannelNone
		if mine.Revealed {
			myType = mine.Channel
		}
		views = append(views, View{
			MatchID:      match.ID,
			CreatedAt:    match.CreatedAt,
			Other:        rules.ProjectCounterpart(other, theirs),
			MyReveal:     mine.Revealed,
			MyRevealType: myType,
			TheirReveal:  theirs.Revealed,
		})
	}

	return views, nil
}

// Reveal marks the caller's side as revealed. Repeating it only changes the channel.
func (s *Service) Reveal(ctx context.Context, userID, matchID uuid.UUID, rawType string) (enums.RevealChannel, error) {
	if userID == uuid.Nil || matchID == uuid.Nil {
		return "", ErrValidation
	}

	channel := enums.RevealChannelBoth
	if rawType != "" {
		parsed, ok := enums.ParseRevealChannel(rawType)
		if !ok {
			return "", ErrInvalidRevealType
		}
		channel = parsed
	}
	if s.matches == nil {
		return "", fmt.Errorf("match dependencies are not configured")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return "", ErrMatchNotFound
		}
		return "", err
	}
	if !match.HasParticipant(userID) {
		return "", ErrNotParticipant
	}

	if err := s.matches.UpsertReveal(ctx, matchID, userID, channel); err != nil {
		return "", err
	}

	s.logger.Info("match side revealed",
		zap.String("match_id", matchID.String()),
		zap.String("user_id", userID.String()),
		zap.String("channel", string(channel)),
	)
	return channel, nil
}
