package messages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
	"github.com/wybmv/backend/internal/services/media"
)

var (
	ErrValidation    = fmt.Errorf("%w: match id and message content required", apperr.ErrInvalidInput)
	ErrNotMatchPeer  = fmt.Errorf("%w: not a participant of this match", apperr.ErrForbidden)
	ErrImageDisabled = fmt.Errorf("%w: image storage is not configured", apperr.ErrInvalidInput)
)

type MatchStore interface {
	GetByID(ctx context.Context, matchID uuid.UUID) (model.Match, error)
}

type MessageStore interface {
	Create(ctx context.Context, in pgrepo.MessageWrite) (model.Message, error)
	ListByMatch(ctx context.Context, matchID uuid.UUID, since *time.Time) ([]model.Message, error)
}

type ImageStore interface {
	UploadChatImage(ctx context.Context, in media.Upload) (media.Image, error)
	AttachmentKey(matchID uuid.UUID, rawURL string) (string, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (int64, bool, error)
}

type Dependencies struct {
	Matches     MatchStore
	Messages    MessageStore
	Images      ImageStore
	RateLimiter RateLimiter
	Logger      *zap.Logger
}

type Service struct {
	matches     MatchStore
	messages    MessageStore
	images      ImageStore
	rateLimiter RateLimiter
	logger      *zap.Logger
}

type SendInput struct {
	MatchID  uuid.UUID
	Content  string
	ImageURL string
}

type ImageUpload struct {
	MatchID     uuid.UUID
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		matches:     deps.Matches,
		messages:    deps.Messages,
		images:      deps.Images,
		rateLimiter: deps.RateLimiter,
		logger:      logger,
	}
}

// List returns the match history in creation order. since, when set, keeps only newer messages.
func (s *Service) List(ctx context.Context, userID, matchID uuid.UUID, since *time.Time) ([]model.Message, error) {
	if matchID == uuid.Nil {
		return nil, ErrValidation
	}
	if err := s.requireMember(ctx, userID, matchID); err != nil {
		return nil, err
	}

	items, err := s.messages.ListByMatch(ctx, matchID, since)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Send(ctx context.Context, userID uuid.UUID, in SendInput) (model.Message, error) {
	content, ok := rules.SanitizeMessage(in.Content)
	if in.MatchID == uuid.Nil || !ok {
		return model.Message{}, ErrValidation
	}
	if err := s.requireMember(ctx, userID, in.MatchID); err != nil {
		return model.Message{}, err
	}

	write := pgrepo.MessageWrite{
		MatchID:  in.MatchID,
		SenderID: userID,
		Content:  content,
	}
	if imageURL := strings.TrimSpace(in.ImageURL); imageURL != "" {
		if s.images == nil {
			return model.Message{}, ErrImageDisabled
		}
		key, err := s.images.AttachmentKey(in.MatchID, imageURL)
		if err != nil {
			return model.Message{}, err
		}
		write.ImageURL = imageURL
		write.ImageKey = key
	}

	if err := s.checkRate(ctx, userID); err != nil {
		return model.Message{}, err
	}

	msg, err := s.messages.Create(ctx, write)
	if err != nil {
		return model.Message{}, err
	}
	return msg, nil
}

// UploadImage stores an image for a match the caller belongs to. The returned URL is meant
// to be attached to a following Send.
func (s *Service) UploadImage(ctx context.Context, userID uuid.UUID, in ImageUpload) (media.Image, error) {
	if in.MatchID == uuid.Nil {
		return media.Image{}, fmt.Errorf("%w: match id required", apperr.ErrInvalidInput)
	}
	if err := s.requireMember(ctx, userID, in.MatchID); err != nil {
		return media.Image{}, err
	}
	if s.images == nil {
		return media.Image{}, ErrImageDisabled
	}

	img, err := s.images.UploadChatImage(ctx, media.Upload{
		MatchID:     in.MatchID,
		UserID:      userID,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Body:        in.Body,
		Size:        in.Size,
	})
	if err != nil {
		return media.Image{}, err
	}

	s.logger.Info("chat image uploaded",
		zap.String("match_id", in.MatchID.String()),
		zap.String("key", img.Key),
		zap.Int64("size", in.Size),
	)
	return img, nil
}

// requireMember answers Forbidden for both a missing match and a foreign one.
func (s *Service) requireMember(ctx context.Context, userID, matchID uuid.UUID) error {
	if s.matches == nil || s.messages == nil {
		return fmt.Errorf("message dependencies are not configured")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return ErrNotMatchPeer
		}
		return err
	}
	if !match.HasParticipant(userID) {
		return ErrNotMatchPeer
	}
	return nil
}

func (s *Service) checkRate(ctx context.Context, userID uuid.UUID) error {
	if s.rateLimiter == nil {
		return nil
	}

	retryAfter, allowed, err := s.rateLimiter.Allow(ctx, userID)
	if err != nil {
		s.logger.Warn("message rate limiter unavailable, allowing send", zap.Error(err))
		return nil
	}
	if !allowed {
		return &apperr.RateLimitError{RetryAfterSec: retryAfter}
	}
	return nil
}
