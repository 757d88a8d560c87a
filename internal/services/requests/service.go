package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
)

var (
	ErrValidation       = fmt.Errorf("%w: invalid request payload", apperr.ErrInvalidInput)
	ErrSelfRequest      = fmt.Errorf("%w: cannot send a request to yourself", apperr.ErrInvalidInput)
	ErrReceiverNotFound = fmt.Errorf("%w: receiver does not exist", apperr.ErrNotFound)
	ErrDuplicateRequest = fmt.Errorf("%w: request already sent", apperr.ErrConflict)
)

type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type RequestStore interface {
	LockPair(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID) error
	GetByPairForUpdate(ctx context.Context, tx pgx.Tx, senderID, receiverID uuid.UUID) (model.Request, error)
	Create(ctx context.Context, tx pgx.Tx, senderID, receiverID uuid.UUID) (model.Request, error)
	SetStatus(ctx context.Context, tx pgx.Tx, status enums.RequestStatus, ids ...uuid.UUID) error
	CancelPending(ctx context.Context, requestID, senderID uuid.UUID) (bool, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]pgrepo.RequestListRecord, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]pgrepo.RequestListRecord, error)
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) (model.Match, bool, error)
}

type UserStore interface {
	ExistsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (bool, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (int64, bool, error)
}

type Dependencies struct {
	Tx          TxRunner
	Requests    RequestStore
	Matches     MatchStore
	Users       UserStore
	RateLimiter RateLimiter
	Logger      *zap.Logger
}

type Service struct {
	tx          TxRunner
	requests    RequestStore
	matches     MatchStore
	users       UserStore
	rateLimiter RateLimiter
	logger      *zap.Logger
}

type SendResult struct {
	Request     model.Request
	Matched     bool
	Reactivated bool
	Match       *model.Match
}

type Counterpart struct {
	ID     uuid.UUID
	Handle string
	Bio    string
}

type Item struct {
	ID          uuid.UUID
	Status      enums.RequestStatus
	CreatedAt   time.Time
	Counterpart Counterpart
}

type Lists struct {
	Outgoing []Item
	Incoming []Item
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		tx:          deps.Tx,
		requests:    deps.Requests,
		matches:     deps.Matches,
		users:       deps.Users,
		rateLimiter: deps.RateLimiter,
		logger:      logger,
	}
}

func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID) (SendResult, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return SendResult{}, ErrValidation
	}
	if senderID == receiverID {
		return SendResult{}, ErrSelfRequest
	}
	if s.tx == nil || s.requests == nil || s.matches == nil || s.users == nil {
		return SendResult{}, fmt.Errorf("request dependencies are not configured")
	}
	if err := s.checkRate(ctx, senderID); err != nil {
		return SendResult{}, err
	}

	var result SendResult
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		result = SendResult{}

		if err := s.requests.LockPair(ctx, tx, senderID, receiverID); err != nil {
			return err
		}

		exists, err := s.users.ExistsTx(ctx, tx, receiverID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrReceiverNotFound
		}

		existing, err := s.requests.GetByPairForUpdate(ctx, tx, senderID, receiverID)
		switch {
		case err == nil:
			return s.resend(ctx, tx, existing, &result)
		case !errors.Is(err, pgrepo.ErrRequestNotFound):
			return err
		}

		reverse, err := s.requests.GetByPairForUpdate(ctx, tx, receiverID, senderID)
		reversePending := err == nil && reverse.Status == enums.RequestStatusPending
		if err != nil && !errors.Is(err, pgrepo.ErrRequestNotFound) {
			return err
		}

		created, err := s.requests.Create(ctx, tx, senderID, receiverID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrRequestExists) {
				return ErrDuplicateRequest
			}
			return err
		}
		result.Request = created

		if !reversePending {
			return nil
		}

		if err := s.requests.SetStatus(ctx, tx, enums.RequestStatusMatched, created.ID, reverse.ID); err != nil {
			return err
		}
		match, inserted, err := s.matches.CreateIfAbsent(ctx, tx, senderID, receiverID)
		if err != nil {
			return err
		}
		if !inserted {
			s.logger.Info("match already existed for reciprocal pair",
				zap.String("match_id", match.ID.String()),
			)
		}

		result.Request.Status = enums.RequestStatusMatched
		result.Matched = true
		result.Match = &match
		return nil
	})
	if err != nil {
		return SendResult{}, err
	}

	return result, nil
}

// resend handles a sender->receiver row that already exists. A cancelled row is reactivated
// without looking for a reciprocal request.
func (s *Service) resend(ctx context.Context, tx pgx.Tx, existing model.Request, result *SendResult) error {
	if existing.Status.Active() {
		return ErrDuplicateRequest
	}

	if err := s.requests.SetStatus(ctx, tx, enums.RequestStatusPending, existing.ID); err != nil {
		return err
	}
	existing.Status = enums.RequestStatusPending
	result.Request = existing
	result.Reactivated = true
	return nil
}

// Cancel reports whether the caller's own pending request was cancelled. Unknown ids, other
// users' requests and non-pending requests all return false without an error.
func (s *Service) Cancel(ctx context.Context, requestorID, requestID uuid.UUID) (bool, error) {
	if requestorID == uuid.Nil || requestID == uuid.Nil {
		return false, ErrValidation
	}
	if s.requests == nil {
		return false, fmt.Errorf("request dependencies are not configured")
	}

	cancelled, err := s.requests.CancelPending(ctx, requestID, requestorID)
	if err != nil {
		return false, err
	}
	if !cancelled {
		s.logger.Debug("cancel request was a no-op", zap.String("request_id", requestID.String()))
	}
	return cancelled, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) (Lists, error) {
	if userID == uuid.Nil {
		return Lists{}, ErrValidation
	}
	if s.requests == nil {
		return Lists{}, fmt.Errorf("request dependencies are not configured")
	}

	outgoing, err := s.requests.ListOutgoing(ctx, userID)
	if err != nil {
		return Lists{}, err
	}
	incoming, err := s.requests.ListIncoming(ctx, userID)
	if err != nil {
		return Lists{}, err
	}

	return Lists{
		Outgoing: toItems(outgoing),
		Incoming: toItems(incoming),
	}, nil
}

func (s *Service) checkRate(ctx context.Context, senderID uuid.UUID) error {
	if s.rateLimiter == nil {
		return nil
	}

	retryAfter, allowed, err := s.rateLimiter.Allow(ctx, senderID)
	if err != nil {
		s.logger.Warn("request rate limiter unavailable, allowing send", zap.Error(err))
		return nil
	}
	if !allowed {
		return &apperr.RateLimitError{RetryAfterSec: retryAfter}
	}
	return nil
}

func toItems(records []pgrepo.RequestListRecord) []Item {
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			ID:        rec.ID,
			Status:    rec.Status,
			CreatedAt: rec.CreatedAt,
			Counterpart: Counterpart{
				ID:     rec.CounterpartID,
				Handle: rec.CounterpartHandle,
				Bio:    rec.CounterpartBio,
			},
		})
	}
	return items
}
