package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
)

const window = 24 * time.Hour

type CountStore interface {
	Counts(ctx context.Context, userID uuid.UUID, since time.Time) (pgrepo.NotificationCounts, error)
}

type Service struct {
	store CountStore
	now   func() time.Time
}

func NewService(store CountStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Counts reports pending incoming requests, plus messages and matches from the last 24 hours.
func (s *Service) Counts(ctx context.Context, userID uuid.UUID) (pgrepo.NotificationCounts, error) {
	if userID == uuid.Nil {
		return pgrepo.NotificationCounts{}, fmt.Errorf("invalid user id")
	}
	if s.store == nil {
		return pgrepo.NotificationCounts{}, fmt.Errorf("notification store is nil")
	}

	return s.store.Counts(ctx, userID, s.now().UTC().Add(-window))
}
