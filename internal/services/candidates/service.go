package candidates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
)

const defaultLimit = 200

type UserStore interface {
	ListCandidates(ctx context.Context, q pgrepo.CandidateQuery) ([]model.User, error)
}

type Gate interface {
	ResolveUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

type Service struct {
	users UserStore
	gate  Gate
	limit int
}

// Candidate never carries contact channels.
type Candidate struct {
	ID        uuid.UUID
	Handle    string
	Bio       string
	Gender    enums.Gender
	Hobbies   []string
	CreatedAt time.Time
}

func NewService(users UserStore, gate Gate) *Service {
	return &Service{
		users: users,
		gate:  gate,
		limit: defaultLimit,
	}
}

// List shows onboarded users of the opposite gender, or everyone when the viewer has none set.
func (s *Service) List(ctx context.Context, viewerID uuid.UUID) ([]Candidate, error) {
	if s.users == nil || s.gate == nil {
		return nil, fmt.Errorf("candidate dependencies are not configured")
	}

	viewer, err := s.gate.ResolveUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := pgrepo.CandidateQuery{ViewerID: viewer.ID, Limit: s.limit}
	if opposite, ok := viewer.Gender.Opposite(); ok {
		query.Gender = opposite
	}

	users, err := s.users.ListCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(users))
	for _, user := range users {
		if user.ID == viewer.ID || !rules.IsOnboarded(user) {
			continue
		}
		if query.Gender != "" && user.Gender != query.Gender {
			continue
		}
		out = append(out, Candidate{
			ID:        user.ID,
			Handle:    user.Handle,
			Bio:       user.Bio,
			Gender:    user.Gender,
			Hobbies:   user.Hobbies,
			CreatedAt: user.CreatedAt,
		})
	}
	return out, nil
}
