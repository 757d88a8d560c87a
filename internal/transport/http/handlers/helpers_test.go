package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	"github.com/wybmv/backend/internal/domain/rules"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	authsvc "github.com/wybmv/backend/internal/services/auth"
)

func withIdentity(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
		UserID: userID,
		SID:    "sid-" + userID.String(),
	}))
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func assertErrorCode(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("unexpected status: got %d want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	var payload struct {
		Code string `json:"code"`
	}
	decodeResponse(t, rr, &payload)
	if payload.Code != code {
		t.Fatalf("unexpected error code: got %q want %q", payload.Code, code)
	}
}

func onboardedUser(handle string, gender enums.Gender) model.User {
	return model.User{
		ID:        uuid.New(),
		Handle:    handle,
		Gender:    gender,
		WhatsApp:  "+393331234567",
		Room:      "ITACA-102",
		Hobbies:   []string{"Music", "Cinema", "Travel"},
		CreatedAt: time.Now().UTC(),
	}
}

// userStoreStub covers the user lookups of the invite and match services.
type userStoreStub struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newUserStoreStub(users ...model.User) *userStoreStub {
	s := &userStoreStub{users: make(map[uuid.UUID]model.User, len(users))}
	for _, user := range users {
		s.users[user.ID] = user
	}
	return s
}

func (s *userStoreStub) Create(_ context.Context, inviteCodeID uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := model.User{ID: uuid.New(), InviteCodeID: inviteCodeID, CreatedAt: time.Now().UTC()}
	s.users[user.ID] = user
	return user, nil
}

func (s *userStoreStub) GetByID(_ context.Context, userID uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

func (s *userStoreStub) FindOnboardedByHandle(_ context.Context, handle string, gender enums.Gender, limit int) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0)
	for _, user := range s.users {
		if user.Handle == handle && user.Gender == gender && rules.IsOnboarded(user) && len(out) < limit {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *userStoreStub) ListOnboardedByIDs(_ context.Context, ids []uuid.UUID) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok && rules.IsOnboarded(user) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *userStoreStub) ListByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]model.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

type matchStoreStub struct {
	mu      sync.Mutex
	matches map[uuid.UUID]model.Match
}

func newMatchStoreStub(matches ...model.Match) *matchStoreStub {
	s := &matchStoreStub{matches: make(map[uuid.UUID]model.Match, len(matches))}
	for _, match := range matches {
		s.matches[match.ID] = match
	}
	return s
}

func (s *matchStoreStub) GetByID(_ context.Context, matchID uuid.UUID) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[matchID]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return match, nil
}

func (s *matchStoreStub) ListForUser(_ context.Context, userID uuid.UUID) ([]model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Match, 0)
	for _, match := range s.matches {
		if match.HasParticipant(userID) {
			out = append(out, match)
		}
	}
	return out, nil
}

func (s *matchStoreStub) UpsertReveal(_ context.Context, matchID, userID uuid.UUID, channel enums.RevealChannel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := s.matches[matchID]
	side := model.RevealSide{Revealed: true, Channel: channel}
	if match.UserA == userID {
		match.RevealA = side
	} else {
		match.RevealB = side
	}
	s.matches[matchID] = match
	return nil
}

func newMatch(a, b uuid.UUID) model.Match {
	userA, userB := model.CanonicalPair(a, b)
	return model.Match{
		ID:        uuid.New(),
		UserA:     userA,
		UserB:     userB,
		RevealA:   model.HiddenSide(),
		RevealB:   model.HiddenSide(),
		CreatedAt: time.Now().UTC(),
	}
}

func (s *userStoreStub) CountRoomHolders(_ context.Context, room string, excludeUserID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, user := range s.users {
		if user.ID != excludeUserID && user.Room == room {
			count++
		}
	}
	return count, nil
}

func (s *userStoreStub) ListCandidates(_ context.Context, q pgrepo.CandidateQuery) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0)
	for _, user := range s.users {
		if user.ID == q.ViewerID || !rules.IsOnboarded(user) {
			continue
		}
		if q.Gender != "" && user.Gender != q.Gender {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateProfile(_ context.Context, userID uuid.UUID, in pgrepo.ProfileWrite) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	user.Handle = in.Handle
	user.DisplayName = in.DisplayName
	user.Bio = in.Bio
	user.Gender = in.Gender
	user.AvatarURL = in.AvatarURL
	user.WhatsApp = in.WhatsApp
	user.Room = in.Room
	user.Hobbies = in.Hobbies
	s.users[userID] = user
	return user, nil
}
