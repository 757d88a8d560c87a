package requests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	"github.com/wybmv/backend/internal/services/apperr"
)

// memLedger serializes transactions with a mutex and restores its snapshot when fn fails.
// Methods used inside WithTx assume the mutex is already held.
type memLedger struct {
	mu             sync.Mutex
	users          map[uuid.UUID]bool
	requests       map[uuid.UUID]model.Request
	matches        map[[2]uuid.UUID]model.Match
	matchInsertErr error
}

func newMemLedger(users ...uuid.UUID) *memLedger {
	db := &memLedger{
		users:    make(map[uuid.UUID]bool),
		requests: make(map[uuid.UUID]model.Request),
		matches:  make(map[[2]uuid.UUID]model.Match),
	}
	for _, id := range users {
		db.users[id] = true
	}
	return db
}

func (db *memLedger) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	requests := make(map[uuid.UUID]model.Request, len(db.requests))
	for id, req := range db.requests {
		requests[id] = req
	}
	matches := make(map[[2]uuid.UUID]model.Match, len(db.matches))
	for key, match := range db.matches {
		matches[key] = match
	}

	if err := fn(ctx, nil); err != nil {
		db.requests = requests
		db.matches = matches
		return err
	}
	return nil
}

func (db *memLedger) LockPair(context.Context, pgx.Tx, uuid.UUID, uuid.UUID) error {
	return nil
}

func (db *memLedger) GetByPairForUpdate(_ context.Context, _ pgx.Tx, senderID, receiverID uuid.UUID) (model.Request, error) {
	for _, req := range db.requests {
		if req.SenderID == senderID && req.ReceiverID == receiverID {
			return req, nil
		}
	}
	return model.Request{}, pgrepo.ErrRequestNotFound
}

func (db *memLedger) Create(_ context.Context, _ pgx.Tx, senderID, receiverID uuid.UUID) (model.Request, error) {
	for _, req := range db.requests {
		if req.SenderID == senderID && req.ReceiverID == receiverID {
			return model.Request{}, pgrepo.ErrRequestExists
		}
	}
	now := time.Now().UTC()
	req := model.Request{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     enums.RequestStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	db.requests[req.ID] = req
	return req, nil
}

func (db *memLedger) SetStatus(_ context.Context, _ pgx.Tx, status enums.RequestStatus, ids ...uuid.UUID) error {
	for _, id := range ids {
		req, ok := db.requests[id]
		if !ok {
			return errors.New("set status: row missing")
		}
		req.Status = status
		db.requests[id] = req
	}
	return nil
}

func (db *memLedger) CancelPending(_ context.Context, requestID, senderID uuid.UUID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	req, ok := db.requests[requestID]
	if !ok || req.SenderID != senderID || req.Status != enums.RequestStatusPending {
		return false, nil
	}
	req.Status = enums.RequestStatusCancelled
	db.requests[requestID] = req
	return true, nil
}

func (db *memLedger) ListOutgoing(_ context.Context, userID uuid.UUID) ([]pgrepo.RequestListRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []pgrepo.RequestListRecord
	for _, req := range db.requests {
		if req.SenderID == userID {
			out = append(out, pgrepo.RequestListRecord{ID: req.ID, Status: req.Status, CounterpartID: req.ReceiverID})
		}
	}
	return out, nil
}

func (db *memLedger) ListIncoming(_ context.Context, userID uuid.UUID) ([]pgrepo.RequestListRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []pgrepo.RequestListRecord
	for _, req := range db.requests {
		if req.ReceiverID == userID {
			out = append(out, pgrepo.RequestListRecord{ID: req.ID, Status: req.Status, CounterpartID: req.SenderID})
		}
	}
	return out, nil
}

func (db *memLedger) CreateIfAbsent(_ context.Context, _ pgx.Tx, userID, targetID uuid.UUID) (model.Match, bool, error) {
	if db.matchInsertErr != nil {
		return model.Match{}, false, db.matchInsertErr
	}
	low, high := model.CanonicalPair(userID, targetID)
	key := [2]uuid.UUID{low, high}
	if existing, ok := db.matches[key]; ok {
		return existing, false, nil
	}
	match := model.Match{ID: uuid.New(), UserA: low, UserB: high, CreatedAt: time.Now().UTC()}
	db.matches[key] = match
	return match, true, nil
}

func (db *memLedger) ExistsTx(_ context.Context, _ pgx.Tx, userID uuid.UUID) (bool, error) {
	return db.users[userID], nil
}

func (db *memLedger) statusOf(t *testing.T, senderID, receiverID uuid.UUID) enums.RequestStatus {
	t.Helper()
	for _, req := range db.requests {
		if req.SenderID == senderID && req.ReceiverID == receiverID {
			return req.Status
		}
	}
	t.Fatalf("no request %s -> %s", senderID, receiverID)
	return ""
}

type stubLimiter struct {
	retryAfter int64
	allowed    bool
	err        error
}

func (s stubLimiter) Allow(context.Context, uuid.UUID) (int64, bool, error) {
	return s.retryAfter, s.allowed, s.err
}

func newTestService(db *memLedger, limiter RateLimiter) *Service {
	return NewService(Dependencies{
		Tx:          db,
		Requests:    db,
		Matches:     db,
		Users:       db,
		RateLimiter: limiter,
	})
}

func TestSendReciprocalCreatesSingleMatch(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	first, err := svc.Send(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("first send: %v", err)
	}
	if first.Matched || first.Request.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending request, got %+v", first)
	}

	second, err := svc.Send(context.Background(), bob, alice)
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if !second.Matched || second.Match == nil {
		t.Fatalf("expected match, got %+v", second)
	}
	if len(db.matches) != 1 {
		t.Fatalf("expected one match, got %d", len(db.matches))
	}
	low, high := model.CanonicalPair(alice, bob)
	if second.Match.UserA != low || second.Match.UserB != high {
		t.Fatalf("match pair is not canonical: %+v", second.Match)
	}
	if got := db.statusOf(t, alice, bob); got != enums.RequestStatusMatched {
		t.Fatalf("expected alice->bob matched, got %s", got)
	}
	if got := db.statusOf(t, bob, alice); got != enums.RequestStatusMatched {
		t.Fatalf("expected bob->alice matched, got %s", got)
	}
}

func TestSendDuplicateIsConflict(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	if _, err := svc.Send(context.Background(), alice, bob); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err := svc.Send(context.Background(), alice, bob)
	if !errors.Is(err, ErrDuplicateRequest) || !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}

	if _, err := svc.Send(context.Background(), bob, alice); err != nil {
		t.Fatalf("reciprocal send: %v", err)
	}
	_, err = svc.Send(context.Background(), alice, bob)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on matched request, got %v", err)
	}
	if len(db.requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(db.requests))
	}
}

func TestSendRejectsSelfAndUnknownReceiver(t *testing.T) {
	alice := uuid.New()
	db := newMemLedger(alice)
	svc := newTestService(db, nil)

	_, err := svc.Send(context.Background(), alice, alice)
	if !errors.Is(err, ErrSelfRequest) || !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected self request invalid input, got %v", err)
	}

	_, err = svc.Send(context.Background(), alice, uuid.New())
	if !errors.Is(err, ErrReceiverNotFound) || !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected receiver not found, got %v", err)
	}
	if len(db.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(db.requests))
	}
}

func TestResendAfterCancelReactivatesSameRow(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	first, err := svc.Send(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	cancelled, err := svc.Cancel(context.Background(), alice, first.Request.ID)
	if err != nil || !cancelled {
		t.Fatalf("expected cancel to succeed, got %v %v", cancelled, err)
	}

	again, err := svc.Send(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !again.Reactivated || again.Request.ID != first.Request.ID {
		t.Fatalf("expected reactivation of %s, got %+v", first.Request.ID, again)
	}
	if again.Request.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending, got %s", again.Request.Status)
	}
	if len(db.requests) != 1 {
		t.Fatalf("expected one request row, got %d", len(db.requests))
	}
}

func TestReactivationDoesNotMatch(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	first, err := svc.Send(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), alice, first.Request.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	reverse, err := svc.Send(context.Background(), bob, alice)
	if err != nil {
		t.Fatalf("reverse send: %v", err)
	}
	if reverse.Matched {
		t.Fatalf("cancelled request must not match")
	}

	again, err := svc.Send(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if again.Matched || !again.Reactivated {
		t.Fatalf("expected plain reactivation, got %+v", again)
	}
	if len(db.matches) != 0 {
		t.Fatalf("expected no match, got %d", len(db.matches))
	}

	// Both directions are now pending, so neither side can send again.
	if _, err := svc.Send(context.Background(), bob, alice); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on bob's resend, got %v", err)
	}
	if len(db.matches) != 0 {
		t.Fatalf("expected pair to stay unmatched, got %d", len(db.matches))
	}
}

func TestCancelOnlyOwnPendingRequest(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	sent, err := svc.Send(context.Background(), alice, bob)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	cases := []struct {
		name      string
		requestor uuid.UUID
		requestID uuid.UUID
		want      bool
	}{
		{name: "receiver cannot cancel", requestor: bob, requestID: sent.Request.ID, want: false},
		{name: "unknown id", requestor: alice, requestID: uuid.New(), want: false},
		{name: "sender cancels", requestor: alice, requestID: sent.Request.ID, want: true},
		{name: "already cancelled", requestor: alice, requestID: sent.Request.ID, want: false},
	}
	for _, tc := range cases {
		got, err := svc.Cancel(context.Background(), tc.requestor, tc.requestID)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCancelMatchedRequestIsNoop(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	first, _ := svc.Send(context.Background(), alice, bob)
	if _, err := svc.Send(context.Background(), bob, alice); err != nil {
		t.Fatalf("reciprocal send: %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), alice, first.Request.ID)
	if err != nil || cancelled {
		t.Fatalf("expected no-op cancel, got %v %v", cancelled, err)
	}
	if got := db.statusOf(t, alice, bob); got != enums.RequestStatusMatched {
		t.Fatalf("expected matched to stay, got %s", got)
	}
}

func TestMatchInsertFailureRollsBack(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	if _, err := svc.Send(context.Background(), alice, bob); err != nil {
		t.Fatalf("send: %v", err)
	}
	db.matchInsertErr = errors.New("insert failed")

	if _, err := svc.Send(context.Background(), bob, alice); err == nil {
		t.Fatalf("expected error")
	}
	if len(db.requests) != 1 {
		t.Fatalf("expected rolled back insert, got %d requests", len(db.requests))
	}
	if got := db.statusOf(t, alice, bob); got != enums.RequestStatusPending {
		t.Fatalf("expected pending after rollback, got %s", got)
	}
}

func TestExistingMatchStillReportsMatched(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	low, high := model.CanonicalPair(alice, bob)
	existing := model.Match{ID: uuid.New(), UserA: low, UserB: high}
	db.matches[[2]uuid.UUID{low, high}] = existing
	svc := newTestService(db, nil)

	if _, err := svc.Send(context.Background(), alice, bob); err != nil {
		t.Fatalf("send: %v", err)
	}
	result, err := svc.Send(context.Background(), bob, alice)
	if err != nil {
		t.Fatalf("reciprocal send: %v", err)
	}
	if !result.Matched || result.Match.ID != existing.ID {
		t.Fatalf("expected existing match, got %+v", result)
	}
	if len(db.matches) != 1 {
		t.Fatalf("expected one match, got %d", len(db.matches))
	}
}

func TestConcurrentReciprocalSendsCreateOneMatch(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, nil)

	var wg sync.WaitGroup
	results := make([]SendResult, 2)
	errs := make([]error, 2)
	pairs := [][2]uuid.UUID{{alice, bob}, {bob, alice}}
	for i := range pairs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Send(context.Background(), pairs[i][0], pairs[i][1])
		}(i)
	}
	wg.Wait()

	matched := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("send %d: %v", i, errs[i])
		}
		if results[i].Matched {
			matched++
		}
	}
	if matched != 1 {
		t.Fatalf("expected exactly one send to report the match, got %d", matched)
	}
	if len(db.matches) != 1 {
		t.Fatalf("expected one match, got %d", len(db.matches))
	}
	if db.statusOf(t, alice, bob) != enums.RequestStatusMatched || db.statusOf(t, bob, alice) != enums.RequestStatusMatched {
		t.Fatalf("expected both requests matched")
	}
}

func TestSendRateLimited(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, stubLimiter{retryAfter: 42, allowed: false})

	_, err := svc.Send(context.Background(), alice, bob)
	var rateErr *apperr.RateLimitError
	if !errors.As(err, &rateErr) || rateErr.RetryAfterSec != 42 {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSendLimiterFailureFailsOpen(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	db := newMemLedger(alice, bob)
	svc := newTestService(db, stubLimiter{err: errors.New("redis down")})

	if _, err := svc.Send(context.Background(), alice, bob); err != nil {
		t.Fatalf("expected send to proceed, got %v", err)
	}
}

func TestListSplitsDirections(t *testing.T) {
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	db := newMemLedger(alice, bob, carol)
	svc := newTestService(db, nil)

	if _, err := svc.Send(context.Background(), alice, bob); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(context.Background(), carol, alice); err != nil {
		t.Fatalf("send: %v", err)
	}

	lists, err := svc.List(context.Background(), alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lists.Outgoing) != 1 || lists.Outgoing[0].Counterpart.ID != bob {
		t.Fatalf("unexpected outgoing: %+v", lists.Outgoing)
	}
	if len(lists.Incoming) != 1 || lists.Incoming[0].Counterpart.ID != carol {
		t.Fatalf("unexpected incoming: %+v", lists.Incoming)
	}
}
