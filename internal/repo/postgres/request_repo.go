package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrRequestExists   = errors.New("request already exists")
)

type RequestRepo struct {
	pool *pgxpool.Pool
}

type RequestListRecord struct {
	ID                uuid.UUID
	Status            enums.RequestStatus
	CreatedAt         time.Time
	CounterpartID     uuid.UUID
	CounterpartHandle string
	CounterpartBio    string
}

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

// LockPair serializes ledger writes for an unordered pair until the transaction ends.
func (r *RequestRepo) LockPair(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}

	low, high := model.CanonicalPair(userA, userB)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, low.String()+":"+high.String()); err != nil {
		return fmt.Errorf("lock request pair: %w", err)
	}
	return nil
}

func (r *RequestRepo) GetByPairForUpdate(ctx context.Context, tx pgx.Tx, senderID, receiverID uuid.UUID) (model.Request, error) {
	if tx == nil {
		return model.Request{}, fmt.Errorf("transaction is required")
	}

	req, err := scanRequest(tx.QueryRow(ctx, `
SELECT id, sender_id, receiver_id, status, created_at, updated_at
FROM requests
WHERE sender_id = $1 AND receiver_id = $2
FOR UPDATE
`, senderID, receiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Request{}, ErrRequestNotFound
		}
		return model.Request{}, fmt.Errorf("get request by pair: %w", err)
	}

	return req, nil
}

func (r *RequestRepo) Create(ctx context.Context, tx pgx.Tx, senderID, receiverID uuid.UUID) (model.Request, error) {
	if tx == nil {
		return model.Request{}, fmt.Errorf("transaction is required")
	}

	req, err := scanRequest(tx.QueryRow(ctx, `
INSERT INTO requests (sender_id, receiver_id, status, created_at, updated_at)
VALUES ($1, $2, 'pending', NOW(), NOW())
RETURNING id, sender_id, receiver_id, status, created_at, updated_at
`, senderID, receiverID))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Request{}, ErrRequestExists
		}
		return model.Request{}, fmt.Errorf("create request: %w", err)
	}

	return req, nil
}

func (r *RequestRepo) SetStatus(ctx context.Context, tx pgx.Tx, status enums.RequestStatus, ids ...uuid.UUID) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if len(ids) == 0 {
		return nil
	}

	result, err := tx.Exec(ctx, `
UPDATE requests
SET status = $1, updated_at = NOW()
WHERE id = ANY($2::uuid[])
`, string(status), uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("set request status: %w", err)
	}
	if result.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("set request status: updated %d of %d rows", result.RowsAffected(), len(ids))
	}

	return nil
}

func (r *RequestRepo) CancelPending(ctx context.Context, requestID, senderID uuid.UUID) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE requests
SET status = 'cancelled', updated_at = NOW()
WHERE id = $1 AND sender_id = $2 AND status = 'pending'
`, requestID, senderID)
	if err != nil {
		return false, fmt.Errorf("cancel request: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func (r *RequestRepo) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]RequestListRecord, error) {
	return r.list(ctx, `
SELECT r.id, r.status, r.created_at, u.id, u.anonymous_name, COALESCE(u.bio, '')
FROM requests r
JOIN users u ON u.id = r.receiver_id
WHERE r.sender_id = $1
ORDER BY r.created_at DESC, r.id DESC
`, userID)
}

func (r *RequestRepo) ListIncoming(ctx context.Context, userID uuid.UUID) ([]RequestListRecord, error) {
	return r.list(ctx, `
SELECT r.id, r.status, r.created_at, u.id, u.anonymous_name, COALESCE(u.bio, '')
FROM requests r
JOIN users u ON u.id = r.sender_id
WHERE r.receiver_id = $1
ORDER BY r.created_at DESC, r.id DESC
`, userID)
}

func (r *RequestRepo) list(ctx context.Context, query string, userID uuid.UUID) ([]RequestListRecord, error) {
	if r.pool == nil {
		return []RequestListRecord{}, nil
	}

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	items := make([]RequestListRecord, 0)
	for rows.Next() {
		var (
			item   RequestListRecord
			status string
		)
		if err := rows.Scan(
			&item.ID,
			&status,
			&item.CreatedAt,
			&item.CounterpartID,
			&item.CounterpartHandle,
			&item.CounterpartBio,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		item.Status = enums.RequestStatus(status)
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate requests: %w", rows.Err())
	}

	return items, nil
}

func scanRequest(row pgx.Row) (model.Request, error) {
	var (
		req    model.Request
		status string
	)
	if err := row.Scan(&req.ID, &req.SenderID, &req.ReceiverID, &status, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return model.Request{}, err
	}
	req.Status = enums.RequestStatus(status)
	return req, nil
}
