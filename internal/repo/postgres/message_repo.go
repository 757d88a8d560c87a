package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wybmv/backend/internal/domain/model"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

type MessageWrite struct {
	MatchID  uuid.UUID
	SenderID uuid.UUID
	Content  string
	ImageURL string
	ImageKey string
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, in MessageWrite) (model.Message, error) {
	if r.pool == nil {
		return model.Message{}, fmt.Errorf("postgres pool is nil")
	}

	msg := model.Message{
		MatchID:  in.MatchID,
		SenderID: in.SenderID,
		Content:  in.Content,
		ImageURL: in.ImageURL,
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO messages (match_id, sender_id, content, image_url, image_key, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NOW())
RETURNING id, created_at
`, in.MatchID, in.SenderID, in.Content, in.ImageURL, in.ImageKey).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("create message: %w", err)
	}

	return msg, nil
}

// ListByMatch returns messages in creation order; a non-nil since keeps only newer ones.
func (r *MessageRepo) ListByMatch(ctx context.Context, matchID uuid.UUID, since *time.Time) ([]model.Message, error) {
	if r.pool == nil {
		return []model.Message{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, match_id, sender_id, content, COALESCE(image_url, ''), created_at
FROM messages
WHERE match_id = $1
	AND ($2::timestamptz IS NULL OR created_at > $2::timestamptz)
ORDER BY created_at ASC, id ASC
`, matchID, since)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.MatchID, &msg.SenderID, &msg.Content, &msg.ImageURL, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, msg)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate messages: %w", rows.Err())
	}

	return items, nil
}

// ReferencedImageKeys returns the subset of keys that some message points at.
func (r *MessageRepo) ReferencedImageKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT image_key
FROM messages
WHERE image_key = ANY($1::text[])
`, keys)
	if err != nil {
		return nil, fmt.Errorf("list referenced image keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan image key: %w", err)
		}
		out[key] = struct{}{}
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate image keys: %w", rows.Err())
	}

	return out, nil
}
