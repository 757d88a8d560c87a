package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

type NotificationCounts struct {
	PendingRequests int64
	UnreadMessages  int64
	NewMatches      int64
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Counts(ctx context.Context, userID uuid.UUID, since time.Time) (NotificationCounts, error) {
	if r.pool == nil {
		return NotificationCounts{}, nil
	}

	var counts NotificationCounts
	err := r.pool.QueryRow(ctx, `
SELECT
	(SELECT COUNT(*) FROM requests WHERE receiver_id = $1 AND status = 'pending'),
	(SELECT COUNT(*)
		FROM messages msg
		JOIN matches m ON m.id = msg.match_id
		WHERE (m.user_a = $1 OR m.user_b = $1)
			AND msg.sender_id <> $1
			AND msg.created_at >= $2),
	(SELECT COUNT(*)
		FROM matches
		WHERE (user_a = $1 OR user_b = $1) AND created_at >= $2)
`, userID, since).Scan(&counts.PendingRequests, &counts.UnreadMessages, &counts.NewMatches)
	if err != nil {
		return NotificationCounts{}, fmt.Errorf("count notifications: %w", err)
	}

	return counts, nil
}
