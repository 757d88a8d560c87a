package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
)

var ErrMatchNotFound = errors.New("match not found")

const matchSelect = `
SELECT
	m.id,
	m.user_a,
	m.user_b,
	m.created_at,
	ra.channel,
	rb.channel
FROM matches m
LEFT JOIN match_reveals ra ON ra.match_id = m.id AND ra.user_id = m.user_a
LEFT JOIN match_reveals rb ON rb.match_id = m.id AND rb.user_id = m.user_b
`

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// CreateIfAbsent inserts the canonical pair. created is false when the pair already had a match.
func (r *MatchRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, userID, targetID uuid.UUID) (model.Match, bool, error) {
	if userID == uuid.Nil || targetID == uuid.Nil || userID == targetID {
		return model.Match{}, false, fmt.Errorf("invalid match payload")
	}
	if tx == nil {
		return model.Match{}, false, fmt.Errorf("transaction is required")
	}

	userA, userB := model.CanonicalPair(userID, targetID)

	match := model.Match{
		UserA:   userA,
		UserB:   userB,
		RevealA: model.HiddenSide(),
		RevealB: model.HiddenSide(),
	}
	err := tx.QueryRow(ctx, `
INSERT INTO matches (user_a, user_b, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_a, user_b) DO NOTHING
RETURNING id, created_at
`, userA, userB).Scan(&match.ID, &match.CreatedAt)
	if err == nil {
		return match, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, fmt.Errorf("create match: %w", err)
	}

	existing, err := scanMatch(tx.QueryRow(ctx, matchSelect+`
WHERE m.user_a = $1 AND m.user_b = $2
`, userA, userB))
	if err != nil {
		return model.Match{}, false, fmt.Errorf("load existing match: %w", err)
	}

	return existing, false, nil
}

func (r *MatchRepo) GetByID(ctx context.Context, matchID uuid.UUID) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	match, err := scanMatch(r.pool.QueryRow(ctx, matchSelect+`
WHERE m.id = $1
`, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("get match: %w", err)
	}

	return match, nil
}

func (r *MatchRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Match, error) {
	if r.pool == nil {
		return []model.Match{}, nil
	}

	rows, err := r.pool.Query(ctx, matchSelect+`
WHERE m.user_a = $1 OR m.user_b = $1
ORDER BY m.created_at DESC, m.id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]model.Match, 0)
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, match)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate matches: %w", rows.Err())
	}

	return items, nil
}

// UpsertReveal records a side as revealed. The row is never deleted, so the flag cannot go back.
func (r *MatchRepo) UpsertReveal(ctx context.Context, matchID, userID uuid.UUID, channel enums.RevealChannel) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO match_reveals (match_id, user_id, channel, revealed_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (match_id, user_id) DO UPDATE SET
	channel = EXCLUDED.channel,
	updated_at = NOW()
`, matchID, userID, string(channel))
	if err != nil {
		return fmt.Errorf("upsert reveal: %w", err)
	}

	return nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		match    model.Match
		channelA *string
		channelB *string
	)
	if err := row.Scan(&match.ID, &match.UserA, &match.UserB, &match.CreatedAt, &channelA, &channelB); err != nil {
		return model.Match{}, err
	}
	match.RevealA = revealSide(channelA)
	match.RevealB = revealSide(channelB)
	return match, nil
}

func revealSide(channel *string) model.RevealSide {
	if channel == nil || *channel == "" {
		return model.HiddenSide()
	}
	return model.RevealSide{Revealed: true, Channel: enums.RevealChannel(*channel)}
}
