package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wybmv/backend/internal/domain/model"
)

var ErrInviteNotFound = errors.New("invite code not found")

type InviteRepo struct {
	pool *pgxpool.Pool
}

func NewInviteRepo(pool *pgxpool.Pool) *InviteRepo {
	return &InviteRepo{pool: pool}
}

func (r *InviteRepo) FindByCode(ctx context.Context, code string) (model.InviteCode, error) {
	if r.pool == nil {
		return model.InviteCode{}, fmt.Errorf("postgres pool is nil")
	}

	var invite model.InviteCode
	err := r.pool.QueryRow(ctx, `
SELECT id, code, created_at
FROM invite_codes
WHERE code = $1
`, code).Scan(&invite.ID, &invite.Code, &invite.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.InviteCode{}, ErrInviteNotFound
		}
		return model.InviteCode{}, fmt.Errorf("find invite code: %w", err)
	}

	return invite, nil
}
