package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wybmv/backend/internal/domain/enums"
	"github.com/wybmv/backend/internal/domain/model"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `
	u.id,
	COALESCE(u.invite_code_id, '00000000-0000-0000-0000-000000000000'::uuid),
	u.anonymous_name,
	COALESCE(u.display_name, ''),
	COALESCE(u.bio, ''),
	COALESCE(u.gender, ''),
	COALESCE(u.avatar_url, ''),
	COALESCE(u.whatsapp_number, ''),
	COALESCE(u.room_number, ''),
	COALESCE(u.hobbies, '{}'::text[]),
	u.created_at`

const onboardedPredicate = `u.anonymous_name <> '' AND u.gender IS NOT NULL AND u.whatsapp_number IS NOT NULL`

type UserRepo struct {
	pool *pgxpool.Pool
}

type ProfileWrite struct {
	Handle      string
	DisplayName string
	Bio         string
	Gender      enums.Gender
	AvatarURL   string
	WhatsApp    string
	Room        string
	Hobbies     []string
}

type CandidateQuery struct {
	ViewerID uuid.UUID
	Gender   enums.Gender
	Limit    int
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, inviteCodeID uuid.UUID) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if inviteCodeID == uuid.Nil {
		return model.User{}, fmt.Errorf("invite code id is required")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users AS u (invite_code_id, anonymous_name, created_at, updated_at)
VALUES ($1, '', NOW(), NOW())
RETURNING`+userColumns, inviteCodeID))
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE u.id = $1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) ExistsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	out := make(map[uuid.UUID]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE u.id = ANY($1::uuid[])
`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("list users by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[user.ID] = user
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return out, nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileWrite) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	var hobbies []string
	if len(in.Hobbies) > 0 {
		hobbies = in.Hobbies
	}

	user, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users AS u SET
	anonymous_name = $2,
	display_name = NULLIF($3, ''),
	bio = NULLIF($4, ''),
	gender = NULLIF($5, ''),
	avatar_url = NULLIF($6, ''),
	whatsapp_number = NULLIF($7, ''),
	room_number = NULLIF($8, ''),
	hobbies = $9,
	updated_at = NOW()
WHERE u.id = $1
RETURNING`+userColumns,
		userID,
		in.Handle,
		in.DisplayName,
		in.Bio,
		string(in.Gender),
		in.AvatarURL,
		in.WhatsApp,
		in.Room,
		hobbies,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

func (r *UserRepo) CountRoomHolders(ctx context.Context, room string, excludeUserID uuid.UUID) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM users
WHERE room_number = $1 AND id <> $2
`, room, excludeUserID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count room holders: %w", err)
	}

	return count, nil
}

func (r *UserRepo) ListCandidates(ctx context.Context, q CandidateQuery) ([]model.User, error) {
	if r.pool == nil {
		return []model.User{}, nil
	}
	if q.Limit <= 0 {
		q.Limit = 200
	}

	return r.listUsers(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE u.id <> $1
	AND `+onboardedPredicate+`
	AND ($2 = '' OR u.gender = $2)
ORDER BY u.created_at DESC, u.id DESC
LIMIT $3
`, q.ViewerID, string(q.Gender), q.Limit)
}

func (r *UserRepo) FindOnboardedByHandle(ctx context.Context, handle string, gender enums.Gender, limit int) ([]model.User, error) {
	if r.pool == nil {
		return []model.User{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	return r.listUsers(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE u.anonymous_name = $1
	AND u.gender = $2
	AND `+onboardedPredicate+`
ORDER BY u.created_at DESC
LIMIT $3
`, strings.TrimSpace(handle), string(gender), limit)
}

func (r *UserRepo) ListOnboardedByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 || r.pool == nil {
		return []model.User{}, nil
	}

	return r.listUsers(ctx, `
SELECT`+userColumns+`
FROM users u
WHERE u.id = ANY($1::uuid[])
	AND `+onboardedPredicate+`
ORDER BY u.created_at DESC
`, uuidStrings(ids))
}

func (r *UserRepo) listUsers(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		items = append(items, user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}

	return items, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user   model.User
		gender string
	)
	if err := row.Scan(
		&user.ID,
		&user.InviteCodeID,
		&user.Handle,
		&user.DisplayName,
		&user.Bio,
		&gender,
		&user.AvatarURL,
		&user.WhatsApp,
		&user.Room,
		&user.Hobbies,
		&user.CreatedAt,
	); err != nil {
		return model.User{}, err
	}
	user.Gender = enums.Gender(gender)
	return user, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
