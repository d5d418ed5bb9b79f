package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	defer logger.DeferLogDuration("user.GetByID", time.Now())()
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, profile_image, session, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.ProfileImage, &u.Session, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return u, nil
}

// GetBySession resolves a session token to its user. The token is written by
// the auth collaborator; the gateway only reads it.
func (r *UserRepository) GetBySession(ctx context.Context, token string) (*model.User, error) {
	defer logger.DeferLogDuration("user.GetBySession", time.Now())()
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, profile_image, session, created_at
		 FROM users WHERE session = $1`, token,
	).Scan(&u.ID, &u.Name, &u.Email, &u.ProfileImage, &u.Session, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("userRepo.GetBySession: %w", err)
	}
	return u, nil
}

// ListExcept returns every user except selfID, ordered by name, for the
// contact list.
func (r *UserRepository) ListExcept(ctx context.Context, selfID int64) ([]model.UserPublic, error) {
	defer logger.DeferLogDuration("user.ListExcept", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, profile_image FROM users
		 WHERE id <> $1 ORDER BY name ASC NULLS LAST, id ASC`, selfID,
	)
	if err != nil {
		return nil, fmt.Errorf("userRepo.ListExcept query: %w", err)
	}
	defer rows.Close()

	users := make([]model.UserPublic, 0, 16)
	for rows.Next() {
		var u model.UserPublic
		if err := rows.Scan(&u.ID, &u.Name, &u.ProfileImage); err != nil {
			return nil, fmt.Errorf("userRepo.ListExcept scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userRepo.ListExcept rows: %w", err)
	}
	return users, nil
}
