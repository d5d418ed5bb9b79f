package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chatgate/internal/logger"
	"github.com/chatgate/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicatePair is returned by Create when another room for the same
// unordered user pair already exists (unique index chat_rooms_pair_key).
// Callers treat it as "someone else just created it" and re-fetch.
var ErrDuplicatePair = errors.New("room already exists for user pair")

const pgUniqueViolation = "23505"

const roomColumns = `id, user1_id, user2_id, created_at, updated_at, last_message_at,
	 user1_unread_count, user2_unread_count`

type RoomRepository struct {
	pool *pgxpool.Pool
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	rm := &model.Room{}
	err := row.Scan(&rm.ID, &rm.User1ID, &rm.User2ID, &rm.CreatedAt, &rm.UpdatedAt,
		&rm.LastMessageAt, &rm.User1UnreadCount, &rm.User2UnreadCount)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// FindByPair looks up the room for the unordered pair {a, b}. The tuple is
// stored ordered, so both orderings are checked.
func (r *RoomRepository) FindByPair(ctx context.Context, a, b int64) (*model.Room, error) {
	defer logger.DeferLogDuration("room.FindByPair", time.Now())()
	rm, err := scanRoom(r.pool.QueryRow(ctx,
		`SELECT `+roomColumns+`
		 FROM chat_rooms
		 WHERE (user1_id = $1 AND user2_id = $2) OR (user1_id = $2 AND user2_id = $1)`,
		a, b,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("roomRepo.FindByPair: %w", err)
	}
	return rm, nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*model.Room, error) {
	defer logger.DeferLogDuration("room.GetByID", time.Now())()
	rm, err := scanRoom(r.pool.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM chat_rooms WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("roomRepo.GetByID: %w", err)
	}
	return rm, nil
}

// Create inserts a new room. A unique violation on the pair index is mapped
// to ErrDuplicatePair.
func (r *RoomRepository) Create(ctx context.Context, rm *model.Room) error {
	defer logger.DeferLogDuration("room.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_rooms (id, user1_id, user2_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rm.ID, rm.User1ID, rm.User2ID, rm.CreatedAt, rm.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicatePair
		}
		return fmt.Errorf("roomRepo.Create: %w", err)
	}
	return nil
}

// RecordMessage applies the per-message room bookkeeping in one statement:
// last_message_at/updated_at and the recipient's unread counter only. A single
// UPDATE keeps concurrent sends in the same room from losing increments.
func (r *RoomRepository) RecordMessage(ctx context.Context, roomID string, recipientID int64, at time.Time) error {
	defer logger.DeferLogDuration("room.RecordMessage", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE chat_rooms SET
		   last_message_at = $1,
		   updated_at = $1,
		   user1_unread_count = user1_unread_count + CASE WHEN user1_id = $2 THEN 1 ELSE 0 END,
		   user2_unread_count = user2_unread_count + CASE WHEN user2_id = $2 THEN 1 ELSE 0 END
		 WHERE id = $3`,
		at, recipientID, roomID,
	)
	if err != nil {
		return fmt.Errorf("roomRepo.RecordMessage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns the user's rooms, most recently active first.
func (r *RoomRepository) ListByUser(ctx context.Context, userID int64) ([]model.Room, error) {
	defer logger.DeferLogDuration("room.ListByUser", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+roomColumns+`
		 FROM chat_rooms
		 WHERE user1_id = $1 OR user2_id = $1
		 ORDER BY last_message_at DESC NULLS LAST, created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("roomRepo.ListByUser query: %w", err)
	}
	defer rows.Close()

	rooms := make([]model.Room, 0, 16)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.User1ID, &rm.User2ID, &rm.CreatedAt, &rm.UpdatedAt,
			&rm.LastMessageAt, &rm.User1UnreadCount, &rm.User2UnreadCount); err != nil {
			return nil, fmt.Errorf("roomRepo.ListByUser scan: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roomRepo.ListByUser rows: %w", err)
	}
	return rooms, nil
}
