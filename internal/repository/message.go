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

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	defer logger.DeferLogDuration("msg.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, chat_room_id, sender_id, content, read_status, read_by_recipient, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.ChatRoomID, m.SenderID, m.Content, m.ReadStatus, m.ReadByRecipient, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("msgRepo.Create: %w", err)
	}
	return nil
}

// ListByRoomAsc returns a room's history ordered by creation time ascending.
func (r *MessageRepository) ListByRoomAsc(ctx context.Context, roomID string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.ListByRoomAsc", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, chat_room_id, sender_id, content, read_status, read_by_recipient, created_at
		 FROM messages
		 WHERE chat_room_id = $1
		 ORDER BY created_at ASC`, roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.ListByRoomAsc query: %w", err)
	}
	defer rows.Close()

	messages := make([]model.Message, 0, 64)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ChatRoomID, &m.SenderID, &m.Content,
			&m.ReadStatus, &m.ReadByRecipient, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("msgRepo.ListByRoomAsc scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.ListByRoomAsc rows: %w", err)
	}
	return messages, nil
}

// GetLastByRoom returns the newest message of a room, or nil if the room is empty.
func (r *MessageRepository) GetLastByRoom(ctx context.Context, roomID string) (*model.Message, error) {
	defer logger.DeferLogDuration("msg.GetLastByRoom", time.Now())()
	m := &model.Message{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, chat_room_id, sender_id, content, read_status, read_by_recipient, created_at
		 FROM messages
		 WHERE chat_room_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, roomID,
	).Scan(&m.ID, &m.ChatRoomID, &m.SenderID, &m.Content, &m.ReadStatus, &m.ReadByRecipient, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("msgRepo.GetLastByRoom: %w", err)
	}
	return m, nil
}
