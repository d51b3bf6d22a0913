package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"chat-notify/internal/domain"
)

// ChatRepository implements domain.ChatRepository for PostgreSQL
type ChatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new PostgreSQL chat repository
func NewChatRepository(db *sql.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetByID retrieves a chat with its full member list
func (r *ChatRepository) GetByID(ctx context.Context, id int64) (*domain.Chat, error) {
	query := `
		SELECT id, ws_id, name, type, members, created_at
		FROM chats
		WHERE id = $1
	`

	chat := &domain.Chat{}
	var members pq.Int64Array
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&chat.ID,
		&chat.WsID,
		&chat.Name,
		&chat.Type,
		&members,
		&chat.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	chat.Members = members
	return chat, nil
}

// IsMember reports whether userID is in the chat's member list
func (r *ChatRepository) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM chats
			WHERE id = $1 AND members @> ARRAY[$2]::bigint[]
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, chatID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return exists, nil
}
