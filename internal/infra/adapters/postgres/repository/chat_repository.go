package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkazarin/molva/internal/domain/models"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)

	// GetByParticipants ищет чат пары в обоих порядках (user1, user2)
	GetByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error)

	GetChatsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error)
}

// ErrChatNotFound возвращается, когда чат пары ещё не создан
var ErrChatNotFound = errors.New("chat not found")

type chatRepo struct {
	db *sqlx.DB
}

func NewChatRepo(db *sqlx.DB) ChatRepository {
	return &chatRepo{db: db}
}

func (r *chatRepo) Create(ctx context.Context, chat *models.Chat) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO chats (id, user1_id, user2_id) VALUES ($1, $2, $3)",
		chat.ID,
		chat.User1ID,
		chat.User2ID,
	)

	return err
}

func (r *chatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat

	query := "SELECT id, user1_id, user2_id, created_at FROM chats WHERE id = $1"

	err := r.db.GetContext(ctx, &chat, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

func (r *chatRepo) GetByParticipants(ctx context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	var chat models.Chat

	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM chats
		WHERE (user1_id = $1 AND user2_id = $2)
		   OR (user1_id = $2 AND user2_id = $1)
	`

	err := r.db.GetContext(ctx, &chat, query, userA, userB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, err
	}

	return &chat, nil
}

func (r *chatRepo) GetChatsByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	var chats []*models.Chat

	query := `
		SELECT id, user1_id, user2_id, created_at
		FROM chats
		WHERE user1_id = $1 OR user2_id = $1
	`

	if err := r.db.SelectContext(ctx, &chats, query, userID); err != nil {
		return nil, err
	}

	return chats, nil
}
