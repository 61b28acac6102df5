package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkazarin/molva/internal/domain/models"
)

type MessageRepository interface {
	// Create вставляет сообщение; id и timestamp выставляет база,
	// заполненная модель возвращается вызывающему.
	Create(ctx context.Context, msg *models.Message) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	GetByChatID(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrMessageNotFound возвращается для неизвестного id сообщения
var ErrMessageNotFound = errors.New("message not found")

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepo(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (chat_id, sender_id, content, is_audio)
		VALUES ($1, $2, $3, $4)
		RETURNING id, timestamp
	`

	row := r.db.QueryRowxContext(ctx, query, msg.ChatID, msg.SenderID, msg.Content, msg.IsAudio)

	if err := row.Scan(&msg.ID, &msg.Timestamp); err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message

	query := "SELECT id, chat_id, sender_id, content, is_audio, timestamp FROM messages WHERE id = $1"

	err := r.db.GetContext(ctx, &msg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}

	return &msg, nil
}

func (r *messageRepo) GetByChatID(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	var messages []*models.Message

	query := `
		SELECT id, chat_id, sender_id, content, is_audio, timestamp
		FROM messages
		WHERE chat_id = $1
		ORDER BY timestamp ASC
	`

	if err := r.db.SelectContext(ctx, &messages, query, chatID); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	if aff, err := res.RowsAffected(); err == nil && aff == 0 {
		return ErrMessageNotFound
	}

	return nil
}
