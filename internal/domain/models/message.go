package models

import (
	"time"

	"github.com/google/uuid"
)

// Message - сохранённое сообщение чата. ID и Timestamp выставляет
// база данных при вставке, relay их никогда не придумывает сам.
type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    uuid.UUID `json:"chat_id" db:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id" db:"sender_id"`
	Content   string    `json:"content" db:"content"`
	IsAudio   bool      `json:"is_audio" db:"is_audio"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}
