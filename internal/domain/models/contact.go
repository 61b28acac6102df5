package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact - запись "пользователь user_id добавил contact_id в контакты".
// Пара (user_id, contact_id) уникальна на уровне БД.
type Contact struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ContactID uuid.UUID `json:"contact_id" db:"contact_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
