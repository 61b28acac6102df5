package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat - личный чат двух пользователей. ID чата одновременно служит
// ключом комнаты в real-time слое.
type Chat struct {
	ID        uuid.UUID `json:"id" db:"id"`
	User1ID   uuid.UUID `json:"user1_id" db:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id" db:"user2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OtherParticipant возвращает второго участника чата
func (c *Chat) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}

	return c.User1ID
}

// HasParticipant сообщает, состоит ли пользователь в чате
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}
