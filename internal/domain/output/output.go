package output

import "github.com/google/uuid"

// OnlineUserInfo содержит информацию об онлайн пользователе
type OnlineUserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ChatInfo - чат глазами одного из участников
type ChatInfo struct {
	ChatID   uuid.UUID      `json:"chat_id"`
	WithUser OnlineUserInfo `json:"with_user"`
}
