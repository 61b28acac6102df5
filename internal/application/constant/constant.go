package constant

// Ключи атрибутов для slog
const (
	Error     = "error"
	UserID    = "user_id"
	UserName  = "user_name"
	ChatID    = "chat_id"
	MessageID = "message_id"
	EventType = "event_type"
)
