package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий real-time канала. Каждому типу соответствует
// фиксированная структура payload'а, валидируемая на границе.
const (
	TypeJoin        = "join"
	TypeLeave       = "leave"
	TypeSendMessage = "send_message"
	TypeCallUser    = "call_user"
	TypeAnswerCall  = "answer_call"
	TypeHangUp      = "hang_up"

	TypeMessage        = "message"
	TypeMessageDeleted = "message_deleted"
	TypeIncomingCall   = "incoming_call"
	TypeCallAnswered   = "call_answered"
	TypeCallEnded      = "call_ended"
	TypeError          = "error"
)

// Envelope - общий конверт события
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewEnvelope упаковывает payload в конверт с указанным типом
func NewEnvelope(eventType string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Envelope{Type: eventType, Data: data}, nil
}

// JoinEvent - вход в комнату чата. Room - это id чата
type JoinEvent struct {
	Room string `json:"room"`
}

// LeaveEvent - выход из комнаты чата
type LeaveEvent struct {
	Room string `json:"room"`
}

// SendMessageEvent - отправка сообщения в комнату
type SendMessageEvent struct {
	Room    string `json:"room"`
	Content string `json:"content"`
	Token   string `json:"token"`
	IsAudio bool   `json:"is_audio"`
}

// CallUserEvent - приглашение пользователя в голосовой звонок
type CallUserEvent struct {
	TargetUserID uuid.UUID `json:"targetUserId"`
	ChannelName  string    `json:"channelName"`
	Token        string    `json:"token"`
}

// AnswerCallEvent - ответ на входящий звонок
type AnswerCallEvent struct {
	CallerID uuid.UUID `json:"callerId"`
}

// HangUpEvent - завершение или отклонение звонка
type HangUpEvent struct {
	OtherUserID uuid.UUID `json:"otherUserId"`
}

// MessageEvent - рассылка сохранённого сообщения участникам комнаты
type MessageEvent struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	IsAudio   bool      `json:"is_audio"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageDeletedEvent - уведомление комнаты об удалении сообщения
type MessageDeletedEvent struct {
	MessageID uuid.UUID `json:"message_id"`
}

// IncomingCallEvent - доставляется только вызываемому
type IncomingCallEvent struct {
	CallerID       uuid.UUID `json:"callerId"`
	CallerUsername string    `json:"callerUsername"`
	ChannelName    string    `json:"channelName"`
	Token          string    `json:"token"`
}

// CallAnsweredEvent - доставляется только звонящему
type CallAnsweredEvent struct{}

// CallEndedEvent - доставляется второму участнику звонка
type CallEndedEvent struct{}

// ErrorEvent - ошибка, возвращаемая отправителю события
type ErrorEvent struct {
	Message string `json:"message"`
}
