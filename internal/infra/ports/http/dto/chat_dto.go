package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/domain/models"
)

type AddContactRequest struct {
	ContactID uuid.UUID `json:"contact_id"`
}

type CreateChatRequest struct {
	ContactID uuid.UUID `json:"contact_id"`
}

type CreateChatResponse struct {
	ChatID uuid.UUID `json:"chat_id"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	IsAudio   bool      `json:"is_audio"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessageResponse(msg *models.Message, senderName string) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		Sender:    senderName,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		IsAudio:   msg.IsAudio,
		Timestamp: msg.Timestamp,
	}
}

type UploadResponse struct {
	FilePath string `json:"file_path"`
}

type RTCTokenRequest struct {
	ChannelName string `json:"channelName"`
}

type RTCTokenResponse struct {
	Token string `json:"token"`
}
