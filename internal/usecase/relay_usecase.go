package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/application/metric"
	"github.com/dkazarin/molva/internal/domain/events"
	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/infra/adapters/memory"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
	"github.com/dkazarin/molva/internal/infra/auth"
)

// AudioStore удаляет бинарные вложения голосовых сообщений
type AudioStore interface {
	Remove(publicPath string) error
}

// MessageRelay - ядро доставки сообщений: сначала сохранить,
// потом разослать комнате. Порядок строгий: рассылка никогда не
// уходит раньше, чем запись стала durable.
type MessageRelay interface {
	// Submit валидирует токен конверта, сохраняет сообщение и
	// рассылает обогащённую запись комнате. Ответ отправителю -
	// только его собственная копия из рассылки.
	Submit(ctx context.Context, connUserID uuid.UUID, ev events.SendMessageEvent) error

	// Delete удаляет сообщение и уведомляет комнату. Удалять может
	// только автор.
	Delete(ctx context.Context, requesterID, messageID uuid.UUID) error

	// Broadcast доставляет конверт всем участникам комнаты по снимку
	// членства. Оффлайн-участники молча пропускаются.
	Broadcast(room string, env events.Envelope)
}

type messageRelay struct {
	jwtSecret []byte

	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository

	sessions memory.SessionRegistry
	rooms    memory.RoomRegistry

	audio AudioStore
}

func NewMessageRelay(
	jwtSecret []byte,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	sessions memory.SessionRegistry,
	rooms memory.RoomRegistry,
	audio AudioStore,
) MessageRelay {
	return &messageRelay{
		jwtSecret:   jwtSecret,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		sessions:    sessions,
		rooms:       rooms,
		audio:       audio,
	}
}

func (r *messageRelay) Submit(ctx context.Context, connUserID uuid.UUID, ev events.SendMessageEvent) error {
	senderID, err := auth.ParseToken(r.jwtSecret, ev.Token)
	if err != nil {
		metric.IncrementDeliveryDropped("unauthenticated")
		r.sendError(connUserID, "invalid or expired token")

		return nil
	}

	chatID, err := uuid.Parse(ev.Room)
	if err != nil {
		metric.IncrementDeliveryDropped("malformed_payload")
		r.sendError(connUserID, "invalid room")

		return nil
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  ev.Content,
		IsAudio:  ev.IsAudio,
	}

	// Сохранение строго до рассылки: получатели всегда видят id,
	// который уже есть в базе. Ошибка сохранения - рассылки нет.
	if err := r.messageRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	sender, err := r.userRepo.GetUserByID(ctx, senderID)
	if err != nil {
		return fmt.Errorf("get sender: %w", err)
	}

	env, err := events.NewEnvelope(events.TypeMessage, events.MessageEvent{
		ID:        msg.ID,
		Sender:    sender.Username,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		IsAudio:   msg.IsAudio,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		return err
	}

	r.Broadcast(ev.Room, env)

	metric.IncrementMessagesRelayed()

	return nil
}

func (r *messageRelay) Delete(ctx context.Context, requesterID, messageID uuid.UUID) error {
	msg, err := r.messageRepo.GetByID(ctx, messageID)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}

	if msg.SenderID != requesterID {
		return ErrForbidden
	}

	if err := r.messageRepo.Delete(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete message: %w", err)
	}

	// Вложение удаляем best-effort: сообщение уже удалено,
	// осиротевший файл - не повод возвращать ошибку
	if msg.IsAudio {
		if err := r.audio.Remove(msg.Content); err != nil {
			slog.Error(
				"remove audio attachment",
				slog.Any(constant.Error, err),
				slog.Any(constant.MessageID, messageID),
			)
		}
	}

	env, err := events.NewEnvelope(events.TypeMessageDeleted, events.MessageDeletedEvent{
		MessageID: messageID,
	})
	if err != nil {
		return err
	}

	r.Broadcast(msg.ChatID.String(), env)

	return nil
}

func (r *messageRelay) Broadcast(room string, env events.Envelope) {
	for _, userID := range r.rooms.Members(room) {
		if !r.sessions.Write(userID, env) {
			metric.IncrementDeliveryDropped("offline")
		}
	}
}

func (r *messageRelay) sendError(userID uuid.UUID, message string) {
	env, err := events.NewEnvelope(events.TypeError, events.ErrorEvent{Message: message})
	if err != nil {
		return
	}

	r.sessions.Write(userID, env)
}
