package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/domain/output"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
)

// ChatUsecase определяет интерфейс для работы с чатами
type ChatUsecase interface {
	// CreateChat создаёт личный чат с контактом. Если чат пары уже
	// существует (в любом порядке участников), возвращается его id.
	CreateChat(ctx context.Context, userID, contactID uuid.UUID) (chatID uuid.UUID, created bool, err error)

	ListChats(ctx context.Context, userID uuid.UUID) ([]output.ChatInfo, error)

	// GetMessages возвращает историю чата по возрастанию времени.
	// Не участнику чат не виден - ErrNotFound, без различения причин.
	GetMessages(ctx context.Context, userID, chatID uuid.UUID) ([]*models.Message, error)
}

type chatUsecase struct {
	chatRepo    repository.ChatRepository
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

func NewChatUsecase(
	chatRepo repository.ChatRepository,
	contactRepo repository.ContactRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
) ChatUsecase {
	return &chatUsecase{
		chatRepo:    chatRepo,
		contactRepo: contactRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

func (uc *chatUsecase) CreateChat(ctx context.Context, userID, contactID uuid.UUID) (uuid.UUID, bool, error) {
	// Чат можно завести только с контактом
	isContact, err := uc.contactRepo.Exists(ctx, userID, contactID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("check contact: %w", err)
	}
	if !isContact {
		return uuid.Nil, false, ErrForbidden
	}

	existing, err := uc.chatRepo.GetByParticipants(ctx, userID, contactID)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, repository.ErrChatNotFound) {
		return uuid.Nil, false, fmt.Errorf("get chat by participants: %w", err)
	}

	chat := &models.Chat{
		ID:      uuid.New(),
		User1ID: userID,
		User2ID: contactID,
	}

	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return uuid.Nil, false, fmt.Errorf("create chat: %w", err)
	}

	return chat.ID, true, nil
}

func (uc *chatUsecase) ListChats(ctx context.Context, userID uuid.UUID) ([]output.ChatInfo, error) {
	chats, err := uc.chatRepo.GetChatsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get chats: %w", err)
	}

	result := make([]output.ChatInfo, 0, len(chats))

	for _, chat := range chats {
		other, err := uc.userRepo.GetUserByID(ctx, chat.OtherParticipant(userID))
		if err != nil {
			continue
		}

		result = append(result, output.ChatInfo{
			ChatID: chat.ID,
			WithUser: output.OnlineUserInfo{
				ID:       other.ID,
				Username: other.Username,
			},
		})
	}

	return result, nil
}

func (uc *chatUsecase) GetMessages(ctx context.Context, userID, chatID uuid.UUID) ([]*models.Message, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, ErrNotFound
	}

	if !chat.HasParticipant(userID) {
		return nil, ErrNotFound
	}

	messages, err := uc.messageRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}

	return messages, nil
}
