package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/domain/output"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
)

// ContactUsecase определяет интерфейс для работы с контактами
type ContactUsecase interface {
	AddContact(ctx context.Context, userID, contactID uuid.UUID) error
	ListContacts(ctx context.Context, userID uuid.UUID) ([]output.OnlineUserInfo, error)
}

type contactUsecase struct {
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
}

func NewContactUsecase(contactRepo repository.ContactRepository, userRepo repository.UserRepository) ContactUsecase {
	return &contactUsecase{contactRepo: contactRepo, userRepo: userRepo}
}

// AddContact добавляет пользователя в контакты
func (uc *contactUsecase) AddContact(ctx context.Context, userID, contactID uuid.UUID) error {
	if userID == contactID {
		return ErrSelfContact
	}

	if _, err := uc.userRepo.GetUserByID(ctx, contactID); err != nil {
		return ErrNotFound
	}

	exists, err := uc.contactRepo.Exists(ctx, userID, contactID)
	if err != nil {
		return fmt.Errorf("check contact exists: %w", err)
	}
	if exists {
		return ErrContactExists
	}

	contact := &models.Contact{
		ID:        uuid.New(),
		UserID:    userID,
		ContactID: contactID,
	}

	if err := uc.contactRepo.Create(ctx, contact); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}

	return nil
}

// ListContacts возвращает контакты пользователя с именами
func (uc *contactUsecase) ListContacts(ctx context.Context, userID uuid.UUID) ([]output.OnlineUserInfo, error) {
	contacts, err := uc.contactRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}

	result := make([]output.OnlineUserInfo, 0, len(contacts))

	for _, contact := range contacts {
		user, err := uc.userRepo.GetUserByID(ctx, contact.ContactID)
		if err != nil {
			continue
		}

		result = append(result, output.OnlineUserInfo{
			ID:       user.ID,
			Username: user.Username,
		})
	}

	return result, nil
}
