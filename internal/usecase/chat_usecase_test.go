package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/usecase"
)

func TestCreateChatRequiresContact(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	uc := usecase.NewChatUsecase(
		newFakeChatRepo(),
		newFakeContactRepo(),
		newFakeUserRepo(alice, bob),
		newFakeMessageRepo(),
	)

	_, _, err := uc.CreateChat(context.Background(), alice.ID, bob.ID)
	if !errors.Is(err, usecase.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-contact, got %v", err)
	}
}

func TestCreateChatDeduplicatesBothOrders(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	contacts := newFakeContactRepo()
	_ = contacts.Create(context.Background(), &models.Contact{UserID: alice.ID, ContactID: bob.ID})
	_ = contacts.Create(context.Background(), &models.Contact{UserID: bob.ID, ContactID: alice.ID})

	uc := usecase.NewChatUsecase(
		newFakeChatRepo(),
		contacts,
		newFakeUserRepo(alice, bob),
		newFakeMessageRepo(),
	)

	chatID, created, err := uc.CreateChat(context.Background(), alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the chat")
	}

	// Повторное создание с обратным порядком участников возвращает
	// тот же чат
	sameID, created, err := uc.CreateChat(context.Background(), bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("create chat reversed: %v", err)
	}
	if created {
		t.Fatal("expected second call to reuse the existing chat")
	}
	if sameID != chatID {
		t.Fatalf("expected same chat id, got %s and %s", chatID, sameID)
	}
}

func TestGetMessagesHidesForeignChat(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}
	mallory := &models.User{ID: uuid.New(), Username: "mallory"}

	chats := newFakeChatRepo()
	chat := &models.Chat{ID: uuid.New(), User1ID: alice.ID, User2ID: bob.ID}
	_ = chats.Create(context.Background(), chat)

	uc := usecase.NewChatUsecase(
		chats,
		newFakeContactRepo(),
		newFakeUserRepo(alice, bob, mallory),
		newFakeMessageRepo(),
	)

	if _, err := uc.GetMessages(context.Background(), mallory.ID, chat.ID); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-participant, got %v", err)
	}

	if _, err := uc.GetMessages(context.Background(), alice.ID, uuid.New()); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown chat, got %v", err)
	}

	if _, err := uc.GetMessages(context.Background(), alice.ID, chat.ID); err != nil {
		t.Fatalf("participant must see the chat: %v", err)
	}
}

func TestListChats(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	chats := newFakeChatRepo()
	chat := &models.Chat{ID: uuid.New(), User1ID: alice.ID, User2ID: bob.ID}
	_ = chats.Create(context.Background(), chat)

	uc := usecase.NewChatUsecase(
		chats,
		newFakeContactRepo(),
		newFakeUserRepo(alice, bob),
		newFakeMessageRepo(),
	)

	list, err := uc.ListChats(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}

	if len(list) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(list))
	}
	if list[0].ChatID != chat.ID {
		t.Fatalf("unexpected chat id %s", list[0].ChatID)
	}
	if list[0].WithUser.ID != bob.ID || list[0].WithUser.Username != "bob" {
		t.Fatalf("expected the other participant, got %+v", list[0].WithUser)
	}
}
