package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/domain/events"
	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/infra/adapters/postgres/repository"
)

// fakeConn собирает конверты, записанные в соединение
type fakeConn struct {
	mu        sync.Mutex
	envelopes []events.Envelope

	// onWrite, если задан, вызывается на каждый конверт
	onWrite func(events.Envelope)
}

func (c *fakeConn) WriteJSON(v any) error {
	env, ok := v.(events.Envelope)
	if !ok {
		return errors.New("unexpected payload type")
	}

	c.mu.Lock()
	c.envelopes = append(c.envelopes, env)
	hook := c.onWrite
	c.mu.Unlock()

	if hook != nil {
		hook(env)
	}

	return nil
}

func (c *fakeConn) received(t *testing.T, eventType string) []events.Envelope {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []events.Envelope
	for _, env := range c.envelopes {
		if env.Type == eventType {
			matched = append(matched, env)
		}
	}

	return matched
}

func decodePayload[T any](t *testing.T, env events.Envelope) T {
	t.Helper()

	var payload T
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode %s payload: %v", env.Type, err)
	}

	return payload
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}

	return repo
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}

	return user, nil
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}

	return nil, errors.New("user not found")
}

func (r *fakeUserRepo) SearchByUsername(_ context.Context, query string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.User
	for _, user := range r.users {
		result = append(result, user)
	}

	return result, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]*models.Message

	failCreate bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]*models.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate {
		return errors.New("insert failed")
	}

	msg.ID = uuid.New()
	msg.Timestamp = time.Now()

	stored := *msg
	r.messages[msg.ID] = &stored

	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrMessageNotFound
	}

	copied := *msg
	return &copied, nil
}

func (r *fakeMessageRepo) GetByChatID(_ context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Message
	for _, msg := range r.messages {
		if msg.ChatID == chatID {
			copied := *msg
			result = append(result, &copied)
		}
	}

	return result, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[id]; !ok {
		return repository.ErrMessageNotFound
	}

	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) has(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.messages[id]
	return ok
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.messages)
}

type fakeContactRepo struct {
	mu    sync.Mutex
	pairs map[[2]uuid.UUID]bool
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{pairs: make(map[[2]uuid.UUID]bool)}
}

func (r *fakeContactRepo) Create(_ context.Context, contact *models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pairs[[2]uuid.UUID{contact.UserID, contact.ContactID}] = true
	return nil
}

func (r *fakeContactRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Contact
	for pair := range r.pairs {
		if pair[0] == userID {
			result = append(result, &models.Contact{UserID: pair[0], ContactID: pair[1]})
		}
	}

	return result, nil
}

func (r *fakeContactRepo) Exists(_ context.Context, userID, contactID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pairs[[2]uuid.UUID{userID, contactID}], nil
}

type fakeChatRepo struct {
	mu    sync.Mutex
	chats map[uuid.UUID]*models.Chat
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[uuid.UUID]*models.Chat)}
}

func (r *fakeChatRepo) Create(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, ok := r.chats[id]
	if !ok {
		return nil, repository.ErrChatNotFound
	}

	return chat, nil
}

func (r *fakeChatRepo) GetByParticipants(_ context.Context, userA, userB uuid.UUID) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, chat := range r.chats {
		if (chat.User1ID == userA && chat.User2ID == userB) ||
			(chat.User1ID == userB && chat.User2ID == userA) {
			return chat, nil
		}
	}

	return nil, repository.ErrChatNotFound
}

func (r *fakeChatRepo) GetChatsByUserID(_ context.Context, userID uuid.UUID) ([]*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userID) {
			result = append(result, chat)
		}
	}

	return result, nil
}

type fakeAudioStore struct {
	mu      sync.Mutex
	removed []string
}

func (s *fakeAudioStore) Remove(publicPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed = append(s.removed, publicPath)
	return nil
}
