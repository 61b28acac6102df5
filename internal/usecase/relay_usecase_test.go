package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/domain/events"
	"github.com/dkazarin/molva/internal/domain/models"
	"github.com/dkazarin/molva/internal/infra/adapters/memory"
	"github.com/dkazarin/molva/internal/infra/auth"
	"github.com/dkazarin/molva/internal/usecase"
)

var testSecret = []byte("test-secret")

type relayFixture struct {
	relay    usecase.MessageRelay
	sessions memory.SessionRegistry
	rooms    memory.RoomRegistry
	messages *fakeMessageRepo
	users    *fakeUserRepo
	audio    *fakeAudioStore
}

func newRelayFixture(users ...*models.User) *relayFixture {
	f := &relayFixture{
		sessions: memory.NewSessionRegistry(),
		rooms:    memory.NewRoomRegistry(),
		messages: newFakeMessageRepo(),
		users:    newFakeUserRepo(users...),
		audio:    &fakeAudioStore{},
	}

	f.relay = usecase.NewMessageRelay(
		testSecret,
		f.messages,
		f.users,
		f.sessions,
		f.rooms,
		f.audio,
	)

	return f
}

func (f *relayFixture) connect(t *testing.T, userID uuid.UUID, room string) *fakeConn {
	t.Helper()

	conn := &fakeConn{}
	f.sessions.Register(userID, conn)
	f.rooms.Join(room, userID)

	return conn
}

func mustToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token, err := auth.IssueToken(testSecret, userID, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	return token
}

func TestRelaySubmitDeliversToAllMembers(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	f := newRelayFixture(alice, bob)

	chatID := uuid.New()
	room := chatID.String()

	aliceConn := f.connect(t, alice.ID, room)
	bobConn := f.connect(t, bob.ID, room)

	err := f.relay.Submit(context.Background(), alice.ID, events.SendMessageEvent{
		Room:    room,
		Content: "hello",
		Token:   mustToken(t, alice.ID),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if f.messages.count() != 1 {
		t.Fatalf("expected 1 persisted message, got %d", f.messages.count())
	}

	for name, conn := range map[string]*fakeConn{"alice": aliceConn, "bob": bobConn} {
		got := conn.received(t, events.TypeMessage)
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 message event, got %d", name, len(got))
		}

		payload := decodePayload[events.MessageEvent](t, got[0])
		if payload.Content != "hello" {
			t.Fatalf("%s: unexpected content %q", name, payload.Content)
		}
		if payload.Sender != "alice" {
			t.Fatalf("%s: unexpected sender %q", name, payload.Sender)
		}
		if payload.SenderID != alice.ID {
			t.Fatalf("%s: unexpected sender id %s", name, payload.SenderID)
		}
		if payload.ID == uuid.Nil {
			t.Fatalf("%s: broadcast carries no persisted id", name)
		}
		if !f.messages.has(payload.ID) {
			t.Fatalf("%s: broadcast id %s is not in storage", name, payload.ID)
		}
	}
}

func TestRelaySubmitBadToken(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	f := newRelayFixture(alice, bob)

	chatID := uuid.New()
	room := chatID.String()

	aliceConn := f.connect(t, alice.ID, room)
	bobConn := f.connect(t, bob.ID, room)

	err := f.relay.Submit(context.Background(), alice.ID, events.SendMessageEvent{
		Room:    room,
		Content: "hello",
		Token:   "not-a-jwt",
	})
	if err != nil {
		t.Fatalf("submit with bad token must not error the read loop: %v", err)
	}

	if f.messages.count() != 0 {
		t.Fatal("message with bad token must not be persisted")
	}

	if got := aliceConn.received(t, events.TypeError); len(got) != 1 {
		t.Fatalf("expected 1 error event to the sender, got %d", len(got))
	}

	if got := bobConn.received(t, events.TypeError); len(got) != 0 {
		t.Fatal("error event leaked to another member")
	}
	if got := bobConn.received(t, events.TypeMessage); len(got) != 0 {
		t.Fatal("unauthenticated message was broadcast")
	}
}

func TestRelaySubmitMalformedRoom(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}

	f := newRelayFixture(alice)

	conn := &fakeConn{}
	f.sessions.Register(alice.ID, conn)

	err := f.relay.Submit(context.Background(), alice.ID, events.SendMessageEvent{
		Room:    "not-a-uuid",
		Content: "hello",
		Token:   mustToken(t, alice.ID),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if f.messages.count() != 0 {
		t.Fatal("message with malformed room must not be persisted")
	}

	if got := conn.received(t, events.TypeError); len(got) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(got))
	}
}

func TestRelaySubmitPersistFailure(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	f := newRelayFixture(alice, bob)
	f.messages.failCreate = true

	chatID := uuid.New()
	room := chatID.String()

	aliceConn := f.connect(t, alice.ID, room)
	bobConn := f.connect(t, bob.ID, room)

	err := f.relay.Submit(context.Background(), alice.ID, events.SendMessageEvent{
		Room:    room,
		Content: "hello",
		Token:   mustToken(t, alice.ID),
	})
	if err == nil {
		t.Fatal("expected persist failure to surface")
	}

	if got := aliceConn.received(t, events.TypeMessage); len(got) != 0 {
		t.Fatal("broadcast happened despite failed persist")
	}
	if got := bobConn.received(t, events.TypeMessage); len(got) != 0 {
		t.Fatal("broadcast happened despite failed persist")
	}
}

func TestRelayBroadcastSkipsOfflineMembers(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	f := newRelayFixture(alice, bob)

	chatID := uuid.New()
	room := chatID.String()

	aliceConn := f.connect(t, alice.ID, room)

	// bob числится в комнате, но соединения у него нет
	f.rooms.Join(room, bob.ID)

	err := f.relay.Submit(context.Background(), alice.ID, events.SendMessageEvent{
		Room:    room,
		Content: "hello",
		Token:   mustToken(t, alice.ID),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if got := aliceConn.received(t, events.TypeMessage); len(got) != 1 {
		t.Fatalf("expected online member to receive the message, got %d", len(got))
	}
}

func TestRelayDeleteBySender(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	f := newRelayFixture(alice, bob)

	chatID := uuid.New()
	room := chatID.String()

	aliceConn := f.connect(t, alice.ID, room)
	bobConn := f.connect(t, bob.ID, room)

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: alice.ID,
		Content:  "/uploads/voice.wav",
		IsAudio:  true,
	}
	if err := f.messages.Create(context.Background(), msg); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	if err := f.relay.Delete(context.Background(), alice.ID, msg.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if f.messages.has(msg.ID) {
		t.Fatal("message still in storage after delete")
	}

	if len(f.audio.removed) != 1 || f.audio.removed[0] != "/uploads/voice.wav" {
		t.Fatalf("expected audio attachment removal, got %v", f.audio.removed)
	}

	for name, conn := range map[string]*fakeConn{"alice": aliceConn, "bob": bobConn} {
		got := conn.received(t, events.TypeMessageDeleted)
		if len(got) != 1 {
			t.Fatalf("%s: expected 1 deletion event, got %d", name, len(got))
		}

		payload := decodePayload[events.MessageDeletedEvent](t, got[0])
		if payload.MessageID != msg.ID {
			t.Fatalf("%s: unexpected deleted id %s", name, payload.MessageID)
		}
	}
}

func TestRelayDeleteByStranger(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	mallory := &models.User{ID: uuid.New(), Username: "mallory"}

	f := newRelayFixture(alice, mallory)

	chatID := uuid.New()
	room := chatID.String()

	malloryConn := f.connect(t, mallory.ID, room)

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: alice.ID,
		Content:  "hello",
	}
	if err := f.messages.Create(context.Background(), msg); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	err := f.relay.Delete(context.Background(), mallory.ID, msg.ID)
	if !errors.Is(err, usecase.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if !f.messages.has(msg.ID) {
		t.Fatal("message disappeared after forbidden delete")
	}

	if got := malloryConn.received(t, events.TypeMessageDeleted); len(got) != 0 {
		t.Fatal("deletion event broadcast despite forbidden delete")
	}
}

func TestRelayDeleteMissing(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}

	f := newRelayFixture(alice)

	err := f.relay.Delete(context.Background(), alice.ID, uuid.New())
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Сообщение после реконнекта уходит на новое соединение, старое
// молчит. Сценарий: отправка, обрыв, реконнект, повторная отправка.
func TestRelayReconnectScenario(t *testing.T) {
	alice := &models.User{ID: uuid.New(), Username: "alice"}
	bob := &models.User{ID: uuid.New(), Username: "bob"}

	f := newRelayFixture(alice, bob)

	chatID := uuid.New()
	room := chatID.String()

	f.connect(t, alice.ID, room)
	oldBob := f.connect(t, bob.ID, room)

	submit := func() {
		t.Helper()

		err := f.relay.Submit(context.Background(), alice.ID, events.SendMessageEvent{
			Room:    room,
			Content: "ping",
			Token:   mustToken(t, alice.ID),
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	submit()

	if got := oldBob.received(t, events.TypeMessage); len(got) != 1 {
		t.Fatalf("expected first delivery on old connection, got %d", len(got))
	}

	newBob := f.connect(t, bob.ID, room)

	// teardown старого соединения приходит после реконнекта и
	// не должен трогать новую сессию
	if _, ok := f.sessions.Unregister(oldBob); ok {
		t.Fatal("stale unregister evicted the new session")
	}

	submit()

	if got := oldBob.received(t, events.TypeMessage); len(got) != 1 {
		t.Fatal("replaced connection received a delivery after reconnect")
	}
	if got := newBob.received(t, events.TypeMessage); len(got) != 1 {
		t.Fatalf("expected delivery on new connection, got %d", len(got))
	}
}
