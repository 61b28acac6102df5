package memory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dkazarin/molva/internal/application/constant"
	"github.com/dkazarin/molva/internal/application/metric"
)

// Conn is the writable half of a client transport connection.
// *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteJSON(v any) error
}

// SessionRegistry maps authenticated users to their live connection.
// One connection per user: a later Register for the same user silently
// replaces the earlier entry (newest wins), the old socket is not closed.
type SessionRegistry interface {
	Register(userID uuid.UUID, conn Conn)

	// Unregister removes the session owning conn. It is a no-op when the
	// mapping was already replaced by a newer connection.
	Unregister(conn Conn) (uuid.UUID, bool)

	// Write delivers payload to the user's current connection. Returns
	// false when the user is not reachable; the caller decides whether
	// that is a normal drop or worth logging.
	Write(userID uuid.UUID, payload any) bool

	IsOnline(userID uuid.UUID) bool
	Online() []uuid.UUID
}

// safeConn serializes writes to a single connection, so the registry
// never holds its own lock during network I/O.
type safeConn struct {
	conn Conn
	mu   sync.Mutex
}

func (s *safeConn) writeJSON(payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteJSON(payload)
}

type sessionRegistry struct {
	// sessions: map[user_id] -> connection, byConn is the reverse index
	// so disconnect cleanup is exact and O(1)
	sessions map[uuid.UUID]*safeConn
	byConn   map[Conn]uuid.UUID

	mu sync.RWMutex
}

func NewSessionRegistry() SessionRegistry {
	return &sessionRegistry{
		sessions: make(map[uuid.UUID]*safeConn, 10),
		byConn:   make(map[Conn]uuid.UUID, 10),
	}
}

func (r *sessionRegistry) Register(userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.sessions[userID]; exists {
		if old.conn == conn {
			return
		}

		// Newest wins: the replaced connection stays open but is no
		// longer reachable through the registry.
		delete(r.byConn, old.conn)
		metric.DecrementWSActiveConnections()
	}

	r.sessions[userID] = &safeConn{conn: conn}
	r.byConn[conn] = userID

	metric.IncrementWSActiveConnections()
}

func (r *sessionRegistry) Unregister(conn Conn) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, exists := r.byConn[conn]
	if !exists {
		return uuid.Nil, false
	}

	delete(r.byConn, conn)
	delete(r.sessions, userID)

	metric.DecrementWSActiveConnections()

	return userID, true
}

func (r *sessionRegistry) Write(userID uuid.UUID, payload any) bool {
	sc, ok := r.get(userID)
	if !ok {
		return false
	}

	if err := sc.writeJSON(payload); err != nil {
		slog.Error(
			"write to websocket",
			slog.Any(constant.Error, err),
			slog.Any(constant.UserID, userID),
		)
		return false
	}

	return true
}

func (r *sessionRegistry) get(userID uuid.UUID) (*safeConn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sc, ok := r.sessions[userID]
	return sc, ok
}

func (r *sessionRegistry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[userID]
	return ok
}

func (r *sessionRegistry) Online() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userIDs := make([]uuid.UUID, 0, len(r.sessions))

	for userID := range r.sessions {
		userIDs = append(userIDs, userID)
	}

	return userIDs
}
