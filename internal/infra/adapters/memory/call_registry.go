package memory

import (
	"sync"

	"github.com/google/uuid"
)

// CallState - состояние звонка на стороне сервера
type CallState string

const (
	CallStateInvited CallState = "invited"
	CallStateRinging CallState = "ringing"
	CallStateActive  CallState = "active"
)

// CallSession - отслеживаемый звонок между двумя пользователями.
// Сервер хранит ровно столько, чтобы при обрыве соединения одного
// участника можно было синтезировать call_ended второму.
type CallSession struct {
	CallerID    uuid.UUID
	CalleeID    uuid.UUID
	ChannelName string
	State       CallState
}

// Peer возвращает второго участника звонка
func (s CallSession) Peer(userID uuid.UUID) uuid.UUID {
	if s.CallerID == userID {
		return s.CalleeID
	}

	return s.CallerID
}

// CallRegistry tracks in-flight calls, keyed by the ordered
// (caller, callee) pair. At most one call per pair; a repeated Start
// for the same pair overwrites the stale entry.
type CallRegistry interface {
	Start(callerID, calleeID uuid.UUID, channelName string)

	// Answer moves the pair's call to the active state. Returns false
	// when no such call is tracked (caller gone mid-ring).
	Answer(callerID, calleeID uuid.UUID) bool

	// End removes the call between the two users regardless of which
	// side is caller. No-op when nothing is tracked.
	End(userA, userB uuid.UUID) (CallSession, bool)

	// EndAllFor removes and returns every call the user participates
	// in, used when their transport connection drops.
	EndAllFor(userID uuid.UUID) []CallSession

	Get(callerID, calleeID uuid.UUID) (CallSession, bool)
}

type pairKey struct {
	callerID uuid.UUID
	calleeID uuid.UUID
}

type callRegistry struct {
	calls map[pairKey]CallSession

	mu sync.RWMutex
}

func NewCallRegistry() CallRegistry {
	return &callRegistry{
		calls: make(map[pairKey]CallSession),
	}
}

func (r *callRegistry) Start(callerID, calleeID uuid.UUID, channelName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls[pairKey{callerID, calleeID}] = CallSession{
		CallerID:    callerID,
		CalleeID:    calleeID,
		ChannelName: channelName,
		State:       CallStateRinging,
	}
}

func (r *callRegistry) Answer(callerID, calleeID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{callerID, calleeID}

	call, exists := r.calls[key]
	if !exists {
		return false
	}

	call.State = CallStateActive
	r.calls[key] = call

	return true
}

func (r *callRegistry) End(userA, userB uuid.UUID) (CallSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []pairKey{{userA, userB}, {userB, userA}} {
		if call, exists := r.calls[key]; exists {
			delete(r.calls, key)
			return call, true
		}
	}

	return CallSession{}, false
}

func (r *callRegistry) EndAllFor(userID uuid.UUID) []CallSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ended []CallSession

	for key, call := range r.calls {
		if call.CallerID == userID || call.CalleeID == userID {
			delete(r.calls, key)
			ended = append(ended, call)
		}
	}

	return ended
}

func (r *callRegistry) Get(callerID, calleeID uuid.UUID) (CallSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	call, exists := r.calls[pairKey{callerID, calleeID}]
	return call, exists
}
