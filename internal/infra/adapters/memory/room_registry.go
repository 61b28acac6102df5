package memory

import (
	"sync"

	"github.com/google/uuid"
)

// RoomRegistry keeps transient room membership, one room per chat.
// Rooms appear on first Join and are dropped once the last member
// leaves. Nothing here is persisted; the registry is empty at startup.
type RoomRegistry interface {
	// Join adds the user to the room. Joining twice is a no-op.
	Join(room string, userID uuid.UUID)

	// Leave removes membership; no-op if the user is not a member.
	Leave(room string, userID uuid.UUID)

	// LeaveAll removes the user from every room, used on disconnect.
	LeaveAll(userID uuid.UUID)

	// Members returns a snapshot of the room's membership. Broadcast
	// iterates the snapshot, so concurrent joins/leaves never fault
	// the iteration.
	Members(room string) []uuid.UUID
}

type roomRegistry struct {
	// rooms хранит map[room_key] -> множество участников
	rooms map[string]map[uuid.UUID]struct{}

	mu sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms: make(map[string]map[uuid.UUID]struct{}),
	}
}

func (r *roomRegistry) Join(room string, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, exists := r.rooms[room]
	if !exists {
		members = make(map[uuid.UUID]struct{}, 2)
		r.rooms[room] = members
	}

	members[userID] = struct{}{}
}

func (r *roomRegistry) Leave(room string, userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(room, userID)
}

func (r *roomRegistry) LeaveAll(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room, members := range r.rooms {
		if _, ok := members[userID]; ok {
			r.leaveLocked(room, userID)
		}
	}
}

func (r *roomRegistry) leaveLocked(room string, userID uuid.UUID) {
	members, exists := r.rooms[room]
	if !exists {
		return
	}

	delete(members, userID)

	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

func (r *roomRegistry) Members(room string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, exists := r.rooms[room]
	if !exists {
		return nil
	}

	snapshot := make([]uuid.UUID, 0, len(members))

	for userID := range members {
		snapshot = append(snapshot, userID)
	}

	return snapshot
}
