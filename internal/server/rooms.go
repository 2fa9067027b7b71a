// Package server tracks room membership for the relay. Rooms are created
// lazily on first join and deleted the moment their last member leaves.
package server

import "sync"

// RoomRegistry maps room identifiers to their current member set. All methods
// are safe for concurrent use; compound operations that must also touch the
// ClientRegistry are serialized by the hub's event loop.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

// NewRoomRegistry creates an empty room registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// EnsureRoom creates the room if it does not exist. Idempotent.
func (r *RoomRegistry) EnsureRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(roomID)
}

func (r *RoomRegistry) ensureLocked(roomID string) map[*Client]struct{} {
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[roomID] = members
	}
	return members
}

// AddMember ensures the room exists and adds the client to it. Adding a
// client that is already a member is a no-op.
func (r *RoomRegistry) AddMember(roomID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLocked(roomID)[c] = struct{}{}
}

// RemoveMember removes the client from the room and deletes the room if it
// became empty. Removing from an unknown room or a room the client is not a
// member of is a no-op, so disconnect cleanup can never fail.
func (r *RoomRegistry) RemoveMember(roomID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// Exists reports whether the room currently has any members.
func (r *RoomRegistry) Exists(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok
}

// MemberCount returns the number of members in the room, zero if the room
// does not exist.
func (r *RoomRegistry) MemberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// RoomCount returns the number of live rooms.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Members returns a snapshot of the room's member set.
func (r *RoomRegistry) Members(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Client, 0, len(r.rooms[roomID]))
	for c := range r.rooms[roomID] {
		members = append(members, c)
	}
	return members
}

// Broadcast sends the payload to every member of the room except exclude.
// Members whose connection is closed or whose send buffer is full are
// skipped; their own close event is responsible for cleaning them up.
// Returns the number of members the payload was handed to. Broadcasting to
// a room that does not exist is a no-op.
func (r *RoomRegistry) Broadcast(roomID string, exclude *Client, payload []byte) int {
	delivered := 0
	for _, c := range r.Members(roomID) {
		if c == exclude {
			continue
		}
		if c.trySend(payload) {
			delivered++
		}
	}
	return delivered
}
