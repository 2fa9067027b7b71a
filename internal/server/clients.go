// Package server maintains the client registry, the authoritative mapping
// from client identifier to connection and current room used during teardown.
package server

import "sync"

// ClientEntry holds the connection and room recorded for a client identifier.
type ClientEntry struct {
	Client *Client
	RoomID string
}

// ClientRegistry maps server-assigned client identifiers to their entries.
// A client entry exists exactly while its connection is a member of a room.
type ClientRegistry struct {
	mu      sync.RWMutex
	entries map[string]ClientEntry
}

// NewClientRegistry creates an empty client registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		entries: make(map[string]ClientEntry),
	}
}

// Register stores the client and its current room under the given identifier,
// overwriting any prior entry for that identifier.
func (r *ClientRegistry) Register(clientID string, c *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[clientID] = ClientEntry{Client: c, RoomID: roomID}
}

// Lookup returns the entry stored for the identifier.
func (r *ClientRegistry) Lookup(clientID string) (ClientEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[clientID]
	return entry, ok
}

// Unregister removes and returns the entry for the identifier, so the caller
// can drive room cleanup with the room the client was actually in.
func (r *ClientRegistry) Unregister(clientID string) (ClientEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[clientID]
	if ok {
		delete(r.entries, clientID)
	}
	return entry, ok
}

// Count returns the number of registered clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
