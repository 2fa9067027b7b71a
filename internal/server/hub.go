// Package server coordinates client registration, message routing, and
// connection cleanup for the signaling relay via the Hub type.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// registration carries a freshly accepted connection and the room it asked
// for into the hub's event loop.
type registration struct {
	client *Client
	roomID string
}

// inboundFrame is a raw client frame together with its sender.
type inboundFrame struct {
	sender  *Client
	payload []byte
}

// Hub owns the room and client registries and serializes every mutation of
// them through a single event loop: registrations, teardowns, inbound frames,
// and frames arriving from the cross-instance bus are processed one at a
// time, so joins, leaves, and broadcast snapshots can never interleave.
type Hub struct {
	rooms   *RoomRegistry
	clients *ClientRegistry

	register   chan registration
	unregister chan *Client
	inbound    chan inboundFrame
	remote     chan BusMessage

	bus Bus

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates and initializes a new Hub instance with empty registries.
// The returned Hub is ready to manage connections once Run is started.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:      NewRoomRegistry(),
		clients:    NewClientRegistry(),
		register:   make(chan registration),
		unregister: make(chan *Client),
		inbound:    make(chan inboundFrame, 64),
		remote:     make(chan BusMessage, 64),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Rooms exposes the room registry for inspection.
func (h *Hub) Rooms() *RoomRegistry {
	return h.rooms
}

// Clients exposes the client registry for inspection.
func (h *Hub) Clients() *ClientRegistry {
	return h.clients
}

// AttachBus wires a cross-instance broadcast bus into the hub. Every local
// broadcast is also published to the bus, and frames published by other
// instances are delivered to local room members through the event loop.
func (h *Hub) AttachBus(ctx context.Context, bus Bus) {
	h.bus = bus
	go bus.Subscribe(ctx, func(msg BusMessage) {
		select {
		case h.remote <- msg:
		case <-h.ctx.Done():
		}
	})
}

// Run starts the hub's main event loop, handling registration, teardown, and
// message routing. This method should be called in a separate goroutine as it
// runs until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case reg := <-h.register:
			h.handleRegister(reg)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case frame := <-h.inbound:
			h.route(frame)

		case msg := <-h.remote:
			h.rooms.Broadcast(msg.RoomID, nil, msg.Payload)
		}
	}
}

// handleRegister moves a connection into the Active state: room membership,
// client registry entry, and the connection acknowledgement happen as a unit
// before the pumps start, so teardown can always find the room via the
// client registry.
func (h *Hub) handleRegister(reg registration) {
	client := reg.client
	if client == nil {
		slog.Warn("received nil client registration; skipping")
		return
	}

	h.rooms.AddMember(reg.roomID, client)
	h.clients.Register(client.id, client, reg.roomID)

	client.trySend(encodeMessage(ConnectionAck{Type: "connection", ClientID: client.id}))

	metricConnectionsTotal.Inc()
	metricConnectionsActive.Inc()
	metricRoomsActive.Set(float64(h.rooms.RoomCount()))
	slog.Info("client connected", "clientId", client.id, "room", reg.roomID, "addr", client.addr)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

// handleUnregister runs the teardown path for a connection. It is driven by
// the client registry so a duplicate close or error event, or a connection
// whose registration never completed, falls through without side effects.
func (h *Hub) handleUnregister(client *Client) {
	entry, ok := h.clients.Unregister(client.id)
	if !ok {
		return
	}

	h.rooms.RemoveMember(entry.RoomID, client)
	client.closed = true
	close(client.send)

	metricConnectionsActive.Dec()
	metricRoomsActive.Set(float64(h.rooms.RoomCount()))
	slog.Info("client disconnected", "clientId", client.id, "room", entry.RoomID)
}

// moveToRoom places the client in the target room, leaving its current room
// first so the one-room-per-client invariant holds. Both registries are
// updated before the method returns; callers run inside the event loop.
func (h *Hub) moveToRoom(client *Client, roomID string) {
	if entry, ok := h.clients.Lookup(client.id); ok && entry.RoomID != roomID {
		h.rooms.RemoveMember(entry.RoomID, client)
	}
	h.rooms.AddMember(roomID, client)
	h.clients.Register(client.id, client, roomID)
	metricRoomsActive.Set(float64(h.rooms.RoomCount()))
}

// broadcast fans a payload out to the local members of a room, excluding the
// sender, and publishes it to the bus for other instances when one is
// attached.
func (h *Hub) broadcast(roomID string, exclude *Client, payload []byte) {
	delivered := h.rooms.Broadcast(roomID, exclude, payload)
	metricBroadcastDeliveries.Add(float64(delivered))

	if h.bus != nil {
		if err := h.bus.Publish(context.Background(), roomID, payload); err != nil {
			slog.Warn("bus publish failed", "room", roomID, "err", err)
		}
	}
}

// shutdownClients closes all active client connections.
func (h *Hub) shutdownClients() {
	entries := h.clients.snapshot()
	for _, entry := range entries {
		if entry.Client.conn != nil {
			if err := entry.Client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				slog.Warn("error closing client connection", "addr", entry.Client.addr, "err", err)
			}
		}
	}
	slog.Info("closed client connections", "count", len(entries))
}

// snapshot returns the current client entries.
func (r *ClientRegistry) snapshot() []ClientEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]ClientEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	return entries
}

// Shutdown initiates graceful shutdown of the hub and waits for all client
// goroutines to complete, or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	slog.Info("initiating hub shutdown")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		slog.Warn("hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

var (
	hub     = NewHub()
	hubOnce sync.Once
)

// StartHub starts the global hub's event loop. Safe to call multiple times;
// only the first call starts the loop.
func StartHub() {
	hubOnce.Do(func() {
		go hub.Run()
		slog.Info("hub started and ready to manage connections")
	})
}

// GetHub returns the global hub instance for bus attachment and shutdown
// coordination.
func GetHub() *Hub {
	return hub
}
