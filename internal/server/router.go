// Package server classifies inbound client frames and dispatches them to the
// room and client registries.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// route parses an inbound frame, classifies it by type, and performs the
// corresponding registry operations and sends. Malformed or unrecognized
// frames are logged and dropped; nothing in here closes the connection.
// Runs inside the hub's event loop.
func (h *Hub) route(frame inboundFrame) {
	sender := frame.sender

	var msg InboundMessage
	if err := json.Unmarshal(frame.payload, &msg); err != nil {
		metricParseFailures.Inc()
		slog.Warn("dropping malformed frame", "clientId", sender.id, "err", err)
		return
	}

	metricMessagesRouted.WithLabelValues(routeLabel(msg.Type)).Inc()

	switch msg.Type {
	case TypeCreateRoom:
		h.handleCreateRoom(sender, msg)

	case TypeJoinRoom:
		h.handleJoinRoom(sender, msg)

	case TypeSignal:
		// Reserved for peer negotiation payloads; receipt is the only
		// server-side action.
		slog.Debug("signal received", "clientId", sender.id)

	case TypeChat:
		h.handleChat(sender, msg)

	case TypeFileTransfer:
		h.handleFileTransfer(sender, msg, frame.payload)

	default:
		slog.Warn("unknown message type", "type", msg.Type, "clientId", sender.id)
	}
}

// routeLabel collapses unrecognized types into a single metric label to keep
// cardinality bounded.
func routeLabel(msgType string) string {
	switch msgType {
	case TypeCreateRoom, TypeJoinRoom, TypeSignal, TypeChat, TypeFileTransfer:
		return msgType
	}
	return "unknown"
}

func (h *Hub) handleCreateRoom(sender *Client, msg InboundMessage) {
	if msg.RoomID == "" {
		slog.Warn("create_room without room id", "clientId", sender.id)
		return
	}

	if h.rooms.Exists(msg.RoomID) {
		slog.Warn("create_room rejected, room exists", "room", msg.RoomID, "clientId", sender.id)
		sender.trySend(encodeMessage(ErrorReply{
			Type:    "error",
			Message: fmt.Sprintf("room %q is unavailable", msg.RoomID),
		}))
		return
	}

	h.moveToRoom(sender, msg.RoomID)
	h.broadcast(msg.RoomID, sender, encodeMessage(RoomJoinedNotice{
		Type:     "room_joined",
		ClientID: sender.id,
		Message:  fmt.Sprintf("client %s joined room %s", sender.id, msg.RoomID),
	}))

	slog.Info("room created", "room", msg.RoomID, "clientId", sender.id)
	sender.trySend(encodeMessage(RoomCreatedReply{
		Type:    "room_created",
		Message: fmt.Sprintf("room %s created", msg.RoomID),
	}))
}

func (h *Hub) handleJoinRoom(sender *Client, msg InboundMessage) {
	if msg.RoomID == "" {
		slog.Warn("join_room without room id", "clientId", sender.id)
		return
	}

	h.moveToRoom(sender, msg.RoomID)

	notice := encodeMessage(RoomJoinedNotice{
		Type:     "room_joined",
		ClientID: sender.id,
		Message:  fmt.Sprintf("client %s joined room %s", sender.id, msg.RoomID),
	})
	h.broadcast(msg.RoomID, sender, notice)

	slog.Info("client joined room", "room", msg.RoomID, "clientId", sender.id)
	sender.trySend(notice)
}

func (h *Hub) handleChat(sender *Client, msg InboundMessage) {
	if msg.RoomID == "" {
		slog.Warn("chat without room id", "clientId", sender.id)
		return
	}

	h.broadcast(msg.RoomID, sender, encodeMessage(ChatRelay{
		ClientID: sender.id,
		Message:  msg.Message,
	}))
}

func (h *Hub) handleFileTransfer(sender *Client, msg InboundMessage, payload []byte) {
	if msg.RoomID == "" {
		slog.Warn("file_transfer without room id", "clientId", sender.id)
		return
	}

	h.broadcast(msg.RoomID, sender, encodeMessage(FileTransferRelay{
		Type: "file_transfer",
		From: sender.id,
		Data: json.RawMessage(payload),
	}))
}
