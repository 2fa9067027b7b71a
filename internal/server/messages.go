// Package server defines the JSON wire shapes exchanged between the relay and
// its clients for room management, chat, and transfer signaling.
package server

import "encoding/json"

// Inbound message types recognized by the router.
const (
	TypeCreateRoom   = "create_room"
	TypeJoinRoom     = "join_room"
	TypeSignal       = "signal"
	TypeChat         = "chat"
	TypeFileTransfer = "file_transfer"
)

// InboundMessage is the envelope every client frame must parse into. Fields
// beyond the type tag are only required by the message kinds that use them.
type InboundMessage struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

// ConnectionAck is sent once to a client immediately after its connection
// is accepted into a room.
type ConnectionAck struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
}

// ErrorReply notifies the requesting client that its request was rejected.
type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomCreatedReply confirms a successful create_room request.
type RoomCreatedReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomJoinedNotice is broadcast to existing room members when a client joins,
// and also serves as the joiner's own confirmation.
type RoomJoinedNotice struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
	Message  string `json:"message"`
}

// ChatRelay carries a chat message to the other members of a room. It
// deliberately has no type field; clients identify it by the clientId key.
type ChatRelay struct {
	ClientID string `json:"clientId"`
	Message  string `json:"message"`
}

// FileTransferRelay forwards transfer signaling metadata to the other members
// of a room. Data holds the sender's original payload untouched.
type FileTransferRelay struct {
	Type string          `json:"type"`
	From string          `json:"from"`
	Data json.RawMessage `json:"data"`
}

func encodeMessage(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		// All outbound shapes are plain structs; marshaling them cannot fail.
		panic(err)
	}
	return payload
}
