// Package server implements the signaling relay: clients connect over
// WebSocket into named rooms and exchange control messages for peer
// negotiation, chat, and file-transfer handshakes without any payload being
// persisted.
//
// The implementation is organized into specialized files for configuration,
// the hub and its registries, clients, message routing, and HTTP handlers to
// keep the codebase maintainable and testable as the project grows.
package server
