// Package testhelpers provides common utilities and helper functions for
// testing the signaling relay.
//
// This package contains reusable test utilities that are shared across unit
// and integration tests. It provides functions for creating test servers,
// dialing WebSocket rooms, and asserting response properties to reduce code
// duplication in test files.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
// It fails the test with a descriptive error message if the content types don't match.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	return resp
}

// ConnectWebSocket establishes a WebSocket connection to the given URL with
// the given Origin header. The URL path names the room to join.
func ConnectWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	headers.Set("Origin", origin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// SendMessage sends a typed JSON message over the WebSocket connection.
func SendMessage(conn *websocket.Conn, msgType, roomID, message string) error {
	frame := map[string]string{"type": msgType}
	if roomID != "" {
		frame["roomId"] = roomID
	}
	if message != "" {
		frame["message"] = message
	}
	return conn.WriteJSON(frame)
}

// ReceiveMessage reads a JSON message from the WebSocket connection within
// the timeout. It returns the decoded object or an error if reading fails.
func ReceiveMessage(conn *websocket.Conn, timeout time.Duration) (map[string]any, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	var message map[string]any
	err := conn.ReadJSON(&message)
	return message, err
}

// ReceiveConnectionAck reads the connection acknowledgement sent after accept
// and returns the client identifier assigned by the server.
func ReceiveConnectionAck(t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	message, err := ReceiveMessage(conn, 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to receive connection ack: %v", err)
	}
	if message["type"] != "connection" {
		t.Fatalf("Expected connection ack, got %v", message)
	}
	clientID, ok := message["clientId"].(string)
	if !ok || clientID == "" {
		t.Fatalf("Connection ack carries no client identifier: %v", message)
	}
	return clientID
}

// SendRawMessage sends a raw byte message over the WebSocket connection.
func SendRawMessage(conn *websocket.Conn, messageType int, data []byte) error {
	return conn.WriteMessage(messageType, data)
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}

// AssertMessageField checks if the received message has the expected value
// under the given key.
func AssertMessageField(t *testing.T, message map[string]any, key, expected string) {
	t.Helper()

	value, ok := message[key]
	if !ok {
		t.Errorf("Message does not contain %q field: %v", key, message)
		return
	}

	valueStr, ok := value.(string)
	if !ok {
		t.Errorf("Message field %q is not a string: %v", key, value)
		return
	}

	if valueStr != expected {
		t.Errorf("Expected %q = %q, got %q", key, expected, valueStr)
	}
}

// CreateJSONMessage creates a JSON-encoded frame with the given type and room.
func CreateJSONMessage(msgType, roomID string) ([]byte, error) {
	frame := map[string]string{"type": msgType, "roomId": roomID}
	return json.Marshal(frame)
}
