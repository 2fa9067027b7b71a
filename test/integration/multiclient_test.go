// Package integration contains integration tests for multi-client scenarios.
//
// These tests verify the system behavior when multiple clients occupy the
// same room simultaneously, exchange relay messages, and join or leave while
// traffic is flowing.
package integration

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/peerlink/signaling/internal/server"
	"github.com/peerlink/signaling/test/testhelpers"
)

// TestMultipleClientsMessageExchange tests message exchange scenarios between
// several clients sharing a room.
func TestMultipleClientsMessageExchange(t *testing.T) {
	server.StartHub()

	mux := server.SetupRoutes()
	testServer := httptest.NewServer(mux)
	defer testServer.Close()
	configureServerForTest(t, testServer.URL, func(cfg *server.Config) {
		cfg.RateLimit.Burst = 200
	})

	t.Run("Five clients sending and receiving messages", func(t *testing.T) {
		testFiveClientsSendingAndReceiving(t, testServer.URL)
	})

	t.Run("Client joins mid-conversation", func(t *testing.T) {
		testClientJoinsMidConversation(t, testServer.URL)
	})

	t.Run("Concurrent senders all fan out", func(t *testing.T) {
		testConcurrentSenders(t, testServer.URL)
	})
}

func testFiveClientsSendingAndReceiving(t *testing.T, baseURL string) {
	const room = "five-client-room"
	const numClients = 5

	conns := make([]*websocket.Conn, numClients)
	ids := make([]string, numClients)
	for i := 0; i < numClients; i++ {
		conns[i], ids[i] = dialRoom(t, baseURL, room)
		defer func(c *websocket.Conn) { _ = c.Close() }(conns[i])
	}

	hub := server.GetHub()
	waitForCondition(t, 2*time.Second, func() bool {
		return hub.Rooms().MemberCount(room) == numClients
	}, "all five clients to join the room")

	// Each client in turn sends one chat; the other four must receive it.
	for sender := 0; sender < numClients; sender++ {
		text := fmt.Sprintf("Message from client %d", sender)
		if err := testhelpers.SendMessage(conns[sender], "chat", room, text); err != nil {
			t.Fatalf("Client %d failed to send: %v", sender, err)
		}

		for receiver := 0; receiver < numClients; receiver++ {
			if receiver == sender {
				continue
			}
			received, err := testhelpers.ReceiveMessage(conns[receiver], 2*time.Second)
			if err != nil {
				t.Fatalf("Client %d failed to receive message from client %d: %v", receiver, sender, err)
			}
			testhelpers.AssertMessageField(t, received, "clientId", ids[sender])
			testhelpers.AssertMessageField(t, received, "message", text)
		}

		expectNoMessage(t, conns[sender], 100*time.Millisecond)
	}
}

func testClientJoinsMidConversation(t *testing.T, baseURL string) {
	const room = "mid-conversation-room"

	early, earlyID := dialRoom(t, baseURL, room)
	defer func() { _ = early.Close() }()
	partner, _ := dialRoom(t, baseURL, room)
	defer func() { _ = partner.Close() }()

	if err := testhelpers.SendMessage(early, "chat", room, "Initial message"); err != nil {
		t.Fatalf("Failed to send initial message: %v", err)
	}
	if _, err := testhelpers.ReceiveMessage(partner, 2*time.Second); err != nil {
		t.Fatalf("Partner failed to receive initial message: %v", err)
	}

	// A third client connects after the conversation started. It must not
	// receive history, only traffic sent after it joined.
	late, _ := dialRoom(t, baseURL, room)
	defer func() { _ = late.Close() }()
	expectNoMessage(t, late, 150*time.Millisecond)

	hub := server.GetHub()
	waitForCondition(t, 2*time.Second, func() bool {
		return hub.Rooms().MemberCount(room) == 3
	}, "late client to join the room")

	if err := testhelpers.SendMessage(early, "chat", room, "After new client joined"); err != nil {
		t.Fatalf("Failed to send follow-up message: %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"partner": partner, "late": late} {
		received, err := testhelpers.ReceiveMessage(conn, 2*time.Second)
		if err != nil {
			t.Fatalf("Client %s failed to receive follow-up: %v", name, err)
		}
		testhelpers.AssertMessageField(t, received, "clientId", earlyID)
		testhelpers.AssertMessageField(t, received, "message", "After new client joined")
	}
}

func testConcurrentSenders(t *testing.T, baseURL string) {
	const room = "concurrent-room"
	const numClients = 4

	conns := make([]*websocket.Conn, numClients)
	for i := 0; i < numClients; i++ {
		conns[i], _ = dialRoom(t, baseURL, room)
		defer func(c *websocket.Conn) { _ = c.Close() }(conns[i])
	}

	hub := server.GetHub()
	waitForCondition(t, 2*time.Second, func() bool {
		return hub.Rooms().MemberCount(room) == numClients
	}, "all concurrent clients to join the room")

	// All clients send at once. Every client must then observe exactly one
	// relay per other sender.
	var wg sync.WaitGroup
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			text := fmt.Sprintf("Concurrent message %d", idx)
			if err := testhelpers.SendMessage(conns[idx], "chat", room, text); err != nil {
				t.Errorf("Client %d failed to send: %v", idx, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < numClients; i++ {
		seen := make(map[string]bool)
		for j := 0; j < numClients-1; j++ {
			received, err := testhelpers.ReceiveMessage(conns[i], 2*time.Second)
			if err != nil {
				t.Fatalf("Client %d received only %d of %d relays: %v", i, j, numClients-1, err)
			}
			text, _ := received["message"].(string)
			if seen[text] {
				t.Errorf("Client %d received duplicate relay %q", i, text)
			}
			seen[text] = true
		}
		expectNoMessage(t, conns[i], 100*time.Millisecond)
	}
}

// TestRoomIsolation verifies that traffic never crosses room boundaries.
func TestRoomIsolation(t *testing.T) {
	server.StartHub()

	mux := server.SetupRoutes()
	testServer := httptest.NewServer(mux)
	defer testServer.Close()
	configureServerForTest(t, testServer.URL, nil)

	alphaA, alphaID := dialRoom(t, testServer.URL, "isolation-alpha")
	defer func() { _ = alphaA.Close() }()
	alphaB, _ := dialRoom(t, testServer.URL, "isolation-alpha")
	defer func() { _ = alphaB.Close() }()
	beta, _ := dialRoom(t, testServer.URL, "isolation-beta")
	defer func() { _ = beta.Close() }()

	if err := testhelpers.SendMessage(alphaA, "chat", "isolation-alpha", "alpha only"); err != nil {
		t.Fatalf("Failed to send chat: %v", err)
	}

	received, err := testhelpers.ReceiveMessage(alphaB, 2*time.Second)
	if err != nil {
		t.Fatalf("Room member failed to receive chat: %v", err)
	}
	testhelpers.AssertMessageField(t, received, "clientId", alphaID)

	expectNoMessage(t, beta, 200*time.Millisecond)
}
