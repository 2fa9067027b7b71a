package unit

import (
	"testing"
	"time"

	"github.com/peerlink/signaling/internal/server"
)

// TestHubShutdownContext verifies that hub respects shutdown context
func TestHubShutdownContext(t *testing.T) {
	hub := server.NewHub()

	hubStopped := make(chan struct{})
	go func() {
		hub.Run()
		close(hubStopped)
	}()

	time.Sleep(50 * time.Millisecond)

	err := hub.Shutdown(2 * time.Second)
	if err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}

	select {
	case <-hubStopped:
	case <-time.After(3 * time.Second):
		t.Error("Hub did not stop after shutdown")
	}
}

// TestHubShutdownTimeout verifies timeout behavior
func TestHubShutdownTimeout(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()

	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	_ = hub.Shutdown(50 * time.Millisecond)
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Errorf("Shutdown took %v, expected around 50ms", elapsed)
	}
}

// TestBroadcastToEmptyRegistry verifies that broadcasting into a hub with no
// rooms produces no error and no deliveries.
func TestBroadcastToEmptyRegistry(t *testing.T) {
	hub := server.NewHub()

	if delivered := hub.Rooms().Broadcast("nowhere", nil, []byte(`{}`)); delivered != 0 {
		t.Errorf("Broadcast delivered %d payloads into an empty registry, want 0", delivered)
	}
}

// TestRegistryCleanupAfterChurn verifies that rapid membership churn leaves
// no residue in either registry.
func TestRegistryCleanupAfterChurn(t *testing.T) {
	hub := server.NewHub()
	rooms := hub.Rooms()
	clients := hub.Clients()

	for i := 0; i < 100; i++ {
		c := server.NewClient(nil, hub, "127.0.0.1:0")
		rooms.AddMember("churn", c)
		clients.Register(c.ID(), c, "churn")

		entry, ok := clients.Unregister(c.ID())
		if !ok {
			t.Fatalf("Iteration %d: unregister missed", i)
		}
		rooms.RemoveMember(entry.RoomID, c)
	}

	if rooms.Exists("churn") {
		t.Error("Room survived after every member left")
	}
	if got := clients.Count(); got != 0 {
		t.Errorf("Client registry holds %d entries after churn, want 0", got)
	}
}
