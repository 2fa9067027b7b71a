package server

import "testing"

func TestClientRegistryRegisterLookupUnregister(t *testing.T) {
	clients := NewClientRegistry()
	c := newTestClient()

	if _, ok := clients.Lookup("id-1"); ok {
		t.Fatal("lookup on empty registry should miss")
	}

	clients.Register("id-1", c, "abc")

	entry, ok := clients.Lookup("id-1")
	if !ok {
		t.Fatal("lookup after register should hit")
	}
	if entry.Client != c || entry.RoomID != "abc" {
		t.Fatalf("entry = %+v, want client %p in room abc", entry, c)
	}

	removed, ok := clients.Unregister("id-1")
	if !ok {
		t.Fatal("unregister should report the removed entry")
	}
	if removed.RoomID != "abc" {
		t.Fatalf("removed room = %q, want abc", removed.RoomID)
	}

	if _, ok := clients.Unregister("id-1"); ok {
		t.Fatal("second unregister should miss")
	}
	if got := clients.Count(); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}

func TestClientRegistryOverwrite(t *testing.T) {
	clients := NewClientRegistry()
	c := newTestClient()

	clients.Register("id-1", c, "abc")
	clients.Register("id-1", c, "xyz")

	entry, ok := clients.Lookup("id-1")
	if !ok || entry.RoomID != "xyz" {
		t.Fatalf("entry room = %q, want xyz", entry.RoomID)
	}
	if got := clients.Count(); got != 1 {
		t.Fatalf("count = %d, want 1", got)
	}
}
