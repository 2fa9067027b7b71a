package server

import "testing"

func newTestClient() *Client {
	return &Client{
		send: make(chan []byte, 256),
	}
}

// drain empties a client's send channel and returns the payloads received.
func drain(c *Client) [][]byte {
	var payloads [][]byte
	for {
		select {
		case p := <-c.send:
			payloads = append(payloads, p)
		default:
			return payloads
		}
	}
}

func TestRoomExistsOnlyWithMembers(t *testing.T) {
	rooms := NewRoomRegistry()
	a := newTestClient()
	b := newTestClient()

	if rooms.Exists("abc") {
		t.Fatal("room should not exist before first join")
	}

	rooms.AddMember("abc", a)
	if !rooms.Exists("abc") {
		t.Fatal("room should exist after first join")
	}
	if got := rooms.MemberCount("abc"); got != 1 {
		t.Fatalf("member count = %d, want 1", got)
	}

	rooms.AddMember("abc", b)
	if got := rooms.MemberCount("abc"); got != 2 {
		t.Fatalf("member count = %d, want 2", got)
	}

	rooms.RemoveMember("abc", a)
	if !rooms.Exists("abc") {
		t.Fatal("room should survive while a member remains")
	}

	rooms.RemoveMember("abc", b)
	if rooms.Exists("abc") {
		t.Fatal("room should be deleted when its last member leaves")
	}
	if got := rooms.RoomCount(); got != 0 {
		t.Fatalf("room count = %d, want 0", got)
	}
}

func TestAddMemberIsIdempotent(t *testing.T) {
	rooms := NewRoomRegistry()
	a := newTestClient()

	rooms.AddMember("abc", a)
	rooms.AddMember("abc", a)

	if got := rooms.MemberCount("abc"); got != 1 {
		t.Fatalf("member count = %d, want 1", got)
	}
}

func TestRemoveMemberToleratesMissingRoomAndMember(t *testing.T) {
	rooms := NewRoomRegistry()
	a := newTestClient()
	b := newTestClient()

	// Unknown room entirely.
	rooms.RemoveMember("nope", a)

	// Known room, non-member.
	rooms.AddMember("abc", a)
	rooms.RemoveMember("abc", b)

	if got := rooms.MemberCount("abc"); got != 1 {
		t.Fatalf("member count = %d, want 1", got)
	}
}

func TestEnsureRoomIdempotent(t *testing.T) {
	rooms := NewRoomRegistry()

	rooms.EnsureRoom("abc")
	rooms.EnsureRoom("abc")

	if !rooms.Exists("abc") {
		t.Fatal("room should exist after EnsureRoom")
	}
	if got := rooms.RoomCount(); got != 1 {
		t.Fatalf("room count = %d, want 1", got)
	}
}

func TestBroadcastExcludesSenderAndDeliversOnce(t *testing.T) {
	rooms := NewRoomRegistry()
	a := newTestClient()
	b := newTestClient()
	sender := newTestClient()

	rooms.AddMember("abc", a)
	rooms.AddMember("abc", b)
	rooms.AddMember("abc", sender)

	payload := []byte(`{"clientId":"c","message":"hi"}`)
	delivered := rooms.Broadcast("abc", sender, payload)
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}

	for name, c := range map[string]*Client{"a": a, "b": b} {
		got := drain(c)
		if len(got) != 1 {
			t.Fatalf("client %s received %d payloads, want exactly 1", name, len(got))
		}
		if string(got[0]) != string(payload) {
			t.Fatalf("client %s received %q, want %q", name, got[0], payload)
		}
	}

	if got := drain(sender); len(got) != 0 {
		t.Fatalf("sender received %d payloads, want 0", len(got))
	}
}

func TestBroadcastSkipsClosedMembers(t *testing.T) {
	rooms := NewRoomRegistry()
	open := newTestClient()
	closed := newTestClient()
	closed.closed = true

	rooms.AddMember("abc", open)
	rooms.AddMember("abc", closed)

	delivered := rooms.Broadcast("abc", nil, []byte("x"))
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if got := drain(closed); len(got) != 0 {
		t.Fatalf("closed member received %d payloads, want 0", len(got))
	}
}

func TestBroadcastToMissingRoomIsNoop(t *testing.T) {
	rooms := NewRoomRegistry()
	if delivered := rooms.Broadcast("ghost", nil, []byte("x")); delivered != 0 {
		t.Fatalf("delivered = %d, want 0", delivered)
	}
}

func TestBroadcastSkipsMemberWithFullBuffer(t *testing.T) {
	rooms := NewRoomRegistry()
	slow := &Client{send: make(chan []byte)} // unbuffered and never read
	fast := newTestClient()

	rooms.AddMember("abc", slow)
	rooms.AddMember("abc", fast)

	delivered := rooms.Broadcast("abc", nil, []byte("x"))
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1: a slow recipient must be skipped, never awaited", delivered)
	}
}
