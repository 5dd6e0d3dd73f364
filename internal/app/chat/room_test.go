package chat

import (
	"encoding/json"
	"testing"
	"time"
)

// newTestClient builds a Client without a WebSocket connection. Pumps are
// never started; tests read queued events straight off the send channel.
func newTestClient(userID, alias string) *Client {
	return &Client{
		userID: userID,
		alias:  alias,
		send:   make(chan []byte, 256),
	}
}

// nextEvent reads one queued event off a client's send channel.
func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed while waiting for event")
		}
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

// expectEvent reads the next event and asserts its type.
func expectEvent(t *testing.T, c *Client, want EventType) Event {
	t.Helper()

	event := nextEvent(t, c)
	if event.Type != want {
		t.Fatalf("event type = %q, want %q", event.Type, want)
	}
	return event
}

// expectNoEvent asserts that no event is pending for the client.
func expectNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case data, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected pending event: %s", data)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func startRoom(t *testing.T) *Room {
	t.Helper()

	room := NewRoom()
	go room.Run()
	t.Cleanup(room.Stop)
	return room
}

func TestRoomPresenceLifecycle(t *testing.T) {
	room := startRoom(t)

	c1 := newTestClient("u1", "BraveOtter42")
	room.Register(c1)

	joined := expectEvent(t, c1, TypeUserJoined)
	var presence PresencePayload
	if err := json.Unmarshal(joined.Payload, &presence); err != nil {
		t.Fatalf("unmarshal user_joined payload: %v", err)
	}
	if presence.Alias != "BraveOtter42" || presence.OnlineCount != 1 {
		t.Errorf("user_joined = %+v, want alias BraveOtter42 count 1", presence)
	}

	count := expectEvent(t, c1, TypeOnlineCount)
	var online OnlineCountPayload
	if err := json.Unmarshal(count.Payload, &online); err != nil {
		t.Fatalf("unmarshal online_count payload: %v", err)
	}
	if online.Count != 1 {
		t.Errorf("online_count = %d, want 1", online.Count)
	}

	c2 := newTestClient("u2", "SlyFox7")
	room.Register(c2)

	// Both connections see the second join and the new count.
	for _, c := range []*Client{c1, c2} {
		joined := expectEvent(t, c, TypeUserJoined)
		if err := json.Unmarshal(joined.Payload, &presence); err != nil {
			t.Fatalf("unmarshal user_joined payload: %v", err)
		}
		if presence.Alias != "SlyFox7" || presence.OnlineCount != 2 {
			t.Errorf("user_joined = %+v, want alias SlyFox7 count 2", presence)
		}
		expectEvent(t, c, TypeOnlineCount)
	}

	if got := room.OnlineCount(); got != 2 {
		t.Errorf("OnlineCount() = %d, want 2", got)
	}

	room.Unregister(c2)

	left := expectEvent(t, c1, TypeUserLeft)
	if err := json.Unmarshal(left.Payload, &presence); err != nil {
		t.Fatalf("unmarshal user_left payload: %v", err)
	}
	if presence.Alias != "SlyFox7" || presence.OnlineCount != 1 {
		t.Errorf("user_left = %+v, want alias SlyFox7 count 1", presence)
	}
	expectEvent(t, c1, TypeOnlineCount)

	if got := room.OnlineCount(); got != 1 {
		t.Errorf("OnlineCount() after leave = %d, want 1", got)
	}
}

func TestRoomMultipleConnectionsPerUser(t *testing.T) {
	room := startRoom(t)

	// The same user on two tabs holds two connections, each counted.
	c1 := newTestClient("u1", "BraveOtter42")
	c2 := newTestClient("u1", "BraveOtter42")
	room.Register(c1)
	room.Register(c2)

	expectEvent(t, c1, TypeUserJoined)
	expectEvent(t, c1, TypeOnlineCount)
	expectEvent(t, c1, TypeUserJoined)
	expectEvent(t, c1, TypeOnlineCount)

	if got := room.OnlineCount(); got != 2 {
		t.Errorf("OnlineCount() = %d, want 2", got)
	}
}

func TestRoomBroadcast(t *testing.T) {
	room := startRoom(t)

	c1 := newTestClient("u1", "BraveOtter42")
	c2 := newTestClient("u2", "SlyFox7")
	room.Register(c1)
	room.Register(c2)

	// Drain presence events.
	expectEvent(t, c1, TypeUserJoined)
	expectEvent(t, c1, TypeOnlineCount)
	expectEvent(t, c1, TypeUserJoined)
	expectEvent(t, c1, TypeOnlineCount)
	expectEvent(t, c2, TypeUserJoined)
	expectEvent(t, c2, TypeOnlineCount)

	event, err := NewEvent(TypeNewMessage, MessagePayload{ID: "m1", Alias: "BraveOtter42", Content: "hello", Kind: "message"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	room.Broadcast(event)

	for _, c := range []*Client{c1, c2} {
		got := expectEvent(t, c, TypeNewMessage)
		var payload MessagePayload
		if err := json.Unmarshal(got.Payload, &payload); err != nil {
			t.Fatalf("unmarshal new_message payload: %v", err)
		}
		if payload.Content != "hello" {
			t.Errorf("broadcast content = %q, want %q", payload.Content, "hello")
		}
	}
}

func TestRoomBroadcastExceptSkipsSender(t *testing.T) {
	room := startRoom(t)

	c1 := newTestClient("u1", "BraveOtter42")
	c2 := newTestClient("u2", "SlyFox7")
	room.Register(c1)
	room.Register(c2)

	expectEvent(t, c1, TypeUserJoined)
	expectEvent(t, c1, TypeOnlineCount)
	expectEvent(t, c1, TypeUserJoined)
	expectEvent(t, c1, TypeOnlineCount)
	expectEvent(t, c2, TypeUserJoined)
	expectEvent(t, c2, TypeOnlineCount)

	event, err := NewEvent(TypeUserTyping, TypingPayload{Alias: "BraveOtter42"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	room.BroadcastExcept(c1, event)

	expectEvent(t, c2, TypeUserTyping)
	expectNoEvent(t, c1)
}
