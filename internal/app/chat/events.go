/*
Package chat contains the core logic for the single global chat room: the
presence registry, per-connection WebSocket pumps, and the message gateway
that runs every utterance through moderation before it reaches the room.

This file defines the wire-level event envelope and every payload exchanged
with clients.
*/
package chat

import "encoding/json"

// EventType identifies an event on the WebSocket wire.
type EventType string

// Client to server events.
const (
	TypeSendMessage EventType = "send_message"
	TypeTypingStart EventType = "typing_start"
	TypeTypingStop  EventType = "typing_stop"
)

// Server to client events.
const (
	TypeRecentMessages  EventType = "recent_messages"
	TypeNewMessage      EventType = "new_message"
	TypeUserJoined      EventType = "user_joined"
	TypeUserLeft        EventType = "user_left"
	TypeOnlineCount     EventType = "online_count"
	TypeUserTyping      EventType = "user_typing"
	TypeUserStopTyping  EventType = "user_stop_typing"
	TypeMessageFiltered EventType = "message_filtered"
	TypeTypingBlocked   EventType = "typing_blocked"
	TypeErrorMessage    EventType = "error_message"
	TypeUserBlocked     EventType = "user_blocked"
)

// Event is the JSON envelope for every wire event in both directions.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into an Event envelope.
func NewEvent(eventType EventType, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: eventType}, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw}, nil
}

// SendMessagePayload is the inbound payload of a send_message event.
type SendMessagePayload struct {
	Content string `json:"content"`
}

// MessagePayload is the outbound payload of a new_message broadcast.
type MessagePayload struct {
	ID        string `json:"id"`
	Alias     string `json:"alias"`
	Content   string `json:"content"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"createdAt"`
}

// PresencePayload announces a join or leave together with the new count.
type PresencePayload struct {
	Alias       string `json:"alias"`
	OnlineCount int    `json:"onlineCount"`
}

// OnlineCountPayload carries the authoritative connection count.
type OnlineCountPayload struct {
	Count int `json:"count"`
}

// TypingPayload identifies who is typing (or stopped).
type TypingPayload struct {
	Alias string `json:"alias"`
}

// FilteredPayload notifies a sender that their message was blocked and a
// warning recorded.
type FilteredPayload struct {
	Message           string `json:"message"`
	WarningCount      int    `json:"warningCount"`
	RemainingWarnings int    `json:"remainingWarnings"`
}

// TypingBlockedPayload notifies a sender that the warning limit was reached
// and their typing is now locked.
type TypingBlockedPayload struct {
	Message      string `json:"message"`
	WarningCount int    `json:"warningCount"`
}

// ErrorPayload carries a sender-only error notice.
type ErrorPayload struct {
	Message string `json:"message"`
}

// UserBlockedPayload announces an admin block to the whole room so clients
// can drop the affected session.
type UserBlockedPayload struct {
	UserID string `json:"userId"`
}
