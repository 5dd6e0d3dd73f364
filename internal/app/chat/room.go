/*
This file defines the Room struct, the presence registry for the single global
chat session. It owns the set of live connections, serializes join/leave/
broadcast handling through one Run loop, and announces presence changes to
everyone in the room.
*/
package chat

import (
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog"

	"incognichat/internal/metrics"
	"incognichat/internal/pkg/logx"
)

const broadcastChannelBuffer = 1024

// envelope is one marshaled event queued for distribution, optionally
// skipping the connection that produced it.
type envelope struct {
	data   []byte
	except *Client
}

// kickRequest asks the Run loop to close every connection bound to a user.
type kickRequest struct {
	userID string
	reason string
}

// Room is the single global chat session. All connections join it; there is
// no capacity limit and a user may hold several connections at once, each
// counted independently.
type Room struct {
	// live connections. Owned by the Run loop.
	clients map[*Client]bool

	// a buffered channel for events to be distributed to connections.
	broadcast chan envelope

	// a channel for connections joining the room.
	register chan *Client

	// a channel for connections leaving the room.
	unregister chan *Client

	// a channel for admin-initiated forced closes, keyed by user ID.
	kick chan kickRequest

	// used to signal the Room to stop its Run loop.
	stopChan chan struct{}

	// online mirrors len(clients) for readers outside the Run loop.
	online atomic.Int64

	// structured logger with room context.
	logger zerolog.Logger
}

// NewRoom creates and initializes the global Room.
func NewRoom() *Room {
	return &Room{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, broadcastChannelBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		kick:       make(chan kickRequest, 16),
		stopChan:   make(chan struct{}),
		logger:     logx.Logger().With().Str("component", "Room").Logger(),
	}
}

// Stop signals the Run loop to terminate and close all connections.
func (r *Room) Stop() {
	select {
	case <-r.stopChan:
	default:
		close(r.stopChan)
	}
}

// OnlineCount reports the current number of live connections.
func (r *Room) OnlineCount() int {
	return int(r.online.Load())
}

// Run starts the main event loop for the Room. It handles connection
// registration, deregistration, broadcasting, and forced closes.
func (r *Room) Run() {
	defer func() {
		r.logger.Info().Msg("Room Run loop finished. Closing remaining connections.")

		for client := range r.clients {
			client.closeSend()
		}
		r.clients = nil
		r.online.Store(0)
		metrics.Connections.Set(0)
	}()

	for {
		select {
		case client := <-r.register:
			r.clients[client] = true
			r.syncCounters()

			r.logger.Info().
				Str("user_id", client.userID).
				Str("alias", client.alias).
				Int("online", len(r.clients)).
				Msg("Connection joined room.")

			r.announce(TypeUserJoined, PresencePayload{
				Alias:       client.alias,
				OnlineCount: len(r.clients),
			})
			r.announce(TypeOnlineCount, OnlineCountPayload{Count: len(r.clients)})

		case client := <-r.unregister:
			if _, ok := r.clients[client]; !ok {
				continue
			}

			delete(r.clients, client)
			client.closeSend()
			r.syncCounters()

			r.logger.Info().
				Str("user_id", client.userID).
				Str("alias", client.alias).
				Int("online", len(r.clients)).
				Msg("Connection left room.")

			r.announce(TypeUserLeft, PresencePayload{
				Alias:       client.alias,
				OnlineCount: len(r.clients),
			})
			r.announce(TypeOnlineCount, OnlineCountPayload{Count: len(r.clients)})

		case env := <-r.broadcast:
			r.distribute(env)

		case req := <-r.kick:
			for client := range r.clients {
				if client.userID == req.userID {
					client.Kick(req.reason)
				}
			}

		case <-r.stopChan:
			r.logger.Info().Msg("Room stop initiated.")
			return
		}
	}
}

// Register queues a connection for registration.
func (r *Room) Register(client *Client) {
	select {
	case r.register <- client:
	case <-r.stopChan:
	}
}

// Unregister queues a connection for removal. Safe to call more than once
// for the same connection.
func (r *Room) Unregister(client *Client) {
	select {
	case r.unregister <- client:
	case <-r.stopChan:
		client.closeSend()
	}
}

// Broadcast queues an event for every connection in the room.
func (r *Room) Broadcast(event Event) {
	r.enqueue(event, nil)
}

// BroadcastExcept queues an event for every connection except sender.
func (r *Room) BroadcastExcept(sender *Client, event Event) {
	r.enqueue(event, sender)
}

// Kick asks the Run loop to close every live connection bound to userID.
func (r *Room) Kick(userID, reason string) {
	select {
	case r.kick <- kickRequest{userID: userID, reason: reason}:
	default:
		r.logger.Warn().Str("user_id", userID).Msg("Kick channel full, dropping request.")
	}
}

func (r *Room) enqueue(event Event, except *Client) {
	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Error marshaling event for broadcast.")
		return
	}

	select {
	case r.broadcast <- envelope{data: data, except: except}:
	default:
		r.logger.Warn().Str("event_type", string(event.Type)).Msg("Broadcast channel full, dropping event.")
	}
}

// announce builds and distributes a server event from inside the Run loop.
func (r *Room) announce(eventType EventType, payload any) {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to build presence event.")
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Error marshaling presence event.")
		return
	}

	r.distribute(envelope{data: data})
}

func (r *Room) distribute(env envelope) {
	for client := range r.clients {
		if client == env.except || client.closed.Load() {
			continue
		}

		select {
		case client.send <- env.data:
		default:
			r.logger.Warn().
				Str("user_id", client.userID).
				Msg("Connection send queue full or closed, dropping event.")
		}
	}
}

func (r *Room) syncCounters() {
	n := len(r.clients)
	r.online.Store(int64(n))
	metrics.Connections.Set(float64(n))
}
