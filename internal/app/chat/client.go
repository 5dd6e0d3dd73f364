/*
This file defines the Client struct, representing one active WebSocket
connection. It manages the connection's lifecycle, the read and write pumps,
and dispatch of the closed inbound event set to the Gateway.
*/
package chat

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"incognichat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// WsCloseCodeAccountBlocked is a custom WebSocket Close Code
	// (4000-4999 range) signaling that the account was blocked or removed
	// by an administrator.
	WsCloseCodeAccountBlocked = 4001
)

// Client represents one active WebSocket connection and the user behind it.
// A user may hold several Clients at once.
type Client struct {
	room    *Room
	gateway *Gateway

	// underlying WebSocket connection object.
	conn *websocket.Conn

	userID string
	alias  string

	// a buffered channel used to queue events waiting to be written.
	send chan []byte

	// closed flips once the send channel is closed; events queued after
	// that are dropped.
	closed    atomic.Bool
	closeOnce sync.Once

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded connection.
func NewClient(room *Room, gateway *Gateway, conn *websocket.Conn, userID, alias string) *Client {
	clientLogger := logx.Logger().With().
		Str("user_id", userID).
		Str("alias", alias).
		Logger()

	return &Client{
		room:    room,
		gateway: gateway,
		conn:    conn,
		userID:  userID,
		alias:   alias,
		send:    make(chan []byte, 256),
		logger:  clientLogger,
	}
}

// ReadPump reads events from the WebSocket connection and dispatches them.
// It handles heartbeats (Pong) and performs cleanup when the connection
// closes for any reason.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundEvent(messageBytes)
	}
}

// cleanupOnDisconnect runs the full disconnect pipeline when ReadPump
// terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Connection cleanup starting.")

	c.gateway.Disconnect(context.Background(), c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error")
	}
}

// processInboundEvent handles one raw frame received from the client.
func (c *Client) processInboundEvent(messageBytes []byte) {
	var event Event
	if err := json.Unmarshal(messageBytes, &event); err != nil {
		c.logger.Warn().Err(err).
			Bytes("message_bytes", messageBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch event.Type {
	case TypeSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid send_message payload")
			return
		}
		c.gateway.HandleSend(context.Background(), c, payload.Content)

	case TypeTypingStart:
		c.gateway.HandleTyping(c, true)

	case TypeTypingStop:
		c.gateway.HandleTyping(c, false)

	default:
		c.logger.Warn().Str("event_type", string(event.Type)).Msg("Client sent unsupported event type")
	}
}

// WritePump writes queued events from the send channel to the WebSocket
// connection and keeps the heartbeat alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage writes one queued event to the WebSocket. Returns true
// if the WritePump loop should continue.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic Ping frame. Returns false if the
// WritePump loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// SendEvent marshals the event and queues it for this connection. Events for
// a closed connection are silently dropped; nothing can be delivered there.
func (c *Client) SendEvent(event Event) {
	if c.closed.Load() {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("Error marshaling event for client")
		return
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping event")
	}
}

// SendError queues an error_message event for this connection only.
func (c *Client) SendError(message string) {
	event, err := NewEvent(TypeErrorMessage, ErrorPayload{Message: message})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build error_message event")
		return
	}
	c.SendEvent(event)
}

// Kick closes the connection with a custom Close Frame (Code 4001)
// indicating that the account was blocked or removed.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeAccountBlocked).
		Str("reason", reason).
		Msg("Sending WS Kick message and closing connection.")

	closeMessage := websocket.FormatCloseMessage(WsCloseCodeAccountBlocked, reason)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send WS close message.")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during kick")
	}
}

// closeSend closes the outbound queue exactly once. Only the Room's Run loop
// calls this for registered connections.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.send)
	})
}
