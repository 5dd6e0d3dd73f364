/*
This file defines the Gateway, the server-side pipeline every inbound chat
event passes through. Sends are reloaded against the authoritative user row,
screened by moderation, persisted, and only then broadcast; violations update
enforcement state atomically through the store.
*/
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"incognichat/internal/app/moderation"
	"incognichat/internal/app/store"
	"incognichat/internal/app/user"
	"incognichat/internal/metrics"
	"incognichat/internal/pkg/errs"
	"incognichat/internal/pkg/logx"
	"incognichat/internal/pkg/randx"
)

// MaxContentLength is the maximum message length in characters.
const MaxContentLength = 1000

// UserStore is the slice of user persistence the Gateway needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
	RecordViolation(ctx context.Context, id string) (int, bool, error)
	SetOnline(ctx context.Context, id string, online bool) error
}

// MessageStore is the slice of message persistence the Gateway needs.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *store.Message) error
	DeleteAllMessages(ctx context.Context) error
}

// Moderator classifies message content. The returned verdict is always
// usable; classification never fails outward.
type Moderator interface {
	Classify(ctx context.Context, text string) moderation.Verdict
}

// Gateway routes inbound connection events through validation, moderation,
// persistence, and broadcast.
type Gateway struct {
	users     UserStore
	messages  MessageStore
	moderator Moderator
	room      *Room
	logger    zerolog.Logger
}

// NewGateway constructs a Gateway bound to the global room.
func NewGateway(room *Room, users UserStore, messages MessageStore, moderator Moderator) *Gateway {
	return &Gateway{
		users:     users,
		messages:  messages,
		moderator: moderator,
		room:      room,
		logger:    logx.Logger().With().Str("component", "Gateway").Logger(),
	}
}

// Connect marks the user online, registers the connection with the room, and
// sends the initial empty history. The room never replays prior messages.
func (g *Gateway) Connect(ctx context.Context, c *Client) {
	if err := g.users.SetOnline(ctx, c.userID, true); err != nil {
		g.logger.Error().Err(err).Str("user_id", c.userID).Msg("Failed to mark user online.")
	}

	g.room.Register(c)

	event, err := NewEvent(TypeRecentMessages, []MessagePayload{})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to build recent_messages event.")
		return
	}
	c.SendEvent(event)
}

// Disconnect wipes the room's entire message history, marks the user offline,
// and removes the connection from the room. Any single disconnect resets the
// shared history for everyone.
func (g *Gateway) Disconnect(ctx context.Context, c *Client) {
	if err := g.messages.DeleteAllMessages(ctx); err != nil {
		g.logger.Error().Err(err).Msg("Failed to wipe messages on disconnect.")
	}

	if err := g.users.SetOnline(ctx, c.userID, false); err != nil {
		g.logger.Error().Err(err).Str("user_id", c.userID).Msg("Failed to mark user offline.")
	}

	g.room.Unregister(c)
}

// HandleSend runs one send_message event through the full pipeline.
func (g *Gateway) HandleSend(ctx context.Context, c *Client, content string) {
	u, err := g.users.GetUserByID(ctx, c.userID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", c.userID).Msg("Failed to load sender.")
		c.SendError(errs.NewError(errs.ErrMessageSendFailed).Message)
		return
	}

	if u.Restricted() {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		c.SendError(errs.NewError(errs.ErrAccountRestricted).Message)
		return
	}

	if u.IsTypingBlocked {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		c.SendError(errs.NewError(errs.ErrTypingBlocked).Message)
		return
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		metrics.MessagesTotal.WithLabelValues("rejected").Inc()
		c.SendError(errs.NewError(errs.ErrMessageTooLong, MaxContentLength).Message)
		return
	}

	verdict := g.moderator.Classify(ctx, content)
	if verdict.Inappropriate {
		g.handleViolation(ctx, c, u, content, verdict.Reason)
		return
	}

	msg := &store.Message{
		ID:       randx.MessageID(),
		SenderID: u.ID,
		Alias:    u.Alias,
		Content:  content,
		Kind:     store.KindMessage,
	}

	if err := g.messages.CreateMessage(ctx, msg); err != nil {
		g.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to persist message.")
		c.SendError(errs.NewError(errs.ErrMessageSendFailed).Message)
		return
	}

	event, err := NewEvent(TypeNewMessage, MessagePayload{
		ID:        msg.ID,
		Alias:     msg.Alias,
		Content:   msg.Content,
		Kind:      string(msg.Kind),
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to build new_message event.")
		return
	}

	metrics.MessagesTotal.WithLabelValues("sent").Inc()
	g.room.Broadcast(event)
}

// handleViolation records a flagged message for the admin audit trail,
// escalates the sender's warning state, and notifies only the sender.
func (g *Gateway) handleViolation(ctx context.Context, c *Client, u *user.User, content, reason string) {
	record := &store.Message{
		ID:           randx.MessageID(),
		SenderID:     u.ID,
		Alias:        u.Alias,
		Content:      content,
		IsFiltered:   true,
		FilterReason: reason,
		Kind:         store.KindWarning,
	}

	if err := g.messages.CreateMessage(ctx, record); err != nil {
		g.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to persist warning record.")
		c.SendError(errs.NewError(errs.ErrMessageSendFailed).Message)
		return
	}

	count, _, err := g.users.RecordViolation(ctx, u.ID)
	if err != nil {
		g.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to record violation.")
		c.SendError(errs.NewError(errs.ErrMessageSendFailed).Message)
		return
	}

	outcome := user.ViolationOutcome(count)

	g.logger.Info().
		Str("user_id", u.ID).
		Str("reason", reason).
		Int("warning_count", count).
		Msg("Message filtered by moderation.")

	if outcome.Signal == user.SignalBlocked {
		metrics.MessagesTotal.WithLabelValues("typing_blocked").Inc()

		event, err := NewEvent(TypeTypingBlocked, TypingBlockedPayload{
			Message: fmt.Sprintf(
				"🚫 Your typing has been permanently blocked due to repeated violations (%d warnings). Contact admin.",
				user.WarningLimit,
			),
			WarningCount: count,
		})
		if err != nil {
			g.logger.Error().Err(err).Msg("Failed to build typing_blocked event.")
			return
		}
		c.SendEvent(event)
		return
	}

	metrics.MessagesTotal.WithLabelValues("filtered").Inc()

	event, err := NewEvent(TypeMessageFiltered, FilteredPayload{
		Message: fmt.Sprintf(
			"⚠️ Your message was blocked due to inappropriate content. Warning %d/%d. You will be blocked at %d warnings.",
			count, user.WarningLimit-1, user.WarningLimit,
		),
		WarningCount:      count,
		RemainingWarnings: outcome.Remaining,
	})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to build message_filtered event.")
		return
	}
	c.SendEvent(event)
}

// HandleTyping relays a typing indicator to every other connection. Typing
// events are never persisted and never moderated.
func (g *Gateway) HandleTyping(c *Client, typing bool) {
	eventType := TypeUserTyping
	if !typing {
		eventType = TypeUserStopTyping
	}

	event, err := NewEvent(eventType, TypingPayload{Alias: c.alias})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to build typing event.")
		return
	}

	g.room.BroadcastExcept(c, event)
}

// ForceDisconnect announces an admin block to the room and closes every live
// connection bound to userID. Called by the admin surface after a block or
// delete has been persisted.
func (g *Gateway) ForceDisconnect(userID, reason string) {
	event, err := NewEvent(TypeUserBlocked, UserBlockedPayload{UserID: userID})
	if err != nil {
		g.logger.Error().Err(err).Msg("Failed to build user_blocked event.")
	} else {
		g.room.Broadcast(event)
	}

	g.room.Kick(userID, reason)
}
