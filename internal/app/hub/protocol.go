/*
Package hub contains the broadcast coordinator for the community platform.

This file defines the wire protocol: the envelope shared by both directions,
the inbound intent types clients may send, and the outbound notification types
the server pushes.
*/
package hub

import (
	"encoding/json"

	"commhub/internal/app/channel"
	"commhub/internal/app/event"
	"commhub/internal/app/user"
)

// MessageType tags an envelope on the wire.
type MessageType string

// Client -> server intents.
const (
	TypeUserJoin    MessageType = "user-join"
	TypeSendMessage MessageType = "send-message"
	TypeCreateEvent MessageType = "create-event"
	TypeJoinEvent   MessageType = "join-event"
	TypeLeaveEvent  MessageType = "leave-event"
	TypeTypingStart MessageType = "typing-start"
	TypeTypingStop  MessageType = "typing-stop"
)

// Server -> client notifications.
const (
	TypeInitialData       MessageType = "initial-data"
	TypeUserJoined        MessageType = "user-joined"
	TypeUsersUpdate       MessageType = "users-update"
	TypeUserLeft          MessageType = "user-left"
	TypeNewMessage        MessageType = "new-message"
	TypeNewEvent          MessageType = "new-event"
	TypeEventUpdated      MessageType = "event-updated"
	TypeUserTyping        MessageType = "user-typing"
	TypeUserStoppedTyping MessageType = "user-stopped-typing"
	TypeError             MessageType = "error"
)

// Envelope is the framing for every websocket message in both directions.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload is the identity a client claims with a user-join intent.
// ID optionally reclaims an existing logical user after a reconnect.
type JoinPayload struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name" validate:"required,max=64"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"max=32"`
}

// SendMessagePayload carries a send-message intent.
type SendMessagePayload struct {
	ChannelID string `json:"channelId" validate:"required"`
	Content   string `json:"content"`
	Type      string `json:"type,omitempty"`
}

// CreateEventPayload carries a create-event intent. Date is RFC 3339.
type CreateEventPayload struct {
	Title       string `json:"title" validate:"required,max=128"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"required,max=128"`
}

// EventRefPayload carries join-event and leave-event intents.
type EventRefPayload struct {
	EventID string `json:"eventId" validate:"required"`
}

// TypingPayload carries typing-start and typing-stop intents.
type TypingPayload struct {
	ChannelID string `json:"channelId" validate:"required"`
}

// InitialDataPayload is the snapshot unicast to a client that just joined.
// Together with the notifications that follow it, it lets the client
// reconstruct server state exactly by replaying in delivery order.
type InitialDataPayload struct {
	Users    []user.User       `json:"users"`
	Channels []channel.Channel `json:"channels"`
	Messages []channel.Message `json:"messages"`
	Events   []event.Event     `json:"events"`
}

// TypingNotice is the user-typing notification payload.
type TypingNotice struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	ChannelID string `json:"channelId"`
}

// StoppedTypingNotice is the user-stopped-typing notification payload.
type StoppedTypingNotice struct {
	UserID    string `json:"userId"`
	ChannelID string `json:"channelId"`
}

// ErrorPayload reports a rejected intent back to its originator.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// scope names the recipient set of an outbound notification.
type scope int

const (
	// scopeOrigin delivers only to the connection that sent the intent.
	scopeOrigin scope = iota

	// scopeOthers delivers to every connection except the originator.
	scopeOthers

	// scopeAll delivers to every connection.
	scopeAll
)

// outbound pairs a notification with its recipient scope. Dispatch returns
// these; the hub loop owns the actual fan-out.
type outbound struct {
	scope   scope
	msgType MessageType
	payload any
}

func unicast(msgType MessageType, payload any) outbound {
	return outbound{scope: scopeOrigin, msgType: msgType, payload: payload}
}

func broadcast(msgType MessageType, payload any) outbound {
	return outbound{scope: scopeAll, msgType: msgType, payload: payload}
}

func broadcastOthers(msgType MessageType, payload any) outbound {
	return outbound{scope: scopeOthers, msgType: msgType, payload: payload}
}

// marshalEnvelope encodes a notification into its wire form.
func marshalEnvelope(msgType MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
