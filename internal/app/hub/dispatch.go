/*
Package hub contains the broadcast coordinator for the community platform.

This file implements intent dispatch: decoding, validation, the single store
mutation, and the notifications to emit. Dispatch runs on the hub loop and
returns outbound notifications instead of writing to sockets itself, which
keeps every handler testable without a transport.
*/
package hub

import (
	"encoding/json"
	"time"

	"commhub/internal/app/user"
	"commhub/internal/pkg/errs"
)

// dispatch routes one intent envelope to its handler. Validation failures are
// local: the offending intent is rejected with an error notification to the
// originator and nothing is mutated or broadcast.
func (h *Hub) dispatch(c *Client, env Envelope) []outbound {
	switch env.Type {
	case TypeUserJoin:
		return h.handleJoin(c, env.Payload)

	case TypeSendMessage:
		return h.handleSendMessage(c, env.Payload)

	case TypeCreateEvent:
		return h.handleCreateEvent(c, env.Payload)

	case TypeJoinEvent:
		return h.handleEventAttendance(c, env.Payload, true)

	case TypeLeaveEvent:
		return h.handleEventAttendance(c, env.Payload, false)

	case TypeTypingStart:
		return h.handleTyping(c, env.Payload, true)

	case TypeTypingStop:
		return h.handleTyping(c, env.Payload, false)

	default:
		h.logger.Warn().
			Str("conn_id", c.connID).
			Str("intent", string(env.Type)).
			Msg("Client sent unsupported intent type.")
		return rejection(errs.ErrInvalidParams)
	}
}

// rejection builds the single error notification for a refused intent.
func rejection(code int) []outbound {
	return reject(errs.NewError(code))
}

func reject(customErr *errs.CustomError) []outbound {
	return []outbound{unicast(TypeError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})}
}

// decode unmarshals an intent payload and validates its struct tags.
func (h *Hub) decode(payload json.RawMessage, dst any) *errs.CustomError {
	if err := json.Unmarshal(payload, dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}
	if err := h.validate.Struct(dst); err != nil {
		return errs.NewError(errs.ErrInvalidParams)
	}
	return nil
}

// handleJoin identifies the connection: it registers (or reactivates) the
// logical user, kicks any previous session of the same user, sends the state
// snapshot to the joiner, and announces the arrival to everyone else.
func (h *Hub) handleJoin(c *Client, payload json.RawMessage) []outbound {
	if c.identified {
		return rejection(errs.ErrAlreadyIdentified)
	}

	var p JoinPayload
	if customErr := h.decode(payload, &p); customErr != nil {
		return reject(customErr)
	}

	u, prevConn := h.registry.Register(c.connID, user.Profile{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
	})

	if prevConn != "" {
		if old, ok := h.byConn[prevConn]; ok {
			old.Kick("Session replaced by a new connection.")
		}
	}

	c.usr = u
	c.identified = true

	h.logger.Info().
		Str("conn_id", c.connID).
		Str("user_id", u.ID).
		Str("user_name", u.Name).
		Msg("User joined the platform.")

	users := h.registry.Users()
	snapshot := InitialDataPayload{
		Users:    users,
		Channels: h.channels.Channels(),
		Messages: h.channels.Recent(h.historyWindow),
		Events:   h.events.Upcoming(time.Now()),
	}

	return []outbound{
		unicast(TypeInitialData, snapshot),
		broadcastOthers(TypeUserJoined, u),
		broadcast(TypeUsersUpdate, users),
	}
}

// handleSendMessage appends a message to its channel and broadcasts it.
func (h *Hub) handleSendMessage(c *Client, payload json.RawMessage) []outbound {
	if !c.identified {
		return rejection(errs.ErrNotIdentified)
	}

	var p SendMessagePayload
	if customErr := h.decode(payload, &p); customErr != nil {
		return reject(customErr)
	}

	msg, customErr := h.channels.Append(p.ChannelID, c.usr.ID, p.Content, p.Type)
	if customErr != nil {
		return reject(customErr)
	}

	return []outbound{broadcast(TypeNewMessage, msg)}
}

// handleCreateEvent stores a new event with the sender as organizer and sole
// initial attendee, then broadcasts it.
func (h *Hub) handleCreateEvent(c *Client, payload json.RawMessage) []outbound {
	if !c.identified {
		return rejection(errs.ErrNotIdentified)
	}

	var p CreateEventPayload
	if customErr := h.decode(payload, &p); customErr != nil {
		return reject(customErr)
	}

	date, err := time.Parse(time.RFC3339, p.Date)
	if err != nil {
		return rejection(errs.ErrInvalidEvent)
	}

	ev, customErr := h.events.Create(p.Title, p.Description, date, p.Location, c.usr.ID, c.usr.Name)
	if customErr != nil {
		return reject(customErr)
	}

	return []outbound{broadcast(TypeNewEvent, ev)}
}

// handleEventAttendance applies an idempotent join/leave to the attendee set
// and broadcasts the resulting event.
func (h *Hub) handleEventAttendance(c *Client, payload json.RawMessage, attending bool) []outbound {
	if !c.identified {
		return rejection(errs.ErrNotIdentified)
	}

	var p EventRefPayload
	if customErr := h.decode(payload, &p); customErr != nil {
		return reject(customErr)
	}

	ev, customErr := h.events.SetAttendance(p.EventID, c.usr.ID, attending)
	if customErr != nil {
		return reject(customErr)
	}

	return []outbound{broadcast(TypeEventUpdated, ev)}
}

// handleTyping relays an ephemeral typing indicator to everyone but the
// originator. Nothing is persisted; expiry is the client's concern.
func (h *Hub) handleTyping(c *Client, payload json.RawMessage, start bool) []outbound {
	if !c.identified {
		return rejection(errs.ErrNotIdentified)
	}

	var p TypingPayload
	if customErr := h.decode(payload, &p); customErr != nil {
		return reject(customErr)
	}

	if start {
		return []outbound{broadcastOthers(TypeUserTyping, TypingNotice{
			UserID:    c.usr.ID,
			UserName:  c.usr.Name,
			ChannelID: p.ChannelID,
		})}
	}

	return []outbound{broadcastOthers(TypeUserStoppedTyping, StoppedTypingNotice{
		UserID:    c.usr.ID,
		ChannelID: p.ChannelID,
	})}
}
