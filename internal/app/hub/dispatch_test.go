package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commhub/internal/app/channel"
	"commhub/internal/app/event"
	"commhub/internal/app/user"
	"commhub/internal/pkg/errs"
)

func newTestHub() *Hub {
	return NewHub(user.NewRegistry(), channel.NewStore(), event.NewStore(), 24*time.Hour)
}

// newTestClient builds a client with no underlying socket; dispatch never
// touches the connection, only the send queue.
func newTestClient(connID string) *Client {
	return &Client{
		connID: connID,
		send:   make(chan []byte, sendQueueSize),
		logger: zerolog.Nop(),
	}
}

func envelope(t *testing.T, msgType MessageType, payload any) Envelope {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return Envelope{Type: msgType, Payload: raw}
}

func join(t *testing.T, h *Hub, c *Client, name, email string) []outbound {
	t.Helper()
	outs := h.dispatch(c, envelope(t, TypeUserJoin, JoinPayload{Name: name, Email: email}))
	require.True(t, c.identified)
	return outs
}

func decodePayload(t *testing.T, out outbound, dst any) {
	t.Helper()
	raw, err := json.Marshal(out.payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func requireRejection(t *testing.T, outs []outbound, code int) {
	t.Helper()
	require.Len(t, outs, 1)
	assert.Equal(t, scopeOrigin, outs[0].scope)
	assert.Equal(t, TypeError, outs[0].msgType)

	var p ErrorPayload
	decodePayload(t, outs[0], &p)
	assert.Equal(t, code, p.Code)
}

func TestMutatingIntentsRequireIdentity(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")

	intents := []Envelope{
		envelope(t, TypeSendMessage, SendMessagePayload{ChannelID: "general", Content: "hi"}),
		envelope(t, TypeCreateEvent, CreateEventPayload{Title: "Meetup", Date: time.Now().Format(time.RFC3339), Location: "Hall"}),
		envelope(t, TypeJoinEvent, EventRefPayload{EventID: "ev"}),
		envelope(t, TypeLeaveEvent, EventRefPayload{EventID: "ev"}),
		envelope(t, TypeTypingStart, TypingPayload{ChannelID: "general"}),
		envelope(t, TypeTypingStop, TypingPayload{ChannelID: "general"}),
	}

	for _, env := range intents {
		requireRejection(t, h.dispatch(c, env), errs.ErrNotIdentified)
	}

	assert.Empty(t, h.channels.History("general"), "rejected intents must not mutate state")
	assert.Empty(t, h.events.All())
}

func TestJoinProducesSnapshotAndAnnouncements(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")

	outs := join(t, h, c, "Alice", "alice@example.com")
	require.Len(t, outs, 3)

	assert.Equal(t, TypeInitialData, outs[0].msgType)
	assert.Equal(t, scopeOrigin, outs[0].scope)

	var snapshot InitialDataPayload
	decodePayload(t, outs[0], &snapshot)
	require.Len(t, snapshot.Users, 1)
	assert.Equal(t, "Alice", snapshot.Users[0].Name)
	assert.NotEmpty(t, snapshot.Users[0].ID, "server-issued id is returned for reuse")
	assert.Len(t, snapshot.Channels, 3)
	assert.Empty(t, snapshot.Messages)
	assert.Empty(t, snapshot.Events)

	assert.Equal(t, TypeUserJoined, outs[1].msgType)
	assert.Equal(t, scopeOthers, outs[1].scope)

	assert.Equal(t, TypeUsersUpdate, outs[2].msgType)
	assert.Equal(t, scopeAll, outs[2].scope)
}

func TestJoinSnapshotMatchesStoreState(t *testing.T) {
	h := newTestHub()
	a := newTestClient("conn-a")
	join(t, h, a, "Alice", "alice@example.com")

	h.dispatch(a, envelope(t, TypeSendMessage, SendMessagePayload{ChannelID: "general", Content: "hello"}))
	h.dispatch(a, envelope(t, TypeCreateEvent, CreateEventPayload{
		Title:    "Meetup",
		Date:     time.Now().Add(time.Hour).Format(time.RFC3339),
		Location: "Hall",
	}))

	b := newTestClient("conn-b")
	outs := join(t, h, b, "Bob", "bob@example.com")

	var snapshot InitialDataPayload
	decodePayload(t, outs[0], &snapshot)

	// The snapshot must equal what the stores would answer directly.
	assert.Len(t, snapshot.Users, len(h.registry.Users()))
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, "hello", snapshot.Messages[0].Content)
	require.Len(t, snapshot.Events, 1)
	assert.Equal(t, "Meetup", snapshot.Events[0].Title)
}

func TestJoinValidatesProfile(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")

	outs := h.dispatch(c, envelope(t, TypeUserJoin, JoinPayload{Name: "Alice", Email: "not-an-email"}))
	requireRejection(t, outs, errs.ErrInvalidParams)
	assert.False(t, c.identified)
	assert.Empty(t, h.registry.Users())
}

func TestSecondJoinOnSameConnectionRejected(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")
	join(t, h, c, "Alice", "alice@example.com")

	outs := h.dispatch(c, envelope(t, TypeUserJoin, JoinPayload{Name: "Alice", Email: "alice@example.com"}))
	requireRejection(t, outs, errs.ErrAlreadyIdentified)
}

func TestSendMessageBroadcastsToAll(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")
	join(t, h, c, "Alice", "alice@example.com")

	outs := h.dispatch(c, envelope(t, TypeSendMessage, SendMessagePayload{ChannelID: "general", Content: "hello"}))
	require.Len(t, outs, 1)
	assert.Equal(t, TypeNewMessage, outs[0].msgType)
	assert.Equal(t, scopeAll, outs[0].scope)

	var msg channel.Message
	decodePayload(t, outs[0], &msg)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, c.usr.ID, msg.UserID)
	assert.Equal(t, channel.KindText, msg.Type)

	history := h.channels.History("general")
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func TestSendMessageUnknownChannelRejected(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")
	join(t, h, c, "Alice", "alice@example.com")

	outs := h.dispatch(c, envelope(t, TypeSendMessage, SendMessagePayload{ChannelID: "nope", Content: "hello"}))
	requireRejection(t, outs, errs.ErrUnknownChannel)

	assert.Empty(t, h.channels.Recent(24*time.Hour), "no broadcast and no stored message")
}

func TestEventLifecycle(t *testing.T) {
	h := newTestHub()
	a := newTestClient("conn-a")
	b := newTestClient("conn-b")
	join(t, h, a, "Alice", "alice@example.com")
	join(t, h, b, "Bob", "bob@example.com")

	outs := h.dispatch(a, envelope(t, TypeCreateEvent, CreateEventPayload{
		Title:    "Meetup",
		Date:     time.Now().Add(time.Hour).Format(time.RFC3339),
		Location: "Hall",
	}))
	require.Len(t, outs, 1)
	assert.Equal(t, TypeNewEvent, outs[0].msgType)
	assert.Equal(t, scopeAll, outs[0].scope)

	var ev event.Event
	decodePayload(t, outs[0], &ev)
	assert.Equal(t, []string{a.usr.ID}, ev.Attendees)
	assert.Equal(t, "Alice", ev.OrganizerName)

	outs = h.dispatch(b, envelope(t, TypeJoinEvent, EventRefPayload{EventID: ev.ID}))
	require.Len(t, outs, 1)
	assert.Equal(t, TypeEventUpdated, outs[0].msgType)
	decodePayload(t, outs[0], &ev)
	assert.ElementsMatch(t, []string{a.usr.ID, b.usr.ID}, ev.Attendees)

	outs = h.dispatch(b, envelope(t, TypeLeaveEvent, EventRefPayload{EventID: ev.ID}))
	require.Len(t, outs, 1)
	decodePayload(t, outs[0], &ev)
	assert.Equal(t, []string{a.usr.ID}, ev.Attendees)
}

func TestCreateEventRejectsBadDate(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")
	join(t, h, c, "Alice", "alice@example.com")

	outs := h.dispatch(c, envelope(t, TypeCreateEvent, CreateEventPayload{
		Title:    "Meetup",
		Date:     "next tuesday",
		Location: "Hall",
	}))
	requireRejection(t, outs, errs.ErrInvalidEvent)
	assert.Empty(t, h.events.All())
}

func TestJoinUnknownEventRejected(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")
	join(t, h, c, "Alice", "alice@example.com")

	outs := h.dispatch(c, envelope(t, TypeJoinEvent, EventRefPayload{EventID: "missing"}))
	requireRejection(t, outs, errs.ErrUnknownEvent)
}

func TestTypingIndicatorsSkipOriginator(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")
	join(t, h, c, "Alice", "alice@example.com")

	outs := h.dispatch(c, envelope(t, TypeTypingStart, TypingPayload{ChannelID: "general"}))
	require.Len(t, outs, 1)
	assert.Equal(t, TypeUserTyping, outs[0].msgType)
	assert.Equal(t, scopeOthers, outs[0].scope)

	var notice TypingNotice
	decodePayload(t, outs[0], &notice)
	assert.Equal(t, c.usr.ID, notice.UserID)
	assert.Equal(t, "Alice", notice.UserName)
	assert.Equal(t, "general", notice.ChannelID)

	outs = h.dispatch(c, envelope(t, TypeTypingStop, TypingPayload{ChannelID: "general"}))
	require.Len(t, outs, 1)
	assert.Equal(t, TypeUserStoppedTyping, outs[0].msgType)
	assert.Equal(t, scopeOthers, outs[0].scope)
}

func TestUnsupportedIntentRejected(t *testing.T) {
	h := newTestHub()
	c := newTestClient("conn-1")

	requireRejection(t, h.dispatch(c, Envelope{Type: "make-coffee"}), errs.ErrInvalidParams)
}
