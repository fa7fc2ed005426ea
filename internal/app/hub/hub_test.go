package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commhub/internal/app/user"
)

// readFrame pops the next queued frame off a client's send queue.
func readFrame(t *testing.T, c *Client) Envelope {
	t.Helper()

	select {
	case frame, ok := <-c.send:
		require.True(t, ok, "send queue closed unexpectedly")
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return Envelope{}
	}
}

// requireClosed waits for a client's send queue to be closed and drained.
func requireClosed(t *testing.T, c *Client) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for send queue to close")
		}
	}
}

func TestDeliverScopes(t *testing.T) {
	h := newTestHub()
	a := newTestClient("conn-a")
	b := newTestClient("conn-b")
	h.clients[a] = struct{}{}
	h.clients[b] = struct{}{}
	h.byConn[a.connID] = a
	h.byConn[b.connID] = b

	h.deliver(a, []outbound{unicast(TypeError, ErrorPayload{Code: 1})})
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 0)

	h.deliver(a, []outbound{broadcastOthers(TypeUserTyping, TypingNotice{})})
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)

	h.deliver(a, []outbound{broadcast(TypeUsersUpdate, []user.User{})})
	assert.Len(t, a.send, 2)
	assert.Len(t, b.send, 2)
}

func TestHubLoopJoinAndDisconnect(t *testing.T) {
	h := newTestHub()
	h.Start()
	defer h.Shutdown()

	a := newTestClient("conn-a")
	b := newTestClient("conn-b")
	h.Attach(a)
	h.Attach(b)

	h.Submit(a, envelope(t, TypeUserJoin, JoinPayload{Name: "Alice", Email: "alice@example.com"}))

	env := readFrame(t, a)
	assert.Equal(t, TypeInitialData, env.Type)
	env = readFrame(t, a)
	assert.Equal(t, TypeUsersUpdate, env.Type)

	// The other connection sees the arrival but no snapshot.
	env = readFrame(t, b)
	assert.Equal(t, TypeUserJoined, env.Type)
	env = readFrame(t, b)
	assert.Equal(t, TypeUsersUpdate, env.Type)

	// Transport drop: the reader hands the client back to the hub.
	h.Detach(a)
	requireClosed(t, a)

	env = readFrame(t, b)
	assert.Equal(t, TypeUserLeft, env.Type)

	var left user.User
	require.NoError(t, json.Unmarshal(env.Payload, &left))
	assert.False(t, left.IsOnline)
	assert.False(t, left.LastSeen.IsZero())

	env = readFrame(t, b)
	assert.Equal(t, TypeUsersUpdate, env.Type)

	var users []user.User
	require.NoError(t, json.Unmarshal(env.Payload, &users))
	require.Len(t, users, 1, "the departed user stays listed as an offline record")
	assert.False(t, users[0].IsOnline)
}

func TestHubLoopIgnoresIntentsFromDetachedClients(t *testing.T) {
	h := newTestHub()
	h.Start()
	defer h.Shutdown()

	ghost := newTestClient("conn-ghost")

	// Never attached; the loop must drop its intents on the floor.
	h.Submit(ghost, envelope(t, TypeUserJoin, JoinPayload{Name: "Ghost", Email: "ghost@example.com"}))

	select {
	case frame := <-ghost.send:
		t.Fatalf("detached client received frame: %s", frame)
	case <-time.After(100 * time.Millisecond):
	}

	assert.Empty(t, h.registry.Users())
}

func TestShutdownClosesAllClientQueues(t *testing.T) {
	h := newTestHub()
	h.Start()

	a := newTestClient("conn-a")
	h.Attach(a)

	h.Submit(a, envelope(t, TypeUserJoin, JoinPayload{Name: "Alice", Email: "alice@example.com"}))
	readFrame(t, a) // initial-data
	readFrame(t, a) // users-update

	h.Shutdown()
	requireClosed(t, a)
}
