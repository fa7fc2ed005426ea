/*
Package hub contains the broadcast coordinator for the community platform.

This file defines the Hub struct: the single serialization point through which
every mutating intent flows. All connection lifecycle changes and intents enter
one FIFO command channel, so the Run loop applies them strictly in arrival
order against the registry and stores, then fans the resulting notifications
out to the connected clients. Every broadcast therefore reflects a state
clients can reconstruct by replaying notifications in delivery order.
*/
package hub

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"commhub/internal/app/channel"
	"commhub/internal/app/event"
	"commhub/internal/app/user"
	"commhub/internal/pkg/errs"
	"commhub/internal/pkg/logx"
)

const commandQueueSize = 1024

type commandKind int

const (
	attachCmd commandKind = iota
	detachCmd
	intentCmd
)

// command is one unit of work for the hub loop. A single queue keeps attach,
// intent, and detach for the same connection in arrival order.
type command struct {
	kind   commandKind
	client *Client
	env    Envelope
}

// Hub owns the shared state and coordinates all broadcasts.
//
// The clients and byConn maps are touched only from the Run loop. The
// registry and stores carry their own read locks so the REST surface can
// query them concurrently, but every mutation funnels through here.
type Hub struct {
	registry *user.Registry
	channels *channel.Store
	events   *event.Store

	// historyWindow bounds the message snapshot sent on join.
	historyWindow time.Duration

	validate *validator.Validate

	clients map[*Client]struct{}
	byConn  map[string]*Client

	commands chan command
	stop     chan struct{}

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewHub constructs a Hub over the given registry and stores.
func NewHub(registry *user.Registry, channels *channel.Store, events *event.Store, historyWindow time.Duration) *Hub {
	return &Hub{
		registry:      registry,
		channels:      channels,
		events:        events,
		historyWindow: historyWindow,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		clients:       make(map[*Client]struct{}),
		byConn:        make(map[string]*Client),
		commands:      make(chan command, commandQueueSize),
		stop:          make(chan struct{}),
		logger:        logx.Logger().With().Str("component", "hub").Logger(),
	}
}

// Start launches the Run loop.
func (h *Hub) Start() {
	h.wg.Add(1)
	go h.Run()
}

// Run is the hub's main event loop. It serializes every command so that
// "validate, mutate, broadcast" is atomic with respect to every other
// mutation.
func (h *Hub) Run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case cmd := <-h.commands:
			switch cmd.kind {
			case attachCmd:
				h.handleAttach(cmd.client)
			case detachCmd:
				h.handleDisconnect(cmd.client)
			case intentCmd:
				if _, attached := h.clients[cmd.client]; !attached {
					continue
				}
				h.deliver(cmd.client, h.dispatch(cmd.client, cmd.env))
			}

		case <-h.stop:
			h.logger.Info().Int("total_connections", len(h.clients)).Msg("Hub loop stopping.")
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]struct{})
			h.byConn = make(map[string]*Client)
			return
		}
	}
}

// Attach hands a new connection to the hub loop. It must be called before the
// connection's read pump starts so the attach precedes any of its intents.
func (h *Hub) Attach(client *Client) {
	select {
	case h.commands <- command{kind: attachCmd, client: client}:
	case <-h.stop:
		close(client.send)
	}
}

// Detach tells the hub a connection is gone. Called by the read pump on exit;
// detaching an already-detached client is a no-op.
func (h *Hub) Detach(client *Client) {
	select {
	case h.commands <- command{kind: detachCmd, client: client}:
	case <-h.stop:
	}
}

// Submit queues an intent for the hub loop. When the queue is saturated the
// intent is rejected rather than blocking the reader.
func (h *Hub) Submit(client *Client, env Envelope) {
	select {
	case h.commands <- command{kind: intentCmd, client: client, env: env}:
	default:
		h.logger.Warn().
			Str("conn_id", client.connID).
			Str("intent", string(env.Type)).
			Msg("Command queue full, rejecting intent.")
		client.SendError(errs.NewError(errs.ErrRateLimitExceeded))
	}
}

// Shutdown stops the hub loop and closes every client queue.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down hub...")

	select {
	case <-h.stop:
	default:
		close(h.stop)
	}

	h.wg.Wait()
	h.logger.Info().Msg("Hub shutdown complete.")
}

func (h *Hub) handleAttach(client *Client) {
	h.clients[client] = struct{}{}
	h.byConn[client.connID] = client
	h.logger.Info().
		Str("conn_id", client.connID).
		Int("total_connections", len(h.clients)).
		Msg("Connection attached.")
}

// handleDisconnect detaches a connection and, if it was identified, flips the
// user offline and tells everyone who is left.
func (h *Hub) handleDisconnect(client *Client) {
	if _, attached := h.clients[client]; !attached {
		return
	}

	delete(h.clients, client)
	delete(h.byConn, client.connID)
	close(client.send)

	h.logger.Info().
		Str("conn_id", client.connID).
		Int("total_connections", len(h.clients)).
		Msg("Connection detached.")

	// A replaced session keeps no registry binding, so this stays a no-op
	// for kicked connections and the user never flickers offline.
	u, ok := h.registry.Unregister(client.connID)
	if !ok {
		return
	}

	h.deliver(client, []outbound{
		broadcast(TypeUserLeft, u),
		broadcast(TypeUsersUpdate, h.registry.Users()),
	})
}

// deliver fans outbound notifications to their recipient scopes. Clients that
// cannot keep up are queued for detachment rather than blocking the loop.
func (h *Hub) deliver(origin *Client, outs []outbound) {
	for _, out := range outs {
		frame, err := marshalEnvelope(out.msgType, out.payload)
		if err != nil {
			h.logger.Error().Err(err).
				Str("notification", string(out.msgType)).
				Msg("Error marshaling notification.")
			continue
		}

		switch out.scope {
		case scopeOrigin:
			if !origin.trySend(frame) {
				h.queueDetach(origin)
			}

		default:
			for client := range h.clients {
				if out.scope == scopeOthers && client == origin {
					continue
				}
				if !client.trySend(frame) {
					h.queueDetach(client)
				}
			}
		}
	}
}

// queueDetach schedules a slow client for detachment on a later loop turn.
// Non-blocking because it also runs on the loop itself.
func (h *Hub) queueDetach(client *Client) {
	select {
	case h.commands <- command{kind: detachCmd, client: client}:
	default:
		h.logger.Warn().Str("conn_id", client.connID).Msg("Command queue full, skipping detach.")
	}
}
