/*
Package hub contains the broadcast coordinator for the community platform.

This file defines the Client struct wrapping one live websocket connection,
including its read/write pumps and the send queue the hub fans out into.
*/
package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"commhub/internal/app/user"
	"commhub/internal/pkg/errs"
	"commhub/internal/pkg/logx"
)

const (
	// timeout for a single write to the websocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong before the connection is considered dead.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxFrameSize = 16384

	// capacity of the per-client outbound queue.
	sendQueueSize = 256

	// WsCloseCodeSessionReplaced is a custom close code (4000-4999 range)
	// signaling that the same logical user connected elsewhere.
	WsCloseCodeSessionReplaced = 4001
)

// Client represents one live websocket connection attached to the hub.
//
// connID is the transport identity; usr/identified hold the logical identity
// and are touched only from the hub loop, which serializes all state changes.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// connID is the transport-level connection identifier.
	connID string

	// usr is the logical user bound by a successful join; zero before that.
	usr user.User

	// identified flips true once a user-join intent succeeds.
	identified bool

	// send queues marshaled notifications for the write pump.
	send chan []byte

	logger zerolog.Logger
}

// NewClient constructs a Client for an upgraded websocket connection.
func NewClient(h *Hub, conn *websocket.Conn, connID string) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		connID: connID,
		send:   make(chan []byte, sendQueueSize),
		logger: logx.Logger().With().Str("conn_id", connID).Logger(),
	}
}

// ReadPump reads frames from the connection, decodes the envelope, and hands
// intents to the hub. It handles heartbeats and triggers cleanup on exit.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection closed unexpectedly")
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
			c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
			continue
		}

		c.hub.Submit(c, env)
	}
}

// cleanupOnDisconnect notifies the hub that this connection is gone and
// closes the underlying socket.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Detach(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// WritePump drains the send queue onto the connection and keeps the
// heartbeat alive with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if !ok {
				// Hub closed the queue; say goodbye properly.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug().Err(err).Msg("Error writing close message")
				}
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn().Err(err).Msg("Error writing ping")
				return
			}
		}
	}
}

// trySend queues a marshaled frame without blocking. A full queue means the
// client cannot keep up; the caller decides whether to drop the connection.
func (c *Client) trySend(frame []byte) (ok bool) {
	// The hub may close the queue while a late error send is in flight.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return false
	}
}

// SendError queues a TypeError notification for this client only.
func (c *Client) SendError(customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	frame, err := marshalEnvelope(TypeError, ErrorPayload{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build error notification")
		return
	}

	c.trySend(frame)
}

// Kick closes the connection with a custom close frame indicating that the
// session was replaced by a newer connection for the same logical user.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionReplaced).
		Str("reason", reason).
		Msg("Closing replaced session.")

	closeMessage := websocket.FormatCloseMessage(WsCloseCodeSessionReplaced, reason)

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close frame to replaced session.")
	}
}
