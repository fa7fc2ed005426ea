/*
Package handler provides the HTTP handlers and routing setup for the community hub server.

This file contains the websocket upgrade handler. A fresh transport connection
id is minted per connection; the logical user identity is established later by
a user-join intent over the socket.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"commhub/internal/app/hub"
	"commhub/internal/pkg/errs"
	"commhub/internal/pkg/limiter"
	"commhub/internal/pkg/logx"
	"commhub/internal/pkg/randx"
	"commhub/internal/pkg/resp"
)

// HandleWebSocket upgrades the HTTP connection, attaches the client to the
// hub, and runs its read/write pumps for the lifetime of the connection.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		client := hub.NewClient(deps.Hub, conn, connID)

		go client.WritePump()

		deps.Hub.Attach(client)

		logx.Info("WebSocket connection established", "conn_id", connID)

		client.ReadPump()
	}
}
