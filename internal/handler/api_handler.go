/*
Package handler provides the HTTP handlers and routing setup for the community hub server.

This file contains the read-only REST snapshot endpoints. Each one returns the
current in-memory collection verbatim; they read concurrently against the
stores' read locks and never mutate anything.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"commhub/internal/pkg/errs"
	"commhub/internal/pkg/resp"
)

// HandleListUsers returns every known user, online and offline.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Registry.Users())
	}
}

// HandleListChannels returns the fixed channel set in seed order.
func HandleListChannels(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Channels.Channels())
	}
}

// HandleListMessages returns the full message log for one channel.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := chi.URLParam(r, "channelID")

		if !deps.Channels.Exists(channelID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownChannel))
			return
		}

		resp.RespondSuccess(w, r, deps.Channels.History(channelID))
	}
}

// HandleListEvents returns every event created during the process lifetime.
func HandleListEvents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Events.All())
	}
}
