package handler

import (
	"commhub/internal/app/channel"
	"commhub/internal/app/event"
	"commhub/internal/app/hub"
	"commhub/internal/app/user"
	"commhub/internal/configs"
)

// AppDeps bundles everything the HTTP layer needs: the hub for the realtime
// surface and the registry/stores for the read-only REST snapshot.
type AppDeps struct {
	Hub      *hub.Hub
	Registry *user.Registry
	Channels *channel.Store
	Events   *event.Store
	Config   *configs.AppConfig
}
