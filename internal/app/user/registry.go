package user

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"commhub/internal/pkg/logx"
	"commhub/internal/pkg/randx"
)

// Registry is the single source of truth for connected sessions and presence.
//
// It keeps two keys per live session: the stable logical user id and the
// transport connection id. Only the registry mutates IsOnline and LastSeen;
// writes arrive serialized through the hub loop while REST reads may run
// concurrently under the read lock.
type Registry struct {
	mu sync.RWMutex

	// users holds every logical user ever seen, keyed by logical id.
	users map[string]*User

	// order preserves first-join order for user list snapshots.
	order []string

	// connToUser maps a live connection id to the logical user owning it.
	connToUser map[string]string

	// userToConn maps a logical user id to its current live connection, if any.
	userToConn map[string]string

	logger zerolog.Logger
}

// NewRegistry constructs an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		users:      make(map[string]*User),
		connToUser: make(map[string]string),
		userToConn: make(map[string]string),
		logger:     logx.Logger().With().Str("component", "registry").Logger(),
	}
}

// Register creates or reactivates the logical user named by the profile and
// binds connID to it. A blank profile id gets a server-issued one. It returns
// a copy of the resulting user plus the connection id previously bound to the
// same user ("" if none), so the caller can close a replaced session.
func (reg *Registry) Register(connID string, p Profile) (User, string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	now := time.Now()

	id := p.ID
	if id == "" {
		id = randx.UserID()
	}

	role := p.Role
	if role == "" {
		role = DefaultRole
	}

	u, exists := reg.users[id]
	if !exists {
		u = &User{
			ID:       id,
			JoinTime: now,
		}
		reg.users[id] = u
		reg.order = append(reg.order, id)
	}

	// The claimed identity wins on reconnect as well; there is no
	// authentication layer to say otherwise.
	u.Name = p.Name
	u.Email = p.Email
	u.Role = role
	u.IsOnline = true
	u.LastSeen = now

	prevConn := reg.userToConn[id]
	if prevConn != "" && prevConn != connID {
		delete(reg.connToUser, prevConn)
		reg.logger.Info().
			Str("user_id", id).
			Str("replaced_conn", prevConn).
			Msg("Logical user rebound to a new connection.")
	}

	reg.connToUser[connID] = id
	reg.userToConn[id] = connID

	return *u, prevConn
}

// Unregister unbinds the user currently owning connID, marks it offline, and
// stamps LastSeen. Unbinding an unknown or already-unbound connection is a
// no-op returning ok=false.
func (reg *Registry) Unregister(connID string) (User, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id, ok := reg.connToUser[connID]
	if !ok {
		return User{}, false
	}

	delete(reg.connToUser, connID)
	delete(reg.userToConn, id)

	u := reg.users[id]
	u.IsOnline = false
	u.LastSeen = time.Now()

	reg.logger.Info().Str("user_id", id).Msg("User went offline.")

	return *u, true
}

// Resolve looks up the user bound to connID without side effects.
func (reg *Registry) Resolve(connID string) (User, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	id, ok := reg.connToUser[connID]
	if !ok {
		return User{}, false
	}

	return *reg.users[id], true
}

// Get looks up a logical user by id.
func (reg *Registry) Get(userID string) (User, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	u, ok := reg.users[userID]
	if !ok {
		return User{}, false
	}

	return *u, true
}

// Users returns a snapshot of all known users, online and offline, in
// first-join order.
func (reg *Registry) Users() []User {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	users := make([]User, 0, len(reg.order))
	for _, id := range reg.order {
		users = append(users, *reg.users[id])
	}

	return users
}
