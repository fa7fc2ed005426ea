/*
Package user contains the user model and the session registry.

A User is a logical identity that outlives any single websocket connection;
the registry maps live transport connections onto logical users and derives
presence from those bindings.
*/
package user

import "time"

// DefaultRole is assigned when a joining client does not claim a role.
const DefaultRole = "Member"

// User represents a community member as seen by every client.
// Entries are never removed; a disconnected user stays in the list as an
// offline record for the lifetime of the process.
type User struct {
	// ID is the stable logical identifier, independent of any connection.
	ID string `json:"id"`

	// Name is the display name claimed at join time.
	Name string `json:"name"`

	// Email is the address claimed at join time.
	Email string `json:"email"`

	// Role is the community role (e.g. "Member", "Organizer").
	Role string `json:"role"`

	// IsOnline reports whether the user currently owns a live connection.
	IsOnline bool `json:"isOnline"`

	// LastSeen is updated on every connect and disconnect.
	LastSeen time.Time `json:"lastSeen"`

	// JoinTime records when the logical user first joined the platform.
	JoinTime time.Time `json:"joinTime"`
}

// Profile carries the identity a client claims when joining.
type Profile struct {
	// ID optionally names an existing logical user to reclaim after a
	// reconnect. Blank means the server issues a fresh id.
	ID    string
	Name  string
	Email string
	Role  string
}
