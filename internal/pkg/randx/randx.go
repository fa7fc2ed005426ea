/*
Package randx generates unique identifiers for the entities the server owns.

All identifiers are UUID v4 strings; the named helpers exist so call sites
state which kind of entity they are minting.
*/
package randx

import "github.com/google/uuid"

// UserID generates a server-issued logical user identifier. It is returned to
// the client in the joined User so the same identity can be claimed again
// after a reconnect.
func UserID() string {
	return uuid.NewString()
}

// ConnectionID generates a transport-level connection identifier, distinct
// from the logical user id it may later be bound to.
func ConnectionID() string {
	return uuid.NewString()
}

// MessageID generates a globally unique message identifier.
func MessageID() string {
	return uuid.NewString()
}

// EventID generates a globally unique event identifier.
func EventID() string {
	return uuid.NewString()
}
