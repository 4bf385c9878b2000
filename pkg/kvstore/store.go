// Package kvstore persists small string values for a single table device.
package kvstore

import "context"

// Persisted keys.
const (
	KeyCart       = "cart"
	KeyClientID   = "clientId"
	KeyClientName = "clientName"
	KeyDeskCode   = "deskCode"
	KeyClientCPF  = "clientCpf"
	KeyDeskID     = "deskId"
	KeyTheme      = "theme"
)

// Store is the local persistence adapter. Writes are synchronous: a Get issued
// after a successful Set observes the written value.
type Store interface {
	// Get returns the stored value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the keys; missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
}
