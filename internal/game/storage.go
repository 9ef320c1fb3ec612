package game

import "context"

// ErrSessionExists reports an id collision on SessionStore.Create.
var ErrSessionExists = staticErr("session id already exists")

type staticErr string

func (e staticErr) Error() string { return string(e) }

// SessionStore is the durable session record the coordinator runs against.
// Implementations must treat the stored record as opaque and validate on
// decode, never at use sites.
type SessionStore interface {
	// Create persists a new session, failing with ErrSessionExists on id
	// collision.
	Create(ctx context.Context, s *Session) error
	// Save overwrites an existing session record.
	Save(ctx context.Context, s *Session) error
	// Get returns the session or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// ListActive returns every live session, order unspecified.
	ListActive(ctx context.Context) ([]*Session, error)
}
