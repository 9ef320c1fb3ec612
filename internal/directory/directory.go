// Package directory maps connection ids to seats. It exists so every action
// is authorized from server-side state instead of client-declared identity.
package directory

import (
	"strings"
	"sync"
)

// Seat locates a connection inside a session.
type Seat struct {
	SessionID string
	Slot      int
}

type Directory struct {
	mu    sync.RWMutex
	seats map[string]Seat // connID -> seat
}

func New() *Directory {
	return &Directory{seats: make(map[string]Seat)}
}

// Bind seats a connection. An existing binding for the connection is
// replaced; callers check Lookup first when that matters.
func (d *Directory) Bind(connID, sessionID string, slot int) {
	connID = strings.TrimSpace(connID)
	if connID == "" {
		return
	}
	d.mu.Lock()
	d.seats[connID] = Seat{SessionID: sessionID, Slot: slot}
	d.mu.Unlock()
}

// Lookup resolves a connection to its seat.
func (d *Directory) Lookup(connID string) (Seat, bool) {
	d.mu.RLock()
	s, ok := d.seats[strings.TrimSpace(connID)]
	d.mu.RUnlock()
	return s, ok
}

// Unbind clears a connection's seat, returning what it was bound to.
func (d *Directory) Unbind(connID string) (Seat, bool) {
	connID = strings.TrimSpace(connID)
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.seats[connID]
	if ok {
		delete(d.seats, connID)
	}
	return s, ok
}

// DropSession removes every binding pointing at sessionID.
func (d *Directory) DropSession(sessionID string) {
	d.mu.Lock()
	for conn, seat := range d.seats {
		if seat.SessionID == sessionID {
			delete(d.seats, conn)
		}
	}
	d.mu.Unlock()
}
