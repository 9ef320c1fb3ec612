// Package lobby maintains the set of connections watching the active-games
// list and pushes them debounced snapshots.
package lobby

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

// Sender delivers one event to one connection; the gateway provides it.
type Sender func(connID, event string, payload any)

// Source produces the current active-session summaries.
type Source func(ctx context.Context) ([]gamedto.SessionSummary, error)

type Broadcaster struct {
	source   Source
	send     Sender
	debounce time.Duration

	mu      sync.Mutex
	subs    map[string]struct{}
	timer   *time.Timer
	pending bool
	closed  bool
}

func New(source Source, send Sender, debounce time.Duration) *Broadcaster {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Broadcaster{
		source:   source,
		send:     send,
		debounce: debounce,
		subs:     make(map[string]struct{}),
	}
}

// Subscribe registers a lobby watcher and pushes it an immediate snapshot so
// it never waits out a debounce window for its first view.
func (b *Broadcaster) Subscribe(ctx context.Context, connID string) {
	b.mu.Lock()
	b.subs[connID] = struct{}{}
	b.mu.Unlock()

	if sessions, err := b.source(ctx); err == nil {
		b.send(connID, gamedto.EvtActiveGamesUpdate, gamedto.ActiveGamesUpdateEvent{Sessions: sessions})
	} else {
		obslog.L().Warn("lobby_snapshot_error", zap.Error(err))
	}
}

func (b *Broadcaster) Unsubscribe(connID string) {
	b.mu.Lock()
	delete(b.subs, connID)
	b.mu.Unlock()
}

// Schedule coalesces refresh requests: at most one push per debounce window
// no matter how many lifecycle changes land inside it.
func (b *Broadcaster) Schedule() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || b.pending {
		return
	}
	b.pending = true
	b.timer = time.AfterFunc(b.debounce, b.flush)
}

func (b *Broadcaster) flush() {
	b.mu.Lock()
	b.pending = false
	if b.closed || len(b.subs) == 0 {
		b.mu.Unlock()
		return
	}
	targets := make([]string, 0, len(b.subs))
	for id := range b.subs {
		targets = append(targets, id)
	}
	b.mu.Unlock()

	sessions, err := b.source(context.Background())
	if err != nil {
		obslog.L().Warn("lobby_refresh_error", zap.Error(err))
		return
	}
	payload := gamedto.ActiveGamesUpdateEvent{Sessions: sessions}
	for _, id := range targets {
		b.send(id, gamedto.EvtActiveGamesUpdate, payload)
	}
	obslog.L().Debug("lobby_refresh", zap.Int("subscribers", len(targets)), zap.Int("sessions", len(sessions)))
}

func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
}
