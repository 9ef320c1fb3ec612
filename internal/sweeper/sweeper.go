// Package sweeper runs the periodic cleanup job: idle never-started sessions
// and sessions whose reconnect grace lapsed are purged outside the
// coordinator's synchronous action path.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
)

type Sweeper struct {
	coord         *game.Coordinator
	interval      time.Duration
	idleRetention time.Duration
	onPurge       func()
}

// New builds a sweeper. onPurge (optional) fires after a pass that removed
// at least one session, so the lobby can refresh.
func New(coord *game.Coordinator, interval, idleRetention time.Duration, onPurge func()) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if idleRetention <= 0 {
		idleRetention = time.Hour
	}
	return &Sweeper{coord: coord, interval: interval, idleRetention: idleRetention, onPurge: onPurge}
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.coord.Sweep(ctx, s.idleRetention)
			if err != nil {
				obslog.L().Warn("sweep_error", zap.Error(err))
				continue
			}
			if purged > 0 {
				obslog.L().Info("sweep_purged", zap.Int("sessions", purged))
				if s.onPurge != nil {
					s.onPurge()
				}
			}
		}
	}
}
