// Package store provides game.SessionStore implementations: redis-backed,
// in-memory, and a read-through cache wrapper.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
)

// ErrExists reports an id collision on Create.
var ErrExists = game.ErrSessionExists

func encodeSession(s *game.Session) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, fmt.Errorf("refusing to encode session without id")
	}
	return json.Marshal(s)
}

// decodeSession is the store-boundary validation: a record that does not
// deserialize into a well-formed session is rejected here.
func decodeSession(raw []byte) (*game.Session, error) {
	var s game.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("decode session: missing id")
	}
	switch s.Phase {
	case game.PhaseStandby, game.PhaseMain, game.PhaseBattle, game.PhaseEnd, "":
	default:
		return nil, fmt.Errorf("decode session %s: unknown phase %q", s.ID, s.Phase)
	}
	for i := range s.Players {
		lp := s.Players[i].LifePoints
		if lp < 0 || lp > game.StartingLife {
			return nil, fmt.Errorf("decode session %s: life points out of range: %d", s.ID, lp)
		}
	}
	return &s, nil
}
