package game

import (
	"time"

	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

// FieldWidth is the fixed number of field slots per player. Empty slots stay
// nil, never compacted.
const FieldWidth = 8

const (
	// DeckSize is the per-player pool size after the deck-building rule is
	// applied at deal time.
	DeckSize = 30
	// OpeningHandSize is drawn from the top of the shuffled pool.
	OpeningHandSize = 5
	// MaxHandSize gates draws.
	MaxHandSize = 10
	// StartingLife is also the upper bound for life points.
	StartingLife = 30
	// AssassinTokenCap bounds the assassin token pool; other archetypes cap
	// at StartingLife.
	AssassinTokenCap = 8

	// SampledDecks is the size of the random deck sample drawn once at
	// session creation.
	SampledDecks = 4

	chatHistoryLimit = 200
)

// TokenAssassin is the archetype that triggers the draw redirect rule.
const TokenAssassin = "assassin"

// Status is the session lifecycle state.
type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusStarted Status = "STARTED"
)

// Phase is one quarter of a turn, a strict cycle.
type Phase string

const (
	PhaseStandby Phase = "Standby"
	PhaseMain    Phase = "Main"
	PhaseBattle  Phase = "Battle"
	PhaseEnd     Phase = "End"
)

// Next returns the following phase in the fixed cycle.
func (p Phase) Next() Phase {
	switch p {
	case PhaseStandby:
		return PhaseMain
	case PhaseMain:
		return PhaseBattle
	case PhaseBattle:
		return PhaseEnd
	default:
		return PhaseStandby
	}
}

// CardInstance is a catalog card copied into a zone. InstanceID is assigned
// once at deal time and is the only safe move key when the same catalog card
// appears twice.
type CardInstance struct {
	InstanceID string `json:"instance_id"`
	CardID     string `json:"card_id"`
	Exhausted  bool   `json:"exhausted"`
}

// PlayerState is one player's half of the authoritative state.
type PlayerState struct {
	Hand          []CardInstance            `json:"hand"`
	Deck          []CardInstance            `json:"deck"`
	Field         [FieldWidth]*CardInstance `json:"field"`
	Graveyard     []CardInstance            `json:"graveyard"`
	MustDiscard   bool                      `json:"must_discard"`
	HasPlayedCard bool                      `json:"has_played_card"`
	LifePoints    int                       `json:"life_points"`
	TokenType     string                    `json:"token_type,omitempty"`
	TokenCount    int                       `json:"token_count"`
}

// Participant is one seat. The connection id is replaced on reconnection;
// the slot and resume key are not.
type Participant struct {
	ConnID    string `json:"conn_id,omitempty"`
	ResumeKey string `json:"resume_key"`
	Connected bool   `json:"connected"`
}

// DeckChoices tracks the selection protocol. Frozen once Done is set.
type DeckChoices struct {
	Player1 string   `json:"player1,omitempty"`
	Player2 []string `json:"player2"`
	// Remaining is the deterministically derived 4th deck, assigned to
	// player 1 when the protocol completes.
	Remaining string `json:"remaining,omitempty"`
	Done      bool   `json:"done"`
}

// Session is the authoritative record of a match.
type Session struct {
	ID             string              `json:"session_id"`
	Status         Status              `json:"status"`
	Participants   [2]Participant      `json:"participants"`
	AvailableDecks []string            `json:"available_decks"`
	Choices        DeckChoices         `json:"deck_choices"`
	Ready          [2]bool             `json:"ready"`
	Dealt          bool                `json:"dealt"`
	Players        [2]PlayerState      `json:"players"`
	Turn           int                 `json:"turn"`
	Phase          Phase               `json:"phase"`
	ActiveSlot     int                 `json:"active_player"`
	GameOver       bool                `json:"game_over"`
	WinnerSlot     int                 `json:"winner"`
	Chat           []gamedto.ChatEntry `json:"chat_history"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	// DisconnectedAt is set while a seat is vacated, for the grace sweep.
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
}

// SlotOf returns the slot seated under connID, or -1.
func (s *Session) SlotOf(connID string) int {
	for i := range s.Participants {
		if s.Participants[i].Connected && s.Participants[i].ConnID == connID {
			return i
		}
	}
	return -1
}

// Opponent returns the other slot.
func Opponent(slot int) int { return 1 - slot }

// TokenCap returns the upper bound for a token archetype.
func TokenCap(tokenType string) int {
	if tokenType == TokenAssassin {
		return AssassinTokenCap
	}
	return StartingLife
}

// Summary reduces the session to its lobby-visible fields.
func (s *Session) Summary() gamedto.SessionSummary {
	n := 0
	for i := range s.Participants {
		if s.Participants[i].ResumeKey != "" {
			n++
		}
	}
	return gamedto.SessionSummary{
		SessionID:        s.ID,
		Status:           string(s.Status),
		ParticipantCount: n,
		CreatedAt:        s.CreatedAt,
	}
}
