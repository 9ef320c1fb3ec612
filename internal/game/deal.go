package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

// assignedDecks returns each slot's deck ids once selection is done: slot 0
// owns its pick plus the derived remaining deck, slot 1 owns its two picks.
func assignedDecks(s *Session, slot int) []string {
	if slot == 0 {
		return []string{s.Choices.Player1, s.Choices.Remaining}
	}
	return append([]string(nil), s.Choices.Player2...)
}

// primaryDeck is the deck that determines a slot's token archetype.
func primaryDeck(s *Session, slot int) string {
	if slot == 0 {
		return s.Choices.Player1
	}
	if len(s.Choices.Player2) > 0 {
		return s.Choices.Player2[0]
	}
	return ""
}

// deal builds each player's 30-card pool from their assigned decks, shuffles
// it, draws the opening hand, and derives the token pool. Runs exactly once,
// after deck selection completes and both players are ready.
func (c *Coordinator) deal(s *Session) []Envelope {
	var out []Envelope

	for slot := range s.Players {
		ps := &s.Players[slot]

		var pool []CardInstance
		for _, deckID := range assignedDecks(s, slot) {
			list, ok := c.cat.DeckList(deckID)
			if !ok {
				continue
			}
			for _, cardID := range list {
				pool = append(pool, CardInstance{InstanceID: uuid.NewString(), CardID: cardID})
			}
		}

		c.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		pool = resizePool(pool)

		ps.Hand = append([]CardInstance(nil), pool[:OpeningHandSize]...)
		ps.Deck = append([]CardInstance(nil), pool[OpeningHandSize:]...)
		ps.Graveyard = nil
		ps.Field = [FieldWidth]*CardInstance{}
		ps.LifePoints = StartingLife
		ps.MustDiscard = false
		ps.HasPlayedCard = false

		if tok, ok := c.cat.Token(primaryDeck(s, slot)); ok {
			ps.TokenType = tok.Type
			ps.TokenCount = tok.Count
			if limit := TokenCap(tok.Type); ps.TokenCount > limit {
				ps.TokenCount = limit
			}
		}
	}

	s.Dealt = true
	s.Turn = 1
	s.Phase = PhaseStandby

	for slot := range s.Participants {
		p := &s.Participants[slot]
		if !p.Connected {
			continue
		}
		ps := &s.Players[slot]
		out = append(out, to(p.ConnID, gamedto.EvtInitializeDeck, gamedto.InitializeDeckEvent{
			Deck:        cardViews(ps.Deck),
			InitialDraw: cardViews(ps.Hand),
			TokenType:   ps.TokenType,
			TokenCount:  ps.TokenCount,
		}))
	}
	out = append(out, c.broadcast(s, gamedto.EvtUpdatePhase, gamedto.UpdatePhaseEvent{
		Phase: string(s.Phase), Turn: s.Turn,
	})...)
	out = append(out, c.stateViews(s)...)
	if p := &s.Participants[s.ActiveSlot]; p.Connected {
		out = append(out, to(p.ConnID, gamedto.EvtYourTurn, nil))
	}

	obslog.L().Info("session_deal",
		zap.String("session_id", s.ID),
		zap.Strings("p1_decks", assignedDecks(s, 0)),
		zap.Strings("p2_decks", assignedDecks(s, 1)),
	)
	return out
}

// resizePool applies the deck-building rule: the pool is truncated to
// DeckSize, or cycled back over itself when the assigned decks come up short.
// Expanded copies get fresh instance ids so zone moves stay unambiguous.
func resizePool(pool []CardInstance) []CardInstance {
	if len(pool) >= DeckSize {
		return pool[:DeckSize]
	}
	if len(pool) == 0 {
		return pool
	}
	out := pool
	for i := 0; len(out) < DeckSize; i++ {
		src := pool[i%len(pool)]
		out = append(out, CardInstance{InstanceID: uuid.NewString(), CardID: src.CardID})
	}
	return out
}
