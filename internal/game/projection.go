package game

import "github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"

// ProjectFor converts the authoritative session into the view for one slot.
// The viewer's own zones are fully visible; the opponent's hand becomes
// opaque placeholders of the same length and their deck collapses to a
// count. Field and graveyard are public either way.
func ProjectFor(s *Session, slot int) gamedto.GameStateView {
	you := &s.Players[slot]
	opp := &s.Players[Opponent(slot)]

	return gamedto.GameStateView{
		SessionID: s.ID,
		YourSlot:  slot,
		You: gamedto.OwnSideView{
			Hand:          cardViews(you.Hand),
			DeckCount:     len(you.Deck),
			Field:         fieldViews(&you.Field),
			Graveyard:     cardViews(you.Graveyard),
			LifePoints:    you.LifePoints,
			TokenType:     you.TokenType,
			TokenCount:    you.TokenCount,
			MustDiscard:   you.MustDiscard,
			HasPlayedCard: you.HasPlayedCard,
		},
		Opponent: gamedto.OpponentSideView{
			Hand:       hiddenViews(len(opp.Hand)),
			DeckCount:  len(opp.Deck),
			Field:      fieldViews(&opp.Field),
			Graveyard:  cardViews(opp.Graveyard),
			LifePoints: opp.LifePoints,
			TokenType:  opp.TokenType,
			TokenCount: opp.TokenCount,
		},
		Turn:       s.Turn,
		Phase:      string(s.Phase),
		ActiveSlot: s.ActiveSlot,
		GameOver:   s.GameOver,
		WinnerSlot: s.WinnerSlot,
	}
}

func cardView(c CardInstance) gamedto.CardView {
	return gamedto.CardView{InstanceID: c.InstanceID, CardID: c.CardID, Exhausted: c.Exhausted}
}

func cardViews(cards []CardInstance) []gamedto.CardView {
	out := make([]gamedto.CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardView(c))
	}
	return out
}

func fieldViews(field *[FieldWidth]*CardInstance) []*gamedto.CardView {
	out := make([]*gamedto.CardView, FieldWidth)
	for i, c := range field {
		if c != nil {
			v := cardView(*c)
			out[i] = &v
		}
	}
	return out
}

func hiddenViews(n int) []gamedto.HiddenCard {
	out := make([]gamedto.HiddenCard, n)
	for i := range out {
		out[i].Hidden = true
	}
	return out
}
