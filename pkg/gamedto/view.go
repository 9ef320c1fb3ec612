package gamedto

// CardView is a fully-visible card instance in a zone.
type CardView struct {
	InstanceID string `json:"instanceId"`
	CardID     string `json:"cardId"`
	Exhausted  bool   `json:"exhausted"`
}

// HiddenCard is the opaque placeholder standing in for an opponent hand card.
// It reveals position and count, never identity.
type HiddenCard struct {
	Hidden bool `json:"hidden"`
}

// OwnSideView is the viewer's half of the board, fully visible.
type OwnSideView struct {
	Hand          []CardView  `json:"hand"`
	DeckCount     int         `json:"deckCount"`
	Field         []*CardView `json:"field"`
	Graveyard     []CardView  `json:"graveyard"`
	LifePoints    int         `json:"lifePoints"`
	TokenType     string      `json:"tokenType,omitempty"`
	TokenCount    int         `json:"tokenCount"`
	MustDiscard   bool        `json:"mustDiscard"`
	HasPlayedCard bool        `json:"hasPlayedCard"`
}

// OpponentSideView redacts hidden zones: the hand becomes placeholders of the
// same length and the deck collapses to a count. Field and graveyard stay
// public.
type OpponentSideView struct {
	Hand       []HiddenCard `json:"hand"`
	DeckCount  int          `json:"deckCount"`
	Field      []*CardView  `json:"field"`
	Graveyard  []CardView   `json:"graveyard"`
	LifePoints int          `json:"lifePoints"`
	TokenType  string       `json:"tokenType,omitempty"`
	TokenCount int          `json:"tokenCount"`
}

// GameStateView is the per-player projection broadcast after every mutation.
type GameStateView struct {
	SessionID  string           `json:"sessionId"`
	YourSlot   int              `json:"yourSlot"`
	You        OwnSideView      `json:"you"`
	Opponent   OpponentSideView `json:"opponent"`
	Turn       int              `json:"turn"`
	Phase      string           `json:"phase"`
	ActiveSlot int              `json:"activeSlot"`
	GameOver   bool             `json:"gameOver"`
	WinnerSlot int              `json:"winnerSlot"`
}
