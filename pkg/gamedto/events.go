package gamedto

import "time"

// Outbound event names.
const (
	EvtGameStart            = "gameStart"
	EvtDeckSelectionUpdate  = "deckSelectionUpdate"
	EvtDeckSelectionDone    = "deckSelectionDone"
	EvtBothPlayersReady     = "bothPlayersReady"
	EvtInitializeDeck       = "initializeDeck"
	EvtUpdateGameState      = "updateGameState"
	EvtUpdatePhase          = "updatePhase"
	EvtEndTurn              = "endTurn"
	EvtYourTurn             = "yourTurn"
	EvtError                = "error"
	EvtOpponentDisconnected = "opponentDisconnected"
	EvtActiveGamesUpdate    = "activeGamesUpdate"
	EvtChatMessage          = "chatMessage"
	EvtGameOver             = "gameOver"
	EvtGameExists           = "checkGameExists"
)

// Outbound is the transport envelope for server events.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type GameStartEvent struct {
	SessionID      string      `json:"sessionId"`
	Slot           int         `json:"slot"`
	ResumeKey      string      `json:"resumeKey"`
	ChatHistory    []ChatEntry `json:"chatHistory"`
	AvailableDecks []string    `json:"availableDecks"`
}

type DeckSelectionUpdateEvent struct {
	Player1Choice  string   `json:"player1Choice,omitempty"`
	Player2Choices []string `json:"player2Choices"`
}

type DeckSelectionDoneEvent struct {
	Player1DeckID  string   `json:"player1DeckId"`
	Player2DeckIDs []string `json:"player2DeckIds"`
	SelectedDecks  []string `json:"selectedDecks"`
}

// InitializeDeckEvent is private to its recipient: it carries the full
// identity of the player's own shuffled deck and opening hand.
type InitializeDeckEvent struct {
	Deck        []CardView `json:"deck"`
	InitialDraw []CardView `json:"initialDraw"`
	TokenType   string     `json:"tokenType,omitempty"`
	TokenCount  int        `json:"tokenCount"`
}

type UpdatePhaseEvent struct {
	Phase string `json:"phase"`
	Turn  int    `json:"turn"`
}

type ErrorEvent struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type OpponentDisconnectedEvent struct {
	Slot int `json:"slot"`
}

type ChatEntry struct {
	Slot int       `json:"slot"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

type GameOverEvent struct {
	WinnerSlot int    `json:"winnerSlot"`
	Reason     string `json:"reason"`
}

type GameExistsEvent struct {
	SessionID string `json:"sessionId"`
	Exists    bool   `json:"exists"`
}

type ActiveGamesUpdateEvent struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionSummary is the lobby-visible slice of a session.
type SessionSummary struct {
	SessionID        string    `json:"sessionId"`
	Status           string    `json:"status"`
	ParticipantCount int       `json:"participantCount"`
	CreatedAt        time.Time `json:"createdAt"`
}
