package gamedto

import "encoding/json"

// Inbound is the transport envelope for client actions.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound message names.
const (
	MsgCreateGame      = "createGame"
	MsgJoinGame        = "joinGame"
	MsgRejoinGame      = "rejoinGame"
	MsgChooseDeck      = "chooseDeck"
	MsgPlayerReady     = "playerReady"
	MsgPlayCard        = "playCard"
	MsgExhaustCard     = "exhaustCard"
	MsgAttackCard      = "attackCard"
	MsgDrawCard        = "drawCard"
	MsgUpdatePhase     = "updatePhase"
	MsgSendMessage     = "sendMessage"
	MsgCheckGameExists = "checkGameExists"
	MsgJoinLobby       = "joinLobby"
	MsgLeaveLobby      = "leaveLobby"
)

type JoinGameRequest struct {
	SessionID string `json:"sessionId"`
}

type RejoinGameRequest struct {
	SessionID string `json:"sessionId"`
	ResumeKey string `json:"resumeKey"`
}

type ChooseDeckRequest struct {
	SessionID string `json:"sessionId"`
	DeckID    string `json:"deckId"`
}

type PlayerReadyRequest struct {
	SessionID string `json:"sessionId"`
}

type PlayCardRequest struct {
	SessionID  string `json:"sessionId"`
	CardID     string `json:"cardId"`
	FieldIndex int    `json:"fieldIndex"`
}

type ExhaustCardRequest struct {
	SessionID  string `json:"sessionId"`
	CardID     string `json:"cardId"`
	FieldIndex int    `json:"fieldIndex"`
}

type AttackCardRequest struct {
	SessionID  string `json:"sessionId"`
	CardID     string `json:"cardId"`
	FieldIndex int    `json:"fieldIndex"`
}

type DrawCardRequest struct {
	SessionID string `json:"sessionId"`
}

// UpdatePhaseRequest carries the client-proposed phase/turn. The server
// re-validates and is authoritative; the proposed values are advisory only.
type UpdatePhaseRequest struct {
	SessionID string `json:"sessionId"`
	Phase     string `json:"phase,omitempty"`
	Turn      int    `json:"turn,omitempty"`
}

type SendMessageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

type CheckGameExistsRequest struct {
	SessionID string `json:"sessionId"`
}
