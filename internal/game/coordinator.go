package game

import (
	"context"
	"crypto/rand"
	"errors"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/catalog"
	"github.com/TempoXqc/projectNexus-sub000/internal/directory"
	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
	"github.com/TempoXqc/projectNexus-sub000/internal/results"
	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

const (
	idLetters  = "abcdefghjkmnpqrstuvwxyz23456789"
	idLength   = 6
	idAttempts = 5

	winReasonLife       = "life"
	winReasonDisconnect = "disconnect"
)

// Coordinator owns the session state machine. It holds no authoritative
// state itself: every operation is read-modify-persist against the injected
// store, serialized per session. Operations return the event envelopes the
// transport must deliver; an error is delivered to the offender only.
type Coordinator struct {
	store SessionStore
	dir   *directory.Directory
	cat   *catalog.Catalog

	results results.Repository

	rngMu sync.Mutex
	rng   *mrand.Rand

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	maxSessions    int
	reconnectGrace time.Duration
}

func NewCoordinator(st SessionStore, dir *directory.Directory, cat *catalog.Catalog, rng *mrand.Rand) *Coordinator {
	return &Coordinator{
		store:          st,
		dir:            dir,
		cat:            cat,
		rng:            rng,
		locks:          make(map[string]*sync.Mutex),
		maxSessions:    200,
		reconnectGrace: 60 * time.Second,
	}
}

// AttachResults wires a repository for persisting finished match results.
func (c *Coordinator) AttachResults(r results.Repository) {
	if c != nil {
		c.results = r
	}
}

func (c *Coordinator) SetMaxSessions(n int) {
	if n > 0 {
		c.maxSessions = n
	}
}

// SetReconnectGrace controls how long a session survives a disconnect.
// Zero means teardown immediately.
func (c *Coordinator) SetReconnectGrace(d time.Duration) {
	if d >= 0 {
		c.reconnectGrace = d
	}
}

// ReconnectGrace exposes the policy for the sweeper.
func (c *Coordinator) ReconnectGrace() time.Duration { return c.reconnectGrace }

// lockFor serializes all mutations against one session id. Operations on
// different sessions proceed concurrently.
func (c *Coordinator) lockFor(id string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	mu, ok := c.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[id] = mu
	}
	return mu
}

func (c *Coordinator) dropLock(id string) {
	c.locksMu.Lock()
	delete(c.locks, id)
	c.locksMu.Unlock()
}

func (c *Coordinator) shuffle(n int, swap func(i, j int)) {
	c.rngMu.Lock()
	c.rng.Shuffle(n, swap)
	c.rngMu.Unlock()
}

func (c *Coordinator) randomDecks(n int) []string {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.cat.RandomDecks(n, c.rng)
}

// load fetches a session, retrying once on a store failure before
// surfacing it as transient.
func (c *Coordinator) load(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, gamedto.NotFound("session id required")
	}
	s, err := c.store.Get(ctx, id)
	if err != nil {
		s, err = c.store.Get(ctx, id)
	}
	if err != nil {
		obslog.L().Warn("session_load_error", zap.String("session_id", id), zap.Error(err))
		return nil, gamedto.Transient("session store unavailable")
	}
	if s == nil {
		return nil, gamedto.NotFound("session not found")
	}
	return s, nil
}

func (c *Coordinator) save(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	if err := c.store.Save(ctx, s); err != nil {
		obslog.L().Error("session_save_error", zap.String("session_id", s.ID), zap.Error(err))
		return gamedto.Transient("session store unavailable")
	}
	return nil
}

// seat authorizes a connection for a session-scoped action.
func (c *Coordinator) seat(connID, sessionID string) (directory.Seat, error) {
	st, ok := c.dir.Lookup(connID)
	if !ok || st.SessionID != strings.TrimSpace(sessionID) {
		return directory.Seat{}, gamedto.Unauthorized("connection not seated in this session")
	}
	return st, nil
}

// broadcast addresses an event to every connected participant.
func (c *Coordinator) broadcast(s *Session, event string, payload any) []Envelope {
	var out []Envelope
	for i := range s.Participants {
		if s.Participants[i].Connected {
			out = append(out, to(s.Participants[i].ConnID, event, payload))
		}
	}
	return out
}

// stateViews re-projects the session for both players. A change to one hand
// changes the other player's placeholder count, so both always refresh.
func (c *Coordinator) stateViews(s *Session) []Envelope {
	var out []Envelope
	for slot := range s.Participants {
		if s.Participants[slot].Connected {
			out = append(out, to(s.Participants[slot].ConnID, gamedto.EvtUpdateGameState, ProjectFor(s, slot)))
		}
	}
	return out
}

// CreateGame allocates a fresh session with the requester at slot 0.
func (c *Coordinator) CreateGame(ctx context.Context, connID string) ([]Envelope, error) {
	if _, seated := c.dir.Lookup(connID); seated {
		return nil, gamedto.Conflict("already seated in a session")
	}
	if c.maxSessions > 0 {
		if live, err := c.store.ListActive(ctx); err == nil && len(live) >= c.maxSessions {
			return nil, gamedto.Conflict("server at session capacity")
		}
	}

	s := &Session{
		Status:         StatusWaiting,
		AvailableDecks: c.randomDecks(SampledDecks),
		Turn:           1,
		Phase:          PhaseStandby,
		WinnerSlot:     -1,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	s.Participants[0] = Participant{ConnID: connID, ResumeKey: uuid.NewString(), Connected: true}
	for i := range s.Players {
		s.Players[i].LifePoints = StartingLife
	}

	var created bool
	for i := 0; i < idAttempts && !created; i++ {
		s.ID = newSessionID()
		switch err := c.store.Create(ctx, s); err {
		case nil:
			created = true
		case ErrSessionExists:
			continue
		default:
			obslog.L().Error("session_create_error", zap.Error(err))
			return nil, gamedto.Transient("session store unavailable")
		}
	}
	if !created {
		return nil, gamedto.Transient("failed to allocate session id")
	}

	c.dir.Bind(connID, s.ID, 0)
	obslog.L().Info("session_create",
		zap.String("session_id", s.ID),
		zap.String("conn_id", connID),
		zap.Strings("available_decks", s.AvailableDecks),
	)

	out := []Envelope{
		to(connID, gamedto.EvtGameStart, gamedto.GameStartEvent{
			SessionID:      s.ID,
			Slot:           0,
			ResumeKey:      s.Participants[0].ResumeKey,
			ChatHistory:    s.Chat,
			AvailableDecks: s.AvailableDecks,
		}),
		lobbyRefresh(),
	}
	return out, nil
}

// JoinGame seats the requester at slot 1 and starts the session.
func (c *Coordinator) JoinGame(ctx context.Context, connID, sessionID string) ([]Envelope, error) {
	if _, seated := c.dir.Lookup(connID); seated {
		return nil, gamedto.Conflict("already seated in a session")
	}

	mu := c.lockFor(strings.TrimSpace(sessionID))
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusWaiting || s.Participants[1].ResumeKey != "" {
		return nil, gamedto.Conflict("session already full")
	}

	s.Participants[1] = Participant{ConnID: connID, ResumeKey: uuid.NewString(), Connected: true}
	s.Status = StatusStarted
	s.ActiveSlot = 0
	if err := c.save(ctx, s); err != nil {
		return nil, err
	}

	c.dir.Bind(connID, s.ID, 1)
	obslog.L().Info("session_join", zap.String("session_id", s.ID), zap.String("conn_id", connID))

	out := []Envelope{
		to(connID, gamedto.EvtGameStart, gamedto.GameStartEvent{
			SessionID:      s.ID,
			Slot:           1,
			ResumeKey:      s.Participants[1].ResumeKey,
			ChatHistory:    s.Chat,
			AvailableDecks: s.AvailableDecks,
		}),
	}
	// both sides learn the selection stage is open
	out = append(out, c.broadcast(s, gamedto.EvtDeckSelectionUpdate, gamedto.DeckSelectionUpdateEvent{
		Player1Choice:  s.Choices.Player1,
		Player2Choices: append([]string{}, s.Choices.Player2...),
	})...)
	out = append(out, lobbyRefresh())
	return out, nil
}

// RejoinGame reseats a disconnected player under a new connection id. The
// resume key is the out-of-band identity that survives the transport.
func (c *Coordinator) RejoinGame(ctx context.Context, connID, sessionID, resumeKey string) ([]Envelope, error) {
	if _, seated := c.dir.Lookup(connID); seated {
		return nil, gamedto.Conflict("already seated in a session")
	}

	mu := c.lockFor(strings.TrimSpace(sessionID))
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	slot := -1
	for i := range s.Participants {
		if s.Participants[i].ResumeKey != "" && s.Participants[i].ResumeKey == strings.TrimSpace(resumeKey) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, gamedto.Unauthorized("resume key does not match this session")
	}
	if s.Participants[slot].Connected {
		return nil, gamedto.Conflict("seat is still connected")
	}

	s.Participants[slot].ConnID = connID
	s.Participants[slot].Connected = true
	allConnected := true
	for i := range s.Participants {
		if s.Participants[i].ResumeKey != "" && !s.Participants[i].Connected {
			allConnected = false
		}
	}
	if allConnected {
		s.DisconnectedAt = nil
	}
	if err := c.save(ctx, s); err != nil {
		return nil, err
	}

	c.dir.Bind(connID, s.ID, slot)
	obslog.L().Info("session_rejoin",
		zap.String("session_id", s.ID),
		zap.String("conn_id", connID),
		zap.Int("slot", slot),
	)

	out := []Envelope{
		to(connID, gamedto.EvtGameStart, gamedto.GameStartEvent{
			SessionID:      s.ID,
			Slot:           slot,
			ResumeKey:      s.Participants[slot].ResumeKey,
			ChatHistory:    s.Chat,
			AvailableDecks: s.AvailableDecks,
		}),
	}
	if s.Dealt {
		out = append(out, c.stateViews(s)...)
	}
	return out, nil
}

// ChooseDeck applies one pick of the deck-selection protocol.
func (c *Coordinator) ChooseDeck(ctx context.Context, connID string, req gamedto.ChooseDeckRequest) ([]Envelope, error) {
	st, err := c.seat(connID, req.SessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != StatusStarted {
		return nil, gamedto.IllegalState("deck selection requires both players")
	}
	if s.Choices.Done {
		return nil, gamedto.IllegalState("deck selection already complete")
	}

	deckID := strings.TrimSpace(req.DeckID)
	if !contains(s.AvailableDecks, deckID) {
		return nil, gamedto.IllegalState("deck is not in this session's sample")
	}

	switch st.Slot {
	case 0:
		if s.Choices.Player1 != "" {
			return nil, gamedto.Conflict("player 1 already picked")
		}
		if contains(s.Choices.Player2, deckID) {
			return nil, gamedto.Conflict("deck already taken by player 2")
		}
		s.Choices.Player1 = deckID
	default:
		if len(s.Choices.Player2) >= 2 {
			return nil, gamedto.Conflict("player 2 already picked twice")
		}
		if deckID == s.Choices.Player1 || contains(s.Choices.Player2, deckID) {
			return nil, gamedto.Conflict("deck already taken")
		}
		s.Choices.Player2 = append(s.Choices.Player2, deckID)
	}

	// on the third distinct pick the 4th deck is derived, never rolled
	if s.Choices.Player1 != "" && len(s.Choices.Player2) == 2 {
		for _, id := range s.AvailableDecks {
			if id != s.Choices.Player1 && !contains(s.Choices.Player2, id) {
				s.Choices.Remaining = id
				break
			}
		}
		s.Choices.Done = true
	}

	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	obslog.L().Info("deck_choose",
		zap.String("session_id", s.ID),
		zap.Int("slot", st.Slot),
		zap.String("deck_id", deckID),
		zap.Bool("done", s.Choices.Done),
	)

	out := c.broadcast(s, gamedto.EvtDeckSelectionUpdate, gamedto.DeckSelectionUpdateEvent{
		Player1Choice:  s.Choices.Player1,
		Player2Choices: append([]string{}, s.Choices.Player2...),
	})
	if s.Choices.Done {
		out = append(out, c.broadcast(s, gamedto.EvtDeckSelectionDone, gamedto.DeckSelectionDoneEvent{
			Player1DeckID:  s.Choices.Player1,
			Player2DeckIDs: append([]string{}, s.Choices.Player2...),
			SelectedDecks:  selectedDecks(s),
		})...)
		if s.Ready[0] && s.Ready[1] && !s.Dealt {
			out = append(out, c.deal(s)...)
			if err := c.save(ctx, s); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// SetReady marks a slot ready; idempotent. Dealing fires when both slots are
// ready and the selection protocol has completed.
func (c *Coordinator) SetReady(ctx context.Context, connID, sessionID string) ([]Envelope, error) {
	st, err := c.seat(connID, sessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if s.Ready[st.Slot] {
		return nil, nil
	}
	s.Ready[st.Slot] = true

	var out []Envelope
	if s.Ready[0] && s.Ready[1] {
		out = append(out, c.broadcast(s, gamedto.EvtBothPlayersReady, nil)...)
		if s.Choices.Done && !s.Dealt {
			out = append(out, c.deal(s)...)
		}
	}
	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	obslog.L().Info("player_ready", zap.String("session_id", s.ID), zap.Int("slot", st.Slot))
	return out, nil
}

// PlayCard moves a card hand -> field during the acting player's Main phase.
func (c *Coordinator) PlayCard(ctx context.Context, connID string, req gamedto.PlayCardRequest) ([]Envelope, error) {
	st, err := c.seat(connID, req.SessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if err := requirePlayable(s); err != nil {
		return nil, err
	}
	if s.ActiveSlot != st.Slot {
		return nil, gamedto.Unauthorized("not your turn")
	}
	if s.Phase != PhaseMain {
		return nil, gamedto.IllegalState("cards can only be played in the Main phase")
	}
	if req.FieldIndex < 0 || req.FieldIndex >= FieldWidth {
		return nil, gamedto.IllegalState("field index out of range")
	}
	ps := &s.Players[st.Slot]
	if ps.Field[req.FieldIndex] != nil {
		return nil, gamedto.IllegalState("field slot occupied")
	}
	inst, ok := removeFromHand(ps, req.CardID)
	if !ok {
		return nil, gamedto.IllegalState("card not in hand")
	}

	inst.Exhausted = false
	ps.Field[req.FieldIndex] = &inst
	ps.HasPlayedCard = true
	ps.MustDiscard = len(ps.Hand) >= MaxHandSize

	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	obslog.L().Info("play_card",
		zap.String("session_id", s.ID),
		zap.Int("slot", st.Slot),
		zap.String("card_id", inst.CardID),
		zap.Int("field_index", req.FieldIndex),
	)
	return c.stateViews(s), nil
}

// ExhaustCard toggles the exhausted flag of the acting player's field card.
func (c *Coordinator) ExhaustCard(ctx context.Context, connID string, req gamedto.ExhaustCardRequest) ([]Envelope, error) {
	st, err := c.seat(connID, req.SessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if err := requirePlayable(s); err != nil {
		return nil, err
	}
	if s.ActiveSlot != st.Slot {
		return nil, gamedto.Unauthorized("not your turn")
	}
	if s.Phase != PhaseMain {
		return nil, gamedto.IllegalState("cards can only be exhausted in the Main phase")
	}
	if req.FieldIndex < 0 || req.FieldIndex >= FieldWidth {
		return nil, gamedto.IllegalState("field index out of range")
	}
	inst := s.Players[st.Slot].Field[req.FieldIndex]
	if inst == nil {
		return nil, gamedto.IllegalState("no card at field index")
	}
	inst.Exhausted = !inst.Exhausted

	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	return c.stateViews(s), nil
}

// AttackCard resolves an attack in the Battle phase: the attacking unit is
// sent to its owner's graveyard. Opposing-target resolution lives outside
// this core.
func (c *Coordinator) AttackCard(ctx context.Context, connID string, req gamedto.AttackCardRequest) ([]Envelope, error) {
	st, err := c.seat(connID, req.SessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if err := requirePlayable(s); err != nil {
		return nil, err
	}
	if s.ActiveSlot != st.Slot {
		return nil, gamedto.Unauthorized("not your turn")
	}
	if s.Phase != PhaseBattle {
		return nil, gamedto.IllegalState("attacks are only legal in the Battle phase")
	}
	if req.FieldIndex < 0 || req.FieldIndex >= FieldWidth {
		return nil, gamedto.IllegalState("field index out of range")
	}
	ps := &s.Players[st.Slot]
	inst := ps.Field[req.FieldIndex]
	if inst == nil {
		return nil, gamedto.IllegalState("no card at field index")
	}

	ps.Field[req.FieldIndex] = nil
	moved := *inst
	moved.Exhausted = false
	ps.Graveyard = append(ps.Graveyard, moved)

	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	obslog.L().Info("attack_card",
		zap.String("session_id", s.ID),
		zap.Int("slot", st.Slot),
		zap.String("card_id", moved.CardID),
	)
	return c.stateViews(s), nil
}

// DrawCard draws from the acting player's deck, applying the token redirect
// rule when the opponent runs an assassin pool.
func (c *Coordinator) DrawCard(ctx context.Context, connID string, req gamedto.DrawCardRequest) ([]Envelope, error) {
	st, err := c.seat(connID, req.SessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if err := requirePlayable(s); err != nil {
		return nil, err
	}
	if s.ActiveSlot != st.Slot {
		return nil, gamedto.Unauthorized("not your turn")
	}
	if s.Phase != PhaseMain {
		return nil, gamedto.IllegalState("draws are only legal in the Main phase")
	}
	if len(s.Players[st.Slot].Deck) == 0 {
		return nil, gamedto.IllegalState("deck is empty")
	}
	if len(s.Players[st.Slot].Hand) >= MaxHandSize {
		return nil, gamedto.IllegalState("hand is full")
	}

	c.drawOne(s, st.Slot)

	if s.Players[st.Slot].LifePoints == 0 {
		return c.endGame(ctx, s, Opponent(st.Slot), winReasonLife), nil
	}
	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	return c.stateViews(s), nil
}

// drawOne moves the top deck card into the hand. A bare token card drawn
// against an assassin opponent is redirected: the drawer loses 2 life, the
// opponent's token pool grows by one (capped), the token card leaves play,
// and a single replacement is drawn when the deck still has cards.
func (c *Coordinator) drawOne(s *Session, slot int) {
	ps := &s.Players[slot]
	opp := &s.Players[Opponent(slot)]
	if len(ps.Deck) == 0 {
		return
	}

	top := ps.Deck[0]
	ps.Deck = ps.Deck[1:]

	def, _ := c.cat.Card(top.CardID)
	if def.Type == catalog.TypeToken && opp.TokenType == TokenAssassin {
		ps.LifePoints -= 2
		if ps.LifePoints < 0 {
			ps.LifePoints = 0
		}
		if opp.TokenCount < TokenCap(opp.TokenType) {
			opp.TokenCount++
		}
		obslog.L().Info("token_redirect",
			zap.String("session_id", s.ID),
			zap.Int("slot", slot),
			zap.Int("life", ps.LifePoints),
			zap.Int("opp_tokens", opp.TokenCount),
		)
		// the substitution happens once; an empty deck means no replacement
		if len(ps.Deck) > 0 {
			next := ps.Deck[0]
			ps.Deck = ps.Deck[1:]
			ps.Hand = append(ps.Hand, next)
		}
	} else {
		ps.Hand = append(ps.Hand, top)
	}
	ps.MustDiscard = len(ps.Hand) >= MaxHandSize
}

// AdvancePhase moves the phase forward in the fixed cycle. Leaving Battle
// triggers the end-of-turn sequence.
func (c *Coordinator) AdvancePhase(ctx context.Context, connID, sessionID string) ([]Envelope, error) {
	st, err := c.seat(connID, sessionID)
	if err != nil {
		return nil, err
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}
	if err := requirePlayable(s); err != nil {
		return nil, err
	}
	if s.ActiveSlot != st.Slot {
		return nil, gamedto.Unauthorized("only the active player may advance the phase")
	}

	var out []Envelope
	if s.Phase == PhaseBattle {
		out = c.endTurn(s)
		// the handoff draw can redirect; a drawer at 0 life ends the match
		if dead := s.ActiveSlot; s.Players[dead].LifePoints == 0 {
			return append(out, c.endGame(ctx, s, Opponent(dead), winReasonLife)...), nil
		}
	} else {
		s.Phase = s.Phase.Next()
		out = c.broadcast(s, gamedto.EvtUpdatePhase, gamedto.UpdatePhaseEvent{
			Phase: string(s.Phase), Turn: s.Turn,
		})
		out = append(out, c.stateViews(s)...)
	}
	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	return out, nil
}

// endTurn flips the active player, bumps the turn counter, readies all
// units, grants the incoming player a draw, and restarts the cycle.
func (c *Coordinator) endTurn(s *Session) []Envelope {
	s.ActiveSlot = Opponent(s.ActiveSlot)
	s.Turn++
	s.Phase = PhaseStandby
	for slot := range s.Players {
		ps := &s.Players[slot]
		ps.HasPlayedCard = false
		for i := range ps.Field {
			if ps.Field[i] != nil {
				ps.Field[i].Exhausted = false
			}
		}
	}
	if s.Turn > 1 && len(s.Players[s.ActiveSlot].Hand) < MaxHandSize {
		c.drawOne(s, s.ActiveSlot)
	}

	obslog.L().Info("end_turn",
		zap.String("session_id", s.ID),
		zap.Int("turn", s.Turn),
		zap.Int("active_slot", s.ActiveSlot),
	)

	out := c.broadcast(s, gamedto.EvtEndTurn, nil)
	out = append(out, c.broadcast(s, gamedto.EvtUpdatePhase, gamedto.UpdatePhaseEvent{
		Phase: string(s.Phase), Turn: s.Turn,
	})...)
	if p := &s.Participants[s.ActiveSlot]; p.Connected {
		out = append(out, to(p.ConnID, gamedto.EvtYourTurn, nil))
	}
	out = append(out, c.stateViews(s)...)
	return out
}

// SendChat appends to the bounded chat history and echoes to both players.
func (c *Coordinator) SendChat(ctx context.Context, connID string, req gamedto.SendMessageRequest) ([]Envelope, error) {
	st, err := c.seat(connID, req.SessionID)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, gamedto.IllegalState("empty chat message")
	}

	mu := c.lockFor(st.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, st.SessionID)
	if err != nil {
		return nil, err
	}

	entry := gamedto.ChatEntry{Slot: st.Slot, Text: text, At: time.Now()}
	s.Chat = append(s.Chat, entry)
	if len(s.Chat) > chatHistoryLimit {
		s.Chat = s.Chat[len(s.Chat)-chatHistoryLimit:]
	}
	if err := c.save(ctx, s); err != nil {
		return nil, err
	}
	return c.broadcast(s, gamedto.EvtChatMessage, entry), nil
}

// GameExists answers the lobby-side existence probe; unknown ids are a
// false answer, not an error.
func (c *Coordinator) GameExists(ctx context.Context, connID, sessionID string) ([]Envelope, error) {
	s, err := c.load(ctx, sessionID)
	if err != nil {
		var de gamedto.DomainError
		if errors.As(err, &de) && de.Code == gamedto.CodeNotFound {
			return []Envelope{to(connID, gamedto.EvtGameExists, gamedto.GameExistsEvent{SessionID: sessionID, Exists: false})}, nil
		}
		return nil, err
	}
	return []Envelope{to(connID, gamedto.EvtGameExists, gamedto.GameExistsEvent{SessionID: s.ID, Exists: true})}, nil
}

// HandleDisconnect vacates the seat behind a dropped connection. With a
// grace window the session survives for RejoinGame; without one, or when
// nobody is left, the session is torn down and the surviving player wins a
// started match.
func (c *Coordinator) HandleDisconnect(ctx context.Context, connID string) []Envelope {
	seat, ok := c.dir.Unbind(connID)
	if !ok {
		return nil
	}

	mu := c.lockFor(seat.SessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := c.load(ctx, seat.SessionID)
	if err != nil {
		return []Envelope{lobbyRefresh()}
	}

	if slot := seat.Slot; slot >= 0 && slot < len(s.Participants) {
		s.Participants[slot].Connected = false
		s.Participants[slot].ConnID = ""
	}
	now := time.Now()
	s.DisconnectedAt = &now

	obslog.L().Info("session_disconnect",
		zap.String("session_id", s.ID),
		zap.Int("slot", seat.Slot),
	)

	out := c.broadcast(s, gamedto.EvtOpponentDisconnected, gamedto.OpponentDisconnectedEvent{Slot: seat.Slot})

	anyConnected := false
	for i := range s.Participants {
		if s.Participants[i].Connected {
			anyConnected = true
		}
	}

	if c.reconnectGrace <= 0 || !anyConnected {
		if s.Status == StatusStarted && s.Dealt && !s.GameOver && anyConnected {
			out = append(out, c.endGame(ctx, s, Opponent(seat.Slot), winReasonDisconnect)...)
		} else {
			c.teardown(ctx, s)
		}
		out = append(out, lobbyRefresh())
		return out
	}

	if err := c.save(ctx, s); err == nil {
		out = append(out, lobbyRefresh())
	}
	return out
}

// endGame finalizes a session: broadcasts the outcome, persists the result
// when a repository is attached, and removes the record.
func (c *Coordinator) endGame(ctx context.Context, s *Session, winner int, reason string) []Envelope {
	s.GameOver = true
	s.WinnerSlot = winner

	out := c.stateViews(s)
	out = append(out, c.broadcast(s, gamedto.EvtGameOver, gamedto.GameOverEvent{WinnerSlot: winner, Reason: reason})...)

	if c.results != nil {
		res := &results.MatchResult{
			SessionID:  s.ID,
			WinnerSlot: winner,
			Reason:     reason,
			Turns:      s.Turn,
			StartedAt:  s.CreatedAt,
			EndedAt:    time.Now(),
		}
		if err := c.results.SaveResult(ctx, res); err != nil {
			obslog.L().Error("result_persist_error", zap.String("session_id", s.ID), zap.Error(err))
		} else {
			obslog.L().Info("result_persist", zap.String("session_id", s.ID), zap.Int("winner_slot", winner), zap.String("reason", reason))
		}
	}

	c.teardown(ctx, s)
	out = append(out, lobbyRefresh())

	obslog.L().Info("session_end",
		zap.String("session_id", s.ID),
		zap.Int("winner_slot", winner),
		zap.String("reason", reason),
		zap.Int("turns", s.Turn),
	)
	return out
}

// teardown removes the session record and all seat bindings.
func (c *Coordinator) teardown(ctx context.Context, s *Session) {
	if err := c.store.Delete(ctx, s.ID); err != nil {
		obslog.L().Warn("session_delete_error", zap.String("session_id", s.ID), zap.Error(err))
	}
	c.dir.DropSession(s.ID)
	c.dropLock(s.ID)
}

// Sweep purges idle never-started sessions and sessions whose disconnect
// grace has lapsed. Called by the periodic sweeper, not the action path.
func (c *Coordinator) Sweep(ctx context.Context, idleRetention time.Duration) (int, error) {
	live, err := c.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	purged := 0
	now := time.Now()
	for _, s := range live {
		stale := s.Status == StatusWaiting && now.Sub(s.CreatedAt) > idleRetention
		graceLapsed := s.DisconnectedAt != nil && now.Sub(*s.DisconnectedAt) > c.reconnectGrace
		if !stale && !graceLapsed {
			continue
		}
		mu := c.lockFor(s.ID)
		mu.Lock()
		c.teardown(ctx, s)
		mu.Unlock()
		purged++
		obslog.L().Info("session_sweep",
			zap.String("session_id", s.ID),
			zap.Bool("stale", stale),
			zap.Bool("grace_lapsed", graceLapsed),
		)
	}
	return purged, nil
}

// ActiveSummaries feeds the lobby broadcaster and REST reads.
func (c *Coordinator) ActiveSummaries(ctx context.Context) ([]gamedto.SessionSummary, error) {
	live, err := c.store.ListActive(ctx)
	if err != nil {
		return nil, gamedto.Transient("session store unavailable")
	}
	out := make([]gamedto.SessionSummary, 0, len(live))
	for _, s := range live {
		out = append(out, s.Summary())
	}
	return out, nil
}

// requirePlayable gates in-game actions on a dealt, unfinished match.
func requirePlayable(s *Session) error {
	if s.Status != StatusStarted || !s.Dealt {
		return gamedto.IllegalState("match has not started")
	}
	if s.GameOver {
		return gamedto.IllegalState("match is over")
	}
	return nil
}

func removeFromHand(ps *PlayerState, cardID string) (CardInstance, bool) {
	for i := range ps.Hand {
		if ps.Hand[i].CardID == cardID || ps.Hand[i].InstanceID == cardID {
			inst := ps.Hand[i]
			ps.Hand = append(ps.Hand[:i], ps.Hand[i+1:]...)
			return inst, true
		}
	}
	return CardInstance{}, false
}

func selectedDecks(s *Session) []string {
	out := []string{s.Choices.Player1}
	out = append(out, s.Choices.Player2...)
	if s.Choices.Remaining != "" {
		out = append(out, s.Choices.Remaining)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// newSessionID returns a short lowercase alphanumeric token. Ambiguous
// glyphs are excluded from the alphabet.
func newSessionID() string {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		// extremely unlikely; fall back to uuid material
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
	}
	for i := range b {
		b[i] = idLetters[int(b[i])%len(idLetters)]
	}
	return string(b)
}
