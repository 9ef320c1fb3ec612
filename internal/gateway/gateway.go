// Package gateway is the bidirectional transport: it owns the websocket
// connections, feeds inbound actions to the coordinator, and fans the
// returned envelopes out. All game legality lives behind it; the gateway
// never inspects session state.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
	"github.com/TempoXqc/projectNexus-sub000/internal/lobby"
	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

const writeTimeout = 10 * time.Second

type conn struct {
	id string
	ws *websocket.Conn

	writeMu sync.Mutex
}

type Gateway struct {
	coord *game.Coordinator
	lobby *lobby.Broadcaster

	mu    sync.RWMutex
	conns map[string]*conn
}

func New(coord *game.Coordinator) *Gateway {
	return &Gateway{coord: coord, conns: make(map[string]*conn)}
}

// AttachLobby wires the broadcaster; it is constructed after the gateway
// because it sends through it.
func (g *Gateway) AttachLobby(lb *lobby.Broadcaster) {
	if g != nil {
		g.lobby = lb
	}
}

// Send delivers one event to one connection. Unknown connections are
// dropped silently; the peer may have just disconnected.
func (g *Gateway) Send(connID, event string, payload any) {
	g.mu.RLock()
	c, ok := g.conns[connID]
	g.mu.RUnlock()
	if !ok {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c.ws, gamedto.Outbound{Type: event, Data: payload}); err != nil {
		obslog.L().Debug("ws_write_error", zap.String("conn_id", connID), zap.Error(err))
	}
}

// ServeHTTP upgrades the connection and runs its read loop until the peer
// goes away.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		OriginPatterns:  []string{"*"},
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.Error(err))
		return
	}

	c := &conn{id: uuid.NewString(), ws: ws}
	g.mu.Lock()
	g.conns[c.id] = c
	g.mu.Unlock()
	obslog.L().Info("ws_connect", zap.String("conn_id", c.id))

	defer func() {
		g.mu.Lock()
		delete(g.conns, c.id)
		g.mu.Unlock()
		if g.lobby != nil {
			g.lobby.Unsubscribe(c.id)
		}
		g.deliver(g.coord.HandleDisconnect(context.Background(), c.id))
		_ = ws.Close(websocket.StatusNormalClosure, "bye")
		obslog.L().Info("ws_disconnect", zap.String("conn_id", c.id))
	}()

	ctx := r.Context()
	for {
		var msg gamedto.Inbound
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			return
		}
		g.dispatch(ctx, c.id, msg)
	}
}

func (g *Gateway) dispatch(ctx context.Context, connID string, msg gamedto.Inbound) {
	envs, err := g.route(ctx, connID, msg)
	if err != nil {
		// validation failures go to the offender only, never the opponent
		var de gamedto.DomainError
		code := ""
		if errors.As(err, &de) {
			code = de.Code
		}
		obslog.L().Info("action_rejected",
			zap.String("conn_id", connID),
			zap.String("action", msg.Type),
			zap.String("code", code),
			zap.String("reason", err.Error()),
		)
		g.Send(connID, gamedto.EvtError, gamedto.ErrorEvent{Code: code, Message: err.Error()})
		return
	}
	g.deliver(envs)
}

func (g *Gateway) route(ctx context.Context, connID string, msg gamedto.Inbound) ([]game.Envelope, error) {
	switch msg.Type {
	case gamedto.MsgCreateGame:
		return g.coord.CreateGame(ctx, connID)

	case gamedto.MsgJoinGame:
		var req gamedto.JoinGameRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.JoinGame(ctx, connID, req.SessionID)

	case gamedto.MsgRejoinGame:
		var req gamedto.RejoinGameRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.RejoinGame(ctx, connID, req.SessionID, req.ResumeKey)

	case gamedto.MsgChooseDeck:
		var req gamedto.ChooseDeckRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.ChooseDeck(ctx, connID, req)

	case gamedto.MsgPlayerReady:
		var req gamedto.PlayerReadyRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.SetReady(ctx, connID, req.SessionID)

	case gamedto.MsgPlayCard:
		var req gamedto.PlayCardRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.PlayCard(ctx, connID, req)

	case gamedto.MsgExhaustCard:
		var req gamedto.ExhaustCardRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.ExhaustCard(ctx, connID, req)

	case gamedto.MsgAttackCard:
		var req gamedto.AttackCardRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.AttackCard(ctx, connID, req)

	case gamedto.MsgDrawCard:
		var req gamedto.DrawCardRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.DrawCard(ctx, connID, req)

	case gamedto.MsgUpdatePhase:
		// client-proposed phase/turn are advisory; the server walks the
		// cycle itself
		var req gamedto.UpdatePhaseRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.AdvancePhase(ctx, connID, req.SessionID)

	case gamedto.MsgSendMessage:
		var req gamedto.SendMessageRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.SendChat(ctx, connID, req)

	case gamedto.MsgCheckGameExists:
		var req gamedto.CheckGameExistsRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return g.coord.GameExists(ctx, connID, req.SessionID)

	case gamedto.MsgJoinLobby:
		if g.lobby != nil {
			g.lobby.Subscribe(ctx, connID)
		}
		return nil, nil

	case gamedto.MsgLeaveLobby:
		if g.lobby != nil {
			g.lobby.Unsubscribe(connID)
		}
		return nil, nil

	default:
		return nil, gamedto.IllegalState("unknown action: " + msg.Type)
	}
}

// deliver fans envelopes out: direct sends go to their connection, the
// lobby sentinel becomes a debounced refresh.
func (g *Gateway) deliver(envs []game.Envelope) {
	for _, env := range envs {
		if env.To == game.ToLobby {
			if g.lobby != nil {
				g.lobby.Schedule()
			}
			continue
		}
		g.Send(env.To, env.Event, env.Payload)
	}
}

func decode(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return gamedto.IllegalState("missing payload")
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return gamedto.IllegalState("malformed payload")
	}
	return nil
}
