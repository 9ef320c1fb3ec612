package rest

import (
	"context"
	"encoding/json"
	mrand "math/rand"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/TempoXqc/projectNexus-sub000/internal/catalog"
	"github.com/TempoXqc/projectNexus-sub000/internal/directory"
	"github.com/TempoXqc/projectNexus-sub000/internal/game"
	"github.com/TempoXqc/projectNexus-sub000/internal/store"
	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

func newTestServer(t *testing.T) (*Server, *game.Coordinator) {
	t.Helper()
	cat, err := catalog.New("")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	coord := game.NewCoordinator(store.NewMemory(), directory.New(), cat, mrand.New(mrand.NewSource(1)))
	return New(coord), coord
}

func doGet(s *Server, path string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.SetRequestURI(path)
	req.Header.SetMethod(fasthttp.MethodGet)
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.handle(ctx)
	return ctx
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := doGet(s, "/healthz")
	if ctx.Response.StatusCode() != fasthttp.StatusOK || string(ctx.Response.Body()) != "ok" {
		t.Fatalf("healthz: %d %q", ctx.Response.StatusCode(), ctx.Response.Body())
	}
}

func TestListSessions(t *testing.T) {
	s, coord := newTestServer(t)
	if _, err := coord.CreateGame(context.Background(), "c1"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	ctx := doGet(s, "/sessions")
	if ctx.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("status %d", ctx.Response.StatusCode())
	}
	var out gamedto.ActiveGamesUpdateEvent
	if err := json.Unmarshal(ctx.Response.Body(), &out); err != nil {
		t.Fatalf("body: %v", err)
	}
	if len(out.Sessions) != 1 || out.Sessions[0].Status != string(game.StatusWaiting) {
		t.Fatalf("sessions: %+v", out.Sessions)
	}
}

func TestSessionLookup(t *testing.T) {
	s, coord := newTestServer(t)
	envs, err := coord.CreateGame(context.Background(), "c1")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	var id string
	for _, e := range envs {
		if e.Event == gamedto.EvtGameStart {
			id = e.Payload.(gamedto.GameStartEvent).SessionID
		}
	}

	ctx := doGet(s, "/sessions/"+id)
	var ev gamedto.GameExistsEvent
	if err := json.Unmarshal(ctx.Response.Body(), &ev); err != nil {
		t.Fatalf("body: %v", err)
	}
	if !ev.Exists || ev.SessionID != id {
		t.Fatalf("lookup: %+v", ev)
	}

	ctx = doGet(s, "/sessions/zzzzzz")
	if err := json.Unmarshal(ctx.Response.Body(), &ev); err != nil {
		t.Fatalf("body: %v", err)
	}
	if ev.Exists {
		t.Fatalf("unknown session reported live")
	}
}

func TestUnknownPathAndMethod(t *testing.T) {
	s, _ := newTestServer(t)

	if ctx := doGet(s, "/nope"); ctx.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.Response.StatusCode())
	}

	var req fasthttp.Request
	req.SetRequestURI("/sessions")
	req.Header.SetMethod(fasthttp.MethodPost)
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.handle(ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", ctx.Response.StatusCode())
	}
}
