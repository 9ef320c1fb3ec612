// Package rest exposes the read-only HTTP surface: health and active-session
// lookups for lobby browsers that have not opened a websocket yet.
package rest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
	"github.com/TempoXqc/projectNexus-sub000/pkg/gamedto"
)

type Server struct {
	coord *game.Coordinator
	srv   *fasthttp.Server
}

func New(coord *game.Coordinator) *Server {
	s := &Server{coord: coord}
	s.srv = &fasthttp.Server{
		Handler:          s.handle,
		Name:             "nexus-rest",
		DisableKeepalive: false,
	}
	return s
}

// ListenAndServe blocks; callers run it in a goroutine.
func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("rest_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Shutdown() error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown()
}

func (s *Server) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	switch {
	case path == "/healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")

	case path == "/sessions":
		sessions, err := s.coord.ActiveSummaries(context.Background())
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		writeJSON(ctx, gamedto.ActiveGamesUpdateEvent{Sessions: sessions})

	case strings.HasPrefix(path, "/sessions/"):
		id := strings.TrimPrefix(path, "/sessions/")
		envs, err := s.coord.GameExists(context.Background(), "", id)
		if err != nil || len(envs) == 0 {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		writeJSON(ctx, envs[0].Payload)

	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
