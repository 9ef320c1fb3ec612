package main

import (
	"context"
	"log"
	mrand "math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/TempoXqc/projectNexus-sub000/internal/catalog"
	appcfg "github.com/TempoXqc/projectNexus-sub000/internal/config"
	"github.com/TempoXqc/projectNexus-sub000/internal/directory"
	"github.com/TempoXqc/projectNexus-sub000/internal/game"
	"github.com/TempoXqc/projectNexus-sub000/internal/gateway"
	"github.com/TempoXqc/projectNexus-sub000/internal/lobby"
	"github.com/TempoXqc/projectNexus-sub000/internal/obslog"
	"github.com/TempoXqc/projectNexus-sub000/internal/rest"
	"github.com/TempoXqc/projectNexus-sub000/internal/results"
	"github.com/TempoXqc/projectNexus-sub000/internal/store"
	"github.com/TempoXqc/projectNexus-sub000/internal/sweeper"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	cat, err := catalog.New(cfg.CatalogDir)
	if err != nil {
		obslog.L().Fatal("catalog init error", zap.Error(err))
	}

	redisStore, err := store.NewRedis(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		obslog.L().Fatal("session store init error", zap.Error(err))
	}
	defer redisStore.Close()
	cached := store.NewCache(redisStore)

	dir := directory.New()
	rng := mrand.New(mrand.NewSource(time.Now().UnixNano()))

	coord := game.NewCoordinator(cached, dir, cat, rng)
	coord.SetMaxSessions(cfg.MaxConcurrentGames)
	coord.SetReconnectGrace(cfg.ReconnectGrace)

	resultsRepo, err := results.NewRepository(cfg.DatabaseURL)
	if err != nil {
		obslog.L().Fatal("results repo init error", zap.Error(err))
	}
	coord.AttachResults(resultsRepo)

	gw := gateway.New(coord)
	lb := lobby.New(coord.ActiveSummaries, gw.Send, cfg.LobbyDebounce)
	gw.AttachLobby(lb)
	defer lb.Close()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sw := sweeper.New(coord, cfg.SweepInterval, cfg.IdleRetention, lb.Schedule)
	go sw.Run(rootCtx)

	restSrv := rest.New(coord)
	go func() {
		if err := restSrv.ListenAndServe(cfg.RestAddr); err != nil {
			obslog.L().Error("rest server error", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		obslog.L().Info("ws_listen", zap.String("addr", cfg.ListenAddr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obslog.L().Error("ws server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	obslog.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	_ = restSrv.Shutdown()
}
