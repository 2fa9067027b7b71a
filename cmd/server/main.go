package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/peerlink/signaling/internal/server"
)

func main() {
	// Load local .env (dev only).
	_ = godotenv.Load()

	cfg := server.NewConfigFromEnv()
	server.SetConfig(cfg)
	slog.SetDefault(server.NewLogger(cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Optional cross-instance broadcast bus.
	if cfg.RedisAddr != "" {
		bus, err := server.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			slog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer bus.Close()
		server.GetHub().AttachBus(ctx, bus)
	}

	server.StartHub()

	mux := server.SetupRoutes()
	httpServer := server.CreateServer(cfg.Port, mux)

	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server crashed", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	if err := server.ShutdownServer(httpServer, 10*time.Second); err != nil {
		slog.Error("HTTP shutdown incomplete", "err", err)
	}
	if err := server.GetHub().Shutdown(5 * time.Second); err != nil {
		slog.Error("hub shutdown incomplete", "err", err)
	}
}
