package main

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/infrastructure/http/server"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server failure.
// Deferred cleanups run before main exits.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig(".env")
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. User store
	db, err := repositories.OpenBadger(config.BadgerFilepath, log)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Relay
	filter, err := contentFilter(config, log)
	if err != nil {
		return err
	}
	relay := runtime.NewRelay(log, runtime.RelayConfig{
		MaxRooms:            config.MaxRooms,
		MaxMembersPerRoom:   config.MaxMembersPerRoom,
		NotifyUndeliverable: config.NotifyUndeliverable,
		Filter:              filter,
	})

	// 4. Transport, supervision & orchestration
	monitoring := observability.NewMonitoringManager(log)
	origins := ws.NewOriginPolicy(log, ws.ParseOrigins(config.AllowedOrigins))
	hub := ws.NewHub(log, monitoring, origins, ws.Config{
		MaxMessageSize:          config.MaxMessageSize,
		SendBufferSize:          config.ConnectionBufferSize,
		RateLimitBurst:          config.RateLimitBurst,
		RateLimitRefillInterval: config.RateLimitRefillInterval,
		PingInterval:            config.PingInterval,
		PongWait:                config.PongWait,
		WriteWait:               config.WriteWait,
	})
	sup := workers.NewSupervisor(log, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, sup, relay, hub, monitoring, runtime.OrchestratorConfig{
		BufferSize:      config.CommandBufferSize,
		DispatchTimeout: config.DispatchTimeout,
		SinkTimeout:     config.SinkTimeout,
		StatsInterval:   config.StatsInterval,
	})

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The engine outlives the signal: closing clients still dispatches their disconnects.
	engineCtx, cancelEngine := context.WithCancel(context.Background())
	defer cancelEngine()
	if err = orchestrator.Start(engineCtx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	defer orchestrator.Stop()

	// 6. HTTP server
	tokens := auth.NewTokenIssuer(config.AuthSecret, config.AuthTokenDuration)
	deps := server.Dependencies{
		Log:        log,
		WebSocket:  hub.Handler(services.NewChatService(orchestrator)),
		Auth:       services.NewAuthService(log, repositories.NewUserRepository(db), tokens),
		Relay:      relay,
		Monitoring: monitoring,
	}
	if config.DebugRequireToken {
		deps.Tokens = tokens
	}
	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup: stop accepting, close the clients, then the engine
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Warn("Websocket clients did not close in time", "error", err)
	}
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func contentFilter(config internal.Config, log *slog.Logger) (contract.ContentFilter, error) {
	if !config.ModerationEnabled {
		return nil, nil
	}
	char, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	moderator, err := moderation.NewDefaultModerator(char, log)
	if err != nil {
		return nil, fmt.Errorf("moderation setup failed: %w", err)
	}
	log.Info("Moderation enabled", "replacement", config.CharReplacement)
	return moderator, nil
}
