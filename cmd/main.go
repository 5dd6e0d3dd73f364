/*
Package main is the entry point for the IncogniChat server.

It is responsible for loading configuration, initializing the global logging
system, connecting to Postgres and running migrations, wiring the moderation
pipeline and mail delivery, starting the chat room, and gracefully handling
operating system interrupt signals (SIGINT, SIGTERM) for a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"incognichat/internal/app/chat"
	"incognichat/internal/app/mail"
	"incognichat/internal/app/moderation"
	"incognichat/internal/app/store"
	"incognichat/internal/configs"
	"incognichat/internal/handler"
	"incognichat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("remote_moderation", cfg.GenAIAPIKey != "").
		Bool("smtp_configured", cfg.SMTPHost != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Postgres and apply migrations
	st, err := store.New(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize the store")
	}
	defer st.Close()

	// Moderation pipeline: remote classifier when configured, denylist
	// fallback always
	var remote moderation.RemoteClassifier
	if cfg.GenAIAPIKey != "" {
		classifier, err := moderation.NewGenAIClassifier(cfg.GenAIAPIKey, cfg.ModerationModel)
		if err != nil {
			logx.Fatal(err, "Failed to initialize the GenAI classifier")
		}
		remote = classifier
	} else {
		logx.Warn("GENAI_API_KEY not set. Moderation runs on the denylist only.")
	}
	moderator := moderation.NewService(remote, cfg.ModerationTimeout)

	// Mail delivery
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		mailer = mail.NewLogMailer()
	}

	// Start the global chat room
	room := chat.NewRoom()
	go room.Run()

	gateway := chat.NewGateway(room, st, st, moderator)

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Config:  cfg,
		Store:   st,
		Room:    room,
		Gateway: gateway,
		Mailer:  mailer,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("IncogniChat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	room.Stop()

	logx.Info("Server gracefully stopped.")
}
