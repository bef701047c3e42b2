package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kaitlus-backend/internal/api"
	"kaitlus-backend/internal/config"
	"kaitlus-backend/internal/groq"
	"kaitlus-backend/internal/handlers"
	"kaitlus-backend/internal/services"
	"kaitlus-backend/internal/store/postgres"
)

func main() {
	log.Println("Starting Kaitlus Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize Database Connection Pool + Schema
	// A failure here is NOT fatal: the server keeps running without
	// persistence so the chat widget stays up while the database is out.
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	var pgStore *postgres.PostgresStore
	dbpool, err := postgres.NewPool(dbCtx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("WARN: Database unavailable, continuing without persistence: %v", err)
	} else {
		defer dbpool.Close()
		s := postgres.NewPostgresStore(dbpool)
		if err := s.EnsureSchema(dbCtx); err != nil {
			log.Printf("WARN: Schema creation failed, continuing without persistence: %v", err)
		} else {
			pgStore = s
			log.Println("Database connection pool established and schema ensured.")
		}
	}

	// 3. Initialize Dependencies (Clients, Services, Handlers)
	llm := groq.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqTimeout)
	log.Println("Groq client initialized.")

	var authHandler *handlers.AuthHandler
	var adminHandler *handlers.AdminHandlers
	var sessions handlers.SessionService
	var recorder services.TranscriptRecorder

	if pgStore != nil {
		authService := services.NewAuthService(pgStore, cfg)
		log.Println("AuthService initialized.")
		chatService := services.NewChatService(pgStore)
		log.Println("ChatService initialized.")

		authHandler = handlers.NewAuthHandler(authService)
		adminHandler = handlers.NewAdminHandlers(chatService)
		sessions = chatService
		recorder = chatService
	}

	assistantService := services.NewAssistantService(llm, recorder)
	log.Println("AssistantService initialized.")
	chatHandler := handlers.NewChatHandlers(sessions, assistantService)

	// 4. Setup Router & Inject Dependencies
	router := api.NewRouter(api.RouterDependencies{
		AuthHandler:  authHandler,
		ChatHandler:  chatHandler,
		AdminHandler: adminHandler,
		Config:       cfg,
	})
	log.Println("HTTP router configured.")

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
	}

	log.Println("Server shutdown complete.")
}
