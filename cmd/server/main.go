package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eltopo/internal/cache"
	"eltopo/internal/config"
	"eltopo/internal/connectivity"
	"eltopo/internal/database"
	"eltopo/internal/handlers"
	"eltopo/internal/localstate"
	"eltopo/internal/realtime"
	"eltopo/internal/repository"
	"eltopo/internal/session"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Seed starter packs and cards
	if err := db.SeedDefaultPacks(); err != nil {
		log.Printf("Warning: Failed to seed default packs: %v", err)
	}

	// Local persisted state backs the offline store and the card cache
	state, err := localstate.Open(cfg.LocalStatePath)
	if err != nil {
		log.Fatalf("Failed to open local state: %v", err)
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(db)
	playerRepo := repository.NewPlayerRepository(db)
	cardRepo := repository.NewCardRepository(db)

	// Card cache syncs from the card repository; a reconnect triggers a
	// fresh sync so devices that were offline catch up
	cardCache := cache.NewCardCache(state, cardRepo)
	if err := cardCache.Sync(); err != nil {
		log.Printf("Warning: initial card cache sync failed: %v", err)
	}

	monitor := connectivity.NewMonitor(true)
	monitor.Subscribe(func(online bool) {
		if online {
			if err := cardCache.Sync(); err != nil {
				log.Printf("Warning: card cache sync on reconnect failed: %v", err)
			}
		}
	})

	// Session store routes offline-marked ids to local state. Snapshots
	// of finished offline games serve nothing anymore; sweep them now.
	offlineStore := session.NewOfflineStore(state)
	if purged, err := offlineStore.PurgeFinished(); err != nil {
		log.Printf("Warning: failed to purge finished offline sessions: %v", err)
	} else if purged > 0 {
		log.Printf("Purged %d finished offline session(s)", purged)
	}
	store := session.NewRoutingStore(
		session.NewRemoteStore(sessionRepo, playerRepo),
		offlineStore,
	)

	// Realtime hub
	hub := realtime.NewHub()
	go hub.Run()

	// Initialize handlers
	tokenKey := []byte(cfg.GuestTokenKey)
	middleware := handlers.NewMiddleware(tokenKey)
	sessionHandler := handlers.NewSessionHandler(store, cardRepo, cardRepo, cardCache, monitor, hub, tokenKey, cfg.GuestTokenTTL, cfg.MinPlayers, cfg.PublicBaseURL)
	realtimeHandler := handlers.NewRealtimeHandler(hub, store)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/guest", middleware.RateLimit(sessionHandler.MintGuest))
	mux.HandleFunc("GET /api/cards", sessionHandler.ListCards)

	mux.HandleFunc("POST /api/sessions", middleware.RateLimit(middleware.WithIdentity(sessionHandler.CreateSession)))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.WithIdentity(sessionHandler.GetSession))
	mux.HandleFunc("GET /api/sessions/{id}/qr", sessionHandler.JoinQR)
	mux.HandleFunc("POST /api/sessions/{id}/players", middleware.WithIdentity(sessionHandler.JoinSession))
	mux.HandleFunc("POST /api/sessions/{id}/deal", middleware.WithIdentity(sessionHandler.StartDealing))
	mux.HandleFunc("POST /api/sessions/{id}/players/{playerId}/reveal", middleware.WithIdentity(sessionHandler.MarkRevealed))
	mux.HandleFunc("POST /api/sessions/{id}/discussion", middleware.WithIdentity(sessionHandler.ContinueToDiscussion))
	mux.HandleFunc("POST /api/sessions/{id}/finish", middleware.WithIdentity(sessionHandler.FinishGame))
	mux.HandleFunc("POST /api/sessions/{id}/reset", middleware.WithIdentity(sessionHandler.ResetGame))

	mux.HandleFunc("GET /ws", realtimeHandler.Subscribe)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	server.Close()
}
