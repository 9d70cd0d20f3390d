package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"Vigora/internal/api/middleware"
	"Vigora/internal/api/routes"
	"Vigora/internal/config"
	"Vigora/internal/core/feed"
	"Vigora/internal/core/outbox"
	"Vigora/internal/core/playback"
	"Vigora/internal/core/thumbs"
	postgresRepo "Vigora/internal/db/postgres"
	"Vigora/internal/origin"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Connected to outbox database")

	// Run migrations
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect:", err)
	}

	if err := goose.Up(db, "internal/db/migrations"); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	log.Println("Migrations completed successfully")

	// Core services
	originClient := origin.NewClient(cfg.Origin, cfg.OriginTimeout)
	store := feed.NewStore(originClient, logger)
	coordinator := playback.NewCoordinator(logger)

	thumbService, err := thumbs.NewService(cfg.ThumbCacheSize, 0, cfg.OriginTimeout, logger)
	if err != nil {
		log.Fatal("Failed to create thumbnail service:", err)
	}

	outboxRepo := postgresRepo.NewOutboxRepository(db)
	likeQueue := outbox.NewQueue(outboxRepo)
	dispatcher := outbox.NewDispatcher(outboxRepo, originClient, cfg.LikeRatePerSec, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go dispatcher.Run(ctx)

	sessions := middleware.NewSessionManager([]byte(cfg.SessionSecret), cfg.SecureCookies)

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"capacitor://localhost", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	// Rate limiting: 120 requests per minute per IP
	rateLimiter := middleware.NewRateLimiter(120, 1*time.Minute)
	r.Use(rateLimiter.Middleware)

	routes.RegisterSessionRoutes(r, store, sessions)
	routes.RegisterFeedRoutes(r, store, sessions)
	routes.RegisterPostRoutes(r, store, originClient, likeQueue, sessions)
	routes.RegisterThumbRoutes(r, thumbService)
	routes.RegisterPlayerRoutes(r, coordinator, store, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	fmt.Printf("Vigora feed gateway starting on port %s\n", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
