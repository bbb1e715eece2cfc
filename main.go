package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmoren/credstore-be/internal/api"
	"github.com/lmoren/credstore-be/internal/auth"
	"github.com/lmoren/credstore-be/internal/config"
	"github.com/lmoren/credstore-be/internal/database"
	"github.com/lmoren/credstore-be/internal/logger"
	"github.com/lmoren/credstore-be/internal/monitoring"
	"github.com/lmoren/credstore-be/internal/services"
	"github.com/lmoren/credstore-be/internal/store"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the credential components. Secret and cost are fixed here for
	// the process lifetime.
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	resets := auth.NewResetTokenManager(cfg.ResetTokenTTL)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	// Set up services
	userStore := store.NewUserStore(db)
	eventService := services.NewEventService(db)
	authService := services.NewAuthService(userStore, hasher, resets, issuer, eventService)

	// Set up and run the background reset-token reaper
	reaper, err := monitoring.NewReaper(userStore, cfg.ReaperSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize reaper: %v", err)
	}
	go reaper.Run()

	// Set up router
	router := api.NewRouter(cfg.CORSOrigin, cfg.TokenTTL, issuer, authService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	reaper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
