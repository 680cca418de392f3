package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"surfcast/internal/cache"
	"surfcast/internal/config"
	"surfcast/internal/msw"
	"surfcast/internal/server"
	"surfcast/internal/spots"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Spot snapshot with periodic background reload.
	reloader, err := spots.NewReloader(cfg.Spots.SnapshotPath, cfg.Spots.RefreshInterval)
	if err != nil {
		log.Fatalf("failed to load spot snapshot: %v", err)
	}
	if err := reloader.Start(); err != nil {
		log.Fatalf("failed to start snapshot reloader: %v", err)
	}
	defer reloader.Stop()

	defaultUnits, err := msw.ParseUnitSystem(cfg.MSW.DefaultUnits)
	if err != nil {
		log.Fatalf("invalid default units: %v", err)
	}

	// Forecast cache, write-through to sqlite so restarts stay warm.
	client := msw.NewClient(cfg.MSW.APIKey)
	opts := []cache.Option{cache.WithTTL(cfg.Cache.TTL)}
	if cfg.Cache.DBPath != "" {
		store, err := cache.OpenSQLiteStore(cfg.Cache.DBPath)
		if err != nil {
			log.Printf("forecast cache store unavailable, running in-memory only: %v", err)
		} else {
			opts = append(opts, cache.WithStore(store))
			defer store.Close()
		}
	}
	fcCache := cache.New(client, opts...)

	srv := server.New(reloader, fcCache, defaultUnits)

	go func() {
		log.Printf("surfcast listening on %s", cfg.Addr())
		if err := srv.Listen(cfg.Addr()); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
		os.Exit(1)
	}
}
