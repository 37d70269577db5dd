package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mycore/internal/auth"
	"mycore/internal/config"
	httpx "mycore/internal/http"
	"mycore/internal/notify"
	"mycore/internal/storage"
	"mycore/internal/store"
	"mycore/internal/worker"
)

func main() {
	cfg, _ := config.Load()

	provider, err := openProvider(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer provider.Close()

	seed := store.SeedOptions{FromOffset: cfg.SeedFromOffset, ToOffset: cfg.SeedToOffset}
	if cfg.SeedRandom {
		seed.RNG = rand.New(rand.NewSource(cfg.SeedRandomSeed))
	}

	notifier := notify.Log{}
	st := store.New(provider, notifier, seed, store.ResetPolicy(cfg.ResetPolicy))

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, st, jwtSvc)

	// reminder worker
	reminders := &worker.Reminder{Store: st, Notifier: notifier}

	ctx, cancel := context.WithCancel(context.Background())
	go reminders.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (storage=%s)\n", cfg.HTTPAddr, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

func openProvider(cfg config.Config) (storage.Provider, error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemory(), nil
	case "sqlite":
		return storage.OpenSQLite(cfg.SQLitePath)
	case "postgres":
		return storage.OpenPostgres(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
