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

	"github.com/abhishekkrthakur/aiaio/internal/chat"
	"github.com/abhishekkrthakur/aiaio/internal/config"
	"github.com/abhishekkrthakur/aiaio/internal/httpapi"
	"github.com/abhishekkrthakur/aiaio/internal/hub"
	"github.com/abhishekkrthakur/aiaio/internal/store"
)

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	db, err := store.Open(cfg.DBPath, store.SeedConfig{
		ProviderHost: cfg.SeedProviderHost,
		ProviderKey:  cfg.SeedProviderKey,
		ModelName:    cfg.SeedModelName,
	})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	repo := store.NewRepo(db)
	hb := hub.New()
	svc := chat.NewService(repo, hb)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.NewRouter(repo, hb, svc, cfg.UploadDir),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening addr=%s db=%s uploads=%s", cfg.Addr, cfg.DBPath, cfg.UploadDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
