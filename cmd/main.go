package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/rango-rater-backend/internal/app"
	"github.com/yungbote/rango-rater-backend/internal/observability"
)

func main() {
	// A missing .env is fine; the process environment is used as is.
	envErr := godotenv.Load()

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()
	if envErr != nil {
		a.Log.Debug("No .env file loaded", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOtel := observability.InitOTel(ctx, a.Log, observability.OtelConfig{
		ServiceName: a.Cfg.ServiceName,
		Environment: a.Cfg.Environment,
	})
	if shutdownOtel != nil {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOtel(sctx); err != nil {
				a.Log.Warn("OTel shutdown failed", "error", err)
			}
		}()
	}

	a.Start()

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.Cfg.Port
		a.Log.Info("Server listening", "addr", addr)
		errCh <- a.Run(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server stopped", "error", err)
		}
	case <-ctx.Done():
		a.Log.Info("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Shutdown(sctx); err != nil {
			a.Log.Warn("Graceful shutdown failed", "error", err)
		}
	}
}
