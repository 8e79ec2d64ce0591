package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mindmirror/mindmirror-backend/internal/app"
	"github.com/mindmirror/mindmirror-backend/internal/platform/shutdown"
)

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	a.Start()

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			a.Log.Error("Server exited", "error", err)
			_ = a.Shutdown(context.Background())
			os.Exit(1)
		}
	case <-ctx.Done():
		a.Log.Info("Shutdown signal received, draining", "timeout", a.Cfg.ShutdownTimeout.String())
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(drainCtx); err != nil {
		a.Log.Error("Shutdown incomplete", "error", err)
		os.Exit(1)
	}
}
