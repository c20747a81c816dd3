package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joshsymonds/postbox/internal/httpapi"
	"github.com/joshsymonds/postbox/internal/runtime"
)

const shutdownGrace = 10 * time.Second

type serveConfig struct {
	provider string
	addr     string
}

func main() {
	cfg := parseServeFlags()
	if err := run(cfg); err != nil {
		runtime.DefaultLogger().Error("postbox-serve failed", "error", err)
		os.Exit(1)
	}
}

func parseServeFlags() serveConfig {
	provider := flag.String("provider", "gmail", "mail provider to use")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	return serveConfig{
		provider: *provider,
		addr:     *addr,
	}
}

func run(cfg serveConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := runtime.DefaultLogger()

	client, err := runtime.NewMailClient(ctx, cfg.provider)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}
	defer client.Close()

	api := httpapi.NewServer(client, logger)
	server := &http.Server{
		Addr:              cfg.addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", cfg.addr, "provider", cfg.provider)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
