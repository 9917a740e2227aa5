package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/collegegrades/grades-api/internal/config"
	"github.com/collegegrades/grades-api/internal/dataset"
	"github.com/collegegrades/grades-api/internal/logging"
	"github.com/collegegrades/grades-api/internal/server"
	"github.com/joho/godotenv"
)

func init() {
	if _, err := os.Stat("/.dockerenv"); os.IsNotExist(err) {
		// A missing .env is fine; the environment and config file still apply.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Fatalf("error loading .env file: %v\n", err)
		}
	} else {
		log.Println("Running in Docker container, skipping .env file loading")
	}
	log.SetPrefix("[grades-api] ")
}

func gracefulShutdown(ctx context.Context, stop context.CancelFunc, apiServer *http.Server, logger *slog.Logger, done chan bool) {
	// Listen for the interrupt signal.
	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v\n", err)
	}

	logger, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := dataset.LoadStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	apiServer := server.NewServer(ctx, cfg, store, logger)

	done := make(chan bool, 1)
	go gracefulShutdown(ctx, stop, apiServer, logger, done)

	logger.Info("Listening", "addr", apiServer.Addr, "records", store.Len())
	err = apiServer.ListenAndServe()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	logger.Info("Graceful shutdown complete")
}
