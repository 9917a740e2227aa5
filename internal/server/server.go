package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/collegegrades/grades-api/internal/cache"
	"github.com/collegegrades/grades-api/internal/config"
	"github.com/collegegrades/grades-api/internal/server/handlers"
	"github.com/collegegrades/grades-api/internal/server/middleware"
	"github.com/collegegrades/grades-api/internal/server/ratelimit"
	"github.com/collegegrades/grades-api/internal/server/router"
)

const rateLimitCleanupInterval = time.Minute

// NewServer builds the HTTP server around an already loaded grade store.
// The rate limiter's cleanup loop stops when ctx is done.
func NewServer(ctx context.Context, cfg *config.Config, store handlers.GradeEngine, logger *slog.Logger) *http.Server {
	responses := cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)

	limiter := ratelimit.NewLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	if limiter.Enabled() {
		limiter.StartCleanup(ctx, rateLimitCleanupInterval)
	}

	var opts router.Options
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
	}

	handler := handlers.New(store, responses, logger)
	mw := middleware.NewManager(limiter, logger)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(handler, mw, opts),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
