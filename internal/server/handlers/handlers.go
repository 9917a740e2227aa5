package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/collegegrades/grades-api/internal/cache"
	"github.com/collegegrades/grades-api/internal/engine"
	"github.com/collegegrades/grades-api/internal/types"
	"github.com/gin-gonic/gin"
)

// Cache endpoint identities. Each is its own keyspace.
const (
	endpointRecords      = "grades/records"
	endpointSummary      = "grades/summary"
	endpointAutocomplete = "autocomplete"
)

// GradeEngine is the query surface the handlers need from the grade store.
type GradeEngine interface {
	Records(ctx context.Context, filters engine.FilterSet) ([]types.DetailRow, error)
	Summary(ctx context.Context, filters engine.FilterSet) (types.Summary, error)
	Suggest(ctx context.Context, field string, filters engine.FilterSet, search string) ([]any, error)
	Len() int
}

type Handler struct {
	engine GradeEngine
	cache  *cache.Cache
	logger *slog.Logger
}

func New(e GradeEngine, c *cache.Cache, logger *slog.Logger) *Handler {
	return &Handler{engine: e, cache: c, logger: logger}
}

// Health responds with a simple service heartbeat.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Grades API is running",
		"records": h.engine.Len(),
	})
}

// respondCached serves the cached body for this endpoint and query string,
// building and caching it on a miss. build runs detached from the request's
// cancellation because concurrent callers may be waiting on the same result.
func (h *Handler) respondCached(c *gin.Context, endpoint, errMsg string, build func(ctx context.Context) (any, error)) {
	key := cache.Key(endpoint, c.Request.URL.Query())
	ctx := context.WithoutCancel(c.Request.Context())

	body, hit, err := h.cache.GetOrCompute(endpoint, key, func() ([]byte, error) {
		payload, err := build(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(payload)
	})
	if err != nil {
		h.logger.Error("Query failed",
			"endpoint", endpoint,
			"query", c.Request.URL.RawQuery,
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errMsg})
		return
	}

	if hit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}
