package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/collegegrades/grades-api/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(m *Manager) *gin.Engine {
	r := gin.New()
	r.Use(m.RequestID(), m.Logger(), m.RateLimit())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/grades", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	return r
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := setupRouter(NewManager(ratelimit.NewLimiter(0, time.Minute), slog.New(slog.NewTextHandler(io.Discard, nil))))

	w := get(r, "/api/grades", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = get(r, "/api/grades", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	r := setupRouter(NewManager(ratelimit.NewLimiter(1, time.Minute), slog.New(slog.NewTextHandler(io.Discard, nil))))

	assert.Equal(t, http.StatusOK, get(r, "/api/grades", nil).Code)
	w := get(r, "/api/grades", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/health", nil).Code, "health is never limited")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := setupRouter(NewManager(ratelimit.NewLimiter(0, time.Minute), logger))

	get(r, "/api/grades?year=2020", http.Header{RequestIDHeader: {"req-1"}})
	require.Contains(t, buf.String(), "HTTP request")
	assert.Contains(t, buf.String(), `query="year=2020"`)
	assert.Contains(t, buf.String(), "request_id=req-1")
	assert.Contains(t, buf.String(), "level=INFO")

	buf.Reset()
	get(r, "/fail", nil)
	assert.Contains(t, buf.String(), "level=ERROR")
}
