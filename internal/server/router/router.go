package router

import (
	"net/http"

	"github.com/collegegrades/grades-api/internal/server/handlers"
	"github.com/collegegrades/grades-api/internal/server/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options toggles routes that depend on configuration.
type Options struct {
	MetricsPath string // empty disables the metrics endpoint
}

// New wires handlers and middleware into an HTTP router.
func New(handler *handlers.Handler, mw *middleware.Manager, opts Options) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), mw.RequestID(), mw.Logger())

	router.GET("/health", handler.Health)
	if opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api")
	api.Use(mw.RateLimit())
	{
		grades := api.Group("/grades")
		{
			grades.GET("", handler.GetGradeSummary)
			grades.GET("/records", handler.GetGradeRecords)
		}

		api.GET("/autocomplete", handler.Autocomplete)
	}

	return router
}
