package handlers

import (
	"context"

	"github.com/collegegrades/grades-api/internal/engine"
	"github.com/gin-gonic/gin"
)

// Query parameters of the autocomplete endpoint that are not filters.
const (
	paramAutocompleteField = "autocomplete_field"
	paramSearch            = "search"
)

// GetGradeRecords lists every matching section-offering with its GPA.
func (h *Handler) GetGradeRecords(c *gin.Context) {
	filters := engine.FilterSetFromValues(c.Request.URL.Query())

	h.respondCached(c, endpointRecords, "failed to get grades", func(ctx context.Context) (any, error) {
		rows, err := h.engine.Records(ctx, filters)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"count":   len(rows),
			"records": rows,
		}, nil
	})
}

// GetGradeSummary sums outcome counts over matching records and averages their GPA.
func (h *Handler) GetGradeSummary(c *gin.Context) {
	filters := engine.FilterSetFromValues(c.Request.URL.Query())

	h.respondCached(c, endpointSummary, "failed to get grades", func(ctx context.Context) (any, error) {
		return h.engine.Summary(ctx, filters)
	})
}

// Autocomplete suggests values of autocomplete_field matching search under the
// remaining filters. An unknown field gets an empty list.
func (h *Handler) Autocomplete(c *gin.Context) {
	field := c.Query(paramAutocompleteField)
	search := c.Query(paramSearch)
	filters := engine.FilterSetFromValues(c.Request.URL.Query(), paramAutocompleteField, paramSearch)

	h.respondCached(c, endpointAutocomplete, "failed to get suggestions", func(ctx context.Context) (any, error) {
		values, err := h.engine.Suggest(ctx, field, filters, search)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"field":       field,
			"count":       len(values),
			"suggestions": values,
		}, nil
	})
}
