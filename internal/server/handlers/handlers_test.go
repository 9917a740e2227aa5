package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/collegegrades/grades-api/internal/cache"
	"github.com/collegegrades/grades-api/internal/engine"
	"github.com/collegegrades/grades-api/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	calls atomic.Int32
	err   error

	lastFilters engine.FilterSet
	lastField   string
	lastSearch  string
}

func (f *fakeEngine) Records(_ context.Context, filters engine.FilterSet) ([]types.DetailRow, error) {
	f.calls.Add(1)
	f.lastFilters = filters
	if f.err != nil {
		return nil, f.err
	}
	g := 3.5
	return []types.DetailRow{{University: "UC Davis", Year: 2021, Subject: "MAT", GPA: &g}}, nil
}

func (f *fakeEngine) Summary(_ context.Context, filters engine.FilterSet) (types.Summary, error) {
	f.calls.Add(1)
	f.lastFilters = filters
	if f.err != nil {
		return types.Summary{}, f.err
	}
	return types.Summary{RecordCount: 2}, nil
}

func (f *fakeEngine) Suggest(_ context.Context, field string, filters engine.FilterSet, search string) ([]any, error) {
	f.calls.Add(1)
	f.lastField, f.lastFilters, f.lastSearch = field, filters, search
	if f.err != nil {
		return nil, f.err
	}
	if field != engine.FieldYear {
		return []any{}, nil
	}
	return []any{2021, 2020}, nil
}

func (f *fakeEngine) Len() int { return 4 }

func newTestRouter(e GradeEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(e, cache.New(time.Hour, time.Minute), slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/api/grades", h.GetGradeSummary)
	r.GET("/api/grades/records", h.GetGradeRecords)
	r.GET("/api/autocomplete", h.Autocomplete)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeEngine{})

	w := get(r, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 4, body["records"])
}

func TestGetGradeRecords_CachesIdenticalQuery(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRouter(fe)

	first := get(r, "/api/grades/records?university=UC+Davis&year=2021")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	// Same parameters in a different order share the entry.
	second := get(r, "/api/grades/records?year=2021&university=UC+Davis")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))

	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, int32(1), fe.calls.Load())

	var body struct {
		Count   int               `json:"count"`
		Records []types.DetailRow `json:"records"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Records, 1)
	assert.Equal(t, 3.5, *body.Records[0].GPA)
}

func TestEndpointsUseSeparateKeyspaces(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRouter(fe)

	get(r, "/api/grades?subject=MAT")
	w := get(r, "/api/grades/records?subject=MAT")

	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), fe.calls.Load())
}

func TestGetGradeSummary_PassesFilters(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRouter(fe)

	w := get(r, "/api/grades?subject=MAT&bogus=1")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, engine.FilterSet{
		{Field: "bogus", Value: "1"},
		{Field: "subject", Value: "MAT"},
	}, fe.lastFilters)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["record_count"])
	assert.Nil(t, body["average_GPA"])
}

func TestAutocomplete(t *testing.T) {
	fe := &fakeEngine{}
	r := newTestRouter(fe)

	w := get(r, "/api/autocomplete?autocomplete_field=year&search=20&subject=MAT")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "year", fe.lastField)
	assert.Equal(t, "20", fe.lastSearch)
	assert.Equal(t, engine.FilterSet{{Field: "subject", Value: "MAT"}}, fe.lastFilters)

	var body struct {
		Field       string `json:"field"`
		Count       int    `json:"count"`
		Suggestions []int  `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "year", body.Field)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []int{2021, 2020}, body.Suggestions)
}

func TestAutocomplete_UnknownFieldIsEmpty(t *testing.T) {
	r := newTestRouter(&fakeEngine{})

	w := get(r, "/api/autocomplete?autocomplete_field=not_a_field&search=x")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"field":"not_a_field","count":0,"suggestions":[]}`, w.Body.String())
}

func TestQueryFailureIsNotCached(t *testing.T) {
	fe := &fakeEngine{err: &engine.QueryExecutionError{Op: engine.OpSummary, Err: engine.ErrStoreUnavailable}}
	r := newTestRouter(fe)

	w := get(r, "/api/grades?year=2021")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to get grades"}`, w.Body.String())

	fe.err = nil
	w = get(r, "/api/grades?year=2021")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, int32(2), fe.calls.Load())
}

func TestAutocomplete_Failure(t *testing.T) {
	r := newTestRouter(&fakeEngine{err: errors.New("boom")})

	w := get(r, "/api/autocomplete?autocomplete_field=year")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to get suggestions"}`, w.Body.String())
}
