package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/collegegrades/grades-api/internal/types"
)

// Loader reads the full grade dataset from its backing source.
type Loader interface {
	// Name identifies the source in logs and startup errors.
	Name() string
	LoadRecords(ctx context.Context) ([]types.GradeRecord, error)
}

// Store is the in-memory copy of the grade dataset. It is populated once,
// read concurrently without locking, and released by Close.
type Store struct {
	records atomic.Pointer[[]types.GradeRecord]
}

// NewStore wraps records that are already in memory. Records without a stored
// GPA get one derived from their letter-grade counters.
func NewStore(records []types.GradeRecord) (*Store, error) {
	for i := range records {
		r := &records[i]
		for j, count := range r.Outcomes {
			if count < 0 {
				return nil, fmt.Errorf("record %d (%s %s %s): negative %s count %v",
					i, r.University, r.Subject, r.CatalogNumber, types.OutcomeNames[j], count)
			}
			if !isFinite(count) {
				return nil, fmt.Errorf("record %d (%s %s %s): non-finite %s count %v",
					i, r.University, r.Subject, r.CatalogNumber, types.OutcomeNames[j], count)
			}
		}
		if r.GPA != nil && !isFinite(*r.GPA) {
			return nil, fmt.Errorf("record %d (%s %s %s): non-finite GPA %v",
				i, r.University, r.Subject, r.CatalogNumber, *r.GPA)
		}
		if r.GPA == nil {
			r.GPA = ComputeGPA(&r.Outcomes)
		}
	}

	s := &Store{}
	s.records.Store(&records)
	recordsLoaded.Set(float64(len(records)))
	return s, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Load populates a Store from loader. Any failure is a StartupError.
func Load(ctx context.Context, loader Loader, logger *slog.Logger) (*Store, error) {
	start := time.Now()

	records, err := loader.LoadRecords(ctx)
	if err != nil {
		return nil, &StartupError{Source: loader.Name(), Err: err}
	}

	store, err := NewStore(records)
	if err != nil {
		return nil, &StartupError{Source: loader.Name(), Err: err}
	}

	logger.Info("Grade records loaded",
		"source", loader.Name(),
		"records", len(records),
		"duration", time.Since(start),
	)
	return store, nil
}

// Len returns the number of loaded records, or zero once closed.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	records := s.records.Load()
	if records == nil {
		return 0
	}
	return len(*records)
}

// Close releases the dataset. Queries issued afterwards fail with
// ErrStoreUnavailable.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.records.Store(nil)
	recordsLoaded.Set(0)
	return nil
}

func (s *Store) snapshot() ([]types.GradeRecord, error) {
	if s == nil {
		return nil, ErrStoreUnavailable
	}
	records := s.records.Load()
	if records == nil {
		return nil, ErrStoreUnavailable
	}
	return *records, nil
}

// match scans every record and returns pointers to those satisfying pred.
func (s *Store) match(ctx context.Context, pred Predicate) ([]*types.GradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var matched []*types.GradeRecord
	for i := range records {
		if pred(&records[i]) {
			matched = append(matched, &records[i])
		}
	}
	return matched, nil
}
