package engine

import (
	"context"
	"time"

	"github.com/collegegrades/grades-api/internal/types"
)

// Operation names used in errors and metrics.
const (
	OpRecords = "records"
	OpSummary = "summary"
	OpSuggest = "autocomplete"
)

// Records returns every record matching filters with its GPA recomputed from
// the letter-grade counters. The slice is empty, never nil, when nothing matches.
func (s *Store) Records(ctx context.Context, filters FilterSet) ([]types.DetailRow, error) {
	defer observe(OpRecords, time.Now())

	matched, err := s.match(ctx, BuildPredicate(filters))
	if err != nil {
		queryErrors.WithLabelValues(OpRecords).Inc()
		return nil, &QueryExecutionError{Op: OpRecords, Err: err}
	}

	rows := make([]types.DetailRow, 0, len(matched))
	for _, r := range matched {
		rows = append(rows, types.DetailRow{
			University:    r.University,
			Instructor:    r.Instructor,
			Year:          r.Year,
			CatalogNumber: r.CatalogNumber,
			Subject:       r.Subject,
			Term:          r.Term,
			Title:         r.Title,
			GPA:           ComputeGPA(&r.Outcomes),
			Outcomes:      r.Outcomes,
		})
	}
	return rows, nil
}

// Summary sums every outcome counter over the matching records and averages
// their stored GPA. The average is a mean of per-record GPAs, not a GPA of the
// summed counters.
func (s *Store) Summary(ctx context.Context, filters FilterSet) (types.Summary, error) {
	defer observe(OpSummary, time.Now())

	matched, err := s.match(ctx, BuildPredicate(filters))
	if err != nil {
		queryErrors.WithLabelValues(OpSummary).Inc()
		return types.Summary{}, &QueryExecutionError{Op: OpSummary, Err: err}
	}

	summary := types.Summary{
		RecordCount: len(matched),
		AverageGPA:  meanGPA(matched),
	}
	for _, r := range matched {
		summary.Outcomes.Add(&r.Outcomes)
	}
	return summary, nil
}
