package engine

import (
	"testing"

	"github.com/collegegrades/grades-api/internal/types"
	"github.com/stretchr/testify/require"
)

func outcomes(counts map[string]float64) types.Outcomes {
	var o types.Outcomes
	for name, v := range counts {
		idx, ok := types.OutcomeIndex(name)
		if !ok {
			panic("unknown outcome " + name)
		}
		o[idx] = v
	}
	return o
}

func gpa(v float64) *float64 { return &v }

func sampleRecords() []types.GradeRecord {
	return []types.GradeRecord{
		{
			University: "UC Davis", Term: "Fall", Year: 2021, Subject: "MAT",
			CatalogNumber: "21A", Instructor: "Smith, Jane", Title: "Calculus",
			GPA:      gpa(3.5),
			Outcomes: outcomes(map[string]float64{"A": 10, "B": 10, "Withdrawn": 2}),
		},
		{
			University: "UC Davis", Term: "Winter", Year: 2019, Subject: "MAT",
			CatalogNumber: "21B", Instructor: "Smith, Jane", Title: "Calculus",
			Outcomes: outcomes(map[string]float64{"Pass": 4, "Withdrawn": 1}),
		},
		{
			University: "UCLA", Term: "Fall", Year: 2020, Subject: "CS",
			CatalogNumber: "31", Instructor: "Lee, Kim", Title: "Intro to CS",
			GPA:      gpa(3.0),
			Outcomes: outcomes(map[string]float64{"B": 5, "C": 5, "F": 1}),
		},
		{
			University: "UCLA", Term: "Spring", Year: 2021, Subject: "CS",
			CatalogNumber: "32", Instructor: "Lee, Kim", Title: "Data Structures",
			Outcomes: outcomes(map[string]float64{"A_plus": 2, "B": 2}),
		},
	}
}

func newTestStore(t *testing.T, records []types.GradeRecord) *Store {
	t.Helper()
	store, err := NewStore(records)
	require.NoError(t, err)
	return store
}
