package engine

import (
	"math"

	"github.com/collegegrades/grades-api/internal/types"
)

// gradePoints weights the letter-grade counters, in OutcomeNames order.
var gradePoints = [types.LetterGradeCount]float64{
	4.0, 4.0, 3.7, // A+, A, A-
	3.3, 3.0, 2.7, // B+, B, B-
	2.3, 2.0, 1.7, // C+, C, C-
	1.3, 1.0, 0.7, // D+, D, D-
	0.0, // F
}

// ComputeGPA returns the weighted letter-grade average rounded to two
// decimals, or nil when no letter grades were awarded.
func ComputeGPA(o *types.Outcomes) *float64 {
	var attempts, weighted float64
	for i, points := range gradePoints {
		attempts += o[i]
		weighted += o[i] * points
	}
	if attempts <= 0 {
		return nil
	}
	gpa := roundTo2(weighted / attempts)
	return &gpa
}

// meanGPA averages the stored GPA of each record, skipping records without one.
func meanGPA(records []*types.GradeRecord) *float64 {
	var sum float64
	var n int
	for _, r := range records {
		if r.GPA == nil {
			continue
		}
		sum += *r.GPA
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// roundTo2 rounds exact ties to the even digit, so 3.125 becomes 3.12.
func roundTo2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
