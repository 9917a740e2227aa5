package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OutcomeNames lists every grade or registrar outcome counter in storage order.
// The first LetterGradeCount entries are the letter grades used for GPA.
var OutcomeNames = [...]string{
	"A_plus", "A", "A_minus",
	"B_plus", "B", "B_minus",
	"C_plus", "C", "C_minus",
	"D_plus", "D", "D_minus",
	"F",
	"Pass", "Not_Pass",
	"Satisfactory", "Unsatisfactory", "Not_Satisfactory",
	"Incomplete", "In_Progress",
	"Withdrawn", "Withdrawn_Passing", "Withdrawn_Medical", "Withdrawn_Incomplete",
	"Drop", "Withdrawn_from_University",
	"Honors", "No_Grade", "Review", "Audit", "Not_Reported", "Repeat",
	"DFWU", "Pending_Judicial_Action", "Withheld", "Report_In_Progress",
	"I_RD_RP", "wo_I_RD_RP",
}

const (
	// NumOutcomes is the number of outcome counters carried by every record.
	NumOutcomes = len(OutcomeNames)
	// LetterGradeCount is the number of leading counters that are letter grades (A+ through F).
	LetterGradeCount = 13
)

// Outcomes holds one count per entry in OutcomeNames, in the same order.
type Outcomes [NumOutcomes]float64

// Add accumulates other into o.
func (o *Outcomes) Add(other *Outcomes) {
	for i := range o {
		o[i] += other[i]
	}
}

// MarshalJSON writes the counters as an object whose keys follow OutcomeNames order.
func (o Outcomes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range OutcomeNames {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(o[i], 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by outcome name. Unknown keys are rejected.
func (o *Outcomes) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Outcomes{}
	for key, value := range raw {
		idx, ok := OutcomeIndex(key)
		if !ok {
			return fmt.Errorf("unknown outcome %q", key)
		}
		o[idx] = value
	}
	return nil
}

var outcomeIndex = func() map[string]int {
	m := make(map[string]int, NumOutcomes)
	for i, name := range OutcomeNames {
		m[name] = i
	}
	return m
}()

// OutcomeIndex returns the position of the named counter.
func OutcomeIndex(name string) (int, bool) {
	idx, ok := outcomeIndex[name]
	return idx, ok
}

// GradeRecord is one section-offering: an instructor teaching one course in one
// term and year at one university, with the count of each outcome awarded.
//
// GPA is the stored grade-point average for the offering. It is nil when the
// source had no value and no letter grades were recorded.
type GradeRecord struct {
	University    string   `json:"university"`
	Term          string   `json:"term"`
	Year          int      `json:"year"`
	Subject       string   `json:"subject"`
	CatalogNumber string   `json:"catalog_number"`
	Instructor    string   `json:"instructor"`
	Title         string   `json:"title"`
	GPA           *float64 `json:"GPA"`
	Outcomes      Outcomes `json:"outcomes"`
}

// DetailRow is a GradeRecord projected for the records endpoint. GPA is
// recomputed from the letter-grade counters.
type DetailRow struct {
	University    string   `json:"university"`
	Instructor    string   `json:"instructor"`
	Year          int      `json:"year"`
	CatalogNumber string   `json:"catalog_number"`
	Subject       string   `json:"subject"`
	Term          string   `json:"term"`
	Title         string   `json:"title"`
	GPA           *float64 `json:"GPA"`
	Outcomes      Outcomes `json:"outcomes"`
}

// Summary aggregates every record matching a filter set.
type Summary struct {
	RecordCount int      `json:"record_count"`
	AverageGPA  *float64 `json:"average_GPA"`
	Outcomes    Outcomes `json:"outcomes"`
}
