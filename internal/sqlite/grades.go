// Package sqlite reads the provisioned grade table from a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/collegegrades/grades-api/internal/types"
	_ "modernc.org/sqlite"
)

// Column names in the provisioned table that differ from the API field names.
var dimensionColumns = map[string]string{
	"university":     "university",
	"term":           "term",
	"year":           "year",
	"subject":        "subject",
	"catalog_number": "Catalog Number",
	"instructor":     "instructor",
	"title":          "title",
}

const gpaColumn = "GPA"

// Loader reads every row of a grade table.
type Loader struct {
	path  string
	table string
}

// NewLoader returns a loader for table inside the database file at path.
func NewLoader(path, table string) *Loader {
	return &Loader{path: path, table: table}
}

// Name identifies the source in logs.
func (l *Loader) Name() string {
	return "sqlite:" + l.path
}

// LoadRecords opens the database read-only and scans the whole table.
// Outcome columns missing from the table load as zero; a missing GPA column
// leaves GPA unset so it is derived from the letter grades.
func (l *Loader) LoadRecords(ctx context.Context) ([]types.GradeRecord, error) {
	db, err := sql.Open("sqlite", "file:"+l.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", l.path, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", l.path, err)
	}

	present, err := tableColumns(ctx, db, l.table)
	if err != nil {
		return nil, err
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("table %q not found in %s", l.table, l.path)
	}

	plan := newScanPlan(present)
	rows, err := db.QueryContext(ctx, plan.query(l.table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.table, err)
	}
	defer rows.Close()

	var records []types.GradeRecord
	for rows.Next() {
		record, err := plan.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", l.table, len(records)+1, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", l.table, err)
	}
	return records, nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("inspect table %s: %w", table, err)
		}
		present[name] = true
	}
	return present, rows.Err()
}

// scanPlan lists the columns that exist in the table, in select order.
type scanPlan struct {
	dimensions []string // API field names
	hasGPA     bool
	outcomes   []int // indexes into types.OutcomeNames
}

func newScanPlan(present map[string]bool) scanPlan {
	var plan scanPlan
	for _, field := range []string{"university", "term", "year", "subject", "catalog_number", "instructor", "title"} {
		if present[dimensionColumns[field]] {
			plan.dimensions = append(plan.dimensions, field)
		}
	}
	plan.hasGPA = present[gpaColumn]
	for i, name := range types.OutcomeNames {
		if present[name] {
			plan.outcomes = append(plan.outcomes, i)
		}
	}
	return plan
}

func (p scanPlan) query(table string) string {
	cols := make([]string, 0, len(p.dimensions)+1+len(p.outcomes))
	for _, field := range p.dimensions {
		cols = append(cols, quoteIdent(dimensionColumns[field]))
	}
	if p.hasGPA {
		cols = append(cols, quoteIdent(gpaColumn))
	}
	for _, idx := range p.outcomes {
		cols = append(cols, quoteIdent(types.OutcomeNames[idx]))
	}
	if len(cols) == 0 {
		cols = append(cols, "1")
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(table))
}

func (p scanPlan) scan(rows *sql.Rows) (types.GradeRecord, error) {
	dims := make([]sql.NullString, len(p.dimensions))
	var gpa sql.NullFloat64
	counts := make([]sql.NullFloat64, len(p.outcomes))

	dest := make([]any, 0, len(dims)+1+len(counts))
	for i := range dims {
		dest = append(dest, &dims[i])
	}
	if p.hasGPA {
		dest = append(dest, &gpa)
	}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	if len(dest) == 0 {
		var one int
		dest = append(dest, &one)
	}

	if err := rows.Scan(dest...); err != nil {
		return types.GradeRecord{}, err
	}

	var record types.GradeRecord
	for i, field := range p.dimensions {
		value := strings.TrimSpace(dims[i].String)
		switch field {
		case "university":
			record.University = value
		case "term":
			record.Term = value
		case "year":
			year, err := parseYear(value)
			if err != nil {
				return types.GradeRecord{}, err
			}
			record.Year = year
		case "subject":
			record.Subject = value
		case "catalog_number":
			record.CatalogNumber = value
		case "instructor":
			record.Instructor = value
		case "title":
			record.Title = value
		}
	}
	if gpa.Valid {
		v := gpa.Float64
		record.GPA = &v
	}
	for i, idx := range p.outcomes {
		record.Outcomes[idx] = counts[i].Float64
	}
	return record, nil
}

// parseYear accepts integer years stored as INTEGER, REAL or TEXT.
func parseYear(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	year, err := strconv.ParseFloat(value, 64)
	if err != nil || year != math.Trunc(year) {
		return 0, fmt.Errorf("invalid year %q", value)
	}
	return int(year), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
