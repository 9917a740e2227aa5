package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/collegegrades/grades-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGradesDB(t *testing.T, ddl string, inserts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "university_grades.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(ddl)
	require.NoError(t, err)
	for _, stmt := range inserts {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func outcome(t *testing.T, r types.GradeRecord, name string) float64 {
	t.Helper()
	idx, ok := types.OutcomeIndex(name)
	require.True(t, ok)
	return r.Outcomes[idx]
}

func TestLoadRecords(t *testing.T) {
	path := createGradesDB(t,
		`CREATE TABLE grades (
			university TEXT, term TEXT, year INTEGER, subject TEXT,
			"Catalog Number" TEXT, instructor TEXT, title TEXT, GPA REAL,
			A_plus REAL, A REAL, B REAL, Withdrawn REAL, DFWU REAL
		)`,
		`INSERT INTO grades VALUES ('UC Davis', 'Fall', 2021, 'MAT', '21A', 'Smith, Jane', 'Calculus', 3.5, 0, 10, 10, 2, NULL)`,
		`INSERT INTO grades VALUES ('UCLA', 'Spring', '2020', 'CS', ' 31 ', 'Lee, Kim', NULL, NULL, 1, NULL, NULL, NULL, 4)`,
	)

	records, err := NewLoader(path, "grades").LoadRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "UC Davis", first.University)
	assert.Equal(t, "Fall", first.Term)
	assert.Equal(t, 2021, first.Year)
	assert.Equal(t, "21A", first.CatalogNumber)
	assert.Equal(t, "Calculus", first.Title)
	require.NotNil(t, first.GPA)
	assert.InDelta(t, 3.5, *first.GPA, 1e-9)
	assert.Equal(t, float64(10), outcome(t, first, "A"))
	assert.Equal(t, float64(2), outcome(t, first, "Withdrawn"))
	assert.Equal(t, float64(0), outcome(t, first, "Pass"), "missing columns load as zero")

	second := records[1]
	assert.Equal(t, 2020, second.Year)
	assert.Equal(t, "31", second.CatalogNumber)
	assert.Empty(t, second.Title)
	assert.Nil(t, second.GPA)
	assert.Equal(t, float64(4), outcome(t, second, "DFWU"))
}

func TestLoadRecords_WithoutGPAColumn(t *testing.T) {
	path := createGradesDB(t,
		`CREATE TABLE grades (university TEXT, year INTEGER, A REAL)`,
		`INSERT INTO grades VALUES ('UCLA', 2019, 3)`,
	)

	records, err := NewLoader(path, "grades").LoadRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].GPA)
	assert.Equal(t, 2019, records[0].Year)
}

func TestLoadRecords_MissingTable(t *testing.T) {
	path := createGradesDB(t, `CREATE TABLE other (id INTEGER)`)

	_, err := NewLoader(path, "grades").LoadRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "grades" not found`)
}

func TestLoadRecords_BadYear(t *testing.T) {
	path := createGradesDB(t,
		`CREATE TABLE grades (university TEXT, year TEXT)`,
		`INSERT INTO grades VALUES ('UCLA', 'spring')`,
	)

	_, err := NewLoader(path, "grades").LoadRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid year")
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"2021", 2021, false},
		{"2021.0", 2021, false},
		{"", 0, false},
		{"2020abc", 0, true},
		{"2020.5", 0, true},
		{"spring", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseYear(tt.value)
			if tt.wantErr {
				assert.ErrorContains(t, err, "invalid year")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadRecords_TrailingTextInYear(t *testing.T) {
	path := createGradesDB(t,
		`CREATE TABLE grades (university TEXT, year TEXT)`,
		`INSERT INTO grades VALUES ('UCLA', '2020abc')`,
	)

	_, err := NewLoader(path, "grades").LoadRecords(context.Background())
	assert.ErrorContains(t, err, "invalid year")
}

func TestScanPlanQuery(t *testing.T) {
	plan := newScanPlan(map[string]bool{"Catalog Number": true, "GPA": true, "F": true})
	assert.Equal(t, `SELECT "Catalog Number", "GPA", "F" FROM "grades"`, plan.query("grades"))
	assert.Equal(t, "sqlite:/tmp/x.db", NewLoader("/tmp/x.db", "grades").Name())
}
