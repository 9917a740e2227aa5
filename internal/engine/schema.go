package engine

import (
	"strconv"

	"github.com/collegegrades/grades-api/internal/types"
)

// Filterable record attributes.
const (
	FieldUniversity    = "university"
	FieldTerm          = "term"
	FieldYear          = "year"
	FieldSubject       = "subject"
	FieldCatalogNumber = "catalog_number"
	FieldInstructor    = "instructor"
	FieldTitle         = "title"
)

// Column is a typed accessor for one dimension attribute of a GradeRecord.
type Column struct {
	Name string

	// Text returns the value used for equality and substring matching.
	// An empty string means the attribute is absent.
	Text func(r *types.GradeRecord) string

	// Value returns the attribute in its JSON form, reporting false when absent.
	Value func(r *types.GradeRecord) (any, bool)
}

func stringColumn(name string, get func(r *types.GradeRecord) string) Column {
	return Column{
		Name: name,
		Text: get,
		Value: func(r *types.GradeRecord) (any, bool) {
			v := get(r)
			return v, v != ""
		},
	}
}

var yearColumn = Column{
	Name: FieldYear,
	Text: func(r *types.GradeRecord) string {
		if r.Year == 0 {
			return ""
		}
		return strconv.Itoa(r.Year)
	},
	Value: func(r *types.GradeRecord) (any, bool) {
		return r.Year, r.Year != 0
	},
}

// columns is built once and never mutated; lookups by field name replace
// per-request reflection over the record type.
var columns = map[string]Column{
	FieldUniversity:    stringColumn(FieldUniversity, func(r *types.GradeRecord) string { return r.University }),
	FieldTerm:          stringColumn(FieldTerm, func(r *types.GradeRecord) string { return r.Term }),
	FieldYear:          yearColumn,
	FieldSubject:       stringColumn(FieldSubject, func(r *types.GradeRecord) string { return r.Subject }),
	FieldCatalogNumber: stringColumn(FieldCatalogNumber, func(r *types.GradeRecord) string { return r.CatalogNumber }),
	FieldInstructor:    stringColumn(FieldInstructor, func(r *types.GradeRecord) string { return r.Instructor }),
	FieldTitle:         stringColumn(FieldTitle, func(r *types.GradeRecord) string { return r.Title }),
}

// FieldNames lists the recognized attributes in a stable order.
var FieldNames = []string{
	FieldUniversity,
	FieldTerm,
	FieldYear,
	FieldSubject,
	FieldCatalogNumber,
	FieldInstructor,
	FieldTitle,
}

// LookupColumn returns the descriptor for a recognized field name.
func LookupColumn(name string) (Column, bool) {
	col, ok := columns[name]
	return col, ok
}
