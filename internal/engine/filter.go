package engine

import (
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/collegegrades/grades-api/internal/types"
)

// Filter is a single field=value constraint as received from a caller.
type Filter struct {
	Field string
	Value string
}

// FilterSet is an ordered list of constraints. Field names are not validated
// until a predicate is built from it.
type FilterSet []Filter

// FilterSetFromValues collects the first value of every query parameter,
// skipping the named keys. Keys are sorted so the result is deterministic.
func FilterSetFromValues(values url.Values, skip ...string) FilterSet {
	keys := make([]string, 0, len(values))
	for key := range values {
		if slices.Contains(skip, key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	filters := make(FilterSet, 0, len(keys))
	for _, key := range keys {
		if vals := values[key]; len(vals) > 0 {
			filters = append(filters, Filter{Field: key, Value: vals[0]})
		}
	}
	return filters
}

// Without returns a copy of fs minus every constraint on field.
func (fs FilterSet) Without(field string) FilterSet {
	out := make(FilterSet, 0, len(fs))
	for _, f := range fs {
		if f.Field != field {
			out = append(out, f)
		}
	}
	return out
}

// Predicate reports whether a record satisfies a FilterSet.
type Predicate func(r *types.GradeRecord) bool

type boundFilter struct {
	col   Column
	value string
}

// BuildPredicate ANDs every recognized, non-blank constraint in fs. Unknown
// field names are dropped so older and newer clients keep working; an empty
// set matches every record.
func BuildPredicate(fs FilterSet) Predicate {
	bound := make([]boundFilter, 0, len(fs))
	for _, f := range fs {
		col, ok := LookupColumn(f.Field)
		if !ok {
			continue
		}
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		bound = append(bound, boundFilter{col: col, value: value})
	}

	if len(bound) == 0 {
		return func(*types.GradeRecord) bool { return true }
	}

	return func(r *types.GradeRecord) bool {
		for _, b := range bound {
			if !strings.EqualFold(b.col.Text(r), b.value) {
				return false
			}
		}
		return true
	}
}
