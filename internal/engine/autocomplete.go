package engine

import (
	"context"
	"sort"
	"strings"
	"time"
)

// MaxSuggestions bounds every autocomplete response.
const MaxSuggestions = 10

// Suggest returns up to MaxSuggestions distinct, non-empty values of field
// among records matching filters (constraints on field itself are dropped)
// whose text contains search, ignoring case. Years come back newest first;
// other fields keep the order in which values first appear in the store.
// An unrecognized field yields an empty result rather than an error.
func (s *Store) Suggest(ctx context.Context, field string, filters FilterSet, search string) ([]any, error) {
	defer observe(OpSuggest, time.Now())

	col, ok := LookupColumn(field)
	if !ok {
		return []any{}, nil
	}

	matched, err := s.match(ctx, BuildPredicate(filters.Without(field)))
	if err != nil {
		queryErrors.WithLabelValues(OpSuggest).Inc()
		return nil, &QueryExecutionError{Op: OpSuggest, Err: err}
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	seen := make(map[string]struct{})
	values := make([]any, 0, MaxSuggestions)
	ordered := field != FieldYear

	for _, r := range matched {
		value, present := col.Value(r)
		if !present {
			continue
		}
		text := col.Text(r)
		if _, dup := seen[text]; dup {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(text), needle) {
			continue
		}
		seen[text] = struct{}{}
		values = append(values, value)
		if ordered && len(values) == MaxSuggestions {
			break
		}
	}

	if field == FieldYear {
		sort.SliceStable(values, func(i, j int) bool {
			return values[i].(int) > values[j].(int)
		})
	}
	if len(values) > MaxSuggestions {
		values = values[:MaxSuggestions]
	}
	return values, nil
}
