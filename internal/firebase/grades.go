package firebase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/collegegrades/grades-api/internal/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GradeLoader reads grade records from one Firestore collection. Each
// document holds the dimension fields, an optional GPA and one numeric field
// per outcome counter, named as in types.OutcomeNames.
type GradeLoader struct {
	db         *Firestore
	collection string
}

// NewGradeLoader returns a loader over collection.
func NewGradeLoader(db *Firestore, collection string) *GradeLoader {
	return &GradeLoader{db: db, collection: collection}
}

// Name identifies the source in logs.
func (l *GradeLoader) Name() string {
	return "firestore:" + l.collection
}

// LoadRecords streams every document of the collection.
func (l *GradeLoader) LoadRecords(ctx context.Context) ([]types.GradeRecord, error) {
	iter := l.db.Collection(l.collection).Documents(ctx)
	defer iter.Stop()

	var records []types.GradeRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			switch status.Code(err) {
			case codes.PermissionDenied, codes.Unauthenticated:
				return nil, fmt.Errorf("access to collection %q denied: %w", l.collection, err)
			default:
				return nil, fmt.Errorf("failed to get next grade record: %w", err)
			}
		}

		record, err := recordFromData(doc.Data())
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.Ref.ID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// recordFromData converts a Firestore document map into a GradeRecord.
func recordFromData(data map[string]any) (types.GradeRecord, error) {
	var record types.GradeRecord
	var err error

	record.University = stringField(data, "university")
	record.Term = stringField(data, "term")
	record.Subject = stringField(data, "subject")
	record.CatalogNumber = stringField(data, "catalog_number")
	record.Instructor = stringField(data, "instructor")
	record.Title = stringField(data, "title")

	if record.Year, err = intField(data, "year"); err != nil {
		return types.GradeRecord{}, err
	}

	if v, ok := data["GPA"]; ok && v != nil {
		gpa, err := toFloat(v)
		if err != nil {
			return types.GradeRecord{}, fmt.Errorf("GPA: %w", err)
		}
		record.GPA = &gpa
	}

	for i, name := range types.OutcomeNames {
		v, ok := data[name]
		if !ok || v == nil {
			continue
		}
		count, err := toFloat(v)
		if err != nil {
			return types.GradeRecord{}, fmt.Errorf("%s: %w", name, err)
		}
		record.Outcomes[i] = count
	}
	return record, nil
}

func stringField(data map[string]any, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(data map[string]any, key string) (int, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return 0, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return int(f), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
