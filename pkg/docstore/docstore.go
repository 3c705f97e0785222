// Package docstore defines a schemaless document store addressed by collection
// and document id. Documents are JSON objects; queries filter on the text form
// of top-level fields using byte-wise comparison and may order by one field.
//
// Two implementations are provided: a PostgreSQL JSONB store for deployments and
// an in-memory store for development and tests. Both produce identical results
// for the same sequence of calls.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/JaimeStill/webcarros/pkg/query"
)

// TimestampLayout is the fixed-width UTC layout used for server timestamps,
// chosen so lexical order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// ServerTimestamp is replaced by the store's clock when a document is added.
const ServerTimestamp = serverTimestamp("__server_timestamp__")

type serverTimestamp string

// Fields is the body of a document.
type Fields map[string]any

// Document is a stored document with its store-assigned identity.
type Document struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Fields     Fields    `json:"fields"`
	CreatedAt  time.Time `json:"created_at"`
}

// Op is a comparison operator for field filters.
type Op string

const (
	Equal          Op = "=="
	GreaterThan    Op = ">"
	GreaterOrEqual Op = ">="
	LessThan       Op = "<"
	LessOrEqual    Op = "<="
)

// Valid reports whether o is a supported operator.
func (o Op) Valid() bool {
	switch o {
	case Equal, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual:
		return true
	default:
		return false
	}
}

// Filter compares the text form of Field against Value.
type Filter struct {
	Field string
	Op    Op
	Value string
}

// Query selects documents from a collection. All filters must match.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// Where returns a copy of q with an additional filter.
func (q Query) Where(field string, op Op, value string) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: value})
	return q
}

// Order returns a copy of q sorted by field.
func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// Validate checks that every filter names a field and uses a supported operator.
// Field names are letters, digits and underscores, not starting with a digit.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("%w: filter field required", ErrInvalidQuery)
		}
		if !query.ValidField(f.Field) {
			return fmt.Errorf("%w: invalid field %q", ErrInvalidQuery, f.Field)
		}
		if !f.Op.Valid() {
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidQuery, f.Op)
		}
	}
	if q.OrderBy != "" && !query.ValidField(q.OrderBy) {
		return fmt.Errorf("%w: invalid order field %q", ErrInvalidQuery, q.OrderBy)
	}
	return nil
}

// Store is the document backend contract.
type Store interface {
	// Query returns every document in collection matching q.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)

	// Get returns a single document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// Add stores fields as a new document and returns its id.
	// ServerTimestamp values are replaced with the store's clock.
	Add(ctx context.Context, collection string, fields Fields) (string, error)

	// Delete removes a document. Deleting a missing document returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
}

// Clock returns the current time. Stores accept one for deterministic tests.
type Clock func() time.Time

// resolve normalizes fields through JSON so that both stores hold the same
// representation, replacing ServerTimestamp sentinels with now.
func resolve(fields Fields, now time.Time) (Fields, []byte, error) {
	prepared := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			prepared[k] = now.UTC().Format(TimestampLayout)
			continue
		}
		prepared[k] = v
	}

	data, err := json.Marshal(prepared)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var normalized Fields
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	return normalized, data, nil
}

// textValue mirrors PostgreSQL's ->> operator for decoded JSON values.
// The boolean is false when the field is absent or JSON null.
func textValue(fields Fields, field string) (string, bool) {
	v, ok := fields[field]
	if !ok || v == nil {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
