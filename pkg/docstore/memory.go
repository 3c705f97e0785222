package docstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryDoc struct {
	seq int64
	doc Document
}

type memoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
	seq         int64
	now         Clock
}

// NewMemory creates an in-memory Store. A nil clock uses time.Now.
func NewMemory(now Clock) Store {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		collections: make(map[string]map[string]memoryDoc),
		now:         now,
	}
}

func (s *memoryStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]memoryDoc, 0)
	for _, d := range s.collections[collection] {
		if matches(d.doc.Fields, q.Filters) {
			matched = append(matched, d)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b memoryDoc) int {
		if q.OrderBy != "" {
			if c := compareField(a.doc.Fields, b.doc.Fields, q.OrderBy, q.Descending); c != 0 {
				return c
			}
		}
		return int(a.seq - b.seq)
	})

	result := make([]Document, len(matched))
	for i, d := range matched {
		result[i] = clone(d.doc)
	}
	return result, nil
}

func (s *memoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	doc := clone(d.doc)
	return &doc, nil
}

func (s *memoryStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := s.now().UTC()
	normalized, _, err := resolve(fields, now)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]memoryDoc)
		s.collections[collection] = docs
	}

	s.seq++
	docs[id] = memoryDoc{
		seq: s.seq,
		doc: Document{
			ID:         id,
			Collection: collection,
			Fields:     normalized,
			CreatedAt:  now,
		},
	}
	return id, nil
}

func (s *memoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func matches(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		v, ok := textValue(fields, f.Field)
		if !ok {
			return false
		}

		c := strings.Compare(v, f.Value)
		var pass bool
		switch f.Op {
		case Equal:
			pass = c == 0
		case GreaterThan:
			pass = c > 0
		case GreaterOrEqual:
			pass = c >= 0
		case LessThan:
			pass = c < 0
		case LessOrEqual:
			pass = c <= 0
		}
		if !pass {
			return false
		}
	}
	return true
}

// compareField orders missing values after present ones ascending and before
// them descending, matching PostgreSQL's NULL placement.
func compareField(a, b Fields, field string, descending bool) int {
	av, aok := textValue(a, field)
	bv, bok := textValue(b, field)

	var c int
	switch {
	case !aok && !bok:
		c = 0
	case !aok:
		c = 1
	case !bok:
		c = -1
	default:
		c = strings.Compare(av, bv)
	}

	if descending {
		return -c
	}
	return c
}

// clone deep-copies the decoded field tree so callers cannot mutate stored state.
func clone(d Document) Document {
	d.Fields = cloneValue(map[string]any(d.Fields)).(map[string]any)
	return d
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
