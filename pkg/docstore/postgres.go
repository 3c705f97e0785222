package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/webcarros/pkg/query"
	"github.com/JaimeStill/webcarros/pkg/repository"
)

const documentsTable = "documents"

var documentColumns = []string{"id", "data", "created_at"}

type postgresStore struct {
	db  *sql.DB
	now Clock
}

// NewPostgres creates a Store over the documents table. A nil clock uses time.Now.
func NewPostgres(db *sql.DB, now Clock) Store {
	if now == nil {
		now = time.Now
	}
	return &postgresStore{db: db, now: now}
}

func (s *postgresStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	qb := query.NewBuilder(documentsTable, "data").WhereColumn("collection", collection)
	for _, f := range q.Filters {
		qb.WhereField(f.Field, sqlOp(f.Op), f.Value)
	}
	qb.OrderByField(q.OrderBy, q.Descending)

	stmt, args := qb.BuildSelect(documentColumns...)
	docs, err := repository.QueryMany(ctx, s.db, stmt, args, scanDocument(collection))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

func (s *postgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}

	stmt, args := query.NewBuilder(documentsTable, "data").
		WhereColumn("collection", collection).
		WhereColumn("id", id).
		BuildSelect(documentColumns...)

	doc, err := repository.QueryOne(ctx, s.db, stmt, args, scanDocument(collection))
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &doc, nil
}

func (s *postgresStore) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	now := s.now().UTC()
	_, data, err := resolve(fields, now)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	const stmt = `
		INSERT INTO documents (collection, id, data, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := s.db.ExecContext(ctx, stmt, collection, id, data, now); err != nil {
		return "", repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return id, nil
}

func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	if uuid.Validate(id) != nil {
		return ErrNotFound
	}

	const stmt = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	err := repository.ExecExpectOne(ctx, s.db, stmt, collection, id)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func sqlOp(op Op) string {
	if op == Equal {
		return query.OpEqual
	}
	return string(op)
}

func scanDocument(collection string) repository.ScanFunc[Document] {
	return func(s repository.Scanner) (Document, error) {
		var (
			doc  Document
			data []byte
		)
		if err := s.Scan(&doc.ID, &data, &doc.CreatedAt); err != nil {
			return doc, err
		}
		if err := json.Unmarshal(data, &doc.Fields); err != nil {
			return doc, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		doc.Collection = collection
		doc.CreatedAt = doc.CreatedAt.UTC()
		return doc, nil
	}
}
