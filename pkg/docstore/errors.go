package docstore

import "errors"

// Store errors returned by Store implementations.
var (
	ErrNotFound        = errors.New("docstore: document not found")
	ErrDuplicate       = errors.New("docstore: document already exists")
	ErrInvalidQuery    = errors.New("docstore: invalid query")
	ErrInvalidDocument = errors.New("docstore: invalid document")
)
