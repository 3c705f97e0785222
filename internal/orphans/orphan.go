// Package orphans tracks blobs that no listing references and removes them
// from a background job. Orphans appear when a listing write fails after its
// uploads succeeded, or when a blob deletion fails after its listing was removed.
package orphans

import (
	"time"

	"github.com/JaimeStill/webcarros/pkg/decode"
	"github.com/JaimeStill/webcarros/pkg/docstore"
)

// Collection holds one document per unreconciled blob.
const Collection = "orphans"

// Reason records how a blob became unreferenced.
type Reason string

const (
	UploadUnreferenced Reason = "upload_unreferenced"
	DeleteFailed       Reason = "delete_failed"
)

// Orphan is a blob key awaiting deletion.
type Orphan struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Reason    Reason    `json:"reason"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result summarizes one reconciliation pass.
type Result struct {
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
	Exhausted int `json:"exhausted"`
}

type record struct {
	Key       string `json:"key"`
	Reason    Reason `json:"reason"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"lastError"`
	CreatedAt string `json:"createdAt"`
}

func fromDocument(doc docstore.Document) (Orphan, error) {
	rec, err := decode.FromMap[record](doc.Fields)
	if err != nil {
		return Orphan{}, err
	}

	created, err := time.Parse(docstore.TimestampLayout, rec.CreatedAt)
	if err != nil {
		created = doc.CreatedAt
	}

	return Orphan{
		ID:        doc.ID,
		Key:       rec.Key,
		Reason:    rec.Reason,
		Attempts:  rec.Attempts,
		LastError: rec.LastError,
		CreatedAt: created,
	}, nil
}

func (o Orphan) fields() docstore.Fields {
	return docstore.Fields{
		"key":       o.Key,
		"reason":    string(o.Reason),
		"attempts":  o.Attempts,
		"lastError": o.LastError,
		"createdAt": o.CreatedAt.UTC().Format(docstore.TimestampLayout),
	}
}
