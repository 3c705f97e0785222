package orphans

import (
	"context"

	"github.com/JaimeStill/webcarros/pkg/lifecycle"
)

// Recorder accepts blobs that could not be deleted inline.
type Recorder interface {
	Record(ctx context.Context, key string, reason Reason, cause error) error
}

// System defines orphan tracking and reconciliation.
type System interface {
	Recorder
	List(ctx context.Context) ([]Orphan, error)
	Reconcile(ctx context.Context) (Result, error)
	Start(lc *lifecycle.Coordinator) error
}

// Blobs deletes stored objects. Deleting a missing key succeeds.
type Blobs interface {
	Delete(ctx context.Context, key string) error
}
