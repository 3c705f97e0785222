package cars

import (
	"context"

	"github.com/JaimeStill/webcarros/internal/accounts"
)

// System defines the listing operations. Workflows that act on behalf of an
// owner take the session explicitly.
type System interface {
	Handler(maxUploadSize int64) *Handler
	ListAll(ctx context.Context) ([]Car, error)
	SearchByName(ctx context.Context, prefix string) ([]Car, error)
	ListByOwner(ctx context.Context, session *accounts.Session) ([]Car, error)
	Find(ctx context.Context, id string) (*Car, error)
	Create(ctx context.Context, session *accounts.Session, cmd CreateCommand) (*Car, error)
	Delete(ctx context.Context, session *accounts.Session, id string) error
	UploadImage(ctx context.Context, session *accounts.Session, upload Upload) (*Image, error)
	DeleteImage(ctx context.Context, session *accounts.Session, image Image) error
}

// Blobs is the subset of blob storage used by listings.
type Blobs interface {
	Store(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Validate(ctx context.Context, key string) (bool, error)
	URL(ctx context.Context, key string) (string, error)
}
