package cars

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/webcarros/pkg/decode"
	"github.com/JaimeStill/webcarros/pkg/docstore"
)

// StagedCollection holds one document per uploaded image not yet attached to
// a listing. Attaching or removing the image consumes its document.
const StagedCollection = "staged"

type stagedRecord struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
	URL  string `json:"url"`
}

// pending is a staged image together with the id of its tracking document.
type pending struct {
	id    string
	image Image
}

func (r *repo) stage(ctx context.Context, img Image) error {
	_, err := r.docs.Add(ctx, StagedCollection, docstore.Fields{
		"name":      img.Name,
		"uid":       img.UID,
		"url":       img.URL,
		"key":       img.Key(),
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("%w: stage image %s: %w", ErrRemote, img.Name, err)
	}
	return nil
}

// findPending returns the pending record for an owner's asset, or nil.
func (r *repo) findPending(ctx context.Context, uid, name string) (*pending, error) {
	if uuid.Validate(name) != nil {
		return nil, nil
	}

	q := docstore.Query{}.
		Where("uid", docstore.Equal, uid).
		Where("name", docstore.Equal, name)

	docs, err := r.docs.Query(ctx, StagedCollection, q)
	if err != nil {
		return nil, fmt.Errorf("%w: find staged image %s: %w", ErrRemote, name, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	rec, err := decode.FromMap[stagedRecord](docs[0].Fields)
	if err != nil {
		return nil, fmt.Errorf("decode staged image %s: %w", name, err)
	}
	return &pending{
		id:    docs[0].ID,
		image: Image{Name: rec.Name, UID: rec.UID, URL: rec.URL},
	}, nil
}

// claim removes the tracking document. Only one caller can remove it, so a
// staged image is attached to at most one listing.
func (r *repo) claim(ctx context.Context, p pending) (bool, error) {
	err := r.docs.Delete(ctx, StagedCollection, p.id)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: claim staged image %s: %w", ErrRemote, p.image.Name, err)
	}
	return true, nil
}

// claimStaged takes every named staged image for the owner. Repeated names are
// attached once. On failure the images already taken are returned to staging.
func (r *repo) claimStaged(ctx context.Context, uid string, names []string) ([]Image, error) {
	seen := make(map[string]bool, len(names))
	images := make([]Image, 0, len(names))

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		p, err := r.findPending(ctx, uid, name)
		if err == nil && p == nil {
			err = stagedMissing()
		}
		if err == nil {
			var ok bool
			ok, err = r.claim(ctx, *p)
			if err == nil && !ok {
				err = stagedMissing()
			}
		}
		if err != nil {
			r.unclaim(ctx, images)
			return nil, err
		}
		images = append(images, p.image)
	}
	return images, nil
}

// unclaim returns images to staging after a failed creation.
func (r *repo) unclaim(ctx context.Context, images []Image) {
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		if err := r.stage(ctx, img); err != nil {
			r.logger.Error("restore staged image failed", "key", img.Key(), "error", err)
		}
	}
}
