package cars

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/orphans"
	"github.com/JaimeStill/webcarros/pkg/docstore"
)

// prefixSentinel is the highest code point of the Private Use Area. Appended to
// a prefix it bounds the range of names that start with the prefix.
const prefixSentinel = "\uf8ff"

type repo struct {
	docs        docstore.Store
	blobs       Blobs
	orphans     orphans.Recorder
	concurrency int
	logger      *slog.Logger

	// submissions joins concurrent creations that share an owner and submission key.
	submissions singleflight.Group
}

// New creates the listing system. Uploads within one creation run at most
// concurrency at a time.
func New(docs docstore.Store, blobs Blobs, orphans orphans.Recorder, concurrency int, logger *slog.Logger) System {
	if concurrency < 1 {
		concurrency = 1
	}
	return &repo{
		docs:        docs,
		blobs:       blobs,
		orphans:     orphans,
		concurrency: concurrency,
		logger:      logger.With("system", "cars"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) ListAll(ctx context.Context) ([]Car, error) {
	return r.list(ctx, docstore.Query{}.Order("createdAt", true))
}

func (r *repo) SearchByName(ctx context.Context, prefix string) ([]Car, error) {
	prefix = upper(prefix)
	if prefix == "" {
		return r.ListAll(ctx)
	}

	q := docstore.Query{}.
		Where("name", docstore.GreaterOrEqual, prefix).
		Where("name", docstore.LessOrEqual, prefix+prefixSentinel).
		Order("name", false)
	return r.list(ctx, q)
}

func (r *repo) ListByOwner(ctx context.Context, session *accounts.Session) ([]Car, error) {
	if session == nil {
		return nil, accounts.ErrUnauthenticated
	}

	q := docstore.Query{}.
		Where("uid", docstore.Equal, session.UID).
		Order("createdAt", true)
	return r.list(ctx, q)
}

func (r *repo) Find(ctx context.Context, id string) (*Car, error) {
	doc, err := r.docs.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find car %s: %w", ErrRemote, id, err)
	}

	car, err := fromDocument(*doc)
	if err != nil {
		return nil, fmt.Errorf("decode car %s: %w", id, err)
	}
	return &car, nil
}

func (r *repo) Create(ctx context.Context, session *accounts.Session, cmd CreateCommand) (*Car, error) {
	if session == nil {
		return nil, accounts.ErrUnauthenticated
	}

	form := cmd.Form.trimmed()
	if err := validate(form, cmd.imageCount()); err != nil {
		return nil, err
	}
	types, err := validateUploads(cmd.Uploads)
	if err != nil {
		return nil, err
	}

	if form.SubmissionKey == "" {
		return r.create(ctx, session, form, cmd, types)
	}

	v, err, shared := r.submissions.Do(session.UID+"\x00"+form.SubmissionKey, func() (any, error) {
		existing, err := r.findSubmission(ctx, session.UID, form.SubmissionKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			r.logger.Info("duplicate submission", "id", existing.ID, "uid", session.UID)
			return existing, nil
		}
		return r.create(ctx, session, form, cmd, types)
	})
	if err != nil {
		return nil, err
	}

	car := *v.(*Car)
	if shared {
		r.logger.Info("joined concurrent submission", "id", car.ID, "uid", session.UID)
	}
	return &car, nil
}

func (r *repo) create(ctx context.Context, session *accounts.Session, form Form, cmd CreateCommand, types []string) (*Car, error) {
	staged, err := r.claimStaged(ctx, session.UID, cmd.Staged)
	if err != nil {
		return nil, err
	}

	uploaded, err := r.uploadAll(ctx, session.UID, cmd.Uploads, types)
	if err != nil {
		r.unclaim(ctx, staged)
		return nil, err
	}

	images := append(staged, uploaded...)
	fields := newFields(form, session.Name, session.UID, images)

	id, err := r.docs.Add(ctx, Collection, fields)
	if err != nil {
		r.compensate(ctx, uploaded)
		r.unclaim(ctx, staged)
		if errors.Is(err, docstore.ErrDuplicate) && form.SubmissionKey != "" {
			return r.existingSubmission(ctx, session.UID, form.SubmissionKey, err)
		}
		return nil, fmt.Errorf("%w: create car: %w", ErrRemote, err)
	}

	r.logger.Info("car created", "id", id, "name", fields["name"], "uid", session.UID, "images", len(images))

	car, err := r.Find(ctx, id)
	if err != nil {
		r.logger.Warn("reload created car failed", "id", id, "error", err)
		return &Car{
			ID:          id,
			Name:        upper(form.Name),
			Model:       form.Model,
			Year:        form.Year,
			KM:          form.KM,
			Price:       form.Price,
			City:        form.City,
			Whatsapp:    form.Whatsapp,
			Description: form.Description,
			Owner:       session.Name,
			UID:         session.UID,
			Images:      images,
		}, nil
	}
	return car, nil
}

// existingSubmission resolves a write rejected because another process stored
// the same submission first.
func (r *repo) existingSubmission(ctx context.Context, uid, key string, cause error) (*Car, error) {
	existing, err := r.findSubmission(ctx, uid, key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: create car: %w", ErrRemote, cause)
	}
	r.logger.Info("duplicate submission", "id", existing.ID, "uid", uid)
	return existing, nil
}

func (r *repo) Delete(ctx context.Context, session *accounts.Session, id string) error {
	if session == nil {
		return accounts.ErrUnauthenticated
	}

	car, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if car.UID != session.UID {
		return ErrForbidden
	}

	if err := r.docs.Delete(ctx, Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: delete car %s: %w", ErrRemote, id, err)
	}

	seen := make(map[string]bool, len(car.Images))
	for _, img := range car.Images {
		key := img.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		if err := r.blobs.Delete(ctx, key); err != nil {
			r.logger.Warn("image delete failed", "car", id, "key", key, "error", err)
			r.orphans.Record(context.WithoutCancel(ctx), key, orphans.DeleteFailed, err)
		}
	}

	r.logger.Info("car deleted", "id", id, "uid", session.UID, "images", len(car.Images))
	return nil
}

func (r *repo) UploadImage(ctx context.Context, session *accounts.Session, upload Upload) (*Image, error) {
	if session == nil {
		return nil, accounts.ErrUnauthenticated
	}

	types, err := validateUploads([]Upload{upload})
	if err != nil {
		return nil, err
	}

	img, err := r.upload(ctx, session.UID, upload, types[0])
	if err != nil {
		return nil, err
	}
	if err := r.stage(ctx, img); err != nil {
		r.compensate(ctx, []Image{img})
		return nil, err
	}

	r.logger.Info("image staged", "key", img.Key())
	return &img, nil
}

func (r *repo) DeleteImage(ctx context.Context, session *accounts.Session, image Image) error {
	if session == nil {
		return accounts.ErrUnauthenticated
	}
	if image.UID != session.UID {
		return ErrForbidden
	}

	p, err := r.findPending(ctx, image.UID, image.Name)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotFound
	}
	ok, err := r.claim(ctx, *p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	key := p.image.Key()
	if err := r.blobs.Delete(ctx, key); err != nil {
		r.logger.Warn("staged image delete failed", "key", key, "error", err)
		r.orphans.Record(context.WithoutCancel(ctx), key, orphans.DeleteFailed, err)
		return nil
	}

	r.logger.Info("image removed", "key", key)
	return nil
}

func (r *repo) list(ctx context.Context, q docstore.Query) ([]Car, error) {
	docs, err := r.docs.Query(ctx, Collection, q)
	if err != nil {
		return nil, fmt.Errorf("%w: query cars: %w", ErrRemote, err)
	}

	cars := make([]Car, 0, len(docs))
	for _, doc := range docs {
		car, err := fromDocument(doc)
		if err != nil {
			r.logger.Error("skip malformed car", "id", doc.ID, "error", err)
			continue
		}
		cars = append(cars, car.summary())
	}
	return cars, nil
}

func (r *repo) findSubmission(ctx context.Context, uid, key string) (*Car, error) {
	q := docstore.Query{}.
		Where("uid", docstore.Equal, uid).
		Where("submissionKey", docstore.Equal, key)

	docs, err := r.docs.Query(ctx, Collection, q)
	if err != nil {
		return nil, fmt.Errorf("%w: check submission: %w", ErrRemote, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	car, err := fromDocument(docs[0])
	if err != nil {
		return nil, fmt.Errorf("decode car %s: %w", docs[0].ID, err)
	}
	return &car, nil
}

// uploadAll stores every upload concurrently and returns the images in input
// order. On failure every blob this call stored is removed.
func (r *repo) uploadAll(ctx context.Context, uid string, uploads []Upload, types []string) ([]Image, error) {
	images := make([]Image, len(uploads))
	done := make([]bool, len(uploads))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, u := range uploads {
		g.Go(func() error {
			img, err := r.upload(gctx, uid, u, types[i])
			if err != nil {
				return err
			}
			mu.Lock()
			images[i] = img
			done[i] = true
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		stored := make([]Image, 0, len(images))
		for i, ok := range done {
			if ok {
				stored = append(stored, images[i])
			}
		}
		r.compensate(ctx, stored)
		return nil, err
	}
	return images, nil
}

func (r *repo) upload(ctx context.Context, uid string, u Upload, contentType string) (Image, error) {
	img := Image{Name: uuid.NewString(), UID: uid}
	key := img.Key()

	if err := r.blobs.Store(ctx, key, u.Data, contentType); err != nil {
		return Image{}, fmt.Errorf("%w: upload %s: %w", ErrRemote, u.Filename, err)
	}

	url, err := r.blobs.URL(ctx, key)
	if err != nil {
		r.compensate(ctx, []Image{img})
		return Image{}, fmt.Errorf("%w: resolve url %s: %w", ErrRemote, key, err)
	}

	img.URL = url
	return img, nil
}

// compensate removes blobs written for a failed creation. Blobs that cannot
// be removed are recorded for the reconciler.
func (r *repo) compensate(ctx context.Context, images []Image) {
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		key := img.Key()
		if err := r.blobs.Delete(ctx, key); err != nil {
			r.logger.Error("cleanup failed after create error", "key", key, "error", err)
			r.orphans.Record(ctx, key, orphans.UploadUnreferenced, err)
			continue
		}
		r.logger.Info("removed unreferenced upload", "key", key)
	}
}

func stagedMissing() error {
	verr := newValidationError()
	verr.add("images", msgNoImages, ErrNoImages)
	return verr
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
