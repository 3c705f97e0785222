package cars_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/webcarros/internal/accounts"
	"github.com/JaimeStill/webcarros/internal/cars"
	"github.com/JaimeStill/webcarros/internal/orphans"
	"github.com/JaimeStill/webcarros/pkg/docstore"
	"github.com/JaimeStill/webcarros/pkg/storage"
)

var (
	jpegData = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00")
	pngData  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	gifData  = []byte("GIF89a\x01\x00\x01\x00")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingDocs wraps the memory store and counts calls per operation.
// Adds and deletes are counted for the listing collection only.
type countingDocs struct {
	docstore.Store

	mu        sync.Mutex
	adds      int
	deletes   int
	queries   int
	failAdd   error
	failQuery error

	// beforeAdd runs ahead of each listing write; a non-nil result fails the write.
	beforeAdd func(ctx context.Context) error
}

func (d *countingDocs) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	d.mu.Lock()
	d.queries++
	fail := d.failQuery
	d.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return d.Store.Query(ctx, collection, q)
}

func (d *countingDocs) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	if collection != cars.Collection {
		return d.Store.Add(ctx, collection, fields)
	}

	d.mu.Lock()
	d.adds++
	fail := d.failAdd
	hook := d.beforeAdd
	d.mu.Unlock()
	if fail != nil {
		return "", fail
	}
	if hook != nil {
		if err := hook(ctx); err != nil {
			return "", err
		}
	}
	return d.Store.Add(ctx, collection, fields)
}

func (d *countingDocs) Delete(ctx context.Context, collection, id string) error {
	if collection == cars.Collection {
		d.mu.Lock()
		d.deletes++
		d.mu.Unlock()
	}
	return d.Store.Delete(ctx, collection, id)
}

func (d *countingDocs) calls() (adds, deletes, queries int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adds, d.deletes, d.queries
}

// countingBlobs wraps memory storage and counts calls per key.
type countingBlobs struct {
	storage.System

	mu             sync.Mutex
	stores         int
	deletes        map[string]int
	failStore      func(data []byte) error
	failDeletes    map[string]error
	failAllDeletes error
}

func (b *countingBlobs) Store(ctx context.Context, key string, data []byte, contentType string) error {
	b.mu.Lock()
	b.stores++
	fail := b.failStore
	b.mu.Unlock()
	if fail != nil {
		if err := fail(data); err != nil {
			return err
		}
	}
	return b.System.Store(ctx, key, data, contentType)
}

func (b *countingBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	b.deletes[key]++
	err := b.failDeletes[key]
	if b.failAllDeletes != nil {
		err = b.failAllDeletes
	}
	b.mu.Unlock()
	if err != nil {
		return err
	}
	return b.System.Delete(ctx, key)
}

func (b *countingBlobs) storeCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stores
}

func (b *countingBlobs) deleteCalls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deletes[key]
}

func (b *countingBlobs) totalDeletes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.deletes {
		n += c
	}
	return n
}

type recordedOrphan struct {
	key    string
	reason orphans.Reason
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []recordedOrphan
}

func (f *fakeRecorder) Record(ctx context.Context, key string, reason orphans.Reason, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedOrphan{key: key, reason: reason})
	return nil
}

func (f *fakeRecorder) all() []recordedOrphan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedOrphan(nil), f.records...)
}

type fixture struct {
	sys     cars.System
	docs    *countingDocs
	blobs   *countingBlobs
	orphans *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}

	docs := &countingDocs{Store: docstore.NewMemory(clock)}
	blobs := &countingBlobs{
		System:      storage.NewMemory("/blobs", testLogger()),
		deletes:     map[string]int{},
		failDeletes: map[string]error{},
	}
	rec := &fakeRecorder{}

	return &fixture{
		sys:     cars.New(docs, blobs, rec, 2, testLogger()),
		docs:    docs,
		blobs:   blobs,
		orphans: rec,
	}
}

var (
	maria = &accounts.Session{UID: "user-maria", Name: "Maria Souza", Email: "maria@example.com"}
	joao  = &accounts.Session{UID: "user-joao", Name: "João Lima", Email: "joao@example.com"}
)

func validForm(name string) cars.Form {
	return cars.Form{
		Name:        name,
		Model:       "1.0 Flex",
		Year:        "2015",
		KM:          "80000",
		Price:       "45000",
		City:        "Campo Grande",
		Whatsapp:    "67999998888",
		Description: "Único dono, revisado.",
	}
}

func jpegUpload(name string) cars.Upload {
	return cars.Upload{Filename: name, ContentType: "image/jpeg", Data: jpegData}
}

func mustCreate(t *testing.T, f *fixture, session *accounts.Session, name string, uploads ...cars.Upload) *cars.Car {
	t.Helper()
	if len(uploads) == 0 {
		uploads = []cars.Upload{jpegUpload(name + ".jpg")}
	}
	car, err := f.sys.Create(context.Background(), session, cars.CreateCommand{
		Form:    validForm(name),
		Uploads: uploads,
	})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return car
}
