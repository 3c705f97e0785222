package orphans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/webcarros/pkg/docstore"
	"github.com/JaimeStill/webcarros/pkg/lifecycle"
)

type repo struct {
	docs        docstore.Store
	blobs       Blobs
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// New creates the orphan system. A zero interval disables the background job.
func New(docs docstore.Store, blobs Blobs, interval time.Duration, maxAttempts int, logger *slog.Logger) System {
	return &repo{
		docs:        docs,
		blobs:       blobs,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger.With("system", "orphans"),
	}
}

func (r *repo) Record(ctx context.Context, key string, reason Reason, cause error) error {
	fields := docstore.Fields{
		"key":       key,
		"reason":    string(reason),
		"attempts":  0,
		"createdAt": docstore.ServerTimestamp,
	}
	if cause != nil {
		fields["lastError"] = cause.Error()
	}

	id, err := r.docs.Add(ctx, Collection, fields)
	if err != nil {
		r.logger.Error("record orphan failed", "key", key, "reason", reason, "error", err)
		return fmt.Errorf("record orphan %s: %w", key, err)
	}

	r.logger.Warn("orphan recorded", "id", id, "key", key, "reason", reason)
	return nil
}

func (r *repo) List(ctx context.Context) ([]Orphan, error) {
	docs, err := r.docs.Query(ctx, Collection, docstore.Query{}.Order("createdAt", false))
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}

	orphans := make([]Orphan, 0, len(docs))
	for _, doc := range docs {
		o, err := fromDocument(doc)
		if err != nil {
			r.logger.Error("skip malformed orphan", "id", doc.ID, "error", err)
			continue
		}
		orphans = append(orphans, o)
	}
	return orphans, nil
}

func (r *repo) Reconcile(ctx context.Context) (Result, error) {
	var result Result

	orphans, err := r.List(ctx)
	if err != nil {
		return result, err
	}

	for _, o := range orphans {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if o.Attempts >= r.maxAttempts {
			result.Exhausted++
			continue
		}

		if err := r.blobs.Delete(ctx, o.Key); err != nil {
			result.Failed++
			r.retry(ctx, o, err)
			continue
		}

		if err := r.docs.Delete(ctx, Collection, o.ID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			r.logger.Error("remove orphan record failed", "id", o.ID, "key", o.Key, "error", err)
		}
		result.Deleted++
	}

	if result != (Result{}) {
		r.logger.Info("orphans reconciled",
			"deleted", result.Deleted,
			"failed", result.Failed,
			"exhausted", result.Exhausted)
	}
	return result, nil
}

// retry replaces the orphan record with one carrying the incremented attempt count.
// The replacement is written before the stale record is removed.
func (r *repo) retry(ctx context.Context, o Orphan, cause error) {
	o.Attempts++
	o.LastError = cause.Error()

	if _, err := r.docs.Add(ctx, Collection, o.fields()); err != nil {
		r.logger.Error("update orphan failed", "id", o.ID, "key", o.Key, "error", err)
		return
	}
	if err := r.docs.Delete(ctx, Collection, o.ID); err != nil && !errors.Is(err, docstore.ErrNotFound) {
		r.logger.Error("remove stale orphan record failed", "id", o.ID, "error", err)
	}

	if o.Attempts >= r.maxAttempts {
		r.logger.Error("orphan deletion exhausted", "key", o.Key, "attempts", o.Attempts, "error", cause)
	} else {
		r.logger.Warn("orphan deletion failed", "key", o.Key, "attempts", o.Attempts, "error", cause)
	}
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	if r.interval <= 0 {
		r.logger.Info("orphan reconciler disabled")
		return nil
	}

	r.logger.Info("starting orphan reconciler", "interval", r.interval)

	lc.OnShutdown(func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		ctx := lc.Context()
		for {
			select {
			case <-ctx.Done():
				r.logger.Info("orphan reconciler stopped")
				return
			case <-ticker.C:
				if _, err := r.Reconcile(ctx); err != nil && ctx.Err() == nil {
					r.logger.Error("orphan reconciliation failed", "error", err)
				}
			}
		}
	})

	return nil
}
