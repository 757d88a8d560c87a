package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mediasvc "github.com/wybmv/backend/internal/services/media"
)

const (
	defaultGrace    = 24 * time.Hour
	defaultInterval = 6 * time.Hour
)

type ObjectStore interface {
	ListOlderThan(ctx context.Context, cutoff time.Time) ([]mediasvc.StoredObject, error)
	Delete(ctx context.Context, key string) error
}

type ReferenceStore interface {
	ReferencedImageKeys(ctx context.Context, keys []string) (map[string]struct{}, error)
}

// Job removes chat images that were uploaded but never attached to a message.
type Job struct {
	objects ObjectStore
	refs    ReferenceStore
	grace   time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

func NewOrphanImageJob(objects ObjectStore, refs ReferenceStore, grace time.Duration, logger *zap.Logger) *Job {
	if grace <= 0 {
		grace = defaultGrace
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		objects: objects,
		refs:    refs,
		grace:   grace,
		now:     time.Now,
		logger:  logger,
	}
}

// Run performs one sweep and returns how many objects were deleted.
func (j *Job) Run(ctx context.Context) (int, error) {
	if j.objects == nil || j.refs == nil {
		return 0, nil
	}

	cutoff := j.now().Add(-j.grace)
	stale, err := j.objects.ListOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale images: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(stale))
	for _, obj := range stale {
		keys = append(keys, obj.Key)
	}
	referenced, err := j.refs.ReferencedImageKeys(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("load referenced images: %w", err)
	}

	deleted := 0
	for _, key := range keys {
		if _, ok := referenced[key]; ok {
			continue
		}
		if err := j.objects.Delete(ctx, key); err != nil {
			j.logger.Warn("failed to delete orphan image", zap.Error(err), zap.String("object_key", key))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		j.logger.Info("cleanup orphan images completed", zap.Int("deleted", deleted))
	}
	return deleted, nil
}

// Start sweeps every interval until ctx is done.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := j.Run(ctx); err != nil && ctx.Err() == nil {
			j.logger.Warn("orphan image cleanup failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
