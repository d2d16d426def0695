package repository

import (
	"context"

	"github.com/mcala/biaslab/internal/models"
)

// BlobRepository is the string-keyed byte store the bounded persistence
// layer writes through. Implementations may enforce a per-value size limit
// standing in for a platform storage quota.
type BlobRepository interface {
	// Get returns the stored value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ReviewLogRepository records grading events for analytics.
type ReviewLogRepository interface {
	Insert(ctx context.Context, entry models.ReviewLogEntry) (int64, error)
	List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewLogEntry, error)
	Count(ctx context.Context, filter models.ReviewFilter) (int, error)
	QualityBreakdown(ctx context.Context, mode models.Mode) (map[int]int, error)
}
