package sqlite

import (
	"context"
	"database/sql"
	"errors"

	apperrors "github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/repository"
)

type blobRepository struct {
	db       *sql.DB
	maxBytes int
}

// NewBlobRepository creates a BlobRepository backed by SQLite. maxBytes
// caps the size of a single value, mirroring the quota of the
// browser-local stores this state round-trips through; 0 disables the cap.
func NewBlobRepository(db *sql.DB, maxBytes int) repository.BlobRepository {
	return &blobRepository{db: db, maxBytes: maxBytes}
}

func (r *blobRepository) Get(ctx context.Context, key string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("blob_repo")
	log.Debug("getting blob: key=%s", key)

	var value []byte
	err := r.db.QueryRowContext(ctx, `
SELECT value FROM app_blobs WHERE key = ?
`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("blob not found: key=%s", key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get blob: %v", err)
		return nil, err
	}
	log.Debug("blob found: key=%s, size=%d", key, len(value))
	return value, nil
}

func (r *blobRepository) Set(ctx context.Context, key string, value []byte) error {
	log := logger.FromContext(ctx).WithPrefix("blob_repo")
	log.Debug("setting blob: key=%s, size=%d", key, len(value))

	if r.maxBytes > 0 && len(value) > r.maxBytes {
		log.Warn("blob rejected: size=%d exceeds limit=%d", len(value), r.maxBytes)
		return apperrors.NewQuotaExceededError(len(value), r.maxBytes)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO app_blobs (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`, key, value)
	if err != nil {
		log.Error("failed to set blob: %v", err)
	}
	return err
}

func (r *blobRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx).WithPrefix("blob_repo")
	log.Debug("deleting blob: key=%s", key)

	_, err := r.db.ExecContext(ctx, `DELETE FROM app_blobs WHERE key = ?`, key)
	if err != nil {
		log.Error("failed to delete blob: %v", err)
	}
	return err
}
