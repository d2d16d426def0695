package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a ReviewLogRepository implementation
func NewReviewLogRepository(db *sql.DB) repository.ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Insert(ctx context.Context, e models.ReviewLogEntry) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("inserting review: concept_id=%s, quality=%d", e.ConceptID, e.Quality)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_log (mode, concept_id, surface, quality, mastery_after, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?)
`, e.Mode, e.ConceptID, e.Surface, e.Quality, e.MasteryAfter, e.ReviewedAt)
	if err != nil {
		log.Error("failed to insert review: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review id: %v", err)
		return 0, err
	}
	log.Debug("review inserted: id=%d", id)
	return id, nil
}

func filteredQuery(columns string, filter models.ReviewFilter) squirrel.SelectBuilder {
	query := sqlBuilder.Select(columns).From("review_log")
	if filter.Mode != "" {
		query = query.Where(squirrel.Eq{"mode": filter.Mode})
	}
	if filter.Surface != "" {
		query = query.Where(squirrel.Eq{"surface": filter.Surface})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"reviewed_at": *filter.Since})
	}
	return query
}

func (r *reviewLogRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewLogEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing reviews: mode=%s, surface=%s", filter.Mode, filter.Surface)

	query := filteredQuery("id, mode, concept_id, surface, quality, mastery_after, reviewed_at", filter).
		OrderBy("reviewed_at DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.ReviewLogEntry
	for rows.Next() {
		var e models.ReviewLogEntry
		if err := rows.Scan(&e.ID, &e.Mode, &e.ConceptID, &e.Surface, &e.Quality, &e.MasteryAfter, &e.ReviewedAt); err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	log.Debug("found %d reviews", len(entries))
	return entries, rows.Err()
}

func (r *reviewLogRepository) Count(ctx context.Context, filter models.ReviewFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")

	sqlStr, args, err := filteredQuery("COUNT(*)", filter).ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count reviews: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *reviewLogRepository) QualityBreakdown(ctx context.Context, mode models.Mode) (map[int]int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("computing quality breakdown: mode=%s", mode)

	rows, err := r.db.QueryContext(ctx, `
SELECT quality, COUNT(*)
FROM review_log
WHERE mode = ?
GROUP BY quality
`, mode)
	if err != nil {
		log.Error("failed to query quality breakdown: %v", err)
		return nil, err
	}
	defer rows.Close()

	breakdown := make(map[int]int)
	for rows.Next() {
		var quality, count int
		if err := rows.Scan(&quality, &count); err != nil {
			log.Error("failed to scan breakdown row: %v", err)
			return nil, err
		}
		breakdown[quality] = count
	}
	return breakdown, rows.Err()
}
