package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/repository"
	"github.com/mcala/biaslab/internal/state"
)

// ModeStats summarizes progress within one catalog namespace.
type ModeStats struct {
	Mode             models.Mode `json:"mode"`
	Concepts         int         `json:"concepts"`
	Reviewed         int         `json:"reviewed"`
	AverageMastery   int         `json:"average_mastery"`
	DueNow           int         `json:"due_now"`
	ReviewEvents     int         `json:"review_events"`
	QualityBreakdown map[int]int `json:"quality_breakdown"`
}

// Stats is the profile overview across both modes.
type Stats struct {
	XP     int           `json:"xp"`
	Streak models.Streak `json:"streak"`
	Modes  []ModeStats   `json:"modes"`
}

// StateService covers the whole-blob operations: stats, export, import,
// reset.
type StateService interface {
	Stats(ctx context.Context) (*Stats, error)
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Reset(ctx context.Context) error
}

type stateService struct {
	catalog      *catalog.Catalog
	manager      *state.Manager
	reviews      repository.ReviewLogRepository
	invalidators []func()
}

// NewStateService creates a new StateService. The invalidators run after
// every import or reset so cached generated content is dropped.
func NewStateService(cat *catalog.Catalog, manager *state.Manager, reviews repository.ReviewLogRepository, invalidators ...func()) StateService {
	return &stateService{
		catalog:      cat,
		manager:      manager,
		reviews:      reviews,
		invalidators: invalidators,
	}
}

func (s *stateService) Stats(ctx context.Context) (*Stats, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing stats")

	snapshot := s.manager.Snapshot()
	now := time.Now().UnixMilli()

	stats := &Stats{
		XP:     snapshot.XP,
		Streak: snapshot.Streak,
	}

	for _, mode := range models.Modes {
		store := snapshot.StoreFor(mode)
		concepts := s.catalog.Concepts(mode)

		modeStats := ModeStats{
			Mode:     mode,
			Concepts: len(concepts),
			Reviewed: len(store),
		}

		totalMastery := 0
		for _, concept := range concepts {
			rec, ok := store[concept.ID]
			if !ok {
				modeStats.DueNow++
				continue
			}
			totalMastery += rec.MasteryLevel
			if rec.NextReviewAt <= now {
				modeStats.DueNow++
			}
		}
		if len(concepts) > 0 {
			modeStats.AverageMastery = totalMastery / len(concepts)
		}

		count, err := s.reviews.Count(ctx, models.ReviewFilter{Mode: mode})
		if err != nil {
			log.Warn("failed to count reviews for %s: %v", mode, err)
		} else {
			modeStats.ReviewEvents = count
		}
		breakdown, err := s.reviews.QualityBreakdown(ctx, mode)
		if err != nil {
			log.Warn("failed to compute quality breakdown for %s: %v", mode, err)
		} else {
			modeStats.QualityBreakdown = breakdown
		}

		stats.Modes = append(stats.Modes, modeStats)
	}

	return stats, nil
}

func (s *stateService) Export(ctx context.Context) ([]byte, error) {
	log := logger.FromContext(ctx)
	log.Debug("exporting state")

	data, err := json.MarshalIndent(s.manager.Snapshot(), "", "  ")
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return data, nil
}

func (s *stateService) Import(ctx context.Context, data []byte) error {
	log := logger.FromContext(ctx)
	log.Info("importing state: %d bytes", len(data))

	// Imports go through the same decode-and-merge as a normal load, so a
	// blob from an older version (or a hand-edited one) gets the same
	// defaults and shape checks instead of replacing state blindly.
	next, err := state.Decode(data)
	if err != nil {
		log.Warn("import rejected: %v", err)
		return errors.NewBadRequestError("import file is not a valid state export")
	}

	s.manager.Replace(ctx, next)
	s.invalidate()
	log.Info("state imported")
	return nil
}

func (s *stateService) Reset(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info("resetting all progress")

	s.manager.Replace(ctx, models.DefaultState())
	s.invalidate()
	return nil
}

func (s *stateService) invalidate() {
	for _, fn := range s.invalidators {
		fn()
	}
}
