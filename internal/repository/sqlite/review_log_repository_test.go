package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcala/biaslab/internal/db"
	"github.com/mcala/biaslab/internal/models"
	"github.com/mcala/biaslab/internal/repository"
	"github.com/mcala/biaslab/internal/repository/sqlite"
	"github.com/mcala/biaslab/internal/testutil"
)

type ReviewLogRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.ReviewLogRepository
}

func (s *ReviewLogRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewReviewLogRepository(s.db.DB)
}

func (s *ReviewLogRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ReviewLogRepositorySuite) insertEntry(mode models.Mode, conceptID, surface string, quality int, at time.Time) int64 {
	id, err := s.repo.Insert(context.Background(), models.ReviewLogEntry{
		Mode:         mode,
		ConceptID:    conceptID,
		Surface:      surface,
		Quality:      quality,
		MasteryAfter: quality * 10,
		ReviewedAt:   at,
	})
	s.Require().NoError(err)
	return id
}

func (s *ReviewLogRepositorySuite) TestInsertAndList() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	id := s.insertEntry(models.ModePsychology, "anchoring", models.SurfaceFlashcard, 4, now)
	s.Greater(id, int64(0))

	entries, err := s.repo.List(ctx, models.ReviewFilter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(id, entries[0].ID)
	s.Equal("anchoring", entries[0].ConceptID)
	s.Equal(4, entries[0].Quality)
	s.Equal(40, entries[0].MasteryAfter)
}

func (s *ReviewLogRepositorySuite) TestListOrderedNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	s.insertEntry(models.ModePsychology, "anchoring", models.SurfaceFlashcard, 2, base.Add(-2*time.Hour))
	s.insertEntry(models.ModePsychology, "sunk-cost", models.SurfaceQuiz, 4, base.Add(-1*time.Hour))
	s.insertEntry(models.ModePsychology, "hindsight-bias", models.SurfaceFlashcard, 5, base)

	entries, err := s.repo.List(ctx, models.ReviewFilter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("hindsight-bias", entries[0].ConceptID)
	s.Equal("anchoring", entries[2].ConceptID)
}

func (s *ReviewLogRepositorySuite) TestListFilters() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	s.insertEntry(models.ModePsychology, "anchoring", models.SurfaceFlashcard, 3, base.Add(-3*time.Hour))
	s.insertEntry(models.ModeLogic, "ad-hominem", models.SurfaceQuiz, 4, base.Add(-2*time.Hour))
	s.insertEntry(models.ModeLogic, "straw-man", models.SurfaceSimulation, 2, base)

	byMode, err := s.repo.List(ctx, models.ReviewFilter{Mode: models.ModeLogic})
	s.Require().NoError(err)
	s.Len(byMode, 2)

	bySurface, err := s.repo.List(ctx, models.ReviewFilter{Surface: models.SurfaceQuiz})
	s.Require().NoError(err)
	s.Require().Len(bySurface, 1)
	s.Equal("ad-hominem", bySurface[0].ConceptID)

	since := base.Add(-1 * time.Hour)
	recent, err := s.repo.List(ctx, models.ReviewFilter{Since: &since})
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal("straw-man", recent[0].ConceptID)
}

func (s *ReviewLogRepositorySuite) TestListLimit() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		s.insertEntry(models.ModePsychology, "anchoring", models.SurfaceFlashcard, 3, base.Add(time.Duration(i)*time.Minute))
	}

	entries, err := s.repo.List(ctx, models.ReviewFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *ReviewLogRepositorySuite) TestCount() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	s.insertEntry(models.ModePsychology, "anchoring", models.SurfaceFlashcard, 3, base)
	s.insertEntry(models.ModePsychology, "sunk-cost", models.SurfaceQuiz, 4, base)
	s.insertEntry(models.ModeLogic, "ad-hominem", models.SurfaceQuiz, 1, base)

	total, err := s.repo.Count(ctx, models.ReviewFilter{})
	s.Require().NoError(err)
	s.Equal(3, total)

	psych, err := s.repo.Count(ctx, models.ReviewFilter{Mode: models.ModePsychology})
	s.Require().NoError(err)
	s.Equal(2, psych)
}

func (s *ReviewLogRepositorySuite) TestQualityBreakdown() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	s.insertEntry(models.ModePsychology, "anchoring", models.SurfaceFlashcard, 4, base)
	s.insertEntry(models.ModePsychology, "sunk-cost", models.SurfaceFlashcard, 4, base)
	s.insertEntry(models.ModePsychology, "hindsight-bias", models.SurfaceQuiz, 1, base)
	s.insertEntry(models.ModeLogic, "ad-hominem", models.SurfaceQuiz, 4, base)

	breakdown, err := s.repo.QualityBreakdown(ctx, models.ModePsychology)
	s.Require().NoError(err)
	s.Equal(map[int]int{4: 2, 1: 1}, breakdown)
}

func TestReviewLogRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewLogRepositorySuite))
}
