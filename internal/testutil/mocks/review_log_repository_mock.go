package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mcala/biaslab/internal/models"
)

// MockReviewLogRepository is a mock implementation of repository.ReviewLogRepository
type MockReviewLogRepository struct {
	mock.Mock
}

func (m *MockReviewLogRepository) Insert(ctx context.Context, entry models.ReviewLogEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewLogRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewLogEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLogEntry), args.Error(1)
}

func (m *MockReviewLogRepository) Count(ctx context.Context, filter models.ReviewFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewLogRepository) QualityBreakdown(ctx context.Context, mode models.Mode) (map[int]int, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}
