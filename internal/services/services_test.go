package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcala/biaslab/internal/catalog"
	"github.com/mcala/biaslab/internal/state"
	"github.com/mcala/biaslab/internal/testutil"
	"github.com/mcala/biaslab/internal/testutil/mocks"
)

// newTestDeps wires the common service dependencies: the embedded catalog,
// a manager over an in-memory blob store, and a review-log mock that
// accepts any insert.
func newTestDeps(t *testing.T) (*catalog.Catalog, *state.Manager, *mocks.MockReviewLogRepository) {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	manager := state.NewManager(context.Background(),
		state.NewStore(testutil.NewMemoryBlobStore(), 4_500_000))

	reviews := new(mocks.MockReviewLogRepository)
	reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil).Maybe()

	return cat, manager, reviews
}

// newFailingReviewLog returns a review-log mock whose inserts always fail.
func newFailingReviewLog() *mocks.MockReviewLogRepository {
	reviews := new(mocks.MockReviewLogRepository)
	reviews.On("Insert", mock.Anything, mock.Anything).Return(int64(0), assert.AnError)
	return reviews
}
