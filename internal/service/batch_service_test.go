package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/repository"
)

func TestUpdatePostStatistics(t *testing.T) {
	m := newRepoMocks()
	last := fixedNow
	stats := []models.PostStatistics{
		{PostID: 1, ApprovedCommentCount: 3, TagCount: 2, LastCommentedAt: &last},
		{PostID: 2},
	}

	m.posts.On("Page", mock.Anything, int64(0), 1000).Return([]models.Post{
		publishedPost(1, 10, 1, "A"),
		publishedPost(2, 10, 1, "B"),
	}, nil)
	m.stats.On("PostStatistics", mock.Anything, []int64{1, 2}).Return(stats, nil)
	m.posts.On("UpdateStatistics", mock.Anything, stats[0]).Return(nil)
	m.posts.On("UpdateStatistics", mock.Anything, stats[1]).Return(nil)

	updated := testutil.ToFloat64(metrics.PostStatisticsUpdates.WithLabelValues("updated"))

	result, err := NewBatchService(m.posts, m.stats, testConfig()).UpdatePostStatistics(context.Background())

	require.NoError(t, err)
	_, parseErr := uuid.Parse(result.RunID)
	assert.NoError(t, parseErr)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Updated)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.Failures)
	assert.Equal(t, updated+2, testutil.ToFloat64(metrics.PostStatisticsUpdates.WithLabelValues("updated")))
	m.assertExpectations(t)
}

func TestUpdatePostStatistics_IsRepeatable(t *testing.T) {
	m := newRepoMocks()
	stats := []models.PostStatistics{{PostID: 1, ApprovedCommentCount: 1}}

	m.posts.On("Page", mock.Anything, int64(0), 1000).Return([]models.Post{publishedPost(1, 10, 1, "A")}, nil)
	m.stats.On("PostStatistics", mock.Anything, []int64{1}).Return(stats, nil)
	m.posts.On("UpdateStatistics", mock.Anything, stats[0]).Return(nil)

	svc := NewBatchService(m.posts, m.stats, testConfig())
	first, err := svc.UpdatePostStatistics(context.Background())
	require.NoError(t, err)
	second, err := svc.UpdatePostStatistics(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Updated, second.Updated)
	m.posts.AssertNumberOfCalls(t, "UpdateStatistics", 2)
}

func TestUpdatePostStatistics_FailureIsolation(t *testing.T) {
	m := newRepoMocks()
	stats := []models.PostStatistics{
		{PostID: 1, ApprovedCommentCount: 1},
		{PostID: 2, ApprovedCommentCount: -1},
		{PostID: 3, ApprovedCommentCount: 2},
	}

	m.posts.On("Page", mock.Anything, int64(0), 1000).Return([]models.Post{
		publishedPost(1, 10, 1, "A"),
		publishedPost(2, 10, 1, "B"),
		publishedPost(3, 10, 1, "C"),
	}, nil)
	m.stats.On("PostStatistics", mock.Anything, []int64{1, 2, 3}).Return(stats, nil)
	m.posts.On("UpdateStatistics", mock.Anything, stats[0]).Return(
		&repository.ValidationError{Field: "tag_count", Message: "violates check constraint"})
	m.posts.On("UpdateStatistics", mock.Anything, stats[2]).Return(nil)

	failed := testutil.ToFloat64(metrics.PostStatisticsUpdates.WithLabelValues("failed"))

	result, err := NewBatchService(m.posts, m.stats, testConfig()).UpdatePostStatistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, int64(1), result.Failures[0].PostID)
	assert.Equal(t, int64(2), result.Failures[1].PostID)

	var vErr *repository.ValidationError
	require.ErrorAs(t, result.Failures[1].Err, &vErr)
	assert.Equal(t, "ApprovedCommentCount", vErr.Field)

	assert.Equal(t, failed+2, testutil.ToFloat64(metrics.PostStatisticsUpdates.WithLabelValues("failed")))
	m.posts.AssertNotCalled(t, "UpdateStatistics", mock.Anything, stats[1])
}

func TestUpdatePostStatistics_Paging(t *testing.T) {
	m := newRepoMocks()
	cfg := testConfig()
	cfg.Batch.Size = 2

	m.posts.On("Page", mock.Anything, int64(0), 2).Return([]models.Post{
		publishedPost(1, 10, 1, "A"),
		publishedPost(2, 10, 1, "B"),
	}, nil).Once()
	m.posts.On("Page", mock.Anything, int64(2), 2).Return([]models.Post{}, nil).Once()
	m.stats.On("PostStatistics", mock.Anything, []int64{1, 2}).Return([]models.PostStatistics{{PostID: 1}, {PostID: 2}}, nil)
	m.posts.On("UpdateStatistics", mock.Anything, mock.Anything).Return(nil)

	result, err := NewBatchService(m.posts, m.stats, cfg).UpdatePostStatistics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)
	m.posts.AssertExpectations(t)
}

func TestUpdatePostStatistics_Aborts(t *testing.T) {
	t.Run("page query fails", func(t *testing.T) {
		m := newRepoMocks()
		m.posts.On("Page", mock.Anything, int64(0), 1000).Return(nil, errors.New("connection lost"))

		result, err := NewBatchService(m.posts, m.stats, testConfig()).UpdatePostStatistics(context.Background())

		assert.Error(t, err)
		require.NotNil(t, result)
		assert.Zero(t, result.Processed)
	})

	t.Run("statistics query fails", func(t *testing.T) {
		m := newRepoMocks()
		m.posts.On("Page", mock.Anything, int64(0), 1000).Return([]models.Post{publishedPost(1, 10, 1, "A")}, nil)
		m.stats.On("PostStatistics", mock.Anything, []int64{1}).Return(nil, errors.New("syntax error"))

		_, err := NewBatchService(m.posts, m.stats, testConfig()).UpdatePostStatistics(context.Background())

		assert.Error(t, err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		m := newRepoMocks()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewBatchService(m.posts, m.stats, testConfig()).UpdatePostStatistics(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		m.posts.AssertNotCalled(t, "Page", mock.Anything, mock.Anything, mock.Anything)
	})
}
