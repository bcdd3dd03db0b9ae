package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-submission-api/internal/dto"
)

func TestCacheServiceGetSetDelete(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	key := SummaryCacheKey(1, 50)
	assert.Equal(t, "forum:summary:1:50", key)

	var dest dto.SubmissionSummaryResponse
	hit, err := svc.Get(context.Background(), key, &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), key, dto.SubmissionSummaryResponse{Summary: "s", ShowViewLink: true}, 0))
	hit, err = svc.Get(context.Background(), key, &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "s", dest.Summary)

	require.NoError(t, svc.Delete(context.Background(), key))
	hit, err = svc.Get(context.Background(), key, &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, svc.Set(context.Background(), SummaryCacheKey(1, 50), "a", 0))
	require.NoError(t, svc.Set(context.Background(), SummaryCacheKey(2, 50), "b", 0))

	require.NoError(t, svc.Invalidate(context.Background(), SummaryCachePattern(1)))
	assert.NotContains(t, repo.values, SummaryCacheKey(1, 50))
	assert.Contains(t, repo.values, SummaryCacheKey(2, 50))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)
	assert.False(t, svc.Enabled())

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	assert.Empty(t, repo.values)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
}
