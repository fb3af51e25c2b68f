package cattus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cattus-org/cattus-api/models"
)

// fakeFeed serves stable pages out of a fixed backing list and counts calls.
type fakeFeed struct {
	mu    sync.Mutex
	items []models.Activity
	calls []int // offsets requested
	err   error
}

func (f *fakeFeed) fetch(ctx context.Context, offset, limit int) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, offset)
	if f.err != nil {
		return []models.Activity{}, f.err
	}
	if offset >= len(f.items) {
		return []models.Activity{}, nil
	}
	end := offset + limit
	if end > len(f.items) {
		end = len(f.items)
	}
	page := make([]models.Activity, end-offset)
	copy(page, f.items[offset:end])
	return page, nil
}

func feedOf(n int) *fakeFeed {
	base := time.Date(2025, 4, 29, 12, 0, 0, 0, time.UTC)
	items := make([]models.Activity, n)
	for i := 0; i < n; i++ {
		items[i] = models.Activity{
			ID:        int64(n - i),
			Title:     models.ActivityEat,
			StartedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return &fakeFeed{items: items}
}

func TestLoadFirstPageFullPageMeansMore(t *testing.T) {
	feed := feedOf(8)
	tl := NewTimeline(feed.fetch, 5)

	require.NoError(t, tl.LoadFirstPage(context.Background()))
	assert.Equal(t, 5, tl.Len())
	assert.True(t, tl.HasMore())
}

func TestLoadNextPageAppendsAndStops(t *testing.T) {
	feed := feedOf(8)
	tl := NewTimeline(feed.fetch, 5)
	ctx := context.Background()

	require.NoError(t, tl.LoadFirstPage(ctx))
	require.NoError(t, tl.LoadNextPage(ctx))

	// 5 + 3: the short second page flips hasMore off.
	assert.Equal(t, 8, tl.Len())
	assert.False(t, tl.HasMore())

	// Further calls are no-ops, not errors.
	require.NoError(t, tl.LoadNextPage(ctx))
	assert.Equal(t, 8, tl.Len())
	assert.Equal(t, []int{0, 5}, feed.calls)
}

func TestLoadNextPageMonotonicNoDuplicates(t *testing.T) {
	feed := feedOf(20)
	tl := NewTimeline(feed.fetch, 5)
	ctx := context.Background()

	require.NoError(t, tl.LoadFirstPage(ctx))
	for i := 0; i < 3; i++ {
		require.NoError(t, tl.LoadNextPage(ctx))
	}

	items := tl.Items()
	assert.Equal(t, 20, len(items))
	seen := map[int64]bool{}
	for _, a := range items {
		assert.False(t, seen[a.ID], "duplicate id %d", a.ID)
		seen[a.ID] = true
	}
}

func TestExactMultipleLeavesHasMoreOn(t *testing.T) {
	// 10 items with page size 5: after two pages the heuristic still says
	// there may be more; the third fetch comes back empty and settles it.
	feed := feedOf(10)
	tl := NewTimeline(feed.fetch, 5)
	ctx := context.Background()

	require.NoError(t, tl.LoadFirstPage(ctx))
	require.NoError(t, tl.LoadNextPage(ctx))
	assert.True(t, tl.HasMore())

	require.NoError(t, tl.LoadNextPage(ctx))
	assert.Equal(t, 10, tl.Len())
	assert.False(t, tl.HasMore())
}

func TestRefreshKeepsLoadedDepth(t *testing.T) {
	feed := feedOf(15)
	tl := NewTimeline(feed.fetch, 5)
	ctx := context.Background()

	require.NoError(t, tl.LoadFirstPage(ctx))
	require.NoError(t, tl.LoadNextPage(ctx))
	require.Equal(t, 10, tl.Len())

	feed.mu.Lock()
	feed.calls = nil
	feed.mu.Unlock()

	require.NoError(t, tl.Refresh(ctx))
	assert.Equal(t, 10, tl.Len(), "refresh must not shrink the visible list")
	assert.True(t, tl.HasMore())
	assert.Equal(t, []int{0, 5}, feed.calls, "refresh re-fetches exactly the loaded pages")
}

func TestRefreshErrorKeepsLastKnownGood(t *testing.T) {
	feed := feedOf(8)
	tl := NewTimeline(feed.fetch, 5)
	ctx := context.Background()

	require.NoError(t, tl.LoadFirstPage(ctx))
	before := tl.Items()

	feed.mu.Lock()
	feed.err = errors.New("backend down")
	feed.mu.Unlock()

	err := tl.Refresh(ctx)
	assert.Error(t, err)
	assert.Equal(t, before, tl.Items())
}

func TestRebindDiscardsInFlightResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	slow := func(ctx context.Context, offset, limit int) ([]models.Activity, error) {
		close(started)
		<-release
		return []models.Activity{{ID: 99, Title: models.ActivityEat, StartedAt: time.Now()}}, nil
	}

	tl := NewTimeline(slow, 5)
	done := make(chan error, 1)
	go func() { done <- tl.LoadFirstPage(context.Background()) }()

	<-started
	tl.Rebind(feedOf(0).fetch)
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, 0, tl.Len(), "stale response must not populate the new subject")
}

func TestMergeSortsByRecencyWithIDTiebreak(t *testing.T) {
	ts := time.Date(2025, 4, 29, 12, 0, 0, 0, time.UTC)
	feedA := []models.Activity{
		{ID: 1, StartedAt: ts},
		{ID: 5, StartedAt: ts.Add(-time.Hour)},
	}
	feedB := []models.Activity{
		{ID: 3, StartedAt: ts},
		{ID: 2, StartedAt: ts.Add(time.Hour)},
	}

	merged := Merge(feedA, feedB)
	require.Len(t, merged, 4)
	assert.Equal(t, int64(2), merged[0].ID)
	// Same instant: higher ID first.
	assert.Equal(t, int64(3), merged[1].ID)
	assert.Equal(t, int64(1), merged[2].ID)
	assert.Equal(t, int64(5), merged[3].ID)
}
