package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/deepsocial/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func newTestSearch(id, userID string) *models.Search {
	return &models.Search{
		ID:        id,
		Keyword:   "kubernetes",
		Status:    models.SearchRunning,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

func TestStore_CreateAndGetSearch(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))

	got, err := st.GetSearch(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, "kubernetes", got.Keyword)
	assert.Equal(t, models.SearchRunning, got.Status)
	assert.Equal(t, "alice", got.UserID)
	assert.Nil(t, got.TwitterRunID)
}

func TestStore_GetSearch_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetSearch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SetRunID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))
	require.NoError(t, st.SetRunID(ctx, "s1", models.PlatformTwitter, "run-tw"))
	require.NoError(t, st.SetRunID(ctx, "s1", models.PlatformTikTok, "run-shared"))
	require.NoError(t, st.SetRunID(ctx, "s1", models.PlatformYouTube, "run-shared"))

	got, err := st.GetSearch(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got.TwitterRunID)
	assert.Equal(t, "run-tw", *got.TwitterRunID)
	require.NotNil(t, got.TikTokRunID)
	assert.Equal(t, "run-shared", *got.TikTokRunID)
	require.NotNil(t, got.YouTubeRunID)
	assert.Equal(t, "run-shared", *got.YouTubeRunID)
	assert.Nil(t, got.RedditRunID)
}

func TestStore_SetRunID_UnknownPlatform(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))
	assert.Error(t, st.SetRunID(ctx, "s1", "myspace", "run-1"))
}

func TestStore_SetSearchStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))
	require.NoError(t, st.SetSearchStatus(ctx, "s1", models.SearchCompleted))

	got, err := st.GetSearch(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SearchCompleted, got.Status)

	// Idempotent
	require.NoError(t, st.SetSearchStatus(ctx, "s1", models.SearchCompleted))
}

func TestStore_FailStaleSearches(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	stale := newTestSearch("stale", "alice")
	stale.CreatedAt = time.Now().UTC().Add(-3 * time.Hour)
	require.NoError(t, st.CreateSearch(ctx, stale))

	recent := newTestSearch("recent", "alice")
	require.NoError(t, st.CreateSearch(ctx, recent))

	done := newTestSearch("done", "alice")
	done.CreatedAt = time.Now().UTC().Add(-3 * time.Hour)
	require.NoError(t, st.CreateSearch(ctx, done))
	require.NoError(t, st.SetSearchStatus(ctx, "done", models.SearchCompleted))

	reaped, err := st.FailStaleSearches(ctx, time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), reaped)

	got, err := st.GetSearch(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, models.SearchFailed, got.Status)

	got, err = st.GetSearch(ctx, "recent")
	require.NoError(t, err)
	assert.Equal(t, models.SearchRunning, got.Status)

	got, err = st.GetSearch(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, models.SearchCompleted, got.Status)
}

func TestStore_ListSearches(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := newTestSearch("s1", "alice")
	first.CreatedAt = time.Now().UTC().Add(-2 * time.Minute)
	require.NoError(t, st.CreateSearch(ctx, first))

	second := newTestSearch("s2", "alice")
	second.CreatedAt = time.Now().UTC().Add(-1 * time.Minute)
	require.NoError(t, st.CreateSearch(ctx, second))

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("other", "bob")))

	require.NoError(t, st.SaveResult(ctx, &models.TwitterResult{SearchID: "s2", TweetID: "t1"}))

	searches, err := st.ListSearches(ctx, "alice", 20)
	require.NoError(t, err)
	require.Len(t, searches, 2)

	// Newest first, with per-platform counts attached
	assert.Equal(t, "s2", searches[0].ID)
	assert.Equal(t, "s1", searches[1].ID)
	assert.Equal(t, 1, searches[0].ResultCounts[models.PlatformTwitter])

	limited, err := st.ListSearches(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_SaveAndLoadResults(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))

	score := int64(42)
	ratio := 0.97
	views := int64(12000)

	items := []models.PlatformItem{
		&models.TwitterResult{SearchID: "s1", TweetID: "tw1", FullText: "a tweet", AuthorName: "Someone", MediaURLs: []string{"https://x.test/a.jpg"}},
		&models.RedditResult{SearchID: "s1", RedditID: "rd1", DataType: "post", URL: "https://reddit.test", Score: &score, UpvoteRatio: &ratio},
		&models.TikTokResult{SearchID: "s1", VideoID: "tk1", AuthorName: "Unknown", PlayCount: &views},
		&models.FacebookResult{SearchID: "s1", PostID: "fb1", Hashtags: []string{"#go"}},
		&models.InstagramResult{SearchID: "s1", PostID: "ig1", Hashtags: []string{}},
		&models.YouTubeResult{SearchID: "s1", VideoID: "yt1", Title: "a video"},
		&models.TruthSocialResult{SearchID: "s1", StatusID: "ts1", Content: "a status", AuthorName: "Poster", AuthorUsername: "poster"},
	}
	for _, item := range items {
		require.NoError(t, st.SaveResult(ctx, item))
	}

	results, err := st.ResultsForSearch(ctx, "s1")
	require.NoError(t, err)

	for _, platform := range models.Platforms {
		assert.Len(t, results[platform], 1, platform)
	}

	tweet := results[models.PlatformTwitter][0].(*models.TwitterResult)
	assert.Equal(t, "tw1", tweet.TweetID)
	assert.Equal(t, "a tweet", tweet.FullText)
	assert.Equal(t, []string{"https://x.test/a.jpg"}, tweet.MediaURLs)

	post := results[models.PlatformReddit][0].(*models.RedditResult)
	require.NotNil(t, post.Score)
	assert.Equal(t, int64(42), *post.Score)
	require.NotNil(t, post.UpvoteRatio)
	assert.InDelta(t, 0.97, *post.UpvoteRatio, 0.001)

	count, err := st.CountResults(ctx, "s1", models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = st.CountResults(ctx, "missing", models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_ConcurrentWrites(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))

	// The search fan-out writes run ids and results from one goroutine
	// per runner; none of these writes may fail with a busy database.
	var wg sync.WaitGroup
	errs := make(chan error, len(models.Platforms)*2)
	for i, platform := range models.Platforms {
		wg.Add(1)
		go func(i int, platform string) {
			defer wg.Done()
			errs <- st.SetRunID(ctx, "s1", platform, fmt.Sprintf("run-%s", platform))
			errs <- st.SaveResult(ctx, &models.TwitterResult{
				SearchID: "s1",
				TweetID:  fmt.Sprintf("tw%d", i),
			})
		}(i, platform)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	got, err := st.GetSearch(ctx, "s1")
	require.NoError(t, err)
	for _, platform := range models.Platforms {
		runID := got.RunID(platform)
		require.NotNil(t, runID, platform)
		assert.Equal(t, fmt.Sprintf("run-%s", platform), *runID, platform)
	}

	count, err := st.CountResults(ctx, "s1", models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, len(models.Platforms), count)
}

func TestStore_ResultsForSearch_Empty(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSearch(ctx, newTestSearch("s1", "alice")))

	results, err := st.ResultsForSearch(ctx, "s1")
	require.NoError(t, err)

	for _, platform := range models.Platforms {
		items, ok := results[platform]
		assert.True(t, ok, platform)
		assert.Empty(t, items)
	}
}
