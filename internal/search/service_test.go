package search

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/platforms"
	"github.com/deepsocial/backend/internal/provider"
	"github.com/deepsocial/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProvider is a mock implementation of the provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) RunSync(ctx context.Context, actorID string, input any) ([]json.RawMessage, error) {
	args := m.Called(ctx, actorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

func (m *MockProvider) RunAsync(ctx context.Context, actorID string, input any) (string, error) {
	args := m.Called(ctx, actorID, input)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) RunStatus(ctx context.Context, runID string) (string, error) {
	args := m.Called(ctx, runID)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) DatasetItems(ctx context.Context, runID string) ([]json.RawMessage, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]json.RawMessage), args.Error(1)
}

// MockHook records completion callbacks
type MockHook struct {
	mock.Mock
}

func (m *MockHook) SearchCompleted(ctx context.Context, search *models.Search, results map[string][]models.PlatformItem) {
	m.Called(ctx, search, results)
}

func newTestService(t *testing.T, p Provider, hooks ...CompletionHook) (*Service, store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{ApifyToken: "test-token"}
	return NewService(cfg, st, p, hooks...), st
}

func tweetPayload(id string) json.RawMessage {
	return json.RawMessage(`{"id": "` + id + `", "fullText": "tweet ` + id + `"}`)
}

const (
	twitterActor     = "apidojo~tweet-scraper"
	redditActor      = "trudax~reddit-scraper-lite"
	instagramActor   = "apidojo~instagram-hashtag-scraper"
	truthSocialActor = "muhammetakkurtt~truthsocial-scraper"
)

// expectAllSync stubs every runner's sync call to succeed with one item.
func expectAllSync(p *MockProvider) {
	p.On("RunSync", mock.Anything, twitterActor, mock.Anything).
		Return([]json.RawMessage{tweetPayload("tw1")}, nil)
	p.On("RunSync", mock.Anything, redditActor, mock.Anything).
		Return([]json.RawMessage{json.RawMessage(`{"id": "rd1", "title": "a post"}`)}, nil)
	p.On("RunSync", mock.Anything, instagramActor, mock.Anything).
		Return([]json.RawMessage{json.RawMessage(`{"id": "ig1", "caption": "a pic"}`)}, nil)
	p.On("RunSync", mock.Anything, truthSocialActor, mock.Anything).
		Return([]json.RawMessage{json.RawMessage(`{"id": "ts1", "content": "a status"}`)}, nil)
	p.On("RunSync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return([]json.RawMessage{
			json.RawMessage(`{"id": "tk1", "fromSocial": "tiktok"}`),
			json.RawMessage(`{"id": "fb1", "fromSocial": "facebook"}`),
			json.RawMessage(`{"id": "yt1", "fromSocial": "youtube"}`),
		}, nil)
}

func TestStart_AllSync(t *testing.T) {
	p := &MockProvider{}
	expectAllSync(p)

	svc, st := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	// Every platform returned data synchronously
	for _, platform := range models.Platforms {
		assert.Len(t, result.SyncData[platform], 1, platform)
	}

	// Sentinel run ids are persisted and mirrored in memory
	saved, err := st.GetSearch(context.Background(), result.Search.ID)
	require.NoError(t, err)
	for _, platform := range models.Platforms {
		runID := saved.RunID(platform)
		require.NotNil(t, runID, platform)
		assert.True(t, platforms.IsSyncRunID(*runID), platform)

		inMemory := result.Search.RunID(platform)
		require.NotNil(t, inMemory, platform)
		assert.Equal(t, *runID, *inMemory, platform)
	}

	// Items were persisted before the run ids were reported
	results, err := st.ResultsForSearch(context.Background(), result.Search.ID)
	require.NoError(t, err)
	assert.Equal(t, "tw1", results[models.PlatformTwitter][0].NativeID())
	assert.Equal(t, "tk1", results[models.PlatformTikTok][0].NativeID())
}

func TestStart_AsyncFallback(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, twitterActor, mock.Anything).
		Return(nil, errors.New("provider timeout"))
	p.On("RunAsync", mock.Anything, twitterActor, mock.Anything).
		Return("run-tw-async", nil)

	p.On("RunSync", mock.Anything, redditActor, mock.Anything).
		Return([]json.RawMessage{json.RawMessage(`{"id": "rd1"}`)}, nil)
	p.On("RunSync", mock.Anything, instagramActor, mock.Anything).
		Return([]json.RawMessage{}, nil)
	p.On("RunSync", mock.Anything, truthSocialActor, mock.Anything).
		Return([]json.RawMessage{}, nil)

	// The shared hashtag run falls back too: one async run id covers
	// three platforms.
	p.On("RunSync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return(nil, errors.New("provider timeout"))
	p.On("RunAsync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return("run-hashtag", nil)

	svc, st := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	saved, err := st.GetSearch(context.Background(), result.Search.ID)
	require.NoError(t, err)

	require.NotNil(t, saved.TwitterRunID)
	assert.Equal(t, "run-tw-async", *saved.TwitterRunID)

	for _, platform := range []string{models.PlatformTikTok, models.PlatformFacebook, models.PlatformYouTube} {
		runID := saved.RunID(platform)
		require.NotNil(t, runID, platform)
		assert.Equal(t, "run-hashtag", *runID, platform)
	}

	// Twitter produced no sync data
	assert.NotContains(t, result.SyncData, models.PlatformTwitter)
	assert.Contains(t, result.SyncData, models.PlatformReddit)
}

func TestStart_TotalFailureStillCreatesSearch(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("down"))

	svc, st := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)
	assert.Empty(t, result.SyncData)

	saved, err := st.GetSearch(context.Background(), result.Search.ID)
	require.NoError(t, err)
	for _, platform := range models.Platforms {
		assert.Nil(t, saved.RunID(platform), platform)
	}
}

func TestStatus_AllSyncCompletesImmediately(t *testing.T) {
	p := &MockProvider{}
	expectAllSync(p)

	hook := &MockHook{}
	hook.On("SearchCompleted", mock.Anything, mock.Anything, mock.Anything).Return()

	svc, st := newTestService(t, p, hook)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	report, err := svc.Status(context.Background(), result.Search.ID)
	require.NoError(t, err)

	// Sync sentinels never touch the provider
	p.AssertNotCalled(t, "RunStatus", mock.Anything, mock.Anything)

	assert.Equal(t, AggregateCompleted, report.Status)
	assert.Equal(t, 7, report.Progress.Total)
	assert.Equal(t, 7, report.Progress.Completed)
	assert.Equal(t, 100, report.Progress.Percentage)

	saved, err := st.GetSearch(context.Background(), result.Search.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SearchCompleted, saved.Status)

	// A second poll is idempotent: no second hook invocation
	_, err = svc.Status(context.Background(), result.Search.ID)
	require.NoError(t, err)
	hook.AssertNumberOfCalls(t, "SearchCompleted", 1)
}

func TestStatus_SharedRunQueriedOnce(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return("run-hashtag", nil)
	p.On("RunAsync", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("down"))

	svc, _ := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	p.On("RunStatus", mock.Anything, "run-hashtag").Return(provider.StatusRunning, nil).Once()

	report, err := svc.Status(context.Background(), result.Search.ID)
	require.NoError(t, err)

	// Three platforms share one run: one provider call, denominator 3
	p.AssertNumberOfCalls(t, "RunStatus", 1)
	assert.Equal(t, AggregateRunning, report.Status)
	assert.Equal(t, 3, report.Progress.Total)
	assert.Equal(t, 0, report.Progress.Completed)
	assert.Equal(t, provider.StatusRunning, report.Platforms[models.PlatformTikTok])
	assert.Equal(t, provider.StatusRunning, report.Platforms[models.PlatformFacebook])
	assert.Equal(t, provider.StatusRunning, report.Platforms[models.PlatformYouTube])
}

func TestStatus_MixedOutcomes(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, twitterActor, mock.Anything).
		Return([]json.RawMessage{tweetPayload("tw1")}, nil)
	p.On("RunSync", mock.Anything, redditActor, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, redditActor, mock.Anything).
		Return("run-rd", nil)
	p.On("RunSync", mock.Anything, instagramActor, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, instagramActor, mock.Anything).
		Return("run-ig", nil)
	p.On("RunSync", mock.Anything, truthSocialActor, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, truthSocialActor, mock.Anything).
		Return("", errors.New("down"))
	p.On("RunSync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return("", errors.New("down"))

	svc, _ := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	p.On("RunStatus", mock.Anything, "run-rd").Return(provider.StatusSucceeded, nil)
	// A transport failure during the status check counts as FAILED,
	// never as still-pending.
	p.On("RunStatus", mock.Anything, "run-ig").Return("", errors.New("network"))

	report, err := svc.Status(context.Background(), result.Search.ID)
	require.NoError(t, err)

	// twitter (sync), reddit, instagram hold run ids; truthSocial and
	// the hashtag trio never got one and stay out of the denominator.
	assert.Equal(t, 3, report.Progress.Total)
	assert.Equal(t, 2, report.Progress.Completed)
	assert.Equal(t, 67, report.Progress.Percentage)
	assert.Equal(t, AggregateFailed, report.Status)
	assert.Equal(t, provider.StatusSucceeded, report.Platforms[models.PlatformTwitter])
	assert.Equal(t, provider.StatusFailed, report.Platforms[models.PlatformInstagram])
}

func TestStatus_NoRunsIsFailed(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("down"))

	svc, _ := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	report, err := svc.Status(context.Background(), result.Search.ID)
	require.NoError(t, err)
	assert.Equal(t, AggregateFailed, report.Status)
	assert.Equal(t, 0, report.Progress.Total)
	assert.Equal(t, 0, report.Progress.Percentage)
}

func TestStatus_UnknownSearch(t *testing.T) {
	p := &MockProvider{}
	svc, _ := newTestService(t, p)

	_, err := svc.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResults_FetchesPendingAsyncRuns(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, twitterActor, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, twitterActor, mock.Anything).
		Return("run-tw", nil)
	p.On("RunSync", mock.Anything, redditActor, mock.Anything).
		Return([]json.RawMessage{json.RawMessage(`{"id": "rd1"}`)}, nil)
	p.On("RunSync", mock.Anything, instagramActor, mock.Anything).
		Return([]json.RawMessage{}, nil)
	p.On("RunSync", mock.Anything, truthSocialActor, mock.Anything).
		Return([]json.RawMessage{}, nil)
	p.On("RunSync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return("run-hashtag", nil)

	svc, st := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	p.On("DatasetItems", mock.Anything, "run-tw").
		Return([]json.RawMessage{tweetPayload("tw9")}, nil).Once()
	// The shared run's dataset is fetched once per Results call and
	// split by platform; facebook stays empty so it re-checks later.
	p.On("DatasetItems", mock.Anything, "run-hashtag").
		Return([]json.RawMessage{
			json.RawMessage(`{"id": "tk9", "fromSocial": "tiktok"}`),
			json.RawMessage(`{"id": "yt9", "fromSocial": "youtube"}`),
		}, nil).Twice()

	set, err := svc.Results(context.Background(), result.Search.ID)
	require.NoError(t, err)
	assert.Equal(t, "kubernetes", set.Keyword)

	p.AssertNumberOfCalls(t, "DatasetItems", 2)

	require.Len(t, set.Results[models.PlatformTwitter], 1)
	assert.Equal(t, "tw9", set.Results[models.PlatformTwitter][0].NativeID())
	require.Len(t, set.Results[models.PlatformTikTok], 1)
	assert.Equal(t, "tk9", set.Results[models.PlatformTikTok][0].NativeID())
	require.Len(t, set.Results[models.PlatformYouTube], 1)
	assert.Empty(t, set.Results[models.PlatformFacebook])

	// Fetched rows are persisted: a second call serves from the store
	// without touching the provider for twitter.
	stored, err := st.CountResults(context.Background(), result.Search.ID, models.PlatformTwitter)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	set2, err := svc.Results(context.Background(), result.Search.ID)
	require.NoError(t, err)
	assert.Len(t, set2.Results[models.PlatformTwitter], 1)
	p.AssertNumberOfCalls(t, "DatasetItems", 3) // only facebook's empty bucket re-fetches the shared run
}

func TestResults_SharedRunKeepsPlatformAttribution(t *testing.T) {
	p := &MockProvider{}
	p.On("RunSync", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("down"))
	p.On("RunAsync", mock.Anything, platforms.HashtagActor, mock.Anything).
		Return("run-hashtag", nil)
	p.On("RunAsync", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("down"))

	svc, st := newTestService(t, p)

	result, err := svc.Start(context.Background(), "alice", "kubernetes", 50)
	require.NoError(t, err)

	p.On("DatasetItems", mock.Anything, "run-hashtag").
		Return([]json.RawMessage{
			json.RawMessage(`{"id": "tk9", "fromSocial": "tiktok"}`),
			json.RawMessage(`{"id": "yt9", "fromSocial": "youtube"}`),
		}, nil).Twice()

	_, err = svc.Results(context.Background(), result.Search.ID)
	require.NoError(t, err)

	// Second call: tiktok and youtube now hold stored rows, leaving
	// facebook as the only platform still pending on the shared run. Its
	// rows must stay empty rather than absorb the other platforms'
	// items from the mixed dataset.
	set, err := svc.Results(context.Background(), result.Search.ID)
	require.NoError(t, err)
	assert.Empty(t, set.Results[models.PlatformFacebook])

	stored, err := st.CountResults(context.Background(), result.Search.ID, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, 0, stored)

	// No duplicates sneak into the platforms that already had rows.
	stored, err = st.CountResults(context.Background(), result.Search.ID, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)
}

func TestMergeResults(t *testing.T) {
	held := map[string][]models.PlatformItem{
		"twitter": {&models.TwitterResult{TweetID: "old"}},
		"reddit":  {&models.RedditResult{RedditID: "kept"}},
	}
	fresh := map[string][]models.PlatformItem{
		"twitter": {&models.TwitterResult{TweetID: "new"}},
		"reddit":  {},
		"tiktok":  {&models.TikTokResult{VideoID: "added"}},
	}

	merged := MergeResults(held, fresh)

	assert.Equal(t, "new", merged["twitter"][0].NativeID())
	assert.Equal(t, "kept", merged["reddit"][0].NativeID())
	assert.Equal(t, "added", merged["tiktok"][0].NativeID())
}
