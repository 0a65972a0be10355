package platforms

import (
	"encoding/json"
	"testing"

	"github.com/deepsocial/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRunID(t *testing.T) {
	runID := SyncRunID("twitter", "search-1")
	assert.Equal(t, "sync-twitter-search-1", runID)
	assert.True(t, IsSyncRunID(runID))
	assert.False(t, IsSyncRunID("fakerun123"))
}

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		caption  string
		expected []string
	}{
		{
			name:     "Multiple hashtags",
			caption:  "loving #golang and #kubernetes today",
			expected: []string{"#golang", "#kubernetes"},
		},
		{
			name:     "No hashtags",
			caption:  "plain caption",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractHashtags(tt.caption))
		})
	}
}

func TestDecodeHTMLEntities(t *testing.T) {
	in := "https://cdn.example.com/pic.jpg?a=1&amp;b=2&amp;c=3"
	assert.Equal(t, "https://cdn.example.com/pic.jpg?a=1&b=2&c=3", decodeHTMLEntities(in))
}

func TestTwitterAdapter_Normalize(t *testing.T) {
	adapter := NewTwitterAdapter()
	assert.Equal(t, "twitter", adapter.Name())
	assert.Equal(t, "apidojo~tweet-scraper", adapter.Actor())

	raw := json.RawMessage(`{
		"id": "1800000000000000001",
		"url": "https://twitter.com/someone/status/1800000000000000001",
		"text": "short text",
		"fullText": "the full tweet text",
		"createdAt": "2025-06-01T10:00:00Z",
		"lang": "en",
		"retweetCount": 3,
		"replyCount": 12,
		"likeCount": 40,
		"viewCount": 9000,
		"media": [{"url": "https://pbs.example.com/img.jpg"}, {"url": ""}],
		"author": {
			"id": "42",
			"name": "Some One",
			"userName": "someone",
			"isVerified": true,
			"followers": 1234
		}
	}`)

	item, err := adapter.Normalize("search-1", raw)
	require.NoError(t, err)
	require.NotNil(t, item)

	tweet, ok := item.(*models.TwitterResult)
	require.True(t, ok)
	assert.Equal(t, "search-1", tweet.SearchID)
	assert.Equal(t, "1800000000000000001", tweet.TweetID)
	assert.Equal(t, "1800000000000000001", item.NativeID())
	assert.Equal(t, "twitter", item.PlatformName())
	assert.Equal(t, "the full tweet text", tweet.FullText)
	assert.Equal(t, "Some One", tweet.AuthorName)
	assert.Equal(t, "someone", tweet.AuthorUsername)
	assert.True(t, tweet.AuthorVerified)
	require.NotNil(t, tweet.ViewCount)
	assert.Equal(t, int64(9000), *tweet.ViewCount)
	assert.Equal(t, []string{"https://pbs.example.com/img.jpg"}, tweet.MediaURLs)
}

func TestTwitterAdapter_Normalize_Fallbacks(t *testing.T) {
	adapter := NewTwitterAdapter()

	t.Run("Missing id is skipped", func(t *testing.T) {
		item, err := adapter.Normalize("search-1", json.RawMessage(`{"text": "no id here"}`))
		require.NoError(t, err)
		assert.Nil(t, item)
	})

	t.Run("Missing author degrades to placeholders", func(t *testing.T) {
		item, err := adapter.Normalize("search-1", json.RawMessage(`{"id": "1", "text": "hello"}`))
		require.NoError(t, err)
		tweet := item.(*models.TwitterResult)
		assert.Equal(t, UnknownUser, tweet.AuthorName)
		assert.Equal(t, "unknown", tweet.AuthorUsername)
		assert.Equal(t, "hello", tweet.FullText)
	})

	t.Run("Malformed payload errors", func(t *testing.T) {
		_, err := adapter.Normalize("search-1", json.RawMessage(`["not an object"]`))
		assert.Error(t, err)
	})
}

func TestRedditAdapter_BuildInput(t *testing.T) {
	adapter := NewRedditAdapter()

	input, ok := adapter.BuildInput("azure", 200).(map[string]any)
	require.True(t, ok)

	// The lite scraper caps out below the general allow-list.
	assert.Equal(t, 20, input["maxItems"])
	assert.Equal(t, "new", input["sort"])
	assert.Equal(t, "week", input["time"])
	assert.Equal(t, false, input["includeNSFW"])

	small, _ := adapter.BuildInput("azure", 10).(map[string]any)
	assert.Equal(t, 10, small["maxItems"])
}

func TestRedditAdapter_Normalize(t *testing.T) {
	adapter := NewRedditAdapter()

	t.Run("Fullname used when id missing", func(t *testing.T) {
		raw := json.RawMessage(`{"name": "t3_abc", "title": "A post", "created_utc": 1718000000}`)
		item, err := adapter.Normalize("search-1", raw)
		require.NoError(t, err)

		post := item.(*models.RedditResult)
		assert.Equal(t, "t3_abc", post.RedditID)
		assert.Equal(t, "post", post.DataType)
		require.NotNil(t, post.CreatedAt)
		assert.Equal(t, "1718000000", *post.CreatedAt)
	})

	t.Run("Missing both ids is skipped", func(t *testing.T) {
		item, err := adapter.Normalize("search-1", json.RawMessage(`{"title": "orphan"}`))
		require.NoError(t, err)
		assert.Nil(t, item)
	})
}

func TestInstagramAdapter_Normalize(t *testing.T) {
	adapter := NewInstagramAdapter()
	assert.Equal(t, "apidojo~instagram-hashtag-scraper", adapter.Actor())

	raw := json.RawMessage(`{
		"id": "insta-1",
		"caption": "sunset #photo #travel",
		"url": "https://www.instagram.com/p/insta-1/",
		"likeCount": 55,
		"owner": {"id": "9", "username": "wanderer", "profilePicUrl": "https://cdn.example.com/p.jpg?x=1&amp;y=2"},
		"image": {"url": "https://cdn.example.com/img.jpg"}
	}`)

	item, err := adapter.Normalize("search-1", raw)
	require.NoError(t, err)

	post := item.(*models.InstagramResult)
	assert.Equal(t, []string{"#photo", "#travel"}, post.Hashtags)
	require.NotNil(t, post.AuthorURL)
	assert.Equal(t, "https://www.instagram.com/wanderer/", *post.AuthorURL)
	require.NotNil(t, post.AuthorAvatar)
	assert.Equal(t, "https://cdn.example.com/p.jpg?x=1&y=2", *post.AuthorAvatar)
}

func TestTruthSocialAdapter_Normalize(t *testing.T) {
	adapter := NewTruthSocialAdapter()
	assert.Equal(t, "muhammetakkurtt~truthsocial-scraper", adapter.Actor())

	raw := json.RawMessage(`{
		"id": "ts-1",
		"content": "<p>a status</p>",
		"replies_count": 2,
		"reblogs_count": 5,
		"favourites_count": 11,
		"card": {"url": "https://example.com/article"},
		"account": {"display_name": "Poster", "username": "poster", "followers_count": 77}
	}`)

	item, err := adapter.Normalize("search-1", raw)
	require.NoError(t, err)

	status := item.(*models.TruthSocialResult)
	assert.Equal(t, "ts-1", status.StatusID)
	assert.Equal(t, "Poster", status.AuthorName)
	assert.Equal(t, "poster", status.AuthorUsername)
	require.NotNil(t, status.CardURL)
	assert.Equal(t, "https://example.com/article", *status.CardURL)
	require.NotNil(t, status.FavouritesCount)
	assert.Equal(t, int64(11), *status.FavouritesCount)
}

func TestSplitBySocial(t *testing.T) {
	items := []json.RawMessage{
		json.RawMessage(`{"id": "1", "fromSocial": "tiktok"}`),
		json.RawMessage(`{"id": "2", "fromSocial": "youtube"}`),
		json.RawMessage(`{"id": "3", "fromSocial": "facebook"}`),
		json.RawMessage(`{"id": "4", "fromSocial": "tiktok"}`),
		json.RawMessage(`{"id": "5", "fromSocial": "myspace"}`),
		json.RawMessage(`{"id": "6"}`),
	}

	buckets := SplitBySocial(items)

	assert.Len(t, buckets[models.PlatformTikTok], 2)
	assert.Len(t, buckets[models.PlatformYouTube], 1)
	assert.Len(t, buckets[models.PlatformFacebook], 1)
	assert.Len(t, buckets, 3)
}

func TestIsHashtagSocial(t *testing.T) {
	assert.True(t, IsHashtagSocial(models.PlatformTikTok))
	assert.True(t, IsHashtagSocial(models.PlatformFacebook))
	assert.True(t, IsHashtagSocial(models.PlatformYouTube))
	assert.False(t, IsHashtagSocial(models.PlatformTwitter))
	assert.False(t, IsHashtagSocial(models.PlatformReddit))
}

func TestTikTokAdapter_Normalize(t *testing.T) {
	adapter := NewTikTokAdapter()
	assert.Equal(t, HashtagActor, adapter.Actor())

	raw := json.RawMessage(`{
		"id": "tt-1",
		"text": "dance video",
		"postUrl": "https://www.tiktok.com/@user/video/tt-1",
		"viewsCount": 100000,
		"likesCount": 4000,
		"fromSocial": "tiktok",
		"authorMeta": {"name": "user", "fans": 987}
	}`)

	item, err := adapter.Normalize("search-1", raw)
	require.NoError(t, err)

	video := item.(*models.TikTokResult)
	assert.Equal(t, "tt-1", video.VideoID)
	require.NotNil(t, video.PlayCount)
	assert.Equal(t, int64(100000), *video.PlayCount)
	require.NotNil(t, video.DiggCount)
	assert.Equal(t, int64(4000), *video.DiggCount)
	assert.Equal(t, "user", video.AuthorName)
	require.NotNil(t, video.AuthorFans)
	assert.Equal(t, int64(987), *video.AuthorFans)
}

func TestYouTubeAdapter_Normalize(t *testing.T) {
	adapter := NewYouTubeAdapter()

	raw := json.RawMessage(`{
		"id": "yt-1",
		"text": "a video title",
		"postUrl": "https://www.youtube.com/watch?v=yt-1",
		"hashtags": ["#shorts"],
		"viewsCount": 5000,
		"fromSocial": "youtube"
	}`)

	item, err := adapter.Normalize("search-1", raw)
	require.NoError(t, err)

	video := item.(*models.YouTubeResult)
	assert.Equal(t, "a video title", video.Title)
	assert.Equal(t, []string{"#shorts"}, video.Hashtags)
}

func TestHashtagInput(t *testing.T) {
	input, ok := HashtagInput("golang").(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"golang"}, input["hashtags"])
	assert.ElementsMatch(t, []string{"facebook", "tiktok", "youtube"}, input["socials"])
}
