package models

import "time"

// Search lifecycle statuses as persisted on the search record.
const (
	SearchRunning   = "running"
	SearchCompleted = "completed"
	SearchFailed    = "failed"
)

// Platform names used as keys in API responses and run-id columns.
const (
	PlatformTwitter     = "twitter"
	PlatformReddit      = "reddit"
	PlatformTikTok      = "tiktok"
	PlatformFacebook    = "facebook"
	PlatformInstagram   = "instagram"
	PlatformYouTube     = "youtube"
	PlatformTruthSocial = "truthSocial"
)

// Platforms lists every platform in the order results are reported.
var Platforms = []string{
	PlatformTwitter,
	PlatformReddit,
	PlatformTikTok,
	PlatformFacebook,
	PlatformInstagram,
	PlatformYouTube,
	PlatformTruthSocial,
}

// Search represents one user-initiated keyword search. Each platform's
// run-id field holds either a provider run id, a "sync-" sentinel when
// the dataset materialized synchronously, or nil when the platform
// never obtained a job. A run id is written at most once and never
// unset.
type Search struct {
	ID        string    `json:"id"`
	Keyword   string    `json:"keyword"`
	Status    string    `json:"status"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	TwitterRunID     *string `json:"twitterRunId"`
	RedditRunID      *string `json:"redditRunId"`
	TikTokRunID      *string `json:"tiktokRunId"`
	FacebookRunID    *string `json:"facebookRunId"`
	InstagramRunID   *string `json:"instagramRunId"`
	YouTubeRunID     *string `json:"youtubeRunId"`
	TruthSocialRunID *string `json:"truthSocialRunId"`

	// ResultCounts is populated by history queries only.
	ResultCounts map[string]int `json:"resultCounts,omitempty"`
}

// RunID returns the run-id field for the named platform.
func (s *Search) RunID(platform string) *string {
	switch platform {
	case PlatformTwitter:
		return s.TwitterRunID
	case PlatformReddit:
		return s.RedditRunID
	case PlatformTikTok:
		return s.TikTokRunID
	case PlatformFacebook:
		return s.FacebookRunID
	case PlatformInstagram:
		return s.InstagramRunID
	case PlatformYouTube:
		return s.YouTubeRunID
	case PlatformTruthSocial:
		return s.TruthSocialRunID
	}
	return nil
}

// PlatformItem is one normalized content item attributed to a search.
// NativeID is the platform's own content id; items without one are
// dropped before persistence since they cannot be de-duplicated.
type PlatformItem interface {
	PlatformName() string
	NativeID() string
}

// TwitterResult is a normalized tweet.
type TwitterResult struct {
	ID              int64    `json:"id"`
	SearchID        string   `json:"searchId"`
	TweetID         string   `json:"tweetId"`
	URL             string   `json:"url"`
	Text            string   `json:"text"`
	FullText        string   `json:"fullText"`
	TweetCreatedAt  string   `json:"tweetCreatedAt"`
	Lang            string   `json:"lang"`
	RetweetCount    int      `json:"retweetCount"`
	ReplyCount      int      `json:"replyCount"`
	LikeCount       int      `json:"likeCount"`
	QuoteCount      int      `json:"quoteCount"`
	ViewCount       *int64   `json:"viewCount"`
	BookmarkCount   int      `json:"bookmarkCount"`
	AuthorID        string   `json:"authorId"`
	AuthorName      string   `json:"authorName"`
	AuthorUsername  string   `json:"authorUsername"`
	AuthorVerified  bool     `json:"authorVerified"`
	AuthorAvatar    *string  `json:"authorAvatar"`
	AuthorFollowers *int64   `json:"authorFollowers"`
	AuthorFollowing *int64   `json:"authorFollowing"`
	MediaURLs       []string `json:"mediaUrls"`
	IsReply         bool     `json:"isReply"`
	IsRetweet       bool     `json:"isRetweet"`
	IsQuote         bool     `json:"isQuote"`
}

func (r *TwitterResult) PlatformName() string { return PlatformTwitter }
func (r *TwitterResult) NativeID() string     { return r.TweetID }

// RedditResult is a normalized Reddit post.
type RedditResult struct {
	ID           int64    `json:"id"`
	SearchID     string   `json:"searchId"`
	RedditID     string   `json:"redditId"`
	DataType     string   `json:"dataType"`
	Title        *string  `json:"title"`
	Text         *string  `json:"text"`
	URL          string   `json:"url"`
	Subreddit    *string  `json:"subreddit"`
	AuthorID     *string  `json:"authorId"`
	AuthorName   *string  `json:"authorName"`
	AuthorAvatar *string  `json:"authorAvatar"`
	Score        *int64   `json:"score"`
	UpvoteRatio  *float64 `json:"upvoteRatio"`
	NumComments  *int64   `json:"numComments"`
	MediaURLs    []string `json:"mediaUrls"`
	CreatedAt    *string  `json:"createdAt"`
}

func (r *RedditResult) PlatformName() string { return PlatformReddit }
func (r *RedditResult) NativeID() string     { return r.RedditID }

// TikTokResult is a normalized TikTok video.
type TikTokResult struct {
	ID              int64   `json:"id"`
	SearchID        string  `json:"searchId"`
	VideoID         string  `json:"videoId"`
	Text            string  `json:"text"`
	TextLanguage    *string `json:"textLanguage"`
	URL             string  `json:"url"`
	AuthorID        string  `json:"authorId"`
	AuthorName      string  `json:"authorName"`
	AuthorNickname  *string `json:"authorNickname"`
	AuthorVerified  bool    `json:"authorVerified"`
	AuthorAvatar    *string `json:"authorAvatar"`
	AuthorFollowers *int64  `json:"authorFollowers"`
	AuthorFollowing *int64  `json:"authorFollowing"`
	AuthorFans      *int64  `json:"authorFans"`
	AuthorHeart     *int64  `json:"authorHeart"`
	PlayCount       *int64  `json:"playCount"`
	DiggCount       *int64  `json:"diggCount"`
	ShareCount      *int64  `json:"shareCount"`
	CommentCount    *int64  `json:"commentCount"`
	CoverURL        *string `json:"coverUrl"`
	VideoURL        *string `json:"videoUrl"`
	CreateTimeISO   *string `json:"createTimeISO"`
	IsAd            bool    `json:"isAd"`
}

func (r *TikTokResult) PlatformName() string { return PlatformTikTok }
func (r *TikTokResult) NativeID() string     { return r.VideoID }

// FacebookResult is a normalized Facebook post.
type FacebookResult struct {
	ID            int64    `json:"id"`
	SearchID      string   `json:"searchId"`
	PostID        string   `json:"postId"`
	Text          string   `json:"text"`
	URL           string   `json:"url"`
	Hashtags      []string `json:"hashtags"`
	AuthorID      *string  `json:"authorId"`
	AuthorName    *string  `json:"authorName"`
	AuthorURL     *string  `json:"authorUrl"`
	ViewsCount    *int64   `json:"viewsCount"`
	LikesCount    *int64   `json:"likesCount"`
	CommentsCount *int64   `json:"commentsCount"`
	ShareCount    *int64   `json:"shareCount"`
	ThumbnailURL  *string  `json:"thumbnailUrl"`
}

func (r *FacebookResult) PlatformName() string { return PlatformFacebook }
func (r *FacebookResult) NativeID() string     { return r.PostID }

// InstagramResult is a normalized Instagram post or reel.
type InstagramResult struct {
	ID            int64    `json:"id"`
	SearchID      string   `json:"searchId"`
	PostID        string   `json:"postId"`
	Text          string   `json:"text"`
	URL           string   `json:"url"`
	Hashtags      []string `json:"hashtags"`
	AuthorID      *string  `json:"authorId"`
	AuthorName    *string  `json:"authorName"`
	AuthorURL     *string  `json:"authorUrl"`
	AuthorAvatar  *string  `json:"authorAvatar"`
	ViewsCount    *int64   `json:"viewsCount"`
	LikesCount    *int64   `json:"likesCount"`
	CommentsCount *int64   `json:"commentsCount"`
	ShareCount    *int64   `json:"shareCount"`
	ThumbnailURL  *string  `json:"thumbnailUrl"`
}

func (r *InstagramResult) PlatformName() string { return PlatformInstagram }
func (r *InstagramResult) NativeID() string     { return r.PostID }

// YouTubeResult is a normalized YouTube video.
type YouTubeResult struct {
	ID            int64    `json:"id"`
	SearchID      string   `json:"searchId"`
	VideoID       string   `json:"videoId"`
	Title         string   `json:"title"`
	Text          string   `json:"text"`
	URL           string   `json:"url"`
	Hashtags      []string `json:"hashtags"`
	AuthorID      *string  `json:"authorId"`
	AuthorName    *string  `json:"authorName"`
	AuthorURL     *string  `json:"authorUrl"`
	ViewsCount    *int64   `json:"viewsCount"`
	LikesCount    *int64   `json:"likesCount"`
	CommentsCount *int64   `json:"commentsCount"`
	ThumbnailURL  *string  `json:"thumbnailUrl"`
}

func (r *YouTubeResult) PlatformName() string { return PlatformYouTube }
func (r *YouTubeResult) NativeID() string     { return r.VideoID }

// TruthSocialResult is a normalized Truth Social status.
type TruthSocialResult struct {
	ID              int64    `json:"id"`
	SearchID        string   `json:"searchId"`
	StatusID        string   `json:"statusId"`
	Content         string   `json:"content"`
	URL             string   `json:"url"`
	CardURL         *string  `json:"cardUrl"`
	AuthorID        *string  `json:"authorId"`
	AuthorName      string   `json:"authorName"`
	AuthorUsername  string   `json:"authorUsername"`
	AuthorAvatar    *string  `json:"authorAvatar"`
	AuthorHeader    *string  `json:"authorHeader"`
	AuthorVerified  bool     `json:"authorVerified"`
	AuthorFollowers *int64   `json:"authorFollowers"`
	RepliesCount    *int64   `json:"repliesCount"`
	ReblogsCount    *int64   `json:"reblogsCount"`
	FavouritesCount *int64   `json:"favouritesCount"`
	MediaURLs       []string `json:"mediaUrls"`
	CreatedAt       *string  `json:"createdAt"`
}

func (r *TruthSocialResult) PlatformName() string { return PlatformTruthSocial }
func (r *TruthSocialResult) NativeID() string     { return r.StatusID }
