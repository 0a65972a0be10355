package platforms

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/deepsocial/backend/internal/models"
)

// TwitterAdapter shapes requests for the tweet-scraper actor and
// normalizes its tweet payloads.
type TwitterAdapter struct{}

type rawTweet struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Text          string     `json:"text"`
	FullText      string     `json:"fullText"`
	CreatedAt     string     `json:"createdAt"`
	Lang          string     `json:"lang"`
	RetweetCount  int        `json:"retweetCount"`
	ReplyCount    int        `json:"replyCount"`
	LikeCount     int        `json:"likeCount"`
	QuoteCount    int        `json:"quoteCount"`
	ViewCount     *int64     `json:"viewCount"`
	BookmarkCount int        `json:"bookmarkCount"`
	IsReply       bool       `json:"isReply"`
	IsRetweet     bool       `json:"isRetweet"`
	IsQuote       bool       `json:"isQuote"`
	Media         []rawMedia `json:"media"`
	Author        *struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		UserName       string `json:"userName"`
		IsVerified     bool   `json:"isVerified"`
		ProfilePicture string `json:"profilePicture"`
		Followers      *int64 `json:"followers"`
		Following      *int64 `json:"following"`
	} `json:"author"`
}

func NewTwitterAdapter() *TwitterAdapter { return &TwitterAdapter{} }

func (a *TwitterAdapter) Name() string { return models.PlatformTwitter }

func (a *TwitterAdapter) Actor() string { return "apidojo~tweet-scraper" }

func (a *TwitterAdapter) BuildInput(keyword string, maxItems int) any {
	return map[string]any{
		"maxItems":    maxItems,
		"searchTerms": []string{fmt.Sprintf("%s min_replies:10 lang:en -filter:links", keyword)},
		"sort":        "Latest",
		"startUrls": []string{
			fmt.Sprintf("https://twitter.com/search?q=%s&src=typed_query&f=live", url.QueryEscape(keyword)),
		},
	}
}

func (a *TwitterAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var tweet rawTweet
	if err := json.Unmarshal(raw, &tweet); err != nil {
		return nil, fmt.Errorf("failed to parse tweet: %w", err)
	}

	if tweet.ID == "" {
		return nil, nil
	}

	result := &models.TwitterResult{
		SearchID:       searchID,
		TweetID:        tweet.ID,
		URL:            tweet.URL,
		Text:           tweet.Text,
		FullText:       coalesce(tweet.FullText, tweet.Text),
		TweetCreatedAt: coalesce(tweet.CreatedAt, time.Now().UTC().Format(time.RFC3339)),
		Lang:           coalesce(tweet.Lang, "en"),
		RetweetCount:   tweet.RetweetCount,
		ReplyCount:     tweet.ReplyCount,
		LikeCount:      tweet.LikeCount,
		QuoteCount:     tweet.QuoteCount,
		ViewCount:      tweet.ViewCount,
		BookmarkCount:  tweet.BookmarkCount,
		AuthorName:     UnknownUser,
		AuthorUsername: "unknown",
		MediaURLs:      mediaURLs(tweet.Media),
		IsReply:        tweet.IsReply,
		IsRetweet:      tweet.IsRetweet,
		IsQuote:        tweet.IsQuote,
	}

	if tweet.Author != nil {
		result.AuthorID = tweet.Author.ID
		result.AuthorName = coalesce(tweet.Author.Name, tweet.Author.UserName, UnknownUser)
		result.AuthorUsername = coalesce(tweet.Author.UserName, tweet.Author.Name, "unknown")
		result.AuthorVerified = tweet.Author.IsVerified
		result.AuthorAvatar = strPtr(tweet.Author.ProfilePicture)
		result.AuthorFollowers = tweet.Author.Followers
		result.AuthorFollowing = tweet.Author.Following
	}

	return result, nil
}
