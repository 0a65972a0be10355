package platforms

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/deepsocial/backend/internal/models"
)

// redditMaxItems is the provider-side ceiling for the lite Reddit
// scraper, below the general allow-list.
const redditMaxItems = 20

// RedditAdapter shapes requests for the reddit-scraper-lite actor and
// normalizes its post payloads.
type RedditAdapter struct{}

type rawRedditPost struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DataType    string     `json:"dataType"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Subreddit   string     `json:"subreddit"`
	DisplayName string     `json:"displayName"`
	Username    string     `json:"username"`
	Score       *int64     `json:"score"`
	UpvoteRatio *float64   `json:"upvoteRatio"`
	NumComments *int64     `json:"numComments"`
	Media       []rawMedia `json:"media"`
	CreatedAt   string     `json:"createdAt"`
	CreatedUTC  *float64   `json:"created_utc"`
	Author      *struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	} `json:"author"`
}

func NewRedditAdapter() *RedditAdapter { return &RedditAdapter{} }

func (a *RedditAdapter) Name() string { return models.PlatformReddit }

func (a *RedditAdapter) Actor() string { return "trudax~reddit-scraper-lite" }

func (a *RedditAdapter) BuildInput(keyword string, maxItems int) any {
	if maxItems > redditMaxItems {
		maxItems = redditMaxItems
	}

	return map[string]any{
		"debugMode":          false,
		"ignoreStartUrls":    false,
		"includeNSFW":        false,
		"maxComments":        1,
		"maxCommunitiesCount": 2,
		"maxItems":           maxItems,
		"maxPostCount":       50,
		"maxUserCount":       2,
		"proxy": map[string]any{
			"useApifyProxy":    true,
			"apifyProxyGroups": []string{"RESIDENTIAL"},
		},
		"scrollTimeout":     40,
		"searchComments":    false,
		"searchCommunities": false,
		"searchPosts":       true,
		"searchUsers":       false,
		"skipComments":      true,
		"skipCommunity":     false,
		"skipUserPosts":     false,
		"sort":              "new",
		"startUrls": []map[string]string{{
			"url":    fmt.Sprintf("https://www.reddit.com/search/?q=%s&sort=new", url.QueryEscape(keyword)),
			"method": "GET",
		}},
		"time": "week",
	}
}

func (a *RedditAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var post rawRedditPost
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("failed to parse reddit post: %w", err)
	}

	// Posts surface their id under "id" or the fullname under "name".
	nativeID := coalesce(post.ID, post.Name)
	if nativeID == "" {
		return nil, nil
	}

	createdAt := post.CreatedAt
	if createdAt == "" && post.CreatedUTC != nil {
		createdAt = strconv.FormatInt(int64(*post.CreatedUTC), 10)
	}

	result := &models.RedditResult{
		SearchID:    searchID,
		RedditID:    nativeID,
		DataType:    coalesce(post.DataType, "post"),
		Title:       strPtr(post.Title),
		Text:        strPtr(coalesce(post.Text, post.Description)),
		URL:         post.URL,
		Subreddit:   strPtr(coalesce(post.Subreddit, post.DisplayName)),
		Score:       post.Score,
		UpvoteRatio: post.UpvoteRatio,
		NumComments: post.NumComments,
		MediaURLs:   mediaURLs(post.Media),
		CreatedAt:   strPtr(createdAt),
	}

	authorName := post.Username
	if post.Author != nil {
		result.AuthorID = strPtr(post.Author.ID)
		result.AuthorAvatar = strPtr(post.Author.Avatar)
		authorName = coalesce(post.Username, post.Author.Name)
	}
	result.AuthorName = strPtr(authorName)

	return result, nil
}
