package platforms

import (
	"encoding/json"
	"fmt"

	"github.com/deepsocial/backend/internal/models"
)

// InstagramAdapter shapes requests for the instagram-hashtag-scraper
// actor and normalizes its post payloads.
type InstagramAdapter struct{}

type rawInstagramPost struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	URL          string `json:"url"`
	LikeCount    *int64 `json:"likeCount"`
	CommentCount *int64 `json:"commentCount"`
	Owner        *struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		ProfilePicURL string `json:"profilePicUrl"`
	} `json:"owner"`
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
}

func NewInstagramAdapter() *InstagramAdapter { return &InstagramAdapter{} }

func (a *InstagramAdapter) Name() string { return models.PlatformInstagram }

func (a *InstagramAdapter) Actor() string { return "apidojo~instagram-hashtag-scraper" }

func (a *InstagramAdapter) BuildInput(keyword string, maxItems int) any {
	return map[string]any{
		"customMapFunction": "(object) => { return {...object} }",
		"getPosts":          true,
		"getReels":          true,
		"keyword":           keyword,
		"maxItems":          maxItems,
	}
}

func (a *InstagramAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var post rawInstagramPost
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("failed to parse instagram post: %w", err)
	}

	if post.ID == "" {
		return nil, nil
	}

	result := &models.InstagramResult{
		SearchID:      searchID,
		PostID:        post.ID,
		Text:          post.Caption,
		URL:           post.URL,
		Hashtags:      extractHashtags(post.Caption),
		LikesCount:    post.LikeCount,
		CommentsCount: post.CommentCount,
	}

	if post.Owner != nil {
		result.AuthorID = strPtr(post.Owner.ID)
		result.AuthorName = strPtr(post.Owner.Username)
		if post.Owner.Username != "" {
			result.AuthorURL = strPtr(fmt.Sprintf("https://www.instagram.com/%s/", post.Owner.Username))
		}
		// Avatar URLs arrive HTML-escaped from this actor.
		result.AuthorAvatar = strPtr(decodeHTMLEntities(post.Owner.ProfilePicURL))
	}

	if post.Image != nil {
		result.ThumbnailURL = strPtr(decodeHTMLEntities(post.Image.URL))
	}

	return result, nil
}
