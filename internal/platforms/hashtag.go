package platforms

import (
	"encoding/json"
	"fmt"

	"github.com/deepsocial/backend/internal/models"
)

// HashtagActor is the shared hashtag-research actor. One run of it
// covers TikTok, Facebook and YouTube; items carry a "fromSocial" tag
// identifying their platform.
const HashtagActor = "apify~social-media-hashtag-research"

// hashtagSocials maps our platform names onto the actor's "fromSocial"
// vocabulary.
var hashtagSocials = map[string]string{
	models.PlatformTikTok:   "tiktok",
	models.PlatformFacebook: "facebook",
	models.PlatformYouTube:  "youtube",
}

// IsHashtagSocial reports whether a platform is served by the shared
// hashtag-research actor, meaning its datasets arrive mixed with the
// other two platforms' items.
func IsHashtagSocial(platform string) bool {
	_, ok := hashtagSocials[platform]
	return ok
}

// HashtagInput builds the shared actor input covering all three
// platforms in a single run.
func HashtagInput(keyword string) any {
	return map[string]any{
		"hashtags": []string{keyword},
		"socials":  []string{"facebook", "tiktok", "youtube"},
	}
}

// SplitBySocial buckets a mixed hashtag-research dataset by platform.
// Items without a recognized fromSocial tag are dropped.
func SplitBySocial(items []json.RawMessage) map[string][]json.RawMessage {
	buckets := make(map[string][]json.RawMessage)

	for _, item := range items {
		var tag struct {
			FromSocial string `json:"fromSocial"`
		}
		if err := json.Unmarshal(item, &tag); err != nil {
			continue
		}

		for platform, social := range hashtagSocials {
			if tag.FromSocial == social {
				buckets[platform] = append(buckets[platform], item)
				break
			}
		}
	}

	return buckets
}

// rawSocialPost is the hashtag-research item shape shared by TikTok,
// Facebook and YouTube results.
type rawSocialPost struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	TextLanguage  string   `json:"textLanguage"`
	PostURL       string   `json:"postUrl"`
	Hashtags      []string `json:"hashtags"`
	ViewsCount    *int64   `json:"viewsCount"`
	LikesCount    *int64   `json:"likesCount"`
	CommentsCount *int64   `json:"commentsCount"`
	ShareCount    *int64   `json:"shareCount"`
	ThumbnailURL  string   `json:"thumbnailUrl"`
	CreationDate  string   `json:"creationDate"`
	IsSponsored   bool     `json:"isSponsored"`
	AuthorMeta    *struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		NickName  string `json:"nickName"`
		URL       string `json:"url"`
		Verified  bool   `json:"verified"`
		Avatar    string `json:"avatar"`
		Followers *int64 `json:"followers"`
		Following *int64 `json:"following"`
		Fans      *int64 `json:"fans"`
		Heart     *int64 `json:"heart"`
	} `json:"authorMeta"`
}

// TikTokAdapter normalizes the TikTok slice of a hashtag-research run.
type TikTokAdapter struct{}

func NewTikTokAdapter() *TikTokAdapter { return &TikTokAdapter{} }

func (a *TikTokAdapter) Name() string { return models.PlatformTikTok }

func (a *TikTokAdapter) Actor() string { return HashtagActor }

func (a *TikTokAdapter) BuildInput(keyword string, _ int) any { return HashtagInput(keyword) }

func (a *TikTokAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var video rawSocialPost
	if err := json.Unmarshal(raw, &video); err != nil {
		return nil, fmt.Errorf("failed to parse tiktok video: %w", err)
	}

	if video.ID == "" {
		return nil, nil
	}

	result := &models.TikTokResult{
		SearchID:      searchID,
		VideoID:       video.ID,
		Text:          video.Text,
		TextLanguage:  strPtr(video.TextLanguage),
		URL:           video.PostURL,
		AuthorName:    "Unknown",
		PlayCount:     video.ViewsCount,
		DiggCount:     video.LikesCount,
		ShareCount:    video.ShareCount,
		CommentCount:  video.CommentsCount,
		CoverURL:      strPtr(video.ThumbnailURL),
		VideoURL:      strPtr(video.PostURL),
		CreateTimeISO: strPtr(video.CreationDate),
		IsAd:          video.IsSponsored,
	}

	if video.AuthorMeta != nil {
		result.AuthorID = video.AuthorMeta.ID
		result.AuthorName = coalesce(video.AuthorMeta.Name, "Unknown")
		result.AuthorNickname = strPtr(video.AuthorMeta.NickName)
		result.AuthorVerified = video.AuthorMeta.Verified
		result.AuthorAvatar = strPtr(video.AuthorMeta.Avatar)
		result.AuthorFollowers = video.AuthorMeta.Followers
		result.AuthorFollowing = video.AuthorMeta.Following
		result.AuthorFans = video.AuthorMeta.Fans
		result.AuthorHeart = video.AuthorMeta.Heart
	}

	return result, nil
}

// FacebookAdapter normalizes the Facebook slice of a hashtag-research
// run.
type FacebookAdapter struct{}

func NewFacebookAdapter() *FacebookAdapter { return &FacebookAdapter{} }

func (a *FacebookAdapter) Name() string { return models.PlatformFacebook }

func (a *FacebookAdapter) Actor() string { return HashtagActor }

func (a *FacebookAdapter) BuildInput(keyword string, _ int) any { return HashtagInput(keyword) }

func (a *FacebookAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var post rawSocialPost
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("failed to parse facebook post: %w", err)
	}

	if post.ID == "" {
		return nil, nil
	}

	hashtags := post.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	result := &models.FacebookResult{
		SearchID:      searchID,
		PostID:        post.ID,
		Text:          post.Text,
		URL:           post.PostURL,
		Hashtags:      hashtags,
		ViewsCount:    post.ViewsCount,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		ShareCount:    post.ShareCount,
		ThumbnailURL:  strPtr(post.ThumbnailURL),
	}

	if post.AuthorMeta != nil {
		result.AuthorID = strPtr(post.AuthorMeta.ID)
		result.AuthorName = strPtr(post.AuthorMeta.Name)
		result.AuthorURL = strPtr(post.AuthorMeta.URL)
	}

	return result, nil
}

// YouTubeAdapter normalizes the YouTube slice of a hashtag-research
// run.
type YouTubeAdapter struct{}

func NewYouTubeAdapter() *YouTubeAdapter { return &YouTubeAdapter{} }

func (a *YouTubeAdapter) Name() string { return models.PlatformYouTube }

func (a *YouTubeAdapter) Actor() string { return HashtagActor }

func (a *YouTubeAdapter) BuildInput(keyword string, _ int) any { return HashtagInput(keyword) }

func (a *YouTubeAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var video rawSocialPost
	if err := json.Unmarshal(raw, &video); err != nil {
		return nil, fmt.Errorf("failed to parse youtube video: %w", err)
	}

	if video.ID == "" {
		return nil, nil
	}

	hashtags := video.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	result := &models.YouTubeResult{
		SearchID:      searchID,
		VideoID:       video.ID,
		Title:         video.Text,
		Text:          video.Text,
		URL:           video.PostURL,
		Hashtags:      hashtags,
		ViewsCount:    video.ViewsCount,
		LikesCount:    video.LikesCount,
		CommentsCount: video.CommentsCount,
		ThumbnailURL:  strPtr(video.ThumbnailURL),
	}

	if video.AuthorMeta != nil {
		result.AuthorID = strPtr(video.AuthorMeta.ID)
		result.AuthorName = strPtr(video.AuthorMeta.Name)
		result.AuthorURL = strPtr(video.AuthorMeta.URL)
	}

	return result, nil
}
