package platforms

import (
	"encoding/json"
	"fmt"

	"github.com/deepsocial/backend/internal/models"
)

// TruthSocialAdapter shapes requests for the Truth Social search actor
// and normalizes its Mastodon-style status payloads.
type TruthSocialAdapter struct{}

type rawTruthStatus struct {
	ID              string     `json:"id"`
	Content         string     `json:"content"`
	Text            string     `json:"text"`
	URL             string     `json:"url"`
	RepliesCount    *int64     `json:"replies_count"`
	ReblogsCount    *int64     `json:"reblogs_count"`
	FavouritesCount *int64     `json:"favourites_count"`
	CreatedAt       string     `json:"created_at"`
	Card            *struct {
		URL string `json:"url"`
	} `json:"card"`
	MediaAttachments []rawMedia `json:"media_attachments"`
	Account          *struct {
		ID             string `json:"id"`
		DisplayName    string `json:"display_name"`
		Username       string `json:"username"`
		Avatar         string `json:"avatar"`
		Header         string `json:"header"`
		Verified       bool   `json:"verified"`
		FollowersCount *int64 `json:"followers_count"`
	} `json:"account"`
}

func NewTruthSocialAdapter() *TruthSocialAdapter { return &TruthSocialAdapter{} }

func (a *TruthSocialAdapter) Name() string { return models.PlatformTruthSocial }

func (a *TruthSocialAdapter) Actor() string { return "muhammetakkurtt~truthsocial-scraper" }

func (a *TruthSocialAdapter) BuildInput(keyword string, maxItems int) any {
	return map[string]any{
		"searchQuery": keyword,
		"searchType":  "statuses",
		"maxItems":    maxItems,
	}
}

func (a *TruthSocialAdapter) Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error) {
	var status rawTruthStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("failed to parse truth social status: %w", err)
	}

	if status.ID == "" {
		return nil, nil
	}

	result := &models.TruthSocialResult{
		SearchID:        searchID,
		StatusID:        status.ID,
		Content:         coalesce(status.Content, status.Text),
		URL:             status.URL,
		AuthorName:      UnknownUser,
		AuthorUsername:  "unknown",
		RepliesCount:    status.RepliesCount,
		ReblogsCount:    status.ReblogsCount,
		FavouritesCount: status.FavouritesCount,
		MediaURLs:       mediaURLs(status.MediaAttachments),
		CreatedAt:       strPtr(status.CreatedAt),
	}

	if status.Card != nil {
		result.CardURL = strPtr(status.Card.URL)
	}

	if status.Account != nil {
		result.AuthorID = strPtr(status.Account.ID)
		result.AuthorName = coalesce(status.Account.DisplayName, status.Account.Username, UnknownUser)
		result.AuthorUsername = coalesce(status.Account.Username, "unknown")
		result.AuthorAvatar = strPtr(status.Account.Avatar)
		result.AuthorHeader = strPtr(status.Account.Header)
		result.AuthorVerified = status.Account.Verified
		result.AuthorFollowers = status.Account.FollowersCount
	}

	return result, nil
}
