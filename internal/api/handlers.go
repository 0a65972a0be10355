package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/search"
	"github.com/deepsocial/backend/internal/store"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type startSearchRequest struct {
	Keyword  string `json:"keyword"`
	MaxItems int    `json:"maxItems"`
}

type startSearchResponse struct {
	SearchID         string  `json:"searchId"`
	Status           string  `json:"status"`
	TwitterRunID     *string `json:"twitterRunId,omitempty"`
	RedditRunID      *string `json:"redditRunId,omitempty"`
	TikTokRunID      *string `json:"tiktokRunId,omitempty"`
	FacebookRunID    *string `json:"facebookRunId,omitempty"`
	InstagramRunID   *string `json:"instagramRunId,omitempty"`
	YouTubeRunID     *string `json:"youtubeRunId,omitempty"`
	TruthSocialRunID *string `json:"truthSocialRunId,omitempty"`

	TwitterData     []models.PlatformItem `json:"twitterData,omitempty"`
	RedditData      []models.PlatformItem `json:"redditData,omitempty"`
	InstagramData   []models.PlatformItem `json:"instagramData,omitempty"`
	TruthSocialData []models.PlatformItem `json:"truthSocialData,omitempty"`

	// SyncResults carries sync data for platforms served by the shared
	// hashtag run.
	SyncResults map[string][]models.PlatformItem `json:"syncResults,omitempty"`
}

func (s *Server) handleStartSearch(w http.ResponseWriter, r *http.Request) {
	var req startSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Keyword = strings.TrimSpace(req.Keyword)
	if req.Keyword == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	if !s.service.ProviderConfigured() {
		writeError(w, http.StatusInternalServerError, "search provider is not configured")
		return
	}

	result, err := s.service.Start(r.Context(), requestUserID(r), req.Keyword, req.MaxItems)
	if err != nil {
		logrus.Errorf("Failed to start search for keyword %q: %v", req.Keyword, err)
		writeError(w, http.StatusInternalServerError, "failed to start search")
		return
	}

	writeJSON(w, http.StatusOK, buildStartResponse(result))
}

func buildStartResponse(result *search.StartResult) startSearchResponse {
	s := result.Search
	resp := startSearchResponse{
		SearchID:         s.ID,
		Status:           s.Status,
		TwitterRunID:     s.TwitterRunID,
		RedditRunID:      s.RedditRunID,
		TikTokRunID:      s.TikTokRunID,
		FacebookRunID:    s.FacebookRunID,
		InstagramRunID:   s.InstagramRunID,
		YouTubeRunID:     s.YouTubeRunID,
		TruthSocialRunID: s.TruthSocialRunID,
	}

	for platform, items := range result.SyncData {
		switch platform {
		case models.PlatformTwitter:
			resp.TwitterData = items
		case models.PlatformReddit:
			resp.RedditData = items
		case models.PlatformInstagram:
			resp.InstagramData = items
		case models.PlatformTruthSocial:
			resp.TruthSocialData = items
		default:
			if resp.SyncResults == nil {
				resp.SyncResults = make(map[string][]models.PlatformItem)
			}
			resp.SyncResults[platform] = items
		}
	}

	return resp
}

func (s *Server) handleSearchStatus(w http.ResponseWriter, r *http.Request) {
	searchID := mux.Vars(r)["id"]

	if !s.service.ProviderConfigured() {
		writeError(w, http.StatusInternalServerError, "search provider is not configured")
		return
	}

	report, err := s.service.Status(r.Context(), searchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "search not found")
			return
		}
		logrus.Errorf("Failed to aggregate status for search %s: %v", searchID, err)
		writeError(w, http.StatusInternalServerError, "failed to check search status")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSearchResults(w http.ResponseWriter, r *http.Request) {
	searchID := mux.Vars(r)["id"]

	if !s.service.ProviderConfigured() {
		writeError(w, http.StatusInternalServerError, "search provider is not configured")
		return
	}

	set, err := s.service.Results(r.Context(), searchID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "search not found")
			return
		}
		logrus.Errorf("Failed to assemble results for search %s: %v", searchID, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch search results")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

const historyLimit = 20

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	searches, err := s.service.History(r.Context(), requestUserID(r), historyLimit)
	if err != nil {
		logrus.Errorf("Failed to list search history: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"searches": searches})
}
