package search

import (
	"context"
	"encoding/json"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/platforms"
	"github.com/sirupsen/logrus"
)

// ResultSet is the assembled, per-platform view of a search's results.
type ResultSet struct {
	SearchID string                           `json:"searchId"`
	Keyword  string                           `json:"keyword"`
	Results  map[string][]models.PlatformItem `json:"results"`
}

// Results assembles a search's results. Platforms whose run finished
// asynchronously have their dataset fetched and persisted on first
// access; afterwards rows are served from the store. Fetched and held
// rows merge under one policy: a non-empty fresh set replaces what was
// held, an empty fetch leaves held rows untouched.
func (s *Service) Results(ctx context.Context, searchID string) (*ResultSet, error) {
	search, err := s.store.GetSearch(ctx, searchID)
	if err != nil {
		return nil, err
	}

	held, err := s.store.ResultsForSearch(ctx, searchID)
	if err != nil {
		return nil, err
	}

	fresh := s.fetchPending(ctx, search, held)

	set := &ResultSet{
		SearchID: searchID,
		Keyword:  search.Keyword,
		Results:  MergeResults(held, fresh),
	}
	return set, nil
}

// fetchPending pulls datasets for platforms that hold a real async run
// id but have no stored rows yet. A run id shared by several platforms
// is fetched once and routed by its items' fromSocial tag. Fetch
// failures are logged and the platform keeps its held (empty) rows.
func (s *Service) fetchPending(ctx context.Context, search *models.Search, held map[string][]models.PlatformItem) map[string][]models.PlatformItem {
	pendingByRun := make(map[string][]string)
	for _, platform := range models.Platforms {
		runID := search.RunID(platform)
		if runID == nil || *runID == "" || platforms.IsSyncRunID(*runID) {
			continue
		}
		if len(held[platform]) > 0 {
			continue
		}
		pendingByRun[*runID] = append(pendingByRun[*runID], platform)
	}

	fresh := make(map[string][]models.PlatformItem)
	for runID, pending := range pendingByRun {
		items, err := s.provider.DatasetItems(ctx, runID)
		if err != nil {
			logrus.Warnf("Failed to fetch dataset for run %s (search %s): %v", runID, search.ID, err)
			continue
		}

		// The shared actor's dataset is always mixed. Route by
		// fromSocial even when a single platform is still pending, or
		// its rows would absorb the other platforms' items.
		var buckets map[string][]json.RawMessage
		if platforms.IsHashtagSocial(pending[0]) {
			buckets = platforms.SplitBySocial(items)
		} else {
			buckets = map[string][]json.RawMessage{pending[0]: items}
		}

		for _, platform := range pending {
			persisted := s.persistItems(ctx, search.ID, platform, buckets[platform], config.DefaultMaxItems)
			fresh[platform] = persisted
			logrus.Infof("Fetched %d %s items from run %s for search %s", len(persisted), platform, runID, search.ID)
		}
	}

	return fresh
}

// MergeResults applies the merge policy across all platforms: for each,
// a non-empty fresh set wins, otherwise the held set stands. Platforms
// absent from both stay absent.
func MergeResults(held, fresh map[string][]models.PlatformItem) map[string][]models.PlatformItem {
	merged := make(map[string][]models.PlatformItem)
	for platform, items := range held {
		merged[platform] = items
	}
	for platform, items := range fresh {
		if len(items) > 0 {
			merged[platform] = items
		}
	}
	return merged
}
