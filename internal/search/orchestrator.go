package search

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/platforms"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StartResult is the orchestrator's response to a new search: the
// created record plus whatever datasets materialized synchronously.
type StartResult struct {
	Search   *models.Search
	SyncData map[string][]models.PlatformItem
}

// runOutcome is one runner's contribution to a search.
type runOutcome struct {
	syncData map[string][]models.PlatformItem
}

// Start creates the search record and fans out every runner
// concurrently. Platforms are independent: a failure in one runner's
// call chain never blocks or cancels another's. Per runner the state
// machine is sync call → on failure async call → on failure nothing;
// whichever path succeeds determines the platform's run id.
func (s *Service) Start(ctx context.Context, userID, keyword string, maxItems int) (*StartResult, error) {
	maxItems = config.ClampMaxItems(maxItems)

	search := &models.Search{
		ID:        uuid.NewString(),
		Keyword:   keyword,
		Status:    models.SearchRunning,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateSearch(ctx, search); err != nil {
		return nil, err
	}

	logrus.Infof("Starting search %s for keyword %q across %d runners", search.ID, keyword, len(s.runners))

	var wg sync.WaitGroup
	outcomes := make(chan runOutcome, len(s.runners))

	for _, spec := range s.runners {
		wg.Add(1)
		go func(spec runnerSpec) {
			defer wg.Done()
			outcomes <- s.runOne(ctx, search, spec, keyword, maxItems)
		}(spec)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	syncData := make(map[string][]models.PlatformItem)
	for outcome := range outcomes {
		for platform, items := range outcome.syncData {
			syncData[platform] = items
			if rid := search.RunID(platform); rid == nil {
				sentinel := platforms.SyncRunID(platform, search.ID)
				s.setRunIDField(search, platform, sentinel)
			}
		}
	}

	result := &StartResult{Search: search, SyncData: syncData}
	return result, nil
}

// runOne drives a single runner through sync-then-async. Items are
// persisted before the platform's run id is written, so a platform is
// never reported as materialized while its rows are still in flight.
func (s *Service) runOne(ctx context.Context, search *models.Search, spec runnerSpec, keyword string, maxItems int) runOutcome {
	input := spec.input(keyword, maxItems)

	items, err := s.provider.RunSync(ctx, spec.actor, input)
	if err != nil {
		logrus.Warnf("Sync run of %s failed for search %s, falling back to async: %v", spec.actor, search.ID, err)
		return s.runAsyncFallback(ctx, search, spec, input)
	}

	outcome := runOutcome{syncData: make(map[string][]models.PlatformItem)}

	buckets := spec.bucketByPlatform(items)
	for _, platform := range spec.platforms {
		persisted := s.persistItems(ctx, search.ID, platform, buckets[platform], maxItems)
		outcome.syncData[platform] = persisted

		sentinel := platforms.SyncRunID(platform, search.ID)
		if err := s.store.SetRunID(ctx, search.ID, platform, sentinel); err != nil {
			logrus.Errorf("Failed to record sync run id for %s on search %s: %v", platform, search.ID, err)
		}
		logrus.Infof("Sync run of %s stored %d %s items for search %s", spec.actor, len(persisted), platform, search.ID)
	}

	return outcome
}

// runAsyncFallback enqueues the actor asynchronously. Failures here are
// terminal for the covered platforms: no run id, no data, logged only.
func (s *Service) runAsyncFallback(ctx context.Context, search *models.Search, spec runnerSpec, input any) runOutcome {
	runID, err := s.provider.RunAsync(ctx, spec.actor, input)
	if err != nil {
		logrus.Errorf("Async fallback of %s failed for search %s: %v", spec.actor, search.ID, err)
		return runOutcome{}
	}

	for _, platform := range spec.platforms {
		if err := s.store.SetRunID(ctx, search.ID, platform, runID); err != nil {
			logrus.Errorf("Failed to record async run id for %s on search %s: %v", platform, search.ID, err)
			continue
		}
		s.setRunIDField(search, platform, runID)
	}

	logrus.Infof("Async fallback of %s started for search %s, run id %s", spec.actor, search.ID, runID)
	return runOutcome{}
}

// persistItems normalizes and saves raw items for one platform, up to
// limit. A bad item, whether unparseable, id-less, or failing to save,
// is logged and skipped without aborting its siblings.
func (s *Service) persistItems(ctx context.Context, searchID, platform string, raw []json.RawMessage, limit int) []models.PlatformItem {
	adapter := s.adapters[platform]
	if len(raw) > limit {
		raw = raw[:limit]
	}

	persisted := []models.PlatformItem{}
	for _, item := range raw {
		normalized, err := adapter.Normalize(searchID, item)
		if err != nil {
			logrus.Warnf("Skipping malformed %s item for search %s: %v", platform, searchID, err)
			continue
		}
		if normalized == nil {
			// No platform-native id: cannot be de-duplicated later.
			continue
		}

		if err := s.store.SaveResult(ctx, normalized); err != nil {
			logrus.Errorf("Failed to store %s result for search %s: %v", platform, searchID, err)
			continue
		}
		persisted = append(persisted, normalized)
	}

	return persisted
}

// setRunIDField mirrors a run-id write onto the in-memory search so the
// initial response reports the handles without a re-read.
func (s *Service) setRunIDField(search *models.Search, platform, runID string) {
	value := runID
	switch platform {
	case models.PlatformTwitter:
		search.TwitterRunID = &value
	case models.PlatformReddit:
		search.RedditRunID = &value
	case models.PlatformTikTok:
		search.TikTokRunID = &value
	case models.PlatformFacebook:
		search.FacebookRunID = &value
	case models.PlatformInstagram:
		search.InstagramRunID = &value
	case models.PlatformYouTube:
		search.YouTubeRunID = &value
	case models.PlatformTruthSocial:
		search.TruthSocialRunID = &value
	}
}
