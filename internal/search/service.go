package search

import (
	"context"
	"encoding/json"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/platforms"
	"github.com/deepsocial/backend/internal/store"
)

// Provider is the slice of the scraping provider's API the search
// service depends on.
type Provider interface {
	RunSync(ctx context.Context, actorID string, input any) ([]json.RawMessage, error)
	RunAsync(ctx context.Context, actorID string, input any) (string, error)
	RunStatus(ctx context.Context, runID string) (string, error)
	DatasetItems(ctx context.Context, runID string) ([]json.RawMessage, error)
}

// CompletionHook is invoked once, when a search first reaches the
// COMPLETED aggregate. Hook failures are logged, never surfaced.
type CompletionHook interface {
	SearchCompleted(ctx context.Context, search *models.Search, results map[string][]models.PlatformItem)
}

// Service orchestrates search runs, aggregates their status and
// assembles results. It owns no global state: the provider credential
// and every collaborator are injected at construction time.
type Service struct {
	cfg      *config.Config
	store    store.Store
	provider Provider
	hooks    []CompletionHook

	adapters map[string]platforms.Adapter
	runners  []runnerSpec
}

// runnerSpec is one provider invocation: a single actor run covering
// one or more platforms. The shared hashtag-research actor covers
// three; every other actor covers exactly one.
type runnerSpec struct {
	actor     string
	input     func(keyword string, maxItems int) any
	platforms []string
	// split routes mixed datasets to platforms by their fromSocial tag.
	split bool
}

// NewService wires the default adapter set.
func NewService(cfg *config.Config, st store.Store, provider Provider, hooks ...CompletionHook) *Service {
	twitter := platforms.NewTwitterAdapter()
	reddit := platforms.NewRedditAdapter()
	instagram := platforms.NewInstagramAdapter()
	truthSocial := platforms.NewTruthSocialAdapter()
	tiktok := platforms.NewTikTokAdapter()
	facebook := platforms.NewFacebookAdapter()
	youtube := platforms.NewYouTubeAdapter()

	s := &Service{
		cfg:      cfg,
		store:    st,
		provider: provider,
		hooks:    hooks,
		adapters: map[string]platforms.Adapter{
			twitter.Name():     twitter,
			reddit.Name():      reddit,
			instagram.Name():   instagram,
			truthSocial.Name(): truthSocial,
			tiktok.Name():      tiktok,
			facebook.Name():    facebook,
			youtube.Name():     youtube,
		},
	}

	s.runners = []runnerSpec{
		{actor: twitter.Actor(), input: twitter.BuildInput, platforms: []string{twitter.Name()}},
		{actor: reddit.Actor(), input: reddit.BuildInput, platforms: []string{reddit.Name()}},
		{actor: instagram.Actor(), input: instagram.BuildInput, platforms: []string{instagram.Name()}},
		{actor: truthSocial.Actor(), input: truthSocial.BuildInput, platforms: []string{truthSocial.Name()}},
		{
			actor: platforms.HashtagActor,
			input: func(keyword string, _ int) any { return platforms.HashtagInput(keyword) },
			platforms: []string{
				models.PlatformTikTok,
				models.PlatformFacebook,
				models.PlatformYouTube,
			},
			split: true,
		},
	}

	return s
}

// ProviderConfigured reports whether the provider credential is set.
// Endpoints that reach the provider return 500 when it is not.
func (s *Service) ProviderConfigured() bool {
	return s.cfg.ApifyToken != ""
}

// History lists a user's most recent searches, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]*models.Search, error) {
	return s.store.ListSearches(ctx, userID, limit)
}

// bucketByPlatform routes a runner's dataset to its platforms. Mixed
// hashtag-research datasets are split by fromSocial; single-platform
// datasets pass through whole.
func (r runnerSpec) bucketByPlatform(items []json.RawMessage) map[string][]json.RawMessage {
	if r.split {
		return platforms.SplitBySocial(items)
	}
	return map[string][]json.RawMessage{r.platforms[0]: items}
}
