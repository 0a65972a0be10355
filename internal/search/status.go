package search

import (
	"context"
	"math"

	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/platforms"
	"github.com/deepsocial/backend/internal/provider"
	"github.com/sirupsen/logrus"
)

// Aggregate statuses reported to the polling client.
const (
	AggregateRunning   = "RUNNING"
	AggregateCompleted = "COMPLETED"
	AggregateFailed    = "FAILED"
)

// Progress is the completion fraction across platforms holding a run
// id.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// StatusReport is the aggregate of a search's per-platform run
// statuses.
type StatusReport struct {
	SearchID  string            `json:"searchId"`
	Status    string            `json:"status"`
	Platforms map[string]string `json:"platforms"`
	Progress  Progress          `json:"progress"`
}

// Status queries each platform's live run status and reduces them to an
// overall status and completion percentage. Sync sentinels short-
// circuit to terminal success without touching the provider; a status
// check that fails in transport counts as terminal failure, never as
// still-pending. The first transition to COMPLETED persists the
// search's status and fires completion hooks; later calls are no-ops
// on the record.
func (s *Service) Status(ctx context.Context, searchID string) (*StatusReport, error) {
	search, err := s.store.GetSearch(ctx, searchID)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		SearchID:  searchID,
		Platforms: make(map[string]string),
	}

	// Platforms sharing one provider run (the hashtag-research trio)
	// are checked once per distinct run id.
	statusByRun := make(map[string]string)

	for _, platform := range models.Platforms {
		runID := search.RunID(platform)
		if runID == nil || *runID == "" {
			continue
		}

		if platforms.IsSyncRunID(*runID) {
			report.Platforms[platform] = provider.StatusSucceeded
			continue
		}

		status, cached := statusByRun[*runID]
		if !cached {
			var err error
			status, err = s.provider.RunStatus(ctx, *runID)
			if err != nil {
				logrus.Warnf("Status check failed for run %s (search %s): %v", *runID, searchID, err)
				status = provider.StatusFailed
			}
			statusByRun[*runID] = status
		}
		report.Platforms[platform] = status
	}

	succeeded, failed := 0, 0
	for _, status := range report.Platforms {
		if provider.IsTerminalSuccess(status) {
			succeeded++
		} else if provider.IsTerminalFailure(status) {
			failed++
		}
	}

	total := len(report.Platforms)
	switch {
	case total == 0:
		// No platform ever obtained a run id, so nothing can arrive.
		report.Status = AggregateFailed
	case succeeded == total:
		report.Status = AggregateCompleted
	case failed > 0:
		report.Status = AggregateFailed
	default:
		report.Status = AggregateRunning
	}

	report.Progress = Progress{Completed: succeeded, Total: total}
	if total > 0 {
		report.Progress.Percentage = int(math.Round(100 * float64(succeeded) / float64(total)))
	}

	if report.Status == AggregateCompleted && search.Status != models.SearchCompleted {
		if err := s.store.SetSearchStatus(ctx, searchID, models.SearchCompleted); err != nil {
			logrus.Errorf("Failed to mark search %s completed: %v", searchID, err)
		} else {
			search.Status = models.SearchCompleted
			s.fireCompletionHooks(ctx, search)
		}
	}

	return report, nil
}

func (s *Service) fireCompletionHooks(ctx context.Context, search *models.Search) {
	if len(s.hooks) == 0 {
		return
	}

	results, err := s.store.ResultsForSearch(ctx, search.ID)
	if err != nil {
		logrus.Errorf("Failed to load results for completion hooks on search %s: %v", search.ID, err)
		return
	}

	for _, hook := range s.hooks {
		hook.SearchCompleted(ctx, search, results)
	}
}
