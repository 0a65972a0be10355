package store

import (
	"context"
	"errors"
	"time"

	"github.com/deepsocial/backend/internal/models"
)

// ErrNotFound is returned when a search id is unknown.
var ErrNotFound = errors.New("search not found")

// Store defines the persistence contract. Searches are created once
// and mutated only field-by-field (per-platform run ids, status);
// result rows are append-only — re-running a search creates a new
// Search and new rows, never an upsert.
type Store interface {
	CreateSearch(ctx context.Context, search *models.Search) error
	GetSearch(ctx context.Context, id string) (*models.Search, error)
	// SetRunID writes a single platform's run-id column so concurrent
	// writes for distinct platforms never clobber sibling fields.
	SetRunID(ctx context.Context, searchID, platform, runID string) error
	SetSearchStatus(ctx context.Context, searchID, status string) error
	// FailStaleSearches marks searches stuck in "running" since before
	// cutoff as failed, returning how many were reaped.
	FailStaleSearches(ctx context.Context, cutoff time.Time) (int64, error)
	ListSearches(ctx context.Context, userID string, limit int) ([]*models.Search, error)

	SaveResult(ctx context.Context, item models.PlatformItem) error
	ResultsForSearch(ctx context.Context, searchID string) (map[string][]models.PlatformItem, error)
	CountResults(ctx context.Context, searchID, platform string) (int, error)

	Close() error
}
