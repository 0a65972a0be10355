package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deepsocial/backend/internal/models"
	_ "modernc.org/sqlite"
)

// ensure sqliteStore implements Store
var _ Store = (*sqliteStore)(nil)

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id TEXT PRIMARY KEY,
	keyword TEXT NOT NULL,
	status TEXT NOT NULL,
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	twitter_run_id TEXT,
	reddit_run_id TEXT,
	tiktok_run_id TEXT,
	facebook_run_id TEXT,
	instagram_run_id TEXT,
	youtube_run_id TEXT,
	truthsocial_run_id TEXT
);

CREATE TABLE IF NOT EXISTS twitter_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	tweet_id TEXT NOT NULL,
	url TEXT NOT NULL,
	text TEXT NOT NULL,
	full_text TEXT NOT NULL,
	tweet_created_at TEXT NOT NULL,
	lang TEXT NOT NULL,
	retweet_count INTEGER NOT NULL,
	reply_count INTEGER NOT NULL,
	like_count INTEGER NOT NULL,
	quote_count INTEGER NOT NULL,
	view_count INTEGER,
	bookmark_count INTEGER NOT NULL,
	author_id TEXT NOT NULL,
	author_name TEXT NOT NULL,
	author_username TEXT NOT NULL,
	author_verified BOOLEAN NOT NULL,
	author_avatar TEXT,
	author_followers INTEGER,
	author_following INTEGER,
	media_urls TEXT NOT NULL,
	is_reply BOOLEAN NOT NULL,
	is_retweet BOOLEAN NOT NULL,
	is_quote BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS reddit_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	reddit_id TEXT NOT NULL,
	data_type TEXT NOT NULL,
	title TEXT,
	text TEXT,
	url TEXT NOT NULL,
	subreddit TEXT,
	author_id TEXT,
	author_name TEXT,
	author_avatar TEXT,
	score INTEGER,
	upvote_ratio REAL,
	num_comments INTEGER,
	media_urls TEXT NOT NULL,
	created_at TEXT
);

CREATE TABLE IF NOT EXISTS tiktok_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	video_id TEXT NOT NULL,
	text TEXT NOT NULL,
	text_language TEXT,
	url TEXT NOT NULL,
	author_id TEXT NOT NULL,
	author_name TEXT NOT NULL,
	author_nickname TEXT,
	author_verified BOOLEAN NOT NULL,
	author_avatar TEXT,
	author_followers INTEGER,
	author_following INTEGER,
	author_fans INTEGER,
	author_heart INTEGER,
	play_count INTEGER,
	digg_count INTEGER,
	share_count INTEGER,
	comment_count INTEGER,
	cover_url TEXT,
	video_url TEXT,
	create_time_iso TEXT,
	is_ad BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS facebook_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	post_id TEXT NOT NULL,
	text TEXT NOT NULL,
	url TEXT NOT NULL,
	hashtags TEXT NOT NULL,
	author_id TEXT,
	author_name TEXT,
	author_url TEXT,
	views_count INTEGER,
	likes_count INTEGER,
	comments_count INTEGER,
	share_count INTEGER,
	thumbnail_url TEXT
);

CREATE TABLE IF NOT EXISTS instagram_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	post_id TEXT NOT NULL,
	text TEXT NOT NULL,
	url TEXT NOT NULL,
	hashtags TEXT NOT NULL,
	author_id TEXT,
	author_name TEXT,
	author_url TEXT,
	author_avatar TEXT,
	views_count INTEGER,
	likes_count INTEGER,
	comments_count INTEGER,
	share_count INTEGER,
	thumbnail_url TEXT
);

CREATE TABLE IF NOT EXISTS youtube_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	video_id TEXT NOT NULL,
	title TEXT NOT NULL,
	text TEXT NOT NULL,
	url TEXT NOT NULL,
	hashtags TEXT NOT NULL,
	author_id TEXT,
	author_name TEXT,
	author_url TEXT,
	views_count INTEGER,
	likes_count INTEGER,
	comments_count INTEGER,
	thumbnail_url TEXT
);

CREATE TABLE IF NOT EXISTS truthsocial_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	status_id TEXT NOT NULL,
	content TEXT NOT NULL,
	url TEXT NOT NULL,
	card_url TEXT,
	author_id TEXT,
	author_name TEXT NOT NULL,
	author_username TEXT NOT NULL,
	author_avatar TEXT,
	author_header TEXT,
	author_verified BOOLEAN NOT NULL,
	author_followers INTEGER,
	replies_count INTEGER,
	reblogs_count INTEGER,
	favourites_count INTEGER,
	media_urls TEXT NOT NULL,
	created_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_searches_user ON searches(user_id, created_at DESC);
`

// run-id column per platform; the column set is fixed, so platform
// names are never interpolated from request input.
var runIDColumns = map[string]string{
	models.PlatformTwitter:     "twitter_run_id",
	models.PlatformReddit:      "reddit_run_id",
	models.PlatformTikTok:      "tiktok_run_id",
	models.PlatformFacebook:    "facebook_run_id",
	models.PlatformInstagram:   "instagram_run_id",
	models.PlatformYouTube:     "youtube_run_id",
	models.PlatformTruthSocial: "truthsocial_run_id",
}

var resultTables = map[string]string{
	models.PlatformTwitter:     "twitter_results",
	models.PlatformReddit:      "reddit_results",
	models.PlatformTikTok:      "tiktok_results",
	models.PlatformFacebook:    "facebook_results",
	models.PlatformInstagram:   "instagram_results",
	models.PlatformYouTube:     "youtube_results",
	models.PlatformTruthSocial: "truthsocial_results",
}

// New opens (and if necessary creates) the SQLite database at path.
func New(path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The search fan-out writes from several goroutines at once, and
	// this driver surfaces SQLITE_BUSY instead of queueing writers.
	// Serialize on one connection and keep a busy timeout as a backstop.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func (s *sqliteStore) CreateSearch(ctx context.Context, search *models.Search) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, keyword, status, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		search.ID, search.Keyword, search.Status, search.UserID, search.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create search: %w", err)
	}
	return nil
}

func (s *sqliteStore) GetSearch(ctx context.Context, id string) (*models.Search, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, keyword, status, user_id, created_at,
			twitter_run_id, reddit_run_id, tiktok_run_id, facebook_run_id,
			instagram_run_id, youtube_run_id, truthsocial_run_id
		FROM searches WHERE id = ?`, id)

	search := &models.Search{}
	err := row.Scan(
		&search.ID, &search.Keyword, &search.Status, &search.UserID, &search.CreatedAt,
		&search.TwitterRunID, &search.RedditRunID, &search.TikTokRunID, &search.FacebookRunID,
		&search.InstagramRunID, &search.YouTubeRunID, &search.TruthSocialRunID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load search %s: %w", id, err)
	}

	return search, nil
}

func (s *sqliteStore) SetRunID(ctx context.Context, searchID, platform, runID string) error {
	column, ok := runIDColumns[platform]
	if !ok {
		return fmt.Errorf("unknown platform %q", platform)
	}

	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE searches SET %s = ? WHERE id = ?`, column),
		runID, searchID,
	)
	if err != nil {
		return fmt.Errorf("failed to set %s run id on search %s: %w", platform, searchID, err)
	}
	return nil
}

func (s *sqliteStore) SetSearchStatus(ctx context.Context, searchID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE searches SET status = ? WHERE id = ?`, status, searchID)
	if err != nil {
		return fmt.Errorf("failed to set status on search %s: %w", searchID, err)
	}
	return nil
}

func (s *sqliteStore) FailStaleSearches(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE searches SET status = ? WHERE status = ? AND created_at < ?`,
		models.SearchFailed, models.SearchRunning, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to reap stale searches: %w", err)
	}
	return res.RowsAffected()
}

func (s *sqliteStore) ListSearches(ctx context.Context, userID string, limit int) ([]*models.Search, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, keyword, status, user_id, created_at,
			twitter_run_id, reddit_run_id, tiktok_run_id, facebook_run_id,
			instagram_run_id, youtube_run_id, truthsocial_run_id
		FROM searches WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var searches []*models.Search
	for rows.Next() {
		search := &models.Search{}
		if err := rows.Scan(
			&search.ID, &search.Keyword, &search.Status, &search.UserID, &search.CreatedAt,
			&search.TwitterRunID, &search.RedditRunID, &search.TikTokRunID, &search.FacebookRunID,
			&search.InstagramRunID, &search.YouTubeRunID, &search.TruthSocialRunID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		searches = append(searches, search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate searches: %w", err)
	}

	for _, search := range searches {
		counts := make(map[string]int, len(models.Platforms))
		for _, platform := range models.Platforms {
			count, err := s.CountResults(ctx, search.ID, platform)
			if err != nil {
				return nil, err
			}
			counts[platform] = count
		}
		search.ResultCounts = counts
	}

	return searches, nil
}

func (s *sqliteStore) CountResults(ctx context.Context, searchID, platform string) (int, error) {
	table, ok := resultTables[platform]
	if !ok {
		return 0, fmt.Errorf("unknown platform %q", platform)
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE search_id = ?`, table),
		searchID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s results for search %s: %w", platform, searchID, err)
	}
	return count, nil
}

// marshalStrings encodes a string slice as the JSON stored in TEXT
// columns, normalizing nil to an empty list.
func marshalStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func unmarshalStrings(data string) []string {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil || values == nil {
		return []string{}
	}
	return values
}
