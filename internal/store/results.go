package store

import (
	"context"
	"fmt"

	"github.com/deepsocial/backend/internal/models"
)

func (s *sqliteStore) SaveResult(ctx context.Context, item models.PlatformItem) error {
	switch r := item.(type) {
	case *models.TwitterResult:
		return s.saveTwitter(ctx, r)
	case *models.RedditResult:
		return s.saveReddit(ctx, r)
	case *models.TikTokResult:
		return s.saveTikTok(ctx, r)
	case *models.FacebookResult:
		return s.saveFacebook(ctx, r)
	case *models.InstagramResult:
		return s.saveInstagram(ctx, r)
	case *models.YouTubeResult:
		return s.saveYouTube(ctx, r)
	case *models.TruthSocialResult:
		return s.saveTruthSocial(ctx, r)
	}
	return fmt.Errorf("unknown result type %T", item)
}

func (s *sqliteStore) ResultsForSearch(ctx context.Context, searchID string) (map[string][]models.PlatformItem, error) {
	results := make(map[string][]models.PlatformItem, len(models.Platforms))

	loaders := []func(context.Context, string) ([]models.PlatformItem, error){
		s.loadTwitter, s.loadReddit, s.loadTikTok, s.loadFacebook,
		s.loadInstagram, s.loadYouTube, s.loadTruthSocial,
	}
	for i, platform := range models.Platforms {
		items, err := loaders[i](ctx, searchID)
		if err != nil {
			return nil, err
		}
		results[platform] = items
	}

	return results, nil
}

func (s *sqliteStore) saveTwitter(ctx context.Context, r *models.TwitterResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO twitter_results (
			search_id, tweet_id, url, text, full_text, tweet_created_at, lang,
			retweet_count, reply_count, like_count, quote_count, view_count, bookmark_count,
			author_id, author_name, author_username, author_verified, author_avatar,
			author_followers, author_following, media_urls, is_reply, is_retweet, is_quote
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.TweetID, r.URL, r.Text, r.FullText, r.TweetCreatedAt, r.Lang,
		r.RetweetCount, r.ReplyCount, r.LikeCount, r.QuoteCount, r.ViewCount, r.BookmarkCount,
		r.AuthorID, r.AuthorName, r.AuthorUsername, r.AuthorVerified, r.AuthorAvatar,
		r.AuthorFollowers, r.AuthorFollowing, marshalStrings(r.MediaURLs), r.IsReply, r.IsRetweet, r.IsQuote,
	)
	if err != nil {
		return fmt.Errorf("failed to save twitter result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadTwitter(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, tweet_id, url, text, full_text, tweet_created_at, lang,
			retweet_count, reply_count, like_count, quote_count, view_count, bookmark_count,
			author_id, author_name, author_username, author_verified, author_avatar,
			author_followers, author_following, media_urls, is_reply, is_retweet, is_quote
		FROM twitter_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load twitter results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.TwitterResult{}
		var media string
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.TweetID, &r.URL, &r.Text, &r.FullText, &r.TweetCreatedAt, &r.Lang,
			&r.RetweetCount, &r.ReplyCount, &r.LikeCount, &r.QuoteCount, &r.ViewCount, &r.BookmarkCount,
			&r.AuthorID, &r.AuthorName, &r.AuthorUsername, &r.AuthorVerified, &r.AuthorAvatar,
			&r.AuthorFollowers, &r.AuthorFollowing, &media, &r.IsReply, &r.IsRetweet, &r.IsQuote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan twitter result: %w", err)
		}
		r.MediaURLs = unmarshalStrings(media)
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *sqliteStore) saveReddit(ctx context.Context, r *models.RedditResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reddit_results (
			search_id, reddit_id, data_type, title, text, url, subreddit,
			author_id, author_name, author_avatar, score, upvote_ratio, num_comments,
			media_urls, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.RedditID, r.DataType, r.Title, r.Text, r.URL, r.Subreddit,
		r.AuthorID, r.AuthorName, r.AuthorAvatar, r.Score, r.UpvoteRatio, r.NumComments,
		marshalStrings(r.MediaURLs), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save reddit result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadReddit(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, reddit_id, data_type, title, text, url, subreddit,
			author_id, author_name, author_avatar, score, upvote_ratio, num_comments,
			media_urls, created_at
		FROM reddit_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reddit results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.RedditResult{}
		var media string
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.RedditID, &r.DataType, &r.Title, &r.Text, &r.URL, &r.Subreddit,
			&r.AuthorID, &r.AuthorName, &r.AuthorAvatar, &r.Score, &r.UpvoteRatio, &r.NumComments,
			&media, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reddit result: %w", err)
		}
		r.MediaURLs = unmarshalStrings(media)
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *sqliteStore) saveTikTok(ctx context.Context, r *models.TikTokResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tiktok_results (
			search_id, video_id, text, text_language, url,
			author_id, author_name, author_nickname, author_verified, author_avatar,
			author_followers, author_following, author_fans, author_heart,
			play_count, digg_count, share_count, comment_count,
			cover_url, video_url, create_time_iso, is_ad
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.VideoID, r.Text, r.TextLanguage, r.URL,
		r.AuthorID, r.AuthorName, r.AuthorNickname, r.AuthorVerified, r.AuthorAvatar,
		r.AuthorFollowers, r.AuthorFollowing, r.AuthorFans, r.AuthorHeart,
		r.PlayCount, r.DiggCount, r.ShareCount, r.CommentCount,
		r.CoverURL, r.VideoURL, r.CreateTimeISO, r.IsAd,
	)
	if err != nil {
		return fmt.Errorf("failed to save tiktok result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadTikTok(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, video_id, text, text_language, url,
			author_id, author_name, author_nickname, author_verified, author_avatar,
			author_followers, author_following, author_fans, author_heart,
			play_count, digg_count, share_count, comment_count,
			cover_url, video_url, create_time_iso, is_ad
		FROM tiktok_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktok results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.TikTokResult{}
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.VideoID, &r.Text, &r.TextLanguage, &r.URL,
			&r.AuthorID, &r.AuthorName, &r.AuthorNickname, &r.AuthorVerified, &r.AuthorAvatar,
			&r.AuthorFollowers, &r.AuthorFollowing, &r.AuthorFans, &r.AuthorHeart,
			&r.PlayCount, &r.DiggCount, &r.ShareCount, &r.CommentCount,
			&r.CoverURL, &r.VideoURL, &r.CreateTimeISO, &r.IsAd,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tiktok result: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *sqliteStore) saveFacebook(ctx context.Context, r *models.FacebookResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO facebook_results (
			search_id, post_id, text, url, hashtags,
			author_id, author_name, author_url,
			views_count, likes_count, comments_count, share_count, thumbnail_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.PostID, r.Text, r.URL, marshalStrings(r.Hashtags),
		r.AuthorID, r.AuthorName, r.AuthorURL,
		r.ViewsCount, r.LikesCount, r.CommentsCount, r.ShareCount, r.ThumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save facebook result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadFacebook(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, post_id, text, url, hashtags,
			author_id, author_name, author_url,
			views_count, likes_count, comments_count, share_count, thumbnail_url
		FROM facebook_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facebook results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.FacebookResult{}
		var hashtags string
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.PostID, &r.Text, &r.URL, &hashtags,
			&r.AuthorID, &r.AuthorName, &r.AuthorURL,
			&r.ViewsCount, &r.LikesCount, &r.CommentsCount, &r.ShareCount, &r.ThumbnailURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan facebook result: %w", err)
		}
		r.Hashtags = unmarshalStrings(hashtags)
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *sqliteStore) saveInstagram(ctx context.Context, r *models.InstagramResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO instagram_results (
			search_id, post_id, text, url, hashtags,
			author_id, author_name, author_url, author_avatar,
			views_count, likes_count, comments_count, share_count, thumbnail_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.PostID, r.Text, r.URL, marshalStrings(r.Hashtags),
		r.AuthorID, r.AuthorName, r.AuthorURL, r.AuthorAvatar,
		r.ViewsCount, r.LikesCount, r.CommentsCount, r.ShareCount, r.ThumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save instagram result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadInstagram(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, post_id, text, url, hashtags,
			author_id, author_name, author_url, author_avatar,
			views_count, likes_count, comments_count, share_count, thumbnail_url
		FROM instagram_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instagram results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.InstagramResult{}
		var hashtags string
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.PostID, &r.Text, &r.URL, &hashtags,
			&r.AuthorID, &r.AuthorName, &r.AuthorURL, &r.AuthorAvatar,
			&r.ViewsCount, &r.LikesCount, &r.CommentsCount, &r.ShareCount, &r.ThumbnailURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan instagram result: %w", err)
		}
		r.Hashtags = unmarshalStrings(hashtags)
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *sqliteStore) saveYouTube(ctx context.Context, r *models.YouTubeResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO youtube_results (
			search_id, video_id, title, text, url, hashtags,
			author_id, author_name, author_url,
			views_count, likes_count, comments_count, thumbnail_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.VideoID, r.Title, r.Text, r.URL, marshalStrings(r.Hashtags),
		r.AuthorID, r.AuthorName, r.AuthorURL,
		r.ViewsCount, r.LikesCount, r.CommentsCount, r.ThumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save youtube result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadYouTube(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, video_id, title, text, url, hashtags,
			author_id, author_name, author_url,
			views_count, likes_count, comments_count, thumbnail_url
		FROM youtube_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load youtube results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.YouTubeResult{}
		var hashtags string
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.VideoID, &r.Title, &r.Text, &r.URL, &hashtags,
			&r.AuthorID, &r.AuthorName, &r.AuthorURL,
			&r.ViewsCount, &r.LikesCount, &r.CommentsCount, &r.ThumbnailURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan youtube result: %w", err)
		}
		r.Hashtags = unmarshalStrings(hashtags)
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *sqliteStore) saveTruthSocial(ctx context.Context, r *models.TruthSocialResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO truthsocial_results (
			search_id, status_id, content, url, card_url,
			author_id, author_name, author_username, author_avatar, author_header,
			author_verified, author_followers,
			replies_count, reblogs_count, favourites_count, media_urls, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SearchID, r.StatusID, r.Content, r.URL, r.CardURL,
		r.AuthorID, r.AuthorName, r.AuthorUsername, r.AuthorAvatar, r.AuthorHeader,
		r.AuthorVerified, r.AuthorFollowers,
		r.RepliesCount, r.ReblogsCount, r.FavouritesCount, marshalStrings(r.MediaURLs), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save truth social result: %w", err)
	}
	return nil
}

func (s *sqliteStore) loadTruthSocial(ctx context.Context, searchID string) ([]models.PlatformItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, search_id, status_id, content, url, card_url,
			author_id, author_name, author_username, author_avatar, author_header,
			author_verified, author_followers,
			replies_count, reblogs_count, favourites_count, media_urls, created_at
		FROM truthsocial_results WHERE search_id = ? ORDER BY id`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load truth social results: %w", err)
	}
	defer rows.Close()

	items := []models.PlatformItem{}
	for rows.Next() {
		r := &models.TruthSocialResult{}
		var media string
		if err := rows.Scan(
			&r.ID, &r.SearchID, &r.StatusID, &r.Content, &r.URL, &r.CardURL,
			&r.AuthorID, &r.AuthorName, &r.AuthorUsername, &r.AuthorAvatar, &r.AuthorHeader,
			&r.AuthorVerified, &r.AuthorFollowers,
			&r.RepliesCount, &r.ReblogsCount, &r.FavouritesCount, &media, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan truth social result: %w", err)
		}
		r.MediaURLs = unmarshalStrings(media)
		items = append(items, r)
	}
	return items, rows.Err()
}
