package platforms

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/deepsocial/backend/internal/models"
)

// UnknownUser is the placeholder rendered when a provider payload
// carries no usable author name. The UI displays these fields directly,
// so they degrade to readable text instead of nulls.
const UnknownUser = "Unknown User"

// Adapter shapes one platform's provider request and normalizes its raw
// items. Normalize returns (nil, nil) when the raw item lacks the
// platform-native content id — such items cannot be de-duplicated or
// referenced and are skipped before persistence.
type Adapter interface {
	Name() string
	Actor() string
	BuildInput(keyword string, maxItems int) any
	Normalize(searchID string, raw json.RawMessage) (models.PlatformItem, error)
}

// SyncRunID builds the sentinel stored in place of a provider run id
// when a platform's dataset materialized synchronously.
func SyncRunID(platform, searchID string) string {
	return "sync-" + platform + "-" + searchID
}

// IsSyncRunID reports whether a run id is a synchronous sentinel rather
// than a real provider run id.
func IsSyncRunID(runID string) bool {
	return strings.HasPrefix(runID, "sync-")
}

// coalesce returns the first non-empty candidate. Adapters use it to
// express field precedence (e.g. fullText before text) declaratively.
func coalesce(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// strPtr returns a pointer to s, or nil when s is empty.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

var hashtagPattern = regexp.MustCompile(`#\w+`)

// extractHashtags pulls "#tag" tokens out of a caption.
func extractHashtags(text string) []string {
	return hashtagPattern.FindAllString(text, -1)
}

var htmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#x27;", "'",
	"&#x2F;", "/",
)

// decodeHTMLEntities repairs provider URLs that arrive HTML-escaped.
func decodeHTMLEntities(url string) string {
	return htmlEntityReplacer.Replace(url)
}

// rawMedia is the media entry shape shared by several provider
// payloads.
type rawMedia struct {
	URL string `json:"url"`
}

// mediaURLs collects non-empty URLs from a raw media list.
func mediaURLs(media []rawMedia) []string {
	urls := []string{}
	for _, m := range media {
		if m.URL != "" {
			urls = append(urls, m.URL)
		}
	}
	return urls
}
