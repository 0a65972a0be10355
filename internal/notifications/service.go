package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/deepsocial/backend/internal/config"
	"github.com/deepsocial/backend/internal/models"
	"github.com/deepsocial/backend/internal/search"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service sends completion notifications via the configured channels.
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements the completion hook
var _ search.CompletionHook = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SearchCompleted notifies every configured channel that a search
// finished. Channel failures are logged and never propagate; a broken
// webhook must not affect the search itself.
func (s *Service) SearchCompleted(ctx context.Context, sr *models.Search, results map[string][]models.PlatformItem) {
	if s.config.TeamsWebhookURL == "" && s.config.NotificationEmail == "" {
		return
	}

	counts := resultCounts(results)

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(sr, counts); err != nil {
			logrus.Errorf("Failed to send Teams notification for search %s: %v", sr.ID, err)
		} else {
			logrus.Infof("Sent Teams notification for search %s", sr.ID)
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(sr, counts); err != nil {
			logrus.Errorf("Failed to send email notification for search %s: %v", sr.ID, err)
		} else {
			logrus.Infof("Sent email notification for search %s", sr.ID)
		}
	}
}

type countSummary struct {
	total       int
	byPlatform  map[string]int
	platformSet []string
}

func resultCounts(results map[string][]models.PlatformItem) countSummary {
	summary := countSummary{byPlatform: make(map[string]int)}
	for _, platform := range models.Platforms {
		items, ok := results[platform]
		if !ok {
			continue
		}
		summary.byPlatform[platform] = len(items)
		summary.platformSet = append(summary.platformSet, platform)
		summary.total += len(items)
	}
	return summary
}

func (s *Service) sendToTeams(sr *models.Search, counts countSummary) error {
	message := s.buildTeamsMessage(sr, counts)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(sr *models.Search, counts countSummary) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Search Completed - %q", sr.Keyword),
		Text:    fmt.Sprintf("Collected %d results across %d platforms", counts.total, len(counts.platformSet)),
	}

	facts := []TeamsFact{
		{Name: "Keyword", Value: sr.Keyword},
		{Name: "Total Results", Value: fmt.Sprintf("%d", counts.total)},
		{Name: "Started", Value: sr.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	for _, platform := range counts.platformSet {
		facts = append(facts, TeamsFact{
			Name:  strings.Title(platform),
			Value: fmt.Sprintf("%d", counts.byPlatform[platform]),
		})
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	return message
}

func (s *Service) sendEmail(sr *models.Search, counts countSummary) error {
	subject := fmt.Sprintf("Search Completed - %q (%d results)", sr.Keyword, counts.total)

	htmlBody, err := s.buildEmailHTML(sr, counts)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	textBody := s.buildEmailText(sr, counts)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

type emailData struct {
	Keyword     string
	SearchID    string
	Total       int
	StartedAt   string
	CompletedAt string
	Platforms   []emailPlatform
}

type emailPlatform struct {
	Name  string
	Count int
}

func (s *Service) buildEmailHTML(sr *models.Search, counts countSummary) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Search Completed</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #0078d4; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .platform { border-left: 4px solid #0078d4; padding: 10px; margin: 10px 0; background-color: #fafafa; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Search Completed</h1>
        <p>Keyword {{.Keyword}} finished on {{.CompletedAt}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Total Results:</strong> {{.Total}}</p>
        <p><strong>Started:</strong> {{.StartedAt}}</p>
        <p><strong>Search ID:</strong> {{.SearchID}}</p>
    </div>

    {{range .Platforms}}
    <div class="platform">
        <strong>{{.Name | title}}</strong>: {{.Count}} results
    </div>
    {{end}}
</body>
</html>
`

	t := template.New("email").Funcs(template.FuncMap{
		"title": strings.Title,
	})

	t, err := t.Parse(tmpl)
	if err != nil {
		return "", err
	}

	data := emailData{
		Keyword:     sr.Keyword,
		SearchID:    sr.ID,
		Total:       counts.total,
		StartedAt:   sr.CreatedAt.Format("2006-01-02 15:04:05 UTC"),
		CompletedAt: time.Now().UTC().Format("January 2, 2006 at 3:04 PM UTC"),
	}
	for _, platform := range counts.platformSet {
		data.Platforms = append(data.Platforms, emailPlatform{Name: platform, Count: counts.byPlatform[platform]})
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(sr *models.Search, counts countSummary) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Search Completed - %q\n", sr.Keyword))
	text.WriteString(fmt.Sprintf("Search ID: %s\n", sr.ID))
	text.WriteString(fmt.Sprintf("Started: %s\n\n", sr.CreatedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Total Results: %d\n", counts.total))

	for _, platform := range counts.platformSet {
		text.WriteString(fmt.Sprintf("%s: %d\n", strings.Title(platform), counts.byPlatform[platform]))
	}

	return text.String()
}
