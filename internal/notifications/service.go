package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
)

const userAgent = "Marquee-Go/0.1.0"

// RunStats summarizes a finished run for the completion notice.
type RunStats struct {
	Total     int
	Succeeded int
	NoMatch   int
	Failed    int
	Duration  time.Duration
}

// Service defines the notification surface exposed to the pipeline.
type Service interface {
	NotifyRunStarted(ctx context.Context, titles int) error
	NotifyRunCompleted(ctx context.Context, stats RunStats) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint:     topic,
		client:       client,
		runStarted:   cfg.Notifications.RunStarted,
		runCompleted: cfg.Notifications.RunCompleted,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	runStarted   bool
	runCompleted bool
	errors       bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, titles int) error {
	if !n.runStarted {
		return nil
	}
	noun := "titles"
	if titles == 1 {
		noun = "title"
	}
	data := payload{
		title:   "Marquee - Run Started",
		message: fmt.Sprintf("🎬 Scraping %d %s", titles, noun),
		tags:    []string{"marquee", "run", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, stats RunStats) error {
	if !n.runCompleted {
		return nil
	}
	duration := stats.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()

	title := "Marquee - Run Complete"
	priority := ""
	if stats.Failed > 0 {
		title = "Marquee - Run Complete (with errors)"
		priority = "high"
	}
	message := fmt.Sprintf("✅ %d titles in %s: %d matched, %d without match, %d failed",
		stats.Total, durationText, stats.Succeeded, stats.NoMatch, stats.Failed)

	data := payload{
		title:    title,
		message:  message,
		tags:     []string{"marquee", "run", "completed"},
		priority: priority,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Marquee - Error",
		message:  builder.String(),
		tags:     []string{"marquee", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Marquee - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"marquee", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, int) error        { return nil }
func (noopService) NotifyRunCompleted(context.Context, RunStats) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error   { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
