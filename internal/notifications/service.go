package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"corduroy/internal/config"
)

const userAgent = "Corduroy/0.1.0"

// Service defines the notification surface exposed to the poller and daemon.
type Service interface {
	NotifyTrailOpened(ctx context.Context, trailName, area string) error
	NotifyTrailClosed(ctx context.Context, trailName, area string) error
	NotifyCycleCompleted(ctx context.Context, open, total string, matched, unmatched int) error
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

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		trailChanges: cfg.Notifications.TrailChanges,
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
	trailChanges bool
	errors       bool
}

func (n *ntfyService) NotifyTrailOpened(ctx context.Context, trailName, area string) error {
	if !n.trailChanges {
		return nil
	}
	trailName = strings.TrimSpace(trailName)
	message := fmt.Sprintf("Trail open: %s", trailName)
	if area = strings.TrimSpace(area); area != "" {
		message = fmt.Sprintf("%s (%s)", message, area)
	}
	data := payload{
		title:   "Corduroy - Trail Open",
		message: message,
		tags:    []string{"corduroy", "trail", "opened"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTrailClosed(ctx context.Context, trailName, area string) error {
	if !n.trailChanges {
		return nil
	}
	trailName = strings.TrimSpace(trailName)
	message := fmt.Sprintf("Trail closed: %s", trailName)
	if area = strings.TrimSpace(area); area != "" {
		message = fmt.Sprintf("%s (%s)", message, area)
	}
	data := payload{
		title:   "Corduroy - Trail Closed",
		message: message,
		tags:    []string{"corduroy", "trail", "closed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCycleCompleted(ctx context.Context, open, total string, matched, unmatched int) error {
	if !n.trailChanges {
		return nil
	}
	message := fmt.Sprintf("Poll complete: %s/%s trails open, %d mapped", open, total, matched)
	if unmatched > 0 {
		message = fmt.Sprintf("%s, %d unmapped", message, unmatched)
	}
	data := payload{
		title:   "Corduroy - Poll Complete",
		message: message,
		tags:    []string{"corduroy", "poll", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
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
		title:    "Corduroy - Error",
		message:  builder.String(),
		tags:     []string{"corduroy", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Corduroy - Test",
		message:  "Notification system test",
		tags:     []string{"corduroy", "test"},
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

func (noopService) NotifyTrailOpened(context.Context, string, string) error  { return nil }
func (noopService) NotifyTrailClosed(context.Context, string, string) error  { return nil }
func (noopService) NotifyCycleCompleted(context.Context, string, string, int, int) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
