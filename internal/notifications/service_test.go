package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"corduroy/internal/config"
	"corduroy/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyTrailOpened(context.Background(), "Brome", "Versant du Village"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "trail opened",
			notify: func(svc notifications.Service) error {
				return svc.NotifyTrailOpened(context.Background(), "La Brome", "Versant du Village")
			},
			expectTitle:   "Corduroy - Trail Open",
			expectMessage: "Trail open: La Brome (Versant du Village)",
			expectTags:    "corduroy,trail,opened",
		},
		{
			name: "trail closed without area",
			notify: func(svc notifications.Service) error {
				return svc.NotifyTrailClosed(context.Background(), "Coulee", "")
			},
			expectTitle:   "Corduroy - Trail Closed",
			expectMessage: "Trail closed: Coulee",
			expectTags:    "corduroy,trail,closed",
		},
		{
			name: "cycle completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyCycleCompleted(context.Background(), "42", "101", 40, 2)
			},
			expectTitle:   "Corduroy - Poll Complete",
			expectMessage: "Poll complete: 42/101 trails open, 40 mapped, 2 unmapped",
			expectTags:    "corduroy,poll,completed",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("fetch failed"), "poll")
			},
			expectTitle:    "Corduroy - Error",
			expectMessage:  "Error with poll: fetch failed",
			expectTags:     "corduroy,error,alert",
			expectPriority: "high",
		},
		{
			name: "test notification",
			notify: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Corduroy - Test",
			expectMessage:  "Notification system test",
			expectTags:     "corduroy,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5
			cfg.Notifications.TrailChanges = true
			cfg.Notifications.Errors = true

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for suppressed category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.TrailChanges = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyTrailOpened(ctx, "Brome", ""); err != nil {
		t.Fatalf("suppressed trail change returned error: %v", err)
	}
	if err := svc.NotifyCycleCompleted(ctx, "1", "2", 1, 0); err != nil {
		t.Fatalf("suppressed cycle notice returned error: %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "poll"); err != nil {
		t.Fatalf("suppressed error notice returned error: %v", err)
	}
}
