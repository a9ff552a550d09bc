package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelcut/internal/config"
)

const userAgent = "reelcut/0.1.0"

// Event names a pipeline milestone.
type Event string

const (
	EventRunStarted   Event = "run_started"
	EventRunCompleted Event = "run_completed"
	EventRunAborted   Event = "run_aborted"
	EventError        Event = "error"
	EventTest         Event = "test"
)

// Payload carries event fields. Known keys: source, clips, failed,
// duration, error, context.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, event Event, fields Payload) error {
	data, ok := format(event, fields)
	if !ok {
		return nil
	}
	return n.send(ctx, data)
}

// format renders an event. Run starts are suppressed; a single video does
// not warrant two pushes.
func format(event Event, fields Payload) (payload, bool) {
	switch event {
	case EventRunCompleted:
		clips := intField(fields, "clips")
		failed := intField(fields, "failed")
		message := fmt.Sprintf("✂️ %d clips ready from %s", clips, stringField(fields, "source"))
		if failed > 0 {
			message = fmt.Sprintf("%s (%d failed)", message, failed)
		}
		if d, ok := fields["duration"].(time.Duration); ok && d > 0 {
			message = fmt.Sprintf("%s in %s", message, d.Round(time.Second))
		}
		return payload{
			title:   "reelcut - Run Complete",
			message: message,
			tags:    []string{"reelcut", "run", "completed"},
		}, true
	case EventRunAborted:
		return payload{
			title:    "reelcut - Run Aborted",
			message:  fmt.Sprintf("❌ Run aborted for %s: %s", stringField(fields, "source"), stringField(fields, "error")),
			tags:     []string{"reelcut", "run", "aborted"},
			priority: "high",
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if label := stringField(fields, "context"); label != "" {
			builder.WriteString(" with ")
			builder.WriteString(label)
		}
		builder.WriteString(": ")
		if msg := stringField(fields, "error"); msg != "" {
			builder.WriteString(msg)
		} else {
			builder.WriteString("unknown")
		}
		return payload{
			title:    "reelcut - Error",
			message:  builder.String(),
			tags:     []string{"reelcut", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return payload{
			title:    "reelcut - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"reelcut", "test"},
			priority: "low",
		}, true
	default:
		return payload{}, false
	}
}

func stringField(fields Payload, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func intField(fields Payload, key string) int {
	if v, ok := fields[key].(int); ok {
		return v
	}
	return 0
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

// Noop returns a Service that discards every event.
func Noop() Service { return noopService{} }

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
