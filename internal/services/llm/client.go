package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reelcut/internal/services"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultHTTPTimeout = 120 * time.Second
)

// Config captures the runtime settings required to talk to the LLM.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	// RetryAttempts bounds attempts per completion. Zero means one.
	RetryAttempts int
}

// DefaultHTTPTimeout returns the default timeout used for LLM requests.
func DefaultHTTPTimeout() time.Duration {
	return defaultHTTPTimeout
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides Config.RetryAttempts.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.attempts = attempts
	}
}

// WithRetryBackoff sets the first retry delay and the ceiling for every delay,
// including server-provided Retry-After values.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.baseDelay = baseDelay
		c.retry.maxDelay = maxDelay
	}
}

// WithSleeper replaces the timer used between attempts.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleep = sleeper
	}
}

// NewClient constructs a client from cfg. Options are applied last.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		retry:      defaultRetryPolicy(cfg.RetryAttempts),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Part is one element of a multimodal user message.
type Part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// TextPart returns a text content part.
func TextPart(text string) Part {
	return Part{Type: "text", Text: text}
}

// ImagePart returns an inline image content part encoded as a data URL.
func ImagePart(mimeType string, data []byte) Part {
	return Part{
		Type:     "image_url",
		ImageURL: &imageURL{URL: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)},
	}
}

// Request describes a single chat completion.
type Request struct {
	System      string
	Parts       []Part
	Temperature float64
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// Complete issues a chat completion and returns the model's text content.
// Failed attempts are retried only as far as the retry policy allows.
func (c *Client) Complete(ctx context.Context, op string, req Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", op, "api key required", nil)
	}
	if len(req.Parts) == 0 {
		return "", fmt.Errorf("%s: user content required", op)
	}
	payload := c.buildPayload(req)

	for attempt := 1; ; attempt++ {
		content, err := c.completeOnce(ctx, op, payload)
		if err == nil {
			return content, nil
		}
		delay, again := c.retry.next(err, attempt)
		if !again {
			if attempt > 1 {
				return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempt, err)
			}
			return "", err
		}
		if err := c.retry.wait(ctx, delay); err != nil {
			return "", err
		}
	}
}

// CompleteJSON issues a text-only JSON completion and returns the raw payload.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New("llm complete: system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	return c.Complete(ctx, "llm complete", Request{
		System: systemPrompt,
		Parts:  []Part{TextPart(userPrompt)},
		JSON:   true,
	})
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.Complete(ctx, "llm health", Request{
		System: "You must respond with JSON only.",
		Parts:  []Part{TextPart(`Respond with {"ok":true}`)},
		JSON:   true,
	})
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return fmt.Errorf("llm health: parse payload: %w", err)
	}
	if !parsed.OK {
		return errors.New("llm health: unexpected response")
	}
	return nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.Model
}

// RetryAttempts returns the effective attempt bound per completion.
func (c *Client) RetryAttempts() int {
	return c.retry.maxAttempts()
}
