package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/interfaces"
)

// DefaultTimeout bounds a single alert post
const DefaultTimeout = 10 * time.Second

// alertPath is the gateway endpoint that relays messages into the war room channel
const alertPath = "/api/war-room/alert"

// WebhookClient posts alerts to the war-room gateway. Implements
// interfaces.Notifier.
type WebhookClient struct {
	baseURL    string
	botName    string
	httpClient *http.Client
	logger     arbor.ILogger
}

// Option configures the WebhookClient
type Option func(*WebhookClient)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *WebhookClient) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-post timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *WebhookClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets a logger
func WithLogger(logger arbor.ILogger) Option {
	return func(c *WebhookClient) {
		c.logger = logger
	}
}

// NewWebhookClient creates a notifier posting to the given gateway base URL
func NewWebhookClient(baseURL, botName string, opts ...Option) *WebhookClient {
	c := &WebhookClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		botName: botName,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// alertPayload is the gateway wire format
type alertPayload struct {
	Bot       string `json:"bot"`
	AlertType string `json:"alert_type"`
	Message   string `json:"message"`
}

// PostAlert sends one message to the war room. A non-2xx response is an
// error; the caller decides what to do with it (the watchdog logs and moves
// on, keeping delivery at-most-once).
func (c *WebhookClient) PostAlert(ctx context.Context, alertType interfaces.AlertType, message string) error {
	body, err := json.Marshal(alertPayload{
		Bot:       c.botName,
		AlertType: string(alertType),
		Message:   message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+alertPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("war room post failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("war room post failed: status %d", resp.StatusCode)
	}

	if c.logger != nil {
		c.logger.Debug().Str("alert_type", string(alertType)).Msg("Alert posted to war room")
	}

	return nil
}
