// Package webex is a small client for the Webex REST API surface the bot uses:
// people, messages, attachment actions and webhooks.
package webex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/anpi-survey/backend/internal/models"
)

// DefaultBaseURL is the public Webex API root.
const DefaultBaseURL = "https://webexapis.com/v1/"

// Config holds client settings.
type Config struct {
	BaseURL     string
	AccessToken string
	RateLimit   float64 // requests per second; 0 disables limiting
	RateBurst   int
	Timeout     time.Duration
}

// Client calls the Webex REST API with a bearer token.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a Webex API client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: base,
		token:   cfg.AccessToken,
		limiter: limiter,
		logger:  logger,
	}
}

// Me returns the profile of the token owner (the bot).
func (c *Client) Me(ctx context.Context) (*Person, error) {
	var p Person
	if err := c.do(ctx, http.MethodGet, "people/me", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPerson returns a person by id.
func (c *Client) GetPerson(ctx context.Context, id string) (*Person, error) {
	var p Person
	if err := c.do(ctx, http.MethodGet, "people/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPeopleByEmail returns the people matching an email address (zero or one in practice).
func (c *Client) ListPeopleByEmail(ctx context.Context, email string) ([]Person, error) {
	var out struct {
		Items []Person `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "people?email="+url.QueryEscape(email), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// GetMessage returns a message by id, including its decrypted text.
func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	var m Message
	if err := c.do(ctx, http.MethodGet, "messages/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMessage sends a direct message.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (*Message, error) {
	var m Message
	if err := c.do(ctx, http.MethodPost, "messages", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "messages/"+url.PathEscape(id), nil, nil)
}

// GetAttachmentAction returns a submitted card by id.
func (c *Client) GetAttachmentAction(ctx context.Context, id string) (*AttachmentAction, error) {
	var a AttachmentAction
	if err := c.do(ctx, http.MethodGet, "attachment/actions/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListWebhooks returns every webhook registered for the token owner.
func (c *Client) ListWebhooks(ctx context.Context) ([]models.WebhookSubscription, error) {
	var out struct {
		Items []models.WebhookSubscription `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "webhooks", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateWebhook registers a webhook.
func (c *Client) CreateWebhook(ctx context.Context, req CreateWebhookRequest) (*models.WebhookSubscription, error) {
	var w models.WebhookSubscription
	if err := c.do(ctx, http.MethodPost, "webhooks", req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWebhook removes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "webhooks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, TrackingID: resp.Header.Get("Trackingid")}
		var eb errorBody
		if raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); len(raw) > 0 {
			if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
				apiErr.Message = eb.Message
				if eb.TrackingID != "" {
					apiErr.TrackingID = eb.TrackingID
				}
			} else {
				apiErr.Message = strings.TrimSpace(string(raw))
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug("webex api error", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
