package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"remitchat/config"
	"remitchat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client talks to the account/notification gateway over HTTP JSON.
// The gateway owns user contact points and the contact graph, and
// dispatches verification codes over email or SMS, so this one client
// serves the Notifier, ContactPoints and Contacts ports.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a notification gateway client with a bounded timeout.
func NewClient(cfg config.NotifyConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "notify_client").Logger(),
	}
}

type sendRequest struct {
	Destination string `json:"destination"`
	Channel     string `json:"channel"`
	Code        string `json:"code"`
}

type contactPointResponse struct {
	Destination string `json:"destination"`
}

type mutualContactResponse struct {
	Mutual bool `json:"mutual"`
}

// Send dispatches a verification code to a destination.
func (c *Client) Send(ctx context.Context, destination string, channel domain.Channel, code string) error {
	body, err := json.Marshal(sendRequest{
		Destination: destination,
		Channel:     string(channel),
		Code:        code,
	})
	if err != nil {
		return fmt.Errorf("notify send: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify send: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify send: gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	c.log.Debug().Str("channel", string(channel)).Msg("verification code dispatched")
	return nil
}

// GetContactPoint resolves a user's contact destination for a channel.
// A 404 means the user has no contact point on that channel; that is
// reported as an empty destination, not an error.
func (c *Client) GetContactPoint(ctx context.Context, userID uuid.UUID, channel domain.Channel) (string, error) {
	url := fmt.Sprintf("%s/users/%s/contact-points/%s", c.baseURL, userID, strings.ToLower(string(channel)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("notify contact point: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("notify contact point: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("notify contact point: gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var out contactPointResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("notify contact point: decode response: %w", err)
	}
	return out.Destination, nil
}

// IsMutualContact reports whether both users have each other in their
// contact list.
func (c *Client) IsMutualContact(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	url := fmt.Sprintf("%s/contacts/%s/mutual/%s", c.baseURL, userA, userB)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("notify mutual contact: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("notify mutual contact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("notify mutual contact: gateway returned %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var out mutualContactResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("notify mutual contact: decode response: %w", err)
	}
	return out.Mutual, nil
}

// readErrorBody returns a short snippet of an error response body.
func readErrorBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(b) == 0 {
		return "<empty body>"
	}
	return strings.TrimSpace(string(b))
}
