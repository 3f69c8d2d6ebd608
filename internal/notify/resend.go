package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

type Config struct {
	BaseURL string `json:"baseUrl" mapstructure:"base_url"`
	APIKey  string `json:"apiKey" mapstructure:"api_key"`
	From    string `json:"from" mapstructure:"from"`
}

// Client sends pre-rendered HTML mail through the Resend API.
type Client struct {
	baseURL string
	apiKey  string
	from    string

	hc *http.Client
}

func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		from:    cfg.From,

		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send delivers one HTML email to a single recipient.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	body, err := json.Marshal(map[string]any{
		"from":    c.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return fmt.Errorf("sendEmail: json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sendEmail: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sendEmail: http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendEmail: resp.StatusCode: %d", resp.StatusCode)
	}
	return nil
}
