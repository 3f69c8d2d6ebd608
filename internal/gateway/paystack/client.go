package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"conference-system/internal/status"
	"conference-system/monitoring"
	"conference-system/utils"
)

const defaultBaseURL = "https://api.paystack.co"

type Config struct {
	BaseURL   string `json:"baseUrl" mapstructure:"base_url"`
	SecretKey string `json:"secretKey" mapstructure:"secret_key"`
	PublicKey string `json:"publicKey" mapstructure:"public_key"`

	// Breaker tunes the circuit breaker guarding gateway calls.
	Breaker utils.BreakerSettings `json:"-"`
}

type Client struct {
	// baseURL is the base url of the Paystack API.
	baseURL string

	// secretKey authenticates server-side calls and signs webhooks.
	secretKey string

	// publicKey is handed to the browser for inline checkout.
	publicKey string

	// breaker guards the gateway against cascading failures.
	breaker *utils.CircuitBreaker

	// hc is the http client.
	hc *http.Client
}

// NewClient creates a new Paystack API client.
func NewClient(cfg *Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
		publicKey: cfg.PublicKey,
		breaker:   utils.NewCircuitBreakerWithSettings("paystack", cfg.Breaker),

		// set http client with timeout.
		hc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// PublicKey returns the key used for client-side checkout initialization.
func (c *Client) PublicKey() string {
	return c.publicKey
}

// InitializeRequest is the payload for creating a hosted checkout session.
type InitializeRequest struct {
	Email     string         `json:"email"`
	Amount    int64          `json:"amount"` // pesewas
	Reference string         `json:"reference"`
	Currency  string         `json:"currency,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// InitializeResponse carries the gateway handle the browser is redirected to.
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the gateway's authoritative view of a payment.
type Transaction struct {
	ID              int64          `json:"id"`
	Status          string         `json:"status"`
	Reference       string         `json:"reference"`
	Amount          int64          `json:"amount"` // pesewas
	Currency        string         `json:"currency"`
	Channel         string         `json:"channel"`
	GatewayResponse string         `json:"gateway_response"`
	PaidAt          string         `json:"paid_at"`
	Metadata        map[string]any `json:"metadata"`
}

// Succeeded reports whether the gateway settled the transaction.
func (t *Transaction) Succeeded() bool {
	return t.Status == "success"
}

// Initialize creates a transaction on the gateway and returns the
// checkout handle for the given reference.
func (c *Client) Initialize(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: json.Marshal: %w", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(ctx, func() (any, error) {
		return c.doInitialize(ctx, body)
	})
	monitoring.TrackGatewayRequest("initialize", time.Since(start))
	if err != nil {
		return nil, err
	}

	return result.(*InitializeResponse), nil
}

func (c *Client) doInitialize(ctx context.Context, body []byte) (*InitializeResponse, error) {
	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s%s", _baseURL.String(), "/transaction/initialize"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: http.NewReq: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initializeTransaction: http.Do: %w: %w", status.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("initializeTransaction: resp.StatusCode: %d: %w", resp.StatusCode, status.ErrGatewayFailure)
	}

	var reply struct {
		Status  bool               `json:"status"`
		Message string             `json:"message"`
		Data    InitializeResponse `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("initializeTransaction: json.Decode: %w", err)
	}
	if !reply.Status {
		return nil, fmt.Errorf("initializeTransaction: reply.Message: %v: %w", reply.Message, status.ErrGatewayFailure)
	}

	return &reply.Data, nil
}

// Verify queries the gateway for the authoritative status of a reference.
func (c *Client) Verify(ctx context.Context, ref string) (*Transaction, error) {
	start := time.Now()
	result, err := c.breaker.Execute(ctx, func() (any, error) {
		return c.doVerify(ctx, ref)
	})
	monitoring.TrackGatewayRequest("verify", time.Since(start))
	if err != nil {
		return nil, err
	}

	return result.(*Transaction), nil
}

func (c *Client) doVerify(ctx context.Context, ref string) (*Transaction, error) {
	_baseURL, _ := url.Parse(c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/transaction/verify/%s", _baseURL.String(), url.PathEscape(ref)), nil)
	if err != nil {
		return nil, fmt.Errorf("verifyTransaction: http.NewReq: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verifyTransaction: http.Do: %w: %w", status.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("verifyTransaction: reference %s: %w", ref, status.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verifyTransaction: resp.StatusCode: %d: %w", resp.StatusCode, status.ErrGatewayFailure)
	}

	var reply struct {
		Status  bool        `json:"status"`
		Message string      `json:"message"`
		Data    Transaction `json:"data"`
	}
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&reply); err != nil {
		return nil, fmt.Errorf("verifyTransaction: json.Decode: %w", err)
	}
	if !reply.Status {
		return nil, fmt.Errorf("verifyTransaction: reply.Message: %v: %w", reply.Message, status.ErrGatewayFailure)
	}

	return &reply.Data, nil
}
