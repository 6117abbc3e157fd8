package services

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

	"entitlement-api/internal/metrics"
	"entitlement-api/internal/models"
)

// GatewayConfig holds the merchant credentials for the hosted payment gateway
type GatewayConfig struct {
	BaseURL     string
	MerchantID  string
	APIPassword string
	Timeout     time.Duration
}

// GatewayClient talks to the gateway's session API (REST version 61)
type GatewayClient struct {
	cfg        GatewayConfig
	httpClient *http.Client
}

// NewGatewayClient creates a new gateway client
func NewGatewayClient(cfg GatewayConfig) *GatewayClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &GatewayClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GatewayError is a non-2xx reply from the gateway
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

// CreateSession opens an empty session and returns its id
func (c *GatewayClient) CreateSession(ctx context.Context) (sessionID string, err error) {
	defer func() { metrics.RecordGatewayCall("create_session", err) }()

	body, err := c.do(ctx, http.MethodPost, c.sessionURL(""), nil)
	if err != nil {
		return "", err
	}

	var resp models.GatewayCreateSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse create session response: %w", err)
	}
	if resp.Session.ID == "" {
		return "", fmt.Errorf("create session response has no session id")
	}

	return resp.Session.ID, nil
}

// UpdateSession attaches order and authentication details to an existing session
func (c *GatewayClient) UpdateSession(ctx context.Context, sessionID string, update models.GatewayUpdateSessionRequest) (err error) {
	defer func() { metrics.RecordGatewayCall("update_session", err) }()

	jsonData, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update session request: %w", err)
	}

	_, err = c.do(ctx, http.MethodPut, c.sessionURL(sessionID), jsonData)
	return err
}

func (c *GatewayClient) sessionURL(sessionID string) string {
	u := fmt.Sprintf("%s/version/61/merchant/%s/session", c.cfg.BaseURL, url.PathEscape(c.cfg.MerchantID))
	if sessionID != "" {
		u += "/" + url.PathEscape(sessionID)
	}
	return u
}

// do sends a single request; there is no retry
func (c *GatewayClient) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth("merchant."+c.cfg.MerchantID, c.cfg.APIPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
