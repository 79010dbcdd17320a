/**
 * @description
 * This package provides a client for the intent extraction service. It turns a
 * customer's free-text message into the structured ParsedRequest the
 * orchestrator consumes. The extractor is treated as an opaque oracle; this
 * client only transports its output.
 */
package intentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/swiftsend/transfer-service/internal/domain"
)

// Client is a client for the intent extraction service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new intent extraction client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

// ExtractTransferRequest sends the raw message to the extraction service and
// returns its structured reading of it.
func (c *Client) ExtractTransferRequest(ctx context.Context, text string) (*domain.ParsedRequest, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("intent service base url is empty")
	}

	url := fmt.Sprintf("%s/v1/intents/transfer", c.baseURL)

	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		req.Header.Set("X-Internal-API-Key", strings.TrimSpace(c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request to intent service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("intent service returned error status %d", resp.StatusCode)
	}

	var parsed domain.ParsedRequest
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &parsed, nil
}
