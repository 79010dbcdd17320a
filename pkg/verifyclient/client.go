/**
 * @description
 * This package provides a client for the bank verification service. Given an
 * account number and an institution code it returns the account holder's name
 * and bank, or an error when the pair does not resolve. The account resolver
 * drives this client through its candidate fallback chain.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package verifyclient

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

// Client is a client for the bank verification service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new verification service client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type verifyRequest struct {
	AccountNumber   string `json:"account_number"`
	InstitutionCode string `json:"institution_code"`
}

type verifyResponse struct {
	HolderName    string `json:"holder_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// VerifyAccount asks the verification service who holds (accountNumber,
// institutionCode). A non-2xx response is an error; the resolver treats it as
// "this candidate did not match" and moves on.
func (c *Client) VerifyAccount(ctx context.Context, accountNumber, institutionCode string) (*domain.VerifiedAccountHolder, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("verification service base url is empty")
	}

	url := fmt.Sprintf("%s/v1/accounts/verify", c.baseURL)

	body, err := json.Marshal(verifyRequest{
		AccountNumber:   accountNumber,
		InstitutionCode: institutionCode,
	})
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
		return nil, fmt.Errorf("failed to execute request to verification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("verification failed for institution %s: %s", institutionCode, apiErr.Error)
		}
		return nil, fmt.Errorf("verification service returned status %d for institution %s", resp.StatusCode, institutionCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &domain.VerifiedAccountHolder{
		HolderName:    out.HolderName,
		AccountNumber: out.AccountNumber,
		BankName:      out.BankName,
		BankCode:      out.BankCode,
	}, nil
}
