package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// createRequest is the wallet create-payment payload. The field set is
// closed: signature canonicalization iterates over exactly these keys.
type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
	QRCodeURL   string `json:"qrCodeUrl"`
}

type refundRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	TransID     string `json:"transId"`
	Description string `json:"description"`
	Signature   string `json:"signature"`
}

type refundResponse struct {
	RequestID  string `json:"requestId"`
	OrderID    string `json:"orderId"`
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

// Client posts signed JSON commands to the wallet API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the wallet client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("wallet base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}, nil
}

// CreatePayment calls the create endpoint and returns the raw response.
func (c *Client) CreatePayment(ctx context.Context, request createRequest) (*createResponse, error) {
	var response createResponse
	if err := c.post(ctx, "/v2/gateway/api/create", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Refund calls the refund endpoint and returns the raw response.
func (c *Client) Refund(ctx context.Context, request refundRequest) (*refundResponse, error) {
	var response refundResponse
	if err := c.post(ctx, "/v2/gateway/api/refund", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil || c.httpClient == nil {
		return errors.New("wallet client not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode wallet request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build wallet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call wallet API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("wallet API unexpected status: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wallet response: %w", err)
	}
	return nil
}
