// Package clientip resolves the outward-facing IP address forwarded to
// payment gateways. The lookup is best-effort: it is capped at 3 seconds and
// any failure falls back to loopback so payment creation never blocks on it.
package clientip

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultEndpoint = "https://api.ipify.org"
	lookupTimeout   = 3 * time.Second
	fallbackIP      = "127.0.0.1"
)

// Resolver queries an external echo service for the public IP.
type Resolver struct {
	endpoint string
	client   *http.Client
}

// NewResolver wires the resolver; empty endpoint uses the default echo
// service.
func NewResolver(endpoint string, httpClient *http.Client) *Resolver {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: lookupTimeout}
	}
	return &Resolver{endpoint: endpoint, client: httpClient}
}

// Lookup returns the public IP or the loopback fallback; it never fails.
func (r *Resolver) Lookup(ctx context.Context) string {
	if r == nil || r.client == nil {
		return fallbackIP
	}
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return fallbackIP
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fallbackIP
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fallbackIP
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return fallbackIP
	}
	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return fallbackIP
	}
	return ip
}
