// Package revocation provides the online-check collaborators the verifier
// calls during stage five: revocation-status lookup for signing keys and the
// best-effort proof-bundle probe. The seal core only interprets pass/fail;
// list custody and bundle hosting are external services.
package revocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lukhas.dev/seal/seal"
)

// HTTPClient resolves key status against a revocation service speaking the
// plain HTTP surface: GET <base>/v1/keys/<kid>/status returning
// {"status": "active"|"revoked"}. It also implements the proof-bundle probe.
type HTTPClient struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPTimeout bounds every request (default 5s).
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(c *HTTPClient) { c.client.Timeout = d }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) HTTPOption {
	return func(c *HTTPClient) { c.log = log }
}

// NewHTTPClient constructs a client for the revocation service at base.
func NewHTTPClient(base string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 5 * time.Second},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// KeyStatus implements seal.RevocationChecker.
func (c *HTTPClient) KeyStatus(ctx context.Context, keyID string) (seal.RevocationStatus, error) {
	endpoint := c.base + "/v1/keys/" + url.PathEscape(keyID) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return seal.StatusUnknown, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("key_id", keyID).Msg("revocation lookup unreachable")
		return seal.StatusUnknown, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return seal.StatusUnknown, fmt.Errorf("revocation: key %s unknown to service", keyID)
	}
	if resp.StatusCode != http.StatusOK {
		return seal.StatusUnknown, fmt.Errorf("revocation: service returned %s", resp.Status)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return seal.StatusUnknown, fmt.Errorf("revocation: decode status: %w", err)
	}
	status := parseStatus(body.Status)
	c.log.Debug().Str("key_id", keyID).Str("status", string(status)).Msg("revocation status resolved")
	return status, nil
}

// CheckBundle implements seal.BundleChecker with a HEAD probe: the bundle is
// considered present when the host answers 2xx.
func (c *HTTPClient) CheckBundle(ctx context.Context, bundleURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, bundleURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", bundleURL).Msg("proof bundle unreachable")
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revocation: proof bundle returned %s", resp.Status)
	}
	return nil
}

func parseStatus(s string) seal.RevocationStatus {
	switch s {
	case "active":
		return seal.StatusActive
	case "revoked":
		return seal.StatusRevoked
	default:
		return seal.StatusUnknown
	}
}
