// Package rest implements the platform backend gateway over its REST API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/SscSPs/routing_console/internal/core/domain"
	"github.com/SscSPs/routing_console/internal/core/ports/gateways"
	"github.com/SscSPs/routing_console/internal/platform/credentials"
	"github.com/SscSPs/routing_console/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 4 << 10

// Config holds client configuration.
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the platform backend on behalf of the console.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *credentials.Resolver
	limiter    *rate.Limiter
}

// New creates a new backend client. tokens may be nil, in which case every
// call must carry a forwarded bearer in its context.
func New(cfg Config, tokens *credentials.Resolver) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

var _ gateways.BackendFacade = (*Client)(nil)

// resourcePaths maps parent types to their backend collection.
var resourcePaths = map[domain.ParentType]string{
	domain.Merchant:             "merchant",
	domain.Direction:            "direction",
	domain.Terminal:             "terminal",
	domain.Cascade:              "cascade",
	domain.FinancialInstitution: "financial-institution",
}

// associationPaths maps association kinds to their sub-resource.
var associationPaths = map[domain.AssociationKind]string{
	domain.PaymentTypes: "payment-types",
	domain.Currencies:   "currencies",
}

func (c *Client) parentPath(ref domain.ParentRef) (string, error) {
	resource, ok := resourcePaths[ref.Type]
	if !ok {
		return "", fmt.Errorf("unknown parent type %q: %w", ref.Type, apperrors.ErrValidation)
	}
	if ref.ID == "" {
		return "", fmt.Errorf("parent id is required: %w", apperrors.ErrValidation)
	}
	return "/" + resource + "/" + url.PathEscape(ref.ID), nil
}

func (c *Client) associationPath(ref domain.ParentRef, kind domain.AssociationKind) (string, error) {
	parent, err := c.parentPath(ref)
	if err != nil {
		return "", err
	}
	sub, ok := associationPaths[kind]
	if !ok {
		return "", fmt.Errorf("unknown association kind %q: %w", kind, apperrors.ErrValidation)
	}
	return parent + "/" + sub, nil
}

// do sends one request and returns the response body of a 2xx reply. Every
// other outcome is mapped onto the apperrors sentinels.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			return nil, apperrors.NewAppError(http.StatusUnauthorized, "no credential for backend call", err)
		}
		return nil, fmt.Errorf("resolve backend token: %w", err)
	}
	token.SetAuthHeader(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(method, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, apperrors.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.RecordBackendRequest(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return respBody, nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, statusError(method, path, resp.StatusCode, respBody)
}

// statusError maps a non-2xx reply onto the error taxonomy.
func statusError(method, path string, status int, body []byte) error {
	msg := errorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	var sentinel error
	switch {
	case status == http.StatusNotFound:
		sentinel = apperrors.ErrNotFound
	case status == http.StatusConflict:
		sentinel = apperrors.ErrDuplicate
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperrors.NewAppError(status, "backend rejected credential", fmt.Errorf("%s %s: %s", method, path, msg))
	case status >= 500:
		sentinel = apperrors.ErrBackendUnavailable
	default:
		sentinel = apperrors.ErrValidation
	}
	return fmt.Errorf("%s %s returned %d (%s): %w", method, path, status, msg, sentinel)
}

// errorMessage extracts the backend's human readable message, which lives
// under different keys depending on the resource.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	for _, path := range []string{"message", "error.message", "error", "detail"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
