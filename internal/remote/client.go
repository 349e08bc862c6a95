package remote

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
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// ServiceKeyHeader carries the fixed service credential on every call.
const ServiceKeyHeader = "X-Service-Key"

const maxErrorBodyBytes = 64 << 10

// Client talks to the remote config API. Every call sends the fixed service
// key and, once obtained, a bearer token. A 401/403 triggers exactly one
// reauthentication round-trip and one retry of the original call; deletes
// treat 404 as success.
type Client struct {
	baseURL    *url.URL
	serviceID  string
	serviceKey string
	httpClient *http.Client

	token atomic.Value // string
}

// Option tweaks client construction.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient validates the base URL and builds a client.
func NewClient(baseURL, serviceID, serviceKey string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedEndpoint, baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		serviceID:  serviceID,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	client.token.Store("")

	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type tokenRequest struct {
	ServiceID     string `json:"service_id"`
	ServiceSecret string `json:"service_secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// do performs one API call with the single-reauth retry contract. out may be
// nil for calls whose response body is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	status, err := c.roundTrip(ctx, method, path, body, out)
	if err != nil {
		return err
	}
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return nil
	}

	// One reauthentication round-trip, then one retry of the original call.
	if err := c.reauthenticate(ctx); err != nil {
		return err
	}

	status, err = c.roundTrip(ctx, method, path, body, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// roundTrip sends a single request. It returns (status, nil) for 2xx and for
// 401/403 so do can decide on the retry; every other outcome is mapped to a
// typed error.
func (c *Client) roundTrip(ctx context.Context, method, path string, body, out any) (int, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return 0, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("remote: encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ServiceKeyHeader, c.serviceKey)
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, res.Body)
		return res.StatusCode, nil
	case res.StatusCode >= 200 && res.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(res.Body).Decode(out); err != nil {
				return res.StatusCode, &DecodingError{Err: err}
			}
		} else {
			io.Copy(io.Discard, res.Body)
		}
		return res.StatusCode, nil
	default:
		return res.StatusCode, errorFromStatus(res)
	}
}

// deleteResource issues a DELETE treating 404 as success: the absence of the
// target is an acceptable end-state.
func (c *Client) deleteResource(ctx context.Context, path string) error {
	err := c.do(ctx, http.MethodDelete, path, nil, nil)

	var clientErr *ClientError
	if err != nil && errors.As(err, &clientErr) && clientErr.Code == http.StatusNotFound {
		log.Debug("delete target already gone", "path", path)
		return nil
	}
	return err
}

func (c *Client) reauthenticate(ctx context.Context) error {
	endpoint, err := c.endpoint("/token")
	if err != nil {
		return err
	}

	payload, err := json.Marshal(tokenRequest{ServiceID: c.serviceID, ServiceSecret: c.serviceKey})
	if err != nil {
		return fmt.Errorf("remote: encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEndpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ServiceKeyHeader, c.serviceKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: reauthenticate: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, res.Body)
		return ErrUnauthorized
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errorFromStatus(res)
	}

	var token tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&token); err != nil {
		return &DecodingError{Err: err}
	}

	c.token.Store(token.Token)
	log.Debug("Reauthenticated against config API")
	return nil
}

func (c *Client) currentToken() string {
	token, _ := c.token.Load().(string)
	return token
}

func (c *Client) endpoint(path string) (string, error) {
	if !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: %q", ErrMalformedEndpoint, path)
	}
	return c.baseURL.String() + path, nil
}

func errorFromStatus(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
	if res.StatusCode >= 500 {
		return &ServerError{Code: res.StatusCode, Body: string(body)}
	}
	return &ClientError{Code: res.StatusCode, Body: string(body)}
}
