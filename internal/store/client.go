package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client talks to the hosted realtime document store over its REST protocol.
// Paths address nodes in the document tree; reads and writes exchange the
// JSON value at the addressed node.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	streamHTTP *http.Client
	logger     *zap.Logger
}

// NewClient creates a store client for the given base URL. The auth token,
// when non-empty, is attached to every request.
func NewClient(baseURL, authToken string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		// Subscriptions hold the response open indefinitely, so the
		// streaming client must not carry a request timeout.
		streamHTTP: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) nodeURL(path string, q Query) string {
	params := url.Values{}
	if c.authToken != "" {
		params.Set("auth", c.authToken)
	}
	if q.OrderBy != "" {
		params.Set("orderBy", strconv.Quote(q.OrderBy))
	}
	if q.LimitToLast > 0 {
		params.Set("limitToLast", strconv.Itoa(q.LimitToLast))
	}
	u := c.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// Get reads the value at path, optionally narrowed by the query
func (c *Client) Get(ctx context.Context, path string, q Query) (Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.nodeURL(path, q), nil)
	if err != nil {
		return Value{}, fmt.Errorf("creating request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return Value{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Value{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	return NewValue(raw), nil
}

// Set writes value at path, replacing whatever is there
func (c *Client) Set(ctx context.Context, path string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.nodeURL(path, Query{}), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Push appends value under path with a server-generated child key and
// returns that key
func (c *Client) Push(ctx context.Context, path string, value interface{}) (string, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding value for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.nodeURL(path, Query{}), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("appending to %s: %w", path, err)
	}

	var resp struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding push response for %s: %w", path, err)
	}
	return resp.Name, nil
}

// Delete removes the value at path
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.nodeURL(path, Query{}), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store error: %s: %s", resp.Status, storeErrorMessage(body))
	}
	return body, nil
}

// storeErrorMessage extracts the service's error text from an error body
func storeErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
