// Package api is the client for the account API. Its login and register
// endpoints mirror the hosted auth flows but are not wired into any screen;
// the contract is declared and kept exercised by tests only.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// User is the account record returned by the API
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

// Client talks to the account API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an account API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges email and password for the user record
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.post(ctx, "/login", loginRequest{Email: email, Password: password})
}

// Register creates an account and returns the user record
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	return c.post(ctx, "/register", registerRequest{Username: username, Email: email, Password: password})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*User, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling account API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("account API: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var user User
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &user, nil
}
