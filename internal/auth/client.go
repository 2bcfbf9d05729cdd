// Package auth is a client for the hosted identity service. All credential
// handling is delegated to the service; this client only exchanges
// email/password for a session and caches the current one.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Session is an authenticated user session
type Session struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Client talks to the hosted auth service
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu      sync.Mutex
	current *Session
}

// NewClient creates an auth client for the given service base URL
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SignIn exchanges email and password for a session
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.credentialRequest(ctx, "signInWithPassword", email, password)
}

// SignUp creates a new account and returns its session
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.credentialRequest(ctx, "signUp", email, password)
}

// Current returns the cached session, if any
func (c *Client) Current() (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, false
	}
	session := *c.current
	return &session, true
}

// SignOut drops the cached session
func (c *Client) SignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

type credentialResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) credentialRequest(ctx context.Context, action, email, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := c.baseURL + "/v1/accounts:" + action
	if c.apiKey != "" {
		endpoint += "?key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling auth service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Surface the service's own message; screens show it verbatim.
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("auth service: %s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("auth service: %s", resp.Status)
	}

	var cred credentialResponse
	if err := json.Unmarshal(body, &cred); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	session := &Session{
		UID:          cred.LocalID,
		Email:        cred.Email,
		IDToken:      cred.IDToken,
		RefreshToken: cred.RefreshToken,
	}
	if secs, err := strconv.Atoi(cred.ExpiresIn); err == nil {
		session.ExpiresAt = time.Now().Add(time.Duration(secs) * time.Second)
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	copied := *session
	return &copied, nil
}
