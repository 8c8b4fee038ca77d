// Package api is the typed HTTP client for the Gainfully backend REST API.
// Every endpoint wraps its payload in a {success, message, data} envelope;
// the client unwraps it and maps failures onto a small error taxonomy so the
// feed engine never sees transport details.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"gainfully/internal/feed"
)

var (
	// ErrNotFound marks a well-formed "no such entity" response.
	ErrNotFound = errors.New("not found")
)

// Error is an API-level failure: the backend answered, but with
// success=false. Its message is shown to the user verbatim on primary
// fetch failures.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}

// envelope mirrors the backend's ApiResponse wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to one backend base URL. It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewClient builds a Client with a transport tuned for many small concurrent
// requests against a single host, which is exactly what entity resolution
// fan-out produces.
func NewClient(baseURL string, logger *log.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		logger: logger,
	}
}

// ListActiveJobPostings returns all job postings. The caller filters to
// ACTIVE; the endpoint's contract does not guarantee it.
func (c *Client) ListActiveJobPostings(ctx context.Context) ([]feed.JobPosting, error) {
	var jobs []feed.JobPosting
	if err := c.get(ctx, "/api/job-postings", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetEmployer fetches one employer by id.
func (c *Client) GetEmployer(ctx context.Context, id int64) (feed.Employer, error) {
	var employer feed.Employer
	err := c.get(ctx, fmt.Sprintf("/api/employers/%d", id), &employer)
	return employer, err
}

// ListAcceptedConnections returns the accepted connections of a user.
func (c *Client) ListAcceptedConnections(ctx context.Context, userID int64) ([]feed.Connection, error) {
	var connections []feed.Connection
	if err := c.get(ctx, fmt.Sprintf("/api/user-connections/user/%d/accepted", userID), &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

// ListExperiences returns all experience records of a user.
func (c *Client) ListExperiences(ctx context.Context, userID int64) ([]feed.Experience, error) {
	var experiences []feed.Experience
	if err := c.get(ctx, fmt.Sprintf("/api/user-experiences/user/%d", userID), &experiences); err != nil {
		return nil, err
	}
	return experiences, nil
}

// GetUser fetches one user profile by id.
func (c *Client) GetUser(ctx context.Context, id int64) (feed.User, error) {
	var user feed.User
	err := c.get(ctx, fmt.Sprintf("/api/users/%d", id), &user)
	return user, err
}

// Login verifies credentials against the backend and returns the signed-in
// user. Credential checking is entirely the backend's job; a success=false
// response surfaces as an *Error with the backend's message.
func (c *Client) Login(ctx context.Context, email, password string) (feed.User, error) {
	payload := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var user feed.User
	err := c.post(ctx, "/api/auth/login", payload, &user)
	return user, err
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Gainfully/0.1")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	const maxBodyBytes = 5 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", req.URL.Path, err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr != nil {
		if resp.StatusCode >= 400 {
			return &Error{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, jsonErr)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if !env.Success || resp.StatusCode >= 400 {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding payload from %s: %w", req.URL.Path, err)
		}
	}
	return nil
}

// Ping reports whether the backend answers at all; used by the health
// endpoint. HEAD keeps the check constant-cost no matter how large the
// posting list grows; any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/api/job-postings", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
