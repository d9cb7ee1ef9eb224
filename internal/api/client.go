// Copyright (c) 2025 Webitof
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the typed HTTP client for the CRM backend.
//
// One method exists per (entity type × verb) pair, plus Login and
// Overview. Every authenticated request carries the current session's
// bearer token; failures are normalized into the taxonomy in errors.go.
// The client performs no retries: a single failed attempt surfaces
// immediately so callers can leave prior cache state untouched.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/webitof/crmdash/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the hosted CRM backend.
	DefaultBaseURL = "https://webitofbackend-1.onrender.com"

	// DefaultTimeout is the transport-level request timeout. There is
	// no retry on top of it.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize caps response bodies to keep a misbehaving
	// backend from exhausting memory.
	MaxResponseSize = 8 * 1024 * 1024
)

// Version is the client version reported in the User-Agent header.
// Overridden at build time via -ldflags.
var Version = "0.1.0"

// sharedHTTPClient is used by every Client instance. Connection
// pooling keeps list refreshes cheap when several views fetch at once.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// TokenSource supplies the current bearer credential. An empty string
// means unauthenticated; the only unauthenticated call is Login.
type TokenSource interface {
	Token() string
}

// Client is a typed client for the CRM backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	userAgent  string

	// limiter throttles outgoing requests so a tight refresh loop in
	// the UI cannot hammer the backend.
	limiter *rate.Limiter
}

// New creates a Client for the given base URL. tokens may be nil for a
// client that only ever calls Login.
func New(baseURL string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: sharedHTTPClient,
		tokens:     tokens,
		userAgent:  "crmdash/" + Version,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

// WithTimeout sets the request timeout. It replaces the shared pooled
// transport client with a dedicated one.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient = &http.Client{
		Transport: sharedHTTPClient.Transport,
		Timeout:   timeout,
	}
	return c
}

// WithHTTPClient sets a custom *http.Client, used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// AUTHENTICATION
// =============================================================================

// LoginResult is the successful response to a login call.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a bearer token and identity. It is
// the only unauthenticated call; a 401 surfaces as ErrAuth and the
// caller must leave the session unset.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	return request[LoginResult](c, ctx, http.MethodPost, "/auth/login", body)
}

// =============================================================================
// USERS
// =============================================================================

// ListUsers returns every user account. Admin only server-side.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	return request[[]model.User](c, ctx, http.MethodGet, "/users", nil)
}

// ListStaff returns the staff accounts used to populate assignment pickers.
func (c *Client) ListStaff(ctx context.Context) ([]model.User, error) {
	return request[[]model.User](c, ctx, http.MethodGet, "/users/staff", nil)
}

// CreateUser creates a user account and returns the server's record.
func (c *Client) CreateUser(ctx context.Context, draft model.UserDraft) (model.User, error) {
	return request[model.User](c, ctx, http.MethodPost, "/users", draft)
}

// UpdateUser updates a user account and returns the server's record.
func (c *Client) UpdateUser(ctx context.Context, id string, draft model.UserDraft) (model.User, error) {
	return request[model.User](c, ctx, http.MethodPut, "/users/"+id, draft)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := request[struct{}](c, ctx, http.MethodDelete, "/users/"+id, nil)
	return err
}

// =============================================================================
// LEADS
// =============================================================================

// ListLeads returns every lead in server order.
func (c *Client) ListLeads(ctx context.Context) ([]model.Lead, error) {
	return request[[]model.Lead](c, ctx, http.MethodGet, "/leads", nil)
}

// CreateLead creates a lead and returns the server's record.
func (c *Client) CreateLead(ctx context.Context, draft model.LeadDraft) (model.Lead, error) {
	return request[model.Lead](c, ctx, http.MethodPost, "/leads", draft)
}

// UpdateLead updates a lead and returns the server's record.
func (c *Client) UpdateLead(ctx context.Context, id string, draft model.LeadDraft) (model.Lead, error) {
	return request[model.Lead](c, ctx, http.MethodPut, "/leads/"+id, draft)
}

// DeleteLead removes a lead.
func (c *Client) DeleteLead(ctx context.Context, id string) error {
	_, err := request[struct{}](c, ctx, http.MethodDelete, "/leads/"+id, nil)
	return err
}

// ConvertLead converts a lead into a client record server-side. The
// lead itself is not removed by the backend, so callers must not drop
// it from any local collection.
func (c *Client) ConvertLead(ctx context.Context, id string) error {
	_, err := request[struct{}](c, ctx, http.MethodPost, "/"+id+"/convert", struct{}{})
	return err
}

// =============================================================================
// CLIENTS
// =============================================================================

// clientEnvelope is the wrapper the backend uses on client mutations
// (listing returns a bare array).
type clientEnvelope struct {
	Client model.Client `json:"client"`
}

// ListClients returns every client record in server order.
func (c *Client) ListClients(ctx context.Context) ([]model.Client, error) {
	return request[[]model.Client](c, ctx, http.MethodGet, "/clients", nil)
}

// CreateClient creates a client record and returns the server's record.
func (c *Client) CreateClient(ctx context.Context, draft model.ClientDraft) (model.Client, error) {
	env, err := request[clientEnvelope](c, ctx, http.MethodPost, "/clients", draft)
	return env.Client, err
}

// UpdateClient updates a client record and returns the server's record.
func (c *Client) UpdateClient(ctx context.Context, id string, draft model.ClientDraft) (model.Client, error) {
	env, err := request[clientEnvelope](c, ctx, http.MethodPut, "/clients/"+id, draft)
	return env.Client, err
}

// DeleteClient removes a client record.
func (c *Client) DeleteClient(ctx context.Context, id string) error {
	_, err := request[struct{}](c, ctx, http.MethodDelete, "/clients/"+id, nil)
	return err
}

// =============================================================================
// PROJECTS
// =============================================================================

// ListProjects returns every project in server order.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	return request[[]model.Project](c, ctx, http.MethodGet, "/projects", nil)
}

// CreateProject creates a project and returns the server's record.
func (c *Client) CreateProject(ctx context.Context, draft model.ProjectDraft) (model.Project, error) {
	return request[model.Project](c, ctx, http.MethodPost, "/projects", draft)
}

// UpdateProject updates a project and returns the server's record.
func (c *Client) UpdateProject(ctx context.Context, id string, draft model.ProjectDraft) (model.Project, error) {
	return request[model.Project](c, ctx, http.MethodPut, "/projects/"+id, draft)
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := request[struct{}](c, ctx, http.MethodDelete, "/projects/"+id, nil)
	return err
}

// =============================================================================
// REPORTS
// =============================================================================

// Overview fetches the server-computed reports snapshot.
func (c *Client) Overview(ctx context.Context) (model.Overview, error) {
	return request[model.Overview](c, ctx, http.MethodGet, "/reports/overview", nil)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// apiErrorResponse is the error body shape the backend uses.
type apiErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// request performs one HTTP round trip and decodes the response into T.
// There is no retry logic: callers own the decision of what to do with
// a failure, and the contract is that a failed mutation leaves every
// local collection untouched.
func request[T any](c *Client, ctx context.Context, method, path string, body any) (T, error) {
	var zero T

	if err := c.limiter.Wait(ctx); err != nil {
		return zero, &APIError{Message: err.Error()}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, body != nil)

	requestID := req.Header.Get("X-Request-ID")
	log.Printf("api: %s %s id=%s", method, path, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("api: %s %s id=%s failed: %v", method, path, requestID, err)
		return zero, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()
	log.Printf("api: %s %s id=%s -> %d (%v)", method, path, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	respBody, err := readResponse(resp)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, classifyError(resp.StatusCode, respBody)
	}

	if len(respBody) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(respBody, &zero); err != nil {
		// Delete endpoints answer 200 with a free-form body; only a
		// typed target cares about the shape.
		if _, untyped := any(zero).(struct{}); untyped {
			return zero, nil
		}
		return zero, fmt.Errorf("failed to parse response: %w", err)
	}
	return zero, nil
}

// setHeaders sets the required headers. The bearer token is attached
// when the token source has one; Login is the only call made without.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// readResponse reads the body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: "failed to read response: " + err.Error()}
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("response exceeded %d bytes", MaxResponseSize)}
	}
	return body, nil
}

// classifyError maps an HTTP error response onto the failure taxonomy.
func classifyError(statusCode int, body []byte) error {
	message := ""
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Message != "" {
			message = apiErr.Message
		} else if apiErr.Error != "" {
			message = apiErr.Error
		}
	}

	switch statusCode {
	case http.StatusUnauthorized:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrAuth, message)
		}
		return ErrAuth
	case http.StatusNotFound:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if message != "" {
			return fmt.Errorf("%w: %s", ErrValidation, message)
		}
		return ErrValidation
	default:
		return &APIError{Status: statusCode, Message: message}
	}
}
