// ABOUTME: HTTP client for the blog backend's post and login endpoints.
// ABOUTME: Encodes the header conventions of each endpoint, including the raw-token create quirk.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/2389-research/quill/internal/models"
)

// DefaultTimeout bounds every request unless the caller overrides it.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept in HTTPError.
const maxErrorBody = 1 << 16

// Client talks to the blog backend.
type Client struct {
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) *Client {
	c := &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: DefaultTimeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.apiURL
}

// CreateAuthorization is the Authorization value for POST /posts.
// The backend only accepts the bare token on this endpoint, so no scheme is sent.
func CreateAuthorization(cred models.Credential) string {
	return string(cred)
}

// BearerAuthorization is the Authorization value for every other authenticated endpoint.
func BearerAuthorization(cred models.Credential) string {
	return "Bearer " + string(cred)
}

// verifyOwnerResponse is the body of GET /posts/verify-owner/{id}.
type verifyOwnerResponse struct {
	IsOwner bool `json:"isOwner"`
}

// loginPayload is the body of POST /users/login.
type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FetchByID loads one post. Any non-2xx answer, or a body without a post id,
// yields (nil, nil).
func (c *Client) FetchByID(ctx context.Context, id string) (*models.Post, error) {
	resp, err := c.do(ctx, "fetch post", http.MethodGet, "/posts/"+url.PathEscape(id), "", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	var post *models.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to decode post: %w", err)
	}
	if post == nil || post.ID == "" {
		return nil, nil
	}
	return post, nil
}

// FetchAll lists every post in the order the server returns them.
func (c *Client) FetchAll(ctx context.Context) ([]models.Post, error) {
	resp, err := c.do(ctx, "list posts", http.MethodGet, "/posts", "", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus("list posts", resp); err != nil {
		return nil, err
	}

	var posts []models.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// VerifyOwnership asks the server whether cred owns the post.
// It fails closed: every error path answers false.
func (c *Client) VerifyOwnership(ctx context.Context, id string, cred models.Credential) bool {
	resp, err := c.do(ctx, "verify owner", http.MethodGet, "/posts/verify-owner/"+url.PathEscape(id), BearerAuthorization(cred), nil)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return false
	}

	var body verifyOwnerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Debug("undecodable verify-owner response", zap.String("post_id", id), zap.Error(err))
		return false
	}
	return body.IsOwner
}

// Create persists a new post.
func (c *Client) Create(ctx context.Context, draft models.Draft, cred models.Credential) error {
	return c.send(ctx, "create post", http.MethodPost, "/posts", authValue(cred, CreateAuthorization), draft)
}

// Update replaces the title and content of an existing post.
func (c *Client) Update(ctx context.Context, id string, draft models.Draft, cred models.Credential) error {
	return c.send(ctx, "update post", http.MethodPut, "/posts/"+url.PathEscape(id), authValue(cred, BearerAuthorization), draft)
}

// Remove deletes a post.
func (c *Client) Remove(ctx context.Context, id string, cred models.Credential) error {
	return c.send(ctx, "delete post", http.MethodDelete, "/posts/"+url.PathEscape(id), authValue(cred, BearerAuthorization), nil)
}

// Login exchanges an email and password for a token.
// The server answers with the raw token as the response body.
func (c *Client) Login(ctx context.Context, email, password string) (models.Credential, error) {
	body, err := json.Marshal(loginPayload{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login: %w", err)
	}

	resp, err := c.do(ctx, "login", http.MethodPost, "/users/login", "", body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", ErrInvalidCredentials
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "login", Err: err}
	}
	// Header values cannot carry line breaks, so surrounding whitespace is dropped.
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrInvalidCredentials
	}
	return models.Credential(token), nil
}

// send issues a mutating request with an optional JSON body and discards the response.
func (c *Client) send(ctx context.Context, op, method, path, auth string, payload any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", op, err)
		}
	}

	resp, err := c.do(ctx, op, method, path, auth, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return checkStatus(op, resp)
}

// do builds and executes a request. Only transport failures are returned as errors.
func (c *Client) do(ctx context.Context, op, method, path, auth string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("api request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

func checkStatus(op string, resp *http.Response) error {
	if isSuccess(resp.StatusCode) {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &HTTPError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// authValue formats cred, or returns "" so the header is omitted for anonymous calls.
func authValue(cred models.Credential, format func(models.Credential) string) string {
	if cred.IsZero() {
		return ""
	}
	return format(cred)
}
