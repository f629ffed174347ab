// Package api implements a typed HTTP client for the Bookworm REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bookworm/bookworm-go/internal/model"
)

// ErrUnauthorized signals a 401 from the server: the stored token is
// missing, expired, or no longer resolves to a user.
var ErrUnauthorized = errors.New("not authenticated")

// Client talks to a Bookworm server. The auth token is set by the
// session store after login and cleared on logout.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// New creates a client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetAuthToken sets the bearer token sent with protected requests.
func (c *Client) SetAuthToken(token string) { c.authToken = token }

// ClearAuthToken removes the bearer token.
func (c *Client) ClearAuthToken() { c.authToken = "" }

// Register creates an account and returns the issued session.
func (c *Client) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", req, http.StatusCreated, &resp)
	return resp, err
}

// Login authenticates and returns the issued session.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", req, http.StatusOK, &resp)
	return resp, err
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (model.UserResponse, error) {
	var resp model.UserResponse
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, http.StatusOK, &resp)
	return resp, err
}

// CreateBook posts a new book review.
func (c *Client) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.BookResponse, error) {
	var resp model.BookResponse
	err := c.do(ctx, http.MethodPost, "/api/books", req, http.StatusCreated, &resp)
	return resp, err
}

// Feed fetches one page of the shared feed.
func (c *Client) Feed(ctx context.Context, page, limit int) (model.FeedResponse, error) {
	path := "/api/books?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	var resp model.FeedResponse
	err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &resp)
	return resp, err
}

// MyBooks fetches the authenticated user's own books.
func (c *Client) MyBooks(ctx context.Context) ([]model.BookResponse, error) {
	var resp []model.BookResponse
	err := c.do(ctx, http.MethodGet, "/api/books/user", nil, http.StatusOK, &resp)
	return resp, err
}

// DeleteBook deletes one of the authenticated user's books.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/books/"+strconv.FormatInt(id, 10), nil, http.StatusOK, nil)
}

// do issues one JSON request and decodes the response into out when the
// status matches wantStatus. Other statuses become errors carrying the
// server-provided message when one is present.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	// JoinPath would escape a query separator, so split it off first.
	pathOnly, query, _ := strings.Cut(path, "?")
	u, err := url.JoinPath(c.baseURL, pathOnly)
	if err != nil {
		return fmt.Errorf("building request URL: %w", err)
	}
	if query != "" {
		u += "?" + query
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.responseError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// responseError converts a non-success response into an error, pulling
// the message out of either error body shape the server uses.
func (c *Client) responseError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	msg := body.Message
	if msg == "" {
		msg = body.Error
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if msg != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return ErrUnauthorized
	}

	if msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}
