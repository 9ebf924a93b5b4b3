// Package client provides an HTTP client for the reviewboard REST API.
package client

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
	"time"
)

// OwnershipTokenHeader carries the ownership token on edit and delete.
const OwnershipTokenHeader = "X-Ownership-Token"

// Client is an HTTP client for the reviewboard API. Tokens received on
// create are kept in the TokenStore and presented on edit and delete.
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string, tokens TokenStore) *Client {
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Review is a review as returned by the server. It never carries a token.
type Review struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Product   string    `json:"product"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewInput is the body of POST /api/reviews.
type ReviewInput struct {
	Author  string `json:"author"`
	Product string `json:"product"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// ReviewPatch is the body of PATCH /api/reviews/{id}; nil fields are left unchanged.
type ReviewPatch struct {
	Author  *string `json:"author,omitempty"`
	Product *string `json:"product,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
	Content *string `json:"content,omitempty"`
}

// CreateResult reports the new review id. Duplicate is true when the server
// absorbed the submission into an existing review and issued no token.
type CreateResult struct {
	ID        int64
	Duplicate bool
}

// ListOptions controls GET /api/reviews.
type ListOptions struct {
	Query string
	Sort  string // newest, oldest, rating_desc, rating_asc
	Page  int
	Limit int
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

type ListResult struct {
	Data       []Review   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Stats struct {
	Product       string  `json:"product"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s (%d): %v", e.Message, e.StatusCode, e.Fields)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.StatusCode)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Create posts a review and stores the returned ownership token.
func (c *Client) Create(ctx context.Context, in ReviewInput) (*CreateResult, error) {
	var created struct {
		ID             int64  `json:"id"`
		OwnershipToken string `json:"ownership_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/reviews", "", in, &created); err != nil {
		return nil, err
	}

	if created.OwnershipToken == "" {
		return &CreateResult{ID: created.ID, Duplicate: true}, nil
	}
	if err := c.tokens.Save(created.ID, created.OwnershipToken); err != nil {
		return nil, fmt.Errorf("saving ownership token for review %d: %w", created.ID, err)
	}
	return &CreateResult{ID: created.ID}, nil
}

// List returns one page of reviews.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	params := url.Values{}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/api/reviews"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result ListResult
	if err := c.do(ctx, http.MethodGet, path, "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get returns a single review.
func (c *Client) Get(ctx context.Context, id int64) (*Review, error) {
	var review Review
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reviews/%d", id), "", nil, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Update edits a review this client created.
func (c *Client) Update(ctx context.Context, id int64, patch ReviewPatch) (*Review, error) {
	token, err := c.tokens.Lookup(id)
	if err != nil {
		return nil, err
	}

	var review Review
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/reviews/%d", id), token, patch, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// Delete removes a review this client created and forgets its token.
func (c *Client) Delete(ctx context.Context, id int64) error {
	token, err := c.tokens.Lookup(id)
	if err != nil {
		return err
	}

	err = c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", id), token, nil, nil)
	if err != nil && !IsStatus(err, http.StatusNotFound) {
		return err
	}
	if ferr := c.tokens.Forget(id); ferr != nil {
		return fmt.Errorf("forgetting ownership token for review %d: %w", id, ferr)
	}
	return err
}

// Stats returns the rating summary for a product.
func (c *Client) Stats(ctx context.Context, product string) (*Stats, error) {
	var stats Stats
	path := "/api/reviews/stats?" + url.Values{"product": {product}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, "", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do executes a request, unwraps the response envelope and decodes data
// into result.
func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(OwnershipTokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var env envelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil && resp.StatusCode < 400 {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Fields: env.Errors}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}

	return nil
}
