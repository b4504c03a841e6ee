// Package tripclient is a typed client for the Trip Planner HTTP API.
// Every call returns either the decoded record or an error; non-2xx responses
// become *APIError. The client never retries.
package tripclient

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

	"github.com/tripplanner/backend/internal/domain"
)

// unknownError is the message used when an error response has no usable body.
const unknownError = "Unknown error"

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
	Details []domain.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is an *APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client calls the trips API rooted at a base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the API at baseURL (e.g. "http://localhost:3001").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListParams are the optional listing parameters. Zero values are omitted
// from the query string, so the server applies its defaults.
type ListParams struct {
	Page        int
	Limit       int
	Search      string
	Destination string
	MinBudget   *float64
	MaxBudget   *float64
}

// Values encodes the non-zero parameters.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Destination != "" {
		v.Set("destination", p.Destination)
	}
	if p.MinBudget != nil {
		v.Set("minBudget", strconv.FormatFloat(*p.MinBudget, 'f', -1, 64))
	}
	if p.MaxBudget != nil {
		v.Set("maxBudget", strconv.FormatFloat(*p.MaxBudget, 'f', -1, 64))
	}
	return v
}

// CreateTrip posts a new trip.
func (c *Client) CreateTrip(ctx context.Context, in domain.TripInput) (domain.Trip, error) {
	var out domain.Trip
	if err := c.do(ctx, http.MethodPost, "/api/trips", nil, in, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("tripclient.CreateTrip: %w", err)
	}
	return out, nil
}

// ListTrips fetches one page of trips.
func (c *Client) ListTrips(ctx context.Context, p ListParams) (domain.TripPage, error) {
	var out domain.TripPage
	if err := c.do(ctx, http.MethodGet, "/api/trips", p.Values(), nil, &out); err != nil {
		return domain.TripPage{}, fmt.Errorf("tripclient.ListTrips: %w", err)
	}
	if out.Trips == nil {
		out.Trips = []domain.Trip{}
	}
	return out, nil
}

// GetTrip fetches a single trip.
func (c *Client) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	var out domain.Trip
	if err := c.do(ctx, http.MethodGet, "/api/trips/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("tripclient.GetTrip: %w", err)
	}
	return out, nil
}

// UpdateTrip sends only the present fields of in.
func (c *Client) UpdateTrip(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error) {
	var out domain.Trip
	if err := c.do(ctx, http.MethodPut, "/api/trips/"+url.PathEscape(id), nil, in, &out); err != nil {
		return domain.Trip{}, fmt.Errorf("tripclient.UpdateTrip: %w", err)
	}
	return out, nil
}

// do sends one request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError builds an *APIError from an error response. A body without
// a string "error" field yields the "Unknown error" message; malformed details
// are dropped.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: unknownError}

	var body struct {
		Error   json.RawMessage `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || json.Unmarshal(raw, &body) != nil {
		return apiErr
	}

	var msg string
	if json.Unmarshal(body.Error, &msg) == nil && msg != "" {
		apiErr.Message = msg
	}
	var details []domain.FieldError
	if json.Unmarshal(body.Details, &details) == nil {
		apiErr.Details = details
	}
	return apiErr
}
