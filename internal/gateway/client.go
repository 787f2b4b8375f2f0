// Package gateway wraps the reservation store's furniture-assignment
// HTTP endpoints in a typed client.  The client is stateless: every
// method is a single request/response round-trip.  Network and decode
// failures are returned as errors; business failures travel inside
// the decoded response ("success"/"error" fields) so callers can
// distinguish the two.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the reservation store.  All methods honour the
// supplied context for cancellation and apply the HTTP client's
// timeout.  When a Cache is configured, successful GET lookups are
// stored and served as a fallback if the store is unreachable.
type Client struct {
	baseURL   string
	csrfToken string
	http      *http.Client
	cache     *Cache
}

// NewClient builds a gateway client for the given base URL.  The CSRF
// token is attached to every request as X-CSRF-Token, matching what
// the store expects from its own frontend.  cache may be nil to
// disable offline fallback.  timeout bounds each round-trip; zero
// means 10 seconds.
func NewClient(baseURL, csrfToken string, timeout time.Duration, cache *Cache) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		csrfToken: csrfToken,
		http:      &http.Client{Timeout: timeout},
		cache:     cache,
	}
}

// getJSON performs a GET against path with the given query and
// decodes the response body into out.  On network failure it falls
// back to the offline cache when one is configured; on success the
// fresh body refreshes the cache.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	full := c.baseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-Token", c.csrfToken)

	resp, err := c.http.Do(req)
	if err != nil {
		if c.cache != nil {
			if body, ok := c.cache.Get(ctx, full); ok {
				log.Printf("gateway: store unreachable, serving cached copy of %s", path)
				return json.Unmarshal(body, out)
			}
		}
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway: %s returned %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gateway: decode %s: %w", path, err)
	}
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		c.cache.Set(ctx, full, body)
	}
	return nil
}

// postJSON performs a POST with a JSON body and decodes the response
// into out.  Mutating calls never fall back to the cache: a failure
// must surface as a failure.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CSRF-Token", c.csrfToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway: %s returned %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("gateway: decode %s: %w", path, err)
	}
	return nil
}

// Unassigned lists the reservations on a date whose furniture does
// not cover their guest count.
func (c *Client) Unassigned(ctx context.Context, date string) (*UnassignedResponse, error) {
	q := url.Values{"date": {date}}
	var out UnassignedResponse
	if err := c.getJSON(ctx, "/unassigned", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PoolData fetches the authoritative pool-building state for one
// reservation on one date.
func (c *Client) PoolData(ctx context.Context, reservationID uint64, date string) (*PoolDataResponse, error) {
	q := url.Values{
		"reservation_id": {strconv.FormatUint(reservationID, 10)},
		"date":           {date},
	}
	var out PoolDataResponse
	if err := c.getJSON(ctx, "/pool-data", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PreferencesMatch asks which available furniture on the date matches
// the given preference codes, with a score per item.
func (c *Client) PreferencesMatch(ctx context.Context, date string, preferences []string) (*PreferencesMatchResponse, error) {
	q := url.Values{
		"date":        {date},
		"preferences": {strings.Join(preferences, ",")},
	}
	var out PreferencesMatchResponse
	if err := c.getJSON(ctx, "/preferences-match", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assign attaches furniture to a reservation on a date.
func (c *Client) Assign(ctx context.Context, req AssignRequest) (*AssignResponse, error) {
	var out AssignResponse
	if err := c.postJSON(ctx, "/assign", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unassign detaches furniture from a reservation on a date.
func (c *Client) Unassign(ctx context.Context, req AssignRequest) (*AssignResponse, error) {
	var out AssignResponse
	if err := c.postJSON(ctx, "/unassign", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckAvailability verifies a furniture set against a date range and
// returns every clash.
func (c *Client) CheckAvailability(ctx context.Context, furnitureIDs []uint64, dates []string) (*AvailabilityResponse, error) {
	var out AvailabilityResponse
	req := AvailabilityRequest{FurnitureIDs: furnitureIDs, Dates: dates}
	if err := c.postJSON(ctx, "/reservations/check-availability", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateContiguity asks whether the selection is spatially adjacent
// on the given date.
func (c *Client) ValidateContiguity(ctx context.Context, furnitureIDs []uint64, date string) (*ContiguityResponse, error) {
	var out ContiguityResponse
	req := ContiguityRequest{FurnitureIDs: furnitureIDs, Date: date}
	if err := c.postJSON(ctx, "/reservations/validate-contiguity", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckDuplicate reports whether the customer already holds a
// reservation on the date.
func (c *Client) CheckDuplicate(ctx context.Context, customerID uint64, date string) (*DuplicateResponse, error) {
	q := url.Values{
		"customer_id": {strconv.FormatUint(customerID, 10)},
		"date":        {date},
	}
	var out DuplicateResponse
	if err := c.getJSON(ctx, "/reservations/check-duplicate", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReservation submits a quick reservation from the map.  The
// store is the final arbiter of availability: the response may carry
// an "unavailable" conflict set even when every pre-check passed.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest) (*CreateReservationResponse, error) {
	var out CreateReservationResponse
	if err := c.postJSON(ctx, "/map/quick-reservation", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MoveReservationFurniture relocates an existing reservation between
// two furniture items on a single date (quick swap).
func (c *Client) MoveReservationFurniture(ctx context.Context, req MoveFurnitureRequest) (*MoveFurnitureResponse, error) {
	var out MoveFurnitureResponse
	if err := c.postJSON(ctx, "/map/move-reservation-furniture", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
