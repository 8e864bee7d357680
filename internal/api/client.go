package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/ride-console/internal/auth"
	"github.com/example/ride-console/internal/models"
	"github.com/example/ride-console/internal/observability"
)

// Validation errors raised before any request is issued.
var (
	ErrInvalidPrice = errors.New("api: offer price must be a positive number")
	ErrEmptyPIN     = errors.New("api: pin must not be empty")
)

// APIError is any non-2xx response from the backend. The contract exposes no
// structured error codes, so every failure collapses to status + body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api: backend returned %d", e.Status)
	}
	return fmt.Sprintf("api: backend returned %d: %s", e.Status, e.Body)
}

// Client talks to the ride-hailing backend. All state lives server-side;
// the client only reads snapshots and dispatches mutations.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	logger  *slog.Logger
}

func NewClient(baseURL string, tokens auth.TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		logger:  logger,
	}
}

// SetTimeout overrides the default per-request timeout.
func (c *Client) SetTimeout(d time.Duration) { c.http.Timeout = d }

// ListRides fetches the authenticated driver's visible ride set.
func (c *Client) ListRides(ctx context.Context) ([]models.Ride, error) {
	var rides []models.Ride
	if err := c.do(ctx, "list_rides", http.MethodGet, "/ride", nil, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

// CreateOffer submits a price offer for a ride. Non-positive or non-finite
// prices are rejected locally; no request is issued.
func (c *Client) CreateOffer(ctx context.Context, rideID string, price float64) (models.Offer, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return models.Offer{}, ErrInvalidPrice
	}
	body := map[string]any{"price": price, "ride_id": rideID}
	var offer models.Offer
	err := c.do(ctx, "create_offer", http.MethodPost, "/offer", body, &offer)
	c.countMutation("create_offer", err)
	if err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

// ValidatePIN checks a rider's boarding PIN. A false result is a normal
// response, not an error.
func (c *Client) ValidatePIN(ctx context.Context, rideID, pin string) (bool, error) {
	if strings.TrimSpace(pin) == "" {
		return false, ErrEmptyPIN
	}
	body := map[string]any{"ride_id": rideID, "pin": pin}
	var out struct {
		Validation bool `json:"validation"`
	}
	err := c.do(ctx, "validate_pin", http.MethodPost, "/ride/validation", body, &out)
	c.countMutation("validate_pin", err)
	if err != nil {
		return false, err
	}
	return out.Validation, nil
}

// ListOffers fetches the competing offers for one ride.
func (c *Client) ListOffers(ctx context.Context, rideID string) ([]models.Offer, error) {
	var offers []models.Offer
	path := "/offer?ride_id=" + url.QueryEscape(rideID)
	if err := c.do(ctx, "list_offers", http.MethodGet, path, nil, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

// SelectOffer accepts an offer on behalf of the rider and returns the boarding
// PIN the backend generated for the pickup.
func (c *Client) SelectOffer(ctx context.Context, rideID, offerID string) (string, error) {
	body := map[string]any{"ride_id": rideID, "offer_id": offerID}
	var out struct {
		PIN string `json:"pin"`
	}
	err := c.do(ctx, "select_offer", http.MethodPut, "/offer/select-offer", body, &out)
	c.countMutation("select_offer", err)
	if err != nil {
		return "", err
	}
	return out.PIN, nil
}

// CancelRide deletes a pending ride.
func (c *Client) CancelRide(ctx context.Context, rideID string) error {
	err := c.do(ctx, "cancel_ride", http.MethodDelete, "/ride/"+url.PathEscape(rideID), nil, nil)
	c.countMutation("cancel_ride", err)
	return err
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s body: %w", op, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("api: build %s request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("api: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		if c.logger != nil {
			c.logger.Warn("api request failed", "op", op, "status", resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) countMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.MutationsTotal.WithLabelValues(op, outcome).Inc()
}
