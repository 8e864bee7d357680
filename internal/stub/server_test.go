package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/ride-console/internal/config"
	"github.com/example/ride-console/internal/logging"
	"github.com/example/ride-console/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, Store) {
	t.Helper()
	store := NewMemoryStore()
	logger := logging.NewLogger(io.Discard, "error")
	srv := httptest.NewServer(NewServer(store, nil, logger))
	t.Cleanup(srv.Close)
	return srv, store
}

func request(t *testing.T, srv *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer test-token")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func saveRide(t *testing.T, store Store, id, status string) {
	t.Helper()
	err := store.SaveRide(context.Background(), models.Ride{
		ID: id, RawStatus: status, RiderName: "Test Rider",
		Pickup: "A", Destination: "B",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMissingBearerTokenIsRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/ride")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	// health stays open for probes
	resp2, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp2.StatusCode)
	}
}

func TestOfferRequiresOpenRide(t *testing.T) {
	srv, store := newTestServer(t)
	saveRide(t, store, "r-open", "REQUESTED")
	saveRide(t, store, "r-done", "COMPLETED")

	resp := request(t, srv, http.MethodPost, "/offer", map[string]any{"ride_id": "r-open", "price": 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero price: status = %d, want 400", resp.StatusCode)
	}

	resp = request(t, srv, http.MethodPost, "/offer", map[string]any{"ride_id": "r-done", "price": 10})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("completed ride: status = %d, want 409", resp.StatusCode)
	}

	resp = request(t, srv, http.MethodPost, "/offer", map[string]any{"ride_id": "missing", "price": 10})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing ride: status = %d, want 404", resp.StatusCode)
	}

	resp = request(t, srv, http.MethodPost, "/offer", map[string]any{"ride_id": "r-open", "price": 12.5})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("valid offer: status = %d, want 201", resp.StatusCode)
	}
	offer := decode[models.Offer](t, resp)
	if offer.ID == "" || offer.Price != 12.5 || offer.RideID != "r-open" {
		t.Fatalf("unexpected offer: %+v", offer)
	}
}

func TestFullAcceptAndBoardingFlow(t *testing.T) {
	srv, store := newTestServer(t)
	saveRide(t, store, "r1", "REQUESTED")

	resp := request(t, srv, http.MethodPost, "/offer", map[string]any{"ride_id": "r1", "price": 18.5})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create offer: status = %d", resp.StatusCode)
	}
	offer := decode[models.Offer](t, resp)

	resp = request(t, srv, http.MethodGet, "/offer?ride_id=r1", nil)
	offers := decode[[]models.Offer](t, resp)
	if len(offers) != 1 || offers[0].ID != offer.ID {
		t.Fatalf("listed offers = %+v", offers)
	}

	resp = request(t, srv, http.MethodPut, "/offer/select-offer",
		map[string]string{"ride_id": "r1", "offer_id": offer.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select offer: status = %d", resp.StatusCode)
	}
	sel := decode[map[string]string](t, resp)
	pin := sel["pin"]
	if len(pin) != 4 {
		t.Fatalf("pin = %q, want 4 digits", pin)
	}

	ride, err := store.GetRide(context.Background(), "r1")
	if err != nil {
		t.Fatal(err)
	}
	if ride.Status() != models.StatusAccepted {
		t.Fatalf("ride status = %s, want ACCEPTED", ride.RawStatus)
	}

	// a second selection on the same ride must conflict
	resp = request(t, srv, http.MethodPut, "/offer/select-offer",
		map[string]string{"ride_id": "r1", "offer_id": offer.ID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double select: status = %d, want 409", resp.StatusCode)
	}

	// wrong PIN: flag is false, ride stays accepted
	resp = request(t, srv, http.MethodPost, "/ride/validation",
		map[string]string{"ride_id": "r1", "pin": "nope"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("validate: status = %d", resp.StatusCode)
	}
	if v := decode[map[string]bool](t, resp); v["validation"] {
		t.Fatal("wrong pin validated")
	}
	ride, _ = store.GetRide(context.Background(), "r1")
	if ride.Status() != models.StatusAccepted {
		t.Fatalf("wrong pin changed status to %s", ride.RawStatus)
	}

	// right PIN completes the ride
	resp = request(t, srv, http.MethodPost, "/ride/validation",
		map[string]string{"ride_id": "r1", "pin": pin})
	if v := decode[map[string]bool](t, resp); !v["validation"] {
		t.Fatal("correct pin rejected")
	}
	ride, _ = store.GetRide(context.Background(), "r1")
	if ride.Status() != models.StatusCompleted {
		t.Fatalf("ride status = %s, want COMPLETED", ride.RawStatus)
	}
}

func TestDeleteRideOnlyWhilePending(t *testing.T) {
	srv, store := newTestServer(t)
	saveRide(t, store, "r-pending", "REQUESTED")
	saveRide(t, store, "r-accepted", "ACCEPTED")

	resp := request(t, srv, http.MethodDelete, "/ride/r-pending", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("pending delete: status = %d, want 204", resp.StatusCode)
	}
	if _, err := store.GetRide(context.Background(), "r-pending"); err == nil {
		t.Fatal("ride still present after delete")
	}

	resp = request(t, srv, http.MethodDelete, "/ride/r-accepted", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("accepted delete: status = %d, want 409", resp.StatusCode)
	}

	resp = request(t, srv, http.MethodDelete, "/ride/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing delete: status = %d, want 404", resp.StatusCode)
	}
}

func TestListOffersRequiresRideID(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := request(t, srv, http.MethodGet, "/offer", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFromConfigFallsBackToMemoryStore(t *testing.T) {
	logger := logging.NewLogger(io.Discard, "error")
	srv := NewServerFromConfig(config.StubConfig{}, logger)
	if _, ok := srv.Store().(*MemoryStore); !ok {
		t.Fatalf("store = %T, want *MemoryStore", srv.Store())
	}
}

func TestFromConfigHonorsRedisAddr(t *testing.T) {
	logger := logging.NewLogger(io.Discard, "error")
	// construction must not dial; the address comes from the parsed config,
	// not from the process environment
	srv := NewServerFromConfig(config.StubConfig{RedisAddr: "localhost:6379"}, logger)
	if _, ok := srv.Store().(*RedisStore); !ok {
		t.Fatalf("store = %T, want *RedisStore", srv.Store())
	}
}

func TestNonUpgradeRequestToWSGetsSingleError(t *testing.T) {
	srv, _ := newTestServer(t)

	// plain GET without upgrade headers; the upgrader writes the error
	resp, err := srv.Client().Get(srv.URL + "/ws")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSeedProducesOpenRideWithOffers(t *testing.T) {
	store := NewMemoryStore()
	if err := Seed(context.Background(), store); err != nil {
		t.Fatal(err)
	}
	rides, err := store.ListRides(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rides) == 0 {
		t.Fatal("no rides seeded")
	}
	var open string
	for _, r := range rides {
		if r.Status() == models.StatusRequested {
			open = r.ID
			break
		}
	}
	if open == "" {
		t.Fatal("no open ride to demo offers against")
	}
	offers, err := store.ListOffers(context.Background(), "ride-airport")
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) < 2 {
		t.Fatalf("seed offers = %d, want at least 2", len(offers))
	}
}
