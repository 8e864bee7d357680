package stub

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/ride-console/internal/config"
	"github.com/example/ride-console/internal/models"
)

// Server serves the consumed ride-hailing contract:
//
//	GET    /ride                  -> []Ride
//	POST   /offer                 -> created Offer
//	POST   /ride/validation       -> {"validation": bool}
//	GET    /offer?ride_id=<id>    -> []Offer
//	PUT    /offer/select-offer    -> {"pin": string}
//	DELETE /ride/{id}             -> 204
type Server struct {
	store  Store
	events *EventProducer
	hub    *Hub
	logger *slog.Logger
	mux    *mux.Router
}

func NewServer(store Store, events *EventProducer, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		events: events,
		hub:    NewHub(logger),
		logger: logger,
		mux:    mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

// NewServerFromConfig wires the store and event producer from the loaded
// config with fallbacks: Postgres when PGDSN is set, Redis when RedisAddr is
// set, memory otherwise.
func NewServerFromConfig(cfg config.StubConfig, logger *slog.Logger) *Server {
	var store Store
	if cfg.PGDSN != "" {
		if ps, err := NewPostgresStore(cfg.PGDSN); err == nil {
			store = ps
		} else if logger != nil {
			logger.Warn("postgres unavailable, falling back", "error", err)
		}
	}
	if store == nil && cfg.RedisAddr != "" {
		store = NewRedisStore(cfg.RedisAddr, cfg.RedisPass)
	}
	if store == nil {
		store = NewMemoryStore()
	}

	var events *EventProducer
	if len(cfg.KafkaBrokers) > 0 {
		events = NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	return NewServer(store, events, logger)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// Store exposes the backing store for seeding.
func (s *Server) Store() Store { return s.store }

func (s *Server) routes() {
	s.mux.HandleFunc("/ride", s.handleListRides).Methods(http.MethodGet)
	s.mux.HandleFunc("/ride/validation", s.handleValidatePIN).Methods(http.MethodPost)
	s.mux.HandleFunc("/ride/{id}", s.handleDeleteRide).Methods(http.MethodDelete)
	s.mux.HandleFunc("/offer", s.handleCreateOffer).Methods(http.MethodPost)
	s.mux.HandleFunc("/offer", s.handleListOffers).Methods(http.MethodGet)
	s.mux.HandleFunc("/offer/select-offer", s.handleSelectOffer).Methods(http.MethodPut)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/ws", s.handleWS)
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response
		if s.logger != nil {
			s.logger.Warn("ws upgrade failed", "error", err)
		}
		return
	}
	s.hub.Add(conn)
}

func (s *Server) handleListRides(w http.ResponseWriter, r *http.Request) {
	rides, err := s.store.ListRides(r.Context())
	if err != nil {
		s.internalError(w, "list rides", err)
		return
	}
	if rides == nil {
		rides = []models.Ride{}
	}
	writeJSON(w, http.StatusOK, rides)
}

type createOfferRequest struct {
	RideID string  `json:"ride_id"`
	Price  float64 `json:"price"`
	// optional driver/vehicle identity; consoles never send these, seeding
	// and tests do
	Driver  *models.Driver  `json:"driver,omitempty"`
	Vehicle *models.Vehicle `json:"vehicle,omitempty"`
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price <= 0 {
		http.Error(w, "price must be positive", http.StatusBadRequest)
		return
	}

	ride, err := s.store.GetRide(r.Context(), req.RideID)
	if err != nil {
		s.rideError(w, err)
		return
	}
	if ride.Status() != models.StatusRequested {
		http.Error(w, "ride is not open for offers", http.StatusConflict)
		return
	}

	offer := models.Offer{
		ID:     uuid.NewString(),
		RideID: req.RideID,
		Price:  req.Price,
		Driver: models.Driver{ID: uuid.NewString(), Name: "Stub Driver", Rating: 4.5},
		Vehicle: models.Vehicle{
			Brand: "Toyota", Model: "Prius", Year: 2020, Color: "silver",
		},
	}
	if req.Driver != nil {
		offer.Driver = *req.Driver
	}
	if req.Vehicle != nil {
		offer.Vehicle = *req.Vehicle
	}

	if err := s.store.SaveOffer(r.Context(), offer); err != nil {
		s.internalError(w, "save offer", err)
		return
	}
	s.publish(RideEvent{RideID: req.RideID, Event: "offer_created", OfferID: offer.ID})
	s.hub.broadcast("offer", req.RideID)
	writeJSON(w, http.StatusCreated, offer)
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	rideID := r.URL.Query().Get("ride_id")
	if rideID == "" {
		http.Error(w, "ride_id is required", http.StatusBadRequest)
		return
	}
	offers, err := s.store.ListOffers(r.Context(), rideID)
	if err != nil {
		s.internalError(w, "list offers", err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

type selectOfferRequest struct {
	RideID  string `json:"ride_id"`
	OfferID string `json:"offer_id"`
}

func (s *Server) handleSelectOffer(w http.ResponseWriter, r *http.Request) {
	var req selectOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ride, err := s.store.GetRide(r.Context(), req.RideID)
	if err != nil {
		s.rideError(w, err)
		return
	}
	if ride.Status() != models.StatusRequested {
		http.Error(w, "ride already has a selected offer", http.StatusConflict)
		return
	}
	if err := s.store.MarkOfferSelected(r.Context(), req.RideID, req.OfferID); err != nil {
		s.rideError(w, err)
		return
	}
	if err := s.store.SetRideStatus(r.Context(), req.RideID, models.StatusAccepted.String()); err != nil {
		s.internalError(w, "accept ride", err)
		return
	}

	pin := newPIN()
	if err := s.store.SetPIN(r.Context(), req.RideID, pin); err != nil {
		s.internalError(w, "store pin", err)
		return
	}

	s.publish(RideEvent{RideID: req.RideID, Event: "offer_selected", OfferID: req.OfferID})
	s.hub.broadcast("ride", req.RideID)
	writeJSON(w, http.StatusOK, map[string]string{"pin": pin})
}

type validatePINRequest struct {
	RideID string `json:"ride_id"`
	PIN    string `json:"pin"`
}

func (s *Server) handleValidatePIN(w http.ResponseWriter, r *http.Request) {
	var req validatePINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := s.store.GetRide(r.Context(), req.RideID); err != nil {
		s.rideError(w, err)
		return
	}

	stored, err := s.store.GetPIN(r.Context(), req.RideID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.internalError(w, "load pin", err)
		return
	}
	valid := err == nil && stored != "" && stored == req.PIN
	if valid {
		if err := s.store.SetRideStatus(r.Context(), req.RideID, models.StatusCompleted.String()); err != nil {
			s.internalError(w, "complete ride", err)
			return
		}
		s.publish(RideEvent{RideID: req.RideID, Event: "ride_completed"})
		s.hub.broadcast("ride", req.RideID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"validation": valid})
}

func (s *Server) handleDeleteRide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ride, err := s.store.GetRide(r.Context(), id)
	if err != nil {
		s.rideError(w, err)
		return
	}
	// only a still-pending ride can be cancelled by the rider
	if ride.Status() != models.StatusRequested {
		http.Error(w, "ride can no longer be cancelled", http.StatusConflict)
		return
	}
	if err := s.store.DeleteRide(r.Context(), id); err != nil {
		s.rideError(w, err)
		return
	}
	s.publish(RideEvent{RideID: id, Event: "ride_cancelled"})
	s.hub.broadcast("ride", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) publish(ev RideEvent) {
	if err := s.events.Publish(ev); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", "event", ev.Event, "ride_id", ev.RideID, "error", err)
	}
}

func (s *Server) rideError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	default:
		s.internalError(w, "store", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, what string, err error) {
	if s.logger != nil {
		s.logger.Error("stub internal error", "what", what, "error", err)
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// newPIN returns a 4-digit boarding PIN.
func newPIN() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// crypto/rand failing is effectively fatal elsewhere; a fixed pin
		// in a stub is acceptable
		return "0000"
	}
	return fmt.Sprintf("%04d", n.Int64())
}
