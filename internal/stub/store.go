// Package stub is a runnable fake of the ride-hailing backend the consoles
// talk to. It implements the consumed HTTP contract and nothing else: no
// matching, no pricing rules, just stored state and the contract's
// transitions. It exists for local development and integration tests.
package stub

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/example/ride-console/internal/models"
)

var (
	ErrNotFound = errors.New("stub: not found")
	// ErrConflict is returned when a mutation targets a ride whose state
	// does not allow it, e.g. cancelling an accepted ride.
	ErrConflict = errors.New("stub: ride state does not allow this")
)

// Store defines persistence operations for rides, offers and boarding PINs.
type Store interface {
	ListRides(ctx context.Context) ([]models.Ride, error)
	GetRide(ctx context.Context, id string) (models.Ride, error)
	SaveRide(ctx context.Context, r models.Ride) error
	SetRideStatus(ctx context.Context, id, status string) error
	DeleteRide(ctx context.Context, id string) error

	ListOffers(ctx context.Context, rideID string) ([]models.Offer, error)
	SaveOffer(ctx context.Context, o models.Offer) error
	MarkOfferSelected(ctx context.Context, rideID, offerID string) error

	SetPIN(ctx context.Context, rideID, pin string) error
	GetPIN(ctx context.Context, rideID string) (string, error)
}

// MemoryStore is the default backend when neither PG_DSN nor REDIS_ADDR is
// configured.
type MemoryStore struct {
	mu     sync.RWMutex
	rides  map[string]models.Ride
	offers map[string][]models.Offer // keyed by ride id
	pins   map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides:  make(map[string]models.Ride),
		offers: make(map[string][]models.Offer),
		pins:   make(map[string]string),
	}
}

func (m *MemoryStore) ListRides(ctx context.Context) ([]models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		out = append(out, r)
	}
	// map order is random; keep the listing stable for clients
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetRide(ctx context.Context, id string) (models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return models.Ride{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) SaveRide(ctx context.Context, r models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[r.ID] = r
	return nil
}

func (m *MemoryStore) SetRideStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	r.RawStatus = status
	m.rides[id] = r
	return nil
}

func (m *MemoryStore) DeleteRide(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return ErrNotFound
	}
	delete(m.rides, id)
	delete(m.offers, id)
	delete(m.pins, id)
	return nil
}

func (m *MemoryStore) ListOffers(ctx context.Context, rideID string) ([]models.Offer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Offer(nil), m.offers[rideID]...), nil
}

func (m *MemoryStore) SaveOffer(ctx context.Context, o models.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers[o.RideID] = append(m.offers[o.RideID], o)
	return nil
}

func (m *MemoryStore) MarkOfferSelected(ctx context.Context, rideID, offerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	offers := m.offers[rideID]
	for i := range offers {
		if offers[i].ID == offerID {
			offers[i].Selected = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) SetPIN(ctx context.Context, rideID, pin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pins[rideID] = pin
	return nil
}

func (m *MemoryStore) GetPIN(ctx context.Context, rideID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pin, ok := m.pins[rideID]
	if !ok {
		return "", ErrNotFound
	}
	return pin, nil
}
