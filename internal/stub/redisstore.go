package stub

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/ride-console/internal/models"
)

// RedisStore keeps stub state in Redis hashes: one hash per ride and offer,
// plus index sets so listings stay cheap.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string) *RedisStore {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisStore{client: c}
}

func (r *RedisStore) Close() error { return r.client.Close() }

// Ping lets the wiring layer fail fast when Redis is unreachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func rideKey(id string) string       { return "stub:ride:" + id }
func offerKey(id string) string      { return "stub:offer:" + id }
func rideOffersKey(id string) string { return "stub:ride:" + id + ":offers" }

const rideIndexKey = "stub:rides"

func (r *RedisStore) ListRides(ctx context.Context) ([]models.Ride, error) {
	ids, err := r.client.SMembers(ctx, rideIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Ride, 0, len(ids))
	for _, id := range ids {
		ride, err := r.GetRide(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ride)
	}
	return out, nil
}

func (r *RedisStore) GetRide(ctx context.Context, id string) (models.Ride, error) {
	m, err := r.client.HGetAll(ctx, rideKey(id)).Result()
	if err != nil {
		return models.Ride{}, err
	}
	if len(m) == 0 {
		return models.Ride{}, ErrNotFound
	}
	ride := models.Ride{
		ID:          id,
		RawStatus:   m["status"],
		Pickup:      m["pickup"],
		Destination: m["destination"],
		RiderName:   m["rider_name"],
	}
	if ts, ok := m["scheduled_at"]; ok {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			ride.ScheduledAt = t
		}
	}
	return ride, nil
}

func (r *RedisStore) SaveRide(ctx context.Context, ride models.Ride) error {
	if err := r.client.HSet(ctx, rideKey(ride.ID), map[string]interface{}{
		"status":       ride.RawStatus,
		"pickup":       ride.Pickup,
		"destination":  ride.Destination,
		"rider_name":   ride.RiderName,
		"scheduled_at": ride.ScheduledAt.Format(time.RFC3339),
	}).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, rideIndexKey, ride.ID).Err()
}

func (r *RedisStore) SetRideStatus(ctx context.Context, id, status string) error {
	exists, err := r.client.Exists(ctx, rideKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return r.client.HSet(ctx, rideKey(id), "status", status).Err()
}

func (r *RedisStore) DeleteRide(ctx context.Context, id string) error {
	exists, err := r.client.Exists(ctx, rideKey(id)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	offerIDs, _ := r.client.SMembers(ctx, rideOffersKey(id)).Result()
	keys := []string{rideKey(id), rideOffersKey(id)}
	for _, oid := range offerIDs {
		keys = append(keys, offerKey(oid))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	return r.client.SRem(ctx, rideIndexKey, id).Err()
}

func (r *RedisStore) ListOffers(ctx context.Context, rideID string) ([]models.Offer, error) {
	ids, err := r.client.SMembers(ctx, rideOffersKey(rideID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Offer, 0, len(ids))
	for _, id := range ids {
		m, err := r.client.HGetAll(ctx, offerKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			continue
		}
		out = append(out, offerFromHash(id, rideID, m))
	}
	return out, nil
}

func (r *RedisStore) SaveOffer(ctx context.Context, o models.Offer) error {
	if err := r.client.HSet(ctx, offerKey(o.ID), map[string]interface{}{
		"driver_id":     o.Driver.ID,
		"driver_name":   o.Driver.Name,
		"driver_rating": strconv.FormatFloat(o.Driver.Rating, 'f', -1, 64),
		"vehicle_brand": o.Vehicle.Brand,
		"vehicle_model": o.Vehicle.Model,
		"vehicle_year":  strconv.Itoa(o.Vehicle.Year),
		"vehicle_color": o.Vehicle.Color,
		"price":         strconv.FormatFloat(o.Price, 'f', -1, 64),
		"selected":      strconv.FormatBool(o.Selected),
	}).Err(); err != nil {
		return err
	}
	return r.client.SAdd(ctx, rideOffersKey(o.RideID), o.ID).Err()
}

func (r *RedisStore) MarkOfferSelected(ctx context.Context, rideID, offerID string) error {
	ok, err := r.client.SIsMember(ctx, rideOffersKey(rideID), offerID).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return r.client.HSet(ctx, offerKey(offerID), "selected", "true").Err()
}

func (r *RedisStore) SetPIN(ctx context.Context, rideID, pin string) error {
	exists, err := r.client.Exists(ctx, rideKey(rideID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return r.client.HSet(ctx, rideKey(rideID), "pin", pin).Err()
}

func (r *RedisStore) GetPIN(ctx context.Context, rideID string) (string, error) {
	pin, err := r.client.HGet(ctx, rideKey(rideID), "pin").Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return pin, err
}

func offerFromHash(id, rideID string, m map[string]string) models.Offer {
	o := models.Offer{ID: id, RideID: rideID}
	o.Driver.ID = m["driver_id"]
	o.Driver.Name = m["driver_name"]
	o.Driver.Rating, _ = strconv.ParseFloat(m["driver_rating"], 64)
	o.Vehicle.Brand = m["vehicle_brand"]
	o.Vehicle.Model = m["vehicle_model"]
	o.Vehicle.Year, _ = strconv.Atoi(m["vehicle_year"])
	o.Vehicle.Color = m["vehicle_color"]
	o.Price, _ = strconv.ParseFloat(m["price"], 64)
	o.Selected = m["selected"] == "true"
	return o
}
