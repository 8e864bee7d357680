package stub

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/example/ride-console/internal/models"
)

// PostgresStore keeps stub state in Postgres so several consoles can share
// one backend across restarts. Schema lives in migrations/001_create_stub_tables.sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }

// DB exposes the handle for migrations.
func (p *PostgresStore) DB() *sql.DB { return p.db }

func (p *PostgresStore) ListRides(ctx context.Context) ([]models.Ride, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, status, pickup, destination, rider_name, scheduled_at FROM stub_rides ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ride
	for rows.Next() {
		var r models.Ride
		if err := rows.Scan(&r.ID, &r.RawStatus, &r.Pickup, &r.Destination, &r.RiderName, &r.ScheduledAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) GetRide(ctx context.Context, id string) (models.Ride, error) {
	var r models.Ride
	err := p.db.QueryRowContext(ctx,
		`SELECT id, status, pickup, destination, rider_name, scheduled_at FROM stub_rides WHERE id=$1`, id).
		Scan(&r.ID, &r.RawStatus, &r.Pickup, &r.Destination, &r.RiderName, &r.ScheduledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ride{}, ErrNotFound
	}
	return r, err
}

func (p *PostgresStore) SaveRide(ctx context.Context, r models.Ride) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO stub_rides(id, status, pickup, destination, rider_name, scheduled_at)
		 VALUES($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status`,
		r.ID, r.RawStatus, r.Pickup, r.Destination, r.RiderName, r.ScheduledAt)
	return err
}

func (p *PostgresStore) SetRideStatus(ctx context.Context, id, status string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE stub_rides SET status=$1 WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) DeleteRide(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM stub_rides WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) ListOffers(ctx context.Context, rideID string) ([]models.Offer, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, ride_id, driver_id, driver_name, driver_rating,
		        vehicle_brand, vehicle_model, vehicle_year, vehicle_color,
		        price, selected
		 FROM stub_offers WHERE ride_id=$1 ORDER BY id`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Offer
	for rows.Next() {
		var o models.Offer
		if err := rows.Scan(&o.ID, &o.RideID, &o.Driver.ID, &o.Driver.Name, &o.Driver.Rating,
			&o.Vehicle.Brand, &o.Vehicle.Model, &o.Vehicle.Year, &o.Vehicle.Color,
			&o.Price, &o.Selected); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *PostgresStore) SaveOffer(ctx context.Context, o models.Offer) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO stub_offers(id, ride_id, driver_id, driver_name, driver_rating,
		                         vehicle_brand, vehicle_model, vehicle_year, vehicle_color,
		                         price, selected)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		o.ID, o.RideID, o.Driver.ID, o.Driver.Name, o.Driver.Rating,
		o.Vehicle.Brand, o.Vehicle.Model, o.Vehicle.Year, o.Vehicle.Color,
		o.Price, o.Selected)
	return err
}

func (p *PostgresStore) MarkOfferSelected(ctx context.Context, rideID, offerID string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE stub_offers SET selected=true WHERE ride_id=$1 AND id=$2`, rideID, offerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) SetPIN(ctx context.Context, rideID, pin string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE stub_rides SET pin=$1 WHERE id=$2`, pin, rideID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) GetPIN(ctx context.Context, rideID string) (string, error) {
	var pin sql.NullString
	err := p.db.QueryRowContext(ctx, `SELECT pin FROM stub_rides WHERE id=$1`, rideID).Scan(&pin)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !pin.Valid) {
		return "", ErrNotFound
	}
	return pin.String, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
