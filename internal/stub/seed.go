package stub

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/ride-console/internal/models"
)

// Seed loads a handful of demo rides and offers so the consoles have
// something to show on first run.
func Seed(ctx context.Context, store Store) error {
	now := time.Now().Truncate(time.Minute)

	rides := []models.Ride{
		{
			ID:          "ride-airport",
			RawStatus:   models.StatusRequested.String(),
			Pickup:      "12 Baker St",
			Destination: "City Airport, Terminal 2",
			RiderName:   "Alice Novak",
			ScheduledAt: now.Add(30 * time.Minute),
		},
		{
			ID:          "ride-downtown",
			RawStatus:   models.StatusRequested.String(),
			Pickup:      "Grand Central Plaza",
			Destination: "48 Elm Ave",
			RiderName:   "Marcus Webb",
			ScheduledAt: now.Add(time.Hour),
		},
		{
			ID:          "ride-station",
			RawStatus:   models.StatusCompleted.String(),
			Pickup:      "North Station",
			Destination: "Harbor View Hotel",
			RiderName:   "Priya Shah",
			ScheduledAt: now.Add(-2 * time.Hour),
		},
	}
	for _, r := range rides {
		if err := store.SaveRide(ctx, r); err != nil {
			return err
		}
	}

	offers := []models.Offer{
		{
			ID:      uuid.NewString(),
			RideID:  "ride-airport",
			Driver:  models.Driver{ID: uuid.NewString(), Name: "Jonas Petrov", Rating: 4.9},
			Vehicle: models.Vehicle{Brand: "Skoda", Model: "Octavia", Year: 2022, Color: "black"},
			Price:   18.50,
		},
		{
			ID:      uuid.NewString(),
			RideID:  "ride-airport",
			Driver:  models.Driver{ID: uuid.NewString(), Name: "Elena Ruiz", Rating: 4.6},
			Vehicle: models.Vehicle{Brand: "Toyota", Model: "Corolla", Year: 2019, Color: "white"},
			Price:   15.00,
		},
	}
	for _, o := range offers {
		if err := store.SaveOffer(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
