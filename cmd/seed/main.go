// Command seed inserts a fixed set of sample trips into the configured store.
// It reads the same environment as the API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/tripplanner/backend/internal/config"
	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/internal/repo"
)

var sampleTrips = []domain.Trip{
	{Title: "Paris City Break", Destination: "Paris, France", Days: 5, Budget: 75000},
	{Title: "Tokyo Adventure", Destination: "Tokyo, Japan", Days: 8, Budget: 120000},
	{Title: "Bali Paradise", Destination: "Bali, Indonesia", Days: 7, Budget: 65000},
	{Title: "Swiss Alps Trek", Destination: "Interlaken, Switzerland", Days: 10, Budget: 150000},
	{Title: "Dubai Luxury", Destination: "Dubai, UAE", Days: 6, Budget: 95000},
	{Title: "Goa Beach Vacation", Destination: "Goa, India", Days: 5, Budget: 25000},
	{Title: "Kerala Backwaters", Destination: "Alleppey, Kerala", Days: 6, Budget: 35000},
	{Title: "Rajasthan Heritage", Destination: "Jaipur, Rajasthan", Days: 8, Budget: 55000},
	{Title: "Himalayan Trek", Destination: "Manali, Himachal Pradesh", Days: 12, Budget: 45000},
	{Title: "New York City", Destination: "New York, USA", Days: 7, Budget: 180000},
	{Title: "London Explorer", Destination: "London, UK", Days: 6, Budget: 110000},
	{Title: "Rome Historical", Destination: "Rome, Italy", Days: 5, Budget: 70000},
	{Title: "Barcelona Culture", Destination: "Barcelona, Spain", Days: 6, Budget: 80000},
	{Title: "Amsterdam Canals", Destination: "Amsterdam, Netherlands", Days: 4, Budget: 60000},
	{Title: "Singapore Modern", Destination: "Singapore", Days: 5, Budget: 85000},
	{Title: "Thailand Islands", Destination: "Phuket, Thailand", Days: 9, Budget: 55000},
	{Title: "Australia Outback", Destination: "Sydney, Australia", Days: 14, Budget: 200000},
	{Title: "Iceland Northern Lights", Destination: "Reykjavik, Iceland", Days: 7, Budget: 130000},
	{Title: "Morocco Desert", Destination: "Marrakech, Morocco", Days: 8, Budget: 65000},
	{Title: "South Korea Culture", Destination: "Seoul, South Korea", Days: 6, Budget: 90000},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var store *repo.Store
	if cfg.StoreDriver == config.StorePostgres {
		store, err = repo.OpenPostgres(ctx, cfg.DatabaseURL)
	} else {
		store, err = repo.OpenMongo(ctx, cfg.MongoURI)
	}
	if err != nil {
		logger.Error("failed to open trip store", "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	if err := store.Ping(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := store.Prepare(ctx); err != nil {
		logger.Error("failed to prepare database schema", "error", err)
		os.Exit(1)
	}

	for i, trip := range sampleTrips {
		if _, err := store.Trips.Create(ctx, trip); err != nil {
			logger.Error("failed to insert trip", "title", trip.Title, "inserted", i, "error", err)
			os.Exit(1)
		}
	}
	logger.Info("seeded trips", "count", len(sampleTrips), "store", cfg.StoreDriver)
}
