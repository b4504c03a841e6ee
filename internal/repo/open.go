package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripplanner/backend/migrations"
)

// DefaultMongoDatabase is used when the connection string names no database.
const DefaultMongoDatabase = "tripplanner"

// Store is an opened trip store: the repo plus the connection behind it.
type Store struct {
	Trips TripRepo

	ping    func(ctx context.Context) error
	prepare func(ctx context.Context) error
	close   func(ctx context.Context)
}

// Ping checks that the backing server is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Prepare makes the schema ready: indexes on MongoDB, migrations on Postgres.
// It is safe to run on every start.
func (s *Store) Prepare(ctx context.Context) error { return s.prepare(ctx) }

// Close releases the connection.
func (s *Store) Close(ctx context.Context) { s.close(ctx) }

// OpenMongo connects lazily to uri; no server round trip happens until the
// first operation or Ping. The database is the one named in the URI path.
func OpenMongo(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("repo.OpenMongo: %w", err)
	}
	coll := client.Database(mongoDatabase(uri)).Collection(TripsCollection)

	return &Store{
		Trips: NewMongoTripRepo(coll),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		prepare: func(ctx context.Context) error {
			return EnsureMongoIndexes(ctx, coll)
		},
		close: func(ctx context.Context) {
			_ = client.Disconnect(ctx)
		},
	}, nil
}

// mongoDatabase extracts the database name from a mongodb:// or
// mongodb+srv:// URI. Multi-host URIs are not valid net/url input, so the
// path is located by hand.
func mongoDatabase(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return DefaultMongoDatabase
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return DefaultMongoDatabase
	}
	name, _, _ := strings.Cut(path, "?")
	if name == "" {
		return DefaultMongoDatabase
	}
	return name
}

// OpenPostgres creates a connection pool for databaseURL. Connections are
// opened on first use.
func OpenPostgres(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenPostgres: %w", err)
	}

	return &Store{
		Trips: NewTripRepo(pool),
		ping:  pool.Ping,
		prepare: func(ctx context.Context) error {
			return migratePostgres(ctx, pool)
		},
		close: func(context.Context) { pool.Close() },
	}, nil
}

func migratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.migratePostgres: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("repo.migratePostgres: %w", err)
	}
	return nil
}
