// Package repo contains all database access logic for the Trip Planner API.
// TripRepo has two implementations: MongoDB (the default document store) and
// Postgres. No business logic lives here, only queries and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tripplanner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not on a concrete store.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record with the
	// store-assigned ID and CreatedAt populated.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip.
	// Returns domain.ErrNotFound if the id is unknown or cannot be parsed.
	GetByID(ctx context.Context, id string) (domain.Trip, error)

	// List returns one page of trips matching f, newest first.
	List(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error)

	// Count returns the number of trips matching f.
	Count(ctx context.Context, f domain.TripFilter) (int64, error)

	// Update applies the present fields of in to an existing trip in a single
	// write and returns the updated record. Returns domain.ErrNotFound if the
	// id does not resolve.
	Update(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a Postgres TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, title, destination, days, budget, created_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (title, destination, days, budget)
		VALUES (@title, @destination, @days, @budget)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"title":       trip.Title,
		"destination": trip.Destination,
		"days":        trip.Days,
		"budget":      trip.Budget,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}

	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": uid}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of matching trips ordered by created_at descending.
func (r *pgTripRepo) List(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error) {
	where, args := SQLWhere(f)
	args["limit"] = p.Limit
	args["offset"] = p.Offset()

	q := `SELECT ` + tripColumns + ` FROM trips` + where +
		` ORDER BY created_at DESC, id DESC LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", err)
	}

	return trips, nil
}

// Count returns the number of rows matching f.
func (r *pgTripRepo) Count(ctx context.Context, f domain.TripFilter) (int64, error) {
	where, args := SQLWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`+where, args).Scan(&total); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.Count: %w", err)
	}
	return total, nil
}

// Update overwrites the present fields of a trip. Absent fields bind as NULL
// and COALESCE keeps the stored value.
func (r *pgTripRepo) Update(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}

	const q = `
		UPDATE trips
		SET title       = COALESCE(@title, title),
		    destination = COALESCE(@destination, destination),
		    days        = COALESCE(@days, days),
		    budget      = COALESCE(@budget, budget)
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          uid,
		"title":       in.Title,
		"destination": in.Destination,
		"days":        in.Days,
		"budget":      in.Budget,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t  domain.Trip
		id pgtype.UUID
	)

	err := s.Scan(&id, &t.Title, &t.Destination, &t.Days, &t.Budget, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes).String()
	return t, nil
}
