package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/internal/repo"
)

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture() domain.Trip {
	return domain.Trip{
		Title:       "Paris City Break",
		Destination: "Paris, France",
		Days:        5,
		Budget:      75000,
	}
}

// runTripRepoContract exercises behaviour every TripRepo implementation must share.
// newRepo must return a repo over an empty trips store.
func runTripRepoContract(t *testing.T, newRepo func(t *testing.T) repo.TripRepo) {
	t.Run("Create assigns id and createdAt", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		got, err := r.Create(ctx, tripFixture())

		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, "Paris City Break", got.Title)
		assert.Equal(t, "Paris, France", got.Destination)
		assert.Equal(t, 5, got.Days)
		assert.Equal(t, 75000.0, got.Budget)
	})

	t.Run("Create ids unique and createdAt non-decreasing", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		seen := map[string]bool{}
		var prev domain.Trip
		for i := 0; i < 10; i++ {
			got, err := r.Create(ctx, tripFixture())
			require.NoError(t, err)
			assert.False(t, seen[got.ID], "duplicate id %s", got.ID)
			seen[got.ID] = true
			if i > 0 {
				assert.False(t, got.CreatedAt.Before(prev.CreatedAt), "createdAt went backwards")
			}
			prev = got
		}
	})

	t.Run("GetByID", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		created, err := r.Create(ctx, tripFixture())
		require.NoError(t, err)

		got, err := r.GetByID(ctx, created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Title, got.Title)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("GetByID malformed id is not found", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.GetByID(context.Background(), "not-an-id")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List pages newest first without overlap or gap", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		var created []string
		for i := 0; i < 12; i++ {
			trip := tripFixture()
			trip.Title = fmt.Sprintf("Trip %02d", i)
			got, err := r.Create(ctx, trip)
			require.NoError(t, err)
			created = append(created, got.ID)
		}

		page1, err := r.List(ctx, domain.TripFilter{}, domain.PaginationParams{Page: 1, Limit: 5})
		require.NoError(t, err)
		page2, err := r.List(ctx, domain.TripFilter{}, domain.PaginationParams{Page: 2, Limit: 5})
		require.NoError(t, err)
		page3, err := r.List(ctx, domain.TripFilter{}, domain.PaginationParams{Page: 3, Limit: 5})
		require.NoError(t, err)

		require.Len(t, page1, 5)
		require.Len(t, page2, 5)
		require.Len(t, page3, 2)

		var got []string
		for _, p := range [][]domain.Trip{page1, page2, page3} {
			for _, tr := range p {
				got = append(got, tr.ID)
			}
		}
		// Newest first: the reverse of creation order.
		for i := range created {
			assert.Equal(t, created[len(created)-1-i], got[i])
		}

		total, err := r.Count(ctx, domain.TripFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 12, total)
	})

	t.Run("Search matches title or destination case-insensitively", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		paris := tripFixture()
		paris.Title = "City Break"
		_, err := r.Create(ctx, paris)
		require.NoError(t, err)

		tokyo := tripFixture()
		tokyo.Title = "Tokyo Adventure"
		tokyo.Destination = "Tokyo, Japan"
		_, err = r.Create(ctx, tokyo)
		require.NoError(t, err)

		f := domain.TripFilter{Search: "paris"}
		trips, err := r.List(ctx, f, domain.PaginationParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, "Paris, France", trips[0].Destination)

		f = domain.TripFilter{Search: "ADVENTURE"}
		trips, err = r.List(ctx, f, domain.PaginationParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, "Tokyo Adventure", trips[0].Title)

		f = domain.TripFilter{Search: "Reykjavik"}
		trips, err = r.List(ctx, f, domain.PaginationParams{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, trips)
		total, err := r.Count(ctx, f)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("Destination and search are ANDed", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		goa := tripFixture()
		goa.Title = "Goa Beach Vacation"
		goa.Destination = "Goa, India"
		_, err := r.Create(ctx, goa)
		require.NoError(t, err)

		kerala := tripFixture()
		kerala.Title = "Kerala Backwaters"
		kerala.Destination = "Alleppey, Kerala, India"
		_, err = r.Create(ctx, kerala)
		require.NoError(t, err)

		f := domain.TripFilter{Destination: "india", Search: "beach"}
		total, err := r.Count(ctx, f)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("Budget bounds are inclusive", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		for _, b := range []float64{100, 200, 300} {
			trip := tripFixture()
			trip.Budget = b
			_, err := r.Create(ctx, trip)
			require.NoError(t, err)
		}

		lo, hi := 200.0, 300.0
		total, err := r.Count(ctx, domain.TripFilter{MinBudget: &lo, MaxBudget: &hi})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("Update changes only present fields", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		created, err := r.Create(ctx, tripFixture())
		require.NoError(t, err)

		budget := 99999.0
		updated, err := r.Update(ctx, created.ID, domain.TripInput{Budget: &budget})

		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, 99999.0, updated.Budget)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.Destination, updated.Destination)
		assert.Equal(t, created.Days, updated.Days)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	})

	t.Run("Update unknown or malformed id is not found", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		days := 3
		_, err := r.Update(ctx, "bogus", domain.TripInput{Days: &days})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
