package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripplanner/backend/internal/cache"
	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/internal/events"
	"github.com/tripplanner/backend/internal/repo"
	"github.com/tripplanner/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create  func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID func(ctx context.Context, id string) (domain.Trip, error)
	list    func(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error)
	count   func(ctx context.Context, f domain.TripFilter) (int64, error)
	update  func(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error) {
	return m.list(ctx, f, p)
}
func (m *mockTripRepo) Count(ctx context.Context, f domain.TripFilter) (int64, error) {
	return m.count(ctx, f)
}
func (m *mockTripRepo) Update(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error) {
	return m.update(ctx, id, in)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.TripEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.TripEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

var _ events.Publisher = (*recordingPublisher)(nil)

// ---- helpers ---------------------------------------------------------------

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func validInput() domain.TripInput {
	return domain.TripInput{
		Title:       strPtr("Tokyo Adventure"),
		Destination: strPtr("Tokyo, Japan"),
		Days:        intPtr(7),
		Budget:      floatPtr(150000),
	}
}

func storedTrip() domain.Trip {
	return domain.Trip{
		ID:          "64b7f0c2a1b2c3d4e5f60718",
		Title:       "Tokyo Adventure",
		Destination: "Tokyo, Japan",
		Days:        7,
		Budget:      150000,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// echoRepo stores nothing: Create returns what it receives with an id, and
// Update applies the input over storedTrip.
func echoRepo() *mockTripRepo {
	return &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			t.ID = "new-id"
			t.CreatedAt = time.Now().UTC()
			return t, nil
		},
		update: func(_ context.Context, id string, in domain.TripInput) (domain.Trip, error) {
			t := in.Apply(storedTrip())
			t.ID = id
			return t, nil
		},
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	names := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		names[i] = f.Field
	}
	return names
}

// ---- Create tests ----------------------------------------------------------

func TestTripService_Create_Valid(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	got, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "new-id", got.ID)
	assert.Equal(t, "Tokyo Adventure", got.Title)
	assert.Equal(t, 7, got.Days)
}

func TestTripService_Create_TrimsText(t *testing.T) {
	var stored domain.Trip
	r := echoRepo()
	r.create = func(_ context.Context, trip domain.Trip) (domain.Trip, error) {
		stored = trip
		return trip, nil
	}
	svc := service.NewTripService(r)

	in := validInput()
	in.Title = strPtr("  Tokyo Adventure  ")

	_, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "Tokyo Adventure", stored.Title)
}

func TestTripService_Create_ZeroBudgetAllowed(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	in := validInput()
	in.Budget = floatPtr(0)

	got, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Zero(t, got.Budget)
}

func TestTripService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TripInput)
		fields []string
	}{
		{"whitespace title", func(in *domain.TripInput) { in.Title = strPtr("   ") }, []string{"title"}},
		{"missing destination", func(in *domain.TripInput) { in.Destination = nil }, []string{"destination"}},
		{"zero days", func(in *domain.TripInput) { in.Days = intPtr(0) }, []string{"days"}},
		{"negative budget", func(in *domain.TripInput) { in.Budget = floatPtr(-1) }, []string{"budget"}},
		{"everything missing", func(in *domain.TripInput) { *in = domain.TripInput{} },
			[]string{"title", "destination", "days", "budget"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &mockTripRepo{
				create: func(context.Context, domain.Trip) (domain.Trip, error) {
					t.Fatal("repo.Create must not be called for invalid input")
					return domain.Trip{}, nil
				},
			}
			svc := service.NewTripService(r)

			in := validInput()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.fields, fieldNames(t, err))
		})
	}
}

func TestTripService_Create_Messages(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	_, err := svc.Create(context.Background(), domain.TripInput{})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []domain.FieldError{
		{Field: "title", Message: "Title is required"},
		{Field: "destination", Message: "Destination is required"},
		{Field: "days", Message: "Days must be a positive integer"},
		{Field: "budget", Message: "Budget must be a non-negative number"},
	}, verr.Fields)
}

func TestTripService_Create_RepoError(t *testing.T) {
	dbErr := errors.New("connection refused")
	r := &mockTripRepo{
		create: func(context.Context, domain.Trip) (domain.Trip, error) { return domain.Trip{}, dbErr },
	}
	pub := &recordingPublisher{}
	svc := service.NewTripService(r, service.WithPublisher(pub))

	_, err := svc.Create(context.Background(), validInput())

	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, pub.events, "no event for a failed write")
}

func TestTripService_Create_PublishesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	svc := service.NewTripService(echoRepo(), service.WithPublisher(pub))

	got, err := svc.Create(context.Background(), validInput())

	require.NoError(t, err)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TripCreated, pub.events[0].Type)
	assert.Equal(t, got, pub.events[0].Trip)
}

func TestTripService_Create_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := service.NewTripService(echoRepo(), service.WithPublisher(pub))

	_, err := svc.Create(context.Background(), validInput())

	assert.NoError(t, err)
}

// ---- GetByID tests ---------------------------------------------------------

func TestTripService_GetByID(t *testing.T) {
	want := storedTrip()
	r := &mockTripRepo{
		getByID: func(_ context.Context, id string) (domain.Trip, error) {
			assert.Equal(t, want.ID, id)
			return want, nil
		},
	}
	svc := service.NewTripService(r)

	got, err := svc.GetByID(context.Background(), want.ID)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTripService_GetByID_NotFound(t *testing.T) {
	r := &mockTripRepo{
		getByID: func(context.Context, string) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(r)

	_, err := svc.GetByID(context.Background(), "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_GetByID_Cached(t *testing.T) {
	var calls atomic.Int32
	r := &mockTripRepo{
		getByID: func(context.Context, string) (domain.Trip, error) {
			calls.Add(1)
			return storedTrip(), nil
		},
	}
	mem := cache.NewMemory(100)
	t.Cleanup(mem.Close)
	svc := service.NewTripService(r, service.WithCache(mem, time.Minute))

	first, err := svc.GetByID(context.Background(), storedTrip().ID)
	require.NoError(t, err)
	second, err := svc.GetByID(context.Background(), storedTrip().ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, first, second)
}

// caseInsensitiveRepo resolves ids regardless of letter case, as the stores
// do for hex ObjectIDs and UUIDs, and always returns the canonical lower-case id.
func caseInsensitiveRepo(current *domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, id string) (domain.Trip, error) {
			if !strings.EqualFold(id, current.ID) {
				return domain.Trip{}, domain.ErrNotFound
			}
			return *current, nil
		},
		update: func(_ context.Context, id string, in domain.TripInput) (domain.Trip, error) {
			if !strings.EqualFold(id, current.ID) {
				return domain.Trip{}, domain.ErrNotFound
			}
			*current = in.Apply(*current)
			return *current, nil
		},
	}
}

func TestTripService_GetByID_AlternateSpellingSeesUpdate(t *testing.T) {
	current := storedTrip()
	mem := cache.NewMemory(100)
	t.Cleanup(mem.Close)
	svc := service.NewTripService(caseInsensitiveRepo(&current), service.WithCache(mem, time.Minute))
	ctx := context.Background()
	upper := strings.ToUpper(current.ID)

	before, err := svc.GetByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, 150000.0, before.Budget)

	_, err = svc.Update(ctx, current.ID, domain.TripInput{Budget: floatPtr(99999)})
	require.NoError(t, err)

	after, err := svc.GetByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, 99999.0, after.Budget)
}

func TestTripService_Update_AlternateSpellingDropsCanonicalEntry(t *testing.T) {
	current := storedTrip()
	mem := cache.NewMemory(100)
	t.Cleanup(mem.Close)
	svc := service.NewTripService(caseInsensitiveRepo(&current), service.WithCache(mem, time.Minute))
	ctx := context.Background()

	_, err := svc.GetByID(ctx, current.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, strings.ToUpper(current.ID), domain.TripInput{Title: strPtr("Osaka Loop")})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, "Osaka Loop", got.Title)
}

// A write that lands between a cache miss and the cache fill must not leave
// the row read before it in the cache.
func TestTripService_GetByID_WriteDuringReadNotCached(t *testing.T) {
	current := storedTrip()
	mem := cache.NewMemory(100)
	t.Cleanup(mem.Close)

	var svc *service.TripService
	r := caseInsensitiveRepo(&current)
	inner := r.getByID
	var reads atomic.Int32
	r.getByID = func(ctx context.Context, id string) (domain.Trip, error) {
		stale, err := inner(ctx, id)
		if reads.Add(1) == 1 {
			_, uerr := svc.Update(ctx, id, domain.TripInput{Budget: floatPtr(1)})
			require.NoError(t, uerr)
		}
		return stale, err
	}
	svc = service.NewTripService(r, service.WithCache(mem, time.Minute))
	ctx := context.Background()

	first, err := svc.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, 150000.0, first.Budget)

	second, err := svc.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, second.Budget)
	assert.EqualValues(t, 2, reads.Load())
}

// ---- List tests ------------------------------------------------------------

func TestTripService_List(t *testing.T) {
	q := domain.TripQuery{
		Filter: domain.TripFilter{Search: "paris"},
		Page:   domain.PaginationParams{Page: 2, Limit: 5},
	}
	r := &mockTripRepo{
		list: func(_ context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error) {
			assert.Equal(t, q.Filter, f)
			assert.Equal(t, q.Page, p)
			return []domain.Trip{storedTrip(), storedTrip()}, nil
		},
		count: func(_ context.Context, f domain.TripFilter) (int64, error) {
			assert.Equal(t, q.Filter, f)
			return 12, nil
		},
	}
	svc := service.NewTripService(r)

	got, err := svc.List(context.Background(), q)

	require.NoError(t, err)
	assert.Len(t, got.Trips, 2)
	assert.EqualValues(t, 12, got.Total)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, 3, got.TotalPages)
}

func TestTripService_List_Empty(t *testing.T) {
	r := &mockTripRepo{
		list:  func(context.Context, domain.TripFilter, domain.PaginationParams) ([]domain.Trip, error) { return nil, nil },
		count: func(context.Context, domain.TripFilter) (int64, error) { return 0, nil },
	}
	svc := service.NewTripService(r)

	got, err := svc.List(context.Background(), domain.TripQuery{Page: domain.NewPaginationParams(nil, nil)})

	require.NoError(t, err)
	// Should return an empty slice, not nil: it must encode as [].
	assert.NotNil(t, got.Trips)
	assert.Empty(t, got.Trips)
	assert.Zero(t, got.TotalPages)
}

func TestTripService_List_CountAndPageRunConcurrently(t *testing.T) {
	// Each side waits for the other to start; a sequential implementation deadlocks.
	var started sync.WaitGroup
	started.Add(2)
	wait := func() {
		started.Done()
		started.Wait()
	}
	r := &mockTripRepo{
		list: func(context.Context, domain.TripFilter, domain.PaginationParams) ([]domain.Trip, error) {
			wait()
			return nil, nil
		},
		count: func(context.Context, domain.TripFilter) (int64, error) {
			wait()
			return 0, nil
		},
	}
	svc := service.NewTripService(r)

	done := make(chan error, 1)
	go func() {
		_, err := svc.List(context.Background(), domain.TripQuery{Page: domain.NewPaginationParams(nil, nil)})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("count and page fetch did not run concurrently")
	}
}

func TestTripService_List_RepoError(t *testing.T) {
	dbErr := errors.New("timeout")
	r := &mockTripRepo{
		list:  func(context.Context, domain.TripFilter, domain.PaginationParams) ([]domain.Trip, error) { return nil, nil },
		count: func(context.Context, domain.TripFilter) (int64, error) { return 0, dbErr },
	}
	svc := service.NewTripService(r)

	_, err := svc.List(context.Background(), domain.TripQuery{Page: domain.NewPaginationParams(nil, nil)})

	assert.ErrorIs(t, err, dbErr)
}

func TestTripService_List_CacheInvalidatedByWrite(t *testing.T) {
	var listCalls atomic.Int32
	r := echoRepo()
	r.list = func(context.Context, domain.TripFilter, domain.PaginationParams) ([]domain.Trip, error) {
		listCalls.Add(1)
		return []domain.Trip{storedTrip()}, nil
	}
	r.count = func(context.Context, domain.TripFilter) (int64, error) { return 1, nil }

	mem := cache.NewMemory(100)
	t.Cleanup(mem.Close)
	svc := service.NewTripService(r, service.WithCache(mem, time.Minute))
	ctx := context.Background()
	q := domain.TripQuery{Page: domain.NewPaginationParams(nil, nil)}

	_, err := svc.List(ctx, q)
	require.NoError(t, err)
	_, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, listCalls.Load(), "second list served from cache")

	_, err = svc.Create(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 2, listCalls.Load(), "write must orphan cached pages")
}

// ---- Update tests ----------------------------------------------------------

func TestTripService_Update_BudgetOnly(t *testing.T) {
	svc := service.NewTripService(echoRepo())
	before := storedTrip()

	got, err := svc.Update(context.Background(), before.ID, domain.TripInput{Budget: floatPtr(99999)})

	require.NoError(t, err)
	assert.Equal(t, 99999.0, got.Budget)
	assert.Equal(t, before.Title, got.Title)
	assert.Equal(t, before.Destination, got.Destination)
	assert.Equal(t, before.Days, got.Days)
	assert.Equal(t, before.CreatedAt, got.CreatedAt)
}

func TestTripService_Update_InvalidPresentField(t *testing.T) {
	r := &mockTripRepo{
		update: func(context.Context, string, domain.TripInput) (domain.Trip, error) {
			t.Fatal("repo.Update must not be called for invalid input")
			return domain.Trip{}, nil
		},
	}
	svc := service.NewTripService(r)

	// Budget is valid but days is not: all-or-nothing.
	_, err := svc.Update(context.Background(), "id", domain.TripInput{
		Days:   intPtr(-3),
		Budget: floatPtr(10),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"days"}, fieldNames(t, err))
}

func TestTripService_Update_EmptyTitleRejected(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	_, err := svc.Update(context.Background(), "id", domain.TripInput{Title: strPtr("  ")})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Update_NotFound(t *testing.T) {
	r := &mockTripRepo{
		update: func(context.Context, string, domain.TripInput) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewTripService(r)

	_, err := svc.Update(context.Background(), "missing", domain.TripInput{Days: intPtr(2)})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Update_RefreshesCachedTrip(t *testing.T) {
	current := storedTrip()
	r := &mockTripRepo{
		getByID: func(context.Context, string) (domain.Trip, error) { return current, nil },
		update: func(_ context.Context, _ string, in domain.TripInput) (domain.Trip, error) {
			current = in.Apply(current)
			return current, nil
		},
	}
	mem := cache.NewMemory(100)
	t.Cleanup(mem.Close)
	pub := &recordingPublisher{}
	svc := service.NewTripService(r, service.WithCache(mem, time.Minute), service.WithPublisher(pub))
	ctx := context.Background()

	_, err := svc.GetByID(ctx, current.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, current.ID, domain.TripInput{Title: strPtr("Kyoto Detour")})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, current.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kyoto Detour", got.Title)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TripUpdated, pub.events[0].Type)
}

// ---- Export tests ----------------------------------------------------------

func TestTripService_Export_WalksAllPages(t *testing.T) {
	const total = 2*domain.MaxLimit + 7
	var pages []int
	r := &mockTripRepo{
		list: func(_ context.Context, _ domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error) {
			pages = append(pages, p.Page)
			n := total - p.Offset()
			if n > p.Limit {
				n = p.Limit
			}
			if n < 0 {
				n = 0
			}
			return make([]domain.Trip, n), nil
		},
	}
	svc := service.NewTripService(r)

	got, err := svc.Export(context.Background(), domain.TripFilter{})

	require.NoError(t, err)
	assert.Len(t, got, total)
	assert.Equal(t, []int{1, 2, 3}, pages)
}

func TestTripService_Export_Empty(t *testing.T) {
	r := &mockTripRepo{
		list: func(context.Context, domain.TripFilter, domain.PaginationParams) ([]domain.Trip, error) { return nil, nil },
	}
	svc := service.NewTripService(r)

	got, err := svc.Export(context.Background(), domain.TripFilter{})

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
