// Package service contains the business logic for the Trip Planner API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No queries live here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/tripplanner/backend/internal/cache"
	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/internal/events"
	"github.com/tripplanner/backend/internal/repo"
)

// Cache keys. List pages are keyed by the current generation, which every
// write bumps, so a write orphans every cached page at once.
const (
	genKey        = "trips:gen"
	tripKeyPrefix = "trip:"
	listKeyPrefix = "trips:list:"
)

// exportPageSize is the page size Export walks the store with.
const exportPageSize = domain.MaxLimit

// TripService implements business logic for Trip operations.
type TripService struct {
	repo     repo.TripRepo
	validate *validator.Validate
	cache    cache.Cache
	cacheTTL time.Duration
	events   events.Publisher
	log      *slog.Logger
}

// Option configures a TripService.
type Option func(*TripService)

// WithCache enables read-through caching of trips and list pages.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *TripService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPublisher publishes an event after every successful write.
func WithPublisher(p events.Publisher) Option {
	return func(s *TripService) { s.events = p }
}

// WithLogger sets the logger used for cache and publisher failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *TripService) { s.log = l }
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// Without options it neither caches nor publishes.
func NewTripService(r repo.TripRepo, opts ...Option) *TripService {
	s := &TripService{
		repo:     r,
		validate: newValidator(),
		cache:    cache.Nop{},
		events:   events.Nop{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new trip.
// Returns a *domain.ValidationError (matching domain.ErrValidation) if any
// field is missing or violates its rule; nothing is persisted in that case.
func (s *TripService) Create(ctx context.Context, in domain.TripInput) (domain.Trip, error) {
	in = in.Normalize()
	if err := validateInput(s.validate, in, true); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.repo.Create(ctx, in.ToTrip())
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}

	s.invalidate(ctx, "")
	s.publish(ctx, events.TripCreated, result)
	return result, nil
}

// GetByID returns a single trip by ID.
// Returns domain.ErrNotFound if the id is unknown or malformed.
//
// Only the canonical id is cached: the stores accept other spellings of the
// same id, and a write can only drop the entry under the id it returns.
func (s *TripService) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	key := tripKeyPrefix + id
	var cached domain.Trip
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.generation(ctx)
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}

	// A write that landed during the read bumped the generation; caching the
	// row read before it would resurrect the old version.
	if result.ID == id && s.generation(ctx) == gen {
		s.cacheSet(ctx, key, result)
	}
	return result, nil
}

// List returns one page of trips matching q, newest first, with the total
// match count. The count and the page are fetched concurrently.
func (s *TripService) List(ctx context.Context, q domain.TripQuery) (domain.TripPage, error) {
	key := listKeyPrefix + s.generation(ctx) + ":" + q.CacheKey()
	var cached domain.TripPage
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	var (
		trips []domain.Trip
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trips, err = s.repo.List(gctx, q.Filter, q.Page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, q.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TripPage{}, fmt.Errorf("service.TripService.List: %w", err)
	}

	page := domain.NewTripPage(trips, total, q.Page)
	s.cacheSet(ctx, key, page)
	return page, nil
}

// Update validates the present fields of in and applies them to the trip in a
// single write. Absent fields are left unchanged. An input with no fields
// returns the current record.
// Returns a *domain.ValidationError if any present field is invalid (nothing
// is written), domain.ErrNotFound if the id does not resolve.
func (s *TripService) Update(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error) {
	in = in.Normalize()
	if err := validateInput(s.validate, in, false); err != nil {
		return domain.Trip{}, err
	}

	result, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}

	if !in.IsEmpty() {
		s.invalidate(ctx, result.ID)
		s.publish(ctx, events.TripUpdated, result)
	}
	return result, nil
}

// Export returns every trip matching f, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) Export(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	all := []domain.Trip{}
	for page := 1; ; page++ {
		p := domain.PaginationParams{Page: page, Limit: exportPageSize}
		trips, err := s.repo.List(ctx, f, p)
		if err != nil {
			return nil, fmt.Errorf("service.TripService.Export: page %d: %w", page, err)
		}
		all = append(all, trips...)
		if len(trips) < exportPageSize {
			return all, nil
		}
	}
}

// generation returns the current list-cache generation, "0" if none was ever bumped.
func (s *TripService) generation(ctx context.Context) string {
	raw, ok := s.cache.Get(ctx, genKey)
	if !ok {
		return "0"
	}
	return string(raw)
}

// invalidate orphans every cached list page and drops the cached copy of id
// (when set). The generation is bumped first so a read racing the write sees
// the change and skips repopulating the entry.
func (s *TripService) invalidate(ctx context.Context, id string) {
	if _, err := s.cache.Incr(ctx, genKey); err != nil {
		s.log.WarnContext(ctx, "cache generation bump failed", "error", err)
	}
	if id != "" {
		s.cache.Delete(ctx, tripKeyPrefix+id)
	}
}

func (s *TripService) cacheGet(ctx context.Context, key string, dst any) bool {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.WarnContext(ctx, "cache entry unreadable", "key", key, "error", err)
		s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *TripService) cacheSet(ctx context.Context, key string, v any) {
	if _, ok := s.cache.(cache.Nop); ok {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.WarnContext(ctx, "cache entry not encodable", "key", key, "error", err)
		return
	}
	s.cache.Set(ctx, key, raw, s.cacheTTL)
}

func (s *TripService) publish(ctx context.Context, eventType string, trip domain.Trip) {
	if err := s.events.Publish(ctx, events.NewTripEvent(eventType, trip)); err != nil {
		s.log.WarnContext(ctx, "trip event not published",
			"type", eventType, "trip_id", trip.ID, "error", err)
	}
}

