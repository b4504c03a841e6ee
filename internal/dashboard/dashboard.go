// Package dashboard holds the state of the trip listing screen: the current
// page, the search and destination filters, and the outcome of the latest
// fetch. Keystrokes are debounced; page and destination changes fetch at once.
//
// Every fetch is numbered. Only the response to the most recently issued fetch
// is applied; older responses that arrive late are discarded.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/internal/tripclient"
)

// DebounceDelay is how long typing must pause before a search is committed.
const DebounceDelay = 300 * time.Millisecond

// Lister fetches one page of trips. *tripclient.Client satisfies it.
type Lister interface {
	ListTrips(ctx context.Context, p tripclient.ListParams) (domain.TripPage, error)
}

// State is a snapshot of the dashboard.
type State struct {
	Trips      []domain.Trip
	Page       int
	TotalPages int

	// SearchTerm is the raw input; EffectiveSearch is the debounced term the
	// listing is filtered by.
	SearchTerm      string
	EffectiveSearch string
	Destination     string

	// Destinations accumulates every destination seen on unfiltered pages,
	// sorted and deduplicated. It only grows.
	Destinations []string

	Loading   bool
	Searching bool
	// Err is the message of the latest failed fetch, empty otherwise.
	Err string
}

func (s State) clone() State {
	s.Trips = slices.Clone(s.Trips)
	s.Destinations = slices.Clone(s.Destinations)
	return s
}

// Dashboard is safe for concurrent use.
type Dashboard struct {
	lister   Lister
	debounce *Debouncer
	pageSize int
	onChange func(State)
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	seq        uint64
	lastParams tripclient.ListParams
	closed     bool
}

// Option configures a Dashboard.
type Option func(*config)

type config struct {
	clock    Clock
	delay    time.Duration
	pageSize int
	onChange func(State)
	log      *slog.Logger
}

// WithClock replaces the system clock used for debouncing.
func WithClock(c Clock) Option { return func(cfg *config) { cfg.clock = c } }

// WithDebounceDelay overrides DebounceDelay.
func WithDebounceDelay(d time.Duration) Option { return func(cfg *config) { cfg.delay = d } }

// WithPageSize sets the number of trips per page. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(cfg *config) {
		if n >= 1 {
			cfg.pageSize = n
		}
	}
}

// WithOnChange registers a callback invoked with a snapshot after every state
// change, in order. It runs with the dashboard locked and must not call back
// into the Dashboard.
func WithOnChange(f func(State)) Option { return func(cfg *config) { cfg.onChange = f } }

// WithLogger sets the logger for discarded responses and failed fetches.
func WithLogger(l *slog.Logger) Option { return func(cfg *config) { cfg.log = l } }

// New returns a Dashboard on page 1 with no filters. No fetch is issued
// until Refresh or another action is called.
func New(lister Lister, opts ...Option) *Dashboard {
	cfg := config{
		clock:    SystemClock{},
		delay:    DebounceDelay,
		pageSize: domain.DefaultLimit,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		lister:   lister,
		debounce: NewDebouncer(cfg.clock, cfg.delay),
		pageSize: cfg.pageSize,
		onChange: cfg.onChange,
		log:      cfg.log,
		ctx:      ctx,
		cancel:   cancel,
		state:    State{Page: domain.DefaultPage, Trips: []domain.Trip{}},
	}
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// SetSearchTerm records a keystroke. The term is committed, and page 1 of the
// results fetched, once no further keystroke arrives within the debounce delay.
func (d *Dashboard) SetSearchTerm(term string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.state.SearchTerm = term
	d.state.Searching = true
	d.notifyLocked()
	d.mu.Unlock()

	d.debounce.Schedule(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed {
			return
		}
		d.state.EffectiveSearch = term
		d.state.Page = domain.DefaultPage
		d.fetchLocked(d.paramsLocked())
	})
}

// FlushSearch commits a pending search term immediately instead of waiting
// for the debounce delay.
func (d *Dashboard) FlushSearch() bool {
	return d.debounce.Flush()
}

// SetPage moves to page (values below 1 mean 1) and fetches it immediately.
func (d *Dashboard) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	d.update(func(s *State) bool {
		s.Page = page
		return true
	})
}

// NextPage advances one page if there is one. It reports whether it moved.
func (d *Dashboard) NextPage() bool {
	return d.update(func(s *State) bool {
		if s.Page >= s.TotalPages {
			return false
		}
		s.Page++
		return true
	})
}

// PrevPage goes back one page if not on the first. It reports whether it moved.
func (d *Dashboard) PrevPage() bool {
	return d.update(func(s *State) bool {
		if s.Page <= 1 {
			return false
		}
		s.Page--
		return true
	})
}

// SetDestination filters by destination (empty clears the filter), returns to
// page 1 and fetches immediately.
func (d *Dashboard) SetDestination(destination string) {
	d.update(func(s *State) bool {
		s.Destination = destination
		s.Page = domain.DefaultPage
		return true
	})
}

// Refresh fetches the current page with the current filters.
func (d *Dashboard) Refresh() {
	d.update(func(*State) bool { return true })
}

// Retry re-issues the most recent fetch with the same parameters.
func (d *Dashboard) Retry() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.seq == 0 {
		d.fetchLocked(d.paramsLocked())
		return
	}
	d.fetchLocked(d.lastParams)
}

// Wait blocks until every fetch issued so far has completed.
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Close cancels the pending debounce and any in-flight fetch, then waits for
// fetch goroutines to exit. Later actions are ignored.
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.debounce.Cancel()
	d.cancel()
	d.wg.Wait()
}

// update applies mutate and, when it reports a change, fetches.
func (d *Dashboard) update(mutate func(*State) bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !mutate(&d.state) {
		return false
	}
	d.fetchLocked(d.paramsLocked())
	return true
}

func (d *Dashboard) paramsLocked() tripclient.ListParams {
	return tripclient.ListParams{
		Page:        d.state.Page,
		Limit:       d.pageSize,
		Search:      d.state.EffectiveSearch,
		Destination: d.state.Destination,
	}
}

// fetchLocked issues a fetch for p in the background and marks the state loading.
func (d *Dashboard) fetchLocked(p tripclient.ListParams) {
	d.seq++
	seq := d.seq
	d.lastParams = p
	d.state.Loading = true
	d.state.Err = ""

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		page, err := d.lister.ListTrips(d.ctx, p)
		d.complete(seq, p, page, err)
	}()

	d.notifyLocked()
}

// complete applies the outcome of fetch seq if it is still the latest.
func (d *Dashboard) complete(seq uint64, p tripclient.ListParams, page domain.TripPage, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq || d.closed {
		d.log.Debug("discarding stale trip page", "seq", seq, "page", p.Page)
		return
	}

	if err != nil {
		d.log.Warn("trip fetch failed", "page", p.Page, "error", err)
		d.state.Err = errorMessage(err)
		d.state.Trips = []domain.Trip{}
		d.state.TotalPages = 0
	} else {
		d.state.Trips = page.Trips
		if d.state.Trips == nil {
			d.state.Trips = []domain.Trip{}
		}
		d.state.TotalPages = page.TotalPages
		if p.Destination == "" && p.Search == "" {
			d.state.Destinations = mergeDestinations(d.state.Destinations, page.Trips)
		}
	}
	d.state.Loading = false
	// A keystroke may have arrived while this fetch was in flight.
	d.state.Searching = d.debounce.Pending()
	d.notifyLocked()
}

func (d *Dashboard) notifyLocked() {
	if d.onChange != nil {
		d.onChange(d.state.clone())
	}
}

// errorMessage is the text shown for a failed fetch.
func errorMessage(err error) string {
	var apiErr *tripclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}
	return "Failed to fetch trips: " + err.Error()
}

// mergeDestinations returns the sorted union of have and the destinations of trips.
func mergeDestinations(have []string, trips []domain.Trip) []string {
	seen := make(map[string]struct{}, len(have)+len(trips))
	out := make([]string, 0, len(have)+len(trips))
	for _, d := range have {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	for _, t := range trips {
		if _, ok := seen[t.Destination]; !ok {
			seen[t.Destination] = struct{}{}
			out = append(out, t.Destination)
		}
	}
	slices.Sort(out)
	return out
}
