// Package dashboard owns the installed data and the filter state, and
// recomputes the view whenever either changes.
//
// The baseline is installed at construction. The cube and the demographic
// tables arrive later, each exactly once, from background loads. Every install
// bumps the data version, which invalidates memoized results, and notifies
// subscribers with a fresh result so the view updates without a filter action.
package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/logger"
)

// ErrAlreadyInstalled is returned by a second install of the same asset.
var ErrAlreadyInstalled = errors.New("already installed")

// DefaultCacheTTL is how long a memoized result is kept.
const DefaultCacheTTL = 10 * time.Minute

// Dashboard is safe for concurrent use. Filter updates are serialized.
type Dashboard struct {
	mu         sync.RWMutex
	baseline   *engine.Baseline
	regions    engine.RegionIndex
	cube       []engine.GranularRecord
	dimensions *engine.DimensionTables
	state      engine.FilterState
	version    uint64

	writer sync.Mutex

	subMu  sync.Mutex
	subs   map[int]func(*engine.Result)
	nextID int

	memo       *gocache.Cache
	engineOpts []engine.Option
	log        *logger.Logger
}

// Option configures a Dashboard.
type Option func(*settings)

type settings struct {
	ttl        time.Duration
	engineOpts []engine.Option
	log        *logger.Logger
}

// WithCacheTTL sets the memo lifetime. Zero or negative disables expiry.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithEngineOptions passes options to every engine.Compute call.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *settings) { s.engineOpts = append(s.engineOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a dashboard over a loaded baseline. regions may be nil.
func New(baseline *engine.Baseline, regions engine.RegionIndex, opts ...Option) *Dashboard {
	s := settings{ttl: DefaultCacheTTL, log: logger.Nop()}
	for _, o := range opts {
		o(&s)
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	if baseline == nil {
		baseline = engine.NewBaseline(engine.Metadata{}, engine.Kpis{}, engine.AggregatedView{})
	}
	return &Dashboard{
		baseline:   baseline,
		regions:    regions,
		subs:       make(map[int]func(*engine.Result)),
		memo:       gocache.New(ttl, 2*ttl),
		engineOpts: append(s.engineOpts, engine.WithLogger(s.log)),
		log:        s.log,
	}
}

// ============================================================================
// INSTALLS
// ============================================================================

// InstallCube installs the granular cube. A nil cube is installed as empty.
func (d *Dashboard) InstallCube(cube []engine.GranularRecord) error {
	if cube == nil {
		cube = []engine.GranularRecord{}
	}
	d.mu.Lock()
	if d.cube != nil {
		d.mu.Unlock()
		return fmt.Errorf("cube: %w", ErrAlreadyInstalled)
	}
	d.cube = cube
	d.version++
	d.mu.Unlock()

	d.log.Debug("🔧 painel: cube installed", "records", len(cube))
	d.notify(d.Current())
	return nil
}

// InstallDimensions installs the demographic tables.
func (d *Dashboard) InstallDimensions(dims *engine.DimensionTables) error {
	if dims == nil {
		dims = &engine.DimensionTables{}
	}
	d.mu.Lock()
	if d.dimensions != nil {
		d.mu.Unlock()
		return fmt.Errorf("dimensions: %w", ErrAlreadyInstalled)
	}
	d.dimensions = dims
	d.version++
	d.mu.Unlock()

	d.log.Debug("🔧 painel: dimensions installed")
	d.notify(d.Current())
	return nil
}

// ============================================================================
// READS
// ============================================================================

// Snapshot returns the installed data.
func (d *Dashboard) Snapshot() engine.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshotLocked()
}

func (d *Dashboard) snapshotLocked() engine.Snapshot {
	return engine.Snapshot{
		Baseline:   d.baseline,
		Cube:       d.cube,
		Dimensions: d.dimensions,
		Regions:    d.regions,
	}
}

// State returns the current filter state.
func (d *Dashboard) State() engine.FilterState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Degraded reports whether the cube is still missing.
func (d *Dashboard) Degraded() bool {
	return engine.IsDegraded(d.Snapshot().CubeLoaded())
}

// Current returns the result for the current filter state.
func (d *Dashboard) Current() *engine.Result {
	d.mu.RLock()
	snap, state, version := d.snapshotLocked(), d.state, d.version
	d.mu.RUnlock()
	return d.compute(snap, state, version)
}

// Query computes the result for an arbitrary state without changing the
// dashboard's own state.
func (d *Dashboard) Query(state engine.FilterState) *engine.Result {
	d.mu.RLock()
	snap, version := d.snapshotLocked(), d.version
	d.mu.RUnlock()
	return d.compute(snap, state, version)
}

func (d *Dashboard) compute(snap engine.Snapshot, state engine.FilterState, version uint64) *engine.Result {
	key := memoKey(version, state)
	if v, ok := d.memo.Get(key); ok {
		return v.(*engine.Result)
	}
	r := engine.Compute(snap, state, d.engineOpts...)
	d.memo.SetDefault(key, r)
	return r
}

func memoKey(version uint64, state engine.FilterState) string {
	return fmt.Sprintf("v%d/%016x", version, state.Hash())
}

// ============================================================================
// WRITES
// ============================================================================

// Update applies fn to the filter state, recomputes and notifies
// subscribers. Updates are serialized; fn must not call back into d.
func (d *Dashboard) Update(fn func(*engine.FilterState)) *engine.Result {
	d.writer.Lock()
	defer d.writer.Unlock()

	d.mu.Lock()
	next := d.state
	fn(&next)
	changed := next != d.state
	d.state = next
	d.mu.Unlock()

	r := d.Current()
	if changed {
		d.log.Debug("🔧 painel: filters changed", "filters", next.Label(), "mode", r.Mode.String())
		d.notify(r)
	}
	return r
}

// Subscribe registers fn to receive every recomputed result. The returned
// function unsubscribes.
func (d *Dashboard) Subscribe(fn func(*engine.Result)) (cancel func()) {
	d.subMu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = fn
	d.subMu.Unlock()

	return func() {
		d.subMu.Lock()
		delete(d.subs, id)
		d.subMu.Unlock()
	}
}

func (d *Dashboard) notify(r *engine.Result) {
	d.subMu.Lock()
	ids := make([]int, 0, len(d.subs))
	for id := range d.subs {
		ids = append(ids, id)
	}
	fns := make([]func(*engine.Result), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, d.subs[id])
	}
	d.subMu.Unlock()

	for _, fn := range fns {
		fn(r)
	}
}
