// Package loader fetches and decodes the dashboard assets.
//
// Startup has two phases. Bootstrap loads the baseline bundle and the
// geography concurrently; only a baseline failure is fatal. Start then loads
// the granular cube and the demographic tables in two independent background
// goroutines; their failures are logged and leave the dashboard degraded.
package loader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/geo"
	"github.com/spektr-org/painel/logger"
)

// Assets names the four files relative to the source.
type Assets struct {
	Baseline   string `yaml:"baseline"`
	Geography  string `yaml:"geography"`
	Cube       string `yaml:"cube"`
	Dimensions string `yaml:"dimensions"`
}

// DefaultAssets is the layout the data pipeline publishes.
func DefaultAssets() Assets {
	return Assets{
		Baseline:   "data/aggregated_full.json",
		Geography:  "assets/mun_PR.json",
		Cube:       "data/granular_cube.json",
		Dimensions: "data/granular_dimensions.json",
	}
}

// CubeFunc produces the granular cube from somewhere other than the source.
type CubeFunc func(ctx context.Context) ([]engine.GranularRecord, error)

// DimensionsFunc produces the demographic tables from somewhere other than the source.
type DimensionsFunc func(ctx context.Context) (*engine.DimensionTables, error)

// Installer receives background loads. Each method is called at most once.
type Installer interface {
	InstallCube(cube []engine.GranularRecord) error
	InstallDimensions(dims *engine.DimensionTables) error
}

// Loader ties a Source to the asset layout.
type Loader struct {
	src        Source
	assets     Assets
	keys       geo.PropertyKeys
	cube       CubeFunc
	dimensions DimensionsFunc
	log        *logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithAssets overrides asset names; empty fields keep their defaults.
func WithAssets(a Assets) Option {
	return func(l *Loader) {
		if a.Baseline != "" {
			l.assets.Baseline = a.Baseline
		}
		if a.Geography != "" {
			l.assets.Geography = a.Geography
		}
		if a.Cube != "" {
			l.assets.Cube = a.Cube
		}
		if a.Dimensions != "" {
			l.assets.Dimensions = a.Dimensions
		}
	}
}

// WithPropertyKeys sets the GeoJSON property names.
func WithPropertyKeys(k geo.PropertyKeys) Option {
	return func(l *Loader) { l.keys = k }
}

// WithCubeFrom replaces the cube asset, e.g. with a SQLite snapshot.
func WithCubeFrom(fn CubeFunc) Option {
	return func(l *Loader) { l.cube = fn }
}

// WithDimensionsFrom replaces the dimensions asset.
func WithDimensionsFrom(fn DimensionsFunc) Option {
	return func(l *Loader) { l.dimensions = fn }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Loader reading from src.
func New(src Source, opts ...Option) *Loader {
	l := &Loader{
		src:    src,
		assets: DefaultAssets(),
		keys:   geo.DefaultPropertyKeys(),
		log:    logger.Nop(),
	}
	for _, o := range opts {
		o(l)
	}
	if l.cube == nil {
		l.cube = func(ctx context.Context) ([]engine.GranularRecord, error) {
			return LoadCube(ctx, l.src, l.assets.Cube)
		}
	}
	if l.dimensions == nil {
		l.dimensions = func(ctx context.Context) (*engine.DimensionTables, error) {
			return LoadDimensions(ctx, l.src, l.assets.Dimensions)
		}
	}
	return l
}

// ============================================================================
// PHASE 1 — MANDATORY
// ============================================================================

// Bootstrap loads the baseline and geography concurrently. A geography
// failure is logged and yields an empty index.
func (l *Loader) Bootstrap(ctx context.Context) (*engine.Baseline, *geo.Index, error) {
	var (
		baseline *engine.Baseline
		index    *geo.Index
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := LoadBaseline(gctx, l.src, l.assets.Baseline)
		if err != nil {
			return fmt.Errorf("loading baseline %s: %w", l.assets.Baseline, err)
		}
		baseline = b
		return nil
	})
	g.Go(func() error {
		idx, err := LoadGeography(gctx, l.src, l.assets.Geography, l.keys)
		if err != nil {
			l.log.Warn("⚠️ painel: geography unavailable, regional filters disabled", "asset", l.assets.Geography, "error", err)
			index = geo.Build(nil)
			return nil
		}
		index = idx
		return nil
	})
	if err := g.Wait(); err != nil {
		l.log.Error("❌ painel: baseline load failed", "error", err)
		return nil, nil, err
	}

	l.log.Info("✅ painel: baseline loaded",
		"chains", len(baseline.Tables.ByChain),
		"periods", len(baseline.Tables.Timeseries),
		"municipalities", index.Len())
	return baseline, index, nil
}

// ============================================================================
// PHASE 2 — BACKGROUND
// ============================================================================

// Background tracks the two optional loads started by Start.
type Background struct {
	wg sync.WaitGroup

	mu      sync.Mutex
	cubeErr error
	dimsErr error
}

// Start launches the cube and dimension loads. Neither waits for the other;
// each installs into inst on success. Failures are logged, never returned.
func (l *Loader) Start(ctx context.Context, inst Installer) *Background {
	bg := &Background{}
	bg.wg.Add(2)

	go func() {
		defer bg.wg.Done()
		cube, err := l.cube(ctx)
		if err == nil {
			err = inst.InstallCube(cube)
		}
		if err != nil {
			l.log.Warn("⚠️ painel: granular cube unavailable, running degraded", "error", err)
		} else {
			l.log.Info("✅ painel: granular cube installed", "records", len(cube))
		}
		bg.setErr(&bg.cubeErr, err)
	}()

	go func() {
		defer bg.wg.Done()
		dims, err := l.dimensions(ctx)
		if err == nil {
			err = inst.InstallDimensions(dims)
		}
		if err != nil {
			l.log.Warn("⚠️ painel: demographic tables unavailable", "error", err)
		} else {
			l.log.Info("✅ painel: demographic tables installed",
				"sexo", len(dims.BySex),
				"faixa", len(dims.ByAgeBand),
				"escolaridade", len(dims.ByEducation),
				"porte", len(dims.ByCompanySize))
		}
		bg.setErr(&bg.dimsErr, err)
	}()

	return bg
}

func (b *Background) setErr(dst *error, err error) {
	b.mu.Lock()
	*dst = err
	b.mu.Unlock()
}

// Wait blocks until both background loads have finished.
func (b *Background) Wait() {
	b.wg.Wait()
}

// Errors returns the cube and dimension load errors. Valid after Wait.
func (b *Background) Errors() (cube, dimensions error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cubeErr, b.dimsErr
}
