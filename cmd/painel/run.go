package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/painel/config"
	"github.com/spektr-org/painel/dashboard"
	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/loader"
	"github.com/spektr-org/painel/logger"
	"github.com/spektr-org/painel/store"
)

// queryFlags are the filter and output flags of the default command.
type queryFlags struct {
	common *commonFlags

	filters      string
	meso         string
	sub          string
	municipality string
	chain        string
	sex          string
	ageBand      string
	education    string
	period       string

	format       string
	out          string
	tables       string
	baselineOnly bool
}

func bindQuery() (*flag.FlagSet, *queryFlags) {
	fs := newFlagSet("query")
	q := &queryFlags{common: bindCommon(fs)}
	fs.StringVar(&q.filters, "filters", "", "YAML file with a saved filter selection")
	fs.StringVar(&q.meso, "meso", "", "Meso-region")
	fs.StringVar(&q.sub, "sub", "", "Sub-region")
	fs.StringVar(&q.municipality, "mun", "", "Municipality code (6 digits)")
	fs.StringVar(&q.chain, "cadeia", "", "Production chain")
	fs.StringVar(&q.sex, "sexo", "", "Sex")
	fs.StringVar(&q.ageBand, "faixa", "", "Age band")
	fs.StringVar(&q.education, "escolaridade", "", "Education level")
	fs.StringVar(&q.period, "periodo", "", "Period (YYYY-MM)")
	fs.StringVar(&q.format, "format", "json", "Output format: json, pretty, text, csv, xlsx")
	fs.StringVar(&q.out, "out", "", "Write output to file instead of stdout")
	fs.StringVar(&q.tables, "tables", "", "Comma-separated table keys for csv/xlsx (default all)")
	fs.BoolVar(&q.baselineOnly, "baseline-only", false, "Skip the granular cube and demographic tables")
	return fs, q
}

func runQuery(args []string) {
	fs, q := bindQuery()
	fs.Usage = usage
	_ = fs.Parse(args)

	cfg, err := q.common.resolve()
	if err != nil {
		fatalf("%v", err)
	}
	log := newLogger(cfg)
	defer log.Sync()

	state, err := q.state()
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dash, closeFn := openDashboard(ctx, cfg, log, q.baselineOnly)
	defer closeFn()

	result := dash.Update(func(s *engine.FilterState) { *s = state })
	log.Debug("🔧 painel: view computed", "mode", result.Mode.String(), "filters", state.Label())

	writer := os.Stdout
	if q.out != "" {
		f, err := os.Create(q.out)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	} else if q.format == "xlsx" {
		fatalf("--format xlsx requires --out")
	}

	if err := render(writer, result, q.format, splitList(q.tables)); err != nil {
		fatalf("%v", err)
	}
	if q.out != "" {
		reportWritten(log, q.out)
	}
}

// state builds the filter selection: the saved file first, then flags on top.
// Regional flags go through the cascading setters.
func (q *queryFlags) state() (engine.FilterState, error) {
	var s engine.FilterState
	if q.filters != "" {
		b, err := os.ReadFile(q.filters)
		if err != nil {
			return s, err
		}
		if err := yaml.Unmarshal(b, &s); err != nil {
			return s, err
		}
	}
	if q.meso != "" {
		s.SetMeso(q.meso)
	}
	if q.sub != "" {
		s.SetSub(q.sub)
	}
	if q.municipality != "" {
		s.SetMunicipality(q.municipality)
	}
	for dim, v := range map[engine.Interactive]string{
		engine.InteractiveChain:     q.chain,
		engine.InteractiveSex:       q.sex,
		engine.InteractiveAgeBand:   q.ageBand,
		engine.InteractiveEducation: q.education,
		engine.InteractivePeriod:    q.period,
	} {
		if v != "" {
			s.ToggleInteractive(dim, v)
		}
	}
	return s, nil
}

// openDashboard runs both load phases. Baseline errors are fatal; the granular
// loads are awaited so the printed view reflects whatever could be loaded.
func openDashboard(ctx context.Context, cfg config.ResolvedConfig, log *logger.Logger, baselineOnly bool) (*dashboard.Dashboard, func()) {
	timeout, err := cfg.Timeout()
	if err != nil {
		fatalf("%v", err)
	}
	ttl, err := cfg.TTL()
	if err != nil {
		fatalf("%v", err)
	}
	top, err := cfg.TopN()
	if err != nil {
		fatalf("%v", err)
	}

	src, err := loader.NewSource(cfg.Base.Value, timeout)
	if err != nil {
		fatalf("%v (base from %s)", err, cfg.Base.From)
	}

	opts := []loader.Option{
		loader.WithAssets(cfg.Assets()),
		loader.WithPropertyKeys(cfg.PropertyKeys()),
		loader.WithLogger(log),
	}

	closeFn := func() {}
	if path := cfg.Snapshot.Value; path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			st, err := store.Open(store.Config{DBPath: path})
			if err != nil {
				fatalf("Failed to open snapshot: %v", err)
			}
			closeFn = func() { _ = st.Close() }
			opts = append(opts, loader.WithCubeFrom(st.LoadCube), loader.WithDimensionsFrom(st.LoadDimensions))
			log.Info("📦 painel: granular data from snapshot", "path", path)
		} else {
			log.Warn("⚠️ painel: snapshot not found, using JSON assets", "path", path)
		}
	}

	l := loader.New(src, opts...)
	baseline, regions, err := l.Bootstrap(ctx)
	if err != nil {
		closeFn()
		fatalf("%v", err)
	}

	dash := dashboard.New(baseline, regions,
		dashboard.WithCacheTTL(ttl),
		dashboard.WithLogger(log),
		dashboard.WithEngineOptions(
			engine.WithTopMunicipalities(top),
			engine.WithFallbackColor(cfg.FallbackColor.Value),
		),
	)

	if !baselineOnly {
		bg := l.Start(ctx, dash)
		bg.Wait()
	}
	return dash, closeFn
}
