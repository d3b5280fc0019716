package engine

// ============================================================================
// EXECUTOR — Mode Dispatch + Aggregation Pipeline
// ============================================================================
// Entry point: Compute(snapshot, state, opts...)
//
// Pipeline:
//   1. Select mode (baseline / chain-only degraded / full granular)
//   2. Filter the cube → SubView (full granular only)
//   3. Aggregate with the mode's pure function
//   4. Compute KPIs from the municipality rollup
//   5. Return Result
//
// Every stage is a pure function of (snapshot, state). Returned views are
// never mutated; baseline mode hands back the shared baseline view.
// ============================================================================

// Snapshot is the installed data a recomputation reads.
// A nil Cube means the cube has not loaded; a nil Dimensions means no
// demographic table has loaded.
type Snapshot struct {
	Baseline   *Baseline
	Cube       []GranularRecord
	Dimensions *DimensionTables
	Regions    RegionIndex
}

// CubeLoaded reports whether the granular cube is installed.
func (s Snapshot) CubeLoaded() bool { return s.Cube != nil }

// Input is everything one aggregation pass needs.
type Input struct {
	Cube       RecordView // already filtered; ignored when Degraded
	Dimensions *DimensionTables
	Baseline   *Baseline
	State      FilterState
	Regions    RegionIndex
	Degraded   bool
}

// Aggregate derives the view model for in. Baseline mode is O(1).
func Aggregate(in Input, opts ...Option) *AggregatedView {
	cfg := applyOptions(opts)
	return aggregate(SelectMode(in.State, in.Degraded), in, cfg)
}

// Compute runs the full pipeline for a filter state over a snapshot.
func Compute(snap Snapshot, state FilterState, opts ...Option) *Result {
	cfg := applyOptions(opts)
	if snap.Baseline == nil {
		snap.Baseline = NewBaseline(Metadata{}, Kpis{}, AggregatedView{})
	}

	degraded := IsDegraded(snap.CubeLoaded())
	mode := SelectMode(state, degraded)

	in := Input{
		Dimensions: snap.Dimensions,
		Baseline:   snap.Baseline,
		State:      state,
		Regions:    snap.Regions,
		Degraded:   degraded,
	}
	if mode == ModeFullGranular {
		in.Cube = FilterCube(CubeAdapter.Bind(snap.Cube), state, snap.Regions)
		cfg.Log.Debug("🔧 painel: cube filtered", "records", in.Cube.Len(), "of", len(snap.Cube))
	}

	view := aggregate(mode, in, cfg)
	kpis := ComputeKpis(view.ByMunicipality, snap.Baseline, state, degraded)

	cfg.Log.Debug("📊 painel: view computed",
		"mode", mode.String(),
		"filters", state.Label(),
		"chains", len(view.ByChain),
		"periods", len(view.Timeseries),
		"municipalities", len(view.ByMunicipality))

	return &Result{Mode: mode, Filters: state, View: view, Kpis: kpis}
}

func aggregate(mode Mode, in Input, cfg *config) *AggregatedView {
	switch mode {
	case ModeChainOnlyDegraded:
		return aggregateDegraded(in, cfg)
	case ModeFullGranular:
		if in.Cube == nil {
			return aggregateDegraded(in, cfg)
		}
		return aggregateGranular(in, cfg)
	default:
		return in.Baseline.View()
	}
}

// ============================================================================
// CHAIN-ONLY DEGRADED
// ============================================================================

func aggregateDegraded(in Input, cfg *config) *AggregatedView {
	base := in.Baseline.Tables
	chain := in.State.Chain

	v := &AggregatedView{
		Timeseries:        base.Timeseries,
		ByChain:           byChain(base.ByChain, chain, func(r ChainRow) string { return r.Chain }),
		ByYear:            base.ByYear,
		Seasonality:       base.Seasonality,
		BySex:             base.BySex,
		ByAgeBand:         base.ByAgeBand,
		ByEducation:       base.ByEducation,
		ByCompanySize:     base.ByCompanySize,
		SalaryPercentiles: byChain(base.SalaryPercentiles, chain, func(r PercentileRow) string { return r.Chain }),
		CrossChainBySex:   byChain(base.CrossChainBySex, chain, func(r CrossRow) string { return r.Chain }),
		ByActivity:        byChain(base.ByActivity, chain, func(r ActivityRow) string { return r.Chain }),
		TimeseriesByChain: byChain(base.TimeseriesByChain, chain, func(r ChainPeriodRow) string { return r.Chain }),
	}
	if chain != "" && len(v.TimeseriesByChain) > 0 {
		v.Timeseries = TimeseriesFromChainPeriods(v.TimeseriesByChain)
	}

	v.ByMunicipality = regionalRows(base.ByMunicipality, in.State, in.Regions)
	v.TopMunicipalities = topMunicipalities(v.ByMunicipality, base.TopMunicipalities, in.State, in.Regions, false, cfg.TopMunicipalities)
	return v
}

// ============================================================================
// FULL GRANULAR
// ============================================================================

func aggregateGranular(in Input, cfg *config) *AggregatedView {
	base := in.Baseline.Tables
	cube := in.Cube
	state := in.State

	v := &AggregatedView{
		Timeseries:        BuildTimeseries(GroupAndAggregate(cube, []string{DimPeriod}, SortKeyAsc, 0)),
		ByChain:           BuildChainRows(GroupAndAggregate(cube, []string{DimChain}, "", 0), in.Baseline.chainByName, cfg.FallbackColor),
		ByYear:            BuildYearRows(GroupAndAggregate(cube, []string{DimYear}, "", 0)),
		Seasonality:       BuildSeasonality(GroupAndAggregate(cube, []string{DimMonth}, "", 0)),
		TimeseriesByChain: BuildChainPeriodRows(GroupAndAggregate(cube, []string{DimPeriod, DimChain}, "", 0)),
		SalaryPercentiles: byChain(base.SalaryPercentiles, state.Chain, func(r PercentileRow) string { return r.Chain }),
		ByActivity:        byChain(base.ByActivity, state.Chain, func(r ActivityRow) string { return r.Chain }),
	}

	aggregateDemographics(v, in)

	recomputed := state.Chain != "" || state.Period != ""
	if recomputed {
		v.ByMunicipality = RollupMunicipalities(cube, municipalityNamer(in.Baseline, in.Regions))
	} else {
		v.ByMunicipality = regionalRows(base.ByMunicipality, state, in.Regions)
	}
	v.TopMunicipalities = topMunicipalities(v.ByMunicipality, base.TopMunicipalities, state, in.Regions, recomputed, cfg.TopMunicipalities)
	return v
}

// aggregateDemographics recomputes the demographic breakdowns and the
// chain × sex cross-tab from the dimension tables when a regional or chain
// filter is active and the table is loaded; otherwise baseline rows are kept.
func aggregateDemographics(v *AggregatedView, in Input) {
	base := in.Baseline.Tables
	v.BySex, v.ByAgeBand, v.ByEducation, v.ByCompanySize = base.BySex, base.ByAgeBand, base.ByEducation, base.ByCompanySize
	v.CrossChainBySex = base.CrossChainBySex

	if !in.State.HasRegional() && in.State.Chain == "" {
		return
	}

	for _, d := range Demographics {
		table := in.Dimensions.Table(d)
		if table == nil {
			continue
		}
		filtered := FilterDimension(DimensionAdapter.Bind(table), in.State, in.Regions)
		rows := BuildDemographicRows(d, GroupAndAggregate(filtered, []string{DimValue}, "", 0))
		switch d {
		case DemographicSex:
			v.BySex = rows
			v.CrossChainBySex = BuildCrossRows(GroupAndAggregate(filtered, []string{DimChain, DimValue}, "", 0))
		case DemographicAgeBand:
			v.ByAgeBand = rows
		case DemographicEducation:
			v.ByEducation = rows
		case DemographicCompanySize:
			v.ByCompanySize = rows
		}
	}
}

// ============================================================================
// SHARED HELPERS
// ============================================================================

// byChain keeps the rows of one chain; with no chain selected it returns rows itself.
func byChain[T any](rows []T, chain string, key func(T) string) []T {
	if chain == "" {
		return rows
	}
	return filterRows(rows, func(r T) bool { return key(r) == chain })
}
