package engine

// NewBaseline prepares a baseline bundle for O(1) reuse: nil tables become
// empty, and the chain and municipality-name lookups are built once.
func NewBaseline(meta Metadata, kpis Kpis, tables AggregatedView) *Baseline {
	normalizeView(&tables)

	b := &Baseline{
		Metadata:    meta,
		Kpis:        kpis,
		Tables:      tables,
		chainByName: make(map[string]ChainRow, len(tables.ByChain)),
		names:       make(map[string]string, len(tables.ByMunicipality)),
	}
	for _, c := range tables.ByChain {
		b.chainByName[c.Chain] = c
	}
	for _, m := range tables.TopMunicipalities {
		if m.Name != "" {
			b.names[m.Code] = m.Name
		}
	}
	for _, m := range tables.ByMunicipality {
		if m.Name != "" {
			b.names[m.Code] = m.Name
		}
	}

	view := tables
	b.view = &view
	return b
}

// View returns the unfiltered view. Every call returns the same pointer.
func (b *Baseline) View() *AggregatedView { return b.view }

// Chain returns the baseline row of a chain.
func (b *Baseline) Chain(name string) (ChainRow, bool) {
	row, ok := b.chainByName[name]
	return row, ok
}

// Name returns the baseline display name of a municipality code.
func (b *Baseline) Name(code string) (string, bool) {
	n, ok := b.names[code]
	return n, ok
}

func normalizeView(v *AggregatedView) {
	if v.Timeseries == nil {
		v.Timeseries = []PeriodRow{}
	}
	if v.ByChain == nil {
		v.ByChain = []ChainRow{}
	}
	if v.ByYear == nil {
		v.ByYear = []YearRow{}
	}
	if v.Seasonality == nil {
		v.Seasonality = []MonthRow{}
	}
	if v.BySex == nil {
		v.BySex = []DemographicRow{}
	}
	if v.ByAgeBand == nil {
		v.ByAgeBand = []DemographicRow{}
	}
	if v.ByEducation == nil {
		v.ByEducation = []DemographicRow{}
	}
	if v.ByCompanySize == nil {
		v.ByCompanySize = []DemographicRow{}
	}
	if v.SalaryPercentiles == nil {
		v.SalaryPercentiles = []PercentileRow{}
	}
	if v.CrossChainBySex == nil {
		v.CrossChainBySex = []CrossRow{}
	}
	if v.ByActivity == nil {
		v.ByActivity = []ActivityRow{}
	}
	if v.TimeseriesByChain == nil {
		v.TimeseriesByChain = []ChainPeriodRow{}
	}
	if v.ByMunicipality == nil {
		v.ByMunicipality = []MunicipalityRow{}
	}
	if v.TopMunicipalities == nil {
		v.TopMunicipalities = []MunicipalityRow{}
	}
	// Demographic rows decoded from baseline carry their dimension from the
	// value key; pin it so re-encoding uses the table's own key.
	pinDimension(v.BySex, DemographicSex)
	pinDimension(v.ByAgeBand, DemographicAgeBand)
	pinDimension(v.ByEducation, DemographicEducation)
	pinDimension(v.ByCompanySize, DemographicCompanySize)
}

func pinDimension(rows []DemographicRow, d Demographic) {
	for i := range rows {
		rows[i].Dimension = d
	}
}
