package engine

import "strings"

// ============================================================================
// PAINEL ENGINE TYPES — Labor-Market Cube + View Model
// ============================================================================
// Input records are read-only once installed. Every derived row type is
// constructed by a builder in builders.go; JSON keys follow the baseline
// bundle so a renderer can consume baseline and recomputed tables alike.
// ============================================================================

// ============================================================================
// INPUT RECORDS
// ============================================================================

// GranularRecord is one cube row: municipality × chain × period.
type GranularRecord struct {
	Municipality string  `json:"mun"`
	Chain        string  `json:"cadeia"`
	Period       string  `json:"periodo"` // YYYY-MM
	Admissions   int     `json:"admissoes"`
	Terminations int     `json:"demissoes"`
	MeanSalary   float64 `json:"salario_medio"`
}

// Volume is admissions + terminations, the weight of MeanSalary.
func (r GranularRecord) Volume() int { return r.Admissions + r.Terminations }

// DimensionRecord is one row of a demographic slice table.
type DimensionRecord struct {
	Municipality string  `json:"mun"`
	Period       string  `json:"periodo"`
	Chain        string  `json:"cadeia"`
	Value        string  `json:"valor"`
	Admissions   int     `json:"admissoes"`
	Terminations int     `json:"demissoes"`
	MeanSalary   float64 `json:"salario_medio"`
}

// DimensionTables holds the granular demographic slices.
// A nil slice means that table did not load.
type DimensionTables struct {
	BySex         []DimensionRecord
	ByAgeBand     []DimensionRecord
	ByEducation   []DimensionRecord
	ByCompanySize []DimensionRecord
}

// Table returns the slice for a demographic dimension.
func (t *DimensionTables) Table(d Demographic) []DimensionRecord {
	if t == nil {
		return nil
	}
	switch d {
	case DemographicSex:
		return t.BySex
	case DemographicAgeBand:
		return t.ByAgeBand
	case DemographicEducation:
		return t.ByEducation
	case DemographicCompanySize:
		return t.ByCompanySize
	}
	return nil
}

// Set replaces the slice for a demographic dimension.
func (t *DimensionTables) Set(d Demographic, rows []DimensionRecord) {
	switch d {
	case DemographicSex:
		t.BySex = rows
	case DemographicAgeBand:
		t.ByAgeBand = rows
	case DemographicEducation:
		t.ByEducation = rows
	case DemographicCompanySize:
		t.ByCompanySize = rows
	}
}

// Region is the meso/sub-region pair a municipality belongs to.
type Region struct {
	Meso string `json:"meso"`
	Sub  string `json:"sub"`
}

// RegionIndex resolves a municipality code to its region.
// A code absent from the index passes every regional filter.
type RegionIndex interface {
	Lookup(code string) (Region, bool)
}

// Namer is optionally implemented by a RegionIndex that knows municipality names.
type Namer interface {
	Name(code string) (string, bool)
}

// ============================================================================
// DEMOGRAPHIC DIMENSIONS
// ============================================================================

// Demographic identifies one of the four demographic slice tables.
type Demographic int

const (
	DemographicSex Demographic = iota
	DemographicAgeBand
	DemographicEducation
	DemographicCompanySize
)

// Demographics lists every demographic dimension in display order.
var Demographics = []Demographic{DemographicSex, DemographicAgeBand, DemographicEducation, DemographicCompanySize}

// WireKey is the JSON key the row value is stored under.
func (d Demographic) WireKey() string {
	switch d {
	case DemographicSex:
		return "sexo"
	case DemographicAgeBand:
		return "faixa"
	case DemographicEducation:
		return "escolaridade"
	case DemographicCompanySize:
		return "porte"
	}
	return "valor"
}

func (d Demographic) String() string { return d.WireKey() }

// ParseDemographic maps a wire key (sexo, faixa, escolaridade, porte) or a
// table key (bySexo, ...) back to its dimension.
func ParseDemographic(key string) (Demographic, bool) {
	for _, d := range Demographics {
		if key == d.WireKey() || strings.EqualFold(key, "by"+d.WireKey()) {
			return d, true
		}
	}
	return 0, false
}

// ============================================================================
// VIEW ROWS
// ============================================================================

// PeriodRow is one month of the time series.
type PeriodRow struct {
	Period            string  `json:"periodo"`
	Admissions        int     `json:"admissoes"`
	Terminations      int     `json:"demissoes"`
	Balance           int     `json:"saldo"`
	MeanSalary        float64 `json:"salario_medio"`
	MedianSalary      float64 `json:"salario_mediana"`
	CumulativeBalance int     `json:"saldo_acumulado"`
}

// ChainRow is one production chain.
type ChainRow struct {
	Chain          string  `json:"cadeia"`
	Admissions     int     `json:"admissoes"`
	Terminations   int     `json:"demissoes"`
	Balance        int     `json:"saldo"`
	MeanSalary     float64 `json:"salario_medio"`
	MedianSalary   float64 `json:"salario_mediana"`
	SalaryStdDev   float64 `json:"salario_std"`
	Subclasses     int     `json:"n_subclasses"`
	Municipalities int     `json:"n_municipios"`
	Share          float64 `json:"pct_admissoes"`
	Color          string  `json:"cor"`
	Description    string  `json:"descricao"`
}

// ChainPeriodRow is one chain in one month.
type ChainPeriodRow struct {
	Period       string `json:"periodo"`
	Chain        string `json:"cadeia"`
	Admissions   int    `json:"admissoes"`
	Terminations int    `json:"demissoes"`
	Balance      int    `json:"saldo"`
}

// YearRow is one calendar year.
type YearRow struct {
	Year         int     `json:"ano"`
	Admissions   int     `json:"admissoes"`
	Terminations int     `json:"demissoes"`
	Balance      int     `json:"saldo"`
	MeanSalary   float64 `json:"salario_medio"`
}

// MonthRow is one calendar month of the seasonality profile.
type MonthRow struct {
	Month        int     `json:"mes"`
	MonthName    string  `json:"mes_nome"`
	Admissions   int     `json:"admissoes"`
	Terminations int     `json:"demissoes"`
	Balance      int     `json:"saldo"`
	Index        float64 `json:"indice"`
}

// DemographicRow is one value of a demographic breakdown.
// It marshals its value under the dimension's wire key (see rows_json.go).
type DemographicRow struct {
	Dimension    Demographic
	Value        string
	Admissions   int
	Terminations int
	Balance      int
	MeanSalary   float64
	MedianSalary float64
	Share        float64
}

// CrossRow is one chain × sex cell.
type CrossRow struct {
	Chain        string  `json:"cadeia"`
	Sex          string  `json:"sexo"`
	Admissions   int     `json:"admissoes"`
	Terminations int     `json:"demissoes"`
	Balance      int     `json:"saldo"`
	MeanSalary   float64 `json:"salario_medio"`
}

// ActivityRow is one CNAE subclass.
type ActivityRow struct {
	Code           string  `json:"cnae"`
	Chain          string  `json:"cadeia"`
	Description    string  `json:"descricao"`
	Admissions     int     `json:"admissoes"`
	Terminations   int     `json:"demissoes"`
	Balance        int     `json:"saldo"`
	MeanSalary     float64 `json:"salario_medio"`
	MedianSalary   float64 `json:"salario_mediana"`
	Municipalities int     `json:"n_municipios"`
}

// PercentileRow is the salary distribution of one chain.
type PercentileRow struct {
	Chain  string  `json:"cadeia"`
	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
}

// MunicipalityRow is one municipality of the map rollup.
type MunicipalityRow struct {
	Code          string  `json:"codigo"`
	Name          string  `json:"nome"`
	Admissions    int     `json:"admissoes"`
	Terminations  int     `json:"demissoes"`
	Balance       int     `json:"saldo"`
	MeanSalary    float64 `json:"salario_medio"`
	DominantChain string  `json:"cadeia_dominante"`
}

// ============================================================================
// VIEW MODEL
// ============================================================================

// AggregatedView is the complete set of chart-ready tables for one filter state.
// Callers must treat it as read-only: baseline mode shares its slices.
type AggregatedView struct {
	Timeseries        []PeriodRow       `json:"timeseries"`
	ByChain           []ChainRow        `json:"byCadeia"`
	ByYear            []YearRow         `json:"yearly"`
	Seasonality       []MonthRow        `json:"seasonality"`
	BySex             []DemographicRow  `json:"bySexo"`
	ByAgeBand         []DemographicRow  `json:"byFaixaEtaria"`
	ByEducation       []DemographicRow  `json:"byEscolaridade"`
	ByCompanySize     []DemographicRow  `json:"byPorte"`
	SalaryPercentiles []PercentileRow   `json:"salaryDistribution"`
	CrossChainBySex   []CrossRow        `json:"crossCadeiaSexo"`
	ByActivity        []ActivityRow     `json:"byCnae"`
	TimeseriesByChain []ChainPeriodRow  `json:"timeseriesCadeia"`
	ByMunicipality    []MunicipalityRow `json:"byMunicipio"`
	TopMunicipalities []MunicipalityRow `json:"topMunicipios"`
}

// Demographic returns the breakdown table for a dimension.
func (v *AggregatedView) Demographic(d Demographic) []DemographicRow {
	switch d {
	case DemographicSex:
		return v.BySex
	case DemographicAgeBand:
		return v.ByAgeBand
	case DemographicEducation:
		return v.ByEducation
	case DemographicCompanySize:
		return v.ByCompanySize
	}
	return nil
}

// ============================================================================
// KPIs
// ============================================================================

// Flow is an admissions/terminations/balance triple.
type Flow struct {
	Admissions   int     `json:"admissoes"`
	Terminations int     `json:"demissoes"`
	Balance      int     `json:"saldo"`
	MeanSalary   float64 `json:"salario_medio,omitempty"`
}

// SalaryKpi holds the headline salary figures.
type SalaryKpi struct {
	Mean   float64 `json:"media"`
	Median float64 `json:"mediana"`
}

// ProfileKpi holds workforce profile figures (baseline only).
type ProfileKpi struct {
	MalePercent float64 `json:"pct_masculino"`
	MeanAge     float64 `json:"idade_media"`
}

// Kpis are the headline scalar metrics.
type Kpis struct {
	ReferencePeriod string     `json:"periodo_referencia"`
	LastMonth       Flow       `json:"ultimo_mes"`
	Cumulative      Flow       `json:"acumulado"`
	Salary          SalaryKpi  `json:"salario"`
	Profile         ProfileKpi `json:"perfil"`
}

// ============================================================================
// BASELINE BUNDLE
// ============================================================================

// Metadata describes the dataset the baseline was built from.
type Metadata struct {
	Title          string `json:"titulo"`
	Subtitle       string `json:"subtitulo"`
	Source         string `json:"fonte"`
	UpdatedAt      string `json:"atualizacao"`
	FirstPeriod    string `json:"periodo_inicial"`
	LastPeriod     string `json:"periodo_final"`
	Records        int    `json:"total_registros"`
	Municipalities int    `json:"total_municipios"`
	Chains         int    `json:"total_cadeias"`
	Subclasses     int    `json:"total_subclasses"`
}

// Baseline is the unfiltered pre-aggregated bundle delivered at startup.
// Construct with NewBaseline so the baseline view and lookups are prepared once.
type Baseline struct {
	Metadata Metadata
	Kpis     Kpis
	Tables   AggregatedView

	view        *AggregatedView
	chainByName map[string]ChainRow
	names       map[string]string
}

// ============================================================================
// RESULT
// ============================================================================

// Result is one recomputation: the view model, KPIs and the mode that produced them.
type Result struct {
	Mode    Mode            `json:"mode"`
	Filters FilterState     `json:"filters"`
	View    *AggregatedView `json:"view"`
	Kpis    Kpis            `json:"kpis"`
}
