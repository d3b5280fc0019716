package engine

import (
	"math"
	"testing"
)

// ============================================================================
// SHARED FIXTURES
// ============================================================================

// regionMap is a RegionIndex + Namer backed by a map.
type regionMap map[string]struct {
	Region
	Name string
}

func (m regionMap) Lookup(code string) (Region, bool) {
	u, ok := m[code]
	return u.Region, ok
}

func (m regionMap) Name(code string) (string, bool) {
	u, ok := m[code]
	if !ok || u.Name == "" {
		return "", false
	}
	return u.Name, true
}

func testRegions() regionMap {
	return regionMap{
		"410010": {Region{Meso: "Norte", Sub: "N1"}, "Alfa"},
		"410020": {Region{Meso: "Norte", Sub: "N2"}, "Beta"},
		"410030": {Region{Meso: "Sul", Sub: "S1"}, "Gama"},
		"410040": {Region{Meso: "Sul", Sub: "S1"}, "Delta"},
	}
}

// testCube: 999999 is absent from the region index.
func testCube() []GranularRecord {
	return []GranularRecord{
		{Municipality: "410010", Chain: "Soja", Period: "2024-01", Admissions: 10, Terminations: 0, MeanSalary: 100},
		{Municipality: "410010", Chain: "Soja", Period: "2024-02", Admissions: 30, Terminations: 0, MeanSalary: 200},
		{Municipality: "410020", Chain: "Milho", Period: "2024-01", Admissions: 20, Terminations: 10, MeanSalary: 150},
		{Municipality: "410030", Chain: "Soja", Period: "2024-02", Admissions: 5, Terminations: 5, MeanSalary: 0},
		{Municipality: "999999", Chain: "Milho", Period: "2024-03", Admissions: 8, Terminations: 2, MeanSalary: 120},
	}
}

func testDimensions() *DimensionTables {
	return &DimensionTables{
		BySex: []DimensionRecord{
			{Municipality: "410010", Period: "2024-01", Chain: "Soja", Value: "Masculino", Admissions: 10, Terminations: 2},
			{Municipality: "410010", Period: "2024-01", Chain: "Soja", Value: "Feminino", Admissions: 5, Terminations: 1},
			{Municipality: "410030", Period: "2024-02", Chain: "Soja", Value: "Masculino", Admissions: 4, Terminations: 0},
			{Municipality: "410020", Period: "2024-01", Chain: "Milho", Value: "Feminino", Admissions: 6, Terminations: 3},
		},
		ByEducation: []DimensionRecord{
			{Municipality: "410010", Period: "2024-01", Chain: "Soja", Value: "Médio completo", Admissions: 3, Terminations: 1, MeanSalary: 100},
			{Municipality: "410030", Period: "2024-02", Chain: "Soja", Value: "Médio completo", Admissions: 4, Terminations: 0, MeanSalary: 200},
			{Municipality: "410020", Period: "2024-01", Chain: "Milho", Value: "Superior completo", Admissions: 9, Terminations: 0, MeanSalary: 500},
		},
	}
}

func testBaseline() *Baseline {
	return NewBaseline(
		Metadata{Title: "Emprego Agrícola", FirstPeriod: "2024-01", LastPeriod: "2024-03"},
		Kpis{
			ReferencePeriod: "2024-03",
			LastMonth:       Flow{Admissions: 8, Terminations: 2, Balance: 6},
			Cumulative:      Flow{Admissions: 73, Terminations: 17, Balance: 56},
			Salary:          SalaryKpi{Mean: 1500, Median: 1400},
			Profile:         ProfileKpi{MalePercent: 70.5, MeanAge: 33.1},
		},
		AggregatedView{
			Timeseries: []PeriodRow{
				{Period: "2024-01", Admissions: 30, Terminations: 10, Balance: 20, CumulativeBalance: 20},
				{Period: "2024-02", Admissions: 35, Terminations: 5, Balance: 30, CumulativeBalance: 50},
			},
			ByChain: []ChainRow{
				{Chain: "Soja", Admissions: 100, Terminations: 40, Balance: 60, MeanSalary: 2000, MedianSalary: 1800, Subclasses: 4, Color: "#16a34a", Description: "Complexo soja", Share: 66.7},
				{Chain: "Milho", Admissions: 50, Terminations: 10, Balance: 40, MeanSalary: 1500, MedianSalary: 1400, Subclasses: 2, Color: "#eab308", Share: 33.3},
			},
			BySex: []DemographicRow{
				{Value: "Masculino", Admissions: 50, Terminations: 10, Balance: 40, Share: 66.7},
				{Value: "Feminino", Admissions: 25, Terminations: 5, Balance: 20, Share: 33.3},
			},
			ByAgeBand: []DemographicRow{
				{Value: "18 a 24 anos", Admissions: 40, Terminations: 10, Balance: 30, Share: 100},
			},
			SalaryPercentiles: []PercentileRow{
				{Chain: "Soja", Min: 1000, P50: 1800, Max: 4000},
				{Chain: "Milho", Min: 900, P50: 1400, Max: 3000},
			},
			CrossChainBySex: []CrossRow{
				{Chain: "Soja", Sex: "Masculino", Admissions: 70, Terminations: 30, Balance: 40, MeanSalary: 2100},
				{Chain: "Milho", Sex: "Masculino", Admissions: 40, Terminations: 5, Balance: 35, MeanSalary: 1500},
			},
			ByActivity: []ActivityRow{
				{Code: "0115600", Chain: "Soja", Description: "Cultivo de soja", Admissions: 90},
				{Code: "0111302", Chain: "Milho", Description: "Cultivo de milho", Admissions: 50},
			},
			TimeseriesByChain: []ChainPeriodRow{
				{Period: "2024-01", Chain: "Soja", Admissions: 10, Terminations: 2, Balance: 8},
				{Period: "2024-01", Chain: "Milho", Admissions: 5, Terminations: 1, Balance: 4},
				{Period: "2024-02", Chain: "Soja", Admissions: 20, Terminations: 5, Balance: 15},
			},
			ByMunicipality: []MunicipalityRow{
				{Code: "410010", Name: "Alfa", Admissions: 40, Terminations: 0, Balance: 40, MeanSalary: 1000, DominantChain: "Soja"},
				{Code: "410020", Name: "Beta", Admissions: 20, Terminations: 10, Balance: 10, MeanSalary: 3000, DominantChain: "Milho"},
				{Code: "410030", Name: "Gama", Admissions: 5, Terminations: 5, Balance: 0, MeanSalary: 0, DominantChain: "Soja"},
			},
			TopMunicipalities: []MunicipalityRow{
				{Code: "410010", Name: "Alfa", Admissions: 40, Balance: 40, DominantChain: "Soja"},
				{Code: "410020", Name: "Beta", Admissions: 20, Terminations: 10, Balance: 10, DominantChain: "Milho"},
			},
		},
	)
}

func testSnapshot() Snapshot {
	return Snapshot{
		Baseline:   testBaseline(),
		Cube:       testCube(),
		Dimensions: testDimensions(),
		Regions:    testRegions(),
	}
}

// ============================================================================
// ASSERT HELPERS
// ============================================================================

func assertEqualInt(t *testing.T, got, want int, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %d, want %d", msg, got, want)
	}
}

func assertFloat(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

func assertEqualString(t *testing.T, got, want string, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", msg, got, want)
	}
}
