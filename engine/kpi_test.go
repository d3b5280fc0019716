package engine

import "testing"

func TestKpisUnfilteredAreBaseline(t *testing.T) {
	b := testBaseline()
	got := ComputeKpis(b.Tables.ByMunicipality, b, FilterState{}, false)
	if got != b.Kpis {
		t.Errorf("unfiltered KPIs should equal baseline, got %+v", got)
	}

	// Sex and period filters without a cube cannot be expressed by the rollup.
	got = ComputeKpis(b.Tables.ByMunicipality, b, FilterState{Sex: "Feminino", Period: "2024-01"}, true)
	if got != b.Kpis {
		t.Errorf("degraded period filter should keep baseline KPIs, got %+v", got)
	}
}

func TestKpisDegradedChainUsesChainRow(t *testing.T) {
	b := testBaseline()
	got := ComputeKpis(b.Tables.ByMunicipality, b, FilterState{Chain: "Soja"}, true)

	assertEqualInt(t, got.Cumulative.Admissions, 100, "chain admissions")
	assertEqualInt(t, got.Cumulative.Terminations, 40, "chain terminations")
	assertEqualInt(t, got.Cumulative.Balance, 60, "chain balance")
	assertFloat(t, got.Salary.Mean, 2000, "chain mean salary")
	assertFloat(t, got.Salary.Median, 1800, "chain median salary")
	assertEqualString(t, got.ReferencePeriod, "2024-03", "reference period untouched")
	if got.LastMonth != b.Kpis.LastMonth || got.Profile != b.Kpis.Profile {
		t.Error("last month and profile always come from baseline")
	}
}

func TestKpisDegradedUnknownChainFallsThrough(t *testing.T) {
	b := testBaseline()
	got := ComputeKpis(b.Tables.ByMunicipality, b, FilterState{Chain: "Café"}, true)
	// Sum of the three baseline municipalities.
	assertEqualInt(t, got.Cumulative.Admissions, 65, "rollup admissions")
	assertEqualInt(t, got.Cumulative.Terminations, 15, "rollup terminations")
}

func TestKpisRegionalRollup(t *testing.T) {
	b := testBaseline()
	got := ComputeKpis(b.Tables.ByMunicipality, b, FilterState{Meso: "Norte", Chain: "Soja"}, true)
	// Regional filter wins over the chain row lookup; salaries 1000, 3000, 0.
	assertFloat(t, got.Salary.Mean, 2000, "mean of non-zero means")
	assertFloat(t, got.Salary.Median, 3000, "upper median of [1000 3000]")
}

func TestKpisGranularChain(t *testing.T) {
	r := Compute(testSnapshot(), FilterState{Chain: "Soja"})
	assertEqualInt(t, r.Kpis.Cumulative.Admissions, 45, "admissions")
	assertEqualInt(t, r.Kpis.Cumulative.Terminations, 5, "terminations")
	assertEqualInt(t, r.Kpis.Cumulative.Balance, 40, "balance")
	assertFloat(t, r.Kpis.Salary.Mean, 175, "mean skips zero-salary municipality")
	assertFloat(t, r.Kpis.Salary.Median, 175, "median")
}

func TestKpisEmptyRollup(t *testing.T) {
	got := ComputeKpis(nil, testBaseline(), FilterState{Chain: "Café"}, false)
	if got.Cumulative != (Flow{}) || got.Salary != (SalaryKpi{}) {
		t.Errorf("empty rollup should zero the filtered KPIs, got %+v", got)
	}
}

func TestUpperMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{nil, 0},
		{[]float64{5}, 5},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 3},
	}
	for _, tt := range tests {
		assertFloat(t, UpperMedian(tt.in), tt.want, "UpperMedian")
	}

	in := []float64{3, 1, 2}
	UpperMedian(in)
	if in[0] != 3 {
		t.Error("UpperMedian must not reorder its input")
	}
}

func TestMeanOfMeans(t *testing.T) {
	assertFloat(t, MeanOfMeans(nil), 0, "empty")
	assertFloat(t, MeanOfMeans([]float64{100, 200, 600}), 300, "unweighted")
}
