package engine

import (
	"testing"
)

// ============================================================================
// AGGREGATION TESTS
// ============================================================================

func TestWeightedMeanByChain(t *testing.T) {
	cube := []GranularRecord{
		{Municipality: "410010", Chain: "A", Period: "2024-01", Admissions: 10, MeanSalary: 100},
		{Municipality: "410010", Chain: "A", Period: "2024-02", Admissions: 30, MeanSalary: 200},
	}
	groups := GroupAndAggregate(CubeAdapter.Bind(cube), []string{DimChain}, "", 0)
	rows := BuildChainRows(groups, nil, "")
	if len(rows) != 1 {
		t.Fatalf("expected 1 chain, got %d", len(rows))
	}
	assertFloat(t, rows[0].MeanSalary, 175, "volume-weighted mean, not 150")
	assertFloat(t, rows[0].MedianSalary, 175, "median approximated by weighted mean")
	assertEqualString(t, rows[0].Color, DefaultFallbackColor, "unknown chain colour")
	assertEqualInt(t, rows[0].Municipalities, 1, "municipality count")
}

func TestTimeseriesCumulativeBalance(t *testing.T) {
	cube := append(testCube(),
		GranularRecord{Municipality: "410040", Chain: "Soja", Period: "2023-12", Admissions: 1, Terminations: 7},
	)
	groups := GroupAndAggregate(CubeAdapter.Bind(cube), []string{DimPeriod}, SortKeyAsc, 0)
	rows := BuildTimeseries(groups)

	wantPeriods := []string{"2023-12", "2024-01", "2024-02", "2024-03"}
	if len(rows) != len(wantPeriods) {
		t.Fatalf("expected %d periods, got %d", len(wantPeriods), len(rows))
	}
	for i, r := range rows {
		assertEqualString(t, r.Period, wantPeriods[i], "period order")
		assertEqualInt(t, r.Balance, r.Admissions-r.Terminations, "balance identity")
		if i == 0 {
			assertEqualInt(t, r.CumulativeBalance, r.Balance, "first cumulative")
		} else {
			assertEqualInt(t, r.CumulativeBalance, rows[i-1].CumulativeBalance+r.Balance, "cumulative composition")
		}
	}
	// 2024-01: (10*100 + 30*150) / 40
	assertFloat(t, rows[1].MeanSalary, 137.5, "weighted period salary")
}

func TestShareRoundsHalfUp(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{1, 16, 6.3},   // 6.25
		{3, 16, 18.8},  // 18.75
		{1, 8, 12.5},   // exact
		{23, 80, 28.8}, // 28.75
		{41, 80, 51.3}, // 51.25
		{51, 80, 63.8}, // 63.75
		{7, 40, 17.5},  // exact
		{1, 200, 0.5},  // exact
		{3, 400, 0.8},  // 0.75
		{2, 3, 66.7},   // 66.666…
		{1, 3, 33.3},   // 33.333…
		{5, 0, 0},      // zero total
		{0, 10, 0},     // zero part
	}
	for _, tt := range tests {
		assertFloat(t, Share(tt.part, tt.total), tt.want, "share")
	}
	assertFloat(t, RoundTo1(28.75), 28.8, "RoundTo1")
	assertFloat(t, RoundTo1(1.005*10), 10.1, "RoundTo1 after product")
	assertFloat(t, RoundTo2(2.125), 2.13, "RoundTo2")
	assertFloat(t, SafeDiv(1, 0), 0, "SafeDiv zero")
}

func TestChainSharesSumTo100(t *testing.T) {
	view := FilterCube(CubeAdapter.Bind(testCube()), FilterState{Meso: "Norte"}, testRegions())
	rows := BuildChainRows(GroupAndAggregate(view, []string{DimChain}, "", 0), testBaseline().chainByName, "")

	var sum float64
	for _, r := range rows {
		sum += r.Share
	}
	if sum < 99.9 || sum > 100.1 {
		t.Errorf("shares sum to %v, want 100±0.1", sum)
	}
	assertEqualString(t, rows[0].Chain, "Soja", "sorted by admissions desc")
	assertFloat(t, rows[0].Share, 58.8, "Soja share 40/68")
	assertFloat(t, rows[1].Share, 41.2, "Milho share 28/68")
	assertEqualString(t, rows[0].Color, "#16a34a", "baseline colour carried")
	assertEqualInt(t, rows[0].Subclasses, 4, "baseline subclass count carried")
}

func TestChainShareZeroAdmissions(t *testing.T) {
	cube := []GranularRecord{
		{Municipality: "1", Chain: "A", Period: "2024-01", Terminations: 5},
		{Municipality: "1", Chain: "B", Period: "2024-01", Terminations: 3},
	}
	rows := BuildChainRows(GroupAndAggregate(CubeAdapter.Bind(cube), []string{DimChain}, "", 0), nil, "#000000")
	for _, r := range rows {
		assertFloat(t, r.Share, 0, "share with zero total")
		assertEqualString(t, r.Color, "#000000", "configured fallback colour")
	}
	assertEqualString(t, rows[0].Chain, "A", "tie on admissions breaks by key")
}

func TestSeasonalityIndex(t *testing.T) {
	cube := []GranularRecord{
		{Municipality: "1", Chain: "A", Period: "2024-01", Admissions: 100},
		{Municipality: "1", Chain: "A", Period: "2024-02", Admissions: 300},
	}
	rows := BuildSeasonality(GroupAndAggregate(CubeAdapter.Bind(cube), []string{DimMonth}, "", 0))
	if len(rows) != 12 {
		t.Fatalf("expected 12 months, got %d", len(rows))
	}
	assertFloat(t, rows[0].Index, 50, "Jan index")
	assertFloat(t, rows[1].Index, 150, "Feb index")
	assertFloat(t, rows[2].Index, 0, "Mar has no data")
	assertEqualString(t, rows[0].MonthName, "Jan", "month name")
	assertEqualString(t, rows[11].MonthName, "Dez", "month name")
}

func TestSeasonalityIndexRoundsHalfUp(t *testing.T) {
	cube := []GranularRecord{
		{Municipality: "1", Chain: "A", Period: "2024-01", Admissions: 23},
		{Municipality: "1", Chain: "A", Period: "2024-02", Admissions: 27},
		{Municipality: "1", Chain: "A", Period: "2024-03", Admissions: 30},
	}
	rows := BuildSeasonality(GroupAndAggregate(CubeAdapter.Bind(cube), []string{DimMonth}, "", 0))
	// monthly average 80/3
	assertFloat(t, rows[0].Index, 86.3, "Jan index 86.25")
	assertFloat(t, rows[1].Index, 101.3, "Feb index 101.25")
	assertFloat(t, rows[2].Index, 112.5, "Mar index")
}

func TestSeasonalityEmptyIsAll100(t *testing.T) {
	rows := BuildSeasonality(nil)
	if len(rows) != 12 {
		t.Fatalf("expected 12 months, got %d", len(rows))
	}
	for _, r := range rows {
		assertFloat(t, r.Index, 100, r.MonthName)
		assertEqualInt(t, r.Admissions, 0, r.MonthName)
	}
}

func TestSeasonalityFoldsYears(t *testing.T) {
	cube := []GranularRecord{
		{Municipality: "1", Chain: "A", Period: "2023-03", Admissions: 10},
		{Municipality: "1", Chain: "A", Period: "2024-03", Admissions: 30},
		{Municipality: "1", Chain: "A", Period: "2024-04", Admissions: 40},
	}
	rows := BuildSeasonality(GroupAndAggregate(CubeAdapter.Bind(cube), []string{DimMonth}, "", 0))
	assertEqualInt(t, rows[2].Admissions, 40, "March across years")
	assertFloat(t, rows[2].Index, 100, "March index")
	assertFloat(t, rows[3].Index, 100, "April index")
}

func TestYearRows(t *testing.T) {
	groups := GroupAndAggregate(CubeAdapter.Bind(testCube()), []string{DimYear}, "", 0)
	rows := BuildYearRows(groups)
	if len(rows) != 1 || rows[0].Year != 2024 {
		t.Fatalf("expected single 2024 row, got %+v", rows)
	}
	assertEqualInt(t, rows[0].Admissions, 73, "year admissions")
	assertEqualInt(t, rows[0].Balance, 73-17, "year balance")
}

func TestChainPeriodRowsOrdered(t *testing.T) {
	groups := GroupAndAggregate(CubeAdapter.Bind(testCube()), []string{DimPeriod, DimChain}, "", 0)
	rows := BuildChainPeriodRows(groups)
	want := [][2]string{{"2024-01", "Milho"}, {"2024-01", "Soja"}, {"2024-02", "Soja"}, {"2024-03", "Milho"}}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, r := range rows {
		if r.Period != want[i][0] || r.Chain != want[i][1] {
			t.Errorf("row %d = %s/%s, want %s/%s", i, r.Period, r.Chain, want[i][0], want[i][1])
		}
	}
	assertEqualInt(t, rows[2].Admissions, 35, "2024-02 Soja sums two municipalities")
}

func TestTimeseriesFromChainPeriods(t *testing.T) {
	rows := TimeseriesFromChainPeriods([]ChainPeriodRow{
		{Period: "2024-02", Chain: "Soja", Admissions: 20, Terminations: 5, Balance: 999},
		{Period: "2024-01", Chain: "Soja", Admissions: 10, Terminations: 2},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(rows))
	}
	assertEqualString(t, rows[0].Period, "2024-01", "sorted by period")
	assertEqualInt(t, rows[1].Balance, 15, "balance recomputed, stored value ignored")
	assertEqualInt(t, rows[1].CumulativeBalance, 23, "cumulative")
}

func TestAgeBandCanonicalOrder(t *testing.T) {
	groups := []Group{
		{Key: "30 a 39 anos", Totals: Totals{Admissions: 50}},
		{Key: "Outro", Totals: Totals{Admissions: 1}},
		{Key: "Não informado", Totals: Totals{Admissions: 2}},
		{Key: "Menor de 18", Totals: Totals{Admissions: 3}},
	}
	rows := BuildDemographicRows(DemographicAgeBand, groups)
	want := []string{"Menor de 18", "30 a 39 anos", "Não informado", "Outro"}
	for i, r := range rows {
		assertEqualString(t, r.Value, want[i], "age order")
		assertEqualInt(t, r.Balance, r.Admissions-r.Terminations, "balance identity")
	}
}

func TestMunicipalityDominantChain(t *testing.T) {
	cube := []GranularRecord{
		{Municipality: "A", Chain: "Soja", Period: "2024-01", Admissions: 5},
		{Municipality: "A", Chain: "Milho", Period: "2024-01", Admissions: 3, Terminations: 4},
		{Municipality: "B", Chain: "Soja", Period: "2024-01", Admissions: 1, Terminations: 1},
		{Municipality: "B", Chain: "Arroz", Period: "2024-01", Admissions: 1, Terminations: 1},
	}
	rows := RollupMunicipalities(CubeAdapter.Bind(cube), func(code string) string {
		if code == "A" {
			return "Alfa"
		}
		return ""
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 municipalities, got %d", len(rows))
	}
	assertEqualString(t, rows[0].Code, "A", "sorted by admissions")
	assertEqualString(t, rows[0].DominantChain, "Milho", "largest volume wins")
	assertEqualString(t, rows[0].Name, "Alfa", "resolved name")
	assertEqualString(t, rows[1].DominantChain, "Arroz", "volume tie breaks by name")
	assertEqualString(t, rows[1].Name, "B", "unknown name falls back to code")
}
