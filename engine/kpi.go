package engine

import "sort"

// ============================================================================
// KPI CALCULATOR
// ============================================================================
// Reference period, last-month and profile figures always come from the
// baseline. Cumulative flows and salary figures are recomputed only for the
// filters a municipality rollup can express: regional, chain, and period
// when the cube is loaded.
// ============================================================================

// ComputeKpis derives the headline metrics for a filter state.
func ComputeKpis(rollup []MunicipalityRow, baseline *Baseline, state FilterState, degraded bool) Kpis {
	kpis := baseline.Kpis

	if !kpiFiltered(state, degraded) {
		return kpis
	}

	if degraded && state.Chain != "" && !state.HasRegional() {
		if row, ok := baseline.Chain(state.Chain); ok {
			kpis.Cumulative = Flow{
				Admissions:   row.Admissions,
				Terminations: row.Terminations,
				Balance:      row.Admissions - row.Terminations,
			}
			kpis.Salary = SalaryKpi{Mean: row.MeanSalary, Median: row.MedianSalary}
			return kpis
		}
	}

	adm, dem := 0, 0
	salaries := make([]float64, 0, len(rollup))
	for _, m := range rollup {
		adm += m.Admissions
		dem += m.Terminations
		if m.MeanSalary != 0 {
			salaries = append(salaries, m.MeanSalary)
		}
	}
	kpis.Cumulative = Flow{Admissions: adm, Terminations: dem, Balance: adm - dem}
	kpis.Salary = SalaryKpi{Mean: MeanOfMeans(salaries), Median: UpperMedian(salaries)}
	return kpis
}

func kpiFiltered(state FilterState, degraded bool) bool {
	if state.HasRegional() || state.Chain != "" {
		return true
	}
	return !degraded && state.Period != ""
}

// MeanOfMeans is the plain average of per-municipality mean salaries.
// It is intentionally unweighted; 0 for an empty list.
func MeanOfMeans(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// UpperMedian returns element floor(n/2) of the ascending sort: the upper
// middle for even counts, no interpolation. 0 for an empty list.
// values is not modified.
func UpperMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
