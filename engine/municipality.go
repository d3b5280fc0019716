package engine

// RollupMunicipalities aggregates a (filtered) cube view per municipality.
// Rows are sorted by admissions, descending; name may be nil.
func RollupMunicipalities(cube RecordView, name func(code string) string) []MunicipalityRow {
	groups := GroupAndAggregate(cube, []string{DimMunicipality, DimChain}, "", 0)
	return BuildMunicipalityRows(groups, name)
}

// municipalityNamer resolves names from the baseline first, then the region
// index when it knows names. Unknown codes resolve to "".
func municipalityNamer(b *Baseline, regions RegionIndex) func(string) string {
	namer, _ := regions.(Namer)
	return func(code string) string {
		if n, ok := b.Name(code); ok {
			return n
		}
		if namer != nil {
			if n, ok := namer.Name(code); ok {
				return n
			}
		}
		return ""
	}
}

// regionalRows applies the regional filter to baseline municipality rows.
func regionalRows(rows []MunicipalityRow, state FilterState, regions RegionIndex) []MunicipalityRow {
	if !state.HasRegional() {
		return rows
	}
	keep := regionKeep(state, regions)
	return filterRows(rows, func(r MunicipalityRow) bool { return keep(r.Code) })
}

// topMunicipalities picks the top list: the head of the rollup when it was
// recomputed or a chain is selected, otherwise the regionally filtered
// baseline top list.
func topMunicipalities(rollup, baseTop []MunicipalityRow, state FilterState, regions RegionIndex, recomputed bool, n int) []MunicipalityRow {
	if recomputed || state.Chain != "" {
		if n > 0 && len(rollup) > n {
			return rollup[:n:n]
		}
		return rollup
	}
	return regionalRows(baseTop, state, regions)
}
