package engine

// ============================================================================
// FILTERS — Predicate-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL predicates per record in one loop.
// Returns a SubView (index list into the root view); no data is copied.
// Predicates are pure and AND-combined, so application order never matters.
// ============================================================================

// Predicate reports whether record i of view passes a filter.
type Predicate func(view RecordView, i int) bool

// ApplyPredicates returns a view of records matching every predicate.
// No predicates = no restriction (returns original view).
func ApplyPredicates(view RecordView, preds ...Predicate) RecordView {
	if len(preds) == 0 {
		return view
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for _, p := range preds {
			if !p(view, i) {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// Equals matches records whose dimension equals value exactly.
func Equals(dimension, value string) Predicate {
	return func(view RecordView, i int) bool {
		return view.Dimension(i, dimension) == value
	}
}

// InRegion matches records in the selected municipality, or in the selected
// meso/sub-region. A municipality selection bypasses the region lookup.
// Codes unknown to the index always pass.
func InRegion(state FilterState, regions RegionIndex) Predicate {
	if state.Municipality != "" {
		return Equals(DimMunicipality, state.Municipality)
	}
	meso, sub := state.Meso, state.Sub
	return func(view RecordView, i int) bool {
		if regions == nil {
			return true
		}
		region, ok := regions.Lookup(view.Dimension(i, DimMunicipality))
		if !ok {
			return true
		}
		if meso != "" && region.Meso != meso {
			return false
		}
		if sub != "" && region.Sub != sub {
			return false
		}
		return true
	}
}

// regionalPredicates returns the regional predicate, if any regional filter is set.
func regionalPredicates(state FilterState, regions RegionIndex) []Predicate {
	if !state.HasRegional() {
		return nil
	}
	return []Predicate{InRegion(state, regions)}
}

// CubePredicates builds the predicate set for the granular cube:
// region, chain and period.
func CubePredicates(state FilterState, regions RegionIndex) []Predicate {
	preds := regionalPredicates(state, regions)
	if state.Chain != "" {
		preds = append(preds, Equals(DimChain, state.Chain))
	}
	if state.Period != "" {
		preds = append(preds, Equals(DimPeriod, state.Period))
	}
	return preds
}

// DimensionPredicates builds the predicate set for demographic tables:
// region and chain. Period does not narrow demographic slices.
func DimensionPredicates(state FilterState, regions RegionIndex) []Predicate {
	preds := regionalPredicates(state, regions)
	if state.Chain != "" {
		preds = append(preds, Equals(DimChain, state.Chain))
	}
	return preds
}

// FilterCube narrows a cube view to the records the state selects.
func FilterCube(view RecordView, state FilterState, regions RegionIndex) RecordView {
	return ApplyPredicates(view, CubePredicates(state, regions)...)
}

// FilterDimension narrows a demographic table view by region and chain.
func FilterDimension(view RecordView, state FilterState, regions RegionIndex) RecordView {
	return ApplyPredicates(view, DimensionPredicates(state, regions)...)
}

// FilterRecords is the slice form of FilterCube. The result shares no memory
// with cube; an empty match returns an empty, non-nil slice.
func FilterRecords(cube []GranularRecord, state FilterState, regions RegionIndex) []GranularRecord {
	view := FilterCube(CubeAdapter.Bind(cube), state, regions)
	out := make([]GranularRecord, 0, view.Len())
	for _, idx := range Indices(view) {
		out = append(out, cube[idx])
	}
	return out
}

// filterRows keeps the rows of a baseline table that pass keep, preserving order.
func filterRows[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// regionKeep adapts the regional predicate to baseline rows keyed by municipality code.
func regionKeep(state FilterState, regions RegionIndex) func(code string) bool {
	if state.Municipality != "" {
		return func(code string) bool { return code == state.Municipality }
	}
	return func(code string) bool {
		if regions == nil {
			return true
		}
		region, ok := regions.Lookup(code)
		if !ok {
			return true
		}
		return (state.Meso == "" || region.Meso == state.Meso) &&
			(state.Sub == "" || region.Sub == state.Sub)
	}
}
