package engine

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never copies the cube. It reads through this interface.
//
// Implementations:
//   DomainView[T]  reads typed structs via accessor functions (zero-copy)
//   SubView        filtered subset (indices into a root view, zero-copy)
//
// Cube and dimension-table adapters are declared once below; filtering and
// grouping read them through the same dimension/measure keys.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// Dimension keys exposed by the cube and dimension-table views.
const (
	DimMunicipality = "municipality"
	DimChain        = "chain"
	DimPeriod       = "period"
	DimYear         = "year"
	DimMonth        = "month"
	DimValue        = "value"
)

// Measure keys exposed by the cube and dimension-table views.
const (
	MeasureAdmissions   = "admissions"
	MeasureTerminations = "terminations"
	MeasureVolume       = "volume"
	MeasureSalaryWeight = "salary_weight"
)

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a root RecordView.
// Indices always point into the root, so stacked filters stay one level deep.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	if sv, ok := parent.(*SubView); ok {
		mapped := make([]int, len(indices))
		for i, idx := range indices {
			mapped[i] = sv.indices[idx]
		}
		return &SubView{parent: sv.parent, indices: mapped}
	}
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// Indices returns the root positions a view exposes, in view order.
func Indices(view RecordView) []int {
	if sv, ok := view.(*SubView); ok {
		out := make([]int, len(sv.indices))
		copy(out, sv.indices)
		return out
	}
	out := make([]int, view.Len())
	for i := range out {
		out[i] = i
	}
	return out
}

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	view := engine.CubeAdapter.Bind(records)
//	filtered := engine.FilterCube(view, state, regions)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy: it holds a reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }

// ============================================================================
// CUBE + DIMENSION ADAPTERS
// ============================================================================

// CubeAdapter exposes GranularRecord fields to the engine.
var CubeAdapter = NewDomainAdapter[GranularRecord]().
	Dimension(DimMunicipality, func(r GranularRecord) string { return r.Municipality }).
	Dimension(DimChain, func(r GranularRecord) string { return r.Chain }).
	Dimension(DimPeriod, func(r GranularRecord) string { return r.Period }).
	Dimension(DimYear, func(r GranularRecord) string { return PeriodYear(r.Period) }).
	Dimension(DimMonth, func(r GranularRecord) string { return PeriodMonth(r.Period) }).
	Measure(MeasureAdmissions, func(r GranularRecord) float64 { return float64(r.Admissions) }).
	Measure(MeasureTerminations, func(r GranularRecord) float64 { return float64(r.Terminations) }).
	Measure(MeasureVolume, func(r GranularRecord) float64 { return float64(r.Volume()) }).
	Measure(MeasureSalaryWeight, func(r GranularRecord) float64 { return r.MeanSalary * float64(r.Volume()) })

// DimensionAdapter exposes DimensionRecord fields to the engine.
var DimensionAdapter = NewDomainAdapter[DimensionRecord]().
	Dimension(DimMunicipality, func(r DimensionRecord) string { return r.Municipality }).
	Dimension(DimChain, func(r DimensionRecord) string { return r.Chain }).
	Dimension(DimPeriod, func(r DimensionRecord) string { return r.Period }).
	Dimension(DimValue, func(r DimensionRecord) string { return r.Value }).
	Measure(MeasureAdmissions, func(r DimensionRecord) float64 { return float64(r.Admissions) }).
	Measure(MeasureTerminations, func(r DimensionRecord) float64 { return float64(r.Terminations) }).
	Measure(MeasureVolume, func(r DimensionRecord) float64 { return float64(r.Admissions + r.Terminations) }).
	Measure(MeasureSalaryWeight, func(r DimensionRecord) float64 {
		return r.MeanSalary * float64(r.Admissions+r.Terminations)
	})

// PeriodYear returns the YYYY part of a YYYY-MM period.
func PeriodYear(period string) string {
	if len(period) < 4 {
		return period
	}
	return period[:4]
}

// PeriodMonth returns the MM part of a YYYY-MM period, or "" when absent.
func PeriodMonth(period string) string {
	if len(period) < 7 {
		return ""
	}
	return period[5:7]
}
