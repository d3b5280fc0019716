package engine

import (
	"math"
	"sort"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// All functions operate on RecordView: zero-copy access to any data source.
// Grouping produces SubViews (index lists into the root view).
// ============================================================================

// Totals are the additive measures of a group.
type Totals struct {
	Admissions   int
	Terminations int
	Volume       float64
	SalaryWeight float64
}

// Balance is admissions minus terminations.
func (t Totals) Balance() int { return t.Admissions - t.Terminations }

// MeanSalary is the volume-weighted mean salary, 0 when the group has no volume.
func (t Totals) MeanSalary() float64 { return SafeDiv(t.SalaryWeight, t.Volume) }

// Group is one bucket of a grouping pass.
type Group struct {
	Key       string
	Label     string
	Count     int
	Totals    Totals
	SubGroups []Group
	View      RecordView
}

// Sort modes understood by SortGroups.
const (
	SortKeyAsc         = "key_asc"
	SortAdmissionsDesc = "admissions_desc"
	SortVolumeDesc     = "volume_desc"
)

// GroupAndAggregate is the main entry point for the aggregation pipeline.
// Pipeline: group → aggregate → sort → limit.
func GroupAndAggregate(view RecordView, groupBy []string, sortBy string, limit int) []Group {
	if view.Len() == 0 {
		return nil
	}

	// 1. Group
	var groups []Group
	if len(groupBy) == 0 {
		groups = []Group{{Key: "all", Label: "Total", View: view}}
	} else if len(groupBy) == 1 {
		groups = groupBySingle(view, groupBy[0])
	} else {
		groups = groupByMulti(view, groupBy)
	}

	// 2. Aggregate
	for i := range groups {
		aggregateGroup(&groups[i])
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j])
		}
	}

	// 3. Sort
	SortGroups(groups, sortBy)
	for i := range groups {
		SortGroups(groups[i].SubGroups, sortBy)
	}

	// 4. Limit
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, dimensions []string) []Group {
	if len(dimensions) < 2 {
		return groupBySingle(view, dimensions[0])
	}

	primaryGroups := groupBySingle(view, dimensions[0])
	for i := range primaryGroups {
		primaryGroups[i].SubGroups = groupBySingle(primaryGroups[i].View, dimensions[1])
	}
	return primaryGroups
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregateGroup(group *Group) {
	group.Count = group.View.Len()
	group.Totals = SumTotals(group.View)
}

// SumTotals sums the additive measures across a view.
func SumTotals(view RecordView) Totals {
	var adm, dem float64
	var t Totals
	for i := 0; i < view.Len(); i++ {
		adm += view.Measure(i, MeasureAdmissions)
		dem += view.Measure(i, MeasureTerminations)
		t.Volume += view.Measure(i, MeasureVolume)
		t.SalaryWeight += view.Measure(i, MeasureSalaryWeight)
	}
	t.Admissions = int(math.Round(adm))
	t.Terminations = int(math.Round(dem))
	return t
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts groups by the specified mode. Ties break on key so the
// output never depends on map iteration or input order.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case SortKeyAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	case SortAdmissionsDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			a, b := groups[i].Totals.Admissions, groups[j].Totals.Admissions
			if a != b {
				return a > b
			}
			return groups[i].Key < groups[j].Key
		})
	case SortVolumeDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			a, b := groups[i].Totals.Volume, groups[j].Totals.Volume
			if a != b {
				return a > b
			}
			return groups[i].Key < groups[j].Key
		})
	default:
		// preserve grouping order
	}
}

// ============================================================================
// NUMERIC UTILITIES
// ============================================================================

// SafeDiv returns num/den, or 0 when den is 0.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// roundEpsilon absorbs the error of a product like 0.x5*10 landing just
// below the half.
const roundEpsilon = 1e-9

// RoundTo1 rounds half-up to one decimal place.
func RoundTo1(v float64) float64 {
	return math.Floor(v*10+0.5+roundEpsilon) / 10
}

// RoundTo2 rounds half-up to two decimal places.
func RoundTo2(v float64) float64 {
	return math.Floor(v*100+0.5+roundEpsilon) / 100
}

// Share returns part as a percentage of total, rounded to one decimal.
// A zero total yields 0.
func Share(part, total int) float64 {
	return Percent1(part, total)
}

// Percent1 is num/den*100 rounded half-up to one decimal, computed in
// integers so .x5 boundaries are exact. A zero den yields 0.
func Percent1(num, den int) float64 {
	if den == 0 {
		return 0
	}
	if num < 0 || den < 0 {
		return RoundTo1(float64(num) / float64(den) * 100)
	}
	n, d := int64(num), int64(den)
	return float64((n*2000+d)/(2*d)) / 10
}

// UniqueValues returns distinct non-empty values for a dimension, in first-seen order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	return result
}
