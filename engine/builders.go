package engine

import (
	"sort"
	"strconv"
)

// ============================================================================
// ROW BUILDERS — Typed rows from aggregated groups
// ============================================================================
// Every derived row is constructed here. Balance is always recomputed from
// the group's totals and weighted salaries always come from Totals.
// ============================================================================

// MonthNames are the Portuguese short month names, January first.
var MonthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// AgeBandOrder is the canonical CAGED age-band order.
var AgeBandOrder = []string{
	"Menor de 18",
	"18 a 24 anos",
	"25 a 29 anos",
	"30 a 39 anos",
	"40 a 49 anos",
	"50 a 64 anos",
	"65 anos ou mais",
	"Não informado",
}

// DefaultFallbackColor is used for chains absent from the baseline palette.
const DefaultFallbackColor = "#808080"

// ============================================================================
// TIME
// ============================================================================

// BuildTimeseries turns period groups into rows ordered by period with a
// running cumulative balance.
func BuildTimeseries(groups []Group) []PeriodRow {
	sorted := sortedByKey(groups)
	rows := make([]PeriodRow, 0, len(sorted))
	for _, g := range sorted {
		mean := g.Totals.MeanSalary()
		rows = append(rows, PeriodRow{
			Period:       g.Key,
			Admissions:   g.Totals.Admissions,
			Terminations: g.Totals.Terminations,
			Balance:      g.Totals.Balance(),
			MeanSalary:   mean,
		})
	}
	accumulate(rows)
	return rows
}

// accumulate fills CumulativeBalance in a single left-to-right pass.
func accumulate(rows []PeriodRow) {
	running := 0
	for i := range rows {
		running += rows[i].Balance
		rows[i].CumulativeBalance = running
	}
}

// BuildYearRows turns year groups into rows ordered by year.
// Keys that are not a number sort as year 0.
func BuildYearRows(groups []Group) []YearRow {
	rows := make([]YearRow, 0, len(groups))
	for _, g := range groups {
		year, _ := strconv.Atoi(g.Key)
		rows = append(rows, YearRow{
			Year:         year,
			Admissions:   g.Totals.Admissions,
			Terminations: g.Totals.Terminations,
			Balance:      g.Totals.Balance(),
			MeanSalary:   g.Totals.MeanSalary(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows
}

// BuildSeasonality turns month groups ("01".."12") into exactly 12 rows.
// The index compares each month's admissions with the mean over the months
// present in the data; with no admissions at all every index is 100.
// The mean is over the observed months, not a fixed 12.
func BuildSeasonality(groups []Group) []MonthRow {
	var byMonth [12]Totals
	var seen [12]bool
	for _, g := range groups {
		m, err := strconv.Atoi(g.Key)
		if err != nil || m < 1 || m > 12 {
			continue
		}
		t := byMonth[m-1]
		t.Admissions += g.Totals.Admissions
		t.Terminations += g.Totals.Terminations
		byMonth[m-1] = t
		seen[m-1] = true
	}

	total, observed := 0, 0
	for i := range byMonth {
		if seen[i] {
			total += byMonth[i].Admissions
			observed++
		}
	}

	rows := make([]MonthRow, 12)
	for i := range rows {
		idx := 100.0
		if total > 0 {
			// admissions / (total/observed) * 100
			idx = Percent1(byMonth[i].Admissions*observed, total)
		}
		rows[i] = MonthRow{
			Month:        i + 1,
			MonthName:    MonthNames[i],
			Admissions:   byMonth[i].Admissions,
			Terminations: byMonth[i].Terminations,
			Balance:      byMonth[i].Balance(),
			Index:        idx,
		}
	}
	return rows
}

// ============================================================================
// CHAINS
// ============================================================================

// BuildChainRows turns chain groups into rows sorted by admissions (desc).
// Share is relative to the admissions of the groups given. Colour, description
// and subclass count come from the baseline row when the chain is known.
func BuildChainRows(groups []Group, known map[string]ChainRow, fallbackColor string) []ChainRow {
	if fallbackColor == "" {
		fallbackColor = DefaultFallbackColor
	}
	total := 0
	for _, g := range groups {
		total += g.Totals.Admissions
	}

	sorted := append([]Group(nil), groups...)
	SortGroups(sorted, SortAdmissionsDesc)

	rows := make([]ChainRow, 0, len(sorted))
	for _, g := range sorted {
		mean := g.Totals.MeanSalary()
		row := ChainRow{
			Chain:          g.Key,
			Admissions:     g.Totals.Admissions,
			Terminations:   g.Totals.Terminations,
			Balance:        g.Totals.Balance(),
			MeanSalary:     mean,
			MedianSalary:   mean, // weighted mean stands in for the median
			Municipalities: len(UniqueValues(g.View, DimMunicipality)),
			Share:          Share(g.Totals.Admissions, total),
			Color:          fallbackColor,
		}
		if base, ok := known[g.Key]; ok {
			if base.Color != "" {
				row.Color = base.Color
			}
			row.Description = base.Description
			row.Subclasses = base.Subclasses
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildChainPeriodRows flattens period × chain groups, ordered by period then chain.
func BuildChainPeriodRows(groups []Group) []ChainPeriodRow {
	var rows []ChainPeriodRow
	for _, pg := range sortedByKey(groups) {
		for _, cg := range sortedByKey(pg.SubGroups) {
			rows = append(rows, ChainPeriodRow{
				Period:       pg.Key,
				Chain:        cg.Key,
				Admissions:   cg.Totals.Admissions,
				Terminations: cg.Totals.Terminations,
				Balance:      cg.Totals.Balance(),
			})
		}
	}
	if rows == nil {
		rows = []ChainPeriodRow{}
	}
	return rows
}

// TimeseriesFromChainPeriods re-sums per-chain-per-period rows into a time
// series. Salary is not available at this grain and stays 0.
func TimeseriesFromChainPeriods(rows []ChainPeriodRow) []PeriodRow {
	byPeriod := make(map[string]*PeriodRow)
	for _, r := range rows {
		p, ok := byPeriod[r.Period]
		if !ok {
			p = &PeriodRow{Period: r.Period}
			byPeriod[r.Period] = p
		}
		p.Admissions += r.Admissions
		p.Terminations += r.Terminations
	}
	out := make([]PeriodRow, 0, len(byPeriod))
	for _, p := range byPeriod {
		p.Balance = p.Admissions - p.Terminations
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	accumulate(out)
	return out
}

// ============================================================================
// DEMOGRAPHICS
// ============================================================================

// BuildDemographicRows turns value groups of one dimension into rows.
// Age bands follow AgeBandOrder; every other dimension sorts by admissions.
// Weighted salary is filled only when the slice carries salaries.
func BuildDemographicRows(dim Demographic, groups []Group) []DemographicRow {
	total := 0
	for _, g := range groups {
		total += g.Totals.Admissions
	}

	sorted := append([]Group(nil), groups...)
	if dim == DemographicAgeBand {
		sortByCanonical(sorted, AgeBandOrder)
	} else {
		SortGroups(sorted, SortAdmissionsDesc)
	}

	rows := make([]DemographicRow, 0, len(sorted))
	for _, g := range sorted {
		mean := g.Totals.MeanSalary()
		rows = append(rows, DemographicRow{
			Dimension:    dim,
			Value:        g.Key,
			Admissions:   g.Totals.Admissions,
			Terminations: g.Totals.Terminations,
			Balance:      g.Totals.Balance(),
			MeanSalary:   mean,
			MedianSalary: mean,
			Share:        Share(g.Totals.Admissions, total),
		})
	}
	return rows
}

// BuildCrossRows flattens chain × sex groups, ordered by chain then sex.
// The sex slice has no salary, so MeanSalary is an explicit 0.
func BuildCrossRows(groups []Group) []CrossRow {
	rows := []CrossRow{}
	for _, cg := range sortedByKey(groups) {
		for _, sg := range sortedByKey(cg.SubGroups) {
			rows = append(rows, CrossRow{
				Chain:        cg.Key,
				Sex:          sg.Key,
				Admissions:   sg.Totals.Admissions,
				Terminations: sg.Totals.Terminations,
				Balance:      sg.Totals.Balance(),
				MeanSalary:   0,
			})
		}
	}
	return rows
}

// ============================================================================
// MUNICIPALITIES
// ============================================================================

// BuildMunicipalityRows turns municipality × chain groups into map rows sorted
// by admissions (desc). The dominant chain is the one with the largest volume.
// name resolves display names; it may return "" to fall back to the code.
func BuildMunicipalityRows(groups []Group, name func(code string) string) []MunicipalityRow {
	sorted := append([]Group(nil), groups...)
	SortGroups(sorted, SortAdmissionsDesc)

	rows := make([]MunicipalityRow, 0, len(sorted))
	for _, g := range sorted {
		row := MunicipalityRow{
			Code:          g.Key,
			Name:          g.Key,
			Admissions:    g.Totals.Admissions,
			Terminations:  g.Totals.Terminations,
			Balance:       g.Totals.Balance(),
			MeanSalary:    g.Totals.MeanSalary(),
			DominantChain: dominantChain(g.SubGroups),
		}
		if name != nil {
			if n := name(g.Key); n != "" {
				row.Name = n
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func dominantChain(chains []Group) string {
	if len(chains) == 0 {
		return ""
	}
	sorted := append([]Group(nil), chains...)
	SortGroups(sorted, SortVolumeDesc)
	return sorted[0].Key
}

// ============================================================================
// HELPERS
// ============================================================================

func sortedByKey(groups []Group) []Group {
	sorted := append([]Group(nil), groups...)
	SortGroups(sorted, SortKeyAsc)
	return sorted
}

// sortByCanonical orders groups by their position in order; unknown keys go
// last, alphabetically.
func sortByCanonical(groups []Group, order []string) {
	rank := make(map[string]int, len(order))
	for i, k := range order {
		rank[k] = i
	}
	pos := func(k string) int {
		if r, ok := rank[k]; ok {
			return r
		}
		return len(order)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		pi, pj := pos(groups[i].Key), pos(groups[j].Key)
		if pi != pj {
			return pi < pj
		}
		return groups[i].Key < groups[j].Key
	})
}
