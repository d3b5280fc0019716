package engine

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ============================================================================
// TEXT BUILDER — Produces a plain-text summary of a Result
// ============================================================================
// Numbers use Brazilian grouping (1.234.567 and 1.234,56).
// ============================================================================

// TextData is a short textual summary of one recomputation.
type TextData struct {
	Headline string      `json:"headline"`
	Period   string      `json:"period"`
	Lines    []string    `json:"lines"`
	Growth   *GrowthData `json:"growth,omitempty"`
}

// GrowthData compares the last two periods of the time series.
type GrowthData struct {
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	EarliestValue  int     `json:"earliestValue"`
	LatestValue    int     `json:"latestValue"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"`
}

// BuildText summarizes a result's KPIs, leading chain and trend.
func BuildText(r *Result) *TextData {
	headline := "Todos os dados"
	if label := r.Filters.Label(); label != "" {
		headline = "Filtro: " + label
	}

	td := &TextData{
		Headline: headline,
		Period:   DerivePeriod(r.View.Timeseries),
	}
	k := r.Kpis
	td.Lines = append(td.Lines,
		"Admissões: "+FormatInt(k.Cumulative.Admissions),
		"Demissões: "+FormatInt(k.Cumulative.Terminations),
		"Saldo: "+FormatSigned(k.Cumulative.Balance),
		"Salário médio: "+FormatMoney(k.Salary.Mean),
		"Salário mediano: "+FormatMoney(k.Salary.Median),
	)
	if len(r.View.ByChain) > 0 {
		top := r.View.ByChain[0]
		td.Lines = append(td.Lines, fmt.Sprintf("Cadeia líder: %s (%s%% das admissões)", top.Chain, humanize.FormatFloat("#.###,#", top.Share)))
	}
	if k.ReferencePeriod != "" {
		td.Lines = append(td.Lines, "Período de referência: "+k.ReferencePeriod)
	}
	td.Lines = append(td.Lines, "Modo: "+r.Mode.String())

	td.Growth = BuildGrowth(r.View.Timeseries)
	if td.Growth != nil {
		td.Lines = append(td.Lines, fmt.Sprintf("Admissões %s → %s: %s (%s%%)",
			td.Growth.EarliestPeriod, td.Growth.LatestPeriod, td.Growth.Direction,
			humanize.FormatFloat("#.###,#", td.Growth.ChangePercent)))
	}
	return td
}

// ============================================================================
// GROWTH BUILDER
// ============================================================================

// BuildGrowth compares admissions of the last two periods.
// Returns nil with fewer than two periods.
func BuildGrowth(series []PeriodRow) *GrowthData {
	if len(series) < 2 {
		return nil
	}
	prev, last := series[len(series)-2], series[len(series)-1]
	change := float64(last.Admissions - prev.Admissions)
	pct := RoundTo1(SafeDiv(change, float64(prev.Admissions)) * 100)

	direction := "estável"
	if pct > 0.5 {
		direction = "alta"
	} else if pct < -0.5 {
		direction = "queda"
	}

	return &GrowthData{
		EarliestPeriod: prev.Period,
		LatestPeriod:   last.Period,
		EarliestValue:  prev.Admissions,
		LatestValue:    last.Admissions,
		ChangePercent:  pct,
		Direction:      direction,
	}
}

// ============================================================================
// FORMATTING
// ============================================================================

// DerivePeriod describes the span of a time series, e.g. "2023-01 – 2024-06".
func DerivePeriod(series []PeriodRow) string {
	switch len(series) {
	case 0:
		return "Sem dados"
	case 1:
		return series[0].Period
	}
	return fmt.Sprintf("%s – %s", series[0].Period, series[len(series)-1].Period)
}

// FormatInt formats an integer with "." thousands separators.
func FormatInt(n int) string {
	return humanize.FormatInteger("#.###,", n)
}

// FormatSigned formats an integer with an explicit sign for positive values.
func FormatSigned(n int) string {
	if n > 0 {
		return "+" + FormatInt(n)
	}
	return FormatInt(n)
}

// FormatMoney formats a BRL amount, e.g. "R$ 1.234,56".
func FormatMoney(v float64) string {
	return "R$ " + humanize.FormatFloat("#.###,##", v)
}
