package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"github.com/spektr-org/painel/schema"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from an AggregatedView
// ============================================================================
// Column order and labels come from the schema catalog. Rows are read through
// their JSON encoding so every table kind shares one formatting path.
// ============================================================================

// Column is one rendered column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Align string `json:"align"`
}

// Summary is the totals row of a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// TableData is a display-ready table.
type TableData struct {
	Key     string     `json:"key"`
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Tables returns the view's tables keyed by their JSON key.
func (v *AggregatedView) Tables() map[string]any {
	return map[string]any{
		"timeseries":         v.Timeseries,
		"byCadeia":           v.ByChain,
		"yearly":             v.ByYear,
		"seasonality":        v.Seasonality,
		"bySexo":             v.BySex,
		"byFaixaEtaria":      v.ByAgeBand,
		"byEscolaridade":     v.ByEducation,
		"byPorte":            v.ByCompanySize,
		"salaryDistribution": v.SalaryPercentiles,
		"crossCadeiaSexo":    v.CrossChainBySex,
		"byCnae":             v.ByActivity,
		"timeseriesCadeia":   v.TimeseriesByChain,
		"byMunicipio":        v.ByMunicipality,
		"topMunicipios":      v.TopMunicipalities,
	}
}

// BuildTables renders every catalog table of the view, in catalog order.
func BuildTables(view *AggregatedView, catalog schema.Config) ([]*TableData, error) {
	out := make([]*TableData, 0, len(catalog.Tables))
	for _, meta := range catalog.Tables {
		t, err := BuildTable(view, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// BuildTable renders one table of the view.
func BuildTable(view *AggregatedView, meta schema.TableMeta) (*TableData, error) {
	rows, ok := view.Tables()[meta.Key]
	if !ok {
		return nil, fmt.Errorf("unknown table %q", meta.Key)
	}
	records, err := rowsAsMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", meta.Key, err)
	}

	columns := make([]Column, 0, len(meta.Columns))
	for _, c := range meta.Columns {
		columns = append(columns, Column{Key: c.Key, Label: c.DisplayName, Type: c.Type, Align: c.Align()})
	}

	table := &TableData{
		Key:     meta.Key,
		Title:   meta.DisplayName,
		Columns: columns,
		Rows:    make([][]string, 0, len(records)),
	}

	totals := make(map[string]int)
	for _, rec := range records {
		row := make([]string, 0, len(meta.Columns))
		for _, c := range meta.Columns {
			row = append(row, FormatCell(rec[c.Key], c.Type))
			if c.Summable() {
				totals[c.Key] += cast.ToInt(rec[c.Key])
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(totals) > 0 && len(records) > 0 {
		table.Summary = &Summary{
			Label:  fmt.Sprintf("Total (%d linhas)", len(records)),
			Values: make(map[string]string, len(totals)),
		}
		for k, v := range totals {
			table.Summary.Values[k] = strconv.Itoa(v)
		}
	}
	return table, nil
}

// FormatCell renders a decoded JSON value for a column type.
// Missing values render as "".
func FormatCell(v any, typ string) string {
	if v == nil {
		return ""
	}
	switch typ {
	case schema.TypeInt:
		return strconv.Itoa(cast.ToInt(v))
	case schema.TypeCurrency:
		return strconv.FormatFloat(RoundTo2(cast.ToFloat64(v)), 'f', 2, 64)
	case schema.TypePercent:
		return strconv.FormatFloat(RoundTo1(cast.ToFloat64(v)), 'f', 1, 64)
	case schema.TypeNumber:
		f := cast.ToFloat64(v)
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return cast.ToString(v)
	}
}

func rowsAsMaps(rows any) ([]map[string]any, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
