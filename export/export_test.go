package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/schema"
)

func sampleTables(t *testing.T) []*engine.TableData {
	t.Helper()
	view := &engine.AggregatedView{
		ByChain: []engine.ChainRow{
			{Chain: "Soja", Admissions: 30, Terminations: 5, Balance: 25, MeanSalary: 2000, Share: 75, Color: "#16a34a"},
			{Chain: "Milho", Admissions: 10, Terminations: 5, Balance: 5, MeanSalary: 1500, Share: 25},
		},
		Timeseries: []engine.PeriodRow{
			{Period: "2024-01", Admissions: 40, Terminations: 10, Balance: 30, CumulativeBalance: 30},
		},
	}
	catalog := schema.Dashboard()
	var out []*engine.TableData
	for _, key := range []string{"byCadeia", "timeseries"} {
		meta, ok := catalog.Table(key)
		if !ok {
			t.Fatalf("missing table %s", key)
		}
		tbl, err := engine.BuildTable(view, meta)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, tbl)
	}
	return out
}

func TestWriteCSVSections(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTables(t)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"# Cadeias produtivas", "# Série temporal", "Cadeia,Admissões", "Soja,30,5,25", "Total (2 linhas)"} {
		if !strings.Contains(out, want) {
			t.Errorf("CSV missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "# ") != 2 {
		t.Errorf("expected one section per table:\n%s", out)
	}
}

func TestWriteTableCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTableCSV(&buf, sampleTables(t)[1]); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], "2024-01,40,10,30") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteXLSXOneSheetPerTable(t *testing.T) {
	var buf bytes.Buffer
	tables := sampleTables(t)
	if err := WriteXLSX(&buf, tables); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "byCadeia" || sheets[1] != "timeseries" {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows("byCadeia")
	if err != nil {
		t.Fatal(err)
	}
	// header + 2 rows + totals
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d: %v", len(rows), rows)
	}
	if rows[0][0] != "Cadeia" || rows[1][0] != "Soja" || rows[1][1] != "30" {
		t.Errorf("unexpected cells: %v", rows[:2])
	}
	if rows[3][1] != "40" {
		t.Errorf("totals row admissions = %q", rows[3][1])
	}
}

func TestSheetName(t *testing.T) {
	long := strings.Repeat("x", 40)
	if got := SheetName(long); len(got) != 31 {
		t.Errorf("SheetName length = %d", len(got))
	}
	if SheetName("byPorte") != "byPorte" {
		t.Error("short names are kept")
	}
}
