// Package export writes rendered view tables as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/schema"
)

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// WriteCSV writes every table as a section: a title line, the header, the
// rows, an optional totals row and a blank separator line.
func WriteCSV(w io.Writer, tables []*engine.TableData) error {
	cw := csv.NewWriter(w)
	for i, t := range tables {
		if i > 0 {
			if err := cw.Write(nil); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{"# " + t.Title}); err != nil {
			return err
		}
		if err := cw.Write(headerLabels(t)); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		if t.Summary != nil {
			if err := cw.Write(summaryRow(t)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableCSV writes a single table without the title line.
func WriteTableCSV(w io.Writer, t *engine.TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headerLabels(t)); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes one sheet per table, named by the table key. Numeric
// columns are stored as numbers.
func WriteXLSX(w io.Writer, tables []*engine.TableData) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, t := range tables {
		sheet := SheetName(t.Key)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := writeSheet(f, sheet, t, header); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	if len(tables) > 0 {
		f.SetActiveSheet(0)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *engine.TableData, headerStyle int) error {
	for c, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col.Label); err != nil {
			return err
		}
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := 14.0
		if col.Type == schema.TypeText {
			width = 22
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		if err := writeRow(f, sheet, r+2, t.Columns, row); err != nil {
			return err
		}
	}

	if t.Summary != nil {
		if err := writeRow(f, sheet, len(t.Rows)+2, t.Columns, summaryRow(t)); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cols []engine.Column, row []string) error {
	for c, v := range row {
		cell, err := excelize.CoordinatesToCellName(c+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, cellValue(cols, c, v)); err != nil {
			return err
		}
	}
	return nil
}

// cellValue stores numeric columns as numbers; empty and text cells as strings.
func cellValue(cols []engine.Column, c int, v string) any {
	if c >= len(cols) || cols[c].Type == schema.TypeText || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

func headerLabels(t *engine.TableData) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

func summaryRow(t *engine.TableData) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = t.Summary.Values[c.Key]
	}
	if len(out) > 0 && out[0] == "" {
		out[0] = t.Summary.Label
	}
	return out
}

// SheetName fits a table key into Excel's sheet name limit.
func SheetName(key string) string {
	if len(key) > maxSheetName {
		return key[:maxSheetName]
	}
	return key
}
