package helpers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"

	"github.com/spektr-org/painel/engine"
)

// ============================================================================
// CSV HELPER — Parses CSV exports into cube and demographic records
// ============================================================================
// Headers are matched case-insensitively after snake-casing, so "Mun",
// "periodo" and "Salario Medio" all map. The delimiter is "," or ";" (sniffed
// from the header line). Numbers accept a decimal comma. Malformed rows are
// skipped.
// ============================================================================

var cubeColumns = []string{"mun", "periodo", "cadeia"}

// ParseCubeCSV parses a cube export with columns
// mun, periodo, cadeia, admissoes, demissoes, salario_medio.
func ParseCubeCSV(r io.Reader) ([]engine.GranularRecord, error) {
	reader, cols, err := openCSV(r, cubeColumns)
	if err != nil {
		return nil, err
	}

	records := []engine.GranularRecord{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		get := cols.getter(row)
		records = append(records, engine.GranularRecord{
			Municipality: get("mun"),
			Period:       get("periodo"),
			Chain:        get("cadeia"),
			Admissions:   parseInt(get("admissoes")),
			Terminations: parseInt(get("demissoes")),
			MeanSalary:   parseFloat(get("salario_medio")),
		})
	}
	return records, nil
}

// ParseDimensionCSV parses one demographic table. The value column is the
// dimension's key (sexo, faixa, escolaridade, porte) or "valor".
func ParseDimensionCSV(r io.Reader, d engine.Demographic) ([]engine.DimensionRecord, error) {
	reader, cols, err := openCSV(r, cubeColumns)
	if err != nil {
		return nil, err
	}
	valueKey := d.WireKey()
	if _, ok := cols[valueKey]; !ok {
		valueKey = "valor"
		if _, ok := cols[valueKey]; !ok {
			return nil, fmt.Errorf("missing column %q", d.WireKey())
		}
	}

	records := []engine.DimensionRecord{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		get := cols.getter(row)
		records = append(records, engine.DimensionRecord{
			Municipality: get("mun"),
			Period:       get("periodo"),
			Chain:        get("cadeia"),
			Value:        get(valueKey),
			Admissions:   parseInt(get("admissoes")),
			Terminations: parseInt(get("demissoes")),
			MeanSalary:   parseFloat(get("salario_medio")),
		})
	}
	return records, nil
}

// ============================================================================
// INTERNALS
// ============================================================================

type columns map[string]int

func (c columns) getter(row []string) func(string) string {
	return func(key string) string {
		i, ok := c[key]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
}

func openCSV(r io.Reader, required []string) (*csv.Reader, columns, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.Comma = sniffDelimiter(head)

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	cols := make(columns, len(headers))
	for i, h := range headers {
		cols[toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, k := range required {
		if _, ok := cols[k]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", k)
		}
	}
	return reader, cols, nil
}

func sniffDelimiter(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func parseInt(s string) int {
	return int(parseFloat(s))
}

func parseFloat(s string) float64 {
	if i := strings.LastIndex(s, ","); i > strings.LastIndex(s, ".") {
		s = strings.ReplaceAll(s[:i], ".", "") + "." + s[i+1:]
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return cast.ToFloat64(s)
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
