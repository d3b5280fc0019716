package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/export"
	"github.com/spektr-org/painel/logger"
	"github.com/spektr-org/painel/schema"
)

// ============================================================================
// OUTPUT TYPES
// ============================================================================

type cliOutput struct {
	Mode    engine.Mode            `json:"mode"`
	Filters engine.FilterState     `json:"filters"`
	Summary *engine.TextData       `json:"summary"`
	Kpis    engine.Kpis            `json:"kpis"`
	View    *engine.AggregatedView `json:"view"`
}

func render(w io.Writer, r *engine.Result, format string, only []string) error {
	switch format {
	case "text":
		writeText(w, engine.BuildText(r))
		return nil
	case "csv", "xlsx":
		tables, err := selectTables(r.View, only)
		if err != nil {
			return err
		}
		if format == "csv" {
			return export.WriteCSV(w, tables)
		}
		return export.WriteXLSX(w, tables)
	case "json", "pretty":
		return writeJSON(w, cliOutput{
			Mode:    r.Mode,
			Filters: r.Filters,
			Summary: engine.BuildText(r),
			Kpis:    r.Kpis,
			View:    r.View,
		}, format)
	}
	return fmt.Errorf("unknown format %q (json, pretty, text, csv, xlsx)", format)
}

// selectTables renders the catalog tables, keeping only the listed keys
// when any are given.
func selectTables(view *engine.AggregatedView, only []string) ([]*engine.TableData, error) {
	catalog := schema.Dashboard()
	if len(only) == 0 {
		return engine.BuildTables(view, catalog)
	}
	out := make([]*engine.TableData, 0, len(only))
	for _, key := range only {
		meta, ok := catalog.Table(key)
		if !ok {
			return nil, fmt.Errorf("unknown table %q (known: %v)", key, catalog.TableKeys())
		}
		t, err := engine.BuildTable(view, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

func writeText(w io.Writer, td *engine.TextData) {
	fmt.Fprintln(w, td.Headline)
	if td.Period != "" {
		fmt.Fprintln(w, td.Period)
	}
	fmt.Fprintln(w)
	for _, line := range td.Lines {
		fmt.Fprintln(w, "  "+line)
	}
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func reportWritten(log *logger.Logger, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	log.Info("📄 painel: output written", "path", path, "size", humanize.Bytes(uint64(info.Size())))
}
