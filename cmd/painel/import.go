package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/helpers"
	"github.com/spektr-org/painel/loader"
	"github.com/spektr-org/painel/store"
)

// ============================================================================
// IMPORT — Builds the SQLite snapshot from JSON or CSV exports
// ============================================================================

func runImport(args []string) {
	fs := newFlagSet("import")
	common := bindCommon(fs)
	cubePath := fs.String("cube", "", "Granular cube file (.json or .csv)")
	dimsPath := fs.String("dims", "", "Demographic tables file (.json)")
	batch := fs.Int("batch", 0, "Rows per insert transaction")
	var dimCSV listFlag
	fs.Var(&dimCSV, "dim", "Demographic CSV as key=path, e.g. sexo=sexo.csv (repeatable)")
	_ = fs.Parse(args)

	cfg, err := common.resolve()
	if err != nil {
		fatalf("%v", err)
	}
	log := newLogger(cfg)
	defer log.Sync()

	if cfg.Snapshot.Value == "" {
		fatalf("--snapshot (or PAINEL_SNAPSHOT) is required")
	}
	if *cubePath == "" && *dimsPath == "" && len(dimCSV) == 0 {
		fatalf("nothing to import: pass --cube, --dims or --dim")
	}

	ctx := context.Background()
	st, err := store.Open(store.Config{DBPath: cfg.Snapshot.Value, BatchSize: *batch})
	if err != nil {
		fatalf("Failed to open snapshot: %v", err)
	}
	defer st.Close()

	if *cubePath != "" {
		cube, err := readCube(ctx, *cubePath)
		if err != nil {
			fatalf("Failed to read cube: %v", err)
		}
		if err := st.ImportCube(ctx, cube); err != nil {
			fatalf("Failed to import cube: %v", err)
		}
		log.Info("📊 painel: cube imported", "records", len(cube), "from", *cubePath)
	}

	if *dimsPath != "" || len(dimCSV) > 0 {
		dims, err := readDimensions(ctx, *dimsPath, dimCSV)
		if err != nil {
			fatalf("Failed to read demographic tables: %v", err)
		}
		if err := st.ImportDimensions(ctx, dims); err != nil {
			fatalf("Failed to import demographic tables: %v", err)
		}
		log.Info("📊 painel: demographic tables imported")
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("%s\n  cubo: %s registros\n", st.Path(), humanize.FormatInteger("#.###,", int(stats.CubeRecords)))
	for _, d := range engine.Demographics {
		if n, ok := stats.DimensionRecords[d.WireKey()]; ok {
			fmt.Printf("  %s: %s registros\n", d.WireKey(), humanize.FormatInteger("#.###,", int(n)))
		}
	}
}

func readCube(ctx context.Context, path string) ([]engine.GranularRecord, error) {
	if isCSV(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return helpers.ParseCubeCSV(f)
	}
	src, err := loader.NewSource(filepath.Dir(path), 0)
	if err != nil {
		return nil, err
	}
	return loader.LoadCube(ctx, src, filepath.Base(path))
}

// readDimensions starts from the JSON bundle, if any, and overlays each
// key=path CSV table.
func readDimensions(ctx context.Context, jsonPath string, csvTables []string) (*engine.DimensionTables, error) {
	dims := &engine.DimensionTables{}
	if jsonPath != "" {
		src, err := loader.NewSource(filepath.Dir(jsonPath), 0)
		if err != nil {
			return nil, err
		}
		if dims, err = loader.LoadDimensions(ctx, src, filepath.Base(jsonPath)); err != nil {
			return nil, err
		}
	}

	for _, arg := range csvTables {
		key, path, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("--dim %q: expected key=path", arg)
		}
		d, ok := engine.ParseDemographic(strings.TrimSpace(key))
		if !ok {
			return nil, fmt.Errorf("--dim %q: unknown dimension (sexo, faixa, escolaridade, porte)", arg)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		rows, err := helpers.ParseDimensionCSV(f, d)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		dims.Set(d, rows)
	}
	return dims, nil
}

func isCSV(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".txt"
}
