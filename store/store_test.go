package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spektr-org/painel/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{DBPath: ":memory:", BatchSize: 2})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCube() []engine.GranularRecord {
	return []engine.GranularRecord{
		{Municipality: "410010", Chain: "Soja", Period: "2024-01", Admissions: 10, Terminations: 2, MeanSalary: 1800.25},
		{Municipality: "410020", Chain: "Milho", Period: "2024-01", Admissions: 3, Terminations: 1},
		{Municipality: "410030", Chain: "Soja", Period: "2024-02", Admissions: 5, Terminations: 5, MeanSalary: 1200},
	}
}

func TestCubeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.ImportCube(ctx, sampleCube()); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadCube(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, sampleCube()) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, sampleCube())
	}

	// Import replaces.
	if err := s.ImportCube(ctx, sampleCube()[:1]); err != nil {
		t.Fatal(err)
	}
	got, _ = s.LoadCube(ctx)
	if len(got) != 1 {
		t.Errorf("expected 1 record after re-import, got %d", len(got))
	}
}

func TestEmptyCubeIsNonNil(t *testing.T) {
	got, err := newTestStore(t).LoadCube(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil cube, got %#v", got)
	}
}

func TestDimensionsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := &engine.DimensionTables{
		BySex: []engine.DimensionRecord{
			{Municipality: "410010", Period: "2024-01", Chain: "Soja", Value: "Masculino", Admissions: 7, Terminations: 1},
			{Municipality: "410010", Period: "2024-01", Chain: "Soja", Value: "Feminino", Admissions: 3},
			{Municipality: "410020", Period: "2024-01", Chain: "Milho", Value: "Feminino", Admissions: 2, Terminations: 2},
		},
		ByEducation:   []engine.DimensionRecord{{Municipality: "410010", Period: "2024-01", Chain: "Soja", Value: "Médio completo", Admissions: 7, MeanSalary: 1750}},
		ByCompanySize: []engine.DimensionRecord{},
	}
	if err := s.ImportDimensions(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadDimensions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.BySex, in.BySex) || !reflect.DeepEqual(got.ByEducation, in.ByEducation) {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.ByAgeBand != nil {
		t.Error("a table that never loaded should come back nil")
	}
	if got.ByCompanySize == nil || len(got.ByCompanySize) != 0 {
		t.Errorf("empty table should come back empty, got %#v", got.ByCompanySize)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.DimensionRecords["sexo"] != 3 || st.DimensionRecords["porte"] != 0 {
		t.Errorf("stats = %+v", st.DimensionRecords)
	}
}

func TestSnapshotOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "painel.db")
	s, err := Open(Config{DBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ImportCube(context.Background(), sampleCube()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := Open(Config{DBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	st, err := reopened.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.CubeRecords != 3 {
		t.Errorf("expected 3 persisted records, got %d", st.CubeRecords)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}
