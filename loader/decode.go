package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cast"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/geo"
)

// dimensionKeys maps each demographic to its table key in the dimensions file.
var dimensionKeys = map[engine.Demographic]string{
	engine.DemographicSex:         "bySexo",
	engine.DemographicAgeBand:     "byFaixa",
	engine.DemographicEducation:   "byEscolaridade",
	engine.DemographicCompanySize: "byPorte",
}

type baselineDoc struct {
	Metadata engine.Metadata `json:"metadata"`
	Kpis     engine.Kpis     `json:"kpis"`
	engine.AggregatedView
}

// LoadBaseline reads the pre-aggregated baseline bundle.
func LoadBaseline(ctx context.Context, src Source, name string) (*engine.Baseline, error) {
	var doc baselineDoc
	if err := decodeAsset(ctx, src, name, &doc); err != nil {
		return nil, err
	}
	return engine.NewBaseline(doc.Metadata, doc.Kpis, doc.AggregatedView), nil
}

// LoadGeography reads municipality boundaries and builds the region index.
func LoadGeography(ctx context.Context, src Source, name string, keys geo.PropertyKeys) (*geo.Index, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	units, err := geo.ParseFeatureCollection(rc, keys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return geo.Build(units), nil
}

// LoadCube reads the granular cube. Municipality codes may be numbers;
// null salaries decode to 0.
func LoadCube(ctx context.Context, src Source, name string) ([]engine.GranularRecord, error) {
	var raw []map[string]any
	if err := decodeAsset(ctx, src, name, &raw); err != nil {
		return nil, err
	}
	cube := make([]engine.GranularRecord, 0, len(raw))
	for _, m := range raw {
		cube = append(cube, CubeRecord(m))
	}
	return cube, nil
}

// CubeRecord converts one loosely typed cube row.
func CubeRecord(m map[string]any) engine.GranularRecord {
	return engine.GranularRecord{
		Municipality: cast.ToString(m["mun"]),
		Chain:        cast.ToString(m["cadeia"]),
		Period:       cast.ToString(m["periodo"]),
		Admissions:   cast.ToInt(m["admissoes"]),
		Terminations: cast.ToInt(m["demissoes"]),
		MeanSalary:   cast.ToFloat64(m["salario_medio"]),
	}
}

// LoadDimensions reads the demographic slice tables. A table missing from
// the file stays nil so the engine keeps baseline rows for it.
func LoadDimensions(ctx context.Context, src Source, name string) (*engine.DimensionTables, error) {
	var raw map[string][]map[string]any
	if err := decodeAsset(ctx, src, name, &raw); err != nil {
		return nil, err
	}

	tables := &engine.DimensionTables{}
	for _, d := range engine.Demographics {
		rows, ok := raw[dimensionKeys[d]]
		if !ok {
			continue
		}
		records := make([]engine.DimensionRecord, 0, len(rows))
		for _, m := range rows {
			records = append(records, DimensionRecord(m, d))
		}
		switch d {
		case engine.DemographicSex:
			tables.BySex = records
		case engine.DemographicAgeBand:
			tables.ByAgeBand = records
		case engine.DemographicEducation:
			tables.ByEducation = records
		case engine.DemographicCompanySize:
			tables.ByCompanySize = records
		}
	}
	return tables, nil
}

// DimensionRecord converts one loosely typed demographic row; the value is
// read from the dimension's own key.
func DimensionRecord(m map[string]any, d engine.Demographic) engine.DimensionRecord {
	return engine.DimensionRecord{
		Municipality: cast.ToString(m["mun"]),
		Period:       cast.ToString(m["periodo"]),
		Chain:        cast.ToString(m["cadeia"]),
		Value:        cast.ToString(m[d.WireKey()]),
		Admissions:   cast.ToInt(m["admissoes"]),
		Terminations: cast.ToInt(m["demissoes"]),
		MeanSalary:   cast.ToFloat64(m["salario_medio"]),
	}
}

func decodeAsset(ctx context.Context, src Source, name string, v any) error {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()
	return decodeJSON(rc, name, v)
}

func decodeJSON(r io.Reader, name string, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}
