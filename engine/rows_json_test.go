package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDemographicRowUsesDimensionKey(t *testing.T) {
	row := DemographicRow{Dimension: DemographicAgeBand, Value: "18 a 24 anos", Admissions: 3, Terminations: 1, Balance: 2, Share: 50}
	raw, err := json.Marshal(row)
	if err != nil {
		t.Fatal(err)
	}
	got := string(raw)
	if !strings.Contains(got, `"faixa":"18 a 24 anos"`) {
		t.Errorf("expected faixa key, got %s", got)
	}
	if strings.Contains(got, "salario_medio") {
		t.Errorf("zero salary should be omitted, got %s", got)
	}

	var back DemographicRow
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if back != row {
		t.Errorf("decoded %+v, want %+v", back, row)
	}
}

func TestDemographicRowDecodesNullSalary(t *testing.T) {
	var r DemographicRow
	err := json.Unmarshal([]byte(`{"sexo":"Feminino","admissoes":4,"demissoes":1,"saldo":3,"salario_medio":null,"salario_mediana":1650.5,"pct":40}`), &r)
	if err != nil {
		t.Fatal(err)
	}
	if r.Dimension != DemographicSex || r.Value != "Feminino" {
		t.Errorf("dimension not detected: %+v", r)
	}
	assertFloat(t, r.MeanSalary, 0, "null salary")
	assertFloat(t, r.MedianSalary, 1650.5, "median salary")
}

func TestBaselineDemographicsKeepTableKey(t *testing.T) {
	// A row stored under the wrong key is re-pinned to its table's dimension.
	var view AggregatedView
	err := json.Unmarshal([]byte(`{"byPorte":[{"valor":"Micro","admissoes":1,"demissoes":0,"saldo":1,"pct":100}]}`), &view)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBaseline(Metadata{}, Kpis{}, view)
	raw, err := json.Marshal(b.View().ByCompanySize)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"porte":""`) {
		t.Errorf("expected porte key after pinning, got %s", raw)
	}
}

func TestModeMarshalsAsText(t *testing.T) {
	raw, err := json.Marshal(&Result{Mode: ModeChainOnlyDegraded, View: &AggregatedView{}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"chain_only_degraded"`) {
		t.Errorf("mode should marshal as its name, got %s", raw)
	}
}
