package helpers

import (
	"strings"
	"testing"

	"github.com/spektr-org/painel/engine"
)

func TestParseCubeCSV(t *testing.T) {
	data := "Mun,Periodo,Cadeia,Admissoes,Demissoes,Salario Medio\n" +
		"410010,2024-01,Soja,10,2,1800.50\n" +
		"410020,2024-02,Milho,3,1,\n"

	recs, err := ParseCubeCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	want := engine.GranularRecord{Municipality: "410010", Period: "2024-01", Chain: "Soja", Admissions: 10, Terminations: 2, MeanSalary: 1800.5}
	if recs[0] != want {
		t.Errorf("got %+v, want %+v", recs[0], want)
	}
	if recs[1].MeanSalary != 0 {
		t.Errorf("empty salary should be 0, got %v", recs[1].MeanSalary)
	}
}

func TestParseCubeCSVSemicolonAndDecimalComma(t *testing.T) {
	data := "\ufeffmun;periodo;cadeia;admissoes;demissoes;salario_medio\n" +
		"410010;2024-01;Soja;10;2;1.800,50\n"

	recs, err := ParseCubeCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].MeanSalary != 1800.5 || recs[0].Municipality != "410010" {
		t.Errorf("got %+v", recs)
	}
}

func TestParseCubeCSVMissingColumn(t *testing.T) {
	_, err := ParseCubeCSV(strings.NewReader("mun,periodo,admissoes\n1,2024-01,3\n"))
	if err == nil || !strings.Contains(err.Error(), "cadeia") {
		t.Errorf("expected missing cadeia error, got %v", err)
	}
}

func TestParseCubeCSVSkipsMalformedRows(t *testing.T) {
	data := "mun,periodo,cadeia,admissoes\n" +
		"410010,2024-01,Soja,1\n" +
		"410020,\"2024-01,Milho,2\n"
	recs, err := ParseCubeCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Errorf("expected the malformed row to be skipped, got %d records", len(recs))
	}
}

func TestParseDimensionCSV(t *testing.T) {
	data := "mun,periodo,cadeia,sexo,admissoes,demissoes\n410010,2024-01,Soja,Feminino,4,1\n"
	recs, err := ParseDimensionCSV(strings.NewReader(data), engine.DemographicSex)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Value != "Feminino" || recs[0].Admissions != 4 {
		t.Errorf("got %+v", recs)
	}

	generic := "mun,periodo,cadeia,valor,admissoes\n410010,2024-01,Soja,Micro,2\n"
	recs, err = ParseDimensionCSV(strings.NewReader(generic), engine.DemographicCompanySize)
	if err != nil || len(recs) != 1 || recs[0].Value != "Micro" {
		t.Errorf("valor column fallback: %+v, %v", recs, err)
	}

	if _, err := ParseDimensionCSV(strings.NewReader(data), engine.DemographicEducation); err == nil {
		t.Error("expected error when the value column is absent")
	}
}

func TestParseFloat(t *testing.T) {
	tests := map[string]float64{
		"":         0,
		"12":       12,
		"12.5":     12.5,
		"12,5":     12.5,
		"1.234,56": 1234.56,
		"1,234.56": 1234.56,
		"abc":      0,
	}
	for in, want := range tests {
		if got := parseFloat(in); got != want {
			t.Errorf("parseFloat(%q) = %v, want %v", in, got, want)
		}
	}
}
