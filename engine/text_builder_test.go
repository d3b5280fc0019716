package engine

import (
	"strings"
	"testing"
)

func TestFormatting(t *testing.T) {
	assertEqualString(t, FormatInt(1234567), "1.234.567", "FormatInt")
	assertEqualString(t, FormatInt(12), "12", "FormatInt small")
	assertEqualString(t, FormatSigned(1500), "+1.500", "FormatSigned positive")
	assertEqualString(t, FormatSigned(0), "0", "FormatSigned zero")
	assertEqualString(t, FormatMoney(1234.5), "R$ 1.234,50", "FormatMoney")
}

func TestDerivePeriod(t *testing.T) {
	assertEqualString(t, DerivePeriod(nil), "Sem dados", "empty")
	assertEqualString(t, DerivePeriod([]PeriodRow{{Period: "2024-01"}}), "2024-01", "single")
	assertEqualString(t, DerivePeriod([]PeriodRow{{Period: "2023-01"}, {Period: "2024-06"}}), "2023-01 – 2024-06", "span")
}

func TestBuildGrowth(t *testing.T) {
	if BuildGrowth([]PeriodRow{{Period: "2024-01"}}) != nil {
		t.Error("growth needs two periods")
	}
	g := BuildGrowth(testBaseline().Tables.Timeseries)
	if g == nil {
		t.Fatal("expected growth")
	}
	assertFloat(t, g.ChangePercent, 16.7, "30 → 35")
	assertEqualString(t, g.Direction, "alta", "direction")

	flat := BuildGrowth([]PeriodRow{{Period: "a", Admissions: 1000}, {Period: "b", Admissions: 1004}})
	assertEqualString(t, flat.Direction, "estável", "within half a percent")

	down := BuildGrowth([]PeriodRow{{Period: "a", Admissions: 10}, {Period: "b", Admissions: 5}})
	assertEqualString(t, down.Direction, "queda", "falling")
}

func TestBuildText(t *testing.T) {
	r := Compute(testSnapshot(), FilterState{})
	td := BuildText(r)
	assertEqualString(t, td.Headline, "Todos os dados", "unfiltered headline")
	assertEqualString(t, td.Period, "2024-01 – 2024-02", "period span")

	joined := strings.Join(td.Lines, "\n")
	for _, want := range []string{"Admissões: 73", "Saldo: +56", "Salário médio: R$ 1.500,00", "Cadeia líder: Soja", "Modo: baseline"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing %q in:\n%s", want, joined)
		}
	}

	filtered := BuildText(Compute(testSnapshot(), FilterState{Chain: "Soja"}))
	assertEqualString(t, filtered.Headline, "Filtro: Soja", "filtered headline")
}
