package schema

// Dashboard returns the catalog of the labor-market dashboard.
func Dashboard() Config {
	return Config{
		Name:        "painel",
		Version:     "1",
		Description: "Movimentações de emprego formal por cadeia produtiva (CAGED)",
		Dimensions: []DimensionMeta{
			DefaultDimension("meso", "Mesorregião"),
			{Key: "sub", DisplayName: "Região", Filterable: true, Parent: "meso"},
			{Key: "municipality", DisplayName: "Município", Filterable: true, Parent: "sub"},
			DefaultDimension("chain", "Cadeia produtiva"),
			DefaultDimension("sex", "Sexo"),
			DefaultDimension("age_band", "Faixa etária"),
			DefaultDimension("education", "Escolaridade"),
			{Key: "company_size", DisplayName: "Porte da empresa"},
			{Key: "period", DisplayName: "Período", Filterable: true, IsTemporal: true, TemporalFormat: "YYYY-MM"},
		},
		Measures: []MeasureMeta{
			DefaultMeasure("admissoes", "Admissões"),
			DefaultMeasure("demissoes", "Demissões"),
			{Key: "saldo", DisplayName: "Saldo", Unit: "people", DefaultAggregation: "derived"},
			{Key: "salario_medio", DisplayName: "Salário médio", Unit: "currency", DefaultAggregation: "weighted_mean", WeightedBy: "volume"},
		},
		Tables: []TableMeta{
			{Key: "timeseries", DisplayName: "Série temporal", Columns: cols(
				text("periodo", "Período"), flows(), money("salario_medio", "Salário médio"),
				money("salario_mediana", "Salário mediano"), integer("saldo_acumulado", "Saldo acumulado"))},
			{Key: "byCadeia", DisplayName: "Cadeias produtivas", Columns: cols(
				text("cadeia", "Cadeia"), flows(), money("salario_medio", "Salário médio"),
				money("salario_mediana", "Salário mediano"), money("salario_std", "Desvio padrão"),
				number("n_subclasses", "Subclasses"), number("n_municipios", "Municípios"),
				percent("pct_admissoes", "% admissões"), text("cor", "Cor"), text("descricao", "Descrição"))},
			{Key: "yearly", DisplayName: "Anual", Columns: cols(
				text("ano", "Ano"), flows(), money("salario_medio", "Salário médio"))},
			{Key: "seasonality", DisplayName: "Sazonalidade", Columns: cols(
				number("mes", "Mês"), text("mes_nome", "Nome"), flows(), number("indice", "Índice sazonal"))},
			{Key: "bySexo", DisplayName: "Sexo", Columns: demographic("sexo", "Sexo")},
			{Key: "byFaixaEtaria", DisplayName: "Faixa etária", Columns: demographic("faixa", "Faixa etária")},
			{Key: "byEscolaridade", DisplayName: "Escolaridade", Columns: demographic("escolaridade", "Escolaridade")},
			{Key: "byPorte", DisplayName: "Porte da empresa", Columns: demographic("porte", "Porte")},
			{Key: "salaryDistribution", DisplayName: "Distribuição salarial", Columns: cols(
				text("cadeia", "Cadeia"),
				money("min", "Mínimo"), money("p10", "P10"), money("p25", "P25"), money("p50", "P50"),
				money("p75", "P75"), money("p90", "P90"), money("max", "Máximo"),
				money("mean", "Média"), money("std", "Desvio padrão"))},
			{Key: "crossCadeiaSexo", DisplayName: "Cadeia × sexo", Columns: cols(
				text("cadeia", "Cadeia"), text("sexo", "Sexo"), flows(), money("salario_medio", "Salário médio"))},
			{Key: "byCnae", DisplayName: "Atividades CNAE", Columns: cols(
				text("cnae", "CNAE"), text("cadeia", "Cadeia"), text("descricao", "Descrição"), flows(),
				money("salario_medio", "Salário médio"), money("salario_mediana", "Salário mediano"),
				number("n_municipios", "Municípios"))},
			{Key: "timeseriesCadeia", DisplayName: "Série por cadeia", Columns: cols(
				text("periodo", "Período"), text("cadeia", "Cadeia"), flows())},
			{Key: "byMunicipio", DisplayName: "Municípios", Columns: municipality()},
			{Key: "topMunicipios", DisplayName: "Principais municípios", Columns: municipality()},
		},
	}
}

func text(key, name string) []ColumnMeta    { return []ColumnMeta{{key, name, TypeText}} }
func integer(key, name string) []ColumnMeta { return []ColumnMeta{{key, name, TypeInt}} }
func number(key, name string) []ColumnMeta  { return []ColumnMeta{{key, name, TypeNumber}} }
func money(key, name string) []ColumnMeta   { return []ColumnMeta{{key, name, TypeCurrency}} }
func percent(key, name string) []ColumnMeta { return []ColumnMeta{{key, name, TypePercent}} }

func flows() []ColumnMeta {
	return cols(integer("admissoes", "Admissões"), integer("demissoes", "Demissões"), integer("saldo", "Saldo"))
}

func demographic(key, name string) []ColumnMeta {
	return cols(text(key, name), flows(),
		money("salario_medio", "Salário médio"), money("salario_mediana", "Salário mediano"),
		percent("pct", "%"))
}

func municipality() []ColumnMeta {
	return cols(text("codigo", "Código"), text("nome", "Município"), flows(),
		money("salario_medio", "Salário médio"), text("cadeia_dominante", "Cadeia dominante"))
}

func cols(groups ...[]ColumnMeta) []ColumnMeta {
	var out []ColumnMeta
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
