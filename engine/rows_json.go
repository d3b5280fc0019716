package engine

import (
	"encoding/json"
)

// demographicWire is the union of the four demographic row shapes.
type demographicWire struct {
	Sex          *string  `json:"sexo,omitempty"`
	AgeBand      *string  `json:"faixa,omitempty"`
	Education    *string  `json:"escolaridade,omitempty"`
	CompanySize  *string  `json:"porte,omitempty"`
	Admissions   int      `json:"admissoes"`
	Terminations int      `json:"demissoes"`
	Balance      int      `json:"saldo"`
	MeanSalary   *float64 `json:"salario_medio,omitempty"`
	MedianSalary *float64 `json:"salario_mediana,omitempty"`
	Share        float64  `json:"pct"`
}

// MarshalJSON writes the value under the dimension's wire key
// (sexo, faixa, escolaridade or porte). Salaries are omitted when zero.
func (r DemographicRow) MarshalJSON() ([]byte, error) {
	w := demographicWire{
		Admissions:   r.Admissions,
		Terminations: r.Terminations,
		Balance:      r.Balance,
		Share:        r.Share,
	}
	v := r.Value
	switch r.Dimension {
	case DemographicSex:
		w.Sex = &v
	case DemographicAgeBand:
		w.AgeBand = &v
	case DemographicEducation:
		w.Education = &v
	case DemographicCompanySize:
		w.CompanySize = &v
	}
	if r.MeanSalary != 0 {
		m := r.MeanSalary
		w.MeanSalary = &m
	}
	if r.MedianSalary != 0 {
		m := r.MedianSalary
		w.MedianSalary = &m
	}
	return json.Marshal(w)
}

// UnmarshalJSON detects the dimension from whichever value key is present.
// A JSON null salary decodes to 0.
func (r *DemographicRow) UnmarshalJSON(data []byte) error {
	var w demographicWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = DemographicRow{
		Admissions:   w.Admissions,
		Terminations: w.Terminations,
		Balance:      w.Balance,
		Share:        w.Share,
	}
	switch {
	case w.Sex != nil:
		r.Dimension, r.Value = DemographicSex, *w.Sex
	case w.AgeBand != nil:
		r.Dimension, r.Value = DemographicAgeBand, *w.AgeBand
	case w.Education != nil:
		r.Dimension, r.Value = DemographicEducation, *w.Education
	case w.CompanySize != nil:
		r.Dimension, r.Value = DemographicCompanySize, *w.CompanySize
	}
	if w.MeanSalary != nil {
		r.MeanSalary = *w.MeanSalary
	}
	if w.MedianSalary != nil {
		r.MedianSalary = *w.MedianSalary
	}
	return nil
}
