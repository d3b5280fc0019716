package engine

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ============================================================================
// FILTER STATE — Regional + Interactive Selections
// ============================================================================
// Regional filters narrow each other (meso → sub → municipality).
// Interactive filters toggle independently; one value per dimension.
// Empty string means unset everywhere.
// ============================================================================

// FilterState is the set of active filter selections.
type FilterState struct {
	Meso         string `json:"meso,omitempty" yaml:"meso"`
	Sub          string `json:"sub,omitempty" yaml:"sub"`
	Municipality string `json:"municipality,omitempty" yaml:"municipality"`

	Chain     string `json:"chain,omitempty" yaml:"chain"`
	Sex       string `json:"sex,omitempty" yaml:"sex"`
	AgeBand   string `json:"ageBand,omitempty" yaml:"age_band"`
	Education string `json:"education,omitempty" yaml:"education"`
	Period    string `json:"period,omitempty" yaml:"period"`
}

// Interactive identifies a toggleable filter dimension.
type Interactive string

const (
	InteractiveChain     Interactive = "chain"
	InteractiveSex       Interactive = "sex"
	InteractiveAgeBand   Interactive = "age_band"
	InteractiveEducation Interactive = "education"
	InteractivePeriod    Interactive = "period"
)

// SetMeso selects a meso-region and clears the narrower selections.
func (s *FilterState) SetMeso(value string) {
	s.Meso = value
	s.Sub = ""
	s.Municipality = ""
}

// SetSub selects a sub-region and clears the municipality.
func (s *FilterState) SetSub(value string) {
	s.Sub = value
	s.Municipality = ""
}

// SetMunicipality selects a municipality code.
func (s *FilterState) SetMunicipality(value string) {
	s.Municipality = value
}

// ToggleInteractive sets value on dim, or clears it when value is already selected.
// Unknown dimensions are ignored.
func (s *FilterState) ToggleInteractive(dim Interactive, value string) {
	field := s.interactiveField(dim)
	if field == nil {
		return
	}
	if *field == value {
		*field = ""
		return
	}
	*field = value
}

func (s *FilterState) interactiveField(dim Interactive) *string {
	switch dim {
	case InteractiveChain:
		return &s.Chain
	case InteractiveSex:
		return &s.Sex
	case InteractiveAgeBand:
		return &s.AgeBand
	case InteractiveEducation:
		return &s.Education
	case InteractivePeriod:
		return &s.Period
	}
	return nil
}

// ClearRegional resets meso, sub and municipality.
func (s *FilterState) ClearRegional() {
	s.Meso, s.Sub, s.Municipality = "", "", ""
}

// ClearInteractive resets every interactive filter.
func (s *FilterState) ClearInteractive() {
	s.Chain, s.Sex, s.AgeBand, s.Education, s.Period = "", "", "", "", ""
}

// ClearAll resets every filter.
func (s *FilterState) ClearAll() {
	*s = FilterState{}
}

func (s FilterState) HasRegional() bool {
	return s.Meso != "" || s.Sub != "" || s.Municipality != ""
}

func (s FilterState) HasInteractive() bool {
	return s.Chain != "" || s.Sex != "" || s.AgeBand != "" || s.Education != "" || s.Period != ""
}

func (s FilterState) HasAny() bool {
	return s.HasRegional() || s.HasInteractive()
}

// fields returns the filter values in a fixed order.
func (s FilterState) fields() [8]string {
	return [8]string{s.Meso, s.Sub, s.Municipality, s.Chain, s.Sex, s.AgeBand, s.Education, s.Period}
}

// Hash returns a stable 64-bit digest of the state, used as a memo key.
func (s FilterState) Hash() uint64 {
	d := xxhash.New()
	for _, f := range s.fields() {
		_, _ = d.WriteString(f)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Label summarizes the active filters for display, e.g. "Soja · Norte · 2024-03".
// Returns "" when nothing is active.
func (s FilterState) Label() string {
	parts := make([]string, 0, 8)
	for _, f := range []string{s.Chain, s.Sex, s.AgeBand, s.Education, s.Period, s.Meso, s.Sub, s.Municipality} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " · ")
}
