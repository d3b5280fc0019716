package engine

import "fmt"

// Mode is the aggregation strategy chosen for one recomputation.
type Mode int

const (
	// ModeBaseline returns the unfiltered baseline tables as-is.
	ModeBaseline Mode = iota
	// ModeChainOnlyDegraded filters baseline tables by chain; the cube is not loaded.
	ModeChainOnlyDegraded
	// ModeFullGranular re-aggregates the filtered cube.
	ModeFullGranular
)

func (m Mode) String() string {
	switch m {
	case ModeBaseline:
		return "baseline"
	case ModeChainOnlyDegraded:
		return "chain_only_degraded"
	case ModeFullGranular:
		return "full_granular"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// IsDegraded reports whether aggregation must fall back to baseline tables.
func IsDegraded(cubeLoaded bool) bool { return !cubeLoaded }

// SelectMode is the single dispatch step between the three strategies.
func SelectMode(state FilterState, degraded bool) Mode {
	switch {
	case !state.HasAny():
		return ModeBaseline
	case degraded:
		return ModeChainOnlyDegraded
	default:
		return ModeFullGranular
	}
}
