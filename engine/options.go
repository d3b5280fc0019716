package engine

import "github.com/spektr-org/painel/logger"

// ============================================================================
// ENGINE OPTIONS — Functional options for Compute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	TopMunicipalities int
	FallbackColor     string
	Log               *logger.Logger
}

// DefaultTopMunicipalities is the length of the top-municipalities list.
const DefaultTopMunicipalities = 20

// WithTopMunicipalities sets how many rows the recomputed top list keeps.
func WithTopMunicipalities(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.TopMunicipalities = n
		}
	}
}

// WithFallbackColor sets the colour of chains missing from the baseline palette.
func WithFallbackColor(color string) Option {
	return func(c *config) {
		if color != "" {
			c.FallbackColor = color
		}
	}
}

// WithLogger routes engine debug logs to l.
func WithLogger(l *logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.Log = l
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		TopMunicipalities: DefaultTopMunicipalities,
		FallbackColor:     DefaultFallbackColor,
		Log:               logger.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
