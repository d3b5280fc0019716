// Package config resolves runtime settings from built-in defaults, a YAML
// file, environment variables and command-line flags, in that order of
// increasing precedence. Every value remembers where it came from.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/painel/engine"
	"github.com/spektr-org/painel/geo"
	"github.com/spektr-org/painel/loader"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceDefault ValueSource = "default"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
)

// DefaultConfigPath is looked up in the working directory.
const DefaultConfigPath = "painel.yaml"

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath  string
	CLIBase     string
	CLILogMode  string
	CLISnapshot string
	CLITimeout  string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	Base              ResolvedValue `json:"base"`
	LogMode           ResolvedValue `json:"log_mode"`
	Snapshot          ResolvedValue `json:"snapshot"`
	HTTPTimeout       ResolvedValue `json:"http_timeout"`
	CacheTTL          ResolvedValue `json:"cache_ttl"`
	TopMunicipalities ResolvedValue `json:"top_municipalities"`
	FallbackColor     ResolvedValue `json:"fallback_color"`

	BaselineAsset   ResolvedValue `json:"baseline_asset"`
	GeographyAsset  ResolvedValue `json:"geography_asset"`
	CubeAsset       ResolvedValue `json:"cube_asset"`
	DimensionsAsset ResolvedValue `json:"dimensions_asset"`

	GeoCode ResolvedValue `json:"geo_code"`
	GeoName ResolvedValue `json:"geo_name"`
	GeoMeso ResolvedValue `json:"geo_meso"`
	GeoSub  ResolvedValue `json:"geo_sub"`
}

type fileConfig struct {
	Base              string           `yaml:"base"`
	LogMode           string           `yaml:"log_mode"`
	Snapshot          string           `yaml:"snapshot"`
	HTTPTimeout       string           `yaml:"http_timeout"`
	CacheTTL          string           `yaml:"cache_ttl"`
	TopMunicipalities string           `yaml:"top_municipalities"`
	FallbackColor     string           `yaml:"fallback_color"`
	Assets            loader.Assets    `yaml:"assets"`
	Geography         geo.PropertyKeys `yaml:"geography"`
}

// Resolve builds the effective configuration. A missing config file is not
// an error; an unreadable or malformed one is.
func Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath
	}

	out := ResolvedConfig{ConfigPath: path}
	applyDefaults(&out)

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.Base, cfg.Base, SourceConfig, path)
		apply(&out.LogMode, cfg.LogMode, SourceConfig, path)
		apply(&out.Snapshot, cfg.Snapshot, SourceConfig, path)
		apply(&out.HTTPTimeout, cfg.HTTPTimeout, SourceConfig, path)
		apply(&out.CacheTTL, cfg.CacheTTL, SourceConfig, path)
		apply(&out.TopMunicipalities, cfg.TopMunicipalities, SourceConfig, path)
		apply(&out.FallbackColor, cfg.FallbackColor, SourceConfig, path)

		apply(&out.BaselineAsset, cfg.Assets.Baseline, SourceConfig, path)
		apply(&out.GeographyAsset, cfg.Assets.Geography, SourceConfig, path)
		apply(&out.CubeAsset, cfg.Assets.Cube, SourceConfig, path)
		apply(&out.DimensionsAsset, cfg.Assets.Dimensions, SourceConfig, path)

		apply(&out.GeoCode, cfg.Geography.Code, SourceConfig, path)
		apply(&out.GeoName, cfg.Geography.Name, SourceConfig, path)
		apply(&out.GeoMeso, cfg.Geography.Meso, SourceConfig, path)
		apply(&out.GeoSub, cfg.Geography.Sub, SourceConfig, path)
	}

	applyEnv(&out.Base, "PAINEL_BASE")
	applyEnv(&out.LogMode, "PAINEL_LOG_MODE")
	applyEnv(&out.Snapshot, "PAINEL_SNAPSHOT")
	applyEnv(&out.HTTPTimeout, "PAINEL_HTTP_TIMEOUT")
	applyEnv(&out.CacheTTL, "PAINEL_CACHE_TTL")

	apply(&out.Base, opts.CLIBase, SourceCLI, "--base")
	apply(&out.LogMode, opts.CLILogMode, SourceCLI, "--log")
	apply(&out.Snapshot, opts.CLISnapshot, SourceCLI, "--snapshot")
	apply(&out.HTTPTimeout, opts.CLITimeout, SourceCLI, "--timeout")

	return out, nil
}

func applyDefaults(out *ResolvedConfig) {
	assets := loader.DefaultAssets()
	keys := geo.DefaultPropertyKeys()
	def := func(dst *ResolvedValue, v string) {
		*dst = ResolvedValue{Value: v, Source: SourceDefault, From: "built-in default"}
	}
	def(&out.Base, ".")
	def(&out.LogMode, "quiet")
	def(&out.HTTPTimeout, loader.DefaultHTTPTimeout.String())
	def(&out.CacheTTL, "10m")
	def(&out.TopMunicipalities, strconv.Itoa(engine.DefaultTopMunicipalities))
	def(&out.FallbackColor, engine.DefaultFallbackColor)
	def(&out.BaselineAsset, assets.Baseline)
	def(&out.GeographyAsset, assets.Geography)
	def(&out.CubeAsset, assets.Cube)
	def(&out.DimensionsAsset, assets.Dimensions)
	def(&out.GeoCode, keys.Code)
	def(&out.GeoName, keys.Name)
	def(&out.GeoMeso, keys.Meso)
	def(&out.GeoSub, keys.Sub)
}

// ============================================================================
// TYPED ACCESSORS
// ============================================================================

// Assets returns the resolved asset names.
func (r ResolvedConfig) Assets() loader.Assets {
	return loader.Assets{
		Baseline:   r.BaselineAsset.Value,
		Geography:  r.GeographyAsset.Value,
		Cube:       r.CubeAsset.Value,
		Dimensions: r.DimensionsAsset.Value,
	}
}

// PropertyKeys returns the resolved GeoJSON property names.
func (r ResolvedConfig) PropertyKeys() geo.PropertyKeys {
	return geo.PropertyKeys{Code: r.GeoCode.Value, Name: r.GeoName.Value, Meso: r.GeoMeso.Value, Sub: r.GeoSub.Value}
}

// Timeout parses http_timeout; bare numbers are seconds.
func (r ResolvedConfig) Timeout() (time.Duration, error) {
	return parseDuration(r.HTTPTimeout)
}

// TTL parses cache_ttl; bare numbers are seconds.
func (r ResolvedConfig) TTL() (time.Duration, error) {
	return parseDuration(r.CacheTTL)
}

// TopN parses top_municipalities.
func (r ResolvedConfig) TopN() (int, error) {
	n, err := cast.ToIntE(r.TopMunicipalities.Value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("top_municipalities %q (from %s): must be a non-negative integer", r.TopMunicipalities.Value, r.TopMunicipalities.From)
	}
	return n, nil
}

func parseDuration(v ResolvedValue) (time.Duration, error) {
	if secs, err := strconv.Atoi(v.Value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v.Value)
	if err != nil {
		return 0, fmt.Errorf("duration %q (from %s): %w", v.Value, v.From, err)
	}
	return d, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
