package schema

// ============================================================================
// SCHEMA — Describes the dashboard dataset and its view tables
// ============================================================================
// The engine's table builder and the exporters read column order and display
// names from here. Keys match the JSON keys of the baseline bundle.
// ============================================================================

// Config describes the complete shape of the dashboard dataset.
type Config struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
	Tables     []TableMeta     `json:"tables"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key            string `json:"key"`
	DisplayName    string `json:"displayName"`
	Description    string `json:"description,omitempty"`
	Filterable     bool   `json:"filterable"`
	Parent         string `json:"parent,omitempty"` // Parent dimension key for hierarchies
	IsTemporal     bool   `json:"isTemporal,omitempty"`
	TemporalFormat string `json:"temporalFormat,omitempty"`
}

// MeasureMeta describes a numeric field used for aggregation.
type MeasureMeta struct {
	Key                string `json:"key"`
	DisplayName        string `json:"displayName"`
	Unit               string `json:"unit,omitempty"` // "people", "currency"
	DefaultAggregation string `json:"defaultAggregation"`
	WeightedBy         string `json:"weightedBy,omitempty"`
}

// Column value types.
const (
	TypeText     = "text"
	TypeInt      = "int"
	TypeNumber   = "number"
	TypeCurrency = "currency"
	TypePercent  = "percent"
)

// ColumnMeta describes one column of a view table.
type ColumnMeta struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// TableMeta describes one view table.
type TableMeta struct {
	Key         string       `json:"key"`
	DisplayName string       `json:"displayName"`
	Columns     []ColumnMeta `json:"columns"`
}

// Align returns the display alignment for a column type.
func (c ColumnMeta) Align() string {
	if c.Type == TypeText {
		return "left"
	}
	return "right"
}

// Summable reports whether a column can be totalled in a summary row.
func (c ColumnMeta) Summable() bool {
	return c.Type == TypeInt
}

// DefaultDimension creates a filterable DimensionMeta.
func DefaultDimension(key, displayName string) DimensionMeta {
	return DimensionMeta{
		Key:         key,
		DisplayName: displayName,
		Filterable:  true,
	}
}

// DefaultMeasure creates a summed MeasureMeta.
func DefaultMeasure(key, displayName string) MeasureMeta {
	return MeasureMeta{
		Key:                key,
		DisplayName:        displayName,
		Unit:               "people",
		DefaultAggregation: "sum",
	}
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// TableKeys returns all table keys in display order.
func (c Config) TableKeys() []string {
	keys := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		keys[i] = t.Key
	}
	return keys
}

// Table returns the metadata of a table by key.
func (c Config) Table(key string) (TableMeta, bool) {
	for _, t := range c.Tables {
		if t.Key == key {
			return t, true
		}
	}
	return TableMeta{}, false
}
