// Package geo builds the municipality → region index from a GeoJSON
// FeatureCollection of municipality boundaries.
package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cast"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/spektr-org/painel/engine"
)

// CodeLength is the number of leading digits kept from a municipality code.
// Boundary files carry the 7-digit IBGE code; the cube uses the first 6.
const CodeLength = 6

// PropertyKeys names the feature properties that carry each field.
type PropertyKeys struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Meso string `yaml:"meso"`
	Sub  string `yaml:"sub"`
}

// DefaultPropertyKeys matches the state boundary file.
func DefaultPropertyKeys() PropertyKeys {
	return PropertyKeys{Code: "CodIbge", Name: "Municipio", Meso: "MesoIdr", Sub: "RegIdr"}
}

func (k PropertyKeys) withDefaults() PropertyKeys {
	d := DefaultPropertyKeys()
	if k.Code == "" {
		k.Code = d.Code
	}
	if k.Name == "" {
		k.Name = d.Name
	}
	if k.Meso == "" {
		k.Meso = d.Meso
	}
	if k.Sub == "" {
		k.Sub = d.Sub
	}
	return k
}

// Unit is one municipality.
type Unit struct {
	Code string `json:"codigo"`
	Name string `json:"nome"`
	Meso string `json:"meso"`
	Sub  string `json:"sub"`
}

type featureCollection struct {
	Features []struct {
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// ParseFeatureCollection reads municipality units from GeoJSON.
// Geometry is ignored. Codes may be numbers or strings.
func ParseFeatureCollection(r io.Reader, keys PropertyKeys) ([]Unit, error) {
	keys = keys.withDefaults()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var fc featureCollection
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}

	units := make([]Unit, 0, len(fc.Features))
	for _, f := range fc.Features {
		code := cast.ToString(f.Properties[keys.Code])
		if code == "" {
			continue
		}
		units = append(units, Unit{
			Code: truncateCode(code),
			Name: cast.ToString(f.Properties[keys.Name]),
			Meso: cast.ToString(f.Properties[keys.Meso]),
			Sub:  cast.ToString(f.Properties[keys.Sub]),
		})
	}
	return units, nil
}

func truncateCode(code string) string {
	if len(code) > CodeLength {
		return code[:CodeLength]
	}
	return code
}

// ============================================================================
// INDEX
// ============================================================================

// Index answers region lookups and lists the filter options.
// A nil *Index is valid and empty.
type Index struct {
	byCode         map[string]Unit
	mesos          []string
	subs           []string
	municipalities []Unit
}

// Build indexes units. On duplicate codes the last unit wins.
func Build(units []Unit) *Index {
	idx := &Index{byCode: make(map[string]Unit, len(units))}
	for _, u := range units {
		idx.byCode[u.Code] = u
	}

	mesos := map[string]struct{}{}
	subs := map[string]struct{}{}
	idx.municipalities = make([]Unit, 0, len(idx.byCode))
	for _, u := range idx.byCode {
		if u.Meso != "" {
			mesos[u.Meso] = struct{}{}
		}
		if u.Sub != "" {
			subs[u.Sub] = struct{}{}
		}
		idx.municipalities = append(idx.municipalities, u)
	}
	idx.mesos = sortedKeys(mesos)
	idx.subs = sortedKeys(subs)

	coll := collate.New(language.BrazilianPortuguese)
	sort.SliceStable(idx.municipalities, func(i, j int) bool {
		a, b := idx.municipalities[i], idx.municipalities[j]
		if c := coll.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.Code < b.Code
	})
	return idx
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup implements engine.RegionIndex.
func (x *Index) Lookup(code string) (engine.Region, bool) {
	if x == nil {
		return engine.Region{}, false
	}
	u, ok := x.byCode[code]
	if !ok {
		return engine.Region{}, false
	}
	return engine.Region{Meso: u.Meso, Sub: u.Sub}, true
}

// Name implements engine.Namer.
func (x *Index) Name(code string) (string, bool) {
	if x == nil {
		return "", false
	}
	u, ok := x.byCode[code]
	if !ok || u.Name == "" {
		return "", false
	}
	return u.Name, true
}

// Len is the number of indexed municipalities.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.byCode)
}

// Mesos lists the distinct meso-regions, sorted.
func (x *Index) Mesos() []string {
	if x == nil {
		return nil
	}
	return x.mesos
}

// Subs lists the distinct sub-regions, sorted.
func (x *Index) Subs() []string {
	if x == nil {
		return nil
	}
	return x.subs
}

// Municipalities lists every municipality sorted by name (pt-BR collation).
func (x *Index) Municipalities() []Unit {
	if x == nil {
		return nil
	}
	return x.municipalities
}

// MunicipalitiesIn narrows the municipality list to a meso and/or sub-region.
// Empty arguments do not constrain.
func (x *Index) MunicipalitiesIn(meso, sub string) []Unit {
	if meso == "" && sub == "" {
		return x.Municipalities()
	}
	out := []Unit{}
	for _, u := range x.Municipalities() {
		if (meso == "" || u.Meso == meso) && (sub == "" || u.Sub == sub) {
			out = append(out, u)
		}
	}
	return out
}

var (
	_ engine.RegionIndex = (*Index)(nil)
	_ engine.Namer       = (*Index)(nil)
)
