// Package pagestyle converts between a typed page style (page size, margins,
// first page override, root typography, widows/orphans control and image
// scaling) and the small CSS fragment it is stored as.
//
// Only a fixed sequence of rule blocks is understood. Anything else in the
// text is kept as opaque strings and written back untouched.
package pagestyle

import (
	"fmt"
	"strings"
)

// Preset is one of the named page sizes accepted by CSS "size" property.
type Preset struct {
	Name        string  // CSS name (e.g. "A4", "JIS-B5")
	Description string  // Display label (e.g. "B5 (JIS)")
	Width       float64 // Portrait width in millimetres
	Height      float64 // Portrait height in millimetres
}

// presets is ordered the way they are offered to the user, first one is used
// when nothing was selected.
var presets = [...]Preset{
	{Name: "A5", Description: "A5", Width: 148, Height: 210},
	{Name: "A4", Description: "A4", Width: 210, Height: 297},
	{Name: "A3", Description: "A3", Width: 297, Height: 420},
	{Name: "B5", Description: "B5 (ISO)", Width: 176, Height: 250},
	{Name: "B4", Description: "B4 (ISO)", Width: 250, Height: 353},
	{Name: "JIS-B5", Description: "B5 (JIS)", Width: 182, Height: 257},
	{Name: "JIS-B4", Description: "B4 (JIS)", Width: 257, Height: 364},
	{Name: "letter", Description: "letter", Width: 215.9, Height: 279.4},
	{Name: "legal", Description: "legal", Width: 215.9, Height: 355.6},
	{Name: "ledger", Description: "ledger", Width: 279.4, Height: 431.8},
}

// Presets returns a copy of the preset table in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets[:])
	return out
}

// LookupPreset finds preset by its CSS name, case-insensitively.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// IsKnown reports whether p is an entry of the preset table.
func (p Preset) IsKnown() bool {
	for _, known := range presets {
		if known == p {
			return true
		}
	}
	return false
}

// MarshalText makes preset appear as its CSS name in YAML and JSON.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p.Name), nil
}

// UnmarshalText accepts any known preset name.
func (p *Preset) UnmarshalText(text []byte) error {
	found, ok := LookupPreset(string(text))
	if !ok {
		return fmt.Errorf("unknown page size preset %q", string(text))
	}
	*p = found
	return nil
}

// DefaultValues holds values which are never written out when they are not
// marked important.
type DefaultValues struct {
	CustomWidth      string
	CustomHeight     string
	PageMargin       string
	BaseFontSize     string
	BaseLineHeight   string
	WidowsOrphans    string
	WidowsOrphansMin string // allow all widows/orphans
	WidowsOrphansMax string // never break inside a paragraph
}

var defaults = DefaultValues{
	CustomWidth:      "210mm",
	CustomHeight:     "297mm",
	PageMargin:       "10%",
	BaseFontSize:     "100%",
	BaseLineHeight:   "normal",
	WidowsOrphans:    "2",
	WidowsOrphansMin: "1",
	WidowsOrphansMax: "9999",
}

// Defaults returns default value table.
func Defaults() DefaultValues {
	return defaults
}

// isWidowsOrphansValue checks closed set of values allowed for widows and
// orphans.
func isWidowsOrphansValue(v string) bool {
	return v == defaults.WidowsOrphansMin || v == defaults.WidowsOrphans || v == defaults.WidowsOrphansMax
}
