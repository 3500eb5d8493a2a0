// Package preview draws page geometry described by a page style: page box,
// margins and lines of text set with base font size and line height.
package preview

import (
	"errors"
	"fmt"
	"strings"

	"pgstyle/css"
	"pgstyle/pagestyle"
)

var (
	ErrUnsupportedUnit = errors.New("unsupported unit")
	ErrNoContentArea   = errors.New("margins leave no content area")
)

const (
	// initial CSS font size
	defaultFontSizePx = 16
	// used by most user agents for "normal"
	normalLineHeight = 1.2
)

// millimetres per absolute CSS unit
var absoluteUnits = map[string]float64{
	"mm": 1,
	"cm": 10,
	"q":  0.25,
	"in": 25.4,
	"pt": 25.4 / 72,
	"pc": 25.4 / 6,
	"px": 25.4 / 96,
}

// Geometry is page layout in millimetres.
type Geometry struct {
	Width, Height float64
	// Margin is top, right, bottom, left
	Margin     [4]float64
	FontSize   float64
	LineHeight float64
	Label      string
}

// ContentBox returns position and size of the area inside margins.
func (g Geometry) ContentBox() (x, y, w, h float64) {
	return g.Margin[3], g.Margin[0], g.Width - g.Margin[1] - g.Margin[3], g.Height - g.Margin[0] - g.Margin[2]
}

// DPI returns resolution at which page rendered pixelWidth wide would be
// printed at natural size.
func (g Geometry) DPI(pixelWidth int) int16 {
	if g.Width <= 0 {
		return 0
	}
	return int16(min(float64(pixelWidth)*25.4/g.Width+0.5, 32767))
}

// Compute calculates page geometry for a style. Fallback preset is used
// when style leaves page size to the user agent.
func Compute(s *pagestyle.PageStyle, fallback pagestyle.Preset) (Geometry, error) {
	var g Geometry

	switch s.Mode {
	case pagestyle.ModeAuto:
		g.Width, g.Height = fallback.Width, fallback.Height
		g.Label = "auto (" + fallback.Name + ")"
	case pagestyle.ModePreset:
		g.Width, g.Height = s.Preset.Width, s.Preset.Height
		g.Label = s.Preset.Name
		if s.Landscape {
			g.Width, g.Height = g.Height, g.Width
			g.Label += " landscape"
		}
	case pagestyle.ModeCustom:
		var err error
		if g.Width, err = absoluteLength(s.CustomWidth); err != nil {
			return Geometry{}, fmt.Errorf("custom width: %w", err)
		}
		if g.Height, err = absoluteLength(s.CustomHeight); err != nil {
			return Geometry{}, fmt.Errorf("custom height: %w", err)
		}
		if g.Width <= 0 || g.Height <= 0 {
			return Geometry{}, fmt.Errorf("custom size %s x %s is empty", s.CustomWidth, s.CustomHeight)
		}
		g.Label = s.CustomWidth + " x " + s.CustomHeight
	default:
		// this should never happen
		panic(fmt.Sprintf("unknown page size mode %s", s.Mode))
	}

	var err error
	if g.FontSize, err = fontSize(s.BaseFontSize); err != nil {
		return Geometry{}, fmt.Errorf("base font size: %w", err)
	}
	if g.LineHeight, err = lineHeight(s.BaseLineHeight, g.FontSize); err != nil {
		return Geometry{}, fmt.Errorf("base line height: %w", err)
	}
	if g.Margin, err = margins(s.PageMargin, g); err != nil {
		return Geometry{}, fmt.Errorf("page margin: %w", err)
	}

	if _, _, w, h := g.ContentBox(); w <= 0 || h <= 0 {
		return Geometry{}, fmt.Errorf("page margin %q on %.1fmm x %.1fmm page: %w", s.PageMargin, g.Width, g.Height, ErrNoContentArea)
	}
	return g, nil
}

// absoluteLength converts value with absolute unit to millimetres.
func absoluteLength(text string) (float64, error) {
	v := css.ParseValue(text)
	if mm, ok := absoluteUnits[v.Unit]; ok {
		return v.Value * mm, nil
	}
	if v.IsNumeric() && v.Unit == "" && v.Value == 0 {
		return 0, nil
	}
	return 0, fmt.Errorf("%q: %w", text, ErrUnsupportedUnit)
}

// fontSize resolves root font size in millimetres.
func fontSize(text string) (float64, error) {
	base := defaultFontSizePx * absoluteUnits["px"]

	v := css.ParseValue(text)
	switch v.Unit {
	case "%":
		return base * v.Value / 100, nil
	case "em", "rem":
		return base * v.Value, nil
	case "":
		if v.Keyword == "medium" || v.Keyword == "initial" || v.Keyword == "inherit" {
			return base, nil
		}
	default:
		if mm, ok := absoluteUnits[v.Unit]; ok {
			return v.Value * mm, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", text, ErrUnsupportedUnit)
}

// lineHeight resolves line height in millimetres.
func lineHeight(text string, fontSize float64) (float64, error) {
	v := css.ParseValue(text)
	switch {
	case v.Keyword == "normal":
		return fontSize * normalLineHeight, nil
	case v.Unit == "" && v.IsNumeric():
		return fontSize * v.Value, nil
	case v.Unit == "%":
		return fontSize * v.Value / 100, nil
	case v.Unit == "em" || v.Unit == "rem":
		return fontSize * v.Value, nil
	}
	if mm, ok := absoluteUnits[v.Unit]; ok {
		return v.Value * mm, nil
	}
	return 0, fmt.Errorf("%q: %w", text, ErrUnsupportedUnit)
}

// margins expands 1-4 value margin shorthand. Percentages refer to page
// width for left and right, to page height for top and bottom.
func margins(text string, g Geometry) ([4]float64, error) {
	var out [4]float64

	fields := strings.Fields(text)
	var sides [4]string
	switch len(fields) {
	case 1:
		sides = [4]string{fields[0], fields[0], fields[0], fields[0]}
	case 2:
		sides = [4]string{fields[0], fields[1], fields[0], fields[1]}
	case 3:
		sides = [4]string{fields[0], fields[1], fields[2], fields[1]}
	case 4:
		sides = [4]string{fields[0], fields[1], fields[2], fields[3]}
	default:
		return out, fmt.Errorf("%q must have 1 to 4 values", text)
	}

	for i, side := range sides {
		ref := g.Height
		if i%2 == 1 {
			ref = g.Width
		}
		v := css.ParseValue(side)
		switch {
		case v.Keyword == "auto":
			out[i] = 0
		case v.Unit == "%":
			out[i] = ref * v.Value / 100
		case v.Unit == "em" || v.Unit == "rem":
			out[i] = g.FontSize * v.Value
		default:
			mm, err := absoluteLength(side)
			if err != nil {
				return out, err
			}
			out[i] = mm
		}
		if out[i] < 0 {
			return out, fmt.Errorf("%q is negative", side)
		}
	}
	return out, nil
}
