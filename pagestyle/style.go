package pagestyle

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// PageStyle is a typed view of the page style CSS fragment.
//
// Fields are plain and could be changed directly, CSSText always reflects the
// current values. AllImportant is derived when parsing and fans out when set,
// see SetAllImportant.
type PageStyle struct {
	Mode         Mode   `yaml:"mode"`
	Preset       Preset `yaml:"preset"`
	Landscape    bool   `yaml:"landscape"`
	CustomWidth  string `yaml:"custom_width"`
	CustomHeight string `yaml:"custom_height"`
	SizeImp      bool   `yaml:"size_important"`

	PageMargin    string `yaml:"page_margin"`
	PageMarginImp bool   `yaml:"page_margin_important"`
	PageOther     string `yaml:"page_other,omitempty"`

	FirstPageMarginZero    bool   `yaml:"first_page_margin_zero"`
	FirstPageMarginZeroImp bool   `yaml:"first_page_margin_zero_important"`
	FirstPageOther         string `yaml:"first_page_other,omitempty"`

	ForceHTMLBodyMarginZero bool `yaml:"force_html_body_margin_zero"`

	BaseFontSize      string `yaml:"base_font_size"`
	BaseFontSizeImp   bool   `yaml:"base_font_size_important"`
	BaseLineHeight    string `yaml:"base_line_height"`
	BaseLineHeightImp bool   `yaml:"base_line_height_important"`
	RootOther         string `yaml:"root_other,omitempty"`

	WidowsOrphans    string `yaml:"widows_orphans"`
	WidowsOrphansImp bool   `yaml:"widows_orphans_important"`

	ImageMaxSizeToFitPage bool `yaml:"image_max_size_to_fit_page"`
	ImageMaxSizeImp       bool `yaml:"image_max_size_important"`

	Other string `yaml:"other,omitempty"`

	allImportant bool
}

// New returns page style with every field set to its default.
func New() *PageStyle {
	s := &PageStyle{}
	s.reset()
	return s
}

func (s *PageStyle) reset() {
	*s = PageStyle{
		Mode:           ModeAuto,
		Preset:         presets[0],
		CustomWidth:    defaults.CustomWidth,
		CustomHeight:   defaults.CustomHeight,
		PageMargin:     defaults.PageMargin,
		BaseFontSize:   defaults.BaseFontSize,
		BaseLineHeight: defaults.BaseLineHeight,
		WidowsOrphans:  defaults.WidowsOrphans,
	}
}

// AllImportant reports aggregate importance state.
func (s *PageStyle) AllImportant() bool {
	return s.allImportant
}

// SetAllImportant stores aggregate importance and overwrites every
// per-property importance flag with the same value. Per-property flags never
// propagate back.
func (s *PageStyle) SetAllImportant(important bool) {
	s.allImportant = important
	s.SizeImp = important
	s.PageMarginImp = important
	s.FirstPageMarginZeroImp = important
	s.BaseFontSizeImp = important
	s.BaseLineHeightImp = important
	s.WidowsOrphansImp = important
	s.ImageMaxSizeImp = important
}

// CopyInto overwrites every field of target with values from s.
func (s *PageStyle) CopyInto(target *PageStyle) {
	*target = *s
}

// Equivalent compares two page styles. Size fields which are not used by the
// current mode are ignored, styles in different modes are never equivalent.
func (s *PageStyle) Equivalent(other *PageStyle) bool {
	if s.SizeImp != other.SizeImp ||
		s.PageMargin != other.PageMargin ||
		s.PageMarginImp != other.PageMarginImp ||
		s.PageOther != other.PageOther ||
		s.FirstPageMarginZero != other.FirstPageMarginZero ||
		s.FirstPageMarginZeroImp != other.FirstPageMarginZeroImp ||
		s.FirstPageOther != other.FirstPageOther ||
		s.ForceHTMLBodyMarginZero != other.ForceHTMLBodyMarginZero ||
		s.BaseFontSize != other.BaseFontSize ||
		s.BaseFontSizeImp != other.BaseFontSizeImp ||
		s.BaseLineHeight != other.BaseLineHeight ||
		s.BaseLineHeightImp != other.BaseLineHeightImp ||
		s.RootOther != other.RootOther ||
		s.WidowsOrphans != other.WidowsOrphans ||
		s.WidowsOrphansImp != other.WidowsOrphansImp ||
		s.ImageMaxSizeToFitPage != other.ImageMaxSizeToFitPage ||
		s.ImageMaxSizeImp != other.ImageMaxSizeImp ||
		s.Other != other.Other ||
		s.allImportant != other.allImportant {
		return false
	}

	if s.Mode != other.Mode {
		return false
	}
	switch s.Mode {
	case ModeAuto:
		return true
	case ModePreset:
		return s.Preset == other.Preset && s.Landscape == other.Landscape
	case ModeCustom:
		return s.CustomWidth == other.CustomWidth && s.CustomHeight == other.CustomHeight
	default:
		// this should never happen
		panic(fmt.Sprintf("unknown page size mode %s", s.Mode))
	}
}

// Validate checks that current values could be written out and read back.
// All problems found are reported together.
func (s *PageStyle) Validate() (err error) {
	if !s.Mode.IsValid() {
		err = multierr.Append(err, fmt.Errorf("page size mode: %w", ErrInvalidMode))
	}
	if s.Mode == ModePreset && !s.Preset.IsKnown() {
		err = multierr.Append(err, fmt.Errorf("page size preset %q is not known", s.Preset.Name))
	}
	if s.Mode == ModeCustom {
		err = multierr.Append(err, checkTokens("custom width", s.CustomWidth, 1))
		err = multierr.Append(err, checkTokens("custom height", s.CustomHeight, 1))
	}
	err = multierr.Append(err, checkTokens("page margin", s.PageMargin, 4))
	err = multierr.Append(err, checkTokens("base font size", s.BaseFontSize, 1))
	err = multierr.Append(err, checkTokens("base line height", s.BaseLineHeight, 1))
	if !isWidowsOrphansValue(s.WidowsOrphans) {
		err = multierr.Append(err, fmt.Errorf("widows/orphans value %q is not one of %s, %s, %s",
			s.WidowsOrphans, defaults.WidowsOrphansMin, defaults.WidowsOrphans, defaults.WidowsOrphansMax))
	}
	err = multierr.Append(err, checkBlockText("page other style", s.PageOther, true))
	err = multierr.Append(err, checkBlockText("first page other style", s.FirstPageOther, true))
	err = multierr.Append(err, checkBlockText("root other style", s.RootOther, false))
	return err
}

// checkTokens verifies that value is 1 to max whitespace separated tokens
// which parser would accept as a property value.
func checkTokens(what, value string, max int) error {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return fmt.Errorf("%s is empty", what)
	}
	if len(fields) > max {
		return fmt.Errorf("%s %q has %d values, at most %d allowed", what, value, len(fields), max)
	}
	if strings.ContainsAny(value, "!;{}") {
		return fmt.Errorf("%s %q contains one of '!;{}'", what, value)
	}
	return nil
}

// checkBlockText verifies that opaque text kept inside of a block could be
// read back: no braces at all or, when nested is set, balanced single level
// braces.
func checkBlockText(what, text string, nested bool) error {
	depth := 0
	for _, r := range text {
		switch r {
		case '{':
			if !nested || depth > 0 {
				return fmt.Errorf("%s %q has unsupported '{'", what, text)
			}
			depth++
		case '}':
			if depth == 0 {
				return fmt.Errorf("%s %q has unbalanced '}'", what, text)
			}
			depth--
		}
	}
	if depth != 0 {
		return fmt.Errorf("%s %q has unbalanced '{'", what, text)
	}
	return nil
}
