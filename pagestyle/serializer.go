package pagestyle

import (
	"fmt"
	"io"
	"strings"
)

func imp(important bool) string {
	if important {
		return importantMark
	}
	return ""
}

// CSSText returns page style as CSS text. Declarations holding default
// values are omitted unless marked important. @page block is always present.
func (s *PageStyle) CSSText() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns the CSS text of the page style.
func (s *PageStyle) String() string {
	return s.CSSText()
}

// WriteTo writes CSS text to w, implementing io.WriterTo.
func (s *PageStyle) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	b.WriteString("@page{")
	if s.Mode != ModeAuto || s.SizeImp {
		b.WriteString("size:")
		switch s.Mode {
		case ModeAuto:
			b.WriteString("auto")
		case ModePreset:
			b.WriteString(s.Preset.Name)
			if s.Landscape {
				b.WriteString(" landscape")
			}
		case ModeCustom:
			b.WriteString(s.CustomWidth + " " + s.CustomHeight)
		default:
			// this should never happen
			panic(fmt.Sprintf("unknown page size mode %s", s.Mode))
		}
		b.WriteString(imp(s.SizeImp) + ";")
	}
	if s.PageMargin != defaults.PageMargin || s.PageMarginImp {
		b.WriteString("margin:" + s.PageMargin + imp(s.PageMarginImp) + ";")
	}
	b.WriteString(s.PageOther)
	b.WriteString("}\n")

	if s.FirstPageMarginZero || s.FirstPageOther != "" {
		b.WriteString("@page:first{")
		if s.FirstPageMarginZero {
			b.WriteString("margin:0" + imp(s.FirstPageMarginZeroImp) + ";")
		}
		b.WriteString(s.FirstPageOther)
		b.WriteString("}\n")
	}

	if s.ForceHTMLBodyMarginZero {
		b.WriteString("html,body{margin:0!important;}\n")
	}

	fontSize := s.BaseFontSize != defaults.BaseFontSize
	lineHeight := s.BaseLineHeight != defaults.BaseLineHeight
	if fontSize || lineHeight || s.RootOther != "" {
		b.WriteString(":root{")
		if fontSize {
			b.WriteString("font-size:" + s.BaseFontSize + imp(s.BaseFontSizeImp) + ";")
		}
		if lineHeight {
			b.WriteString("line-height:" + s.BaseLineHeight + imp(s.BaseLineHeightImp) + ";")
		}
		b.WriteString(s.RootOther)
		b.WriteString("}\n")
	}
	// body rule mirrors important root values
	inheritFontSize := fontSize && s.BaseFontSizeImp
	inheritLineHeight := lineHeight && s.BaseLineHeightImp
	if inheritFontSize || inheritLineHeight {
		b.WriteString("body{")
		if inheritFontSize {
			b.WriteString("font-size:inherit!important;")
		}
		if inheritLineHeight {
			b.WriteString("line-height:inherit!important;")
		}
		b.WriteString("}\n")
	}

	if s.WidowsOrphans != defaults.WidowsOrphans {
		b.WriteString("*{")
		b.WriteString("widows:" + s.WidowsOrphans + imp(s.WidowsOrphansImp) + ";")
		b.WriteString("orphans:" + s.WidowsOrphans + imp(s.WidowsOrphansImp) + ";")
		b.WriteString("}\n")
	}

	if s.ImageMaxSizeToFitPage {
		b.WriteString("img,svg{")
		b.WriteString("max-inline-size:100%" + imp(s.ImageMaxSizeImp) + ";")
		b.WriteString("max-block-size:100vb" + imp(s.ImageMaxSizeImp) + ";")
		b.WriteString("}\n")
	}

	b.WriteString(s.Other)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
