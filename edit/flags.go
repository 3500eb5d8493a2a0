// Package edit implements command actions reading, changing and writing page
// style files.
package edit

import (
	"fmt"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pgstyle/css"
	"pgstyle/pagestyle"
)

// Flags returns command line flags changing page style fields. Same set is
// accepted by every command producing a page style.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "size", Usage: "page size: auto, preset `NAME` optionally followed by landscape or portrait, or custom width and height"},
		&cli.StringFlag{Name: "margin", Usage: "page margin, 1 to 4 CSS lengths"},
		&cli.StringFlag{Name: "font-size", Usage: "base font size"},
		&cli.StringFlag{Name: "line-height", Usage: "base line height"},
		&cli.StringFlag{Name: "widows-orphans", Usage: "widows and orphans: " + strings.Join(widowsOrphansValues(), ", ")},
		&cli.BoolFlag{Name: "fit-images", Usage: "limit images to page size"},
		&cli.BoolFlag{Name: "first-page-zero", Usage: "no margins on first page"},
		&cli.BoolFlag{Name: "html-body-zero", Usage: "force zero margins on html and body"},
		&cli.BoolFlag{Name: "all-important", Usage: "mark every property !important"},
	}
}

func widowsOrphansValues() []string {
	d := pagestyle.Defaults()
	return []string{d.WidowsOrphansMin, d.WidowsOrphans, d.WidowsOrphansMax}
}

// applyFlags changes fields for flags set on command line and reports whether
// anything was touched. Aggregate importance is applied last so it covers all
// other changes.
func applyFlags(cmd *cli.Command, s *pagestyle.PageStyle, log *zap.Logger) (bool, error) {
	changed := false

	if cmd.IsSet("size") {
		if err := applySize(s, cmd.String("size")); err != nil {
			return false, err
		}
		changed = true
	}

	for _, f := range []struct {
		name  string
		field *string
	}{
		{"margin", &s.PageMargin},
		{"font-size", &s.BaseFontSize},
		{"line-height", &s.BaseLineHeight},
		{"widows-orphans", &s.WidowsOrphans},
	} {
		if !cmd.IsSet(f.name) {
			continue
		}
		v := strings.Join(strings.Fields(cmd.String(f.name)), " ")
		if v == "" {
			return false, fmt.Errorf("--%s requires value", f.name)
		}
		*f.field, changed = v, true
	}

	for _, f := range []struct {
		name  string
		field *bool
	}{
		{"fit-images", &s.ImageMaxSizeToFitPage},
		{"first-page-zero", &s.FirstPageMarginZero},
		{"html-body-zero", &s.ForceHTMLBodyMarginZero},
	} {
		if cmd.IsSet(f.name) {
			*f.field, changed = cmd.Bool(f.name), true
		}
	}

	if cmd.IsSet("all-important") {
		s.SetAllImportant(cmd.Bool("all-important"))
		changed = true
	}

	if changed {
		log.Debug("Page style changed from command line", zap.Stringer("mode", s.Mode), zap.Bool("all_important", s.AllImportant()))
	}
	return changed, nil
}

// applySize interprets --size value.
func applySize(s *pagestyle.PageStyle, value string) error {
	fields := strings.Fields(value)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("--size must have 1 or 2 words, got %q", value)
	}

	if len(fields) == 1 && strings.EqualFold(fields[0], "auto") {
		s.Mode = pagestyle.ModeAuto
		return nil
	}

	if p, ok := pagestyle.LookupPreset(fields[0]); ok {
		landscape := false
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "landscape":
				landscape = true
			case "portrait":
			default:
				return fmt.Errorf("--size orientation must be landscape or portrait, got %q", fields[1])
			}
		}
		s.Mode, s.Preset, s.Landscape = pagestyle.ModePreset, p, landscape
		return nil
	}

	for _, f := range fields {
		if v := css.ParseValue(f); !v.IsNumeric() || v.Unit == "" || v.Unit == "%" {
			return fmt.Errorf("--size %q is neither preset name nor length", f)
		}
	}
	w, h := fields[0], fields[0]
	if len(fields) == 2 {
		h = fields[1]
	}
	s.Mode, s.CustomWidth, s.CustomHeight = pagestyle.ModeCustom, w, h
	return nil
}
