package edit

import (
	"fmt"

	"pgstyle/css"
	"pgstyle/pagestyle"
	"pgstyle/state"
	"pgstyle/utils/debug"
)

// storeStyleTree puts outline of page style fields into debug report.
func storeStyleTree(env *state.LocalEnv, stage string, s *pagestyle.PageStyle, matched bool) {
	if env.Rpt == nil {
		return
	}
	env.Rpt.StoreData(fmt.Sprintf("debug/%s-style.txt", stage), styleTree(s, matched).Bytes())
}

func styleTree(s *pagestyle.PageStyle, matched bool) *debug.TreeWriter {
	tw := debug.NewTreeWriter()
	tw.Line(0, "page style (matched: %t, all important: %t)", matched, s.AllImportant())

	tw.Line(1, "@page")
	switch s.Mode {
	case pagestyle.ModeAuto:
		tw.Field(2, "size", "auto", s.SizeImp)
	case pagestyle.ModePreset:
		orientation := "portrait"
		if s.Landscape {
			orientation = "landscape"
		}
		tw.Field(2, "size", s.Preset.Name+" "+orientation, s.SizeImp)
	case pagestyle.ModeCustom:
		tw.Field(2, "size", s.CustomWidth+" "+s.CustomHeight, s.SizeImp)
	default:
		tw.Line(2, "size: unknown mode %d", int(s.Mode))
	}
	tw.Field(2, "margin", s.PageMargin, s.PageMarginImp)

	tw.Line(1, "@page:first")
	tw.Line(2, "margin zero: %t (important: %t)", s.FirstPageMarginZero, s.FirstPageMarginZeroImp)
	tw.Line(1, "html,body")
	tw.Line(2, "margin zero: %t", s.ForceHTMLBodyMarginZero)

	tw.Line(1, ":root")
	tw.Field(2, "font-size", s.BaseFontSize, s.BaseFontSizeImp)
	tw.Field(2, "line-height", s.BaseLineHeight, s.BaseLineHeightImp)

	tw.Line(1, "*")
	tw.Field(2, "widows/orphans", s.WidowsOrphans, s.WidowsOrphansImp)
	tw.Line(1, "img,svg")
	tw.Line(2, "fit page: %t (important: %t)", s.ImageMaxSizeToFitPage, s.ImageMaxSizeImp)

	buckets := css.NewParser(nil).Inspect(s)
	if len(buckets) == 0 {
		return tw
	}
	tw.Line(1, "opaque")
	for _, b := range buckets {
		tw.Line(2, "%s (%d items, %d warnings)", b.Name, len(b.Sheet.Items), len(b.Sheet.Warnings))
		tw.Text(2, b.Sheet.String())
		for _, w := range b.Sheet.Warnings {
			tw.Field(3, "warning", w, false)
		}
	}
	return tw
}
