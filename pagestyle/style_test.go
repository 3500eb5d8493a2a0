package pagestyle_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"pgstyle/pagestyle"
)

func TestSetAllImportant_Cascade(t *testing.T) {
	s := pagestyle.New()
	s.Mode = pagestyle.ModeCustom
	s.PageOther = "a:b;"
	s.Other = "p{}"

	s.SetAllImportant(true)

	if !s.AllImportant() {
		t.Error("expected aggregate flag to be set")
	}
	flags := map[string]bool{
		"size":           s.SizeImp,
		"margin":         s.PageMarginImp,
		"first page":     s.FirstPageMarginZeroImp,
		"font size":      s.BaseFontSizeImp,
		"line height":    s.BaseLineHeightImp,
		"widows/orphans": s.WidowsOrphansImp,
		"image max size": s.ImageMaxSizeImp,
	}
	for name, v := range flags {
		if !v {
			t.Errorf("expected %s importance to be set", name)
		}
	}
	if s.Mode != pagestyle.ModeCustom || s.PageOther != "a:b;" || s.Other != "p{}" {
		t.Error("expected cascade to leave mode and opaque text alone")
	}

	// individual flags do not write back
	s.SizeImp = false
	if !s.AllImportant() {
		t.Error("expected aggregate flag to stay set")
	}

	s.SetAllImportant(false)
	if s.PageMarginImp || s.ImageMaxSizeImp || s.AllImportant() {
		t.Error("expected cascade to clear flags")
	}
}

func TestEquivalent(t *testing.T) {
	a, b := pagestyle.New(), pagestyle.New()
	if !a.Equivalent(b) {
		t.Fatal("expected defaults to be equivalent")
	}

	// unused preset selection is ignored in custom mode
	a.Mode, b.Mode = pagestyle.ModeCustom, pagestyle.ModeCustom
	a.Preset, _ = pagestyle.LookupPreset("A3")
	b.Preset, _ = pagestyle.LookupPreset("letter")
	a.Landscape = true
	if !a.Equivalent(b) {
		t.Error("expected custom mode styles with different presets to be equivalent")
	}

	b.CustomHeight = "300mm"
	if a.Equivalent(b) {
		t.Error("expected different custom height to matter")
	}

	// unused custom size is ignored in preset mode
	a.Mode, b.Mode = pagestyle.ModePreset, pagestyle.ModePreset
	b.Preset = a.Preset
	b.Landscape = true
	if !a.Equivalent(b) {
		t.Error("expected preset mode styles with different custom size to be equivalent")
	}
	b.Landscape = false
	if a.Equivalent(b) {
		t.Error("expected orientation to matter in preset mode")
	}

	c, d := pagestyle.New(), pagestyle.New()
	d.Mode = pagestyle.ModePreset
	if c.Equivalent(d) || d.Equivalent(c) {
		t.Error("expected styles in different modes to differ")
	}

	e, f := pagestyle.New(), pagestyle.New()
	e.SetAllImportant(true)
	f.SetAllImportant(true)
	f.SetAllImportant(false)
	if e.Equivalent(f) {
		t.Error("expected aggregate flag to matter")
	}

	g, h := pagestyle.New(), pagestyle.New()
	h.Other = "x"
	if g.Equivalent(h) {
		t.Error("expected trailing text to matter")
	}
}

func TestEquivalent_UnknownModePanics(t *testing.T) {
	a, b := pagestyle.New(), pagestyle.New()
	a.Mode, b.Mode = pagestyle.Mode(7), pagestyle.Mode(7)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown mode")
		}
	}()
	a.Equivalent(b)
}

func TestCopyInto(t *testing.T) {
	src := pagestyle.Parse("@page{size:B4 landscape!important;margin:1cm!important;x:y}\n*{widows:1!important;orphans:1!important}\np{}")
	dst := pagestyle.New()
	dst.Other = "will be replaced"

	src.CopyInto(dst)

	if *dst != *src {
		t.Errorf("expected identical copy, got %+v", dst)
	}
	if !dst.AllImportant() {
		t.Error("expected aggregate flag to be copied")
	}

	// copy is independent
	dst.PageMargin = "2cm"
	if src.PageMargin != "1cm" {
		t.Error("expected source to stay unchanged")
	}
}

func TestValidate(t *testing.T) {
	if err := pagestyle.New().Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}

	s := pagestyle.New()
	s.Mode = pagestyle.ModeCustom
	s.CustomWidth = ""
	s.PageMargin = "1 2 3 4 5"
	s.WidowsOrphans = "3"
	s.PageOther = "a{b{c}}"
	s.RootOther = "--x:{a}"
	s.BaseFontSize = "12pt!important"

	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 6 {
		t.Errorf("expected 6 problems, got %d: %v", n, err)
	}

	s = pagestyle.New()
	s.Mode = pagestyle.Mode(9)
	if err := s.Validate(); !errors.Is(err, pagestyle.ErrInvalidMode) {
		t.Errorf("expected invalid mode error, got %v", err)
	}

	s = pagestyle.New()
	s.Mode = pagestyle.ModePreset
	s.Preset = pagestyle.Preset{Name: "A0"}
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "A0") {
		t.Errorf("expected unknown preset error, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	list := pagestyle.Presets()
	if len(list) != 10 {
		t.Fatalf("expected 10 presets, got %d", len(list))
	}
	if list[0].Name != "A5" || list[len(list)-1].Name != "ledger" {
		t.Errorf("unexpected preset order: %s ... %s", list[0].Name, list[len(list)-1].Name)
	}

	list[0].Name = "changed"
	if pagestyle.Presets()[0].Name != "A5" {
		t.Error("expected preset table to be immutable")
	}

	p, ok := pagestyle.LookupPreset("jis-b5")
	if !ok || p.Name != "JIS-B5" || p.Description != "B5 (JIS)" {
		t.Errorf("unexpected lookup result %+v", p)
	}
	if _, ok := pagestyle.LookupPreset("A0"); ok {
		t.Error("expected A0 to be unknown")
	}
}

func TestDefaults(t *testing.T) {
	d := pagestyle.Defaults()
	if d.PageMargin != "10%" || d.CustomWidth != "210mm" || d.CustomHeight != "297mm" ||
		d.BaseFontSize != "100%" || d.BaseLineHeight != "normal" || d.WidowsOrphans != "2" {
		t.Errorf("unexpected defaults %+v", d)
	}
}

func TestYAML(t *testing.T) {
	s := pagestyle.New()
	s.Mode = pagestyle.ModePreset
	s.Preset, _ = pagestyle.LookupPreset("legal")

	data, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "mode: preset") || !strings.Contains(string(data), "preset: legal") {
		t.Errorf("unexpected yaml:\n%s", data)
	}

	back := pagestyle.New()
	if err := yaml.Unmarshal([]byte("mode: custom\npreset: A3\ncustom_width: 5in\ncustom_height: 7in\n"), back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Mode != pagestyle.ModeCustom || back.Preset.Name != "A3" || back.CustomWidth != "5in" {
		t.Errorf("unexpected result %+v", back)
	}
	// fields not mentioned keep their values
	if back.PageMargin != "10%" {
		t.Errorf("expected default margin, got %q", back.PageMargin)
	}

	if err := yaml.Unmarshal([]byte("preset: A0\n"), pagestyle.New()); err == nil {
		t.Error("expected unknown preset to be rejected")
	}
	if err := yaml.Unmarshal([]byte("mode: portrait\n"), pagestyle.New()); err == nil {
		t.Error("expected unknown mode to be rejected")
	}
}
