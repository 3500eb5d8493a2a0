package preview_test

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"pgstyle/config"
	"pgstyle/pagestyle"
	"pgstyle/preview"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func previewConfig() *config.PreviewConfig {
	a4, _ := pagestyle.LookupPreset("A4")
	return &config.PreviewConfig{
		Size:               200,
		FallbackPreset:     a4,
		Label:              true,
		OutputNameTemplate: "{{ .Name }}-{{ .Mode }}.png",
	}
}

func TestCompute_PageSize(t *testing.T) {
	a4, _ := pagestyle.LookupPreset("A4")

	tests := []struct {
		name   string
		modify func(s *pagestyle.PageStyle)
		w, h   float64
		label  string
	}{
		{"auto uses fallback", func(s *pagestyle.PageStyle) {}, 210, 297, "auto (A4)"},
		{"auto ignores landscape", func(s *pagestyle.PageStyle) { s.Landscape = true }, 210, 297, "auto (A4)"},
		{"preset", func(s *pagestyle.PageStyle) {
			s.Mode = pagestyle.ModePreset
			s.Preset, _ = pagestyle.LookupPreset("letter")
		}, 215.9, 279.4, "letter"},
		{"preset landscape", func(s *pagestyle.PageStyle) {
			s.Mode = pagestyle.ModePreset
			s.Preset, _ = pagestyle.LookupPreset("A5")
			s.Landscape = true
		}, 210, 148, "A5 landscape"},
		{"custom inches", func(s *pagestyle.PageStyle) {
			s.Mode = pagestyle.ModeCustom
			s.CustomWidth, s.CustomHeight = "6in", "9in"
		}, 152.4, 228.6, "6in x 9in"},
		{"custom mixed units", func(s *pagestyle.PageStyle) {
			s.Mode = pagestyle.ModeCustom
			s.CustomWidth, s.CustomHeight = "12cm", "720pt"
		}, 120, 254, "12cm x 720pt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pagestyle.New()
			tt.modify(s)
			g, err := preview.Compute(s, a4)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approx(g.Width, tt.w) || !approx(g.Height, tt.h) {
				t.Errorf("expected %vx%v, got %vx%v", tt.w, tt.h, g.Width, g.Height)
			}
			if g.Label != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, g.Label)
			}
		})
	}
}

func TestCompute_Margins(t *testing.T) {
	a4, _ := pagestyle.LookupPreset("A4")

	tests := []struct {
		margin string
		want   [4]float64
	}{
		{"10%", [4]float64{29.7, 21, 29.7, 21}},
		{"1cm 2cm", [4]float64{10, 20, 10, 20}},
		{"1cm auto 0", [4]float64{10, 0, 0, 0}},
		{"1mm 2mm 3mm 4mm", [4]float64{1, 2, 3, 4}},
		{"1in", [4]float64{25.4, 25.4, 25.4, 25.4}},
	}

	for _, tt := range tests {
		t.Run(tt.margin, func(t *testing.T) {
			s := pagestyle.New()
			s.PageMargin = tt.margin
			g, err := preview.Compute(s, a4)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i := range g.Margin {
				if !approx(g.Margin[i], tt.want[i]) {
					t.Errorf("expected margins %v, got %v", tt.want, g.Margin)
					break
				}
			}
		})
	}
}

func TestCompute_Typography(t *testing.T) {
	a4, _ := pagestyle.LookupPreset("A4")
	px := 25.4 / 96

	s := pagestyle.New()
	g, err := preview.Compute(s, a4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(g.FontSize, 16*px) || !approx(g.LineHeight, 16*px*1.2) {
		t.Errorf("unexpected default typography %v/%v", g.FontSize, g.LineHeight)
	}

	s.BaseFontSize, s.BaseLineHeight = "12pt", "1.5"
	if g, err = preview.Compute(s, a4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(g.FontSize, 12*25.4/72) || !approx(g.LineHeight, 18*25.4/72) {
		t.Errorf("unexpected typography %v/%v", g.FontSize, g.LineHeight)
	}

	s.BaseFontSize, s.BaseLineHeight = "150%", "2em"
	if g, err = preview.Compute(s, a4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approx(g.FontSize, 24*px) || !approx(g.LineHeight, 48*px) {
		t.Errorf("unexpected relative typography %v/%v", g.FontSize, g.LineHeight)
	}
}

func TestCompute_Errors(t *testing.T) {
	a4, _ := pagestyle.LookupPreset("A4")

	tests := []struct {
		name   string
		modify func(s *pagestyle.PageStyle)
		want   error
	}{
		{"relative custom size", func(s *pagestyle.PageStyle) {
			s.Mode = pagestyle.ModeCustom
			s.CustomWidth = "50vw"
		}, preview.ErrUnsupportedUnit},
		{"viewport margin", func(s *pagestyle.PageStyle) { s.PageMargin = "5vh" }, preview.ErrUnsupportedUnit},
		{"font keyword", func(s *pagestyle.PageStyle) { s.BaseFontSize = "larger" }, preview.ErrUnsupportedUnit},
		{"margins too wide", func(s *pagestyle.PageStyle) { s.PageMargin = "0 60%" }, preview.ErrNoContentArea},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pagestyle.New()
			tt.modify(s)
			if _, err := preview.Compute(s, a4); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	s := pagestyle.New()
	s.PageMargin = "1 2 3 4 5"
	if _, err := preview.Compute(s, a4); err == nil {
		t.Error("expected error for too many margin values")
	}
}

func TestGeometry_SVG(t *testing.T) {
	a4, _ := pagestyle.LookupPreset("A4")
	s := pagestyle.New()
	s.BaseLineHeight = "10mm"

	g, err := preview.Compute(s, a4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svg := string(g.SVG())
	if !strings.Contains(svg, `viewBox="0 0 210.00 297.00"`) {
		t.Errorf("unexpected view box:\n%s", svg)
	}
	// content is 237.6mm high, 10mm lines
	if n := strings.Count(svg, `fill="#a0a0a0"`); n != 24 {
		t.Errorf("expected 24 text lines, got %d", n)
	}
}

func TestGeometry_DPI(t *testing.T) {
	g := preview.Geometry{Width: 25.4, Height: 50}
	if dpi := g.DPI(300); dpi != 300 {
		t.Errorf("expected 300 dpi, got %d", dpi)
	}
	if dpi := (preview.Geometry{}).DPI(300); dpi != 0 {
		t.Errorf("expected 0 dpi for empty page, got %d", dpi)
	}
}

func TestRenderer_Render(t *testing.T) {
	r := preview.NewRenderer(previewConfig(), zap.NewNop())

	s := pagestyle.New()
	s.Mode = pagestyle.ModePreset
	s.Preset, _ = pagestyle.LookupPreset("A4")
	s.Landscape = true

	img, g, err := r.Render(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 141 {
		t.Errorf("expected landscape thumbnail 200x141, got %v", img.Bounds())
	}
	if g.Label != "A4 landscape" {
		t.Errorf("unexpected label %q", g.Label)
	}

	s.Landscape = false
	if img, _, err = r.Render(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dy() != 200 {
		t.Errorf("expected portrait thumbnail 200 high, got %v", img.Bounds())
	}

	s.PageMargin = "0 70%"
	if _, _, err = r.Render(s); err == nil {
		t.Error("expected error for impossible margins")
	}
}

func TestRenderer_Encode(t *testing.T) {
	r := preview.NewRenderer(previewConfig(), nil)

	img, g, err := r.Render(pagestyle.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("png", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := r.Encode(buf, img, g, "thumb.png"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		dec, err := png.Decode(buf)
		if err != nil {
			t.Fatalf("unable to decode result: %v", err)
		}
		if dec.Bounds() != img.Bounds() {
			t.Errorf("unexpected bounds %v", dec.Bounds())
		}
		if _, ok := dec.(*image.Gray); !ok {
			t.Errorf("expected grayscale png, got %T", dec)
		}
	})

	t.Run("jpeg", func(t *testing.T) {
		buf := new(bytes.Buffer)
		if err := r.Encode(buf, img, g, "thumb.JPG"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data := buf.Bytes()
		if !bytes.Equal(data[2:4], []byte{0xFF, 0xE0}) {
			t.Error("expected JFIF segment")
		}
		if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
			t.Fatalf("unable to decode result: %v", err)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := r.Encode(new(bytes.Buffer), img, g, "thumb.xyz"); err == nil {
			t.Error("expected error for unknown extension")
		}
	})
}

func TestRenderer_OutputName(t *testing.T) {
	s := pagestyle.New()
	s.Mode = pagestyle.ModePreset
	s.Preset, _ = pagestyle.LookupPreset("B5")
	s.Landscape = true
	g := preview.Geometry{Label: "B5 landscape"}

	tests := []struct {
		name          string
		tmpl          string
		src           string
		transliterate bool
		want          string
	}{
		{"default template", "{{ .Name }}-{{ .Mode }}.png", "/tmp/book style.css", false, "book style-preset.png"},
		{"no template", "", "dir/page.css", false, "page.png"},
		{"stdin", "", "-", false, "stdin.png"},
		{"sprig functions", `{{ .Name | upper }}{{ if .Landscape }}-wide{{ end }}.jpg`, "a.css", false, "A-wide.jpg"},
		{"no extension", "{{ .Size }}", "a.css", false, "B5 landscape.png"},
		{"transliterated", "{{ .Name }} {{ .Size }}.png", "Café Style.css", true, "cafe-style-b5-landscape.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := previewConfig()
			cfg.OutputNameTemplate = tt.tmpl
			cfg.FileNameTransliterate = tt.transliterate
			r := preview.NewRenderer(cfg, nil)

			got, err := r.OutputName(tt.src, s, g)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	cfg := previewConfig()
	cfg.OutputNameTemplate = "{{ .Unknown }}"
	if _, err := preview.NewRenderer(cfg, nil).OutputName("a.css", s, g); err == nil {
		t.Error("expected error for bad template")
	}
}
