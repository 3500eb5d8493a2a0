package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strconv"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pgstyle/config"
	"pgstyle/pagestyle"
	imgutil "pgstyle/utils/images"
)

// maxTextLines limits number of text lines drawn on a page.
const maxTextLines = 400

// Renderer draws page style thumbnails.
type Renderer struct {
	cfg *config.PreviewConfig
	log *zap.Logger
}

// NewRenderer creates renderer for given preview configuration.
func NewRenderer(cfg *config.PreviewConfig, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{cfg: cfg, log: log.Named("preview")}
}

// Render computes geometry of the style and draws it with longest side of
// configured size.
func (r *Renderer) Render(s *pagestyle.PageStyle) (image.Image, Geometry, error) {
	g, err := Compute(s, r.cfg.FallbackPreset)
	if err != nil {
		return nil, Geometry{}, err
	}
	r.log.Debug("Page geometry",
		zap.String("label", g.Label),
		zap.Float64("width", g.Width), zap.Float64("height", g.Height),
		zap.Float64s("margin", g.Margin[:]),
		zap.Float64("line", g.LineHeight))

	targetW, targetH := r.cfg.Size, 0
	if g.Height > g.Width {
		targetW, targetH = 0, r.cfg.Size
	}
	img, err := imgutil.RasterizeSVGToImage(g.SVG(), targetW, targetH)
	if err != nil {
		return nil, Geometry{}, fmt.Errorf("unable to rasterize page: %w", err)
	}
	if r.cfg.Label {
		drawLabel(img, g.Label)
	}
	return img, g, nil
}

// Encode writes image in format selected by name extension. JPEG images carry
// resolution matching physical page size.
func (r *Renderer) Encode(w io.Writer, img image.Image, g Geometry, name string) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("unable to select image format for %s: %w", name, err)
	}
	if imgutil.IsGrayscale(img) {
		img = imgutil.ToGray(img)
	}

	switch format {
	case imaging.JPEG:
		dpi := g.DPI(img.Bounds().Dx())
		r.log.Debug("Encoding JPEG", zap.Int16("dpi", dpi))
		err = imgutil.EncodeJPEGWithDPI(w, img, 90, dpi)
	case imaging.PNG:
		err = imaging.Encode(w, img, format, imaging.PNGCompressionLevel(png.BestCompression))
	default:
		err = imaging.Encode(w, img, format)
	}
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", format, err)
	}
	return nil
}

// SVG returns drawing of the page in millimetre coordinates.
func (g Geometry) SVG() []byte {
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`+"\n", f(g.Width), f(g.Height))
	fmt.Fprintf(buf, `<rect x="0" y="0" width="%s" height="%s" fill="white" stroke="black" stroke-width="%s"/>`+"\n",
		f(g.Width), f(g.Height), f(max(g.Width, g.Height)/200))

	x, y, w, h := g.ContentBox()
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="#f0f0f0"/>`+"\n", f(x), f(y), f(w), f(h))

	// text lines, each a bar of x-height sitting on its baseline
	if g.LineHeight > 0 && g.FontSize > 0 {
		bar := g.FontSize / 2
		for i, top := 0, y+(g.LineHeight-bar)/2; top+bar <= y+h && i < maxTextLines; i, top = i+1, top+g.LineHeight {
			fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="#a0a0a0"/>`+"\n", f(x), f(top), f(w), f(bar))
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func drawLabel(img draw.Image, label string) {
	face := basicfont.Face7x13
	b := img.Bounds()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	width := d.MeasureString(label).Ceil()
	if width+4 > b.Dx() || face.Height+4 > b.Dy() {
		// does not fit, thumbnail is too small
		return
	}
	// white plate under text at the bottom
	plate := image.Rect(b.Min.X, b.Max.Y-face.Height-4, b.Min.X+width+4, b.Max.Y)
	draw.Draw(img, plate, image.White, image.Point{}, draw.Src)
	d.Dot = fixed.P(b.Min.X+2, b.Max.Y-2-face.Descent)
	d.DrawString(label)
}
