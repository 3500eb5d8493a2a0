package preview

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"pgstyle/config"
	"pgstyle/pagestyle"
)

const defaultExt = ".png"

// NameValues are available to output name template.
type NameValues struct {
	Name      string // source file name without extension
	Mode      string
	Size      string // page size label
	Landscape bool
}

// OutputName builds thumbnail file name for src using configured template.
// Template may produce name without extension, then PNG is used.
func (r *Renderer) OutputName(src string, s *pagestyle.PageStyle, g Geometry) (string, error) {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if src == "-" || src == "" {
		base = "stdin"
	}

	name := base + defaultExt
	if r.cfg.OutputNameTemplate != "" {
		tmpl, err := template.New(string(config.OutputNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(r.cfg.OutputNameTemplate)
		if err != nil {
			return "", fmt.Errorf("unable to parse template field %s: %w", config.OutputNameTemplateFieldName, err)
		}
		values := NameValues{
			Name:      base,
			Mode:      s.Mode.String(),
			Size:      g.Label,
			Landscape: s.Mode == pagestyle.ModePreset && s.Landscape,
		}
		buf := new(bytes.Buffer)
		if err := tmpl.Execute(buf, values); err != nil {
			return "", fmt.Errorf("unable to expand template field %s: %w", config.OutputNameTemplateFieldName, err)
		}
		name = strings.TrimSpace(buf.String())
	}

	ext := filepath.Ext(name)
	if ext == "" {
		ext = defaultExt
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if r.cfg.FileNameTransliterate {
		stem = slug.Make(stem)
	}
	return config.CleanFileName(stem) + ext, nil
}
