package css

import (
	"strings"

	"go.uber.org/zap"

	"pgstyle/pagestyle"
)

// Bucket is parsed content of one of the opaque page style fields.
type Bucket struct {
	Name  string
	Sheet *Stylesheet
}

// Inspect parses text page style keeps without understanding it. Block
// bodies (page, first page and root extras) are read as declaration lists,
// trailing text as a stylesheet. Empty fields are skipped.
func (p *Parser) Inspect(s *pagestyle.PageStyle) []Bucket {
	buckets := []struct {
		name   string
		text   string
		inline bool
	}{
		{"page_other", s.PageOther, true},
		{"first_page_other", s.FirstPageOther, true},
		{"root_other", s.RootOther, true},
		{"other", s.Other, false},
	}

	var out []Bucket
	for _, b := range buckets {
		if strings.TrimSpace(b.text) == "" {
			continue
		}
		var sheet *Stylesheet
		if b.inline {
			sheet = p.ParseDeclarations([]byte(b.text), b.name)
		} else {
			sheet = p.Parse([]byte(b.text), b.name)
		}
		if len(sheet.Warnings) > 0 {
			p.log.Debug("Opaque text is not clean CSS", zap.String("field", b.name), zap.Strings("warnings", sheet.Warnings))
		}
		out = append(out, Bucket{Name: b.name, Sheet: sheet})
	}
	return out
}
