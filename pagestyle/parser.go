package pagestyle

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"go.uber.org/zap"
)

const importantMark = "!important"

// Parser reads page style CSS text into PageStyle.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new page style parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("page-style")}
}

// Parse returns new page style read from text.
func Parse(text string) *PageStyle {
	s := New()
	s.FromCSSText(text)
	return s
}

// FromCSSText replaces page style with values read from text, see
// Parser.Parse.
func (s *PageStyle) FromCSSText(text string) bool {
	return NewParser(nil).Parse(s, text)
}

// declaration is a single recognized property.
type declaration struct {
	value     string
	important bool
}

// sheet is raw result of matching text against the page style grammar. nil
// pointers are clauses which were not present.
type sheet struct {
	sizeW, sizeH *string
	sizeImp      bool
	margin       *declaration
	pageOther    string

	firstPageZero  *declaration
	firstPageOther string

	htmlBodyZero bool

	fontSize   *declaration
	lineHeight *declaration
	rootOther  string

	bodyFontSizeInherit   bool
	bodyLineHeightInherit bool

	widowsOrphans *declaration
	imageMaxSize  *declaration

	other string
}

// Parse matches text against the page style grammar. When text matches every
// field of s is reset to default and then set from the text, aggregate
// importance is derived from how many of the present properties are
// important. Otherwise nothing but s.Other is changed - it receives the
// complete text. Returns true if text matched.
func (p *Parser) Parse(s *PageStyle, text string) bool {
	sc := newScanner(text)
	sh, ok := sc.pageStyle()
	if !ok {
		p.log.Debug("Page style text was not recognized, keeping it as is", zap.Int("offset", sc.failedAt), zap.Int("bytes", len(text)))
		s.Other = text
		return false
	}
	p.apply(s, sh)
	return true
}

func (p *Parser) apply(s *PageStyle, sh *sheet) {
	s.reset()

	var count, countImportant, countNotImportant int
	tally := func(important bool) {
		count++
		if important {
			countImportant++
		} else {
			countNotImportant++
		}
	}

	sizeW, sizeH := sh.sizeW, sh.sizeH
	if sizeW != nil && (*sizeW == "landscape" || *sizeW == "portrait") {
		s.Landscape = *sizeW == "landscape"
		sizeW, sizeH = sizeH, nil
	} else if sizeH != nil && (*sizeH == "landscape" || *sizeH == "portrait") {
		s.Landscape = *sizeH == "landscape"
		sizeH = nil
	}
	if sizeW != nil {
		switch {
		case sizeH != nil:
			s.Mode = ModeCustom
			s.CustomWidth, s.CustomHeight = *sizeW, *sizeH
		case *sizeW == "auto":
			s.Mode = ModeAuto
		default:
			if preset, ok := LookupPreset(*sizeW); ok {
				s.Mode = ModePreset
				s.Preset = preset
			} else {
				// single length means square page
				s.Mode = ModeCustom
				s.CustomWidth, s.CustomHeight = *sizeW, *sizeW
			}
		}
		s.SizeImp = sh.sizeImp
		tally(sh.sizeImp)
	}
	if sh.margin != nil {
		s.PageMargin = sh.margin.value
		s.PageMarginImp = sh.margin.important
		tally(sh.margin.important)
	}
	if sh.pageOther != "" {
		s.PageOther = sh.pageOther
		count++
	}

	if sh.firstPageZero != nil {
		s.FirstPageMarginZero = true
		s.FirstPageMarginZeroImp = sh.firstPageZero.important
		tally(sh.firstPageZero.important)
	}
	if sh.firstPageOther != "" {
		s.FirstPageOther = sh.firstPageOther
		count++
	}

	if sh.htmlBodyZero {
		s.ForceHTMLBodyMarginZero = true
		count++
	}

	if sh.fontSize != nil {
		s.BaseFontSize = sh.fontSize.value
		s.BaseFontSizeImp = sh.fontSize.important
		tally(sh.fontSize.important)
	}
	if sh.lineHeight != nil {
		s.BaseLineHeight = sh.lineHeight.value
		s.BaseLineHeightImp = sh.lineHeight.important
		tally(sh.lineHeight.important)
	}
	if sh.rootOther != "" {
		s.RootOther = sh.rootOther
		count++
	}

	// body rule is derived from :root importance and is not kept, mismatch is tolerated
	if want := s.BaseFontSize != defaults.BaseFontSize && s.BaseFontSizeImp; want != sh.bodyFontSizeInherit {
		p.log.Debug("Body font-size inherit rule does not match root font-size importance", zap.Bool("rule", sh.bodyFontSizeInherit), zap.Bool("expected", want))
	}
	if want := s.BaseLineHeight != defaults.BaseLineHeight && s.BaseLineHeightImp; want != sh.bodyLineHeightInherit {
		p.log.Debug("Body line-height inherit rule does not match root line-height importance", zap.Bool("rule", sh.bodyLineHeightInherit), zap.Bool("expected", want))
	}

	if sh.widowsOrphans != nil {
		s.WidowsOrphans = sh.widowsOrphans.value
		s.WidowsOrphansImp = sh.widowsOrphans.important
		tally(sh.widowsOrphans.important)
	}

	if sh.imageMaxSize != nil {
		s.ImageMaxSizeToFitPage = true
		s.ImageMaxSizeImp = sh.imageMaxSize.important
		tally(sh.imageMaxSize.important)
	}

	if sh.other != "" {
		s.Other = sh.other
		count++
	}

	all := countImportant > 0 && countNotImportant == 0
	if all {
		s.SetAllImportant(true)
	}
	s.allImportant = all

	p.log.Debug("Page style parsed",
		zap.Stringer("mode", s.Mode),
		zap.Int("present", count),
		zap.Int("important", countImportant),
		zap.Int("not important", countNotImportant),
		zap.Bool("all important", all))
}

// scanner is a hand written recursive descent matcher for the page style
// grammar. Optional clauses either consume their input or leave position
// unchanged, mandatory ones abort matching.
type scanner struct {
	z        *parse.Input
	src      string
	failedAt int
}

func newScanner(text string) *scanner {
	return &scanner{z: parse.NewInputString(text), src: text, failedAt: -1}
}

func (sc *scanner) pos() int {
	return sc.z.Pos()
}

func (sc *scanner) rewind(pos int) {
	sc.z.Rewind(pos)
}

func (sc *scanner) atEnd() bool {
	return sc.z.Peek(0) == 0 && sc.z.Err() != nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isWordChar(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// space skips optional whitespace and returns number of bytes skipped.
func (sc *scanner) space() int {
	n := 0
	for isSpace(sc.z.Peek(0)) {
		sc.z.Move(1)
		n++
	}
	return n
}

// literal consumes lit if input continues with it.
func (sc *scanner) literal(lit string) bool {
	for i := 0; i < len(lit); i++ {
		if sc.z.Peek(i) != lit[i] {
			return false
		}
	}
	sc.z.Move(len(lit))
	return true
}

// important consumes optional important marker.
func (sc *scanner) important() bool {
	return sc.literal(importantMark)
}

// token consumes run of bytes which could be a property value: anything but
// whitespace, '!', ';' and braces.
func (sc *scanner) token() (string, bool) {
	start := sc.pos()
	for !sc.atEnd() {
		c := sc.z.Peek(0)
		if isSpace(c) || c == '!' || c == ';' || c == '{' || c == '}' {
			break
		}
		sc.z.Move(1)
	}
	return sc.src[start:sc.pos()], sc.pos() > start
}

// blockText consumes text inside of a rule block up to (not including)
// closing brace. With nested set single level {...} groups are allowed.
func (sc *scanner) blockText(nested bool) (string, bool) {
	start := sc.pos()
	for {
		if sc.atEnd() {
			sc.rewind(start)
			return "", false
		}
		switch sc.z.Peek(0) {
		case '}':
			return strings.TrimSpace(sc.src[start:sc.pos()]), true
		case '{':
			if !nested || !sc.group() {
				sc.rewind(start)
				return "", false
			}
		default:
			sc.z.Move(1)
		}
	}
}

// group consumes "{...}" without nested braces.
func (sc *scanner) group() bool {
	start := sc.pos()
	sc.z.Move(1)
	for !sc.atEnd() {
		switch sc.z.Peek(0) {
		case '}':
			sc.z.Move(1)
			return true
		case '{':
			sc.rewind(start)
			return false
		}
		sc.z.Move(1)
	}
	sc.rewind(start)
	return false
}

// terminator consumes optional ';' and following whitespace.
func (sc *scanner) terminator() {
	sc.space()
	sc.literal(";")
	sc.space()
}

// header consumes selector parts separated by optional whitespace followed
// by '{' and whitespace. Position is restored on failure.
func (sc *scanner) header(parts ...string) bool {
	start := sc.pos()
	for i, part := range parts {
		if i > 0 {
			sc.space()
		}
		if !sc.literal(part) {
			sc.rewind(start)
			return false
		}
	}
	sc.space()
	if !sc.literal("{") {
		sc.rewind(start)
		return false
	}
	sc.space()
	return true
}

// close consumes '}' and whitespace after the block.
func (sc *scanner) close() bool {
	if !sc.literal("}") {
		return false
	}
	sc.space()
	return true
}

func (sc *scanner) fail() (*sheet, bool) {
	sc.failedAt = sc.pos()
	return nil, false
}

// pageStyle matches the whole text, page block is mandatory, everything
// after it is optional and unrecognized remainder is kept.
func (sc *scanner) pageStyle() (*sheet, bool) {
	sh := &sheet{}

	if !sc.pageBlock(sh) {
		return sc.fail()
	}
	sc.firstPageBlock(sh)
	sh.htmlBodyZero = sc.htmlBodyRule()
	sc.rootBlock(sh)
	sc.bodyRule(sh)
	if !sc.widowsBlock(sh) {
		return sc.fail()
	}
	if !sc.imageBlock(sh) {
		return sc.fail()
	}
	sh.other = strings.TrimSpace(sc.src[sc.pos():])
	return sh, true
}

// pageBlock: @page { [size: V [V]][!important][;] [margin: V{1,4}][!important][;] extra }
func (sc *scanner) pageBlock(sh *sheet) bool {
	if !sc.header("@page") {
		return false
	}
	sc.size(sh)
	sh.margin = sc.margin()
	other, ok := sc.blockText(true)
	if !ok || !sc.close() {
		return false
	}
	sh.pageOther = other
	return true
}

func (sc *scanner) size(sh *sheet) {
	start := sc.pos()
	if !sc.literal("size:") {
		return
	}
	sc.space()
	w, ok := sc.token()
	if !ok {
		sc.rewind(start)
		return
	}
	sh.sizeW = &w
	second := sc.pos()
	if sc.space() > 0 {
		if h, ok := sc.token(); ok {
			sh.sizeH = &h
		} else {
			sc.rewind(second)
		}
	}
	sc.space()
	sh.sizeImp = sc.important()
	sc.terminator()
}

func (sc *scanner) margin() *declaration {
	start := sc.pos()
	if !sc.literal("margin:") {
		return nil
	}
	sc.space()
	valueStart := sc.pos()
	if _, ok := sc.token(); !ok {
		sc.rewind(start)
		return nil
	}
	valueEnd := sc.pos()
	for range 3 {
		if sc.space() == 0 {
			break
		}
		if _, ok := sc.token(); !ok {
			break
		}
		valueEnd = sc.pos()
	}
	sc.rewind(valueEnd)
	sc.space()
	d := &declaration{value: sc.src[valueStart:valueEnd], important: sc.important()}
	sc.terminator()
	return d
}

// zeroLength consumes "0" with optional unit.
func (sc *scanner) zeroLength() bool {
	if !sc.literal("0") {
		return false
	}
	if !sc.literal("%") {
		for isWordChar(sc.z.Peek(0)) {
			sc.z.Move(1)
		}
	}
	return true
}

// firstPageBlock: @page :first { [margin: 0<unit>][!important][;] extra }
func (sc *scanner) firstPageBlock(sh *sheet) {
	start := sc.pos()
	if !sc.header("@page", ":first") {
		return
	}
	var zero *declaration
	declStart := sc.pos()
	if sc.literal("margin:") {
		sc.space()
		if sc.zeroLength() {
			sc.space()
			zero = &declaration{value: "0", important: sc.important()}
			sc.terminator()
		} else {
			sc.rewind(declStart)
		}
	}
	other, ok := sc.blockText(true)
	if !ok || !sc.close() {
		sc.rewind(start)
		return
	}
	sh.firstPageZero, sh.firstPageOther = zero, other
}

// htmlBodyRule: html, body { margin: 0<unit> !important[;] }
func (sc *scanner) htmlBodyRule() bool {
	start := sc.pos()
	if !sc.header("html,", "body") {
		return false
	}
	if !sc.literal("margin:") {
		sc.rewind(start)
		return false
	}
	sc.space()
	if !sc.zeroLength() {
		sc.rewind(start)
		return false
	}
	sc.space()
	if !sc.important() {
		sc.rewind(start)
		return false
	}
	sc.terminator()
	if !sc.close() {
		sc.rewind(start)
		return false
	}
	return true
}

// property consumes "name: V [!important][;]".
func (sc *scanner) property(name string) *declaration {
	start := sc.pos()
	if !sc.literal(name + ":") {
		return nil
	}
	sc.space()
	v, ok := sc.token()
	if !ok {
		sc.rewind(start)
		return nil
	}
	sc.space()
	d := &declaration{value: v, important: sc.important()}
	sc.terminator()
	return d
}

// rootBlock: :root { [font-size: V][!important][;] [line-height: V][!important][;] extra }
func (sc *scanner) rootBlock(sh *sheet) {
	start := sc.pos()
	if !sc.header(":root") {
		return
	}
	fontSize := sc.property("font-size")
	lineHeight := sc.property("line-height")
	other, ok := sc.blockText(false)
	if !ok || !sc.close() {
		sc.rewind(start)
		return
	}
	sh.fontSize, sh.lineHeight, sh.rootOther = fontSize, lineHeight, other
}

// inherit consumes "name: inherit !important[;]".
func (sc *scanner) inherit(name string) bool {
	start := sc.pos()
	if !sc.literal(name + ":") {
		return false
	}
	sc.space()
	if !sc.literal("inherit") {
		sc.rewind(start)
		return false
	}
	sc.space()
	if !sc.important() {
		sc.rewind(start)
		return false
	}
	sc.terminator()
	return true
}

// bodyRule: body { [font-size: inherit !important;] [line-height: inherit !important;] }
func (sc *scanner) bodyRule(sh *sheet) {
	start := sc.pos()
	if !sc.header("body") {
		return
	}
	fontSize := sc.inherit("font-size")
	lineHeight := sc.inherit("line-height")
	if !sc.close() {
		sc.rewind(start)
		return
	}
	sh.bodyFontSizeInherit, sh.bodyLineHeightInherit = fontSize, lineHeight
}

// pairedValue consumes "name: value [!important]" where value must be equal
// to want when want is not empty.
func (sc *scanner) pairedValue(name, want string) (*declaration, bool) {
	if !sc.literal(name + ":") {
		return nil, false
	}
	sc.space()
	v, ok := sc.token()
	if !ok || want != "" && v != want {
		return nil, false
	}
	sc.space()
	return &declaration{value: v, important: sc.important()}, true
}

// widowsBlock: * { widows: V [!important]; orphans: V [!important][;] }
// Once the block is started both properties must carry the same value (one
// of 1, 2, 9999) and the same importance, otherwise the whole text is not
// recognized.
func (sc *scanner) widowsBlock(sh *sheet) bool {
	start := sc.pos()
	if !sc.header("*") {
		return true
	}
	decl := sc.pos()
	if !sc.literal("widows:") {
		// some other universal rule, not ours
		sc.rewind(start)
		return true
	}
	sc.rewind(decl)

	widows, ok := sc.pairedValue("widows", "")
	if !ok || !isWidowsOrphansValue(widows.value) || !sc.literal(";") {
		return false
	}
	sc.space()
	orphans, ok := sc.pairedValue("orphans", widows.value)
	if !ok || orphans.important != widows.important {
		return false
	}
	sc.terminator()
	if !sc.close() {
		return false
	}
	sh.widowsOrphans = widows
	return true
}

// imageBlock: img, svg { max-inline-size: 100% [!important]; max-block-size: 100vb [!important][;] }
// Same importance is required for both properties once the block is started.
func (sc *scanner) imageBlock(sh *sheet) bool {
	if !sc.header("img,", "svg") {
		return true
	}
	inline, ok := sc.pairedValue("max-inline-size", "100%")
	if !ok || !sc.literal(";") {
		return false
	}
	sc.space()
	block, ok := sc.pairedValue("max-block-size", "100vb")
	if !ok || block.important != inline.important {
		return false
	}
	sc.terminator()
	if !sc.close() {
		return false
	}
	sh.imageMaxSize = inline
	return true
}
