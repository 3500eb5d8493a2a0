package css

import (
	"strconv"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS fragments into structured items.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS stylesheet text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	return p.run(data, false, source)
}

// ParseDeclarations parses the body of a block (declarations and nested
// @-rules, as found inside @page or :root) into a Stylesheet.
func (p *Parser) ParseDeclarations(data []byte, source ...string) *Stylesheet {
	return p.run(data, true, source)
}

func (p *Parser) run(data []byte, inline bool, source []string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)), zap.Bool("inline", inline))
	}

	parser := css.NewParser(parse.NewInputBytes(data), inline)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if !parser.HasParseError() {
				// end of input
				return sheet
			}
			sheet.Warnings = append(sheet.Warnings, parser.Err().Error())
			p.log.Debug("CSS parse error", zap.Error(parser.Err()))

		case css.BeginAtRuleGrammar:
			ar := AtRule{Name: strings.ToLower(string(data)), Prelude: joinTokens(parser.Values())}
			ar.Declarations, ar.Rules = p.parseBlock(parser, sheet, css.EndAtRuleGrammar)
			sheet.Items = append(sheet.Items, StylesheetItem{AtRule: &ar})
			p.log.Debug("Parsed @-rule", zap.String("rule", ar.Name), zap.String("prelude", ar.Prelude))

		case css.AtRuleGrammar:
			// @-rule without block (e.g., @import)
			atRule := strings.ToLower(string(data))
			if atRule == "@import" {
				if url := extractImportURL(parser.Values()); url != "" {
					sheet.Items = append(sheet.Items, StylesheetItem{Import: &url})
					p.log.Debug("Parsed @import", zap.String("url", url))
					continue
				}
			}
			sheet.Warnings = append(sheet.Warnings, "skipped statement "+atRule)
			p.log.Debug("Skipping @-rule", zap.String("rule", atRule))

		case css.BeginRulesetGrammar:
			rule := Rule{Selector: parseSelector(data, parser.Values())}
			rule.Declarations, _ = p.parseBlock(parser, sheet, css.EndRulesetGrammar)
			sheet.Items = append(sheet.Items, StylesheetItem{Rule: &rule})

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := p.parseDeclaration(gt, data, parser.Values())
			sheet.Items = append(sheet.Items, StylesheetItem{Declaration: &d})

		case css.QualifiedRuleGrammar:
			// selector list is continued by the following BeginRulesetGrammar
			continue
		}
	}
}

// parseBlock collects declarations and nested rules until the end grammar.
func (p *Parser) parseBlock(parser *css.Parser, sheet *Stylesheet, end css.GrammarType) ([]Declaration, []Rule) {
	var (
		decls []Declaration
		rules []Rule
		raw   []byte
	)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case end:
			if len(raw) > 0 {
				// unknown @-rule bodies (margin boxes) arrive as plain tokens
				inner := p.ParseDeclarations(raw)
				decls = append(decls, inner.Declarations()...)
				rules = append(rules, inner.Rules()...)
				sheet.Warnings = append(sheet.Warnings, inner.Warnings...)
			}
			return decls, rules

		case css.TokenGrammar:
			raw = append(raw, data...)

		case css.ErrorGrammar:
			if !parser.HasParseError() {
				sheet.Warnings = append(sheet.Warnings, "unterminated block")
				return decls, rules
			}
			sheet.Warnings = append(sheet.Warnings, parser.Err().Error())
			p.log.Debug("CSS parse error", zap.Error(parser.Err()))

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, p.parseDeclaration(gt, data, parser.Values()))

		case css.BeginRulesetGrammar:
			rule := Rule{Selector: parseSelector(data, parser.Values())}
			rule.Declarations, _ = p.parseBlock(parser, sheet, css.EndRulesetGrammar)
			rules = append(rules, rule)

		case css.BeginAtRuleGrammar:
			// Nested @-rules (margin boxes inside @page) are flattened into rules
			// with the @-keyword as selector.
			rule := Rule{Selector: strings.TrimSpace(strings.ToLower(string(data)) + " " + joinTokens(parser.Values()))}
			rule.Declarations, _ = p.parseBlock(parser, sheet, css.EndAtRuleGrammar)
			rules = append(rules, rule)

		case css.AtRuleGrammar:
			sheet.Warnings = append(sheet.Warnings, "skipped nested statement "+string(data))
		}
	}
}

// parseDeclaration builds a Declaration, separating trailing "!important".
func (p *Parser) parseDeclaration(gt css.GrammarType, name []byte, values []css.Token) Declaration {
	d := Declaration{Property: string(name)}

	if gt == css.CustomPropertyGrammar {
		// custom property values are kept verbatim
		raw := strings.TrimSpace(joinTokens(values))
		d.Value = Value{Raw: raw, Keyword: raw}
		return d
	}

	values, d.Important = stripImportant(values)
	d.Value = parsePropertyValue(values)
	return d
}

// stripImportant removes trailing "! important" tokens.
func stripImportant(tokens []css.Token) ([]css.Token, bool) {
	end := trimWhitespace(tokens)
	if end < 2 {
		return tokens, false
	}
	last := tokens[end-1]
	if last.TokenType != css.IdentToken || !strings.EqualFold(string(last.Data), "important") {
		return tokens, false
	}
	bang := trimWhitespace(tokens[:end-1])
	if bang == 0 || tokens[bang-1].TokenType != css.DelimToken || string(tokens[bang-1].Data) != "!" {
		return tokens, false
	}
	return tokens[:bang-1], true
}

func trimWhitespace(tokens []css.Token) int {
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	return end
}

// ParseValue lexes a single CSS value (as stored in configuration) into its
// numeric and keyword components.
func ParseValue(raw string) Value {
	l := css.NewLexer(parse.NewInputString(raw))

	var tokens []css.Token
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			break
		}
		if tt == css.CommentToken {
			continue
		}
		tokens = append(tokens, css.Token{TokenType: tt, Data: []byte(string(data))})
	}
	// lexer keeps leading whitespace, the grammar parser does not
	for len(tokens) > 0 && tokens[0].TokenType == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	return parsePropertyValue(tokens)
}

// parsePropertyValue converts CSS tokens to a Value.
func parsePropertyValue(tokens []css.Token) Value {
	tokens = tokens[:trimWhitespace(tokens)]
	if len(tokens) == 0 {
		return Value{}
	}

	val := Value{Raw: joinTokens(tokens)}

	if len(tokens) == 1 {
		t := tokens[0]
		switch t.TokenType {
		case css.DimensionToken:
			val.Value, val.Unit = parseDimension(string(t.Data))
		case css.PercentageToken:
			val.Value, _ = strconv.ParseFloat(strings.TrimSuffix(string(t.Data), "%"), 64)
			val.Unit = "%"
		case css.NumberToken:
			val.Value, _ = strconv.ParseFloat(string(t.Data), 64)
		case css.IdentToken:
			val.Keyword = strings.ToLower(string(t.Data))
		case css.StringToken:
			val.Keyword = unquote(string(t.Data))
		default:
			// colors, urls
			val.Keyword = val.Raw
		}
		return val
	}

	// Functions and multi-value properties - store as keyword with raw value
	val.Keyword = val.Raw
	return val
}

// joinTokens rebuilds text from tokens, collapsing whitespace.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			continue
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// parseSelector builds normalized selector text from token data.
func parseSelector(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// parseDimension extracts numeric value and unit from dimension token.
func parseDimension(s string) (float64, string) {
	// Find where number ends
	numEnd := 0
	for i, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == '-' || r == '+' {
			numEnd = i + 1
		} else {
			break
		}
	}

	if numEnd == 0 {
		return 0, ""
	}

	num, _ := strconv.ParseFloat(s[:numEnd], 64)
	unit := strings.ToLower(s[numEnd:])
	return num, unit
}

// extractImportURL extracts the URL from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url);
func extractImportURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
