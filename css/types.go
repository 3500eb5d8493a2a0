package css

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Value represents a parsed CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", "mm", etc.
	Keyword string  // Keyword if applicable: "auto", "landscape", etc.
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0mm".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	// handles "0"
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Value     Value
	Important bool
}

// Rule represents a single CSS rule (selector + declarations).
type Rule struct {
	Selector     string        // Selector as written, whitespace normalized
	Declarations []Declaration // In source order
}

// Lookup returns the last declaration of property, the one which wins.
func (r Rule) Lookup(property string) (Declaration, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if r.Declarations[i].Property == property {
			return r.Declarations[i], true
		}
	}
	return Declaration{}, false
}

// AtRule represents @-rule with a block (@media, @top-center, @font-face...).
type AtRule struct {
	Name         string        // Including '@'
	Prelude      string        // Everything between name and block
	Declarations []Declaration // Declarations directly in the block
	Rules        []Rule        // Nested rules
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule, AtRule, Declaration or Import is non-nil.
type StylesheetItem struct {
	Rule        *Rule
	AtRule      *AtRule
	Declaration *Declaration // Only in declaration lists (inline mode)
	Import      *string
}

// Stylesheet represents a parsed CSS fragment.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Things which were skipped
}

// Declarations returns top-level declarations in source order.
func (s *Stylesheet) Declarations() []Declaration {
	var decls []Declaration
	for _, item := range s.Items {
		if item.Declaration != nil {
			decls = append(decls, *item.Declaration)
		}
	}
	return decls
}

// Rules returns top-level rules in source order.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

// AtRules returns top-level @-rules with blocks in source order.
func (s *Stylesheet) AtRules() []AtRule {
	var rules []AtRule
	for _, item := range s.Items {
		if item.AtRule != nil {
			rules = append(rules, *item.AtRule)
		}
	}
	return rules
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// Empty reports whether nothing was found.
func (s *Stylesheet) Empty() bool {
	return len(s.Items) == 0
}

// WriteTo writes an outline of the stylesheet to w in source order,
// implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, item := range s.Items {
		var n int
		var err error

		switch {
		case item.Import != nil:
			n, err = fmt.Fprintf(w, "@import %q;\n", *item.Import)
		case item.Declaration != nil:
			n, err = writeDeclaration(w, "", *item.Declaration)
		case item.AtRule != nil:
			n, err = writeAtRule(w, item.AtRule)
		case item.Rule != nil:
			n, err = writeRule(w, "", item.Rule)
		}

		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the outline of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeDeclaration(w io.Writer, indent string, d Declaration) (int, error) {
	imp := ""
	if d.Important {
		imp = " !important"
	}
	return fmt.Fprintf(w, "%s%s: %s%s;\n", indent, d.Property, d.Value.Raw, imp)
}

// writeRule writes a single CSS rule to w.
func writeRule(w io.Writer, indent string, rule *Rule) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, rule.Selector)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		n, err = writeDeclaration(w, indent+"  ", d)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// writeAtRule writes an @-rule block to w.
func writeAtRule(w io.Writer, ar *AtRule) (int, error) {
	var total int
	head := ar.Name
	if ar.Prelude != "" {
		head += " " + ar.Prelude
	}
	n, err := fmt.Fprintf(w, "%s {\n", head)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range ar.Declarations {
		n, err = writeDeclaration(w, "  ", d)
		total += n
		if err != nil {
			return total, err
		}
	}
	for i := range ar.Rules {
		n, err = writeRule(w, "  ", &ar.Rules[i])
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
