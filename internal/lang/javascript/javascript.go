// Package javascript is the JavaScript lang.Language adapter, backed by
// github.com/smacker/go-tree-sitter/javascript, grounded on the teacher's
// internal/lang/javascript/provider.go.
package javascript

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	javascript_sitter "github.com/smacker/go-tree-sitter/javascript"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/lang/sitterbridge"
)

var commentSorts = map[string]bool{"comment": true}

var statementSorts = map[string]bool{
	"expression_statement":  true,
	"if_statement":           true,
	"for_statement":          true,
	"for_in_statement":       true,
	"while_statement":        true,
	"do_statement":           true,
	"return_statement":       true,
	"variable_declaration":   true,
	"lexical_declaration":    true,
	"throw_statement":        true,
	"try_statement":          true,
	"break_statement":        true,
	"continue_statement":     true,
	"switch_statement":       true,
	"empty_statement":        true,
	"labeled_statement":      true,
}

// Language implements lang.Language for JavaScript.
type Language struct {
	sitterLang *sitter.Language
	parser     *sitterbridge.Parser
}

func New() *Language {
	sl := javascript_sitter.GetLanguage()
	return &Language{sitterLang: sl, parser: &sitterbridge.Parser{SitterLang: sl}}
}

func (l *Language) Name() string       { return "javascript" }
func (l *Language) Parser() lang.Parser { return l.parser }

func (l *Language) IsComment(kind string) bool   { return commentSorts[kind] }
func (l *Language) IsStatement(kind string) bool { return statementSorts[kind] }

func (l *Language) MetavariablePrefix() byte { return '$' }

// µ (U+00B5) is used in place of `$` inside snippet text before handing it
// to the grammar, since a bare `$` is itself valid in JS identifiers and
// would silently parse as one rather than signal a metavariable.
func (l *Language) SubstituteChar() byte { return 0xB5 }

func (l *Language) IsMetavariableSort(kind string) bool {
	return kind == "identifier" || kind == "shorthand_property_identifier"
}

func (l *Language) IsDots(name string) bool      { return name == "..." }
func (l *Language) IsUnderscore(name string) bool { return name == "_" }

func (l *Language) SnippetContexts() []lang.SnippetContext {
	return []lang.SnippetContext{
		{Name: "statement", Prefix: "", Suffix: ""},
		{Name: "expression", Prefix: "(", Suffix: ")"},
		{Name: "member", Prefix: "a.", Suffix: ""},
		{Name: "program", Prefix: "", Suffix: "\n"},
	}
}

func (l *Language) IsEquivalent(a, b string) bool {
	return normalizeStringLiteral(a) == normalizeStringLiteral(b)
}

func (l *Language) Normalize(kind, text string) string {
	if kind == "string" {
		return normalizeStringLiteral(text)
	}
	return text
}

func normalizeStringLiteral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func (l *Language) PaddingChars() string { return " \t" }

func (l *Language) TakePadding(source []byte, at int) string {
	start := at
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	line := source[start:at]
	trimmed := strings.TrimLeft(string(line), " \t")
	if trimmed != "" {
		return ""
	}
	return string(line)
}

func (l *Language) PadSnippet(snippet, indent string) string {
	lines := strings.Split(snippet, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] == "" {
			continue
		}
		lines[i] = indent + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (l *Language) CommentText(n lang.Node) (int, int) {
	text := n.Text()
	start, end := n.StartByte(), n.EndByte()
	switch {
	case strings.HasPrefix(text, "//"):
		return start + 2, end
	case strings.HasPrefix(text, "/*") && strings.HasSuffix(text, "*/"):
		return start + 2, end - 2
	default:
		return start, end
	}
}

func (l *Language) ListSeparator() string { return "," }

func (l *Language) SuppressionComment() string { return "// grit-ignore" }
