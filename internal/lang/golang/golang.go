// Package golang is the Go lang.Language adapter, backed by
// github.com/smacker/go-tree-sitter/golang, grounded on the teacher's
// internal/lang/golang/provider.go.
package golang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	golang_sitter "github.com/smacker/go-tree-sitter/golang"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/lang/sitterbridge"
)

var commentSorts = map[string]bool{"comment": true}

var statementSorts = map[string]bool{
	"expression_statement":  true,
	"if_statement":           true,
	"for_statement":          true,
	"return_statement":       true,
	"short_var_declaration":  true,
	"assignment_statement":   true,
	"go_statement":           true,
	"defer_statement":        true,
	"send_statement":         true,
	"labeled_statement":      true,
	"break_statement":        true,
	"continue_statement":     true,
	"goto_statement":         true,
	"fallthrough_statement":  true,
	"block":                  true,
}

// Language implements lang.Language for Go.
type Language struct {
	sitterLang *sitter.Language
	parser     *sitterbridge.Parser
}

func New() *Language {
	sl := golang_sitter.GetLanguage()
	return &Language{sitterLang: sl, parser: &sitterbridge.Parser{SitterLang: sl}}
}

func (l *Language) Name() string        { return "go" }
func (l *Language) Parser() lang.Parser { return l.parser }

func (l *Language) IsComment(kind string) bool   { return commentSorts[kind] }
func (l *Language) IsStatement(kind string) bool { return statementSorts[kind] }

func (l *Language) MetavariablePrefix() byte { return '$' }

// µ substitutes for `$` while the Go grammar parses a snippet, since Go
// identifiers cannot contain `$` at all and would otherwise fail outright.
func (l *Language) SubstituteChar() byte { return 0xB5 }

func (l *Language) IsMetavariableSort(kind string) bool {
	return kind == "identifier"
}

func (l *Language) IsDots(name string) bool       { return name == "..." }
func (l *Language) IsUnderscore(name string) bool { return name == "_" }

func (l *Language) SnippetContexts() []lang.SnippetContext {
	return []lang.SnippetContext{
		{Name: "statement", Prefix: "package p\nfunc f() {\n", Suffix: "\n}"},
		{Name: "declaration", Prefix: "package p\n", Suffix: ""},
		{Name: "expression", Prefix: "package p\nvar _ = ", Suffix: "\n"},
	}
}

func (l *Language) IsEquivalent(a, b string) bool {
	return normalizeStringLiteral(a) == normalizeStringLiteral(b)
}

func (l *Language) Normalize(kind, text string) string {
	if kind == "interpreted_string_literal" || kind == "raw_string_literal" {
		return normalizeStringLiteral(text)
	}
	return text
}

func normalizeStringLiteral(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '`') && first == last {
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
