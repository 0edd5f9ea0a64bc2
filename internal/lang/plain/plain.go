// Package plain is a grammar-free lang.Language: it tokenizes a document
// into a flat line-oriented tree instead of wrapping a tree-sitter grammar.
// It exists to demonstrate that the core's Parser trait (spec §6) is not
// tied to tree-sitter, and to run the Markdown scenario from spec §8
// without a real Markdown grammar binding (go-tree-sitter does not vendor
// one; see DESIGN.md).
//
// The tree it produces has a "document" root whose named children are
// "line" nodes, each further split into "word" children on whitespace
// boundaries. That is enough structure for `contains`/Dots matching over
// a document and for metavariable capture at word granularity.
package plain

import (
	"strings"

	"github.com/oxhq/gritql/internal/lang"
)

type node struct {
	kind     string
	field    string
	start    int
	end      int
	source   []byte
	parent   *node
	children []*node
	named    bool
}

func (n *node) Kind() string  { return n.kind }
func (n *node) Field() string { return n.field }
func (n *node) StartByte() int { return n.start }
func (n *node) EndByte() int   { return n.end }
func (n *node) Source() []byte { return n.source }
func (n *node) Parent() lang.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}
func (n *node) Child(i int) lang.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}
func (n *node) ChildCount() int { return len(n.children) }
func (n *node) NamedChild(i int) lang.Node {
	idx := 0
	for _, c := range n.children {
		if c.named {
			if idx == i {
				return c
			}
			idx++
		}
	}
	return nil
}
func (n *node) NamedChildCount() int {
	count := 0
	for _, c := range n.children {
		if c.named {
			count++
		}
	}
	return count
}
func (n *node) ChildByFieldName(name string) lang.Node {
	for _, c := range n.children {
		if c.field == name {
			return c
		}
	}
	return nil
}
func (n *node) IsNamed() bool { return n.named }
func (n *node) Text() string  { return string(n.source[n.start:n.end]) }

type tree struct{ root *node }

func (t *tree) Root() lang.Node { return t.root }
func (t *tree) Close()          {}

// Parser implements lang.Parser by splitting source into lines and words.
type Parser struct{}

func (Parser) Parse(source []byte, _ lang.Tree) (lang.Tree, error) {
	root := &node{kind: "document", start: 0, end: len(source), source: source, named: true}

	pos := 0
	for pos <= len(source) {
		nl := indexByteFrom(source, pos, '\n')
		lineEnd := nl
		if lineEnd < 0 {
			lineEnd = len(source)
		}
		line := &node{kind: "line", start: pos, end: lineEnd, source: source, parent: root, named: true}
		splitWords(line)
		root.children = append(root.children, line)
		if nl < 0 {
			break
		}
		pos = nl + 1
	}
	return &tree{root: root}, nil
}

func (p Parser) ParseFile(source []byte, _ string) (lang.Tree, []lang.Diagnostic, error) {
	t, err := p.Parse(source, nil)
	return t, nil, err
}

func splitWords(line *node) {
	text := string(line.source[line.start:line.end])
	offset := line.start
	for _, field := range splitKeepOffsets(text) {
		w := &node{
			kind:   "word",
			start:  offset + field.start,
			end:    offset + field.end,
			source: line.source,
			parent: line,
			named:  true,
		}
		line.children = append(line.children, w)
	}
}

type span struct{ start, end int }

func splitKeepOffsets(s string) []span {
	var spans []span
	inWord := false
	wordStart := 0
	for i, r := range s {
		isSpace := r == ' ' || r == '\t'
		switch {
		case isSpace && inWord:
			spans = append(spans, span{wordStart, i})
			inWord = false
		case !isSpace && !inWord:
			wordStart = i
			inWord = true
		}
	}
	if inWord {
		spans = append(spans, span{wordStart, len(s)})
	}
	return spans
}

func indexByteFrom(b []byte, from int, c byte) int {
	if from >= len(b) {
		return -1
	}
	i := strings.IndexByte(string(b[from:]), c)
	if i < 0 {
		return -1
	}
	return from + i
}

// Language implements lang.Language with no grammar-level sorts beyond
// document/line/word; comments and statements do not exist in this model.
type Language struct{ parser Parser }

func New() *Language { return &Language{} }

func (l *Language) Name() string        { return "plain" }
func (l *Language) Parser() lang.Parser { return l.parser }

func (l *Language) IsComment(string) bool   { return false }
func (l *Language) IsStatement(kind string) bool { return kind == "line" }

func (l *Language) MetavariablePrefix() byte  { return '$' }
func (l *Language) SubstituteChar() byte      { return 0xB5 }
func (l *Language) IsMetavariableSort(kind string) bool { return kind == "word" }
func (l *Language) IsDots(name string) bool       { return name == "..." }
func (l *Language) IsUnderscore(name string) bool { return name == "_" }

func (l *Language) SnippetContexts() []lang.SnippetContext {
	return []lang.SnippetContext{{Name: "document", Prefix: "", Suffix: ""}}
}

func (l *Language) IsEquivalent(a, b string) bool { return a == b }
func (l *Language) Normalize(_, text string) string { return text }

func (l *Language) PaddingChars() string { return " \t" }

func (l *Language) TakePadding(source []byte, at int) string {
	start := at
	for start > 0 && source[start-1] != '\n' {
		start--
	}
	return string(source[start:at])
}

func (l *Language) PadSnippet(snippet, indent string) string {
	lines := strings.Split(snippet, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func (l *Language) CommentText(n lang.Node) (int, int) { return n.StartByte(), n.EndByte() }
func (l *Language) ListSeparator() string               { return "" }
func (l *Language) SuppressionComment() string          { return "<!-- grit-ignore -->" }
