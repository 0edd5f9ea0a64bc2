// Package sitterbridge adapts github.com/smacker/go-tree-sitter's Node/Tree
// types to the lang.Node/lang.Tree interfaces, shared by every tree-sitter
// backed language adapter (internal/lang/golang, internal/lang/javascript).
// Grounded on the teacher's internal/lang/golang/provider.go and
// internal/lang/javascript/provider.go, which both parse with a sitter
// language and a context.Context.
package sitterbridge

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/gritql/internal/lang"
)

// Node wraps a *sitter.Node plus the source buffer it was parsed from: the
// tree-sitter API requires the buffer alongside every text-extraction call,
// but lang.Node exposes Text()/Source() without callers passing it around.
type Node struct {
	n      *sitter.Node
	source []byte
}

func WrapNode(n *sitter.Node, source []byte) lang.Node {
	if n == nil {
		return nil
	}
	return &Node{n: n, source: source}
}

func (w *Node) Raw() *sitter.Node { return w.n }

func (w *Node) Kind() string { return w.n.Type() }

func (w *Node) Field() string {
	parent := w.n.Parent()
	if parent == nil {
		return ""
	}
	for i := 0; i < int(parent.ChildCount()); i++ {
		if parent.Child(i) == w.n {
			if name := parent.FieldNameForChild(i); name != "" {
				return name
			}
			return ""
		}
	}
	return ""
}

func (w *Node) StartByte() int { return int(w.n.StartByte()) }
func (w *Node) EndByte() int   { return int(w.n.EndByte()) }
func (w *Node) Source() []byte { return w.source }

func (w *Node) Parent() lang.Node { return WrapNode(w.n.Parent(), w.source) }

func (w *Node) Child(i int) lang.Node { return WrapNode(w.n.Child(i), w.source) }
func (w *Node) ChildCount() int       { return int(w.n.ChildCount()) }

func (w *Node) NamedChild(i int) lang.Node { return WrapNode(w.n.NamedChild(i), w.source) }
func (w *Node) NamedChildCount() int       { return int(w.n.NamedChildCount()) }

func (w *Node) ChildByFieldName(name string) lang.Node {
	return WrapNode(w.n.ChildByFieldName(name), w.source)
}

func (w *Node) IsNamed() bool { return w.n.IsNamed() }

func (w *Node) Text() string { return string(w.source[w.StartByte():w.EndByte()]) }

// Tree wraps a *sitter.Tree with the source it was parsed from.
type Tree struct {
	t      *sitter.Tree
	source []byte
}

func (t *Tree) Root() lang.Node { return WrapNode(t.t.RootNode(), t.source) }
func (t *Tree) Close()          { t.t.Close() }
func (t *Tree) Raw() *sitter.Tree { return t.t }

// Parser implements lang.Parser over a *sitter.Language.
type Parser struct {
	SitterLang *sitter.Language
}

func (p *Parser) Parse(source []byte, old lang.Tree) (lang.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(p.SitterLang)

	var oldRaw *sitter.Tree
	if old != nil {
		if t, ok := old.(*Tree); ok {
			oldRaw = t.t
		}
	}

	tree, err := parser.ParseCtx(context.Background(), oldRaw, source)
	if err != nil {
		return nil, err
	}
	return &Tree{t: tree, source: source}, nil
}

func (p *Parser) ParseFile(source []byte, path string) (lang.Tree, []lang.Diagnostic, error) {
	tree, err := p.Parse(source, nil)
	if err != nil {
		return nil, nil, err
	}
	var diags []lang.Diagnostic
	collectErrors(tree.Root(), &diags)
	return tree, diags, nil
}

func collectErrors(n lang.Node, diags *[]lang.Diagnostic) {
	if n == nil {
		return
	}
	if n.Kind() == "ERROR" {
		*diags = append(*diags, lang.Diagnostic{Message: "syntax error near " + n.Text()})
	}
	for i := 0; i < n.ChildCount(); i++ {
		collectErrors(n.Child(i), diags)
	}
}
