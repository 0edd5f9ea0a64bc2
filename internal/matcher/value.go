package matcher

import (
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
)

// asNode returns the AST node a resolved value is currently bound to, if
// it is a single-node binding.
func asNode(v *pattern.ResolvedPattern) (lang.Node, bool) {
	if v == nil {
		return nil, false
	}
	b, ok := v.CurrentBinding()
	if !ok || b.Kind != pattern.BindNode {
		return nil, false
	}
	return b.Node, true
}

// asListItems materializes a list value's elements lazily from an
// underlying AST list binding into one ResolvedPattern per element (spec
// §4.3 "the matcher operates on ResolvedPattern lists which it
// materializes lazily from the underlying AST list binding").
func asListItems(v *pattern.ResolvedPattern) ([]*pattern.ResolvedPattern, bool) {
	if v == nil {
		return nil, false
	}
	if v.Kind == pattern.ResolvedList {
		return v.List, true
	}
	b, ok := v.CurrentBinding()
	if !ok {
		return nil, false
	}
	switch b.Kind {
	case pattern.BindList:
		items := make([]*pattern.ResolvedPattern, len(b.ListItems))
		for i, n := range b.ListItems {
			items[i] = pattern.FromBinding(pattern.NodeBinding(n))
		}
		return items, true
	case pattern.BindEmpty:
		return nil, true
	default:
		return nil, false
	}
}

// fromNode wraps a single AST node as a resolved binding-chain value.
func fromNode(n lang.Node) *pattern.ResolvedPattern {
	return pattern.FromBinding(pattern.NodeBinding(n))
}

// innermostBinding finds the binding a Rewrite/Accumulate effect should
// target: the current value's own binding if it has one, else nothing
// (callers must already have matched a Pattern that left a bound value).
func innermostBinding(v *pattern.ResolvedPattern) (pattern.Binding, bool) {
	if v == nil {
		return pattern.Binding{}, false
	}
	return v.CurrentBinding()
}

// namedChildren returns a node's named children in order.
func namedChildren(n lang.Node) []lang.Node {
	out := make([]lang.Node, 0, n.NamedChildCount())
	for i := 0; i < n.NamedChildCount(); i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// precedingNamedSibling/followingNamedSibling implement the document-order
// sibling lookup Before/After need (spec §4.3).
func precedingNamedSibling(n lang.Node) lang.Node {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	siblings := namedChildren(parent)
	for i, s := range siblings {
		if sameNode(s, n) && i > 0 {
			return siblings[i-1]
		}
	}
	return nil
}

func followingNamedSibling(n lang.Node) lang.Node {
	parent := n.Parent()
	if parent == nil {
		return nil
	}
	siblings := namedChildren(parent)
	for i, s := range siblings {
		if sameNode(s, n) && i+1 < len(siblings) {
			return siblings[i+1]
		}
	}
	return nil
}

func sameNode(a, b lang.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Kind() == b.Kind()
}

// worklist performs the document-order descendant traversal Contains needs
// (spec §4.3 "Descent in Contains uses a worklist traversal"), skipping
// subtrees rooted at a node matching `until` when until is non-nil.
func worklist(root lang.Node, until func(lang.Node) bool, visit func(lang.Node) bool) bool {
	var walk func(n lang.Node) bool
	walk = func(n lang.Node) bool {
		if until != nil && until(n) {
			return false
		}
		if visit(n) {
			return true
		}
		for i := 0; i < n.NamedChildCount(); i++ {
			if walk(n.NamedChild(i)) {
				return true
			}
		}
		return false
	}
	for i := 0; i < root.NamedChildCount(); i++ {
		if walk(root.NamedChild(i)) {
			return true
		}
	}
	return false
}
