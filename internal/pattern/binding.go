// Package pattern holds the value-level types of the engine: Binding,
// ResolvedPattern, VariableContent, and the Pattern/Predicate IR sum types
// (spec §3, §4.3). It depends on internal/lang for the Node/Language
// contracts but not on internal/state or internal/matcher, keeping the
// dependency order from spec §2 (Language abstraction → Pattern IR/values).
package pattern

import (
	"fmt"

	"github.com/oxhq/gritql/internal/lang"
)

// BindingKind tags which of the six Binding variants a value holds (spec
// §3 "Binding").
type BindingKind int

const (
	BindNode BindingKind = iota
	BindList
	BindEmpty
	BindString
	BindFilename
	BindConstant
)

// Constant is the primitive payload of a BindConstant binding.
type Constant struct {
	Bool      *bool
	Int       *int64
	Float     *float64
	Str       *string
	Undefined bool
}

func (c Constant) String() string {
	switch {
	case c.Undefined:
		return "undefined"
	case c.Bool != nil:
		return fmt.Sprintf("%v", *c.Bool)
	case c.Int != nil:
		return fmt.Sprintf("%d", *c.Int)
	case c.Float != nil:
		return fmt.Sprintf("%g", *c.Float)
	case c.Str != nil:
		return *c.Str
	default:
		return ""
	}
}

// Binding is what a metavariable may bind to (spec §3). Exactly one of
// its payload fields is populated, selected by Kind. A Binding always
// references a live source buffer; a nil Source is only valid for
// BindConstant.
type Binding struct {
	Kind BindingKind

	// BindNode
	Node lang.Node

	// BindList: the ordered multi-children under (Parent, Field).
	ListParent lang.Node
	ListField  string
	ListItems  []lang.Node

	// BindEmpty: a legal empty slot where text may be inserted.
	EmptyParent lang.Node
	EmptyField  string

	// BindString: a byte sub-range inside Source, not itself an AST node
	// (e.g. a comment's trimmed content).
	Source     []byte
	StringFile string
	Start, End int

	// BindFilename
	Filename string

	// BindConstant
	Const Constant
}

// NodeBinding wraps a single AST node.
func NodeBinding(n lang.Node) Binding {
	return Binding{Kind: BindNode, Node: n}
}

// ListBinding wraps the ordered children of (parent, field).
func ListBinding(parent lang.Node, field string, items []lang.Node) Binding {
	return Binding{Kind: BindList, ListParent: parent, ListField: field, ListItems: items}
}

// EmptyBinding marks a legal empty slot.
func EmptyBinding(parent lang.Node, field string) Binding {
	return Binding{Kind: BindEmpty, EmptyParent: parent, EmptyField: field}
}

// StringBinding wraps a byte sub-range of a source buffer.
func StringBinding(file string, source []byte, start, end int) Binding {
	return Binding{Kind: BindString, StringFile: file, Source: source, Start: start, End: end}
}

// FilenameBinding wraps a path value.
func FilenameBinding(path string) Binding {
	return Binding{Kind: BindFilename, Filename: path}
}

// ConstantBinding wraps a primitive.
func ConstantBinding(c Constant) Binding {
	return Binding{Kind: BindConstant, Const: c}
}

// Range returns the byte range this binding occupies in its source buffer,
// and false if the binding has no range (BindEmpty, BindFilename,
// BindConstant, or an empty list).
func (b Binding) Range() (start, end int, ok bool) {
	switch b.Kind {
	case BindNode:
		return b.Node.StartByte(), b.Node.EndByte(), true
	case BindList:
		if len(b.ListItems) == 0 {
			return 0, 0, false
		}
		return b.ListItems[0].StartByte(), b.ListItems[len(b.ListItems)-1].EndByte(), true
	case BindEmpty:
		// A legal empty slot is a zero-width point. Its position is
		// derived by the caller from EmptyParent/EmptyField since there is
		// no single authoritative node to ask.
		return 0, 0, false
	case BindString:
		return b.Start, b.End, true
	default:
		return 0, 0, false
	}
}

// SourceBuffer returns the buffer this binding's range is relative to.
func (b Binding) SourceBuffer() []byte {
	switch b.Kind {
	case BindNode:
		return b.Node.Source()
	case BindList:
		if len(b.ListItems) > 0 {
			return b.ListItems[0].Source()
		}
		if b.ListParent != nil {
			return b.ListParent.Source()
		}
		return nil
	case BindEmpty:
		if b.EmptyParent != nil {
			return b.EmptyParent.Source()
		}
		return nil
	case BindString:
		return b.Source
	default:
		return nil
	}
}

// Text renders the binding's current text: the path for BindFilename, the
// constant's String form for BindConstant, and "" for BindEmpty.
func (b Binding) Text() string {
	switch b.Kind {
	case BindNode:
		return b.Node.Text()
	case BindList:
		buf := b.SourceBuffer()
		start, end, ok := b.Range()
		if !ok || buf == nil {
			return ""
		}
		return string(buf[start:end])
	case BindEmpty:
		return ""
	case BindString:
		return string(b.Source[b.Start:b.End])
	case BindFilename:
		return b.Filename
	case BindConstant:
		return b.Const.String()
	default:
		return ""
	}
}

// IsEquivalentTo implements the leaf/structural equality spec §4.3
// "Variable" relies on: textual equality after language normalization for
// leaf tokens; for other nodes, the same source range, or else the same
// kind and the same text.
func (b Binding) IsEquivalentTo(other Binding, l lang.Language) bool {
	if b.Kind != other.Kind {
		return b.Text() == other.Text()
	}
	switch b.Kind {
	case BindNode:
		if b.Node.Source() != nil && other.Node.Source() != nil &&
			string(b.Node.Source()) == string(other.Node.Source()) &&
			b.Node.StartByte() == other.Node.StartByte() &&
			b.Node.EndByte() == other.Node.EndByte() {
			return true
		}
		if b.Node.NamedChildCount() == 0 && other.Node.NamedChildCount() == 0 {
			return l.IsEquivalent(b.Node.Text(), other.Node.Text())
		}
		return b.Node.Kind() == other.Node.Kind() && b.Node.Text() == other.Node.Text()
	case BindConstant:
		return b.Const.String() == other.Const.String()
	default:
		return l.IsEquivalent(b.Text(), other.Text())
	}
}
