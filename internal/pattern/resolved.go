package pattern

import "strings"

// ResolvedKind tags which ResolvedPattern variant a value holds (spec §3
// "ResolvedPattern").
type ResolvedKind int

const (
	ResolvedBindingChain ResolvedKind = iota
	ResolvedSnippet
	ResolvedList
	ResolvedMap
	ResolvedFile
	ResolvedFiles
	ResolvedConstant
)

// SnippetPieceKind tags a single piece of a Snippet ResolvedPattern.
type SnippetPieceKind int

const (
	PieceLiteral SnippetPieceKind = iota
	PieceBuiltinCall
	PieceBindingRef
)

// SnippetPiece is one element of an ordered Snippet: literal text, a lazy
// built-in invocation (resolved only when the snippet's Text is asked
// for), or a reference to another binding whose text is spliced in.
type SnippetPiece struct {
	Kind    SnippetPieceKind
	Literal string

	// PieceBuiltinCall
	BuiltinName string
	BuiltinArgs []*ResolvedPattern

	// PieceBindingRef
	Ref *ResolvedPattern
}

// FileValue is the ResolvedFile payload: a single logical file as a value,
// used when a pattern's right-hand side constructs or refers to a file.
type FileValue struct {
	Name    string
	Content *ResolvedPattern
}

// ResolvedPattern is a run-time value produced during matching (spec §3).
// Exactly one of its variant-specific fields is meaningful, selected by
// Kind. Every variant must be textualizable: repeated calls to Text with
// the same state yield the same string.
type ResolvedPattern struct {
	Kind ResolvedKind

	// ResolvedBindingChain: history of bindings assigned to a variable,
	// newest last. Text() uses the last entry.
	Chain []Binding

	// ResolvedSnippet
	Pieces []SnippetPiece

	// ResolvedList / ResolvedMap preserve insertion order.
	List []*ResolvedPattern
	Map  *OrderedMap

	// ResolvedFile / ResolvedFiles
	File  *FileValue
	Files []*FileValue

	// ResolvedConstant
	Const Constant
}

// BuiltinEvaluator resolves a lazy built-in invocation embedded in a
// snippet piece into text. Implemented by internal/builtin, injected here
// to avoid a dependency cycle (pattern is below builtin in the dependency
// order, per spec §2).
type BuiltinEvaluator interface {
	EvalText(name string, args []*ResolvedPattern) (string, error)
}

// FromBinding wraps a single binding as a one-entry chain.
func FromBinding(b Binding) *ResolvedPattern {
	return &ResolvedPattern{Kind: ResolvedBindingChain, Chain: []Binding{b}}
}

// FromConstant wraps a primitive.
func FromConstant(c Constant) *ResolvedPattern {
	return &ResolvedPattern{Kind: ResolvedConstant, Const: c}
}

// FromList wraps a slice of values, in order.
func FromList(items []*ResolvedPattern) *ResolvedPattern {
	return &ResolvedPattern{Kind: ResolvedList, List: items}
}

// CurrentBinding returns the most recent binding in a BindingChain, or
// false if this value is not a binding chain or has no entries yet.
func (r *ResolvedPattern) CurrentBinding() (Binding, bool) {
	if r == nil || r.Kind != ResolvedBindingChain || len(r.Chain) == 0 {
		return Binding{}, false
	}
	return r.Chain[len(r.Chain)-1], true
}

// PushBinding appends a new binding to a BindingChain's history, preserving
// every prior assignment for later diff/rewrite (spec §3 VariableContent
// "value_history retains every assignment").
func (r *ResolvedPattern) PushBinding(b Binding) *ResolvedPattern {
	chain := append(append([]Binding{}, r.Chain...), b)
	return &ResolvedPattern{Kind: ResolvedBindingChain, Chain: chain}
}

// Text renders a ResolvedPattern's current textual form. eval resolves any
// lazy built-in invocation nested in a Snippet; pass nil only when the
// value is known not to contain one.
func (r *ResolvedPattern) Text(eval BuiltinEvaluator) (string, error) {
	if r == nil {
		return "", nil
	}
	switch r.Kind {
	case ResolvedBindingChain:
		b, ok := r.CurrentBinding()
		if !ok {
			return "", nil
		}
		return b.Text(), nil
	case ResolvedConstant:
		return r.Const.String(), nil
	case ResolvedList:
		parts := make([]string, len(r.List))
		for i, item := range r.List {
			s, err := item.Text(eval)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ", "), nil
	case ResolvedSnippet:
		var sb strings.Builder
		for _, p := range r.Pieces {
			switch p.Kind {
			case PieceLiteral:
				sb.WriteString(p.Literal)
			case PieceBindingRef:
				s, err := p.Ref.Text(eval)
				if err != nil {
					return "", err
				}
				sb.WriteString(s)
			case PieceBuiltinCall:
				if eval == nil {
					return "", errNoBuiltinEvaluator
				}
				s, err := eval.EvalText(p.BuiltinName, p.BuiltinArgs)
				if err != nil {
					return "", err
				}
				sb.WriteString(s)
			}
		}
		return sb.String(), nil
	case ResolvedFile:
		if r.File != nil && r.File.Content != nil {
			return r.File.Content.Text(eval)
		}
		return "", nil
	case ResolvedMap:
		if r.Map == nil {
			return "{}", nil
		}
		var sb strings.Builder
		sb.WriteString("{")
		for i, k := range r.Map.Keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			v, _ := r.Map.Values[k].Text(eval)
			sb.WriteString(k + ": " + v)
		}
		sb.WriteString("}")
		return sb.String(), nil
	default:
		return "", nil
	}
}

// OrderedMap is an insertion-ordered string-keyed map (spec §3 "Map
// preserve insertion order").
type OrderedMap struct {
	Keys   []string
	Values map[string]*ResolvedPattern
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{Values: make(map[string]*ResolvedPattern)}
}

func (m *OrderedMap) Set(key string, v *ResolvedPattern) {
	if _, exists := m.Values[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = v
}

func (m *OrderedMap) Get(key string) (*ResolvedPattern, bool) {
	v, ok := m.Values[key]
	return v, ok
}

var errNoBuiltinEvaluator = &textError{"snippet contains a lazy built-in call but no evaluator was supplied"}

type textError struct{ msg string }

func (e *textError) Error() string { return e.msg }
