package matcher

import (
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// executeAstNode matches n.Kind against current's node kind, then matches
// each FieldPattern against the corresponding child (spec §4.3 "AstNode").
// A field whose grammar slot is legally empty binds a BindEmpty value so a
// later Rewrite/Accumulate can still target an insertion point there.
func executeAstNode(ctx *Context, n pattern.AstNode, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	node, ok := asNode(current)
	if !ok || node.Kind() != n.Kind {
		return false, nil
	}
	for _, fp := range n.Fields {
		child := node.ChildByFieldName(fp.Field)
		var fieldValue *pattern.ResolvedPattern
		if child == nil {
			fieldValue = pattern.FromBinding(pattern.EmptyBinding(node, fp.Field))
		} else {
			fieldValue = fromNode(child)
		}
		ok, err := Execute(ctx, fp.Value, fieldValue, st)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// executeAstLeafNode matches a leaf token's kind and normalized text.
func executeAstLeafNode(ctx *Context, n pattern.AstLeafNode, current *pattern.ResolvedPattern) (bool, error) {
	node, ok := asNode(current)
	if !ok || node.Kind() != n.Kind {
		return false, nil
	}
	norm := ctx.Lang.Normalize(node.Kind(), node.Text())
	want := ctx.Lang.Normalize(n.Kind, n.Text)
	return norm == want, nil
}

// executeList matches an ordered list value against patterns that may
// include Dots elements, which consume zero or more items non-greedily
// via backtracking (spec §4.3 "List").
func executeList(ctx *Context, n pattern.List, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	items, ok := asListItems(current)
	if !ok {
		return false, nil
	}
	return matchListPatterns(ctx, n.Patterns, items, st)
}

func matchListPatterns(ctx *Context, pats []pattern.Pattern, items []*pattern.ResolvedPattern, st *state.State) (bool, error) {
	if len(pats) == 0 {
		return len(items) == 0, nil
	}
	head := pats[0]
	if _, isDots := head.(pattern.Dots); isDots {
		// Try consuming 0..len(items) elements, shortest first, and
		// backtrack if the remainder doesn't match (spec §4.3 "Dots ...
		// backtracking").
		for consume := 0; consume <= len(items); consume++ {
			snap := st.Snapshot()
			ok, err := matchListPatterns(ctx, pats[1:], items[consume:], st)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			st.Restore(snap)
		}
		return false, nil
	}
	if len(items) == 0 {
		return false, nil
	}
	ok, err := Execute(ctx, head, items[0], st)
	if err != nil || !ok {
		return false, err
	}
	return matchListPatterns(ctx, pats[1:], items[1:], st)
}

// executeListIndex matches n.List against current and succeeds if current
// is a list with an element at n.Index; that element is not matched
// against anything.
func executeListIndex(ctx *Context, n pattern.ListIndex, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	ok, err := Execute(ctx, n.List, current, st)
	if err != nil || !ok {
		return false, err
	}
	items, ok := asListItems(current)
	if !ok || n.Index < 0 || n.Index >= len(items) {
		return false, nil
	}
	return true, nil
}

// executeMap matches a ResolvedMap value entry by entry; every declared
// entry must be present and match.
func executeMap(ctx *Context, n pattern.Map, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	if current == nil || current.Kind != pattern.ResolvedMap || current.Map == nil {
		return false, nil
	}
	for _, entry := range n.Entries {
		v, ok := current.Map.Get(entry.Key)
		if !ok {
			return false, nil
		}
		ok, err := Execute(ctx, entry.Value, v, st)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// executeAccessor projects Field out of Container's resolved value, then
// matches Value against the projection (spec §4.2 "container.field").
func executeAccessor(ctx *Context, n pattern.Accessor, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	ok, err := Execute(ctx, n.Container, current, st)
	if err != nil || !ok {
		return false, err
	}
	projected, ok := projectField(current, n.Field)
	if !ok {
		return false, nil
	}
	return Execute(ctx, n.Value, projected, st)
}

func projectField(v *pattern.ResolvedPattern, field string) (*pattern.ResolvedPattern, bool) {
	if v == nil {
		return nil, false
	}
	if v.Kind == pattern.ResolvedMap && v.Map != nil {
		return v.Map.Get(field)
	}
	node, ok := asNode(v)
	if !ok {
		return nil, false
	}
	child := node.ChildByFieldName(field)
	if child == nil {
		return nil, false
	}
	return fromNode(child), true
}
