package matcher

import (
	"strings"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// executeContains walks the current node's descendants in document order,
// succeeding on the first that matches Pattern; Until stops descent into
// subtrees it matches (spec §4.3 "Contains ... worklist traversal").
func executeContains(ctx *Context, n pattern.Contains, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	node, ok := asNode(current)
	if !ok {
		return false, nil
	}
	var until func(lang.Node) bool
	if n.Until != nil {
		until = func(cand lang.Node) bool {
			snap := st.Snapshot()
			ok, err := Execute(ctx, n.Until, fromNode(cand), st)
			st.Restore(snap)
			return err == nil && ok
		}
	}
	ctx.pushLimitScope()
	defer ctx.popLimitScope()

	var matchErr error
	var matched bool
	worklist(node, until, func(cand lang.Node) bool {
		snap := st.Snapshot()
		ok, err := Execute(ctx, n.Pattern, fromNode(cand), st)
		if err != nil {
			st.Restore(snap)
			matchErr = err
			return true // stop walking on hard error
		}
		if ok {
			matched = true
			return true
		}
		st.Restore(snap)
		return false
	})
	return matched, matchErr
}

// executeIncludes is Contains' textual sibling: when Pattern is a
// StringConstant, the current value's text must contain it as a substring;
// any other Pattern is matched against the current value itself.
func executeIncludes(ctx *Context, n pattern.Includes, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	text, err := current.Text(ctx.Builtins)
	if err != nil {
		return false, err
	}
	if sc, ok := n.Pattern.(pattern.StringConstant); ok {
		return strings.Contains(text, sc.Value), nil
	}
	// Fall back to matching Pattern against the current value itself so
	// ordinary structural patterns can still be used inside `includes`.
	ok, err := Execute(ctx, n.Pattern, current, st)
	return ok, err
}

// executeWithin requires an ancestor of the current node to match Pattern.
func executeWithin(ctx *Context, n pattern.Within, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	node, ok := asNode(current)
	if !ok {
		return false, nil
	}
	for anc := node.Parent(); anc != nil; anc = anc.Parent() {
		snap := st.Snapshot()
		ok, err := Execute(ctx, n.Pattern, fromNode(anc), st)
		if err != nil {
			st.Restore(snap)
			return false, err
		}
		if ok {
			return true, nil
		}
		st.Restore(snap)
	}
	return false, nil
}

// executeBefore/executeAfter require the immediately preceding/following
// named sibling to match Pattern (spec §4.3).
func executeBefore(ctx *Context, n pattern.Before, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	node, ok := asNode(current)
	if !ok {
		return false, nil
	}
	sib := precedingNamedSibling(node)
	if sib == nil {
		return false, nil
	}
	return Execute(ctx, n.Pattern, fromNode(sib), st)
}

func executeAfter(ctx *Context, n pattern.After, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	node, ok := asNode(current)
	if !ok {
		return false, nil
	}
	sib := followingNamedSibling(node)
	if sib == nil {
		return false, nil
	}
	return Execute(ctx, n.Pattern, fromNode(sib), st)
}

// executeEvery requires every element of a list value to match Pattern; an
// empty list vacuously succeeds.
func executeEvery(ctx *Context, n pattern.Every, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	items, ok := asListItems(current)
	if !ok {
		return false, nil
	}
	for _, item := range items {
		ok, err := Execute(ctx, n.Pattern, item, st)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// executeSome requires at least one element of a list value to match
// Pattern.
func executeSome(ctx *Context, n pattern.Some, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	items, ok := asListItems(current)
	if !ok {
		return false, nil
	}
	for _, item := range items {
		snap := st.Snapshot()
		ok, err := Execute(ctx, n.Pattern, item, st)
		if err != nil {
			st.Restore(snap)
			return false, err
		}
		if ok {
			return true, nil
		}
		st.Restore(snap)
	}
	return false, nil
}
