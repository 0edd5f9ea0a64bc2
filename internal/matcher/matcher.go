package matcher

import (
	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// Execute is the matcher's single entry point (spec §4.3): given a Pattern
// IR node, the current ResolvedPattern, and a mutable State, it returns
// matched/not-matched. Bindings and Effects produced by a failing attempt
// must not leak out; And/Or/Any/Not/Maybe/Where snapshot and restore
// around each sub-attempt themselves. A caller driving a top-level
// pattern across many candidate nodes is responsible for snapshotting
// around each candidate the same way.
func Execute(ctx *Context, p pattern.Pattern, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	if err := ctx.poll(); err != nil {
		return false, err
	}

	switch n := p.(type) {

	// ---- constants ----
	case pattern.Top:
		return true, nil
	case pattern.Underscore:
		return true, nil
	case pattern.Bottom:
		return false, nil
	case pattern.UndefinedPattern:
		b, ok := current.CurrentBinding()
		return ok && b.Kind == pattern.BindConstant && b.Const.Undefined, nil
	case pattern.IntConstant:
		return matchConstantInt(current, n.Value), nil
	case pattern.FloatConstant:
		return matchConstantFloat(current, n.Value), nil
	case pattern.BoolConstant:
		return matchConstantBool(current, n.Value), nil
	case pattern.StringConstant:
		return matchStringConstant(ctx, current, n.Value), nil

	// ---- structural ----
	case pattern.AstNode:
		return executeAstNode(ctx, n, current, st)
	case pattern.AstLeafNode:
		return executeAstLeafNode(ctx, n, current)
	case pattern.List:
		return executeList(ctx, n, current, st)
	case pattern.ListIndex:
		return executeListIndex(ctx, n, current, st)
	case pattern.Map:
		return executeMap(ctx, n, current, st)
	case pattern.Accessor:
		return executeAccessor(ctx, n, current, st)
	case pattern.Range:
		return executeRange(n, current)

	// ---- logical ----
	case pattern.And:
		return executeAnd(ctx, n.Patterns, current, st)
	case pattern.Or:
		return executeOr(ctx, n.Patterns, current, st)
	case pattern.Any:
		return executeOr(ctx, n.Patterns, current, st) // Any is Or under a name the compiler picks by source syntax
	case pattern.Not:
		snap := st.Snapshot()
		ok, err := Execute(ctx, n.Pattern, current, st)
		st.Restore(snap)
		if err != nil && !core.IsRecoverable(err) {
			return false, err
		}
		return !ok, nil
	case pattern.Maybe:
		snap := st.Snapshot()
		ok, err := Execute(ctx, n.Pattern, current, st)
		if err != nil && !core.IsRecoverable(err) {
			return false, err
		}
		if !ok {
			st.Restore(snap)
		}
		return true, nil
	case pattern.If:
		cond, err := EvaluatePredicate(ctx, n.Cond, current, st)
		if err != nil {
			return false, err
		}
		if cond {
			return Execute(ctx, n.Then, current, st)
		}
		if n.Else != nil {
			return Execute(ctx, n.Else, current, st)
		}
		return false, nil
	case pattern.Where:
		snap := st.Snapshot()
		ok, err := Execute(ctx, n.Pattern, current, st)
		if err != nil {
			return false, err
		}
		if !ok {
			st.Restore(snap)
			return false, nil
		}
		condOK, err := EvaluatePredicate(ctx, n.Cond, current, st)
		if err != nil {
			return false, err
		}
		if !condOK {
			st.Restore(snap)
			return false, nil
		}
		return true, nil

	// ---- locational ----
	case pattern.Contains:
		return executeContains(ctx, n, current, st)
	case pattern.Includes:
		return executeIncludes(ctx, n, current, st)
	case pattern.Within:
		return executeWithin(ctx, n, current, st)
	case pattern.Before:
		return executeBefore(ctx, n, current, st)
	case pattern.After:
		return executeAfter(ctx, n, current, st)
	case pattern.Every:
		return executeEvery(ctx, n, current, st)
	case pattern.Some:
		return executeSome(ctx, n, current, st)
	case pattern.Dots:
		// Reaching here means Dots matched standalone rather than as a
		// direct element of a List's Patterns (spec §8 "Dots at start and
		// end of a list matches any sublist"); treat it as a no-op match.
		return true, nil
	case pattern.Sequential:
		return executeSequential(ctx, n, current, st)

	// ---- textual ----
	case pattern.CodeSnippet:
		return executeCodeSnippet(ctx, n, current, st)
	case pattern.Regex:
		return executeRegex(ctx, n, current, st)
	case pattern.Like:
		return executeLike(ctx, n, current, st)

	// ---- variable / flow ----
	case pattern.Variable:
		return executeVariable(ctx, n, current, st)
	case pattern.Assignment:
		ok, err := Execute(ctx, n.Value, current, st)
		if err != nil || !ok {
			return false, err
		}
		st.Assign(n.Var, current)
		return true, nil
	case pattern.Accumulate:
		return executeAccumulate(ctx, n, current, st)
	case pattern.Rewrite:
		return executeRewrite(ctx, n, current, st)
	case pattern.Log:
		ctx.Log.Infof("", 0, "%s", n.Message)
		return true, nil
	case *pattern.Limit:
		return executeLimit(ctx, n, current, st)
	case pattern.Bubble:
		return executeBubble(ctx, n, current, st)
	case pattern.Call:
		return executeCall(ctx, n, current, st)
	case pattern.CallBuiltIn:
		return executeCallBuiltIn(ctx, n, current, st)
	case pattern.CallFunction, pattern.CallForeignFunction:
		// Foreign/DSL function calls only produce a value; used positionally
		// as a Pattern they are a no-op success (their result is consumed
		// through Assignment/Rewrite's RHS evaluation instead).
		return true, nil
	case pattern.CallbackPattern:
		return n.Fn(current)

	// ---- file-level ----
	case pattern.File:
		return executeFile(ctx, n, current, st)
	case pattern.Files:
		return executeFiles(ctx, n, current, st)

	default:
		return false, core.New(core.KindInvariant, "malformed IR: unhandled pattern variant")
	}
}

func matchConstantInt(v *pattern.ResolvedPattern, want int64) bool {
	b, ok := v.CurrentBinding()
	return ok && b.Kind == pattern.BindConstant && b.Const.Int != nil && *b.Const.Int == want
}

func matchConstantFloat(v *pattern.ResolvedPattern, want float64) bool {
	b, ok := v.CurrentBinding()
	return ok && b.Kind == pattern.BindConstant && b.Const.Float != nil && *b.Const.Float == want
}

func matchConstantBool(v *pattern.ResolvedPattern, want bool) bool {
	b, ok := v.CurrentBinding()
	return ok && b.Kind == pattern.BindConstant && b.Const.Bool != nil && *b.Const.Bool == want
}

func matchStringConstant(ctx *Context, v *pattern.ResolvedPattern, want string) bool {
	text, _ := v.Text(ctx.Builtins)
	return ctx.Lang.IsEquivalent(text, want)
}

func executeAnd(ctx *Context, pats []pattern.Pattern, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	snap := st.Snapshot()
	for _, sub := range pats {
		ok, err := Execute(ctx, sub, current, st)
		if err != nil || !ok {
			st.Restore(snap)
			return false, err
		}
	}
	return true, nil
}

func executeOr(ctx *Context, pats []pattern.Pattern, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	for _, sub := range pats {
		snap := st.Snapshot()
		ok, err := Execute(ctx, sub, current, st)
		if err != nil && !core.IsRecoverable(err) {
			return false, err
		}
		if ok {
			return true, nil
		}
		st.Restore(snap)
	}
	return false, nil
}

func executeRange(r pattern.Range, current *pattern.ResolvedPattern) (bool, error) {
	n, ok := asNode(current)
	if !ok {
		return false, nil
	}
	return n.StartByte() >= r.StartByte && n.EndByte() <= r.EndByte, nil
}

func executeSequential(ctx *Context, n pattern.Sequential, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	result := true
	for _, sub := range n.Patterns {
		ok, err := Execute(ctx, sub, current, st)
		if err != nil {
			return false, err
		}
		result = result && ok
	}
	return result, nil
}
