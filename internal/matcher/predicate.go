package matcher

import (
	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// EvaluatePredicate is the Predicate IR's evaluator (spec §3 "Predicate
// IR"). Unlike Execute, a Predicate never itself schedules a Rewrite of
// the value it was handed; And/Or/Any/Not/Maybe still snapshot/restore
// exactly like their Pattern counterparts, since an Equal/Match/Assignment
// nested inside can still bind variables or log effects.
func EvaluatePredicate(ctx *Context, p pattern.Predicate, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	if err := ctx.poll(); err != nil {
		return false, err
	}

	switch n := p.(type) {
	case pattern.True:
		return true, nil
	case pattern.False:
		return false, nil
	case pattern.Return:
		return n.Value, nil
	case pattern.PredAnd:
		for _, sub := range n.Predicates {
			ok, err := EvaluatePredicate(ctx, sub, current, st)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case pattern.PredOr, pattern.PredAny:
		var preds []pattern.Predicate
		if po, ok := n.(pattern.PredOr); ok {
			preds = po.Predicates
		} else {
			preds = n.(pattern.PredAny).Predicates
		}
		for _, sub := range preds {
			snap := st.Snapshot()
			ok, err := EvaluatePredicate(ctx, sub, current, st)
			if err != nil && !core.IsRecoverable(err) {
				return false, err
			}
			if ok {
				return true, nil
			}
			st.Restore(snap)
		}
		return false, nil
	case pattern.PredNot:
		snap := st.Snapshot()
		ok, err := EvaluatePredicate(ctx, n.Predicate, current, st)
		st.Restore(snap)
		if err != nil && !core.IsRecoverable(err) {
			return false, err
		}
		return !ok, nil
	case pattern.PredMaybe:
		snap := st.Snapshot()
		ok, err := EvaluatePredicate(ctx, n.Predicate, current, st)
		if err != nil && !core.IsRecoverable(err) {
			return false, err
		}
		if !ok {
			st.Restore(snap)
		}
		return true, nil
	case pattern.PredIf:
		cond, err := EvaluatePredicate(ctx, n.Cond, current, st)
		if err != nil {
			return false, err
		}
		if cond {
			return EvaluatePredicate(ctx, n.Then, current, st)
		}
		if n.Else != nil {
			return EvaluatePredicate(ctx, n.Else, current, st)
		}
		return false, nil
	case pattern.Match:
		value, err := evalRHS(ctx, n.Value, current, st)
		if err != nil {
			return false, err
		}
		return Execute(ctx, n.Pattern, value, st)
	case pattern.Equal:
		left, err := evalRHS(ctx, n.Left, current, st)
		if err != nil {
			return false, err
		}
		right, err := evalRHS(ctx, n.Right, current, st)
		if err != nil {
			return false, err
		}
		return resolvedEquivalent(ctx, left, right), nil
	case pattern.PredAssignment:
		value, err := evalRHS(ctx, n.Value, current, st)
		if err != nil {
			return false, err
		}
		st.Assign(n.Var, value)
		return true, nil
	case pattern.PredAccumulate:
		return accumulateInto(ctx, n.List, n.Value, current, st)
	case pattern.PredRewrite:
		return scheduleRewrite(ctx, n.Left, n.Right, current, st)
	case pattern.PredLog:
		ctx.Log.Infof("", 0, "%s", n.Message)
		return true, nil
	case pattern.PredCall:
		return invokeDefinition(ctx, n.Def, n.Args, current, st)
	default:
		return false, core.New(core.KindInvariant, "malformed IR: unhandled predicate variant")
	}
}

// resolvedEquivalent compares two resolved values with Binding.IsEquivalentTo
// when both are binding chains, and falls back to textual comparison
// otherwise (spec §4.3 "Equal ... per Binding.IsEquivalentTo").
func resolvedEquivalent(ctx *Context, a, b *pattern.ResolvedPattern) bool {
	ab, aok := a.CurrentBinding()
	bb, bok := b.CurrentBinding()
	if aok && bok {
		return ab.IsEquivalentTo(bb, ctx.Lang)
	}
	at, _ := a.Text(ctx.Builtins)
	bt, _ := b.Text(ctx.Builtins)
	return ctx.Lang.IsEquivalent(at, bt)
}
