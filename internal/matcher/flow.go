package matcher

import (
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// executeVariable implements spec §4.3 "Variable": an unbound slot binds to
// current and succeeds; a bound slot requires current to be equivalent to
// the slot's current value.
func executeVariable(ctx *Context, n pattern.Variable, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	ref := st.TraceVar(n.Ref)
	vc := st.Var(ref)
	if !vc.Bound() {
		st.Assign(ref, current)
		return true, nil
	}
	return resolvedEquivalent(ctx, vc.CurrentValue, current), nil
}

// evalRHS evaluates a Pattern used positionally as an RHS (Rewrite.Right,
// Accumulate/Assignment's Value, predicate Match/Equal operands) into a
// concrete ResolvedPattern, as opposed to matching it against a value
// (spec §3 "RHS is evaluated to a ResolvedPattern rather than matched").
func evalRHS(ctx *Context, p pattern.Pattern, current *pattern.ResolvedPattern, st *state.State) (*pattern.ResolvedPattern, error) {
	switch n := p.(type) {
	case pattern.StringConstant:
		s := n.Value
		return pattern.FromConstant(pattern.Constant{Str: &s}), nil
	case pattern.IntConstant:
		v := n.Value
		return pattern.FromConstant(pattern.Constant{Int: &v}), nil
	case pattern.FloatConstant:
		v := n.Value
		return pattern.FromConstant(pattern.Constant{Float: &v}), nil
	case pattern.BoolConstant:
		v := n.Value
		return pattern.FromConstant(pattern.Constant{Bool: &v}), nil
	case pattern.UndefinedPattern:
		return pattern.FromConstant(pattern.Constant{Undefined: true}), nil
	case pattern.Variable:
		ref := st.TraceVar(n.Ref)
		vc := st.Var(ref)
		if !vc.Bound() {
			return pattern.FromConstant(pattern.Constant{Undefined: true}), nil
		}
		return vc.CurrentValue, nil
	case pattern.CodeSnippet:
		return pattern.FromConstant(pattern.Constant{Str: &n.Raw}), nil
	case pattern.Dynamic:
		return evalDynamic(ctx, n, current, st)
	case pattern.CallBuiltIn:
		return evalCallBuiltIn(ctx, n, current, st)
	case pattern.CallFunction:
		return evalForeignCall(ctx, n.Def, n.Args, current, st)
	case pattern.CallForeignFunction:
		return evalForeignCall(ctx, n.Def, n.Args, current, st)
	case pattern.List:
		items := make([]*pattern.ResolvedPattern, 0, len(n.Patterns))
		for _, sub := range n.Patterns {
			v, err := evalRHS(ctx, sub, current, st)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return pattern.FromList(items), nil
	case pattern.Accessor:
		container, err := evalRHS(ctx, n.Container, current, st)
		if err != nil {
			return nil, err
		}
		if projected, ok := projectField(container, n.Field); ok {
			return projected, nil
		}
		return pattern.FromConstant(pattern.Constant{Undefined: true}), nil
	default:
		// Any other Pattern used positionally as an RHS is matched against
		// current; a successful match's value is returned unchanged (this
		// covers Top/Underscore/And-of-constraints used as a pass-through
		// RHS).
		ok, err := Execute(ctx, p, current, st)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, core.New(core.KindRuntimeError, "right-hand side pattern did not resolve to a value")
		}
		return current, nil
	}
}

// evalDynamic evaluates a Dynamic snippet's pieces into a ResolvedSnippet
// value. A literal piece (StringConstant) becomes a PieceLiteral; a
// Variable becomes a PieceBindingRef so later mutation of the variable
// before emission is still reflected (spec §3 "Snippet"); a CallBuiltIn
// becomes a lazy PieceBuiltinCall; any other Pattern is eagerly evaluated
// and flattened to a literal.
func evalDynamic(ctx *Context, n pattern.Dynamic, current *pattern.ResolvedPattern, st *state.State) (*pattern.ResolvedPattern, error) {
	pieces := make([]pattern.SnippetPiece, 0, len(n.Pieces))
	for _, p := range n.Pieces {
		switch sub := p.(type) {
		case pattern.StringConstant:
			pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceLiteral, Literal: sub.Value})
		case pattern.Variable:
			ref := st.TraceVar(sub.Ref)
			vc := st.Var(ref)
			if !vc.Bound() {
				pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceLiteral})
				continue
			}
			pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceBindingRef, Ref: vc.CurrentValue})
		case pattern.CallBuiltIn:
			args, err := evalArgs(ctx, sub.Args, current, st)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceBuiltinCall, BuiltinName: sub.Name, BuiltinArgs: args})
		case pattern.Dynamic:
			nested, err := evalDynamic(ctx, sub, current, st)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, nested.Pieces...)
		default:
			v, err := evalRHS(ctx, p, current, st)
			if err != nil {
				return nil, err
			}
			text, err := v.Text(ctx.Builtins)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceLiteral, Literal: text})
		}
	}
	return &pattern.ResolvedPattern{Kind: pattern.ResolvedSnippet, Pieces: pieces}, nil
}

func evalArgs(ctx *Context, args []pattern.Arg, current *pattern.ResolvedPattern, st *state.State) ([]*pattern.ResolvedPattern, error) {
	out := make([]*pattern.ResolvedPattern, len(args))
	for i, a := range args {
		v, err := evalRHS(ctx, a.Value, current, st)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalCallBuiltIn(ctx *Context, n pattern.CallBuiltIn, current *pattern.ResolvedPattern, st *state.State) (*pattern.ResolvedPattern, error) {
	args, err := evalArgs(ctx, n.Args, current, st)
	if err != nil {
		return nil, err
	}
	return ctx.Builtins.Call(n.Name, args)
}

func executeCallBuiltIn(ctx *Context, n pattern.CallBuiltIn, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	v, err := evalCallBuiltIn(ctx, n, current, st)
	if err != nil {
		return false, err
	}
	_ = v
	return true, nil
}

func evalForeignCall(ctx *Context, def int, args []pattern.Arg, current *pattern.ResolvedPattern, st *state.State) (*pattern.ResolvedPattern, error) {
	if ctx.Foreign == nil {
		return nil, core.New(core.KindRuntimeError, "foreign function call with no host evaluator configured")
	}
	if def < 0 || def >= len(ctx.Defs.Functions) {
		return nil, core.New(core.KindInvariant, "malformed IR: foreign function index out of range")
	}
	fn := ctx.Defs.Functions[def]
	values, err := evalArgs(ctx, args, current, st)
	if err != nil {
		return nil, err
	}
	return builtin.CallForeign(ctx.Foreign, fn.Source, fn.ParamNames, values)
}

// executeAccumulate matches Value against current, then appends it to
// List's binding, recording an Insert effect at the list's end (spec §3
// "Accumulate").
func executeAccumulate(ctx *Context, n pattern.Accumulate, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	return accumulateInto(ctx, n.List, n.Value, current, st)
}

func accumulateInto(ctx *Context, listRef pattern.VarRef, valuePat pattern.Pattern, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	ok, err := Execute(ctx, valuePat, current, st)
	if err != nil || !ok {
		return false, err
	}
	canonical := st.TraceVar(listRef)
	vc := st.Var(canonical)
	previous := vc.CurrentValue
	var items []*pattern.ResolvedPattern
	if previous != nil && previous.Kind == pattern.ResolvedList {
		items = append(items, previous.List...)
	}
	items = append(items, current)
	st.Assign(canonical, pattern.FromList(items))

	// An Insert effect only has somewhere to anchor once the list already
	// has at least one prior element with a real binding; the very first
	// accumulate into an empty/unbound list has no source position to
	// insert after and so schedules no effect of its own (its element
	// still appears via the list's own eventual Rewrite, if any).
	if previous != nil && previous.Kind == pattern.ResolvedList && len(previous.List) > 0 {
		last := previous.List[len(previous.List)-1]
		if b, ok := innermostBinding(last); ok {
			st.PushEffect(state.Effect{
				Binding:     b,
				Replacement: current,
				Kind:        state.EffectInsert,
				File:        st.ActiveFile,
			})
		}
	}
	return true, nil
}

// executeRewrite matches Left, evaluates Right to a ResolvedPattern, and
// schedules a Rewrite effect on Left's innermost binding.
func executeRewrite(ctx *Context, n pattern.Rewrite, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	ok, err := Execute(ctx, n.Left, current, st)
	if err != nil || !ok {
		return false, err
	}
	return scheduleRewrite(ctx, n.Left, n.Right, current, st)
}

func scheduleRewrite(ctx *Context, left pattern.Pattern, right pattern.RHS, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	replacement, err := evalRHS(ctx, right, current, st)
	if err != nil {
		return false, err
	}
	b, ok := innermostBinding(current)
	if !ok {
		ctx.Log.Warnf("", 441, "rewrite attempted on a value with no binding")
		return false, nil
	}
	st.PushEffect(state.Effect{
		Binding:     b,
		Replacement: replacement,
		Kind:        state.EffectRewrite,
		File:        st.ActiveFile,
	})
	return true, nil
}

// executeLimit enforces a cap on how many times this specific IR node may
// succeed (spec §4.3 "Limit(p, N)"): across the whole run if it sits outside
// any Contains, or within just the nearest enclosing Contains traversal if
// it's nested inside one (spec §9 open question 2).
func executeLimit(ctx *Context, n *pattern.Limit, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	counts := ctx.limitScope()
	if counts[n] >= n.N {
		return false, nil
	}
	ok, err := Execute(ctx, n.Pattern, current, st)
	if err != nil || !ok {
		return false, err
	}
	counts[n]++
	return true, nil
}

// executeBubble runs Def's body in a fresh local scope frame, binding Args
// as the definition's parameters, so inner variables don't leak into the
// caller's scope (spec §3 "Bubble").
func executeBubble(ctx *Context, n pattern.Bubble, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	def := ctx.Defs.Patterns[n.Def]
	st.PushScope(def.Scope)
	defer st.PopScope(def.Scope)
	for i, argPat := range n.Args {
		if i >= len(def.Params) {
			break
		}
		v, err := evalRHS(ctx, argPat, current, st)
		if err != nil {
			return false, err
		}
		st.Assign(def.Params[i], v)
	}
	return Execute(ctx, def.Body, current, st)
}

// executeCall invokes a pattern definition by index: it pushes a fresh frame
// of the definition's scope for the duration of the call, binds positional
// Args to its parameters in that frame, and pops the frame on return.
func executeCall(ctx *Context, n pattern.Call, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	def := ctx.Defs.Patterns[n.Def]
	st.PushScope(def.Scope)
	defer st.PopScope(def.Scope)
	if err := bindCallArgs(ctx, def.Params, n.Args, current, st); err != nil {
		return false, err
	}
	return Execute(ctx, def.Body, current, st)
}

func invokeDefinition(ctx *Context, defIdx int, args []pattern.Arg, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	def := ctx.Defs.Predicates[defIdx]
	st.PushScope(def.Scope)
	defer st.PopScope(def.Scope)
	if err := bindCallArgs(ctx, def.Params, args, current, st); err != nil {
		return false, err
	}
	return EvaluatePredicate(ctx, def.PredBody, current, st)
}

func bindCallArgs(ctx *Context, params []pattern.VarRef, args []pattern.Arg, current *pattern.ResolvedPattern, st *state.State) error {
	for i, a := range args {
		if i >= len(params) {
			break
		}
		v, err := evalRHS(ctx, a.Value, current, st)
		if err != nil {
			return err
		}
		st.Assign(params[i], v)
	}
	return nil
}

// executeFile matches a ResolvedFile value: Name (if set) matches the
// file's path, Body matches its parsed root.
func executeFile(ctx *Context, n pattern.File, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	if current == nil || current.Kind != pattern.ResolvedFile || current.File == nil {
		return false, nil
	}
	if n.Name != nil {
		s := current.File.Name
		ok, err := Execute(ctx, n.Name, pattern.FromConstant(pattern.Constant{Str: &s}), st)
		if err != nil || !ok {
			return false, err
		}
	}
	if n.Body == nil {
		return true, nil
	}
	return Execute(ctx, n.Body, current.File.Content, st)
}

// executeFiles matches a ResolvedFiles value, applying Pattern to each
// file; all must match.
func executeFiles(ctx *Context, n pattern.Files, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	if current == nil || current.Kind != pattern.ResolvedFiles {
		return false, nil
	}
	for _, f := range current.Files {
		fv := &pattern.ResolvedPattern{Kind: pattern.ResolvedFile, File: f}
		ok, err := Execute(ctx, n.Pattern, fv, st)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
