package compiler

import (
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/compiler/grammar"
	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
)

// defSlot records where a name resolved during definition indexing (spec
// §4.2 stage 3): which definition table it lives in, and its index there.
type defSlot struct {
	kind  defKind
	index int
}

type defKind int

const (
	defPattern defKind = iota
	defPredicate
	defFunction
)

// lowerer holds everything body compilation (stage 5) needs for one
// definition or the top-level pattern: the target language, the built-in
// table (for recognizing builtin calls at compile time), the cross-file
// definition table, and the variable order already collected for the
// current scope.
type lowerer struct {
	lang     lang.Language
	builtins *builtin.Table
	defs     map[string]defSlot
	scope    int
	vars     *varOrder
	varLocs  map[pattern.VarRef][]pattern.ByteSpan
	file     string
}

func (lz *lowerer) resolveVar(name string) pattern.VarRef {
	if idx, ok := globalVarIndex[name]; ok {
		return pattern.VarRef{Scope: 0, Index: idx}
	}
	idx := lz.vars.add(name)
	return pattern.VarRef{Scope: lz.scope, Index: idx}
}

// noteVarLoc records one source occurrence of a variable for the
// IDE-facing variable-location table (spec §4.2 stage 4).
func (lz *lowerer) noteVarLoc(ref pattern.VarRef, pos lexer.Position) {
	span := pattern.ByteSpan{Start: pos.Offset, End: pos.Offset}
	lz.varLocs[ref] = append(lz.varLocs[ref], span)
}

// ---- pattern lowering ----

func (lz *lowerer) lowerOr(n *grammar.OrPattern) pattern.Pattern {
	if n == nil {
		return pattern.Top{}
	}
	first := lz.lowerAnd(n.Left)
	if len(n.Rest) == 0 {
		return first
	}
	pats := []pattern.Pattern{first}
	for _, r := range n.Rest {
		pats = append(pats, lz.lowerAnd(r))
	}
	return pattern.Or{Patterns: pats}
}

func (lz *lowerer) lowerAnd(n *grammar.AndPattern) pattern.Pattern {
	if n == nil {
		return pattern.Top{}
	}
	first := lz.lowerWhere(n.Left)
	if len(n.Rest) == 0 {
		return first
	}
	pats := []pattern.Pattern{first}
	for _, r := range n.Rest {
		pats = append(pats, lz.lowerWhere(r))
	}
	return pattern.And{Patterns: pats}
}

func (lz *lowerer) lowerWhere(n *grammar.WherePattern) pattern.Pattern {
	if n == nil {
		return pattern.Top{}
	}
	result := lz.lowerPrimary(n.Primary)
	if n.Cond != nil {
		result = pattern.Where{Pattern: result, Cond: lz.lowerPredOr(n.Cond)}
	}
	if n.Rewrite != nil {
		result = pattern.Rewrite{Left: result, Right: lz.lowerRHS(n.Rewrite)}
	}
	return result
}

func (lz *lowerer) lowerPrimary(n *grammar.Primary) pattern.Pattern {
	if n == nil {
		return pattern.Top{}
	}
	switch {
	case n.Not != nil:
		return pattern.Not{Pattern: lz.lowerPrimary(n.Not)}
	case n.Maybe != nil:
		return pattern.Maybe{Pattern: lz.lowerPrimary(n.Maybe)}
	case n.Contains != nil:
		c := pattern.Contains{Pattern: lz.lowerPrimary(n.Contains.Inner)}
		if n.Contains.Until != nil {
			c.Until = lz.lowerPrimary(n.Contains.Until)
		}
		return c
	case n.Within != nil:
		return pattern.Within{Pattern: lz.lowerPrimary(n.Within)}
	case n.After != nil:
		return pattern.After{Pattern: lz.lowerPrimary(n.After)}
	case n.Before != nil:
		return pattern.Before{Pattern: lz.lowerPrimary(n.Before)}
	case n.Every != nil:
		return pattern.Every{Pattern: lz.lowerPrimary(n.Every)}
	case n.Some != nil:
		return pattern.Some{Pattern: lz.lowerPrimary(n.Some)}
	case n.Limit != nil:
		return &pattern.Limit{Pattern: lz.lowerPrimary(n.Limit.Inner), N: int(n.Limit.N)}
	case n.Paren != nil:
		return lz.lowerOr(n.Paren)
	case n.List != nil:
		pats := make([]pattern.Pattern, len(n.List.Items))
		for i, item := range n.List.Items {
			pats[i] = lz.lowerOr(item)
		}
		return pattern.List{Patterns: pats}
	case n.Snippet != nil:
		return lz.compileSnippetPattern(*n.Snippet)
	case n.Str != nil:
		return pattern.StringConstant{Value: unquote(*n.Str)}
	case n.Float != nil:
		return pattern.FloatConstant{Value: *n.Float}
	case n.Int != nil:
		return pattern.IntConstant{Value: *n.Int}
	case n.Underscore:
		return pattern.Underscore{}
	case n.Dots:
		return pattern.Dots{}
	case n.Variable != nil:
		if *n.Variable == "_" {
			return pattern.Underscore{}
		}
		ref := lz.resolveVar(*n.Variable)
		lz.noteVarLoc(ref, n.Pos)
		return pattern.Variable{Ref: ref}
	case n.Call != nil:
		return lz.lowerCallAsPattern(n.Call)
	default:
		return pattern.Top{}
	}
}

// lowerCallAsPattern resolves a call site against the definition table
// built in stage 3: a pattern definition becomes a Call, a predicate
// definition wrapped in pattern position becomes If(cond, Top, Bottom), and
// an unresolved name is a compile error surfaced by the caller as a
// panic(*core.Error), recovered at the Compile entry point.
func (lz *lowerer) lowerCallAsPattern(n *grammar.CallExpr) pattern.Pattern {
	slot, ok := lz.defs[n.Name]
	if !ok {
		panic(core.New(core.KindCompileError, "undefined pattern: "+n.Name))
	}
	switch slot.kind {
	case defPattern:
		return pattern.Call{Def: slot.index, Args: lz.lowerArgs(n.Args)}
	case defPredicate:
		cond := pattern.PredCall{Def: slot.index, Args: lz.lowerArgs(n.Args)}
		return pattern.If{Cond: cond, Then: pattern.Top{}, Else: pattern.Bottom{}}
	default:
		panic(core.New(core.KindCompileError, n.Name+" is a function, not a pattern"))
	}
}

func (lz *lowerer) lowerArgs(args []*grammar.CallArg) []pattern.Arg {
	out := make([]pattern.Arg, len(args))
	for i, a := range args {
		name := ""
		if a.Name != nil {
			name = *a.Name
		}
		out[i] = pattern.Arg{Name: name, Value: lz.lowerOr(a.Value)}
	}
	return out
}

// ---- RHS lowering ----

func (lz *lowerer) lowerRHS(n *grammar.RHSExpr) pattern.RHS {
	if n == nil {
		return pattern.UndefinedPattern{}
	}
	switch {
	case n.Snippet != nil:
		return lz.compileSnippetRHS(*n.Snippet)
	case n.Str != nil:
		return pattern.StringConstant{Value: unquote(*n.Str)}
	case n.Float != nil:
		return pattern.FloatConstant{Value: *n.Float}
	case n.Int != nil:
		return pattern.IntConstant{Value: *n.Int}
	case n.Variable != nil:
		ref := lz.resolveVar(*n.Variable)
		lz.noteVarLoc(ref, n.Pos)
		return pattern.Variable{Ref: ref}
	case n.Call != nil:
		return lz.lowerCallAsRHS(n.Call)
	case n.List != nil:
		pieces := make([]pattern.Pattern, len(n.List))
		for i, item := range n.List {
			pieces[i] = lz.lowerRHS(item)
		}
		return pattern.Dynamic{Pieces: pieces}
	default:
		return pattern.UndefinedPattern{}
	}
}

func (lz *lowerer) lowerCallAsRHS(n *grammar.CallExpr) pattern.Pattern {
	if _, ok := lz.builtins.Lookup(n.Name); ok {
		return pattern.CallBuiltIn{Name: n.Name, Args: lz.lowerRHSArgs(n.Args)}
	}
	slot, ok := lz.defs[n.Name]
	if !ok {
		panic(core.New(core.KindCompileError, "undefined function: "+n.Name))
	}
	if slot.kind != defFunction {
		panic(core.New(core.KindCompileError, n.Name+" is not callable as a value"))
	}
	return pattern.CallForeignFunction{Def: slot.index, Args: lz.lowerRHSArgs(n.Args)}
}

func (lz *lowerer) lowerRHSArgs(args []*grammar.CallArg) []pattern.Arg {
	out := make([]pattern.Arg, len(args))
	for i, a := range args {
		name := ""
		if a.Name != nil {
			name = *a.Name
		}
		out[i] = pattern.Arg{Name: name, Value: lz.lowerOr(a.Value)}
	}
	return out
}

// ---- predicate lowering ----

func (lz *lowerer) lowerPredOr(n *grammar.PredicateOr) pattern.Predicate {
	if n == nil {
		return pattern.True{}
	}
	first := lz.lowerPredAnd(n.Left)
	if len(n.Rest) == 0 {
		return first
	}
	preds := []pattern.Predicate{first}
	for _, r := range n.Rest {
		preds = append(preds, lz.lowerPredAnd(r))
	}
	return pattern.PredOr{Predicates: preds}
}

func (lz *lowerer) lowerPredAnd(n *grammar.PredicateAnd) pattern.Predicate {
	if n == nil {
		return pattern.True{}
	}
	first := lz.lowerPredPrimary(n.Left)
	if len(n.Rest) == 0 {
		return first
	}
	preds := []pattern.Predicate{first}
	for _, r := range n.Rest {
		preds = append(preds, lz.lowerPredPrimary(r))
	}
	return pattern.PredAnd{Predicates: preds}
}

func (lz *lowerer) lowerPredPrimary(n *grammar.PredicatePrimary) pattern.Predicate {
	if n == nil {
		return pattern.True{}
	}
	switch {
	case n.Not != nil:
		return pattern.PredNot{Predicate: lz.lowerPredPrimary(n.Not)}
	case n.Paren != nil:
		return lz.lowerPredOr(n.Paren)
	case n.Match != nil:
		return pattern.Match{Value: lz.lowerRHS(n.Match.Operand), Pattern: lz.lowerOr(n.Match.Pattern)}
	case n.Equal != nil:
		return pattern.Equal{Left: lz.lowerRHS(n.Equal.Left), Right: lz.lowerRHS(n.Equal.Right)}
	case n.Assign != nil:
		ref := lz.resolveVar(n.Assign.Var)
		lz.noteVarLoc(ref, n.Assign.Pos)
		return pattern.PredAssignment{Var: ref, Value: lz.lowerOr(n.Assign.Value)}
	case n.Accum != nil:
		ref := lz.resolveVar(n.Accum.Var)
		lz.noteVarLoc(ref, n.Accum.Pos)
		return pattern.PredAccumulate{List: ref, Value: lz.lowerOr(n.Accum.Value)}
	case n.Rewrite != nil:
		return pattern.PredRewrite{Left: lz.lowerOr(n.Rewrite.Left), Right: lz.lowerRHS(n.Rewrite.Right)}
	case n.Call != nil:
		slot, ok := lz.defs[n.Call.Name]
		if !ok || slot.kind != defPredicate {
			panic(core.New(core.KindCompileError, "undefined predicate: "+n.Call.Name))
		}
		return pattern.PredCall{Def: slot.index, Args: lz.lowerArgs(n.Call.Args)}
	case n.BoolTrue:
		return pattern.True{}
	case n.BoolFals:
		return pattern.False{}
	default:
		return pattern.True{}
	}
}
