package compiler

import (
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/compiler/grammar"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

type libSource struct {
	path string
	prog *grammar.Program
}

// namedDef is one raw definition harvested from the main program or a
// library source, before reachability pruning (spec §4.2 stage 2).
type namedDef struct {
	name         string
	file         string
	kind         defKind
	patternDef   *grammar.PatternDef
	predicateDef *grammar.PredicateDef
	functionDef  *grammar.FunctionDef
}

func collectDefinitions(mainPath string, main *grammar.Program, libs []*libSource) []*namedDef {
	var out []*namedDef
	appendFrom := func(path string, defs []*grammar.Definition) {
		for _, d := range defs {
			switch {
			case d.Pattern != nil:
				out = append(out, &namedDef{name: d.Pattern.Name, file: path, kind: defPattern, patternDef: d.Pattern})
			case d.Predicate != nil:
				out = append(out, &namedDef{name: d.Predicate.Name, file: path, kind: defPredicate, predicateDef: d.Predicate})
			case d.Function != nil:
				out = append(out, &namedDef{name: d.Function.Name, file: path, kind: defFunction, functionDef: d.Function})
			}
		}
	}
	appendFrom(mainPath, main.Definitions)
	for _, l := range libs {
		appendFrom(l.path, l.prog.Definitions)
	}
	return out
}

// reachableNames implements spec §4.2 stage 2 "Library filtering": only
// definitions transitively called from the main program's top-level
// pattern survive into the compiled Definitions table, plus
// before_each_file/after_each_file whenever present (auto-wrap always
// splices them in, whether or not the user pattern names them).
func reachableNames(main *grammar.Program, all []*namedDef) map[string]bool {
	byName := make(map[string]*namedDef, len(all))
	for _, d := range all {
		byName[d.name] = d
	}
	seen := map[string]bool{}
	var visit func(name string)
	visit = func(name string) {
		if seen[name] {
			return
		}
		d, ok := byName[name]
		if !ok {
			return
		}
		seen[name] = true
		cs := newCallSet()
		switch d.kind {
		case defPattern:
			cs.collectOr(d.patternDef.Body)
		case defPredicate:
			cs.collectPredOr(d.predicateDef.Body)
		}
		for call := range cs.names {
			visit(call)
		}
	}
	top := newCallSet()
	top.collectOr(main.Top)
	for call := range top.names {
		visit(call)
	}
	for _, hook := range []string{"before_each_file", "after_each_file"} {
		visit(hook)
	}
	return seen
}

// compilation accumulates the final Definitions table across stages 3-6.
type compilation struct {
	lang     lang.Language
	builtins *builtin.Table

	defs       map[string]defSlot
	scopeDefs  []state.ScopeDef
	scopeVars  map[int]*varOrder
	patterns   []*pattern.Definition
	predicates []*pattern.Definition
	functions  []*pattern.FunctionDefinition
	varLocs    map[pattern.VarRef][]pattern.ByteSpan
}

// index implements stage 3 "Definition indexing": every reachable
// definition gets a stable index in its table and, for patterns and
// predicates, its own scope. Bodies are left uncompiled so that mutually
// recursive definitions can resolve each other regardless of declaration
// order; compileDefinitionBody fills them in afterward.
func (c *compilation) index(all []*namedDef, reachable map[string]bool) {
	if c.scopeVars == nil {
		c.scopeVars = map[int]*varOrder{}
	}
	for _, d := range all {
		if !reachable[d.name] {
			continue
		}
		switch d.kind {
		case defPattern:
			vo := newVarOrder(d.patternDef.Params)
			vo.collectOr(d.patternDef.Body)
			scopeID := len(c.scopeDefs)
			c.scopeDefs = append(c.scopeDefs, state.ScopeDef{VarNames: vo.names})
			c.scopeVars[scopeID] = vo
			idx := len(c.patterns)
			c.patterns = append(c.patterns, &pattern.Definition{
				Name: d.name, Scope: scopeID, Params: paramRefs(d.patternDef.Params, scopeID), File: d.file,
			})
			c.defs[d.name] = defSlot{kind: defPattern, index: idx}
		case defPredicate:
			vo := newVarOrder(d.predicateDef.Params)
			vo.collectPredOr(d.predicateDef.Body)
			scopeID := len(c.scopeDefs)
			c.scopeDefs = append(c.scopeDefs, state.ScopeDef{VarNames: vo.names})
			c.scopeVars[scopeID] = vo
			idx := len(c.predicates)
			c.predicates = append(c.predicates, &pattern.Definition{
				Name: d.name, Scope: scopeID, Params: paramRefs(d.predicateDef.Params, scopeID), File: d.file,
			})
			c.defs[d.name] = defSlot{kind: defPredicate, index: idx}
		case defFunction:
			idx := len(c.functions)
			c.functions = append(c.functions, &pattern.FunctionDefinition{
				Name: d.name, ParamNames: d.functionDef.Params, Source: []byte(unbacktick(d.functionDef.Body)), File: d.file,
			})
			c.defs[d.name] = defSlot{kind: defFunction, index: idx}
		}
	}
}

func paramRefs(params []string, scope int) []pattern.VarRef {
	out := make([]pattern.VarRef, len(params))
	for i := range params {
		out[i] = pattern.VarRef{Scope: scope, Index: i}
	}
	return out
}

// compileDefinitionBody runs stages 4-6 for one already-indexed definition.
func (c *compilation) compileDefinitionBody(d *namedDef) {
	slot, ok := c.defs[d.name]
	if !ok {
		return
	}
	switch d.kind {
	case defPattern:
		def := c.patterns[slot.index]
		lz := &lowerer{lang: c.lang, builtins: c.builtins, defs: c.defs, scope: def.Scope, vars: c.scopeVars[def.Scope], varLocs: c.varLocs, file: d.file}
		def.Body = lz.lowerOr(d.patternDef.Body)
	case defPredicate:
		def := c.predicates[slot.index]
		lz := &lowerer{lang: c.lang, builtins: c.builtins, defs: c.defs, scope: def.Scope, vars: c.scopeVars[def.Scope], varLocs: c.varLocs, file: d.file}
		def.PredBody = lz.lowerPredOr(d.predicateDef.Body)
	}
}

// callSet collects every CallExpr name reachable from a pattern/predicate
// body, for stage 2's reachability closure. It mirrors varOrder's walk
// shape but gathers call targets instead of variable names.
type callSet struct{ names map[string]bool }

func newCallSet() *callSet { return &callSet{names: map[string]bool{}} }

func (cs *callSet) collectOr(n *grammar.OrPattern) {
	if n == nil {
		return
	}
	cs.collectAnd(n.Left)
	for _, r := range n.Rest {
		cs.collectAnd(r)
	}
}

func (cs *callSet) collectAnd(n *grammar.AndPattern) {
	if n == nil {
		return
	}
	cs.collectWhere(n.Left)
	for _, r := range n.Rest {
		cs.collectWhere(r)
	}
}

func (cs *callSet) collectWhere(n *grammar.WherePattern) {
	if n == nil {
		return
	}
	cs.collectPrimary(n.Primary)
	cs.collectPredOr(n.Cond)
	cs.collectRHS(n.Rewrite)
}

func (cs *callSet) collectPrimary(n *grammar.Primary) {
	if n == nil {
		return
	}
	switch {
	case n.Not != nil:
		cs.collectPrimary(n.Not)
	case n.Maybe != nil:
		cs.collectPrimary(n.Maybe)
	case n.Contains != nil:
		cs.collectPrimary(n.Contains.Inner)
		cs.collectPrimary(n.Contains.Until)
	case n.Within != nil:
		cs.collectPrimary(n.Within)
	case n.After != nil:
		cs.collectPrimary(n.After)
	case n.Before != nil:
		cs.collectPrimary(n.Before)
	case n.Every != nil:
		cs.collectPrimary(n.Every)
	case n.Some != nil:
		cs.collectPrimary(n.Some)
	case n.Limit != nil:
		cs.collectPrimary(n.Limit.Inner)
	case n.Paren != nil:
		cs.collectOr(n.Paren)
	case n.List != nil:
		for _, item := range n.List.Items {
			cs.collectOr(item)
		}
	case n.Call != nil:
		cs.names[n.Call.Name] = true
		for _, a := range n.Call.Args {
			cs.collectOr(a.Value)
		}
	}
}

func (cs *callSet) collectRHS(n *grammar.RHSExpr) {
	if n == nil {
		return
	}
	switch {
	case n.Call != nil:
		cs.names[n.Call.Name] = true
		for _, a := range n.Call.Args {
			cs.collectOr(a.Value)
		}
	case n.List != nil:
		for _, item := range n.List {
			cs.collectRHS(item)
		}
	}
}

func (cs *callSet) collectPredOr(n *grammar.PredicateOr) {
	if n == nil {
		return
	}
	cs.collectPredAnd(n.Left)
	for _, r := range n.Rest {
		cs.collectPredAnd(r)
	}
}

func (cs *callSet) collectPredAnd(n *grammar.PredicateAnd) {
	if n == nil {
		return
	}
	cs.collectPredPrimary(n.Left)
	for _, r := range n.Rest {
		cs.collectPredPrimary(r)
	}
}

func (cs *callSet) collectPredPrimary(n *grammar.PredicatePrimary) {
	if n == nil {
		return
	}
	switch {
	case n.Not != nil:
		cs.collectPredPrimary(n.Not)
	case n.Paren != nil:
		cs.collectPredOr(n.Paren)
	case n.Match != nil:
		cs.collectRHS(n.Match.Operand)
		cs.collectOr(n.Match.Pattern)
	case n.Equal != nil:
		cs.collectRHS(n.Equal.Left)
		cs.collectRHS(n.Equal.Right)
	case n.Assign != nil:
		cs.collectOr(n.Assign.Value)
	case n.Accum != nil:
		cs.collectOr(n.Accum.Value)
	case n.Rewrite != nil:
		cs.collectOr(n.Rewrite.Left)
		cs.collectRHS(n.Rewrite.Right)
	case n.Call != nil:
		cs.names[n.Call.Name] = true
		for _, a := range n.Call.Args {
			cs.collectOr(a.Value)
		}
	}
}
