package compiler

import (
	"github.com/oxhq/gritql/internal/compiler/grammar"
	"github.com/oxhq/gritql/internal/state"
)

// globalVarIndex fixes the six always-bound global-scope slots (spec §4.2
// stage 4, mirroring state.GlobalScopeDef); a `$name` occurrence anywhere in
// a program resolves to one of these regardless of the scope it's written
// in, rather than shadowing a local of the same name.
var globalVarIndex = map[string]int{
	"filename":          state.FilenameIndex,
	"absolute_filename": state.AbsoluteFilenameIndex,
	"program":           state.ProgramIndex,
	"new_files":         state.NewFilesIndex,
	"match":             state.MatchIndex,
	"grit_range":        state.GritRangeIndex,
}

// globalVarNames lists the six fixed global slots in index order (bare
// names, matching globalVarIndex's keys rather than state.GlobalScopeDef's
// "$"-prefixed display strings) so the global scope's ScopeDef can be
// seeded at the right length and order.
var globalVarNames = []string{
	"filename", "absolute_filename", "program", "new_files", "match", "grit_range",
}

// varOrder assigns each distinct local variable name in a scope a stable
// index in first-occurrence order (params first), matching the slot layout
// the compiler must hand the matcher's scopeStack (spec §4.2 stage 4).
type varOrder struct {
	names []string
	index map[string]int
}

func newVarOrder(params []string) *varOrder {
	vo := &varOrder{index: map[string]int{}}
	for _, p := range params {
		vo.add(p)
	}
	return vo
}

func (vo *varOrder) add(name string) int {
	if _, global := globalVarIndex[name]; global {
		return -1
	}
	return vo.seed(name)
}

// seed force-adds a name regardless of whether it shadows a global, used
// once to pre-populate the global scope's six fixed slots in order.
func (vo *varOrder) seed(name string) int {
	if i, ok := vo.index[name]; ok {
		return i
	}
	i := len(vo.names)
	vo.index[name] = i
	vo.names = append(vo.names, name)
	return i
}

// collect walks every grammar node that can reference a `$name` and records
// it, without yet lowering anything — the two-pass split lets a variable be
// referenced before its first textual occurrence in, e.g., a recursive
// pattern definition.
func (vo *varOrder) collectOr(n *grammar.OrPattern) {
	if n == nil {
		return
	}
	vo.collectAnd(n.Left)
	for _, r := range n.Rest {
		vo.collectAnd(r)
	}
}

func (vo *varOrder) collectAnd(n *grammar.AndPattern) {
	if n == nil {
		return
	}
	vo.collectWhere(n.Left)
	for _, r := range n.Rest {
		vo.collectWhere(r)
	}
}

func (vo *varOrder) collectWhere(n *grammar.WherePattern) {
	if n == nil {
		return
	}
	vo.collectPrimary(n.Primary)
	vo.collectPredOr(n.Cond)
	vo.collectRHS(n.Rewrite)
}

func (vo *varOrder) collectPrimary(n *grammar.Primary) {
	if n == nil {
		return
	}
	switch {
	case n.Not != nil:
		vo.collectPrimary(n.Not)
	case n.Maybe != nil:
		vo.collectPrimary(n.Maybe)
	case n.Contains != nil:
		vo.collectPrimary(n.Contains.Inner)
		vo.collectPrimary(n.Contains.Until)
	case n.Within != nil:
		vo.collectPrimary(n.Within)
	case n.After != nil:
		vo.collectPrimary(n.After)
	case n.Before != nil:
		vo.collectPrimary(n.Before)
	case n.Every != nil:
		vo.collectPrimary(n.Every)
	case n.Some != nil:
		vo.collectPrimary(n.Some)
	case n.Limit != nil:
		vo.collectPrimary(n.Limit.Inner)
	case n.Paren != nil:
		vo.collectOr(n.Paren)
	case n.List != nil:
		for _, item := range n.List.Items {
			vo.collectOr(item)
		}
	case n.Variable != nil:
		vo.add(*n.Variable)
	case n.Call != nil:
		vo.collectCall(n.Call)
	}
}

func (vo *varOrder) collectCall(n *grammar.CallExpr) {
	if n == nil {
		return
	}
	for _, a := range n.Args {
		vo.collectOr(a.Value)
	}
}

func (vo *varOrder) collectRHS(n *grammar.RHSExpr) {
	if n == nil {
		return
	}
	switch {
	case n.Variable != nil:
		vo.add(*n.Variable)
	case n.Call != nil:
		vo.collectCall(n.Call)
	case n.List != nil:
		for _, item := range n.List {
			vo.collectRHS(item)
		}
	}
}

func (vo *varOrder) collectPredOr(n *grammar.PredicateOr) {
	if n == nil {
		return
	}
	vo.collectPredAnd(n.Left)
	for _, r := range n.Rest {
		vo.collectPredAnd(r)
	}
}

func (vo *varOrder) collectPredAnd(n *grammar.PredicateAnd) {
	if n == nil {
		return
	}
	vo.collectPredPrimary(n.Left)
	for _, r := range n.Rest {
		vo.collectPredPrimary(r)
	}
}

func (vo *varOrder) collectPredPrimary(n *grammar.PredicatePrimary) {
	if n == nil {
		return
	}
	switch {
	case n.Not != nil:
		vo.collectPredPrimary(n.Not)
	case n.Paren != nil:
		vo.collectPredOr(n.Paren)
	case n.Match != nil:
		vo.collectRHS(n.Match.Operand)
		vo.collectOr(n.Match.Pattern)
	case n.Equal != nil:
		vo.collectRHS(n.Equal.Left)
		vo.collectRHS(n.Equal.Right)
	case n.Assign != nil:
		vo.add(n.Assign.Var)
		vo.collectOr(n.Assign.Value)
	case n.Accum != nil:
		vo.add(n.Accum.Var)
		vo.collectOr(n.Accum.Value)
	case n.Rewrite != nil:
		vo.collectOr(n.Rewrite.Left)
		vo.collectRHS(n.Rewrite.Right)
	case n.Call != nil:
		vo.collectCall(n.Call)
	}
}
