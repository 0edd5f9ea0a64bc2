package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

func newTestState() *state.State {
	defs := []state.ScopeDef{
		state.GlobalScopeDef,
		{VarNames: []string{"$x", "$y"}},
	}
	st := state.New(defs, 1)
	st.PushScope(state.GlobalScope)
	return st
}

func TestAssignAndVarRoundTrip(t *testing.T) {
	st := newTestState()
	st.PushScope(1)

	name := "a.ts"
	ref := pattern.VarRef{Scope: state.GlobalScope, Index: state.FilenameIndex}
	st.Assign(ref, pattern.FromConstant(pattern.Constant{Str: &name}))

	vc := st.Var(ref)
	require.True(t, vc.Bound())
	require.NotNil(t, vc.CurrentValue)
	assert.Equal(t, "a.ts", vc.CurrentValue.Const.String())
}

func TestAssignPropagatesToMirrors(t *testing.T) {
	st := newTestState()
	st.PushScope(1)

	xRef := pattern.VarRef{Scope: 1, Index: 0}
	yRef := pattern.VarRef{Scope: 1, Index: 1}
	st.Var(yRef).Mirrors = []pattern.VarRef{xRef}

	v := "hello"
	st.Assign(yRef, pattern.FromConstant(pattern.Constant{Str: &v}))

	assert.True(t, st.Var(xRef).Bound())
	assert.True(t, st.Var(yRef).Bound())
	assert.Equal(t, "hello", st.Var(xRef).CurrentValue.Const.String())
}

func TestTraceVarBreaksCycles(t *testing.T) {
	st := newTestState()
	st.PushScope(1)

	a := pattern.VarRef{Scope: 1, Index: 0}
	b := pattern.VarRef{Scope: 1, Index: 1}
	st.Var(a).Mirrors = []pattern.VarRef{b}
	st.Var(b).Mirrors = []pattern.VarRef{a}

	assert.NotPanics(t, func() {
		st.TraceVar(a)
	})
}

func TestScopeVarsReturnsDeclarationOrder(t *testing.T) {
	st := newTestState()
	st.PushScope(1)

	vars := st.ScopeVars(1)
	require.Len(t, vars, 2)
	assert.Equal(t, "$x", vars[0].Name)
	assert.Equal(t, "$y", vars[1].Name)
}

func TestSnapshotRestoreUndoesFramesAndEffects(t *testing.T) {
	st := newTestState()
	before := st.Snapshot()

	st.PushScope(1)
	st.PushEffect(state.Effect{Kind: state.EffectInsert})
	require.Len(t, st.Effects, 1)

	st.Restore(before)
	assert.Empty(t, st.Effects)
	assert.Panics(t, func() { st.ScopeVars(1) }, "popped frame must not be readable after restore")
}

func TestPushPopScope(t *testing.T) {
	st := newTestState()
	st.PushScope(1)
	st.ScopeVars(1)[0].Assign(pattern.FromConstant(pattern.Constant{Undefined: true}))
	st.PopScope(1)
	st.PushScope(1)
	assert.False(t, st.ScopeVars(1)[0].Bound(), "a fresh frame must not see the popped frame's bindings")
}
