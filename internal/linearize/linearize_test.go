package linearize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/lang/javascript"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// fakeNode is a minimal lang.Node standing in for a real parsed node: the
// linearizer only ever reads Start/End/Source off a binding's node, never
// walks children or parents.
type fakeNode struct {
	start, end int
	source     []byte
}

func (f *fakeNode) Kind() string                         { return "fake" }
func (f *fakeNode) Field() string                         { return "" }
func (f *fakeNode) StartByte() int                        { return f.start }
func (f *fakeNode) EndByte() int                          { return f.end }
func (f *fakeNode) Source() []byte                        { return f.source }
func (f *fakeNode) Parent() lang.Node                     { return nil }
func (f *fakeNode) Child(int) lang.Node                   { return nil }
func (f *fakeNode) ChildCount() int                       { return 0 }
func (f *fakeNode) NamedChild(int) lang.Node              { return nil }
func (f *fakeNode) NamedChildCount() int                  { return 0 }
func (f *fakeNode) ChildByFieldName(string) lang.Node     { return nil }
func (f *fakeNode) IsNamed() bool                         { return true }
func (f *fakeNode) Text() string                          { return string(f.source[f.start:f.end]) }

func rewriteEffect(source []byte, start, end int, text string) state.Effect {
	n := &fakeNode{start: start, end: end, source: source}
	return state.Effect{
		Kind:        state.EffectRewrite,
		Binding:     pattern.NodeBinding(n),
		Replacement: pattern.FromConstant(pattern.Constant{Str: &text}),
	}
}

func insertEffect(source []byte, at int, text string) state.Effect {
	n := &fakeNode{start: at, end: at, source: source}
	return state.Effect{
		Kind:        state.EffectInsert,
		Binding:     pattern.NodeBinding(n),
		Replacement: pattern.FromConstant(pattern.Constant{Str: &text}),
	}
}

func TestLinearizeEmptyEffectsRoundTrips(t *testing.T) {
	source := []byte("console.log(a, b, c)")
	out, mappings, err := Linearize(source, nil, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, source, out)
	assert.Nil(t, mappings)
}

func TestLinearizeSingleRewrite(t *testing.T) {
	source := []byte("console.log(a)")
	eff := []state.Effect{rewriteEffect(source, 0, 11, "logger.log")}
	out, mappings, err := Linearize(source, eff, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "logger.log(a)", string(out))
	require.Len(t, mappings, 1)
	assert.Equal(t, RangeMapping{OldStart: 0, OldEnd: 11, NewStart: 0, NewEnd: 10}, mappings[0])
}

func TestLinearizeDisjointEffectsPermutationInvariant(t *testing.T) {
	source := []byte("f(a, b, c)")
	l := javascript.New()

	forward := []state.Effect{
		rewriteEffect(source, 2, 3, "x"),
		rewriteEffect(source, 5, 6, "y"),
		rewriteEffect(source, 8, 9, "z"),
	}
	backward := []state.Effect{forward[2], forward[0], forward[1]}

	outA, _, errA := Linearize(source, forward, l, nil)
	outB, _, errB := Linearize(source, backward, l, nil)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, string(outA), string(outB))
	assert.Equal(t, "f(x, y, z)", string(outA))
}

func TestLinearizeHangingCommaRemoval(t *testing.T) {
	source := []byte("f(a, b, c)")
	// Delete `b` entirely; its trailing ", " must go with it.
	eff := []state.Effect{rewriteEffect(source, 5, 6, "")}
	out, _, err := Linearize(source, eff, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "f(a, c)", string(out))
}

func TestLinearizeHangingCommaLeadingFallback(t *testing.T) {
	source := []byte("f(a, b)")
	// Delete the last element `b`; no trailing separator exists, so the
	// leading one is removed instead.
	eff := []state.Effect{rewriteEffect(source, 5, 6, "")}
	out, _, err := Linearize(source, eff, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "f(a)", string(out))
}

func TestLinearizeNestedDuplicateFiltering(t *testing.T) {
	source := []byte("f(a, b, c)")
	// The outer call's whole argument list and one inner argument are both
	// rewritten; the inner edit is nested inside the outer and must be
	// dropped rather than applied twice.
	outer := rewriteEffect(source, 2, 9, "x, y, z")
	inner := rewriteEffect(source, 5, 6, "q")
	out, _, err := Linearize(source, []state.Effect{outer, inner}, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "f(x, y, z)", string(out))
}

func TestLinearizeRepeatedPointInsertsAllSurvive(t *testing.T) {
	source := []byte("f()")
	// Two distinct Accumulate-style inserts land at the same point; both
	// must make it into the output since their text differs.
	a := insertEffect(source, 2, "one")
	b := insertEffect(source, 2, "two")
	out, _, err := Linearize(source, []state.Effect{a, b}, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "f(onetwo)", string(out))
}

func TestLinearizeIdenticalPointInsertsCollapseToOne(t *testing.T) {
	source := []byte("f()")
	// Two point-inserts at the same index with identical text: only one
	// should survive into the output.
	a := insertEffect(source, 2, "x")
	b := insertEffect(source, 2, "x")
	out, _, err := Linearize(source, []state.Effect{a, b}, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "f(x)", string(out))
}

func TestLinearizePartialOverlapIsFatal(t *testing.T) {
	source := []byte("f(a, b, c)")
	a := rewriteEffect(source, 2, 6, "x")
	b := rewriteEffect(source, 4, 9, "y")
	_, _, err := Linearize(source, []state.Effect{a, b}, javascript.New(), nil)
	require.Error(t, err)
}

func TestLinearizeEmptySlotUsesParentEnd(t *testing.T) {
	source := []byte("f()")
	parent := &fakeNode{start: 0, end: 3, source: source}
	text := "a"
	eff := state.Effect{
		Kind:        state.EffectInsert,
		Binding:     pattern.EmptyBinding(parent, "arguments"),
		Replacement: pattern.FromConstant(pattern.Constant{Str: &text}),
	}
	out, _, err := Linearize(source, []state.Effect{eff}, javascript.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "f()a", string(out))
}
