package matcher

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/analysislog"
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/lang/plain"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

func newTestContext() *Context {
	bi := builtin.NewTable(nil, rand.New(rand.NewSource(1)))
	return NewContext(plain.New(), &pattern.Definitions{}, bi, analysislog.NewCollector(), nil, 0)
}

func TestExecuteBeforeMatchesPrecedingSibling(t *testing.T) {
	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte("a b c"), "doc.txt")
	require.NoError(t, err)

	line := tree.Root().NamedChild(0)
	b := line.NamedChild(1)
	require.Equal(t, "b", b.Text())

	ctx := newTestContext()
	st := state.New(nil, 1)

	ok, err := Execute(ctx, pattern.Before{Pattern: pattern.StringConstant{Value: "a"}}, fromNode(b), st)
	require.NoError(t, err)
	assert.True(t, ok, "b's immediately preceding sibling is a")

	ok, err = Execute(ctx, pattern.Before{Pattern: pattern.StringConstant{Value: "c"}}, fromNode(b), st)
	require.NoError(t, err)
	assert.False(t, ok, "c is not the sibling preceding b")
}

func TestExecuteAfterMatchesFollowingSibling(t *testing.T) {
	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte("a b c"), "doc.txt")
	require.NoError(t, err)

	line := tree.Root().NamedChild(0)
	b := line.NamedChild(1)

	ctx := newTestContext()
	st := state.New(nil, 1)

	ok, err := Execute(ctx, pattern.After{Pattern: pattern.StringConstant{Value: "c"}}, fromNode(b), st)
	require.NoError(t, err)
	assert.True(t, ok, "b's immediately following sibling is c")

	ok, err = Execute(ctx, pattern.After{Pattern: pattern.StringConstant{Value: "a"}}, fromNode(b), st)
	require.NoError(t, err)
	assert.False(t, ok, "a is not the sibling following b")
}

func TestLimitScopedPerContainsTraversal(t *testing.T) {
	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte("a b\nc d"), "doc.txt")
	require.NoError(t, err)

	root := tree.Root()
	line1 := root.NamedChild(0)
	line2 := root.NamedChild(1)

	limit := &pattern.Limit{N: 1, Pattern: pattern.Underscore{}}
	contains := pattern.Contains{Pattern: limit}

	ctx := newTestContext()
	st := state.New(nil, 1)

	ok, err := Execute(ctx, contains, fromNode(line1), st)
	require.NoError(t, err)
	assert.True(t, ok, "first traversal should succeed within its own budget")

	ok, err = Execute(ctx, contains, fromNode(line2), st)
	require.NoError(t, err)
	assert.True(t, ok, "a second, separate Contains traversal gets a fresh limit counter rather than sharing the first's")
}

func TestLimitOutsideContainsIsGlobalAcrossCalls(t *testing.T) {
	limit := &pattern.Limit{N: 1, Pattern: pattern.Underscore{}}

	ctx := newTestContext()
	st := state.New(nil, 1)

	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte("a b"), "doc.txt")
	require.NoError(t, err)
	word := tree.Root().NamedChild(0).NamedChild(0)

	ok, err := Execute(ctx, limit, fromNode(word), st)
	require.NoError(t, err)
	assert.True(t, ok, "first direct call consumes the global budget")

	ok, err = Execute(ctx, limit, fromNode(word), st)
	require.NoError(t, err)
	assert.False(t, ok, "a Limit not nested in any Contains shares one counter across the whole run")
}

func TestExecuteBeforeFalseAtStartOfSiblings(t *testing.T) {
	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte("a b c"), "doc.txt")
	require.NoError(t, err)

	line := tree.Root().NamedChild(0)
	a := line.NamedChild(0)

	ctx := newTestContext()
	st := state.New(nil, 1)

	ok, err := Execute(ctx, pattern.Before{Pattern: pattern.StringConstant{Value: "anything"}}, fromNode(a), st)
	require.NoError(t, err)
	assert.False(t, ok, "the first sibling has no preceding sibling")
}
