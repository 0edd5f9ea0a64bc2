package builtin_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/pattern"
)

func str(s string) *pattern.ResolvedPattern {
	return pattern.FromConstant(pattern.Constant{Str: &s})
}

func newTable() *builtin.Table {
	return builtin.NewTable(nil, rand.New(rand.NewSource(1)))
}

func TestCapitalize(t *testing.T) {
	tbl := newTable()
	out, err := tbl.Call("capitalize", []*pattern.ResolvedPattern{str("hello")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", out.Const.String())
}

func TestUppercaseLowercase(t *testing.T) {
	tbl := newTable()
	up, err := tbl.Call("uppercase", []*pattern.ResolvedPattern{str("Hi")})
	require.NoError(t, err)
	assert.Equal(t, "HI", up.Const.String())

	low, err := tbl.Call("lowercase", []*pattern.ResolvedPattern{str("Hi")})
	require.NoError(t, err)
	assert.Equal(t, "hi", low.Const.String())
}

func TestTrimDefaultsToWhitespace(t *testing.T) {
	tbl := newTable()
	out, err := tbl.Call("trim", []*pattern.ResolvedPattern{str("  hi  ")})
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Const.String())
}

func TestTrimCustomChars(t *testing.T) {
	tbl := newTable()
	out, err := tbl.Call("trim", []*pattern.ResolvedPattern{str("--hi--"), str("-")})
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Const.String())
}

func TestLengthOfStringAndList(t *testing.T) {
	tbl := newTable()

	out, err := tbl.Call("length", []*pattern.ResolvedPattern{str("hello")})
	require.NoError(t, err)
	assert.Equal(t, int64(5), *out.Const.Int)

	list := pattern.FromList([]*pattern.ResolvedPattern{str("a"), str("b"), str("c")})
	out, err = tbl.Call("length", []*pattern.ResolvedPattern{list})
	require.NoError(t, err)
	assert.Equal(t, int64(3), *out.Const.Int)
}

func TestDistinctDropsDuplicates(t *testing.T) {
	tbl := newTable()
	list := pattern.FromList([]*pattern.ResolvedPattern{str("a"), str("b"), str("a")})
	out, err := tbl.Call("distinct", []*pattern.ResolvedPattern{list})
	require.NoError(t, err)
	require.Len(t, out.List, 2)
}

func TestSplitOnSeparator(t *testing.T) {
	tbl := newTable()
	out, err := tbl.Call("split", []*pattern.ResolvedPattern{str("a,b,c"), str(",")})
	require.NoError(t, err)
	require.Len(t, out.List, 3)
	assert.Equal(t, "b", out.List[1].Const.String())
}

func TestRandomIsBoundedAndDeterministicForSeed(t *testing.T) {
	tbl := builtin.NewTable(nil, rand.New(rand.NewSource(42)))
	start, end := int64(0), int64(10)
	out, err := tbl.Call("random", []*pattern.ResolvedPattern{str("0"), str("10")})
	require.NoError(t, err)
	n := *out.Const.Int
	assert.GreaterOrEqual(t, n, start)
	assert.Less(t, n, end)
}

func TestShuffleReturnsSamePermutationForSameSeed(t *testing.T) {
	tbl1 := builtin.NewTable(nil, rand.New(rand.NewSource(7)))
	tbl2 := builtin.NewTable(nil, rand.New(rand.NewSource(7)))
	list := pattern.FromList([]*pattern.ResolvedPattern{str("a"), str("b"), str("c"), str("d")})

	out1, err := tbl1.Call("shuffle", []*pattern.ResolvedPattern{list})
	require.NoError(t, err)
	out2, err := tbl2.Call("shuffle", []*pattern.ResolvedPattern{list})
	require.NoError(t, err)

	require.Len(t, out1.List, 4)
	for i := range out1.List {
		assert.Equal(t, out1.List[i].Const.String(), out2.List[i].Const.String())
	}
}

func TestCallUnknownBuiltinErrors(t *testing.T) {
	tbl := newTable()
	_, err := tbl.Call("not_a_real_builtin", nil)
	assert.Error(t, err)
}

func TestEvalTextResolvesConstant(t *testing.T) {
	tbl := newTable()
	text, err := tbl.EvalText("uppercase", []*pattern.ResolvedPattern{str("ok")})
	require.NoError(t, err)
	assert.Equal(t, "OK", text)
}
