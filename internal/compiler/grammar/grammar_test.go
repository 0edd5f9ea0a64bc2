package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	p, err := NewParser()
	require.NoError(t, err)
	prog, err := p.ParseString("<test>", src)
	require.NoError(t, err)
	return prog
}

func TestParseLanguageHeaderAndTopPattern(t *testing.T) {
	prog := mustParse(t, `language js

`+"`console.log($msg)`"+` => `+"`logger.log($msg)`"+``)

	require.NotNil(t, prog.Language)
	assert.Equal(t, "js", *prog.Language)
	require.NotNil(t, prog.Top)
	require.NotNil(t, prog.Top.Left.Left.Primary.Snippet)
	require.NotNil(t, prog.Top.Left.Left.Rewrite)
}

func TestParsePatternDefinitionWithParams(t *testing.T) {
	prog := mustParse(t, `
pattern has_name($name) {
	$name
}

has_name("x")
`)
	require.Len(t, prog.Definitions, 1)
	def := prog.Definitions[0]
	require.NotNil(t, def.Pattern)
	assert.Equal(t, "has_name", def.Pattern.Name)
	assert.Equal(t, []string{"name"}, def.Pattern.Params)
	require.NotNil(t, prog.Top)
	require.NotNil(t, prog.Top.Left.Left.Primary.Call)
	assert.Equal(t, "has_name", prog.Top.Left.Left.Primary.Call.Name)
}

func TestParsePredicateDefinitionAndWhereClause(t *testing.T) {
	prog := mustParse(t, `
predicate is_foo($x) {
	$x <: `+"`foo`"+`
}

`+"`$x`"+` where { is_foo($x) }
`)
	require.Len(t, prog.Definitions, 1)
	require.NotNil(t, prog.Definitions[0].Predicate)
	assert.Equal(t, "is_foo", prog.Definitions[0].Predicate.Name)

	where := prog.Top.Left.Left
	require.NotNil(t, where.Cond)
	require.NotNil(t, where.Cond.Left.Left.Call)
	assert.Equal(t, "is_foo", where.Cond.Left.Left.Call.Name)
}

func TestParseOrAndContainsLimit(t *testing.T) {
	prog := mustParse(t, `contains limit 2 `+"`x`"+` or `+"`y`"+` and `+"`z`"+``)
	top := prog.Top
	// "contains limit 2 `x`" is its own or-term (no "and" inside it); the
	// second or-term is "`y` and `z`".
	require.Empty(t, top.Left.Rest)
	require.Len(t, top.Rest, 1)

	contains := top.Left.Left.Primary.Contains
	require.NotNil(t, contains)
	require.NotNil(t, contains.Inner.Limit)
	assert.Equal(t, int64(2), contains.Inner.Limit.N)

	secondTerm := top.Rest[0]
	require.Len(t, secondTerm.Rest, 1)
}

func TestParseListPatternAndDots(t *testing.T) {
	prog := mustParse(t, `[$first, ..., $last]`)
	list := prog.Top.Left.Left.Primary.List
	require.NotNil(t, list)
	require.Len(t, list.Items, 3)
	assert.True(t, list.Items[1].Left.Left.Primary.Dots)
}

func TestParseFunctionDefinitionOpaqueBody(t *testing.T) {
	prog := mustParse(t, `
function double($x) {
	`+"`return $x * 2`"+`
}

`+"`call()`"+``)
	require.Len(t, prog.Definitions, 1)
	fn := prog.Definitions[0].Function
	require.NotNil(t, fn)
	assert.Equal(t, "double", fn.Name)
	assert.Equal(t, []string{"x"}, fn.Params)
}
