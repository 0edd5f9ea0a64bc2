package compiler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/lang/javascript"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

func testOptions() Options {
	return Options{
		Lang:     javascript.New(),
		Builtins: builtin.NewTable(nil, rand.New(rand.NewSource(1))),
	}
}

func TestCompileSimpleRewriteAutoWraps(t *testing.T) {
	src := Source{Path: "main.grit", Text: "`console.log($msg)` => `logger.log($msg)`"}
	res, err := Compile(src, testOptions())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.Hash)

	files, ok := res.Defs.TopLevel.(pattern.Files)
	require.True(t, ok, "top level must be auto-wrapped in Files")
	file, ok := files.Pattern.(pattern.File)
	require.True(t, ok, "Files.Pattern must be a File when no before/after hooks exist")
	contains, ok := file.Body.(pattern.Contains)
	require.True(t, ok, "File.Body must be wrapped in Contains so the pattern matches anywhere in the file")
	_, isRewrite := contains.Pattern.(pattern.Rewrite)
	assert.True(t, isRewrite)
}

func TestCompileSnippetProducesAlternatives(t *testing.T) {
	src := Source{Path: "main.grit", Text: "`console.log($msg)`"}
	res, err := Compile(src, testOptions())
	require.NoError(t, err)

	files := res.Defs.TopLevel.(pattern.Files)
	file := files.Pattern.(pattern.File)
	contains, ok := file.Body.(pattern.Contains)
	require.True(t, ok)
	snippet, ok := contains.Pattern.(pattern.CodeSnippet)
	require.True(t, ok)
	assert.NotEmpty(t, snippet.Alternatives)
}

func TestCompileLibraryFilteringPrunesUnreachable(t *testing.T) {
	main := Source{Path: "main.grit", Text: "used_pattern()"}
	lib := Source{Path: "lib.grit", Text: `
pattern used_pattern() {
	` + "`a`" + `
}

pattern unused_pattern() {
	` + "`b`" + `
}
`}
	res, err := Compile(main, Options{Lang: testOptions().Lang, Builtins: testOptions().Builtins, Library: []Source{lib}})
	require.NoError(t, err)
	require.Len(t, res.Defs.Patterns, 1, "only the reachable pattern should survive into the table")
	assert.Equal(t, "used_pattern", res.Defs.Patterns[0].Name)
}

func TestCompileLibraryFilteringKeepsMutualRecursion(t *testing.T) {
	main := Source{Path: "main.grit", Text: "is_even()"}
	lib := Source{Path: "lib.grit", Text: `
predicate is_even() {
	is_odd()
}

predicate is_odd() {
	is_even()
}
`}
	res, err := Compile(main, Options{Lang: testOptions().Lang, Builtins: testOptions().Builtins, Library: []Source{lib}})
	require.NoError(t, err)
	require.Len(t, res.Defs.Predicates, 2)
}

func TestCompileUndefinedCallIsCompileError(t *testing.T) {
	src := Source{Path: "main.grit", Text: "does_not_exist()"}
	_, err := Compile(src, testOptions())
	require.Error(t, err)
}

func TestCompileVariableScopeAssignment(t *testing.T) {
	main := Source{Path: "main.grit", Text: "pair($a, $b)"}
	lib := Source{Path: "lib.grit", Text: `
pattern pair($first, $second) {
	[$first, $second]
}
`}
	res, err := Compile(main, Options{Lang: testOptions().Lang, Builtins: testOptions().Builtins, Library: []Source{lib}})
	require.NoError(t, err)
	require.Len(t, res.Defs.Patterns, 1)
	def := res.Defs.Patterns[0]
	require.Len(t, def.Params, 2)
	assert.Equal(t, def.Scope, def.Params[0].Scope)
	assert.Equal(t, 0, def.Params[0].Index)
	assert.Equal(t, 1, def.Params[1].Index)
	// Scope 0 is always the reserved global scope; user definitions start
	// claiming scope indices afterward.
	assert.NotEqual(t, state.GlobalScope, def.Scope)
}

func TestCompileGlobalVariableAlwaysResolvesToFixedScope(t *testing.T) {
	src := Source{Path: "main.grit", Text: "`$filename` where { $x = `a` }"}
	res, err := Compile(src, testOptions())
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestCompileAutoWrapSplicesBeforeAfterHooks(t *testing.T) {
	main := Source{Path: "main.grit", Text: "`x`"}
	lib := Source{Path: "lib.grit", Text: `
pattern before_each_file() {
	` + "`a`" + `
}

pattern after_each_file() {
	` + "`b`" + `
}
`}
	res, err := Compile(main, Options{Lang: testOptions().Lang, Builtins: testOptions().Builtins, Library: []Source{lib}})
	require.NoError(t, err)

	files := res.Defs.TopLevel.(pattern.Files)
	seq, ok := files.Pattern.(pattern.Sequential)
	require.True(t, ok, "before/after hooks must wrap the File in a Sequential")
	require.Len(t, seq.Patterns, 3)
	_, beforeOK := seq.Patterns[0].(pattern.Bubble)
	_, fileOK := seq.Patterns[1].(pattern.File)
	_, afterOK := seq.Patterns[2].(pattern.Bubble)
	assert.True(t, beforeOK)
	assert.True(t, fileOK)
	assert.True(t, afterOK)
}

func TestCompileHashIsDeterministic(t *testing.T) {
	src := Source{Path: "main.grit", Text: "`x`"}
	res1, err1 := Compile(src, testOptions())
	res2, err2 := Compile(src, testOptions())
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, res1.Hash, res2.Hash)
}
