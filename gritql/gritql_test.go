package gritql_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/gritql"
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/compiler"
	"github.com/oxhq/gritql/internal/lang/javascript"
)

func testOpts() gritql.Options {
	return gritql.Options{
		Options: compiler.Options{
			Lang:     javascript.New(),
			Builtins: builtin.NewTable(nil, rand.New(rand.NewSource(1))),
		},
		Seed: 1,
	}
}

func countByType(results []gritql.MatchResult, t gritql.Typename) int {
	n := 0
	for _, r := range results {
		if r.Typename == t {
			n++
		}
	}
	return n
}

func TestExecuteFilesRewritesConsoleLog(t *testing.T) {
	src := compiler.Source{Path: "main.grit", Text: "`console.log($msg)` => `logger.log($msg)`"}
	problem, err := gritql.Compile(src, testOpts())
	require.NoError(t, err)

	results, err := problem.ExecuteFiles([]gritql.RichFile{
		{Path: "a.ts", Content: []byte("function f(){ console.log(\"a\") }")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, 1, countByType(results, gritql.TypeRewrite))
	require.Equal(t, 1, countByType(results, gritql.TypeDoneFile))
	require.Equal(t, 1, countByType(results, gritql.TypeAllDone))

	var rewrite gritql.MatchResult
	for _, r := range results {
		if r.Typename == gritql.TypeRewrite {
			rewrite = r
		}
	}
	assert.Equal(t, "a.ts", rewrite.SourceFile)
	assert.Contains(t, string(rewrite.Content), "logger.log(\"a\")")
	assert.NotEmpty(t, rewrite.Diff)
	assert.NotEmpty(t, rewrite.UUID)
}

func TestExecuteFilesMatchWithoutRewrite(t *testing.T) {
	src := compiler.Source{Path: "main.grit", Text: "`console.log($msg)`"}
	problem, err := gritql.Compile(src, testOpts())
	require.NoError(t, err)

	results, err := problem.ExecuteFiles([]gritql.RichFile{
		{Path: "a.ts", Content: []byte("function f(){ console.log(\"a\") }")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, 1, countByType(results, gritql.TypeMatch))
	require.Equal(t, 0, countByType(results, gritql.TypeRewrite))
	require.Equal(t, 1, countByType(results, gritql.TypeDoneFile))
}

func TestExecuteFilesNoMatchStillEmitsDoneFile(t *testing.T) {
	src := compiler.Source{Path: "main.grit", Text: "`console.log($msg)` => `logger.log($msg)`"}
	problem, err := gritql.Compile(src, testOpts())
	require.NoError(t, err)

	results, err := problem.ExecuteFiles([]gritql.RichFile{
		{Path: "b.ts", Content: []byte("function f(){ return 1 }")},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, countByType(results, gritql.TypeRewrite))
	assert.Equal(t, 0, countByType(results, gritql.TypeMatch))
	assert.Equal(t, 1, countByType(results, gritql.TypeDoneFile))
	assert.Equal(t, 1, countByType(results, gritql.TypeAllDone))
}

func TestExecuteFilesMultipleFilesOrderPreserved(t *testing.T) {
	src := compiler.Source{Path: "main.grit", Text: "`console.log($msg)` => `logger.log($msg)`"}
	problem, err := gritql.Compile(src, testOpts())
	require.NoError(t, err)

	results, err := problem.ExecuteFiles([]gritql.RichFile{
		{Path: "a.ts", Content: []byte("console.log(\"a\")")},
		{Path: "b.ts", Content: []byte("console.log(\"b\")")},
	}, nil)
	require.NoError(t, err)

	require.Equal(t, 2, countByType(results, gritql.TypeRewrite))
	require.Equal(t, 2, countByType(results, gritql.TypeDoneFile))

	var firstDoneIdx, secondRewriteIdx = -1, -1
	for i, r := range results {
		if r.Typename == gritql.TypeDoneFile && r.SourceFile == "a.ts" && firstDoneIdx == -1 {
			firstDoneIdx = i
		}
		if r.Typename == gritql.TypeRewrite && r.SourceFile == "b.ts" {
			secondRewriteIdx = i
		}
	}
	assert.True(t, firstDoneIdx < secondRewriteIdx, "a.ts must close before b.ts's rewrite is emitted")
}

func TestExecuteFilesStreaming(t *testing.T) {
	src := compiler.Source{Path: "main.grit", Text: "`console.log($msg)` => `logger.log($msg)`"}
	problem, err := gritql.Compile(src, testOpts())
	require.NoError(t, err)

	tx := make(chan gritql.MatchResult, 16)
	err = problem.ExecuteFilesStreaming([]gritql.RichFile{
		{Path: "a.ts", Content: []byte("console.log(\"a\")")},
	}, tx, nil)
	require.NoError(t, err)
	close(tx)

	var results []gritql.MatchResult
	for r := range tx {
		results = append(results, r)
	}
	assert.Equal(t, 1, countByType(results, gritql.TypeRewrite))
	assert.Equal(t, 1, countByType(results, gritql.TypeAllDone))
}

type fakeCache struct {
	hits  map[string]bool
	calls int
}

func newFakeCache() *fakeCache { return &fakeCache{hits: map[string]bool{}} }

func (c *fakeCache) Hit(fileHash, patternHash string) (bool, error) {
	c.calls++
	return c.hits[fileHash+patternHash], nil
}

func (c *fakeCache) RecordNoMatch(fileHash, patternHash string) error {
	c.hits[fileHash+patternHash] = true
	return nil
}

func TestExecuteFilesConsultsCache(t *testing.T) {
	src := compiler.Source{Path: "main.grit", Text: "`console.log($msg)` => `logger.log($msg)`"}
	cache := newFakeCache()
	opts := testOpts()
	opts.Cache = cache
	problem, err := gritql.Compile(src, opts)
	require.NoError(t, err)

	file := gritql.RichFile{Path: "b.ts", Content: []byte("function f(){ return 1 }")}

	first, err := problem.ExecuteFiles([]gritql.RichFile{file}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, countByType(first, gritql.TypeDoneFile))
	assert.Equal(t, 1, cache.calls)

	second, err := problem.ExecuteFiles([]gritql.RichFile{file}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, countByType(second, gritql.TypeDoneFile))
	assert.Equal(t, 2, cache.calls, "second run must still consult the cache before skipping the match")
}
