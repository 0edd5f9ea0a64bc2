package plain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/gritql/internal/lang/plain"
)

func TestParseSplitsIntoLinesAndWords(t *testing.T) {
	l := plain.New()
	tree, diags, err := l.Parser().ParseFile([]byte("hello world\nfoo"), "doc.md")
	require.NoError(t, err)
	assert.Empty(t, diags)

	root := tree.Root()
	assert.Equal(t, "document", root.Kind())
	require.Equal(t, 2, root.NamedChildCount())

	line0 := root.NamedChild(0)
	assert.Equal(t, "line", line0.Kind())
	assert.Equal(t, "hello world", line0.Text())
	require.Equal(t, 2, line0.NamedChildCount())
	assert.Equal(t, "hello", line0.NamedChild(0).Text())
	assert.Equal(t, "world", line0.NamedChild(1).Text())

	line1 := root.NamedChild(1)
	assert.Equal(t, "foo", line1.Text())
}

func TestParseEmptySource(t *testing.T) {
	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte(""), "doc.md")
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Root().NamedChildCount())
}

func TestLanguageTraitBasics(t *testing.T) {
	l := plain.New()
	assert.Equal(t, "plain", l.Name())
	assert.True(t, l.IsMetavariableSort("word"))
	assert.False(t, l.IsMetavariableSort("line"))
	assert.True(t, l.IsDots("..."))
	assert.True(t, l.IsUnderscore("_"))
	assert.Equal(t, byte('$'), l.MetavariablePrefix())
	assert.Equal(t, "<!-- grit-ignore -->", l.SuppressionComment())
}

func TestChildByFieldNameMissing(t *testing.T) {
	l := plain.New()
	tree, _, err := l.Parser().ParseFile([]byte("a b"), "doc.md")
	require.NoError(t, err)
	assert.Nil(t, tree.Root().ChildByFieldName("nonexistent"))
}
