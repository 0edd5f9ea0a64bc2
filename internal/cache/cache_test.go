package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenVariants(t *testing.T) {
	tests := []struct {
		name  string
		dsn   func(t *testing.T) string
		debug bool
	}{
		{name: "memory database", dsn: func(t *testing.T) string { return ":memory:" }},
		{name: "file database with debug logging", debug: true, dsn: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "cache.db")
		}},
		{name: "nested directory is created", dsn: func(t *testing.T) string {
			return filepath.Join(t.TempDir(), "a", "b", "cache.db")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(tt.dsn(t), tt.debug)
			require.NoError(t, err)
			require.NotNil(t, c)
			defer c.Close()
		})
	}
}

func TestHitMissAndRecord(t *testing.T) {
	c, err := Open(":memory:", false)
	require.NoError(t, err)
	defer c.Close()

	hit, err := c.Hit("filehash1", "patternhash1")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.RecordNoMatch("filehash1", "patternhash1"))

	hit, err = c.Hit("filehash1", "patternhash1")
	require.NoError(t, err)
	assert.True(t, hit)

	// A different pattern against the same file is still a miss.
	hit, err = c.Hit("filehash1", "patternhash2")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRecordNoMatchIsIdempotent(t *testing.T) {
	c, err := Open(":memory:", false)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.RecordNoMatch("f", "p"))
	require.NoError(t, c.RecordNoMatch("f", "p"))

	hit, err := c.Hit("f", "p")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestInvalidateDropsOnlyThatFile(t *testing.T) {
	c, err := Open(":memory:", false)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.RecordNoMatch("f1", "p1"))
	require.NoError(t, c.RecordNoMatch("f2", "p1"))

	require.NoError(t, c.Invalidate("f1"))

	hit, err := c.Hit("f1", "p1")
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Hit("f2", "p1")
	require.NoError(t, err)
	assert.True(t, hit)
}
