package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/lang/plain"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := lang.NewRegistry()
	r.Register(plain.New())

	l, ok := r.Lookup("plain")
	assert.True(t, ok)
	assert.Equal(t, "plain", l.Name())

	_, ok = r.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestRegistryNames(t *testing.T) {
	r := lang.NewRegistry()
	r.Register(plain.New())
	assert.Equal(t, []string{"plain"}, r.Names())
}
