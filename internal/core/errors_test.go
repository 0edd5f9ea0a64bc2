package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/gritql/internal/core"
)

func TestIsRecoverableByKind(t *testing.T) {
	cases := []struct {
		kind        core.Kind
		recoverable bool
	}{
		{core.KindParseError, true},
		{core.KindMatchFailure, true},
		{core.KindRuntimeError, true},
		{core.KindCompileError, false},
		{core.KindInvariant, false},
	}
	for _, tc := range cases {
		err := core.New(tc.kind, "boom")
		assert.Equal(t, tc.recoverable, core.IsRecoverable(err), tc.kind.String())
	}
}

func TestIsRecoverableFalseForNonCoreError(t *testing.T) {
	assert.False(t, core.IsRecoverable(errors.New("plain")))
}

func TestWrapUnwrapsCause(t *testing.T) {
	cause := errors.New("underlying")
	err := core.Wrap(core.KindRuntimeError, "context", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "underlying")
	assert.Contains(t, err.Error(), "context")
}

func TestAtAttachesPosition(t *testing.T) {
	err := core.At(core.New(core.KindParseError, "bad token"), core.Position{Line: 3, Column: 5})
	assert.Contains(t, err.Error(), "3:5")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "ParseError", core.KindParseError.String())
	assert.Equal(t, "Unknown", core.Kind(99).String())
}
