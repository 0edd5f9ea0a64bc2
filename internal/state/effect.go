// Package state implements the State and FileRegistry described in spec
// §4.4: per-scope variable binding stacks, an append-only arena of file
// versions, and the effect log that the linearizer consumes at file close
// time. It sits above internal/pattern and internal/lang in the dependency
// order from spec §2.
package state

import "github.com/oxhq/gritql/internal/pattern"

// EffectKind distinguishes an Insert (zero-width point at the binding's
// end) from a Rewrite (replaces the binding's whole range).
type EffectKind int

const (
	EffectInsert EffectKind = iota
	EffectRewrite
)

// Effect is a scheduled textual change (spec §3 "Effect"). Binding
// identifies the target range; Replacement is computed once, at the time
// the effect is scheduled, and is not re-evaluated later even if the
// variables it references change again before file close.
type Effect struct {
	Binding     pattern.Binding
	Replacement *pattern.ResolvedPattern
	Kind        EffectKind

	// FilePtr identifies which file version this effect targets, so the
	// linearizer can group effects per file at close time.
	File FilePtr
}
