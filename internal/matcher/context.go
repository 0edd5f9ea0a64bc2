// Package matcher executes compiled Pattern/Predicate IR against target
// ASTs (spec §4.3). Its core contract: given an IR node, the current
// ResolvedPattern, and a mutable State, execute returns matched/not
// matched, with side effects (bindings, Effects, file creation) visible
// only on success — a failing attempt rolls back via State.Snapshot/Restore.
package matcher

import (
	"github.com/oxhq/gritql/internal/analysislog"
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
)

// Context is the read-only environment an Execute call runs in: the
// target language, the Problem's compiled definitions, the built-in
// table, a diagnostics sink, and a cancellation flag (spec §5).
type Context struct {
	Lang     lang.Language
	Defs     *pattern.Definitions
	Builtins *builtin.Table
	Log      *analysislog.Collector

	// Foreign evaluates CallForeignFunction bodies against the host
	// runtime (spec §4.5 "Foreign-function definitions"); nil disables
	// foreign calls, which then fail with a RuntimeError.
	Foreign builtin.ForeignEvaluator

	// Cancelled is polled every PollEvery dispatch steps; nil disables
	// cancellation.
	Cancelled func() bool
	PollEvery int

	// LimitCounts tracks how many times each Limit node (identified by its
	// pointer identity) has succeeded outside of any enclosing Contains
	// traversal, for a Limit that applies globally across the run (spec
	// §4.3 "Limit(p, N): succeed up to N times globally").
	//
	// A Limit nested inside a Contains is scoped to that one traversal
	// instead (spec §9 open question 2): executeContains pushes a fresh
	// counter layer onto limitScopes before walking its worklist and pops
	// it again afterward, so each contains restarts its own budget rather
	// than sharing LimitCounts with sibling or outer traversals.
	LimitCounts map[*pattern.Limit]int
	limitScopes []map[*pattern.Limit]int

	dispatchCount int
}

// limitScope returns the counter table a Limit node currently in scope
// should use: the innermost enclosing Contains traversal's counter if one
// is active, otherwise the run-global table.
func (c *Context) limitScope() map[*pattern.Limit]int {
	if n := len(c.limitScopes); n > 0 {
		return c.limitScopes[n-1]
	}
	return c.LimitCounts
}

// pushLimitScope/popLimitScope bracket one Contains traversal (spec §9 open
// question 2: "each contains restarts its own limit counter").
func (c *Context) pushLimitScope() {
	c.limitScopes = append(c.limitScopes, make(map[*pattern.Limit]int))
}

func (c *Context) popLimitScope() {
	c.limitScopes = c.limitScopes[:len(c.limitScopes)-1]
}

// NewContext builds a Context with a fresh LimitCounts table.
func NewContext(l lang.Language, defs *pattern.Definitions, bi *builtin.Table, log *analysislog.Collector, cancelled func() bool, pollEvery int) *Context {
	if pollEvery <= 0 {
		pollEvery = 256
	}
	return &Context{
		Lang: l, Defs: defs, Builtins: bi, Log: log,
		Cancelled: cancelled, PollEvery: pollEvery,
		LimitCounts: make(map[*pattern.Limit]int),
	}
}

// ErrCancelled is returned by Execute when the cancellation flag was
// observed true at a poll point.
var ErrCancelled = &cancelErr{}

type cancelErr struct{}

func (*cancelErr) Error() string { return "matcher: cancelled" }

// poll increments the dispatch counter and checks cancellation every
// PollEvery steps (spec §5 "polled between pattern-IR node executions").
func (c *Context) poll() error {
	c.dispatchCount++
	if c.Cancelled == nil {
		return nil
	}
	if c.dispatchCount%c.PollEvery == 0 && c.Cancelled() {
		return ErrCancelled
	}
	return nil
}
