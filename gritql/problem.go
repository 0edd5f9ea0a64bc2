// Package gritql is the root public API (spec §6): it compiles a pattern
// into a Problem and runs it against files, turning the matcher's raw
// State/effect output into the MatchResult envelope a host consumes.
// Grounded on the teacher's top-level orchestration split between
// cli.Runner (single entry point wrapping a provider) and mcp's
// request/response envelope — here collapsed into one package since the
// core has no transport of its own.
package gritql

import (
	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/compiler"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
)

// NoMatchCache is the cache interface the core consumes (spec §6 "Cache
// interface consumed by the core"). internal/cache.Cache satisfies this
// directly; a host may substitute any other implementation (including
// none, by leaving Options.Cache nil).
type NoMatchCache interface {
	Hit(fileHash, patternHash string) (bool, error)
	RecordNoMatch(fileHash, patternHash string) error
}

// Options configures a Compile call: the compiler options (language,
// builtins, library sources, range restriction) plus the ambient
// concerns a Problem needs at execute time.
type Options struct {
	compiler.Options

	// Seed fixes each run's State.Rand so a run is reproducible given the same
	// pattern and inputs (spec §5 "PRNG seed per Problem is fixed").
	Seed int64

	// Cache, if non-nil, is consulted before matching each file and
	// updated when a file produces no match (spec §5 "consulted before
	// matching").
	Cache NoMatchCache

	// Foreign evaluates CallForeignFunction bodies (spec §4.5); nil
	// disables foreign calls.
	Foreign builtin.ForeignEvaluator

	// PollEvery is how many IR-dispatch steps elapse between
	// cancellation checks (spec §5); 0 uses matcher.Context's default.
	PollEvery int
}

// Problem is a compiled pattern ready to execute against files (spec §4.7,
// §6 "Problem.execute APIs").
type Problem struct {
	defs      *pattern.Definitions
	hash      string
	lang      lang.Language
	builtins  *builtin.Table
	foreign   builtin.ForeignEvaluator
	seed      int64
	cache     NoMatchCache
	pollEvery int
}

// Compile compiles main (plus any library sources in opts) into a Problem.
func Compile(main compiler.Source, opts Options) (*Problem, error) {
	res, err := compiler.Compile(main, opts.Options)
	if err != nil {
		return nil, err
	}
	return &Problem{
		defs:      res.Defs,
		hash:      res.Hash,
		lang:      opts.Lang,
		builtins:  opts.Builtins,
		foreign:   opts.Foreign,
		seed:      opts.Seed,
		cache:     opts.Cache,
		pollEvery: opts.PollEvery,
	}, nil
}

// Hash is the pattern's content hash (spec §4.2 stage 8), the "pattern
// hash" half of the no-match cache key.
func (p *Problem) Hash() string { return p.hash }
