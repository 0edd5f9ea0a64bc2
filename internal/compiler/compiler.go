// Package compiler lowers GritQL pattern source into the Pattern/Predicate
// IR internal/matcher executes (spec §4.2). It runs the eight compiler
// stages in order: parse, library filtering, definition indexing,
// variable-location table, body compilation, snippet compilation,
// auto-wrap, hash. Snippet compilation (stage 6) and variable-location
// recording (stage 4) happen inline during body compilation (stage 5)
// rather than as a separate tree walk, since both need the same per-scope
// lowerer state body compilation already carries.
package compiler

import (
	"fmt"

	"github.com/oxhq/gritql/internal/builtin"
	"github.com/oxhq/gritql/internal/compiler/grammar"
	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// Source is one file of GritQL pattern text to compile: the user's pattern
// file, or a library file contributed for reachability-based filtering
// (spec §4.2 stage 2).
type Source struct {
	Path string
	Text string
}

// Options configures a Compile call.
type Options struct {
	Lang     lang.Language
	Builtins *builtin.Table
	// Library is additional pattern/predicate/function definitions available
	// to the main source but only kept in the final Definitions table if
	// transitively reachable from its top-level pattern (spec §4.2 stage 2
	// "Library filtering").
	Library []Source
	// Range restricts matching to a byte span of each file, intersected
	// with the auto-wrapped body (spec §4.2 "optional file ranges").
	Range *pattern.Range
}

// Result is everything a Problem needs after compiling one pattern file.
type Result struct {
	Defs         *pattern.Definitions
	Hash         string
	VarLocations []pattern.VariableSourceLocations
}

// Compile runs all eight stages over main plus any library sources.
func Compile(main Source, opts Options) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*core.Error); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()

	parser, perr := grammar.NewParser()
	if perr != nil {
		return nil, core.Wrap(core.KindInvariant, "malformed DSL grammar", perr)
	}

	// Stage 1: Parse.
	mainProg, perr := parser.ParseString(main.Path, main.Text)
	if perr != nil {
		return nil, core.Wrap(core.KindParseError, "parse failed: "+main.Path, perr)
	}
	libProgs := make([]*libSource, 0, len(opts.Library))
	for _, lib := range opts.Library {
		prog, lerr := parser.ParseString(lib.Path, lib.Text)
		if lerr != nil {
			return nil, core.Wrap(core.KindParseError, "parse failed: "+lib.Path, lerr)
		}
		libProgs = append(libProgs, &libSource{path: lib.Path, prog: prog})
	}

	c := &compilation{
		lang:     opts.Lang,
		builtins: opts.Builtins,
		defs:     map[string]defSlot{},
		varLocs:  map[pattern.VarRef][]pattern.ByteSpan{},
	}

	// Scope 0 is always the global scope (state.GlobalScope), so it must be
	// pushed before any definition claims a scope index via c.index. Its six
	// fixed slots are seeded first so their indices match globalVarIndex;
	// any additional top-level variable gets the next free index.
	topVars := newVarOrder(nil)
	for _, n := range globalVarNames {
		topVars.seed(n)
	}
	topVars.collectOr(mainProg.Top)
	c.scopeDefs = append(c.scopeDefs, state.ScopeDef{VarNames: topVars.names})

	// Stage 2/3: gather every candidate definition (main + library), then
	// prune to what's reachable from the main program's top-level pattern,
	// assigning final indices only to the survivors.
	all := collectDefinitions(main.Path, mainProg, libProgs)
	reachable := reachableNames(mainProg, all)
	c.index(all, reachable)

	// Stage 4/5/6: compile every surviving definition's body, then the
	// top-level pattern, each in its own scope.
	for _, d := range all {
		if _, ok := reachable[d.name]; !ok {
			continue
		}
		c.compileDefinitionBody(d)
	}

	topLowerer := &lowerer{lang: c.lang, builtins: c.builtins, defs: c.defs, scope: state.GlobalScope, vars: topVars, varLocs: c.varLocs, file: main.Path}
	topPattern := topLowerer.lowerOr(mainProg.Top)

	// Stage 7: Auto-wrap.
	wrapOpts := autoWrapOptions{Range: opts.Range}
	if slot, ok := c.defs["before_each_file"]; ok && slot.kind == defPattern {
		wrapOpts.BeforeEach = &slot.index
	}
	if slot, ok := c.defs["after_each_file"]; ok && slot.kind == defPattern {
		wrapOpts.AfterEach = &slot.index
	}
	top := autoWrap(topPattern, wrapOpts)

	defsTable := &pattern.Definitions{
		Patterns:   c.patterns,
		Predicates: c.predicates,
		Functions:  c.functions,
		ScopeDefs:  c.scopeDefs,
		TopLevel:   top,
	}

	// Stage 8: Hash.
	h := hashSource([]byte(main.Text))

	return &Result{Defs: defsTable, Hash: h, VarLocations: varLocTable(c.varLocs)}, nil
}

func varLocTable(m map[pattern.VarRef][]pattern.ByteSpan) []pattern.VariableSourceLocations {
	out := make([]pattern.VariableSourceLocations, 0, len(m))
	for ref, spans := range m {
		out = append(out, pattern.VariableSourceLocations{
			Name:      fmt.Sprintf("scope%d#%d", ref.Scope, ref.Index),
			Locations: spans,
		})
	}
	return out
}
