package state

import (
	"math/rand"

	"github.com/oxhq/gritql/internal/pattern"
)

// State is the transient, single-owner execution state of one matcher run
// (spec §4.4). It borrows the Problem's definitions (not held here) and
// owns the binding stacks, file registry, and effect log for the file(s)
// currently being matched.
type State struct {
	scopes []*scopeStack
	Files  *FileRegistry
	Effects []Effect
	Rand   *rand.Rand

	// ActiveFile is the FilePtr of the file currently being matched (spec
	// §5 "per-file single-threaded"); the matcher stamps every scheduled
	// Effect with it so the linearizer can group effects per file at close
	// time without threading a file parameter through every IR dispatch.
	ActiveFile FilePtr

	// Cancelled is polled between IR-dispatch steps (spec §5 "Suspension
	// points"); nil means never cancelled.
	Cancelled func() bool
}

// New builds a State with one scopeStack per ScopeDef, in definition-index
// order (index 0 is always the global scope).
func New(scopeDefs []ScopeDef, seed int64) *State {
	scopes := make([]*scopeStack, len(scopeDefs))
	for i, def := range scopeDefs {
		scopes[i] = newScopeStack(def)
	}
	return &State{
		scopes: scopes,
		Files:  NewFileRegistry(),
		Rand:   rand.New(rand.NewSource(seed)),
	}
}

// PushScope instantiates a fresh frame for the given scope id (a call into
// that pattern/predicate/function definition).
func (s *State) PushScope(scope int) { s.scopes[scope].push() }

// PopScope discards the innermost frame for the given scope id.
func (s *State) PopScope(scope int) { s.scopes[scope].pop() }

// Var returns the VariableContent for (scope, index) in the innermost
// currently-live frame of that scope.
func (s *State) Var(ref pattern.VarRef) *pattern.VariableContent {
	return s.scopes[ref.Scope].top()[ref.Index]
}

// TraceVar follows a chain of mirror assignments to the canonical storage
// slot (spec §4.4 "trace_var(v): follows assignment mirror chains").
func (s *State) TraceVar(ref pattern.VarRef) pattern.VarRef {
	seen := map[pattern.VarRef]bool{}
	for {
		if seen[ref] {
			return ref // defensive: break a mirror cycle rather than loop forever
		}
		seen[ref] = true
		vc := s.Var(ref)
		if len(vc.Mirrors) == 0 {
			return ref
		}
		ref = vc.Mirrors[0]
	}
}

// Assign sets a variable's value and propagates to every mirror slot
// (spec "Supplemented features: variable mirrors").
func (s *State) Assign(ref pattern.VarRef, v *pattern.ResolvedPattern) {
	canonical := s.TraceVar(ref)
	vc := s.Var(canonical)
	vc.Assign(v)
	for _, m := range vc.Mirrors {
		s.Var(m).Assign(v)
	}
}

// ScopeVars returns every variable slot currently live in the innermost
// frame of the given scope, in declaration order. Used by a host
// reporting which variables a top-level match bound (spec §6 MatchResult
// "variables list").
func (s *State) ScopeVars(scope int) []*pattern.VariableContent {
	return s.scopes[scope].top()
}

// PushEffect appends an effect to the log.
func (s *State) PushEffect(e Effect) { s.Effects = append(s.Effects, e) }

// Snapshot is the constant-time marker spec §4.4 describes: sizes of the
// bindings stack, effects log, and file registry.
type Snapshot struct {
	frameLens  []int
	effectsLen int
	filesLen   int
}

// Snapshot records a restore point. It does not copy variable content, so
// in-place mutation of a pre-existing slot survives a restore — callers
// that need full reversibility rely on mirrors/history instead (spec
// §4.4).
func (s *State) Snapshot() Snapshot {
	frameLens := make([]int, len(s.scopes))
	for i, sc := range s.scopes {
		frameLens[i] = len(sc.frames)
	}
	return Snapshot{frameLens: frameLens, effectsLen: len(s.Effects), filesLen: s.Files.Len()}
}

// Restore truncates effects and pops binding frames created since the
// snapshot, and truncates any file registry growth since the snapshot.
func (s *State) Restore(snap Snapshot) {
	s.Effects = s.Effects[:snap.effectsLen]
	for i, sc := range s.scopes {
		if i < len(snap.frameLens) {
			sc.frames = sc.frames[:snap.frameLens[i]]
		}
	}
	s.Files.truncateFiles(snap.filesLen)
}
