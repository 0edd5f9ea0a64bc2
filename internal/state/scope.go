package state

import "github.com/oxhq/gritql/internal/pattern"

// ScopeDef is an alias for pattern.ScopeDef: it lives in that package so
// internal/pattern's Definitions table doesn't need to import internal/state.
type ScopeDef = pattern.ScopeDef

// scopeStack holds every concurrently-live instance of one scope
// definition: a pattern/predicate/function that recurses pushes a new
// frame, and the same variable index addresses different content at
// different depths (spec §3 "Scopes", §9 "Call frames without recursion
// blow-up").
type scopeStack struct {
	def    ScopeDef
	frames [][]*pattern.VariableContent
}

func newScopeStack(def ScopeDef) *scopeStack {
	return &scopeStack{def: def}
}

func (s *scopeStack) push() {
	frame := make([]*pattern.VariableContent, len(s.def.VarNames))
	for i, name := range s.def.VarNames {
		frame[i] = &pattern.VariableContent{Name: name}
	}
	s.frames = append(s.frames, frame)
}

func (s *scopeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scopeStack) top() []*pattern.VariableContent {
	return s.frames[len(s.frames)-1]
}

// Global scope slot indices fixed by the compiler (spec §4.2 stage 4).
const (
	GlobalScope           = 0
	FilenameIndex         = 0
	AbsoluteFilenameIndex = 1
	ProgramIndex          = 2
	NewFilesIndex         = 3
	MatchIndex            = 4
	GritRangeIndex        = 5
)

// GlobalScopeDef is the fixed shape of scope 0 (spec §3 "Scopes").
var GlobalScopeDef = ScopeDef{
	VarNames: []string{"$filename", "$absolute_filename", "$program", "$new_files", "$match", "$grit_range"},
}
