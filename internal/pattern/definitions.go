package pattern

// Definition is one compiled pattern or predicate definition (spec §4.2
// stage 3 "Definition indexing"): a scope id for its parameters/locals,
// the parameter slots in declaration order, and its compiled body. Pattern
// definitions have a Pattern body; predicate definitions have a Predicate
// body — exactly one of Body/PredBody is set.
type Definition struct {
	Name     string
	Scope    int
	Params   []VarRef
	Body     Pattern
	PredBody Predicate
	File     string // declaring file, for the variable-location table
}

// FunctionDefinition is a foreign-function definition (spec §4.5): a
// parameter list and an opaque byte source the host evaluates at call
// time.
type FunctionDefinition struct {
	Name       string
	ParamNames []string
	Source     []byte
	File       string
}

// Definitions is the Problem-owned table of every compiled definition,
// indexed by the integer ids the compiler assigned in stage 3.
type Definitions struct {
	Patterns   []*Definition
	Predicates []*Definition
	Functions  []*FunctionDefinition
	ScopeDefs  []ScopeDef

	// TopLevel is the compiled top-level pattern after auto-wrap (spec
	// §4.2 stage 7).
	TopLevel Pattern
}

// VariableSourceLocations is the IDE-facing record spec §4.2 stage 4
// describes: every source range at which a variable name occurs.
type VariableSourceLocations struct {
	Name      string
	File      string
	Locations []ByteSpan
}

type ByteSpan struct{ Start, End int }

// ScopeDef is the compile-time shape of one scope: the variable names it
// declares, in slot order (spec §4.2 stage 4 "Variable-location table").
// Lives in this package rather than internal/state so internal/compiler's
// Definitions table doesn't need to import state.
type ScopeDef struct {
	VarNames []string
}
