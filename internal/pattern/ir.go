package pattern

// Pattern is the compiled IR sum type (spec §3 "Pattern IR"). Each variant
// below is a concrete struct implementing the marker method; the matcher
// dispatches on concrete type via a type switch rather than a per-variant
// vtable (spec §9 "Dynamic dispatch over IR").
type Pattern interface {
	isPattern()
}

// FieldPattern pairs a grammar field name with the sub-pattern its child
// (or children, for multi-fields) must match.
type FieldPattern struct {
	Field string
	Value Pattern
	// SkipForSnippet marks a field that does not affect matching when the
	// AstNode was produced by snippet compilation (spec §4.3 "Fields
	// marked 'skip for snippet compilation' do not affect matching").
	SkipForSnippet bool
}

// ---- structural ----

// AstNode matches a node of Kind, then each Field against its child.
type AstNode struct {
	Kind   string
	Fields []FieldPattern
}

func (AstNode) isPattern() {}

// AstLeafNode matches a leaf token's text, normalized per-language.
type AstLeafNode struct {
	Kind string
	Text string
}

func (AstLeafNode) isPattern() {}

// List matches an ordered list value element by element; a Dots element
// consumes zero or more non-greedily.
type List struct {
	Patterns []Pattern
}

func (List) isPattern() {}

// ListIndex matches the current value against List and requires it to be a
// list with an element at Index; the element itself is not matched against
// any pattern.
type ListIndex struct {
	List  Pattern
	Index int
}

func (ListIndex) isPattern() {}

// MapEntryPattern pairs a key with the sub-pattern its value must match.
type MapEntryPattern struct {
	Key   string
	Value Pattern
}

// Map matches a ResolvedMap value, entry by entry.
type Map struct {
	Entries []MapEntryPattern
}

func (Map) isPattern() {}

// Accessor matches `container.field`-style projection before applying a
// sub-pattern to the projected value.
type Accessor struct {
	Container Pattern
	Field     string
	Value     Pattern
}

func (Accessor) isPattern() {}

// Range matches a node whose location matches a caller-supplied byte
// range restriction (spec §4.2 "optional file ranges to restrict matching").
type Range struct {
	StartByte, EndByte int
}

func (Range) isPattern() {}

// ---- logical ----

type And struct{ Patterns []Pattern }

func (And) isPattern() {}

type Or struct{ Patterns []Pattern }

func (Or) isPattern() {}

// Any tries each sub-pattern in order; first success wins.
type Any struct{ Patterns []Pattern }

func (Any) isPattern() {}

// Not succeeds iff its sub-pattern fails, on a snapshotted state that is
// always restored.
type Not struct{ Pattern Pattern }

func (Not) isPattern() {}

// Maybe attempts its sub-pattern and always succeeds, keeping bindings
// only if the attempt succeeded.
type Maybe struct{ Pattern Pattern }

func (Maybe) isPattern() {}

// If evaluates Cond as a predicate; Then runs if it held, Else (optional)
// otherwise.
type If struct {
	Cond Predicate
	Then Pattern
	Else Pattern
}

func (If) isPattern() {}

// Where matches Pattern, then evaluates Cond; both must succeed.
type Where struct {
	Pattern Pattern
	Cond    Predicate
}

func (Where) isPattern() {}

// ---- locational ----

// Contains visits descendants of the current node in document order,
// succeeding on the first that matches Pattern. Until, if set, stops
// descent through nodes that match it.
type Contains struct {
	Pattern Pattern
	Until   Pattern
}

func (Contains) isPattern() {}

// Includes is a textual variant of Contains: when Pattern is a
// StringConstant, the current value's text must contain it as a substring
// (used for comment/string bodies); any other Pattern is matched against the
// current value itself.
type Includes struct{ Pattern Pattern }

func (Includes) isPattern() {}

// Within requires an ancestor of the current node to match Pattern.
type Within struct{ Pattern Pattern }

func (Within) isPattern() {}

// After/Before require the immediately following/preceding named sibling
// to match Pattern.
type After struct{ Pattern Pattern }

func (After) isPattern() {}

type Before struct{ Pattern Pattern }

func (Before) isPattern() {}

// Every requires every element of a list value to match Pattern.
type Every struct{ Pattern Pattern }

func (Every) isPattern() {}

// Some requires at least one element of a list value to match Pattern.
type Some struct{ Pattern Pattern }

func (Some) isPattern() {}

// Dots consumes zero or more list elements non-greedily; only legal
// directly inside a List's Patterns.
type Dots struct{}

func (Dots) isPattern() {}

// Sequential runs each sub-pattern against the whole file set in order,
// independent of match/fail outcome (used by the auto-wrap stage to splice
// in before_each_file/after_each_file calls around the user pattern).
type Sequential struct{ Patterns []Pattern }

func (Sequential) isPattern() {}

// ---- textual ----

// StringConstant matches a leaf's exact text.
type StringConstant struct{ Value string }

func (StringConstant) isPattern() {}

// SnippetAlternative is one (sort, subtree) pairing produced when a code
// snippet parses to different sorts under different snippet contexts
// (spec §4.2 stage 6).
type SnippetAlternative struct {
	Sort    string
	SubTree Pattern
}

// CodeSnippet matches if the current value equals any alternative's
// SubTree pattern.
type CodeSnippet struct {
	Raw          string
	Alternatives []SnippetAlternative
}

func (CodeSnippet) isPattern() {}

// Regex matches a leaf's text against a compiled pattern, optionally
// binding named capture groups.
type Regex struct {
	Source      string
	CaptureVars map[string]VarRef
}

func (Regex) isPattern() {}

// Dynamic is a snippet whose pieces interleave literal text with bound
// variables and built-in calls; it is only ever used as an RHS (spec §3
// "Snippet — an ordered list of ResolvedSnippet pieces"), evaluated (not
// matched) into a ResolvedSnippet value. Each piece is a StringConstant, a
// Variable reference, a CallBuiltIn, or a nested Dynamic.
type Dynamic struct{ Pieces []Pattern }

func (Dynamic) isPattern() {}

// Like performs a fuzzy structural comparison against an exemplar snippet,
// within a similarity Threshold in [0,1].
type Like struct {
	Example   Pattern
	Threshold float64
}

func (Like) isPattern() {}

// ---- variable / flow ----

// Variable references a (scope, index) slot: unbound binds and succeeds;
// bound requires equivalence (spec §4.3 "Variable").
type Variable struct{ Ref VarRef }

func (Variable) isPattern() {}

// Assignment matches Value, then assigns the result to Var.
type Assignment struct {
	Var   VarRef
	Value Pattern
}

func (Assignment) isPattern() {}

// Accumulate matches Value, then appends its textual rendering to List's
// binding, recording an Insert effect at the list's end.
type Accumulate struct {
	List  VarRef
	Value Pattern
}

func (Accumulate) isPattern() {}

// Rewrite matches Left, computes Right as a ResolvedPattern, and schedules
// a Rewrite effect on the innermost binding of the matched value.
type Rewrite struct {
	Left  Pattern
	Right RHS
}

func (Rewrite) isPattern() {}

// RHS is the right-hand side of a Rewrite/Accumulate: a pattern tree that
// is evaluated to a ResolvedPattern rather than matched against a value.
// Snippets, string constants, and dynamic pieces all double as RHS nodes.
type RHS = Pattern

// Log emits an AnalysisLog record as a side effect and always succeeds.
type Log struct {
	Message  string
	Variadic []Pattern
}

func (Log) isPattern() {}

// Limit succeeds up to N times for this pattern instance; further attempts
// fail without trying Pattern. The counter is global across the run, unless
// Limit sits inside a Contains, in which case each Contains traversal
// restarts its own counter (spec §9 open question 2). The compiler always
// places a Limit in the IR as *Limit (never by value) because the matcher
// keys its counter on the node's pointer identity rather than a separately
// assigned id.
type Limit struct {
	Pattern Pattern
	N       int
}

func (*Limit) isPattern() {}

// Bubble executes Def's body in a fresh local scope so inner variables
// don't leak into the caller, passing Args in as the definition's
// parameters.
type Bubble struct {
	Def  int
	Args []Pattern
}

func (Bubble) isPattern() {}

// Call invokes a pattern/predicate definition by index with positional or
// named Args bound to its parameters.
type Call struct {
	Def  int
	Args []Arg
}

func (Call) isPattern() {}

// Arg is one argument at a call site; Name is "" for positional args.
type Arg struct {
	Name  string
	Value Pattern
}

// CallBuiltIn invokes a registered built-in function by name.
type CallBuiltIn struct {
	Name string
	Args []Arg
}

func (CallBuiltIn) isPattern() {}

// CallFunction invokes a foreign function by index, passing bound argument
// text to the host for evaluation.
type CallFunction struct {
	Def  int
	Args []Arg
}

func (CallFunction) isPattern() {}

// CallForeignFunction is an alias kept distinct from CallFunction so the
// compiler can record whether a call site resolved to an in-DSL function
// definition or an opaque foreign one (spec §3 lists both variants).
type CallForeignFunction struct {
	Def  int
	Args []Arg
}

func (CallForeignFunction) isPattern() {}

// Callback is a host-supplied function invoked with the current resolved
// value; its boolean return is honored directly.
type Callback func(current *ResolvedPattern) (bool, error)

// CallbackPattern wraps a host Callback as a Pattern IR node.
type CallbackPattern struct{ Fn Callback }

func (CallbackPattern) isPattern() {}

// ---- file-level ----

// File succeeds iff the current value is a file, Name (if non-nil) matches
// its path without requiring a parse, and Body matches its parsed root.
type File struct {
	Name Pattern
	Body Pattern
}

func (File) isPattern() {}

// Files matches a ResolvedFiles value; Pattern applies to each file.
type Files struct{ Pattern Pattern }

func (Files) isPattern() {}

// ---- constants ----

// Top matches any value unconditionally.
type Top struct{}

func (Top) isPattern() {}

// Bottom never matches.
type Bottom struct{}

func (Bottom) isPattern() {}

// Underscore matches any value like Top but marks the binding site as
// anonymous (the `$_` convention); it never constrains a variable slot.
type Underscore struct{}

func (Underscore) isPattern() {}

// UndefinedPattern matches a BindConstant Undefined value.
type UndefinedPattern struct{}

func (UndefinedPattern) isPattern() {}

type IntConstant struct{ Value int64 }

func (IntConstant) isPattern() {}

type FloatConstant struct{ Value float64 }

func (FloatConstant) isPattern() {}

type BoolConstant struct{ Value bool }

func (BoolConstant) isPattern() {}
