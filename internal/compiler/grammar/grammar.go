// Package grammar defines the typed AST for GritQL pattern source, parsed
// with participle the same way the stencil .lift grammar is (recursive
// struct tags, PEG-style alternation ordered most-specific-first). Parsing
// this grammar never inspects a target language; it only recognizes the
// DSL's own syntax (backtick snippets, `$metavariable`s, `where`/`=>`, the
// locational/logical keywords).
package grammar

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var gritLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Snippet", Pattern: "`(?:[^`\\\\]|\\\\.)*`"},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Spread", Pattern: `\.\.\.`},
	{Name: "OpMulti", Pattern: `=>|<:|>=|<=|!=|==|\+=`},
	{Name: "Punct", Pattern: `[{}\[\]()=.,:$!<>]`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
})

// Program is the root of a GritQL pattern file: an optional language
// header, zero or more library-style definitions, and the top-level
// pattern the file exists to express (spec §4.2 stage 1 "Parse").
type Program struct {
	Pos         lexer.Position
	Language    *string       `( "language" @Ident )?`
	Definitions []*Definition `@@*`
	Top         *OrPattern    `@@?`
}

// Definition is one of the three definition kinds the compiler indexes in
// stage 3: a pattern definition, a predicate definition, or a
// foreign-function definition (a function body whose source is opaque to
// the DSL and evaluated by the host at call time).
type Definition struct {
	Pos       lexer.Position
	Pattern   *PatternDef  `  "pattern" @@`
	Predicate *PredicateDef `| "predicate" @@`
	Function  *FunctionDef `| "function" @@`
}

type PatternDef struct {
	Pos    lexer.Position
	Name   string     `@Ident "("`
	Params []string   `( "$" @Ident ( "," "$" @Ident )* )? ")" "{"`
	Body   *OrPattern `@@ "}"`
}

type PredicateDef struct {
	Pos    lexer.Position
	Name   string       `@Ident "("`
	Params []string     `( "$" @Ident ( "," "$" @Ident )* )? ")" "{"`
	Body   *PredicateOr `@@ "}"`
}

// FunctionDef carries a raw byte body the compiler hands to the host's
// ForeignEvaluator unparsed (spec §4.5 "Foreign-function definitions").
type FunctionDef struct {
	Pos    lexer.Position
	Name   string   `@Ident "("`
	Params []string `( "$" @Ident ( "," "$" @Ident )* )? ")" "{"`
	Body   string   `@Snippet "}"`
}

// ---- pattern expression grammar ----

// OrPattern / AndPattern encode `or`/`and` with the usual precedence, both
// left-associative and folded into And/Or IR nodes by the compiler.
type OrPattern struct {
	Pos   lexer.Position
	Left  *AndPattern   `@@`
	Rest  []*AndPattern `( "or" @@ )*`
}

type AndPattern struct {
	Pos  lexer.Position
	Left  *WherePattern   `@@`
	Rest  []*WherePattern `( "and" @@ )*`
}

// WherePattern attaches an optional `where { ... }` predicate clause to a
// primary pattern (spec §4.3 "Where(p, cond)").
type WherePattern struct {
	Pos     lexer.Position
	Primary *Primary     `@@`
	Cond    *PredicateOr `( "where" "{" @@ "}" )?`
	Rewrite *RHSExpr     `( "=>" @@ )?`
}

// Primary is every non-infix pattern form.
type Primary struct {
	Pos         lexer.Position
	Not         *Primary    `  "not" @@`
	Maybe       *Primary    `| "maybe" @@`
	Contains    *ContainsOp `| "contains" @@`
	Within      *Primary    `| "within" @@`
	After       *Primary    `| "after" @@`
	Before      *Primary    `| "before" @@`
	Every       *Primary    `| "every" @@`
	Some        *Primary    `| "some" @@`
	Limit       *LimitOp    `| "limit" @@`
	Paren       *OrPattern  `| "(" @@ ")"`
	List        *ListPat    `| @@`
	Snippet     *string     `| @Snippet`
	Str         *string     `| @String`
	Float       *float64    `| @Float`
	Int         *int64      `| @Int`
	Underscore  bool        `| @"_"`
	Dots        bool        `| @Spread`
	Variable    *string     `| "$" @Ident`
	Call        *CallExpr   `| @@`
}

type ContainsOp struct {
	Pos   lexer.Position
	Inner *Primary `@@`
	Until *Primary `( "until" @@ )?`
}

type LimitOp struct {
	Pos   lexer.Position
	N     int64    `@Int`
	Inner *Primary `@@`
}

type ListPat struct {
	Pos   lexer.Position
	Items []*OrPattern `"[" ( @@ ( "," @@ )* )? "]"`
}

// CallExpr invokes a pattern/predicate definition, a built-in, or a
// foreign function, positionally or with named arguments; the compiler
// disambiguates by consulting the definition table built in stage 3.
type CallExpr struct {
	Pos  lexer.Position
	Name string    `@Ident "("`
	Args []*CallArg `( @@ ( "," @@ )* )? ")"`
}

type CallArg struct {
	Pos   lexer.Position
	Name  *string    `( @Ident ":" )?`
	Value *OrPattern `@@`
}

// ---- RHS / snippet grammar ----

// RHSExpr is a Rewrite/Accumulate right-hand side: a snippet, a variable,
// a built-in call, a literal, or a list of such (spec §3 "RHS").
type RHSExpr struct {
	Pos      lexer.Position
	Snippet  *string   `  @Snippet`
	Str      *string   `| @String`
	Float    *float64  `| @Float`
	Int      *int64    `| @Int`
	Variable *string   `| "$" @Ident`
	Call     *CallExpr `| @@`
	List     []*RHSExpr `| "[" ( @@ ( "," @@ )* )? "]"`
}

// ---- predicate grammar ----

type PredicateOr struct {
	Pos  lexer.Position
	Left *PredicateAnd   `@@`
	Rest []*PredicateAnd `( "or" @@ )*`
}

type PredicateAnd struct {
	Pos  lexer.Position
	Left *PredicatePrimary   `@@`
	Rest []*PredicatePrimary `( "and" @@ )*`
}

type PredicatePrimary struct {
	Pos      lexer.Position
	Not      *PredicatePrimary `  "not" @@`
	Paren    *PredicateOr      `| "(" @@ ")"`
	Match    *MatchPred        `| @@`
	Equal    *EqualPred        `| @@`
	Assign   *AssignPred       `| @@`
	Accum    *AccumPred        `| @@`
	Rewrite  *RewritePred      `| @@`
	Call     *CallExpr         `| @@`
	BoolTrue bool              `| @"true"`
	BoolFals bool              `| @"false"`
}

// MatchPred is GritQL's `<:` operator: `operand <: pattern`.
type MatchPred struct {
	Pos     lexer.Position
	Operand *RHSExpr   `@@ "<:"`
	Pattern *OrPattern `@@`
}

type EqualPred struct {
	Pos   lexer.Position
	Left  *RHSExpr `@@ "=="`
	Right *RHSExpr `@@`
}

type AssignPred struct {
	Pos   lexer.Position
	Var   string     `"$" @Ident "="`
	Value *OrPattern `@@`
}

type AccumPred struct {
	Pos   lexer.Position
	Var   string     `"$" @Ident "+="`
	Value *OrPattern `@@`
}

type RewritePred struct {
	Pos   lexer.Position
	Left  *OrPattern `@@ "=>"`
	Right *RHSExpr   `@@`
}

// NewParser builds a Participle parser for GritQL pattern source (spec
// §4.2 stage 1).
func NewParser() (*participle.Parser[Program], error) {
	return participle.Build[Program](
		participle.Lexer(gritLexer),
		participle.UseLookahead(8),
		participle.Elide("Comment", "Whitespace"),
	)
}
