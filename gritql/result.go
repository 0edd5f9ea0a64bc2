package gritql

import "github.com/oxhq/gritql/internal/analysislog"

// RichFile is one input file a host hands to an execute API (spec §6
// "Problem.execute APIs").
type RichFile struct {
	Path    string
	Content []byte
}

// Typename is the MatchResult variant discriminant (spec §6 "serialized
// variant tag __typename").
type Typename string

const (
	TypePatternInfo Typename = "PatternInfo"
	TypeAllDone     Typename = "AllDone"
	TypeMatch       Typename = "Match"
	TypeInputFile   Typename = "InputFile"
	TypeRewrite     Typename = "Rewrite"
	TypeCreateFile  Typename = "CreateFile"
	TypeRemoveFile  Typename = "RemoveFile"
	TypeDoneFile    Typename = "DoneFile"
	TypeAnalysisLog Typename = "AnalysisLog"
)

// Range is a half-open [Start, End) byte interval, reported relative to
// the version of SourceFile the result describes.
type Range struct {
	Start int
	End   int
}

// VariableInfo is one bound variable reported on a Match/Rewrite result
// (spec §6 "optional variables list (name, scoped name, ranges)").
type VariableInfo struct {
	Name       string
	ScopedName string
	Ranges     []Range
}

// MatchResult is the envelope every execute API streams or returns (spec
// §6). Exactly the fields relevant to Typename are meaningful; the rest
// are zero. UUID is a fresh random id generated for each result (spec §6,
// grounded on the teacher's uuid.NewString() usage in internal/db/api.go).
type MatchResult struct {
	Typename Typename

	UUID       string
	SourceFile string

	// Ranges is the set of byte ranges this result concerns: the matched
	// ranges for Match, empty otherwise.
	Ranges []Range

	// Variables is populated for Match, Rewrite and CreateFile results only.
	Variables []VariableInfo

	// Content carries the new file body for Rewrite/CreateFile results,
	// and the as-read body for InputFile.
	Content []byte

	// Diff is a unified diff of the rewrite, populated only for Rewrite
	// (spec DOMAIN STACK: go-difflib).
	Diff string

	// Log is populated only when Typename == TypeAnalysisLog.
	Log *analysislog.Record
}
