package compiler

import "github.com/oxhq/gritql/internal/pattern"

// autoWrapOptions configures spec §4.2 stage 7 "Auto-wrap": the top-level
// pattern is never matched bare against a file's root node, it is always
// lifted into Files(File(name, body)) so the matcher can run once per file
// in a ResolvedFiles value, with before_each_file/after_each_file
// definitions (spec "Supplemented features") spliced in as a Sequential
// around it, and an optional byte-range restriction intersected with the
// body.
type autoWrapOptions struct {
	NameFilter *pattern.Pattern
	Range      *pattern.Range
	BeforeEach *int
	AfterEach  *int
}

func autoWrap(top pattern.Pattern, opts autoWrapOptions) pattern.Pattern {
	body := top
	if opts.Range != nil {
		body = pattern.And{Patterns: []pattern.Pattern{*opts.Range, body}}
	}
	// spec §4.2 stage 7: wrap in Contains so the top-level pattern matches
	// anywhere in the file, not only when it equals the file's root node.
	body = pattern.Contains{Pattern: body}
	file := pattern.File{Body: body}
	if opts.NameFilter != nil {
		file.Name = *opts.NameFilter
	} else {
		file.Name = pattern.Top{}
	}

	var steps []pattern.Pattern
	if opts.BeforeEach != nil {
		steps = append(steps, pattern.Bubble{Def: *opts.BeforeEach})
	}
	steps = append(steps, file)
	if opts.AfterEach != nil {
		steps = append(steps, pattern.Bubble{Def: *opts.AfterEach})
	}

	if len(steps) == 1 {
		return pattern.Files{Pattern: file}
	}
	return pattern.Files{Pattern: pattern.Sequential{Patterns: steps}}
}
