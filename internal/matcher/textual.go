package matcher

import (
	"regexp"
	"strings"

	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// executeCodeSnippet tries each (sort, subtree) alternative the compiler
// produced for this snippet (spec §4.2 stage 6) and succeeds if any one's
// SubTree pattern matches the current value.
func executeCodeSnippet(ctx *Context, n pattern.CodeSnippet, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	for _, alt := range n.Alternatives {
		node, ok := asNode(current)
		if ok && node.Kind() != alt.Sort {
			continue
		}
		snap := st.Snapshot()
		ok, err := Execute(ctx, alt.SubTree, current, st)
		if err != nil && !core.IsRecoverable(err) {
			return false, err
		}
		if ok {
			return true, nil
		}
		st.Restore(snap)
	}
	return false, nil
}

// executeRegex matches the current value's text against a compiled regular
// expression, binding any named capture group to the VarRef the compiler
// recorded for it.
func executeRegex(ctx *Context, n pattern.Regex, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	re, err := regexp.Compile(n.Source)
	if err != nil {
		return false, core.Wrap(core.KindCompileError, "invalid regex", err)
	}
	text, err := current.Text(ctx.Builtins)
	if err != nil {
		return false, err
	}
	match := re.FindStringSubmatch(text)
	if match == nil {
		return false, nil
	}
	names := re.SubexpNames()
	for i, name := range names {
		if name == "" || i >= len(match) {
			continue
		}
		ref, ok := n.CaptureVars[name]
		if !ok {
			continue
		}
		s := match[i]
		st.Assign(ref, pattern.FromConstant(pattern.Constant{Str: &s}))
	}
	return true, nil
}

// executeLike performs a fuzzy structural comparison against an exemplar
// (spec §4.3 "Like"): it textually diffs the current value and the
// exemplar by whitespace-separated tokens, requiring at least Threshold
// fraction of exemplar tokens to appear in the candidate, in any order.
func executeLike(ctx *Context, n pattern.Like, current *pattern.ResolvedPattern, st *state.State) (bool, error) {
	exemplar, err := evalRHS(ctx, n.Example, current, st)
	if err != nil {
		return false, err
	}
	exemplarText, err := exemplar.Text(ctx.Builtins)
	if err != nil {
		return false, err
	}
	currentText, err := current.Text(ctx.Builtins)
	if err != nil {
		return false, err
	}
	score := tokenOverlap(exemplarText, currentText)
	return score >= n.Threshold, nil
}

func tokenOverlap(a, b string) float64 {
	aTok := strings.Fields(a)
	if len(aTok) == 0 {
		return 1
	}
	bSet := map[string]int{}
	for _, t := range strings.Fields(b) {
		bSet[t]++
	}
	hits := 0
	for _, t := range aTok {
		if bSet[t] > 0 {
			bSet[t]--
			hits++
		}
	}
	return float64(hits) / float64(len(aTok))
}
