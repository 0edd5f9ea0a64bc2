package gritql

import "github.com/pmezard/go-difflib/difflib"

// UnifiedDiff renders a unified diff between a file's original and
// rewritten content, grounded on the teacher's internal/util.UnifiedDiff
// (here always plain, since a library has no terminal to color for).
func UnifiedDiff(path string, from, to []byte, context int) string {
	if context <= 0 {
		context = 3
	}
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(from)),
		B:        difflib.SplitLines(string(to)),
		FromFile: path,
		ToFile:   path,
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return ""
	}
	return text
}
