// Package linearize implements spec §4.6 "Effect linearizer": it turns the
// bag of possibly-overlapping Insert/Rewrite effects a matcher run
// scheduled against one file into a single deterministic edited string, plus
// the mapping from original byte ranges to their new positions. Grounded on
// the teacher's manipulator/pipeline splice-by-range approach (now
// superseded in-tree, see DESIGN.md), generalized from regex-match spans to
// arbitrary nested Binding ranges.
package linearize

import (
	"sort"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// RangeMapping records where one original byte range ended up after
// linearization (spec §4.6 step 6).
type RangeMapping struct {
	OldStart, OldEnd int
	NewStart, NewEnd int
}

// edit is one effect translated to absolute byte positions (stage 1).
type edit struct {
	kind       state.EffectKind
	start, end int // [start, end) consumed from source; start==end for an Insert
	text       string
	seq        int // original effect order, last-resort tiebreak for determinism
}

// Linearize runs stages 1-6 against source, given the effects scheduled
// during matching for this file version.
func Linearize(source []byte, effects []state.Effect, l lang.Language, eval pattern.BuiltinEvaluator) ([]byte, []RangeMapping, error) {
	if len(effects) == 0 {
		return source, nil, nil
	}

	edits, err := translate(source, effects, eval)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range edits {
		if !onCodePointBoundary(source, e.start) || !onCodePointBoundary(source, e.end) {
			return nil, nil, errBoundary
		}
	}

	edits = sortEdits(edits)
	edits, err = filterNested(edits)
	if err != nil {
		return nil, nil, err
	}
	edits = cleanHangingCommas(source, edits, l)
	edits = padMultiline(source, edits, l)

	out, mappings := apply(source, edits)
	return out, mappings, nil
}

// translate implements stage 1: each Effect becomes an edit at absolute
// byte positions. A legal-empty-slot Binding has no range of its own; its
// insertion point is approximated as its parent node's end.
func translate(source []byte, effects []state.Effect, eval pattern.BuiltinEvaluator) ([]edit, error) {
	out := make([]edit, 0, len(effects))
	for i, e := range effects {
		start, end, ok := e.Binding.Range()
		if !ok {
			if e.Binding.Kind == pattern.BindEmpty && e.Binding.EmptyParent != nil {
				p := e.Binding.EmptyParent.EndByte()
				start, end = p, p
			} else {
				continue
			}
		}
		text, err := e.Replacement.Text(eval)
		if err != nil {
			return nil, err
		}
		if e.Kind == state.EffectInsert {
			start, end = end, end // Insert is a zero-width point at the binding's end.
		}
		out = append(out, edit{kind: e.Kind, start: start, end: end, text: text, seq: i})
	}
	return out, nil
}

// sortEdits implements stage 1's ordering: descending by end, then
// descending by start, so applying edits from the tail of the buffer
// backward never invalidates a not-yet-applied position (spec §4.6 step 1
// and step 5's "outermost-last" guarantee).
func sortEdits(edits []edit) []edit {
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i], edits[j]
		if a.end != b.end {
			return a.end > b.end
		}
		if a.start != b.start {
			return a.start > b.start
		}
		return a.seq < b.seq
	})
	return edits
}

var errBoundary = &boundaryError{}
var errOverlap = &overlapError{}

type boundaryError struct{}

func (*boundaryError) Error() string { return "linearize: edit range not on a code-point boundary" }

type overlapError struct{}

func (*overlapError) Error() string { return "linearize: partially overlapping edits" }

func onCodePointBoundary(source []byte, at int) bool {
	if at < 0 || at > len(source) {
		return false
	}
	if at == len(source) {
		return true
	}
	return source[at]&0xC0 != 0x80
}

// filterNested implements stage 2: once sorted outermost-last, any edit
// whose range is strictly contained in an edit already kept is dropped,
// unless it is a point insert whose text differs from every other point
// insert already kept at the same position (so repeated Accumulate
// insertions at the same list-end point all survive). Two standalone point
// inserts at the same position with identical text are not a nesting case
// at all (a point can't strictly contain anything) but are still a literal
// duplicate, so they are collapsed to one (spec §8's "two point-insertions
// at the same index with identical text: only one applied"), keeping
// whichever has the lower seq (the effect scheduled first). A true partial
// overlap between two non-nested ranges is a fatal error: the matcher's
// binding ranges come from the AST so should never cross.
func filterNested(edits []edit) ([]edit, error) {
	drop := make([]bool, len(edits))
	for i := range edits {
		for j := range edits {
			if i == j {
				continue
			}
			if overlapsPartially(edits[i], edits[j]) {
				return nil, errOverlap
			}
			if identicalPointInsert(edits[i], edits[j]) {
				if edits[j].seq < edits[i].seq {
					drop[i] = true
				}
				continue
			}
			if !strictlyContains(edits[j], edits[i]) {
				continue
			}
			// edits[i] is strictly inside edits[j]: drop it, unless it is a
			// point insert with text distinct from every other point
			// insert at the same position (repeated Accumulate inserts).
			if edits[i].start == edits[i].end && !duplicatePointElsewhere(edits, i) {
				continue
			}
			drop[i] = true
		}
	}
	kept := make([]edit, 0, len(edits))
	for i, e := range edits {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// identicalPointInsert reports whether a and b are both zero-width point
// edits at the same position with the same (already-normalized, pre-padding)
// replacement text — the case strictlyContains can never catch since a
// point's own range can't strictly contain another point's equal range.
func identicalPointInsert(a, b edit) bool {
	if a.start != a.end || b.start != b.end {
		return false
	}
	return a.start == b.start && a.text == b.text
}

// strictlyContains reports whether inner's range sits inside outer's and
// the two are not simply equal (an edit never "contains" an identical
// sibling; duplicate identical edits are left as-is, which apply's sort-
// stable ordering then applies once via the stable seq tiebreak).
func strictlyContains(outer, inner edit) bool {
	if outer.start == outer.end {
		return false // a point can't contain anything
	}
	if outer.start == inner.start && outer.end == inner.end {
		return false
	}
	return outer.start <= inner.start && inner.end <= outer.end
}

func duplicatePointElsewhere(edits []edit, i int) bool {
	for j, k := range edits {
		if j == i {
			continue
		}
		if k.start == edits[i].start && k.end == edits[i].end && k.text == edits[i].text {
			return true
		}
	}
	return false
}

func overlapsPartially(a, b edit) bool {
	if a.start == a.end || b.start == b.end {
		return false
	}
	crosses := a.start < b.start && b.start < a.end && a.end < b.end
	crosses = crosses || (b.start < a.start && a.start < b.end && b.end < a.end)
	return crosses
}

// cleanHangingCommas implements stage 3: when a Rewrite deletes a list
// element (replacement text is empty), scan the source immediately
// surrounding its range for the language's separator and schedule its
// removal too, so `f(a, b, c)` with `b` deleted comes out `f(a, c)` rather
// than `f(a, , c)`.
func cleanHangingCommas(source []byte, edits []edit, l lang.Language) []edit {
	sep := l.ListSeparator()
	if sep == "" {
		return edits
	}
	out := make([]edit, 0, len(edits))
	for _, e := range edits {
		out = append(out, e)
		if e.kind != state.EffectRewrite || e.text != "" || e.start == e.end {
			continue
		}
		if tr := trailingSeparator(source, e.end, sep); tr != nil {
			out = append(out, *tr)
			continue
		}
		if lead := leadingSeparator(source, e.start, sep); lead != nil {
			out = append(out, *lead)
		}
	}
	return out
}

// trailingSeparator matches a separator following the deleted element and
// extends the removal through whatever blank run follows it too, so
// `f(a, b, c)` with `b` deleted leaves exactly one space before `c` rather
// than the leftover blank that preceded `b` plus the one that followed the
// comma.
func trailingSeparator(source []byte, at int, sep string) *edit {
	i := at
	for i < len(source) && isBlank(source[i]) {
		i++
	}
	if i+len(sep) > len(source) || string(source[i:i+len(sep)]) != sep {
		return nil
	}
	j := i + len(sep)
	for j < len(source) && isBlank(source[j]) {
		j++
	}
	return &edit{kind: state.EffectRewrite, start: at, end: j, text: ""}
}

// leadingSeparator matches a separator preceding the deleted element (used
// when the element is last in its list, so no trailing separator exists)
// and extends the removal back through the blank run between the separator
// and the element, for the same reason trailingSeparator extends forward.
func leadingSeparator(source []byte, at int, sep string) *edit {
	i := at
	for i > 0 && isBlank(source[i-1]) {
		i--
	}
	if i-len(sep) < 0 || string(source[i-len(sep):i]) != sep {
		return nil
	}
	return &edit{kind: state.EffectRewrite, start: i - len(sep), end: at, text: ""}
}

func isBlank(b byte) bool { return b == ' ' || b == '\t' }

// padMultiline implements stage 4: a replacement spanning multiple lines is
// re-indented so every line after the first matches the destination site's
// indentation.
func padMultiline(source []byte, edits []edit, l lang.Language) []edit {
	out := make([]edit, len(edits))
	for i, e := range edits {
		if !hasNewline(e.text) {
			out[i] = e
			continue
		}
		indent := l.TakePadding(source, e.start)
		e.text = l.PadSnippet(e.text, indent)
		out[i] = e
	}
	return out
}

func hasNewline(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return true
		}
	}
	return false
}

// apply implements stage 5+6: walk the edits in ascending source order,
// copying each untouched gap followed by the edit's replacement text. Each
// edit references only the immutable original source buffer, so assembling
// the result head-to-tail (rather than splicing backward) lets NewStart/
// NewEnd be read directly off the growing output buffer's length.
func apply(source []byte, edits []edit) ([]byte, []RangeMapping) {
	forward := make([]edit, len(edits))
	copy(forward, edits)
	sort.SliceStable(forward, func(i, j int) bool {
		a, b := forward[i], forward[j]
		if a.start != b.start {
			return a.start < b.start
		}
		return a.seq < b.seq
	})

	out := make([]byte, 0, len(source))
	mappings := make([]RangeMapping, 0, len(forward))
	cursor := 0

	for _, e := range forward {
		if e.start < cursor {
			continue // a comma-cleanup edit can land before a just-applied cursor; skip rather than corrupt order
		}
		out = append(out, source[cursor:e.start]...)
		newStart := len(out)
		out = append(out, []byte(e.text)...)
		mappings = append(mappings, RangeMapping{
			OldStart: e.start, OldEnd: e.end,
			NewStart: newStart, NewEnd: len(out),
		})
		cursor = e.end
	}
	out = append(out, source[cursor:]...)

	return out, mappings
}
