// Package builtin implements the standard built-in function table (spec
// §4.5). A built-in is `(name, param-names, fn)`; calls bind named
// arguments, producing a zero value where a param was omitted. Grounded on
// the teacher's internal/core/manipulator.go string-transform helpers,
// generalized from regex-match text into ResolvedPattern values.
package builtin

import (
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/pattern"
)

// Func is one built-in's implementation: it receives its bound arguments
// (by parameter name, already resolved to text where the built-in needs
// text) and the caller-supplied list values it needs structurally, and
// returns a ResolvedPattern.
type Func struct {
	Params []string
	Eval   func(args map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error)
}

// Table is the built-in registry consulted by CallBuiltIn (spec §4.3) and
// by ResolvedPattern.Text when a Snippet contains a lazy invocation (spec
// §3 "join returns a Snippet whose text is computed lazily at emission
// time").
type Table struct {
	funcs map[string]Func
	rand  *rand.Rand
}

// NewTable builds the standard built-in set plus any caller-supplied
// extras (spec §4.2 "an optional extra built-in set"). rnd is the run's
// seeded PRNG (spec §5 "PRNG seed per Problem is fixed"), consulted by
// shuffle/random.
func NewTable(extra map[string]Func, rnd *rand.Rand) *Table {
	t := &Table{rand: rnd}
	t.funcs = t.standard()
	for name, fn := range extra {
		t.funcs[name] = fn
	}
	return t
}

func (t *Table) Lookup(name string) (Func, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Call binds positional args to fn's Params in order and evaluates it.
func (t *Table) Call(name string, args []*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
	fn, ok := t.Lookup(name)
	if !ok {
		return nil, core.New(core.KindRuntimeError, "unknown built-in: "+name)
	}
	bound := make(map[string]*pattern.ResolvedPattern, len(fn.Params))
	for i, p := range fn.Params {
		if i < len(args) {
			bound[p] = args[i]
		}
	}
	return fn.Eval(bound)
}

// EvalText implements pattern.BuiltinEvaluator, used to resolve a lazy
// Snippet piece (e.g. a `join` call) into text at emission time.
func (t *Table) EvalText(name string, args []*pattern.ResolvedPattern) (string, error) {
	v, err := t.Call(name, args)
	if err != nil {
		return "", err
	}
	return v.Text(t)
}

func textOf(v *pattern.ResolvedPattern) string {
	if v == nil {
		return ""
	}
	s, _ := v.Text(nil)
	return s
}

func (t *Table) standard() map[string]Func {
	return map[string]Func{
		"resolve": {
			Params: []string{"path"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				p := textOf(a["path"])
				abs, err := filepath.Abs(p)
				if err != nil {
					return nil, core.Wrap(core.KindRuntimeError, "resolve failed", err)
				}
				return pattern.FromConstant(pattern.Constant{Str: strPtr(abs)}), nil
			},
		},
		"capitalize": {
			Params: []string{"target"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				s := textOf(a["target"])
				if s == "" {
					return pattern.FromConstant(pattern.Constant{Str: strPtr(s)}), nil
				}
				return pattern.FromConstant(pattern.Constant{Str: strPtr(strings.ToUpper(s[:1]) + s[1:])}), nil
			},
		},
		"lowercase": {
			Params: []string{"target"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				return pattern.FromConstant(pattern.Constant{Str: strPtr(strings.ToLower(textOf(a["target"])))}), nil
			},
		},
		"uppercase": {
			Params: []string{"target"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				return pattern.FromConstant(pattern.Constant{Str: strPtr(strings.ToUpper(textOf(a["target"])))}), nil
			},
		},
		"text": {
			Params: []string{"target"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				return pattern.FromConstant(pattern.Constant{Str: strPtr(textOf(a["target"]))}), nil
			},
		},
		"trim": {
			Params: []string{"string", "chars"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				chars := textOf(a["chars"])
				s := textOf(a["string"])
				if chars == "" {
					chars = " \t\n\r"
				}
				return pattern.FromConstant(pattern.Constant{Str: strPtr(strings.Trim(s, chars))}), nil
			},
		},
		"join": {
			Params: []string{"list", "sep"},
			// join returns a Snippet with one binding-reference piece per
			// item of the list as it is at call time, separated by sep.
			// Items added to the list variable after this call are not
			// part of the result.
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				list := a["list"]
				sep := a["sep"]
				sepText := ", "
				if sep != nil {
					sepText = textOf(sep)
				}
				if list == nil || list.Kind != pattern.ResolvedList {
					return pattern.FromConstant(pattern.Constant{Str: strPtr("")}), nil
				}
				var pieces []pattern.SnippetPiece
				for i, item := range list.List {
					if i > 0 {
						pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceLiteral, Literal: sepText})
					}
					pieces = append(pieces, pattern.SnippetPiece{Kind: pattern.PieceBindingRef, Ref: item})
				}
				return &pattern.ResolvedPattern{Kind: pattern.ResolvedSnippet, Pieces: pieces}, nil
			},
		},
		"distinct": {
			Params: []string{"list"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				list := a["list"]
				if list == nil || list.Kind != pattern.ResolvedList {
					return list, nil
				}
				seen := map[string]bool{}
				var out []*pattern.ResolvedPattern
				for _, item := range list.List {
					key := textOf(item)
					if !seen[key] {
						seen[key] = true
						out = append(out, item)
					}
				}
				return pattern.FromList(out), nil
			},
		},
		"length": {
			Params: []string{"target"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				target := a["target"]
				var n int64
				switch {
				case target == nil:
					n = 0
				case target.Kind == pattern.ResolvedList:
					n = int64(len(target.List))
				case target.Kind == pattern.ResolvedMap && target.Map != nil:
					n = int64(len(target.Map.Keys))
				default:
					n = int64(len(textOf(target)))
				}
				return pattern.FromConstant(pattern.Constant{Int: &n}), nil
			},
		},
		"shuffle": {
			Params: []string{"list"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				list := a["list"]
				if list == nil || list.Kind != pattern.ResolvedList {
					return list, nil
				}
				out := append([]*pattern.ResolvedPattern{}, list.List...)
				if t.rand != nil {
					t.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
				}
				return pattern.FromList(out), nil
			},
		},
		"random": {
			Params: []string{"start", "end"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				start, end := int64(0), int64(100)
				if a["start"] != nil {
					if n, err := strconv.ParseInt(textOf(a["start"]), 10, 64); err == nil {
						start = n
					}
				}
				if a["end"] != nil {
					if n, err := strconv.ParseInt(textOf(a["end"]), 10, 64); err == nil {
						end = n
					}
				}
				n := start
				if t.rand != nil && end > start {
					n = start + t.rand.Int63n(end-start)
				}
				return pattern.FromConstant(pattern.Constant{Int: &n}), nil
			},
		},
		"split": {
			Params: []string{"string", "sep"},
			Eval: func(a map[string]*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
				sep := textOf(a["sep"])
				if sep == "" {
					sep = " "
				}
				parts := strings.Split(textOf(a["string"]), sep)
				items := make([]*pattern.ResolvedPattern, len(parts))
				for i, p := range parts {
					items[i] = pattern.FromConstant(pattern.Constant{Str: strPtr(p)})
				}
				return pattern.FromList(items), nil
			},
		},
	}
}

func strPtr(s string) *string { return &s }

// ForeignEvaluator evaluates an opaque foreign-function source via a
// host-supplied evaluator (spec §4.5 "Foreign-function definitions").
type ForeignEvaluator interface {
	EvalForeign(source []byte, args map[string]string) (string, error)
}

// CallForeign binds positional args to paramNames and evaluates source
// through host, returning a string constant.
func CallForeign(host ForeignEvaluator, source []byte, paramNames []string, args []*pattern.ResolvedPattern) (*pattern.ResolvedPattern, error) {
	bound := make(map[string]string, len(paramNames))
	for i, name := range paramNames {
		if i < len(args) {
			bound[name] = textOf(args[i])
		}
	}
	out, err := host.EvalForeign(source, bound)
	if err != nil {
		return nil, core.Wrap(core.KindRuntimeError, "foreign function failed", err)
	}
	return pattern.FromConstant(pattern.Constant{Str: strPtr(out)}), nil
}
