package compiler

import (
	"strings"

	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/pattern"
)

// compileSnippetPattern implements spec §4.2 stage 6: a backtick snippet is
// substituted (metavariable prefix swapped for the language's in-band
// SubstituteChar), then parsed inside every SnippetContext the language
// offers, most-specific first. Every context that parses cleanly
// contributes one SnippetAlternative; the matcher tries them in order at
// match time, since the same snippet text can be a valid expression in one
// wrapping and a valid statement in another.
func (lz *lowerer) compileSnippetPattern(raw string) pattern.Pattern {
	body := unbacktick(raw)
	substituted := strings.ReplaceAll(body, string(lz.lang.MetavariablePrefix()), string(lz.lang.SubstituteChar()))

	var alts []pattern.SnippetAlternative
	for _, sc := range lz.lang.SnippetContexts() {
		wrapped := sc.Prefix + substituted + sc.Suffix
		tree, diags, err := lz.lang.Parser().ParseFile([]byte(wrapped), "<snippet>")
		if err != nil || len(diags) > 0 {
			continue
		}
		root := snippetRoot(tree.Root(), len(sc.Prefix), len(sc.Prefix)+len(substituted))
		tree.Close()
		if root == nil {
			continue
		}
		alts = append(alts, pattern.SnippetAlternative{Sort: root.Kind(), SubTree: lz.nodeToPattern(root)})
	}
	if len(alts) == 0 {
		// No context parsed: fall back to a literal text match so the
		// snippet still behaves predictably instead of never matching.
		alts = append(alts, pattern.SnippetAlternative{
			Sort:    "",
			SubTree: pattern.StringConstant{Value: body},
		})
	}
	return pattern.CodeSnippet{Raw: body, Alternatives: alts}
}

// snippetRoot descends to the narrowest node whose range exactly covers
// [start, end), the snippet's own text inside its wrapping prefix/suffix.
func snippetRoot(n lang.Node, start, end int) lang.Node {
	if n == nil {
		return nil
	}
	for {
		if n.StartByte() == start && n.EndByte() == end {
			// Prefer the most specific node with this exact span: descend
			// into a sole matching child if one exists.
			descended := false
			for i := 0; i < n.NamedChildCount(); i++ {
				c := n.NamedChild(i)
				if c.StartByte() == start && c.EndByte() == end {
					n = c
					descended = true
					break
				}
			}
			if !descended {
				return n
			}
			continue
		}
		found := false
		for i := 0; i < n.NamedChildCount(); i++ {
			c := n.NamedChild(i)
			if c.StartByte() <= start && c.EndByte() >= end {
				n = c
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}
}

// nodeToPattern converts a parsed snippet node into Pattern IR field by
// field, translating metavariable-sort nodes back into Variable/Dots/
// Underscore per the language's conventions (spec §4.1 "metavariable
// substitution").
func (lz *lowerer) nodeToPattern(n lang.Node) pattern.Pattern {
	if lz.lang.IsMetavariableSort(n.Kind()) {
		name := strings.TrimPrefix(n.Text(), string(lz.lang.SubstituteChar()))
		switch {
		case lz.lang.IsDots(name):
			return pattern.Dots{}
		case lz.lang.IsUnderscore(name):
			return pattern.Underscore{}
		default:
			return pattern.Variable{Ref: lz.resolveVar(name)}
		}
	}
	if n.NamedChildCount() == 0 {
		return pattern.AstLeafNode{Kind: n.Kind(), Text: n.Text()}
	}
	fields := make([]pattern.FieldPattern, 0, n.NamedChildCount())
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		fields = append(fields, pattern.FieldPattern{Field: c.Field(), Value: lz.nodeToPattern(c)})
	}
	return pattern.AstNode{Kind: n.Kind(), Fields: fields}
}

// compileSnippetRHS lowers a backtick snippet used as a Rewrite/Accumulate
// right-hand side into a Dynamic template: literal runs interleaved with
// Variable references, never parsed against the target grammar since an RHS
// snippet is emitted as text rather than matched (spec §3 "Dynamic").
func (lz *lowerer) compileSnippetRHS(raw string) pattern.Pattern {
	body := unbacktick(raw)
	prefix := lz.lang.MetavariablePrefix()
	var pieces []pattern.Pattern
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			pieces = append(pieces, pattern.StringConstant{Value: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(body); {
		if body[i] == prefix {
			j := i + 1
			for j < len(body) && isIdentByte(body[j]) {
				j++
			}
			if j > i+1 {
				flush()
				pieces = append(pieces, pattern.Variable{Ref: lz.resolveVar(body[i+1 : j])})
				i = j
				continue
			}
		}
		lit.WriteByte(body[i])
		i++
	}
	flush()
	if len(pieces) == 1 {
		if sc, ok := pieces[0].(pattern.StringConstant); ok {
			return sc
		}
	}
	return pattern.Dynamic{Pieces: pieces}
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func unbacktick(raw string) string {
	s := strings.TrimPrefix(raw, "`")
	s = strings.TrimSuffix(s, "`")
	return s
}

// unquote strips the DSL's double-quoted string literal delimiters and
// resolves its backslash escapes.
func unquote(raw string) string {
	s := strings.TrimPrefix(raw, `"`)
	s = strings.TrimSuffix(s, `"`)
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
