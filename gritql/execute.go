package gritql

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/oxhq/gritql/internal/analysislog"
	"github.com/oxhq/gritql/internal/core"
	"github.com/oxhq/gritql/internal/lang"
	"github.com/oxhq/gritql/internal/linearize"
	"github.com/oxhq/gritql/internal/matcher"
	"github.com/oxhq/gritql/internal/pattern"
	"github.com/oxhq/gritql/internal/state"
)

// run is the mutable per-Problem-invocation context shared by every
// execute API: one State (spec §5 "per-file execution is strictly
// sequential; the matcher ... holds mutable State"), one matcher.Context,
// and one AnalysisLog collector.
type run struct {
	p   *Problem
	st  *state.State
	ctx *matcher.Context
	log *analysislog.Collector
}

func (p *Problem) newRun(cancelled func() bool) *run {
	st := state.New(p.defs.ScopeDefs, p.seed)
	st.PushScope(state.GlobalScope)
	st.Cancelled = cancelled
	log := analysislog.NewCollector()
	ctx := matcher.NewContext(p.lang, p.defs, p.builtins, log, cancelled, p.pollEvery)
	ctx.Foreign = p.foreign
	return &run{p: p, st: st, ctx: ctx, log: log}
}

// ExecuteFiles runs the Problem against files synchronously and returns
// every MatchResult in file order (spec §6 "execute_files(files) →
// [MatchResult], sync, bounded").
func (p *Problem) ExecuteFiles(files []RichFile, cancelled func() bool) ([]MatchResult, error) {
	r := p.newRun(cancelled)
	out := make([]MatchResult, 0, len(files))
	for _, f := range files {
		results, err := r.runFile(f)
		out = append(out, results...)
		if err != nil {
			return out, err
		}
	}
	out = append(out, r.drainLog()...)
	out = append(out, MatchResult{Typename: TypeAllDone, UUID: newUUID()})
	return out, nil
}

// ExecuteFilesStreaming is execute_files's streaming counterpart: results
// are sent to tx as each file closes rather than collected, so a host can
// start acting on early files before the whole batch finishes (spec §6
// "execute_files_streaming(files, tx, cache)").
func (p *Problem) ExecuteFilesStreaming(files []RichFile, tx chan<- MatchResult, cancelled func() bool) error {
	r := p.newRun(cancelled)
	for _, f := range files {
		results, err := r.runFile(f)
		for _, res := range results {
			tx <- res
		}
		if err != nil {
			return err
		}
	}
	for _, rec := range r.drainLog() {
		tx <- rec
	}
	tx <- MatchResult{Typename: TypeAllDone, UUID: newUUID()}
	return nil
}

// ExecutePathsStreaming mirrors ExecuteFilesStreaming but takes bare paths
// plus a reader callback, for a host that walks the filesystem itself
// rather than pre-loading every file's bytes (spec §6
// "execute_paths_streaming(paths, tx, cache) — streams results; host walks
// filesystem").
func (p *Problem) ExecutePathsStreaming(paths []string, readFile func(path string) ([]byte, error), tx chan<- MatchResult, cancelled func() bool) error {
	r := p.newRun(cancelled)
	for _, path := range paths {
		content, err := readFile(path)
		if err != nil {
			r.log.Errorf(path, analysislog.CodeReadFailed, "read failed: %v", err)
			continue
		}
		results, rerr := r.runFile(RichFile{Path: path, Content: content})
		for _, res := range results {
			tx <- res
		}
		if rerr != nil {
			return rerr
		}
	}
	for _, rec := range r.drainLog() {
		tx <- rec
	}
	tx <- MatchResult{Typename: TypeAllDone, UUID: newUUID()}
	return nil
}

// ExecuteStreamingRelay consumes an upstream stream of already-selected
// files (e.g. the Match results of a prior pattern in a piped composition)
// and re-runs this Problem over each, relaying its own results to tx
// (spec §6 "execute_streaming_relay(rx, tx, cache) — consumes upstream
// match stream (for piped pattern composition)").
func (p *Problem) ExecuteStreamingRelay(rx <-chan RichFile, tx chan<- MatchResult, cancelled func() bool) error {
	r := p.newRun(cancelled)
	for f := range rx {
		if cancelled != nil && cancelled() {
			break
		}
		results, err := r.runFile(f)
		for _, res := range results {
			tx <- res
		}
		if err != nil {
			return err
		}
	}
	for _, rec := range r.drainLog() {
		tx <- rec
	}
	tx <- MatchResult{Typename: TypeAllDone, UUID: newUUID()}
	return nil
}

func (r *run) drainLog() []MatchResult {
	records := r.log.Records()
	out := make([]MatchResult, len(records))
	for i := range records {
		rec := records[i]
		out[i] = MatchResult{Typename: TypeAnalysisLog, UUID: newUUID(), SourceFile: rec.SourceFile, Log: &rec}
	}
	return out
}

// runFile implements one file's close-time MatchResult computation (spec
// §4.7): consult the cache, parse, match, linearize, classify, and always
// finish with a DoneFile (spec §8 concrete scenario "one DoneFile for
// each [file]").
func (r *run) runFile(f RichFile) ([]MatchResult, error) {
	patternHash := r.p.hash
	fileHash := contentHash(f.Content)

	if r.p.cache != nil {
		hit, err := r.p.cache.Hit(fileHash, patternHash)
		if err != nil {
			return nil, err
		}
		if hit {
			return []MatchResult{{Typename: TypeDoneFile, UUID: newUUID(), SourceFile: f.Path}}, nil
		}
	}

	tree, diags, perr := r.p.lang.Parser().ParseFile(f.Content, f.Path)
	if perr != nil {
		r.log.Errorf(f.Path, analysislog.CodeParseFailed, "parse failed: %v", perr)
		return []MatchResult{{Typename: TypeDoneFile, UUID: newUUID(), SourceFile: f.Path}}, nil
	}
	for _, d := range diags {
		r.log.Warnf(f.Path, analysislog.CodeSnippetAmbiguous, "%s (%d:%d)", d.Message, d.Line, d.Column)
	}

	ptr := r.st.Files.Open(f.Path, f.Content, tree, false)
	r.st.ActiveFile = ptr
	r.bindGlobals(f.Path, tree.Root())

	filesValue := &pattern.ResolvedPattern{
		Kind: pattern.ResolvedFiles,
		Files: []*pattern.FileValue{{
			Name:    f.Path,
			Content: pattern.FromBinding(pattern.NodeBinding(tree.Root())),
		}},
	}

	ok, err := matcher.Execute(r.ctx, r.p.defs.TopLevel, filesValue, r.st)
	if err != nil {
		if ce, isCoreErr := err.(*core.Error); isCoreErr && core.IsRecoverable(ce) {
			r.log.Infof(f.Path, analysislog.CodeParseFailed, "match attempt failed: %v", ce)
			ok = false
		} else {
			return nil, err
		}
	}

	owner := r.st.Files.Get(ptr)
	if ok {
		owner.Matches.InputMatches = true
		owner.Matches.ByteRanges = []state.ByteRange{{Start: 0, End: len(owner.Source)}}
		owner.Matches.Suppressed = containsSuppression(f.Content, r.p.lang)
	}

	fileEffects, remaining := partitionEffects(r.st.Effects, ptr)
	r.st.Effects = remaining

	var primary *MatchResult
	if len(fileEffects) > 0 {
		newSource, _, lerr := linearize.Linearize(owner.Source, fileEffects, r.p.lang, r.p.builtins)
		if lerr != nil {
			return nil, core.Wrap(core.KindInvariant, "linearize: "+f.Path, lerr)
		}
		newOwner := &state.FileOwner{Name: f.Path, Source: newSource, New: owner.New}
		r.st.Files.AppendVersion(ptr.Index, newOwner)
		versions := r.st.Files.VersionCount(ptr.Index)
		switch {
		case versions == 2 && owner.New:
			primary = &MatchResult{Typename: TypeCreateFile, SourceFile: f.Path, Content: newSource}
		case versions >= 2:
			first, last := r.st.Files.FirstAndLast(ptr.Index)
			primary = &MatchResult{
				Typename:   TypeRewrite,
				SourceFile: f.Path,
				Content:    last.Source,
				Diff:       UnifiedDiff(f.Path, first.Source, last.Source, 3),
			}
		}
	} else if ok && !owner.Matches.Suppressed {
		primary = &MatchResult{
			Typename:   TypeMatch,
			SourceFile: f.Path,
			Ranges:     rangesFrom(owner.Matches.ByteRanges),
		}
	}

	if r.p.cache != nil && primary == nil {
		if cerr := r.p.cache.RecordNoMatch(fileHash, patternHash); cerr != nil {
			return nil, cerr
		}
	}

	results := make([]MatchResult, 0, 2)
	if primary != nil {
		primary.UUID = newUUID()
		primary.Variables = r.collectVariables()
		results = append(results, *primary)
	}
	results = append(results, MatchResult{Typename: TypeDoneFile, UUID: newUUID(), SourceFile: f.Path})
	return results, nil
}

// bindGlobals assigns the two globals every file execution seeds before
// matching (spec §4.2 stage 4's fixed global slots "$filename",
// "$program"); "$absolute_filename", "$new_files", "$match", and
// "$grit_range" are left unbound unless a pattern assigns them itself — a
// documented simplification, since this core has no notion of a
// filesystem root to resolve an absolute path against (see DESIGN.md).
func (r *run) bindGlobals(path string, root lang.Node) {
	name := path
	r.st.Assign(pattern.VarRef{Scope: state.GlobalScope, Index: state.FilenameIndex},
		pattern.FromConstant(pattern.Constant{Str: &name}))
	r.st.Assign(pattern.VarRef{Scope: state.GlobalScope, Index: state.ProgramIndex},
		pattern.FromBinding(pattern.NodeBinding(root)))
}

// partitionEffects splits effects scheduled during this file's match from
// everything else still pending (there should be nothing else, since
// files are processed strictly sequentially, but a true multifile pattern
// can schedule effects against more than one file's ActiveFile before
// either closes).
func partitionEffects(effects []state.Effect, ptr state.FilePtr) (forFile, rest []state.Effect) {
	for _, e := range effects {
		if e.File == ptr {
			forFile = append(forFile, e)
		} else {
			rest = append(rest, e)
		}
	}
	return forFile, rest
}

// collectVariables reports every bound top-level variable (spec §6
// MatchResult "optional variables list (name, scoped name, ranges)"). The
// top-level pattern's locals all live in the global scope (spec §4.2
// stage 4), so a single frame covers the whole run.
func (r *run) collectVariables() []VariableInfo {
	vars := r.st.ScopeVars(state.GlobalScope)
	out := make([]VariableInfo, 0, len(vars))
	for _, vc := range vars {
		if !vc.Bound() {
			continue
		}
		out = append(out, VariableInfo{
			Name:       vc.Name,
			ScopedName: vc.Name,
			Ranges:     boundRanges(vc.CurrentValue),
		})
	}
	return out
}

func boundRanges(v *pattern.ResolvedPattern) []Range {
	b, ok := v.CurrentBinding()
	if !ok {
		return nil
	}
	start, end, ok := b.Range()
	if !ok {
		return nil
	}
	return []Range{{Start: start, End: end}}
}

func rangesFrom(brs []state.ByteRange) []Range {
	out := make([]Range, len(brs))
	for i, b := range brs {
		out[i] = Range{Start: b.Start, End: b.End}
	}
	return out
}

func containsSuppression(source []byte, l lang.Language) bool {
	sc := l.SuppressionComment()
	if sc == "" {
		return false
	}
	return strings.Contains(string(source), sc)
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
