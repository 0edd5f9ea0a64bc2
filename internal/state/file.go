package state

import "github.com/oxhq/gritql/internal/lang"

// FilePtr addresses one version of one logical file in the FileRegistry
// arena (spec §9 "Design Notes: Cyclic references" — addressed by indices
// rather than owned pointers, giving O(1) snapshot/restore by truncation).
type FilePtr struct {
	Index   int
	Version int
}

// MatchRecord is the mutable "matches" bookkeeping a FileOwner carries
// (spec §3 "FileOwner"): whether any input (pre-rewrite) pattern matched
// this file, which byte ranges matched, and whether a `// grit-ignore`
// comment suppressed the match.
type MatchRecord struct {
	InputMatches bool
	Suppressed   bool
	ByteRanges   []ByteRange
}

// ByteRange is a half-open [Start, End) interval into a FileOwner's
// Source.
type ByteRange struct {
	Start, End int
}

// FileOwner is one version of a logical file: its source, parsed tree,
// whether the pattern created it (vs. it existing on input), and its
// match bookkeeping (spec §3 "FileOwner").
type FileOwner struct {
	Name    string
	Source  []byte
	Tree    lang.Tree
	New     bool
	Matches MatchRecord
}

// FileRegistry is the append-only arena of FileOwner versions described in
// spec §9: `index` identifies a logical file, `version` picks a snapshot.
// A single logical file accumulates a new FileOwner each time its effect
// log is materialized by close_file (spec §4.4).
type FileRegistry struct {
	// versions[index] is the ordered list of FileOwner versions for that
	// logical file, oldest first.
	versions [][]*FileOwner
	// nameIndex maps a file's original name to its logical index, so
	// successive pattern evaluations addressing "this file" by name find
	// the same logical slot.
	nameIndex map[string]int
}

func NewFileRegistry() *FileRegistry {
	return &FileRegistry{nameIndex: make(map[string]int)}
}

// Open registers the first version of a logical file (typically the
// as-read input) and returns its FilePtr.
func (r *FileRegistry) Open(name string, source []byte, tree lang.Tree, isNew bool) FilePtr {
	idx, exists := r.nameIndex[name]
	if !exists {
		idx = len(r.versions)
		r.versions = append(r.versions, nil)
		r.nameIndex[name] = idx
	}
	owner := &FileOwner{Name: name, Source: source, Tree: tree, New: isNew}
	r.versions[idx] = append(r.versions[idx], owner)
	return FilePtr{Index: idx, Version: len(r.versions[idx]) - 1}
}

// AppendVersion records a new FileOwner for an already-open logical file
// (spec §4.4 "close_file ... appends a new FileOwner at a new version").
func (r *FileRegistry) AppendVersion(index int, owner *FileOwner) FilePtr {
	r.versions[index] = append(r.versions[index], owner)
	return FilePtr{Index: index, Version: len(r.versions[index]) - 1}
}

// Get returns the FileOwner at ptr.
func (r *FileRegistry) Get(ptr FilePtr) *FileOwner {
	if ptr.Index < 0 || ptr.Index >= len(r.versions) {
		return nil
	}
	versions := r.versions[ptr.Index]
	if ptr.Version < 0 || ptr.Version >= len(versions) {
		return nil
	}
	return versions[ptr.Version]
}

// Latest returns the most recent version of the logical file at index.
func (r *FileRegistry) Latest(index int) (FilePtr, *FileOwner) {
	versions := r.versions[index]
	v := len(versions) - 1
	return FilePtr{Index: index, Version: v}, versions[v]
}

// LookupByName returns the latest version's pointer for a file name, if
// that logical file has been opened.
func (r *FileRegistry) LookupByName(name string) (FilePtr, bool) {
	idx, ok := r.nameIndex[name]
	if !ok {
		return FilePtr{}, false
	}
	ptr, _ := r.Latest(idx)
	return ptr, true
}

// FirstAndLast returns the initial and current FileOwner for a logical
// file, used to build a Rewrite MatchResult (spec §4.7).
func (r *FileRegistry) FirstAndLast(index int) (*FileOwner, *FileOwner) {
	versions := r.versions[index]
	return versions[0], versions[len(versions)-1]
}

// VersionCount reports how many versions a logical file has accumulated.
func (r *FileRegistry) VersionCount(index int) int {
	return len(r.versions[index])
}

// Len is the number of logical files registered.
func (r *FileRegistry) Len() int { return len(r.versions) }

// snapshot/restore support: truncate removes any logical files added after
// a given watermark; versions appended since then to files that already
// existed at the watermark are kept. In practice no file gains a
// version during a failed speculative match (close_file only runs once a
// whole top-level Sequential step commits), so this is a defensive
// symmetry measure matching spec §4.4's "sizes of ... file registry".
func (r *FileRegistry) truncateFiles(n int) {
	if n >= len(r.versions) {
		return
	}
	for name, idx := range r.nameIndex {
		if idx >= n {
			delete(r.nameIndex, name)
		}
	}
	r.versions = r.versions[:n]
}
