// Package index implements the inverted index spec.md §4.2 describes:
// a mapping from rendered-variable tokens to the set of reference IDs
// that could produce them, used to detect and resolve ambiguity. The
// map-of-sets shape and the "intersect candidate sets across tokens"
// algorithm mirror the teacher's dependency-graph bookkeeping in
// schema/ddl_ordering.go/tsort.go (map[string][]string adjacency), here
// keyed by rendered token instead of table name.
package index

import (
	"sync"

	"github.com/citeproc-go/engine/atom"
)

// Index holds, for every reference ID the engine has ever indexed, the
// full set of tokens that reference's own data could ever render to
// (every name-as-rendered and partial shortening, every date
// granularity, every condition-relevant field value) — not what it is
// currently rendering. Ambiguity is detected by comparing a cite's
// actual fingerprint (what it did render, see disambig.CurrentFingerprint)
// against this superset.
//
// Reference IDs and tokens are both interned: a document's token
// fingerprints repeat the same handful of rendered strings across every
// cite of a reference, and intersecting candidate sets is a hot path on
// every disambig.Resolve call, so comparing atom.Atom values instead of
// strings avoids repeated hashing/comparison of the same text.
type Index struct {
	mu       sync.RWMutex
	in       *atom.Interner
	byRef    map[atom.Atom]map[atom.Atom]bool // refID -> its own possible tokens
	byToken  map[atom.Atom][]atom.Atom         // token -> refIDs holding it (insertion order, for determinism)
	negative map[atom.Atom]map[atom.Atom]bool  // token -> refIDs excluded from candidacy for that token
}

// New returns an empty index.
func New() *Index {
	return &Index{
		in:       atom.New(),
		byRef:    make(map[atom.Atom]map[atom.Atom]bool),
		byToken:  make(map[atom.Atom][]atom.Atom),
		negative: make(map[atom.Atom]map[atom.Atom]bool),
	}
}

// SetRefTokens installs (or replaces) the full possible-token set for a
// reference, e.g. after that reference is re-inserted and the tier-2
// inverted_index() computation re-derives it.
func (ix *Index) SetRefTokens(refID string, tokens []string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ref := ix.in.Intern(refID)
	ix.removeRefLocked(ref)
	set := make(map[atom.Atom]bool, len(tokens))
	for _, tok := range tokens {
		t := ix.in.Intern(tok)
		set[t] = true
		ix.byToken[t] = append(ix.byToken[t], ref)
	}
	ix.byRef[ref] = set
}

// RemoveRef drops a reference from the index entirely.
func (ix *Index) RemoveRef(refID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ref, ok := ix.in.Lookup(refID)
	if !ok {
		return
	}
	ix.removeRefLocked(ref)
}

func (ix *Index) removeRefLocked(ref atom.Atom) {
	old, ok := ix.byRef[ref]
	if !ok {
		return
	}
	for tok := range old {
		ix.byToken[tok] = removeAtom(ix.byToken[tok], ref)
	}
	delete(ix.byRef, ref)
}

func removeAtom(list []atom.Atom, a atom.Atom) []atom.Atom {
	out := list[:0]
	for _, v := range list {
		if v != a {
			out = append(out, v)
		}
	}
	return out
}

// AddNegativeMatch records that refID should no longer be considered a
// candidate for token, e.g. because another reference was forced to a
// longer rendering that makes that token uniquely theirs (spec.md §4.4
// "Negative-match table").
func (ix *Index) AddNegativeMatch(token, refID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	t := ix.in.Intern(token)
	ref := ix.in.Intern(refID)
	if ix.negative[t] == nil {
		ix.negative[t] = make(map[atom.Atom]bool)
	}
	ix.negative[t][ref] = true
}

// Candidates returns every reference ID whose own token set is a
// superset of fingerprint, after applying negative matches — the
// references a cite with this fingerprint could be confused with. An
// empty fingerprint matches nothing (there is nothing to disambiguate
// on).
func (ix *Index) Candidates(fingerprint []string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(fingerprint) == 0 {
		return nil
	}

	counts := make(map[atom.Atom]int)
	order := make([]atom.Atom, 0)
	for _, tok := range fingerprint {
		t, ok := ix.in.Lookup(tok)
		if !ok {
			continue
		}
		for _, ref := range ix.byToken[t] {
			if neg := ix.negative[t]; neg != nil && neg[ref] {
				continue
			}
			if counts[ref] == 0 {
				order = append(order, ref)
			}
			counts[ref]++
		}
	}

	var out []string
	for _, ref := range order {
		if counts[ref] == len(fingerprint) {
			out = append(out, ix.in.Text(ref))
		}
	}
	return out
}

// RefTokens returns the stored token set for refID, for tests and
// diagnostics.
func (ix *Index) RefTokens(refID string) map[string]bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ref, ok := ix.in.Lookup(refID)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(ix.byRef[ref]))
	for t := range ix.byRef[ref] {
		out[ix.in.Text(t)] = true
	}
	return out
}
