// Package atom interns short strings — reference IDs, cluster IDs, locale
// term names — into small-integer handles so the rest of the engine can
// compare and hash them in O(1) instead of repeatedly comparing strings.
package atom

import "sync"

// Atom is an interned string handle. The zero value is not a valid atom;
// Interner.Intern never returns it.
type Atom uint32

// Interner owns a single engine instance's atom table. It is never a
// process-wide singleton: each engine constructs its own, and dropping the
// engine drops the table with it.
type Interner struct {
	mu     sync.RWMutex
	byText map[string]Atom
	texts  []string // texts[a-1] == original string for atom a
}

// New returns an empty interner.
func New() *Interner {
	return &Interner{byText: make(map[string]Atom)}
}

// Intern returns the atom for s, allocating a new one if s was not seen
// before. Safe for concurrent use.
func (in *Interner) Intern(s string) Atom {
	in.mu.RLock()
	if a, ok := in.byText[s]; ok {
		in.mu.RUnlock()
		return a
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if a, ok := in.byText[s]; ok {
		return a
	}
	in.texts = append(in.texts, s)
	a := Atom(len(in.texts))
	in.byText[s] = a
	return a
}

// Lookup returns the Atom for s without interning it.
func (in *Interner) Lookup(s string) (Atom, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	a, ok := in.byText[s]
	return a, ok
}

// Text returns the original string for an atom. Panics on an atom this
// interner did not mint, which is always a caller bug.
func (in *Interner) Text(a Atom) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if a == 0 || int(a) > len(in.texts) {
		panic("atom: Text called with unknown atom")
	}
	return in.texts[a-1]
}

// Len reports how many distinct strings have been interned.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.texts)
}
