// Package disambig implements the four-stage disambiguation engine
// spec.md §4.4 describes: stage 2 flips ConditionalDisamb branches,
// stage 3 adds names then given names, stage 4 assigns year-suffix
// letters by first appearance. It mutates ir.Tree nodes in place rather
// than re-walking the style, the same "cheap to mutate, not rebuilt
// from scratch" contract ir.go documents for its arena.
//
// Stage order is fixed and never undoes a previous stage's addition,
// mirroring the teacher's append-only migration ordering in
// schema/ddl_ordering.go: disambiguation only ever adds constraints on
// top of what an earlier stage already committed to.
package disambig

import (
	"sort"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/evaluator"
	"github.com/citeproc-go/engine/index"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
)

// Group is every cite's IR tree for one reference; disambiguation
// decisions apply consistently across the whole group (spec.md §4.4
// "Apply consistently to every cite for the same ref").
type Group struct {
	RefID string
	Trees []*ir.Tree
}

// Resolve runs stages 2-4 over every ambiguous group and returns the set
// of reference IDs still ambiguous once all stages are exhausted
// (spec.md §4.4 "Termination"): reported, but left as-is.
//
// firstAppearance lists every reference ID cited in the document, in
// the order its first cite appears — the order stage 4 assigns letters
// in.
func Resolve(style *csl.Style, ix *index.Index, refs map[string]*refstore.Reference, groups map[string]Group, firstAppearance []string) map[string]bool {
	ambiguous := make(map[string]bool)
	for refID, g := range groups {
		if anyAmbiguous(g, refs, ix) {
			ambiguous[refID] = true
		}
	}
	if len(ambiguous) == 0 {
		return ambiguous
	}

	// Stage 2: flip ConditionalDisamb branches.
	for refID := range ambiguous {
		g := groups[refID]
		if !anyAmbiguous(g, refs, ix) {
			delete(ambiguous, refID)
			continue
		}
		flipConditionalDisamb(ix, refs, g)
		if !anyAmbiguous(g, refs, ix) {
			delete(ambiguous, refID)
		}
	}

	// Stage 3: add names, then add given names.
	if style.DisambiguateAddNames {
		for refID := range ambiguous {
			g := groups[refID]
			bumpEtAlCutoff(ix, refs, g)
			if !anyAmbiguous(g, refs, ix) {
				delete(ambiguous, refID)
			}
		}
	}
	if style.DisambiguateAddGivenName {
		for refID := range ambiguous {
			g := groups[refID]
			expandGivenNames(ix, refs, g, style.GivenNameDisambiguationRule)
			if !anyAmbiguous(g, refs, ix) {
				delete(ambiguous, refID)
			}
		}
	}

	// Stage 4: year-suffix, assigned globally by first appearance among
	// whatever remains ambiguous.
	if style.DisambiguateAddYearSuffix && len(ambiguous) > 0 {
		assignYearSuffixes(groups, ambiguous, firstAppearance)
		ambiguous = make(map[string]bool) // year-suffix always yields a unique rendering once assigned
	}

	return ambiguous
}

func anyAmbiguous(g Group, refs map[string]*refstore.Reference, ix *index.Index) bool {
	for _, t := range g.Trees {
		toks := CurrentFingerprint(t, refs)
		if len(toks) == 0 {
			continue
		}
		if len(ix.Candidates(toks)) > 1 {
			return true
		}
	}
	return false
}

func flipConditionalDisamb(ix *index.Index, refs map[string]*refstore.Reference, g Group) {
	for _, t := range g.Trees {
		before := CurrentFingerprint(t, refs)
		for i := 0; i < t.Len(); i++ {
			n := t.Node(ir.NodeRef(i))
			if n.Kind == ir.KindConditionalDisamb {
				n.Taken = true
			}
		}
		after := CurrentFingerprint(t, refs)
		recordNegativeDelta(ix, g.RefID, before, after)
	}
}

func bumpEtAlCutoff(ix *index.Index, refs map[string]*refstore.Reference, g Group) {
	for _, t := range g.Trees {
		before := CurrentFingerprint(t, refs)
		for i := 0; i < t.Len(); i++ {
			n := t.Node(ir.NodeRef(i))
			if n.Kind != ir.KindName {
				continue
			}
			names := namesForNode(refs[n.RefID], n)
			if n.EtAlCutoff == 0 {
				n.EtAlCutoff = 2 // the first bump always shows at least two names
			} else {
				n.EtAlCutoff++
			}
			if n.EtAlCutoff > len(names) {
				n.EtAlCutoff = len(names)
			}
			n.Rendered = renderNode(n, names)
		}
		after := CurrentFingerprint(t, refs)
		recordNegativeDelta(ix, g.RefID, before, after)
	}
}

// expandGivenNames enables given-name expansion for every name block of
// this reference. The all-names/primary-name/by-cite distinction in
// givenname-disambiguation-rule collapses to one behavior here (see
// DESIGN.md); rule is accepted but not yet dispatched on.
func expandGivenNames(ix *index.Index, refs map[string]*refstore.Reference, g Group, rule string) {
	for _, t := range g.Trees {
		before := CurrentFingerprint(t, refs)
		for i := 0; i < t.Len(); i++ {
			n := t.Node(ir.NodeRef(i))
			if n.Kind != ir.KindName {
				continue
			}
			n.GivenNameExpanded = true
			names := namesForNode(refs[n.RefID], n)
			n.Rendered = renderNode(n, names)
		}
		after := CurrentFingerprint(t, refs)
		recordNegativeDelta(ix, g.RefID, before, after)
	}
}

// assignYearSuffixes letters every still-ambiguous reference's
// KindYearSuffix nodes, in first-appearance order.
func assignYearSuffixes(groups map[string]Group, ambiguous map[string]bool, firstAppearance []string) {
	order := make([]string, 0, len(ambiguous))
	for _, refID := range firstAppearance {
		if ambiguous[refID] {
			order = append(order, refID)
		}
	}
	// Any ambiguous ref missing from firstAppearance (shouldn't happen in
	// a well-formed call) is appended deterministically at the end.
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		seen[id] = true
	}
	var rest []string
	for refID := range ambiguous {
		if !seen[refID] {
			rest = append(rest, refID)
		}
	}
	sort.Strings(rest)
	order = append(order, rest...)

	for i, refID := range order {
		letter := yearSuffixLetter(i)
		g := groups[refID]
		for _, t := range g.Trees {
			for j := 0; j < t.Len(); j++ {
				n := t.Node(ir.NodeRef(j))
				if n.Kind == ir.KindYearSuffix && n.YearSuffixRefID == refID {
					n.YearSuffixLetter = letter
				}
			}
		}
	}
}

// yearSuffixLetter maps 0,1,2,...,25,26,27 to "a","b",...,"z","aa","ab".
func yearSuffixLetter(i int) string {
	const base = 26
	var b []byte
	for {
		b = append([]byte{byte('a' + i%base)}, b...)
		i = i/base - 1
		if i < 0 {
			break
		}
	}
	return string(b)
}

func namesForNode(ref *refstore.Reference, n *ir.Node) []refstore.Name {
	if ref == nil {
		return nil
	}
	var names []refstore.Name
	for _, v := range n.NameVariables {
		names = append(names, ref.Names(v)...)
	}
	return names
}

func renderNode(n *ir.Node, names []refstore.Name) []outputformat.Run {
	return evaluator.RenderNames(names, n.NameInitializeWith, n.NameDemoteNonDropping,
		n.NameDisplayOrder, n.NameDelimiter, n.NameAnd, n.EtAlCutoff, n.GivenNameExpanded,
		n.AndTerm, n.EtAlTerm)
}
