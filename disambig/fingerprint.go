package disambig

import (
	"strings"

	"github.com/citeproc-go/engine/index"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/refstore"
)

// CurrentFingerprint extracts the tokens a cite's IR tree currently
// renders to — as opposed to index.ReferenceFingerprint, which is every
// token a reference's data could *ever* render to under the style. Only
// KindName nodes contribute; date/number ambiguity is out of scope for
// this engine's disambiguation pass (spec.md's worked examples are all
// name- and year-suffix-driven, see DESIGN.md).
func CurrentFingerprint(t *ir.Tree, refs map[string]*refstore.Reference) []string {
	var toks []string
	for i := 0; i < t.Len(); i++ {
		n := t.Node(ir.NodeRef(i))
		if n.Kind != ir.KindName {
			continue
		}
		ref := refs[n.RefID]
		if ref == nil {
			continue
		}
		for _, v := range n.NameVariables {
			names := ref.Names(v)
			if len(names) == 0 {
				continue
			}
			toks = append(toks, currentNameToken(names[0], n.NameInitializeWith, n.GivenNameExpanded))
		}
	}
	return toks
}

// currentNameToken picks out exactly which of index.NameTokens' tiers a
// name currently renders as, given the evaluation-time knobs stored on
// its ir.Node.
func currentNameToken(n refstore.Name, initializeWith string, expanded bool) string {
	if n.IsLiteral() {
		return strings.ToUpper(n.Literal)
	}
	family := strings.ToUpper(n.Family)
	if n.Given == "" {
		return family
	}
	if expanded {
		return strings.ToUpper(n.Given + " " + n.Family)
	}
	if initializeWith != "" {
		initials := refstore.Initialize(n.Given, initializeWith)
		return strings.ToUpper(initials + " " + n.Family)
	}
	return strings.ToUpper(n.Given + " " + n.Family)
}

// recordNegativeDelta records, for every token a group's rendering
// stopped producing between before and after, that this reference
// should no longer count as a candidate for that token (spec.md §4.4
// "Negative-match table"): the mutation that grew this reference's own
// rendering may have been exactly what another reference needed to
// become unique.
func recordNegativeDelta(ix *index.Index, refID string, before, after []string) {
	afterSet := make(map[string]bool, len(after))
	for _, t := range after {
		afterSet[t] = true
	}
	for _, t := range before {
		if !afterSet[t] {
			ix.AddNegativeMatch(t, refID)
		}
	}
}
