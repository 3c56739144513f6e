package evaluator

import (
	"strings"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
)

func evalNames(tree *ir.Tree, ctx *Context, n csl.Names) ir.NodeRef {
	var allNames []refstore.Name
	for _, v := range n.Variables {
		ctx.Used.mark(v)
		allNames = append(allNames, ctx.Ref.Names(v)...)
	}

	override := ctx.NameOverrides[primaryVariable(n.Variables)]
	cutoff := override.EtAlCutoff
	if cutoff == 0 && n.EtAlMin > 0 && len(allNames) >= n.EtAlMin {
		cutoff = n.EtAlUseFirst
	}

	andTerm := ctx.Locale.Term("and")
	etAlTerm := ctx.Locale.Term("et-al")
	runs := RenderNames(allNames, n.Name.InitializeWith, n.Name.DemoteNonDroppingParticle,
		n.Name.SortOrder == "display", n.Name.Delimiter, n.Name.And,
		cutoff, override.GivenNameExpanded, andTerm, etAlTerm)
	if n.Prefix != "" || n.Suffix != "" {
		runs = append([]outputformat.Run{{Text: n.Prefix}}, append(runs, outputformat.Run{Text: n.Suffix})...)
	}

	ref := tree.Alloc(ir.KindName)
	node := tree.Node(ref)
	node.RefID = ctx.Cite.RefID
	node.NameVariables = append([]string(nil), n.Variables...)
	node.EtAlCutoff = cutoff
	node.GivenNameExpanded = override.GivenNameExpanded
	node.Rendered = runs
	node.NameInitializeWith = n.Name.InitializeWith
	node.NameDemoteNonDropping = n.Name.DemoteNonDroppingParticle
	node.NameDisplayOrder = n.Name.SortOrder == "display"
	node.NameDelimiter = n.Name.Delimiter
	node.NameAnd = n.Name.And
	node.AndTerm = andTerm
	node.EtAlTerm = etAlTerm

	if n.Label != nil && len(allNames) > 0 {
		labelRef := evalLabel(tree, ctx, n.Label.Variable, n.Label.Form, pluralFor(n.Label.Plural, len(allNames)), " ", "")
		seq := tree.Alloc(ir.KindSeq)
		tree.Node(seq).Children = []ir.NodeRef{ref, labelRef}
		return seq
	}
	return ref
}

func pluralFor(plural string, count int) string {
	if plural == "contextual" {
		if count > 1 {
			return "always"
		}
		return "never"
	}
	return plural
}

func primaryVariable(vars []string) string {
	if len(vars) == 0 {
		return ""
	}
	return vars[0]
}

// RenderNames formats a name list the way a <names> block would, given
// the current et-al cutoff and given-name-expansion overrides a
// disambiguation stage may have applied (spec.md §4.4). Parameters are
// plain scalars rather than a csl.NameFormatting value so the disambig
// package can call this directly from the scalar knobs it stores on an
// ir.Node, re-rendering a KindName node in place after bumping
// EtAlCutoff or flipping GivenNameExpanded without re-walking the whole
// style (or importing csl itself).
func RenderNames(names []refstore.Name, initializeWith string, demoteNonDropping bool, displayOrder bool, delimiter, and string, etAlCutoff int, givenNameExpanded bool, andTerm, etAlTerm string) []outputformat.Run {
	if len(names) == 0 {
		return nil
	}
	order := refstore.OrderSort
	if displayOrder {
		order = refstore.OrderDisplay
	}

	shown := names
	etAl := false
	if etAlCutoff > 0 && etAlCutoff < len(names) {
		shown = names[:etAlCutoff]
		etAl = true
	}

	rendered := make([]string, len(shown))
	for i, nm := range shown {
		rendered[i] = renderOneName(nm, initializeWith, order, demoteNonDropping, givenNameExpanded)
	}

	delim := delimiter
	if delim == "" {
		delim = ", "
	}

	var b strings.Builder
	for i, p := range rendered {
		switch {
		case i == 0:
		case i == len(rendered)-1 && !etAl && and != "":
			b.WriteString(delim)
			if and == "symbol" {
				b.WriteString("& ")
			} else {
				b.WriteString(andTerm + " ")
			}
		default:
			b.WriteString(delim)
		}
		b.WriteString(p)
	}
	if etAl {
		b.WriteString(delim)
		b.WriteString(etAlTerm)
	}
	return []outputformat.Run{{Text: b.String()}}
}

func renderOneName(n refstore.Name, initializeWith string, order refstore.NameOrder, demoteNonDropping bool, expanded bool) string {
	if n.IsLiteral() {
		return n.Literal
	}
	if initializeWith != "" && !expanded {
		n.Given = refstore.Initialize(n.Given, initializeWith)
	}
	return refstore.Rendered(n, order, demoteNonDropping)
}
