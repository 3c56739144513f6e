package cluster

import (
	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
)

// Build assembles one cluster's final text from its cites' already
// evaluated-and-disambiguated IR trees (spec.md §4.5): apply each
// cite's mode, collapse/group adjacent cites per the style, then wrap
// in the citation layout's prefix/suffix and hand the whole thing to
// the active output formatter.
//
// trees must be parallel to cl.Cites — trees[i] is the IR for
// cl.Cites[i].
func Build(style *csl.Style, format outputformat.Formatter, cl model.Cluster, trees []*ir.Tree) string {
	renders := make([]CiteRender, len(cl.Cites))
	for i, cite := range cl.Cites {
		mode := cl.EffectiveMode(i)
		infix := cite.Infix
		if infix == "" {
			infix = cl.Infix
		}
		text := cite.Prefix + RenderWithMode(trees[i], mode, infix) + cite.Suffix
		renders[i] = CiteRender{
			RefID:      cite.RefID,
			Text:       text,
			BaseText:   cite.Prefix + baseText(trees[i], mode, infix) + cite.Suffix,
			YearSuffix: yearSuffixOf(trees[i]),
			CiteNumber: citeNumberOf(trees[i]),
			HasAffixes: cite.Prefix != "" || cite.Suffix != "" || cite.Locator != nil,
		}
	}

	body := Join(style, renders)
	run := outputformat.Run{Text: style.CitationLayout.Prefix + body + style.CitationLayout.Suffix}
	return format.Render([]outputformat.Run{run})
}

func citeNumberOf(tree *ir.Tree) int {
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(ir.NodeRef(i))
		if n.Kind == ir.KindCiteNumber {
			return n.Number
		}
	}
	return 0
}
