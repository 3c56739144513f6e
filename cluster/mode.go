// Package cluster assembles the finalized per-cite IR of one cluster
// into a single rendered string (spec.md §4.5): applying the cluster's
// mode to each cite, grouping/collapsing adjacent cites, then
// concatenating with the style's layout delimiter/prefix/suffix.
package cluster

import (
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
)

// RenderWithMode renders tree under mode, honoring author-only/
// suppress-author/composite (spec.md §4.5 step 2). Composite's infix
// defaults to a single space when the cite and cluster both leave it
// empty.
func RenderWithMode(tree *ir.Tree, mode model.Mode, infix string) string {
	switch mode {
	case model.ModeAuthorOnly:
		return joinRuns(authorRuns(tree))
	case model.ModeSuppressAuthor:
		return joinRuns(suppressedFlatten(tree))
	case model.ModeComposite:
		author := joinRuns(authorRuns(tree))
		if infix == "" {
			infix = " "
		}
		rest := joinRuns(suppressedFlatten(tree))
		return author + infix + rest
	default:
		return joinRuns(tree.Flatten())
	}
}

func authorRuns(tree *ir.Tree) []outputformat.Run {
	var out []outputformat.Run
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(ir.NodeRef(i))
		if n.Kind == ir.KindName {
			out = append(out, n.Rendered...)
		}
	}
	return out
}

// suppressedFlatten clones the tree and blanks every name block's
// rendered runs, then flattens — cheap thanks to ir.Tree's arena-clone
// contract, and correct with respect to Group suppression because the
// blanked node still reports IsVariable/HasVariableDescendant the same
// way an empty-rendering variable would.
func suppressedFlatten(tree *ir.Tree) []outputformat.Run {
	clone := tree.Clone()
	for i := 0; i < clone.Len(); i++ {
		n := clone.Node(ir.NodeRef(i))
		if n.Kind == ir.KindName {
			n.Rendered = nil
		}
	}
	return clone.Flatten()
}

func joinRuns(runs []outputformat.Run) string {
	var s string
	for _, r := range runs {
		s += r.Text
	}
	return s
}

func yearSuffixOf(tree *ir.Tree) string {
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(ir.NodeRef(i))
		if n.Kind == ir.KindYearSuffix && n.YearSuffixLetter != "" {
			return n.YearSuffixLetter
		}
	}
	return ""
}

// baseText renders tree the same way Text is rendered (mode applied)
// but with any year-suffix letter blanked out first, so cites differing
// only by their year-suffix letter collapse to the same base.
func baseText(tree *ir.Tree, mode model.Mode, infix string) string {
	clone := tree.Clone()
	for i := 0; i < clone.Len(); i++ {
		n := clone.Node(ir.NodeRef(i))
		if n.Kind == ir.KindYearSuffix {
			n.YearSuffixLetter = ""
		}
	}
	return RenderWithMode(clone, mode, infix)
}
