package cluster

import (
	"testing"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/stretchr/testify/require"
)

func literalTree(s string) *ir.Tree {
	t := ir.New()
	ref := t.Alloc(ir.KindRendered)
	t.Node(ref).Runs = []outputformat.Run{{Text: s}}
	t.Root = ref
	return t
}

func TestJoinGroupedUsesCiteGroupDelimiterForSameRef(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Delimiter: "; "}, CiteGroupDelimiter: ", "}
	renders := []CiteRender{
		{RefID: "a", Text: "Smith 1999"},
		{RefID: "a", Text: "Smith 2001"},
		{RefID: "b", Text: "Jones 2000"},
	}
	require.Equal(t, "Smith 1999, Smith 2001; Jones 2000", joinGrouped(renders, "; ", ", "))
}

func TestCollapseCitationNumberRange(t *testing.T) {
	renders := []CiteRender{
		{CiteNumber: 1}, {CiteNumber: 2}, {CiteNumber: 3}, {CiteNumber: 7},
	}
	require.Equal(t, "1-3, 7", collapseCitationNumber(renders, ", "))
}

func TestCollapseYearSuffixRanged(t *testing.T) {
	renders := []CiteRender{
		{BaseText: "Smith 1999", YearSuffix: "a"},
		{BaseText: "Smith 1999", YearSuffix: "b"},
		{BaseText: "Smith 1999", YearSuffix: "c"},
	}
	require.Equal(t, "Smith 1999a-c", collapseYearSuffix(renders, true, ", ", ","))
}

func TestCollapseYearSuffixBreaksOnAffixedCite(t *testing.T) {
	renders := []CiteRender{
		{BaseText: "Smith 1999", YearSuffix: "a"},
		{BaseText: "Smith 1999", YearSuffix: "b", HasAffixes: true, Text: "Smith 1999b, p. 4"},
	}
	got := collapseYearSuffix(renders, false, ", ", ",")
	require.Equal(t, "Smith 1999a, Smith 1999b, p. 4", got)
}

func TestBuildAppliesAuthorOnlyMode(t *testing.T) {
	tree := ir.New()
	root := tree.Alloc(ir.KindSeq)
	name := tree.Alloc(ir.KindName)
	tree.Node(name).Rendered = []outputformat.Run{{Text: "Smith"}}
	year := tree.Alloc(ir.KindRendered)
	tree.Node(year).Runs = []outputformat.Run{{Text: " 1999"}}
	tree.Node(root).Children = []ir.NodeRef{name, year}
	tree.Root = root

	style := &csl.Style{CitationLayout: csl.Layout{}}
	cl := model.Cluster{Cites: []model.Cite{{RefID: "smith", Mode: model.ModeAuthorOnly}}}

	got := Build(style, outputformat.Plain{}, cl, []*ir.Tree{tree})
	require.Equal(t, "Smith", got)
}
