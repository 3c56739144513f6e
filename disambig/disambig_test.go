package disambig

import (
	"testing"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/evaluator"
	"github.com/citeproc-go/engine/index"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/refstore"
	"github.com/stretchr/testify/require"
)

func compileYearSuffixStyle(t *testing.T) *csl.Style {
	t.Helper()
	style, err := csl.Compile(`<style>
		<citation disambiguate-add-year-suffix="true">
			<layout>
				<group delimiter=" ">
					<names variable="author"><name/></names>
					<date variable="issued"><date-part name="year"/></date>
				</group>
				<text variable="year-suffix"/>
			</layout>
		</citation>
	</style>`)
	require.NoError(t, err)
	return style
}

func flattenText(t *ir.Tree) string {
	var s string
	for _, r := range t.Flatten() {
		s += r.Text
	}
	return s
}

func TestResolveAssignsYearSuffixesInFirstAppearanceOrder(t *testing.T) {
	style := compileYearSuffixStyle(t)
	loc, _ := localeprovider.NewStatic().FetchLocale("en-US")

	ref1 := &refstore.Reference{ID: "smith-1999-1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"author": {Kind: refstore.KindNameList, Names: []refstore.Name{{Family: "Smith"}}},
		"issued": {Kind: refstore.KindDate, Date: refstore.Date{From: refstore.DateEndpoint{Parts: []int{1999}}}},
	}}
	ref2 := &refstore.Reference{ID: "smith-1999-2", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"author": {Kind: refstore.KindNameList, Names: []refstore.Name{{Family: "Smith"}}},
		"issued": {Kind: refstore.KindDate, Date: refstore.Date{From: refstore.DateEndpoint{Parts: []int{1999}}}},
	}}
	refs := map[string]*refstore.Reference{ref1.ID: ref1, ref2.ID: ref2}

	ix := index.New()
	ix.SetRefTokens(ref1.ID, index.ReferenceFingerprint(style, ref1))
	ix.SetRefTokens(ref2.ID, index.ReferenceFingerprint(style, ref2))

	tree1 := evaluator.Evaluate(&evaluator.Context{Style: style, Ref: ref1, Cite: model.Cite{RefID: ref1.ID}, Position: model.PositionFirst, Locale: loc})
	tree2 := evaluator.Evaluate(&evaluator.Context{Style: style, Ref: ref2, Cite: model.Cite{RefID: ref2.ID}, Position: model.PositionFirst, Locale: loc})

	require.Equal(t, "Smith 1999", flattenText(tree1))
	require.Equal(t, "Smith 1999", flattenText(tree2))

	groups := map[string]Group{
		ref1.ID: {RefID: ref1.ID, Trees: []*ir.Tree{tree1}},
		ref2.ID: {RefID: ref2.ID, Trees: []*ir.Tree{tree2}},
	}

	remaining := Resolve(style, ix, refs, groups, []string{ref1.ID, ref2.ID})
	require.Empty(t, remaining)

	require.Equal(t, "Smith 1999a", flattenText(tree1))
	require.Equal(t, "Smith 1999b", flattenText(tree2))
}

func TestYearSuffixLetterSequence(t *testing.T) {
	require.Equal(t, "a", yearSuffixLetter(0))
	require.Equal(t, "z", yearSuffixLetter(25))
	require.Equal(t, "aa", yearSuffixLetter(26))
}

func TestCurrentNameTokenTiers(t *testing.T) {
	n := refstore.Name{Given: "John", Family: "Adams"}
	require.Equal(t, "ADAMS", currentNameToken(refstore.Name{Family: "Adams"}, "", false))
	require.Equal(t, "J. ADAMS", currentNameToken(n, ".", false))
	require.Equal(t, "JOHN ADAMS", currentNameToken(n, "", false))
	require.Equal(t, "JOHN ADAMS", currentNameToken(n, ".", true))
}
