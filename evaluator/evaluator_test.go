package evaluator

import (
	"testing"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx(style *csl.Style, ref *refstore.Reference, pos model.Position) *Context {
	loc, _ := localeprovider.NewStatic().FetchLocale("en-US")
	return &Context{
		Style:    style,
		Ref:      ref,
		Cite:     model.Cite{RefID: ref.ID},
		Position: pos,
		Locale:   loc,
	}
}

func TestEvaluateLiteralTextValue(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Children: []csl.Element{
		csl.Text{Value: "hello"},
	}}}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook}
	tree := Evaluate(newCtx(style, ref, model.PositionFirst))
	assert.Equal(t, "hello", joinRuns(tree.Flatten()))
}

func TestEvaluateVariableTracksUsage(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Children: []csl.Element{
		csl.Text{Variable: "title"},
	}}}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "On the Road"},
	}}
	ctx := newCtx(style, ref, model.PositionFirst)
	tree := Evaluate(ctx)
	assert.Equal(t, "On the Road", joinRuns(tree.Flatten()))
	assert.True(t, ctx.Used.Vars["title"])
}

func TestEvaluateMacroResolution(t *testing.T) {
	style := &csl.Style{
		Macros: map[string]csl.Element{
			"title-macro": csl.Text{Variable: "title"},
		},
		CitationLayout: csl.Layout{Children: []csl.Element{
			csl.Text{Macro: "title-macro"},
		}},
	}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "Middlemarch"},
	}}
	tree := Evaluate(newCtx(style, ref, model.PositionFirst))
	assert.Equal(t, "Middlemarch", joinRuns(tree.Flatten()))
}

func TestEvaluateChoosePositionBranch(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Children: []csl.Element{
		csl.Choose{Branches: []csl.ChooseBranch{
			{Condition: csl.Condition{Position: "ibid"}, Children: []csl.Element{csl.Text{Term: "ibid"}}},
			{IsElse: true, Children: []csl.Element{csl.Text{Variable: "title"}}},
		}},
	}}}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "Middlemarch"},
	}}

	tree := Evaluate(newCtx(style, ref, model.PositionIbid))
	assert.Equal(t, "ibid.", joinRuns(tree.Flatten()))

	tree = Evaluate(newCtx(style, ref, model.PositionFirst))
	assert.Equal(t, "Middlemarch", joinRuns(tree.Flatten()))
}

func TestEvaluateDisambiguateBranchNotTakenByDefault(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Children: []csl.Element{
		csl.Choose{Branches: []csl.ChooseBranch{
			{Condition: csl.Condition{Disambiguate: true}, Children: []csl.Element{csl.Text{Value: "DISAMBIGUATED"}}},
			{IsElse: true, Children: []csl.Element{csl.Text{Value: "plain"}}},
		}},
	}}}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook}
	tree := Evaluate(newCtx(style, ref, model.PositionFirst))
	require.Equal(t, 1, len(tree.Flatten())) // one run from the else branch
	assert.Equal(t, "plain", joinRuns(tree.Flatten()))
}

func TestEvaluateNamesEtAlTruncation(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Children: []csl.Element{
		csl.Names{Variables: []string{"author"}, Name: csl.NameFormatting{And: "text", InitializeWith: "."}, EtAlMin: 3, EtAlUseFirst: 1},
	}}}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"author": {Kind: refstore.KindNameList, Names: []refstore.Name{
			{Given: "John", Family: "Adams"},
			{Given: "Jane", Family: "Doe"},
			{Given: "Ann", Family: "Lee"},
		}},
	}}
	tree := Evaluate(newCtx(style, ref, model.PositionFirst))
	assert.Equal(t, "Adams, J., et al.", joinRuns(tree.Flatten()))
}

func TestEvaluateRomanAndOrdinalNumbers(t *testing.T) {
	style := &csl.Style{CitationLayout: csl.Layout{Children: []csl.Element{
		csl.Number{Variable: "edition", Form: "ordinal"},
	}}}
	ref := &refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"edition": {Kind: refstore.KindNumber, Number: refstore.NumberValue{IsInt: true, Int: 2}},
	}}
	tree := Evaluate(newCtx(style, ref, model.PositionFirst))
	assert.Equal(t, "2nd", joinRuns(tree.Flatten()))
	assert.Equal(t, "iv", toRoman(4))
}

func joinRuns(runs []outputformat.Run) string {
	var s string
	for _, r := range runs {
		s += r.Text
	}
	return s
}
