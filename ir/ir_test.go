package ir

import (
	"testing"

	"github.com/citeproc-go/engine/outputformat"
	"github.com/stretchr/testify/assert"
)

func textNode(t *Tree, s string, isVar bool) NodeRef {
	ref := t.Alloc(KindRendered)
	t.Node(ref).Runs = []outputformat.Run{{Text: s}}
	t.Node(ref).IsVariable = isVar
	return ref
}

func TestFlattenSeqConcatenatesWithDelimiter(t *testing.T) {
	tree := New()
	a := textNode(tree, "A", false)
	b := textNode(tree, "B", false)
	seq := tree.Alloc(KindSeq)
	tree.Node(seq).Children = []NodeRef{a, b}
	tree.Node(seq).Delimiter = ", "
	tree.Root = seq
	assert.Equal(t, "A, B", text(tree.Flatten()))
}

func TestFlattenGroupSuppressedWhenVariableEmpty(t *testing.T) {
	tree := New()
	label := textNode(tree, "p. ", false)
	empty := tree.Alloc(KindRendered)
	tree.Node(empty).IsVariable = true // a variable that rendered empty
	group := tree.Alloc(KindGroup)
	tree.Node(group).Children = []NodeRef{label, empty}
	tree.Root = group
	assert.Equal(t, "", text(tree.Flatten()))
}

func TestFlattenGroupNotSuppressedWithoutVariableDescendant(t *testing.T) {
	tree := New()
	lit := textNode(tree, "literal", false)
	group := tree.Alloc(KindGroup)
	tree.Node(group).Children = []NodeRef{lit}
	tree.Root = group
	assert.Equal(t, "literal", text(tree.Flatten()))
}

func TestFlattenConditionalDisambTakesIfBranchWhenFlipped(t *testing.T) {
	tree := New()
	ifText := textNode(tree, "long form", false)
	elseText := textNode(tree, "short form", false)
	cond := tree.Alloc(KindConditionalDisamb)
	tree.Node(cond).IfChildren = []NodeRef{ifText}
	tree.Node(cond).ElseChildren = []NodeRef{elseText}
	tree.Root = cond

	assert.Equal(t, "short form", text(tree.Flatten()))
	tree.Node(cond).Taken = true
	assert.Equal(t, "long form", text(tree.Flatten()))
}

func TestFlattenYearSuffixEmptyUntilAssigned(t *testing.T) {
	tree := New()
	ref := tree.Alloc(KindYearSuffix)
	tree.Root = ref
	assert.Equal(t, "", text(tree.Flatten()))
	tree.Node(ref).YearSuffixLetter = "a"
	assert.Equal(t, "a", text(tree.Flatten()))
}

func TestCloneIsIndependent(t *testing.T) {
	tree := New()
	cond := tree.Alloc(KindConditionalDisamb)
	tree.Root = cond
	clone := tree.Clone()
	clone.Node(cond).Taken = true
	assert.False(t, tree.Node(cond).Taken)
	assert.True(t, clone.Node(cond).Taken)
}

func text(runs []outputformat.Run) string {
	out := ""
	for _, r := range runs {
		out += r.Text
	}
	return out
}
