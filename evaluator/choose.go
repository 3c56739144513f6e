package evaluator

import (
	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/ir"
)

// evalChoose resolves a <choose> to IR. A matched branch whose condition
// carries disambiguate="true" does not render directly: it becomes a
// KindConditionalDisamb placeholder, not taken until disambiguation
// stage 2 flips it (spec.md §4.4), so stage 1 renders as though the
// cascade had fallen through to whatever would match next.
func evalChoose(tree *ir.Tree, ctx *Context, c csl.Choose) ir.NodeRef {
	idx, branch := matchBranch(c.Branches, ctx, 0)
	if branch == nil {
		return emptySeq(tree)
	}
	if branch.Condition.Disambiguate {
		ifChildren := evalChildren(tree, ctx, branch.Children)
		var elseChildren []ir.NodeRef
		if _, elseBranch := matchBranch(c.Branches, ctx, idx+1); elseBranch != nil {
			elseChildren = evalChildren(tree, ctx, elseBranch.Children)
		}
		ref := tree.Alloc(ir.KindConditionalDisamb)
		n := tree.Node(ref)
		n.Taken = false
		n.IfChildren = ifChildren
		n.ElseChildren = elseChildren
		return ref
	}
	children := evalChildren(tree, ctx, branch.Children)
	ref := tree.Alloc(ir.KindSeq)
	tree.Node(ref).Children = children
	return ref
}

// matchBranch scans branches from start for the first one whose
// condition matches ctx, CSL's if/else-if/else cascade. An <else>
// branch always matches.
func matchBranch(branches []csl.ChooseBranch, ctx *Context, start int) (int, *csl.ChooseBranch) {
	for i := start; i < len(branches); i++ {
		b := &branches[i]
		if b.IsElse || matchCondition(b.Condition, ctx) {
			return i, b
		}
	}
	return -1, nil
}

func matchCondition(cond csl.Condition, ctx *Context) bool {
	var results []bool

	if cond.Position != "" {
		results = append(results, ctx.Position.String() == cond.Position)
	}
	if len(cond.Type) > 0 {
		match := false
		for _, t := range cond.Type {
			if string(ctx.Ref.Type) == t {
				match = true
				break
			}
		}
		results = append(results, match)
	}
	for _, v := range cond.Variable {
		_, present := ctx.Ref.Field(v)
		results = append(results, present)
	}

	if len(results) == 0 {
		// A bare disambiguate="true" condition with no other test
		// criteria always "matches" in the sense that stage 1 has to
		// pick some branch; whether it's ultimately taken is stage 2's
		// decision, recorded on the ConditionalDisamb node instead.
		return true
	}
	if cond.MatchAll {
		for _, r := range results {
			if !r {
				return false
			}
		}
		return true
	}
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}
