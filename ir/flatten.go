package ir

import "github.com/citeproc-go/engine/outputformat"

// Flatten walks the tree from its root and produces the final inline
// run sequence, resolving each placeholder kind according to its
// current (possibly disambiguation-mutated) state:
//   - KindConditionalDisamb emits whichever branch Taken selects.
//   - KindYearSuffix emits its assigned letter, or nothing if unassigned.
//   - KindGroup emits its children's output unless suppressed (spec.md §3).
func (t *Tree) Flatten() []outputformat.Run {
	runs, _, _ := t.flatten(t.Root)
	return runs
}

// flatten returns a node's rendered runs, whether it produced non-empty
// output, and whether it (or any descendant) is a variable-rendering
// node — the two facts a Group needs to decide its own suppression.
func (t *Tree) flatten(ref NodeRef) (runs []outputformat.Run, nonEmpty bool, isVariableDescendant bool) {
	if ref == Nil || ref < 0 || int(ref) >= len(t.nodes) {
		return nil, false, false
	}
	n := &t.nodes[ref]
	switch n.Kind {
	case KindRendered:
		nonEmpty = runText(n.Runs) != ""
		return n.Runs, nonEmpty, n.IsVariable

	case KindName:
		nonEmpty = runText(n.Rendered) != ""
		return n.Rendered, nonEmpty, true

	case KindCiteNumber:
		text := itoa(n.Number)
		return []outputformat.Run{{Text: text}}, text != "", true

	case KindYearSuffix:
		if n.YearSuffixLetter == "" {
			return nil, false, false
		}
		return []outputformat.Run{{Text: n.YearSuffixLetter}}, true, false

	case KindConditionalDisamb:
		children := n.ElseChildren
		if n.Taken {
			children = n.IfChildren
		}
		return t.flattenChildren(children, "")

	case KindSeq:
		return t.flattenChildren(n.Children, n.Delimiter)

	case KindGroup:
		childRuns, anyNonEmpty, anyVar := t.flattenChildrenDetailed(n.Children)
		n.HasVariableDescendant = anyVar
		n.ProducedOutput = anyNonEmpty
		if anyVar && !anyNonEmpty {
			return nil, false, true // suppressed: no output, but still counts upward as a variable descendant test was made
		}
		return flattenJoin(childRuns, n.Delimiter), anyNonEmpty, anyVar

	default:
		return nil, false, false
	}
}

func (t *Tree) flattenChildren(refs []NodeRef, delimiter string) ([]outputformat.Run, bool, bool) {
	runsList, anyNonEmpty, anyVar := t.flattenChildrenDetailed(refs)
	return flattenJoin(runsList, delimiter), anyNonEmpty, anyVar
}

func (t *Tree) flattenChildrenDetailed(refs []NodeRef) (runsList [][]outputformat.Run, anyNonEmpty bool, anyVar bool) {
	for _, c := range refs {
		runs, nonEmpty, isVar := t.flatten(c)
		if len(runs) > 0 {
			runsList = append(runsList, runs)
		}
		anyNonEmpty = anyNonEmpty || nonEmpty
		anyVar = anyVar || isVar
	}
	return
}

func flattenJoin(runsList [][]outputformat.Run, delimiter string) []outputformat.Run {
	var out []outputformat.Run
	for i, runs := range runsList {
		if i > 0 && delimiter != "" {
			out = append(out, outputformat.Run{Text: delimiter})
		}
		out = append(out, runs...)
	}
	return out
}

func runText(runs []outputformat.Run) string {
	var total int
	for _, r := range runs {
		total += len(r.Text)
	}
	if total == 0 {
		return ""
	}
	b := make([]byte, 0, total)
	for _, r := range runs {
		b = append(b, r.Text...)
	}
	return string(b)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
