package evaluator

import (
	"strings"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
)

func evalNumber(tree *ir.Tree, ctx *Context, num csl.Number) ir.NodeRef {
	if num.Variable == "citation-number" {
		// The final value is only known once cluster ordering is fixed
		// (spec.md §4.5); leave it unassigned here, the same pattern
		// KindYearSuffix uses for year-suffix letters.
		ref := tree.Alloc(ir.KindCiteNumber)
		return wrapAffixes(tree, ref, num.Prefix, num.Suffix)
	}

	ctx.Used.mark(num.Variable)
	v, ok := ctx.Ref.Field(num.Variable)
	ref := tree.Alloc(ir.KindRendered)
	node := tree.Node(ref)
	node.IsVariable = true
	if !ok || v.Kind != refstore.KindNumber {
		return ref
	}

	var text string
	if !v.Number.IsInt {
		text = v.Number.Raw
	} else {
		text = formatNumber(v.Number.Int, num.Form, ctx)
	}
	node.Runs = []outputformat.Run{{Text: num.Prefix + text + num.Suffix}}
	return ref
}

func formatNumber(n int, form string, ctx *Context) string {
	switch form {
	case "ordinal":
		return itoa(n) + ordinalSuffix(n, ctx)
	case "long-ordinal":
		if word, ok := longOrdinal(n); ok {
			return word
		}
		return itoa(n) + ordinalSuffix(n, ctx)
	case "roman":
		return toRoman(n)
	default:
		return itoa(n)
	}
}

func ordinalSuffix(n int, ctx *Context) string {
	rule := "other"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		rule = "other"
	case n%10 == 1:
		rule = "1"
	case n%10 == 2:
		rule = "2"
	case n%10 == 3:
		rule = "3"
	}
	if s := ctx.Locale.Ordinals[rule]; s != "" {
		return s
	}
	return ctx.Locale.Ordinals["other"]
}

var longOrdinals = map[int]string{
	1: "first", 2: "second", 3: "third", 4: "fourth", 5: "fifth",
	6: "sixth", 7: "seventh", 8: "eighth", 9: "ninth", 10: "tenth",
}

func longOrdinal(n int) (string, bool) {
	s, ok := longOrdinals[n]
	return s, ok
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// toRoman renders a lowercase Roman numeral, CSL's convention for
// form="roman". Values outside 1..3999 fall back to plain digits —
// Roman numerals have no standard representation beyond that range.
func toRoman(n int) string {
	if n <= 0 || n > 3999 {
		return itoa(n)
	}
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}
