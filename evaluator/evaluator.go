// Package evaluator implements stage 1 of IR generation (spec.md §4.3):
// walking a compiled style's template tree for one cite against one
// reference, producing an ir.Tree plus the set of reference fields that
// rendering actually touched. Its dispatch is a Go type switch over
// csl.Element variants, the same "switch on the tagged variant, one
// case per concrete type" shape the teacher's generator uses to turn a
// desired/current DDL pair into an action (schema/generator.go's
// generateDDLs), here turning one template element into IR nodes
// instead of one schema diff into a SQL statement.
package evaluator

import (
	"strings"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
)

// NameOverride carries a disambiguation stage's per-name-variable
// decisions (spec.md §4.4 stages "add names", "add given name") so a
// later re-evaluation of the same cite renders differently without
// re-walking the whole style by hand.
type NameOverride struct {
	EtAlCutoff        int // 0 means "use the style's own et-al-min/et-al-use-first"
	GivenNameExpanded bool
}

// Context is everything one IR evaluation needs: which cite, against
// which reference, in which position, under which style and locale.
type Context struct {
	Style    *csl.Style
	Ref      *refstore.Reference
	Cite     model.Cite
	Position model.Position
	Locale   localeprovider.Locale

	// NameOverrides is keyed by the <names variable="..."> attribute
	// (e.g. "author"); absent entries use the style's own defaults.
	NameOverrides map[string]NameOverride

	// Used accumulates, during this one evaluation, the reference
	// fields actually consulted — the per-cite dependency set. The store
	// does not read it; it recomputes every cite on each render.
	// Evaluate initializes this if the caller leaves it nil.
	Used *UsedSet
}

// UsedSet is the set of reference variables one IR evaluation consulted.
type UsedSet struct {
	Vars map[string]bool
}

func newUsedSet() *UsedSet { return &UsedSet{Vars: make(map[string]bool)} }

func (u *UsedSet) mark(name string) {
	if u != nil && name != "" {
		u.Vars[name] = true
	}
}

// Evaluate builds the IR tree for ctx.Cite against ctx.Ref, recording
// every variable it consults into ctx.Used.
func Evaluate(ctx *Context) *ir.Tree {
	return EvaluateLayout(ctx, ctx.Style.CitationLayout)
}

// EvaluateLayout is Evaluate generalized to an arbitrary layout, so the
// bibliography assembler can walk style.BibliographyLayout the same way
// Evaluate walks the citation layout.
func EvaluateLayout(ctx *Context, layout csl.Layout) *ir.Tree {
	if ctx.Used == nil {
		ctx.Used = newUsedSet()
	}
	tree := ir.New()
	children := evalChildren(tree, ctx, layout.Children)
	root := tree.Alloc(ir.KindSeq)
	n := tree.Node(root)
	n.Children = children
	n.Delimiter = layout.Delimiter
	tree.Root = root
	return tree
}

func evalChildren(tree *ir.Tree, ctx *Context, els []csl.Element) []ir.NodeRef {
	refs := make([]ir.NodeRef, 0, len(els))
	for _, el := range els {
		refs = append(refs, evalElement(tree, ctx, el))
	}
	return refs
}

// evalElement dispatches one template element to its IR node, the
// single type switch every variant of csl.Element passes through.
func evalElement(tree *ir.Tree, ctx *Context, el csl.Element) ir.NodeRef {
	switch n := el.(type) {
	case csl.Text:
		return evalText(tree, ctx, n)
	case csl.Names:
		return evalNames(tree, ctx, n)
	case csl.Date:
		return evalDate(tree, ctx, n)
	case csl.Label:
		return evalLabel(tree, ctx, n.Variable, n.Form, n.Plural, "", "")
	case csl.Number:
		return evalNumber(tree, ctx, n)
	case csl.Group:
		return evalGroup(tree, ctx, n)
	case csl.Choose:
		return evalChoose(tree, ctx, n)
	case csl.MacroRef:
		if body, ok := ctx.Style.Macros[n.Name]; ok {
			return evalElement(tree, ctx, body)
		}
		return emptySeq(tree)
	default:
		return emptySeq(tree)
	}
}

func emptySeq(tree *ir.Tree) ir.NodeRef {
	return tree.Alloc(ir.KindSeq)
}

func evalText(tree *ir.Tree, ctx *Context, t csl.Text) ir.NodeRef {
	if t.Variable == "year-suffix" {
		ref := tree.Alloc(ir.KindYearSuffix)
		tree.Node(ref).YearSuffixRefID = ctx.Cite.RefID
		return ref
	}

	var text string
	isVariable := false
	switch {
	case t.Value != "":
		text = t.Value
	case t.Variable != "":
		text = ctx.Ref.Text(t.Variable)
		ctx.Used.mark(t.Variable)
		isVariable = true
	case t.Term != "":
		text = ctx.Locale.Term(t.Term)
	case t.Macro != "":
		if body, ok := ctx.Style.Macros[t.Macro]; ok {
			ref := evalElement(tree, ctx, body)
			return wrapAffixes(tree, ref, t.Prefix, t.Suffix)
		}
	}
	text = applyCase(text, t.TextCase)
	if t.Quotes && text != "" {
		text = "“" + text + "”"
	}
	text = t.Prefix + text + t.Suffix
	ref := tree.Alloc(ir.KindRendered)
	node := tree.Node(ref)
	node.Runs = []outputformat.Run{{Text: text, QuoteSwap: t.Quotes}}
	node.IsVariable = isVariable
	return ref
}

func evalLabel(tree *ir.Tree, ctx *Context, variable, form, plural, prefix, suffix string) ir.NodeRef {
	termName := variable
	if form == "short" || form == "symbol" {
		termName = variable + "/" + form
	}
	text := ctx.Locale.Term(termName)
	if plural == "always" {
		text = pluralizeTerm(text)
	}
	ref := tree.Alloc(ir.KindRendered)
	tree.Node(ref).Runs = []outputformat.Run{{Text: prefix + text + suffix}}
	return ref
}

func pluralizeTerm(s string) string {
	if s == "" || strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

func evalDate(tree *ir.Tree, ctx *Context, d csl.Date) ir.NodeRef {
	ctx.Used.mark(d.Variable)
	date, ok := ctx.Ref.DateField(d.Variable)
	ref := tree.Alloc(ir.KindRendered)
	node := tree.Node(ref)
	if !ok {
		node.Runs = nil
		node.IsVariable = true
		return ref
	}
	text := renderDateEndpoint(date.From, d.Form, d.Parts, ctx.Locale)
	if date.IsRange() {
		text += "–" + renderDateEndpoint(*date.To, d.Form, d.Parts, ctx.Locale)
	}
	if date.Circa {
		text = "c. " + text
	}
	node.Runs = []outputformat.Run{{Text: d.Prefix + text + d.Suffix}}
	node.IsVariable = true
	return ref
}

func renderDateEndpoint(e refstore.DateEndpoint, form string, parts []string, loc localeprovider.Locale) string {
	want := parts
	if len(want) == 0 {
		want = []string{"year", "month", "day"}
	}
	var fields []string
	for _, p := range want {
		switch p {
		case "year":
			if e.Year() != 0 {
				fields = append(fields, itoa(e.Year()))
			}
		case "month":
			if e.Month() != 0 {
				fields = append(fields, monthText(e.Month(), form, loc))
			}
		case "day":
			if e.Day() != 0 {
				fields = append(fields, itoa(e.Day()))
			}
		}
	}
	return strings.Join(fields, " ")
}

func monthText(m int, form string, loc localeprovider.Locale) string {
	if form == "text" {
		if t := loc.Term(monthTermName(m)); t != "" {
			return t
		}
	}
	return itoa(m)
}

func monthTermName(m int) string {
	names := [...]string{"month-01", "month-02", "month-03", "month-04", "month-05", "month-06",
		"month-07", "month-08", "month-09", "month-10", "month-11", "month-12"}
	if m < 1 || m > 12 {
		return ""
	}
	return names[m-1]
}

func evalGroup(tree *ir.Tree, ctx *Context, g csl.Group) ir.NodeRef {
	children := evalChildren(tree, ctx, g.Children)
	ref := tree.Alloc(ir.KindGroup)
	n := tree.Node(ref)
	n.Children = children
	n.Delimiter = g.Delimiter
	return wrapAffixes(tree, ref, g.Prefix, g.Suffix)
}

// wrapAffixes attaches a prefix/suffix around an already-built subtree
// by wrapping it in a Seq with literal text siblings. Cheap enough not
// to warrant a dedicated IR node kind.
func wrapAffixes(tree *ir.Tree, inner ir.NodeRef, prefix, suffix string) ir.NodeRef {
	if prefix == "" && suffix == "" {
		return inner
	}
	var children []ir.NodeRef
	if prefix != "" {
		children = append(children, literal(tree, prefix))
	}
	children = append(children, inner)
	if suffix != "" {
		children = append(children, literal(tree, suffix))
	}
	ref := tree.Alloc(ir.KindSeq)
	tree.Node(ref).Children = children
	return ref
}

func literal(tree *ir.Tree, s string) ir.NodeRef {
	ref := tree.Alloc(ir.KindRendered)
	tree.Node(ref).Runs = []outputformat.Run{{Text: s}}
	return ref
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
