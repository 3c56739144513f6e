package index

import (
	"fmt"
	"strings"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/refstore"
)

// NameTokens returns every rendering a name could shorten to: the bare
// family name, the initials-plus-family form (if the style initializes
// given names), and the full given-plus-family form. spec.md §4.2's
// worked example: "John Adams" under initialize-with="." yields
// {"ADAMS", "J. ADAMS", "JOHN ADAMS"}.
func NameTokens(n refstore.Name, initializeWith string) []string {
	if n.IsLiteral() {
		return []string{strings.ToUpper(n.Literal)}
	}
	family := strings.ToUpper(n.Family)
	if family == "" {
		return nil
	}
	tokens := []string{family}
	if n.Given != "" {
		if initializeWith != "" {
			initials := refstore.Initialize(n.Given, initializeWith)
			tokens = append(tokens, strings.ToUpper(initials+" "+n.Family))
		}
		tokens = append(tokens, strings.ToUpper(n.Given+" "+n.Family))
	}
	return tokens
}

// DateTokens returns one token per granularity the endpoint actually
// carries: "year:1999", "year-month:1999-5", "year-month-day:1999-5-12".
func DateTokens(e refstore.DateEndpoint) []string {
	var toks []string
	if e.Year() == 0 {
		return toks
	}
	toks = append(toks, fmt.Sprintf("year:%d", e.Year()))
	if e.Month() != 0 {
		toks = append(toks, fmt.Sprintf("year-month:%d-%d", e.Year(), e.Month()))
	}
	if e.Day() != 0 {
		toks = append(toks, fmt.Sprintf("year-month-day:%d-%d-%d", e.Year(), e.Month(), e.Day()))
	}
	return toks
}

// usage is the static analysis result of walking a style's template
// tree (and its macros) once: which name variables, date variables, and
// condition tests it consults anywhere, independent of any one cite.
type usage struct {
	nameVars []string
	dateVars []string
	typeTest bool
	presenceVars []string
	initializeWith string
}

// analyzeUsage walks the citation layout and every macro it (transitively)
// reaches, collecting which reference fields the style ever looks at.
// Macro cycles were already rejected at csl.Compile time, so this always
// terminates.
func analyzeUsage(style *csl.Style) usage {
	var u usage
	seen := make(map[string]bool)
	var walk func(el csl.Element)
	walk = func(el csl.Element) {
		switch n := el.(type) {
		case csl.Text:
			if n.Macro != "" && !seen[n.Macro] {
				seen[n.Macro] = true
				if body, ok := style.Macros[n.Macro]; ok {
					walk(body)
				}
			}
		case csl.Names:
			u.nameVars = append(u.nameVars, n.Variables...)
			if n.Name.InitializeWith != "" {
				u.initializeWith = n.Name.InitializeWith
			}
		case csl.Date:
			u.dateVars = append(u.dateVars, n.Variable)
		case csl.Group:
			for _, c := range n.Children {
				walk(c)
			}
		case csl.Choose:
			for _, b := range n.Branches {
				if len(b.Condition.Type) > 0 {
					u.typeTest = true
				}
				u.presenceVars = append(u.presenceVars, b.Condition.Variable...)
				for _, c := range b.Children {
					walk(c)
				}
			}
		}
	}
	for _, c := range style.CitationLayout.Children {
		walk(c)
	}
	return u
}

// ReferenceFingerprint computes the full set of tokens a reference's own
// data could ever render to under this style — the per-reference entry
// the inverted index stores (spec.md §4.2). It is a pure function of
// (style, reference): re-deriving it after an unrelated edit yields the
// same set. The store recomputes it for every reference on each render.
func ReferenceFingerprint(style *csl.Style, ref *refstore.Reference) []string {
	u := analyzeUsage(style)
	var tokens []string

	for _, v := range u.nameVars {
		for _, n := range ref.Names(v) {
			tokens = append(tokens, NameTokens(n, u.initializeWith)...)
		}
	}
	for _, v := range u.dateVars {
		if d, ok := ref.DateField(v); ok {
			tokens = append(tokens, DateTokens(d.From)...)
			if d.IsRange() {
				tokens = append(tokens, DateTokens(*d.To)...)
			}
		}
	}
	if u.typeTest {
		tokens = append(tokens, "type:"+string(ref.Type))
	}
	for _, v := range u.presenceVars {
		_, present := ref.Field(v)
		tokens = append(tokens, fmt.Sprintf("has:%s=%v", v, present))
	}
	return dedupe(tokens)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
