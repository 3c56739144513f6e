// Package bibliography assembles the bibliography entry set (spec.md
// §4.6): select which references participate (cited plus whatever the
// uncited policy adds), render each through style.BibliographyLayout,
// order the result with a locale-collated sort over
// style.BibliographySort, then fold in subsequent-author-substitute.
package bibliography

import (
	"fmt"
	"sort"
	"strings"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/evaluator"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Entry is one finished bibliography item.
type Entry struct {
	RefID string
	Text  string
}

// Build renders the bibliography for one engine snapshot. citedIDs is
// every reference id cited by at least one cluster in the document, in
// no particular order; uncited controls whether additional
// not-actually-cited references are folded in (spec.md §6
// include_uncited). A style with no <bibliography> element returns an
// empty, error-free result — building a bibliography is always a query
// operation (spec.md §7 "query operations never fail").
func Build(style *csl.Style, refs *refstore.Store, citedIDs []string, uncited model.UncitedPolicy, locale localeprovider.Locale, format outputformat.Formatter) []Entry {
	if style.BibliographyLayout == nil {
		return nil
	}
	ids := selectIDs(refs, citedIDs, uncited)
	entries := make([]Entry, 0, len(ids))
	trees := make(map[string]*ir.Tree, len(ids))
	for _, id := range ids {
		ref := refs.Get(id)
		if ref == nil {
			continue
		}
		ctx := &evaluator.Context{Style: style, Ref: ref, Cite: model.Cite{RefID: id}, Position: model.PositionFirst, Locale: locale}
		tree := evaluator.EvaluateLayout(ctx, *style.BibliographyLayout)
		trees[id] = tree
		entries = append(entries, Entry{RefID: id, Text: format.Render([]outputformat.Run{{Text: style.BibliographyLayout.Prefix + flattenText(tree) + style.BibliographyLayout.Suffix}})})
	}

	sortEntries(style, refs, locale, entries)

	if style.SubsequentAuthorSubstitute != "" {
		applySubsequentAuthorSubstitute(entries, trees, style.SubsequentAuthorSubstitute)
	}

	return entries
}

// selectIDs unions the cited-reference set with whatever the uncited
// policy adds (spec.md §6 "none"/"all"/"specific"), deduplicated, and
// restricted to references that actually exist in the store.
func selectIDs(refs *refstore.Store, citedIDs []string, uncited model.UncitedPolicy) []string {
	set := make(map[string]bool, len(citedIDs))
	var ids []string
	add := func(id string) {
		if !set[id] && refs.Get(id) != nil {
			set[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range citedIDs {
		add(id)
	}
	switch uncited.Mode {
	case "all":
		for _, id := range refs.All() {
			add(id)
		}
	case "specific":
		for _, id := range uncited.IDs {
			add(id)
		}
	}
	return ids
}

func flattenText(t *ir.Tree) string {
	var b strings.Builder
	for _, r := range t.Flatten() {
		b.WriteString(r.Text)
	}
	return b.String()
}

func sortEntries(style *csl.Style, refs *refstore.Store, locale localeprovider.Locale, entries []Entry) {
	if len(style.BibliographySort) == 0 {
		return
	}
	lang, err := language.Parse(locale.Lang)
	if err != nil {
		lang = language.English
	}
	col := collate.New(lang)

	keys := make(map[string][]string, len(entries))
	for _, e := range entries {
		ref := refs.Get(e.RefID)
		ks := make([]string, len(style.BibliographySort))
		for i, sk := range style.BibliographySort {
			ks[i] = sortKeyValue(style, ref, locale, sk)
		}
		keys[e.RefID] = ks
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := keys[entries[i].RefID], keys[entries[j].RefID]
		for n, sk := range style.BibliographySort {
			c := col.CompareString(ki[n], kj[n])
			if c == 0 {
				continue
			}
			if !sk.Ascending {
				c = -c
			}
			return c < 0
		}
		return false
	})
}

// sortKeyValue resolves one sort key against one reference: a macro key
// renders the macro and sorts on its text; a variable key sorts on the
// name list's sort-form key, a date's zero-padded numeric form, or the
// plain text value, in that order of preference.
func sortKeyValue(style *csl.Style, ref *refstore.Reference, locale localeprovider.Locale, key csl.SortKey) string {
	if ref == nil {
		return ""
	}
	if key.Macro != "" {
		layout := csl.Layout{Children: []csl.Element{csl.MacroRef{Name: key.Macro}}}
		ctx := &evaluator.Context{Style: style, Ref: ref, Cite: model.Cite{RefID: ref.ID}, Position: model.PositionFirst, Locale: locale}
		return flattenText(evaluator.EvaluateLayout(ctx, layout))
	}
	if names := ref.Names(key.Variable); len(names) > 0 {
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = refstore.SortKey(n)
		}
		return strings.Join(parts, " ")
	}
	if d, ok := ref.DateField(key.Variable); ok {
		return fmt.Sprintf("%04d%02d%02d", d.From.Year(), d.From.Month(), d.From.Day())
	}
	return ref.Text(key.Variable)
}

// applySubsequentAuthorSubstitute blanks a run of consecutive entries'
// author rendering (in final sort order) once the same author list has
// already appeared, replacing it with substitute text.
func applySubsequentAuthorSubstitute(entries []Entry, trees map[string]*ir.Tree, substitute string) {
	var lastAuthor string
	seenFirst := false
	for i := range entries {
		tree := trees[entries[i].RefID]
		author := authorText(tree)
		if author == "" {
			continue
		}
		if seenFirst && author == lastAuthor {
			entries[i].Text = strings.Replace(entries[i].Text, author, substitute, 1)
		} else {
			lastAuthor = author
			seenFirst = true
		}
	}
}

func authorText(t *ir.Tree) string {
	var b strings.Builder
	for i := 0; i < t.Len(); i++ {
		n := t.Node(ir.NodeRef(i))
		if n.Kind == ir.KindName {
			for _, r := range n.Rendered {
				b.WriteString(r.Text)
			}
		}
	}
	return b.String()
}
