package cluster

import (
	"strconv"
	"strings"

	"github.com/citeproc-go/engine/csl"
)

// CiteRender is one cite's already-mode-rendered text (prefix/suffix/
// locator already folded in by the caller), plus the year-suffix letter
// and citation number read from its IR tree for collapsing.
type CiteRender struct {
	RefID      string
	Text       string // fully rendered (mode applied, prefix/suffix folded in)
	BaseText   string // Text with any year-suffix letter blanked
	YearSuffix string // "" if this cite has none
	CiteNumber int     // 0 if the style has no citation-number variable
	HasAffixes bool    // true if this cite carries a locator/prefix/suffix, which disables collapsing with its neighbors
}

// Join concatenates rendered cite texts per the style's collapse mode
// (spec.md §4.5 step 3). Unknown/empty collapse values fall back to
// plain delimiter-joined grouping.
func Join(style *csl.Style, renders []CiteRender) string {
	delim := style.CitationLayout.Delimiter
	if delim == "" {
		delim = ", "
	}
	groupDelim := style.CiteGroupDelimiter
	if groupDelim == "" {
		groupDelim = delim
	}

	switch style.Collapse {
	case "year-suffix":
		return collapseYearSuffix(renders, false, delim, groupDelim)
	case "year-suffix-ranged":
		return collapseYearSuffix(renders, true, delim, groupDelim)
	case "citation-number":
		return collapseCitationNumber(renders, delim)
	default:
		return joinGrouped(renders, delim, groupDelim)
	}
}

func joinGrouped(renders []CiteRender, delim, groupDelim string) string {
	var b strings.Builder
	for i, r := range renders {
		if i > 0 {
			if renders[i-1].RefID == r.RefID {
				b.WriteString(groupDelim)
			} else {
				b.WriteString(delim)
			}
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

// collapseYearSuffix groups consecutive cites that share a base
// rendering (same author+year, differing only in year-suffix letter)
// and, once collapsed, prints the base once followed by its members'
// suffix letters. ranged additionally collapses a run of 3+ consecutive
// letters into "a-c". Any cite carrying its own affixes breaks the run,
// since a locator makes the cite no longer "just a suffix".
func collapseYearSuffix(renders []CiteRender, ranged bool, delim, groupDelim string) string {
	var b strings.Builder
	i := 0
	for i < len(renders) {
		r := renders[i]
		if r.HasAffixes || r.YearSuffix == "" {
			if i > 0 {
				b.WriteString(delim)
			}
			b.WriteString(r.Text)
			i++
			continue
		}
		j := i + 1
		letters := []string{r.YearSuffix}
		for j < len(renders) && !renders[j].HasAffixes && renders[j].BaseText == r.BaseText && renders[j].YearSuffix != "" {
			letters = append(letters, renders[j].YearSuffix)
			j++
		}
		if i > 0 {
			b.WriteString(delim)
		}
		b.WriteString(r.BaseText)
		b.WriteString(joinLetters(letters, ranged, groupDelim))
		i = j
	}
	return b.String()
}

func joinLetters(letters []string, ranged bool, groupDelim string) string {
	if !ranged || len(letters) < 3 {
		return strings.Join(letters, groupDelim)
	}
	return letters[0] + "-" + letters[len(letters)-1]
}

// collapseCitationNumber joins consecutive +1 runs of citation-number
// cites as "first-last" ranges; runs shorter than 3 stay comma-joined.
func collapseCitationNumber(renders []CiteRender, delim string) string {
	var parts []string
	i := 0
	for i < len(renders) {
		j := i + 1
		for j < len(renders) && renders[j].CiteNumber == renders[j-1].CiteNumber+1 {
			j++
		}
		if j-i >= 3 {
			parts = append(parts, strconv.Itoa(renders[i].CiteNumber)+"-"+strconv.Itoa(renders[j-1].CiteNumber))
		} else {
			for k := i; k < j; k++ {
				parts = append(parts, strconv.Itoa(renders[k].CiteNumber))
			}
		}
		i = j
	}
	return strings.Join(parts, delim)
}
