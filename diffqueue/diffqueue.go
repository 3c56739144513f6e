// Package diffqueue implements the batched update-diff cursor spec.md
// §4.7 describes: a cursor over the last snapshot handed to a caller,
// comparing it against a fresh one and reporting only what changed.
package diffqueue

import (
	"slices"
	"sort"
	"sync"

	"github.com/citeproc-go/engine/bibliography"
)

// ClusterUpdate is one changed cluster's freshly rendered text.
type ClusterUpdate struct {
	ID   string
	Text string
}

// BibliographyDiff reports a bibliography change. EntryIDs is non-nil
// only when the ordered id list itself changed; UpdatedEntries always
// lists every entry whose rendered text changed (including new ones),
// keyed by reference id.
type BibliographyDiff struct {
	EntryIDs       []string
	UpdatedEntries map[string]string
}

// Updates is one batched_updates()/full_render() result.
type Updates struct {
	Clusters     []ClusterUpdate
	Bibliography *BibliographyDiff
}

// Cursor holds the last snapshot drained, so repeated Diff calls with
// no intervening edits report nothing (spec.md §8 "two consecutive
// calls with no intervening edits produce an empty second result").
type Cursor struct {
	mu           sync.Mutex
	lastClusters map[string]string
	lastBibOrder []string
	lastBibText  map[string]string
}

// NewCursor returns a cursor with an empty snapshot, so the very first
// Diff call reports every cluster and bibliography entry as new.
func NewCursor() *Cursor {
	return &Cursor{lastClusters: map[string]string{}, lastBibText: map[string]string{}}
}

// Diff compares clusters/bib against the last snapshot this cursor
// drained, reports the differences, then advances its snapshot to the
// values just compared — so calling Diff again immediately afterward
// with the same inputs yields an empty Updates.
func (c *Cursor) Diff(clusters map[string]string, bib []bibliography.Entry) Updates {
	c.mu.Lock()
	defer c.mu.Unlock()

	var upd Updates
	for id, text := range clusters {
		if c.lastClusters[id] != text {
			upd.Clusters = append(upd.Clusters, ClusterUpdate{ID: id, Text: text})
		}
	}
	sort.Slice(upd.Clusters, func(i, j int) bool { return upd.Clusters[i].ID < upd.Clusters[j].ID })

	bibOrder := make([]string, len(bib))
	bibText := make(map[string]string, len(bib))
	for i, e := range bib {
		bibOrder[i] = e.RefID
		bibText[e.RefID] = e.Text
	}
	orderChanged := !slices.Equal(bibOrder, c.lastBibOrder)
	updated := make(map[string]string)
	for id, text := range bibText {
		if c.lastBibText[id] != text {
			updated[id] = text
		}
	}
	if orderChanged || len(updated) > 0 {
		diff := &BibliographyDiff{UpdatedEntries: updated}
		if orderChanged {
			diff.EntryIDs = bibOrder
		}
		upd.Bibliography = diff
	}

	c.lastClusters = clusters
	c.lastBibOrder = bibOrder
	c.lastBibText = bibText
	return upd
}
