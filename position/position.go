// Package position assigns each cite its position relative to the
// cites before it in document order (spec.md §4.3, §4.5 step 1): first,
// subsequent, ibid, ibid-with-locator, near-note. It is pure function of
// the cluster order and cluster contents, like the teacher's dependency
// ordering in schema/ddl_ordering.go is a pure function of the DDL set
// it's handed — no mutation, no I/O, safe to memoize by its inputs.
package position

import "github.com/citeproc-go/engine/model"

// Key identifies one cite within the document: which cluster, which
// index into that cluster's Cites slice.
type Key struct {
	ClusterID string
	Index     int
}

type entry struct {
	key     Key
	refID   string
	locator *model.Locator
	note    model.NoteNumber
	inText  bool
}

// Assign walks order (already sorted in document order, spec.md §3
// "Positions must be monotonically non-decreasing in note number") and
// returns every cite's position.
func Assign(order []model.ClusterPosition, clusters map[string]model.Cluster, nearNoteDistance int) map[Key]model.Position {
	result := make(map[Key]model.Position)
	var flat []entry

	for _, cp := range order {
		cl, ok := clusters[cp.ClusterID]
		if !ok {
			continue
		}
		for i, cite := range cl.Cites {
			flat = append(flat, entry{
				key:     Key{ClusterID: cp.ClusterID, Index: i},
				refID:   cite.RefID,
				locator: cite.Locator,
				note:    cp.Note,
				inText:  cp.InText,
			})
		}
	}

	lastSameRef := make(map[string]entry)
	for i, e := range flat {
		prevSameRef, seenBefore := lastSameRef[e.refID]
		switch {
		case !seenBefore:
			result[e.key] = model.PositionFirst
		case i > 0 && flat[i-1].refID == e.refID:
			if flat[i-1].locator != nil && e.locator != nil && *flat[i-1].locator == *e.locator {
				result[e.key] = model.PositionIbid
			} else if flat[i-1].locator == nil && e.locator == nil {
				result[e.key] = model.PositionIbid
			} else {
				result[e.key] = model.PositionIbidWithLocator
			}
		case withinNearNote(prevSameRef.note, e.note, nearNoteDistance):
			result[e.key] = model.PositionNearNote
		default:
			result[e.key] = model.PositionSubsequent
		}
		lastSameRef[e.refID] = e
	}
	return result
}

func withinNearNote(prev, cur model.NoteNumber, distance int) bool {
	if prev == nil || cur == nil {
		return false // in-text positions don't participate in near-note
	}
	return prev.Distance(cur) > 0 && prev.Distance(cur) <= distance
}
