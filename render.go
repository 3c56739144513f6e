package engine

import (
	"github.com/citeproc-go/engine/bibliography"
	"github.com/citeproc-go/engine/cerr"
	"github.com/citeproc-go/engine/diffqueue"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/model"
)

// BuiltCluster returns one cluster's current rendered text, or "" if
// the cluster is unknown (spec.md §6 built_cluster). A query operation:
// it never fails.
func (e *Engine) BuiltCluster(id string) string {
	return e.st.BuiltCluster(id)
}

// PreviewCluster renders draftDoc as if inserted into the document at
// the position positionDocs describes, without mutating any stored
// state (spec.md §6 preview_cluster). format, if non-empty, overrides
// the active formatter for this one render only; an unregistered name
// is silently ignored (a one-off preview is a query operation and never
// fails per spec.md §7, unlike set_output_format).
func (e *Engine) PreviewCluster(draftDoc []byte, positionDocs [][]byte, format string) (string, error) {
	draft, err := ParseCluster(draftDoc)
	if err != nil {
		return "", err
	}
	positions := make([]model.ClusterPosition, 0, len(positionDocs))
	for i, doc := range positionDocs {
		pos, err := ParseClusterPosition(doc)
		if err != nil {
			return "", cerr.Field("positions", "position %d: %v", i, err)
		}
		positions = append(positions, pos)
	}
	known := make(map[string]model.Cluster)
	for _, id := range e.st.ClusterIDs() {
		if cl, ok := e.st.Cluster(id); ok {
			known[id] = cl
		}
	}
	if err := validatePositions(positions, known, draft.ID); err != nil {
		return "", err
	}
	return e.st.PreviewCluster(draft, positions, format), nil
}

// FullRenderResult is the return shape of spec.md §6 full_render.
type FullRenderResult struct {
	Clusters      map[string]string
	BibEntries    []bibliography.Entry
	Disambiguated map[string]bool
}

// FullRender recomputes and returns the entire document's current
// rendered state (spec.md §6 full_render). It also advances the
// update-diff cursor to this snapshot, so an immediately following
// BatchedUpdates call reports no changes (spec.md §8 "full_render();
// batched_updates() yields empty diff").
func (e *Engine) FullRender() FullRenderResult {
	snap := e.st.Snapshot()
	e.diff.Diff(snap.Clusters, snap.Bibliography)
	return FullRenderResult{
		Clusters:      snap.Clusters,
		BibEntries:    snap.Bibliography,
		Disambiguated: snap.Ambiguous,
	}
}

// BatchedUpdates returns only what changed since the last call to
// FullRender or BatchedUpdates (spec.md §6 batched_updates, §4.7).
func (e *Engine) BatchedUpdates() diffqueue.Updates {
	snap := e.st.Snapshot()
	return e.diff.Diff(snap.Clusters, snap.Bibliography)
}

// DebugClusterIR returns the raw per-cite IR trees behind one cluster's
// current render, for development tooling (cmd/citeproc-render
// --debug-ir) — never consulted by rendering itself.
func (e *Engine) DebugClusterIR(id string) []*ir.Tree {
	return e.st.DebugClusterIR(id)
}
