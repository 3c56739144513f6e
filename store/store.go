// Package store ties every other package together into the engine's
// incremental recomputation core (spec.md §4.1). It holds the tier-0
// inputs (style, references, clusters, cluster order, uncited policy,
// output format, locale provider) and derives, on demand, the tier-1
// per-cite IR and the tier-2 aggregates (inverted index, year suffixes,
// built clusters, bibliography) a full render or a diff needs.
//
// Rather than a general per-node dependency graph, Snapshot recomputes
// the whole tier-1/tier-2 pipeline in one deterministic pass every time
// it's called — the same "recompute the whole desired/current diff and
// let the diff itself be cheap" shape the teacher's schema/generator.go
// uses (it never tracks which specific DDL changed; it recomputes the
// full schema diff on every run). What the spec actually requires
// (byte-equal re-render, empty diff on an unrelated edit, batched
// change reporting) is achieved at the diffqueue.Cursor layer by
// comparing values, not by skipping their computation; see DESIGN.md
// for the tradeoffs of this simplification.
package store

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/citeproc-go/engine/bibliography"
	"github.com/citeproc-go/engine/cluster"
	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/disambig"
	"github.com/citeproc-go/engine/evaluator"
	"github.com/citeproc-go/engine/index"
	"github.com/citeproc-go/engine/ir"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/position"
	"github.com/citeproc-go/engine/refstore"
)

// Store is one engine instance's mutable state plus its derived-output
// pipeline.
type Store struct {
	mu sync.RWMutex

	style          *csl.Style
	refs           *refstore.Store
	clusters       map[string]model.Cluster
	order          []model.ClusterPosition
	uncited        model.UncitedPolicy
	format         *outputformat.Registry
	localeProvider localeprovider.Provider
}

// New returns a store for one engine instance.
func New(style *csl.Style, format *outputformat.Registry, lp localeprovider.Provider) *Store {
	return &Store{
		style:          style,
		refs:           refstore.New(),
		clusters:       make(map[string]model.Cluster),
		format:         format,
		localeProvider: lp,
	}
}

// Refs exposes the reference store so the engine package can validate
// and install references without this package needing to know the
// CSL-JSON wire shape.
func (s *Store) Refs() *refstore.Store { return s.refs }

// Style returns the currently installed style.
func (s *Store) Style() *csl.Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// SetStyle replaces the compiled style wholesale.
func (s *Store) SetStyle(style *csl.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = style
}

// Format returns the output-format registry, so the engine package can
// register/select formatters.
func (s *Store) Format() *outputformat.Registry { return s.format }

// InitClusters replaces the entire cluster set and document order at
// once.
func (s *Store) InitClusters(clusters map[string]model.Cluster, order []model.ClusterPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters = clusters
	s.order = order
}

// InsertCluster installs or replaces one cluster's contents.
func (s *Store) InsertCluster(cl model.Cluster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clusters[cl.ID] = cl
}

// RemoveCluster deletes a cluster and drops it from the document order.
func (s *Store) RemoveCluster(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clusters, id)
	next := make([]model.ClusterPosition, 0, len(s.order))
	for _, p := range s.order {
		if p.ClusterID != id {
			next = append(next, p)
		}
	}
	s.order = next
}

// Cluster returns one stored cluster by id.
func (s *Store) Cluster(id string) (model.Cluster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cl, ok := s.clusters[id]
	return cl, ok
}

// ClusterIDs returns every cluster id currently known, in no particular
// order — used by the engine package to validate a proposed document
// order before committing it (spec.md §7 ClusterNotInFlow).
func (s *Store) ClusterIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.clusters))
	for id := range s.clusters {
		ids = append(ids, id)
	}
	return ids
}

// SetClusterOrder replaces the document order.
func (s *Store) SetClusterOrder(order []model.ClusterPosition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = order
}

// SetUncitedPolicy replaces the bibliography's uncited-inclusion
// policy.
func (s *Store) SetUncitedPolicy(p model.UncitedPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uncited = p
}

func (s *Store) locale(lang string) localeprovider.Locale {
	if lang == "" {
		lang = s.style.DefaultLocale
	}
	if lang == "" {
		lang = "en-US"
	}
	if s.localeProvider != nil {
		if l, ok := s.localeProvider.FetchLocale(lang); ok {
			return l
		}
	}
	slog.Warn("locale not available; using empty terms", "lang", lang)
	return localeprovider.Locale{Lang: lang}
}

// Snapshot is one fully recomputed view of the document: every
// cluster's text, the bibliography, and the set of references
// disambiguation could not fully resolve (spec.md §4.4 "reported, but
// left as-is").
type Snapshot struct {
	Clusters     map[string]string
	Bibliography []bibliography.Entry
	Ambiguous    map[string]bool
	// Trees holds the per-occurrence IR for clusters named in a debug
	// request (nil unless asked for); see DebugClusterIR.
	Trees map[string][]*ir.Tree
}

// Snapshot recomputes and returns the current document state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.render(s.order, s.clusters, nil, nil)
}

// DebugClusterIR recomputes the document and returns the raw IR trees
// underlying one cluster's current render, one per cite, in cluster
// order — for development/debugging dumps only (e.g. cmd/citeproc-render
// --debug-ir), never consulted by the library's own rendering path.
func (s *Store) DebugClusterIR(id string) []*ir.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.render(s.order, s.clusters, nil, map[string]bool{id: true})
	return snap.Trees[id]
}

// BuiltCluster returns one cluster's current rendered text, or "" if
// the cluster is unknown — a query operation, so it never fails
// (spec.md §7).
func (s *Store) BuiltCluster(id string) string {
	return s.Snapshot().Clusters[id]
}

// PreviewCluster renders draft as if it were inserted into the
// document at the position positions describes, without mutating any
// stored state (spec.md §6 preview_cluster). formatName, if non-empty
// and registered, overrides the active output formatter for this one
// render.
func (s *Store) PreviewCluster(draft model.Cluster, positions []model.ClusterPosition, formatName string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clusters := make(map[string]model.Cluster, len(s.clusters)+1)
	for id, cl := range s.clusters {
		clusters[id] = cl
	}
	clusters[draft.ID] = draft

	var formatOverride outputformat.Formatter
	if formatName != "" {
		if f, ok := s.format.Lookup(formatName); ok {
			formatOverride = f
		}
	}

	snap := s.render(positions, clusters, formatOverride, nil)
	return snap.Clusters[draft.ID]
}

type occurrence struct {
	clusterID string
	index     int
	cite      model.Cite
	refID     string
}

// render is the full tier-1/tier-2 pipeline: evaluate every cite's IR,
// assign citation numbers, resolve disambiguation, assemble clusters,
// and build the bibliography. Called with s.mu held for reading.
func (s *Store) render(order []model.ClusterPosition, clusters map[string]model.Cluster, formatOverride outputformat.Formatter, debugIDs map[string]bool) Snapshot {
	var occs []occurrence
	var firstAppearance []string
	seenRef := make(map[string]bool)
	for _, pos := range order {
		cl, ok := clusters[pos.ClusterID]
		if !ok {
			continue
		}
		for i, cite := range cl.Cites {
			occs = append(occs, occurrence{clusterID: cl.ID, index: i, cite: cite, refID: cite.RefID})
			if !seenRef[cite.RefID] {
				seenRef[cite.RefID] = true
				firstAppearance = append(firstAppearance, cite.RefID)
			}
		}
	}

	nearNote := s.style.NearNoteDistance
	if d := s.locale(s.style.DefaultLocale).NearNoteDistance; d > 0 {
		nearNote = d
	}
	positions := position.Assign(order, clusters, nearNote)

	format, _ := s.format.Active()
	if formatOverride != nil {
		format = formatOverride
	}

	refsByID := make(map[string]*refstore.Reference, len(firstAppearance))
	for _, refID := range firstAppearance {
		if ref := s.refs.Get(refID); ref != nil {
			refsByID[refID] = ref
		}
	}

	// Tier-1 IR generation, one independent, side-effect-free call per
	// occurrence — safe to run on a work-stealing pool (spec.md §5
	// "Internal parallelism"). errgroup.Group gives each goroutine a
	// distinct index to write into trees without fighting over a shared
	// slice append.
	trees := make([]*ir.Tree, len(occs))
	var g errgroup.Group
	for i, occ := range occs {
		i, occ := i, occ
		ref := refsByID[occ.refID]
		if ref == nil {
			trees[i] = ir.New()
			continue
		}
		pos := positions[position.Key{ClusterID: occ.clusterID, Index: occ.index}]
		loc := s.locale(ref.Text("language"))
		g.Go(func() error {
			ctx := &evaluator.Context{Style: s.style, Ref: ref, Cite: occ.cite, Position: pos, Locale: loc}
			trees[i] = evaluator.Evaluate(ctx)
			return nil
		})
	}
	_ = g.Wait() // evaluator.Evaluate never errors; Wait only synchronizes completion

	citeNumber := make(map[string]int, len(firstAppearance))
	for i, refID := range firstAppearance {
		citeNumber[refID] = i + 1
	}
	for i, occ := range occs {
		assignCiteNumber(trees[i], citeNumber[occ.refID])
	}

	ix := index.New()
	for refID, ref := range refsByID {
		ix.SetRefTokens(refID, index.ReferenceFingerprint(s.style, ref))
	}

	groups := make(map[string]disambig.Group, len(refsByID))
	for i, occ := range occs {
		if refsByID[occ.refID] == nil {
			continue
		}
		g := groups[occ.refID]
		g.RefID = occ.refID
		g.Trees = append(g.Trees, trees[i])
		groups[occ.refID] = g
	}
	ambiguous := disambig.Resolve(s.style, ix, refsByID, groups, firstAppearance)

	byCluster := make(map[string][]*ir.Tree, len(clusters))
	for i, occ := range occs {
		byCluster[occ.clusterID] = append(byCluster[occ.clusterID], trees[i])
	}
	clusterText := make(map[string]string, len(clusters))
	for id, cl := range clusters {
		clTrees, ok := byCluster[id]
		if !ok {
			clusterText[id] = ""
			continue
		}
		clusterText[id] = cluster.Build(s.style, format, cl, clTrees)
	}

	bibLoc := s.locale(s.style.DefaultLocale)
	bib := bibliography.Build(s.style, s.refs, firstAppearance, s.uncited, bibLoc, format)

	var debugTrees map[string][]*ir.Tree
	for id := range debugIDs {
		if debugTrees == nil {
			debugTrees = make(map[string][]*ir.Tree, len(debugIDs))
		}
		debugTrees[id] = byCluster[id]
	}

	return Snapshot{Clusters: clusterText, Bibliography: bib, Ambiguous: ambiguous, Trees: debugTrees}
}

func assignCiteNumber(tree *ir.Tree, n int) {
	for i := 0; i < tree.Len(); i++ {
		node := tree.Node(ir.NodeRef(i))
		if node.Kind == ir.KindCiteNumber {
			node.Number = n
		}
	}
}
