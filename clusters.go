package engine

import (
	"encoding/json"

	"github.com/citeproc-go/engine/cerr"
	"github.com/citeproc-go/engine/model"
)

// citeDoc/clusterDoc/positionDoc mirror the CSL-JSON-adjacent wire
// shapes spec.md §6 describes for cites, clusters, and cluster
// positions.
type citeDoc struct {
	ID       string      `json:"id"`
	Locator  string      `json:"locator"`
	Label    string      `json:"label"`
	Prefix   string      `json:"prefix"`
	Suffix   string      `json:"suffix"`
	Mode     string      `json:"mode"`
	Infix    string      `json:"infix"`
	Locators [][2]string `json:"locators"`
}

type clusterDoc struct {
	ID            string    `json:"id"`
	Cites         []citeDoc `json:"cites"`
	Mode          string    `json:"mode"`
	Infix         string    `json:"infix"`
	SuppressFirst int       `json:"suppressFirst"`
}

type positionDoc struct {
	ID   string          `json:"id"`
	Note json.RawMessage `json:"note"`
}

func decodeMode(field, s string) (model.Mode, error) {
	switch s {
	case "":
		return model.ModeNormal, nil
	case "AuthorOnly":
		return model.ModeAuthorOnly, nil
	case "SuppressAuthor":
		return model.ModeSuppressAuthor, nil
	case "Composite":
		return model.ModeComposite, nil
	default:
		return model.ModeNormal, cerr.Field(field, "unknown mode %q", s)
	}
}

func decodeCite(d citeDoc) (model.Cite, error) {
	cite := model.Cite{
		RefID:  d.ID,
		Prefix: d.Prefix,
		Suffix: d.Suffix,
		Infix:  d.Infix,
	}
	if cite.RefID == "" {
		return model.Cite{}, cerr.Field("id", "cite id must not be empty")
	}
	mode, err := decodeMode("mode", d.Mode)
	if err != nil {
		return model.Cite{}, err
	}
	if mode == model.ModeComposite {
		return model.Cite{}, cerr.Field("mode", "composite mode is cluster-level only")
	}
	cite.Mode = mode

	locType, locVal := d.Label, d.Locator
	if locType == "" && locVal == "" && len(d.Locators) > 0 {
		locType, locVal = d.Locators[0][0], d.Locators[0][1]
	}
	if locVal != "" {
		cite.Locator = &model.Locator{Type: locType, Value: locVal}
	}
	return cite, nil
}

// ParseCluster decodes one CSL-JSON-adjacent cluster document (spec.md
// §6 "Cluster format").
func ParseCluster(doc []byte) (model.Cluster, error) {
	var d clusterDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return model.Cluster{}, cerr.New(cerr.JSONShape, "cluster is not a JSON object: %v", err)
	}
	if d.ID == "" {
		return model.Cluster{}, cerr.Field("id", "cluster id must not be empty")
	}
	mode, err := decodeMode("mode", d.Mode)
	if err != nil {
		return model.Cluster{}, err
	}
	cites := make([]model.Cite, 0, len(d.Cites))
	for i, cd := range d.Cites {
		cite, err := decodeCite(cd)
		if err != nil {
			return model.Cluster{}, cerr.Field("cites", "cite %d: %v", i, err)
		}
		cites = append(cites, cite)
	}
	if d.SuppressFirst < 0 || d.SuppressFirst > len(cites) {
		return model.Cluster{}, cerr.New(cerr.IndexOutOfRange, "suppressFirst %d exceeds cluster's %d cites", d.SuppressFirst, len(cites))
	}
	return model.Cluster{
		ID:            d.ID,
		Cites:         cites,
		Mode:          mode,
		Infix:         d.Infix,
		SuppressFirst: d.SuppressFirst,
	}, nil
}

// ParseClusterPosition decodes one cluster position document (spec.md
// §6 "Cluster position format").
func ParseClusterPosition(doc []byte) (model.ClusterPosition, error) {
	var d positionDoc
	if err := json.Unmarshal(doc, &d); err != nil {
		return model.ClusterPosition{}, cerr.New(cerr.JSONShape, "cluster position is not a JSON object: %v", err)
	}
	if d.ID == "" {
		return model.ClusterPosition{}, cerr.Field("id", "cluster position id must not be empty")
	}
	pos := model.ClusterPosition{ClusterID: d.ID}
	if len(d.Note) == 0 {
		pos.InText = true
		return pos, nil
	}
	var single int
	if err := json.Unmarshal(d.Note, &single); err == nil {
		pos.Note = model.NoteNumber{single}
		return pos, nil
	}
	var pair []int
	if err := json.Unmarshal(d.Note, &pair); err == nil {
		pos.Note = model.NoteNumber(pair)
		return pos, nil
	}
	return model.ClusterPosition{}, cerr.Field("note", "must be an integer or a pair of integers")
}

func uncitedPolicy(mode string, ids []string) model.UncitedPolicy {
	return model.UncitedPolicy{Mode: mode, IDs: ids}
}

// validatePositions checks that every position refers to a cluster
// present in known (or, when allowDraft is non-empty, to that single
// extra id), returning cerr.ClusterNotInFlow on the first unknown one
// (spec.md §7 ClusterNotInFlow).
func validatePositions(positions []model.ClusterPosition, known map[string]model.Cluster, allowDraft string) error {
	for _, p := range positions {
		if p.ClusterID == allowDraft {
			continue
		}
		if _, ok := known[p.ClusterID]; !ok {
			return cerr.New(cerr.ClusterNotInFlow, "position refers to unknown cluster %q", p.ClusterID)
		}
	}
	return nil
}

// InitClusters replaces the entire cluster set and document order at
// once (spec.md §6 init_clusters). clusterDocs and positionDocs are
// each one JSON document per element.
func (e *Engine) InitClusters(clusterDocs [][]byte, positionDocs [][]byte) error {
	clusters := make(map[string]model.Cluster, len(clusterDocs))
	for i, doc := range clusterDocs {
		cl, err := ParseCluster(doc)
		if err != nil {
			if !cerr.Is(err, cerr.JSONShape) {
				return err
			}
			return cerr.Field("clusters", "cluster %d: %v", i, err)
		}
		clusters[cl.ID] = cl
	}
	positions := make([]model.ClusterPosition, 0, len(positionDocs))
	for i, doc := range positionDocs {
		pos, err := ParseClusterPosition(doc)
		if err != nil {
			return cerr.Field("positions", "position %d: %v", i, err)
		}
		positions = append(positions, pos)
	}
	if err := validatePositions(positions, clusters, ""); err != nil {
		return err
	}
	e.st.InitClusters(clusters, positions)
	return nil
}

// InsertCluster installs or replaces one cluster's contents (spec.md §6
// insert_cluster). It does not change document order; call
// SetClusterOrder to place a newly inserted cluster into the flow.
func (e *Engine) InsertCluster(doc []byte) error {
	cl, err := ParseCluster(doc)
	if err != nil {
		return err
	}
	e.st.InsertCluster(cl)
	return nil
}

// RemoveCluster deletes a cluster and drops it from the document order
// (spec.md §6 remove_cluster). Removing an unknown id is a no-op.
func (e *Engine) RemoveCluster(id string) {
	e.st.RemoveCluster(id)
}

// SetClusterOrder replaces the document order (spec.md §6
// set_cluster_order). Every position must refer to a cluster already
// known to the engine.
func (e *Engine) SetClusterOrder(positionDocs [][]byte) error {
	positions := make([]model.ClusterPosition, 0, len(positionDocs))
	for i, doc := range positionDocs {
		pos, err := ParseClusterPosition(doc)
		if err != nil {
			return cerr.Field("positions", "position %d: %v", i, err)
		}
		positions = append(positions, pos)
	}
	known := make(map[string]model.Cluster)
	for _, id := range e.st.ClusterIDs() {
		if cl, ok := e.st.Cluster(id); ok {
			known[id] = cl
		}
	}
	if err := validatePositions(positions, known, ""); err != nil {
		return err
	}
	e.st.SetClusterOrder(positions)
	return nil
}
