package engine

import "github.com/citeproc-go/engine/refstore"

// InsertReference decodes and installs one CSL-JSON reference (spec.md
// §6 insert_reference). A malformed document returns a JSONShape error
// without mutating engine state.
func (e *Engine) InsertReference(doc []byte) error {
	ref, err := refstore.DecodeJSON(doc)
	if err != nil {
		return err
	}
	return e.st.Refs().Insert(ref)
}

// InsertReferences decodes and installs a batch of references
// atomically: if any document in the batch is malformed, none of them
// are installed (spec.md §6 insert_references, §7 propagation).
func (e *Engine) InsertReferences(docs [][]byte) error {
	refs := make([]*refstore.Reference, 0, len(docs))
	for _, doc := range docs {
		ref, err := refstore.DecodeJSON(doc)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	return e.st.Refs().InsertMany(refs)
}

// ResetReferences atomically replaces the entire reference set (spec.md
// §6 reset_references).
func (e *Engine) ResetReferences(docs [][]byte) error {
	refs := make([]*refstore.Reference, 0, len(docs))
	for _, doc := range docs {
		ref, err := refstore.DecodeJSON(doc)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	return e.st.Refs().Reset(refs)
}

// RemoveReference deletes a reference by id. Removing an unknown id is
// a no-op (spec.md §6 remove_reference; refstore.Store.Remove is
// idempotent by design).
func (e *Engine) RemoveReference(id string) {
	e.st.Refs().Remove(id)
}
