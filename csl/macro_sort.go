package csl

import "github.com/citeproc-go/engine/cerr"

// topologicalSort orders items by their dependencies using DFS with
// three-color marking, returning an empty slice if a cycle is found.
// Ported from the teacher's schema/ddl_ordering.go (itself used there to
// order CREATE TABLE/VIEW statements by foreign-key/view dependencies);
// here it walks the macro call graph instead of a table graph so the
// evaluator is guaranteed a DAG, per spec.md §9's "detect cycles at
// style validation (reject) so the evaluator sees a DAG."
func topologicalSort[T any](items []T, dependencies map[string][]string, getID func(T) string) []T {
	var sorted []T
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	itemMap := make(map[string]T)

	for _, item := range items {
		itemMap[getID(item)] = item
	}

	var visit func(string) bool
	visit = func(id string) bool {
		if visiting[id] {
			return false
		}
		if visited[id] {
			return true
		}
		visiting[id] = true
		for _, dep := range dependencies[id] {
			if _, exists := itemMap[dep]; exists {
				if !visit(dep) {
					return false
				}
			}
		}
		visiting[id] = false
		visited[id] = true
		if item, exists := itemMap[id]; exists {
			sorted = append(sorted, item)
		}
		return true
	}

	for _, item := range items {
		id := getID(item)
		if !visited[id] {
			if !visit(id) {
				return nil
			}
		}
	}
	return sorted
}

type macroName struct{ name string }

// validateMacroDAG rejects the style if its macro call graph has a
// cycle, or if a macro references a name that was never defined.
func validateMacroDAG(macros map[string]Element) error {
	names := make([]macroName, 0, len(macros))
	deps := make(map[string][]string, len(macros))
	for name, body := range macros {
		names = append(names, macroName{name})
		deps[name] = macroRefs(body)
	}
	for name, refs := range deps {
		for _, ref := range refs {
			if _, ok := macros[ref]; !ok {
				return cerr.New(cerr.StyleInvalid, "macro %q references undefined macro %q", name, ref)
			}
		}
	}
	sorted := topologicalSort(names, deps, func(m macroName) string { return m.name })
	if len(sorted) != len(names) {
		return cerr.New(cerr.StyleInvalid, "cyclic macro dependency detected")
	}
	return nil
}

// macroRefs collects the names of every macro a template subtree invokes.
func macroRefs(el Element) []string {
	var refs []string
	var walk func(Element)
	walk = func(e Element) {
		switch n := e.(type) {
		case Text:
			if n.Macro != "" {
				refs = append(refs, n.Macro)
			}
		case MacroRef:
			refs = append(refs, n.Name)
		case Group:
			for _, c := range n.Children {
				walk(c)
			}
		case Choose:
			for _, b := range n.Branches {
				for _, c := range b.Children {
					walk(c)
				}
			}
		}
	}
	walk(el)
	return refs
}
