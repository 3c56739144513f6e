// Package ir implements the tree-shaped intermediate representation
// spec.md §3/§9 describes: a tagged sum type whose nodes are either
// finalized rendered fragments or placeholders for still-undetermined
// disambiguation choices, stored in a single arena per cite with
// children referenced by integer index rather than pointer (spec.md §9
// "Arena + index for the IR tree") — cheap to clone/share across the
// four disambiguation stages. Node dispatch is by Kind tag, the same
// "sum type, not a class hierarchy" shape the teacher uses for its
// DDL/Table element family (schema/ast.go's `DDL interface{ Statement()
// string }` family of small concrete structs).
package ir

import "github.com/citeproc-go/engine/outputformat"

// Kind tags which IR node variant a Node is.
type Kind int

const (
	// KindRendered holds final text with inline formatting — no further
	// disambiguation state.
	KindRendered Kind = iota
	// KindName is a <names> block: accumulated inlines plus the knobs
	// stage 3 mutates (et-al cutoff, given-name expansion).
	KindName
	// KindConditionalDisamb is a CSL disambiguate="true" branch, not
	// taken until stage 2 flips it.
	KindConditionalDisamb
	// KindYearSuffix is a placeholder resolved by stage 4.
	KindYearSuffix
	// KindGroup concatenates children, suppressed if it has a
	// variable-rendering descendant and none of them produced output.
	KindGroup
	// KindSeq is a plain concatenation with no suppression semantics.
	KindSeq
	// KindCiteNumber is assigned after cluster ordering is known.
	KindCiteNumber
)

// NodeRef is an index into a Tree's arena; 0 is the first node allocated.
// Nil (-1) is the sentinel for "no node".
type NodeRef int

const Nil NodeRef = -1

// Node is one arena slot. Only the fields relevant to Kind are
// meaningful; the rest are zero. This mirrors a tagged union in a
// language that doesn't have one natively — the Kind field plus a type
// switch in flatten.go is the "dispatch by variant tag" spec.md §9
// calls for.
type Node struct {
	Kind Kind

	// KindRendered
	Runs []outputformat.Run
	// IsVariable marks a KindRendered node whose text came from a CSL
	// variable access (vs. a literal <text value="..."/> or term), which
	// is what counts toward a Group's suppression decision (spec.md §3).
	IsVariable bool

	// KindName
	RefID             string
	NameVariables     []string
	EtAlCutoff        int  // current "show at most N before et-al" cutoff; 0 = style default
	GivenNameExpanded bool // stage 3 "add given name" flag
	Rendered          []outputformat.Run // the name block's last-rendered output, refreshed on re-evaluation

	// Formatting knobs captured at evaluation time so a disambiguation
	// stage can re-render this node (after bumping EtAlCutoff or flipping
	// GivenNameExpanded) without re-walking the whole style. Kept as
	// plain scalars rather than a csl.NameFormatting value so this
	// package never needs to import csl.
	NameInitializeWith    string
	NameDemoteNonDropping bool
	NameDisplayOrder      bool
	NameDelimiter         string
	NameAnd               string
	AndTerm               string
	EtAlTerm              string

	// KindConditionalDisamb
	Taken        bool
	IfChildren   []NodeRef
	ElseChildren []NodeRef

	// KindYearSuffix
	YearSuffixRefID string
	YearSuffixLetter string // "" until stage 4 assigns one

	// KindGroup / KindSeq
	Children  []NodeRef
	Delimiter string

	// KindGroup suppression bookkeeping (spec.md §3 invariant)
	HasVariableDescendant bool
	ProducedOutput        bool

	// KindCiteNumber
	Number int
}

// Tree is one cite's IR: an arena of Nodes plus the root reference.
type Tree struct {
	nodes []Node
	Root  NodeRef
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Alloc appends a new node of the given kind and returns its reference.
func (t *Tree) Alloc(kind Kind) NodeRef {
	t.nodes = append(t.nodes, Node{Kind: kind})
	return NodeRef(len(t.nodes) - 1)
}

// Node returns a mutable pointer into the arena for ref. Panics on an
// out-of-range ref, always a caller bug.
func (t *Tree) Node(ref NodeRef) *Node {
	return &t.nodes[ref]
}

// Len reports how many nodes the arena holds.
func (t *Tree) Len() int { return len(t.nodes) }

// Clone deep-copies the tree so a disambiguation stage can mutate its
// copy (et-al cutoffs, branch choices, year-suffix letters) without
// disturbing the version other cites to the same reference might still
// be sharing a pointer to, per the incremental store's "identical
// value, including pointer equality where feasible" contract (spec.md
// §4.1).
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		nodes[i] = n
		nodes[i].Runs = append([]outputformat.Run(nil), n.Runs...)
		nodes[i].Rendered = append([]outputformat.Run(nil), n.Rendered...)
		nodes[i].NameVariables = append([]string(nil), n.NameVariables...)
		nodes[i].IfChildren = append([]NodeRef(nil), n.IfChildren...)
		nodes[i].ElseChildren = append([]NodeRef(nil), n.ElseChildren...)
		nodes[i].Children = append([]NodeRef(nil), n.Children...)
	}
	return &Tree{nodes: nodes, Root: t.Root}
}
