// Package csl holds the compiled representation of a CSL style: a tagged
// tree of template elements the evaluator walks for one cite+reference
// (spec.md §4.3). CSL XML parsing/validation proper is an external
// collaborator concern (spec.md §1); Compile in this package is the
// narrow internal default good enough to build that tree and reject
// cyclic macros, not a general-purpose validator.
package csl

// Element is any node of a compiled style's template tree. Variants
// dispatch by Go type switch in the evaluator, the same "tagged sum
// type, not a class hierarchy" shape spec.md §9 calls for, and the same
// shape the teacher uses for its DDL/Table/Index element family
// (schema/ast.go): a handful of small concrete structs behind one
// marker interface.
type Element interface {
	element()
}

// Text renders a fixed value, a CSL variable, a localized term, or
// inlines a macro by name — exactly one of Value/Variable/Term/Macro is
// set.
type Text struct {
	Value    string
	Variable string
	Term     string
	Macro    string
	Prefix   string
	Suffix   string
	TextCase string // "", "lowercase", "uppercase", "capitalize-first", "title", "sentence"
	Quotes   bool
}

func (Text) element() {}

// NameFormatting carries the <name> child's knobs for a <names> block.
type NameFormatting struct {
	InitializeWith          string
	Initialize              bool
	Form                    string // "long" | "short"
	DemoteNonDroppingParticle bool
	SortOrder               string // "display" | "sort" (sort is CSL's "as-sorted" usage)
	Delimiter               string
	And                     string // "text" | "symbol"
}

// Names renders one or more name-list variables (author, editor, ...).
type Names struct {
	Variables    []string
	Name         NameFormatting
	EtAlMin      int // 0 means "no et-al truncation configured"
	EtAlUseFirst int
	Label        *Label // optional trailing role label ("eds.")
	Delimiter    string
	Prefix, Suffix string
}

func (Names) element() {}

// Date renders a date variable, either as a single localized form or as
// an explicit list of date-parts.
type Date struct {
	Variable string
	Form     string // "numeric" | "text"
	Parts    []string
	Prefix, Suffix string
}

func (Date) element() {}

// Label renders a localized term for a variable's unit (e.g. "p." for a
// locator of type "page").
type Label struct {
	Variable string
	Form     string // "long" | "short" | "symbol"
	Plural   string // "always" | "never" | "contextual"
}

func (Label) element() {}

// Number renders a number variable with ordinal/roman/long-ordinal
// formatting.
type Number struct {
	Variable string
	Form     string // "numeric" | "ordinal" | "long-ordinal" | "roman"
	Prefix, Suffix string
}

func (Number) element() {}

// Group concatenates children and suppresses itself entirely if it has
// at least one variable-rendering descendant and none of them produced
// output (spec.md §3 "Group is suppressed iff...").
type Group struct {
	Children  []Element
	Delimiter string
	Prefix, Suffix string
}

func (Group) element() {}

// Condition is one <if>/<else-if> test. A condition with Disambiguate
// set true is the branch stage 2 of disambiguation may flip.
type Condition struct {
	Position     string // "first" | "subsequent" | "ibid" | "ibid-with-locator" | "near-note" | ""
	Type         []string
	Variable     []string // "variable is present" tests
	Disambiguate bool
	MatchAll     bool // CSL match="all" (default is match="any")
}

// ChooseBranch is one <if>/<else-if>/<else> arm.
type ChooseBranch struct {
	Condition Condition
	IsElse    bool
	Children  []Element
}

// Choose is CSL's <choose><if>...<else-if>...<else>...</choose>.
type Choose struct {
	Branches []ChooseBranch
}

func (Choose) element() {}

// MacroRef inlines a named macro. Resolved during evaluation by looking
// the name up in Style.Macros; cycles are rejected at Compile time so
// the evaluator only ever sees a DAG (spec.md §9).
type MacroRef struct {
	Name string
}

func (MacroRef) element() {}

// Layout is the top-level wrapper for a citation or bibliography: a
// delimiter between cites/entries plus an overall prefix/suffix.
type Layout struct {
	Children  []Element
	Delimiter string
	Prefix, Suffix string
}

// SortKey is one key of a <sort> element (bibliography or citation
// collapse ordering).
type SortKey struct {
	Variable  string
	Macro     string
	Ascending bool
}

// Style is one fully compiled CSL style.
type Style struct {
	DefaultLocale string
	Macros        map[string]Element

	CitationLayout Layout
	CitationSort   []SortKey

	BibliographyLayout *Layout
	BibliographySort   []SortKey
	HangingIndent      bool
	SubsequentAuthorSubstitute string

	CiteGroupDelimiter string
	Collapse           string // "", "citation-number", "year", "year-suffix", "year-suffix-ranged"

	NearNoteDistance int

	DisambiguateAddNames      bool
	DisambiguateAddGivenName  bool
	DisambiguateAddYearSuffix bool
	GivenNameDisambiguationRule string // "all-names" | "primary-name" | "by-cite" (+ "-with-initials" variants)
}
