// Package refstore holds the typed bibliographic record model (spec.md
// §3 "Reference") and the store that owns references for one engine
// instance: immutable once inserted, replaced only as whole records,
// destroyed by remove.
package refstore

// Type is a reference's CSL type tag, drawn from a closed enumeration.
// Unknown tags are rejected at decode time rather than accepted loosely,
// mirroring the teacher's closed GeneratorMode enumeration
// (schema/generator.go) rather than an open string.
type Type string

const (
	TypeArticle       Type = "article"
	TypeArticleJournal Type = "article-journal"
	TypeBook          Type = "book"
	TypeChapter       Type = "chapter"
	TypeLegalCase     Type = "legal_case"
	TypeReport        Type = "report"
	TypeThesis        Type = "thesis"
	TypeWebpage       Type = "webpage"
	TypeManuscript    Type = "manuscript"
	TypeDataset       Type = "dataset"
)

var knownTypes = map[Type]bool{
	TypeArticle: true, TypeArticleJournal: true, TypeBook: true,
	TypeChapter: true, TypeLegalCase: true, TypeReport: true,
	TypeThesis: true, TypeWebpage: true, TypeManuscript: true,
	TypeDataset: true,
}

// IsKnownType reports whether t is one of the closed enumeration's tags.
func IsKnownType(t Type) bool { return knownTypes[t] }

// Reference is one immutable bibliographic record.
type Reference struct {
	ID     string
	Type   Type
	Fields map[string]Value
}

// ValueKind tags which variant a Value holds.
type ValueKind int

const (
	KindText ValueKind = iota
	KindNameList
	KindDate
	KindNumber
)

// Value is a CSL variable value: exactly one of Text, Names, Date,
// Number is meaningful, selected by Kind.
type Value struct {
	Kind   ValueKind
	Text   string
	Names  []Name
	Date   Date
	Number NumberValue
}

// Name is one entry of a name-list variable. A literal name (organization,
// etc.) sets Literal and leaves the rest empty.
type Name struct {
	Given               string
	Family              string
	DroppingParticle    string
	NonDroppingParticle string
	Suffix              string
	Literal             string
}

// IsLiteral reports whether this name should be rendered as a single
// opaque string rather than decomposed into given/family order.
func (n Name) IsLiteral() bool { return n.Literal != "" }

// DateEndpoint is one side of a date, 1-3 integer parts (year[, month[, day]]).
type DateEndpoint struct {
	Parts []int
}

// Year returns the endpoint's year, or 0 if the endpoint is empty.
func (e DateEndpoint) Year() int {
	if len(e.Parts) > 0 {
		return e.Parts[0]
	}
	return 0
}

// Month returns the endpoint's month, or 0 if not present.
func (e DateEndpoint) Month() int {
	if len(e.Parts) > 1 {
		return e.Parts[1]
	}
	return 0
}

// Day returns the endpoint's day, or 0 if not present.
func (e DateEndpoint) Day() int {
	if len(e.Parts) > 2 {
		return e.Parts[2]
	}
	return 0
}

// Date is a structured CSL date variable, optionally a range (From/To),
// optionally circa/raw/season/literal.
type Date struct {
	From    DateEndpoint
	To      *DateEndpoint // nil unless the date is a range
	Circa   bool
	Season  string
	Raw     string
	Literal string
}

// IsRange reports whether the date has a second endpoint.
func (d Date) IsRange() bool { return d.To != nil }

// Granularity classifies how precise a date is, used by the inverted
// index to build year / year+month / year+month+day keys (spec.md §4.2).
type Granularity int

const (
	GranularityNone Granularity = iota
	GranularityYear
	GranularityYearMonth
	GranularityYearMonthDay
)

// Granularity reports the endpoint's precision.
func (e DateEndpoint) Granularity() Granularity {
	switch len(e.Parts) {
	case 0:
		return GranularityNone
	case 1:
		return GranularityYear
	case 2:
		return GranularityYearMonth
	default:
		return GranularityYearMonthDay
	}
}

// NumberValue is either a plain integer or a free-form numeric string
// such as "56-58" that the style's number formatting must pass through.
type NumberValue struct {
	IsInt bool
	Int   int
	Raw   string
}

// Field returns a reference's value for variable name, and whether it was
// present at all (absence is not an error — CSL styles test for it).
func (r *Reference) Field(name string) (Value, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Text is a convenience accessor for a text-kind field; returns "" if
// absent or a different kind.
func (r *Reference) Text(name string) string {
	if v, ok := r.Fields[name]; ok && v.Kind == KindText {
		return v.Text
	}
	return ""
}

// Names is a convenience accessor for a name-list field.
func (r *Reference) Names(name string) []Name {
	if v, ok := r.Fields[name]; ok && v.Kind == KindNameList {
		return v.Names
	}
	return nil
}

// DateField is a convenience accessor for a date field.
func (r *Reference) DateField(name string) (Date, bool) {
	if v, ok := r.Fields[name]; ok && v.Kind == KindDate {
		return v.Date, true
	}
	return Date{}, false
}
