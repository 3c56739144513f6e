// Package localeprovider defines the narrow, synchronous locale
// collaborator the engine calls out to (spec.md §6 "Locale provider").
// Locale XML parsing and fallback chains are the host's responsibility;
// this package only carries the already-resolved term/date/near-note
// data the evaluator consumes, plus a trivial in-memory default good
// enough for tests and the CLI.
package localeprovider

// Provider is the synchronous callback the engine uses to resolve a
// locale. Asynchronous fetching, if any, happens entirely on the host
// side before this call returns (spec.md §5 "Suspension points: None").
type Provider interface {
	// FetchLocale returns the resolved term/date/near-note data for lang,
	// or ok=false if the host has nothing for it (the engine then falls
	// back to empty terms per spec.md §4.3, never fails the operation).
	FetchLocale(lang string) (Locale, bool)
}

// Locale carries the subset of CSL locale data the core evaluator needs:
// term lookups and a couple of locale-level numeric defaults. Full
// locale XML parsing lives outside the core (spec.md §1).
type Locale struct {
	Lang string
	// Terms maps a term name (optionally "term/form", e.g. "edition/short")
	// to its resolved text. Missing terms resolve to "" without error.
	Terms map[string]string
	// Ordinals maps a numeric suffix rule name ("1","2","3","few","other")
	// to the locale's ordinal suffix text, used by <number form="ordinal"/>.
	Ordinals map[string]string
	// NearNoteDistance, when non-zero, overrides the style's near-note
	// distance (default 5) for the style's default locale; 0 means "use
	// the style's value".
	NearNoteDistance int
}

// Term looks up a term, returning "" if absent — a missing locale term
// is never an error (spec.md §4.3 "Failure").
func (l Locale) Term(name string) string {
	if l.Terms == nil {
		return ""
	}
	return l.Terms[name]
}

// StaticProvider is a fixed map[lang]Locale, used by tests and by the
// CLI when no external provider is wired in.
type StaticProvider struct {
	Locales map[string]Locale
}

// NewStatic builds a StaticProvider seeded with a minimal en-US locale
// sufficient to exercise ordinal/term lookups in tests.
func NewStatic() *StaticProvider {
	return &StaticProvider{Locales: map[string]Locale{
		"en-US": {
			Lang: "en-US",
			Terms: map[string]string{
				"ibid":    "ibid.",
				"and":     "and",
				"et-al":   "et al.",
				"page":    "p.",
				"page/short": "p.",
				"editor":  "ed.",
				"editors": "eds.",
			},
			Ordinals: map[string]string{
				"1": "st", "2": "nd", "3": "rd", "other": "th",
			},
		},
	}}
}

func (p *StaticProvider) FetchLocale(lang string) (Locale, bool) {
	l, ok := p.Locales[lang]
	return l, ok
}

// Set installs or replaces the locale data for lang.
func (p *StaticProvider) Set(lang string, l Locale) {
	if p.Locales == nil {
		p.Locales = make(map[string]Locale)
	}
	l.Lang = lang
	p.Locales[lang] = l
}
