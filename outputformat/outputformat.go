// Package outputformat defines the narrow output-format collaborator
// (spec.md §6): the engine hands it an inline-tree of rendered runs and
// gets back a finished string. HTML/RTF escaping and inline-tree
// flattening backends are external collaborators (spec.md §1); this
// package only carries the interface and a minimal Plain default
// sufficient to exercise every IR node kind in tests and the CLI.
package outputformat

import "strings"

// Emphasis is a single formatting instruction applied to a Run.
type Emphasis int

const (
	EmphasisNone Emphasis = iota
	EmphasisItalic
	EmphasisBold
	EmphasisUnderline
	EmphasisSmallCaps
)

// Run is one contiguous span of text sharing the same formatting — the
// "inline-tree" spec.md refers to throughout §1/§4.3.
type Run struct {
	Text     string
	Emphasis Emphasis
	// QuoteSwap marks a run whose surrounding punctuation (commas,
	// periods) may need to move inside/outside quotation marks per the
	// style's punctuation-in-quote rule (spec.md §4.3/§4.5).
	QuoteSwap bool
}

// Formatter turns a finished inline-tree into one output string. It owns
// escaping for its target format.
type Formatter interface {
	Name() string
	Render(runs []Run) string
}

// Options carries free-form per-format knobs the host passed to
// set_output_format (spec.md §6); the Plain formatter ignores them, a
// richer formatter would interpret e.g. {"entry-spacing": "..."}.
type Options map[string]string

// Plain is the default formatter: concatenates run text with no markup,
// folding repeated whitespace the way a citation processor's final pass
// normally does after concatenation.
type Plain struct{}

func (Plain) Name() string { return "plain" }

func (Plain) Render(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return collapseSpaces(b.String())
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Registry holds the formatters an engine instance knows about, keyed by
// name, plus the currently active one and its options.
type Registry struct {
	formatters map[string]Formatter
	active     string
	options    Options
}

// NewRegistry returns a registry pre-seeded with the Plain formatter
// active.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[string]Formatter)}
	r.Register(Plain{})
	r.active = "plain"
	return r
}

// Register installs a formatter under its own Name().
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Name()] = f
}

// SetActive selects the active formatter by name. Returns false if name
// is unregistered (the caller maps that to cerr.UnknownOutputFormat).
func (r *Registry) SetActive(name string, opts Options) bool {
	if _, ok := r.formatters[name]; !ok {
		return false
	}
	r.active = name
	r.options = opts
	return true
}

// Active returns the currently selected formatter and its options.
func (r *Registry) Active() (Formatter, Options) {
	return r.formatters[r.active], r.options
}

// Lookup returns a registered formatter by name without changing which
// one is active — used by preview_cluster's one-off format override
// (spec.md §6).
func (r *Registry) Lookup(name string) (Formatter, bool) {
	f, ok := r.formatters[name]
	return f, ok
}
