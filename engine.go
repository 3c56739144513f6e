// Package engine is the root package implementing the full public
// surface of spec.md §6: one Engine per document, wrapping a
// store.Store and a diffqueue.Cursor behind the operations a host
// (CLI, FFI binding, wasm export) calls. It owns input validation and
// the cerr error taxonomy (spec.md §7); the packages underneath never
// validate host input themselves.
package engine

import (
	"log/slog"

	"github.com/citeproc-go/engine/cerr"
	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/diffqueue"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/store"
)

// Engine is one document's worth of engine state (spec.md §2 "one
// engine instance per document").
type Engine struct {
	st   *store.Store
	diff *diffqueue.Cursor
}

// New compiles style and constructs an engine instance (spec.md §6
// new_engine). outputFormat selects the initially active formatter
// ("plain" if empty); formatOptions carries free-form per-format knobs.
// lp may be nil, in which case an empty StaticProvider is used — locale
// fetch failures are never fatal (spec.md §7).
func New(styleXML string, outputFormat string, formatOptions outputformat.Options, lp localeprovider.Provider) (*Engine, error) {
	style, err := csl.Compile(styleXML)
	if err != nil {
		return nil, err
	}

	reg := outputformat.NewRegistry()
	if outputFormat != "" && outputFormat != "plain" {
		if !reg.SetActive(outputFormat, formatOptions) {
			return nil, cerr.New(cerr.UnknownOutputFormat, "unknown output format %q", outputFormat)
		}
	} else if formatOptions != nil {
		reg.SetActive("plain", formatOptions)
	}

	if lp == nil {
		lp = localeprovider.NewStatic()
	}

	return &Engine{
		st:   store.New(style, reg, lp),
		diff: diffqueue.NewCursor(),
	}, nil
}

// SetStyle replaces the compiled style wholesale (spec.md §6
// set_style). The previous style stays in effect if xml fails to
// compile, so a bad edit never leaves the engine half-updated.
func (e *Engine) SetStyle(xml string) error {
	style, err := csl.Compile(xml)
	if err != nil {
		slog.Warn("set_style rejected", "error", err)
		return err
	}
	e.st.SetStyle(style)
	return nil
}

// SetOutputFormat selects the active output formatter and its options
// (spec.md §6 set_output_format).
func (e *Engine) SetOutputFormat(name string, options outputformat.Options) error {
	if !e.st.Format().SetActive(name, options) {
		return cerr.New(cerr.UnknownOutputFormat, "unknown output format %q", name)
	}
	return nil
}

// RegisterOutputFormat installs a formatter under its own name, making
// it a valid argument to SetOutputFormat/new_engine. Richer formatters
// (HTML, RTF) are host-side collaborators (spec.md §1); this just gives
// the host a way to plug one in.
func (e *Engine) RegisterOutputFormat(f outputformat.Formatter) {
	e.st.Format().Register(f)
}

// IncludeUncited sets the bibliography's uncited-inclusion policy
// (spec.md §6 include_uncited). mode is "none", "all", or "specific";
// ids is only consulted for "specific".
func (e *Engine) IncludeUncited(mode string, ids []string) error {
	switch mode {
	case "none", "all", "specific":
	default:
		return cerr.Field("mode", "unknown uncited policy %q", mode)
	}
	e.st.SetUncitedPolicy(uncitedPolicy(mode, ids))
	return nil
}
