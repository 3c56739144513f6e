// Command citeproc-render exercises the full public surface of the
// citeproc-go/engine package end to end: it loads a style, a set of
// references, a set of clusters and their document order, applies the
// configured uncited-bibliography policy, and prints the resulting
// batched diff (each run starts from an empty engine, so the diff holds
// every cluster and bibliography entry) — the CLI analog of the
// teacher's cmd/*def tools running a desired-vs-current schema diff.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/citeproc-go/engine"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/util"
)

func main() {
	util.InitSlog()
	opts := parseOptions(os.Args[1:])
	cfg := parseRenderConfig(opts.Config)

	styleXML, err := os.ReadFile(opts.Style)
	if err != nil {
		log.Fatal(err)
	}

	format := opts.Format
	if cfg.OutputFormat != "" {
		format = cfg.OutputFormat
	}

	e, err := engine.New(string(styleXML), format, cfg.formatOptions(), localeprovider.NewStatic())
	if err != nil {
		log.Fatal(err)
	}

	if opts.Refs != "" {
		docs := readJSONArray(opts.Refs)
		if err := e.InsertReferences(docs); err != nil {
			log.Fatal(err)
		}
	}

	clusterDocs := readJSONArray(opts.Clusters)
	positionDocs := readJSONArray(opts.Positions)
	if len(clusterDocs) > 0 || len(positionDocs) > 0 {
		if err := e.InitClusters(clusterDocs, positionDocs); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.UncitedMode != "" {
		if err := e.IncludeUncited(cfg.UncitedMode, cfg.UncitedIDs); err != nil {
			log.Fatal(err)
		}
	}

	if opts.Preview != "" {
		draft, err := os.ReadFile(opts.Preview)
		if err != nil {
			log.Fatal(err)
		}
		text, err := e.PreviewCluster(draft, positionDocs, opts.Format)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(text)
		return
	}

	if opts.DebugIR != "" {
		trees := e.DebugClusterIR(opts.DebugIR)
		if _, err := pp.Println(trees); err != nil {
			slog.Warn("debug-ir print failed", "error", err)
		}
		return
	}

	upd := e.BatchedUpdates()
	printUpdates(upd, term.IsTerminal(int(os.Stdout.Fd())))
}

// readJSONArray reads path as a JSON array and returns one raw document
// per element, or nil if path is empty. Each element is re-decoded by
// the engine's own wire parsers, so this layer only needs to split the
// array, not understand its contents.
func readJSONArray(path string) [][]byte {
	if path == "" {
		return nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		log.Fatal(err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(buf, &raw); err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	return util.TransformSlice(raw, func(r json.RawMessage) []byte { return []byte(r) })
}
