package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

var version string

// cliOptions is the flag struct, following the teacher's cmd/*def
// pattern (jessevdk/go-flags struct tags, parser.WriteHelp, --version).
type cliOptions struct {
	Style     string `long:"style" description:"Path to the CSL style XML file" value-name:"style.xml"`
	Refs      string `long:"refs" description:"Path to a JSON array of CSL-JSON reference documents" value-name:"refs.json"`
	Clusters  string `long:"clusters" description:"Path to a JSON array of cluster documents" value-name:"clusters.json"`
	Positions string `long:"positions" description:"Path to a JSON array of cluster position documents defining document order" value-name:"positions.json"`
	Config    string `long:"config" description:"YAML config: output format, options, uncited policy" value-name:"config.yml"`
	Format    string `long:"format" description:"Output format name" value-name:"name" default:"plain"`
	Preview   string `long:"preview" description:"Path to one draft cluster JSON document; renders it without mutating state and exits" value-name:"draft.json"`
	DebugIR   string `long:"debug-ir" description:"Pretty-print the IR arena behind this cluster id's render and exit" value-name:"cluster_id"`
	Help      bool   `long:"help" description:"Show this help"`
	Version   bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) *cliOptions {
	var opts cliOptions
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options]"
	_, err := parser.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if opts.Style == "" {
		fmt.Print("No style file is specified!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}
	return &opts
}
