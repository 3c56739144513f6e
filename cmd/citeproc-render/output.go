package main

import (
	"fmt"

	"github.com/citeproc-go/engine/diffqueue"
	"github.com/citeproc-go/engine/util"
)

const ansiChangedCluster = "\x1b[33m" // yellow
const ansiReset = "\x1b[0m"

// printUpdates prints a batched_updates() result in the teacher's
// diff-output idiom: one line per changed cluster, then the
// bibliography diff if any. colorize highlights changed cluster ids the
// way mysqldef highlights destructive DDL, gated on
// term.IsTerminal(stdout) so piped output stays plain.
func printUpdates(upd diffqueue.Updates, colorize bool) {
	if len(upd.Clusters) == 0 && upd.Bibliography == nil {
		fmt.Println("-- no changes")
		return
	}
	for _, c := range upd.Clusters {
		if colorize {
			fmt.Printf("%s%s%s: %s\n", ansiChangedCluster, c.ID, ansiReset, c.Text)
		} else {
			fmt.Printf("%s: %s\n", c.ID, c.Text)
		}
	}
	if upd.Bibliography == nil {
		return
	}
	if upd.Bibliography.EntryIDs != nil {
		fmt.Println("-- bibliography order changed:")
		for _, id := range upd.Bibliography.EntryIDs {
			fmt.Printf("  %s\n", id)
		}
	}
	for id, text := range util.CanonicalMapIter(upd.Bibliography.UpdatedEntries) {
		fmt.Printf("bib %s: %s\n", id, text)
	}
}
