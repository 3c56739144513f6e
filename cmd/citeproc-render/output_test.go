package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeproc-go/engine/diffqueue"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	fn()
	require.NoError(t, w.Close())
	os.Stdout = old
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestPrintUpdatesNoChanges(t *testing.T) {
	out := captureStdout(t, func() { printUpdates(diffqueue.Updates{}, false) })
	assert.Equal(t, "-- no changes\n", out)
}

func TestPrintUpdatesClustersPlain(t *testing.T) {
	upd := diffqueue.Updates{Clusters: []diffqueue.ClusterUpdate{{ID: "c1", Text: "(Doe 2020)"}}}
	out := captureStdout(t, func() { printUpdates(upd, false) })
	assert.Equal(t, "c1: (Doe 2020)\n", out)
}

func TestPrintUpdatesClustersColorized(t *testing.T) {
	upd := diffqueue.Updates{Clusters: []diffqueue.ClusterUpdate{{ID: "c1", Text: "(Doe 2020)"}}}
	out := captureStdout(t, func() { printUpdates(upd, true) })
	assert.Contains(t, out, ansiChangedCluster+"c1"+ansiReset)
}

func TestPrintUpdatesBibliographyDeterministicOrder(t *testing.T) {
	upd := diffqueue.Updates{
		Bibliography: &diffqueue.BibliographyDiff{
			UpdatedEntries: map[string]string{"z": "Zed.", "a": "Abel."},
		},
	}
	out := captureStdout(t, func() { printUpdates(upd, false) })
	assert.Equal(t, "bib a: Abel.\nbib z: Zed.\n", out)
}

func TestPrintUpdatesBibliographyOrderChange(t *testing.T) {
	upd := diffqueue.Updates{
		Bibliography: &diffqueue.BibliographyDiff{
			EntryIDs:       []string{"b", "a"},
			UpdatedEntries: map[string]string{},
		},
	}
	out := captureStdout(t, func() { printUpdates(upd, false) })
	assert.Equal(t, "-- bibliography order changed:\n  b\n  a\n", out)
}
