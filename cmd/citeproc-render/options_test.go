package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// parseOptions calls os.Exit on bad or missing flags, the same way the
// teacher's cmd/*def options parsing does, so only the success path
// (where --style is present and flags are well-formed) is exercised
// here — the exit paths aren't reachable from within a test process.
func TestParseOptionsDefaultsAndRequiredStyle(t *testing.T) {
	opts := parseOptions([]string{"--style", "chicago.csl"})
	assert.Equal(t, "chicago.csl", opts.Style)
	assert.Equal(t, "plain", opts.Format)
	assert.Empty(t, opts.Refs)
	assert.Empty(t, opts.Preview)
}

func TestParseOptionsAllFlags(t *testing.T) {
	opts := parseOptions([]string{
		"--style", "chicago.csl",
		"--refs", "refs.json",
		"--clusters", "clusters.json",
		"--positions", "positions.json",
		"--config", "config.yml",
		"--format", "html",
		"--debug-ir", "c1",
	})
	assert.Equal(t, "chicago.csl", opts.Style)
	assert.Equal(t, "refs.json", opts.Refs)
	assert.Equal(t, "clusters.json", opts.Clusters)
	assert.Equal(t, "positions.json", opts.Positions)
	assert.Equal(t, "config.yml", opts.Config)
	assert.Equal(t, "html", opts.Format)
	assert.Equal(t, "c1", opts.DebugIR)
}
