package engine

import (
	"testing"

	"github.com/citeproc-go/engine/cerr"
	"github.com/citeproc-go/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClusterWithLocatorAndMode(t *testing.T) {
	cl, err := ParseCluster([]byte(`{"id":"c1","cites":[{"id":"k","locator":"12","label":"page","mode":"SuppressAuthor"}]}`))
	require.NoError(t, err)
	require.Len(t, cl.Cites, 1)
	assert.Equal(t, "k", cl.Cites[0].RefID)
	assert.Equal(t, model.ModeSuppressAuthor, cl.Cites[0].Mode)
	require.NotNil(t, cl.Cites[0].Locator)
	assert.Equal(t, "page", cl.Cites[0].Locator.Type)
	assert.Equal(t, "12", cl.Cites[0].Locator.Value)
}

func TestParseClusterFallsBackToLocatorsArray(t *testing.T) {
	cl, err := ParseCluster([]byte(`{"id":"c1","cites":[{"id":"k","locators":[["page","12"]]}]}`))
	require.NoError(t, err)
	require.NotNil(t, cl.Cites[0].Locator)
	assert.Equal(t, "page", cl.Cites[0].Locator.Type)
	assert.Equal(t, "12", cl.Cites[0].Locator.Value)
}

func TestParseClusterRejectsCompositeCiteMode(t *testing.T) {
	_, err := ParseCluster([]byte(`{"id":"c1","cites":[{"id":"k","mode":"Composite"}]}`))
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.JSONShape))
}

func TestParseClusterPositionInText(t *testing.T) {
	pos, err := ParseClusterPosition([]byte(`{"id":"c1"}`))
	require.NoError(t, err)
	assert.True(t, pos.InText)
	assert.Nil(t, pos.Note)
}

func TestParseClusterPositionSingleNote(t *testing.T) {
	pos, err := ParseClusterPosition([]byte(`{"id":"c1","note":3}`))
	require.NoError(t, err)
	assert.False(t, pos.InText)
	assert.Equal(t, model.NoteNumber{3}, pos.Note)
}

func TestParseClusterPositionPairNote(t *testing.T) {
	pos, err := ParseClusterPosition([]byte(`{"id":"c1","note":[3,2]}`))
	require.NoError(t, err)
	assert.Equal(t, model.NoteNumber{3, 2}, pos.Note)
}
