package engine

import (
	"testing"

	"github.com/citeproc-go/engine/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const titleStyle = `<style><citation><layout><text variable="title"/></layout></citation></style>`

func newTestEngine(t *testing.T, styleXML string) *Engine {
	t.Helper()
	e, err := New(styleXML, "", nil, nil)
	require.NoError(t, err)
	return e
}

func TestNewEngineUnknownOutputFormatErrors(t *testing.T) {
	_, err := New(titleStyle, "docx", nil, nil)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.UnknownOutputFormat))
}

func TestNewEngineInvalidStyleErrors(t *testing.T) {
	_, err := New(`<style><citation></citation></style>`, "", nil, nil)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.StyleInvalid))
}

// spec.md §8 scenario 1, through the public engine surface.
func TestBasicTitleRenderingThroughEngine(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	require.NoError(t, e.InsertReference([]byte(`{"id":"k","type":"book","title":"TEST"}`)))
	require.NoError(t, e.InitClusters(
		[][]byte{[]byte(`{"id":"c1","cites":[{"id":"k"}]}`)},
		[][]byte{[]byte(`{"id":"c1"}`)},
	))
	assert.Equal(t, "TEST", e.BuiltCluster("c1"))
}

func TestInsertReferenceMalformedJSONRejected(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	err := e.InsertReference([]byte(`{"id":"k"}`))
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.JSONShape))
}

func TestInsertReferencesBatchRejectsWithoutPartialMutation(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	err := e.InsertReferences([][]byte{
		[]byte(`{"id":"good","type":"book","title":"ONE"}`),
		[]byte(`{"id":"bad","type":"not-a-type","title":"TWO"}`),
	})
	require.Error(t, err)
	assert.Nil(t, e.st.Refs().Get("good"))
}

func TestInsertClusterSuppressFirstOutOfRangeRejected(t *testing.T) {
	_, err := ParseCluster([]byte(`{"id":"c1","cites":[{"id":"k"}],"suppressFirst":5}`))
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.IndexOutOfRange))
}

func TestSetClusterOrderUnknownClusterRejected(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	require.NoError(t, e.InsertReference([]byte(`{"id":"k","type":"book","title":"TEST"}`)))
	require.NoError(t, e.InsertCluster([]byte(`{"id":"c1","cites":[{"id":"k"}]}`)))
	err := e.SetClusterOrder([][]byte{[]byte(`{"id":"missing"}`)})
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.ClusterNotInFlow))
}

// spec.md §8 scenario 6: preview does not persist.
func TestPreviewClusterDoesNotPersist(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	require.NoError(t, e.InsertReference([]byte(`{"id":"k","type":"book","title":"TEST"}`)))
	require.NoError(t, e.InsertReference([]byte(`{"id":"other","type":"book","title":"OTHER"}`)))
	require.NoError(t, e.InitClusters(
		[][]byte{[]byte(`{"id":"c1","cites":[{"id":"other"}]}`)},
		[][]byte{[]byte(`{"id":"c1"}`)},
	))
	before := e.BuiltCluster("c1")

	text, err := e.PreviewCluster([]byte(`{"id":"draft","cites":[{"id":"k"}]}`),
		[][]byte{[]byte(`{"id":"c1"}`), []byte(`{"id":"draft"}`)}, "")
	require.NoError(t, err)
	assert.Equal(t, "TEST", text)

	assert.Equal(t, before, e.BuiltCluster("c1"))
	assert.Equal(t, "", e.BuiltCluster("draft"))
}

// spec.md §8 round-trip: full_render(); batched_updates() yields empty diff.
func TestFullRenderThenBatchedUpdatesIsEmpty(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	require.NoError(t, e.InsertReference([]byte(`{"id":"k","type":"book","title":"TEST"}`)))
	require.NoError(t, e.InitClusters(
		[][]byte{[]byte(`{"id":"c1","cites":[{"id":"k"}]}`)},
		[][]byte{[]byte(`{"id":"c1"}`)},
	))
	e.FullRender()
	upd := e.BatchedUpdates()
	assert.Empty(t, upd.Clusters)
	assert.Nil(t, upd.Bibliography)
}

// spec.md §8 round-trip: batched_updates(); batched_updates() with no
// edit yields empty second result.
func TestBatchedUpdatesTwiceWithNoEditIsEmptySecondTime(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	require.NoError(t, e.InsertReference([]byte(`{"id":"k","type":"book","title":"TEST"}`)))
	require.NoError(t, e.InitClusters(
		[][]byte{[]byte(`{"id":"c1","cites":[{"id":"k"}]}`)},
		[][]byte{[]byte(`{"id":"c1"}`)},
	))
	first := e.BatchedUpdates()
	assert.Len(t, first.Clusters, 1)

	second := e.BatchedUpdates()
	assert.Empty(t, second.Clusters)
	assert.Nil(t, second.Bibliography)
}

// spec.md §8 round-trip: insert_cluster(x); remove_cluster(x.id) leaves
// other clusters' rendered output unchanged.
func TestInsertThenRemoveClusterLeavesOthersUnchangedThroughEngine(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	require.NoError(t, e.InsertReference([]byte(`{"id":"k","type":"book","title":"TEST"}`)))
	require.NoError(t, e.InitClusters(
		[][]byte{[]byte(`{"id":"c1","cites":[{"id":"k"}]}`)},
		[][]byte{[]byte(`{"id":"c1"}`)},
	))
	before := e.BuiltCluster("c1")

	require.NoError(t, e.InsertCluster([]byte(`{"id":"c2","cites":[{"id":"k"}]}`)))
	e.RemoveCluster("c2")
	assert.Equal(t, before, e.BuiltCluster("c1"))
	assert.Equal(t, "", e.BuiltCluster("c2"))
}

func TestRandomClusterIDsAreUnique(t *testing.T) {
	a, b := RandomClusterID(), RandomClusterID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestIncludeUncitedRejectsUnknownMode(t *testing.T) {
	e := newTestEngine(t, titleStyle)
	err := e.IncludeUncited("everything", nil)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.JSONShape))
}
