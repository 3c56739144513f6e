package store

import (
	"testing"

	"github.com/citeproc-go/engine/csl"
	"github.com/citeproc-go/engine/localeprovider"
	"github.com/citeproc-go/engine/model"
	"github.com/citeproc-go/engine/outputformat"
	"github.com/citeproc-go/engine/refstore"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, xmlDoc string) *Store {
	t.Helper()
	style, err := csl.Compile(xmlDoc)
	require.NoError(t, err)
	return New(style, outputformat.NewRegistry(), localeprovider.NewStatic())
}

// spec.md §8 scenario 1: basic title rendering.
func TestBasicTitleRendering(t *testing.T) {
	s := newStore(t, `<style><citation><layout><text variable="title"/></layout></citation></style>`)
	require.NoError(t, s.Refs().Insert(&refstore.Reference{ID: "k", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "TEST"},
	}}))
	s.InitClusters(
		map[string]model.Cluster{"c1": {ID: "c1", Cites: []model.Cite{{RefID: "k"}}}},
		[]model.ClusterPosition{{ClusterID: "c1", InText: true}},
	)
	require.Equal(t, "TEST", s.BuiltCluster("c1"))
}

// spec.md §8 scenario 2: ibid.
func TestIbidScenario(t *testing.T) {
	s := newStore(t, `<style><citation><layout>
		<choose>
			<if position="ibid"><text value="ibid"/></if>
			<else><text variable="title"/></else>
		</choose>
	</layout></citation></style>`)
	require.NoError(t, s.Refs().Insert(&refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "ONE"},
	}}))
	require.NoError(t, s.Refs().Insert(&refstore.Reference{ID: "r2", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "TWO"},
	}}))
	s.InitClusters(
		map[string]model.Cluster{
			"c1": {ID: "c1", Cites: []model.Cite{{RefID: "r1"}}},
			"c2": {ID: "c2", Cites: []model.Cite{{RefID: "r1"}}},
			"c3": {ID: "c3", Cites: []model.Cite{{RefID: "r2"}}},
		},
		[]model.ClusterPosition{
			{ClusterID: "c1", InText: true},
			{ClusterID: "c2", InText: true},
			{ClusterID: "c3", InText: true},
		},
	)
	snap := s.Snapshot()
	require.Equal(t, "ONE", snap.Clusters["c1"])
	require.Equal(t, "ibid", snap.Clusters["c2"])
	require.Equal(t, "TWO", snap.Clusters["c3"])
}

// spec.md §8 scenario 3: year-suffix disambiguation.
func TestYearSuffixDisambiguationScenario(t *testing.T) {
	s := newStore(t, `<style>
		<citation disambiguate-add-year-suffix="true">
			<layout>
				<group delimiter=" ">
					<names variable="author"><name/></names>
					<date variable="issued"><date-part name="year"/></date>
				</group>
				<text variable="year-suffix"/>
			</layout>
		</citation>
	</style>`)
	mkRef := func(id string) *refstore.Reference {
		return &refstore.Reference{ID: id, Type: refstore.TypeBook, Fields: map[string]refstore.Value{
			"author": {Kind: refstore.KindNameList, Names: []refstore.Name{{Family: "Smith"}}},
			"issued": {Kind: refstore.KindDate, Date: refstore.Date{From: refstore.DateEndpoint{Parts: []int{1999}}}},
		}}
	}
	require.NoError(t, s.Refs().Insert(mkRef("smith-1999-1")))
	require.NoError(t, s.Refs().Insert(mkRef("smith-1999-2")))
	s.InitClusters(
		map[string]model.Cluster{
			"c1": {ID: "c1", Cites: []model.Cite{{RefID: "smith-1999-1"}}},
			"c2": {ID: "c2", Cites: []model.Cite{{RefID: "smith-1999-2"}}},
		},
		[]model.ClusterPosition{
			{ClusterID: "c1", InText: true},
			{ClusterID: "c2", InText: true},
		},
	)
	snap := s.Snapshot()
	require.Equal(t, "Smith 1999a", snap.Clusters["c1"])
	require.Equal(t, "Smith 1999b", snap.Clusters["c2"])
	require.Empty(t, snap.Ambiguous)
}

// spec.md §8 scenario 4: composite cluster mode.
func TestCompositeClusterModeScenario(t *testing.T) {
	s := newStore(t, `<style><citation><layout>
		<names variable="author"><name/></names>
		<text variable="title" prefix=" "/>
	</layout></citation></style>`)
	require.NoError(t, s.Refs().Insert(&refstore.Reference{ID: "r1", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"author": {Kind: refstore.KindNameList, Names: []refstore.Name{{Family: "Smith"}}},
		"title":  {Kind: refstore.KindText, Text: "ONE"},
	}}))
	s.InitClusters(
		map[string]model.Cluster{
			"c1": {ID: "c1", Mode: model.ModeComposite, Infix: ", whose book", Cites: []model.Cite{{RefID: "r1"}}},
		},
		[]model.ClusterPosition{{ClusterID: "c1", InText: true}},
	)
	require.Equal(t, "Smith, whose book ONE", s.BuiltCluster("c1"))
}

func TestBuiltClusterOnUnknownClusterReturnsEmpty(t *testing.T) {
	s := newStore(t, `<style><citation><layout><text variable="title"/></layout></citation></style>`)
	require.Equal(t, "", s.BuiltCluster("missing"))
}

func TestRemoveClusterLeavesOthersUnchanged(t *testing.T) {
	s := newStore(t, `<style><citation><layout><text variable="title"/></layout></citation></style>`)
	require.NoError(t, s.Refs().Insert(&refstore.Reference{ID: "k", Type: refstore.TypeBook, Fields: map[string]refstore.Value{
		"title": {Kind: refstore.KindText, Text: "TEST"},
	}}))
	s.InitClusters(
		map[string]model.Cluster{
			"c1": {ID: "c1", Cites: []model.Cite{{RefID: "k"}}},
			"c2": {ID: "c2", Cites: []model.Cite{{RefID: "k"}}},
		},
		[]model.ClusterPosition{{ClusterID: "c1", InText: true}, {ClusterID: "c2", InText: true}},
	)
	before := s.BuiltCluster("c1")
	s.InsertCluster(model.Cluster{ID: "c2", Cites: []model.Cite{{RefID: "k"}}})
	s.RemoveCluster("c2")
	require.Equal(t, before, s.BuiltCluster("c1"))
	require.Equal(t, "", s.BuiltCluster("c2"))
}
