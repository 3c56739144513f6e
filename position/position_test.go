package position

import (
	"testing"

	"github.com/citeproc-go/engine/model"
	"github.com/stretchr/testify/assert"
)

func TestAssignFirstAndSubsequent(t *testing.T) {
	clusters := map[string]model.Cluster{
		"c1": {ID: "c1", Cites: []model.Cite{{ID: "a", RefID: "ref1"}, {ID: "x", RefID: "other"}}},
		"c2": {ID: "c2", Cites: []model.Cite{{ID: "b", RefID: "ref1"}}},
	}
	order := []model.ClusterPosition{
		{ClusterID: "c1", Note: model.NoteNumber{1}},
		{ClusterID: "c2", Note: model.NoteNumber{9}},
	}
	got := Assign(order, clusters, 5)
	assert.Equal(t, model.PositionFirst, got[Key{"c1", 0}])
	assert.Equal(t, model.PositionSubsequent, got[Key{"c2", 0}])
}

func TestAssignIbidSameLocator(t *testing.T) {
	loc := &model.Locator{Type: "page", Value: "10"}
	clusters := map[string]model.Cluster{
		"c1": {ID: "c1", Cites: []model.Cite{{ID: "a", RefID: "ref1", Locator: loc}}},
		"c2": {ID: "c2", Cites: []model.Cite{{ID: "b", RefID: "ref1", Locator: loc}}},
	}
	order := []model.ClusterPosition{
		{ClusterID: "c1", Note: model.NoteNumber{1}},
		{ClusterID: "c2", Note: model.NoteNumber{2}},
	}
	got := Assign(order, clusters, 5)
	assert.Equal(t, model.PositionFirst, got[Key{"c1", 0}])
	assert.Equal(t, model.PositionIbid, got[Key{"c2", 0}])
}

func TestAssignIbidWithLocatorWhenLocatorDiffers(t *testing.T) {
	clusters := map[string]model.Cluster{
		"c1": {ID: "c1", Cites: []model.Cite{{ID: "a", RefID: "ref1", Locator: &model.Locator{Type: "page", Value: "10"}}}},
		"c2": {ID: "c2", Cites: []model.Cite{{ID: "b", RefID: "ref1", Locator: &model.Locator{Type: "page", Value: "20"}}}},
	}
	order := []model.ClusterPosition{
		{ClusterID: "c1", Note: model.NoteNumber{1}},
		{ClusterID: "c2", Note: model.NoteNumber{2}},
	}
	got := Assign(order, clusters, 5)
	assert.Equal(t, model.PositionIbidWithLocator, got[Key{"c2", 0}])
}

func TestAssignNearNoteWithinDistance(t *testing.T) {
	clusters := map[string]model.Cluster{
		"c1": {ID: "c1", Cites: []model.Cite{{ID: "a", RefID: "ref1"}, {ID: "x", RefID: "other"}}},
		"c2": {ID: "c2", Cites: []model.Cite{{ID: "b", RefID: "ref1"}}},
	}
	order := []model.ClusterPosition{
		{ClusterID: "c1", Note: model.NoteNumber{1}},
		{ClusterID: "c2", Note: model.NoteNumber{3}},
	}
	got := Assign(order, clusters, 5)
	assert.Equal(t, model.PositionNearNote, got[Key{"c2", 0}])
}

func TestAssignBeyondNearNoteDistanceIsSubsequent(t *testing.T) {
	clusters := map[string]model.Cluster{
		"c1": {ID: "c1", Cites: []model.Cite{{ID: "a", RefID: "ref1"}, {ID: "x", RefID: "other"}}},
		"c2": {ID: "c2", Cites: []model.Cite{{ID: "b", RefID: "ref1"}}},
	}
	order := []model.ClusterPosition{
		{ClusterID: "c1", Note: model.NoteNumber{1}},
		{ClusterID: "c2", Note: model.NoteNumber{20}},
	}
	got := Assign(order, clusters, 5)
	assert.Equal(t, model.PositionSubsequent, got[Key{"c2", 0}])
}
