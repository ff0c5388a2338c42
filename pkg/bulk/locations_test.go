package bulk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
)

func TestRowPath(t *testing.T) {
	row := ParsedRow{Hierarchy: []HierarchyLevel{
		{Column: "Site", Value: "HQ"},
		{Column: "Floor", Value: "3"},
	}}

	assert.Equal(t, "HQ/3", rowPath(row, false))
	assert.Equal(t, "Site HQ/Floor 3", rowPath(row, true))
	assert.Equal(t, "", rowPath(ParsedRow{}, false))
}

func TestBuildLocationTree(t *testing.T) {
	rows := []ParsedRow{
		{
			Hierarchy:    []HierarchyLevel{{Column: "Site", Value: "HQ"}, {Column: "Building", Value: "B1"}},
			LocationMeta: map[string]string{"city": "Austin"},
		},
		{
			Hierarchy:    []HierarchyLevel{{Column: "Site", Value: "HQ"}, {Column: "Building", Value: "B1"}},
			LocationMeta: map[string]string{"city": "Dallas"},
		},
		{
			Hierarchy: []HierarchyLevel{{Column: "Site", Value: "HQ"}, {Column: "Building", Value: "B2"}},
		},
		{
			Hierarchy:    []HierarchyLevel{{Column: "Site", Value: "Depot"}},
			LocationMeta: map[string]string{"state": "TX"},
		},
		{}, // no hierarchy, contributes nothing
	}

	nodes := BuildLocationTree(rows, false)
	require.Len(t, nodes, 4)

	paths := make([]string, len(nodes))
	for i, n := range nodes {
		paths[i] = n.Path
	}
	// parents strictly before children, first-seen order within a depth
	assert.Equal(t, []string{"HQ", "Depot", "HQ/B1", "HQ/B2"}, paths)

	byPath := map[string]*LocationNode{}
	for _, n := range nodes {
		byPath[n.Path] = n
	}
	assert.Equal(t, "", byPath["HQ"].ParentPath)
	assert.Equal(t, "HQ", byPath["HQ/B1"].ParentPath)
	assert.Equal(t, "B1", byPath["HQ/B1"].Name)
	assert.Equal(t, 2, byPath["HQ/B1"].Depth)

	// first row to reach a node as its deepest level pins the meta
	assert.Equal(t, map[string]string{"city": "Austin"}, byPath["HQ/B1"].Meta)
	assert.Nil(t, byPath["HQ"].Meta)
	assert.Nil(t, byPath["HQ/B2"].Meta)
	assert.Equal(t, map[string]string{"state": "TX"}, byPath["Depot"].Meta)
}

func TestBuildLocationTree_FirstDeepestRowPinsMetaEvenWhenEmpty(t *testing.T) {
	rows := []ParsedRow{
		{Hierarchy: []HierarchyLevel{{Column: "Site", Value: "HQ"}}},
		{
			Hierarchy:    []HierarchyLevel{{Column: "Site", Value: "HQ"}},
			LocationMeta: map[string]string{"city": "Austin"},
		},
	}

	nodes := BuildLocationTree(rows, false)
	require.Len(t, nodes, 1)
	assert.Nil(t, nodes[0].Meta)
}

func TestBuildLocationTree_PrefixNames(t *testing.T) {
	rows := []ParsedRow{{Hierarchy: []HierarchyLevel{
		{Column: "Site", Value: "HQ"},
		{Column: "Floor", Value: "3"},
	}}}

	nodes := BuildLocationTree(rows, true)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Site HQ", nodes[0].Name)
	assert.Equal(t, "Floor 3", nodes[1].Name)
	assert.Equal(t, "Site HQ/Floor 3", nodes[1].Path)
}

func TestRemotePaths(t *testing.T) {
	locations := []api.Location{
		{ID: "l1", Name: "HQ"},
		{ID: "l2", Name: "B1", ParentID: strPtr("l1")},
		{ID: "l3", Name: "3", ParentID: strPtr("l2")},
		{ID: "l4", Name: "B1", ParentID: strPtr("l5")},
		{ID: "l5", Name: "Depot"},
	}

	byPath, err := remotePaths(locations)
	require.NoError(t, err)
	require.Len(t, byPath, 5)
	assert.Equal(t, "l1", byPath["HQ"].ID)
	assert.Equal(t, "l3", byPath["HQ/B1/3"].ID)
	// equal names under different parents stay distinct
	assert.Equal(t, "l2", byPath["HQ/B1"].ID)
	assert.Equal(t, "l4", byPath["Depot/B1"].ID)
}

func TestRemotePaths_Errors(t *testing.T) {
	_, err := remotePaths([]api.Location{
		{ID: "l1", Name: "A", ParentID: strPtr("l2")},
		{ID: "l2", Name: "B", ParentID: strPtr("l1")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	_, err = remotePaths([]api.Location{
		{ID: "l1", Name: "A", ParentID: strPtr("gone")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parent")
}

func TestResolveLocations_DefaultsAndMetaPrecedence(t *testing.T) {
	fl := &fakeLocations{}
	imp := NewImporter(Services{Locations: fl}, Options{
		CompanyID:        "co-1",
		UserID:           "u-1",
		LocationDefaults: map[string]string{"city": "Default City", "country": "US"},
	}, nil)

	nodes := []*LocationNode{{
		Path:  "HQ",
		Name:  "HQ",
		Depth: 1,
		Meta:  map[string]string{"city": "Austin", "timezone": "America/Chicago"},
	}}

	summary := &ImportSummary{}
	ids := imp.resolveLocations(context.Background(), nodes, nil, summary)

	require.Len(t, fl.created, 1)
	req := fl.created[0]
	assert.Equal(t, "Austin", req.City) // CSV meta beats the operator default
	assert.Equal(t, "US", req.Country)
	assert.Equal(t, "America/Chicago", req.Timezone)
	assert.Equal(t, "co-1", req.CompanyID)
	assert.Equal(t, "u-1", req.UserID)
	assert.Equal(t, "loc-1", ids["HQ"])
}

func TestResolveLocations_DryRunPlaceholders(t *testing.T) {
	fl := &fakeLocations{}
	imp := NewImporter(Services{Locations: fl}, Options{CompanyID: "co-1", DryRun: true}, nil)

	nodes := []*LocationNode{
		{Path: "HQ", Name: "HQ", Depth: 1},
		{Path: "HQ/B1", Name: "B1", ParentPath: "HQ", Depth: 2},
	}

	summary := &ImportSummary{}
	ids := imp.resolveLocations(context.Background(), nodes, nil, summary)

	assert.Empty(t, fl.created)
	assert.Equal(t, Counts{Created: 2}, summary.Locations)
	assert.True(t, strings.HasPrefix(ids["HQ"], "dryrun-"))
	assert.True(t, strings.HasPrefix(ids["HQ/B1"], "dryrun-"))
	assert.NotEqual(t, ids["HQ"], ids["HQ/B1"])
}
