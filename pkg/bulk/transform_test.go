package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-iot/nimbusctl/pkg/sheet"
)

func testTable(headers []string, rows ...map[string]string) *sheet.Table {
	t := &sheet.Table{Headers: headers}
	for i, values := range rows {
		t.Rows = append(t.Rows, sheet.Row{Line: i + 2, Values: values})
	}
	return t
}

func testMapping() (ColumnMapping, HierarchyMapping) {
	m := ColumnMapping{
		"Site":     {{Kind: TargetHierarchy}},
		"Building": {{Kind: TargetHierarchy}},
		"Floor":    {{Kind: TargetHierarchy}},
		"DevEUI":   {{Kind: TargetDeviceField, Field: "hardware_id"}},
		"Name":     {{Kind: TargetDeviceField, Field: "name"}},
		"Sensor":   {{Kind: TargetDeviceField, Field: "sensor_type"}},
		"City":     {{Kind: TargetLocationField, Field: "city"}, {Kind: TargetDeviceMetadata, Key: "city"}},
		"Notes":    {{Kind: TargetDeviceMetadata, Key: "notes"}},
	}
	h := HierarchyMapping{Columns: []string{"Site", "Building", "Floor"}}
	return m, h
}

func TestTransformRows_Routing(t *testing.T) {
	m, h := testMapping()
	table := testTable(
		[]string{"Site", "Building", "Floor", "DevEUI", "Name", "Sensor", "City", "Notes"},
		map[string]string{
			"Site": "HQ", "Building": "B1", "Floor": "3",
			"DevEUI": "a1b2", "Name": "Lobby sensor", "Sensor": "temperature",
			"City": "Austin", "Notes": "east wall",
		},
	)

	rows := TransformRows(table, m, h)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, 2, row.RowNumber)
	assert.Equal(t, []HierarchyLevel{
		{Column: "Site", Value: "HQ"},
		{Column: "Building", Value: "B1"},
		{Column: "Floor", Value: "3"},
	}, row.Hierarchy)
	assert.Equal(t, map[string]string{"city": "Austin"}, row.LocationMeta)
	assert.Equal(t, DeviceSpec{
		HardwareID: "a1b2",
		Name:       "Lobby sensor",
		SensorType: "temperature",
		Metadata:   map[string]string{"city": "Austin", "notes": "east wall"},
	}, row.Device)
}

func TestTransformRows_TruncatesAtFirstBlankLevel(t *testing.T) {
	m, h := testMapping()
	table := testTable(
		[]string{"Site", "Building", "Floor"},
		map[string]string{"Site": "HQ", "Building": "", "Floor": "3"},
	)

	rows := TransformRows(table, m, h)
	require.Len(t, rows, 1)
	// Floor has a value, but the blank Building above it cuts the path.
	assert.Equal(t, []HierarchyLevel{{Column: "Site", Value: "HQ"}}, rows[0].Hierarchy)
}

func TestTransformRows_SkipsEmptyValuesAndTrims(t *testing.T) {
	m, h := testMapping()
	table := testTable(
		[]string{"Site", "DevEUI", "City", "Notes"},
		map[string]string{"Site": " HQ ", "DevEUI": "a1b2", "City": "  ", "Notes": ""},
	)

	rows := TransformRows(table, m, h)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, []HierarchyLevel{{Column: "Site", Value: "HQ"}}, row.Hierarchy)
	assert.Empty(t, row.LocationMeta)
	assert.Empty(t, row.Device.Metadata)
	assert.Equal(t, "a1b2", row.Device.HardwareID)
}

func TestTransformRows_Deterministic(t *testing.T) {
	m, h := testMapping()
	table := testTable(
		[]string{"Site", "Building", "DevEUI", "City"},
		map[string]string{"Site": "HQ", "Building": "B1", "DevEUI": "a1", "City": "Austin"},
		map[string]string{"Site": "HQ", "Building": "B2", "DevEUI": "a2", "City": "Dallas"},
	)

	first := TransformRows(table, m, h)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TransformRows(table, m, h))
	}
}
