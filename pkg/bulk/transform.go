package bulk

import (
	"strings"

	"github.com/nimbus-iot/nimbusctl/pkg/sheet"
)

// HierarchyLevel is one (column, value) rung of a row's location path.
type HierarchyLevel struct {
	Column string
	Value  string
}

// DeviceSpec is the flat device attribute bag for one row plus its open
// metadata map.
type DeviceSpec struct {
	HardwareID     string
	Name           string
	ExternalID     string
	DeviceTypeID   string
	SensorUse      string
	SensorType     string
	DeviceCategory string
	Metadata       map[string]string
}

// ParsedRow is one CSV data row routed through the mapping. RowNumber is
// the 1-indexed original file line, used only for diagnostics.
type ParsedRow struct {
	RowNumber    int
	Hierarchy    []HierarchyLevel
	LocationMeta map[string]string
	Device       DeviceSpec
}

// TransformRows routes raw rows through the mapping. Pure and
// deterministic: dry-run and real-run behavior are identical up to the
// network boundary. Hierarchy columns are walked in level order and
// truncated at the first blank value; all other mapped columns with
// non-empty values are routed to every one of their targets.
func TransformRows(table *sheet.Table, m ColumnMapping, h HierarchyMapping) []ParsedRow {
	rows := make([]ParsedRow, 0, len(table.Rows))
	for _, raw := range table.Rows {
		row := ParsedRow{
			RowNumber:    raw.Line,
			LocationMeta: map[string]string{},
			Device:       DeviceSpec{Metadata: map[string]string{}},
		}

		for _, column := range h.Columns {
			value := strings.TrimSpace(raw.Get(column))
			if value == "" {
				break
			}
			row.Hierarchy = append(row.Hierarchy, HierarchyLevel{Column: column, Value: value})
		}

		for column, targets := range m {
			value := strings.TrimSpace(raw.Get(column))
			if value == "" {
				continue
			}
			for _, t := range targets {
				switch t.Kind {
				case TargetLocationField:
					row.LocationMeta[t.Field] = value
				case TargetDeviceMetadata:
					row.Device.Metadata[t.Key] = value
				case TargetDeviceField:
					row.Device.set(t.Field, value)
				}
			}
		}

		rows = append(rows, row)
	}
	return rows
}

func (d *DeviceSpec) set(field, value string) {
	switch field {
	case "hardware_id":
		d.HardwareID = value
	case "name":
		d.Name = value
	case "external_id":
		d.ExternalID = value
	case "device_type_id":
		d.DeviceTypeID = value
	case "sensor_use":
		d.SensorUse = value
	case "sensor_type":
		d.SensorType = value
	case "device_category":
		d.DeviceCategory = value
	}
}
