// Package bulk implements the CSV import pipeline: column mapping, row
// transformation, location path resolution and device reconciliation
// against the platform API.
package bulk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TargetKind discriminates what a CSV column feeds into.
type TargetKind int

const (
	TargetSkip TargetKind = iota
	TargetHierarchy
	TargetLocationField
	TargetDeviceField
	TargetDeviceMetadata
)

// Target is one semantic destination for a column's values. Field names
// the location or device attribute; Key names the open metadata entry.
type Target struct {
	Kind  TargetKind
	Field string
	Key   string
}

func (t Target) String() string {
	switch t.Kind {
	case TargetHierarchy:
		return "location.hierarchy"
	case TargetLocationField:
		return "location." + t.Field
	case TargetDeviceField:
		return "device." + t.Field
	case TargetDeviceMetadata:
		return "device.metadata." + t.Key
	default:
		return "skip"
	}
}

// ParseTarget is the inverse of Target.String, used by the mapping file.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || s == "skip":
		return Target{Kind: TargetSkip}, nil
	case s == "location.hierarchy":
		return Target{Kind: TargetHierarchy}, nil
	case strings.HasPrefix(s, "device.metadata."):
		key := strings.TrimPrefix(s, "device.metadata.")
		if key == "" {
			return Target{}, fmt.Errorf("bulk: metadata target needs a key: %q", s)
		}
		return Target{Kind: TargetDeviceMetadata, Key: key}, nil
	case strings.HasPrefix(s, "location."):
		field := strings.TrimPrefix(s, "location.")
		if !isLocationField(field) {
			return Target{}, fmt.Errorf("bulk: unknown location field: %q", field)
		}
		return Target{Kind: TargetLocationField, Field: field}, nil
	case strings.HasPrefix(s, "device."):
		field := strings.TrimPrefix(s, "device.")
		if !isDeviceField(field) {
			return Target{}, fmt.Errorf("bulk: unknown device field: %q", field)
		}
		return Target{Kind: TargetDeviceField, Field: field}, nil
	default:
		return Target{}, fmt.Errorf("bulk: unknown target: %q", s)
	}
}

// ColumnMapping assigns each CSV column zero, one or multiple targets.
// Column order is insignificant here; level order lives in HierarchyMapping.
type ColumnMapping map[string][]Target

// HierarchyMapping is the ordered list of hierarchy columns, shallowest
// first.
type HierarchyMapping struct {
	Columns []string
}

// LocationFields are the location attributes a column can map onto.
var LocationFields = []string{
	"address", "city", "state", "country", "zip", "timezone", "industry", "external_id",
}

// DeviceFields are the device attributes a column can map onto.
var DeviceFields = []string{
	"hardware_id", "name", "external_id", "device_type_id", "sensor_use", "sensor_type", "device_category",
}

func isLocationField(f string) bool {
	for _, lf := range LocationFields {
		if lf == f {
			return true
		}
	}
	return false
}

func isDeviceField(f string) bool {
	for _, df := range DeviceFields {
		if df == f {
			return true
		}
	}
	return false
}

// guess lexicon: common column-naming patterns per target field.
var guessLexicon = []struct {
	target Target
	terms  []string
}{
	{Target{Kind: TargetDeviceField, Field: "hardware_id"}, []string{"hardware_id", "hardwareid", "deveui", "dev_eui", "eui", "mac", "mac_address", "serial", "serial_number", "imei"}},
	{Target{Kind: TargetDeviceField, Field: "device_type_id"}, []string{"device_type_id", "device_type", "devicetype", "template_id", "model"}},
	{Target{Kind: TargetDeviceField, Field: "sensor_use"}, []string{"sensor_use", "use"}},
	{Target{Kind: TargetDeviceField, Field: "sensor_type"}, []string{"sensor_type", "sensor"}},
	{Target{Kind: TargetDeviceField, Field: "device_category"}, []string{"device_category", "category"}},
	{Target{Kind: TargetDeviceField, Field: "name"}, []string{"device_name", "devicename", "name", "label"}},
	{Target{Kind: TargetDeviceField, Field: "external_id"}, []string{"device_external_id", "asset_id", "asset_tag"}},
	{Target{Kind: TargetLocationField, Field: "address"}, []string{"address", "street", "street_address"}},
	{Target{Kind: TargetLocationField, Field: "city"}, []string{"city", "town"}},
	{Target{Kind: TargetLocationField, Field: "state"}, []string{"state", "province", "region"}},
	{Target{Kind: TargetLocationField, Field: "country"}, []string{"country"}},
	{Target{Kind: TargetLocationField, Field: "zip"}, []string{"zip", "zipcode", "zip_code", "postal", "postal_code", "postcode"}},
	{Target{Kind: TargetLocationField, Field: "timezone"}, []string{"timezone", "time_zone", "tz"}},
	{Target{Kind: TargetLocationField, Field: "industry"}, []string{"industry"}},
	{Target{Kind: TargetLocationField, Field: "external_id"}, []string{"location_external_id", "location_id"}},
	{Target{Kind: TargetHierarchy}, []string{"site", "building", "floor", "room", "area", "zone", "campus", "wing"}},
}

func normalizeColumn(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GuessTarget suggests a target for a column name. Exact lexicon matches
// win, then substring matches, then the closest normalized fuzzy rank.
// ok is false when nothing plausible matched.
func GuessTarget(column string) (Target, bool) {
	norm := normalizeColumn(column)
	if norm == "" {
		return Target{Kind: TargetSkip}, false
	}

	for _, entry := range guessLexicon {
		for _, term := range entry.terms {
			if norm == term {
				return entry.target, true
			}
		}
	}
	for _, entry := range guessLexicon {
		for _, term := range entry.terms {
			if strings.Contains(norm, term) || strings.Contains(term, norm) {
				return entry.target, true
			}
		}
	}

	best := Target{Kind: TargetSkip}
	bestRank := -1
	for _, entry := range guessLexicon {
		ranks := fuzzy.RankFindNormalizedFold(norm, entry.terms)
		sort.Sort(ranks)
		if len(ranks) == 0 {
			continue
		}
		if bestRank == -1 || ranks[0].Distance < bestRank {
			bestRank = ranks[0].Distance
			best = entry.target
		}
	}
	if bestRank == -1 {
		return Target{Kind: TargetSkip}, false
	}
	return best, true
}

// ValidateMapping returns advisory human-readable problems; the caller
// decides whether to abort. deviceTypeDefault is the operator-supplied
// --device-type-id fallback: when present the device type is inferable
// without a mapped column.
func ValidateMapping(m ColumnMapping, h HierarchyMapping, deviceTypeDefault string) []string {
	var problems []string

	if len(h.Columns) == 0 {
		problems = append(problems, "at least one column must be mapped to the location hierarchy")
	}

	mapped := map[string]bool{}
	anyDeviceField := false
	for _, targets := range m {
		for _, t := range targets {
			if t.Kind == TargetDeviceField {
				anyDeviceField = true
				mapped["device."+t.Field] = true
			}
			if t.Kind == TargetDeviceMetadata {
				anyDeviceField = true
			}
		}
	}

	if anyDeviceField && !mapped["device.hardware_id"] {
		problems = append(problems, "device fields are mapped but device.hardware_id is not")
	}
	if anyDeviceField && !mapped["device.sensor_type"] && !mapped["device.device_type_id"] && deviceTypeDefault == "" {
		problems = append(problems, "device type is not inferable: map device.sensor_type or device.device_type_id, or pass --device-type-id")
	}

	return problems
}
