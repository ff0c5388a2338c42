package bulk

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
)

// templateDefaults are the fallback attributes derived from a device
// template; they fill device fields the CSV row left blank.
type templateDefaults struct {
	category   string
	sensorUse  string
	sensorType string
}

// fetchTemplateDefaults resolves every distinct template id referenced by
// the rows (or the operator default) exactly once. Best-effort: a fetch
// failure drops the fallback for that template and the import proceeds.
func (imp *Importer) fetchTemplateDefaults(ctx context.Context, rows []ParsedRow) map[string]templateDefaults {
	wanted := map[string]bool{}
	for _, row := range rows {
		if id := row.Device.DeviceTypeID; id != "" {
			wanted[id] = true
		}
	}
	if imp.opts.DeviceTypeID != "" {
		wanted[imp.opts.DeviceTypeID] = true
	}

	defaults := make(map[string]templateDefaults, len(wanted))
	if imp.svc.Templates == nil {
		return defaults
	}
	for id := range wanted {
		tpl, err := imp.svc.Templates.GetTemplate(ctx, id)
		if err != nil {
			imp.log.WithFields(logrus.Fields{"template_id": id}).WithError(err).Debug("template fetch failed; skipping fallback")
			continue
		}
		d := templateDefaults{category: tpl.Category}
		for _, use := range tpl.DeviceUse {
			if use.Default {
				d.sensorUse = use.Use
				break
			}
		}
		for _, meta := range tpl.Meta {
			if meta.Key == "device_type" {
				d.sensorType = meta.Value
				break
			}
		}
		defaults[id] = d
	}
	return defaults
}

// registeredHardwareIDs cross-checks the rows' hardware ids against the
// remote registry. Best-effort: on failure it reports nothing registered
// and the import proceeds without the existence check.
func (imp *Importer) registeredHardwareIDs(ctx context.Context, rows []ParsedRow) map[string]bool {
	registered := map[string]bool{}
	if imp.svc.Registry == nil {
		return registered
	}

	var ids []string
	seen := map[string]bool{}
	for _, row := range rows {
		id := row.Device.HardwareID
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return registered
	}

	entries, err := imp.svc.Registry.ListRegistry(ctx, api.RegistryFilter{
		CompanyID:   imp.opts.CompanyID,
		HardwareIDs: ids,
	})
	if err != nil {
		imp.log.WithError(err).Warn("hardware registry check failed; continuing without it")
		return registered
	}
	for _, e := range entries {
		registered[e.HardwareID] = true
	}
	return registered
}

// reconcileDevices makes one pass over the rows, creating a device for
// every row with a hardware id. Rows are independent: one failure never
// aborts the batch.
func (imp *Importer) reconcileDevices(
	ctx context.Context,
	rows []ParsedRow,
	locationIDs map[string]string,
	defaults map[string]templateDefaults,
	registered map[string]bool,
	summary *ImportSummary,
) {
	for _, row := range rows {
		hwid := row.Device.HardwareID
		if hwid == "" {
			continue
		}
		name := row.Device.Name
		if name == "" {
			name = hwid
		}

		if registered[hwid] {
			summary.Add(ImportResult{
				Type:   ResultDevice,
				Action: ActionMatched,
				Name:   name,
				Row:    row.RowNumber,
			})
			continue
		}

		path := rowPath(row, imp.opts.PrefixNames)
		locationID, ok := locationIDs[path]
		if path == "" || !ok {
			summary.Add(ImportResult{
				Type:   ResultDevice,
				Action: ActionFailed,
				Name:   name,
				Row:    row.RowNumber,
				Error:  "location not found for path: " + path,
			})
			continue
		}

		req := imp.deviceRequest(row, locationID, defaults)

		if imp.opts.DryRun {
			summary.Add(ImportResult{
				Type:   ResultDevice,
				Action: ActionCreated,
				Name:   name,
				ID:     "dryrun-" + uuid.NewString(),
				Row:    row.RowNumber,
			})
			continue
		}

		created, err := imp.svc.Devices.CreateDevice(ctx, req)
		if err != nil {
			summary.Add(ImportResult{
				Type:   ResultDevice,
				Action: ActionFailed,
				Name:   name,
				Row:    row.RowNumber,
				Error:  err.Error(),
			})
			continue
		}

		result := ImportResult{
			Type:   ResultDevice,
			Action: ActionCreated,
			Name:   name,
			ID:     created.ID,
			Row:    row.RowNumber,
		}
		if len(imp.opts.DeviceSettings) > 0 {
			if err := imp.applyDeviceSettings(ctx, created); err != nil {
				result.Warning = "device settings update failed: " + err.Error()
			}
		}
		summary.Add(result)
	}
}

// deviceRequest merges the row's own fields with template-derived
// fallbacks; row values always win.
func (imp *Importer) deviceRequest(row ParsedRow, locationID string, defaults map[string]templateDefaults) api.CreateDeviceRequest {
	typeID := row.Device.DeviceTypeID
	if typeID == "" {
		typeID = imp.opts.DeviceTypeID
	}

	req := api.CreateDeviceRequest{
		HardwareID:     row.Device.HardwareID,
		Name:           row.Device.Name,
		ExternalID:     row.Device.ExternalID,
		DeviceTypeID:   typeID,
		LocationID:     locationID,
		CompanyID:      imp.opts.CompanyID,
		SensorUse:      row.Device.SensorUse,
		SensorType:     row.Device.SensorType,
		DeviceCategory: row.Device.DeviceCategory,
	}
	if len(row.Device.Metadata) > 0 {
		req.Metadata = row.Device.Metadata
	}

	if d, ok := defaults[typeID]; ok {
		if req.SensorUse == "" {
			req.SensorUse = d.sensorUse
		}
		if req.SensorType == "" {
			req.SensorType = d.sensorType
		}
		if req.DeviceCategory == "" {
			req.DeviceCategory = d.category
		}
	}
	return req
}

// applyDeviceSettings merges the operator-supplied key/value overrides
// into the device's existing properties blob: existing keys are
// preserved, overlapping keys are overwritten.
func (imp *Importer) applyDeviceSettings(ctx context.Context, dev *api.Device) error {
	props := make(map[string]any, len(dev.Properties)+len(imp.opts.DeviceSettings))
	for k, v := range dev.Properties {
		props[k] = v
	}
	for k, v := range imp.opts.DeviceSettings {
		props[strings.TrimSpace(k)] = v
	}
	_, err := imp.svc.Devices.UpdateDevice(ctx, dev.ID, api.UpdateDeviceRequest{Properties: props})
	return err
}
