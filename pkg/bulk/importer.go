package bulk

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
	"github.com/nimbus-iot/nimbusctl/pkg/sheet"
)

// Collaborator interfaces the pipeline consumes; *api.Client satisfies
// all of them.

type LocationService interface {
	ListLocations(ctx context.Context, filter api.LocationFilter) ([]api.Location, error)
	CreateLocation(ctx context.Context, req api.CreateLocationRequest) (*api.Location, error)
}

type DeviceService interface {
	CreateDevice(ctx context.Context, req api.CreateDeviceRequest) (*api.Device, error)
	UpdateDevice(ctx context.Context, id string, req api.UpdateDeviceRequest) (*api.Device, error)
}

type TemplateService interface {
	GetTemplate(ctx context.Context, id string) (*api.DeviceTemplate, error)
}

type RegistryService interface {
	ListRegistry(ctx context.Context, filter api.RegistryFilter) ([]api.RegistryEntry, error)
}

// Services bundles the remote collaborators. Templates and Registry are
// optional best-effort lookups and may be nil.
type Services struct {
	Locations LocationService
	Devices   DeviceService
	Templates TemplateService
	Registry  RegistryService
}

// Options are the per-run import parameters, immutable once the run
// starts.
type Options struct {
	CompanyID        string
	UserID           string
	DryRun           bool
	PrefixNames      bool
	LocationDefaults map[string]string
	DeviceTypeID     string
	DeviceSettings   map[string]string
}

// Importer runs one bulk import: a full in-memory model is built first,
// then reconciled against the platform strictly sequentially (locations
// shallow-before-deep, then devices row by row).
type Importer struct {
	svc  Services
	opts Options
	log  *logrus.Logger
}

func NewImporter(svc Services, opts Options, log *logrus.Logger) *Importer {
	if log == nil {
		log = logrus.New()
	}
	return &Importer{svc: svc, opts: opts, log: log}
}

// Run executes the pipeline over an already-parsed table and mapping.
// Per-row failures accumulate in the summary; only input validation and
// the initial remote fetches are fatal.
func (imp *Importer) Run(ctx context.Context, table *sheet.Table, mapping ColumnMapping, hierarchy HierarchyMapping) (*ImportSummary, error) {
	if problems := ValidateMapping(mapping, hierarchy, imp.opts.DeviceTypeID); len(problems) > 0 {
		return nil, errors.Errorf("invalid mapping: %s", strings.Join(problems, "; "))
	}

	rows := TransformRows(table, mapping, hierarchy)
	nodes := BuildLocationTree(rows, imp.opts.PrefixNames)

	existing, err := imp.svc.Locations.ListLocations(ctx, api.LocationFilter{
		CompanyID: imp.opts.CompanyID,
		UserID:    imp.opts.UserID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "list existing locations")
	}
	remote, err := remotePaths(existing)
	if err != nil {
		return nil, err
	}

	defaults := imp.fetchTemplateDefaults(ctx, rows)
	registered := imp.registeredHardwareIDs(ctx, rows)

	summary := &ImportSummary{}
	locationIDs := imp.resolveLocations(ctx, nodes, remote, summary)
	imp.reconcileDevices(ctx, rows, locationIDs, defaults, registered, summary)

	imp.log.WithFields(logrus.Fields{
		"rows":      len(rows),
		"locations": len(nodes),
		"dry_run":   imp.opts.DryRun,
	}).Info("import finished")

	return summary, nil
}
