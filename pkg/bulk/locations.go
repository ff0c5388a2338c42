package bulk

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nimbus-iot/nimbusctl/pkg/api"
)

// pathSeparator joins rendered level names into a full path. Paths are
// the identity of location nodes: identically named locations under
// different parents never collide.
const pathSeparator = "/"

// LocationNode is a distinct point in the aggregate hierarchy derived
// from the full row set. Meta is populated only when at least one row
// reached this node as its deepest level.
type LocationNode struct {
	Path       string
	Name       string
	ParentPath string
	Depth      int
	Meta       map[string]string
}

// renderLevel renders one hierarchy level's display name. With prefixing
// enabled, the column name joins the value ("Building 7"); otherwise the
// raw value is used.
func renderLevel(l HierarchyLevel, prefixNames bool) string {
	if prefixNames {
		return l.Column + " " + l.Value
	}
	return l.Value
}

// rowPath renders the full path of the row's deepest hierarchy level;
// empty when the row has no hierarchy.
func rowPath(row ParsedRow, prefixNames bool) string {
	if len(row.Hierarchy) == 0 {
		return ""
	}
	segments := make([]string, len(row.Hierarchy))
	for i, l := range row.Hierarchy {
		segments[i] = renderLevel(l, prefixNames)
	}
	return strings.Join(segments, pathSeparator)
}

// BuildLocationTree collects every distinct prefix path across all rows
// and returns the nodes sorted by depth ascending, so parents always
// precede children. Meta sticks to a path the first time a row reaches it
// as that row's deepest level.
func BuildLocationTree(rows []ParsedRow, prefixNames bool) []*LocationNode {
	byPath := map[string]*LocationNode{}
	pinned := map[string]bool{}
	var order []string

	for _, row := range rows {
		if len(row.Hierarchy) == 0 {
			continue
		}
		parentPath := ""
		for depth, level := range row.Hierarchy {
			name := renderLevel(level, prefixNames)
			path := name
			if parentPath != "" {
				path = parentPath + pathSeparator + name
			}

			node, ok := byPath[path]
			if !ok {
				node = &LocationNode{
					Path:       path,
					Name:       name,
					ParentPath: parentPath,
					Depth:      depth + 1,
				}
				byPath[path] = node
				order = append(order, path)
			}
			// the first row to reach a node as its deepest level pins the
			// meta, even when that row carried none
			if depth == len(row.Hierarchy)-1 && !pinned[path] {
				pinned[path] = true
				if len(row.LocationMeta) > 0 {
					meta := make(map[string]string, len(row.LocationMeta))
					for k, v := range row.LocationMeta {
						meta[k] = v
					}
					node.Meta = meta
				}
			}
			parentPath = path
		}
	}

	nodes := make([]*LocationNode, 0, len(order))
	for _, path := range order {
		nodes = append(nodes, byPath[path])
	}
	// ties among equal depths cannot depend on each other; keep first-seen
	// order within a depth for deterministic output
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Depth < nodes[j].Depth })
	return nodes
}

// remotePaths reconstructs the full path of every remote location by
// walking parent_id links, memoized by id. A parent chain that loops is a
// data-integrity error and aborts the import.
func remotePaths(locations []api.Location) (map[string]api.Location, error) {
	byID := make(map[string]api.Location, len(locations))
	for _, loc := range locations {
		byID[loc.ID] = loc
	}

	cache := make(map[string]string, len(locations))
	var resolve func(id string, visiting map[string]bool) (string, error)
	resolve = func(id string, visiting map[string]bool) (string, error) {
		if path, ok := cache[id]; ok {
			return path, nil
		}
		if visiting[id] {
			return "", errors.Errorf("bulk: location parent chain contains a cycle at id %s", id)
		}
		visiting[id] = true

		loc, ok := byID[id]
		if !ok {
			return "", errors.Errorf("bulk: location %s references unknown parent", id)
		}
		path := loc.Name
		if loc.ParentID != nil && *loc.ParentID != "" {
			parentPath, err := resolve(*loc.ParentID, visiting)
			if err != nil {
				return "", err
			}
			path = parentPath + pathSeparator + loc.Name
		}
		cache[id] = path
		return path, nil
	}

	byPath := make(map[string]api.Location, len(locations))
	for _, loc := range locations {
		path, err := resolve(loc.ID, map[string]bool{})
		if err != nil {
			return nil, err
		}
		byPath[path] = loc
	}
	return byPath, nil
}

// resolveLocations walks the depth-sorted nodes and reconciles each one
// against the remote set: exact-path matches are reused, everything else
// is created under its (already resolved) parent. Returns the path -> id
// map device reconciliation depends on. Per-node failures are recorded
// and never abort the walk; a failed parent makes every descendant fail
// explicitly with the same class of error.
func (imp *Importer) resolveLocations(ctx context.Context, nodes []*LocationNode, remote map[string]api.Location, summary *ImportSummary) map[string]string {
	ids := make(map[string]string, len(nodes))

	for _, node := range nodes {
		if existing, ok := remote[node.Path]; ok {
			ids[node.Path] = existing.ID
			summary.Add(ImportResult{
				Type:   ResultLocation,
				Action: ActionMatched,
				Name:   node.Path,
				ID:     existing.ID,
			})
			continue
		}

		var parentID *string
		if node.ParentPath != "" {
			id, ok := ids[node.ParentPath]
			if !ok {
				summary.Add(ImportResult{
					Type:   ResultLocation,
					Action: ActionFailed,
					Name:   node.Path,
					Error:  "parent location not found: " + node.ParentPath,
				})
				continue
			}
			parentID = &id
		}

		req := api.CreateLocationRequest{
			Name:      node.Name,
			ParentID:  parentID,
			CompanyID: imp.opts.CompanyID,
			UserID:    imp.opts.UserID,
		}
		// operator defaults first, CSV-sourced meta wins per field
		for field, value := range imp.opts.LocationDefaults {
			applyLocationAttr(&req.LocationAttrs, field, value)
		}
		for field, value := range node.Meta {
			applyLocationAttr(&req.LocationAttrs, field, value)
		}

		if imp.opts.DryRun {
			id := "dryrun-" + uuid.NewString()
			ids[node.Path] = id
			summary.Add(ImportResult{
				Type:   ResultLocation,
				Action: ActionCreated,
				Name:   node.Path,
				ID:     id,
			})
			continue
		}

		created, err := imp.svc.Locations.CreateLocation(ctx, req)
		if err != nil {
			summary.Add(ImportResult{
				Type:   ResultLocation,
				Action: ActionFailed,
				Name:   node.Path,
				Error:  err.Error(),
			})
			continue
		}
		ids[node.Path] = created.ID
		summary.Add(ImportResult{
			Type:   ResultLocation,
			Action: ActionCreated,
			Name:   node.Path,
			ID:     created.ID,
		})
	}

	return ids
}

func applyLocationAttr(attrs *api.LocationAttrs, field, value string) {
	if value == "" {
		return
	}
	switch field {
	case "address":
		attrs.Address = value
	case "city":
		attrs.City = value
	case "state":
		attrs.State = value
	case "country":
		attrs.Country = value
	case "zip":
		attrs.Zip = value
	case "timezone":
		attrs.Timezone = value
	case "industry":
		attrs.Industry = value
	case "external_id":
		attrs.ExternalID = value
	}
}
