package bulk

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const mappingFileVersion = 1

// mappingFile is the persisted mapping document, reusable across runs
// against structurally similar CSVs.
type mappingFile struct {
	Version   int                 `json:"version"`
	Mappings  map[string][]string `json:"mappings"`
	Hierarchy []string            `json:"hierarchy"`
	CreatedAt time.Time           `json:"createdAt"`
}

// SaveMapping writes the mapping to a JSON file.
func SaveMapping(path string, m ColumnMapping, h HierarchyMapping) error {
	doc := mappingFile{
		Version:   mappingFileVersion,
		Mappings:  make(map[string][]string, len(m)),
		Hierarchy: h.Columns,
		CreatedAt: time.Now().UTC(),
	}
	for column, targets := range m {
		ss := make([]string, 0, len(targets))
		for _, t := range targets {
			ss = append(ss, t.String())
		}
		doc.Mappings[column] = ss
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "bulk: mkdir %s", dir)
		}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "bulk: marshal mapping")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "bulk: write %s", path)
	}
	return nil
}

// LoadMapping reads a previously saved mapping; unknown fields and
// unsupported versions are rejected.
func LoadMapping(path string) (ColumnMapping, HierarchyMapping, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, HierarchyMapping{}, errors.Wrapf(err, "bulk: read %s", path)
	}

	var doc mappingFile
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, HierarchyMapping{}, errors.Wrapf(err, "bulk: decode %s", path)
	}
	if doc.Version != mappingFileVersion {
		return nil, HierarchyMapping{}, errors.Errorf("bulk: unsupported mapping version %d", doc.Version)
	}

	m := make(ColumnMapping, len(doc.Mappings))
	for column, ss := range doc.Mappings {
		targets := make([]Target, 0, len(ss))
		for _, s := range ss {
			t, err := ParseTarget(s)
			if err != nil {
				return nil, HierarchyMapping{}, errors.Wrapf(err, "bulk: column %q", column)
			}
			if t.Kind == TargetSkip {
				continue
			}
			targets = append(targets, t)
		}
		if len(targets) > 0 {
			m[column] = targets
		}
	}
	return m, HierarchyMapping{Columns: doc.Hierarchy}, nil
}
