package bulk

import (
	"fmt"

	"github.com/nimbus-iot/nimbusctl/pkg/prompt"
)

// menu option kinds beyond plain targets.
const (
	optSkip = iota
	optTarget
	optMetadata
	optBack
)

type menuOption struct {
	kind   int
	label  string
	target Target
}

// session holds the state threaded through the interactive loop so that
// Back is a plain decrement plus reversal of the previous column's effects.
type session struct {
	headers   []string
	mapping   ColumnMapping
	hierarchy []string
	used      map[string]bool // single-use field targets already taken
	decisions [][]Target      // per column index, in pick order
}

// BuildMappingInteractive walks the CSV columns in file order, letting the
// operator assign each one a target (or two), skip it, or step back to the
// previous column. Repeated hierarchy picks append levels in selection
// order.
func BuildMappingInteractive(p prompt.Prompter, headers []string) (ColumnMapping, HierarchyMapping, error) {
	s := &session{
		headers:   headers,
		mapping:   ColumnMapping{},
		hierarchy: nil,
		used:      map[string]bool{},
		decisions: make([][]Target, len(headers)),
	}

	i := 0
	for i < len(headers) {
		column := headers[i]
		options := s.menu(i, false)
		def := s.defaultOption(column, options)

		labels := make([]string, len(options))
		for j, o := range options {
			labels[j] = o.label
		}
		choice, err := p.Select(fmt.Sprintf("Column %d/%d: %q", i+1, len(headers), column), labels, def)
		if err != nil {
			return nil, HierarchyMapping{}, err
		}
		picked := options[choice]

		switch picked.kind {
		case optBack:
			i--
			s.undo(i)
			continue
		case optSkip:
			s.decisions[i] = nil
			i++
			continue
		}

		first, err := s.resolvePick(p, column, picked)
		if err != nil {
			return nil, HierarchyMapping{}, err
		}
		targets := []Target{first}
		s.apply(i, first)

		more, err := p.Confirm(fmt.Sprintf("Map %q to a second target as well?", column), false)
		if err != nil {
			return nil, HierarchyMapping{}, err
		}
		if more {
			secondOpts := s.menu(i, true)
			labels := make([]string, len(secondOpts))
			for j, o := range secondOpts {
				labels[j] = o.label
			}
			choice, err := p.Select(fmt.Sprintf("Second target for %q", column), labels, -1)
			if err != nil {
				return nil, HierarchyMapping{}, err
			}
			second, err := s.resolvePick(p, column, secondOpts[choice])
			if err != nil {
				return nil, HierarchyMapping{}, err
			}
			targets = append(targets, second)
			s.apply(i, second)
		}

		s.decisions[i] = targets
		s.mapping[column] = targets
		i++
	}

	return s.mapping, HierarchyMapping{Columns: s.hierarchy}, nil
}

// resolvePick turns a menu option into a concrete target, prompting for
// the metadata key when needed.
func (s *session) resolvePick(p prompt.Prompter, column string, o menuOption) (Target, error) {
	if o.kind == optMetadata {
		key, err := p.Input(fmt.Sprintf("Metadata key for column %q", column), normalizeColumn(column))
		if err != nil {
			return Target{}, err
		}
		return Target{Kind: TargetDeviceMetadata, Key: key}, nil
	}
	return o.target, nil
}

func (s *session) apply(i int, t Target) {
	switch t.Kind {
	case TargetHierarchy:
		s.hierarchy = append(s.hierarchy, s.headers[i])
	case TargetLocationField, TargetDeviceField:
		s.used[t.String()] = true
	}
}

func (s *session) undo(i int) {
	for _, t := range s.decisions[i] {
		switch t.Kind {
		case TargetHierarchy:
			if n := len(s.hierarchy); n > 0 {
				s.hierarchy = s.hierarchy[:n-1]
			}
		case TargetLocationField, TargetDeviceField:
			delete(s.used, t.String())
		}
	}
	s.decisions[i] = nil
	delete(s.mapping, s.headers[i])
}

// menu builds the option list for column i. Single-use field targets
// already taken are omitted. The second-target menu drops Skip and Back.
func (s *session) menu(i int, second bool) []menuOption {
	var options []menuOption
	if !second {
		options = append(options, menuOption{kind: optSkip, label: "Skip this column"})
	}
	options = append(options, menuOption{
		kind:   optTarget,
		label:  fmt.Sprintf("Location hierarchy (Level %d)", len(s.hierarchy)+1),
		target: Target{Kind: TargetHierarchy},
	})
	for _, f := range LocationFields {
		t := Target{Kind: TargetLocationField, Field: f}
		if s.used[t.String()] {
			continue
		}
		options = append(options, menuOption{kind: optTarget, label: "Location " + f, target: t})
	}
	for _, f := range DeviceFields {
		t := Target{Kind: TargetDeviceField, Field: f}
		if s.used[t.String()] {
			continue
		}
		options = append(options, menuOption{kind: optTarget, label: "Device " + f, target: t})
	}
	options = append(options, menuOption{kind: optMetadata, label: "Device metadata (custom key)"})
	if !second && i > 0 {
		options = append(options, menuOption{kind: optBack, label: "Back (remap previous column)"})
	}
	return options
}

// defaultOption maps the heuristic guess onto a menu index; falls back to
// Skip when nothing matched or the guessed target is already taken.
func (s *session) defaultOption(column string, options []menuOption) int {
	guess, ok := GuessTarget(column)
	if !ok {
		return 0
	}
	for j, o := range options {
		if o.kind != optTarget {
			continue
		}
		if o.target.Kind == guess.Kind && o.target.Field == guess.Field {
			return j
		}
	}
	return 0
}
