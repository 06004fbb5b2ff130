// Package check compares navlink CRC extras across the installed dialect
// implementations. A mismatch means receivers silently drop the message, so
// any difference is reported as an error, not a warning.
package check

import (
	"fmt"
	"sort"

	"github.com/gartfeo/navlink/dialect"
	"github.com/gartfeo/navlink/headers"
)

// Entry is one message as seen by a single source
type Entry struct {
	Name     string
	CRCExtra uint8
	Len      int
}

// Source is a named CRC table: the dialect engine or an installed C header
type Source struct {
	Name    string
	Entries map[uint32]Entry
}

// FromDialect computes the reference table from message definitions,
// restricted to the navlink id block.
func FromDialect(set *dialect.Dialect) Source {
	src := Source{
		Name:    "dialect",
		Entries: make(map[uint32]Entry),
	}

	for _, m := range set.Messages {
		if !dialect.InBlock(m.ID) {
			continue
		}

		length, err := m.WireLength()
		if err != nil {
			continue
		}

		src.Entries[m.ID] = Entry{
			Name:     m.Name,
			CRCExtra: m.CRCExtra(),
			Len:      length,
		}
	}

	return src
}

// FromHeader reads a generated C header table, restricted to ids known to
// the dialect so upstream messages don't drown the comparison.
func FromHeader(name, path string, set *dialect.Dialect) (Source, error) {
	src := Source{
		Name:    name,
		Entries: make(map[uint32]Entry),
	}

	entries, err := headers.ParseFile(path)
	if err != nil {
		return src, err
	}

	for id, e := range entries {
		def, ok := set.Message(id)
		if !ok || !dialect.InBlock(id) {
			continue
		}

		src.Entries[id] = Entry{
			Name:     def.Name,
			CRCExtra: e.CRCExtra,
			Len:      int(e.MaxLen),
		}
	}

	return src, nil
}

// Issue is a single inconsistency between two sources
type Issue struct {
	ID     uint32
	Name   string
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s (ID %d): %s", i.Name, i.ID, i.Detail)
}

// Compare walks the union of both id sets. Missing messages and CRC
// differences are issues; length differences are expected for messages with
// truncated arrays and are ignored.
func Compare(a, b Source) []Issue {
	ids := make(map[uint32]bool)
	for id := range a.Entries {
		ids[id] = true
	}
	for id := range b.Entries {
		ids[id] = true
	}

	sorted := make([]uint32, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var issues []Issue
	for _, id := range sorted {
		ea, inA := a.Entries[id]
		eb, inB := b.Entries[id]

		switch {
		case !inA:
			issues = append(issues, Issue{id, eb.Name, "missing in " + a.Name})
		case !inB:
			issues = append(issues, Issue{id, ea.Name, "missing in " + b.Name})
		case ea.CRCExtra != eb.CRCExtra:
			issues = append(issues, Issue{id, ea.Name,
				fmt.Sprintf("CRC mismatch: %s=%d vs %s=%d", a.Name, ea.CRCExtra, b.Name, eb.CRCExtra)})
		}
	}

	return issues
}
