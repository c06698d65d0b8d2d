// Package strid interns strings into small integer identifiers so uniform,
// pass, and draw-group lookups compare integers instead of strings.
package strid

// ID identifies an interned string. The zero value is None.
type ID uint32

// None is never assigned to a string; the empty string maps to it.
const None ID = 0

// Map is a bidirectional string <-> ID store. The zero value is ready to
// use. It is not safe for concurrent mutation; the renderer owns it for the
// lifetime of the process.
type Map struct {
	ids     map[string]ID
	strings []string
}

func NewMap() *Map {
	return &Map{
		ids:     make(map[string]ID),
		strings: []string{""},
	}
}

// Add interns s and returns its ID. Adding an existing string returns the
// ID it already has.
func (m *Map) Add(s string) ID {
	if s == "" {
		return None
	}
	if id, ok := m.ids[s]; ok {
		return id
	}
	if m.ids == nil {
		m.ids = make(map[string]ID)
		m.strings = append(m.strings[:0], "")
	}
	id := ID(len(m.strings))
	m.strings = append(m.strings, s)
	m.ids[s] = id
	return id
}

// Lookup returns the ID of s without interning it.
func (m *Map) Lookup(s string) (ID, bool) {
	if s == "" {
		return None, false
	}
	id, ok := m.ids[s]
	return id, ok
}

// String returns the string for id, or "" for None and unknown ids.
func (m *Map) String(id ID) string {
	if int(id) >= len(m.strings) {
		return ""
	}
	return m.strings[id]
}

// Len reports the number of interned strings.
func (m *Map) Len() int {
	if len(m.strings) == 0 {
		return 0
	}
	return len(m.strings) - 1
}
