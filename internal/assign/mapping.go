package assign

import "github.com/roach88/redirector/internal/storefront"

// Mapping is the canonical language → entry table.
//
// Keys iterate in insertion order, which follows input record order, so two
// runs over the same records always walk the table identically. Only Assign
// builds a Mapping; callers get a read-only view.
type Mapping struct {
	keys  []string
	byKey map[string]storefront.Entry
}

func newMapping() *Mapping {
	return &Mapping{byKey: make(map[string]storefront.Entry)}
}

// Get returns the entry for a language key.
func (m *Mapping) Get(language string) (storefront.Entry, bool) {
	e, ok := m.byKey[language]
	return e, ok
}

// Len returns the number of language keys.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Keys returns language keys in insertion order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Entries returns entries in insertion order.
func (m *Mapping) Entries() []storefront.Entry {
	out := make([]storefront.Entry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.byKey[k])
	}
	return out
}

func (m *Mapping) insert(e storefront.Entry) {
	if _, exists := m.byKey[e.Language]; exists {
		return
	}
	m.keys = append(m.keys, e.Language)
	m.byKey[e.Language] = e
}

func (m *Mapping) remove(language string) {
	if _, exists := m.byKey[language]; !exists {
		return
	}
	delete(m.byKey, language)
	for i, k := range m.keys {
		if k == language {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}
