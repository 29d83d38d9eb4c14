package globaltable

// orderedMap is a key-unique collection that remembers insertion order. The
// registries all need both properties: lookups by name and a stable order in
// the rendered output.
type orderedMap[V any] struct {
	keys   []string
	values map[string]V
}

func (m *orderedMap[V]) put(key string, value V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *orderedMap[V]) get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *orderedMap[V]) has(key string) bool {
	_, ok := m.values[key]
	return ok
}

func (m *orderedMap[V]) len() int {
	return len(m.keys)
}

// each visits entries in insertion order.
func (m *orderedMap[V]) each(fn func(key string, value V)) {
	for _, key := range m.keys {
		fn(key, m.values[key])
	}
}
