package scaffold

import (
	"sort"
	"strings"
)

// ConfigMap is an insertion-ordered key/value map. Builders return fresh maps
// and Merge never mutates its receiver or argument.
type ConfigMap struct {
	keys   []string
	values map[string]string
}

// NewConfigMap builds a ConfigMap from alternating key/value pairs.
func NewConfigMap(pairs ...string) ConfigMap {
	m := ConfigMap{values: make(map[string]string, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.put(pairs[i], pairs[i+1])
	}
	return m
}

// ConfigMapFrom copies a plain map. Keys are ordered lexically since Go maps
// carry no order.
func ConfigMapFrom(values map[string]string) ConfigMap {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := ConfigMap{values: make(map[string]string, len(values))}
	for _, k := range keys {
		m.put(k, values[k])
	}
	return m
}

func (m *ConfigMap) put(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m ConfigMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value stored under key, or "".
func (m ConfigMap) Value(key string) string {
	return m.values[key]
}

// Keys returns the keys in insertion order.
func (m ConfigMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m ConfigMap) Len() int { return len(m.keys) }

// With returns a copy of m with key set to value.
func (m ConfigMap) With(key, value string) ConfigMap {
	out := m.clone()
	out.put(key, value)
	return out
}

// Merge returns a copy of m overlaid with every entry of overlay. Existing
// keys keep their position; new keys are appended in overlay order.
func (m ConfigMap) Merge(overlay ConfigMap) ConfigMap {
	out := m.clone()
	for _, k := range overlay.keys {
		out.put(k, overlay.values[k])
	}
	return out
}

// Map returns a plain copy of the entries.
func (m ConfigMap) Map() map[string]string {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

func (m ConfigMap) clone() ConfigMap {
	out := ConfigMap{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]string, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// IsPlaceholderKey reports whether key has the sentinel form _name_.
func IsPlaceholderKey(key string) bool {
	return len(key) > 2 && strings.HasPrefix(key, "_") && strings.HasSuffix(key, "_")
}
