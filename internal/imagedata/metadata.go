package imagedata

import "sort"

// Metadata is the string-keyed mapping attached to an ImageData. Mutations made
// through Set and Delete notify the owner's listeners with MetadataItemsChanged.
type Metadata struct {
	owner *ImageData
	items map[string]any
}

// DefaultMetadata returns the mapping every new ImageData starts with:
// empty "annotations" and "selections" lists.
func DefaultMetadata() map[string]any {
	return map[string]any{
		"annotations": []any{},
		"selections":  []any{},
	}
}

func newMetadata(owner *ImageData, items map[string]any) *Metadata {
	m := &Metadata{owner: owner, items: make(map[string]any, len(items))}
	for k, v := range items {
		m.items[k] = v
	}
	return m
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (any, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Set stores value under key and fires one MetadataItemsChanged event.
func (m *Metadata) Set(key string, value any) {
	m.items[key] = value
	m.changed(key)
}

// Delete removes key. A MetadataItemsChanged event is fired only if the key existed.
func (m *Metadata) Delete(key string) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	m.changed(key)
}

func (m *Metadata) changed(key string) {
	if m.owner != nil {
		m.owner.notify(MetadataItemsChanged, key)
	}
}

// Len returns the number of entries.
func (m *Metadata) Len() int { return len(m.items) }

// Keys returns the keys in sorted order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a shallow copy of the mapping.
func (m *Metadata) Snapshot() map[string]any {
	out := make(map[string]any, len(m.items))
	for k, v := range m.items {
		out[k] = v
	}
	return out
}
