package imagedata

// EventKind identifies what changed on an ImageData.
type EventKind int

const (
	// DataChanged is fired when the backing array is replaced.
	DataChanged EventKind = iota + 1
	// MetadataReplaced is fired when the whole metadata mapping is replaced.
	MetadataReplaced
	// MetadataItemsChanged is fired when a single metadata entry is set or deleted.
	MetadataItemsChanged
)

func (k EventKind) String() string {
	switch k {
	case DataChanged:
		return "data_changed"
	case MetadataReplaced:
		return "metadata_replaced"
	case MetadataItemsChanged:
		return "metadata_items_changed"
	default:
		return "unknown"
	}
}

// IsMetadata reports whether the event concerns the metadata mapping.
func (k EventKind) IsMetadata() bool {
	return k == MetadataReplaced || k == MetadataItemsChanged
}

// Event describes a single change to an ImageData.
type Event struct {
	Kind   EventKind
	Source *ImageData
	// Key is the metadata key for MetadataItemsChanged events, empty otherwise.
	Key string
}

// Listener receives change events.
type Listener interface {
	HandleEvent(Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(Event)

// HandleEvent calls f(e).
func (f ListenerFunc) HandleEvent(e Event) { f(e) }

type subscription struct {
	id int
	l  Listener
}

// Subscribe registers l for change events and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (d *ImageData) Subscribe(l Listener) (cancel func()) {
	d.nextSub++
	id := d.nextSub
	d.subs = append(d.subs, subscription{id: id, l: l})
	return func() {
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

func (d *ImageData) notify(kind EventKind, key string) {
	if len(d.subs) == 0 {
		return
	}
	e := Event{Kind: kind, Source: d, Key: key}
	// Copy so listeners may unsubscribe while being notified.
	subs := append([]subscription(nil), d.subs...)
	for _, s := range subs {
		s.l.HandleEvent(e)
	}
}
