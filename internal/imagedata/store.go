package imagedata

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
)

// Store caches ImageData values loaded from disk, keyed by path.
//
// Once a file is loaded, subsequent Load calls for the same path return the same
// *ImageData, so metadata edits and transposition are visible to later callers.
//
// Store is safe for concurrent use by multiple goroutines. The ImageData values it
// hands out are not; callers that share one must synchronize access to it.
//
// # Capacity
//
// A positive limit caps the number of entries. When the cap is reached the entry
// that was loaded first is evicted. A limit of zero or less means unbounded.
//
// # Example Usage
//
//	store := imagedata.NewStore(0)
//	d, err := store.Load("/path/to/image.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(d.Width(), d.Height(), d.ValueDepth())
type Store struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
	order   []string
	limit   int

	// Debug enables logging of change events on stored values.
	Debug bool
}

type storeEntry struct {
	data *ImageData
	// cancel drops the debug change logger; nil when Debug was off.
	cancel func()
}

// NewStore creates an empty store holding at most limit entries.
func NewStore(limit int) *Store {
	return &Store{
		entries: make(map[string]*storeEntry),
		limit:   limit,
	}
}

// Load returns the cached ImageData for path, decoding the file on first use.
//
// The entry is keyed by the exact path string. Different paths to the same file
// (e.g., relative vs absolute) result in separate entries.
func (s *Store) Load(path string) (*ImageData, error) {
	s.mu.RLock()
	if e, ok := s.entries[path]; ok {
		s.mu.RUnlock()
		return e.data, nil
	}
	s.mu.RUnlock()

	d, err := FromFile(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have loaded the same path meanwhile.
	if existing, ok := s.entries[path]; ok {
		return existing.data, nil
	}
	s.putLocked(path, d)
	return d, nil
}

// Get returns the cached entry for path without touching the disk.
func (s *Store) Get(path string) (*ImageData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[path]
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Put stores d under path, replacing any previous entry.
func (s *Store) Put(path string, d *ImageData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(path)
	s.putLocked(path, d)
}

func (s *Store) putLocked(path string, d *ImageData) {
	if s.limit > 0 {
		for len(s.order) >= s.limit {
			s.removeLocked(s.order[0])
		}
	}
	e := &storeEntry{data: d}
	if s.Debug {
		e.cancel = d.Subscribe(changeLogger(path))
	}
	s.entries[path] = e
	s.order = append(s.order, path)
}

func (s *Store) removeLocked(path string) {
	e, ok := s.entries[path]
	if !ok {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	delete(s.entries, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Evict removes the entry for path. If the path is not cached this does nothing.
func (s *Store) Evict(path string) {
	s.mu.Lock()
	s.removeLocked(path)
	s.mu.Unlock()
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	for _, e := range s.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	s.entries = make(map[string]*storeEntry)
	s.order = nil
	s.mu.Unlock()
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func changeLogger(path string) Listener {
	return ListenerFunc(func(e Event) {
		if e.Key != "" {
			log.Printf("imagedata %s: %s (key %q)", path, e.Kind, e.Key)
			return
		}
		log.Printf("imagedata %s: %s", path, e.Kind)
	})
}

// Summary reports the derived properties of an ImageData.
type Summary struct {
	// Path is the file the data was loaded from, if any.
	Path string `json:"path,omitempty"`

	// Format is the format guessed from the file extension, or "unknown".
	Format string `json:"format,omitempty"`

	Dimension   string      `json:"dimension"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Size        int         `json:"size"`
	ValueDepth  int         `json:"value_depth"`
	Transposed  bool        `json:"transposed"`
	Masked      bool        `json:"masked"`
	Bounds      Bounds      `json:"bounds"`
	ArrayBounds ArrayBounds `json:"array_bounds"`
}

// Summarize collects the derived properties of d.
func Summarize(path string, d *ImageData) *Summary {
	s := &Summary{
		Path:        path,
		Dimension:   d.Dimension(),
		Width:       d.Width(),
		Height:      d.Height(),
		Size:        d.Size(),
		ValueDepth:  d.ValueDepth(),
		Transposed:  d.Transposed(),
		Masked:      d.IsMasked(),
		Bounds:      d.Bounds(),
		ArrayBounds: d.ArrayBounds(),
	}
	if path != "" {
		s.Format = formatFromExt(path)
	}
	return s
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}
