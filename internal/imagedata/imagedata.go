package imagedata

import (
	"errors"
	"fmt"

	"github.com/ironsheep/imagedata-mcp/internal/ndarray"
)

var (
	// ErrNotSupported is returned by operations ImageData does not implement,
	// currently the data mask query.
	ErrNotSupported = errors.New("not supported")

	// ErrNoData is returned when an operation needs data and none is set.
	ErrNoData = errors.New("no data")

	// ErrShape is returned when an array has a rank other than 2 or 3.
	ErrShape = ndarray.ErrShape
)

// Bounds is the (low, high) range of the values held by an ImageData.
type Bounds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Range is a half-open index range [Low, High) along one axis.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// ArrayBounds holds the index ranges along the X (column) and Y (row) axes.
type ArrayBounds struct {
	X Range `json:"x"`
	Y Range `json:"y"`
}

// ImageData holds a 2-D or 3-D numeric array and the bookkeeping needed to plot it.
//
// The zero value is not usable; construct with New or NewChecked.
type ImageData struct {
	data       *ndarray.Array
	transposed bool
	valueDepth int
	metadata   *Metadata

	bounds      Bounds
	boundsValid bool

	subs    []subscription
	nextSub int
}

// Option configures an ImageData during construction.
type Option func(*ImageData)

// WithData sets the initial backing array. Construction does not fire DataChanged.
func WithData(a *ndarray.Array) Option {
	return func(d *ImageData) { d.data = a }
}

// WithTransposed sets the transposed flag.
func WithTransposed(t bool) Option {
	return func(d *ImageData) { d.transposed = t }
}

// WithValueDepth sets the number of channels per pixel.
func WithValueDepth(n int) Option {
	return func(d *ImageData) { d.valueDepth = n }
}

// NewChecked builds an ImageData and validates the initial data.
func NewChecked(opts ...Option) (*ImageData, error) {
	d := &ImageData{valueDepth: 1}
	d.metadata = newMetadata(d, DefaultMetadata())
	for _, opt := range opts {
		opt(d)
	}
	if err := Validate(d.data); err != nil {
		return nil, err
	}
	if d.valueDepth < 1 {
		return nil, fmt.Errorf("invalid value depth %d", d.valueDepth)
	}
	return d, nil
}

// New is like NewChecked but panics on invalid options.
func New(opts ...Option) *ImageData {
	d, err := NewChecked(opts...)
	if err != nil {
		panic(fmt.Sprintf("imagedata: %v", err))
	}
	return d
}

// Validate reports whether a can back an ImageData. A nil array is valid and
// means "no data".
func Validate(a *ndarray.Array) error {
	if a == nil {
		return nil
	}
	if nd := a.NDim(); nd != 2 && nd != 3 {
		return fmt.Errorf("%w: image data must be 2-D or 3-D, got %d-D", ErrShape, nd)
	}
	return nil
}

// Dimension names the kind of data source. It is always "image".
func (d *ImageData) Dimension() string { return "image" }

// Transposed reports whether width and height queries swap axes.
func (d *ImageData) Transposed() bool { return d.transposed }

// SetTransposed changes the transposed flag.
func (d *ImageData) SetTransposed(t bool) { d.transposed = t }

// ValueDepth returns the number of channels per pixel.
func (d *ImageData) ValueDepth() int { return d.valueDepth }

// HasData reports whether a backing array is set.
func (d *ImageData) HasData() bool { return d.data != nil }

// RawValue returns the backing array as stored, ignoring the transposed flag.
func (d *ImageData) RawValue() *ndarray.Array { return d.data }

// Data returns the image array, or nil when no data is set. When the transposed
// flag is set the returned array is a copy with axes 0 and 1 exchanged.
func (d *ImageData) Data() *ndarray.Array {
	if d.data == nil {
		return nil
	}
	if !d.transposed {
		return d.data
	}
	t, err := d.data.SwapAxes(0, 1)
	if err != nil {
		// Validate guarantees at least two axes.
		panic(err)
	}
	return t
}

// SetData replaces the backing array and fires exactly one DataChanged event.
// A nil array clears the data. Arrays that are not 2-D or 3-D are rejected with
// ErrShape and leave the ImageData unchanged.
func (d *ImageData) SetData(a *ndarray.Array) error {
	if err := Validate(a); err != nil {
		return err
	}
	d.data = a
	d.boundsValid = false
	d.notify(DataChanged, "")
	return nil
}

// DataMask would return the data together with its mask. Masking is not
// implemented, so it always fails with ErrNotSupported.
func (d *ImageData) DataMask() (data, mask *ndarray.Array, err error) {
	return nil, nil, fmt.Errorf("data mask: %w", ErrNotSupported)
}

// IsMasked reports whether the data carries a mask. It is always false.
func (d *ImageData) IsMasked() bool { return false }

// Bounds returns the smallest and largest values in the data, ignoring NaN.
// The result is cached until the data changes. Empty data, or data holding
// only NaN, yields Bounds{0, 0}.
func (d *ImageData) Bounds() Bounds {
	if d.boundsValid {
		return d.bounds
	}
	d.bounds = Bounds{}
	if d.data != nil {
		if lo, hi, ok := d.data.MinMax(); ok {
			d.bounds = Bounds{Low: lo, High: hi}
		}
	}
	d.boundsValid = true
	return d.bounds
}

// Size returns the number of pixels, rows times columns. It is 0 when no data
// is set.
func (d *ImageData) Size() int {
	if d.data == nil || d.data.Dim(0) == 0 {
		return 0
	}
	return d.data.Dim(0) * d.data.Dim(1)
}

// Width returns the extent of axis 1, or axis 0 when transposed.
func (d *ImageData) Width() int {
	if d.data == nil {
		return 0
	}
	if d.transposed {
		return d.data.Dim(0)
	}
	return d.data.Dim(1)
}

// Height returns the extent of axis 0, or axis 1 when transposed.
func (d *ImageData) Height() int {
	if d.data == nil {
		return 0
	}
	if d.transposed {
		return d.data.Dim(1)
	}
	return d.data.Dim(0)
}

// ArrayBounds returns the index ranges ((0, width), (0, height)).
func (d *ImageData) ArrayBounds() ArrayBounds {
	return ArrayBounds{
		X: Range{Low: 0, High: d.Width()},
		Y: Range{Low: 0, High: d.Height()},
	}
}

// Metadata returns the live metadata mapping.
func (d *ImageData) Metadata() *Metadata { return d.metadata }

// SetMetadata replaces the whole metadata mapping with a copy of m and fires
// exactly one MetadataReplaced event. A Metadata obtained before the call is
// detached: later changes to it no longer notify listeners.
func (d *ImageData) SetMetadata(m map[string]any) {
	d.metadata.owner = nil
	d.metadata = newMetadata(d, m)
	d.notify(MetadataReplaced, "")
}
