// Package ndarray provides a small dense N-dimensional float64 array used as the
// backing store for image data.
//
// Arrays are row-major: the last axis varies fastest. An image with H rows, W columns
// and C channels is stored with shape (H, W, C), so the value at row y, column x and
// channel c lives at offset (y*W+x)*C+c.
package ndarray

import (
	"errors"
	"fmt"
	"math"
)

// ErrShape is returned when a shape does not match the data it describes.
var ErrShape = errors.New("shape mismatch")

// Array is a dense row-major float64 array.
type Array struct {
	shape   []int
	strides []int
	data    []float64
}

// New returns a zero-filled array with the given shape.
func New(shape ...int) *Array {
	n, err := product(shape)
	if err != nil {
		panic(err)
	}
	return newArray(make([]float64, n), shape)
}

// FromSlice wraps data in an array of the given shape. The slice is not copied.
func FromSlice(data []float64, shape ...int) (*Array, error) {
	n, err := product(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d values cannot fill shape %v", ErrShape, len(data), shape)
	}
	return newArray(data, shape), nil
}

// Arange returns a 1-D array of evenly spaced values in [start, stop).
func Arange(start, stop, step float64) *Array {
	if step == 0 {
		panic("ndarray: Arange step must be non-zero")
	}
	n := int(math.Ceil((stop - start) / step))
	if n < 0 {
		n = 0
	}
	data := make([]float64, n)
	for i := range data {
		data[i] = start + float64(i)*step
	}
	return newArray(data, []int{n})
}

func newArray(data []float64, shape []int) *Array {
	s := append([]int(nil), shape...)
	return &Array{shape: s, strides: strides(s), data: data}
}

func product(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		n *= d
	}
	return n, nil
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

// Shape returns a copy of the array's dimensions.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// NDim returns the number of axes.
func (a *Array) NDim() int { return len(a.shape) }

// Dim returns the extent of axis i.
func (a *Array) Dim(i int) int { return a.shape[i] }

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.data) }

// Data returns the backing slice in row-major order.
func (a *Array) Data() []float64 { return a.data }

func (a *Array) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for %d-d array", len(idx), len(a.shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %d out of range [0,%d) on axis %d", v, a.shape[i], i))
		}
		off += v * a.strides[i]
	}
	return off
}

// At returns the element at the given index.
func (a *Array) At(idx ...int) float64 { return a.data[a.offset(idx)] }

// Set stores v at the given index.
func (a *Array) Set(v float64, idx ...int) { a.data[a.offset(idx)] = v }

// Reshape returns an array sharing a's data with a new shape. At most one
// dimension may be -1, in which case it is inferred from the element count.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	s := append([]int(nil), shape...)
	infer := -1
	known := 1
	for i, d := range s {
		switch {
		case d == -1:
			if infer >= 0 {
				return nil, fmt.Errorf("%w: more than one inferred dimension in %v", ErrShape, shape)
			}
			infer = i
		case d < 0:
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || len(a.data)%known != 0 {
			return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, a.shape, shape)
		}
		s[infer] = len(a.data) / known
		known *= s[infer]
	}
	if known != len(a.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, a.shape, shape)
	}
	return newArray(a.data, s), nil
}

// SwapAxes returns a copy of a with axes i and j exchanged.
func (a *Array) SwapAxes(i, j int) (*Array, error) {
	nd := len(a.shape)
	if i < 0 || i >= nd || j < 0 || j >= nd {
		return nil, fmt.Errorf("%w: axes (%d,%d) out of range for %d-d array", ErrShape, i, j, nd)
	}
	shape := a.Shape()
	shape[i], shape[j] = shape[j], shape[i]
	out := newArray(make([]float64, len(a.data)), shape)
	if len(a.data) == 0 {
		return out, nil
	}

	// Walk the source in row-major order and scatter into the swapped position.
	src := make([]int, nd)
	dst := make([]int, nd)
	for _, v := range a.data {
		copy(dst, src)
		dst[i], dst[j] = src[j], src[i]
		out.data[out.offset(dst)] = v
		for k := nd - 1; k >= 0; k-- {
			src[k]++
			if src[k] < a.shape[k] {
				break
			}
			src[k] = 0
		}
	}
	return out, nil
}

// MinMax returns the smallest and largest values, ignoring NaN. ok is false
// when the array holds no non-NaN value.
func (a *Array) MinMax() (min, max float64, ok bool) {
	for _, v := range a.data {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			min, max, ok = v, v, true
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, ok
}

// Equal reports whether a and b have the same shape and values.
// NaN values compare equal to each other.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i, v := range a.data {
		w := b.data[i]
		if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of a.
func (a *Array) Clone() *Array {
	return newArray(append([]float64(nil), a.data...), a.shape)
}

// String formats the array shape, e.g. "Array(5x3x1)".
func (a *Array) String() string {
	s := "Array("
	for i, d := range a.shape {
		if i > 0 {
			s += "x"
		}
		s += fmt.Sprint(d)
	}
	return s + ")"
}
