package imagedata

import (
	"fmt"
	"math"

	"github.com/ironsheep/imagedata-mcp/internal/ndarray"
)

// Point is a pixel coordinate in display axes, with an optional label.
//
// X runs along the width and Y along the height, so the transposed flag
// decides which array axis each one indexes.
type Point struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// Region is the half-open pixel rectangle [X1, X2) x [Y1, Y2) in display axes.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns X2 - X1.
func (r Region) Width() int { return r.X2 - r.X1 }

// Height returns Y2 - Y1.
func (r Region) Height() int { return r.Y2 - r.Y1 }

// SampleResult holds the values of one pixel.
type SampleResult struct {
	Label  string    `json:"label,omitempty"`
	X      int       `json:"x"`
	Y      int       `json:"y"`
	Values []float64 `json:"values"`

	// Hex is "#RRGGBB" for three- and four-channel data.
	Hex string `json:"hex,omitempty"`
}

// RegionStats summarizes each channel over a region.
type RegionStats struct {
	Region Region    `json:"region"`
	Pixels int       `json:"pixels"`
	Low    []float64 `json:"low"`
	High   []float64 `json:"high"`
	Mean   []float64 `json:"mean"`

	// Valid counts the non-NaN values per channel that went into Mean.
	Valid []int `json:"valid"`
}

func depthOf(a *ndarray.Array) int {
	if a.NDim() == 3 {
		return a.Dim(2)
	}
	return 1
}

// rawIndex maps display coordinates to the row and column of the stored array.
func (d *ImageData) rawIndex(x, y int) (row, col int) {
	if d.transposed {
		return x, y
	}
	return y, x
}

func (d *ImageData) pixel(x, y int) []float64 {
	raw := d.data
	row, col := d.rawIndex(x, y)
	depth := depthOf(raw)
	off := (row*raw.Dim(1) + col) * depth
	return append([]float64(nil), raw.Data()[off:off+depth]...)
}

// Sample returns the values stored at (x, y).
func Sample(d *ImageData, x, y int) (*SampleResult, error) {
	if !d.HasData() {
		return nil, fmt.Errorf("failed to sample: %w", ErrNoData)
	}
	if x < 0 || x >= d.Width() || y < 0 || y >= d.Height() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds (%dx%d)", x, y, d.Width(), d.Height())
	}

	v := d.pixel(x, y)
	res := &SampleResult{X: x, Y: y, Values: v}
	if len(v) >= 3 {
		res.Hex = fmt.Sprintf("#%02X%02X%02X", level(v[0]), level(v[1]), level(v[2]))
	}
	return res, nil
}

// SampleMulti samples every point in order. No partial results are returned
// if any point is out of bounds.
func SampleMulti(d *ImageData, points []Point) ([]SampleResult, error) {
	results := make([]SampleResult, 0, len(points))
	for _, p := range points {
		s, err := Sample(d, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		s.Label = p.Label
		results = append(results, *s)
	}
	return results, nil
}

func (d *ImageData) checkRegion(r Region) error {
	if !d.HasData() {
		return ErrNoData
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > d.Width() || r.Y2 > d.Height() {
		return fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds (%dx%d)",
			r.X1, r.Y1, r.X2, r.Y2, d.Width(), d.Height())
	}
	if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
		return fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}
	return nil
}

// Stats computes per-channel low, high and mean over r. NaN values are skipped;
// a channel with no valid values reports zeros with a Valid count of 0.
func Stats(d *ImageData, r Region) (*RegionStats, error) {
	if err := d.checkRegion(r); err != nil {
		return nil, fmt.Errorf("failed to compute region stats: %w", err)
	}

	depth := depthOf(d.data)
	st := &RegionStats{
		Region: r,
		Pixels: r.Width() * r.Height(),
		Low:    make([]float64, depth),
		High:   make([]float64, depth),
		Mean:   make([]float64, depth),
		Valid:  make([]int, depth),
	}
	sums := make([]float64, depth)
	for c := range st.Low {
		st.Low[c] = math.Inf(1)
		st.High[c] = math.Inf(-1)
	}

	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			for c, v := range d.pixel(x, y) {
				if math.IsNaN(v) {
					continue
				}
				st.Low[c] = math.Min(st.Low[c], v)
				st.High[c] = math.Max(st.High[c], v)
				sums[c] += v
				st.Valid[c]++
			}
		}
	}

	for c := range sums {
		if st.Valid[c] == 0 {
			st.Low[c], st.High[c] = 0, 0
			continue
		}
		st.Mean[c] = sums[c] / float64(st.Valid[c])
	}
	return st, nil
}

// Crop returns a new ImageData holding a copy of region r. The result keeps the
// transposed flag and value depth of d and starts with default metadata.
func Crop(d *ImageData, r Region) (*ImageData, error) {
	if err := d.checkRegion(r); err != nil {
		return nil, fmt.Errorf("failed to crop: %w", err)
	}

	raw := d.data
	depth := depthOf(raw)
	rows, cols := r.Height(), r.Width()
	if d.transposed {
		rows, cols = cols, rows
	}

	shape := []int{rows, cols}
	if raw.NDim() == 3 {
		shape = append(shape, depth)
	}
	out := ndarray.New(shape...)
	dst := out.Data()
	src := raw.Data()

	// Walk the destination in storage order.
	row0, col0 := d.rawIndex(r.X1, r.Y1)
	for i := 0; i < rows; i++ {
		start := ((row0+i)*raw.Dim(1) + col0) * depth
		copy(dst[i*cols*depth:(i+1)*cols*depth], src[start:start+cols*depth])
	}

	return NewChecked(WithData(out), WithTransposed(d.transposed), WithValueDepth(d.valueDepth))
}
