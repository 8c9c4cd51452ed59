package imagedata

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Colormap maps normalized scalar values in [0, 1] to colors by blending a list of
// stops in HCL space.
type Colormap struct {
	Name  string
	stops []colorful.Color
}

var builtinColormaps = map[string][]string{
	"gray":    {"#000000", "#ffffff"},
	"hot":     {"#000000", "#e60000", "#ffd200", "#ffffff"},
	"jet":     {"#00007f", "#0000ff", "#00ffff", "#ffff00", "#ff0000", "#7f0000"},
	"viridis": {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
}

// NewColormap builds a colormap from two or more "#RRGGBB" stops.
func NewColormap(name string, hexStops ...string) (*Colormap, error) {
	if len(hexStops) < 2 {
		return nil, fmt.Errorf("colormap %q needs at least two stops, got %d", name, len(hexStops))
	}
	stops := make([]colorful.Color, len(hexStops))
	for i, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colormap %q: invalid stop %q: %w", name, h, err)
		}
		stops[i] = c
	}
	return &Colormap{Name: name, stops: stops}, nil
}

// LookupColormap returns one of the built-in colormaps.
func LookupColormap(name string) (*Colormap, error) {
	stops, ok := builtinColormaps[name]
	if !ok {
		return nil, fmt.Errorf("unknown colormap: %s", name)
	}
	return NewColormap(name, stops...)
}

// ColormapNames lists the built-in colormaps in sorted order.
func ColormapNames() []string {
	names := make([]string, 0, len(builtinColormaps))
	for n := range builtinColormaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// At returns the color for t. Values outside [0, 1] are clamped; NaN maps to a
// fully transparent pixel.
func (m *Colormap) At(t float64) color.NRGBA {
	if math.IsNaN(t) {
		return color.NRGBA{}
	}
	t = math.Max(0, math.Min(1, t))
	segs := len(m.stops) - 1
	pos := t * float64(segs)
	i := int(pos)
	if i >= segs {
		i = segs - 1
	}
	c := m.stops[i].BlendHcl(m.stops[i+1], pos-float64(i)).Clamped()
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Render draws d as an image.
//
// Single-channel data are normalized by the value bounds and mapped through cmap
// (gray when cmap is nil). Two-channel data are treated as gray plus alpha, and
// three- or four-channel data as RGB or RGBA levels in [0, 255]. Transposed data
// render transposed.
//
// # Errors
//
//   - ErrNoData when d holds no data
//   - ErrNotSupported for more than four channels
func Render(d *ImageData, cmap *Colormap) (image.Image, error) {
	raw := d.RawValue()
	if raw == nil {
		return nil, fmt.Errorf("failed to render: %w", ErrNoData)
	}
	h, w := raw.Dim(0), raw.Dim(1)
	depth := 1
	if raw.NDim() == 3 {
		depth = raw.Dim(2)
	}
	if depth < 1 || depth > 4 {
		return nil, fmt.Errorf("failed to render %d-channel data: %w", depth, ErrNotSupported)
	}
	if cmap == nil {
		var err error
		if cmap, err = LookupColormap("gray"); err != nil {
			return nil, err
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	data := raw.Data()
	bounds := d.Bounds()
	span := bounds.High - bounds.Low

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := data[(y*w+x)*depth : (y*w+x+1)*depth]
			var c color.NRGBA
			switch depth {
			case 1:
				t := 0.0
				if span > 0 {
					t = (px[0] - bounds.Low) / span
				}
				if math.IsNaN(px[0]) {
					t = math.NaN()
				}
				c = cmap.At(t)
			case 2:
				g := level(px[0])
				c = color.NRGBA{R: g, G: g, B: g, A: level(px[1])}
			case 3:
				c = color.NRGBA{R: level(px[0]), G: level(px[1]), B: level(px[2]), A: 255}
			case 4:
				c = color.NRGBA{R: level(px[0]), G: level(px[1]), B: level(px[2]), A: level(px[3])}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	if d.Transposed() {
		return imaging.Transpose(img), nil
	}
	return img, nil
}

// level clamps v to an 8-bit channel value.
func level(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// EncodePNGBase64 encodes img as PNG and returns the bytes as base64.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SaveImage writes img to path as PNG.
func SaveImage(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
