package imagedata

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/imagedata-mcp/internal/ndarray"
)

// FromFile decodes an image file into a new ImageData.
//
// The backing array has shape (height, width, depth) and holds straight
// (non-premultiplied) 8-bit levels in R, G, B, A channel order. The depth, also
// reported by ValueDepth, is inferred from the decoded image:
//   - 1 for grayscale images
//   - 3 for color images without an alpha channel
//   - 4 for color images with an alpha channel
//
// JPEG files are auto-oriented using their EXIF data.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not in a registered image format
func FromFile(path string) (*ImageData, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image data: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts a decoded image into a new ImageData. See FromFile for the
// array layout.
func FromImage(img image.Image) *ImageData {
	depth := channelCount(img)
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	arr := ndarray.New(h, w, depth)
	data := arr.Data()

	if depth == 1 {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				data[i] = float64(g.Y)
				i++
			}
		}
		return New(WithData(arr), WithValueDepth(1))
	}

	// imaging.Clone normalizes every color model to straight-alpha NRGBA.
	nrgba := imaging.Clone(img)
	i := 0
	for y := 0; y < h; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for x := 0; x < w; x++ {
			for c := 0; c < depth; c++ {
				data[i] = float64(row[x*4+c])
				i++
			}
		}
	}
	return New(WithData(arr), WithValueDepth(depth))
}

// channelCount infers the number of channels carried by a decoded image.
func channelCount(img image.Image) int {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA:
		return 4
	case *image.YCbCr, *image.CMYK:
		return 3
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	}

	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}
