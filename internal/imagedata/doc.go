// Package imagedata provides ImageData, the data model behind image plots.
//
// An ImageData wraps a 2-D (rows x columns) or 3-D (rows x columns x channels)
// numeric array together with a small amount of bookkeeping: a transposed flag, the
// value depth (channels per pixel), and a metadata mapping. Derived queries report the
// value bounds, the array bounds, the width and the height of the image.
//
// # Axes
//
// Axis 0 of the backing array is the row (Y) axis and axis 1 is the column (X)
// axis, so Width reports axis 1 and Height reports axis 0. When the transposed
// flag is set the two are swapped, and Data returns the array with axes 0 and 1
// exchanged. The backing array itself is never modified by transposition.
//
// # Change Notification
//
// Listeners registered with Subscribe receive an Event for each change:
//   - DataChanged: SetData replaced the backing array
//   - MetadataReplaced: SetMetadata replaced the whole mapping
//   - MetadataItemsChanged: a key was set or deleted on the live mapping
//
// Every mutating call fires exactly one event. Listeners run synchronously on the
// goroutine that made the change.
//
// # Loading Images
//
// FromFile decodes PNG, JPEG, GIF, BMP, TIFF and WebP files into a
// (height, width, depth) array of 8-bit levels. The value depth is inferred from the
// decoded color model: 1 for grayscale, 3 for opaque color, 4 for color with alpha.
//
// # Sampling
//
// Sample, Stats and Crop take display coordinates: X runs along Width and Y along
// Height, so they follow the transposed flag the same way Width and Height do.
//
// # Thread Safety
//
// ImageData is not safe for concurrent mutation. The Store type is safe for
// concurrent use, but callers sharing a stored ImageData must synchronize access to
// it themselves.
package imagedata
