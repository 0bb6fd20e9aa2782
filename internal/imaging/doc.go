// Package imaging provides the image I/O around the bubble segmentation core.
//
// This package decodes comic pages into grayscale grids for the detection
// package, renders segmentation results back onto a copy of the page, and
// dumps intermediate pipeline stages for debugging. It never performs
// segmentation itself.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Boxes received from the
// detection package are inclusive on all sides.
//
// # Supported Formats
//
// Pages may be PNG, JPEG, GIF, BMP, TIFF or WebP. Colour pages are converted
// to luminance with ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
// Overlays and debug dumps are always written as PNG.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. RenderOverlay and
// RenderStage allocate their own canvas and never modify their inputs.
//
// # Error Handling
//
// Functions return errors for:
//   - File I/O errors during page loading
//   - Undecodable image data
//   - Invalid overlay colours
//   - Encoding errors during image output
package imaging
