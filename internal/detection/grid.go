package detection

import (
	"fmt"
	"image"
)

// PixelGrid is an immutable height × width grid of 8-bit intensities stored
// row-major. It is the source of truth for a page and is never written to
// after construction.
type PixelGrid struct {
	width  int
	height int
	pix    []uint8
}

// NewPixelGrid wraps a row-major intensity slice. The slice is copied so the
// caller may reuse it.
func NewPixelGrid(width, height int, pix []uint8) (*PixelGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("pixel data length %d does not match %dx%d", len(pix), width, height)
	}
	cp := make([]uint8, len(pix))
	copy(cp, pix)
	return &PixelGrid{width: width, height: height, pix: cp}, nil
}

// GridFromGray converts a grayscale image into a PixelGrid. The image origin
// becomes grid coordinate (0, 0).
func GridFromGray(img *image.Gray) *PixelGrid {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w:(y+1)*w], img.Pix[off:off+w])
	}
	return &PixelGrid{width: w, height: h, pix: pix}
}

// Width returns the number of columns.
func (g *PixelGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *PixelGrid) Height() int { return g.height }

// At returns the intensity at row y, column x.
func (g *PixelGrid) At(y, x int) uint8 { return g.pix[y*g.width+x] }

// Bounds returns the boundary covering the whole grid.
func (g *PixelGrid) Bounds() Boundary {
	return Boundary{YMin: 0, YMax: g.height - 1, XMin: 0, XMax: g.width - 1}
}

// crop copies the inclusive region b out of the grid.
func (g *PixelGrid) crop(b Boundary) *PixelGrid {
	w, h := b.Width(), b.Height()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		src := (b.YMin+y)*g.width + b.XMin
		copy(pix[y*w:(y+1)*w], g.pix[src:src+w])
	}
	return &PixelGrid{width: w, height: h, pix: pix}
}

// Boundary is an inclusive rectangle in grid coordinates.
type Boundary struct {
	YMin int `json:"ymin"`
	YMax int `json:"ymax"`
	XMin int `json:"xmin"`
	XMax int `json:"xmax"`
}

// pointBoundary is the degenerate boundary covering a single cell.
func pointBoundary(y, x int) Boundary {
	return Boundary{YMin: y, YMax: y, XMin: x, XMax: x}
}

// Width returns the number of columns covered.
func (b Boundary) Width() int { return b.XMax - b.XMin + 1 }

// Height returns the number of rows covered.
func (b Boundary) Height() int { return b.YMax - b.YMin + 1 }

// Contains reports whether (y, x) lies inside the boundary.
func (b Boundary) Contains(y, x int) bool {
	return y >= b.YMin && y <= b.YMax && x >= b.XMin && x <= b.XMax
}

// Translate shifts the boundary by dy rows and dx columns.
func (b Boundary) Translate(dy, dx int) Boundary {
	return Boundary{YMin: b.YMin + dy, YMax: b.YMax + dy, XMin: b.XMin + dx, XMax: b.XMax + dx}
}

func (b Boundary) String() string {
	return fmt.Sprintf("[y %d..%d, x %d..%d]", b.YMin, b.YMax, b.XMin, b.XMax)
}

// grow extends the boundary to include (y, x).
func (b *Boundary) grow(y, x int) {
	if y < b.YMin {
		b.YMin = y
	}
	if y > b.YMax {
		b.YMax = y
	}
	if x < b.XMin {
		b.XMin = x
	}
	if x > b.XMax {
		b.XMax = x
	}
}

// Cell is one WorkingGrid entry: either an intensity or a gap.
type Cell struct {
	Value uint8
	Gap   bool
}

// WorkingGrid is a private, mutable copy of a bubble used during
// segmentation. Cells excluded from segmentation are tagged as gaps instead
// of being tracked in a separate mask.
type WorkingGrid struct {
	width  int
	height int
	cells  []Cell
}

func newWorkingGrid(g *PixelGrid) *WorkingGrid {
	cells := make([]Cell, len(g.pix))
	for i, v := range g.pix {
		cells[i] = Cell{Value: v}
	}
	return &WorkingGrid{width: g.width, height: g.height, cells: cells}
}

// Width returns the number of columns.
func (w *WorkingGrid) Width() int { return w.width }

// Height returns the number of rows.
func (w *WorkingGrid) Height() int { return w.height }

// At returns the cell at row y, column x.
func (w *WorkingGrid) At(y, x int) Cell { return w.cells[y*w.width+x] }

// IsGap reports whether (y, x) has been excluded from segmentation.
func (w *WorkingGrid) IsGap(y, x int) bool { return w.cells[y*w.width+x].Gap }

func (w *WorkingGrid) setGap(y, x int) { w.cells[y*w.width+x].Gap = true }

// isDark reports whether (y, x) is a live foreground cell.
func (w *WorkingGrid) isDark(y, x int, black uint8) bool {
	c := w.cells[y*w.width+x]
	return !c.Gap && c.Value <= black
}

// pixelSet is a set of grid cells keyed by row-major offset.
type pixelSet struct {
	width int
	cells map[int]struct{}
}

func newPixelSet(width int) *pixelSet {
	return &pixelSet{width: width, cells: make(map[int]struct{})}
}

func (s *pixelSet) add(y, x int) { s.cells[y*s.width+x] = struct{}{} }

func (s *pixelSet) has(y, x int) bool {
	_, ok := s.cells[y*s.width+x]
	return ok
}

func (s *pixelSet) len() int { return len(s.cells) }

// point is a grid coordinate used on traversal stacks and queues.
type point struct {
	y, x int
}

// neighbours4 are the 4-connected offsets.
var neighbours4 = [4]point{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
