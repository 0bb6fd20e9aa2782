package detection

import (
	"errors"
	"fmt"
)

// ErrSeedOutOfBounds is returned when a seed coordinate lies outside the page.
var ErrSeedOutOfBounds = errors.New("seed coordinate outside page")

// Candidate is a flood-filled white region that may be a bubble interior.
type Candidate struct {
	// Bounds is the bounding box of the filled region (plus the seed in
	// seeded mode).
	Bounds Boundary

	white *pixelSet
}

// Size returns the number of white pixels in the region.
func (c *Candidate) Size() int { return c.white.len() }

// Contains reports whether (y, x) belongs to the region.
func (c *Candidate) Contains(y, x int) bool { return c.white.has(y, x) }

// LocateNear searches outward from the seed (y, x) for a bubble interior.
//
// A breadth-first search visits every pixel around the seed regardless of
// intensity. Each white pixel it reaches that is not yet part of the region
// is flood-filled, and the fills accumulate until the region holds more than
// MinWhitePix pixels. Returns nil when the whole page is exhausted first.
func LocateNear(g *PixelGrid, y, x int, p Params) (*Candidate, error) {
	if !g.Bounds().Contains(y, x) {
		return nil, fmt.Errorf("%w: (x=%d, y=%d) not in %dx%d", ErrSeedOutOfBounds, x, y, g.Width(), g.Height())
	}

	w := g.Width()
	seen := make([]bool, w*g.Height())
	queue := []point{{y, x}}
	seen[y*w+x] = true

	cand := &Candidate{Bounds: pointBoundary(y, x), white: newPixelSet(w)}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if g.At(cur.y, cur.x) >= p.WhiteColor && !cand.white.has(cur.y, cur.x) {
			floodFillWhite(g, cand.white, cur.y, cur.x, &cand.Bounds, p.WhiteColor)
			if cand.white.len() > p.MinWhitePix {
				return cand, nil
			}
		}
		for _, d := range neighbours4 {
			ny, nx := cur.y+d.y, cur.x+d.x
			if ny < 0 || ny >= g.Height() || nx < 0 || nx >= w || seen[ny*w+nx] {
				continue
			}
			seen[ny*w+nx] = true
			queue = append(queue, point{ny, nx})
		}
	}
	return nil, nil
}

// ScanCandidates raster-scans the page and returns every white region larger
// than MinWhitePix, in discovery order. Each white pixel is claimed by at
// most one flood fill.
func ScanCandidates(g *PixelGrid, p Params) []*Candidate {
	w, h := g.Width(), g.Height()
	examined := make([]bool, w*h)

	var out []*Candidate
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if examined[y*w+x] || g.At(y, x) < p.WhiteColor {
				continue
			}
			cand := &Candidate{Bounds: pointBoundary(y, x), white: newPixelSet(w)}
			floodFillWhite(g, cand.white, y, x, &cand.Bounds, p.WhiteColor)
			for k := range cand.white.cells {
				examined[k] = true
			}
			if cand.white.len() > p.MinWhitePix {
				out = append(out, cand)
			}
		}
	}
	return out
}

// floodFillWhite collects every white pixel 4-connected to (y, x) into
// white, growing b to cover them. Uses an explicit stack.
func floodFillWhite(g *PixelGrid, white *pixelSet, y, x int, b *Boundary, whiteColor uint8) {
	stack := []point{{y, x}}
	white.add(y, x)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		b.grow(cur.y, cur.x)

		for _, d := range neighbours4 {
			ny, nx := cur.y+d.y, cur.x+d.x
			if ny < 0 || ny >= g.Height() || nx < 0 || nx >= g.Width() {
				continue
			}
			if g.At(ny, nx) < whiteColor || white.has(ny, nx) {
				continue
			}
			white.add(ny, nx)
			stack = append(stack, point{ny, nx})
		}
	}
}
