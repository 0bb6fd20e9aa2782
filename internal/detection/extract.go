package detection

// Bubble is a cleaned, tightened copy of one speech bubble's interior.
// Background and outline pixels are forced to white and ink is binarized.
type Bubble struct {
	// Grid holds the cropped bubble; coordinates of blocks derived from it
	// are local to this grid.
	Grid *PixelGrid

	// OffsetY and OffsetX locate Grid's origin relative to the candidate
	// boundary the bubble was extracted from.
	OffsetY int
	OffsetX int

	// DarkPixels counts the ink pixels (<= BlackColor) in the bubble.
	DarkPixels int
}

// ExtractBubble separates the interior of candidate c from its surroundings,
// binarizes it and crops it to the ink extent plus BubbleMargin. Returns nil
// when the bubble holds fewer than BlackPixThres ink pixels.
func ExtractBubble(g *PixelGrid, c *Candidate, p Params) *Bubble {
	return extractBubble(g, c, p, nil)
}

func extractBubble(g *PixelGrid, c *Candidate, p Params, obs func(name string, grid *PixelGrid)) *Bubble {
	b := c.Bounds
	border := markBackground(g, c, b, p.WhiteColor)

	clean := g.crop(b)
	for i := range clean.pix {
		if border[i] {
			clean.pix[i] = 255
		}
	}
	if obs != nil {
		obs("text_block", g.crop(b))
		borders := g.crop(b)
		for i := range borders.pix {
			if border[i] {
				borders.pix[i] = 0
			}
		}
		obs("borders", borders)
	}

	binarizeInPlace(clean.pix, p.WhiteColor, p.BlackColor)
	if obs != nil {
		obs("clean_block", clean)
	}
	return tighten(clean, p)
}

// markBackground flood-fills from every non-white edge cell of b that is not
// part of the bubble interior, through cells darker than white. Dark art
// isolated from the edges by page white is left alone. The result is a
// row-major mask over b.
func markBackground(g *PixelGrid, c *Candidate, b Boundary, white uint8) []bool {
	w := b.Width()
	border := make([]bool, w*b.Height())
	visit := func(y, x int) {
		if c.white.has(y, x) || g.At(y, x) >= white || border[(y-b.YMin)*w+(x-b.XMin)] {
			return
		}
		floodFillBackground(g, c, border, b, white, y, x)
	}

	for x := b.XMin; x <= b.XMax; x++ {
		visit(b.YMin, x)
		visit(b.YMax, x)
	}
	for y := b.YMin; y <= b.YMax; y++ {
		visit(y, b.XMin)
		visit(y, b.XMax)
	}
	return border
}

// floodFillBackground marks every non-white cell reachable from (y, x) inside
// b without crossing the interior white region.
func floodFillBackground(g *PixelGrid, c *Candidate, border []bool, b Boundary, white uint8, y, x int) {
	w := b.Width()
	border[(y-b.YMin)*w+(x-b.XMin)] = true
	stack := []point{{y, x}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, d := range neighbours4 {
			ny, nx := cur.y+d.y, cur.x+d.x
			if !b.Contains(ny, nx) || c.white.has(ny, nx) || g.At(ny, nx) >= white {
				continue
			}
			idx := (ny-b.YMin)*w + (nx - b.XMin)
			if border[idx] {
				continue
			}
			border[idx] = true
			stack = append(stack, point{ny, nx})
		}
	}
}

// Binarize returns a copy of g with intensities >= WhiteColor raised to 255
// and intensities <= BlackColor lowered to 0. Values in between are kept.
func Binarize(g *PixelGrid, p Params) *PixelGrid {
	out := &PixelGrid{width: g.width, height: g.height, pix: make([]uint8, len(g.pix))}
	copy(out.pix, g.pix)
	binarizeInPlace(out.pix, p.WhiteColor, p.BlackColor)
	return out
}

func binarizeInPlace(pix []uint8, white, black uint8) {
	for i, v := range pix {
		switch {
		case v >= white:
			pix[i] = 255
		case v <= black:
			pix[i] = 0
		}
	}
}

// tighten crops clean to its ink extent expanded by BubbleMargin.
func tighten(clean *PixelGrid, p Params) *Bubble {
	ext := Boundary{YMin: clean.height, YMax: -1, XMin: clean.width, XMax: -1}
	dark := 0
	for y := 0; y < clean.height; y++ {
		for x := 0; x < clean.width; x++ {
			if clean.At(y, x) <= p.BlackColor {
				dark++
				ext.grow(y, x)
			}
		}
	}
	if dark == 0 || dark < p.BlackPixThres {
		return nil
	}

	ext.YMin = max(ext.YMin-p.BubbleMargin, 0)
	ext.XMin = max(ext.XMin-p.BubbleMargin, 0)
	ext.YMax = min(ext.YMax+p.BubbleMargin, clean.height-1)
	ext.XMax = min(ext.XMax+p.BubbleMargin, clean.width-1)

	return &Bubble{
		Grid:       clean.crop(ext),
		OffsetY:    ext.YMin,
		OffsetX:    ext.XMin,
		DarkPixels: dark,
	}
}
