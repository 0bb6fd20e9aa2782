package detection

// noBlock marks an absent neighbour link.
const noBlock = -1

// TextBlock is a candidate rectangular ink region, in the local coordinates
// of the bubble it came from. Blocks live in a slice; neighbour links are
// indexes into that slice.
type TextBlock struct {
	YMin int `json:"ymin"`
	YMax int `json:"ymax"`
	XMin int `json:"xmin"`
	XMax int `json:"xmax"`

	YLen  int     `json:"ylen"`
	XLen  int     `json:"xlen"`
	Ratio float64 `json:"ratio"`

	// DarkPixels counts live cells at or below BlackColor.
	DarkPixels int `json:"dark_pixels"`

	// Right and Down index the adjacent block with an identical vertical
	// (Right) or horizontal (Down) span, or -1.
	Right int `json:"-"`
	Down  int `json:"-"`

	// Consumed is set once the block has been merged into another.
	Consumed bool `json:"-"`
}

func newTextBlock(ymin, ymax, xmin, xmax, dark int) TextBlock {
	ylen, xlen := ymax-ymin+1, xmax-xmin+1
	return TextBlock{
		YMin: ymin, YMax: ymax, XMin: xmin, XMax: xmax,
		YLen: ylen, XLen: xlen,
		Ratio:      boxRatio(ylen, xlen),
		DarkPixels: dark,
		Right:      noBlock,
		Down:       noBlock,
	}
}

// Bounds returns the block rectangle.
func (b TextBlock) Bounds() Boundary {
	return Boundary{YMin: b.YMin, YMax: b.YMax, XMin: b.XMin, XMax: b.XMax}
}

// HasInk reports whether the block covers any dark pixel.
func (b TextBlock) HasInk() bool { return b.DarkPixels > 0 }

// Area returns ylen × xlen.
func (b TextBlock) Area() int { return b.YLen * b.XLen }

// boxRatio is the shorter side over the longer side.
func boxRatio(ylen, xlen int) float64 {
	return float64(min(ylen, xlen)) / float64(max(ylen, xlen))
}

// MarkGaps copies g into a working grid where every cell whose row or column
// contains no ink is a gap.
func MarkGaps(g *PixelGrid, p Params) *WorkingGrid {
	rowInk := make([]bool, g.height)
	colInk := make([]bool, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.At(y, x) <= p.BlackColor {
				rowInk[y] = true
				colInk[x] = true
			}
		}
	}

	wg := newWorkingGrid(g)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if !rowInk[y] || !colInk[x] {
				wg.setGap(y, x)
			}
		}
	}
	return wg
}

// SegmentBlocks raster-scans wg and grows one rectangle from every live cell
// not yet claimed by an earlier rectangle.
func SegmentBlocks(wg *WorkingGrid, p Params) []TextBlock {
	claimed := make([]bool, wg.width*wg.height)
	var blocks []TextBlock
	for y := 0; y < wg.height; y++ {
		for x := 0; x < wg.width; x++ {
			if wg.IsGap(y, x) || claimed[y*wg.width+x] {
				continue
			}
			blocks = append(blocks, growBlock(wg, y, x, claimed, p.BlackColor))
		}
	}
	return blocks
}

// growBlock extends downward from (y0, x0) while the seed column stays live
// in the current or next row, and within each row extends rightward while
// the current or next cell is live. Single gap lines are bridged.
func growBlock(wg *WorkingGrid, y0, x0 int, claimed []bool, black uint8) TextBlock {
	live := func(y, x int) bool {
		return y < wg.height && x < wg.width && !wg.IsGap(y, x)
	}

	dark := 0
	xEnd := x0 + 1
	y := y0
	for y < wg.height && (live(y, x0) || live(y+1, x0)) {
		x := x0
		for x < wg.width && (live(y, x) || live(y, x+1)) {
			claimed[y*wg.width+x] = true
			if wg.isDark(y, x, black) {
				dark++
			}
			x++
		}
		xEnd = max(xEnd, x)
		y++
	}
	return newTextBlock(y0, y-1, x0, xEnd-1, dark)
}
