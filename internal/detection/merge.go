package detection

// MergeBlocks links neighbouring blocks, fuses fragments of one glyph and
// drops noise. blocks is the arena produced by the segmenter for a grid of
// width × height cells; its neighbour links and Consumed flags are updated
// in place. The returned blocks are copies in the same local coordinates.
func MergeBlocks(blocks []TextBlock, width, height int, p Params) []TextBlock {
	linkNeighbours(blocks, width, height)

	var out []TextBlock
	for i := range blocks {
		b := blocks[i]
		if b.Consumed || !b.HasInk() {
			continue
		}
		if b.Ratio < p.RatioThres {
			b = mergeWithNeighbours(blocks, i, p)
		}
		if validBlock(b, p) {
			out = append(out, b)
		}
	}
	return out
}

// linkNeighbours tags each cell with the index of the block covering it,
// then follows the row through each block's vertical midpoint to the right
// and the column through its horizontal midpoint downward. The first foreign
// block met becomes the neighbour when its span along the search axis is
// identical.
func linkNeighbours(blocks []TextBlock, width, height int) {
	owner := make([]int, width*height)
	for i := range owner {
		owner[i] = noBlock
	}
	for i, b := range blocks {
		for y := b.YMin; y <= b.YMax; y++ {
			for x := b.XMin; x <= b.XMax; x++ {
				owner[y*width+x] = i
			}
		}
	}

	for i := range blocks {
		b := &blocks[i]
		b.Right, b.Down = noBlock, noBlock

		ymid := (b.YMin + b.YMax) / 2
		for x := b.XMax + 1; x < width; x++ {
			o := owner[ymid*width+x]
			if o == noBlock || o == i {
				continue
			}
			if blocks[o].YMin == b.YMin && blocks[o].YMax == b.YMax {
				b.Right = o
			}
			break
		}

		xmid := (b.XMin + b.XMax) / 2
		for y := b.YMax + 1; y < height; y++ {
			o := owner[y*width+xmid]
			if o == noBlock || o == i {
				continue
			}
			if blocks[o].XMin == b.XMin && blocks[o].XMax == b.XMax {
				b.Down = o
			}
			break
		}
	}
}

// mergeWithNeighbours grows block i along its short side: tall blocks absorb
// their Right chain, others their Down chain. A hop is taken only when the
// combined ratio beats both the accumulated ratio and the neighbour's own.
func mergeWithNeighbours(blocks []TextBlock, i int, p Params) TextBlock {
	b := blocks[i]
	horizontal := b.YLen > b.XLen

	next := b.Down
	if horizontal {
		next = b.Right
	}
	for hop := 0; hop < p.MaxBoxNum && next != noBlock; hop++ {
		n := &blocks[next]
		if n.Consumed || !n.HasInk() {
			break
		}

		var ratio float64
		if horizontal {
			ratio = boxRatio(b.YLen, b.XLen+n.XMax-b.XMax)
		} else {
			ratio = boxRatio(b.YLen+n.YMax-b.YMax, b.XLen)
		}
		if ratio <= b.Ratio || ratio <= n.Ratio {
			break
		}

		b.Ratio = ratio
		b.DarkPixels += n.DarkPixels
		n.Consumed = true
		if horizontal {
			b.XLen += n.XMax - b.XMax
			b.XMax = n.XMax
			next = n.Right
		} else {
			b.YLen += n.YMax - b.YMax
			b.YMax = n.YMax
			next = n.Down
		}
	}
	return b
}

// validBlock filters out noise: too little ink, too small or too large.
func validBlock(b TextBlock, p Params) bool {
	area := b.Area()
	return b.DarkPixels >= p.MinBlkPix && area > p.MinBoxSize && area < p.MaxBoxSize
}
