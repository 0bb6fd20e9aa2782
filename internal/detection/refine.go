package detection

// RefineBlocks splits elongated blocks by punching gaps along their empty
// inner rows and columns, then re-segments the grid. The cycle runs
// DissectNum times and wg is modified in place.
func RefineBlocks(wg *WorkingGrid, blocks []TextBlock, p Params) []TextBlock {
	return refineBlocks(wg, blocks, p, nil)
}

func refineBlocks(wg *WorkingGrid, blocks []TextBlock, p Params, obs func(pass int, blocks []TextBlock)) []TextBlock {
	for pass := 0; pass < p.DissectNum; pass++ {
		for _, b := range blocks {
			if b.Ratio <= p.DissectRatioThres {
				markGapsWithinBlock(wg, b, p)
			}
		}
		blocks = SegmentBlocks(wg, p)
		if obs != nil {
			obs(pass, blocks)
		}
	}
	return blocks
}

// markGapsWithinBlock recomputes ink presence inside b only. Rows without ink
// become gaps across the block's width when the block is taller than
// WordBreakMinLen; columns likewise when it is wider.
func markGapsWithinBlock(wg *WorkingGrid, b TextBlock, p Params) {
	rowInk := make([]bool, b.YLen)
	colInk := make([]bool, b.XLen)
	for y := b.YMin; y <= b.YMax; y++ {
		for x := b.XMin; x <= b.XMax; x++ {
			if wg.isDark(y, x, p.BlackColor) {
				rowInk[y-b.YMin] = true
				colInk[x-b.XMin] = true
			}
		}
	}

	if b.YLen > p.WordBreakMinLen {
		for y := b.YMin; y <= b.YMax; y++ {
			if rowInk[y-b.YMin] {
				continue
			}
			for x := b.XMin; x <= b.XMax; x++ {
				wg.setGap(y, x)
			}
		}
	}
	if b.XLen > p.WordBreakMinLen {
		for x := b.XMin; x <= b.XMax; x++ {
			if colInk[x-b.XMin] {
				continue
			}
			for y := b.YMin; y <= b.YMax; y++ {
				wg.setGap(y, x)
			}
		}
	}
}
