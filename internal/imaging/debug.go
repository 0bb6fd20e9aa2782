package imaging

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/bubbleseg/internal/detection"
)

var (
	gapColor   = color.RGBA{0, 255, 0, 255}
	blockColor = color.RGBA{255, 0, 0, 255}
)

// DebugWriter dumps every pipeline stage as a PNG file. It implements
// detection.StageObserver.
type DebugWriter struct {
	dir    string
	scale  int
	margin int
	log    logrus.FieldLogger
}

// NewDebugWriter creates dir if needed. Images are upscaled by scale
// (nearest neighbour) when scale > 1, and block outlines are padded by
// margin.
func NewDebugWriter(dir string, scale, margin int, log logrus.FieldLogger) (*DebugWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug dir: %w", err)
	}
	if scale < 1 {
		scale = 1
	}
	return &DebugWriter{dir: dir, scale: scale, margin: margin, log: log}, nil
}

// ObserveStage renders grid and blocks and saves them as <dir>/<stage>.png.
// Failures are logged and otherwise ignored.
func (d *DebugWriter) ObserveStage(stage string, grid *detection.WorkingGrid, blocks []detection.TextBlock) {
	var img image.Image = RenderStage(grid, blocks, d.margin)
	if d.scale > 1 {
		b := img.Bounds()
		img = imaging.Resize(img, b.Dx()*d.scale, b.Dy()*d.scale, imaging.NearestNeighbor)
	}

	path := filepath.Join(d.dir, stage+".png")
	if err := imaging.Save(img, path); err != nil {
		d.log.WithError(err).WithField("stage", stage).Warn("failed to write debug image")
		return
	}
	d.log.WithField("path", path).Debug("wrote debug image")
}

// RenderStage draws a working grid with gap cells in green and the outline
// of every inked block in red.
func RenderStage(grid *detection.WorkingGrid, blocks []detection.TextBlock, margin int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width(), grid.Height()))
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			c := grid.At(y, x)
			if c.Gap {
				img.SetRGBA(x, y, gapColor)
				continue
			}
			img.SetRGBA(x, y, color.RGBA{c.Value, c.Value, c.Value, 255})
		}
	}
	for _, b := range blocks {
		if b.HasInk() {
			drawOutline(img, b.Bounds(), margin, blockColor)
		}
	}
	return img
}
