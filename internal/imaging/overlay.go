package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/bubbleseg/internal/detection"
)

// DefaultBoxColor is the outline colour used when none is configured.
const DefaultBoxColor = "#00FF00"

// OverlayOptions controls how segmentation results are drawn on a page.
type OverlayOptions struct {
	// BoxColor is a hex colour ("#RRGGBB" or "#RGB") for box outlines.
	BoxColor string

	// Margin pads every box outline, clamped to the page.
	Margin int

	// Labels draws each bubble's index at its boundary's top-left corner.
	Labels bool
}

// OverlayResult summarises what was drawn.
type OverlayResult struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	Bubbles int `json:"bubbles"`
	Boxes   int `json:"boxes"`
}

// RenderOverlay copies page and outlines every box of every bubble on it.
func RenderOverlay(page image.Image, bubbles []detection.BubbleText, opts OverlayOptions) (*image.RGBA, *OverlayResult, error) {
	boxColor, err := parseBoxColor(opts.BoxColor)
	if err != nil {
		return nil, nil, err
	}

	canvas := clone.AsRGBA(page)
	bounds := canvas.Bounds()
	res := &OverlayResult{Width: bounds.Dx(), Height: bounds.Dy()}

	for _, b := range bubbles {
		if !b.Found {
			continue
		}
		res.Bubbles++
		for _, box := range b.Boxes {
			drawOutline(canvas, box, opts.Margin, boxColor)
			res.Boxes++
		}
		if opts.Labels {
			drawLabel(canvas, b.Boundary.XMin, b.Boundary.YMin, strconv.Itoa(b.Index), boxColor)
		}
	}
	return canvas, res, nil
}

// SaveOverlay writes img as a PNG file.
func SaveOverlay(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// parseBoxColor converts a hex string into an opaque RGBA colour.
func parseBoxColor(hex string) (color.RGBA, error) {
	if hex == "" {
		hex = DefaultBoxColor
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid box color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// drawOutline draws the one-pixel border of box expanded by margin.
// Coordinates are relative to the canvas origin.
func drawOutline(img *image.RGBA, box detection.Boundary, margin int, c color.RGBA) {
	b := img.Bounds()
	x0 := max(b.Min.X+box.XMin-margin, b.Min.X)
	x1 := min(b.Min.X+box.XMax+margin, b.Max.X-1)
	y0 := max(b.Min.Y+box.YMin-margin, b.Min.Y)
	y1 := min(b.Min.Y+box.YMax+margin, b.Max.Y-1)
	if x0 > x1 || y0 > y1 {
		return
	}

	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, c)
		img.SetRGBA(x1, y, c)
	}
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, c)
		img.SetRGBA(x, y1, c)
	}
}

// drawLabel writes text on a darkened patch of the box colour.
func drawLabel(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	fg, _ := colorful.MakeColor(c)
	bg := fg.BlendLab(colorful.Color{}, 0.75).Clamped()

	w := len(text) * face.Advance
	h := face.Height
	b := img.Bounds()
	for dy := 0; dy < h; dy++ {
		for dx := -1; dx <= w; dx++ {
			px, py := b.Min.X+x+dx, b.Min.Y+y+dy
			if image.Pt(px, py).In(b) {
				img.Set(px, py, bg)
			}
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(b.Min.X+x, b.Min.Y+y+face.Ascent),
	}
	d.DrawString(text)
}
