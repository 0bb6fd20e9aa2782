package detection

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// StageObserver receives intermediate pipeline state, typically to write
// debug images. Implementations must not retain or modify grid.
type StageObserver interface {
	ObserveStage(stage string, grid *WorkingGrid, blocks []TextBlock)
}

// BubbleText is the segmentation result for one bubble, in page coordinates.
type BubbleText struct {
	// Found is false when no usable bubble was located.
	Found bool `json:"found"`

	// Index numbers bubbles in discovery order, starting at 1.
	Index int `json:"index,omitempty"`

	// Boundary is the flood-filled interior's bounding box.
	Boundary Boundary `json:"boundary"`

	// Crop is the tightened bubble region that blocks were derived from.
	Crop Boundary `json:"crop"`

	// Boxes are the retained glyph bounding boxes.
	Boxes []Boundary `json:"boxes"`
}

// ScanReport lists every bubble accepted during a full-page scan.
type ScanReport struct {
	// Width and Height are the page dimensions.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Count is the number of accepted bubbles.
	Count int `json:"count"`

	// Bubbles holds the accepted bubbles in scan order.
	Bubbles []BubbleText `json:"bubbles"`
}

// Boxes flattens every bubble's boxes.
func (r *ScanReport) Boxes() []Boundary {
	var out []Boundary
	for _, b := range r.Bubbles {
		out = append(out, b.Boxes...)
	}
	return out
}

// Segmenter runs the full locate → extract → segment → refine → merge
// pipeline. It holds no per-page state and may be reused.
type Segmenter struct {
	params   Params
	log      logrus.FieldLogger
	observer StageObserver
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithLogger sets the diagnostics logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Segmenter) { s.log = l }
}

// WithObserver installs a stage observer.
func WithObserver(o StageObserver) Option {
	return func(s *Segmenter) { s.observer = o }
}

// NewSegmenter validates p and returns a ready Segmenter. Without
// WithLogger, diagnostics are discarded.
func NewSegmenter(p Params, opts ...Option) (*Segmenter, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detection params: %w", err)
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	s := &Segmenter{params: p, log: quiet}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Params returns the thresholds in use.
func (s *Segmenter) Params() Params { return s.params }

// FindText locates the bubble around pixel (x, y) and segments its glyphs.
// A page without a usable bubble there yields Found == false, not an error.
func (s *Segmenter) FindText(g *PixelGrid, x, y int) (*BubbleText, error) {
	log := s.log.WithFields(logrus.Fields{"x": x, "y": y})
	log.Debug("running BFS around seed with flood fill")

	cand, err := LocateNear(g, y, x, s.params)
	if err != nil {
		return nil, err
	}
	if cand == nil {
		log.Info("no bubble found with given coordinates")
		return &BubbleText{}, nil
	}

	res, ok := s.processCandidate(g, cand, 1)
	if !ok {
		log.WithField("boundary", cand.Bounds.String()).Info("no bubble found with given coordinates")
		return &BubbleText{}, nil
	}
	log.WithFields(logrus.Fields{
		"boundary": res.Boundary.String(),
		"boxes":    len(res.Boxes),
	}).Debug("bubble segmented")
	return res, nil
}

// ScanPage finds every bubble on the page and segments each one.
func (s *Segmenter) ScanPage(g *PixelGrid) *ScanReport {
	s.log.Info("searching for bubbles")

	report := &ScanReport{Width: g.Width(), Height: g.Height(), Bubbles: []BubbleText{}}
	for _, cand := range ScanCandidates(g, s.params) {
		res, ok := s.processCandidate(g, cand, report.Count+1)
		if !ok {
			continue
		}
		report.Count++
		report.Bubbles = append(report.Bubbles, *res)
		s.log.WithFields(logrus.Fields{
			"bubble":   report.Count,
			"boundary": res.Boundary.String(),
			"boxes":    len(res.Boxes),
		}).Info("bubble found")
	}
	return report
}

// processCandidate extracts and segments one candidate and translates the
// resulting blocks to page coordinates.
func (s *Segmenter) processCandidate(g *PixelGrid, cand *Candidate, index int) (*BubbleText, bool) {
	log := s.log.WithField("bubble", index)
	log.Debug("running 2nd flood fill from boundary edges")

	var obs func(string, *PixelGrid)
	if s.observer != nil {
		obs = func(name string, grid *PixelGrid) {
			s.observer.ObserveStage(fmt.Sprintf("%s%d", name, index), newWorkingGrid(grid), nil)
		}
	}
	bubble := extractBubble(g, cand, s.params, obs)
	if bubble == nil {
		log.Debug("bubble rejected: not enough dark pixels")
		return nil, false
	}
	log.WithField("dark_pixels", bubble.DarkPixels).Debug("cropped extra white space")

	blocks := s.segmentBubble(bubble, index)

	dy := cand.Bounds.YMin + bubble.OffsetY
	dx := cand.Bounds.XMin + bubble.OffsetX
	res := &BubbleText{
		Found:    true,
		Index:    index,
		Boundary: cand.Bounds,
		Crop:     bubble.Grid.Bounds().Translate(dy, dx),
		Boxes:    make([]Boundary, 0, len(blocks)),
	}
	for _, b := range blocks {
		res.Boxes = append(res.Boxes, b.Bounds().Translate(dy, dx))
	}
	return res, true
}

// SegmentBubble decomposes an extracted bubble into glyph blocks in the
// bubble's local coordinates.
func (s *Segmenter) SegmentBubble(b *Bubble) []TextBlock {
	return s.segmentBubble(b, 0)
}

func (s *Segmenter) segmentBubble(b *Bubble, index int) []TextBlock {
	s.log.WithField("bubble", index).Debug("marking gaps")

	wg := MarkGaps(b.Grid, s.params)
	s.observe(fmt.Sprintf("gaps_marked%d", index), wg, nil)

	blocks := SegmentBlocks(wg, s.params)
	s.observe(fmt.Sprintf("boxes_preliminary%d", index), wg, blocks)

	var passObs func(int, []TextBlock)
	if s.observer != nil {
		passObs = func(pass int, blocks []TextBlock) {
			s.observe(fmt.Sprintf("boxes_preliminary%d-%d", index, pass), wg, blocks)
		}
	}
	blocks = refineBlocks(wg, blocks, s.params, passObs)
	s.observe(fmt.Sprintf("bubbles_pre_merge%d", index), wg, blocks)

	final := MergeBlocks(blocks, wg.Width(), wg.Height(), s.params)
	s.observe(fmt.Sprintf("final_merged_blocks%d", index), newWorkingGrid(b.Grid), final)
	return final
}

func (s *Segmenter) observe(stage string, wg *WorkingGrid, blocks []TextBlock) {
	if s.observer != nil {
		s.observer.ObserveStage(stage, wg, blocks)
	}
}
