package detection

import (
	"errors"
	"fmt"
)

// Default thresholds. Intensities are 8-bit gray levels, sizes are pixels.
const (
	DefaultWhiteColor        = 245
	DefaultBlackColor        = 40
	DefaultMinWhitePix       = 625
	DefaultBubbleMargin      = 5
	DefaultCharMargin        = 2
	DefaultRatioThres        = 0.85
	DefaultMaxBoxNum         = 5
	DefaultBlackPixThres     = 20
	DefaultDissectNum        = 2
	DefaultDissectRatioThres = 0.6
	DefaultWordBreakMinLen   = 30
	DefaultMinBlkPix         = 3
	DefaultMinBoxSize        = 8
	DefaultMaxBoxSize        = 40000
)

// Params holds every tunable threshold of the pipeline.
type Params struct {
	// WhiteColor is the lowest intensity treated as bubble interior.
	WhiteColor uint8 `yaml:"white_color" json:"white_color"`

	// BlackColor is the highest intensity treated as ink.
	BlackColor uint8 `yaml:"black_color" json:"black_color"`

	// MinWhitePix is the white-region size a bubble interior must exceed.
	MinWhitePix int `yaml:"min_white_pix" json:"min_white_pix"`

	// BubbleMargin pads the tightened crop on every side.
	BubbleMargin int `yaml:"bubble_margin" json:"bubble_margin"`

	// CharMargin pads block outlines when drawing the overlay.
	CharMargin int `yaml:"char_margin" json:"char_margin"`

	// RatioThres is the aspect ratio below which a block tries to merge.
	RatioThres float64 `yaml:"ratio_thres" json:"ratio_thres"`

	// MaxBoxNum caps how many neighbours one block may absorb.
	MaxBoxNum int `yaml:"max_box_num" json:"max_box_num"`

	// BlackPixThres is the minimum ink count for a bubble to be segmented.
	BlackPixThres int `yaml:"black_pix_thres" json:"black_pix_thres"`

	// DissectNum is the number of refine-then-resegment passes.
	DissectNum int `yaml:"dissect_num" json:"dissect_num"`

	// DissectRatioThres selects the elongated blocks that get refined.
	DissectRatioThres float64 `yaml:"dissect_ratio_thres" json:"dissect_ratio_thres"`

	// WordBreakMinLen is the side length a block must exceed before
	// empty rows or columns inside it become gaps.
	WordBreakMinLen int `yaml:"word_break_min_len" json:"word_break_min_len"`

	// MinBlkPix is the minimum ink count of an output block.
	MinBlkPix int `yaml:"min_blk_pix" json:"min_blk_pix"`

	// MinBoxSize and MaxBoxSize bound an output block's area (exclusive).
	MinBoxSize int `yaml:"min_box_size" json:"min_box_size"`
	MaxBoxSize int `yaml:"max_box_size" json:"max_box_size"`
}

// DefaultParams returns the recognised thresholds.
func DefaultParams() Params {
	return Params{
		WhiteColor:        DefaultWhiteColor,
		BlackColor:        DefaultBlackColor,
		MinWhitePix:       DefaultMinWhitePix,
		BubbleMargin:      DefaultBubbleMargin,
		CharMargin:        DefaultCharMargin,
		RatioThres:        DefaultRatioThres,
		MaxBoxNum:         DefaultMaxBoxNum,
		BlackPixThres:     DefaultBlackPixThres,
		DissectNum:        DefaultDissectNum,
		DissectRatioThres: DefaultDissectRatioThres,
		WordBreakMinLen:   DefaultWordBreakMinLen,
		MinBlkPix:         DefaultMinBlkPix,
		MinBoxSize:        DefaultMinBoxSize,
		MaxBoxSize:        DefaultMaxBoxSize,
	}
}

// Validate checks that the thresholds are mutually consistent.
func (p Params) Validate() error {
	var errs []error
	if p.BlackColor >= p.WhiteColor {
		errs = append(errs, fmt.Errorf("black_color (%d) must be below white_color (%d)", p.BlackColor, p.WhiteColor))
	}
	if p.MinWhitePix < 0 {
		errs = append(errs, fmt.Errorf("min_white_pix must not be negative, got %d", p.MinWhitePix))
	}
	if p.BubbleMargin < 0 || p.CharMargin < 0 {
		errs = append(errs, fmt.Errorf("margins must not be negative (bubble %d, char %d)", p.BubbleMargin, p.CharMargin))
	}
	if p.RatioThres <= 0 || p.RatioThres > 1 {
		errs = append(errs, fmt.Errorf("ratio_thres must be in (0,1], got %g", p.RatioThres))
	}
	if p.DissectRatioThres <= 0 || p.DissectRatioThres > 1 {
		errs = append(errs, fmt.Errorf("dissect_ratio_thres must be in (0,1], got %g", p.DissectRatioThres))
	}
	if p.MaxBoxNum < 0 || p.DissectNum < 0 {
		errs = append(errs, fmt.Errorf("max_box_num and dissect_num must not be negative (%d, %d)", p.MaxBoxNum, p.DissectNum))
	}
	if p.MinBoxSize >= p.MaxBoxSize {
		errs = append(errs, fmt.Errorf("min_box_size (%d) must be below max_box_size (%d)", p.MinBoxSize, p.MaxBoxSize))
	}
	return errors.Join(errs...)
}
