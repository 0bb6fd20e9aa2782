// Package detection locates speech bubbles on a grayscale comic page and
// segments the glyphs inside each bubble into tight bounding boxes.
//
// # Pipeline
//
// Data flows strictly downstream. The page grid is never written to; each
// bubble is cleaned and segmented in its own private copy:
//
//  1. Locate: flood-fill a white region around a seed (LocateNear) or for
//     every white region on the page (ScanCandidates). Regions with at most
//     MinWhitePix pixels are dropped.
//  2. Extract: flood-fill inward from the region's bounding box edges to
//     find background and outline pixels, force them white, binarize and
//     crop to the ink extent plus BubbleMargin (ExtractBubble).
//  3. Segment: mark every row and column without ink as a gap and sweep
//     the remaining cells into rectangles (MarkGaps, SegmentBlocks).
//  4. Refine: punch gaps along empty rows and columns inside elongated
//     blocks and re-segment, DissectNum times (RefineBlocks).
//  5. Merge: link blocks to their right and down neighbours and fuse
//     fragments whose combined aspect ratio is squarer (MergeBlocks).
//
// Segmenter wires the stages together and translates results to page
// coordinates exactly once.
//
// # Coordinate System
//
// Grids are addressed as (y, x): y is the row (0 = top), x the column
// (0 = left). Boundary and TextBlock rectangles are inclusive on all four
// sides. TextBlock coordinates are local to the Bubble they came from;
// BubbleText boxes are page coordinates.
//
// # Traversal
//
// Every flood fill and search uses an explicit stack or queue, so memory
// grows with the region size and never with call depth.
//
// # Concurrency
//
// All functions are synchronous. A Segmenter carries only configuration and
// may be shared between goroutines working on different pages, provided its
// StageObserver is safe for concurrent use.
package detection
