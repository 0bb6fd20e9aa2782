package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/bubbleseg/internal/detection"
)

// ImageCache provides thread-safe caching of decoded pages and their
// grayscale grids to avoid redundant disk reads.
//
// Pages are keyed by the exact path string passed to Load. Once a page is
// loaded, subsequent calls return the cached copy without disk I/O.
//
// # Memory Management
//
// Cached pages remain in memory until explicitly removed via Evict() or
// Clear(). A grid holds one byte per pixel in addition to the decoded image.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	grid, err := cache.LoadGrid("/path/to/page.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	grids  map[string]*detection.PixelGrid
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
		grids:  make(map[string]*detection.PixelGrid),
	}
}

// Load retrieves a page from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. JPEG pages are
// rotated according to their EXIF orientation tag.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadGrid returns the page at path as a grayscale intensity grid.
func (c *ImageCache) LoadGrid(path string) (*detection.PixelGrid, error) {
	c.mu.RLock()
	if g, ok := c.grids[path]; ok {
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	g := detection.GridFromGray(ToGray(img))

	c.mu.Lock()
	c.grids[path] = g
	c.mu.Unlock()

	return g, nil
}

// Clear removes all pages from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.grids = make(map[string]*detection.PixelGrid)
	c.mu.Unlock()
}

// Evict removes a specific page from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	delete(c.grids, path)
	c.mu.Unlock()
}

// ToGray converts any image to 8-bit luminance using ITU-R BT.601 weights.
// The result's origin is (0, 0).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}

	// Grayscale yields an NRGBA with R == G == B; keep one channel.
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}
	return gray
}

// ImageInfo contains metadata about a loaded page.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the detected format based on the file extension:
	// "png", "jpeg", "gif", "bmp", "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// Grayscale is true when the decoded image is already single-channel.
	Grayscale bool `json:"grayscale"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads a page into the cache and returns its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".bmp":
		format = "bmp"
	case ".tif", ".tiff":
		format = "tiff"
	case ".webp":
		format = "webp"
	}

	grayscale := false
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		grayscale = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		Grayscale:     grayscale,
		FileSizeBytes: stat.Size(),
	}, nil
}
