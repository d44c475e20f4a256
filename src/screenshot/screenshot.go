package screenshot

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Region is an axis-aligned rectangle in virtual-screen coordinates
// (spanning all connected monitors).
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Bounds converts the region to an image.Rectangle.
func (r Region) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Degenerate reports whether the region is too small to capture.
func (r Region) Degenerate() bool {
	return r.Width < 1 || r.Height < 1
}

// FromBounds builds a Region from an image.Rectangle.
func FromBounds(b image.Rectangle) Region {
	return Region{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}
}

// VirtualBounds returns the bounding rectangle spanning all active displays.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// Capture grabs the entire virtual screen across all active displays into
// one pixel buffer.
func Capture() (*image.RGBA, error) {
	union, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	return screenshot.CaptureRect(union)
}

// CaptureRegion grabs a specific region of the virtual screen. The returned
// image's dimensions equal the region's width and height exactly.
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Degenerate() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	img, err := screenshot.CaptureRect(region.Bounds())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// CaptureBounds grabs an arbitrary rectangle, clamped to the virtual screen.
// Used by active-window capture where the window may hang off-screen.
func CaptureBounds(b image.Rectangle) (*image.RGBA, error) {
	virtual, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	clamped := b.Intersect(virtual)
	if clamped.Empty() {
		return nil, fmt.Errorf("rectangle %v lies outside the virtual screen", b)
	}
	return CaptureRegion(FromBounds(clamped))
}
