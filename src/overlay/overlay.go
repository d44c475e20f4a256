// Package overlay exposes the interactive region selection as a synchronous
// call owned by the event loop.
package overlay

import (
	"context"

	"portable-screenshot/src/screenshot"
)

// Selector runs the drag-to-rectangle selection UI. The call blocks and
// MUST be invoked only from the single event-loop goroutine. Returns
// (region, cancelled, error); when cancelled is true the region is
// undefined and err is nil. The overlay window is gone by the time Select
// returns, so callers can grab the screen without capturing overlay
// artifacts.
type Selector interface {
	Select(ctx context.Context) (screenshot.Region, bool, error)
}

// NewSelector returns the platform implementation.
func NewSelector() Selector {
	return newPlatformSelector()
}
