//go:build windows

package overlay

import (
	"context"

	"portable-screenshot/src/gui"
	"portable-screenshot/src/screenshot"
)

type windowsSelector struct{}

func newPlatformSelector() Selector { return &windowsSelector{} }

func (w *windowsSelector) Select(ctx context.Context) (screenshot.Region, bool, error) {
	region, cancelled, err := gui.SelectRegion()
	if err != nil {
		return screenshot.Region{}, false, err
	}
	if cancelled {
		return screenshot.Region{}, true, nil
	}

	select {
	case <-ctx.Done():
		return screenshot.Region{}, false, ctx.Err()
	default:
		return region, false, nil
	}
}
