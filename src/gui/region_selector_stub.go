//go:build !windows

package gui

import (
	"fmt"

	"portable-screenshot/src/screenshot"
)

// SelectRegion is Windows-only; other platforms get an explicit error
// instead of a silent no-op.
func SelectRegion() (screenshot.Region, bool, error) {
	return screenshot.Region{}, false, fmt.Errorf("region selection overlay is only available on Windows")
}
