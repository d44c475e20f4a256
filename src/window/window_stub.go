//go:build !windows

package window

import "image"

// ForegroundRect is unavailable off Windows; callers fall back per mode.
func ForegroundRect() (image.Rectangle, error) {
	return image.Rectangle{}, ErrNoForegroundWindow
}
