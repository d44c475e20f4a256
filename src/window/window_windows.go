//go:build windows

package window

import (
	"image"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

// ForegroundRect returns the foreground window's bounding rectangle in
// virtual-screen coordinates.
func ForegroundRect() (image.Rectangle, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return image.Rectangle{}, ErrNoForegroundWindow
	}

	var r rect
	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return image.Rectangle{}, ErrNoForegroundWindow
	}

	bounds := image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
	if bounds.Empty() {
		return image.Rectangle{}, ErrNoForegroundWindow
	}
	return bounds, nil
}
