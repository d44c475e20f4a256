//go:build windows

package gui

import (
	"fmt"
	"image"
	"log"
	"os"
	"syscall"
	"time"
	"unsafe"

	"portable-screenshot/src/screenshot"

	"github.com/lxn/win"
)

// Overlay state. The selection runs a nested Win32 message loop on the
// calling thread, so a single active overlay is guaranteed by the
// coordinator's in-flight flag.
var (
	overlayHwnd        win.HWND
	overlayDragging    bool
	startX, startY     int32
	endX, endY         int32
	virtualX, virtualY int32
	crossCursor        win.HCURSOR
	selectionOutcome   chan screenshot.Region

	dimBackdrop    backdrop
	brightBackdrop backdrop
)

const (
	keyPollTimerID    = 1
	keyPollIntervalMs = 25

	borderColor = win.COLORREF(0xFFAE00) // BGR for RGB(0,174,255)
	labelBack   = win.COLORREF(0x202020)
	labelText   = win.COLORREF(0xFFFFFF)
)

var (
	user32DLL                    = syscall.NewLazyDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetAsyncKeyState         = user32DLL.NewProc("GetAsyncKeyState")
	gdi32DLL                     = syscall.NewLazyDLL("gdi32.dll")
	procCreatePen                = gdi32DLL.NewProc("CreatePen")
	procRectangle                = gdi32DLL.NewProc("Rectangle")
)

// SelectRegion shows the full-virtual-screen selection overlay and blocks
// until the user commits a rectangle or cancels with Escape. The overlay
// window is destroyed before this returns.
func SelectRegion() (screenshot.Region, bool, error) {
	vx := win.GetSystemMetrics(win.SM_XVIRTUALSCREEN)
	vy := win.GetSystemMetrics(win.SM_YVIRTUALSCREEN)
	vw := win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN)
	vh := win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN)
	log.Printf("overlay: virtual screen x=%d y=%d w=%d h=%d", vx, vy, vw, vh)

	virtualX = vx
	virtualY = vy

	// Pre-capture the screen for the overlay backdrop. The committed
	// rectangle is re-grabbed from the live screen after teardown.
	screenImg, err := screenshot.Capture()
	if err != nil {
		return screenshot.Region{}, false, fmt.Errorf("failed to capture overlay backdrop: %w", err)
	}

	crossCursor = win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS))

	selectionOutcome = make(chan screenshot.Region, 1)
	overlayDragging = false

	classNameStr := fmt.Sprintf("ScreenshotOverlay_%d", time.Now().UnixNano())
	className := syscall.StringToUTF16Ptr(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       crossCursor,
		HbrBackground: 0,
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return screenshot.Region{}, false, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	overlayHwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		syscall.StringToUTF16Ptr("Select region - drag to capture, ESC cancels"),
		win.WS_POPUP|win.WS_VISIBLE,
		vx, vy, vw, vh,
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if overlayHwnd == 0 {
		return screenshot.Region{}, false, fmt.Errorf("failed to create overlay window")
	}

	prepareBackdrops(screenImg)
	defer releaseBackdrops()

	win.ShowWindow(overlayHwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(overlayHwnd)
	win.BringWindowToTop(overlayHwnd)
	win.SetFocus(overlayHwnd)
	win.UpdateWindow(overlayHwnd)

	// Async key polling backs up WM_KEYDOWN: Escape must work even when
	// focus lands elsewhere. One discarded read clears any latch left by
	// an Escape typed before the overlay opened.
	procGetAsyncKeyState.Call(uintptr(win.VK_ESCAPE))
	if win.SetTimer(overlayHwnd, keyPollTimerID, keyPollIntervalMs, 0) == 0 {
		log.Printf("overlay: failed to start keyboard poll timer")
	}

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 { // WM_QUIT posted by Escape
			win.DestroyWindow(overlayHwnd)
			log.Printf("overlay: selection cancelled")
			return screenshot.Region{}, true, nil
		}
		if ret == -1 {
			win.DestroyWindow(overlayHwnd)
			return screenshot.Region{}, false, fmt.Errorf("overlay message loop error")
		}

		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)

		select {
		case region := <-selectionOutcome:
			// Tear the overlay down before control returns so the pixel
			// grab cannot include the dimmed backdrop or the border.
			win.DestroyWindow(overlayHwnd)
			log.Printf("overlay: selection committed: %+v", region)
			return region, false, nil
		default:
		}
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case win.WM_LBUTTONDOWN:
		x := int32(win.LOWORD(uint32(lParam)))
		y := int32(win.HIWORD(uint32(lParam)))
		win.SetCapture(hwnd)
		overlayDragging = true
		startX, startY = x, y
		endX, endY = x, y
		win.InvalidateRect(hwnd, nil, false)
		win.UpdateWindow(hwnd)
		return 0

	case win.WM_MOUSEMOVE:
		if overlayDragging {
			endX = int32(win.LOWORD(uint32(lParam)))
			endY = int32(win.HIWORD(uint32(lParam)))
			win.InvalidateRect(hwnd, nil, false)
			win.UpdateWindow(hwnd)
		}
		return 0

	case win.WM_LBUTTONUP:
		if overlayDragging {
			win.ReleaseCapture()
			overlayDragging = false
			endX = int32(win.LOWORD(uint32(lParam)))
			endY = int32(win.HIWORD(uint32(lParam)))

			left := minInt32(startX, endX)
			top := minInt32(startY, endY)
			width := absInt32(endX - startX)
			height := absInt32(endY - startY)

			// Degenerate rectangles are committed as-is; the coordinator
			// rejects them so the caller sees InvalidSelection, not a
			// zero-sized capture.
			selectionOutcome <- screenshot.Region{
				X:      int(left) + int(virtualX),
				Y:      int(top) + int(virtualY),
				Width:  int(width),
				Height: int(height),
			}
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		paintOverlay(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_SETCURSOR:
		if crossCursor != 0 {
			win.SetCursor(crossCursor)
		}
		return 1

	case win.WM_TIMER:
		if wParam == keyPollTimerID {
			if escapePressed() {
				cancelSelection()
			}
		}
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE {
			cancelSelection()
		}
		return 0

	case win.WM_NCHITTEST:
		// Every point is client area so the window sees all mouse events.
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		win.KillTimer(hwnd, keyPollTimerID)
		// No PostQuitMessage here: the success path returns from
		// SelectRegion directly, and a stray WM_QUIT would cancel the
		// next invocation immediately.
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func cancelSelection() {
	if overlayDragging {
		win.ReleaseCapture()
		overlayDragging = false
	}
	win.PostQuitMessage(0)
}

func escapePressed() bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(win.VK_ESCAPE))
	return escapeStateDown(uint16(state))
}

func paintOverlay(hdc win.HDC) {
	if dimBackdrop.memDC == 0 {
		return
	}
	w := dimBackdrop.width
	h := dimBackdrop.height

	win.BitBlt(hdc, 0, 0, w, h, dimBackdrop.memDC, 0, 0, win.SRCCOPY)

	if overlayDragging {
		left := minInt32(startX, endX)
		top := minInt32(startY, endY)
		right := maxInt32(startX, endX)
		bottom := maxInt32(startY, endY)

		// Reveal the selected area at full brightness.
		if right > left && bottom > top {
			win.BitBlt(hdc, left, top, right-left, bottom-top, brightBackdrop.memDC, left, top, win.SRCCOPY)
		}
		drawBorder(hdc, left, top, right, bottom)
		drawSizeLabel(hdc, right-left, bottom-top)
	}

	drawHint(hdc)
}

func drawBorder(hdc win.HDC, left, top, right, bottom int32) {
	pen, _, _ := procCreatePen.Call(0, 2, uintptr(borderColor))
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	procRectangle.Call(uintptr(hdc), uintptr(left), uintptr(top), uintptr(right), uintptr(bottom))

	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(pen))
}

// drawSizeLabel paints the live " W x H " pixel readout near the cursor.
func drawSizeLabel(hdc win.HDC, width, height int32) {
	label := fmt.Sprintf(" %d x %d ", width, height)

	x := endX + 15
	y := endY + 15
	if x+120 > dimBackdrop.width {
		x = endX - 120
	}
	if y+24 > dimBackdrop.height {
		y = endY - 24
	}

	win.SetBkMode(hdc, win.OPAQUE)
	win.SetBkColor(hdc, labelBack)
	win.SetTextColor(hdc, labelText)
	win.TextOut(hdc, x, y, syscall.StringToUTF16Ptr(label), int32(len(label)))
}

func drawHint(hdc win.HDC) {
	hint := "Drag to select a region   ESC cancels"
	win.SetBkMode(hdc, win.TRANSPARENT)
	win.SetTextColor(hdc, labelText)
	win.TextOut(hdc, 16, 16, syscall.StringToUTF16Ptr(hint), int32(len(hint)))
}

// backdrop is a screen-sized DIB selected into its own memory DC, built
// once per selection instead of per WM_PAINT.
type backdrop struct {
	memDC     win.HDC
	bitmap    win.HBITMAP
	oldBitmap win.HGDIOBJ
	width     int32
	height    int32
}

func prepareBackdrops(screenImg *image.RGBA) {
	hdc := win.GetDC(overlayHwnd)
	defer win.ReleaseDC(overlayHwnd, hdc)

	brightBackdrop = makeBackdrop(hdc, screenImg, false)
	dimBackdrop = makeBackdrop(hdc, screenImg, true)
}

func releaseBackdrops() {
	for _, b := range []*backdrop{&dimBackdrop, &brightBackdrop} {
		if b.memDC != 0 {
			win.SelectObject(b.memDC, b.oldBitmap)
			win.DeleteObject(win.HGDIOBJ(b.bitmap))
			win.DeleteDC(b.memDC)
			*b = backdrop{}
		}
	}
}

func makeBackdrop(hdc win.HDC, img *image.RGBA, dim bool) backdrop {
	bounds := img.Bounds()
	width := int32(bounds.Dx())
	height := int32(bounds.Dy())

	memDC := win.CreateCompatibleDC(hdc)
	if memDC == 0 {
		return backdrop{}
	}

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       width,
			BiHeight:      -height, // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}

	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		win.DeleteDC(memDC)
		return backdrop{}
	}
	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))

	// DIB rows are DWORD-aligned; at 32bpp that equals width*4.
	stride := int(width) * 4
	dst := unsafe.Slice((*byte)(pBits), stride*int(height))
	for y := 0; y < int(height); y++ {
		srcRow := img.Pix[y*img.Stride : y*img.Stride+stride]
		dstRow := dst[y*stride : (y+1)*stride]
		for x := 0; x < stride; x += 4 {
			r, g, b := srcRow[x], srcRow[x+1], srcRow[x+2]
			if dim {
				// ~60% brightness for the dimmed layer.
				r = uint8(uint16(r) * 153 / 255)
				g = uint8(uint16(g) * 153 / 255)
				b = uint8(uint16(b) * 153 / 255)
			}
			dstRow[x] = b
			dstRow[x+1] = g
			dstRow[x+2] = r
			dstRow[x+3] = 0xFF
		}
	}

	return backdrop{memDC: memDC, bitmap: hBitmap, oldBitmap: oldBitmap, width: width, height: height}
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func absInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
