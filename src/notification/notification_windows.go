//go:build windows

package notification

import (
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"
)

var (
	user32                 = syscall.NewLazyDLL("user32.dll")
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	procMessageBox         = user32.NewProc("MessageBoxW")
	procCreateWindowEx     = user32.NewProc("CreateWindowExW")
	procDefWindowProc      = user32.NewProc("DefWindowProcW")
	procDestroyWindow      = user32.NewProc("DestroyWindow")
	procShowWindow         = user32.NewProc("ShowWindow")
	procSetWindowPos       = user32.NewProc("SetWindowPos")
	procGetSystemMetrics   = user32.NewProc("GetSystemMetrics")
	procSetTimer           = user32.NewProc("SetTimer")
	procKillTimer          = user32.NewProc("KillTimer")
	procRegisterClassEx    = user32.NewProc("RegisterClassExW")
	procUpdateWindow       = user32.NewProc("UpdateWindow")
	procGetMessage         = user32.NewProc("GetMessageW")
	procPeekMessage        = user32.NewProc("PeekMessageW")
	procDispatchMessage    = user32.NewProc("DispatchMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procBeginPaint         = user32.NewProc("BeginPaint")
	procEndPaint           = user32.NewProc("EndPaint")
	procDrawText           = user32.NewProc("DrawTextW")
	procLoadCursor         = user32.NewProc("LoadCursorW")
	procPostThreadMessage  = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadId = kernel32.NewProc("GetCurrentThreadId")
)

const (
	wsPopup         = 0x80000000
	wsVisible       = 0x10000000
	wsExNoActivate  = 0x08000000
	wsExToolWindow  = 0x00000080
	wsExClientEdge  = 0x00000200
	wmDestroy       = 0x0002
	wmClose         = 0x0010
	wmPaint         = 0x000F
	wmTimer         = 0x0113
	wmLButtonDown   = 0x0201
	wmRButtonDown   = 0x0204
	wmNCLButtonDown = 0x00A1
	wmNCRButtonDown = 0x00A4
	wmUser          = 0x0400
	wmExitLoop      = wmUser + 1
	swShow          = 5
	swpNoActivate   = 0x0010
	swpNoMove       = 0x0002
	swpNoSize       = 0x0001
	hwndTopmost     = ^uintptr(0)
	smCYScreen      = 1
	dtWordBreak     = 0x00000010
	colorWindow     = 5
	idcArrow        = 32512
	pmRemove        = 1

	closeTimerID = 1
	// Toasts auto-close after 2.5 seconds, matching the feel of a tray
	// balloon without the Shell notification plumbing.
	closeTimerMs = 2500

	toastWidth  = 380
	toastHeight = 90
	toastMargin = 20

	toastClassName = "ScreenshotNotifyClass"
)

type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     syscall.Handle
	HIcon         syscall.Handle
	HCursor       syscall.Handle
	HbrBackground syscall.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       syscall.Handle
}

type point struct {
	X, Y int32
}

type msgStruct struct {
	Hwnd    syscall.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type paintStruct struct {
	Hdc         syscall.Handle
	FErase      int32
	RcPaint     rect
	FRestore    int32
	FIncUpdate  int32
	RgbReserved [32]byte
}

// All toasts render on one locked OS thread; requests are queued so two
// capture outcomes in quick succession show one after the other.
var (
	toastQueue      chan string
	toastThreadOnce sync.Once
	classOnce       sync.Once
	classErr        error

	toastText string
)

// ShowBlockingError displays a modal error dialog. Used for startup
// failures before the tray exists.
func ShowBlockingError(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	msgPtr, _ := syscall.UTF16PtrFromString(message)
	const mbOK = 0x00000000
	const mbIconError = 0x00000010
	const mbSystemModal = 0x00001000
	procMessageBox.Call(0, uintptr(unsafe.Pointer(msgPtr)), uintptr(unsafe.Pointer(titlePtr)), mbOK|mbIconError|mbSystemModal)
}

func showToast(message string) error {
	startToastThread()

	select {
	case toastQueue <- message:
		return nil
	default:
		// Queue full: the user is mashing captures, losing a toast is fine.
		log.Printf("notification: toast queue full, dropping message")
		return nil
	}
}

func startToastThread() {
	toastThreadOnce.Do(func() {
		toastQueue = make(chan string, 8)
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("notification: toast thread panic: %v", r)
				}
			}()

			if err := registerToastClass(); err != nil {
				log.Printf("notification: failed to register toast class: %v", err)
				return
			}
			for message := range toastQueue {
				if err := runToast(message); err != nil {
					log.Printf("notification: toast failed: %v", err)
				}
			}
		}()
	})
}

func registerToastClass() error {
	classOnce.Do(func() {
		className, _ := syscall.UTF16PtrFromString(toastClassName)
		cursor, _, _ := procLoadCursor.Call(0, idcArrow)
		wc := wndClassEx{
			CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
			LpfnWndProc:   syscall.NewCallback(toastWndProc),
			HCursor:       syscall.Handle(cursor),
			HbrBackground: syscall.Handle(colorWindow + 1),
			LpszClassName: className,
		}
		if atom, _, _ := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
			classErr = syscall.GetLastError()
		}
	})
	return classErr
}

func toastWndProc(hwnd syscall.Handle, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmPaint:
		var ps paintStruct
		hdc, _, _ := procBeginPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
		textRect := rect{Left: 12, Top: 10, Right: toastWidth - 12, Bottom: toastHeight - 10}
		textPtr, _ := syscall.UTF16PtrFromString(toastText)
		procDrawText.Call(hdc, uintptr(unsafe.Pointer(textPtr)), uintptr(^uint32(0)), uintptr(unsafe.Pointer(&textRect)), dtWordBreak)
		procEndPaint.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&ps)))
		return 0

	case wmTimer:
		if wParam == closeTimerID {
			procKillTimer.Call(uintptr(hwnd), closeTimerID)
			procDestroyWindow.Call(uintptr(hwnd))
		}
		return 0

	case wmLButtonDown, wmRButtonDown, wmNCLButtonDown, wmNCRButtonDown:
		// Click dismisses early.
		procKillTimer.Call(uintptr(hwnd), closeTimerID)
		procDestroyWindow.Call(uintptr(hwnd))
		return 0

	case wmClose:
		procKillTimer.Call(uintptr(hwnd), closeTimerID)
		procDestroyWindow.Call(uintptr(hwnd))
		return 0

	case wmDestroy:
		// Exit the per-toast message loop via a thread message, not
		// PostQuitMessage, so a stray WM_QUIT can't leak into the next
		// toast.
		threadID, _, _ := procGetCurrentThreadId.Call()
		procPostThreadMessage.Call(threadID, wmExitLoop, 0, 0)
		return 0
	}

	ret, _, _ := procDefWindowProc.Call(uintptr(hwnd), uintptr(msg), wParam, lParam)
	return ret
}

// runToast creates one toast window in the bottom-left corner and pumps
// messages until it closes.
func runToast(message string) error {
	toastText = message

	className, _ := syscall.UTF16PtrFromString(toastClassName)
	windowName, _ := syscall.UTF16PtrFromString("Portable Screenshot")

	screenHeight, _, _ := procGetSystemMetrics.Call(smCYScreen)
	x := int32(toastMargin)
	y := int32(screenHeight) - toastHeight - toastMargin

	hwnd, _, _ := procCreateWindowEx.Call(
		wsExNoActivate|wsExToolWindow|wsExClientEdge,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowName)),
		wsPopup|wsVisible,
		uintptr(x), uintptr(y), toastWidth, toastHeight,
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		log.Printf("notification: CreateWindowEx failed")
		return nil
	}

	// Topmost without stealing focus from whatever the user captured.
	procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoActivate|swpNoMove|swpNoSize)
	procShowWindow.Call(hwnd, swShow)
	procUpdateWindow.Call(hwnd)
	procSetTimer.Call(hwnd, closeTimerID, closeTimerMs, 0)

	var m msgStruct
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || m.Message == wmExitLoop {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}

	// Drain leftovers so they cannot bleed into the next toast's loop.
	for {
		ret, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if ret == 0 {
			break
		}
	}
	return nil
}
