// Package capture coordinates hotkey-triggered captures: it turns a capture
// mode into an in-memory raster image, guarding against overlapping
// attempts. Persistence and clipboard delivery happen one layer up so
// partial sink failures stay visible to the caller.
package capture

import (
	"context"
	"errors"
	"image"
	"time"

	"portable-screenshot/src/overlay"
	"portable-screenshot/src/screenshot"
	"portable-screenshot/src/window"
)

// Mode selects what gets captured.
type Mode int

const (
	ModeRegion Mode = iota
	ModeFullscreen
	ModeActiveWindow
)

func (m Mode) String() string {
	switch m {
	case ModeRegion:
		return "region"
	case ModeFullscreen:
		return "fullscreen"
	case ModeActiveWindow:
		return "window"
	default:
		return "unknown"
	}
}

// ParseMode maps a CLI/menu mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "region":
		return ModeRegion, nil
	case "fullscreen", "full", "screen":
		return ModeFullscreen, nil
	case "window":
		return ModeActiveWindow, nil
	default:
		return ModeFullscreen, errors.New("unknown capture mode: " + s)
	}
}

var (
	// ErrCancelled means the user dismissed the selection overlay. Not a
	// failure; callers log it at most at info level.
	ErrCancelled = errors.New("selection cancelled")
	// ErrInvalidSelection means the committed rectangle was degenerate
	// (width or height below one pixel).
	ErrInvalidSelection = errors.New("invalid selection")
	// ErrNoActiveWindow means the foreground window could not be resolved.
	ErrNoActiveWindow = errors.New("no active window")
	// ErrBusy means a capture was already in flight; the trigger is ignored.
	ErrBusy = errors.New("capture already in progress")
)

// Result is the raster image a capture produced, together with the mode and
// the capture timestamp. Owned by the coordinator until handed to the sink.
type Result struct {
	Image *image.RGBA
	Mode  Mode
	Taken time.Time
}

// Coordinator dispatches capture modes to the overlay, the window resolver,
// and the screen grabber. Collaborators are injectable for tests; zero
// values fall back to the real implementations.
//
// All methods must be called from the single event-processing goroutine.
// The inFlight flag exists for re-entrancy (the selection overlay runs a
// nested message loop on the same thread), not for cross-goroutine use.
type Coordinator struct {
	SelectRegion  func(ctx context.Context) (screenshot.Region, bool, error)
	ResolveWindow func() (image.Rectangle, error)
	GrabRegion    func(r screenshot.Region) (*image.RGBA, error)
	GrabScreen    func() (*image.RGBA, error)
	GrabBounds    func(b image.Rectangle) (*image.RGBA, error)
	Now           func() time.Time

	inFlight bool
}

// New returns a Coordinator wired to the real overlay and screen grabber.
func New() *Coordinator {
	selector := overlay.NewSelector()
	return &Coordinator{
		SelectRegion:  selector.Select,
		ResolveWindow: window.ForegroundRect,
		GrabRegion:    screenshot.CaptureRegion,
		GrabScreen:    screenshot.Capture,
		GrabBounds:    screenshot.CaptureBounds,
		Now:           time.Now,
	}
}

// Busy reports whether a capture is currently in flight.
func (c *Coordinator) Busy() bool { return c.inFlight }

// Capture produces a Result for the given mode. Exactly one capture runs at
// a time; a trigger while one is in flight returns ErrBusy with no side
// effects.
func (c *Coordinator) Capture(ctx context.Context, mode Mode) (*Result, error) {
	if c.inFlight {
		return nil, ErrBusy
	}
	c.inFlight = true
	defer func() { c.inFlight = false }()

	taken := c.now()

	var img *image.RGBA
	var err error
	switch mode {
	case ModeRegion:
		img, err = c.captureRegion(ctx)
	case ModeFullscreen:
		img, err = c.GrabScreen()
	case ModeActiveWindow:
		img, err = c.captureActiveWindow()
	default:
		return nil, errors.New("unknown capture mode")
	}
	if err != nil {
		return nil, err
	}

	return &Result{Image: img, Mode: mode, Taken: taken}, nil
}

func (c *Coordinator) captureRegion(ctx context.Context) (*image.RGBA, error) {
	region, cancelled, err := c.SelectRegion(ctx)
	if err != nil {
		return nil, err
	}
	if cancelled {
		return nil, ErrCancelled
	}
	if region.Degenerate() {
		return nil, ErrInvalidSelection
	}
	// The overlay window is gone by now; grab from the live screen so no
	// dimming or crosshair artifacts end up in the capture.
	return c.GrabRegion(region)
}

func (c *Coordinator) captureActiveWindow() (*image.RGBA, error) {
	bounds, err := c.ResolveWindow()
	if err != nil {
		return nil, ErrNoActiveWindow
	}
	return c.GrabBounds(bounds)
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
