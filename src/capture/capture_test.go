package capture

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"portable-screenshot/src/screenshot"
	"portable-screenshot/src/window"
)

func rgbaOf(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func testCoordinator() *Coordinator {
	return &Coordinator{
		SelectRegion: func(ctx context.Context) (screenshot.Region, bool, error) {
			return screenshot.Region{X: 0, Y: 0, Width: 8, Height: 8}, false, nil
		},
		ResolveWindow: func() (image.Rectangle, error) {
			return image.Rect(0, 0, 64, 48), nil
		},
		GrabRegion: func(r screenshot.Region) (*image.RGBA, error) {
			return rgbaOf(r.Width, r.Height), nil
		},
		GrabScreen: func() (*image.RGBA, error) {
			return rgbaOf(1920, 1080), nil
		},
		GrabBounds: func(b image.Rectangle) (*image.RGBA, error) {
			return rgbaOf(b.Dx(), b.Dy()), nil
		},
		Now: func() time.Time {
			return time.Date(2026, 2, 24, 14, 30, 52, 123456000, time.UTC)
		},
	}
}

func TestRegionCaptureDimensionsMatchSelection(t *testing.T) {
	c := testCoordinator()
	c.SelectRegion = func(ctx context.Context) (screenshot.Region, bool, error) {
		return screenshot.Region{X: 100, Y: 200, Width: 300, Height: 150}, false, nil
	}

	res, err := c.Capture(context.Background(), ModeRegion)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got := res.Image.Bounds(); got.Dx() != 300 || got.Dy() != 150 {
		t.Errorf("Expected 300x150 pixel buffer, got %dx%d", got.Dx(), got.Dy())
	}
	if res.Mode != ModeRegion {
		t.Errorf("Expected mode %v, got %v", ModeRegion, res.Mode)
	}
	if res.Taken.IsZero() {
		t.Error("Expected capture timestamp to be set")
	}
}

func TestDegenerateSelectionIsRejected(t *testing.T) {
	for _, r := range []screenshot.Region{
		{Width: 0, Height: 10},
		{Width: 10, Height: 0},
		{Width: 0, Height: 0},
	} {
		c := testCoordinator()
		grabbed := false
		c.SelectRegion = func(ctx context.Context) (screenshot.Region, bool, error) {
			return r, false, nil
		}
		c.GrabRegion = func(r screenshot.Region) (*image.RGBA, error) {
			grabbed = true
			return rgbaOf(1, 1), nil
		}

		res, err := c.Capture(context.Background(), ModeRegion)
		if !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("Region %+v: expected ErrInvalidSelection, got %v", r, err)
		}
		if res != nil {
			t.Errorf("Region %+v: expected nil result, got %+v", r, res)
		}
		if grabbed {
			t.Errorf("Region %+v: grab must not run for a degenerate selection", r)
		}
	}
}

func TestCancelledSelectionHasNoSideEffects(t *testing.T) {
	c := testCoordinator()
	grabbed := false
	c.SelectRegion = func(ctx context.Context) (screenshot.Region, bool, error) {
		return screenshot.Region{}, true, nil
	}
	c.GrabRegion = func(r screenshot.Region) (*image.RGBA, error) {
		grabbed = true
		return rgbaOf(1, 1), nil
	}

	_, err := c.Capture(context.Background(), ModeRegion)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Expected ErrCancelled, got %v", err)
	}
	if grabbed {
		t.Error("Grab must not run after cancellation")
	}
	if c.Busy() {
		t.Error("Coordinator must not stay busy after cancellation")
	}
}

func TestFullscreenCapture(t *testing.T) {
	c := testCoordinator()
	res, err := c.Capture(context.Background(), ModeFullscreen)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got := res.Image.Bounds(); got.Dx() != 1920 || got.Dy() != 1080 {
		t.Errorf("Expected 1920x1080 buffer, got %dx%d", got.Dx(), got.Dy())
	}
}

func TestActiveWindowCapture(t *testing.T) {
	c := testCoordinator()
	res, err := c.Capture(context.Background(), ModeActiveWindow)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got := res.Image.Bounds(); got.Dx() != 64 || got.Dy() != 48 {
		t.Errorf("Expected 64x48 buffer, got %dx%d", got.Dx(), got.Dy())
	}
}

func TestActiveWindowResolutionFailure(t *testing.T) {
	c := testCoordinator()
	c.ResolveWindow = func() (image.Rectangle, error) {
		return image.Rectangle{}, window.ErrNoForegroundWindow
	}

	_, err := c.Capture(context.Background(), ModeActiveWindow)
	if !errors.Is(err, ErrNoActiveWindow) {
		t.Fatalf("Expected ErrNoActiveWindow, got %v", err)
	}
}

func TestReentrantTriggerIsIgnored(t *testing.T) {
	// The overlay runs a nested message loop on the event thread, so a
	// second trigger re-enters Capture while the first is still selecting.
	c := testCoordinator()
	var nested error
	nestedRan := false
	c.SelectRegion = func(ctx context.Context) (screenshot.Region, bool, error) {
		res, err := c.Capture(ctx, ModeFullscreen)
		nested = err
		nestedRan = res != nil
		return screenshot.Region{Width: 4, Height: 4}, false, nil
	}

	res, err := c.Capture(context.Background(), ModeRegion)
	if err != nil {
		t.Fatalf("Outer capture failed: %v", err)
	}
	if res == nil {
		t.Fatal("Outer capture produced no result")
	}
	if !errors.Is(nested, ErrBusy) {
		t.Errorf("Expected nested trigger to get ErrBusy, got %v", nested)
	}
	if nestedRan {
		t.Error("Nested trigger must not produce a second result")
	}
	if c.Busy() {
		t.Error("Coordinator must clear the in-flight flag when done")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "region", want: ModeRegion},
		{in: "fullscreen", want: ModeFullscreen},
		{in: "full", want: ModeFullscreen},
		{in: "window", want: ModeActiveWindow},
		{in: "banana", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}
