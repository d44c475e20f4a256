// Package tray runs the system tray icon and menu. Menu clicks are turned
// into callbacks; the tray never touches capture or config state directly.
package tray

import (
	"fmt"
	"log"

	"github.com/getlantern/systray"

	"portable-screenshot/src/capture"
	"portable-screenshot/src/config"
)

// Options wires menu actions to the rest of the app. Callbacks run on the
// tray's click-handling goroutine.
type Options struct {
	Tooltip string
	Config  *config.Config

	OnCapture      func(mode capture.Mode)
	OnSetFormat    func(format string)
	OnSetDirectory func(dir string)
	OnQuit         func()
}

// Run blocks until Quit is called. Must run on the main goroutine on
// platforms where the tray needs the main thread.
func Run(opts Options) {
	systray.Run(func() { onReady(opts) }, func() {
		if opts.OnQuit != nil {
			opts.OnQuit()
		}
	})
}

// Quit tears the tray down and unblocks Run.
func Quit() {
	systray.Quit()
}

func onReady(opts Options) {
	systray.SetIcon(Icon())
	systray.SetTitle("Portable Screenshot")
	if opts.Tooltip != "" {
		systray.SetTooltip(opts.Tooltip)
	} else {
		systray.SetTooltip("Portable Screenshot")
	}

	cfg := opts.Config

	mRegion := systray.AddMenuItem(captionWithHotkey("Capture Region", cfg.RegionHotkey), "Drag a rectangle to capture")
	mFull := systray.AddMenuItem(captionWithHotkey("Capture Full Screen", cfg.FullscreenHotkey), "Capture all displays")
	mWindow := systray.AddMenuItem(captionWithHotkey("Capture Window", cfg.WindowHotkey), "Capture the active window")
	systray.AddSeparator()

	mFormat := systray.AddMenuItem("Format", "Screenshot file format")
	mPNG := mFormat.AddSubMenuItemCheckbox("PNG", "Lossless", cfg.Format == config.FormatPNG)
	mJPG := mFormat.AddSubMenuItemCheckbox("JPG", fmt.Sprintf("Quality %d", cfg.JPGQuality), cfg.Format == config.FormatJPG)

	mDir := systray.AddMenuItem("Save Location...", "Choose where screenshots are saved")
	mDirLabel := systray.AddMenuItem(dirCaption(cfg.SaveDirectory), "")
	mDirLabel.Disable()
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit Portable Screenshot")

	go func() {
		for {
			select {
			case <-mRegion.ClickedCh:
				fireCapture(opts, capture.ModeRegion)
			case <-mFull.ClickedCh:
				fireCapture(opts, capture.ModeFullscreen)
			case <-mWindow.ClickedCh:
				fireCapture(opts, capture.ModeActiveWindow)
			case <-mPNG.ClickedCh:
				mPNG.Check()
				mJPG.Uncheck()
				if opts.OnSetFormat != nil {
					opts.OnSetFormat(config.FormatPNG)
				}
			case <-mJPG.ClickedCh:
				mJPG.Check()
				mPNG.Uncheck()
				if opts.OnSetFormat != nil {
					opts.OnSetFormat(config.FormatJPG)
				}
			case <-mDir.ClickedCh:
				dir, ok := pickFolder("Choose screenshot folder")
				if !ok {
					continue
				}
				log.Printf("tray: save directory changed to %s", dir)
				mDirLabel.SetTitle(dirCaption(dir))
				if opts.OnSetDirectory != nil {
					opts.OnSetDirectory(dir)
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func fireCapture(opts Options, mode capture.Mode) {
	if opts.OnCapture != nil {
		opts.OnCapture(mode)
	}
}

func captionWithHotkey(label, hotkey string) string {
	if hotkey == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, hotkey)
}

func dirCaption(dir string) string {
	return "Saving to: " + dir
}
