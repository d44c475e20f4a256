package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"portable-screenshot/src/capture"
	"portable-screenshot/src/clipboard"
	"portable-screenshot/src/config"
	"portable-screenshot/src/eventloop"
	"portable-screenshot/src/hotkey"
	"portable-screenshot/src/logutil"
	"portable-screenshot/src/notification"
	"portable-screenshot/src/sink"
	"portable-screenshot/src/tray"
)

// A second tray instance is pointless; the first one to bind this port wins.
const instanceAddr = "127.0.0.1:48627"

type mainOptions struct {
	once    bool
	mode    string
	format  string
	saveDir string
}

func main() {
	// DPI awareness must be set before any window or metrics call, or the
	// overlay coordinates come back pre-scaled.
	enableDPIAwareness()

	// Keep the main goroutine off the toast thread's message queue.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"portable-screenshot"}
	}

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portable-screenshot",
		Short:         "Tray screenshot tool: capture a region, the full screen, or the active window",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.once {
				return runOnce(*opts)
			}
			return runTray(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.once, "once", false, "Capture once, save and copy, then exit")
	cmd.Flags().StringVar(&opts.mode, "mode", "fullscreen", "Capture mode for --once: region, fullscreen or window")
	cmd.Flags().StringVar(&opts.format, "format", "", "Override the configured format (png or jpg)")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "Override the configured save directory")

	return cmd
}

// normalizeLegacyArgs maps single-dash long flags to the double-dash form
// so invocations written for the old flag package keep working.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "-once":
			normalized[i] = "--once"
		case strings.HasPrefix(arg, "-once="):
			normalized[i] = "--once=" + arg[len("-once="):]
		case arg == "-mode":
			normalized[i] = "--mode"
		case strings.HasPrefix(arg, "-mode="):
			normalized[i] = "--mode=" + arg[len("-mode="):]
		case arg == "-format":
			normalized[i] = "--format"
		case strings.HasPrefix(arg, "-format="):
			normalized[i] = "--format=" + arg[len("-format="):]
		case arg == "-save-dir":
			normalized[i] = "--save-dir"
		case strings.HasPrefix(arg, "-save-dir="):
			normalized[i] = "--save-dir=" + arg[len("-save-dir="):]
		}
	}

	return normalized
}

// enableDPIAwareness asks for per-monitor DPI awareness so overlay and
// capture coordinates match physical pixels on scaled displays.
func enableDPIAwareness() {
	if runtime.GOOS != "windows" {
		return
	}
	// Shcore.SetProcessDpiAwareness (Win 8.1+), falling back to
	// user32.SetProcessDPIAware (Vista+).
	shcore := syscall.NewLazyDLL("Shcore.dll")
	setProcessDpiAwareness := shcore.NewProc("SetProcessDpiAwareness")
	const processPerMonitorDPIAware = 2
	if err := setProcessDpiAwareness.Find(); err == nil {
		_, _, _ = setProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		return
	}
	user32 := syscall.NewLazyDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if err := setProcessDPIAware.Find(); err == nil {
		_, _, _ = setProcessDPIAware.Call()
	}
}

// loadConfig loads the persisted config and applies CLI overrides on top.
// Overrides are session-only and never written back.
func loadConfig(opts mainOptions) *config.Config {
	cfg := config.Load()
	if opts.format != "" {
		cfg.Format = opts.format
	}
	if opts.saveDir != "" {
		cfg.SaveDirectory = opts.saveDir
	}
	cfg.Normalize()
	return cfg
}

// runOnce performs a single capture and exits. Exit status is zero only
// when both the disk write and the clipboard copy succeeded.
func runOnce(opts mainOptions) error {
	cfg := loadConfig(opts)
	logutil.Setup(cfg.EnableFileLogging)

	mode, err := capture.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	if err := clipboard.Init(); err != nil {
		// Keep going: the disk write can still succeed, and the clipboard
		// failure shows up in the delivery status.
		log.Printf("clipboard init failed: %v", err)
	}

	coord := capture.New()
	res, err := coord.Capture(context.Background(), mode)
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrCancelled):
			return errors.New("selection cancelled")
		case errors.Is(err, capture.ErrInvalidSelection):
			return errors.New("selection too small")
		case errors.Is(err, capture.ErrNoActiveWindow):
			return errors.New("no active window to capture")
		default:
			return fmt.Errorf("capture failed: %w", err)
		}
	}

	st := sink.New().Store(res, cfg)
	if st.Path != "" {
		fmt.Printf("Saved: %s\n", st.Path)
	}
	return st.Err()
}

// runTray starts the resident tray application.
func runTray(opts mainOptions) error {
	cfg := loadConfig(opts)
	logutil.Setup(cfg.EnableFileLogging)

	// Single-instance pre-flight. The listener is held for the process
	// lifetime; a second instance fails to bind and exits.
	listener, err := net.Listen("tcp", instanceAddr)
	if err != nil {
		notification.ShowBlockingError("Portable Screenshot", "Portable Screenshot is already running.")
		return errors.New("another instance is already running")
	}
	defer listener.Close()

	if err := clipboard.Init(); err != nil {
		// Captures still reach the disk; every clipboard copy will report
		// its failure through the delivery status.
		log.Printf("clipboard init failed: %v", err)
	}

	log.Printf("Portable Screenshot starting")
	log.Printf("Save directory: %s", cfg.SaveDirectory)
	log.Printf("Format: %s (jpg quality %d)", cfg.Format, cfg.JPGQuality)

	loop := eventloop.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registerHotkeys(cfg, loop)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			cancel()
			tray.Quit()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Blocks until Quit; must stay on the locked main thread.
	tray.Run(tray.Options{
		Tooltip: fmt.Sprintf("Portable Screenshot - %s to capture a region", cfg.RegionHotkey),
		Config:  cfg,
		OnCapture: func(mode capture.Mode) {
			loop.Trigger(mode)
		},
		OnSetFormat: func(format string) {
			loop.Do(func() {
				cfg.Format = format
				cfg.Normalize()
				if err := cfg.Save(); err != nil {
					log.Printf("failed to save config: %v", err)
				}
			})
		},
		OnSetDirectory: func(dir string) {
			loop.Do(func() {
				cfg.SaveDirectory = dir
				if err := cfg.Save(); err != nil {
					log.Printf("failed to save config: %v", err)
				}
			})
		},
		OnQuit: cancel,
	})

	return nil
}

// registerHotkeys binds the three capture hotkeys. A combo that fails to
// register is logged and skipped; the tray menu still reaches every mode.
func registerHotkeys(cfg *config.Config, loop *eventloop.Loop) {
	reg := hotkey.New()

	bindings := []struct {
		combo string
		mode  capture.Mode
	}{
		{cfg.RegionHotkey, capture.ModeRegion},
		{cfg.FullscreenHotkey, capture.ModeFullscreen},
		{cfg.WindowHotkey, capture.ModeActiveWindow},
	}

	for _, b := range bindings {
		mode := b.mode
		if _, err := reg.Register(b.combo, func() { loop.Trigger(mode) }); err != nil {
			log.Printf("hotkey %s unavailable: %v", b.combo, err)
			continue
		}
		log.Printf("hotkey registered: %s -> %s", b.combo, mode)
	}

	reg.Listen()
}
