// Package eventloop serializes capture triggers from hotkeys, the tray menu
// and one-shot requests onto a single goroutine, so capture state and config
// mutations never race.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"

	"portable-screenshot/src/capture"
	"portable-screenshot/src/config"
	"portable-screenshot/src/notification"
	"portable-screenshot/src/sink"
)

// Loop owns the capture coordinator, the delivery sink, and the live config.
// Triggers are posted from any goroutine; everything else runs on the loop
// goroutine.
type Loop struct {
	coord *capture.Coordinator
	sink  *sink.Sink
	cfg   *config.Config

	triggers chan capture.Mode
	tasks    chan func()

	// Notify is injectable for tests; the default shows the toast popup.
	Notify func(message string)
}

// New creates a loop around cfg. The config pointer is owned by the loop
// after this call; mutate it only through Do.
func New(cfg *config.Config) *Loop {
	return &Loop{
		coord:    capture.New(),
		sink:     sink.New(),
		cfg:      cfg,
		triggers: make(chan capture.Mode),
		tasks:    make(chan func(), 8),
		Notify: func(message string) {
			if err := notification.Show(message); err != nil {
				log.Printf("eventloop: notification failed: %v", err)
			}
		},
	}
}

// Trigger posts a capture request. Non-blocking and unbuffered: the post
// succeeds only when the loop is parked waiting for work, so a trigger
// fired while a capture or its overlay is up is dropped, never queued
// behind the running one.
func (l *Loop) Trigger(mode capture.Mode) {
	select {
	case l.triggers <- mode:
	default:
		log.Printf("eventloop: busy, dropping %s trigger", mode)
	}
}

// Do runs fn on the loop goroutine. Used by the tray menu for config
// mutations (format switch, save directory change). Blocks until the loop
// picks it up.
func (l *Loop) Do(fn func()) {
	l.tasks <- fn
}

// Config returns the live config. Read it only from the loop goroutine or
// inside a Do callback.
func (l *Loop) Config() *config.Config { return l.cfg }

// Run processes triggers and tasks until ctx is cancelled. The selection
// overlay creates its window and pumps messages from this goroutine, and
// Win32 ties both to the creating thread, so Run pins itself to one.
func (l *Loop) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case mode := <-l.triggers:
			l.handleCapture(ctx, mode)
		case fn := <-l.tasks:
			fn()
		}
	}
}

func (l *Loop) handleCapture(ctx context.Context, mode capture.Mode) {
	log.Printf("eventloop: capture triggered, mode=%s", mode)

	res, err := l.coord.Capture(ctx, mode)
	if err != nil {
		l.reportCaptureError(err)
		return
	}

	st := l.sink.Store(res, l.cfg)
	l.reportStatus(st)
}

func (l *Loop) reportCaptureError(err error) {
	switch {
	case errors.Is(err, capture.ErrBusy):
		// A capture is already on screen; the extra trigger is ignored.
		log.Printf("eventloop: capture already in progress, ignoring trigger")
	case errors.Is(err, capture.ErrCancelled):
		log.Printf("eventloop: selection cancelled")
	case errors.Is(err, capture.ErrInvalidSelection):
		log.Printf("eventloop: selection too small")
		l.notify("Selection too small, nothing captured")
	case errors.Is(err, capture.ErrNoActiveWindow):
		log.Printf("eventloop: no active window to capture")
		l.notify("No active window to capture")
	default:
		log.Printf("eventloop: capture failed: %v", err)
		l.notify("Capture failed")
	}
}

func (l *Loop) reportStatus(st sink.Status) {
	switch {
	case st.DiskErr != nil && st.ClipErr != nil:
		log.Printf("eventloop: save failed: %v; clipboard failed: %v", st.DiskErr, st.ClipErr)
		l.notify("Could not save or copy the screenshot")
	case st.DiskErr != nil:
		log.Printf("eventloop: save failed: %v", st.DiskErr)
		l.notify("Copied to clipboard, but saving to disk failed")
	case st.ClipErr != nil:
		log.Printf("eventloop: clipboard failed: %v", st.ClipErr)
		l.notify(fmt.Sprintf("Saved %s, but clipboard copy failed", st.Path))
	default:
		log.Printf("eventloop: saved %s", st.Path)
		l.notify(fmt.Sprintf("Screenshot saved\n%s", st.Path))
	}
}

func (l *Loop) notify(message string) {
	if l.Notify != nil {
		l.Notify(message)
	}
}
