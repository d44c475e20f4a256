// Package sink persists a capture to disk and copies it to the clipboard.
// The two deliveries are independent best-effort steps: a disk failure
// never suppresses the clipboard attempt, and vice versa.
package sink

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"portable-screenshot/src/capture"
	"portable-screenshot/src/clipboard"
	"portable-screenshot/src/config"
)

var (
	ErrDiskWrite = errors.New("disk write failed")
	ErrClipboard = errors.New("clipboard copy failed")
)

// Status reports the outcome of both delivery steps separately.
type Status struct {
	Path    string
	DiskErr error
	ClipErr error
}

// Failed reports whether any step failed.
func (s Status) Failed() bool { return s.DiskErr != nil || s.ClipErr != nil }

// Err collapses the per-step errors into one for callers that only need a
// single error value (one-shot mode). Both steps failing joins them.
func (s Status) Err() error {
	switch {
	case s.DiskErr != nil && s.ClipErr != nil:
		return errors.Join(s.DiskErr, s.ClipErr)
	case s.DiskErr != nil:
		return s.DiskErr
	case s.ClipErr != nil:
		return s.ClipErr
	default:
		return nil
	}
}

// Sink writes captures to the configured directory and to the clipboard.
// WriteClipboard is injectable for tests; the zero value uses the real
// clipboard.
type Sink struct {
	WriteClipboard func(pngData []byte) error
}

// New returns a Sink backed by the system clipboard.
func New() *Sink {
	return &Sink{WriteClipboard: clipboard.WriteImage}
}

// Filename generates the timestamped file name for a capture taken at t.
// The timestamp is capture time, not save time, so rapid repeated captures
// keep their lexicographic order.
func Filename(t time.Time, ext string) string {
	return fmt.Sprintf("Screenshot_%s_%06d.%s", t.Format("20060102_150405"), t.Nanosecond()/1000, ext)
}

// Store encodes the capture and runs both delivery steps. The returned
// Status names exactly which step failed, if any.
func (s *Sink) Store(res *capture.Result, cfg *config.Config) Status {
	var st Status

	// Clipboard always receives lossless pixels regardless of the disk
	// format, so pasting yields the capture exactly.
	var clipBuf bytes.Buffer
	if err := png.Encode(&clipBuf, res.Image); err != nil {
		st.ClipErr = fmt.Errorf("%w: %v", ErrClipboard, err)
	}

	st.Path, st.DiskErr = s.writeFile(res, cfg, &clipBuf)

	if st.ClipErr == nil {
		if err := s.writeClipboard(clipBuf.Bytes()); err != nil {
			st.ClipErr = fmt.Errorf("%w: %v", ErrClipboard, err)
		}
	}

	return st
}

func (s *Sink) writeFile(res *capture.Result, cfg *config.Config, pngBuf *bytes.Buffer) (string, error) {
	name := Filename(res.Taken, cfg.Extension())
	outPath := filepath.Join(cfg.SaveDirectory, name)

	data, err := s.encodeForDisk(res, cfg, pngBuf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiskWrite, err)
	}
	if err := os.MkdirAll(cfg.SaveDirectory, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiskWrite, err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiskWrite, err)
	}
	return outPath, nil
}

func (s *Sink) encodeForDisk(res *capture.Result, cfg *config.Config, pngBuf *bytes.Buffer) ([]byte, error) {
	if cfg.Format == config.FormatJPG {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, res.Image, &jpeg.Options{Quality: cfg.JPGQuality}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if pngBuf.Len() > 0 {
		return pngBuf.Bytes(), nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, res.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Sink) writeClipboard(pngData []byte) error {
	if s.WriteClipboard != nil {
		return s.WriteClipboard(pngData)
	}
	return clipboard.WriteImage(pngData)
}
