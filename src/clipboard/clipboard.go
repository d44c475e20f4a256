package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	writeMu sync.Mutex
	initMu  sync.Mutex
	inited  bool
	initErr error
)

// Init prepares the system clipboard. Safe to call more than once; the
// first failure is latched and returned to every subsequent writer.
func Init() error {
	initMu.Lock()
	defer initMu.Unlock()
	if inited {
		return initErr
	}
	inited = true
	initErr = clipboard.Init()
	return initErr
}

// WriteImage places PNG-encoded pixels on the clipboard so that pasting
// into another application yields the raw image, not a filename.
// Mutex-guarded to prevent corruption under overlapping writes.
func WriteImage(pngData []byte) error {
	initMu.Lock()
	ready := inited && initErr == nil
	err := initErr
	initMu.Unlock()
	if !ready {
		if err == nil {
			err = fmt.Errorf("clipboard not initialized")
		}
		return fmt.Errorf("clipboard unavailable: %w", err)
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, pngData)
	return nil
}
