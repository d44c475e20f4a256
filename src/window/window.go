// Package window resolves the bounding rectangle of the currently focused
// top-level window. The focused window can close or move between the hotkey
// firing and the grab, so resolution happens at call time and failures are
// reported rather than guessed around.
package window

import "errors"

// ErrNoForegroundWindow is returned when no focused top-level window can be
// resolved.
var ErrNoForegroundWindow = errors.New("no foreground window")
