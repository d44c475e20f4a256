// Package hotkey binds global key combinations to capture actions. A single
// gohook event stream is shared by all bindings; each binding tracks the
// pressed state of its keys and fires its action when the full combination
// is down.
package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// ErrAlreadyInUse is returned when the combination is already bound.
// Non-fatal: callers warn and keep the remaining hotkeys functional.
var ErrAlreadyInUse = errors.New("hotkey combination already in use")

// Handle identifies a registration so it can be released later.
type Handle struct {
	combo string
}

// Combo returns the normalized combination string for display.
func (h Handle) Combo() string { return h.combo }

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type binding struct {
	combo  string
	keys   []keyState
	action func()
}

// Registrar owns the bindings and the shared event stream. Register may be
// called before or after Listen.
type Registrar struct {
	mu       sync.Mutex
	bindings map[string]*binding
	started  bool
}

func New() *Registrar {
	return &Registrar{bindings: make(map[string]*binding)}
}

// Register binds combo (e.g. "Ctrl+Alt+P") to action. Registering a combo
// that is already bound in this process returns ErrAlreadyInUse.
func (r *Registrar) Register(combo string, action func()) (Handle, error) {
	names := parseHotkey(combo)
	if len(names) == 0 {
		return Handle{}, fmt.Errorf("empty hotkey combination %q", combo)
	}

	var keys []keyState
	for _, name := range names {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			return Handle{}, fmt.Errorf("unknown key %q in combination %q", name, combo)
		}
		keys = append(keys, keyState{name: name, rawcodes: rawcodes})
	}

	normalized := strings.Join(names, "+")

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bindings[normalized]; exists {
		return Handle{}, fmt.Errorf("%w: %s", ErrAlreadyInUse, combo)
	}
	r.bindings[normalized] = &binding{combo: normalized, keys: keys, action: action}
	return Handle{combo: normalized}, nil
}

// Unregister releases a binding. Unknown handles are ignored.
func (r *Registrar) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bindings, h.combo)
}

// Listen starts the shared gohook stream in a goroutine. Actions run on the
// hook goroutine; they should only post into the event loop. Calling Listen
// more than once is a no-op.
func (r *Registrar) Listen() {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("hotkey: panic in hook goroutine: %v", rec)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("hotkey: gohook.Start() returned nil channel, hotkeys disabled")
			return
		}

		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				r.handleKeyDown(ev.Rawcode)
			case gohook.KeyUp:
				r.handleKeyUp(ev.Rawcode)
			}
		}
		log.Printf("hotkey: event channel closed")
	}()
}

func (r *Registrar) handleKeyDown(rawcode uint16) {
	var fire []func()

	r.mu.Lock()
	for _, b := range r.bindings {
		matched := false
		for i := range b.keys {
			if containsRawcode(b.keys[i].rawcodes, rawcode) {
				b.keys[i].pressed = true
				matched = true
			}
		}
		if !matched {
			continue
		}
		if b.allPressed() {
			b.reset()
			fire = append(fire, b.action)
			log.Printf("hotkey: combination %s detected", b.combo)
		}
	}
	r.mu.Unlock()

	for _, action := range fire {
		if action != nil {
			action()
		}
	}
}

func (r *Registrar) handleKeyUp(rawcode uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bindings {
		for i := range b.keys {
			if containsRawcode(b.keys[i].rawcodes, rawcode) {
				b.keys[i].pressed = false
			}
		}
	}
}

func (b *binding) allPressed() bool {
	for i := range b.keys {
		if !b.keys[i].pressed {
			return false
		}
	}
	return true
}

func (b *binding) reset() {
	for i := range b.keys {
		b.keys[i].pressed = false
	}
}

func containsRawcode(codes []uint16, code uint16) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

// parseHotkey normalizes "Ctrl+Alt+p" into lower-case key names.
func parseHotkey(combo string) []string {
	parts := strings.Split(strings.ToLower(combo), "+")
	var keys []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch part {
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var specialRawcodes = map[string][]uint16{
	// Modifiers map to both left and right variants.
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":       {32},
	"enter":       {13},
	"return":      {13},
	"esc":         {27},
	"escape":      {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"del":         {46},
	"insert":      {45},
	"ins":         {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pgup":        {33},
	"pagedown":    {34},
	"pgdn":        {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual-key rawcodes.
// Letters, digits and function keys are computed; the rest come from the
// special-key table. Unknown names return nil.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))

	if codes, ok := specialRawcodes[name]; ok {
		return codes
	}

	// Single letter a-z: VK 0x41-0x5A. Single digit 0-9: VK 0x30-0x39.
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c - 'a' + 0x41)}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c - '0' + 0x30)}
		}
		return nil
	}

	// Function keys f1-f24: VK 0x70 onward.
	if strings.HasPrefix(name, "f") {
		n := 0
		for _, r := range name[1:] {
			if r < '0' || r > '9' {
				return nil
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(0x70 + n - 1)}
		}
	}

	return nil
}
