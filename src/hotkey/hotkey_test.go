package hotkey

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "Mixed case with modifiers", in: "Ctrl+Alt+P", want: []string{"ctrl", "alt", "p"}},
		{name: "Whitespace tolerated", in: " ctrl + shift + f5 ", want: []string{"ctrl", "shift", "f5"}},
		{name: "Win normalizes to cmd", in: "Win+S", want: []string{"cmd", "s"}},
		{name: "Super normalizes to cmd", in: "Super+2", want: []string{"cmd", "2"}},
		{name: "Empty parts dropped", in: "ctrl++p", want: []string{"ctrl", "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseHotkey(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseHotkey(%q): expected %v, got %v", tt.in, tt.want, got)
			}
		})
	}
}

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		name string
		want []uint16
	}{
		{name: "ctrl", want: []uint16{162, 163}},
		{name: "alt", want: []uint16{164, 165}},
		{name: "shift", want: []uint16{160, 161}},
		{name: "cmd", want: []uint16{91, 92}},
		{name: "a", want: []uint16{65}},
		{name: "p", want: []uint16{80}},
		{name: "z", want: []uint16{90}},
		{name: "0", want: []uint16{48}},
		{name: "9", want: []uint16{57}},
		{name: "f1", want: []uint16{112}},
		{name: "f12", want: []uint16{123}},
		{name: "f24", want: []uint16{135}},
		{name: "escape", want: []uint16{27}},
		{name: "printscreen", want: []uint16{44}},
	}

	for _, tt := range tests {
		if got := keyNameToRawcodes(tt.name); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("keyNameToRawcodes(%q): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestKeyNameToRawcodesUnknown(t *testing.T) {
	for _, name := range []string{"", "f0", "f25", "fx", "hyper", "??"} {
		if got := keyNameToRawcodes(name); got != nil {
			t.Errorf("keyNameToRawcodes(%q): expected nil, got %v", name, got)
		}
	}
}

func TestRegisterConflict(t *testing.T) {
	r := New()

	if _, err := r.Register("Ctrl+Alt+P", func() {}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	// Same combo in different spelling still conflicts.
	_, err := r.Register("ctrl+alt+p", func() {})
	if !errors.Is(err, ErrAlreadyInUse) {
		t.Fatalf("Expected ErrAlreadyInUse, got %v", err)
	}
	// Other combos remain registrable after the conflict.
	if _, err := r.Register("Ctrl+Alt+F", func() {}); err != nil {
		t.Errorf("Unrelated combo failed to register: %v", err)
	}
}

func TestRegisterUnknownKey(t *testing.T) {
	r := New()
	if _, err := r.Register("Ctrl+Alt+Hyper", func() {}); err == nil {
		t.Error("Expected error for unknown key name")
	}
}

func TestUnregisterFreesCombo(t *testing.T) {
	r := New()
	h, err := r.Register("Ctrl+Alt+W", func() {})
	if err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	r.Unregister(h)
	if _, err := r.Register("Ctrl+Alt+W", func() {}); err != nil {
		t.Errorf("Expected combo to be free after Unregister, got %v", err)
	}
}

func TestCombinationFiresWhenAllKeysDown(t *testing.T) {
	r := New()
	fired := 0
	if _, err := r.Register("Ctrl+Alt+P", func() { fired++ }); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	r.handleKeyDown(162) // left ctrl
	r.handleKeyDown(164) // left alt
	if fired != 0 {
		t.Fatal("Combination must not fire before all keys are down")
	}
	r.handleKeyDown(80) // p
	if fired != 1 {
		t.Fatalf("Expected one firing, got %d", fired)
	}

	// States reset after firing: holding the keys does not re-fire until
	// the final key is pressed again.
	r.handleKeyDown(80)
	if fired != 1 {
		t.Fatalf("Expected no re-fire from final key alone, got %d firings", fired)
	}
}

func TestKeyUpClearsState(t *testing.T) {
	r := New()
	fired := 0
	if _, err := r.Register("Ctrl+Alt+F", func() { fired++ }); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	r.handleKeyDown(163) // right ctrl
	r.handleKeyUp(163)
	r.handleKeyDown(165) // right alt
	r.handleKeyDown(70)  // f
	if fired != 0 {
		t.Fatalf("Expected no firing after ctrl released, got %d", fired)
	}
}

func TestIndependentBindings(t *testing.T) {
	r := New()
	var regionFired, fullFired int
	if _, err := r.Register("Ctrl+Alt+P", func() { regionFired++ }); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}
	if _, err := r.Register("Ctrl+Alt+F", func() { fullFired++ }); err != nil {
		t.Fatalf("Registration failed: %v", err)
	}

	r.handleKeyDown(162)
	r.handleKeyDown(164)
	r.handleKeyDown(70) // f
	if regionFired != 0 || fullFired != 1 {
		t.Fatalf("Expected only the fullscreen combo to fire, got region=%d full=%d", regionFired, fullFired)
	}
}
