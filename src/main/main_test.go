package main

import (
	"testing"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"portable-screenshot", "-once", "-save-dir", "/tmp/shots"},
			out:  []string{"portable-screenshot", "--once", "--save-dir", "/tmp/shots"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"portable-screenshot", "-once=true", "-format=jpg", "-mode=window"},
			out:  []string{"portable-screenshot", "--once=true", "--format=jpg", "--mode=window"},
		},
		{
			name: "Leaves double dash flags unchanged",
			in:   []string{"portable-screenshot", "--once", "--other"},
			out:  []string{"portable-screenshot", "--once", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--once", "--mode", "region", "--format", "jpg", "--save-dir", "/tmp/shots"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.once {
		t.Fatal("Expected once=true")
	}
	if opts.mode != "region" {
		t.Fatalf("Expected mode=region, got %q", opts.mode)
	}
	if opts.format != "jpg" {
		t.Fatalf("Expected format=jpg, got %q", opts.format)
	}
	if opts.saveDir != "/tmp/shots" {
		t.Fatalf("Expected saveDir=/tmp/shots, got %q", opts.saveDir)
	}
}

func TestNewRootCmdDefaultsToFullscreenOnce(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--once"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.mode != "fullscreen" {
		t.Fatalf("Expected default mode=fullscreen, got %q", opts.mode)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	cfg := loadConfig(mainOptions{format: "jpg", saveDir: "/tmp/override"})
	if cfg.Format != "jpg" {
		t.Errorf("Expected format override, got %q", cfg.Format)
	}
	if cfg.SaveDirectory != "/tmp/override" {
		t.Errorf("Expected save-dir override, got %q", cfg.SaveDirectory)
	}
}

func TestLoadConfigNormalizesOverrides(t *testing.T) {
	cfg := loadConfig(mainOptions{format: "jpeg"})
	if cfg.Format != "jpg" {
		t.Errorf("Expected jpeg to normalize to jpg, got %q", cfg.Format)
	}
}
