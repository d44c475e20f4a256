package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestRenderIconPNG(t *testing.T) {
	data := renderIconPNG()
	if len(data) == 0 {
		t.Fatal("Icon render produced no data")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Icon is not valid PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("Expected %dx%d icon, got %dx%d", iconSize, iconSize, b.Dx(), b.Dy())
	}
}

func TestWrapICO(t *testing.T) {
	pngData := renderIconPNG()
	ico := wrapICO(pngData)

	if len(ico) != 6+16+len(pngData) {
		t.Fatalf("Unexpected ICO size: %d", len(ico))
	}
	if binary.LittleEndian.Uint16(ico[2:4]) != 1 {
		t.Error("ICO type field must be 1")
	}
	if binary.LittleEndian.Uint16(ico[4:6]) != 1 {
		t.Error("ICO image count must be 1")
	}
	if offset := binary.LittleEndian.Uint32(ico[18:22]); offset != 22 {
		t.Errorf("Expected image data at offset 22, got %d", offset)
	}
	if !bytes.Equal(ico[22:], pngData) {
		t.Error("ICO payload does not match the PNG data")
	}
}
