package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

const iconSize = 32

var (
	iconOnce  sync.Once
	iconBytes []byte
)

// Icon returns the tray icon: a crosshair over a circle, drawn at startup
// so the binary ships without asset files. Windows gets an ICO wrapper,
// other platforms raw PNG.
func Icon() []byte {
	iconOnce.Do(func() {
		pngData := renderIconPNG()
		if runtime.GOOS == "windows" {
			iconBytes = wrapICO(pngData)
		} else {
			iconBytes = pngData
		}
	})
	return iconBytes
}

func renderIconPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	accent := color.RGBA{R: 0, G: 174, B: 255, A: 255}

	const center = iconSize / 2
	const radius = 10
	const gap = 4

	// Circle outline, two pixels thick.
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := x - center
			dy := y - center
			d2 := dx*dx + dy*dy
			if d2 >= (radius-1)*(radius-1) && d2 <= (radius+1)*(radius+1) {
				img.SetRGBA(x, y, accent)
			}
		}
	}

	// Crosshair lines with a gap around the center.
	for i := 2; i < iconSize-2; i++ {
		if i > center-gap && i < center+gap {
			continue
		}
		img.SetRGBA(i, center, accent)
		img.SetRGBA(i, center-1, accent)
		img.SetRGBA(center, i, accent)
		img.SetRGBA(center-1, i, accent)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// wrapICO wraps a PNG as a single-image ICO. Vista and later accept
// PNG-compressed entries directly.
func wrapICO(pngData []byte) []byte {
	var buf bytes.Buffer

	// ICONDIR
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // type: icon
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // image count

	// ICONDIRENTRY
	buf.WriteByte(iconSize)                             // width
	buf.WriteByte(iconSize)                             // height
	buf.WriteByte(0)                                    // palette colors
	buf.WriteByte(0)                                    // reserved
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(32)) // bits per pixel
	binary.Write(&buf, binary.LittleEndian, uint32(len(pngData)))
	binary.Write(&buf, binary.LittleEndian, uint32(6+16)) // data offset

	buf.Write(pngData)
	return buf.Bytes()
}
