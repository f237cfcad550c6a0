package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeTestImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRenderCapsWidthAndCrops(t *testing.T) {
	out, err := Render(encodeTestImage(t, 2000, 500))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	w, h := decodeDims(t, out)
	if w != maxWidth {
		t.Errorf("width = %d, want %d", w, maxWidth)
	}
	if h != maxWidth*9/16 {
		t.Errorf("height = %d, want %d", h, maxWidth*9/16)
	}
}

func TestRenderKeepsSmallWidth(t *testing.T) {
	out, err := Render(encodeTestImage(t, 640, 640))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	w, h := decodeDims(t, out)
	if w != 640 {
		t.Errorf("width = %d, want 640", w)
	}
	if h != 640*9/16 {
		t.Errorf("height = %d, want %d", h, 640*9/16)
	}
}

func TestRenderRejectsGarbage(t *testing.T) {
	if _, err := Render([]byte("not an image")); err == nil {
		t.Fatal("expected error for non-image payload")
	}
}
