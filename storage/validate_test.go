package storage

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"aishare/models"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImageAccepted(t *testing.T) {
	ext, err := ValidateImage("shot.PNG", "image/png", pngBytes(t), 1<<20)
	if err != nil {
		t.Fatalf("ValidateImage: %v", err)
	}
	if ext != ".png" {
		t.Fatalf("ext = %q, want .png", ext)
	}
}

func TestValidateImageRejections(t *testing.T) {
	good := pngBytes(t)
	cases := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		maxBytes    int64
		wantMsg     string
	}{
		{"heic", "photo.heic", "image/heic", good, 1 << 20, "HEIC"},
		{"bad ext", "notes.txt", "text/plain", good, 1 << 20, "extension"},
		{"bad mime", "shot.png", "application/pdf", good, 1 << 20, "content type"},
		{"too large", "shot.png", "image/png", good, 4, "limit"},
		{"not an image", "shot.png", "image/png", []byte("garbage"), 1 << 20, "valid image"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ValidateImage(c.filename, c.contentType, c.data, c.maxBytes)
			if err == nil {
				t.Fatal("expected rejection")
			}
			if !models.IsKind(err, models.KindUpload) {
				t.Fatalf("error kind is not upload: %v", err)
			}
			if !strings.Contains(err.Error(), c.wantMsg) {
				t.Fatalf("error %q does not mention %q", err.Error(), c.wantMsg)
			}
		})
	}
}
