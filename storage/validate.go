package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"aishare/models"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// HEIC family files frequently arrive from phones and decode nowhere in
// our pipeline, so they get a targeted message instead of the generic one.
var heicExtensions = map[string]bool{
	".heic": true,
	".heif": true,
	".avif": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateImage checks filename, declared MIME type, size, and that the
// payload actually decodes as an image. Every rejection is an upload error
// with a user-facing message.
func ValidateImage(filename, contentType string, data []byte, maxBytes int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if heicExtensions[ext] {
		return "", models.NewUploadError("HEIC/HEIF images are not supported, please convert to JPEG or PNG", nil)
	}
	if !allowedExtensions[ext] {
		return "", models.NewUploadError(fmt.Sprintf("unsupported file extension %q", ext), nil)
	}
	if contentType != "" && !allowedMIMETypes[strings.ToLower(contentType)] {
		return "", models.NewUploadError(fmt.Sprintf("unsupported content type %q", contentType), nil)
	}
	if int64(len(data)) > maxBytes {
		return "", models.NewUploadError(fmt.Sprintf("image exceeds the %d MB limit", maxBytes/(1<<20)), nil)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", models.NewUploadError("file is not a valid image", err)
	}
	return ext, nil
}
