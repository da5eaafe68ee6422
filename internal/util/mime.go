package util

import (
	"net/http"
	"path"
	"strings"
)

// photoFormats maps the image.DecodeConfig format names the backend accepts
// to their content type and preferred extension.
var photoFormats = map[string]struct {
	mime string
	ext  string
}{
	"jpeg": {mime: "image/jpeg", ext: ".jpg"},
	"png":  {mime: "image/png", ext: ".png"},
	"gif":  {mime: "image/gif", ext: ".gif"},
	"webp": {mime: "image/webp", ext: ".webp"},
	"bmp":  {mime: "image/bmp", ext: ".bmp"},
	"tiff": {mime: "image/tiff", ext: ".tiff"},
}

func SniffMIME(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	return http.DetectContentType(data)
}

func IsImageMIME(mimeType string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(mimeType))
	return strings.HasPrefix(cleaned, "image/")
}

func IsImageExtension(extension string) bool {
	switch strings.ToLower(strings.TrimSpace(extension)) {
	case ".png", ".jpg", ".jpeg", ".jpe", ".jfif", ".pjpeg", ".pjp", ".gif", ".webp", ".bmp", ".dib", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

// withExtension swaps the extension of name for ext.
func withExtension(name string, ext string) string {
	if current := path.Ext(name); current != "" {
		name = strings.TrimSuffix(name, current)
	}
	return name + ext
}
