package util

import (
	"path"
	"regexp"
	"strings"
	"unicode"
)

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

const maxFilenameRunes = 120

// SanitizeFilename makes an uploaded filename safe to forward in a multipart
// header. It never fails: names that end up empty or hidden become fallback.
func SanitizeFilename(name string, fallback string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))

	builder := strings.Builder{}
	builder.Grow(len(name))
	for _, char := range name {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		builder.WriteRune(char)
	}

	cleaned := strings.TrimSpace(invalidFilenameChars.ReplaceAllString(builder.String(), "_"))
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, ".") {
		return fallback
	}

	// Truncate by runes (not bytes) to avoid splitting multi-byte characters.
	runes := []rune(cleaned)
	if len(runes) > maxFilenameRunes {
		ext := []rune(path.Ext(cleaned))
		if len(ext) >= maxFilenameRunes {
			ext = nil
		}
		runes = append(runes[:maxFilenameRunes-len(ext)], ext...)
	}

	cleaned = string(runes)
	if !IsImageExtension(path.Ext(cleaned)) {
		cleaned += path.Ext(fallback)
	}
	return cleaned
}

// isInvisibleUnicode returns true for zero-width and formatting characters.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F', '\u2060', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Cf, r)
}
