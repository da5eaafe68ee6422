package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsImageExtension(t *testing.T) {
	t.Parallel()

	require.True(t, IsImageExtension(".png"))
	require.True(t, IsImageExtension(".jfif"))
	require.True(t, IsImageExtension(" .JPEG "))
	require.True(t, IsImageExtension(".webp"))
	require.False(t, IsImageExtension(".svg"))
	require.False(t, IsImageExtension(".pdf"))
	require.False(t, IsImageExtension(""))
}

func TestSniffMIME(t *testing.T) {
	t.Parallel()

	require.Equal(t, "image/png", SniffMIME([]byte("\x89PNG\r\n\x1a\n0000")))
	require.True(t, IsImageMIME(SniffMIME([]byte("GIF89a......"))))
	require.False(t, IsImageMIME(SniffMIME([]byte("<html><script>alert(1)</script>"))))
}

func TestWithExtension(t *testing.T) {
	t.Parallel()

	require.Equal(t, "suite.jpg", withExtension("suite.png", ".jpg"))
	require.Equal(t, "suite.jpg", withExtension("suite", ".jpg"))
}
