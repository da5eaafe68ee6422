package util

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delrio-stay/internal/model"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 7 {
		img.Set(x, x%height, color.RGBA{R: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPhotoLimits_Prepare(t *testing.T) {
	t.Parallel()

	limits := PhotoLimits{}

	t.Run("no photo", func(t *testing.T) {
		photo, err := limits.Prepare("x.png", nil)
		require.NoError(t, err)
		assert.Nil(t, photo)
	})

	t.Run("small photo passes unchanged", func(t *testing.T) {
		data := encodePNG(t, 40, 20)
		photo, err := limits.Prepare("suite.png", data)
		require.NoError(t, err)
		assert.Equal(t, "image/png", photo.ContentType)
		assert.Equal(t, "suite.png", photo.Filename)
		assert.Equal(t, data, photo.Data)
	})

	t.Run("wide photo is scaled down", func(t *testing.T) {
		photo, err := limits.Prepare("panorama.png", encodePNG(t, DefaultMaxPhotoWidth*2, 400))
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(photo.Data))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, DefaultMaxPhotoWidth, cfg.Width)
		assert.Equal(t, 200, cfg.Height)
	})

	t.Run("wide jpeg stays jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, DefaultMaxPhotoWidth+100, 10)), nil))

		photo, err := limits.Prepare("wide.jpeg", buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", photo.ContentType)
		assert.Equal(t, "wide.jpg", photo.Filename)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := limits.Prepare("evil.png", []byte("<html><script>alert(1)</script></html>"))
		var invalid *model.ValidationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "photo", invalid.Field)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := limits.Prepare("big.png", make([]byte, DefaultMaxPhotoBytes+1))
		require.Error(t, err)
	})

	t.Run("custom width", func(t *testing.T) {
		photo, err := PhotoLimits{MaxWidth: 100}.Prepare("room.png", encodePNG(t, 300, 60))
		require.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(photo.Data))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 20, cfg.Height)
	})
}
