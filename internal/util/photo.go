package util

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"delrio-stay/internal/model"
)

const (
	DefaultMaxPhotoBytes = 5 << 20
	DefaultMaxPhotoWidth = 1600
	maxPhotoPixels       = 40_000_000
)

// PhotoLimits bounds the room photos an admin may upload.
type PhotoLimits struct {
	MaxBytes int64
	MaxWidth int
}

func (l PhotoLimits) withDefaults() PhotoLimits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultMaxPhotoBytes
	}
	if l.MaxWidth <= 0 {
		l.MaxWidth = DefaultMaxPhotoWidth
	}
	return l
}

// Prepare checks an uploaded room photo and shrinks it to MaxWidth before it
// is forwarded to the backend. Empty data means no photo was sent and yields
// nil. Rejections are model.ValidationErrors for the photo field.
func (l PhotoLimits) Prepare(filename string, data []byte) (*model.PhotoUpload, error) {
	l = l.withDefaults()
	if len(data) == 0 {
		return nil, nil
	}
	if int64(len(data)) > l.MaxBytes {
		return nil, model.Invalid("photo", fmt.Sprintf("The photo must be smaller than %d MB", (l.MaxBytes+(1<<20)-1)>>20))
	}
	if sniffed := SniffMIME(data); sniffed != "application/octet-stream" && !IsImageMIME(sniffed) {
		return nil, model.Invalid("photo", "The photo must be an image")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, model.Invalid("photo", "The photo must be an image")
	}
	kind, ok := photoFormats[format]
	if !ok {
		return nil, model.Invalid("photo", "Unsupported photo format")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPhotoPixels {
		return nil, model.Invalid("photo", "The photo dimensions are not supported")
	}

	name := SanitizeFilename(filename, "room-photo"+kind.ext)
	if cfg.Width <= l.MaxWidth {
		return &model.PhotoUpload{Filename: name, ContentType: kind.mime, Data: data}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, model.Invalid("photo", "The photo could not be read")
	}

	scaled := scaleToWidth(src, l.MaxWidth)

	var buf bytes.Buffer
	if format == "png" {
		err = png.Encode(&buf, scaled)
	} else {
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 90})
		kind = photoFormats["jpeg"]
	}
	if err != nil {
		return nil, fmt.Errorf("encode resized photo: %w", err)
	}

	return &model.PhotoUpload{
		Filename:    withExtension(name, kind.ext),
		ContentType: kind.mime,
		Data:        buf.Bytes(),
	}, nil
}

func scaleToWidth(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	scale := float64(width) / float64(bounds.Dx())

	height := int(math.Round(float64(bounds.Dy()) * scale))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
