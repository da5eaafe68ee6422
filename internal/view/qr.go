package view

import (
	"encoding/base64"
	"fmt"
	"html/template"

	"github.com/skip2/go-qrcode"
)

const QRSize = 256

// QRCode encodes a confirmation code as a PNG.
func QRCode(code string, size int) ([]byte, error) {
	if code == "" {
		return nil, fmt.Errorf("empty confirmation code")
	}
	if size <= 0 {
		size = QRSize
	}

	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %s: %w", code, err)
	}
	return png, nil
}

// QRDataURI is QRCode as an inline image source.
func QRDataURI(code string) (template.URL, error) {
	png, err := QRCode(code, QRSize)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
