package qrimage

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder renders QR payloads as PNG data URLs suitable for direct embedding
// in an <img> tag.
type Encoder struct {
	size int
}

// NewEncoder creates a PNG encoder with the given image size in pixels.
func NewEncoder(size int) *Encoder {
	if size <= 0 {
		size = 256
	}
	return &Encoder{size: size}
}

// Encode renders payload into a QR code PNG and returns it as a base64 data URL.
func (e *Encoder) Encode(payload string) (string, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("encode qr image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
