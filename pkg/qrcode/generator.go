package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrGenerateQRCode is returned when the QR code generation fails.
	ErrGenerateQRCode = errors.New("failed to generate QR code")
)

const (
	// DefaultSize is the image size in pixels used when no size is specified.
	DefaultSize = 256

	// ContentType is the media type of images produced by Encoder.
	ContentType = "image/png"

	dataURIPrefix = "data:image/png;base64,"
)

// Encoder renders QR codes as PNG images. The zero value is usable.
type Encoder struct {
	size  int
	level skipqrcode.RecoveryLevel
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithSize sets the image width and height in pixels. Non-positive values keep the default.
func WithSize(size int) Option {
	return func(e *Encoder) {
		if size > 0 {
			e.size = size
		}
	}
}

// WithHighRecovery switches to the highest error correction level.
// Codes get denser but survive partial occlusion, which helps with phone cameras.
func WithHighRecovery() Option {
	return func(e *Encoder) {
		e.level = skipqrcode.High
	}
}

// NewEncoder creates an Encoder with medium error correction and DefaultSize.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{
		size:  DefaultSize,
		level: skipqrcode.Medium,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode returns a PNG image of the QR code for content.
func (e *Encoder) Encode(content string) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	size := e.size
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, e.level, size)
	if err != nil {
		return nil, errors.Join(ErrGenerateQRCode, err)
	}
	return png, nil
}

// DataURI wraps PNG bytes as a base64 data URI, ready for <img src="...">.
func DataURI(png []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png)
}

// Terminal renders content as a compact block of Unicode half blocks, two
// QR modules per character row.
func Terminal(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}
	q, err := skipqrcode.New(content, skipqrcode.Low)
	if err != nil {
		return "", errors.Join(ErrGenerateQRCode, err)
	}

	bitmap := q.Bitmap()
	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
